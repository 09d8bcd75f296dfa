package query

// Column 检索的列，Aggregate 不为空的时候渲染成 AGG(table.column) AS alias
type Column struct {
	Table     string
	Name      string
	Alias     string
	Aggregate Aggregate
}

// Condition 一个查询条件
// Keys 是 Params 里面的参数名：空操作没有 key，IN / NOT IN 每个元素一个 key
type Condition struct {
	Table     string
	Column    string
	Operation Operation
	Keys      []string

	// Raw 不为空的时候，直接使用原生的 sql 片段
	Raw string
}

func (c Condition) IsRaw() bool {
	return c.Raw != ""
}

// Property is a value written by INSERT or UPDATE.
type Property struct {
	Table  string
	Column string
	Key    string
}

// Join links NewTable (optionally renamed to TableAlias) on NewColumn to
// a column of a table that is already part of the query.
type Join struct {
	// Alias 是 join 在 search 里面的名字，一般是外键的名字
	Alias       string
	NewTable    string
	NewColumn   string
	KnownTable  string
	KnownColumn string
	Side        JoinSide
	TableAlias  string
}

// Target 条件里面引用这个 join 时使用的表名
func (j Join) Target() string {
	if j.TableAlias == "" {
		return j.NewTable
	}
	return j.TableAlias
}

type Order struct {
	Table     string
	Column    string
	Direction Direction
}

type Group struct {
	Table  string
	Column string
}

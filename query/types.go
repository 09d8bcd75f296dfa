package query

// Operation 条件里面的比较操作，和具体的 SQL 方言无关
type Operation string

const (
	OpEQ      Operation = "EQ"
	OpNEQ     Operation = "NEQ"
	OpGT      Operation = "GT"
	OpGTE     Operation = "GTE"
	OpLT      Operation = "LT"
	OpLTE     Operation = "LTE"
	OpLike    Operation = "LIKE"
	OpNotLike Operation = "NLIKE"
	OpRegexp  Operation = "REXP"
	OpIn      Operation = "IN"
	OpNotIn   Operation = "NIN"
	OpNull    Operation = "NULL"
	OpNotNull Operation = "NNULL"
)

func (o Operation) String() string {
	return string(o)
}

// Valid reports whether o is one of the known operations.
func (o Operation) Valid() bool {
	switch o {
	case OpEQ, OpNEQ, OpGT, OpGTE, OpLT, OpLTE, OpLike, OpNotLike,
		OpRegexp, OpIn, OpNotIn, OpNull, OpNotNull:
		return true
	}
	return false
}

// Nullary 不需要参数的操作
func (o Operation) Nullary() bool {
	return o == OpNull || o == OpNotNull
}

// List 需要一组参数的操作
func (o Operation) List() bool {
	return o == OpIn || o == OpNotIn
}

type Aggregate string

const (
	AggNone  Aggregate = ""
	AggAvg   Aggregate = "AVG"
	AggCount Aggregate = "COUNT"
	AggMin   Aggregate = "MIN"
	AggMax   Aggregate = "MAX"
	AggSum   Aggregate = "SUM"
)

func (a Aggregate) Valid() bool {
	switch a {
	case AggNone, AggAvg, AggCount, AggMin, AggMax, AggSum:
		return true
	}
	return false
}

type Direction string

const (
	ASC  Direction = "ASC"
	DESC Direction = "DESC"
)

func (d Direction) Valid() bool {
	return d == ASC || d == DESC
}

// Relation 多个条件之间的连接词
type Relation string

const (
	AND Relation = "AND"
	OR  Relation = "OR"
)

func (r Relation) Valid() bool {
	return r == AND || r == OR
}

// JoinSide is the join keyword put in front of JOIN.
type JoinSide string

const (
	JoinBasic      JoinSide = ""
	JoinInner      JoinSide = "INNER"
	JoinOuter      JoinSide = "OUTER"
	JoinCross      JoinSide = "CROSS"
	JoinLeft       JoinSide = "LEFT"
	JoinRight      JoinSide = "RIGHT"
	JoinFull       JoinSide = "FULL"
	JoinLeftOuter  JoinSide = "LEFT OUTER"
	JoinRightOuter JoinSide = "RIGHT OUTER"
	JoinFullOuter  JoinSide = "FULL OUTER"
)

// Query 渲染之后的结果，交给 storage 执行
type Query struct {
	SQL    string
	Params map[string]any
}

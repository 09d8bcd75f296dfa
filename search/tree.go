package search

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/coderi421/mapper/mapper"
	"github.com/coderi421/mapper/query"
	"github.com/coderi421/mapper/record"
	"github.com/coderi421/mapper/storage"
)

// aliasSeparator 结果里面列的别名是 <storeKey>____<字段名>
const aliasSeparator = "____"

// node 参与查询的一张表
type node struct {
	// storeKey 查询里面的表名
	storeKey string
	// knownAs 父记录上面外键的名字，也是父记录里面放子记录的字段
	knownAs string
	// parent 父节点的下标，根节点是 -1
	parent int
	// path 从根节点到自己的 storeKey
	path   []string
	mapper mapper.Mapper
}

// tree 用下标代替指针，storeKey 到下标的索引
type tree struct {
	nodes []*node
	index map[string]int
}

func newTree(root mapper.Mapper) *tree {
	t := &tree{
		index: make(map[string]int, 4),
	}
	t.nodes = append(t.nodes, &node{
		storeKey: root.Alias(),
		knownAs:  root.Alias(),
		parent:   -1,
		path:     []string{root.Alias()},
		mapper:   root,
	})
	t.index[root.Alias()] = 0
	return t
}

func (t *tree) get(storeKey string) (*node, bool) {
	i, ok := t.index[storeKey]
	if !ok {
		return nil, false
	}
	return t.nodes[i], true
}

// add 已经存在的 storeKey 不会重复添加
func (t *tree) add(storeKey, knownAs string, parent *node, m mapper.Mapper) *node {
	if n, ok := t.get(storeKey); ok {
		return n
	}
	n := &node{
		storeKey: storeKey,
		knownAs:  knownAs,
		parent:   t.index[parent.storeKey],
		path:     append(append([]string(nil), parent.path...), storeKey),
		mapper:   m,
	}
	t.index[storeKey] = len(t.nodes)
	t.nodes = append(t.nodes, n)
	return n
}

// columns 所有节点的所有列
func (t *tree) columns(b *query.Builder) error {
	for _, n := range t.nodes {
		for _, f := range n.mapper.Model().Relations() {
			if err := b.AddColumn(n.storeKey, f.ColName, n.storeKey+aliasSeparator+f.Name, query.AggNone); err != nil {
				return err
			}
		}
	}
	return nil
}

// values 这个节点在一行里面的值，第二个返回值表示全部为空，例如 LEFT JOIN 没有匹配上
func (n *node) values(row storage.Row) (map[string]any, bool) {
	fields := n.mapper.Model().Relations()
	res := make(map[string]any, len(fields))
	empty := true
	for _, f := range fields {
		val, ok := row[n.storeKey+aliasSeparator+f.Name]
		if !ok {
			continue
		}
		res[f.Name] = val
		if val != nil {
			empty = false
		}
	}
	return res, empty
}

// identity 主键的值，没有主键的时候每一行都是一个新的 record
func (n *node) identity(vals map[string]any, line int) string {
	pks := n.mapper.PrimaryKeys()
	if len(pks) == 0 {
		return "#" + strconv.Itoa(line)
	}
	parts := make([]string, 0, len(pks))
	for _, pk := range pks {
		parts = append(parts, fmt.Sprint(vals[pk]))
	}
	return strings.Join(parts, "|")
}

// fill 每一行按照节点拆开，主键相同的 record 只创建一次，
// 子记录挂到父记录名为 knownAs 的数组字段上面
func (t *tree) fill(rows []storage.Row) ([]*record.Record, error) {
	res := make([]*record.Record, 0, len(rows))
	seen := make(map[string]*record.Record, len(rows))
	for line, row := range rows {
		recs := make([]*record.Record, len(t.nodes))
		ids := make([]string, len(t.nodes))
		for i, n := range t.nodes {
			var parent *record.Record
			prefix := ""
			if n.parent >= 0 {
				if parent = recs[n.parent]; parent == nil {
					continue
				}
				prefix = ids[n.parent] + "/"
			}
			vals, empty := n.values(row)
			if parent != nil && empty {
				continue
			}
			ids[i] = prefix + n.storeKey + "=" + n.identity(vals, line)
			if rec, ok := seen[ids[i]]; ok {
				recs[i] = rec
				continue
			}
			rec, err := n.mapper.NewRecord()
			if err != nil {
				return nil, err
			}
			if err = mapper.FillRecord(rec, vals); err != nil {
				return nil, err
			}
			seen[ids[i]] = rec
			recs[i] = rec
			if parent == nil {
				res = append(res, rec)
				continue
			}
			if err = attach(parent, n.knownAs, rec); err != nil {
				return nil, err
			}
		}
	}
	return res, nil
}

// attach 父记录没有对应的数组字段的时候什么都不做
func attach(parent *record.Record, name string, child *record.Record) error {
	e, err := parent.Entry(name)
	if err != nil || e.Type() != record.TypeArray {
		return nil
	}
	cur, _ := parent.Get(name)
	children, _ := cur.([]*record.Record)
	return parent.Fill(name, append(children, child))
}

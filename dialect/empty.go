package dialect

import "github.com/coderi421/mapper/query"

// Empty 给不使用 SQL 的存储，例如注册表、文件
// 什么都不渲染，也没有 join
type Empty struct{}

func NewEmpty() Empty {
	return Empty{}
}

func (Empty) Name() string {
	return "empty"
}

func (Empty) Insert(*query.Builder) (string, error) {
	return "", nil
}

func (Empty) Update(*query.Builder) (string, error) {
	return "", nil
}

func (Empty) Delete(*query.Builder) (string, error) {
	return "", nil
}

func (Empty) Select(*query.Builder) (string, error) {
	return "", nil
}

func (Empty) Describe(*query.Builder) (string, error) {
	return "", nil
}

func (Empty) AvailableJoins() []query.JoinSide {
	return []query.JoinSide{}
}

func (Empty) TranslateOperation(query.Operation) (string, error) {
	return "", nil
}

func (Empty) TranslateKey(query.Operation, []string) (string, error) {
	return "", nil
}

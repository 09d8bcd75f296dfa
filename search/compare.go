package search

import (
	"regexp"
	"strings"

	"github.com/coderi421/mapper/internal/conv"
	"github.com/coderi421/mapper/internal/errs"
	"github.com/coderi421/mapper/query"
)

// checkCondition value 是 record 里面的值，expected 是条件里面的值
func checkCondition(op query.Operation, value, expected any) (bool, error) {
	switch op {
	case query.OpNull:
		return value == nil, nil
	case query.OpNotNull:
		return value != nil, nil
	case query.OpEQ:
		return equal(value, expected), nil
	case query.OpNEQ:
		return !equal(value, expected), nil
	case query.OpGT:
		return compare(value, expected) > 0, nil
	case query.OpGTE:
		return compare(value, expected) >= 0, nil
	case query.OpLT:
		return compare(value, expected) < 0, nil
	case query.OpLTE:
		return compare(value, expected) <= 0, nil
	case query.OpLike:
		return like(conv.String(value), conv.String(expected))
	case query.OpNotLike:
		ok, err := like(conv.String(value), conv.String(expected))
		return !ok, err
	case query.OpRegexp:
		pattern := conv.String(expected)
		re, err := regexp.Compile(pattern)
		if err != nil {
			return false, errs.NewErrInvalidPattern(pattern, err)
		}
		return re.MatchString(conv.String(value)), nil
	case query.OpIn:
		return contains(value, expected), nil
	case query.OpNotIn:
		return !contains(value, expected), nil
	}
	return false, errs.NewErrUnknownOperation(string(op))
}

func contains(value, list any) bool {
	items, _ := list.([]any)
	for _, item := range items {
		if equal(value, item) {
			return true
		}
	}
	return false
}

func equal(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	x, xok := conv.Number(a)
	y, yok := conv.Number(b)
	if xok && yok {
		return x == y
	}
	return conv.String(a) == conv.String(b)
}

// compare 都是数字的时候按照数字比较，否则按照字符串比较；nil 最小
func compare(a, b any) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}
	x, xok := conv.Number(a)
	y, yok := conv.Number(b)
	if xok && yok {
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		}
		return 0
	}
	return strings.Compare(conv.String(a), conv.String(b))
}

// like 没有通配符的时候是包含关系，% 和 _ 和 SQL 里面一样，不区分大小写
func like(value, pattern string) (bool, error) {
	if !strings.ContainsAny(pattern, "%_") {
		return strings.Contains(strings.ToLower(value), strings.ToLower(pattern)), nil
	}
	var sb strings.Builder
	sb.WriteString("(?is)^")
	for _, r := range pattern {
		switch r {
		case '%':
			sb.WriteString(".*")
		case '_':
			sb.WriteByte('.')
		default:
			sb.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	sb.WriteByte('$')
	re, err := regexp.Compile(sb.String())
	if err != nil {
		return false, errs.NewErrInvalidPattern(pattern, err)
	}
	return re.MatchString(value), nil
}

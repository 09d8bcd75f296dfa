package querylog

import (
	"context"
	"encoding/json"
	"log"
	"sort"
	"time"

	"github.com/coderi421/mapper/storage"
	"github.com/google/uuid"
)

type MiddlewareBuilder struct {
	logFunc func(log string)
}

// NewBuilder 默认使用 log.Println 输出
func NewBuilder() *MiddlewareBuilder {
	return &MiddlewareBuilder{
		logFunc: func(l string) {
			log.Println(l)
		},
	}
}

// LogFunc 每一条语句输出一行 json
func (m *MiddlewareBuilder) LogFunc(fn func(log string)) *MiddlewareBuilder {
	m.logFunc = fn
	return m
}

func (m *MiddlewareBuilder) Build() storage.Middleware {
	return func(next storage.Handler) storage.Handler {
		return func(ctx context.Context, qc *storage.QueryContext) *storage.QueryResult {
			start := time.Now()
			res := next(ctx, qc)
			l := queryLog{
				ID:       uuid.NewString(),
				Source:   qc.Source,
				Type:     qc.Type,
				SQL:      qc.Query.SQL,
				Params:   paramKeys(qc.Query.Params),
				Duration: time.Since(start).String(),
			}
			if res.Err != nil {
				l.Error = res.Err.Error()
			}
			data, _ := json.Marshal(l)
			m.logFunc(string(data))
			return res
		}
	}
}

// paramKeys 只记录参数名，不记录值
func paramKeys(params map[string]any) []string {
	if len(params) == 0 {
		return nil
	}
	res := make([]string, 0, len(params))
	for k := range params {
		res = append(res, k)
	}
	sort.Strings(res)
	return res
}

type queryLog struct {
	ID       string   `json:"id"`
	Source   string   `json:"source,omitempty"`
	Type     string   `json:"type,omitempty"`
	SQL      string   `json:"sql"`
	Params   []string `json:"params,omitempty"`
	Duration string   `json:"duration"`
	Error    string   `json:"error,omitempty"`
}

package recover

import (
	"context"

	"github.com/coderi421/mapper/internal/errs"
	"github.com/coderi421/mapper/storage"
)

// MiddlewareBuilder 把 driver 里面的 panic 转换成 error
// 一般放在最外层
type MiddlewareBuilder struct {
	LogFunc func(qc *storage.QueryContext, err any)
}

func (m *MiddlewareBuilder) Build() storage.Middleware {
	return func(next storage.Handler) storage.Handler {
		return func(ctx context.Context, qc *storage.QueryContext) (res *storage.QueryResult) {
			defer func() {
				if r := recover(); r != nil {
					res = &storage.QueryResult{Err: errs.NewErrPanic(r)}
					// 万一 LogFunc 也panic，那我们也无能为力了
					if m.LogFunc != nil {
						m.LogFunc(qc, r)
					}
				}
			}()
			return next(ctx, qc)
		}
	}
}

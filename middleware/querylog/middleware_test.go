package querylog

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/coderi421/mapper/query"
	"github.com/coderi421/mapper/storage"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddlewareBuilder(t *testing.T) {
	testCases := []struct {
		name    string
		err     error
		wantLog queryLog
	}{
		{
			name: "ok",
			wantLog: queryLog{
				Source: "mysql1",
				Type:   "SELECT",
				SQL:    "SELECT * FROM `kmpt` WHERE `kmpt_name` = :kmpt_name_0 AND `kmpt_id` > :kmpt_id_1;",
				Params: []string{":kmpt_id_1", ":kmpt_name_0"},
			},
		},
		{
			name: "error",
			err:  errors.New("gone away"),
			wantLog: queryLog{
				Source: "mysql1",
				Type:   "SELECT",
				SQL:    "SELECT * FROM `kmpt` WHERE `kmpt_name` = :kmpt_name_0 AND `kmpt_id` > :kmpt_id_1;",
				Params: []string{":kmpt_id_1", ":kmpt_name_0"},
				Error:  "gone away",
			},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var line string
			mdl := NewBuilder().LogFunc(func(log string) {
				line = log
			}).Build()
			h := mdl(func(ctx context.Context, qc *storage.QueryContext) *storage.QueryResult {
				return &storage.QueryResult{Err: tc.err}
			})
			res := h(context.Background(), &storage.QueryContext{
				Type:   "SELECT",
				Source: "mysql1",
				Query: &query.Query{
					SQL:    "SELECT * FROM `kmpt` WHERE `kmpt_name` = :kmpt_name_0 AND `kmpt_id` > :kmpt_id_1;",
					Params: map[string]any{":kmpt_name_0": "Alice", ":kmpt_id_1": 3},
				},
			})
			assert.Equal(t, tc.err, res.Err)

			var got queryLog
			require.NoError(t, json.Unmarshal([]byte(line), &got))
			_, err := uuid.Parse(got.ID)
			assert.NoError(t, err)
			assert.NotEmpty(t, got.Duration)
			got.ID, got.Duration = "", ""
			assert.Equal(t, tc.wantLog, got)
			// 值不会出现在日志里面
			assert.NotContains(t, line, "Alice")
		})
	}
}

package query

import (
	"testing"

	"github.com/coderi421/mapper/internal/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilder_AddCondition(t *testing.T) {
	testCases := []struct {
		name       string
		op         Operation
		val        any
		wantKeys   []string
		wantParams map[string]any
		wantErr    error
	}{
		{
			name:       "eq",
			op:         OpEQ,
			val:        "Alice",
			wantKeys:   []string{":kmpt_name_0"},
			wantParams: map[string]any{":kmpt_name_0": "Alice"},
		},
		{
			name:       "null",
			op:         OpNull,
			wantParams: map[string]any{},
		},
		{
			name:       "not null ignores value",
			op:         OpNotNull,
			val:        12,
			wantParams: map[string]any{},
		},
		{
			name:     "in",
			op:       OpIn,
			val:      []int{3, 5, 7},
			wantKeys: []string{":kmpt_name_0", ":kmpt_name_1", ":kmpt_name_2"},
			wantParams: map[string]any{
				":kmpt_name_0": 3,
				":kmpt_name_1": 5,
				":kmpt_name_2": 7,
			},
		},
		{
			name:       "empty in",
			op:         OpNotIn,
			val:        []string{},
			wantKeys:   []string{},
			wantParams: map[string]any{},
		},
		{
			name:    "in without list",
			op:      OpIn,
			val:     3,
			wantErr: errs.NewErrInvalidListValue("IN", 3),
		},
		{
			name:    "unknown operation",
			op:      Operation("BETWEEN"),
			val:     3,
			wantErr: errs.NewErrUnknownOperation("BETWEEN"),
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			b := NewBuilder().SetBaseTable("kmpt")
			err := b.AddCondition("kmpt", "kmpt_name", tc.op, tc.val)
			assert.Equal(t, tc.wantErr, err)
			if err != nil {
				assert.Empty(t, b.Conditions())
				return
			}
			require.Len(t, b.Conditions(), 1)
			c := b.Conditions()[0]
			assert.Equal(t, tc.op, c.Operation)
			assert.Equal(t, tc.wantKeys, c.Keys)
			assert.Equal(t, tc.wantParams, b.Params())
		})
	}
}

func TestBuilder_UniqueKeys(t *testing.T) {
	b := NewBuilder()
	require.NoError(t, b.AddCondition("", "id", OpGTE, 2))
	require.NoError(t, b.AddCondition("", "id", OpLTE, 5))
	require.NoError(t, b.AddHavingCondition("", "id", OpNEQ, 4))
	b.AddProperty("", "id", 9)

	keys := map[string]struct{}{}
	for _, c := range append(b.Conditions(), b.Having()...) {
		for _, k := range c.Keys {
			keys[k] = struct{}{}
		}
	}
	for _, p := range b.Properties() {
		keys[p.Key] = struct{}{}
	}
	assert.Len(t, keys, 4)
	assert.Equal(t, map[string]any{
		":id_0": 2,
		":id_1": 5,
		":id_2": 4,
		":id_3": 9,
	}, b.Params())
}

func TestBuilder_ParamName(t *testing.T) {
	b := NewBuilder()
	b.AddProperty("", "first-name.x", "a")
	assert.Equal(t, ":first_name_x_0", b.Properties()[0].Key)
}

func TestBuilder_Clear(t *testing.T) {
	b := NewBuilder().SetBaseTable("foo").SetRelations(OR).SetLimits(2, 3)
	require.NoError(t, b.AddColumn("foo", "bar", "", AggNone))
	require.NoError(t, b.AddCondition("foo", "bar", OpEQ, 1))

	b.Clear()
	assert.Equal(t, "", b.BaseTable())
	assert.Empty(t, b.Columns())
	assert.Empty(t, b.Conditions())
	assert.Empty(t, b.Params())
	assert.Equal(t, AND, b.Relation())
	_, ok := b.Limit()
	assert.False(t, ok)

	// 计数器不会被清空
	require.NoError(t, b.AddCondition("foo", "bar", OpEQ, 1))
	assert.Equal(t, []string{":bar_1"}, b.Conditions()[0].Keys)

	b.ResetCounter()
	b.AddProperty("foo", "bar", 2)
	assert.Equal(t, ":bar_0", b.Properties()[0].Key)
}

func TestBuilder_Clone(t *testing.T) {
	b := NewBuilder().SetBaseTable("foo").SetLimit(10)
	require.NoError(t, b.AddCondition("foo", "bar", OpIn, []int{1, 2}))
	require.NoError(t, b.AddOrderBy("foo", "bar", DESC))

	c := b.Clone()
	c.ClearOrdering().ClearLimits()
	require.NoError(t, c.AddCondition("foo", "baz", OpEQ, 3))
	c.Conditions()[0].Keys[0] = "changed"

	assert.Len(t, b.Conditions(), 1)
	assert.Equal(t, []string{":bar_0", ":bar_1"}, b.Conditions()[0].Keys)
	assert.Len(t, b.Ordering(), 1)
	limit, ok := b.Limit()
	assert.True(t, ok)
	assert.Equal(t, 10, limit)
	assert.NotContains(t, b.Params(), ":baz_2")

	// 共享计数器
	assert.Equal(t, []string{":baz_2"}, c.Conditions()[1].Keys)
	require.NoError(t, b.AddCondition("foo", "baz", OpEQ, 4))
	assert.Equal(t, []string{":baz_3"}, b.Conditions()[1].Keys)
}

func TestBuilder_AddJoin(t *testing.T) {
	testCases := []struct {
		name    string
		opts    []BuilderOption
		side    JoinSide
		wantErr error
	}{
		{
			name: "no restriction",
			side: JoinFullOuter,
		},
		{
			name: "available",
			opts: []BuilderOption{WithAvailableJoins(JoinInner, JoinLeft)},
			side: JoinLeft,
		},
		{
			name:    "unavailable",
			opts:    []BuilderOption{WithAvailableJoins(JoinInner, JoinLeft)},
			side:    JoinRight,
			wantErr: errs.NewErrUnavailableJoin("RIGHT"),
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			b := NewBuilder(tc.opts...)
			err := b.AddJoin("owner", "users", "id", "posts", "owner_id", tc.side, "u")
			assert.Equal(t, tc.wantErr, err)
			if err != nil {
				return
			}
			assert.Equal(t, []Join{{
				Alias:       "owner",
				NewTable:    "users",
				NewColumn:   "id",
				KnownTable:  "posts",
				KnownColumn: "owner_id",
				Side:        tc.side,
				TableAlias:  "u",
			}}, b.Joins())
			assert.Equal(t, "u", b.Joins()[0].Target())
		})
	}
}

func TestBuilder_Validation(t *testing.T) {
	b := NewBuilder()
	assert.Equal(t, errs.NewErrUnknownAggregate("MEDIAN"), b.AddColumn("", "a", "", Aggregate("MEDIAN")))
	assert.Equal(t, errs.NewErrUnknownDirection("UP"), b.AddOrderBy("", "a", Direction("UP")))

	b.SetRelations(Relation("XOR"))
	assert.Equal(t, AND, b.Relation())
	b.SetRelations(OR)
	assert.Equal(t, OR, b.Relation())
}

func TestBuilder_AddRawCondition(t *testing.T) {
	b := NewBuilder()
	b.AddRawCondition("age > :age_min", map[string]any{"age_min": 18, ":other": 1})
	require.Len(t, b.Conditions(), 1)
	assert.True(t, b.Conditions()[0].IsRaw())
	assert.Equal(t, map[string]any{":age_min": 18, ":other": 1}, b.Params())
}

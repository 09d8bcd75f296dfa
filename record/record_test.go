package record

import (
	"context"
	"errors"
	"testing"

	"github.com/coderi421/mapper/internal/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type jsonObject struct {
	content map[string]any
}

func (j *jsonObject) FillData(data any) error {
	if data == nil {
		j.content = nil
		return nil
	}
	m, ok := data.(map[string]any)
	if !ok {
		return errors.New("not a map")
	}
	j.content = make(map[string]any, len(m))
	for k, v := range m {
		j.content[k] = v
	}
	return nil
}

func (j *jsonObject) DumpData() any {
	return j.content
}

func newTestRecord(t *testing.T, opts ...Option) *Record {
	r := New(opts...)
	require.NoError(t, r.AddEntry("id", TypeInteger, 512))
	require.NoError(t, r.AddEntry("name", TypeString, 10))
	require.NoError(t, r.AddEntry("enabled", TypeBoolean, nil))
	require.NoError(t, r.AddEntry("children", TypeArray, nil))
	require.NoError(t, r.AddEntry("extra", TypeObject, FillerFactory(func() Filler {
		return &jsonObject{}
	})))
	return r
}

func TestRecord_Set(t *testing.T) {
	testCases := []struct {
		name    string
		key     string
		val     any
		want    any
		wantErr error
	}{
		{
			name: "integer",
			key:  "id",
			val:  int32(12),
			want: int64(12),
		},
		{
			name: "integer nil",
			key:  "id",
			want: nil,
		},
		{
			name:    "integer from string",
			key:     "id",
			val:     "12",
			wantErr: errs.NewErrInvalidValue("number", "id"),
		},
		{
			name:    "integer too large",
			key:     "id",
			val:     513,
			wantErr: errs.NewErrTooLarge(int64(513), int64(512)),
		},
		{
			name: "string",
			key:  "name",
			val:  "žluťoučký",
			want: "žluťoučký",
		},
		{
			name:    "string too long",
			key:     "name",
			val:     "abcdefghijk",
			wantErr: errs.NewErrTooLong(11, 10),
		},
		{
			name:    "string from number",
			key:     "name",
			val:     5,
			wantErr: errs.NewErrInvalidValue("string", "name"),
		},
		{
			name: "boolean",
			key:  "enabled",
			val:  true,
			want: true,
		},
		{
			name:    "boolean from number",
			key:     "enabled",
			val:     1,
			wantErr: errs.NewErrInvalidValue("boolean", "enabled"),
		},
		{
			name: "array",
			key:  "children",
			val:  []*Record{New()},
			want: []*Record{New()},
		},
		{
			name:    "array nil",
			key:     "children",
			wantErr: errs.NewErrInvalidValue("array of records", "children"),
		},
		{
			name:    "array of strings",
			key:     "children",
			val:     []string{"a"},
			wantErr: errs.NewErrInvalidValue("array of records", "children"),
		},
		{
			name: "object",
			key:  "extra",
			val:  map[string]any{"a": 1},
			want: map[string]any{"a": 1},
		},
		{
			name:    "unknown key",
			key:     "surname",
			val:     "x",
			wantErr: errs.NewErrUnknownKey("surname"),
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			r := newTestRecord(t)
			err := r.Set(tc.key, tc.val)
			assert.Equal(t, tc.wantErr, err)
			if err != nil {
				return
			}
			got, err := r.Get(tc.key)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestRecord_Strict(t *testing.T) {
	r := New()
	assert.Equal(t, errs.NewErrUnknownType(int(TypeFloat)), r.AddEntry("price", TypeFloat, 10.5))
	assert.Equal(t, errs.NewErrUnknownType(int(TypeSet)), r.AddEntry("color", TypeSet, []string{"red"}))

	r = New(WithStrict())
	require.NoError(t, r.AddEntry("price", TypeFloat, 10.5))
	require.NoError(t, r.AddEntry("color", TypeSet, []string{"red", "blue"}))

	require.NoError(t, r.Set("price", 3))
	got, err := r.Get("price")
	require.NoError(t, err)
	assert.Equal(t, float64(3), got)
	assert.Equal(t, errs.NewErrTooLarge(10.6, 10.5), r.Set("price", 10.6))
	assert.Equal(t, errs.NewErrInvalidValue("number", "price"), r.Set("price", "cheap"))

	require.NoError(t, r.Set("color", "blue"))
	assert.Equal(t, errs.NewErrNotInPreset("green"), r.Set("color", "green"))
	assert.Equal(t, errs.NewErrNotInPreset(1), r.Set("color", 1))
}

func TestRecord_AddEntry(t *testing.T) {
	testCases := []struct {
		name    string
		typ     Type
		param   any
		wantErr error
	}{
		{
			name:  "integer",
			typ:   TypeInteger,
			param: 10,
		},
		{
			name:    "integer without size",
			typ:     TypeInteger,
			param:   "ten",
			wantErr: errs.NewErrInvalidDefault(int(TypeInteger), "length as number"),
		},
		{
			name:    "object without factory",
			typ:     TypeObject,
			param:   "jsonObject",
			wantErr: errs.NewErrInvalidDefault(int(TypeObject), "filler factory"),
		},
		{
			name:    "unknown",
			typ:     Type(42),
			wantErr: errs.NewErrUnknownType(42),
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := New().AddEntry("x", tc.typ, tc.param)
			assert.Equal(t, tc.wantErr, err)
		})
	}
}

func TestRecord_FromStorage(t *testing.T) {
	r := newTestRecord(t)
	e, err := r.Entry("id")
	require.NoError(t, err)
	assert.False(t, e.IsSet())
	assert.False(t, e.IsFromStorage())

	require.NoError(t, r.Fill("id", int64(5)))
	assert.True(t, e.IsFromStorage())

	require.NoError(t, r.Set("id", 6))
	assert.False(t, e.IsFromStorage())

	require.NoError(t, r.Set("name", "abc"))
	r.MarkStored()
	assert.True(t, e.IsFromStorage())
	name, err := r.Entry("name")
	require.NoError(t, err)
	assert.True(t, name.IsFromStorage())
	enabled, err := r.Entry("enabled")
	require.NoError(t, err)
	assert.False(t, enabled.IsFromStorage())
}

func TestRecord_Clone(t *testing.T) {
	r := newTestRecord(t)
	require.NoError(t, r.Set("id", 1))
	require.NoError(t, r.Set("extra", map[string]any{"a": 1}))
	child := New()
	require.NoError(t, r.Set("children", []*Record{child}))

	c, err := r.Clone()
	require.NoError(t, err)
	require.NoError(t, c.Set("id", 2))
	require.NoError(t, c.Set("extra", map[string]any{"b": 2}))
	children, err := c.Get("children")
	require.NoError(t, err)
	children.([]*Record)[0] = nil

	assert.Equal(t, map[string]any{
		"id":       int64(1),
		"name":     nil,
		"enabled":  nil,
		"children": []*Record{child},
		"extra":    map[string]any{"a": 1},
	}, r.Values())
	assert.Equal(t, r.Names(), c.Names())
}

func TestRecord_Remove(t *testing.T) {
	r := newTestRecord(t)
	assert.Equal(t, errs.NewErrKeyRemovalDenied("id"), r.Remove("id"))
	assert.Equal(t, errs.NewErrUnknownKey("foo"), r.Remove("foo"))
	assert.Equal(t, []string{"id", "name", "enabled", "children", "extra"}, r.Names())
}

type mockMapper struct {
	saved       int
	forceInsert bool
}

func (m *mockMapper) Save(ctx context.Context, r *Record, forceInsert bool) (bool, error) {
	m.saved++
	m.forceInsert = forceInsert
	return true, nil
}

func (m *mockMapper) Load(ctx context.Context, r *Record) (bool, error) {
	return false, nil
}

func (m *mockMapper) Delete(ctx context.Context, r *Record) (bool, error) {
	return true, nil
}

func TestRecord_Mapper(t *testing.T) {
	r := newTestRecord(t)
	_, err := r.Save(context.Background(), false)
	assert.Equal(t, errs.ErrUnknownMapper, err)
	_, err = r.Load(context.Background())
	assert.Equal(t, errs.ErrUnknownMapper, err)

	m := &mockMapper{}
	r.SetMapper(m)
	ok, err := r.Save(context.Background(), true)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, m.forceInsert)
	ok, err = r.Load(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
	ok, err = r.Delete(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
}

package model

import (
	"reflect"
	"testing"

	"github.com/coderi421/mapper/internal/errs"
	"github.com/coderi421/mapper/record"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type TestModel struct {
	ID        int64  `mapper:"column=kmpt_id,pk"`
	FirstName string `mapper:"column=kmpt_name,size=64"`
	Age       int8
	Nickname  *string
	Price     float64 `mapper:"size=1000"`
	Color     string  `mapper:"type=set,values=red|blue"`
	Internal  string  `mapper:"-"`
	hidden    int
}

func (t TestModel) SourceName() string {
	return "mysql1"
}

type Payload struct {
	Data map[string]any
}

func (p *Payload) FillData(data any) error {
	p.Data, _ = data.(map[string]any)
	return nil
}

func (p *Payload) DumpData() any {
	return p.Data
}

type WithObject struct {
	Key     string   `mapper:"pk"`
	Payload *Payload `mapper:"name=content"`
}

func (w *WithObject) TableName() string {
	return "objects_t"
}

func TestRegistry_Get(t *testing.T) {
	testCases := []struct {
		name      string
		val       any
		wantModel *Model
		wantErr   error
	}{
		{
			name:    "struct",
			val:     TestModel{},
			wantErr: errs.ErrPointerOnly,
		},
		{
			name:    "map",
			val:     map[string]string{},
			wantErr: errs.ErrPointerOnly,
		},
		{
			name:    "nil",
			val:     nil,
			wantErr: errs.ErrPointerOnly,
		},
		{
			name: "pointer",
			val:  &TestModel{},
			wantModel: func() *Model {
				m := newModel("test_model", 8)
				m.Source = "mysql1"
				m.PrimaryKeys = []string{"id"}
				m.addField(&Field{Name: "id", ColName: "kmpt_id", GoName: "ID", Type: reflect.TypeOf(int64(0)), EntryType: record.TypeInteger, Param: 0})
				m.addField(&Field{Name: "first_name", ColName: "kmpt_name", GoName: "FirstName", Type: reflect.TypeOf(""), EntryType: record.TypeString, Param: 64})
				m.addField(&Field{Name: "age", ColName: "age", GoName: "Age", Type: reflect.TypeOf(int8(0)), EntryType: record.TypeInteger, Param: 0})
				m.addField(&Field{Name: "nickname", ColName: "nickname", GoName: "Nickname", Type: reflect.TypeOf((*string)(nil)), EntryType: record.TypeString, Param: 0})
				m.addField(&Field{Name: "price", ColName: "price", GoName: "Price", Type: reflect.TypeOf(float64(0)), EntryType: record.TypeFloat, Param: float64(1000)})
				m.addField(&Field{Name: "color", ColName: "color", GoName: "Color", Type: reflect.TypeOf(""), EntryType: record.TypeSet, Param: []string{"red", "blue"}})
				return m
			}(),
		},
	}

	r := NewRegistry()
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			m, err := r.Get(tc.val)
			assert.Equal(t, tc.wantErr, err)
			if err != nil {
				return
			}
			assert.Equal(t, tc.wantModel, m)

			// 第二次从缓存里面拿
			again, err := r.Get(tc.val)
			require.NoError(t, err)
			assert.Same(t, m, again)
		})
	}
}

func TestRegistry_Object(t *testing.T) {
	m, err := NewRegistry().Get(&WithObject{})
	require.NoError(t, err)
	assert.Equal(t, "objects_t", m.TableName)
	assert.Equal(t, []string{"key", "content"}, m.Names())
	assert.Equal(t, []string{"key"}, m.PrimaryKeys)
	assert.Equal(t, record.TypeObject, m.NameMap["content"].EntryType)

	f := m.NameMap["content"].Param.(record.FillerFactory)()
	assert.IsType(t, &Payload{}, f)
}

func TestRegistry_InvalidTag(t *testing.T) {
	testCases := []struct {
		name    string
		val     any
		wantErr error
	}{
		{
			name: "no value",
			val: &struct {
				ID int `mapper:"column"`
			}{},
			wantErr: errs.NewErrInvalidTagContent("column"),
		},
		{
			name: "bad size",
			val: &struct {
				Name string `mapper:"size=long"`
			}{},
			wantErr: errs.NewErrInvalidTagContent("size=long"),
		},
		{
			name: "bad type",
			val: &struct {
				Name string `mapper:"type=uuid"`
			}{},
			wantErr: errs.NewErrInvalidTagContent("type=uuid"),
		},
		{
			name: "unsupported",
			val: &struct {
				Tags map[string]string
			}{},
			wantErr: errs.NewErrUnsupportedFieldType("", reflect.Map),
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewRegistry().Register(tc.val)
			assert.Equal(t, tc.wantErr, err)
		})
	}
}

func TestWithColumnName(t *testing.T) {
	testCases := []struct {
		name        string
		opt         Option
		field       string
		wantColName string
		wantErr     error
	}{
		{
			name:        "new name",
			opt:         WithColumnName("FirstName", "first_name_new"),
			field:       "FirstName",
			wantColName: "first_name_new",
		},
		{
			// 不存在的字段
			name:    "invalid Field name",
			opt:     WithColumnName("FirstNameXXX", "first_name"),
			wantErr: errs.NewErrUnknownField("FirstNameXXX"),
		},
	}
	r := NewRegistry()
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			m, err := r.Register(&TestModel{}, tc.opt)
			assert.Equal(t, tc.wantErr, err)
			if err != nil {
				return
			}
			fd := m.FieldMap[tc.field]
			assert.Equal(t, tc.wantColName, fd.ColName)
			assert.Same(t, fd, m.ColumnMap[tc.wantColName])
			_, ok := m.ColumnMap["kmpt_name"]
			assert.False(t, ok)
		})
	}
}

func TestWithPrimaryKeys(t *testing.T) {
	m, err := New("kmpt",
		WithSource("mysql1"),
		WithField("id", "kmpt_id", record.TypeInteger, 0),
		WithField("name", "kmpt_name", record.TypeString, 64),
		WithPrimaryKeys("id"))
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "name"}, m.Names())
	col, ok := m.Relation("name")
	assert.True(t, ok)
	assert.Equal(t, "kmpt_name", col)
	assert.True(t, m.IsPrimaryKey("id"))
	assert.False(t, m.IsPrimaryKey("name"))

	_, err = New("kmpt", WithField("id", "kmpt_id", record.TypeInteger, 0), WithPrimaryKeys("uid"))
	assert.Equal(t, errs.NewErrUnknownPrimaryKey("uid"), err)
}

func TestUnderscoreName(t *testing.T) {
	testCases := map[string]string{
		"UserName": "user_name",
		"ID":       "id",
		"UserID":   "user_id",
		"HTTPCode": "http_code",
		"age":      "age",
	}
	for in, want := range testCases {
		assert.Equal(t, want, underscoreName(in), in)
	}
}

package record

import (
	"encoding"
	"fmt"
	"reflect"
	"sort"
	"time"

	"github.com/gear6io/mtgapi/pkg/errors"
	"github.com/go-viper/mapstructure/v2"
)

var RecordDecodeFailed = errors.MustNewCode("record.decode_failed")

// Row is an ordered column -> value mapping.
type Row struct {
	columns []string
	values  map[string]any
}

func NewRow() *Row {
	return &Row{values: make(map[string]any)}
}

// RowFromMap builds a row from m with columns in lexical order.
func RowFromMap(m map[string]any) *Row {
	row := &Row{values: make(map[string]any, len(m))}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		row.Set(k, m[k])
	}
	return row
}

// Set assigns a column, appending it if it is new.
func (r *Row) Set(column string, value any) {
	if r.values == nil {
		r.values = make(map[string]any)
	}
	if _, ok := r.values[column]; !ok {
		r.columns = append(r.columns, column)
	}
	r.values[column] = value
}

func (r *Row) Get(column string) (any, bool) {
	v, ok := r.values[column]
	return v, ok
}

// Value is Get without the presence flag; missing columns read as nil.
func (r *Row) Value(column string) any {
	return r.values[column]
}

func (r *Row) Len() int {
	return len(r.columns)
}

func (r *Row) Columns() []string {
	columns := make([]string, len(r.columns))
	copy(columns, r.columns)
	return columns
}

func (r *Row) Values() []any {
	values := make([]any, len(r.columns))
	for i, c := range r.columns {
		values[i] = r.values[c]
	}
	return values
}

func (r *Row) Map() map[string]any {
	m := make(map[string]any, len(r.values))
	for k, v := range r.values {
		m[k] = v
	}
	return m
}

// Decode fills target, a pointer to a struct, from the row. Struct fields are
// matched by their json tag.
func (r *Row) Decode(target any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target,
		TagName:          "json",
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			scalarToTextHook,
			mapstructure.TextUnmarshallerHookFunc(),
			mapstructure.StringToTimeHookFunc(time.RFC3339Nano),
		),
	})
	if err != nil {
		return errors.New(RecordDecodeFailed, "failed to build row decoder", err)
	}

	if err := decoder.Decode(r.Map()); err != nil {
		return errors.New(RecordDecodeFailed, "failed to decode row", err)
	}
	return nil
}

var textUnmarshalerType = reflect.TypeOf((*encoding.TextUnmarshaler)(nil)).Elem()

// scalarToTextHook renders numbers and booleans as text when the target
// decodes itself from text, so stored values like 3 or "X" both reach
// UnmarshalText.
func scalarToTextHook(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
	if !reflect.PointerTo(to).Implements(textUnmarshalerType) {
		return data, nil
	}
	switch from.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64, reflect.Bool:
		return fmt.Sprint(data), nil
	default:
		return data, nil
	}
}

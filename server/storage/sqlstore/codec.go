package sqlstore

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/gear6io/mtgapi/pkg/errors"
	"github.com/gear6io/mtgapi/server/schema/table"
	"github.com/gear6io/mtgapi/server/schema/types"
)

// columnType maps a column category to its SQLite declaration. Arrays and
// structured values are kept as JSON text.
func columnType(tag types.Tag) string {
	switch tag {
	case types.Integer:
		return "INTEGER"
	case types.Text:
		return "TEXT"
	case types.Float:
		return "REAL"
	case types.Boolean:
		return "BOOLEAN"
	case types.Timestamp:
		return "TIMESTAMP"
	case types.Binary:
		return "BLOB"
	default:
		return "JSON"
	}
}

// timeLayouts are the textual timestamp forms SQLite drivers hand back.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// encodeValue converts a record value into what is written to the column.
func encodeValue(col table.ColumnDefinition, v any) (any, error) {
	if v == nil {
		return nil, nil
	}

	switch col.Type {
	case types.Array, types.Structured:
		data, err := json.Marshal(v)
		if err != nil {
			return nil, errors.New(SQLStoreEncodeFailed, "failed to encode column as JSON", err).AddContext("column", col.Name)
		}
		return string(data), nil
	case types.Binary:
		if s, ok := v.(string); ok {
			return []byte(s), nil
		}
	case types.Timestamp:
		if t, ok := v.(time.Time); ok {
			return t.UTC(), nil
		}
	}
	return v, nil
}

// decodeValue normalizes a scanned driver value back to the column category.
func decodeValue(col table.ColumnDefinition, raw any) (any, error) {
	if raw == nil {
		return nil, nil
	}

	var (
		v   any
		err error
	)
	switch col.Type {
	case types.Integer:
		v, err = toInt64(raw)
	case types.Float:
		v, err = toFloat64(raw)
	case types.Boolean:
		v, err = toBool(raw)
	case types.Text:
		v = toString(raw)
	case types.Timestamp:
		v, err = toTime(raw)
	case types.Binary:
		v = toBytes(raw)
	case types.Array:
		v, err = decodeArray(raw, col.ElementType)
	default:
		v, err = decodeJSON(raw)
	}
	if err != nil {
		return nil, errors.New(SQLStoreDecodeFailed, "failed to decode column value", err).
			AddContext("column", col.Name).
			AddContext("type", types.Format(col.Type, col.ElementType))
	}
	return v, nil
}

func decodeArray(raw any, elem types.Tag) (any, error) {
	decoded, err := decodeJSON(raw)
	if err != nil {
		return nil, err
	}

	items, ok := decoded.([]any)
	if !ok {
		return nil, fmt.Errorf("expected JSON array, got %T", decoded)
	}

	for i, item := range items {
		if item == nil {
			continue
		}
		if items[i], err = coerceElement(item, elem); err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
	}
	return items, nil
}

func coerceElement(item any, elem types.Tag) (any, error) {
	switch elem {
	case types.Integer:
		return toInt64(item)
	case types.Float:
		return toFloat64(item)
	case types.Boolean:
		return toBool(item)
	case types.Timestamp:
		return toTime(item)
	case types.Binary:
		s, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("expected base64 string, got %T", item)
		}
		return base64.StdEncoding.DecodeString(s)
	default:
		return item, nil
	}
}

func decodeJSON(raw any) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(toBytes(raw)))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return normalizeNumbers(v), nil
}

// normalizeNumbers turns json.Number into int64 when integral, float64
// otherwise.
func normalizeNumbers(v any) any {
	switch t := v.(type) {
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return n
		}
		f, _ := t.Float64()
		return f
	case []any:
		for i := range t {
			t[i] = normalizeNumbers(t[i])
		}
		return t
	case map[string]any:
		for k := range t {
			t[k] = normalizeNumbers(t[k])
		}
		return t
	default:
		return v
	}
}

func toInt64(raw any) (int64, error) {
	switch t := raw.(type) {
	case int64:
		return t, nil
	case int:
		return int64(t), nil
	case int32:
		return int64(t), nil
	case float64:
		if t != math.Trunc(t) {
			return 0, fmt.Errorf("non-integral value %v", t)
		}
		return int64(t), nil
	case bool:
		if t {
			return 1, nil
		}
		return 0, nil
	case []byte:
		return strconv.ParseInt(string(t), 10, 64)
	case string:
		return strconv.ParseInt(t, 10, 64)
	default:
		return 0, fmt.Errorf("cannot read %T as integer", raw)
	}
}

func toFloat64(raw any) (float64, error) {
	switch t := raw.(type) {
	case float64:
		return t, nil
	case float32:
		return float64(t), nil
	case int64:
		return float64(t), nil
	case int:
		return float64(t), nil
	case []byte:
		return strconv.ParseFloat(string(t), 64)
	case string:
		return strconv.ParseFloat(t, 64)
	default:
		return 0, fmt.Errorf("cannot read %T as float", raw)
	}
}

func toBool(raw any) (bool, error) {
	switch t := raw.(type) {
	case bool:
		return t, nil
	case int64:
		return t != 0, nil
	case int:
		return t != 0, nil
	case float64:
		return t != 0, nil
	case []byte:
		return strconv.ParseBool(strings.ToLower(string(t)))
	case string:
		return strconv.ParseBool(strings.ToLower(t))
	default:
		return false, fmt.Errorf("cannot read %T as boolean", raw)
	}
}

func toTime(raw any) (time.Time, error) {
	switch t := raw.(type) {
	case time.Time:
		return t.UTC(), nil
	case int64:
		return time.Unix(t, 0).UTC(), nil
	case []byte:
		return parseTime(string(t))
	case string:
		return parseTime(t)
	default:
		return time.Time{}, fmt.Errorf("cannot read %T as timestamp", raw)
	}
}

func parseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

func toString(raw any) any {
	switch t := raw.(type) {
	case []byte:
		return string(t)
	case string:
		return t
	default:
		return fmt.Sprint(t)
	}
}

func toBytes(raw any) []byte {
	switch t := raw.(type) {
	case []byte:
		return append([]byte(nil), t...)
	case string:
		return []byte(t)
	default:
		return []byte(fmt.Sprint(t))
	}
}

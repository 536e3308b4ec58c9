package formats

import (
	"io"
	"time"

	gojson "github.com/goccy/go-json"

	"github.com/ajitpratap0/tabular/pkg/errors"
	"github.com/ajitpratap0/tabular/pkg/record"
	"github.com/ajitpratap0/tabular/pkg/table"
	"github.com/ajitpratap0/tabular/pkg/value"
)

// ReadJSON parses a JSON array of row objects into a table. Native
// types map onto the value model: numbers, strings, booleans and null
// (Absent); keys absent from an object stay Unset. JSON objects carry
// no key order, so inferred columns follow the first-seen-then-
// alphabetical rule of row construction.
func ReadJSON(r io.Reader) (*table.Table, error) {
	var raw []map[string]interface{}
	if err := gojson.NewDecoder(r).Decode(&raw); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeData, "decoding json rows")
	}
	rows := make([]record.Row, len(raw))
	for i, obj := range raw {
		row := make(record.Row, len(obj))
		for k, v := range obj {
			row[k] = fromJSON(v)
		}
		rows[i] = row
	}
	return table.FromRows(rows), nil
}

func fromJSON(v interface{}) value.Value {
	switch x := v.(type) {
	case nil:
		return value.Absent()
	case float64:
		return value.Number(x)
	case string:
		return value.Text(x)
	case bool:
		return value.Bool(x)
	default:
		// Nested arrays and objects fall back to their JSON rendering.
		b, err := gojson.Marshal(x)
		if err != nil {
			return value.Absent()
		}
		return value.Text(string(b))
	}
}

// WriteJSON writes the table as a JSON array of row objects. Absent
// cells write as null, Unset cells omit the key, and timestamps
// round-trip as RFC3339Nano strings.
func WriteJSON(w io.Writer, t *table.Table) error {
	columns := t.Columns()
	out := make([]map[string]interface{}, t.Len())
	for i := 0; i < t.Len(); i++ {
		row := t.Row(i)
		obj := make(map[string]interface{}, len(columns))
		for _, col := range columns {
			v := row.Get(col)
			if v.Kind() == value.KindUnset {
				continue
			}
			obj[col] = toJSON(v)
		}
		out[i] = obj
	}
	if err := gojson.NewEncoder(w).Encode(out); err != nil {
		return errors.Wrap(err, errors.ErrorTypeData, "encoding json rows")
	}
	return nil
}

func toJSON(v value.Value) interface{} {
	switch v.Kind() {
	case value.KindNumber:
		return v.Float()
	case value.KindText:
		return v.Str()
	case value.KindBool:
		return v.Truth()
	case value.KindTime:
		return v.Instant().UTC().Format(time.RFC3339Nano)
	default:
		return nil
	}
}

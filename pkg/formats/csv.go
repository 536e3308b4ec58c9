// Package formats holds the IO boundary around the core: delimited-text
// and JSON codecs that produce and consume the cell value model. The
// engines themselves never touch files or networks.
package formats

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"github.com/ajitpratap0/tabular/pkg/errors"
	"github.com/ajitpratap0/tabular/pkg/table"
	"github.com/ajitpratap0/tabular/pkg/value"
)

// CSVOptions controls the delimited-text codec.
type CSVOptions struct {
	// Delimiter is the field separator; 0 means comma.
	Delimiter rune
}

func (o CSVOptions) comma() rune {
	if o.Delimiter == 0 {
		return ','
	}
	return o.Delimiter
}

// ReadCSV parses delimited text into a table. The first record is the
// header; cell types are inferred per cell: empty fields read as
// Absent, "true"/"false" as booleans, parseable finite numbers as
// numbers, RFC3339 instants as timestamps, everything else as text.
func ReadCSV(r io.Reader, opts CSVOptions) (*table.Table, error) {
	cr := csv.NewReader(r)
	cr.Comma = opts.comma()

	header, err := cr.Read()
	if err == io.EOF {
		return nil, errors.New(errors.ErrorTypeData, "csv input is empty")
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeData, "reading csv header")
	}

	columns := make([]table.Column, len(header))
	for i, name := range header {
		columns[i] = table.Column{Name: name}
	}
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeData, "reading csv record")
		}
		for i := range columns {
			columns[i].Values = append(columns[i].Values, inferCell(rec[i]))
		}
	}
	return table.FromColumns(columns)
}

// inferCell maps one raw text field onto the value model.
func inferCell(s string) value.Value {
	if s == "" {
		return value.Absent()
	}
	switch s {
	case "true", "True":
		return value.Bool(true)
	case "false", "False":
		return value.Bool(false)
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return value.Number(f)
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return value.Time(t)
	}
	return value.Text(s)
}

// WriteCSV writes the table as delimited text. Missing cells write as
// empty fields and timestamps as RFC3339Nano; fields containing the
// delimiter, newlines or quotes are escaped with doubled quotes by the
// encoder.
func WriteCSV(w io.Writer, t *table.Table, opts CSVOptions) error {
	cw := csv.NewWriter(w)
	cw.Comma = opts.comma()

	columns := t.Columns()
	if err := cw.Write(columns); err != nil {
		return errors.Wrap(err, errors.ErrorTypeData, "writing csv header")
	}
	fields := make([]string, len(columns))
	for i := 0; i < t.Len(); i++ {
		row := t.Row(i)
		for j, col := range columns {
			fields[j] = row.Get(col).Render()
		}
		if err := cw.Write(fields); err != nil {
			return errors.Wrap(err, errors.ErrorTypeData, "writing csv record")
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return errors.Wrap(err, errors.ErrorTypeData, "flushing csv output")
	}
	return nil
}

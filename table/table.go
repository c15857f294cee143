// Copyright 2022 Stock Parfait

// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at

//     http://www.apache.org/licenses/LICENSE-2.0

// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package table

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/stockparfait/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Column is a single named column of a DataFrame. It is implemented by
// exactly two types: *StringColumn and *FloatColumn.
type Column interface {
	Name() string
	Len() int
	cell(i int) string // the i'th value rendered for CSV / text output
}

// StringColumn is a column of string values.
type StringColumn struct {
	name   string
	values []string
}

var _ Column = &StringColumn{}

// NewStringColumn creates a column with the given name and values.
func NewStringColumn(name string, values []string) *StringColumn {
	return &StringColumn{name: name, values: values}
}

// Name of the column.
func (c *StringColumn) Name() string { return c.name }

// Len is the number of values in the column.
func (c *StringColumn) Len() int { return len(c.values) }

// Values of the column, in row order.
func (c *StringColumn) Values() []string { return c.values }

// Value at the i'th row. Panics if i is out of range.
func (c *StringColumn) Value(i int) string { return c.values[i] }

func (c *StringColumn) cell(i int) string { return c.values[i] }

// FloatColumn is a column of float64 values.
type FloatColumn struct {
	name   string
	values []float64
}

var _ Column = &FloatColumn{}

// NewFloatColumn creates a column with the given name and values.
func NewFloatColumn(name string, values []float64) *FloatColumn {
	return &FloatColumn{name: name, values: values}
}

// Name of the column.
func (c *FloatColumn) Name() string { return c.name }

// Len is the number of values in the column.
func (c *FloatColumn) Len() int { return len(c.values) }

// Values of the column, in row order.
func (c *FloatColumn) Values() []float64 { return c.values }

// Value at the i'th row. Panics if i is out of range.
func (c *FloatColumn) Value(i int) float64 { return c.values[i] }

func (c *FloatColumn) cell(i int) string {
	return strconv.FormatFloat(c.values[i], 'g', -1, 64)
}

// Summary holds descriptive statistics of a FloatColumn.
type Summary struct {
	Count  int
	Mean   float64
	StdDev float64 // sample standard deviation; NaN when Count < 2
	Min    float64
	Max    float64
}

// Summary computes descriptive statistics of the column.
func (c *FloatColumn) Summary() Summary {
	if len(c.values) == 0 {
		return Summary{}
	}
	return Summary{
		Count:  len(c.values),
		Mean:   stat.Mean(c.values, nil),
		StdDev: stat.StdDev(c.values, nil),
		Min:    floats.Min(c.values),
		Max:    floats.Max(c.values),
	}
}

// DataFrame is an ordered collection of named columns of equal length.
// Each column is either a StringColumn or a FloatColumn.
//
// A typical use:
//
//	df, err := table.NewDataFrame(
//	  table.NewStringColumn("ticker", []string{"A", "B"}),
//	  table.NewFloatColumn("close", []float64{10.5, 42.0}),
//	)
//	df.WriteText(os.Stdout, table.Params{})
type DataFrame struct {
	columns []Column
}

// NewDataFrame creates a DataFrame from the given columns. All columns must
// have the same nonzero length, and column names must be unique.
func NewDataFrame(columns ...Column) (*DataFrame, error) {
	if len(columns) == 0 {
		return nil, errors.Reason("a dataframe requires at least one column")
	}
	rows := columns[0].Len()
	names := make(map[string]struct{}, len(columns))
	for _, c := range columns {
		if c.Len() != rows {
			return nil, errors.Reason("column %q has %d rows, expected %d",
				c.Name(), c.Len(), rows)
		}
		if _, ok := names[c.Name()]; ok {
			return nil, errors.Reason("duplicate column name %q", c.Name())
		}
		names[c.Name()] = struct{}{}
	}
	if rows == 0 {
		return nil, errors.Reason("a dataframe requires at least one row")
	}
	return &DataFrame{columns: columns}, nil
}

// FromRows creates a DataFrame from a row-major table of JSON-decoded scalar
// values, one column per field, in the field order. A column becomes a
// FloatColumn when every value in it is a JSON number or a string parsing as
// a float; otherwise it becomes a StringColumn, converting numbers and
// booleans to strings and null to "".
func FromRows(fields []string, rows [][]interface{}) (*DataFrame, error) {
	if len(fields) == 0 {
		return nil, errors.Reason("a dataframe requires at least one field")
	}
	for i, r := range rows {
		if len(r) != len(fields) {
			return nil, errors.Reason("row %d has %d values, expected %d",
				i, len(r), len(fields))
		}
	}
	columns := make([]Column, len(fields))
	for ci, name := range fields {
		numeric := true
		for _, r := range rows {
			if !isNumeric(r[ci]) {
				numeric = false
				break
			}
		}
		if numeric {
			values := make([]float64, len(rows))
			for ri, r := range rows {
				values[ri] = toFloat(r[ci])
			}
			columns[ci] = NewFloatColumn(name, values)
		} else {
			values := make([]string, len(rows))
			for ri, r := range rows {
				values[ri] = cellString(r[ci])
			}
			columns[ci] = NewStringColumn(name, values)
		}
	}
	return NewDataFrame(columns...)
}

func isNumeric(v interface{}) bool {
	switch t := v.(type) {
	case float64:
		return true
	case string:
		_, err := strconv.ParseFloat(t, 64)
		return err == nil
	default:
		return false
	}
}

func toFloat(v interface{}) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case string:
		f, _ := strconv.ParseFloat(t, 64)
		return f
	default:
		return 0.0
	}
}

func cellString(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprintf("%v", t)
	}
}

// NumColumns is the number of columns in the dataframe.
func (d *DataFrame) NumColumns() int { return len(d.columns) }

// NumRows is the number of rows in the dataframe.
func (d *DataFrame) NumRows() int {
	if len(d.columns) == 0 {
		return 0
	}
	return d.columns[0].Len()
}

// Columns of the dataframe, in order.
func (d *DataFrame) Columns() []Column { return d.columns }

// Names of the columns, in order.
func (d *DataFrame) Names() []string {
	names := make([]string, len(d.columns))
	for i, c := range d.columns {
		names[i] = c.Name()
	}
	return names
}

// Column with the given name, if it exists.
func (d *DataFrame) Column(name string) (Column, bool) {
	for _, c := range d.columns {
		if c.Name() == name {
			return c, true
		}
	}
	return nil, false
}

// row renders the i'th row as strings, in column order.
func (d *DataFrame) row(i int) []string {
	r := make([]string, len(d.columns))
	for j, c := range d.columns {
		r[j] = c.cell(i)
	}
	return r
}

// Describe returns a new dataframe of per-column statistics, one row per
// float column: column name, count, mean, stddev, min and max. It is an
// error if the dataframe has no float columns.
func (d *DataFrame) Describe() (*DataFrame, error) {
	var names []string
	var count, mean, stddev, min, max []float64
	for _, c := range d.columns {
		fc, ok := c.(*FloatColumn)
		if !ok {
			continue
		}
		s := fc.Summary()
		names = append(names, fc.Name())
		count = append(count, float64(s.Count))
		mean = append(mean, s.Mean)
		stddev = append(stddev, s.StdDev)
		min = append(min, s.Min)
		max = append(max, s.Max)
	}
	if len(names) == 0 {
		return nil, errors.Reason("dataframe has no float columns")
	}
	return NewDataFrame(
		NewStringColumn("column", names),
		NewFloatColumn("count", count),
		NewFloatColumn("mean", mean),
		NewFloatColumn("stddev", stddev),
		NewFloatColumn("min", min),
		NewFloatColumn("max", max),
	)
}

// Params are parameters for pretty-printing or CSV export of DataFrame data.
type Params struct {
	Rows        int  // max. number of rows to write; 0 = unlimited (default)
	NoHeader    bool // whether to print the header, default - yes
	MaxColWidth int  // for WriteText only; 0 = unlimited, otherwise must be >= 4
}

// WriteCSV writes the entire dataframe to w in CSV format.
func (d *DataFrame) WriteCSV(w io.Writer, p Params) error {
	cw := csv.NewWriter(w)
	if !p.NoHeader {
		if err := cw.Write(d.Names()); err != nil {
			return errors.Annotate(err, "failed to write header")
		}
	}
	for i := 0; i < d.NumRows(); i++ {
		if p.Rows > 0 && i >= p.Rows {
			break
		}
		if err := cw.Write(d.row(i)); err != nil {
			return errors.Annotate(err, "failed to write row")
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return errors.Annotate(err, "failed to flush written rows")
	}
	return nil
}

// WriteText writes the dataframe as a text formatted for ease of reading.
func (d *DataFrame) WriteText(w io.Writer, p Params) error {
	if p.MaxColWidth != 0 && p.MaxColWidth < 4 {
		return errors.Reason("MaxColWidth [%d] must be 0 or >= 4", p.MaxColWidth)
	}
	var widths []int
	update := func(row []string) error {
		if len(row) == 0 {
			return errors.Reason("row size = 0")
		}
		if len(widths) == 0 {
			widths = make([]int, len(row))
		}
		if len(row) != len(widths) {
			return errors.Reason("row size [%d] != expected size [%d]",
				len(row), len(widths))
		}
		for i := range widths {
			if widths[i] < len(row[i]) {
				widths[i] = len(row[i])
				if p.MaxColWidth > 0 && widths[i] > p.MaxColWidth {
					widths[i] = p.MaxColWidth
				}
			}
		}
		return nil
	}

	write := func(row []string) error {
		trimmed := make([]string, len(row))
		for i, s := range row {
			trimmed[i] = s
			if len([]rune(s)) > widths[i] {
				r := []rune(s)[:widths[i]-2]
				trimmed[i] = string(r) + ".."
			}
			trimmed[i] = fmt.Sprintf("%[2]*[1]s", trimmed[i], widths[i])
		}
		_, err := fmt.Fprintf(w, "%s\n", strings.Join(trimmed, " | "))
		return err
	}

	dashes := func(n int) string {
		b := make([]byte, n)
		for i := range b {
			b[i] = byte('-')
		}
		return string(b)
	}

	dashedRow := func() []string {
		row := make([]string, len(widths))
		for i, w := range widths {
			row[i] = dashes(w)
		}
		return row
	}

	if !p.NoHeader {
		if err := update(d.Names()); err != nil {
			return errors.Annotate(err, "failed to update header widths")
		}
	}
	for i := 0; i < d.NumRows(); i++ {
		if p.Rows > 0 && i >= p.Rows {
			break
		}
		if err := update(d.row(i)); err != nil {
			return errors.Annotate(err, "failed to update row widths")
		}
	}

	if !p.NoHeader {
		if err := write(d.Names()); err != nil {
			return errors.Annotate(err, "failed to write header")
		}
		if err := write(dashedRow()); err != nil {
			return errors.Annotate(err, "failed to write header separator")
		}
	}
	for i := 0; i < d.NumRows(); i++ {
		if p.Rows > 0 && i >= p.Rows {
			break
		}
		if err := write(d.row(i)); err != nil {
			return errors.Annotate(err, "failed to write row")
		}
	}
	return nil
}

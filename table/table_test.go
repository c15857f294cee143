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
	"bytes"
	"testing"

	"github.com/stockparfait/testutil"

	. "github.com/smartystreets/goconvey/convey"
)

func testFrame() *DataFrame {
	df, err := NewDataFrame(
		NewStringColumn("ticker", []string{"000001.SZ", "000002.SZ"}),
		NewFloatColumn("close", []float64{10.5, 42.0}),
	)
	So(err, ShouldBeNil)
	return df
}

func TestDataFrame(t *testing.T) {
	t.Parallel()

	Convey("NewDataFrame checks its invariants", t, func() {
		Convey("no columns", func() {
			_, err := NewDataFrame()
			So(err, ShouldNotBeNil)
		})

		Convey("no rows", func() {
			_, err := NewDataFrame(NewStringColumn("s", nil))
			So(err, ShouldNotBeNil)
		})

		Convey("unequal column lengths", func() {
			_, err := NewDataFrame(
				NewStringColumn("s", []string{"a", "b"}),
				NewFloatColumn("f", []float64{1.0}),
			)
			So(err, ShouldNotBeNil)
		})

		Convey("duplicate column names", func() {
			_, err := NewDataFrame(
				NewStringColumn("x", []string{"a"}),
				NewFloatColumn("x", []float64{1.0}),
			)
			So(err, ShouldNotBeNil)
		})
	})

	Convey("DataFrame accessors work", t, func() {
		df := testFrame()

		So(df.NumColumns(), ShouldEqual, 2)
		So(df.NumRows(), ShouldEqual, 2)
		So(df.Names(), ShouldResemble, []string{"ticker", "close"})

		c, ok := df.Column("close")
		So(ok, ShouldBeTrue)
		fc, ok := c.(*FloatColumn)
		So(ok, ShouldBeTrue)
		So(fc.Values(), ShouldResemble, []float64{10.5, 42.0})
		So(fc.Value(1), ShouldEqual, 42.0)

		_, ok = df.Column("nosuch")
		So(ok, ShouldBeFalse)
	})

	Convey("FromRows infers column types", t, func() {
		Convey("numeric strings make a float column", func() {
			df, err := FromRows([]string{"ts_code", "close"}, [][]interface{}{
				{"000001.SZ", "10.5"},
				{"000001.SZ", "10.6"},
			})
			So(err, ShouldBeNil)

			c, ok := df.Column("ts_code")
			So(ok, ShouldBeTrue)
			sc, ok := c.(*StringColumn)
			So(ok, ShouldBeTrue)
			So(sc.Values(), ShouldResemble, []string{"000001.SZ", "000001.SZ"})

			c, ok = df.Column("close")
			So(ok, ShouldBeTrue)
			fc, ok := c.(*FloatColumn)
			So(ok, ShouldBeTrue)
			So(fc.Values(), ShouldResemble, []float64{10.5, 10.6})
		})

		Convey("numbers and numeric strings mix into a float column", func() {
			df, err := FromRows([]string{"v"}, [][]interface{}{
				{10.5}, {"11"}, {-2.0},
			})
			So(err, ShouldBeNil)
			fc, ok := df.Columns()[0].(*FloatColumn)
			So(ok, ShouldBeTrue)
			So(fc.Values(), ShouldResemble, []float64{10.5, 11.0, -2.0})
		})

		Convey("a single non-numeric value makes a string column", func() {
			df, err := FromRows([]string{"v"}, [][]interface{}{
				{10.5}, {"n/a"}, {nil}, {true},
			})
			So(err, ShouldBeNil)
			sc, ok := df.Columns()[0].(*StringColumn)
			So(ok, ShouldBeTrue)
			So(sc.Values(), ShouldResemble, []string{"10.5", "n/a", "", "true"})
		})

		Convey("column order is preserved", func() {
			df, err := FromRows([]string{"c", "a", "b"}, [][]interface{}{
				{"x", "1", "y"},
			})
			So(err, ShouldBeNil)
			So(df.Names(), ShouldResemble, []string{"c", "a", "b"})
		})

		Convey("rows must match the number of fields", func() {
			_, err := FromRows([]string{"a", "b"}, [][]interface{}{
				{"x", "y"},
				{"z"},
			})
			So(err, ShouldNotBeNil)
		})

		Convey("no fields is an error", func() {
			_, err := FromRows(nil, nil)
			So(err, ShouldNotBeNil)
		})

		Convey("no rows is an error", func() {
			_, err := FromRows([]string{"a"}, nil)
			So(err, ShouldNotBeNil)
		})
	})

	Convey("WriteCSV", t, func() {
		df := testFrame()

		Convey("Default Params", func() {
			var buf bytes.Buffer
			So(df.WriteCSV(&buf, Params{}), ShouldBeNil)
			So("\n"+buf.String(), ShouldEqual, `
ticker,close
000001.SZ,10.5
000002.SZ,42
`)
		})

		Convey("Limited rows, no header", func() {
			var buf bytes.Buffer
			So(df.WriteCSV(&buf, Params{Rows: 1, NoHeader: true}), ShouldBeNil)
			So("\n"+buf.String(), ShouldEqual, `
000001.SZ,10.5
`)
		})
	})

	Convey("WriteText", t, func() {
		df := testFrame()

		Convey("Default Params", func() {
			var buf bytes.Buffer
			So(df.WriteText(&buf, Params{}), ShouldBeNil)
			So("\n"+buf.String(), ShouldEqual, `
   ticker | close
--------- | -----
000001.SZ |  10.5
000002.SZ |    42
`)
		})

		Convey("Limited rows and width, no header", func() {
			var buf bytes.Buffer
			So(df.WriteText(&buf, Params{Rows: 1, NoHeader: true, MaxColWidth: 4}), ShouldBeNil)
			So("\n"+buf.String(), ShouldEqual, `
00.. | 10.5
`)
		})

		Convey("MaxColWidth below the minimum is an error", func() {
			var buf bytes.Buffer
			So(df.WriteText(&buf, Params{MaxColWidth: 3}), ShouldNotBeNil)
		})
	})
}

func TestSummary(t *testing.T) {
	t.Parallel()

	Convey("FloatColumn summary", t, func() {
		Convey("of several values", func() {
			s := NewFloatColumn("x", []float64{10.0, 20.0, 30.0}).Summary()
			So(s, ShouldResemble, Summary{
				Count:  3,
				Mean:   20.0,
				StdDev: 10.0,
				Min:    10.0,
				Max:    30.0,
			})
		})

		Convey("of an empty column", func() {
			s := NewFloatColumn("x", nil).Summary()
			So(s, ShouldResemble, Summary{})
		})
	})

	Convey("Describe", t, func() {
		Convey("summarizes the float columns", func() {
			df, err := NewDataFrame(
				NewStringColumn("ticker", []string{"A", "B", "C"}),
				NewFloatColumn("close", []float64{10.0, 20.0, 30.0}),
				NewFloatColumn("vol", []float64{1.0, 2.0, 4.0}),
			)
			So(err, ShouldBeNil)

			desc, err := df.Describe()
			So(err, ShouldBeNil)
			So(desc.Names(), ShouldResemble,
				[]string{"column", "count", "mean", "stddev", "min", "max"})

			c, _ := desc.Column("column")
			So(c.(*StringColumn).Values(), ShouldResemble, []string{"close", "vol"})

			mean, _ := desc.Column("mean")
			So(mean.(*FloatColumn).Value(0), ShouldEqual, 20.0)
			So(testutil.Round(mean.(*FloatColumn).Value(1), 4), ShouldEqual, 2.333)

			stddev, _ := desc.Column("stddev")
			So(stddev.(*FloatColumn).Value(0), ShouldEqual, 10.0)
			So(testutil.Round(stddev.(*FloatColumn).Value(1), 4), ShouldEqual, 1.528)
		})

		Convey("fails without float columns", func() {
			df, err := NewDataFrame(NewStringColumn("s", []string{"a"}))
			So(err, ShouldBeNil)
			_, err = df.Describe()
			So(err, ShouldNotBeNil)
		})
	})
}

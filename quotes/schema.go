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

package quotes

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/stockparfait/errors"
	"github.com/stockparfait/tushare/tushare"
)

// lessLex is a lexicographic ordering on the slices of int.
func lessLex(x, y []int) bool {
	l := len(x)
	if len(y) < l {
		l = len(y)
	}
	for i := 0; i < l; i++ {
		if x[i] < y[i] {
			return true
		}
		if x[i] > y[i] {
			return false
		}
	}
	return len(x) < len(y)
}

func parseTime(s string) (time.Time, error) {
	if s == "" || s == "00000000" {
		return time.Time{}, nil
	}
	formats := []string{
		"20060102",
		"2006-01-02",
	}
	var err error
	for _, f := range formats {
		var tm time.Time
		tm, err = time.Parse(f, s)
		if err == nil {
			return tm, nil
		}
	}
	return time.Time{}, err
}

// Date records a calendar date as year, month and day. The struct is designed
// to fit into 4 bytes.
type Date struct {
	YearVal  uint16
	MonthVal uint8
	DayVal   uint8
}

var _ json.Marshaler = Date{}
var _ json.Unmarshaler = &Date{}

// NewDate is the constructor for Date.
func NewDate(year uint16, month, day uint8) Date {
	return Date{year, month, day}
}

// NewDateFromTime creates a Date instance from a time.Time value in UTC.
func NewDateFromTime(t time.Time) Date {
	return Date{
		YearVal:  uint16(t.Year()),
		MonthVal: uint8(t.Month()),
		DayVal:   uint8(t.Day()),
	}
}

// NewDateFromString creates a Date instance from its string representation,
// either "20060102" as used by the API or "2006-01-02". The empty string and
// "00000000" yield the zero Date.
func NewDateFromString(s string) (Date, error) {
	t, err := parseTime(s)
	if err != nil {
		return Date{}, errors.Annotate(err, "failed to parse a Date string: '%s'", s)
	}
	if t.IsZero() {
		return Date{}, nil
	}
	return NewDateFromTime(t), nil
}

func (d Date) Year() uint16 { return d.YearVal }
func (d Date) Month() uint8 { return d.MonthVal }
func (d Date) Day() uint8   { return d.DayVal }

// String representation of the value in the "20060102" format of the API, so
// that it can be used directly as a query parameter.
func (d Date) String() string {
	return fmt.Sprintf("%04d%02d%02d", d.Year(), d.Month(), d.Day())
}

// MarshalJSON implements json.Marshaler.
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler. NOTE: unlike other methods, this
// is a pointer method.
func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return errors.Annotate(err, "Date JSON must be a string")
	}
	date, err := NewDateFromString(s)
	if err != nil {
		return errors.Annotate(err, "failed to parse Date string")
	}
	*d = date
	return nil
}

// ToTime converts Date to Time in UTC.
func (d Date) ToTime() time.Time {
	return time.Date(int(d.Year()), time.Month(d.Month()), int(d.Day()), 0, 0, 0, 0, time.UTC)
}

// Before compares two Date objects for strict inequality (self < d2).
func (d Date) Before(d2 Date) bool {
	return lessLex([]int{int(d.Year()), int(d.Month()), int(d.Day())},
		[]int{int(d2.Year()), int(d2.Month()), int(d2.Day())})
}

// After compares two Date objects for strict inequality, self > d2.
func (d Date) After(d2 Date) bool {
	return d2.Before(d)
}

// IsZero checks whether the date has a zero value.
func (d Date) IsZero() bool {
	return d.Year() == 0 && d.Month() == 0 && d.Day() == 0
}

func typeErr(v tushare.Value, tp string) error {
	return errors.Reason("expected %s but found %T: %v", tp, v, v)
}

func value2str(v tushare.Value) (string, error) {
	if v == nil {
		return "", nil
	}
	if str, ok := v.(string); ok {
		return str, nil
	}
	return "", typeErr(v, "a string")
}

// value2num converts a JSON number or a numeric string; the API uses both
// representations interchangeably.
func value2num(v tushare.Value) (float64, error) {
	switch num := v.(type) {
	case nil:
		return 0.0, nil
	case float64: // JSON numbers always unmarshal to float64
		return num, nil
	case string:
		f, err := strconv.ParseFloat(num, 64)
		if err != nil {
			return 0.0, typeErr(v, "a number")
		}
		return f, nil
	}
	return 0.0, typeErr(v, "a number")
}

func value2date(v tushare.Value) (Date, error) {
	if v == nil {
		return Date{}, nil
	}
	str, ok := v.(string)
	if !ok {
		return Date{}, typeErr(v, "a date string")
	}
	return NewDateFromString(str)
}

// value2bool converts the 0/1 flags of the API.
func value2bool(v tushare.Value) (bool, error) {
	num, err := value2num(v)
	if err != nil {
		return false, typeErr(v, "a 0/1 flag")
	}
	switch num {
	case 0.0:
		return false, nil
	case 1.0:
		return true, nil
	}
	return false, typeErr(v, "a 0/1 flag")
}

// Daily is a row of the "daily" API: unadjusted daily quotes of a single
// security.
type Daily struct {
	TSCode    string // e.g. 000001.SZ
	TradeDate Date
	Open      float64
	High      float64
	Low       float64
	Close     float64
	PreClose  float64 // previous close, adjusted for corporate actions
	Change    float64
	PctChg    float64
	Vol       float64 // volume in lots of 100 shares
	Amount    float64 // turnover in 1000s of CNY
}

var _ tushare.ValueLoader = &Daily{}

// DailyFields are the expected fields of the "daily" API.
var DailyFields = tushare.Fields{
	"ts_code",
	"trade_date",
	"open",
	"high",
	"low",
	"close",
	"pre_close",
	"change",
	"pct_chg",
	"vol",
	"amount",
}

// Load implements tushare.ValueLoader.
func (r *Daily) Load(v []tushare.Value, f tushare.Fields) error {
	if !DailyFields.SubsetOf(f) {
		return errors.Reason("unexpected fields: %s", f.String())
	}
	if len(v) != len(f) {
		return errors.Reason("expected %d values, received %d: %v", len(f), len(v), v)
	}
	m := f.MapFields()
	var err error

	v2str := func(field string) (string, error) {
		return value2str(v[m[field]])
	}
	v2num := func(field string) (float64, error) {
		return value2num(v[m[field]])
	}
	v2date := func(field string) (Date, error) {
		return value2date(v[m[field]])
	}

	if r.TSCode, err = v2str("ts_code"); err != nil {
		return errors.Annotate(err, "ts_code should be a string")
	}
	if r.TradeDate, err = v2date("trade_date"); err != nil {
		return errors.Annotate(err, "trade_date should be a date string")
	}
	if r.Open, err = v2num("open"); err != nil {
		return errors.Annotate(err, "open should be a number")
	}
	if r.High, err = v2num("high"); err != nil {
		return errors.Annotate(err, "high should be a number")
	}
	if r.Low, err = v2num("low"); err != nil {
		return errors.Annotate(err, "low should be a number")
	}
	if r.Close, err = v2num("close"); err != nil {
		return errors.Annotate(err, "close should be a number")
	}
	if r.PreClose, err = v2num("pre_close"); err != nil {
		return errors.Annotate(err, "pre_close should be a number")
	}
	if r.Change, err = v2num("change"); err != nil {
		return errors.Annotate(err, "change should be a number")
	}
	if r.PctChg, err = v2num("pct_chg"); err != nil {
		return errors.Annotate(err, "pct_chg should be a number")
	}
	if r.Vol, err = v2num("vol"); err != nil {
		return errors.Annotate(err, "vol should be a number")
	}
	if r.Amount, err = v2num("amount"); err != nil {
		return errors.Annotate(err, "amount should be a number")
	}
	return nil
}

// TradeDay is a row of the "trade_cal" API: a single day of an exchange
// trading calendar.
type TradeDay struct {
	Exchange     string // e.g. SSE, SZSE
	CalDate      Date
	IsOpen       bool
	PretradeDate Date // the most recent trading day on or before CalDate
}

var _ tushare.ValueLoader = &TradeDay{}

// TradeCalFields are the expected fields of the "trade_cal" API.
var TradeCalFields = tushare.Fields{
	"exchange",
	"cal_date",
	"is_open",
	"pretrade_date",
}

// Load implements tushare.ValueLoader.
func (r *TradeDay) Load(v []tushare.Value, f tushare.Fields) error {
	if !TradeCalFields.SubsetOf(f) {
		return errors.Reason("unexpected fields: %s", f.String())
	}
	if len(v) != len(f) {
		return errors.Reason("expected %d values, received %d: %v", len(f), len(v), v)
	}
	m := f.MapFields()
	var err error

	if r.Exchange, err = value2str(v[m["exchange"]]); err != nil {
		return errors.Annotate(err, "exchange should be a string")
	}
	if r.CalDate, err = value2date(v[m["cal_date"]]); err != nil {
		return errors.Annotate(err, "cal_date should be a date string")
	}
	if r.IsOpen, err = value2bool(v[m["is_open"]]); err != nil {
		return errors.Annotate(err, "is_open should be a 0/1 flag")
	}
	if r.PretradeDate, err = value2date(v[m["pretrade_date"]]); err != nil {
		return errors.Annotate(err, "pretrade_date should be a date string")
	}
	return nil
}

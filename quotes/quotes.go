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

// Package quotes implements typed access to the market data APIs of Tushare
// Pro: daily quotes and the exchange trading calendar.
package quotes

import (
	"context"
	"sort"

	"github.com/stockparfait/errors"
	"github.com/stockparfait/logging"
	"github.com/stockparfait/tushare/tushare"
)

type APIName = string

const (
	DailyAPI    = APIName("daily")
	TradeCalAPI = APIName("trade_cal")
)

// FetchDaily returns an iterator over the Daily quotes of a single security.
// A zero start or end date leaves the corresponding bound unset.
func FetchDaily(ctx context.Context, tsCode string, start, end Date) *tushare.RowIterator {
	q := tushare.NewQuery(DailyAPI).
		Param("ts_code", tsCode).
		Fields(DailyFields...)
	if !start.IsZero() {
		q = q.Param("start_date", start.String())
	}
	if !end.IsZero() {
		q = q.Param("end_date", end.String())
	}
	return q.Read(ctx)
}

// DailyHistory downloads the daily quotes of a single security, sorted by
// date in ascending order.
func DailyHistory(ctx context.Context, tsCode string, start, end Date) ([]Daily, error) {
	it := FetchDaily(ctx, tsCode, start, end)
	quotes := []Daily{}
	for {
		var d Daily
		ok, err := it.Next(&d)
		if err != nil {
			return nil, errors.Annotate(err, "failed to read daily quotes for %s", tsCode)
		}
		if !ok {
			break
		}
		quotes = append(quotes, d)
	}
	sort.Slice(quotes, func(i, j int) bool {
		return quotes[i].TradeDate.Before(quotes[j].TradeDate)
	})
	logging.Infof(ctx, "downloaded %d daily quotes for %s", len(quotes), tsCode)
	return quotes, nil
}

// FetchCalendar returns an iterator over the TradeDay rows of an exchange
// calendar. An empty exchange uses the API default (SSE); a zero start or end
// date leaves the corresponding bound unset.
func FetchCalendar(ctx context.Context, exchange string, start, end Date) *tushare.RowIterator {
	q := tushare.NewQuery(TradeCalAPI).Fields(TradeCalFields...)
	if exchange != "" {
		q = q.Param("exchange", exchange)
	}
	if !start.IsZero() {
		q = q.Param("start_date", start.String())
	}
	if !end.IsZero() {
		q = q.Param("end_date", end.String())
	}
	return q.Read(ctx)
}

// TradingDates downloads the exchange calendar and returns the open trading
// dates, sorted in ascending order.
func TradingDates(ctx context.Context, exchange string, start, end Date) ([]Date, error) {
	it := FetchCalendar(ctx, exchange, start, end)
	dates := []Date{}
	for {
		var td TradeDay
		ok, err := it.Next(&td)
		if err != nil {
			return nil, errors.Annotate(err, "failed to read the trading calendar")
		}
		if !ok {
			break
		}
		if !td.IsOpen {
			continue
		}
		dates = append(dates, td.CalDate)
	}
	sort.Slice(dates, func(i, j int) bool {
		return dates[i].Before(dates[j])
	})
	logging.Infof(ctx, "downloaded %d trading dates", len(dates))
	return dates, nil
}

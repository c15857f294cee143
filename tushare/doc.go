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

// Package tushare implements the HTTP API of Tushare Pro, a provider of
// tabular financial data for the Chinese markets.
//
// Official documentation is at https://tushare.pro/document/1 .
//
// Every API is called with a single HTTP POST of a JSON envelope carrying the
// API name, the caller's token, the call parameters and an optional list of
// result columns. The response is a table: the list of column names and the
// rows of scalar values, which this package converts into a table.DataFrame
// with per-column types inferred from the values. There is no paging; each
// query is exactly one request, and retrying is left to the caller.
//
// A typical use:
//
//	ctx := tushare.UseClient(context.Background(), "my-secret-token")
//	df, err := tushare.NewQuery("daily").
//	  Param("ts_code", "000001.SZ").
//	  Param("start_date", "20220101").
//	  DataFrame(ctx)
//
// APIs with known row types, such as daily quotes and the trading calendar,
// are implemented in the quotes package.
package tushare

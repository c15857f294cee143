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

package tushare

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/stockparfait/errors"
	"github.com/stockparfait/fetch"
	"github.com/stockparfait/logging"
	"github.com/stockparfait/tushare/table"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

type contextKey int

const (
	clientContextKey contextKey = iota
)

// URL is the default base URL of the API server. It may be overwritten in
// tests before creating a new client.
var URL = "http://api.tushare.pro"

// Client for querying the Tushare Pro API.
type Client struct {
	baseURL string // the base URL of the server
	token   string // your very own secret token
}

// newClient creates a new client.
func newClient(baseURL, token string) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
	}
}

// GetClient extracts the Client from the context, if any.
func GetClient(ctx context.Context) *Client {
	c, ok := ctx.Value(clientContextKey).(*Client)
	if !ok {
		return nil
	}
	return c
}

// UseClient creates a new client based on the API token and injects it into
// the context. The HTTP client is picked up separately with fetch.GetClient,
// so tests can inject theirs with fetch.UseClient; the default is
// http.DefaultClient.
func UseClient(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, clientContextKey, newClient(URL, token))
}

// Value is an arbitrary value of a table cell.
type Value = interface{}

// Fields is the list of column names of a result table, in the order they
// appear in the data rows.
type Fields []string

// Equal tests two field lists for exact equality, including the ordering.
func (f Fields) Equal(f2 Fields) bool {
	if len(f) != len(f2) {
		return false
	}
	for i, n := range f {
		if n != f2[i] {
			return false
		}
	}
	return true
}

// SubsetOf tests if self is a subset of the other field list. This is useful
// for robust ValueLoader's that can continue to work when the API adds new
// fields.
func (f Fields) SubsetOf(f2 Fields) bool {
	m := make(map[string]struct{})
	for _, n := range f2 {
		m[n] = struct{}{}
	}
	for _, n := range f {
		if _, ok := m[n]; !ok {
			return false
		}
	}
	return true
}

// MapFields creates a map of {field name -> field index} in the list.
func (f Fields) MapFields() map[string]int {
	res := make(map[string]int)
	for i, n := range f {
		res[n] = i
	}
	return res
}

// String prints a string representation of the field list.
func (f Fields) String() string {
	return "{" + strings.Join(f, ", ") + "}"
}

// ValueLoader is the interface that a row type of a specific API must
// implement.
type ValueLoader interface {
	Load(v []Value, f Fields) error
}

// Query is a builder for a single API call, e.g. of the "daily" API. Builder
// methods create a deep copy, leaving the original intact, so partial queries
// can be shared and extended safely.
type Query struct {
	apiName string
	params  map[string]string
	fields  []string
}

// NewQuery creates a new query for the named API.
func NewQuery(apiName string) *Query {
	q := Query{apiName: apiName, params: make(map[string]string)}
	return &q
}

// Copy creates a deep copy of the query. It is primarily used in its builder
// methods.
func (q *Query) Copy() *Query {
	q2 := Query{apiName: q.apiName}
	if q.params != nil {
		q2.params = make(map[string]string, len(q.params))
		for k, v := range q.params {
			q2.params[k] = v
		}
	}
	if q.fields != nil {
		q2.fields = make([]string, len(q.fields))
		copy(q2.fields, q.fields)
	}
	return &q2
}

// Param adds a single parameter to the query, overwriting any previous value
// of the same key. This and other builder methods always create a deep copy
// of the query, leaving the original intact.
func (q *Query) Param(key, value string) *Query {
	q2 := q.Copy()
	if q2.params == nil {
		q2.params = make(map[string]string)
	}
	q2.params[key] = value
	return q2
}

// Params replaces the entire parameter set of the query.
func (q *Query) Params(params map[string]string) *Query {
	q2 := q.Copy()
	q2.params = make(map[string]string, len(params))
	for k, v := range params {
		q2.params[k] = v
	}
	return q2
}

// Fields restricts the result to only these columns. The last call wins.
func (q *Query) Fields(fields ...string) *Query {
	q2 := q.Copy()
	q2.fields = fields
	return q2
}

// String prints a human-readable representation of the query with parameters
// in sorted key order.
func (q *Query) String() string {
	keys := maps.Keys(q.params)
	slices.Sort(keys)
	params := make([]string, len(keys))
	for i, k := range keys {
		params[i] = fmt.Sprintf("%s=%s", k, q.params[k])
	}
	s := q.apiName + "{" + strings.Join(params, ", ") + "}"
	if len(q.fields) > 0 {
		s += "[" + strings.Join(q.fields, ",") + "]"
	}
	return s
}

// request is the JSON envelope of an API call.
type request struct {
	APIName string            `json:"api_name"`
	Token   string            `json:"token"`
	Params  map[string]string `json:"params"`
	Fields  string            `json:"fields"`
}

// newRequest creates the wire request for the query with the given token.
// Params is always an object and Fields a string, possibly empty.
func (q *Query) newRequest(token string) request {
	params := q.params
	if params == nil {
		params = map[string]string{}
	}
	return request{
		APIName: q.apiName,
		Token:   token,
		Params:  params,
		Fields:  strings.Join(q.fields, ","),
	}
}

// payload is the tabular part of an API response.
type payload struct {
	Fields Fields    `json:"fields"`
	Items  [][]Value `json:"items"`
}

// response is the JSON envelope of an API response.
type response struct {
	Code int      `json:"code"`
	Msg  string   `json:"msg"`
	Data *payload `json:"data"`
}

// TestResponse generates the JSON string in the format returned by the
// Tushare Pro API. When both fields and items are nil, the data node is
// omitted entirely. For use in tests.
func TestResponse(code int, msg string, fields Fields, items [][]Value) (string, error) {
	r := response{Code: code, Msg: msg}
	if fields != nil || items != nil {
		r.Data = &payload{Fields: fields, Items: items}
	}
	bytes, err := json.Marshal(&r)
	return string(bytes), err
}

// fetchPayload executes the query using the Client from the context and
// returns the data payload of the response. All failures except a missing
// client are reported as *Error.
func (q *Query) fetchPayload(ctx context.Context) (*payload, error) {
	client := GetClient(ctx)
	if client == nil {
		return nil, errors.Reason("query %s: no client in context", q.String())
	}
	body, err := json.Marshal(q.newRequest(client.token))
	if err != nil {
		return nil, &Error{Kind: KindJSON, Msg: "failed to encode request", Err: err}
	}
	if redacted, err := json.Marshal(q.newRequest("***")); err == nil {
		logging.Infof(ctx, "tushare: request: %s", string(redacted))
	}
	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost, client.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, &Error{Kind: KindNetwork, Msg: "failed to create request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	httpClient := fetch.GetClient(ctx)
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, &Error{Kind: KindNetwork,
			Msg: "failed to call " + client.baseURL, Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return nil, &Error{Kind: KindNetwork, Msg: fmt.Sprintf(
			"%s responded with status %q", client.baseURL, resp.Status)}
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Kind: KindNetwork,
			Msg: "failed to read response body", Err: err}
	}
	logging.Infof(ctx, "tushare: response: %s", string(raw))
	var r response
	if err := json.Unmarshal(raw, &r); err != nil {
		return nil, &Error{Kind: KindJSON, Msg: "failed to decode response", Err: err}
	}
	if r.Code != 0 {
		return nil, &Error{Kind: KindRequest, Code: r.Code, Msg: r.Msg}
	}
	if r.Data == nil {
		return nil, &Error{Kind: KindData, Msg: "response has no data"}
	}
	if r.Data.Fields == nil {
		return nil, &Error{Kind: KindData, Msg: "response has no data/fields"}
	}
	if r.Data.Items == nil {
		return nil, &Error{Kind: KindData, Msg: "response has no data/items"}
	}
	for i, row := range r.Data.Items {
		if len(row) != len(r.Data.Fields) {
			return nil, &Error{Kind: KindData, Msg: fmt.Sprintf(
				"data/items/%d has %d values for %d fields",
				i, len(row), len(r.Data.Fields))}
		}
	}
	if len(r.Data.Items) == 0 {
		return nil, &Error{Kind: KindEmpty, Msg: q.String() + " returned no rows"}
	}
	return r.Data, nil
}

// DataFrame executes the query and converts the response to a DataFrame.
// Columns follow the response field order; a column whose every value is a
// number or a numeric string becomes a float column, all others are string
// columns.
func (q *Query) DataFrame(ctx context.Context) (*table.DataFrame, error) {
	data, err := q.fetchPayload(ctx)
	if err != nil {
		return nil, err
	}
	df, err := table.FromRows(data.Fields, data.Items)
	if err != nil {
		return nil, &Error{Kind: KindFrame, Msg: "failed to build dataframe", Err: err}
	}
	return df, nil
}

// RowIterator iterates over the query results row by row. The query executes
// on the first Next call.
type RowIterator struct {
	context context.Context
	query   *Query
	data    *payload
	index   int  // the data element for Next() to return
	started bool // if at least one Next call was ever made
}

// newRowIterator creates a new iterator.
func newRowIterator(ctx context.Context, query *Query) *RowIterator {
	return &RowIterator{context: ctx, query: query}
}

// Next loads the next row. If there are no more rows, the second value is
// false. Note, that error may be non-nil regardless of the end of iterator.
func (it *RowIterator) Next(row ValueLoader) (bool, error) {
	if it.query == nil {
		return false, nil
	}
	if !it.started {
		it.started = true
		data, err := it.query.fetchPayload(it.context)
		if err != nil {
			return false, err
		}
		it.data = data
		logging.Infof(it.context, "tushare: %s fetched %d rows",
			it.query.String(), len(data.Items))
	}
	if it.data == nil || it.index >= len(it.data.Items) {
		return false, nil
	}
	err := row.Load(it.data.Items[it.index], it.data.Fields)
	it.index++
	if err != nil {
		return true, errors.Annotate(err, "failed to parse row %d", it.index)
	}
	return true, nil
}

// Read sets up the iterator over the result rows, which will execute the
// query on the first Next call.
func (q *Query) Read(ctx context.Context) *RowIterator {
	return newRowIterator(ctx, q)
}

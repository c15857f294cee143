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

import "fmt"

// Kind classifies the ways a query can fail.
type Kind int

// Values of Kind.
const (
	KindNetwork Kind = iota + 1 // connection, timeout or HTTP status failure
	KindRequest                 // the API rejected the request (nonzero code)
	KindJSON                    // malformed request or response JSON
	KindData                    // the response envelope misses a required node
	KindEmpty                   // the query matched no rows
	KindFrame                   // dataframe construction failed
)

// String returns a short name of the kind.
func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindRequest:
		return "request"
	case KindJSON:
		return "json"
	case KindData:
		return "data"
	case KindEmpty:
		return "empty"
	case KindFrame:
		return "frame"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Error is the error type returned by query operations. Callers can type
// assert it and switch on Kind.
type Error struct {
	Kind Kind
	Code int    // the API status code, set for KindRequest
	Msg  string // human-readable detail; the API message for KindRequest
	Err  error  // the underlying error, if any
}

var _ error = &Error{}

// Error implements the error interface.
func (e *Error) Error() string {
	s := e.Kind.String()
	if e.Kind == KindRequest {
		s += fmt.Sprintf(" [code=%d]", e.Code)
	}
	if e.Msg != "" {
		s += ": " + e.Msg
	}
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}

// Unwrap returns the underlying error, if any.
func (e *Error) Unwrap() error { return e.Err }

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

package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stockparfait/fetch"
	"github.com/stockparfait/logging"
	"github.com/stockparfait/testutil"
	"github.com/stockparfait/tushare/tushare"

	. "github.com/smartystreets/goconvey/convey"
)

func TestMain(t *testing.T) {
	tmpdir, tmpdirErr := os.MkdirTemp("", "test_tushare_query")
	defer os.RemoveAll(tmpdir)

	Convey("Setup succeeded", t, func() {
		So(tmpdirErr, ShouldBeNil)
	})

	Convey("parseFlags", t, func() {
		Convey("with all arguments", func() {
			flags, err := parseFlags([]string{
				"-config", "path/to/config", "-api", "daily",
				"-params", "ts_code=000001.SZ", "-fields", "ts_code,close",
				"-rows", "5", "-csv", "-log-level", "warning"})
			So(err, ShouldBeNil)
			So(flags.ConfigDir, ShouldEqual, "path/to/config")
			So(flags.API, ShouldEqual, "daily")
			So(flags.Params, ShouldEqual, "ts_code=000001.SZ")
			So(flags.Fields, ShouldEqual, "ts_code,close")
			So(flags.Rows, ShouldEqual, 5)
			So(flags.CSV, ShouldBeTrue)
			So(flags.LogLevel, ShouldEqual, logging.Warning)
		})

		Convey("-api is required", func() {
			_, err := parseFlags([]string{"-params", "ts_code=000001.SZ"})
			So(err, ShouldNotBeNil)
		})
	})

	Convey("parseParams", t, func() {
		Convey("empty value", func() {
			params, err := parseParams("")
			So(err, ShouldBeNil)
			So(params, ShouldResemble, map[string]string{})
		})

		Convey("key=value pairs", func() {
			params, err := parseParams("ts_code=000001.SZ,start_date=20220601")
			So(err, ShouldBeNil)
			So(params, ShouldResemble, map[string]string{
				"ts_code":    "000001.SZ",
				"start_date": "20220601",
			})
		})

		Convey("value containing '='", func() {
			params, err := parseParams("limit=a=b")
			So(err, ShouldBeNil)
			So(params, ShouldResemble, map[string]string{"limit": "a=b"})
		})

		Convey("missing '='", func() {
			_, err := parseParams("ts_code")
			So(err, ShouldNotBeNil)
		})

		Convey("empty key", func() {
			_, err := parseParams("=000001.SZ")
			So(err, ShouldNotBeNil)
		})
	})

	Convey("parseConfig", t, func() {
		fileName := filepath.Join(tmpdir, "config.toml")
		f, err := os.OpenFile(fileName, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
		So(err, ShouldBeNil)
		defer f.Close()

		_, err = f.Write([]byte(`token = "testToken"
`))
		So(err, ShouldBeNil)
		c, err := parseConfig(tmpdir)
		So(err, ShouldBeNil)
		So(c.Token, ShouldEqual, "testToken")

		Convey("config file must exist", func() {
			_, err := parseConfig(filepath.Join(tmpdir, "nosuchdir"))
			So(err, ShouldNotBeNil)
		})
	})

	Convey("printData works", t, func() {
		confDir := filepath.Join(tmpdir, "conf")
		So(os.MkdirAll(confDir, 0755), ShouldBeNil)
		f, err := os.OpenFile(filepath.Join(confDir, "config.toml"),
			os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
		So(err, ShouldBeNil)
		defer f.Close()
		_, err = f.Write([]byte(`token = "testToken"
`))
		So(err, ShouldBeNil)

		server := testutil.NewTestServer()
		defer server.Close()
		tushare.URL = server.URL()
		ctx := fetch.UseClient(context.Background(), server.Client())

		body, err := tushare.TestResponse(0, "", []string{"ts_code", "close"},
			[][]tushare.Value{{"000001.SZ", 14.35}, {"000002.SZ", 9.51}})
		So(err, ShouldBeNil)
		server.ResponseBody = []string{body}

		Convey("CSV", func() {
			flags, err := parseFlags([]string{"-config", confDir, "-api", "daily",
				"-params", "trade_date=20220601", "-csv"})
			So(err, ShouldBeNil)
			var buf bytes.Buffer
			So(printData(ctx, flags, &buf), ShouldBeNil)
			So("\n"+buf.String(), ShouldEqual, `
ts_code,close
000001.SZ,14.35
000002.SZ,9.51
`)
		})

		Convey("text", func() {
			flags, err := parseFlags([]string{"-config", confDir, "-api", "daily"})
			So(err, ShouldBeNil)
			var buf bytes.Buffer
			So(printData(ctx, flags, &buf), ShouldBeNil)
			So("\n"+buf.String(), ShouldEqual, `
  ts_code | close
--------- | -----
000001.SZ | 14.35
000002.SZ |  9.51
`)
		})

		Convey("limited rows", func() {
			flags, err := parseFlags([]string{"-config", confDir, "-api", "daily",
				"-rows", "1", "-csv"})
			So(err, ShouldBeNil)
			var buf bytes.Buffer
			So(printData(ctx, flags, &buf), ShouldBeNil)
			So("\n"+buf.String(), ShouldEqual, `
ts_code,close
000001.SZ,14.35
`)
		})
	})
}

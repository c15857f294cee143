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
	"context"
	"flag"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/stockparfait/errors"
	"github.com/stockparfait/logging"
	"github.com/stockparfait/tushare/table"
	"github.com/stockparfait/tushare/tushare"

	toml "github.com/pelletier/go-toml/v2"
)

type Flags struct {
	ConfigDir string // default: ~/.tushare
	API       string // required
	Params    string // comma-separated key=value query parameters
	Fields    string // comma-separated result columns; default: all
	CSV       bool   // dump CSV format; default: text
	Rows      int    // max. number of rows to print; 0 = all
	LogLevel  logging.Level
}

func parseFlags(args []string) (*Flags, error) {
	var flags Flags
	fs := flag.NewFlagSet("tushare-query", flag.ExitOnError)
	fs.StringVar(&flags.ConfigDir, "config",
		filepath.Join(os.Getenv("HOME"), ".tushare"),
		"configuration path")
	fs.StringVar(&flags.API, "api", "", "API name to query (required)")
	fs.StringVar(&flags.Params, "params", "",
		"query parameters as key=value pairs separated by commas")
	fs.StringVar(&flags.Fields, "fields", "",
		"result columns separated by commas; default: all")
	fs.BoolVar(&flags.CSV, "csv", false, "print table in CSV format; default: text")
	fs.IntVar(&flags.Rows, "rows", 0, "max. number of rows to print; 0 = all")
	flags.LogLevel = logging.Info
	fs.Var(&flags.LogLevel, "log-level", "Log level: debug, info, warning, error")

	err := fs.Parse(args)
	if err != nil {
		return nil, err
	}
	if flags.API == "" {
		return nil, errors.Reason("missing required -api argument")
	}
	return &flags, err
}

// parseParams splits the value of the -params flag into a parameter map.
func parseParams(s string) (map[string]string, error) {
	params := make(map[string]string)
	if s == "" {
		return params, nil
	}
	for _, kv := range strings.Split(s, ",") {
		p := strings.SplitN(kv, "=", 2)
		if len(p) != 2 || p[0] == "" {
			return nil, errors.Reason("'%s' is not a key=value pair", kv)
		}
		params[p[0]] = p[1]
	}
	return params, nil
}

type Config struct {
	Token string `toml:"token"` // user token for Tushare Pro
}

func parseConfig(dir string) (*Config, error) {
	filePath := filepath.Join(dir, "config.toml")
	if _, err := os.Stat(filePath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			sample := `token = "YourSecretTushareProToken"
`
			err = errors.Annotate(err,
				"config file '%s' does not exist.\nPlease create config file containing:\n%s",
				filePath, sample)
			return nil, err
		} else {
			return nil, errors.Annotate(err,
				"cannot check config file for existence: '%s'", filePath)
		}
	}
	f, err := os.Open(filePath)
	if err != nil {
		return nil, errors.Annotate(err, "failed to open config file %s", filePath)
	}
	defer f.Close()

	d := toml.NewDecoder(f)
	var c Config
	if err := d.Decode(&c); err != nil {
		return nil, errors.Annotate(err, "failed to read config file %s", filePath)
	}
	if c.Token == "" {
		return nil, errors.Reason("config file %s sets no token", filePath)
	}
	return &c, nil
}

func printData(ctx context.Context, flags *Flags, w io.Writer) error {
	config, err := parseConfig(flags.ConfigDir)
	if err != nil {
		return errors.Annotate(err, "failed to parse config")
	}
	params, err := parseParams(flags.Params)
	if err != nil {
		return errors.Annotate(err, "failed to parse -params")
	}

	ctx = tushare.UseClient(ctx, config.Token)
	q := tushare.NewQuery(flags.API).Params(params)
	if flags.Fields != "" {
		q = q.Fields(strings.Split(flags.Fields, ",")...)
	}
	df, err := q.DataFrame(ctx)
	if err != nil {
		return errors.Annotate(err, "failed to run query %s", q)
	}
	p := table.Params{Rows: flags.Rows}
	if flags.CSV {
		if err := df.WriteCSV(w, p); err != nil {
			return errors.Annotate(err, "failed to print CSV")
		}
		return nil
	}
	if err := df.WriteText(w, p); err != nil {
		return errors.Annotate(err, "failed to print text")
	}
	return nil
}

func main() {
	ctx := context.Background()
	flags, err := parseFlags(os.Args[1:])
	if err != nil {
		ctx = logging.Use(ctx, logging.DefaultGoLogger(logging.Info))
		logging.Errorf(ctx, "failed to parse flags: %s", err.Error())
		os.Exit(1)
	}
	ctx = logging.Use(ctx, logging.DefaultGoLogger(flags.LogLevel))

	if err := printData(ctx, flags, os.Stdout); err != nil {
		logging.Errorf(ctx, err.Error())
		os.Exit(1)
	}
}

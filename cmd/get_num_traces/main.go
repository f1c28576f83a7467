// Copyright 2019 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Captures a number of traces back to back on one connection.
package main

import (
	"flag"
	"strings"

	"github.com/asvela/keyoscacquire"
	"github.com/asvela/keyoscacquire/traceio"
	"github.com/asvela/keyoscacquire/util"

	"github.com/golang/glog"
)

var (
	flags       = util.RegisterFlags(flag.CommandLine)
	tracesFlag  = flag.Int("traces", 10, "Number of traces to capture")
	commentFlag = flag.String("comment", "", "Additional header line")
)

func init() {
	flag.Parse()
}

func run() error {
	var err error
	var cfg keyoscacquire.Config
	if cfg, err = flags.Config(); err != nil {
		return err
	}
	base := util.SplitFilename(&cfg)

	var scope *keyoscacquire.Oscilloscope
	if scope, err = keyoscacquire.Open(cfg); err != nil {
		return err
	}
	defer scope.Close()

	n := 1
	for i := 0; i < *tracesFlag; i++ {
		glog.Infof("Starting trace [%d/%d]", i+1, *tracesFlag)
		var trace *keyoscacquire.Trace
		if trace, err = scope.GetTrace(); err != nil {
			return err
		}
		if trace == nil {
			glog.Warning("No active channels, nothing saved")
			return nil
		}
		header, err := scope.GenerateFileHeader(nil, *commentFlag, true)
		if err != nil {
			return err
		}
		name := traceio.NextFreeName(base, cfg.FileDelimiter, cfg.Extension, n)
		if _, err = util.SaveTrace(cfg, strings.TrimSuffix(name, cfg.Extension), trace, header); err != nil {
			return err
		}
		n++
	}
	return nil
}

func main() {
	defer glog.Flush()
	if err := run(); err != nil {
		glog.Fatal(err)
	}
}

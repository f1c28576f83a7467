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

// Captures a trace every time enter is pressed, until q is entered.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/asvela/keyoscacquire"
	"github.com/asvela/keyoscacquire/traceio"
	"github.com/asvela/keyoscacquire/util"

	"github.com/golang/glog"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	flags           = util.RegisterFlags(flag.CommandLine)
	connectEachFlag = flag.Bool("connect_each_time", false, "Reconnect for every trace, picking up changed active channels")
	commentFlag     = flag.String("comment", "", "Additional header line")
)

func init() {
	flag.Parse()
}

type looper struct {
	cfg       keyoscacquire.Config
	base      string
	n         int
	scope     *keyoscacquire.Oscilloscope
	publisher *traceio.RedisPublisher
}

// Captures, saves and publishes one trace.
func (l *looper) capture(scope *keyoscacquire.Oscilloscope) error {
	var err error
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
	name := traceio.NextFreeName(l.base, l.cfg.FileDelimiter, l.cfg.Extension, l.n)
	if name, err = util.SaveTrace(l.cfg, strings.TrimSuffix(name, l.cfg.Extension), trace, header); err != nil {
		return err
	}
	l.n++
	for _, s := range trace.ChannelStats() {
		glog.Infof("CH%d: mean %.4g V, pk-pk %.4g V", s.Channel, s.Mean, s.PkPk)
	}

	if l.cfg.RedisAddr == "" {
		return nil
	}
	ctx := context.Background()
	if l.publisher == nil {
		serial := scope.Identity().Serial
		if l.publisher, err = traceio.NewRedisPublisher(ctx, l.cfg.RedisAddr, l.cfg.RedisChannel, serial); err != nil {
			return err
		}
	}
	return l.publisher.Publish(ctx, trace, header)
}

func (l *looper) next() error {
	if !*connectEachFlag {
		return l.capture(l.scope)
	}
	scope, err := keyoscacquire.Open(l.cfg)
	if err != nil {
		return err
	}
	defer scope.Close()
	return l.capture(scope)
}

func run() error {
	var err error
	l := &looper{n: 1}
	if l.cfg, err = flags.Config(); err != nil {
		return err
	}
	l.base = util.SplitFilename(&l.cfg)
	defer func() {
		if l.publisher != nil {
			l.publisher.Close()
		}
	}()

	if l.cfg.MetricsPort > 0 {
		http.Handle("/metrics", promhttp.Handler())
		go func() {
			glog.Error(http.ListenAndServe(fmt.Sprintf(":%d", l.cfg.MetricsPort), nil))
		}()
	}

	if !*connectEachFlag {
		if l.scope, err = keyoscacquire.Open(l.cfg); err != nil {
			return err
		}
		defer l.scope.Close()
	}

	in := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("Press Enter to capture a trace, or q + Enter to quit: ")
		if !in.Scan() || strings.TrimSpace(in.Text()) == "q" {
			break
		}
		if err = l.next(); err != nil {
			return err
		}
	}
	return in.Err()
}

func main() {
	defer glog.Flush()
	if err := run(); err != nil {
		glog.Fatal(err)
	}
}

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

// Serves saved traces of a capture directory over HTTP.
package main

import (
	"bytes"
	"flag"
	"fmt"
	"net/http"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/asvela/keyoscacquire"
	"github.com/asvela/keyoscacquire/traceio"
	"github.com/asvela/keyoscacquire/util"

	"github.com/fsnotify/fsnotify"
	"github.com/golang/glog"
	"github.com/labstack/echo"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	portFlag = flag.Int("port", 8080, "Server HTTP port number")
	dirFlag  = flag.String("dir", ".", "Directory of saved traces to display")
	waitFlag = flag.Duration("wait", 5*time.Minute, "Longest wait for directory changes")
)

type TraceSummary struct {
	Name       string                       `json:"name"`
	Header     []string                     `json:"header"`
	Channels   []int                        `json:"channels"`
	NumSamples int                          `json:"num_samples"`
	Stats      []keyoscacquire.ChannelStats `json:"stats"`
}

type TraceData struct {
	Time   []float64   `json:"time"`
	Values [][]float64 `json:"values"`
}

func isTraceFile(name string) bool {
	_, ext := traceio.SplitExt(name)
	return ext != ""
}

// A go-routine that waits for directory changes.
// Notifies changes by publishing an event via broker.
func watchDirectoryChanges(dir string, broker *util.Broker) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		glog.Errorf("NewWatcher failed: %v", err)
		return
	}
	defer watcher.Close()

	if err = watcher.Add(dir); err != nil {
		glog.Errorf("watcher.Add failed: %v", err)
		return
	}

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				glog.Warning("watcher.Events is not ok. Aborting")
				return
			}
			glog.V(1).Infof("Watcher event: %v", event)
			if !isTraceFile(event.Name) {
				continue
			}
			name := filepath.Base(event.Name)
			switch {
			case event.Has(fsnotify.Create), event.Has(fsnotify.Write):
				broker.Publish(util.NewTraceEvent(name, util.TraceCreated))
			case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
				broker.Publish(util.NewTraceEvent(name, util.TraceRemoved))
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				glog.Warning("watcher.Errors is not ok. Aborting")
				return
			}
			glog.Warningf("Watcher error: %v", err)
		}
	}
}

// Blocks until the directory changes, the client leaves or wait expires.
func waitForTraces(c echo.Context, broker *util.Broker, wait time.Duration) {
	dirChanged := broker.Subscribe()
	defer broker.Unsubscribe(dirChanged)
	timedOut := time.NewTimer(wait)
	defer timedOut.Stop()

	select {
	case <-timedOut.C:
		glog.V(1).Infof("Timed out")
	case <-c.Request().Context().Done():
		glog.V(1).Infof("Client disconnected")
	case ev := <-dirChanged:
		glog.V(1).Infof("Trace %s %s", ev.Name, ev.Op)
	}
}

func listTraces(dir string) ([]string, error) {
	entries, err := filepath.Glob(filepath.Join(dir, "*"))
	if err != nil {
		return nil, err
	}
	names := []string{}
	for _, e := range entries {
		if isTraceFile(e) {
			names = append(names, filepath.Base(e))
		}
	}
	sort.Strings(names)
	return names, nil
}

func loadTrace(dir string, c echo.Context) (*keyoscacquire.Trace, []string, error) {
	name := c.Param("name")
	if name != filepath.Base(name) || strings.HasPrefix(name, ".") || !isTraceFile(name) {
		return nil, nil, echo.NewHTTPError(http.StatusBadRequest, "Invalid trace name")
	}
	trace, header, err := traceio.Load(filepath.Join(dir, name))
	if err != nil {
		glog.Errorf("Error loading trace file: %v", err)
		return nil, nil, echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	return trace, header, nil
}

func newServer(dir string, broker *util.Broker, wait time.Duration) *echo.Echo {
	e := echo.New()

	// Returns list of trace files in directory.
	e.GET("/traces", func(c echo.Context) error {
		if c.QueryParam("wait") == "true" {
			waitForTraces(c, broker, wait)
		}
		names, err := listTraces(dir)
		if err != nil {
			glog.Errorf("Listing traces failed: %v", err)
			return err
		}
		return c.JSON(http.StatusOK, names)
	})

	// Header, channels and statistics of a single trace file.
	e.GET("/traces/:name", func(c echo.Context) error {
		trace, header, err := loadTrace(dir, c)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, TraceSummary{
			Name:       c.Param("name"),
			Header:     header,
			Channels:   trace.Channels,
			NumSamples: trace.NumSamples(),
			Stats:      trace.ChannelStats(),
		})
	})

	e.GET("/traces/:name/data", func(c echo.Context) error {
		trace, _, err := loadTrace(dir, c)
		if err != nil {
			return err
		}
		data := TraceData{Time: make([]float64, trace.NumSamples())}
		for i := range data.Time {
			data.Time[i] = trace.Time.AtVec(i)
		}
		for j := range trace.Channels {
			data.Values = append(data.Values, trace.Column(j))
		}
		return c.JSON(http.StatusOK, data)
	})

	e.GET("/traces/:name/png", func(c echo.Context) error {
		trace, _, err := loadTrace(dir, c)
		if err != nil {
			return err
		}
		buf := bytes.Buffer{}
		if err = traceio.WritePNG(&buf, trace); err != nil {
			return err
		}
		return c.Blob(http.StatusOK, "image/png", buf.Bytes())
	})

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	return e
}

func main() {
	flag.Parse()
	defer glog.Flush()

	watchBroker := util.NewBroker()
	go watchBroker.Start()
	go watchDirectoryChanges(*dirFlag, watchBroker)

	e := newServer(*dirFlag, watchBroker, *waitFlag)
	glog.Fatal(e.Start(fmt.Sprintf(":%d", *portFlag)))
}

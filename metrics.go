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

// Prometheus instrumentation of the capture path.
package keyoscacquire

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	TracesCaptured = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "keyoscacquire_traces_captured_total",
		Help: "Traces captured and decoded.",
	})

	TransportErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "keyoscacquire_transport_errors_total",
		Help: "Failed command/response round trips.",
	})

	DecodeErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "keyoscacquire_decode_errors_total",
		Help: "Captures that could not be decoded.",
	})

	CaptureDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "keyoscacquire_capture_duration_seconds",
		Help:    "Time spent digitizing and reading all channels of one trace.",
		Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
	})
)

func init() {
	prometheus.MustRegister(TracesCaptured)
	prometheus.MustRegister(TransportErrors)
	prometheus.MustRegister(DecodeErrors)
	prometheus.MustRegister(CaptureDuration)
}

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

package traceio

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/asvela/keyoscacquire"
	"gonum.org/v1/gonum/mat"
)

type traceRecord struct {
	Header     string      `json:"header,omitempty"`
	Identity   string      `json:"id,omitempty"`
	CapturedAt time.Time   `json:"t"`
	Channels   []int       `json:"ch"`
	Time       []float64   `json:"time"`
	Values     [][]float64 `json:"v"`
}

func newRecord(trace *keyoscacquire.Trace, header string) traceRecord {
	rec := traceRecord{
		Header:     header,
		Identity:   trace.Identity,
		CapturedAt: trace.CapturedAt,
		Channels:   trace.Channels,
		Time:       make([]float64, trace.NumSamples()),
		Values:     make([][]float64, len(trace.Channels)),
	}
	for i := range rec.Time {
		rec.Time[i] = trace.Time.AtVec(i)
	}
	for j := range rec.Values {
		rec.Values[j] = trace.Column(j)
	}
	return rec
}

func (rec traceRecord) trace() (*keyoscacquire.Trace, error) {
	n := len(rec.Time)
	if n == 0 || len(rec.Values) == 0 || len(rec.Values) != len(rec.Channels) {
		return nil, fmt.Errorf("Malformed trace record: %d samples, %d columns, %d channels",
			n, len(rec.Values), len(rec.Channels))
	}
	values := mat.NewDense(n, len(rec.Values), nil)
	for j, col := range rec.Values {
		if len(col) != n {
			return nil, fmt.Errorf("Malformed trace record: column %d has %d samples, expected %d", j, len(col), n)
		}
		values.SetCol(j, col)
	}
	return &keyoscacquire.Trace{
		Time:       mat.NewVecDense(n, rec.Time),
		Values:     values,
		Channels:   rec.Channels,
		Identity:   rec.Identity,
		CapturedAt: rec.CapturedAt,
	}, nil
}

// JSON encoding of a trace, as published and stored in .json.gz files.
func EncodeJSON(trace *keyoscacquire.Trace, header string) ([]byte, error) {
	return json.Marshal(newRecord(trace, header))
}

func SaveJSONGz(dst io.Writer, trace *keyoscacquire.Trace, header string) error {
	var err error
	zipper := gzip.NewWriter(dst)
	encoder := json.NewEncoder(zipper)
	if err = encoder.Encode(newRecord(trace, header)); err != nil {
		return fmt.Errorf("JSON encoder failed %v", err)
	}
	if err = zipper.Close(); err != nil {
		return fmt.Errorf("gzip close failed %v", err)
	}
	return nil
}

// Returns the trace and its header.
func LoadJSONGz(src io.Reader) (*keyoscacquire.Trace, string, error) {
	var rec traceRecord
	zipper, err := gzip.NewReader(src)
	if err != nil {
		return nil, "", fmt.Errorf("gzip NewReader failed %v", err)
	}
	decoder := json.NewDecoder(zipper)
	if err = decoder.Decode(&rec); err != nil {
		return nil, "", fmt.Errorf("JSON decoder failed %v", err)
	}
	trace, err := rec.trace()
	return trace, rec.Header, err
}

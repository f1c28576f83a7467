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

// Saving, loading, plotting and publishing of captured traces.
package traceio

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/asvela/keyoscacquire"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

const commentPrefix = "# "

// Writes header lines prefixed by "# ", then one row per sample:
// time followed by the channel voltages.
func SaveCSV(w io.Writer, trace *keyoscacquire.Trace, header string) error {
	bw := bufio.NewWriter(w)
	if header != "" {
		for _, line := range strings.Split(header, "\n") {
			if _, err := fmt.Fprintf(bw, "%s%s\n", commentPrefix, line); err != nil {
				return err
			}
		}
	}
	_, cols := trace.Values.Dims()
	for i := 0; i < trace.NumSamples(); i++ {
		bw.WriteString(strconv.FormatFloat(trace.Time.AtVec(i), 'e', 18, 64))
		for j := 0; j < cols; j++ {
			bw.WriteByte(',')
			bw.WriteString(strconv.FormatFloat(trace.Values.At(i, j), 'e', 18, 64))
		}
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// Reads a file written by SaveCSV. Channel numbers come from the last header
// line (time,<channels>); names that are not numbers load as 0.
func LoadCSV(r io.Reader) (*keyoscacquire.Trace, []string, error) {
	var header []string
	var times []float64
	var rows [][]float64

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	for line := 1; sc.Scan(); line++ {
		text := sc.Text()
		if strings.HasPrefix(text, "#") {
			header = append(header, strings.TrimPrefix(strings.TrimPrefix(text, "#"), " "))
			continue
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		fields := strings.Split(text, ",")
		if len(fields) < 2 {
			return nil, header, errors.Errorf("line %d: expected time and at least one channel", line)
		}
		if len(rows) > 0 && len(fields)-1 != len(rows[0]) {
			return nil, header, errors.Errorf("line %d: %d columns, expected %d", line, len(fields), len(rows[0])+1)
		}
		vals := make([]float64, len(fields))
		for i, f := range fields {
			v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
			if err != nil {
				return nil, header, errors.Wrapf(err, "line %d", line)
			}
			vals[i] = v
		}
		times = append(times, vals[0])
		rows = append(rows, vals[1:])
	}
	if err := sc.Err(); err != nil {
		return nil, header, err
	}
	if len(rows) == 0 {
		return nil, header, errors.New("no samples")
	}

	n, m := len(rows), len(rows[0])
	values := mat.NewDense(n, m, nil)
	for i, row := range rows {
		values.SetRow(i, row)
	}
	trace := &keyoscacquire.Trace{
		Time:     mat.NewVecDense(n, times),
		Values:   values,
		Channels: make([]int, m),
	}
	if len(header) > 0 {
		if id := header[0]; !strings.HasPrefix(id, "time,") {
			trace.Identity = id
		}
		names := strings.Split(header[len(header)-1], ",")
		if len(names) == m+1 && names[0] == "time" {
			for i, name := range names[1:] {
				trace.Channels[i], _ = strconv.Atoi(name)
			}
		}
	}
	return trace, header, nil
}

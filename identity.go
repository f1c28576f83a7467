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

// Instrument identity and model-series specific command variants.
package keyoscacquire

import (
	"strings"
	"unicode"
)

const (
	SeriesNotApplicable = "N/A"
	SeriesNotFound      = "not found"
)

// Keysight InfiniiVision series that are known to work.
var SupportedSeries = []string{"1000", "2000", "3000", "4000", "6000"}

type Identity struct {
	Raw      string
	Maker    string
	Model    string
	Serial   string
	Firmware string
	Series   string
}

// Interprets an *IDN? reply of the form maker,model,serial,firmware.
// Series is the first digit of a DSO/MSO model followed by "000".
func ParseIdentity(idn string) (Identity, error) {
	id := Identity{Raw: idn, Series: SeriesNotFound}
	fields := strings.Split(idn, ",")
	if len(fields) != 4 {
		return id, decodeErrorf("unexpected identity string '%s'", idn)
	}
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}
	id.Maker, id.Model, id.Serial, id.Firmware = fields[0], fields[1], fields[2], fields[3]
	id.Series = modelSeries(id.Model)
	return id, nil
}

func modelSeries(model string) string {
	if !strings.HasPrefix(model, "DSO") && !strings.HasPrefix(model, "MSO") {
		return SeriesNotApplicable
	}
	for _, c := range model {
		if unicode.IsDigit(c) {
			return string(c) + "000"
		}
	}
	return SeriesNotFound
}

func (id Identity) Supported() bool {
	for _, s := range SupportedSeries {
		if id.Series == s {
			return true
		}
	}
	return false
}

type AsciiStrip int

const (
	// Strip a leading IEEE 488.2 definite-length header if there is one.
	AsciiStripBlockHeader AsciiStrip = iota
	// Slice off a fixed count of leading bytes.
	AsciiStripLeading AsciiStrip = iota
	// Trim trailing whitespace and a dangling separator.
	AsciiStripTrailing AsciiStrip = iota
)

func (s AsciiStrip) String() string {
	switch s {
	case AsciiStripBlockHeader:
		return "AsciiStripBlockHeader"
	case AsciiStripLeading:
		return "AsciiStripLeading"
	case AsciiStripTrailing:
		return "AsciiStripTrailing"
	}
	return "AsciiStrip(?)"
}

// Command variants that differ between model series.
// Consulted when setting the point count and when stripping ASCII blocks.
type SeriesQuirks struct {
	PointsCommand string
	// Point count writes must be bracketed by STOP/RUN.
	PointsNeedStop bool
	// Above this count the points mode is switched to RAW. Zero disables.
	RawPointsThreshold int
	AsciiStrip         AsciiStrip
	AsciiLeadingBytes  int
}

var defaultQuirks = SeriesQuirks{
	PointsCommand:      ":WAVeform:POINts",
	PointsNeedStop:     true,
	RawPointsThreshold: 7680,
	AsciiStrip:         AsciiStripBlockHeader,
}

var seriesQuirks = map[string]SeriesQuirks{
	"2000": {
		PointsCommand:      ":WAVeform:POINts",
		PointsNeedStop:     true,
		RawPointsThreshold: 7680,
		AsciiStrip:         AsciiStripLeading,
		AsciiLeadingBytes:  10,
	},
	"9000": {
		PointsCommand: ":ACQuire:POINts",
		AsciiStrip:    AsciiStripTrailing,
	},
}

func QuirksFor(series string) SeriesQuirks {
	if q, ok := seriesQuirks[series]; ok {
		return q
	}
	return defaultQuirks
}

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

// Acquisition mode, points mode and waveform transfer format settings.
package keyoscacquire

import (
	"strconv"
	"strings"
)

const (
	MinAverages = 2
	MaxAverages = 65536
)

type AcqType int

const (
	AcqNormal         AcqType = iota
	AcqHighResolution AcqType = iota
	AcqAverage        AcqType = iota
)

// Short SCPI form, as the instrument reports it.
func (a AcqType) String() string {
	switch a {
	case AcqNormal:
		return "NORM"
	case AcqHighResolution:
		return "HRES"
	case AcqAverage:
		return "AVER"
	}
	return "AcqType(" + strconv.Itoa(int(a)) + ")"
}

// Parses an acquisition type token: NORMal, HRESolution, AVERage or AVER<m>.
// Only the first four characters select the type. For AVER<m> the returned
// count is m, otherwise zero.
func ParseAcqType(token string) (AcqType, int, error) {
	t := strings.TrimSpace(token)
	if len(t) < 4 {
		return 0, 0, validationErrorf("acquisition type", token,
			"expected NORMal, HRESolution, AVERage or AVER<m>")
	}
	switch strings.ToUpper(t[:4]) {
	case "NORM":
		return AcqNormal, 0, nil
	case "HRES":
		return AcqHighResolution, 0, nil
	case "AVER":
		rest := t[4:]
		if rest == "" || strings.EqualFold(rest, "age") {
			return AcqAverage, 0, nil
		}
		n, err := strconv.Atoi(rest)
		if err != nil {
			return 0, 0, validationErrorf("acquisition type", token,
				"'%s' is not an integer number of averages, use AVER or AVER<m>", rest)
		}
		if err = ValidateAverages(n); err != nil {
			return 0, 0, err
		}
		return AcqAverage, n, nil
	}
	return 0, 0, validationErrorf("acquisition type", token,
		"expected NORMal, HRESolution, AVERage or AVER<m>")
}

func ValidateAverages(n int) error {
	if n < MinAverages || n > MaxAverages {
		return validationErrorf("number of averages", n,
			"out of range [%d, %d]", MinAverages, MaxAverages)
	}
	return nil
}

type PointsMode int

const (
	PointsNormal  PointsMode = iota
	PointsRaw     PointsMode = iota
	PointsMaximum PointsMode = iota
)

func (p PointsMode) String() string {
	switch p {
	case PointsNormal:
		return "NORM"
	case PointsRaw:
		return "RAW"
	case PointsMaximum:
		return "MAX"
	}
	return "PointsMode(" + strconv.Itoa(int(p)) + ")"
}

func ParsePointsMode(token string) (PointsMode, error) {
	t := strings.ToUpper(strings.TrimSpace(token))
	switch {
	case strings.HasPrefix(t, "NORM"):
		return PointsNormal, nil
	case t == "RAW":
		return PointsRaw, nil
	case strings.HasPrefix(t, "MAX"):
		return PointsMaximum, nil
	}
	return 0, validationErrorf("points mode", token, "expected NORMal, RAW or MAXimum")
}

type WaveFormat int

const (
	FormatWord  WaveFormat = iota
	FormatByte  WaveFormat = iota
	FormatAscii WaveFormat = iota
)

func (w WaveFormat) String() string {
	switch w {
	case FormatWord:
		return "WORD"
	case FormatByte:
		return "BYTE"
	case FormatAscii:
		return "ASC"
	}
	return "WaveFormat(" + strconv.Itoa(int(w)) + ")"
}

// Bytes per transferred sample, zero for ASCII.
func (w WaveFormat) Width() int {
	switch w {
	case FormatWord:
		return 2
	case FormatByte:
		return 1
	}
	return 0
}

func (w WaveFormat) Binary() bool {
	return w == FormatWord || w == FormatByte
}

func (w WaveFormat) valid() bool {
	return w == FormatWord || w == FormatByte || w == FormatAscii
}

// Parses WORD, BYTE or ASCii (first three characters, case insensitive).
func ParseWaveFormat(token string) (WaveFormat, error) {
	t := strings.ToUpper(strings.TrimSpace(token))
	if len(t) >= 3 {
		switch t[:3] {
		case "WOR":
			return FormatWord, nil
		case "BYT":
			return FormatByte, nil
		case "ASC":
			return FormatAscii, nil
		}
	}
	return 0, validationErrorf("waveform format", token, "expected WORD, BYTE or ASCii")
}

// Leaves the point count unchanged in AcquisitionOptions.
const PointsUnchanged = -1

// High-level acquisition intent. Empty tokens and zero averages leave the
// current session setting in place. NumPoints of 0 requests the maximum for
// the points mode; PointsUnchanged leaves it alone.
type AcquisitionOptions struct {
	AcqType     string
	NumAverages int
	WaveFormat  string
	PointsMode  string
	NumPoints   int
}

// Fully validated acquisition settings ready to be written.
type acquisitionPlan struct {
	setType     bool
	acqType     AcqType
	setAverages bool
	averages    int
	setFormat   bool
	format      WaveFormat
	setPMode    bool
	pointsMode  PointsMode
	overridden  bool
	setPoints   bool
	numPoints   int
	forceRawPts bool
}

// Validates options against the current settings without touching the device.
func planAcquisition(opts AcquisitionOptions, cur settings, quirks SeriesQuirks) (acquisitionPlan, error) {
	var err error
	p := acquisitionPlan{
		acqType:    cur.acqType,
		averages:   cur.averages,
		format:     cur.format,
		pointsMode: cur.pointsMode,
	}

	tokenAverages := 0
	if opts.AcqType != "" {
		if p.acqType, tokenAverages, err = ParseAcqType(opts.AcqType); err != nil {
			return p, err
		}
		p.setType = true
	}
	// A count embedded in the type token wins over the separate option.
	n := tokenAverages
	if n == 0 {
		n = opts.NumAverages
	}
	if n != 0 && p.acqType == AcqAverage {
		if err = ValidateAverages(n); err != nil {
			return p, err
		}
		p.averages = n
		p.setAverages = true
	}

	if opts.WaveFormat != "" {
		if p.format, err = ParseWaveFormat(opts.WaveFormat); err != nil {
			return p, err
		}
		p.setFormat = true
	}

	if opts.PointsMode != "" {
		if p.pointsMode, err = ParsePointsMode(opts.PointsMode); err != nil {
			return p, err
		}
		p.setPMode = true
	}

	switch {
	case opts.NumPoints == PointsUnchanged:
	case opts.NumPoints < 0:
		return p, validationErrorf("number of points", opts.NumPoints,
			"must be a non-negative integer (0 for maximum)")
	default:
		p.setPoints = true
		p.numPoints = opts.NumPoints
		if quirks.RawPointsThreshold > 0 && p.numPoints > quirks.RawPointsThreshold &&
			p.pointsMode != PointsRaw {
			p.pointsMode = PointsRaw
			p.setPMode = true
			p.forceRawPts = true
		}
	}

	// The instrument only supports NORMal points mode while averaging.
	if p.acqType == AcqAverage && p.pointsMode != PointsNormal {
		p.pointsMode = PointsNormal
		p.setPMode = true
		p.overridden = true
	}
	return p, nil
}

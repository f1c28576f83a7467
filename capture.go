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

// Drives one acquisition cycle and reads the waveforms back.
package keyoscacquire

import (
	"strconv"
	"strings"
	"time"

	"github.com/golang/glog"
)

// Undecoded waveforms of one capture, in channel order.
type RawCapture struct {
	Format   WaveFormat
	Channels []int
	// One block per channel for WORD and BYTE.
	Binary [][]float64
	// One text block per channel for ASCii.
	Ascii []string
	// Per channel for binary formats, a single shared one for ASCii.
	Preambles []string
	// :TIMebase:RANGe? in seconds, ASCii only.
	Duration float64
}

// Digitizes (depending on the digitize policy) and reads every channel.
// The instrument is set running afterwards if RunAfterCapture.
func (o *Oscilloscope) CaptureAndRead(channels []int) (*RawCapture, error) {
	var err error
	if o.closed {
		return nil, ErrClosed
	}
	var format WaveFormat
	if format, err = o.WaveFormat(); err != nil {
		return nil, err
	}
	if !format.valid() {
		return nil, validationErrorf("waveform format", format, "could not capture and read data")
	}
	raw := &RawCapture{Format: format, Channels: append([]int(nil), channels...)}
	if len(channels) == 0 {
		glog.Warning("No channels to capture")
		return raw, nil
	}

	if glog.V(1) {
		if s, err := o.AcqSettings(); err == nil {
			glog.Info(s)
		}
	}
	glog.V(1).Infof("Acquiring (format '%s')", format)

	prev := o.state
	o.state = StateCapturing
	defer func() { o.state = prev }()
	start := time.Now()

	if err = o.digitize(channels); err != nil {
		return nil, err
	}
	if format.Binary() {
		err = o.readBinary(raw, format.Width())
	} else {
		err = o.readAscii(raw)
	}
	if err != nil {
		return nil, err
	}

	elapsed := time.Since(start)
	CaptureDuration.Observe(elapsed.Seconds())
	glog.V(1).Infof("Elapsed time capture and read: %.1f ms", float64(elapsed)/float64(time.Millisecond))
	if o.cfg.RunAfterCapture {
		if err = o.Run(); err != nil {
			return nil, err
		}
	}
	return raw, nil
}

// DIGitize acquires all sources at once and stops the instrument.
func (o *Oscilloscope) digitize(channels []int) error {
	switch o.cfg.Digitize {
	case DigitizeNever:
		return nil
	case DigitizeWhenRunning:
		running, err := o.IsRunning()
		if err != nil {
			return err
		}
		// A stopped instrument holds the trace on screen; read that one.
		if !running {
			glog.V(1).Info("Oscilloscope is stopped, reading the trace on screen")
			return nil
		}
	}
	return o.write(":DIGitize " + strings.Join(sources(channels), ", "))
}

// Source select, preamble and data are strictly interleaved per channel.
func (o *Oscilloscope) readBinary(raw *RawCapture, width int) error {
	for _, src := range sources(raw.Channels) {
		if err := o.write(":WAVeform:SOURce " + src); err != nil {
			return err
		}
		pre, err := o.query(":WAVeform:PREamble?")
		if err != nil {
			return err
		}
		data, err := o.queryBinary(":WAVeform:DATA?", width)
		if err != nil {
			return err
		}
		raw.Preambles = append(raw.Preambles, pre)
		raw.Binary = append(raw.Binary, data)
	}
	return nil
}

func (o *Oscilloscope) readAscii(raw *RawCapture) error {
	for _, src := range sources(raw.Channels) {
		if err := o.write(":WAVeform:SOURce " + src); err != nil {
			return err
		}
		data, err := o.query(":WAVeform:DATA?")
		if err != nil {
			return err
		}
		raw.Ascii = append(raw.Ascii, data)
	}
	// The time axis is shared, one preamble is enough.
	pre, err := o.query(":WAVeform:PREamble?")
	if err != nil {
		return err
	}
	raw.Preambles = []string{pre}
	res, err := o.query(":TIMebase:RANGe?")
	if err != nil {
		return err
	}
	if raw.Duration, err = strconv.ParseFloat(res, 64); err != nil {
		return decodeErrorf("unexpected timebase range '%s'", res)
	}
	return nil
}

// Captures the session channels and decodes them. Returns a nil trace
// without error when no channels are selected.
func (o *Oscilloscope) GetTrace() (*Trace, error) {
	raw, err := o.CaptureAndRead(o.channels)
	if err != nil {
		return nil, err
	}
	if len(raw.Channels) == 0 {
		return nil, nil
	}
	t, y, err := Decode(raw, o.quirks)
	if err != nil {
		DecodeErrors.Inc()
		return nil, err
	}
	TracesCaptured.Inc()
	o.last = &Trace{
		Time:       t,
		Values:     y,
		Channels:   raw.Channels,
		Identity:   o.id.Raw,
		CapturedAt: time.Now(),
	}
	return o.last, nil
}

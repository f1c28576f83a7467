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

// Session with one Keysight InfiniiVision oscilloscope.
package keyoscacquire

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang/glog"
)

type State int

const (
	StateDisconnected State = iota
	StateConnected    State = iota
	StateConfigured   State = iota
	StateCapturing    State = iota
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "Disconnected"
	case StateConnected:
		return "Connected"
	case StateConfigured:
		return "Configured"
	case StateCapturing:
		return "Capturing"
	}
	return "State(" + strconv.Itoa(int(s)) + ")"
}

// The error queue holds at most this many entries.
const errorQueueLength = 30

// What the session has written to the instrument. Type and format are only
// trusted once set through this session.
type settings struct {
	acqType     AcqType
	typeKnown   bool
	averages    int
	format      WaveFormat
	formatKnown bool
	pointsMode  PointsMode
	numPoints   int
}

func defaultSettings() settings {
	return settings{acqType: AcqNormal, format: FormatWord, pointsMode: PointsNormal}
}

type Oscilloscope struct {
	t        TransportInterface
	cfg      Config
	id       Identity
	quirks   SeriesQuirks
	cur      settings
	channels []int
	state    State
	closed   bool
	// Most recent trace.
	last *Trace
}

// Connects to the instrument at cfg.Address and applies the configured
// acquisition options and channels.
func Open(cfg Config) (*Oscilloscope, error) {
	var err error
	var t *Scpi
	if t, err = Dial(cfg.Address, cfg.Timeout); err != nil {
		return nil, err
	}
	var o *Oscilloscope
	if o, err = NewOscilloscope(t, cfg); err != nil {
		t.Close()
		return nil, err
	}
	if err = o.Configure(); err != nil {
		o.closeWith(false)
		return nil, err
	}
	return o, nil
}

// Runs the connect sequence on an open transport: clears status, fixes the
// binary encoding to signed LSB first and identifies the instrument.
func NewOscilloscope(t TransportInterface, cfg Config) (*Oscilloscope, error) {
	var err error
	o := &Oscilloscope{t: t, cfg: cfg, cur: defaultSettings(), quirks: defaultQuirks}

	if cfg.GetErrorsOnConnect {
		if errs := o.drainErrorQueue(); len(errs) > 0 {
			glog.Warningf("Error queue on connect: %s", strings.Join(errs, "; "))
		}
	}
	for _, cmd := range []string{"*CLS", ":WAVeform:UNSigned OFF", ":WAVeform:BYTeorder LSBFirst"} {
		if err = o.write(cmd); err != nil {
			return nil, err
		}
	}
	var idn string
	if idn, err = o.query("*IDN?"); err != nil {
		return nil, err
	}
	if o.id, err = ParseIdentity(idn); err != nil {
		glog.Warningf("Failed to interpret the identity string: %v", err)
	} else {
		glog.Infof("Connected to %s %s (serial %s)", o.id.Maker, o.id.Model, o.id.Serial)
	}
	if !o.id.Supported() {
		glog.Warningf("Model '%s' (series %s) is not fully supported, it might work to some extent",
			o.id.Model, o.id.Series)
	}
	o.quirks = QuirksFor(o.id.Series)
	o.state = StateConnected
	return o, nil
}

// Applies the acquisition options and channel request of the session config.
func (o *Oscilloscope) Configure() error {
	var err error
	var channels []int
	if channels, err = ParseChannels(o.cfg.Channels); err != nil {
		return err
	}
	if err = o.SetAcquisition(o.cfg.AcquisitionOptions()); err != nil {
		return err
	}
	_, err = o.SetChannels(channels)
	return err
}

func (o *Oscilloscope) Identity() Identity {
	return o.id
}

func (o *Oscilloscope) Quirks() SeriesQuirks {
	return o.quirks
}

func (o *Oscilloscope) State() State {
	return o.state
}

func (o *Oscilloscope) Config() Config {
	return o.cfg
}

// The trace from the latest successful GetTrace, or nil.
func (o *Oscilloscope) LastTrace() *Trace {
	return o.last
}

func (o *Oscilloscope) Timeout() time.Duration {
	return o.t.Timeout()
}

func (o *Oscilloscope) SetTimeout(timeout time.Duration) error {
	if o.closed {
		return ErrClosed
	}
	return o.t.SetTimeout(timeout)
}

func (o *Oscilloscope) write(cmd string) error {
	if o.closed {
		return ErrClosed
	}
	if err := o.t.Write(cmd); err != nil {
		TransportErrors.Inc()
		return &TransportError{Command: cmd, Timeout: o.t.Timeout(), Err: err}
	}
	return nil
}

// Queries cmd. On failure the device error queue is read for diagnosis.
func (o *Oscilloscope) query(cmd string) (string, error) {
	if o.closed {
		return "", ErrClosed
	}
	res, err := o.t.Query(cmd)
	if err != nil {
		return "", o.transportFailure(cmd, err)
	}
	return res, nil
}

func (o *Oscilloscope) queryBinary(cmd string, width int) ([]float64, error) {
	if o.closed {
		return nil, ErrClosed
	}
	res, err := o.t.QueryBinary(cmd, width, true)
	if err != nil {
		if IsDecodeError(err) {
			return nil, err
		}
		return nil, o.transportFailure(cmd, err)
	}
	return res, nil
}

func (o *Oscilloscope) transportFailure(cmd string, err error) error {
	TransportErrors.Inc()
	te := &TransportError{Command: cmd, Timeout: o.t.Timeout(), Err: err}
	glog.Errorf("%v. Is the timeout long enough?", te)
	te.DeviceErrors = o.drainErrorQueue()
	if len(te.DeviceErrors) > 0 {
		glog.Errorf("Latest errors from the oscilloscope:")
		for i, e := range te.DeviceErrors {
			glog.Errorf("%2d: %s", i, e)
		}
	}
	return te
}

// Best effort read of the error queue straight from the transport.
func (o *Oscilloscope) drainErrorQueue() []string {
	var errs []string
	for i := 0; i < errorQueueLength; i++ {
		res, err := o.t.Query(":SYSTem:ERRor?")
		if err != nil {
			glog.Warningf("Could not retrieve errors from the oscilloscope: %v", err)
			break
		}
		if strings.HasPrefix(res, "+0") {
			break
		}
		errs = append(errs, res)
	}
	return errs
}

// Reads up to 30 entries of the instrument error queue, oldest first.
func (o *Oscilloscope) ErrorQueue() ([]string, error) {
	var errs []string
	for i := 0; i < errorQueueLength; i++ {
		res, err := o.query(":SYSTem:ERRor?")
		if err != nil {
			return errs, err
		}
		if strings.HasPrefix(res, "+0") {
			break
		}
		errs = append(errs, res)
	}
	return errs, nil
}

func (o *Oscilloscope) Run() error {
	return o.write(":RUN")
}

func (o *Oscilloscope) Stop() error {
	return o.write(":STOP")
}

// Bit 3 of the operation status register is set while running.
func (o *Oscilloscope) IsRunning() (bool, error) {
	res, err := o.query(":OPERegister:CONDition?")
	if err != nil {
		return false, err
	}
	reg, err := strconv.Atoi(res)
	if err != nil {
		return false, decodeErrorf("unexpected operation register value '%s'", res)
	}
	return reg&8 == 8, nil
}

// Validates opts, then writes the acquisition type, averages, waveform
// format, points mode and point count, in that order. Nothing is written if
// validation fails.
func (o *Oscilloscope) SetAcquisition(opts AcquisitionOptions) error {
	if o.closed {
		return ErrClosed
	}
	p, err := planAcquisition(opts, o.cur, o.quirks)
	if err != nil {
		return err
	}

	if p.setType {
		if err = o.write(":ACQuire:TYPE " + p.acqType.String()); err != nil {
			return err
		}
		o.cur.acqType, o.cur.typeKnown = p.acqType, true
	}
	if p.setAverages {
		if err = o.write(fmt.Sprintf(":ACQuire:COUNt %d", p.averages)); err != nil {
			return err
		}
		o.cur.averages = p.averages
	}
	if p.setFormat {
		if err = o.write(":WAVeform:FORMat " + p.format.String()); err != nil {
			return err
		}
		o.cur.format, o.cur.formatKnown = p.format, true
	}
	if p.setPMode {
		if p.overridden {
			glog.Warningf(":WAVeform:POINts:MODE overridden (from %s) to NORMal due to :ACQuire:TYPE AVERage",
				opts.PointsMode)
		}
		if p.forceRawPts && !p.overridden {
			glog.V(1).Infof("%d points requires RAW points mode", p.numPoints)
		}
		if err = o.write(":WAVeform:POINts:MODE " + p.pointsMode.String()); err != nil {
			return err
		}
		o.cur.pointsMode = p.pointsMode
	}
	if p.setPoints {
		if err = o.writePoints(p.numPoints); err != nil {
			return err
		}
		o.cur.numPoints = p.numPoints
	}
	if o.state == StateConnected {
		o.state = StateConfigured
	}
	return nil
}

func (o *Oscilloscope) writePoints(n int) error {
	var err error
	if n == 0 {
		return o.write(":WAVeform:POINts MAXimum")
	}
	cmd := fmt.Sprintf("%s %d", o.quirks.PointsCommand, n)
	if !o.quirks.PointsNeedStop {
		return o.write(cmd)
	}
	// Setting the count while running leaves -222 in the error queue.
	if err = o.Stop(); err != nil {
		return err
	}
	if err = o.write(cmd); err != nil {
		return err
	}
	return o.Run()
}

// Number of points the next capture will transfer. The instrument is stopped
// for the query and set running afterwards.
func (o *Oscilloscope) NumPoints() (int, error) {
	var err error
	if err = o.Stop(); err != nil {
		return 0, err
	}
	res, err := o.query(":WAVeform:POINts?")
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(res)
	if err != nil {
		return 0, decodeErrorf("unexpected point count '%s'", res)
	}
	return n, o.Run()
}

// Acquisition type, reading it from the instrument if this session never set it.
func (o *Oscilloscope) AcqType() (AcqType, error) {
	if o.cur.typeKnown {
		return o.cur.acqType, nil
	}
	res, err := o.query(":ACQuire:TYPE?")
	if err != nil {
		return 0, err
	}
	t, _, err := ParseAcqType(res)
	if err != nil {
		return 0, decodeErrorf("unexpected acquisition type '%s'", res)
	}
	o.cur.acqType, o.cur.typeKnown = t, true
	return t, nil
}

// Number of averages, reading it from the instrument if unknown.
func (o *Oscilloscope) NumAverages() (int, error) {
	if o.cur.averages != 0 {
		return o.cur.averages, nil
	}
	res, err := o.query(":ACQuire:COUNt?")
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(res)
	if err != nil {
		return 0, decodeErrorf("unexpected number of averages '%s'", res)
	}
	o.cur.averages = n
	return n, nil
}

// Waveform format, reading it from the instrument if unknown.
func (o *Oscilloscope) WaveFormat() (WaveFormat, error) {
	if o.cur.formatKnown {
		return o.cur.format, nil
	}
	res, err := o.query(":WAVeform:FORMat?")
	if err != nil {
		return 0, err
	}
	f, err := ParseWaveFormat(res)
	if err != nil {
		return 0, err
	}
	o.cur.format, o.cur.formatKnown = f, true
	return f, nil
}

func (o *Oscilloscope) PointsMode() PointsMode {
	return o.cur.pointsMode
}

// Summary of type, averages and channels.
func (o *Oscilloscope) AcqSettings() (string, error) {
	t, err := o.AcqType()
	if err != nil {
		return "", err
	}
	s := fmt.Sprintf("Acquisition type: %s", t)
	if t == AcqAverage {
		n, err := o.NumAverages()
		if err != nil {
			return "", err
		}
		s += fmt.Sprintf(", # of averages: %d", n)
	}
	return s + fmt.Sprintf(", from channels: %v", o.channels), nil
}

// Builds the file header:
//
//	<id>
//	<mode>,<averages or N/A>
//	<timestamp>         (if timestamp)
//	<additionalLine>    (if not empty)
//	time,<channels>
//
// channels defaults to the channels of the session.
func (o *Oscilloscope) GenerateFileHeader(channels []string, additionalLine string, timestamp bool) (string, error) {
	t, err := o.AcqType()
	if err != nil {
		return "", err
	}
	averages := "N/A"
	if t == AcqAverage {
		n, err := o.NumAverages()
		if err != nil {
			return "", err
		}
		averages = strconv.Itoa(n)
	}
	if channels == nil {
		for _, ch := range o.channels {
			channels = append(channels, strconv.Itoa(ch))
		}
	}
	lines := []string{o.id.Raw, t.String() + "," + averages}
	if timestamp {
		lines = append(lines, time.Now().Format("2006-01-02 15:04:05.000000"))
	}
	if additionalLine != "" {
		lines = append(lines, additionalLine)
	}
	lines = append(lines, "time,"+strings.Join(channels, ","))
	return strings.Join(lines, "\n"), nil
}

// Leaves the instrument running (if RunOnClose) and releases the transport.
// Safe to call more than once and after failed operations.
func (o *Oscilloscope) Close() error {
	return o.closeWith(o.cfg.RunOnClose)
}

func (o *Oscilloscope) closeWith(setRunning bool) error {
	if o.closed {
		return nil
	}
	if setRunning {
		if err := o.t.Write(":RUN"); err != nil {
			glog.Warningf("Could not set the oscilloscope running before closing: %v", err)
		}
	}
	o.closed = true
	o.state = StateDisconnected
	err := o.t.Close()
	glog.V(1).Infof("Closed connection to '%s'", o.id.Raw)
	return err
}

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

package keyoscacquire_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/asvela/keyoscacquire"
	"github.com/asvela/keyoscacquire/mocks"
	"github.com/golang/mock/gomock"
)

const (
	idn2000 = "AGILENT TECHNOLOGIES,DSO-X 2024A,MY1234567,02.43.2018020635"
	idn9000 = "KEYSIGHT TECHNOLOGIES,DSO90254A,MY7654321,05.70.00901"
)

func connect(t *testing.T, tr *mocks.MockTransportInterface, idn string, cfg keyoscacquire.Config) *keyoscacquire.Oscilloscope {
	tr.EXPECT().Timeout().Return(15 * time.Second).AnyTimes()
	gomock.InOrder(
		tr.EXPECT().Write("*CLS").Return(nil),
		tr.EXPECT().Write(":WAVeform:UNSigned OFF").Return(nil),
		tr.EXPECT().Write(":WAVeform:BYTeorder LSBFirst").Return(nil),
		tr.EXPECT().Query("*IDN?").Return(idn, nil),
	)
	o, err := keyoscacquire.NewOscilloscope(tr, cfg)
	if err != nil {
		t.Fatalf("NewOscilloscope failed: %v", err)
	}
	return o
}

func TestConnectIdentifiesSeries(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	tr := mocks.NewMockTransportInterface(mockCtrl)
	o := connect(t, tr, idn2000, keyoscacquire.DefaultConfig())

	if o.Identity().Series != "2000" {
		t.Errorf("Series = %s, expected 2000", o.Identity().Series)
	}
	if o.Quirks().AsciiStrip != keyoscacquire.AsciiStripLeading {
		t.Errorf("2000 series expected to strip leading bytes, got %v", o.Quirks().AsciiStrip)
	}
	if o.State() != keyoscacquire.StateConnected {
		t.Errorf("State = %v, expected Connected", o.State())
	}
}

func TestConnectDumpsErrorQueue(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	tr := mocks.NewMockTransportInterface(mockCtrl)
	cfg := keyoscacquire.DefaultConfig()
	cfg.GetErrorsOnConnect = true
	gomock.InOrder(
		tr.EXPECT().Query(":SYSTem:ERRor?").Return(`-113,"Undefined header"`, nil),
		tr.EXPECT().Query(":SYSTem:ERRor?").Return(`+0,"No error"`, nil),
		tr.EXPECT().Write("*CLS").Return(nil),
	)
	tr.EXPECT().Write(gomock.Any()).Return(nil).Times(2)
	tr.EXPECT().Query("*IDN?").Return(idn2000, nil)

	if _, err := keyoscacquire.NewOscilloscope(tr, cfg); err != nil {
		t.Errorf("NewOscilloscope failed: %v", err)
	}
}

func TestAveragesOutOfRangeWritesNothing(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	tr := mocks.NewMockTransportInterface(mockCtrl)
	o := connect(t, tr, idn2000, keyoscacquire.DefaultConfig())

	for _, n := range []int{1, 65537} {
		err := o.SetAcquisition(keyoscacquire.AcquisitionOptions{
			AcqType: "AVERage", NumAverages: n, NumPoints: keyoscacquire.PointsUnchanged})
		if !keyoscacquire.IsValidationError(err) {
			t.Errorf("%d averages: expected a validation error, got %v", n, err)
		}
	}
	if err := o.SetAcquisition(keyoscacquire.AcquisitionOptions{
		AcqType: "AVER1", NumPoints: keyoscacquire.PointsUnchanged}); !keyoscacquire.IsValidationError(err) {
		t.Errorf("AVER1: expected a validation error, got %v", err)
	}
}

func TestAveragesBoundariesAccepted(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	tr := mocks.NewMockTransportInterface(mockCtrl)
	o := connect(t, tr, idn2000, keyoscacquire.DefaultConfig())

	gomock.InOrder(
		tr.EXPECT().Write(":ACQuire:TYPE AVER").Return(nil),
		tr.EXPECT().Write(":ACQuire:COUNt 2").Return(nil),
		tr.EXPECT().Write(":ACQuire:TYPE AVER").Return(nil),
		tr.EXPECT().Write(":ACQuire:COUNt 65536").Return(nil),
	)
	for _, n := range []int{2, 65536} {
		if err := o.SetAcquisition(keyoscacquire.AcquisitionOptions{
			AcqType: "AVER", NumAverages: n, NumPoints: keyoscacquire.PointsUnchanged}); err != nil {
			t.Errorf("%d averages failed: %v", n, err)
		}
	}
	if o.State() != keyoscacquire.StateConfigured {
		t.Errorf("State = %v, expected Configured", o.State())
	}
}

func TestAveragingOverridesRawPointsMode(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	tr := mocks.NewMockTransportInterface(mockCtrl)
	o := connect(t, tr, idn2000, keyoscacquire.DefaultConfig())

	gomock.InOrder(
		tr.EXPECT().Write(":ACQuire:TYPE AVER").Return(nil),
		tr.EXPECT().Write(":ACQuire:COUNt 8").Return(nil),
		tr.EXPECT().Write(":WAVeform:POINts:MODE NORM").Return(nil),
	)
	if err := o.SetAcquisition(keyoscacquire.AcquisitionOptions{
		AcqType: "AVER8", PointsMode: "RAW", NumPoints: keyoscacquire.PointsUnchanged}); err != nil {
		t.Fatalf("SetAcquisition failed: %v", err)
	}
	if o.PointsMode() != keyoscacquire.PointsNormal {
		t.Errorf("Points mode = %v, expected NORM", o.PointsMode())
	}
}

func TestLargePointCountSwitchesToRaw(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	tr := mocks.NewMockTransportInterface(mockCtrl)
	o := connect(t, tr, idn2000, keyoscacquire.DefaultConfig())

	gomock.InOrder(
		tr.EXPECT().Write(":ACQuire:TYPE HRES").Return(nil),
		tr.EXPECT().Write(":WAVeform:POINts:MODE RAW").Return(nil),
		tr.EXPECT().Write(":STOP").Return(nil),
		tr.EXPECT().Write(":WAVeform:POINts 10000").Return(nil),
		tr.EXPECT().Write(":RUN").Return(nil),
	)
	if err := o.SetAcquisition(keyoscacquire.AcquisitionOptions{
		AcqType: "HRESolution", NumPoints: 10000}); err != nil {
		t.Fatalf("SetAcquisition failed: %v", err)
	}
	if o.PointsMode() != keyoscacquire.PointsRaw {
		t.Errorf("Points mode = %v, expected RAW", o.PointsMode())
	}
}

func TestZeroPointsMeansMaximum(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	tr := mocks.NewMockTransportInterface(mockCtrl)
	o := connect(t, tr, idn2000, keyoscacquire.DefaultConfig())

	tr.EXPECT().Write(":WAVeform:POINts MAXimum").Return(nil)
	if err := o.SetAcquisition(keyoscacquire.AcquisitionOptions{NumPoints: 0}); err != nil {
		t.Errorf("SetAcquisition failed: %v", err)
	}
	if err := o.SetAcquisition(keyoscacquire.AcquisitionOptions{NumPoints: -5}); !keyoscacquire.IsValidationError(err) {
		t.Errorf("Negative point count expected to fail validation, got %v", err)
	}
}

func TestSeries9000PointsCommand(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	tr := mocks.NewMockTransportInterface(mockCtrl)
	o := connect(t, tr, idn9000, keyoscacquire.DefaultConfig())

	tr.EXPECT().Write(":ACQuire:POINts 10000").Return(nil)
	if err := o.SetAcquisition(keyoscacquire.AcquisitionOptions{NumPoints: 10000}); err != nil {
		t.Errorf("SetAcquisition failed: %v", err)
	}
}

func TestSentinelChannelsAscending(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	tr := mocks.NewMockTransportInterface(mockCtrl)
	o := connect(t, tr, idn2000, keyoscacquire.DefaultConfig())

	gomock.InOrder(
		tr.EXPECT().Query(":CHAN1:DISP?").Return("0", nil),
		tr.EXPECT().Query(":CHAN2:DISP?").Return("1", nil),
		tr.EXPECT().Query(":CHAN3:DISP?").Return("0", nil),
		tr.EXPECT().Query(":CHAN4:DISP?").Return("1", nil),
	)
	channels, err := o.SetChannels(nil)
	if err != nil {
		t.Fatalf("SetChannels failed: %v", err)
	}
	if len(channels) != 2 || channels[0] != 2 || channels[1] != 4 {
		t.Errorf("Active channels = %v, expected [2 4]", channels)
	}
}

func TestExplicitChannelOrderPreserved(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	tr := mocks.NewMockTransportInterface(mockCtrl)
	o := connect(t, tr, idn2000, keyoscacquire.DefaultConfig())

	gomock.InOrder(
		tr.EXPECT().Write(":WAVeform:FORMat BYTE").Return(nil),
		tr.EXPECT().Query(":OPERegister:CONDition?").Return("+8", nil),
		tr.EXPECT().Write(":DIGitize CHAN3, CHAN1").Return(nil),
		tr.EXPECT().Write(":WAVeform:SOURce CHAN3").Return(nil),
		tr.EXPECT().Query(":WAVeform:PREamble?").Return("0,0,2,1,1e-6,0,0,1,0,0", nil),
		tr.EXPECT().QueryBinary(":WAVeform:DATA?", 1, true).Return([]float64{30, 31}, nil),
		tr.EXPECT().Write(":WAVeform:SOURce CHAN1").Return(nil),
		tr.EXPECT().Query(":WAVeform:PREamble?").Return("0,0,2,1,1e-6,0,0,2,0,0", nil),
		tr.EXPECT().QueryBinary(":WAVeform:DATA?", 1, true).Return([]float64{10, 11}, nil),
		tr.EXPECT().Write(":RUN").Return(nil),
	)

	if err := o.SetAcquisition(keyoscacquire.AcquisitionOptions{
		WaveFormat: "BYTE", NumPoints: keyoscacquire.PointsUnchanged}); err != nil {
		t.Fatalf("SetAcquisition failed: %v", err)
	}
	if _, err := o.SetChannels([]int{3, 1}); err != nil {
		t.Fatalf("SetChannels failed: %v", err)
	}
	trace, err := o.GetTrace()
	if err != nil {
		t.Fatalf("GetTrace failed: %v", err)
	}
	if trace.Channels[0] != 3 || trace.Channels[1] != 1 {
		t.Errorf("Trace channels = %v, expected [3 1]", trace.Channels)
	}
	if v := trace.Values.At(0, 0); v != 30 {
		t.Errorf("First column expected to hold channel 3, got %v", v)
	}
	if v := trace.Values.At(1, 1); v != 22 {
		t.Errorf("Second column expected to hold channel 1 scaled by 2, got %v", v)
	}
	if o.LastTrace() != trace {
		t.Errorf("LastTrace does not return the latest trace")
	}
}

func TestStoppedInstrumentIsNotDigitized(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	tr := mocks.NewMockTransportInterface(mockCtrl)
	cfg := keyoscacquire.DefaultConfig()
	cfg.RunAfterCapture = false
	o := connect(t, tr, idn2000, cfg)

	gomock.InOrder(
		tr.EXPECT().Query(":WAVeform:FORMat?").Return("WORD", nil),
		tr.EXPECT().Query(":OPERegister:CONDition?").Return("0", nil),
		tr.EXPECT().Write(":WAVeform:SOURce CHAN1").Return(nil),
		tr.EXPECT().Query(":WAVeform:PREamble?").Return("0,0,1,1,1,0,0,1,0,0", nil),
		tr.EXPECT().QueryBinary(":WAVeform:DATA?", 2, true).Return([]float64{5}, nil),
	)
	if _, err := o.CaptureAndRead([]int{1}); err != nil {
		t.Errorf("CaptureAndRead failed: %v", err)
	}
}

func TestDigitizeAlwaysSkipsRunningCheck(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	tr := mocks.NewMockTransportInterface(mockCtrl)
	cfg := keyoscacquire.DefaultConfig()
	cfg.Digitize = keyoscacquire.DigitizeAlways
	cfg.RunAfterCapture = false
	o := connect(t, tr, idn2000, cfg)

	gomock.InOrder(
		tr.EXPECT().Query(":WAVeform:FORMat?").Return("BYTE", nil),
		tr.EXPECT().Write(":DIGitize CHAN2").Return(nil),
		tr.EXPECT().Write(":WAVeform:SOURce CHAN2").Return(nil),
		tr.EXPECT().Query(":WAVeform:PREamble?").Return("0,0,1,1,1,0,0,1,0,0", nil),
		tr.EXPECT().QueryBinary(":WAVeform:DATA?", 1, true).Return([]float64{5}, nil),
	)
	if _, err := o.CaptureAndRead([]int{2}); err != nil {
		t.Errorf("CaptureAndRead failed: %v", err)
	}
}

func TestAsciiCapture(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	tr := mocks.NewMockTransportInterface(mockCtrl)
	cfg := keyoscacquire.DefaultConfig()
	cfg.Digitize = keyoscacquire.DigitizeNever
	cfg.RunAfterCapture = false
	o := connect(t, tr, idn2000, cfg)

	gomock.InOrder(
		tr.EXPECT().Write(":WAVeform:FORMat ASC").Return(nil),
		tr.EXPECT().Write(":WAVeform:SOURce CHAN1").Return(nil),
		tr.EXPECT().Query(":WAVeform:DATA?").Return("#800000024 1.0, 2.0, 3.0, 4.0, 5.0", nil),
		tr.EXPECT().Query(":WAVeform:PREamble?").Return("4,0,5,1,0,0,0,0,0,0", nil),
		tr.EXPECT().Query(":TIMebase:RANGe?").Return("1.0E+00", nil),
	)
	if err := o.SetAcquisition(keyoscacquire.AcquisitionOptions{
		WaveFormat: "ASCii", NumPoints: keyoscacquire.PointsUnchanged}); err != nil {
		t.Fatalf("SetAcquisition failed: %v", err)
	}
	if _, err := o.SetChannels([]int{1}); err != nil {
		t.Fatalf("SetChannels failed: %v", err)
	}
	trace, err := o.GetTrace()
	if err != nil {
		t.Fatalf("GetTrace failed: %v", err)
	}
	expected := []float64{0, 0.25, 0.5, 0.75, 1}
	for i, e := range expected {
		if trace.Time.AtVec(i) != e {
			t.Errorf("time[%d] = %v, expected %v", i, trace.Time.AtVec(i), e)
		}
	}
	if trace.Values.At(4, 0) != 5 {
		t.Errorf("Last sample = %v, expected 5", trace.Values.At(4, 0))
	}
}

func TestNoChannelsIsNoop(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	tr := mocks.NewMockTransportInterface(mockCtrl)
	o := connect(t, tr, idn2000, keyoscacquire.DefaultConfig())

	tr.EXPECT().Query(":WAVeform:FORMat?").Return("WORD", nil)
	gomock.InOrder(
		tr.EXPECT().Query(":CHAN1:DISP?").Return("0", nil),
		tr.EXPECT().Query(":CHAN2:DISP?").Return("0", nil),
		tr.EXPECT().Query(":CHAN3:DISP?").Return("0", nil),
		tr.EXPECT().Query(":CHAN4:DISP?").Return("0", nil),
	)
	if _, err := o.SetChannels(nil); err != nil {
		t.Fatalf("SetChannels failed: %v", err)
	}
	trace, err := o.GetTrace()
	if err != nil || trace != nil {
		t.Errorf("GetTrace without channels = (%v, %v), expected (nil, nil)", trace, err)
	}
}

func TestUnknownFormatFailsFast(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	tr := mocks.NewMockTransportInterface(mockCtrl)
	o := connect(t, tr, idn2000, keyoscacquire.DefaultConfig())

	tr.EXPECT().Query(":WAVeform:FORMat?").Return("FLOAT", nil)
	if _, err := o.CaptureAndRead([]int{1}); !keyoscacquire.IsValidationError(err) {
		t.Errorf("Expected a validation error, got %v", err)
	}
}

func TestReadFailureReportsErrorQueue(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	tr := mocks.NewMockTransportInterface(mockCtrl)
	cfg := keyoscacquire.DefaultConfig()
	cfg.Digitize = keyoscacquire.DigitizeNever
	o := connect(t, tr, idn2000, cfg)

	gomock.InOrder(
		tr.EXPECT().Query(":WAVeform:FORMat?").Return("WORD", nil),
		tr.EXPECT().Write(":WAVeform:SOURce CHAN1").Return(nil),
		tr.EXPECT().Query(":WAVeform:PREamble?").Return("0,0,1,1,1,0,0,1,0,0", nil),
		tr.EXPECT().QueryBinary(":WAVeform:DATA?", 2, true).Return(nil, errors.New("i/o timeout")),
		tr.EXPECT().Query(":SYSTem:ERRor?").Return(`-222,"Data out of range"`, nil),
		tr.EXPECT().Query(":SYSTem:ERRor?").Return(`+0,"No error"`, nil),
	)
	_, err := o.CaptureAndRead([]int{1})
	if !keyoscacquire.IsTransportError(err) {
		t.Fatalf("Expected a transport error, got %v", err)
	}
	te := err.(*keyoscacquire.TransportError)
	if te.Command != ":WAVeform:DATA?" || len(te.DeviceErrors) != 1 {
		t.Errorf("Unexpected transport error %+v", te)
	}
	if !strings.Contains(err.Error(), "15s") {
		t.Errorf("Error '%v' expected to mention the timeout", err)
	}
}

func TestErrorQueueStopsAtNoError(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	tr := mocks.NewMockTransportInterface(mockCtrl)
	o := connect(t, tr, idn2000, keyoscacquire.DefaultConfig())

	gomock.InOrder(
		tr.EXPECT().Query(":SYSTem:ERRor?").Return(`-113,"Undefined header"`, nil),
		tr.EXPECT().Query(":SYSTem:ERRor?").Return(`-222,"Data out of range"`, nil),
		tr.EXPECT().Query(":SYSTem:ERRor?").Return(`+0,"No error"`, nil),
	)
	errs, err := o.ErrorQueue()
	if err != nil || len(errs) != 2 {
		t.Errorf("ErrorQueue = (%v, %v), expected two entries", errs, err)
	}
}

func TestAveragedWordCaptureHeader(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	tr := mocks.NewMockTransportInterface(mockCtrl)
	o := connect(t, tr, idn2000, keyoscacquire.DefaultConfig())

	preamble := "1,2,3,8,2e-9,-1e-9,0,1,0,0"
	gomock.InOrder(
		tr.EXPECT().Write(":ACQuire:TYPE AVER").Return(nil),
		tr.EXPECT().Write(":ACQuire:COUNt 8").Return(nil),
		tr.EXPECT().Write(":WAVeform:FORMat WORD").Return(nil),
		tr.EXPECT().Write(":WAVeform:POINts:MODE NORM").Return(nil),
		tr.EXPECT().Query(":OPERegister:CONDition?").Return("8", nil),
		tr.EXPECT().Write(":DIGitize CHAN1, CHAN2").Return(nil),
		tr.EXPECT().Write(":WAVeform:SOURce CHAN1").Return(nil),
		tr.EXPECT().Query(":WAVeform:PREamble?").Return(preamble, nil),
		tr.EXPECT().QueryBinary(":WAVeform:DATA?", 2, true).Return([]float64{0, 1, 2}, nil),
		tr.EXPECT().Write(":WAVeform:SOURce CHAN2").Return(nil),
		tr.EXPECT().Query(":WAVeform:PREamble?").Return(preamble, nil),
		tr.EXPECT().QueryBinary(":WAVeform:DATA?", 2, true).Return([]float64{-1, 0, 1}, nil),
		tr.EXPECT().Write(":RUN").Return(nil),
		tr.EXPECT().Write(":RUN").Return(nil),
		tr.EXPECT().Close().Return(nil),
	)

	if err := o.SetAcquisition(keyoscacquire.AcquisitionOptions{
		AcqType: "AVER8", WaveFormat: "WORD", PointsMode: "RAW",
		NumPoints: keyoscacquire.PointsUnchanged}); err != nil {
		t.Fatalf("SetAcquisition failed: %v", err)
	}
	if _, err := o.SetChannels([]int{1, 2}); err != nil {
		t.Fatalf("SetChannels failed: %v", err)
	}
	trace, err := o.GetTrace()
	if err != nil {
		t.Fatalf("GetTrace failed: %v", err)
	}
	if r, c := trace.Values.Dims(); r != 3 || c != 2 {
		t.Errorf("Values dims = (%d, %d), expected (3, 2)", r, c)
	}
	if r, c := trace.Time.Dims(); r != 3 || c != 1 {
		t.Errorf("Time dims = (%d, %d), expected (3, 1)", r, c)
	}
	if trace.Time.AtVec(0) != -1e-9 {
		t.Errorf("time[0] = %v, expected -1e-9", trace.Time.AtVec(0))
	}

	header, err := o.GenerateFileHeader(nil, "my comment", false)
	if err != nil {
		t.Fatalf("GenerateFileHeader failed: %v", err)
	}
	expected := idn2000 + "\nAVER,8\nmy comment\ntime,1,2"
	if header != expected {
		t.Errorf("Header = %q, expected %q", header, expected)
	}

	if err = o.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}
	if o.State() != keyoscacquire.StateDisconnected {
		t.Errorf("State = %v, expected Disconnected", o.State())
	}
}

func TestHeaderQueriesUnknownMode(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	tr := mocks.NewMockTransportInterface(mockCtrl)
	o := connect(t, tr, idn2000, keyoscacquire.DefaultConfig())

	tr.EXPECT().Query(":ACQuire:TYPE?").Return("HRES", nil)
	header, err := o.GenerateFileHeader([]string{"1", "piezo"}, "", true)
	if err != nil {
		t.Fatalf("GenerateFileHeader failed: %v", err)
	}
	lines := strings.Split(header, "\n")
	if len(lines) != 4 || lines[1] != "HRES,N/A" || lines[3] != "time,1,piezo" {
		t.Errorf("Unexpected header %q", header)
	}
}

func TestCloseSwallowsRunFailure(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	tr := mocks.NewMockTransportInterface(mockCtrl)
	o := connect(t, tr, idn2000, keyoscacquire.DefaultConfig())

	gomock.InOrder(
		tr.EXPECT().Write(":RUN").Return(errors.New("broken pipe")),
		tr.EXPECT().Close().Return(nil),
	)
	if err := o.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}
	// Second close is a no-op.
	if err := o.Close(); err != nil {
		t.Errorf("Second Close failed: %v", err)
	}
	if _, err := o.GetTrace(); err != keyoscacquire.ErrClosed {
		t.Errorf("GetTrace after Close = %v, expected ErrClosed", err)
	}
}

func TestNumPointsStopsAndRuns(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	tr := mocks.NewMockTransportInterface(mockCtrl)
	o := connect(t, tr, idn2000, keyoscacquire.DefaultConfig())

	gomock.InOrder(
		tr.EXPECT().Write(":STOP").Return(nil),
		tr.EXPECT().Query(":WAVeform:POINts?").Return("62500", nil),
		tr.EXPECT().Write(":RUN").Return(nil),
	)
	n, err := o.NumPoints()
	if err != nil || n != 62500 {
		t.Errorf("NumPoints = (%d, %v), expected 62500", n, err)
	}
}

func TestSetActiveChannels(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	tr := mocks.NewMockTransportInterface(mockCtrl)
	o := connect(t, tr, idn2000, keyoscacquire.DefaultConfig())

	gomock.InOrder(
		tr.EXPECT().Write(":CHAN1:DISP 1").Return(nil),
		tr.EXPECT().Write(":CHAN2:DISP 0").Return(nil),
		tr.EXPECT().Write(":CHAN3:DISP 1").Return(nil),
		tr.EXPECT().Write(":CHAN4:DISP 0").Return(nil),
	)
	if err := o.SetActiveChannels([]int{3, 1}); err != nil {
		t.Errorf("SetActiveChannels failed: %v", err)
	}
	if err := o.SetActiveChannels([]int{5}); !keyoscacquire.IsValidationError(err) {
		t.Errorf("Channel 5 expected to fail validation, got %v", err)
	}
}

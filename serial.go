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

// Serial link (ASRL<port>::INSTR).
package keyoscacquire

import (
	"time"

	"github.com/golang/glog"
	"go.bug.st/serial"
)

var defaultSerialMode = serial.Mode{
	BaudRate: 9600,
	DataBits: 8,
	Parity:   serial.NoParity,
	StopBits: serial.OneStopBit,
}

type SerialLink struct {
	port serial.Port
}

// Opens port with mode, or 9600 8N1 if mode is nil.
func OpenSerialLink(name string, mode *serial.Mode) (*SerialLink, error) {
	if mode == nil {
		m := defaultSerialMode
		mode = &m
	}
	glog.V(1).Infof("Opening serial port %s at %d baud", name, mode.BaudRate)
	port, err := serial.Open(name, mode)
	if err != nil {
		return nil, err
	}
	return &SerialLink{port}, nil
}

// The port reports an expired read timeout as a zero length read.
func (l *SerialLink) Read(p []byte) (int, error) {
	n, err := l.port.Read(p)
	if err == nil && n == 0 && len(p) > 0 {
		return 0, errTimeout
	}
	return n, err
}

func (l *SerialLink) Write(p []byte) (int, error) {
	return l.port.Write(p)
}

func (l *SerialLink) Close() error {
	return l.port.Close()
}

func (l *SerialLink) SetTimeout(timeout time.Duration) error {
	if timeout <= 0 {
		timeout = serial.NoTimeout
	}
	return l.port.SetReadTimeout(timeout)
}

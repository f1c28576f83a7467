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

// SCPI command/response transport over a byte-stream link.
package keyoscacquire

import (
	"bufio"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/golang/glog"
	"github.com/pkg/errors"
)

//go:generate mockgen -destination=mocks/transport.go -package=mocks github.com/asvela/keyoscacquire TransportInterface
type TransportInterface interface {
	io.Closer
	// Sends a command that has no reply.
	Write(cmd string) error
	// Sends a query and returns the reply with surrounding whitespace removed.
	Query(cmd string) (string, error)
	// Sends a query whose reply is an IEEE 488.2 definite-length block of
	// little-endian integers, width bytes each.
	QueryBinary(cmd string, width int, signed bool) ([]float64, error)
	// Gets/Sets the reply timeout.
	Timeout() time.Duration
	SetTimeout(timeout time.Duration) error
}

// A raw byte-stream connection to an instrument.
type Link interface {
	io.ReadWriteCloser
	SetTimeout(timeout time.Duration) error
}

// Returned by links whose read deadline expired.
var errTimeout = errors.New("timed out waiting for instrument reply")

const terminator = '\n'

// Implements TransportInterface on top of a Link.
type Scpi struct {
	link    Link
	rd      *bufio.Reader
	timeout time.Duration
}

func NewScpi(link Link, timeout time.Duration) (*Scpi, error) {
	s := &Scpi{link: link, rd: bufio.NewReaderSize(link, 64*1024)}
	if err := s.SetTimeout(timeout); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Scpi) Close() error {
	glog.V(1).Infof("Closing SCPI link")
	return s.link.Close()
}

func (s *Scpi) Timeout() time.Duration {
	return s.timeout
}

func (s *Scpi) SetTimeout(timeout time.Duration) error {
	if err := s.link.SetTimeout(timeout); err != nil {
		return errors.Wrap(err, "setting link timeout")
	}
	s.timeout = timeout
	return nil
}

func (s *Scpi) Write(cmd string) error {
	glog.V(1).Infof("[scpi OUT]: %s", cmd)
	if _, err := io.WriteString(s.link, cmd+string(terminator)); err != nil {
		return errors.Wrapf(err, "writing '%s'", cmd)
	}
	return nil
}

func (s *Scpi) Query(cmd string) (string, error) {
	if err := s.Write(cmd); err != nil {
		return "", err
	}
	line, err := s.rd.ReadString(terminator)
	if err != nil {
		return "", errors.Wrapf(err, "reading reply to '%s'", cmd)
	}
	res := strings.TrimSpace(line)
	glog.V(1).Infof("[scpi IN]: %s", res)
	return res, nil
}

func (s *Scpi) QueryBinary(cmd string, width int, signed bool) ([]float64, error) {
	if err := s.Write(cmd); err != nil {
		return nil, err
	}
	block, err := s.readBlock()
	if err != nil {
		return nil, errors.Wrapf(err, "reading block reply to '%s'", cmd)
	}
	return DecodeSamples(block, width, signed)
}

// Reads #<n><length><data> and consumes the trailing terminator, if any.
// #0 (indefinite length) blocks run to the terminator.
func (s *Scpi) readBlock() ([]byte, error) {
	var err error
	var c byte
	if c, err = s.rd.ReadByte(); err != nil {
		return nil, err
	}
	if c != '#' {
		return nil, fmt.Errorf("Unexpected block start %q", c)
	}
	if c, err = s.rd.ReadByte(); err != nil {
		return nil, err
	}
	if c < '0' || c > '9' {
		return nil, fmt.Errorf("Bad block header digit %q", c)
	}
	numDigits := int(c - '0')
	if numDigits == 0 {
		data, err := s.rd.ReadBytes(terminator)
		if err != nil {
			return nil, err
		}
		return data[:len(data)-1], nil
	}
	digits := make([]byte, numDigits)
	if _, err = io.ReadFull(s.rd, digits); err != nil {
		return nil, err
	}
	length, err := strconv.Atoi(string(digits))
	if err != nil {
		return nil, fmt.Errorf("Bad block length %q", digits)
	}
	data := make([]byte, length)
	if _, err = io.ReadFull(s.rd, data); err != nil {
		return nil, err
	}
	if glog.V(2) {
		n := len(data)
		if n > 32 {
			n = 32
		}
		glog.Infof("[scpi IN]: block of %d bytes. data[:32]:\n%s", length, hex.Dump(data[:n]))
	}
	if c, err = s.rd.ReadByte(); err == nil && c != terminator {
		s.rd.UnreadByte()
	}
	return data, nil
}

// Converts little-endian 8/16-bit integers to float64 values.
func DecodeSamples(data []byte, width int, signed bool) ([]float64, error) {
	if width != 1 && width != 2 {
		return nil, validationErrorf("sample width", width, "must be 1 or 2 bytes")
	}
	if len(data)%width != 0 {
		return nil, decodeErrorf("block length %d is not a multiple of the sample width %d",
			len(data), width)
	}
	samples := make([]float64, len(data)/width)
	for i := range samples {
		switch {
		case width == 1 && signed:
			samples[i] = float64(int8(data[i]))
		case width == 1:
			samples[i] = float64(data[i])
		case signed:
			samples[i] = float64(int16(binary.LittleEndian.Uint16(data[2*i:])))
		default:
			samples[i] = float64(binary.LittleEndian.Uint16(data[2*i:]))
		}
	}
	return samples, nil
}

// Opens the link named by a VISA resource string.
func Dial(address string, timeout time.Duration) (*Scpi, error) {
	var err error
	var r Resource
	if r, err = ParseAddress(address); err != nil {
		return nil, err
	}
	var link Link
	switch r.Kind {
	case ResourceSocket:
		link, err = OpenSocketLink(r.Host, r.SocketPort, timeout)
	case ResourceSerial:
		link, err = OpenSerialLink(r.Port, nil)
	case ResourceUsb:
		link, err = OpenUsbTmcDevice(r.Vid, r.Pid, r.Serial)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "could not connect to '%s'", address)
	}
	glog.V(1).Infof("Opened %v resource '%s'", r.Kind, address)
	s, err := NewScpi(link, timeout)
	if err != nil {
		link.Close()
		return nil, err
	}
	return s, nil
}

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

// VISA resource string parsing.
package keyoscacquire

import (
	"fmt"
	"runtime"
	"strconv"
	"strings"
)

type ResourceKind int

const (
	ResourceSerial ResourceKind = iota
	ResourceUsb    ResourceKind = iota
	ResourceSocket ResourceKind = iota
)

func (k ResourceKind) String() string {
	switch k {
	case ResourceSerial:
		return "ASRL"
	case ResourceUsb:
		return "USB"
	case ResourceSocket:
		return "SOCKET"
	}
	return "ResourceKind(" + strconv.Itoa(int(k)) + ")"
}

type Resource struct {
	Raw  string
	Kind ResourceKind
	// ASRL
	Port string
	// USB
	Vid       uint16
	Pid       uint16
	Serial    string
	Interface int
	// TCPIP SOCKET
	Host       string
	SocketPort int
}

func (r Resource) String() string {
	return r.Raw
}

// Classifies a VISA resource string. Supported forms:
//
//	ASRL<n>::INSTR, ASRL<device path>::INSTR
//	USB[board]::<vid>::<pid>::<serial>[::<interface>]::INSTR
//	TCPIP[board]::<host>::<port>::SOCKET
func ParseAddress(address string) (Resource, error) {
	r := Resource{Raw: address}
	parts := strings.Split(strings.TrimSpace(address), "::")
	if len(parts) < 2 {
		return r, validationErrorf("VISA address", address, "expected '::' separated resource string")
	}
	head := strings.ToUpper(parts[0])
	class := strings.ToUpper(parts[len(parts)-1])
	switch {
	case strings.HasPrefix(head, "ASRL"):
		if class != "INSTR" || len(parts) != 2 {
			return r, validationErrorf("VISA address", address, "serial resources end with ::INSTR")
		}
		r.Kind = ResourceSerial
		r.Port = serialPortName(parts[0][4:])
		if r.Port == "" {
			return r, validationErrorf("VISA address", address, "missing serial port")
		}
	case strings.HasPrefix(head, "USB"):
		if class != "INSTR" || (len(parts) != 5 && len(parts) != 6) {
			return r, validationErrorf("VISA address", address,
				"expected USB::<vid>::<pid>::<serial>[::<interface>]::INSTR")
		}
		r.Kind = ResourceUsb
		vid, err := strconv.ParseUint(parts[1], 0, 16)
		if err != nil {
			return r, validationErrorf("VISA address", address, "bad vendor id '%s'", parts[1])
		}
		pid, err := strconv.ParseUint(parts[2], 0, 16)
		if err != nil {
			return r, validationErrorf("VISA address", address, "bad product id '%s'", parts[2])
		}
		r.Vid, r.Pid, r.Serial = uint16(vid), uint16(pid), parts[3]
		if len(parts) == 6 {
			if r.Interface, err = strconv.Atoi(parts[4]); err != nil {
				return r, validationErrorf("VISA address", address, "bad interface number '%s'", parts[4])
			}
		}
	case strings.HasPrefix(head, "TCPIP"):
		if class != "SOCKET" {
			return r, validationErrorf("VISA address", address,
				"only raw socket resources are supported (TCPIP::<host>::<port>::SOCKET)")
		}
		if len(parts) != 4 {
			return r, validationErrorf("VISA address", address, "expected TCPIP::<host>::<port>::SOCKET")
		}
		r.Kind = ResourceSocket
		r.Host = parts[1]
		port, err := strconv.Atoi(parts[2])
		if err != nil || port <= 0 || port > 65535 {
			return r, validationErrorf("VISA address", address, "bad port '%s'", parts[2])
		}
		r.SocketPort = port
	default:
		return r, validationErrorf("VISA address", address, "unknown interface type '%s'", parts[0])
	}
	return r, nil
}

// ASRL1 is the first serial port, as VISA numbers them.
func serialPortName(s string) string {
	n, err := strconv.Atoi(s)
	if err != nil {
		return s
	}
	if runtime.GOOS == "windows" {
		return fmt.Sprintf("COM%d", n)
	}
	if n < 1 {
		return ""
	}
	return fmt.Sprintf("/dev/ttyS%d", n-1)
}

// Inverse of ParseAddress for USB devices.
func UsbAddress(vid, pid uint16, serial string) string {
	return fmt.Sprintf("USB0::0x%04X::0x%04X::%s::INSTR", vid, pid, serial)
}

func SerialAddress(port string) string {
	return fmt.Sprintf("ASRL%s::INSTR", port)
}

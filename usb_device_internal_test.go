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

package keyoscacquire

import (
	"bytes"
	"testing"
)

func TestUsbTmcHeader(t *testing.T) {
	h := usbTmcHeader(msgDevDepMsgOut, 7, 0x01020304, attrEOM)
	expected := []byte{1, 7, 0xf8, 0, 4, 3, 2, 1, 1, 0, 0, 0}
	if !bytes.Equal(h, expected) {
		t.Errorf("Header = % x, expected % x", h, expected)
	}
}

func TestUsbTmcTagSkipsZero(t *testing.T) {
	d := &UsbTmcDevice{tag: 254}
	if tag := d.nextTag(); tag != 255 {
		t.Errorf("Tag = %d, expected 255", tag)
	}
	if tag := d.nextTag(); tag != 1 {
		t.Errorf("Tag after 255 = %d, expected 1", tag)
	}
}

func TestUsbTmcReadServesPending(t *testing.T) {
	d := &UsbTmcDevice{pending: []byte("+8\n")}
	buf := make([]byte, 2)
	if n, err := d.Read(buf); err != nil || n != 2 || string(buf) != "+8" {
		t.Errorf("Read = (%d, %v, %q)", n, err, buf)
	}
	if n, err := d.Read(buf); err != nil || n != 1 || buf[0] != '\n' {
		t.Errorf("Second Read = (%d, %v, %q)", n, err, buf[:n])
	}
}

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

// USBTMC link for USB[board]::<vid>::<pid>::<serial>::INSTR resources.
// Follows the USB Test & Measurement Class specification, revision 1.0.
package keyoscacquire

import (
	"context"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/golang/glog"
	"github.com/google/gousb"
)

const (
	usbTmcSubClass = 0x03

	msgDevDepMsgOut       uint8 = 1
	msgRequestDevDepMsgIn uint8 = 2

	usbTmcHeaderLen = 12
	attrEOM         = 0x01

	// Upper bound requested per REQUEST_DEV_DEP_MSG_IN.
	usbTmcMaxTransfer = 1 << 20
)

// Encapsulates USBTMC resources.
type UsbTmcDevice struct {
	ctx *gousb.Context
	// dev also implements the control endpoint.
	dev  *gousb.Device
	cfg  *gousb.Config
	intf *gousb.Interface
	// Bulk output/input data endpoints.
	epOut *gousb.OutEndpoint
	epIn  *gousb.InEndpoint

	tag     uint8
	timeout time.Duration
	// Payload received but not consumed yet.
	pending []byte
}

// Reports whether an interface setting is USBTMC.
func isUsbTmc(s gousb.InterfaceSetting) bool {
	return s.Class == gousb.ClassApplication && s.SubClass == usbTmcSubClass
}

// Finds the USBTMC interface in the device descriptor.
func findUsbTmc(desc *gousb.DeviceDesc) (cfgNum, intfNum int, ok bool) {
	for n, cfg := range desc.Configs {
		for _, intf := range cfg.Interfaces {
			for _, alt := range intf.AltSettings {
				if isUsbTmc(alt) {
					return n, intf.Number, true
				}
			}
		}
	}
	return 0, 0, false
}

func OpenUsbTmcDevice(vid, pid uint16, serial string) (*UsbTmcDevice, error) {
	d := &UsbTmcDevice{ctx: gousb.NewContext()}

	devs, err := d.ctx.OpenDevices(func(desc *gousb.DeviceDesc) bool {
		return desc.Vendor == gousb.ID(vid) && desc.Product == gousb.ID(pid)
	})
	for _, dev := range devs {
		if d.dev != nil {
			dev.Close()
			continue
		}
		if sn, serr := dev.SerialNumber(); serr == nil && (serial == "" || sn == serial) {
			d.dev = dev
		} else {
			dev.Close()
		}
	}
	if d.dev == nil {
		d.Close()
		if err != nil {
			return nil, fmt.Errorf("Opening USB device %04x:%04x: %v", vid, pid, err)
		}
		return nil, fmt.Errorf("USB device %04x:%04x (serial %s) not found", vid, pid, serial)
	}
	d.dev.SetAutoDetach(true)

	cfgNum, intfNum, ok := findUsbTmc(d.dev.Desc)
	if !ok {
		d.Close()
		return nil, fmt.Errorf("Device %04x:%04x has no USBTMC interface", vid, pid)
	}
	if d.cfg, err = d.dev.Config(cfgNum); err != nil {
		d.Close()
		return nil, fmt.Errorf("Selecting config %d: %v", cfgNum, err)
	}
	if d.intf, err = d.cfg.Interface(intfNum, 0); err != nil {
		d.Close()
		return nil, fmt.Errorf("Claiming interface %d: %v", intfNum, err)
	}

	for _, ep := range d.intf.Setting.Endpoints {
		if ep.TransferType != gousb.TransferTypeBulk {
			continue
		}
		if ep.Direction == gousb.EndpointDirectionIn && d.epIn == nil {
			d.epIn, err = d.intf.InEndpoint(ep.Number)
		} else if ep.Direction == gousb.EndpointDirectionOut && d.epOut == nil {
			d.epOut, err = d.intf.OutEndpoint(ep.Number)
		}
		if err != nil {
			d.Close()
			return nil, fmt.Errorf("Opening bulk endpoint %v: %v", ep, err)
		}
	}
	if d.epIn == nil || d.epOut == nil {
		d.Close()
		return nil, fmt.Errorf("USBTMC interface is missing bulk endpoints")
	}
	return d, nil
}

func (d *UsbTmcDevice) Close() error {
	glog.V(1).Infof("Closing USB device")
	if d.intf != nil {
		d.intf.Close()
		d.intf = nil
	}
	if d.cfg != nil {
		d.cfg.Close()
		d.cfg = nil
	}
	if d.dev != nil {
		d.dev.Close()
		d.dev = nil
	}
	if d.ctx != nil {
		d.ctx.Close()
		d.ctx = nil
	}
	return nil
}

func (d *UsbTmcDevice) SetTimeout(timeout time.Duration) error {
	d.timeout = timeout
	return nil
}

func (d *UsbTmcDevice) context() (context.Context, context.CancelFunc) {
	if d.timeout <= 0 {
		return context.WithCancel(context.Background())
	}
	return context.WithTimeout(context.Background(), d.timeout)
}

// bTag cycles through 1..255.
func (d *UsbTmcDevice) nextTag() uint8 {
	d.tag++
	if d.tag == 0 {
		d.tag = 1
	}
	return d.tag
}

// Builds a bulk-OUT header.
func usbTmcHeader(msgID, tag uint8, size uint32, attr uint8) []byte {
	h := make([]byte, usbTmcHeaderLen)
	h[0] = msgID
	h[1] = tag
	h[2] = ^tag
	binary.LittleEndian.PutUint32(h[4:8], size)
	h[8] = attr
	return h
}

func (d *UsbTmcDevice) bulkOut(buf []byte) error {
	ctx, cancel := d.context()
	defer cancel()
	n, err := d.epOut.WriteContext(ctx, buf)
	if glog.V(2) {
		glog.Infof("[usb-bulk OUT]: wrote %d bytes. data:\n%s", n, hex.Dump(buf[:min(n, 32)]))
	}
	if err != nil && ctx.Err() != nil {
		return errTimeout
	}
	if err != nil {
		return err
	}
	if n != len(buf) {
		return fmt.Errorf("Failed to write entire buffer %v vs %v", n, len(buf))
	}
	return nil
}

// Sends p as one DEV_DEP_MSG_OUT transfer with EOM set.
func (d *UsbTmcDevice) Write(p []byte) (int, error) {
	msg := usbTmcHeader(msgDevDepMsgOut, d.nextTag(), uint32(len(p)), attrEOM)
	msg = append(msg, p...)
	for len(msg)%4 != 0 {
		msg = append(msg, 0)
	}
	if err := d.bulkOut(msg); err != nil {
		return 0, err
	}
	return len(p), nil
}

// Returns buffered payload, requesting a new message when empty.
func (d *UsbTmcDevice) Read(p []byte) (int, error) {
	if len(d.pending) == 0 {
		if err := d.requestIn(); err != nil {
			return 0, err
		}
	}
	n := copy(p, d.pending)
	d.pending = d.pending[n:]
	return n, nil
}

func (d *UsbTmcDevice) requestIn() error {
	tag := d.nextTag()
	if err := d.bulkOut(usbTmcHeader(msgRequestDevDepMsgIn, tag, usbTmcMaxTransfer, 0)); err != nil {
		return err
	}

	ctx, cancel := d.context()
	defer cancel()
	buf := make([]byte, usbTmcHeaderLen+usbTmcMaxTransfer)
	got := 0
	want := -1
	for want < 0 || got < want {
		n, err := d.epIn.ReadContext(ctx, buf[got:])
		if err != nil && ctx.Err() != nil {
			return errTimeout
		}
		if err != nil {
			return err
		}
		got += n
		if want < 0 && got >= usbTmcHeaderLen {
			if buf[0] != msgRequestDevDepMsgIn || buf[1] != tag {
				return fmt.Errorf("Unexpected USBTMC reply header % x", buf[:usbTmcHeaderLen])
			}
			want = usbTmcHeaderLen + int(binary.LittleEndian.Uint32(buf[4:8]))
		}
		if n == 0 {
			break
		}
	}
	if got < want {
		return fmt.Errorf("Short USBTMC reply %v vs %v", got, want)
	}
	glog.V(2).Infof("[usb-bulk IN]: read %d bytes, eom = %v", got, buf[8]&attrEOM != 0)
	d.pending = buf[usbTmcHeaderLen:want]
	return nil
}

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

// Lists instruments reachable over USBTMC and serial ports.
package keyoscacquire

import (
	"github.com/golang/glog"
	"github.com/google/gousb"
	"go.bug.st/serial/enumerator"
)

// VISA resource strings of attached USBTMC devices and serial ports.
// Sockets cannot be discovered this way.
func ListResources() ([]string, error) {
	var resources []string

	ctx := gousb.NewContext()
	defer ctx.Close()
	devs, err := ctx.OpenDevices(func(desc *gousb.DeviceDesc) bool {
		_, _, ok := findUsbTmc(desc)
		return ok
	})
	// Devices that could be opened are returned alongside the error.
	if err != nil {
		glog.Warningf("Some USB devices could not be opened: %v", err)
	}
	for _, dev := range devs {
		serial, err := dev.SerialNumber()
		if err != nil {
			glog.Warningf("Reading serial number of %v: %v", dev, err)
		}
		resources = append(resources,
			UsbAddress(uint16(dev.Desc.Vendor), uint16(dev.Desc.Product), serial))
		dev.Close()
	}

	ports, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return resources, err
	}
	for _, port := range ports {
		glog.V(1).Infof("Serial port %s (usb %v %s:%s)", port.Name, port.IsUSB, port.VID, port.PID)
		resources = append(resources, SerialAddress(port.Name))
	}
	return resources, nil
}

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

// Channel selection.
package keyoscacquire

import (
	"fmt"
	"strconv"
	"strings"
)

const NumChannels = 4

// Parses "active" (or "") into nil, otherwise a comma separated list of
// channel numbers kept in the given order.
func ParseChannels(s string) ([]int, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, ActiveChannelsRequest) {
		return nil, nil
	}
	var channels []int
	for _, f := range strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' }) {
		ch, err := strconv.Atoi(f)
		if err != nil {
			return nil, validationErrorf("channel", f, "not a channel number")
		}
		channels = append(channels, ch)
	}
	if err := validateChannels(channels); err != nil {
		return nil, err
	}
	return channels, nil
}

func validateChannels(channels []int) error {
	seen := map[int]bool{}
	for _, ch := range channels {
		if ch < 1 || ch > NumChannels {
			return validationErrorf("channel", ch, "must be in [1, %d]", NumChannels)
		}
		if seen[ch] {
			return validationErrorf("channel", ch, "requested more than once")
		}
		seen[ch] = true
	}
	return nil
}

func sources(channels []int) []string {
	src := make([]string, len(channels))
	for i, ch := range channels {
		src[i] = fmt.Sprintf("CHAN%d", ch)
	}
	return src
}

// Channels currently displayed, in ascending order.
func (o *Oscilloscope) ActiveChannels() ([]int, error) {
	var active []int
	for ch := 1; ch <= NumChannels; ch++ {
		cmd := fmt.Sprintf(":CHAN%d:DISP?", ch)
		res, err := o.query(cmd)
		if err != nil {
			return nil, err
		}
		on, err := strconv.Atoi(res)
		if err != nil {
			return nil, decodeErrorf("unexpected reply '%s' to '%s'", res, cmd)
		}
		if on != 0 {
			active = append(active, ch)
		}
	}
	return active, nil
}

// Turns the display of the given channels on and every other channel off.
func (o *Oscilloscope) SetActiveChannels(channels []int) error {
	if err := validateChannels(channels); err != nil {
		return err
	}
	on := map[int]bool{}
	for _, ch := range channels {
		on[ch] = true
	}
	for ch := 1; ch <= NumChannels; ch++ {
		state := 0
		if on[ch] {
			state = 1
		}
		if err := o.write(fmt.Sprintf(":CHAN%d:DISP %d", ch, state)); err != nil {
			return err
		}
	}
	return nil
}

// An empty request resolves to the active channels. Explicit requests are
// returned in the order given.
func (o *Oscilloscope) ResolveChannels(requested []int) ([]int, error) {
	if len(requested) == 0 {
		return o.ActiveChannels()
	}
	if err := validateChannels(requested); err != nil {
		return nil, err
	}
	return append([]int(nil), requested...), nil
}

// Resolves and stores the channels captured by GetTrace.
func (o *Oscilloscope) SetChannels(requested []int) ([]int, error) {
	if o.closed {
		return nil, ErrClosed
	}
	channels, err := o.ResolveChannels(requested)
	if err != nil {
		return nil, err
	}
	o.channels = channels
	if o.state == StateConnected {
		o.state = StateConfigured
	}
	return channels, nil
}

func (o *Oscilloscope) Channels() []int {
	return append([]int(nil), o.channels...)
}

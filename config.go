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

// Session configuration.
package keyoscacquire

import (
	"os"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Decides when a capture issues :DIGitize before reading.
type DigitizePolicy int

const (
	// Digitize only if the instrument is running. A stopped instrument is
	// read as is, capturing the frozen trace on screen.
	DigitizeWhenRunning DigitizePolicy = iota
	DigitizeAlways      DigitizePolicy = iota
	DigitizeNever       DigitizePolicy = iota
)

func (d DigitizePolicy) String() string {
	switch d {
	case DigitizeWhenRunning:
		return "when_running"
	case DigitizeAlways:
		return "always"
	case DigitizeNever:
		return "never"
	}
	return "DigitizePolicy(" + strconv.Itoa(int(d)) + ")"
}

func ParseDigitizePolicy(s string) (DigitizePolicy, error) {
	switch s {
	case "when_running", "":
		return DigitizeWhenRunning, nil
	case "always":
		return DigitizeAlways, nil
	case "never":
		return DigitizeNever, nil
	}
	return 0, validationErrorf("digitize policy", s, "expected when_running, always or never")
}

func (d DigitizePolicy) MarshalYAML() (interface{}, error) {
	return d.String(), nil
}

func (d *DigitizePolicy) UnmarshalYAML(value *yaml.Node) error {
	p, err := ParseDigitizePolicy(value.Value)
	if err != nil {
		return err
	}
	*d = p
	return nil
}

// Requests the channels currently displayed on the instrument.
const ActiveChannelsRequest = "active"

type Config struct {
	Address string        `yaml:"address"`
	Timeout time.Duration `yaml:"timeout"`

	WaveFormat  string `yaml:"waveform_format"`
	AcqType     string `yaml:"acq_type"`
	NumAverages int    `yaml:"num_averages"`
	PointsMode  string `yaml:"points_mode"`
	NumPoints   int    `yaml:"num_points"`
	// "active" or a comma separated list such as "3,1".
	Channels string `yaml:"channels"`

	Digitize           DigitizePolicy `yaml:"digitize"`
	RunAfterCapture    bool           `yaml:"run_after_capture"`
	RunOnClose         bool           `yaml:"run_on_close"`
	GetErrorsOnConnect bool           `yaml:"get_errors_on_connect"`

	Filename      string `yaml:"filename"`
	FileDelimiter string `yaml:"file_delimiter"`
	Extension     string `yaml:"extension"`
	ExportPNG     bool   `yaml:"export_png"`

	RedisAddr    string `yaml:"redis_addr"`
	RedisChannel string `yaml:"redis_channel"`
	MetricsPort  int    `yaml:"metrics_port"`
}

func DefaultConfig() Config {
	return Config{
		Address:         "USB0::1234::1234::MY1234567::INSTR",
		Timeout:         15 * time.Second,
		WaveFormat:      "WORD",
		AcqType:         "HRESolution",
		PointsMode:      "RAW",
		NumPoints:       0,
		Channels:        ActiveChannelsRequest,
		Digitize:        DigitizeWhenRunning,
		RunAfterCapture: true,
		RunOnClose:      true,
		Filename:        "data",
		FileDelimiter:   " n",
		Extension:       ".csv",
		ExportPNG:       true,
		RedisChannel:    "keyoscacquire",
	}
}

// Acquisition part of the config, as applied on connect.
func (c Config) AcquisitionOptions() AcquisitionOptions {
	return AcquisitionOptions{
		AcqType:     c.AcqType,
		NumAverages: c.NumAverages,
		WaveFormat:  c.WaveFormat,
		PointsMode:  c.PointsMode,
		NumPoints:   c.NumPoints,
	}
}

// Checks option tokens without contacting the instrument.
func (c Config) Validate() error {
	var err error
	if _, err = ParseAddress(c.Address); err != nil {
		return err
	}
	if c.Timeout < 0 {
		return validationErrorf("timeout", c.Timeout, "must not be negative")
	}
	if _, err = planAcquisition(c.AcquisitionOptions(), defaultSettings(), defaultQuirks); err != nil {
		return err
	}
	if _, err = ParseChannels(c.Channels); err != nil {
		return err
	}
	return nil
}

// Reads a YAML file on top of DefaultConfig.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrap(err, "reading config")
	}
	if err = yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrapf(err, "parsing config '%s'", path)
	}
	return cfg, cfg.Validate()
}

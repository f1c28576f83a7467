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

// Command line plumbing shared by the programmes.
package util

import (
	"flag"
	"time"

	"github.com/asvela/keyoscacquire"
)

// Flags registered on a FlagSet. Only flags given on the command line
// override the config file.
type Flags struct {
	fs *flag.FlagSet

	config       *string
	address      *string
	timeout      *time.Duration
	format       *string
	acqType      *string
	averages     *int
	pointsMode   *string
	numPoints    *int
	channels     *string
	digitize     *string
	filename     *string
	delimiter    *string
	ext          *string
	png          *bool
	runOnClose   *bool
	redis        *string
	redisChannel *string
	metricsPort  *int
}

func RegisterFlags(fs *flag.FlagSet) *Flags {
	d := keyoscacquire.DefaultConfig()
	return &Flags{
		fs:           fs,
		config:       fs.String("config", "", "YAML config file applied before the other flags"),
		address:      fs.String("address", d.Address, "VISA address of the oscilloscope"),
		timeout:      fs.Duration("timeout", d.Timeout, "Reply timeout, must exceed the acquisition time"),
		format:       fs.String("format", d.WaveFormat, "Waveform format: WORD, BYTE or ASCii"),
		acqType:      fs.String("acq_type", d.AcqType, "Acquisition type: NORMal, HRESolution, AVERage or AVER<m>"),
		averages:     fs.Int("averages", d.NumAverages, "Number of averages in AVERage mode (2 to 65536)"),
		pointsMode:   fs.String("points_mode", d.PointsMode, "Points mode: NORMal, RAW or MAXimum"),
		numPoints:    fs.Int("num_points", d.NumPoints, "Points per channel, 0 for the maximum of the points mode"),
		channels:     fs.String("channels", d.Channels, "'active' or a comma separated channel list, e.g. 3,1"),
		digitize:     fs.String("digitize", d.Digitize.String(), "When to digitize: when_running, always or never"),
		filename:     fs.String("filename", d.Filename, "Base name of saved traces"),
		delimiter:    fs.String("delimiter", d.FileDelimiter, "Separator between base name and trace number"),
		ext:          fs.String("ext", d.Extension, "Trace file type: .csv or .json.gz"),
		png:          fs.Bool("png", d.ExportPNG, "Also save a PNG plot of each trace"),
		runOnClose:   fs.Bool("run_on_close", d.RunOnClose, "Set the oscilloscope running when done"),
		redis:        fs.String("redis", d.RedisAddr, "Redis address to publish traces to"),
		redisChannel: fs.String("redis_channel", d.RedisChannel, "Redis channel for published traces"),
		metricsPort:  fs.Int("metrics_port", d.MetricsPort, "Serve prometheus metrics on this port"),
	}
}

// Builds the config: defaults, then the -config file, then explicit flags.
// A positional argument overrides the filename.
func (f *Flags) Config() (keyoscacquire.Config, error) {
	var err error
	cfg := keyoscacquire.DefaultConfig()
	if *f.config != "" {
		if cfg, err = keyoscacquire.LoadConfig(*f.config); err != nil {
			return cfg, err
		}
	}
	f.fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "address":
			cfg.Address = *f.address
		case "timeout":
			cfg.Timeout = *f.timeout
		case "format":
			cfg.WaveFormat = *f.format
		case "acq_type":
			cfg.AcqType = *f.acqType
		case "averages":
			cfg.NumAverages = *f.averages
		case "points_mode":
			cfg.PointsMode = *f.pointsMode
		case "num_points":
			cfg.NumPoints = *f.numPoints
		case "channels":
			cfg.Channels = *f.channels
		case "digitize":
			if cfg.Digitize, err = keyoscacquire.ParseDigitizePolicy(*f.digitize); err != nil {
				return
			}
		case "filename":
			cfg.Filename = *f.filename
		case "delimiter":
			cfg.FileDelimiter = *f.delimiter
		case "ext":
			cfg.Extension = *f.ext
		case "png":
			cfg.ExportPNG = *f.png
		case "run_on_close":
			cfg.RunOnClose = *f.runOnClose
		case "redis":
			cfg.RedisAddr = *f.redis
		case "redis_channel":
			cfg.RedisChannel = *f.redisChannel
		case "metrics_port":
			cfg.MetricsPort = *f.metricsPort
		}
	})
	if err != nil {
		return cfg, err
	}
	if f.fs.NArg() > 0 {
		cfg.Filename = f.fs.Arg(0)
	}
	return cfg, cfg.Validate()
}

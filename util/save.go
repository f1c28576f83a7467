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

package util

import (
	"github.com/asvela/keyoscacquire"
	"github.com/asvela/keyoscacquire/traceio"
	"github.com/golang/glog"
)

// Saves the trace under base with the configured extension, plus a PNG
// plot if enabled. Returns the trace file name.
func SaveTrace(cfg keyoscacquire.Config, base string, trace *keyoscacquire.Trace, header string) (string, error) {
	name, err := traceio.Save(base, cfg.Extension, trace, header)
	if err != nil {
		return "", err
	}
	if cfg.ExportPNG {
		png := base + traceio.ExtPNG
		if err = traceio.SavePNG(png, trace); err != nil {
			return name, err
		}
		glog.V(1).Infof("Saved plot to '%s'", png)
	}
	return name, nil
}

// Strips a trace extension off filename, updating the extension to match.
func SplitFilename(cfg *keyoscacquire.Config) string {
	base, ext := traceio.SplitExt(cfg.Filename)
	if ext != "" {
		cfg.Extension = ext
	}
	return base
}

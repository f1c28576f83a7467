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

package keyoscacquire_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/asvela/keyoscacquire"
)

func TestDefaultConfigIsValid(t *testing.T) {
	if err := keyoscacquire.DefaultConfig().Validate(); err != nil {
		t.Errorf("Default config invalid: %v", err)
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scope.yaml")
	data := []byte(`address: TCPIP0::192.168.1.20::5025::SOCKET
timeout: 30s
acq_type: AVER16
channels: "2,1"
digitize: always
export_png: false
`)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := keyoscacquire.LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Timeout != 30*time.Second || cfg.AcqType != "AVER16" || cfg.Channels != "2,1" {
		t.Errorf("Unexpected config %+v", cfg)
	}
	if cfg.Digitize != keyoscacquire.DigitizeAlways || cfg.ExportPNG {
		t.Errorf("Unexpected config %+v", cfg)
	}
	// Unset keys keep their defaults.
	if cfg.WaveFormat != "WORD" || cfg.Filename != "data" {
		t.Errorf("Defaults lost: %+v", cfg)
	}
}

func TestLoadConfigRejectsBadValues(t *testing.T) {
	for _, data := range []string{
		"acq_type: AVER1\n",
		"digitize: sometimes\n",
		"channels: \"7\"\n",
		"waveform_format: FLOAT\n",
	} {
		path := filepath.Join(t.TempDir(), "scope.yaml")
		if err := os.WriteFile(path, []byte(data), 0644); err != nil {
			t.Fatal(err)
		}
		if _, err := keyoscacquire.LoadConfig(path); err == nil {
			t.Errorf("LoadConfig(%q) expected to fail", data)
		}
	}
}

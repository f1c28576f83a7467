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

package traceio

import (
	"fmt"
	"os"
	"strings"

	"github.com/asvela/keyoscacquire"
	"github.com/golang/glog"
	"github.com/pkg/errors"
)

const (
	ExtCSV    = ".csv"
	ExtJSONGz = ".json.gz"
	ExtPNG    = ".png"
)

// Splits a known trace extension off name. ext is empty if there is none.
func SplitExt(name string) (base, ext string) {
	for _, e := range []string{ExtJSONGz, ExtCSV} {
		if strings.HasSuffix(strings.ToLower(name), e) {
			return name[:len(name)-len(e)], e
		}
	}
	return name, ""
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// First unused name of the form <base><delim><n><ext>, counting from n.
func NextFreeName(base, delim, ext string, n int) string {
	for ; ; n++ {
		name := fmt.Sprintf("%s%s%d%s", base, delim, n, ext)
		if !exists(name) {
			return name
		}
	}
}

// Picks base+ext, or the next free numbered name if that is taken.
func FreeName(base, delim, ext string) string {
	if name := base + ext; !exists(name) {
		return name
	}
	name := NextFreeName(base, delim, ext, 1)
	glog.Warningf("File '%s%s' exists, using '%s'", base, ext, name)
	return name
}

// Writes the trace to base+ext in the format ext selects. Existing files are
// never overwritten.
func Save(base, ext string, trace *keyoscacquire.Trace, header string) (string, error) {
	name := base + ext
	var save func(f *os.File) error
	switch ext {
	case ExtCSV:
		save = func(f *os.File) error { return SaveCSV(f, trace, header) }
	case ExtJSONGz:
		save = func(f *os.File) error { return SaveJSONGz(f, trace, header) }
	default:
		return "", errors.Errorf("unsupported file type '%s'", ext)
	}
	f, err := os.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return "", errors.Wrap(err, "creating trace file")
	}
	if err = save(f); err != nil {
		f.Close()
		return "", errors.Wrapf(err, "saving '%s'", name)
	}
	if err = f.Close(); err != nil {
		return "", err
	}
	glog.Infof("Saved trace to '%s'", name)
	return name, nil
}

// Reads a .csv or .json.gz trace file. Returns the header lines.
func Load(name string) (*keyoscacquire.Trace, []string, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, nil, errors.Wrap(err, "opening trace file")
	}
	defer f.Close()
	switch _, ext := SplitExt(name); ext {
	case ExtCSV:
		return LoadCSV(f)
	case ExtJSONGz:
		trace, header, err := LoadJSONGz(f)
		if err != nil {
			return nil, nil, err
		}
		return trace, strings.Split(header, "\n"), nil
	}
	return nil, nil, errors.Errorf("unsupported file type '%s'", name)
}

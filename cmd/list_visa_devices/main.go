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

// Lists the instruments that can be reached, optionally with their identity.
package main

import (
	"flag"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/asvela/keyoscacquire"

	"github.com/golang/glog"
)

var (
	idnFlag     = flag.Bool("idn", true, "Query *IDN? of every resource")
	timeoutFlag = flag.Duration("timeout", 2*time.Second, "Reply timeout for *IDN?")
)

func init() {
	flag.Parse()
}

func identify(address string) (keyoscacquire.Identity, error) {
	var err error
	var t *keyoscacquire.Scpi
	if t, err = keyoscacquire.Dial(address, *timeoutFlag); err != nil {
		return keyoscacquire.Identity{}, err
	}
	defer t.Close()
	idn, err := t.Query("*IDN?")
	if err != nil {
		return keyoscacquire.Identity{}, err
	}
	return keyoscacquire.ParseIdentity(idn)
}

func main() {
	defer glog.Flush()

	resources, err := keyoscacquire.ListResources()
	if err != nil {
		glog.Errorf("Listing resources: %v", err)
	}
	if len(resources) == 0 {
		fmt.Println("No instruments found")
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "#\tAddress\tMaker\tModel\tSerial")
	for i, r := range resources {
		var id keyoscacquire.Identity
		if *idnFlag {
			if id, err = identify(r); err != nil {
				glog.V(1).Infof("No identity for %s: %v", r, err)
			}
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", i, r, id.Maker, id.Model, id.Serial)
	}
	w.Flush()
}

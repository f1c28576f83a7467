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

// Raw TCP socket link (TCPIP::<host>::<port>::SOCKET).
package keyoscacquire

import (
	"fmt"
	"net"
	"time"

	"github.com/golang/glog"
)

type SocketLink struct {
	conn    net.Conn
	timeout time.Duration
}

func OpenSocketLink(host string, port int, timeout time.Duration) (*SocketLink, error) {
	addr := net.JoinHostPort(host, fmt.Sprint(port))
	glog.V(1).Infof("Dialing %s", addr)
	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return nil, err
	}
	return &SocketLink{conn, timeout}, nil
}

func (l *SocketLink) Read(p []byte) (int, error) {
	if l.timeout > 0 {
		l.conn.SetReadDeadline(time.Now().Add(l.timeout))
	}
	n, err := l.conn.Read(p)
	if ne, ok := err.(net.Error); ok && ne.Timeout() {
		return n, errTimeout
	}
	return n, err
}

func (l *SocketLink) Write(p []byte) (int, error) {
	if l.timeout > 0 {
		l.conn.SetWriteDeadline(time.Now().Add(l.timeout))
	}
	return l.conn.Write(p)
}

func (l *SocketLink) Close() error {
	return l.conn.Close()
}

func (l *SocketLink) SetTimeout(timeout time.Duration) error {
	l.timeout = timeout
	return nil
}

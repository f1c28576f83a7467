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

// Error taxonomy for configuration, transfer and decoding failures.
package keyoscacquire

import (
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// Returned by operations on a session that has been closed.
var ErrClosed = errors.New("oscilloscope session is closed")

// Raised before any device command is issued.
type ValidationError struct {
	Field string
	Value interface{}
	Msg   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("Invalid %s (%v): %s", e.Field, e.Value, e.Msg)
}

func validationErrorf(field string, value interface{}, format string, a ...interface{}) error {
	return &ValidationError{field, value, fmt.Sprintf(format, a...)}
}

// Wraps a failed command/response round trip.
// DeviceErrors holds whatever the instrument error queue reported afterwards.
type TransportError struct {
	Command      string
	Timeout      time.Duration
	DeviceErrors []string
	Err          error
}

func (e *TransportError) Error() string {
	msg := fmt.Sprintf("Command '%s' failed (timeout %v): %v", e.Command, e.Timeout, e.Err)
	if len(e.DeviceErrors) > 0 {
		msg += fmt.Sprintf(" [device errors: %s]", strings.Join(e.DeviceErrors, "; "))
	}
	return msg
}

func (e *TransportError) Cause() error {
	return e.Err
}

// Raised after data has been transferred; device state is not rolled back.
type DecodeError struct {
	Msg string
}

func (e *DecodeError) Error() string {
	return "Decoding failed: " + e.Msg
}

func decodeErrorf(format string, a ...interface{}) error {
	return &DecodeError{fmt.Sprintf(format, a...)}
}

func IsValidationError(err error) bool {
	_, ok := errors.Cause(err).(*ValidationError)
	return ok
}

// TransportError implements causer, so it is matched before unwrapping past it.
func IsTransportError(err error) bool {
	for err != nil {
		if _, ok := err.(*TransportError); ok {
			return true
		}
		c, ok := err.(interface{ Cause() error })
		if !ok {
			return false
		}
		err = c.Cause()
	}
	return false
}

func IsDecodeError(err error) bool {
	_, ok := errors.Cause(err).(*DecodeError)
	return ok
}

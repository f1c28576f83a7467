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

// Fans trace directory events out from one publisher to many subscribers.
// Slow subscribers miss events rather than block the broker.
type Broker struct {
	stopCh    chan struct{}
	publishCh chan TraceEvent
	subCh     chan chan TraceEvent
	unsubCh   chan chan TraceEvent
}

type TraceEventOp int

const (
	TraceCreated TraceEventOp = iota
	TraceRemoved TraceEventOp = iota
)

func (op TraceEventOp) String() string {
	if op == TraceRemoved {
		return "removed"
	}
	return "created"
}

// A trace file appeared in or left the watched directory.
type TraceEvent struct {
	Name string `json:"name"`
	Op   string `json:"op"`
}

func NewTraceEvent(name string, op TraceEventOp) TraceEvent {
	return TraceEvent{Name: name, Op: op.String()}
}

func NewBroker() *Broker {
	return &Broker{
		stopCh:    make(chan struct{}),
		publishCh: make(chan TraceEvent, 1),
		subCh:     make(chan chan TraceEvent, 1),
		unsubCh:   make(chan chan TraceEvent, 1),
	}
}

func (b *Broker) Start() {
	subs := map[chan TraceEvent]struct{}{}
	for {
		select {
		case <-b.stopCh:
			for ch := range subs {
				close(ch)
			}
			return
		case ch := <-b.subCh:
			subs[ch] = struct{}{}
		case ch := <-b.unsubCh:
			if _, ok := subs[ch]; ok {
				delete(subs, ch)
				close(ch)
			}
		case ev := <-b.publishCh:
			for ch := range subs {
				select {
				case ch <- ev:
				default:
				}
			}
		}
	}
}

func (b *Broker) Stop() {
	close(b.stopCh)
}

func (b *Broker) Subscribe() chan TraceEvent {
	ch := make(chan TraceEvent, 5)
	b.subCh <- ch
	return ch
}

// Closes ch once the broker has dropped it.
func (b *Broker) Unsubscribe(ch chan TraceEvent) {
	select {
	case b.unsubCh <- ch:
	case <-b.stopCh:
	}
}

func (b *Broker) Publish(ev TraceEvent) {
	select {
	case b.publishCh <- ev:
	case <-b.stopCh:
	}
}

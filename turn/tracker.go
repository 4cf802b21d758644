// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package turn

import (
	"sync"
	"sync/atomic"
)

// Tracker publishes the progress of a turn to concurrent pollers.
// Publish is called by the goroutine running the turn; Snapshot, Err and
// Done may be called from any goroutine.
type Tracker struct {
	state  atomic.Pointer[State]
	done   chan struct{}
	once   sync.Once
	mu     sync.Mutex
	result error
}

// NewTracker creates a tracker whose first snapshot is initial.
func NewTracker(initial State) *Tracker {
	t := &Tracker{done: make(chan struct{})}
	t.Publish(initial)
	return t
}

// Publish makes s the state visible to pollers.
func (t *Tracker) Publish(s State) {
	t.state.Store(&s)
}

// Snapshot returns the most recently published state.
func (t *Tracker) Snapshot() State {
	return *t.state.Load()
}

// Finish records the turn result and closes Done. Later calls are ignored.
func (t *Tracker) Finish(err error) {
	t.once.Do(func() {
		t.mu.Lock()
		t.result = err
		t.mu.Unlock()
		close(t.done)
	})
}

// Done is closed when the turn finished.
func (t *Tracker) Done() <-chan struct{} {
	return t.done
}

// Err returns the turn result once Done is closed, nil before.
func (t *Tracker) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.result
}

// Wait blocks until the turn finished and returns its final state and result.
func (t *Tracker) Wait() (State, error) {
	<-t.done
	return t.Snapshot(), t.Err()
}

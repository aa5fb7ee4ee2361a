// Copyright 2025 Kadir Pekel
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

package task

import (
	"sync"
	"time"

	"github.com/kadirpekel/hector/workflow"
)

// Event is a task-update notification broadcast to every subscriber on
// every status transition, and on every agent-level workflow.Event the
// Engine emits while the task is in-progress.
type Event struct {
	TaskID    string
	Status    Status
	Timestamp time.Time
	Agent     *workflow.Event // set only for agent-level events during in-progress
}

// broadcaster is a minimal fan-out pub/sub: each Subscribe call gets its
// own buffered channel, closed when Unsubscribe is called. Slow or
// abandoned subscribers never block publishers; a full channel simply
// drops the event, since events are a best-effort progress feed, not
// the system of record (GetTask/ListTasks remain authoritative).
type broadcaster struct {
	mu   sync.Mutex
	subs map[chan Event]struct{}
}

func newBroadcaster() *broadcaster {
	return &broadcaster{subs: make(map[chan Event]struct{})}
}

// Subscribe registers a new listener and returns its channel plus an
// unsubscribe function.
func (b *broadcaster) Subscribe(buffer int) (<-chan Event, func()) {
	if buffer <= 0 {
		buffer = 16
	}
	ch := make(chan Event, buffer)

	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()

	unsubscribe := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if _, ok := b.subs[ch]; ok {
			delete(b.subs, ch)
			close(ch)
		}
	}
	return ch, unsubscribe
}

func (b *broadcaster) Publish(e Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subs {
		select {
		case ch <- e:
		default:
		}
	}
}

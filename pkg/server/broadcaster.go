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

package server

import (
	"sync"

	"github.com/nats-io/nats.go"
)

// Message is one named SSE event (spec.md §6: "tasks", "agents",
// "stats"), pre-encoded to the JSON bytes that go straight into the
// SSE frame's data field.
type Message struct {
	Event string
	Data  []byte
}

// Broadcaster fans Messages out to every subscriber. There are two
// implementations: Broadcaster (in-process, the default) and
// NATSBroadcaster (out-of-process, opt-in via config) — selecting
// between them is the External HTTP/Event Surface's only deployment
// knob (multi-process horizontal scaling stays a Non-goal otherwise).
type EventBroadcaster interface {
	Publish(Message)
	Subscribe() (<-chan Message, func())
}

// Broadcaster is the default in-process EventBroadcaster: a
// sync.RWMutex-guarded subscriber-channel map, mirroring spec.md §5's
// single-writer-discipline requirement for the subscriber set.
type Broadcaster struct {
	mu   sync.RWMutex
	subs map[chan Message]struct{}
}

// NewBroadcaster creates an empty in-process Broadcaster.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{subs: make(map[chan Message]struct{})}
}

func (b *Broadcaster) Publish(msg Message) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for ch := range b.subs {
		select {
		case ch <- msg:
		default:
			// Slow subscriber: the event stream is best-effort per
			// spec.md §5 "Backpressure", so a full channel just drops it.
		}
	}
}

func (b *Broadcaster) Subscribe() (<-chan Message, func()) {
	ch := make(chan Message, 32)

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

var _ EventBroadcaster = (*Broadcaster)(nil)

// natsSubject carries every Message regardless of its Event name; the
// Event name rides inside the NATS message headers so a single
// subscription fans out all three SSE event types.
const natsSubject = "orchestrator.events"

// NATSBroadcaster relays Messages through a NATS subject, so multiple
// orchestrator processes behind a load balancer can share one event
// feed. Each Subscribe call opens its own NATS subscription.
type NATSBroadcaster struct {
	conn *nats.Conn
}

// NewNATSBroadcaster connects to url and returns a ready Broadcaster.
func NewNATSBroadcaster(url string) (*NATSBroadcaster, error) {
	conn, err := nats.Connect(url)
	if err != nil {
		return nil, err
	}
	return &NATSBroadcaster{conn: conn}, nil
}

func (b *NATSBroadcaster) Publish(msg Message) {
	natsMsg := nats.NewMsg(natsSubject)
	natsMsg.Header.Set("event", msg.Event)
	natsMsg.Data = msg.Data
	_ = b.conn.PublishMsg(natsMsg)
}

func (b *NATSBroadcaster) Subscribe() (<-chan Message, func()) {
	out := make(chan Message, 32)
	sub, err := b.conn.Subscribe(natsSubject, func(m *nats.Msg) {
		select {
		case out <- Message{Event: m.Header.Get("event"), Data: m.Data}:
		default:
		}
	})
	if err != nil {
		close(out)
		return out, func() {}
	}
	return out, func() {
		_ = sub.Unsubscribe()
		close(out)
	}
}

var _ EventBroadcaster = (*NATSBroadcaster)(nil)

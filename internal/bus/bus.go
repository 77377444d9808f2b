// Package bus carries scoped invalidation messages between the mutation
// path and attached views. Mutations publish which views could have
// changed; subscribers refresh exactly those.
package bus

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// BoardTopic names the board view of one requisition.
func BoardTopic(requisitionID uuid.UUID) string {
	return fmt.Sprintf("board:%s", requisitionID)
}

// ApplicationTopic names the detail view of one application.
func ApplicationTopic(applicationID uuid.UUID) string {
	return fmt.Sprintf("application:%s", applicationID)
}

// Message is one invalidation notice.
type Message struct {
	Topic string
	At    time.Time
}

// Bus is an in-process fan-out of invalidation messages. Publish never
// blocks: a subscriber that falls behind loses messages, which is safe
// because messages are invalidations, not data.
type Bus struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]chan Message
}

func New() *Bus {
	return &Bus{subs: make(map[int]chan Message)}
}

// Subscribe returns a channel of messages and a cancel func. The channel is
// closed on cancel.
func (b *Bus) Subscribe() (<-chan Message, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.nextID
	b.nextID++
	ch := make(chan Message, 64)
	b.subs[id] = ch
	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if sub, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}

// Publish delivers topic to every subscriber without blocking.
func (b *Bus) Publish(topic string) {
	msg := Message{Topic: topic, At: time.Now()}
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs {
		select {
		case ch <- msg:
		default:
		}
	}
}

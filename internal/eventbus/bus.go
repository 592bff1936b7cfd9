package eventbus

import (
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/kazz187/taskboard/internal/metrics"
)

type Type string

const (
	TypeTaskCreated         Type = "task.created"
	TypeTaskUpdated         Type = "task.updated"
	TypeTaskDeleted         Type = "task.deleted"
	TypeTaskStatusChanged   Type = "task.status_changed"
	TypeAssignmentRequested Type = "assignment.requested"
	TypeAssignmentResponded Type = "assignment.responded"
)

type Event struct {
	ID         string            `json:"id"`
	Type       Type              `json:"type"`
	ResourceID string            `json:"resource_id"`
	Metadata   map[string]string `json:"metadata,omitempty"`
	CreatedAt  time.Time         `json:"created_at"`
}

type Bus struct {
	mu          sync.RWMutex
	subscribers map[string]chan *Event
	metrics     metrics.Collector
}

func New(m metrics.Collector) *Bus {
	if m == nil {
		m = metrics.NewNop()
	}
	return &Bus{
		subscribers: make(map[string]chan *Event),
		metrics:     m,
	}
}

func (b *Bus) Subscribe(bufSize int) (string, <-chan *Event) {
	id := ulid.Make().String()
	ch := make(chan *Event, bufSize)
	b.mu.Lock()
	b.subscribers[id] = ch
	b.mu.Unlock()
	return id, ch
}

func (b *Bus) Unsubscribe(id string) {
	b.mu.Lock()
	if ch, ok := b.subscribers[id]; ok {
		close(ch)
		delete(b.subscribers, id)
	}
	b.mu.Unlock()
}

func (b *Bus) Publish(event *Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, ch := range b.subscribers {
		select {
		case ch <- event:
		default:
			// buffer full, drop event for this subscriber
			b.metrics.RecordEventDropped()
		}
	}
}

func (b *Bus) PublishNew(eventType Type, resourceID string, metadata map[string]string) {
	b.Publish(&Event{
		ID:         ulid.Make().String(),
		Type:       eventType,
		ResourceID: resourceID,
		Metadata:   metadata,
		CreatedAt:  time.Now(),
	})
}

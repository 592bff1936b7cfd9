package eventbus

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBusDelivers(t *testing.T) {
	b := New(nil)
	id, ch := b.Subscribe(4)
	defer b.Unsubscribe(id)

	b.PublishNew(TypeTaskCreated, "T1", map[string]string{"status": "Pending"})

	ev := <-ch
	assert.Equal(t, TypeTaskCreated, ev.Type)
	assert.Equal(t, "T1", ev.ResourceID)
	assert.Equal(t, "Pending", ev.Metadata["status"])
	assert.NotEmpty(t, ev.ID)
}

func TestBusDropsWhenFull(t *testing.T) {
	b := New(nil)
	id, ch := b.Subscribe(1)

	b.PublishNew(TypeTaskUpdated, "T1", nil)
	b.PublishNew(TypeTaskUpdated, "T2", nil)

	ev := <-ch
	assert.Equal(t, "T1", ev.ResourceID)
	select {
	case ev := <-ch:
		t.Fatalf("unexpected event %v", ev)
	default:
	}

	b.Unsubscribe(id)
	_, ok := <-ch
	require.False(t, ok)
}

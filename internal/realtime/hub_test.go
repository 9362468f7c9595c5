package realtime

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oduya/pendo/internal/db"
)

func TestPublishDeliversInOrder(t *testing.T) {
	hub := NewHub()
	sub := hub.Subscribe("m-1", 8)
	defer sub.Cancel()

	for i := 0; i < 5; i++ {
		hub.Publish("m-1", db.Message{ID: fmt.Sprintf("msg-%d", i), MatchID: "m-1"})
	}

	for i := 0; i < 5; i++ {
		select {
		case msg := <-sub.C():
			assert.Equal(t, fmt.Sprintf("msg-%d", i), msg.ID)
		case <-time.After(time.Second):
			t.Fatalf("timed out waiting for message %d", i)
		}
	}
}

func TestPublishScopesByMatch(t *testing.T) {
	hub := NewHub()
	sub1 := hub.Subscribe("m-1", 8)
	defer sub1.Cancel()
	sub2 := hub.Subscribe("m-2", 8)
	defer sub2.Cancel()

	hub.Publish("m-1", db.Message{ID: "only-for-m1", MatchID: "m-1"})

	select {
	case msg := <-sub1.C():
		assert.Equal(t, "only-for-m1", msg.ID)
	case <-time.After(time.Second):
		t.Fatal("subscriber on m-1 received nothing")
	}

	select {
	case msg := <-sub2.C():
		t.Fatalf("subscriber on m-2 received foreign message %q", msg.ID)
	default:
	}
}

func TestCancelIsIdempotentAndUnregisters(t *testing.T) {
	hub := NewHub()
	sub := hub.Subscribe("m-1", 8)

	require.Equal(t, 1, hub.Subscribers("m-1"))

	sub.Cancel()
	sub.Cancel() // second cancel must not panic

	assert.Equal(t, 0, hub.Subscribers("m-1"))

	// channel is closed after cancel
	_, ok := <-sub.C()
	assert.False(t, ok)

	// publishing into an empty scope is a no-op
	hub.Publish("m-1", db.Message{ID: "dropped"})
}

func TestSlowSubscriberIsDropped(t *testing.T) {
	hub := NewHub()
	slow := hub.Subscribe("m-1", 1)
	healthy := hub.Subscribe("m-1", 8)
	defer healthy.Cancel()

	// fill the slow buffer, then overflow it
	hub.Publish("m-1", db.Message{ID: "a"})
	hub.Publish("m-1", db.Message{ID: "b"})

	assert.Equal(t, 1, hub.Subscribers("m-1"))

	// the healthy subscriber saw everything
	assert.Equal(t, "a", (<-healthy.C()).ID)
	assert.Equal(t, "b", (<-healthy.C()).ID)

	// the slow one got the buffered event, then a closed channel
	msg, ok := <-slow.C()
	require.True(t, ok)
	assert.Equal(t, "a", msg.ID)
	_, ok = <-slow.C()
	assert.False(t, ok)
}

package websocket

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/isdelr/exercise-tracker/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receive(t *testing.T, c *Client) (Message, bool) {
	t.Helper()
	select {
	case data, ok := <-c.Send:
		if !ok {
			return Message{}, false
		}
		var msg Message
		require.NoError(t, json.Unmarshal(data, &msg))
		return msg, true
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for message")
		return Message{}, false
	}
}

func assertNothing(t *testing.T, c *Client) {
	t.Helper()
	select {
	case data := <-c.Send:
		t.Fatalf("unexpected message: %s", data)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHubRoutesEventsByTopic(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Stop()

	global := NewClient(hub, nil, GlobalTopic)
	alice := NewClient(hub, nil, "alice-id")
	bob := NewClient(hub, nil, "bob-id")
	for _, c := range []*Client{global, alice, bob} {
		require.True(t, hub.Join(c))
	}

	aliceID := "alice-id"
	hub.PublishEvent(models.Event{ID: "e1", Type: models.EventExerciseCreate, UserID: &aliceID})

	msg, ok := receive(t, global)
	require.True(t, ok)
	assert.Equal(t, "event", msg.Action)

	msg, ok = receive(t, alice)
	require.True(t, ok)
	payload, _ := msg.Payload.(map[string]interface{})
	assert.Equal(t, "e1", payload["id"])

	assertNothing(t, bob)
}

func TestHubLeaveClosesSend(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Stop()

	c := NewClient(hub, nil, GlobalTopic)
	require.True(t, hub.Join(c))
	hub.Leave(c)

	_, ok := <-c.Send
	assert.False(t, ok)
}

func TestHubStopClosesClients(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	c := NewClient(hub, nil, GlobalTopic)
	require.True(t, hub.Join(c))
	hub.Stop()

	select {
	case _, ok := <-c.Send:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("client not closed on stop")
	}
	assert.False(t, hub.Join(NewClient(hub, nil, GlobalTopic)))
	hub.Leave(c)
}

package ws

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/vitalwatch/api/internal/model"
)

func TestHub_SlowSubscriberDropsEventWithoutTeardown(t *testing.T) {
	h := NewHub(nil)
	client := NewClient(h, nil, uuid.New(), "dashboard")
	h.addClient(client)

	// Saturate the send buffer so the next delivery cannot be queued
	for i := 0; i < cap(client.send); i++ {
		client.send <- []byte("{}")
	}

	event := &model.WSEvent{Type: model.WSEventTelemetry}
	require.NotPanics(t, func() { h.broadcastToLocal(event) })

	// The dropped event must not tear the subscriber down
	require.Equal(t, 1, h.SubscriberCount())

	// Unregister after the drop closes the channel exactly once
	require.NotPanics(t, func() { h.removeClient(client) })
	require.Equal(t, 0, h.SubscriberCount())

	closed := false
	for i := 0; i <= cap(client.send); i++ {
		done := false
		select {
		case _, ok := <-client.send:
			if !ok {
				closed = true
				done = true
			}
		default:
			done = true
		}
		if done {
			break
		}
	}
	require.True(t, closed, "send channel should be closed by removeClient")

	// A second unregister (read and write pumps racing on teardown) is a no-op
	require.NotPanics(t, func() { h.removeClient(client) })
}

func TestHub_SendToUserDropsWhenSubscriberSaturated(t *testing.T) {
	h := NewHub(nil)
	userID := uuid.New()
	slow := NewClient(h, nil, userID, "family")
	h.addClient(slow)

	for i := 0; i < cap(slow.send); i++ {
		slow.send <- []byte("{}")
	}

	event := &model.WSEvent{Type: model.WSEventNotification}
	require.NotPanics(t, func() { h.sendToLocalUser(userID, event) })
	require.Equal(t, 1, h.SubscriberCount())

	// A subscriber with buffer room still receives the event
	fresh := NewClient(h, nil, userID, "family")
	h.addClient(fresh)
	h.sendToLocalUser(userID, event)
	select {
	case data := <-fresh.send:
		require.Contains(t, string(data), model.WSEventNotification)
	default:
		t.Fatal("expected event queued for the healthy connection")
	}
}

package realtime

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTeamRoom(t *testing.T) {
	assert.Equal(t, "team_7", TeamRoom(7))
}

func TestBroadcastToRoom_DeliversToSubscribers(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	client := &Client{
		Hub:  hub,
		Send: make(chan []byte, 4),
		Room: TeamRoom(1),
	}
	hub.Register <- client

	other := &Client{
		Hub:  hub,
		Send: make(chan []byte, 4),
		Room: TeamRoom(2),
	}
	hub.Register <- other

	// Регистрация обрабатывается горутиной Run.
	time.Sleep(10 * time.Millisecond)

	hub.BroadcastToRoom(TeamRoom(1), EventMemberJoined, map[string]int{"user_id": 42})

	select {
	case raw := <-client.Send:
		var msg Message
		require.NoError(t, json.Unmarshal(raw, &msg))
		assert.Equal(t, EventMemberJoined, msg.Type)
		assert.Equal(t, TeamRoom(1), msg.RoomID)
	case <-time.After(time.Second):
		t.Fatal("expected a message in room team_1")
	}

	select {
	case <-other.Send:
		t.Fatal("client in another room must not receive the message")
	default:
	}
}

func TestBroadcastToRoom_NilHubIsNoop(t *testing.T) {
	var hub *Hub
	assert.NotPanics(t, func() {
		hub.BroadcastToRoom(TeamRoom(1), EventMemberLeft, nil)
	})
}

func TestBroadcastToRoom_SkipsSlowClients(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	slow := &Client{
		Hub:  hub,
		Send: make(chan []byte), // небуферизированный: всегда "занят"
		Room: TeamRoom(3),
	}
	hub.Register <- slow
	time.Sleep(10 * time.Millisecond)

	done := make(chan struct{})
	go func() {
		hub.BroadcastToRoom(TeamRoom(3), EventTeamRegistered, nil)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("broadcast must not block on slow clients")
	}
}

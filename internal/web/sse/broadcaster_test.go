package sse

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/bingogame-go/internal/api/response"
	"github.com/mcoot/bingogame-go/internal/model"
	"github.com/mcoot/bingogame-go/internal/testutil"
)

func testEvent(eventType model.EventType, payload any) model.Event {
	return model.Event{
		Type:      eventType,
		Timestamp: time.Date(2026, 1, 2, 19, 0, 0, 0, time.UTC),
		SessionID: "s1",
		Payload:   payload,
	}
}

func TestBroadcaster_PublishEncodesEnvelope(t *testing.T) {
	manager := NewHubManager(testutil.NopLogger())
	defer manager.Close()
	broadcaster := NewBroadcaster(manager, testutil.NopLogger())

	hub := manager.GetOrCreateHub("s1")
	client := NewClient(hub, "p1")
	hub.Register(client)
	waitForClients(t, hub, 1)

	broadcaster.Publish("s1", testEvent(model.EventBallDrawn, model.BallDrawnPayload{Ball: 42, DrawnCount: 3, Remaining: 72}))

	select {
	case msg := <-client.send:
		lines := strings.Split(strings.TrimSpace(string(msg)), "\n")
		require.Len(t, lines, 2)
		assert.Equal(t, "event: ball-drawn", lines[0])

		var envelope struct {
			Event     string             `json:"event"`
			SessionID string             `json:"session_id"`
			Data      response.BallDrawn `json:"data"`
		}
		require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(lines[1], "data: ")), &envelope))
		assert.Equal(t, "ball-drawn", envelope.Event)
		assert.Equal(t, "s1", envelope.SessionID)
		assert.Equal(t, 42, envelope.Data.Ball)
	case <-time.After(time.Second):
		t.Fatal("client did not receive message")
	}
}

func TestBroadcaster_SessionSnapshotIsRedacted(t *testing.T) {
	manager := NewHubManager(testutil.NopLogger())
	defer manager.Close()
	broadcaster := NewBroadcaster(manager, testutil.NopLogger())

	hub := manager.GetOrCreateHub("s1")
	client := NewClient(hub, "p1")
	hub.Register(client)
	waitForClients(t, hub, 1)

	session := &model.Session{
		ID:     "s1",
		Name:   "Friday",
		Active: true,
		Players: []model.Player{
			{ID: "p1", DisplayName: "Ana", Contact: "555-0001", AccessCode: "1234", SessionID: "s1"},
		},
		Pool: model.BallPool{Remaining: []int{1, 2}, Drawn: []int{}},
	}
	broadcaster.Publish("s1", testEvent(model.EventSessionUpdated, session))

	select {
	case msg := <-client.send:
		body := string(msg)
		assert.Contains(t, body, "Ana")
		assert.NotContains(t, body, "555-0001")
		assert.NotContains(t, body, "1234")
	case <-time.After(time.Second):
		t.Fatal("client did not receive message")
	}
}

func TestBroadcaster_DeletedSessionClosesHub(t *testing.T) {
	manager := NewHubManager(testutil.NopLogger())
	broadcaster := NewBroadcaster(manager, testutil.NopLogger())

	hub := manager.GetOrCreateHub("s1")
	client := NewClient(hub, "p1")
	hub.Register(client)
	waitForClients(t, hub, 1)

	broadcaster.Publish("s1", testEvent(model.EventSessionDeleted, nil))

	var got []string
	for msg := range client.send {
		got = append(got, string(msg))
	}
	require.Len(t, got, 1)
	assert.True(t, strings.HasPrefix(got[0], "event: session-deleted\n"))
	assert.Nil(t, manager.GetHub("s1"))
}

func TestBroadcaster_NoHubDoesNotPanic(t *testing.T) {
	broadcaster := NewBroadcaster(NewHubManager(testutil.NopLogger()), testutil.NopLogger())
	broadcaster.Publish("nobody-listening", testEvent(model.EventSessionReset, nil))
}

func TestServeSSEStreamsEvents(t *testing.T) {
	manager := NewHubManager(testutil.NopLogger())
	defer manager.Close()
	broadcaster := NewBroadcaster(manager, testutil.NopLogger())

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ServeSSE(w, r, manager, "s1", "p1", FormatEvent("connected", `{"status":"connected"}`))
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, server.URL, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	readFrame := func() string {
		var frame strings.Builder
		for {
			line, err := reader.ReadString('\n')
			require.NoError(t, err)
			if line == "\n" {
				return frame.String()
			}
			frame.WriteString(line)
		}
	}

	assert.Equal(t, "event: connected\ndata: {\"status\":\"connected\"}\n", readFrame())

	waitForClients(t, manager.GetHub("s1"), 1)
	broadcaster.Publish("s1", testEvent(model.EventSessionReset, nil))

	assert.True(t, strings.HasPrefix(readFrame(), "event: session-reset\n"))
}

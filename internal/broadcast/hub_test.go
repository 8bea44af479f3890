package broadcast

import (
	"encoding/json"
	"testing"
	"time"

	"go.uber.org/zap"
)

func newTestClient(topic string) *Client {
	return &Client{Topic: topic, Send: make(chan []byte, 4)}
}

func receive(t *testing.T, c *Client) Event {
	t.Helper()
	select {
	case data := <-c.Send:
		var event Event
		if err := json.Unmarshal(data, &event); err != nil {
			t.Fatalf("failed to unmarshal event: %v", err)
		}
		return event
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for event")
		return Event{}
	}
}

func TestHubRoutesByTopic(t *testing.T) {
	hub := NewHub(zap.NewNop())
	go hub.Run()

	a := newTestClient(Topic("AAA222"))
	b := newTestClient(Topic("BBB333"))
	hub.Register <- a
	hub.Register <- b

	hub.Publish(Topic("AAA222"), ParticipantJoined("Alice", time.Now()))

	event := receive(t, a)
	if event.Type != EventParticipantJoined {
		t.Errorf("expected PARTICIPANT_JOINED, got %s", event.Type)
	}
	if event.Participant == nil || event.Participant.Name != "Alice" {
		t.Errorf("expected participant payload for Alice, got %+v", event.Participant)
	}

	select {
	case data := <-b.Send:
		t.Errorf("client on another topic received %s", data)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHubDeliversInPublishOrder(t *testing.T) {
	hub := NewHub(zap.NewNop())
	go hub.Run()

	c := newTestClient(Topic("AAA222"))
	hub.Register <- c

	hub.Publish(Topic("AAA222"), StateChanged("OPEN", nil))
	hub.Publish(Topic("AAA222"), VoteSubmitted("ok"))
	hub.Publish(Topic("AAA222"), StateChanged("CLOSED", nil))

	want := []EventType{EventSessionStateChanged, EventVoteSubmitted, EventSessionStateChanged}
	for i, typ := range want {
		event := receive(t, c)
		if event.Type != typ {
			t.Errorf("event %d: expected %s, got %s", i, typ, event.Type)
		}
	}
}

func TestTopicNormalizesCode(t *testing.T) {
	if got := Topic("abc234"); got != "session/ABC234" {
		t.Errorf("expected session/ABC234, got %q", got)
	}
}

// Package broadcast fans session-change events out to subscribed clients.
package broadcast

import (
	"strings"
	"time"
)

type EventType string

const (
	EventParticipantJoined   EventType = "PARTICIPANT_JOINED"
	EventParticipantLeft     EventType = "PARTICIPANT_LEFT"
	EventSessionStateChanged EventType = "SESSION_STATE_CHANGED"
	EventResultsShown        EventType = "RESULTS_SHOWN"
	EventSessionClosed       EventType = "SESSION_CLOSED"
	EventSessionDeleted      EventType = "SESSION_DELETED"
	EventVoteSubmitted       EventType = "VOTE_SUBMITTED"
)

// Event is a tagged session-change payload. Only the fields relevant to the
// event type are set.
type Event struct {
	Type                 EventType           `json:"type"`
	Participant          *ParticipantPayload `json:"participant,omitempty"`
	ParticipantName      string              `json:"participant_name,omitempty"`
	State                string              `json:"state,omitempty"`
	TimerStartedAt       *time.Time          `json:"timer_started_at,omitempty"`
	ResultsShown         bool                `json:"results_shown,omitempty"`
	ExitedWithoutResults bool                `json:"exited_without_results,omitempty"`
	Status               string              `json:"status,omitempty"`
}

type ParticipantPayload struct {
	Name     string    `json:"name"`
	JoinedAt time.Time `json:"joined_at"`
}

// Broadcaster delivers events to all clients subscribed to a topic. Delivery
// is fire-and-forget: publishing never blocks or fails the caller.
type Broadcaster interface {
	Publish(topic string, event Event)
}

// Topic returns the per-session channel name for a code.
func Topic(code string) string {
	return "session/" + strings.ToUpper(code)
}

func ParticipantJoined(name string, joinedAt time.Time) Event {
	return Event{
		Type:        EventParticipantJoined,
		Participant: &ParticipantPayload{Name: name, JoinedAt: joinedAt},
	}
}

func ParticipantLeft(name string) Event {
	return Event{Type: EventParticipantLeft, ParticipantName: name}
}

func StateChanged(state string, timerStartedAt *time.Time) Event {
	return Event{Type: EventSessionStateChanged, State: state, TimerStartedAt: timerStartedAt}
}

func ResultsShown() Event {
	return Event{Type: EventResultsShown, ResultsShown: true}
}

func SessionClosed(exitedWithoutResults bool) Event {
	return Event{Type: EventSessionClosed, ExitedWithoutResults: exitedWithoutResults}
}

func SessionDeleted() Event {
	return Event{Type: EventSessionDeleted}
}

func VoteSubmitted(status string) Event {
	return Event{Type: EventVoteSubmitted, Status: status}
}

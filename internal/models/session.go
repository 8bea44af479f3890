package models

import (
	"strings"
	"time"
)

type SessionState string

const (
	StateWaiting SessionState = "WAITING"
	StateOpen    SessionState = "OPEN"
	StateClosed  SessionState = "CLOSED"
)

// Session is the aggregate root for one live run of a poll. It owns its
// participants and votes; the poll snapshot is read-only.
type Session struct {
	Code                 string        `json:"code"`
	CreatorID            string        `json:"creator_id"`
	CreatorUserID        string        `json:"creator_user_id,omitempty"`
	State                SessionState  `json:"state"`
	Poll                 Poll          `json:"poll"`
	Participants         []Participant `json:"participants"`
	Votes                []Vote        `json:"votes"`
	CreatedAt            time.Time     `json:"created_at"`
	TimerStartedAt       *time.Time    `json:"timer_started_at,omitempty"`
	EndedAt              *time.Time    `json:"ended_at,omitempty"`
	ResultsShown         bool          `json:"results_shown"`
	ExitedWithoutResults bool          `json:"exited_without_results"`
}

type Participant struct {
	ID                    string     `json:"id"`
	Name                  string     `json:"name"`
	SessionToken          string     `json:"session_token"`
	UserID                string     `json:"user_id,omitempty"`
	IsConnected           bool       `json:"is_connected"`
	JoinedAt              time.Time  `json:"joined_at"`
	SubmittedAt           *time.Time `json:"submitted_at,omitempty"`
	CompletionTimeSeconds *int       `json:"completion_time_seconds,omitempty"`
}

type Vote struct {
	ParticipantID string    `json:"participant_id"`
	QuestionID    string    `json:"question_id"`
	OptionID      int       `json:"option_id"`
	SubmittedAt   time.Time `json:"submitted_at"`
}

// FindParticipant returns the first participant whose name matches
// case-insensitively, or nil.
func (s *Session) FindParticipant(name string) *Participant {
	for i := range s.Participants {
		if strings.EqualFold(s.Participants[i].Name, name) {
			return &s.Participants[i]
		}
	}
	return nil
}

// RemoveParticipant removes the first participant matching name
// case-insensitively and reports whether one was removed.
func (s *Session) RemoveParticipant(name string) bool {
	for i := range s.Participants {
		if strings.EqualFold(s.Participants[i].Name, name) {
			s.Participants = append(s.Participants[:i], s.Participants[i+1:]...)
			return true
		}
	}
	return false
}

// HasVoted reports whether the participant already has a recorded vote for
// the question.
func (s *Session) HasVoted(participantID, questionID string) bool {
	for i := range s.Votes {
		if s.Votes[i].ParticipantID == participantID && s.Votes[i].QuestionID == questionID {
			return true
		}
	}
	return false
}

// VotesOf returns the participant's votes in submission order.
func (s *Session) VotesOf(participantID string) []Vote {
	var votes []Vote
	for i := range s.Votes {
		if s.Votes[i].ParticipantID == participantID {
			votes = append(votes, s.Votes[i])
		}
	}
	return votes
}

// Clone returns a deep copy of the session so callers can hand out snapshots
// without exposing the stored aggregate to mutation.
func (s *Session) Clone() *Session {
	c := *s
	c.Participants = make([]Participant, len(s.Participants))
	copy(c.Participants, s.Participants)
	for i := range c.Participants {
		c.Participants[i].SubmittedAt = copyTime(s.Participants[i].SubmittedAt)
		c.Participants[i].CompletionTimeSeconds = copyInt(s.Participants[i].CompletionTimeSeconds)
	}
	c.Votes = make([]Vote, len(s.Votes))
	copy(c.Votes, s.Votes)
	c.Poll.Questions = make([]Question, len(s.Poll.Questions))
	copy(c.Poll.Questions, s.Poll.Questions)
	for i := range c.Poll.Questions {
		options := make([]Option, len(s.Poll.Questions[i].Options))
		copy(options, s.Poll.Questions[i].Options)
		c.Poll.Questions[i].Options = options
		c.Poll.Questions[i].CorrectAnswer = copyInt(s.Poll.Questions[i].CorrectAnswer)
	}
	c.TimerStartedAt = copyTime(s.TimerStartedAt)
	c.EndedAt = copyTime(s.EndedAt)
	return &c
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}

func copyInt(v *int) *int {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

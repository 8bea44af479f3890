package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/danieleFFF/XPoll/internal/broadcast"
	"github.com/danieleFFF/XPoll/internal/models"
	"github.com/danieleFFF/XPoll/internal/repository"
	"github.com/danieleFFF/XPoll/internal/sessioncode"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SessionService runs the live session engine: the lifecycle state machine,
// participant admission, and vote collection. Every mutating operation runs
// as one load-validate-mutate-save sequence under a per-code lock, and emits
// a broadcast event after the commit.
type SessionService struct {
	store repository.SessionStore
	b     broadcast.Broadcaster
	codes *sessioncode.Generator
	l     *zap.Logger
	locks *keyedMutex
	now   func() time.Time
}

func New(store repository.SessionStore, b broadcast.Broadcaster, codes *sessioncode.Generator, l *zap.Logger) *SessionService {
	return &SessionService{
		store: store,
		b:     b,
		codes: codes,
		l:     l,
		locks: newKeyedMutex(),
		now:   time.Now,
	}
}

type CreateSessionInput struct {
	CreatorID     string
	CreatorUserID string
	Poll          models.Poll
}

// JoinResult is returned to a successfully admitted participant.
type JoinResult struct {
	SessionCode  string             `json:"session_code"`
	SessionToken string             `json:"session_token"`
	Participant  models.Participant `json:"participant"`
}

// CreateSession snapshots the poll, allocates a unique code and creates the
// session in the WAITING state.
func (s *SessionService) CreateSession(input CreateSessionInput) (*models.Session, error) {
	s.l.Debug("creating session",
		zap.String("creator_id", input.CreatorID),
		zap.String("poll_title", input.Poll.Title))

	poll := snapshotPoll(input.Poll)
	code, err := s.codes.Generate(s.store.ExistsCode)
	if err != nil {
		s.l.Error("failed to allocate session code", zap.Error(err))
		return nil, fmt.Errorf("service: failed to allocate session code: %w", err)
	}

	session := &models.Session{
		Code:          code,
		CreatorID:     input.CreatorID,
		CreatorUserID: input.CreatorUserID,
		State:         models.StateWaiting,
		Poll:          poll,
		CreatedAt:     s.now(),
	}

	if err = s.store.Save(session); err != nil {
		s.l.Error("failed to save session", zap.Error(err))
		return nil, fmt.Errorf("service: failed to create session: %w", err)
	}
	s.l.Info("session created",
		zap.String("code", code),
		zap.String("creator_id", input.CreatorID))
	return session, nil
}

// snapshotPoll freezes the poll definition for the lifetime of the session:
// question IDs are assigned where missing and option IDs are made stable
// 1-based positions.
func snapshotPoll(poll models.Poll) models.Poll {
	for qi := range poll.Questions {
		q := &poll.Questions[qi]
		if q.ID == "" {
			q.ID = uuid.New().String()
		}
		if q.Type == "" {
			q.Type = models.SingleChoice
		}
		for oi := range q.Options {
			if q.Options[oi].ID == 0 {
				q.Options[oi].ID = oi + 1
			}
		}
	}
	return poll
}

// GetSession returns a consistent snapshot of the aggregate.
func (s *SessionService) GetSession(code string) (*models.Session, error) {
	session, err := s.store.Load(normalizeCode(code))
	if err != nil {
		return nil, s.wrap("failed to get session", err)
	}
	return session, nil
}

// JoinSession admits a participant into the lobby. The name-uniqueness check
// and the insert run inside the same per-code critical section, so two
// concurrent joins with the same name cannot both succeed.
func (s *SessionService) JoinSession(code, displayName, userID string) (*JoinResult, error) {
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		return nil, models.ErrNameEmpty
	}

	code = normalizeCode(code)
	unlock := s.locks.lock(code)
	defer unlock()

	session, err := s.store.Load(code)
	if err != nil {
		return nil, s.wrap("failed to join session", err)
	}
	if session.State == models.StateClosed {
		return nil, models.ErrSessionClosed
	}
	if session.FindParticipant(displayName) != nil {
		s.l.Debug("display name already taken",
			zap.String("code", code),
			zap.String("name", displayName))
		return nil, models.ErrNameTaken
	}

	participant := models.Participant{
		ID:           uuid.New().String(),
		Name:         displayName,
		SessionToken: uuid.New().String(),
		UserID:       userID,
		IsConnected:  true,
		JoinedAt:     s.now(),
	}
	session.Participants = append(session.Participants, participant)

	if err = s.store.Save(session); err != nil {
		s.l.Error("failed to save session", zap.Error(err))
		return nil, fmt.Errorf("service: failed to join session: %w", err)
	}

	s.b.Publish(broadcast.Topic(code), broadcast.ParticipantJoined(participant.Name, participant.JoinedAt))
	s.l.Info("participant joined",
		zap.String("code", code),
		zap.String("name", participant.Name))

	return &JoinResult{
		SessionCode:  code,
		SessionToken: participant.SessionToken,
		Participant:  participant,
	}, nil
}

// LeaveSession removes a participant from the lobby. Leaving is only allowed
// while the session is WAITING; once launched the roster is fixed.
func (s *SessionService) LeaveSession(code, participantName string) error {
	code = normalizeCode(code)
	unlock := s.locks.lock(code)
	defer unlock()

	session, err := s.store.Load(code)
	if err != nil {
		return s.wrap("failed to leave session", err)
	}
	if session.State != models.StateWaiting {
		return models.ErrInvalidState
	}
	if !session.RemoveParticipant(participantName) {
		return models.ErrParticipantNotFound
	}

	if err = s.store.Save(session); err != nil {
		s.l.Error("failed to save session", zap.Error(err))
		return fmt.Errorf("service: failed to leave session: %w", err)
	}

	s.b.Publish(broadcast.Topic(code), broadcast.ParticipantLeft(participantName))
	s.l.Info("participant left",
		zap.String("code", code),
		zap.String("name", participantName))
	return nil
}

// LaunchPoll moves the session from WAITING to OPEN and starts the timer.
// The WAITING guard means TimerStartedAt is set exactly once.
func (s *SessionService) LaunchPoll(code, creatorID string) error {
	code = normalizeCode(code)
	unlock := s.locks.lock(code)
	defer unlock()

	session, err := s.store.Load(code)
	if err != nil {
		return s.wrap("failed to launch poll", err)
	}
	if session.CreatorID != creatorID {
		return models.ErrNotCreator
	}
	if session.State != models.StateWaiting {
		return models.ErrInvalidState
	}

	started := s.now()
	session.State = models.StateOpen
	session.TimerStartedAt = &started

	if err = s.store.Save(session); err != nil {
		s.l.Error("failed to save session", zap.Error(err))
		return fmt.Errorf("service: failed to launch poll: %w", err)
	}

	s.b.Publish(broadcast.Topic(code), broadcast.StateChanged(string(models.StateOpen), session.TimerStartedAt))
	s.l.Info("poll launched", zap.String("code", code))
	return nil
}

// ClosePoll moves the session to CLOSED. Closing directly from WAITING is
// allowed; closing a closed session is not.
func (s *SessionService) ClosePoll(code, creatorID string) error {
	code = normalizeCode(code)
	unlock := s.locks.lock(code)
	defer unlock()

	session, err := s.store.Load(code)
	if err != nil {
		return s.wrap("failed to close poll", err)
	}
	if session.CreatorID != creatorID {
		return models.ErrNotCreator
	}
	if session.State == models.StateClosed {
		return models.ErrInvalidState
	}

	s.closeSession(session)

	if err = s.store.Save(session); err != nil {
		s.l.Error("failed to save session", zap.Error(err))
		return fmt.Errorf("service: failed to close poll: %w", err)
	}

	s.b.Publish(broadcast.Topic(code), broadcast.StateChanged(string(models.StateClosed), nil))
	s.l.Info("poll closed", zap.String("code", code))
	return nil
}

// ShowResults reveals aggregate results to participants, forcing the session
// closed if it is not already.
func (s *SessionService) ShowResults(code, creatorID string) error {
	code = normalizeCode(code)
	unlock := s.locks.lock(code)
	defer unlock()

	session, err := s.store.Load(code)
	if err != nil {
		return s.wrap("failed to show results", err)
	}
	if session.CreatorID != creatorID {
		return models.ErrNotCreator
	}

	session.ResultsShown = true
	s.closeSession(session)

	if err = s.store.Save(session); err != nil {
		s.l.Error("failed to save session", zap.Error(err))
		return fmt.Errorf("service: failed to show results: %w", err)
	}

	s.b.Publish(broadcast.Topic(code), broadcast.ResultsShown())
	s.l.Info("results shown", zap.String("code", code))
	return nil
}

// ExitWithoutResults ends the session discarding the reveal step.
func (s *SessionService) ExitWithoutResults(code, creatorID string) error {
	code = normalizeCode(code)
	unlock := s.locks.lock(code)
	defer unlock()

	session, err := s.store.Load(code)
	if err != nil {
		return s.wrap("failed to exit session", err)
	}
	if session.CreatorID != creatorID {
		return models.ErrNotCreator
	}

	session.ExitedWithoutResults = true
	s.closeSession(session)

	if err = s.store.Save(session); err != nil {
		s.l.Error("failed to save session", zap.Error(err))
		return fmt.Errorf("service: failed to exit session: %w", err)
	}

	s.b.Publish(broadcast.Topic(code), broadcast.SessionClosed(true))
	s.l.Info("session exited without results", zap.String("code", code))
	return nil
}

// DeleteSession removes the aggregate entirely.
func (s *SessionService) DeleteSession(code, creatorID string) error {
	code = normalizeCode(code)
	unlock := s.locks.lock(code)
	defer unlock()

	session, err := s.store.Load(code)
	if err != nil {
		return s.wrap("failed to delete session", err)
	}
	if session.CreatorID != creatorID {
		return models.ErrNotCreator
	}

	if err = s.store.Delete(code); err != nil {
		s.l.Error("failed to delete session", zap.Error(err))
		return fmt.Errorf("service: failed to delete session: %w", err)
	}

	s.b.Publish(broadcast.Topic(code), broadcast.SessionDeleted())
	s.l.Info("session deleted", zap.String("code", code))
	return nil
}

// SubmitVotes records a participant's answers, at most one vote per question
// ever. Duplicate and malformed entries are skipped, not escalated, so client
// retries stay safe. answers maps question ID to the chosen option index.
func (s *SessionService) SubmitVotes(code, participantName string, answers map[string]int) error {
	code = normalizeCode(code)
	unlock := s.locks.lock(code)
	defer unlock()

	session, err := s.store.Load(code)
	if err != nil {
		return s.wrap("failed to submit votes", err)
	}
	if session.State == models.StateWaiting {
		return models.ErrVotingNotOpen
	}
	participant := session.FindParticipant(participantName)
	if participant == nil {
		return models.ErrParticipantNotFound
	}

	now := s.now()
	accepted := 0
	for questionID, optionIndex := range answers {
		if session.HasVoted(participant.ID, questionID) {
			continue
		}
		question := session.Poll.FindQuestion(questionID)
		if question == nil {
			s.l.Debug("skipping unknown question",
				zap.String("code", code),
				zap.String("question_id", questionID))
			continue
		}
		if optionIndex < 0 || optionIndex >= len(question.Options) {
			s.l.Debug("skipping out-of-range option",
				zap.String("code", code),
				zap.String("question_id", questionID),
				zap.Int("option_index", optionIndex))
			continue
		}

		session.Votes = append(session.Votes, models.Vote{
			ParticipantID: participant.ID,
			QuestionID:    questionID,
			OptionID:      question.Options[optionIndex].ID,
			SubmittedAt:   now,
		})
		accepted++
	}

	if accepted > 0 {
		// Completion time is computed once, at the first accepted batch.
		if participant.SubmittedAt == nil && session.TimerStartedAt != nil {
			submitted := now
			participant.SubmittedAt = &submitted
			seconds := int(now.Unix() - session.TimerStartedAt.Unix())
			participant.CompletionTimeSeconds = &seconds
		}
		if err = s.store.Save(session); err != nil {
			s.l.Error("failed to save session", zap.Error(err))
			return fmt.Errorf("service: failed to submit votes: %w", err)
		}
	}

	s.b.Publish(broadcast.Topic(code), broadcast.VoteSubmitted("ok"))
	s.l.Info("votes submitted",
		zap.String("code", code),
		zap.String("participant", participantName),
		zap.Int("accepted", accepted),
		zap.Int("received", len(answers)))
	return nil
}

// GetRemainingTime computes the time left on the poll timer. Before launch it
// returns the full time limit; it never returns a negative value. The engine
// does not auto-close on expiry, the presenter still has to close the
// session.
func (s *SessionService) GetRemainingTime(code string) (int, error) {
	session, err := s.store.Load(normalizeCode(code))
	if err != nil {
		return 0, s.wrap("failed to get remaining time", err)
	}
	if session.TimerStartedAt == nil {
		return session.Poll.TimeLimit, nil
	}
	elapsed := int(s.now().Unix() - session.TimerStartedAt.Unix())
	remaining := session.Poll.TimeLimit - elapsed
	if remaining < 0 {
		remaining = 0
	}
	return remaining, nil
}

func (s *SessionService) closeSession(session *models.Session) {
	if session.State != models.StateClosed {
		ended := s.now()
		session.State = models.StateClosed
		session.EndedAt = &ended
	}
}

// wrap passes business-rule sentinels through untouched and wraps everything
// else as a service failure, mirroring how callers dispatch with errors.Is.
func (s *SessionService) wrap(msg string, err error) error {
	switch {
	case errors.Is(err, models.ErrSessionNotFound),
		errors.Is(err, models.ErrParticipantNotFound),
		errors.Is(err, models.ErrFailedToProcessData):
		return err
	default:
		s.l.Error(msg, zap.Error(err))
		return fmt.Errorf("service: %s: %w", msg, err)
	}
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

package service

import (
	"github.com/danieleFFF/XPoll/internal/models"
)

// AggregateResults is the per-question, per-option vote tally for a session.
type AggregateResults struct {
	PollTitle         string           `json:"poll_title"`
	TotalParticipants int              `json:"total_participants"`
	Questions         []QuestionResult `json:"questions"`
}

type QuestionResult struct {
	ID      string         `json:"id"`
	Text    string         `json:"text"`
	Options []OptionResult `json:"options"`
}

type OptionResult struct {
	ID        int    `json:"id"`
	Text      string `json:"text"`
	Votes     int    `json:"votes"`
	IsCorrect bool   `json:"is_correct"`
}

// ParticipantResults is one participant's personalized result sheet.
type ParticipantResults struct {
	PollTitle      string                      `json:"poll_title"`
	CorrectCount   int                         `json:"correct_count"`
	TotalQuestions int                         `json:"total_questions"`
	Questions      []ParticipantQuestionResult `json:"questions"`
}

type ParticipantQuestionResult struct {
	ID                 string       `json:"id"`
	Text               string       `json:"text"`
	Options            []OptionInfo `json:"options"`
	SelectedIndex      int          `json:"selected_index"`       // -1 when unanswered
	CorrectAnswerIndex int          `json:"correct_answer_index"` // -1 when none designated
	IsCorrect          bool         `json:"is_correct"`
}

type OptionInfo struct {
	ID   int    `json:"id"`
	Text string `json:"text"`
}

// Results computes the aggregate tally for a session. Pure read.
func (s *SessionService) Results(code string) (*AggregateResults, error) {
	session, err := s.store.Load(normalizeCode(code))
	if err != nil {
		return nil, s.wrap("failed to get results", err)
	}

	results := &AggregateResults{
		PollTitle: session.Poll.Title,
		Questions: make([]QuestionResult, 0, len(session.Poll.Questions)),
	}

	voters := make(map[string]bool)
	for _, vote := range session.Votes {
		voters[vote.ParticipantID] = true
	}
	results.TotalParticipants = len(voters)

	for qi := range session.Poll.Questions {
		question := &session.Poll.Questions[qi]
		correct := question.CorrectIndex()

		qr := QuestionResult{
			ID:      question.ID,
			Text:    question.Text,
			Options: make([]OptionResult, 0, len(question.Options)),
		}
		for oi, option := range question.Options {
			count := 0
			for _, vote := range session.Votes {
				if vote.QuestionID == question.ID && vote.OptionID == option.ID {
					count++
				}
			}
			qr.Options = append(qr.Options, OptionResult{
				ID:        option.ID,
				Text:      option.Text,
				Votes:     count,
				IsCorrect: oi == correct,
			})
		}
		results.Questions = append(results.Questions, qr)
	}
	return results, nil
}

// GetParticipantResults computes the personalized results for the named
// participant. Pure read.
func (s *SessionService) GetParticipantResults(code, participantName string) (*ParticipantResults, error) {
	session, err := s.store.Load(normalizeCode(code))
	if err != nil {
		return nil, s.wrap("failed to get participant results", err)
	}
	participant := session.FindParticipant(participantName)
	if participant == nil {
		return nil, models.ErrParticipantNotFound
	}

	myVotes := session.VotesOf(participant.ID)
	results := &ParticipantResults{
		PollTitle:      session.Poll.Title,
		TotalQuestions: len(session.Poll.Questions),
		Questions:      make([]ParticipantQuestionResult, 0, len(session.Poll.Questions)),
	}

	for qi := range session.Poll.Questions {
		question := &session.Poll.Questions[qi]
		correct := question.CorrectIndex()

		qr := ParticipantQuestionResult{
			ID:                 question.ID,
			Text:               question.Text,
			Options:            make([]OptionInfo, 0, len(question.Options)),
			SelectedIndex:      -1,
			CorrectAnswerIndex: correct,
		}
		for _, option := range question.Options {
			qr.Options = append(qr.Options, OptionInfo{ID: option.ID, Text: option.Text})
		}

		for _, vote := range myVotes {
			if vote.QuestionID == question.ID {
				qr.SelectedIndex = question.OptionIndex(vote.OptionID)
				break
			}
		}
		qr.IsCorrect = qr.SelectedIndex != -1 && qr.SelectedIndex == correct && correct != -1
		if qr.IsCorrect {
			results.CorrectCount++
		}
		results.Questions = append(results.Questions, qr)
	}
	return results, nil
}

// Score sums a participant's points: an option's explicit positive value
// wins, otherwise a correct-flagged option is worth 1. The legacy
// CorrectAnswer index never contributes points, only correctness display.
func Score(session *models.Session, participantID string) int {
	total := 0
	for _, vote := range session.Votes {
		if vote.ParticipantID != participantID {
			continue
		}
		question := session.Poll.FindQuestion(vote.QuestionID)
		if question == nil {
			continue
		}
		idx := question.OptionIndex(vote.OptionID)
		if idx == -1 {
			continue
		}
		option := question.Options[idx]
		if option.Value > 0 {
			total += option.Value
			continue
		}
		if option.IsCorrect {
			total++
		}
	}
	return total
}

// MaxScore is the highest score any participant can reach, mirroring Score's
// rules so score <= maxScore always holds: when a question carries explicit
// point values, multiple-choice sums them and single-choice takes the
// maximum; otherwise a question with a correct-flagged option is worth 1.
func MaxScore(poll *models.Poll) int {
	total := 0
	for qi := range poll.Questions {
		question := &poll.Questions[qi]

		hasValues := false
		sum, max := 0, 0
		hasCorrect := false
		for _, option := range question.Options {
			if option.Value > 0 {
				hasValues = true
				sum += option.Value
				if option.Value > max {
					max = option.Value
				}
			}
			if option.IsCorrect {
				hasCorrect = true
			}
		}

		switch {
		case hasValues && question.Type == models.MultipleChoice:
			total += sum
		case hasValues:
			total += max
		case hasCorrect:
			total++
		}
	}
	return total
}

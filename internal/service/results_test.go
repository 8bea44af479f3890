package service

import (
	"testing"

	"github.com/danieleFFF/XPoll/internal/models"
)

func TestScoreMatchesCorrectCountForFlaggedOptions(t *testing.T) {
	s, _ := newTestService()
	session := mustCreate(t, s, quizPoll())
	if _, err := s.JoinSession(session.Code, "Alice", ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.LaunchPoll(session.Code, "creator"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// One right, one wrong.
	answers := map[string]int{
		session.Poll.Questions[0].ID: 0,
		session.Poll.Questions[1].ID: 1,
	}
	if err := s.SubmitVotes(session.Code, "Alice", answers); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	final, _ := s.GetSession(session.Code)
	alice := final.FindParticipant("Alice")

	mine, err := s.GetParticipantResults(session.Code, "Alice")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	score := Score(final, alice.ID)
	if score != mine.CorrectCount {
		t.Errorf("for zero-value flagged options score (%d) must equal correctCount (%d)", score, mine.CorrectCount)
	}
	if score != 1 {
		t.Errorf("expected score 1, got %d", score)
	}
}

func TestScoreUsesExplicitValues(t *testing.T) {
	session := &models.Session{
		Code: "ABC234",
		Poll: models.Poll{
			Questions: []models.Question{
				{
					ID:   "q1",
					Type: models.SingleChoice,
					Options: []models.Option{
						{ID: 1, Value: 5, IsCorrect: true},
						{ID: 2, Value: 2},
						{ID: 3},
					},
				},
			},
		},
		Votes: []models.Vote{
			{ParticipantID: "p1", QuestionID: "q1", OptionID: 2},
		},
	}

	if got := Score(session, "p1"); got != 2 {
		t.Errorf("expected explicit value 2, got %d", got)
	}
	if got := MaxScore(&session.Poll); got != 5 {
		t.Errorf("expected max of values for single choice, got %d", got)
	}
}

func TestMaxScoreRules(t *testing.T) {
	tests := []struct {
		name string
		poll models.Poll
		want int
	}{
		{
			name: "multiple choice sums positive values",
			poll: models.Poll{Questions: []models.Question{
				{
					Type: models.MultipleChoice,
					Options: []models.Option{
						{ID: 1, Value: 3},
						{ID: 2, Value: 4},
						{ID: 3},
					},
				},
			}},
			want: 7,
		},
		{
			name: "single choice takes max value",
			poll: models.Poll{Questions: []models.Question{
				{
					Type: models.SingleChoice,
					Options: []models.Option{
						{ID: 1, Value: 3},
						{ID: 2, Value: 4},
					},
				},
			}},
			want: 4,
		},
		{
			name: "flagged option worth one",
			poll: models.Poll{Questions: []models.Question{
				{
					Type: models.SingleChoice,
					Options: []models.Option{
						{ID: 1, IsCorrect: true},
						{ID: 2},
					},
				},
			}},
			want: 1,
		},
		{
			name: "no correctness data worth nothing",
			poll: models.Poll{Questions: []models.Question{
				{
					Type: models.SingleChoice,
					Options: []models.Option{
						{ID: 1},
						{ID: 2},
					},
				},
			}},
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MaxScore(&tt.poll); got != tt.want {
				t.Errorf("expected %d, got %d", tt.want, got)
			}
		})
	}
}

func TestLegacyCorrectAnswerFallback(t *testing.T) {
	s, _ := newTestService()
	correct := 1
	poll := models.Poll{
		Title: "legacy quiz",
		Questions: []models.Question{
			{
				Text:          "legacy question",
				CorrectAnswer: &correct,
				Options: []models.Option{
					{Text: "wrong"},
					{Text: "right"},
				},
			},
		},
	}

	session := mustCreate(t, s, poll)
	if _, err := s.JoinSession(session.Code, "Alice", ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.LaunchPoll(session.Code, "creator"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	q1 := session.Poll.Questions[0].ID
	if err := s.SubmitVotes(session.Code, "Alice", map[string]int{q1: 1}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	mine, err := s.GetParticipantResults(session.Code, "Alice")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !mine.Questions[0].IsCorrect || mine.CorrectCount != 1 {
		t.Errorf("legacy index must drive correctness display, got %+v", mine.Questions[0])
	}
	if mine.Questions[0].CorrectAnswerIndex != 1 {
		t.Errorf("expected correct index 1, got %d", mine.Questions[0].CorrectAnswerIndex)
	}

	// The legacy index carries no points: score stays below correctCount and
	// within the max.
	final, _ := s.GetSession(session.Code)
	alice := final.FindParticipant("Alice")
	if got := Score(final, alice.ID); got != 0 {
		t.Errorf("legacy-only question must not score, got %d", got)
	}
	if got := MaxScore(&final.Poll); got != 0 {
		t.Errorf("legacy-only question must not add to max score, got %d", got)
	}
}

func TestAggregateResultsCountsDistinctVoters(t *testing.T) {
	s, _ := newTestService()
	session := mustCreate(t, s, quizPoll())
	if err := s.LaunchPoll(session.Code, "creator"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	q1 := session.Poll.Questions[0].ID
	q2 := session.Poll.Questions[1].ID
	for _, name := range []string{"Alice", "Bob"} {
		if _, err := s.JoinSession(session.Code, name, ""); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if err := s.SubmitVotes(session.Code, "Alice", map[string]int{q1: 0, q2: 0}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.SubmitVotes(session.Code, "Bob", map[string]int{q1: 1}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	results, err := s.Results(session.Code)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if results.TotalParticipants != 2 {
		t.Errorf("expected 2 distinct voters, got %d", results.TotalParticipants)
	}
	first := results.Questions[0].Options
	if first[0].Votes != 1 || first[1].Votes != 1 {
		t.Errorf("expected split tally on question 1, got [%d %d]", first[0].Votes, first[1].Votes)
	}
	second := results.Questions[1].Options
	if second[0].Votes != 1 || second[1].Votes != 0 {
		t.Errorf("expected [1 0] on question 2, got [%d %d]", second[0].Votes, second[1].Votes)
	}
}

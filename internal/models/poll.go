package models

type QuestionType string

const (
	SingleChoice   QuestionType = "SINGLE_CHOICE"
	MultipleChoice QuestionType = "MULTIPLE_CHOICE"
)

// Poll is the immutable definition a session is built from. The engine
// receives it already validated and never mutates it.
type Poll struct {
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	TimeLimit   int        `json:"time_limit,omitempty"` // seconds, 0 means no limit
	HasScore    bool       `json:"has_score"`
	IsAnonymous bool       `json:"is_anonymous"`
	ShowResults bool       `json:"show_results"`
	Questions   []Question `json:"questions"`
}

type Question struct {
	ID      string       `json:"id"`
	Text    string       `json:"text"`
	Type    QuestionType `json:"type"`
	Options []Option     `json:"options"`
	// CorrectAnswer is the legacy option index, consulted only when no
	// option carries IsCorrect.
	CorrectAnswer *int `json:"correct_answer,omitempty"`
}

type Option struct {
	ID        int    `json:"id"`
	Text      string `json:"text"`
	Value     int    `json:"value"`
	IsCorrect bool   `json:"is_correct"`
}

// FindQuestion returns the question with the given ID, or nil.
func (p *Poll) FindQuestion(questionID string) *Question {
	for i := range p.Questions {
		if p.Questions[i].ID == questionID {
			return &p.Questions[i]
		}
	}
	return nil
}

// CorrectIndex returns the index of the designated correct option: the first
// option flagged IsCorrect, falling back to the legacy CorrectAnswer index.
// Returns -1 when the question has no correctness data.
func (q *Question) CorrectIndex() int {
	for i := range q.Options {
		if q.Options[i].IsCorrect {
			return i
		}
	}
	if q.CorrectAnswer != nil && *q.CorrectAnswer >= 0 && *q.CorrectAnswer < len(q.Options) {
		return *q.CorrectAnswer
	}
	return -1
}

// OptionIndex returns the position of the option with the given ID, or -1.
func (q *Question) OptionIndex(optionID int) int {
	for i := range q.Options {
		if q.Options[i].ID == optionID {
			return i
		}
	}
	return -1
}

package quiz

import (
	"fmt"
	"time"
)

// Attempt records that a student engaged a question under one quiz scope.
// (StudentID, QuestionID, IsFinalExam) is unique.
type Attempt struct {
	ID          string    `json:"id"`
	StudentID   string    `json:"student_id"`
	QuestionID  string    `json:"question_id"`
	IsFinalExam bool      `json:"is_final_exam"`
	TakenAt     time.Time `json:"taken_at"`
}

// Answer is the option selected under an attempt. Higher IDs are newer.
type Answer struct {
	ID        int64     `json:"id"`
	AttemptID string    `json:"attempt_id"`
	OptionID  string    `json:"option_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Outcome reports how SubmitAnswer changed the attempt's answer.
type Outcome int

const (
	// OutcomeInserted means the attempt had no answer before.
	OutcomeInserted Outcome = iota + 1
	// OutcomeReplaced means a previous answer was removed and replaced.
	OutcomeReplaced
)

func (o Outcome) String() string {
	switch o {
	case OutcomeInserted:
		return "inserted"
	case OutcomeReplaced:
		return "replaced"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

func (o Outcome) MarshalText() ([]byte, error) { return []byte(o.String()), nil }

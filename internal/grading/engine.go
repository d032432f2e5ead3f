package grading

import (
	"context"
	"fmt"

	"github.com/mind-engage/mindengage-progression/internal/course"
)

// QuestionSource loads the final-exam question set of a course.
type QuestionSource interface {
	FinalExamQuestions(ctx context.Context, courseID string) ([]course.Question, error)
}

// AnswerSource loads the newest selected option per question.
type AnswerSource interface {
	LatestAnswers(ctx context.Context, studentID string, questionIDs []string, isFinalExam bool) (map[string]string, error)
}

// Q is a minimal view of a question needed for grading.
type Q struct {
	ID              string
	CorrectOptionID string // empty: no correct option configured
}

// ResultKind distinguishes the three grading outcomes.
type ResultKind int

const (
	// ResultNoExam means the course has no final-exam questions.
	ResultNoExam ResultKind = iota + 1
	// ResultNotAttempted means the student has not answered any final-exam question.
	ResultNotAttempted
	ResultGraded
)

func (k ResultKind) String() string {
	switch k {
	case ResultNoExam:
		return "no_exam"
	case ResultNotAttempted:
		return "not_attempted"
	case ResultGraded:
		return "graded"
	default:
		return fmt.Sprintf("ResultKind(%d)", int(k))
	}
}

func (k ResultKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// Result is the outcome of grading a student's final exam.
// Only ResultGraded carries scores.
type Result struct {
	Kind                ResultKind `json:"kind"`
	CorrectCount        int        `json:"correct_count"`
	TotalCount          int        `json:"total_count"`
	Percent             float64    `json:"percent"`
	Bucket              Bucket     `json:"bucket,omitempty"`
	CertificateEligible bool       `json:"certificate_eligible"`
}

type Engine struct {
	questions QuestionSource
	answers   AnswerSource
}

func NewEngine(questions QuestionSource, answers AnswerSource) *Engine {
	return &Engine{questions: questions, answers: answers}
}

// Grade scores the student's latest final-exam answers for the course.
func (e *Engine) Grade(ctx context.Context, studentID, courseID string) (Result, error) {
	qs, err := e.questions.FinalExamQuestions(ctx, courseID)
	if err != nil {
		return Result{}, fmt.Errorf("final exam questions: %w", err)
	}
	if len(qs) == 0 {
		return Result{Kind: ResultNoExam}, nil
	}
	gq := make([]Q, 0, len(qs))
	for _, q := range qs {
		gq = append(gq, Q{ID: q.ID, CorrectOptionID: q.CorrectOptionID})
	}
	latest, err := e.answers.LatestAnswers(ctx, studentID, course.QuestionIDs(qs), true)
	if err != nil {
		return Result{}, fmt.Errorf("latest answers: %w", err)
	}
	return Score(gq, latest), nil
}

// Score grades latest (question ID -> selected option ID) against qs.
// Unanswered questions count against the percentage. Every graded result
// is certificate eligible, whatever the bucket.
func Score(qs []Q, latest map[string]string) Result {
	if len(qs) == 0 {
		return Result{Kind: ResultNoExam}
	}
	attempted := 0
	correct := 0
	for _, q := range qs {
		resp, ok := latest[q.ID]
		if !ok {
			continue
		}
		attempted++
		if isCorrect(q, resp) {
			correct++
		}
	}
	if attempted == 0 {
		return Result{Kind: ResultNotAttempted, TotalCount: len(qs)}
	}
	percent := float64(correct*100) / float64(len(qs))
	return Result{
		Kind:                ResultGraded,
		CorrectCount:        correct,
		TotalCount:          len(qs),
		Percent:             percent,
		Bucket:              BucketFor(percent),
		CertificateEligible: true,
	}
}

func isCorrect(q Q, resp string) bool {
	return q.CorrectOptionID != "" && resp == q.CorrectOptionID
}

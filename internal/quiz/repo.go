package quiz

import (
	"context"
	"errors"
)

var (
	// ErrInvalidOption means the selected option does not belong to the question.
	ErrInvalidOption   = errors.New("option does not belong to question")
	ErrAttemptNotFound = errors.New("attempt not found")
)

type Store interface {
	// SubmitAnswer validates option ownership, upserts the attempt and
	// replaces its answer, all in one transaction.
	SubmitAnswer(ctx context.Context, studentID, questionID, optionID string, isFinalExam bool) (Outcome, error)
	// ClearActivityAnswers removes the student's activity-scope answers and
	// attempts for the activity's questions. Final-exam rows are kept.
	ClearActivityAnswers(ctx context.Context, studentID, activityID string) error

	// CountAnswered counts distinct questions among questionIDs that have an
	// attempt by the student under the given scope.
	CountAnswered(ctx context.Context, studentID string, questionIDs []string, isFinalExam bool) (int, error)
	// LatestAnswers maps question ID to the newest selected option ID.
	// Questions without an answer are absent.
	LatestAnswers(ctx context.Context, studentID string, questionIDs []string, isFinalExam bool) (map[string]string, error)

	GetAttempt(ctx context.Context, studentID, questionID string, isFinalExam bool) (Attempt, error)
	// LiveAnswers lists the attempt's answer rows, newest first.
	LiveAnswers(ctx context.Context, studentID, questionID string, isFinalExam bool) ([]Answer, error)
}

package progress

import "context"

// AnswerCounter is the slice of quiz.Store the evaluator needs.
type AnswerCounter interface {
	CountAnswered(ctx context.Context, studentID string, questionIDs []string, isFinalExam bool) (int, error)
}

type Evaluator struct {
	answers AnswerCounter
}

func NewEvaluator(answers AnswerCounter) *Evaluator {
	return &Evaluator{answers: answers}
}

// Evaluate compares questionIDs against the questions the student has
// attempted under the given scope. Duplicate IDs are counted once.
// An empty studentID yields StatusError with a nil error; a storage
// failure yields StatusError and the cause.
func (e *Evaluator) Evaluate(ctx context.Context, studentID string, questionIDs []string, isFinalExam bool) (Status, error) {
	if studentID == "" {
		return StatusError, nil
	}
	ids := dedupe(questionIDs)
	if len(ids) == 0 {
		return StatusNoQuiz, nil
	}
	answered, err := e.answers.CountAnswered(ctx, studentID, ids, isFinalExam)
	if err != nil {
		return StatusError, err
	}
	switch {
	case answered == 0:
		return StatusNotDone, nil
	case answered >= len(ids):
		return StatusDone, nil
	default:
		return StatusPartial, nil
	}
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

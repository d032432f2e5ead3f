package progress

import (
	"context"
	"fmt"

	"github.com/mind-engage/mindengage-progression/internal/course"
)

// ActivitySource is the slice of course.Catalog the unlocker needs.
type ActivitySource interface {
	ListActivities(ctx context.Context, courseID string) ([]course.Activity, error)
	QuestionIDsByActivity(ctx context.Context, courseID string) (map[string][]string, error)
}

type ActivityState struct {
	ActivityID string `json:"activity_id"`
	Completed  bool   `json:"completed"`
	Locked     bool   `json:"locked"`
}

// UnlockMap is the per-request progression view of a course.
type UnlockMap struct {
	Activities           []ActivityState `json:"activities"`
	FinalExamLocked      bool            `json:"final_exam_locked"`
	NextUnlockActivityID string          `json:"next_unlock_activity_id,omitempty"`
}

type Unlocker struct {
	activities ActivitySource
	eval       *Evaluator
}

func NewUnlocker(activities ActivitySource, eval *Evaluator) *Unlocker {
	return &Unlocker{activities: activities, eval: eval}
}

// Unlock walks the course's activities in order.
//
// An activity is locked iff its immediate predecessor is not completed; the
// first activity is never locked. Locks do not propagate further than one
// step. The final exam is locked until every activity is completed.
// NextUnlockActivityID is the first activity, in order, that is the
// incomplete first activity, a locked activity behind a completed one, or an
// unlocked incomplete activity; it is never overwritten once set.
func (u *Unlocker) Unlock(ctx context.Context, studentID, courseID string) (UnlockMap, error) {
	acts, err := u.activities.ListActivities(ctx, courseID)
	if err != nil {
		return UnlockMap{}, fmt.Errorf("list activities: %w", err)
	}
	questions, err := u.activities.QuestionIDsByActivity(ctx, courseID)
	if err != nil {
		return UnlockMap{}, fmt.Errorf("activity questions: %w", err)
	}

	out := UnlockMap{Activities: make([]ActivityState, 0, len(acts))}
	allCompleted := true
	for i, a := range acts {
		status, err := u.eval.Evaluate(ctx, studentID, questions[a.ID], false)
		if err != nil {
			return UnlockMap{}, fmt.Errorf("evaluate activity %s: %w", a.ID, err)
		}
		if status == StatusError {
			return UnlockMap{}, fmt.Errorf("evaluate activity %s: %w", a.ID, ErrUnauthenticated)
		}
		st := ActivityState{ActivityID: a.ID, Completed: status.Completed()}
		prevCompleted := false
		if i > 0 {
			prevCompleted = out.Activities[i-1].Completed
			st.Locked = !prevCompleted
		}
		out.Activities = append(out.Activities, st)

		if out.NextUnlockActivityID == "" {
			switch {
			case i == 0 && !st.Completed:
				out.NextUnlockActivityID = a.ID
			case i > 0 && st.Locked && prevCompleted:
				// unreachable while Locked == !prevCompleted
				out.NextUnlockActivityID = a.ID
			case !st.Locked && !st.Completed:
				out.NextUnlockActivityID = a.ID
			}
		}
		if !st.Completed {
			allCompleted = false
		}
	}
	out.FinalExamLocked = !allCompleted
	return out, nil
}

package course

import (
	"context"
	"errors"
)

var (
	ErrCourseNotFound   = errors.New("course not found")
	ErrActivityNotFound = errors.New("activity not found")
	ErrQuestionNotFound = errors.New("question not found")
	ErrPersonNotFound   = errors.New("person not found")
)

// Catalog is the read-only view of authored course content.
type Catalog interface {
	GetCourse(ctx context.Context, id string) (Course, error)
	GetActivity(ctx context.Context, id string) (Activity, error)
	GetQuestion(ctx context.Context, id string) (Question, error)

	// ListActivities returns the course's activities ordered by Order ascending.
	ListActivities(ctx context.Context, courseID string) ([]Activity, error)
	// ActivityQuestionIDs returns the IDs of the activity's quiz questions
	// (activity and shared kinds).
	ActivityQuestionIDs(ctx context.Context, activityID string) ([]string, error)
	// QuestionIDsByActivity returns ActivityQuestionIDs for every activity of a course in one pass.
	QuestionIDsByActivity(ctx context.Context, courseID string) (map[string][]string, error)
	// FinalExamQuestions returns the course's standalone and shared questions.
	FinalExamQuestions(ctx context.Context, courseID string) ([]Question, error)

	// GetPerson resolves a user by id or username.
	GetPerson(ctx context.Context, idOrUsername string) (Person, error)
}

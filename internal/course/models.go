package course

import "fmt"

// QuestionKind says which quiz scopes a question belongs to.
type QuestionKind string

const (
	// KindActivity questions belong to one activity's quiz only.
	KindActivity QuestionKind = "activity"
	// KindFinal questions belong to the course final exam only.
	KindFinal QuestionKind = "final"
	// KindShared questions belong to an activity quiz and are also part of
	// the course final exam.
	KindShared QuestionKind = "shared"
)

func ParseQuestionKind(s string) (QuestionKind, error) {
	switch k := QuestionKind(s); k {
	case KindActivity, KindFinal, KindShared:
		return k, nil
	default:
		return "", fmt.Errorf("unknown question kind %q", s)
	}
}

// InActivityQuiz reports whether the question is answered under activity scope.
func (k QuestionKind) InActivityQuiz() bool { return k == KindActivity || k == KindShared }

// InFinalExam reports whether the question counts toward the final exam.
func (k QuestionKind) InFinalExam() bool { return k == KindFinal || k == KindShared }

type Course struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	InstructorID string `json:"instructor_id,omitempty"`
}

type Activity struct {
	ID       string `json:"id"`
	CourseID string `json:"course_id"`
	Title    string `json:"title"`
	Order    int    `json:"order"`
}

type Question struct {
	ID   string       `json:"id"`
	Kind QuestionKind `json:"kind"`
	// ActivityID is set for activity and shared questions.
	ActivityID string `json:"activity_id,omitempty"`
	// CourseID is set for final and shared questions.
	CourseID        string `json:"course_id,omitempty"`
	Prompt          string `json:"prompt,omitempty"`
	CorrectOptionID string `json:"-"` // empty when no correct option is configured
}

// Person is the name-bearing projection of a user row.
type Person struct {
	ID         string
	FirstName  string
	FatherName string
	LastName   string
}

// QuestionIDs returns the IDs of qs in order.
func QuestionIDs(qs []Question) []string {
	out := make([]string, 0, len(qs))
	for _, q := range qs {
		out = append(out, q.ID)
	}
	return out
}

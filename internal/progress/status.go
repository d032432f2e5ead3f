package progress

import "fmt"

// Status is the completion state of one quiz scope for one student.
type Status int

const (
	StatusNoQuiz Status = iota + 1
	StatusNotDone
	StatusPartial
	StatusDone
	// StatusError is rendered as a disabled state; it is returned for
	// unauthenticated callers and storage failures.
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusNoQuiz:
		return "no_quiz"
	case StatusNotDone:
		return "not_done"
	case StatusPartial:
		return "partial"
	case StatusDone:
		return "done"
	case StatusError:
		return "error"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

func (s Status) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// Completed reports whether the scope no longer blocks progression.
// A scope without questions counts as completed.
func (s Status) Completed() bool { return s == StatusDone || s == StatusNoQuiz }

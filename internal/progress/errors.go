package progress

import (
	"errors"
	"fmt"
)

// Kind classifies failures of the exposed operations.
type Kind int

const (
	KindUnauthenticated Kind = iota + 1
	KindInvalidData
	KindInvalidOption
	KindNotEligible
	KindServerError
)

func (k Kind) String() string {
	switch k {
	case KindUnauthenticated:
		return "unauthenticated"
	case KindInvalidData:
		return "invalid_data"
	case KindInvalidOption:
		return "invalid_option"
	case KindNotEligible:
		return "not_eligible"
	case KindServerError:
		return "server_error"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Error is the only error type returned by Service. Msg is safe to show
// to callers; Err holds the cause and is never rendered.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string { return e.Msg }

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same Kind, so the sentinels below work
// with errors.Is.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

var (
	ErrUnauthenticated = &Error{Kind: KindUnauthenticated, Msg: "unauthenticated"}
	ErrInvalidData     = &Error{Kind: KindInvalidData, Msg: "invalid data"}
	ErrInvalidOption   = &Error{Kind: KindInvalidOption, Msg: "option does not belong to question"}
	ErrNotEligible     = &Error{Kind: KindNotEligible, Msg: "certificate not available"}
	ErrServer          = &Error{Kind: KindServerError, Msg: "internal error"}
)

// KindOf returns the Kind of err, or KindServerError for foreign errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindServerError
}

func invalidData(msg string) error {
	return &Error{Kind: KindInvalidData, Msg: msg}
}

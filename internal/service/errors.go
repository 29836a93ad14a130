package service

import "fmt"

type ErrorKind int

const (
	KindValidation ErrorKind = iota // malformed input
	KindNotFound                    // unknown group or firefighter
	KindConflict                    // double-booking, or the agenda is locked
)

// Error carries the kind so the HTTP surface can pick a status code without
// parsing messages.
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func validationErrorf(format string, args ...any) error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func notFoundErrorf(format string, args ...any) error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func conflictErrorf(format string, args ...any) error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

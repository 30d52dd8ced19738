package resolver

import (
	"errors"
	"fmt"
)

// Error kinds surfaced to callers. Match them with errors.Is.
var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrOutOfRange      = errors.New("out of range")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrLinkNotFound    = errors.New("link not found")
	ErrUserNotFound    = errors.New("user not found")
	ErrInvalidPassword = errors.New("invalid password")
	ErrAlreadyVoted    = errors.New("already voted")
)

// Error pairs an error kind with the message shown to the caller.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Kind
}

func newError(kind error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func linkNotFound(id string) *Error {
	return newError(ErrLinkNotFound, "Cannot post comment on non-existing link with id '%s'.", id)
}

func voteTargetNotFound(id string) *Error {
	return newError(ErrLinkNotFound, "Cannot vote for non-existing link with id '%s'.", id)
}

func alreadyVoted(id string) *Error {
	return newError(ErrAlreadyVoted, "Already voted for link: %s", id)
}

package services

import (
	"errors"
	"fmt"

	"github.com/devilmonastery/chirp/internal/domain/repositories"
)

// ErrorKind classifies a ProfileError for transport mapping
type ErrorKind string

const (
	// KindNotFound means no user matched the lookup
	KindNotFound ErrorKind = "not_found"
	// KindUpstream means the identity provider rejected or failed the call
	KindUpstream ErrorKind = "upstream_failure"
	// KindInvalidArgument means the caller sent unusable input
	KindInvalidArgument ErrorKind = "invalid_argument"
	// KindUnauthenticated means the operation needs a signed-in caller
	KindUnauthenticated ErrorKind = "unauthenticated"
)

// ProfileError is returned by ProfileService. Message is safe to show to the
// caller; for upstream failures it carries the provider's own message.
type ProfileError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *ProfileError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *ProfileError) Unwrap() error {
	return e.Err
}

func newNotFound(format string, args ...any) *ProfileError {
	return &ProfileError{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func newInvalidArgument(format string, args ...any) *ProfileError {
	return &ProfileError{Kind: KindInvalidArgument, Message: fmt.Sprintf(format, args...)}
}

// upstream wraps a provider error. A provider-side not-found is reported as
// KindNotFound so the two stay distinct for callers.
func upstream(action string, err error) *ProfileError {
	if errors.Is(err, repositories.ErrUserNotFound) {
		return &ProfileError{Kind: KindNotFound, Message: "user not found", Err: err}
	}

	msg := err.Error()
	var pm interface{ ProviderMessage() string }
	if errors.As(err, &pm) && pm.ProviderMessage() != "" {
		msg = pm.ProviderMessage()
	}
	return &ProfileError{Kind: KindUpstream, Message: fmt.Sprintf("failed to %s: %s", action, msg), Err: err}
}

// KindOf returns the kind of a ProfileError in err's chain, or "" if none
func KindOf(err error) ErrorKind {
	var pe *ProfileError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return ""
}

// IsNotFound checks if the error indicates that no user matched
func IsNotFound(err error) bool {
	return KindOf(err) == KindNotFound
}

// IsUpstreamFailure checks if the error came from the identity provider
func IsUpstreamFailure(err error) bool {
	return KindOf(err) == KindUpstream
}

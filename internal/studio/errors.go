package studio

import "errors"

// Not-found kinds.
const (
	KindCandidate = "candidate"
	KindDraft     = "draft"
	KindVariant   = "draft variant"
	KindQueueItem = "queue item"
	KindAccount   = "account"
	KindStrategy  = "strategy"
)

// Precondition kinds.
const (
	KindConfirmationRequired = "confirmation required"
	KindAlreadyPublished     = "already published"
	KindLastStrategy         = "last strategy"
	KindMissingPrimary       = "missing primary account"
	KindInvalidInput         = "invalid input"
)

// NotFoundError signals that a referenced entity does not exist. Terminal
// for the caller, never retried.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return e.Kind + " not found"
	}
	return e.Kind + " not found: " + e.ID
}

// ConflictError signals a precondition the caller failed to meet.
type ConflictError struct {
	Kind    string
	Message string
}

func (e *ConflictError) Error() string {
	if e.Message == "" {
		return e.Kind
	}
	return e.Message
}

func notFound(kind, id string) error {
	return &NotFoundError{Kind: kind, ID: id}
}

func conflict(kind, message string) error {
	return &ConflictError{Kind: kind, Message: message}
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

// IsConflict reports whether err is a ConflictError.
func IsConflict(err error) bool {
	var target *ConflictError
	return errors.As(err, &target)
}

// ConflictKind returns the kind of a ConflictError, or "".
func ConflictKind(err error) string {
	var target *ConflictError
	if errors.As(err, &target) {
		return target.Kind
	}
	return ""
}

package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrValidation   = errors.New("validation error")
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrTransient    = errors.New("transient failure")
)

// Error kinds reported by ErrorKind.
const (
	KindValidation   = "validation"
	KindNotFound     = "not_found"
	KindForbidden    = "forbidden"
	KindConflict     = "conflict"
	KindUnauthorized = "unauthorized"
	KindInternal     = "internal"
)

// ErrorClassifier allows errors to declare their classification so the
// transport can map them to status codes without string matching.
type ErrorClassifier interface {
	ErrorKind() string
}

// ValidationError reports caller-fixable input problems.
type ValidationError struct {
	Entity string
	ID     int64
	Field  string
	Msg    string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", ErrValidation, describe(e.Entity, e.ID, e.Field, e.Msg))
}

func (e *ValidationError) Unwrap() error     { return ErrValidation }
func (e *ValidationError) ErrorKind() string { return KindValidation }

// NotFoundError reports a referenced entity that does not exist.
type NotFoundError struct {
	Entity string
	ID     int64
	Key    string
}

func (e *NotFoundError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("%s %q %s", e.Entity, e.Key, ErrNotFound)
	}
	return fmt.Sprintf("%s %d %s", e.Entity, e.ID, ErrNotFound)
}

func (e *NotFoundError) Unwrap() error     { return ErrNotFound }
func (e *NotFoundError) ErrorKind() string { return KindNotFound }

// ForbiddenError reports an authenticated caller that may not perform an action.
type ForbiddenError struct {
	Action string
	UserID int64
	Reason string
}

func (e *ForbiddenError) Error() string {
	msg := fmt.Sprintf("%s: user %d may not %s", ErrForbidden, e.UserID, e.Action)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

func (e *ForbiddenError) Unwrap() error     { return ErrForbidden }
func (e *ForbiddenError) ErrorKind() string { return KindForbidden }

// ConflictError reports a violated state precondition. Current and Requested
// carry the observed and requested states when the conflict is a transition.
type ConflictError struct {
	Entity    string
	ID        int64
	Current   string
	Requested string
	Msg       string
}

func (e *ConflictError) Error() string {
	detail := e.Msg
	if e.Current != "" || e.Requested != "" {
		transition := fmt.Sprintf("cannot move from %q to %q", e.Current, e.Requested)
		if detail == "" {
			detail = transition
		} else {
			detail = transition + ": " + detail
		}
	}
	return fmt.Sprintf("%s: %s", ErrConflict, describe(e.Entity, e.ID, "", detail))
}

func (e *ConflictError) Unwrap() error     { return ErrConflict }
func (e *ConflictError) ErrorKind() string { return KindConflict }

// UnauthorizedError reports missing or invalid credentials.
type UnauthorizedError struct {
	Msg string
}

func (e *UnauthorizedError) Error() string {
	if e.Msg == "" {
		return ErrUnauthorized.Error()
	}
	return fmt.Sprintf("%s: %s", ErrUnauthorized, e.Msg)
}

func (e *UnauthorizedError) Unwrap() error     { return ErrUnauthorized }
func (e *UnauthorizedError) ErrorKind() string { return KindUnauthorized }

// Kind classifies err using ErrorClassifier first and sentinel markers second.
func Kind(err error) string {
	if err == nil {
		return ""
	}
	var classifier ErrorClassifier
	if errors.As(err, &classifier) {
		return classifier.ErrorKind()
	}
	switch {
	case errors.Is(err, ErrValidation):
		return KindValidation
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrForbidden):
		return KindForbidden
	case errors.Is(err, ErrConflict):
		return KindConflict
	case errors.Is(err, ErrUnauthorized):
		return KindUnauthorized
	default:
		return KindInternal
	}
}

// Wrap builds an error message that includes scope context while tagging it with
// the provided marker for later classification. The marker should be one of the
// exported sentinel errors above.
func Wrap(marker error, scope, operation, message string, err error) error {
	detail := buildDetail(scope, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

func describe(entity string, id int64, field, msg string) string {
	parts := make([]string, 0, 3)
	if entity != "" {
		if id > 0 {
			parts = append(parts, fmt.Sprintf("%s %d", entity, id))
		} else {
			parts = append(parts, entity)
		}
	}
	if field != "" {
		parts = append(parts, field)
	}
	if msg != "" {
		parts = append(parts, msg)
	}
	return strings.Join(parts, ": ")
}

func buildDetail(scope, operation, message string) string {
	parts := make([]string, 0, 3)
	if scope = strings.TrimSpace(scope); scope != "" {
		parts = append(parts, scope)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}

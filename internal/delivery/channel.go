// Package delivery defines the broadcast channel the announcer publishes to.
package delivery

import (
	"context"
	"errors"
	"fmt"
)

// Handle identifies a sent message so it can be edited later.
type Handle string

// Channel sends and edits announcement messages.
type Channel interface {
	Send(ctx context.Context, text string) (Handle, error)
	Edit(ctx context.Context, handle Handle, text string) error
}

// Kind classifies delivery failures.
type Kind string

const (
	KindNotFound   Kind = "not_found"
	KindPermission Kind = "permission"
	KindUnchanged  Kind = "unchanged"
	KindUnknown    Kind = "unknown"
)

// Error wraps a channel failure with its classification.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("delivery %s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("delivery %s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError builds a classified delivery error.
func NewError(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// KindOf returns the classification of err, KindUnknown for unclassified errors
// and the empty kind for nil.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var dErr *Error
	if errors.As(err, &dErr) {
		return dErr.Kind
	}
	return KindUnknown
}

// Package errs defines duscan's tagged error categories, per spec.md
// §7: User, System, Internal, and Warning. Each carries an optional
// context chain built with github.com/pkg/errors so operators get a
// stack trace on System/Internal failures without the core needing to
// know anything about presentation.
package errs

import (
	"fmt"

	"github.com/pkg/errors"
)

// Category tags the severity/propagation class of an error.
type Category int

const (
	// User covers invalid input: a bad pattern, a missing required flag.
	User Category = iota
	// System covers environment failures: missing root, permission denied.
	System
	// Internal covers invariant violations: a channel failure, a missing
	// root node in the record stream, an arena invariant break.
	Internal
	// Warning covers recoverable per-entry failures that never abort a walk.
	Warning
)

func (c Category) String() string {
	switch c {
	case User:
		return "user error"
	case System:
		return "system error"
	case Internal:
		return "internal error"
	case Warning:
		return "warning"
	default:
		return "error"
	}
}

// Error wraps an underlying error with a Category and human context.
type Error struct {
	Category Category
	Context  string
	cause    error
}

func (e *Error) Error() string {
	if e.Context == "" {
		return fmt.Sprintf("%s: %v", e.Category, e.cause)
	}
	return fmt.Sprintf("%s: %s: %v", e.Category, e.Context, e.cause)
}

// Unwrap exposes the wrapped cause for errors.Is/errors.As.
func (e *Error) Unwrap() error { return e.cause }

// New builds a Category error from scratch, attaching a stack trace for
// System and Internal categories (the ones that are presented with a
// "please report a bug" invitation).
func New(cat Category, context string, format string, args ...any) *Error {
	msg := fmt.Sprintf(format, args...)
	var cause error
	if cat == System || cat == Internal {
		cause = errors.New(msg)
	} else {
		cause = fmt.Errorf("%s", msg)
	}
	return &Error{Category: cat, Context: context, cause: cause}
}

// Wrap attaches a Category and human context to an existing error,
// preserving its chain for errors.Is/errors.As.
func Wrap(cat Category, context string, err error) *Error {
	if err == nil {
		return nil
	}
	cause := err
	if cat == System || cat == Internal {
		cause = errors.WithStack(err)
	}
	return &Error{Category: cat, Context: context, cause: cause}
}

// RootMissing reports that the traversal root does not exist or is not
// a directory (System category per spec.md §4.1).
func RootMissing(root string, err error) *Error {
	return Wrap(System, fmt.Sprintf("root %q", root), err)
}

// InternalErr wraps an invariant violation: channel failure, missing root
// node in the record stream, missing directory-size entry during
// aggregation, or an arena invariant break.
func InternalErr(context string, err error) *Error {
	return Wrap(Internal, context, err)
}

// IsBugInvitation reports whether the error's category warrants the
// "please report a bug" suffix in the CLI's error presentation.
func IsBugInvitation(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Category == Internal
	}
	return false
}

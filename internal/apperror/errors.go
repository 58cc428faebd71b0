package apperror

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies a domain error for the transport layer.
type Kind string

const (
	KindValidation Kind = "VALIDATION"
	KindConflict   Kind = "CONFLICT"
	KindNotFound   Kind = "NOT_FOUND"
	KindFailure    Kind = "FAILURE"
)

// Error is a single (code, message) pair with a kind.
type Error struct {
	Kind    Kind   `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	cause   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.cause
}

func NewValidation(code, message string) *Error {
	return &Error{Kind: KindValidation, Code: code, Message: message}
}

func NewConflict(code, message string) *Error {
	return &Error{Kind: KindConflict, Code: code, Message: message}
}

func NewNotFound(code, message string) *Error {
	return &Error{Kind: KindNotFound, Code: code, Message: message}
}

func NewFailure(code, message string, cause error) *Error {
	return &Error{Kind: KindFailure, Code: code, Message: message, cause: cause}
}

// List accumulates independently-checkable failures from a single step.
// A nil or empty List is not an error; use ErrOrNil at step boundaries.
type List struct {
	Items []*Error
}

func NewList(items ...*Error) *List {
	return &List{Items: items}
}

func (l *List) Add(items ...*Error) {
	l.Items = append(l.Items, items...)
}

func (l *List) Empty() bool {
	return l == nil || len(l.Items) == 0
}

// ErrOrNil returns the list as an error when it holds at least one item.
func (l *List) ErrOrNil() error {
	if l.Empty() {
		return nil
	}
	return l
}

func (l *List) Error() string {
	msgs := make([]string, 0, len(l.Items))
	for _, item := range l.Items {
		msgs = append(msgs, item.Error())
	}
	return strings.Join(msgs, "; ")
}

// HasKind reports whether any accumulated item carries the given kind.
func (l *List) HasKind(k Kind) bool {
	for _, item := range l.Items {
		if item.Kind == k {
			return true
		}
	}
	return false
}

// AsList normalizes any error produced by the domain into a List: a bare
// *Error becomes a single-item list, anything else a Failure item.
func AsList(err error) *List {
	if err == nil {
		return nil
	}
	var list *List
	if errors.As(err, &list) {
		return list
	}
	var single *Error
	if errors.As(err, &single) {
		return NewList(single)
	}
	return NewList(NewFailure("internal_error", err.Error(), err))
}

// IsKind reports whether err is an *Error (or list containing one) of kind k.
func IsKind(err error, k Kind) bool {
	if err == nil {
		return false
	}
	var single *Error
	if errors.As(err, &single) {
		return single.Kind == k
	}
	var list *List
	if errors.As(err, &list) {
		return list.HasKind(k)
	}
	return false
}

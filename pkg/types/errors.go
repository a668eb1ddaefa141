// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"errors"
	"fmt"
)

// Kind classifies the failures that halt an analysis run.
type Kind string

const (
	KindConfiguration Kind = "configuration"
	KindPath          Kind = "path"
	KindExtraction    Kind = "extraction"
	KindRemoteService Kind = "remote_service"
	KindWrite         Kind = "write"
)

// Sentinels for errors.Is. Any *Error of the same Kind matches.
var (
	ErrConfiguration = &Error{Kind: KindConfiguration}
	ErrPath          = &Error{Kind: KindPath}
	ErrExtraction    = &Error{Kind: KindExtraction}
	ErrRemoteService = &Error{Kind: KindRemoteService}
	ErrWrite         = &Error{Kind: KindWrite}
)

// Error is a failure tagged with its Kind and the operation that produced it.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Err == nil:
		return fmt.Sprintf("%s error", e.Kind)
	case e.Op == "":
		return e.Err.Error()
	default:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches sentinel errors (no Op, no Err) of the same Kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || t.Op != "" || t.Err != nil {
		return false
	}
	return t.Kind == e.Kind
}

// Wrap tags err with kind and operation context. A nil err stays nil.
func Wrap(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

// KindOf returns the Kind of the first *Error in err's chain, or "".
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

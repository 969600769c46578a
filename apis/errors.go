/*
   Copyright 2025 The DIRPX Authors.

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

package apis

import (
	"errors"
	"fmt"
)

// Kind classifies a failed resolution.
type Kind uint8

const (
	// KindParse marks malformed input.
	KindParse Kind = iota + 1
	// KindUnknownType marks a well-formed name absent from the allowlist.
	KindUnknownType
	// KindArityMismatch marks a generic closed over the wrong number of arguments.
	KindArityMismatch
	// KindLengthExceeded marks input over the length cap.
	KindLengthExceeded
	// KindInvalidArgument marks an argument a shape cannot be closed over
	// (non-comparable map key, array rank over the limit).
	KindInvalidArgument
)

var (
	// ErrParse matches every KindParse error.
	ErrParse = errors.New("safetype: malformed type name")
	// ErrUnknownType matches every KindUnknownType error.
	ErrUnknownType = errors.New("safetype: type not allowlisted")
	// ErrArityMismatch matches every KindArityMismatch error.
	ErrArityMismatch = errors.New("safetype: generic arity mismatch")
	// ErrLengthExceeded matches every KindLengthExceeded error.
	ErrLengthExceeded = errors.New("safetype: type name too long")
	// ErrInvalidArgument matches every KindInvalidArgument error.
	ErrInvalidArgument = errors.New("safetype: invalid type argument")
)

// String returns a short label for k.
func (k Kind) String() string {
	switch k {
	case KindParse:
		return "parse"
	case KindUnknownType:
		return "unknown-type"
	case KindArityMismatch:
		return "arity-mismatch"
	case KindLengthExceeded:
		return "length-exceeded"
	case KindInvalidArgument:
		return "invalid-argument"
	default:
		return "unknown"
	}
}

func (k Kind) sentinel() error {
	switch k {
	case KindParse:
		return ErrParse
	case KindUnknownType:
		return ErrUnknownType
	case KindArityMismatch:
		return ErrArityMismatch
	case KindLengthExceeded:
		return ErrLengthExceeded
	case KindInvalidArgument:
		return ErrInvalidArgument
	default:
		return nil
	}
}

// ResolveError is the structured rejection of a single resolution call.
// Only the fields relevant to Kind are set.
type ResolveError struct {
	Kind Kind
	// Name is the offending identifier or fragment.
	Name string
	// Pos is the byte offset of a parse error.
	Pos int
	// Msg describes a parse error.
	Msg string
	// Declared and Supplied are the arities of an arity mismatch.
	Declared, Supplied int
	// Length and Limit describe a length-exceeded rejection.
	Length, Limit int
	// Err is an optional underlying cause.
	Err error
}

// Error implements error.
func (e *ResolveError) Error() string {
	switch e.Kind {
	case KindParse:
		return fmt.Sprintf("safetype: malformed type name: %s at position %d near %q", e.Msg, e.Pos, e.Name)
	case KindUnknownType:
		return fmt.Sprintf("safetype: type %q is not allowlisted; if it is legitimate, pre-register it with knowntypes.Register", e.Name)
	case KindArityMismatch:
		return fmt.Sprintf("safetype: generic %q declares %d type argument(s), got %d", e.Name, e.Declared, e.Supplied)
	case KindLengthExceeded:
		return fmt.Sprintf("safetype: type name length %d exceeds limit %d", e.Length, e.Limit)
	case KindInvalidArgument:
		if e.Err != nil {
			return fmt.Sprintf("safetype: invalid type argument for %q: %v", e.Name, e.Err)
		}
		return fmt.Sprintf("safetype: invalid type argument for %q", e.Name)
	default:
		return "safetype: resolution failed"
	}
}

// Is matches the sentinel of e.Kind.
func (e *ResolveError) Is(target error) bool {
	s := e.Kind.sentinel()
	return s != nil && target == s
}

// Unwrap returns the underlying cause, if any.
func (e *ResolveError) Unwrap() error { return e.Err }

// NewParseError reports malformed input at byte offset pos.
func NewParseError(pos int, fragment, msg string) *ResolveError {
	return &ResolveError{Kind: KindParse, Pos: pos, Name: fragment, Msg: msg}
}

// NewUnknownTypeError reports a name absent from the allowlist.
func NewUnknownTypeError(name string) *ResolveError {
	return &ResolveError{Kind: KindUnknownType, Name: name}
}

// NewArityMismatchError reports a generic closed over the wrong number of arguments.
func NewArityMismatchError(name string, declared, supplied int) *ResolveError {
	return &ResolveError{Kind: KindArityMismatch, Name: name, Declared: declared, Supplied: supplied}
}

// NewLengthExceededError reports input over the cap.
func NewLengthExceededError(length, limit int) *ResolveError {
	return &ResolveError{Kind: KindLengthExceeded, Length: length, Limit: limit}
}

// NewInvalidArgumentError reports an argument a shape cannot accept.
func NewInvalidArgumentError(name string, cause error) *ResolveError {
	return &ResolveError{Kind: KindInvalidArgument, Name: name, Err: cause}
}

// KindOf returns the Kind of err, or 0 if err is not a *ResolveError.
func KindOf(err error) Kind {
	var re *ResolveError
	if errors.As(err, &re) {
		return re.Kind
	}
	return 0
}

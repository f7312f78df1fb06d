// Package errs holds the error taxonomy shared by the loading, validation and
// graph stages. Every failure that reaches a caller is an *Error carrying one
// of the Kind values below, so the HTTP layer and the CLI can decide on a
// status without string matching.
package errs

import (
	"errors"
	"fmt"
	"strings"
)

type Kind uint8

const (
	KindInternal Kind = iota
	// Bad extension, bad encoding or a parser failure.
	KindFormat
	// Missing column, wrong type or a length violation.
	KindSchema
	// Identifiers that do not resolve: matrix labels, domain spans.
	KindReferential
	// Matrix too small, duplicate labels, empty after cleaning.
	KindStructural
)

func (k Kind) String() string {
	switch k {
	case KindFormat:
		return "format"
	case KindSchema:
		return "schema"
	case KindReferential:
		return "referential"
	case KindStructural:
		return "structural"
	default:
		return "internal"
	}
}

// Defining possible error
var (
	ErrUnsupportedFormat   = errors.New("unsupported file format")
	ErrEncoding            = errors.New("file encoding error")
	ErrParse               = errors.New("file parsing error")
	ErrUnmappedIdentifiers = errors.New("unmapped identifiers")
	ErrUnpairedDomain      = errors.New("unpaired domain span")
)

type Error struct {
	Kind Kind
	Msg  string
	// Issues keeps the individual messages when several validation
	// problems were joined into one error.
	Issues []*Error
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil && !isSentinel(e.Err) {
		return fmt.Sprintf("%s: %s", e.Msg, e.Err)
	}
	return e.Msg
}

// Unwrap exposes the cause and every joined issue to errors.Is / errors.As.
func (e *Error) Unwrap() []error {
	out := make([]error, 0, len(e.Issues)+1)
	if e.Err != nil {
		out = append(out, e.Err)
	}
	for _, is := range e.Issues {
		out = append(out, is)
	}
	return out
}

// Sentinels only classify; their text would repeat what Msg already says.
func isSentinel(err error) bool {
	switch err {
	case ErrUnsupportedFormat, ErrEncoding, ErrParse, ErrUnmappedIdentifiers, ErrUnpairedDomain:
		return true
	}
	return false
}

func newf(kind Kind, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Err: cause}
}

func Format(cause error, format string, args ...any) *Error {
	return newf(KindFormat, cause, format, args...)
}

func Schema(format string, args ...any) *Error {
	return newf(KindSchema, nil, format, args...)
}

func Referential(cause error, format string, args ...any) *Error {
	return newf(KindReferential, cause, format, args...)
}

func Structural(format string, args ...any) *Error {
	return newf(KindStructural, nil, format, args...)
}

// Internal wraps anything unexpected behind a generic message.
func Internal(cause error) *Error {
	return &Error{Kind: KindInternal, Msg: "processing failed", Err: cause}
}

// Join folds accumulated issues into one error whose message lists all of
// them. The kind of the first issue wins. Returns nil for an empty list.
func Join(prefix string, issues []*Error) error {
	if len(issues) == 0 {
		return nil
	}
	msgs := make([]string, 0, len(issues))
	for _, is := range issues {
		msgs = append(msgs, is.Error())
	}
	return &Error{
		Kind:   issues[0].Kind,
		Msg:    fmt.Sprintf("%s: %s", prefix, strings.Join(msgs, ", ")),
		Issues: issues,
	}
}

// KindOf reports the kind of the first *Error in err's chain, or
// KindInternal when there is none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// IsInput reports whether err was caused by the caller's files rather than
// by the service itself.
func IsInput(err error) bool {
	return err != nil && KindOf(err) != KindInternal
}

// Wrap prefixes err with a message and keeps its kind.
func Wrap(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: KindOf(err), Msg: fmt.Sprintf(format, args...), Err: err}
}

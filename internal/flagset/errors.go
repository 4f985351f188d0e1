package flagset

import (
	"strings"

	"github.com/cockroachdb/errors"

	"flagger/internal/diag"
	"flagger/internal/source"
)

// ErrorKind identifies a class of flag set error.
// Use errors.Is(err, ErrUnresolvedDiscriminant) and so on.
type ErrorKind string

const (
	ErrStructural             = ErrorKind("structural error")
	ErrInvalidExpression      = ErrorKind("invalid expression")
	ErrUnresolvedDiscriminant = ErrorKind("unresolved discriminant")
	ErrOversizedFlagSet       = ErrorKind("oversized flag set")
	ErrDuplicateVariant       = ErrorKind("duplicate variant")
	ErrDuplicateSet           = ErrorKind("duplicate flag set")
)

func (e ErrorKind) Error() string {
	return string(e)
}

// Code maps the kind to its diagnostic code.
func (e ErrorKind) Code() diag.Code {
	switch e {
	case ErrStructural:
		return diag.FlgStructural
	case ErrInvalidExpression:
		return diag.FlgInvalidExpression
	case ErrUnresolvedDiscriminant:
		return diag.FlgUnresolvedDiscriminant
	case ErrOversizedFlagSet:
		return diag.FlgOversized
	case ErrDuplicateVariant:
		return diag.FlgDuplicateVariant
	case ErrDuplicateSet:
		return diag.FlgDuplicateSet
	default:
		return diag.FlgInfo
	}
}

// Error is a located flag set error.
type Error struct {
	Kind    ErrorKind
	Set     string
	Variant string // empty for set-level errors
	Span    source.Span
	Msg     string
	Notes   []diag.Note
}

func (e *Error) Error() string {
	where := e.Set
	if e.Variant != "" {
		where += "::" + e.Variant
	}
	return where + ": " + e.Msg
}

func (e *Error) Unwrap() error { return e.Kind }

// Report emits the error as a diagnostic.
func (e *Error) Report(r diag.Reporter) {
	if r == nil {
		return
	}
	b := diag.ReportError(r, e.Kind.Code(), e.Span, e.Msg)
	for _, n := range e.Notes {
		b.WithNote(n.Span, n.Msg)
	}
	b.Emit()
}

func newError(kind ErrorKind, set, variant string, sp source.Span, msg string, notes ...diag.Note) error {
	return errors.WithStackDepth(&Error{
		Kind:    kind,
		Set:     set,
		Variant: variant,
		Span:    sp,
		Msg:     msg,
		Notes:   notes,
	}, 1)
}

// List holds every error a pass found, in source order.
type List []error

func (l List) Error() string {
	msgs := make([]string, len(l))
	for i, e := range l {
		msgs[i] = e.Error()
	}
	return strings.Join(msgs, "; ")
}

func (l List) Unwrap() []error { return l }

// Is reports whether any element matches target.
func (l List) Is(target error) bool {
	for _, e := range l {
		if errors.Is(e, target) {
			return true
		}
	}
	return false
}

// Errors flattens err into its located errors.
func Errors(err error) []*Error {
	if err == nil {
		return nil
	}
	var list List
	if errors.As(err, &list) {
		out := make([]*Error, 0, len(list))
		for _, e := range list {
			out = append(out, Errors(e)...)
		}
		return out
	}
	var fe *Error
	if errors.As(err, &fe) {
		return []*Error{fe}
	}
	return nil
}

// ReportAll emits every located error in err.
func ReportAll(r diag.Reporter, err error) {
	for _, e := range Errors(err) {
		e.Report(r)
	}
}

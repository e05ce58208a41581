// Package hinterr defines the error taxonomy shared by every layer of the
// engine: configuration errors, hint-validity errors raised while compiling,
// call-time violations raised while checking, and internal-invariant errors
// that indicate engine bugs rather than user mistakes.
//
// The taxonomy is a tree. Abstract branches are package-level sentinels and
// are never returned directly; every concrete kind is a typed error whose
// Unwrap chains to its branch, so callers dispatch with errors.Is and
// errors.As:
//
//	if errors.Is(err, hinterr.ErrHint) { ... } // hint itself is malformed
//	if errors.Is(err, hinterr.ErrCall) { ... } // value failed an otherwise-valid hint
//
// Internal-invariant errors (ErrInternal) must never be converted into
// ordinary violations: they mean the fast and slow check paths disagree or a
// cache contract was broken, and masking them would hide an engine defect.
package hinterr

import (
	"errors"
	"fmt"
)

// Branch sentinels. Only errors.Is targets; never instantiated as results.
var (
	// Err is the root of the taxonomy. Every error produced by the engine
	// wraps it.
	Err = errors.New("hintcheck")

	// ErrConf covers invalid engine configuration.
	ErrConf = fmt.Errorf("%w: configuration", Err)

	// ErrHint covers compile-time hint errors: the hint itself is malformed
	// or unsupported and will never become valid without code changes.
	ErrHint = fmt.Errorf("%w: invalid hint", Err)

	// ErrCall covers call-time failures: a value did not conform to an
	// otherwise-valid hint, or a forward reference could not be resolved at
	// check time.
	ErrCall = fmt.Errorf("%w: call", Err)

	// ErrViolation covers type-check violations proper, beneath ErrCall.
	ErrViolation = fmt.Errorf("%w: type-check violation", ErrCall)

	// ErrInternal covers invariant breaches inside the engine. Errors under
	// this branch are engine bugs and must crash loudly rather than be
	// reported as user-facing violations.
	ErrInternal = fmt.Errorf("%w: internal invariant", Err)
)

// ConfError reports an unrecognized or out-of-range configuration option.
type ConfError struct {
	Option string
	Detail string
}

func (e *ConfError) Error() string {
	return fmt.Sprintf("%v: option %q %s", ErrConf, e.Option, e.Detail)
}

func (e *ConfError) Unwrap() error { return ErrConf }

// SignError reports a hint that matches no known sign.
type SignError struct {
	Hint   string
	Detail string
}

func (e *SignError) Error() string {
	return fmt.Sprintf("%v: hint %s uniquely identified by no sign (%s)", ErrHint, e.Hint, e.Detail)
}

func (e *SignError) Unwrap() error { return ErrHint }

// OriginError reports a request for the origin type of a hint that has none
// (unions, literal sets and other purely structural signs).
type OriginError struct {
	Hint string
	Sign string
}

func (e *OriginError) Error() string {
	return fmt.Sprintf("%v: hint %s (sign %s) originates from no concrete type", ErrHint, e.Hint, e.Sign)
}

func (e *OriginError) Unwrap() error { return ErrHint }

// RefError reports a malformed forward reference detected while compiling,
// before any resolution is attempted.
type RefError struct {
	Name   string
	Detail string
}

func (e *RefError) Error() string {
	return fmt.Sprintf("%v: forward reference %q %s", ErrHint, e.Name, e.Detail)
}

func (e *RefError) Unwrap() error { return ErrHint }

// ForwardRefError reports a forward reference whose check-time resolution
// failed: the name is absent from the caller-supplied namespace or resolves
// to something that is not a checkable type.
type ForwardRefError struct {
	Name string
	Got  string // description of what the name resolved to, "" if absent
}

func (e *ForwardRefError) Error() string {
	if e.Got == "" {
		return fmt.Sprintf("%v: forward reference %q unresolved in namespace", ErrCall, e.Name)
	}
	return fmt.Sprintf("%v: forward reference %q resolved to non-type %s", ErrCall, e.Name, e.Got)
}

func (e *ForwardRefError) Unwrap() error { return ErrCall }

// ParamViolation reports a parameter value violating its hint.
type ParamViolation struct {
	Func      string
	Param     string
	Violation *Violation
}

func (e *ParamViolation) Error() string {
	return fmt.Sprintf("%v: %s() parameter %s %s", ErrViolation, e.Func, e.Param, e.Violation.Message)
}

func (e *ParamViolation) Unwrap() error { return ErrViolation }

// ReturnViolation reports a return value violating its hint.
type ReturnViolation struct {
	Func      string
	Violation *Violation
}

func (e *ReturnViolation) Error() string {
	return fmt.Sprintf("%v: %s() return %s", ErrViolation, e.Func, e.Violation.Message)
}

func (e *ReturnViolation) Unwrap() error { return ErrViolation }

// ValueViolation reports a standalone value violating a hint, raised by the
// functional Is/Die surface rather than a signature check.
type ValueViolation struct {
	Violation *Violation
}

func (e *ValueViolation) Error() string {
	return fmt.Sprintf("%v: value %s", ErrViolation, e.Violation.Message)
}

func (e *ValueViolation) Unwrap() error { return ErrViolation }

// PredicateError reports a validator predicate that panicked while testing a
// value. The panic is carried as-is rather than being swallowed into an
// ordinary violation.
type PredicateError struct {
	Predicate string
	Panic     any
}

func (e *PredicateError) Error() string {
	return fmt.Sprintf("%v: validator %q panicked: %v", ErrInternal, e.Predicate, e.Panic)
}

func (e *PredicateError) Unwrap() error { return ErrInternal }

// DesyncError reports a desynchronization fault: the sampled fast check
// rejected a value the exhaustive diagnoser finds conformant. Either path
// lying is an engine bug, never a user error.
type DesyncError struct {
	Hint string
	Pith string
}

func (e *DesyncError) Error() string {
	return fmt.Sprintf(
		"%v: fast check rejected pith %s against hint %s but exhaustive diagnosis found no failing part",
		ErrInternal, e.Pith, e.Hint)
}

func (e *DesyncError) Unwrap() error { return ErrInternal }

// CacheError reports misuse of the memoization service, such as a
// non-positive LRU capacity.
type CacheError struct {
	Detail string
}

func (e *CacheError) Error() string {
	return fmt.Sprintf("%v: cache %s", ErrInternal, e.Detail)
}

func (e *CacheError) Unwrap() error { return ErrInternal }

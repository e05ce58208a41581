// Package vale provides validator combinators: named boolean predicates over
// one value, attachable to hints through hint.Annotated. The engine only
// depends on the predicate contract (a name and a test); the combinators
// here are convenience for composing predicates by conjunction, disjunction
// and negation.
package vale

import (
	"sync"

	playground "github.com/go-playground/validator/v10"
)

// Validator is a named boolean predicate over one value.
type Validator struct {
	name string
	fn   func(any) bool
}

// Is builds a validator from a name and a test function. The name appears in
// diagnostics; the test must be pure.
func Is(name string, fn func(any) bool) *Validator {
	return &Validator{name: name, fn: fn}
}

// Name implements the predicate contract.
func (v *Validator) Name() string { return v.name }

// Test implements the predicate contract. Panics inside the test propagate
// to the caller; the engine reports them as internal predicate errors, not
// as violations.
func (v *Validator) Test(x any) bool { return v.fn(x) }

// And builds the conjunction of two validators.
func (v *Validator) And(o *Validator) *Validator {
	return &Validator{
		name: "(" + v.name + " & " + o.name + ")",
		fn:   func(x any) bool { return v.fn(x) && o.fn(x) },
	}
}

// Or builds the disjunction of two validators.
func (v *Validator) Or(o *Validator) *Validator {
	return &Validator{
		name: "(" + v.name + " | " + o.name + ")",
		fn:   func(x any) bool { return v.fn(x) || o.fn(x) },
	}
}

// Not builds the negation of a validator.
func (v *Validator) Not() *Validator {
	return &Validator{
		name: "!" + v.name,
		fn:   func(x any) bool { return !v.fn(x) },
	}
}

var (
	playgroundOnce sync.Once
	playgroundVal  *playground.Validate
)

// Tag builds a validator from a go-playground/validator rule expression,
// e.g. Tag("email") or Tag("min=1,max=10"). Unknown rules panic inside the
// test, which the engine surfaces as a predicate error.
func Tag(rule string) *Validator {
	return &Validator{
		name: "tag(" + rule + ")",
		fn: func(x any) bool {
			playgroundOnce.Do(func() {
				playgroundVal = playground.New(playground.WithRequiredStructEnabled())
			})
			return playgroundVal.Var(x, rule) == nil
		},
	}
}

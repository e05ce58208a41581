// Package hint models the declarative hint language the engine checks values
// against. A hint is a closed tagged-variant tree: primitive classes,
// parametrized containers, unions of alternatives, literal sets, values
// attached to named predicates, forward references and protobuf messages.
// Every downstream component switches on the hint's Sign rather than probing
// structure ad hoc.
package hint

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/hintcheck/hintcheck/pkg/hinterr"
)

// Hint is the interface for all hints in the system. Hints are immutable
// once built; the engine only reads them.
type Hint interface {
	// String renders the hint for diagnostics.
	String() string

	// Key returns the structural identity of the hint, used as the
	// memoization key: two hints with equal keys must compile to
	// observably equivalent checks.
	Key() string
}

// Predicate is the contract the engine needs from a validator: a named
// boolean test over one value. The combinator sugar lives in pkg/vale; only
// this contract matters here.
type Predicate interface {
	Name() string
	Test(v any) bool
}

// ClassHint expects a value of one concrete runtime type, or an
// implementation of one interface type.
type ClassHint struct {
	Type reflect.Type
}

func (h ClassHint) String() string {
	if h.Type == nil {
		return "class(<nil>)"
	}
	return h.Type.String()
}

func (h ClassHint) Key() string {
	if h.Type == nil {
		return "class(<nil>)"
	}
	if h.Type.PkgPath() != "" {
		return h.Type.PkgPath() + "." + h.Type.Name()
	}
	return h.Type.String()
}

// AnyHint accepts every value, including nil.
type AnyHint struct{}

func (h AnyHint) String() string { return "any" }
func (h AnyHint) Key() string    { return "any" }

// UnionHint accepts a value satisfying at least one alternative.
// Alternatives are evaluated in declaration order; the order affects which
// culprit a diagnostic reports, not correctness.
type UnionHint struct {
	Alternatives []Hint
}

func (h UnionHint) String() string {
	parts := make([]string, len(h.Alternatives))
	for i, alt := range h.Alternatives {
		if alt == nil {
			parts[i] = "<nil>"
			continue
		}
		parts[i] = alt.String()
	}
	return strings.Join(parts, " | ")
}

func (h UnionHint) Key() string {
	parts := make([]string, len(h.Alternatives))
	for i, alt := range h.Alternatives {
		if alt == nil {
			parts[i] = "nil"
			continue
		}
		parts[i] = alt.Key()
	}
	return "union(" + strings.Join(parts, "|") + ")"
}

// SequenceHint expects a slice or array whose elements satisfy Elem.
type SequenceHint struct {
	Elem Hint
}

func (h SequenceHint) String() string {
	if h.Elem == nil {
		return "[]?"
	}
	return "[]" + h.Elem.String()
}

func (h SequenceHint) Key() string {
	if h.Elem == nil {
		return "seq(?)"
	}
	return "seq(" + h.Elem.Key() + ")"
}

// MappingHint expects a map whose keys satisfy Key and values satisfy Value.
type MappingHint struct {
	KeyHint   Hint
	ValueHint Hint
}

func (h MappingHint) String() string {
	if h.KeyHint == nil || h.ValueHint == nil {
		return "map[?]?"
	}
	return "map[" + h.KeyHint.String() + "]" + h.ValueHint.String()
}

func (h MappingHint) Key() string {
	if h.KeyHint == nil || h.ValueHint == nil {
		return "map(?,?)"
	}
	return "map(" + h.KeyHint.Key() + "," + h.ValueHint.Key() + ")"
}

// LiteralHint accepts only values equal (Go ==) to one of a precomputed set
// of literals. Only comparable literals are classifiable.
type LiteralHint struct {
	Values []any

	set map[any]struct{}
}

func (h LiteralHint) String() string {
	parts := make([]string, len(h.Values))
	for i, v := range h.Values {
		parts[i] = fmt.Sprintf("%#v", v)
	}
	return "literal(" + strings.Join(parts, ", ") + ")"
}

func (h LiteralHint) Key() string {
	parts := make([]string, len(h.Values))
	for i, v := range h.Values {
		parts[i] = fmt.Sprintf("%T:%#v", v, v)
	}
	// Order-insensitive: literal("a","b") and literal("b","a") are the same set.
	sort.Strings(parts)
	return "lit{" + strings.Join(parts, ",") + "}"
}

// Contains reports whether the value equals one of the literals.
// Non-comparable values can equal no literal and are rejected without
// touching the set, which could not hash them.
func (h LiteralHint) Contains(v any) bool {
	if v != nil && !reflect.TypeOf(v).Comparable() {
		return false
	}
	if h.set != nil {
		_, ok := h.set[v]
		return ok
	}
	for _, lit := range h.Values {
		if lit == v {
			return true
		}
	}
	return false
}

// AnnotatedHint pairs an optional base hint with a named predicate. The base
// hint is checked first; the predicate runs only on values that pass it.
type AnnotatedHint struct {
	Base Hint // may be nil: predicate-only annotation
	Pred Predicate
}

func (h AnnotatedHint) String() string {
	name := "?"
	if h.Pred != nil {
		name = h.Pred.Name()
	}
	if h.Base == nil {
		return "annotated(" + name + ")"
	}
	return "annotated(" + h.Base.String() + ", " + name + ")"
}

func (h AnnotatedHint) Key() string {
	// Predicate identity, not just its display name: two predicates sharing
	// a name must not share a compiled check.
	base := ""
	if h.Base != nil {
		base = h.Base.Key()
	}
	id := "?"
	if h.Pred != nil {
		id = predID(h.Pred)
	}
	return fmt.Sprintf("annot(%s,%s)", base, id)
}

func predID(p Predicate) string {
	rv := reflect.ValueOf(p)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Func, reflect.Map, reflect.Slice, reflect.Chan:
		return fmt.Sprintf("%s@%x", p.Name(), rv.Pointer())
	default:
		// Value predicates have no address, so identity is the type plus its
		// contents. %#v renders func-typed fields as code addresses, so two
		// same-typed predicates closing over different functions, or carrying
		// different field values, never share an identity. Equal contents
		// mean equal behavior for pure predicates, which the predicate
		// contract requires.
		return fmt.Sprintf("%s@%#v", p.Name(), p)
	}
}

// RefHint is a forward reference: a name resolved against a caller-supplied
// namespace at compile or check time, depending on the configured policy.
type RefHint struct {
	Name string
}

func (h RefHint) String() string { return "ref(" + h.Name + ")" }
func (h RefHint) Key() string    { return "ref(" + h.Name + ")" }

// ProtoHint expects a protobuf message whose descriptor full name matches.
type ProtoHint struct {
	Message string
}

func (h ProtoHint) String() string { return "proto(" + h.Message + ")" }
func (h ProtoHint) Key() string    { return "proto(" + h.Message + ")" }

// Builders
// --------

// Class builds a hint for one concrete or interface type.
func Class(t reflect.Type) Hint { return ClassHint{Type: t} }

// Of builds a class hint from a type parameter.
func Of[T any]() Hint {
	return ClassHint{Type: reflect.TypeOf((*T)(nil)).Elem()}
}

// Any builds the always-passing hint.
func Any() Hint { return AnyHint{} }

// Union builds a union of alternatives, preserving declaration order.
func Union(alternatives ...Hint) Hint {
	return UnionHint{Alternatives: alternatives}
}

// SliceOf builds a sequence hint.
func SliceOf(elem Hint) Hint { return SequenceHint{Elem: elem} }

// MapOf builds a mapping hint.
func MapOf(key, value Hint) Hint {
	return MappingHint{KeyHint: key, ValueHint: value}
}

// Literal builds a literal-set hint, precomputing the membership set for
// comparable values.
func Literal(values ...any) Hint {
	set := make(map[any]struct{}, len(values))
	for _, v := range values {
		if v != nil && !reflect.TypeOf(v).Comparable() {
			// Leave the set nil: the classifier rejects this hint.
			return LiteralHint{Values: values}
		}
		set[v] = struct{}{}
	}
	return LiteralHint{Values: values, set: set}
}

// Annotated attaches a predicate to a base hint. Pass a nil base for a
// predicate-only annotation.
func Annotated(base Hint, pred Predicate) Hint {
	return AnnotatedHint{Base: base, Pred: pred}
}

// Ref builds a forward reference to a name resolved at check time.
func Ref(name string) Hint { return RefHint{Name: name} }

// Proto builds a hint for a protobuf message by fully-qualified name.
func Proto(message string) Hint { return ProtoHint{Message: message} }

// From coerces an arbitrary hint-like object into a Hint. Category markers
// are tested before the plain-class fallback: a reflect.Type that is also a
// Hint would otherwise be misclassified by the broader class test.
func From(h any) (Hint, error) {
	switch v := h.(type) {
	case Hint:
		return v, nil
	case reflect.Type:
		return ClassHint{Type: v}, nil
	case string:
		return RefHint{Name: v}, nil
	case nil:
		return nil, &hinterr.SignError{Hint: "<nil>", Detail: "no hint-like object supplied"}
	default:
		return nil, &hinterr.SignError{Hint: fmt.Sprintf("%T", h), Detail: "not a hint-like object"}
	}
}

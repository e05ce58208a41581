package hint

import (
	"github.com/hintcheck/hintcheck/pkg/hinterr"
)

// Sign uniquely identifies a hint's category. Every hint the classifier
// accepts maps to exactly one sign; all downstream logic switches on it.
type Sign int

const (
	SignNone Sign = iota // zero value, never assigned to a valid hint
	SignClass
	SignAny
	SignUnion
	SignSequence
	SignMapping
	SignLiteral
	SignAnnotated
	SignRef
	SignProto
)

var signNames = map[Sign]string{
	SignNone:      "none",
	SignClass:     "class",
	SignAny:       "any",
	SignUnion:     "union",
	SignSequence:  "generic-sequence",
	SignMapping:   "generic-mapping",
	SignLiteral:   "literal-set",
	SignAnnotated: "annotated",
	SignRef:       "forward-reference",
	SignProto:     "proto-message",
}

func (s Sign) String() string {
	if name, ok := signNames[s]; ok {
		return name
	}
	return "invalid"
}

// SignOf classifies a hint, or fails with a hint-validity error when the
// hint matches no known category or is structurally malformed.
//
// Classification is a pure function of the hint's shape: identical shapes
// always yield the identical sign, so results may be cached on the hint's
// structural key. Category-specific variants are matched before the
// plain-class fallback; a class test performed first would claim annotated
// and container hints that merely wrap a class.
func SignOf(h Hint) (Sign, error) {
	switch v := h.(type) {
	case nil:
		return SignNone, &hinterr.SignError{Hint: "<nil>", Detail: "no hint supplied"}
	case AnnotatedHint:
		if v.Pred == nil {
			return SignNone, &hinterr.SignError{Hint: "annotated(?)", Detail: "annotation carries no predicate"}
		}
		return SignAnnotated, nil
	case UnionHint:
		if len(v.Alternatives) < 2 {
			return SignNone, &hinterr.SignError{Hint: v.String(), Detail: "union requires at least two alternatives"}
		}
		for _, alt := range v.Alternatives {
			if alt == nil {
				return SignNone, &hinterr.SignError{Hint: v.String(), Detail: "union contains a nil alternative"}
			}
		}
		return SignUnion, nil
	case SequenceHint:
		if v.Elem == nil {
			return SignNone, &hinterr.SignError{Hint: "[]?", Detail: "sequence carries no element hint"}
		}
		return SignSequence, nil
	case MappingHint:
		if v.KeyHint == nil || v.ValueHint == nil {
			return SignNone, &hinterr.SignError{Hint: "map[?]?", Detail: "mapping carries a nil key or value hint"}
		}
		return SignMapping, nil
	case LiteralHint:
		if len(v.Values) == 0 {
			return SignNone, &hinterr.SignError{Hint: v.String(), Detail: "literal set is empty"}
		}
		if v.set == nil {
			return SignNone, &hinterr.SignError{Hint: v.String(), Detail: "literal set contains a non-comparable value"}
		}
		return SignLiteral, nil
	case RefHint:
		if v.Name == "" {
			return SignNone, &hinterr.RefError{Name: "", Detail: "is empty"}
		}
		return SignRef, nil
	case ProtoHint:
		if v.Message == "" {
			return SignNone, &hinterr.SignError{Hint: v.String(), Detail: "proto hint names no message"}
		}
		return SignProto, nil
	case AnyHint:
		return SignAny, nil
	case ClassHint:
		// Plain-class fallback, deliberately last.
		if v.Type == nil {
			return SignNone, &hinterr.SignError{Hint: v.String(), Detail: "class hint carries no type"}
		}
		return SignClass, nil
	default:
		return SignNone, &hinterr.SignError{Hint: h.String(), Detail: "unknown hint variant"}
	}
}

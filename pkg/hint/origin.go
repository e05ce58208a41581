package hint

import (
	"reflect"
	"strings"

	"github.com/hintcheck/hintcheck/pkg/hinterr"
)

// OriginType is the runtime shape a class or generic-container hint reduces
// to for shallow membership testing. Exactly one of Type and Kinds is set:
// class hints carry the concrete (or interface) type, container hints carry
// the reflect kinds of their unparametrized base.
type OriginType struct {
	Type  reflect.Type
	Kinds []reflect.Kind
}

func (o OriginType) String() string {
	if o.Type != nil {
		return o.Type.String()
	}
	names := make([]string, len(o.Kinds))
	for i, k := range o.Kinds {
		names[i] = k.String()
	}
	return strings.Join(names, "|")
}

// Matches performs the shallow membership test: type identity (or interface
// satisfaction) for class origins, kind membership for container origins.
// A nil value matches no origin.
func (o OriginType) Matches(v any) bool {
	if v == nil {
		return false
	}
	t := reflect.TypeOf(v)
	if o.Type != nil {
		if o.Type.Kind() == reflect.Interface {
			return t.Implements(o.Type)
		}
		return t == o.Type
	}
	k := t.Kind()
	for _, want := range o.Kinds {
		if k == want {
			return true
		}
	}
	return false
}

// OriginOf returns the origin type of a hint, failing with an OriginError
// for purely structural signs (unions, literal sets, annotations, references
// and proto messages) that have none.
func OriginOf(h Hint) (OriginType, error) {
	if o, ok := OriginOfOrNil(h); ok {
		return o, nil
	}
	sign, err := SignOf(h)
	if err != nil {
		return OriginType{}, err
	}
	return OriginType{}, &hinterr.OriginError{Hint: h.String(), Sign: sign.String()}
}

// OriginOfOrNil is the non-failing variant of OriginOf, used to ask whether
// a hint has an origin without triggering error paths.
func OriginOfOrNil(h Hint) (OriginType, bool) {
	switch v := h.(type) {
	case ClassHint:
		if v.Type == nil {
			return OriginType{}, false
		}
		return OriginType{Type: v.Type}, true
	case SequenceHint:
		return OriginType{Kinds: []reflect.Kind{reflect.Slice, reflect.Array}}, true
	case MappingHint:
		return OriginType{Kinds: []reflect.Kind{reflect.Map}}, true
	default:
		return OriginType{}, false
	}
}

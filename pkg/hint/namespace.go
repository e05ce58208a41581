package hint

import (
	"reflect"

	"github.com/hintcheck/hintcheck/pkg/hinterr"
)

// Namespace maps forward-reference names to the types they denote. Entries
// may be reflect.Type values or ClassHint hints; anything else makes the
// reference resolve to a non-type and fail.
type Namespace map[string]any

// Resolve looks a reference name up and reduces it to a class hint. It fails
// with a ForwardRefError both when the name is absent and when it resolves
// to a non-type, so callers can distinguish "not yet defined" from
// "defined wrongly" by the error's Got field.
func (ns Namespace) Resolve(name string) (ClassHint, error) {
	v, ok := ns[name]
	if !ok {
		return ClassHint{}, &hinterr.ForwardRefError{Name: name}
	}
	switch t := v.(type) {
	case reflect.Type:
		return ClassHint{Type: t}, nil
	case ClassHint:
		if t.Type == nil {
			return ClassHint{}, &hinterr.ForwardRefError{Name: name, Got: "class(<nil>)"}
		}
		return t, nil
	default:
		return ClassHint{}, &hinterr.ForwardRefError{Name: name, Got: hinterr.TypeName(v)}
	}
}

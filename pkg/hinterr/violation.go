package hinterr

import (
	"fmt"
	"reflect"
	"unicode/utf8"

	"github.com/google/uuid"
)

// reprMax bounds rendered value snapshots so violations stay readable even
// for huge containers.
const reprMax = 80

// Violation is the structured result of a failed check: the rendered hint and
// its sign, the failing value (the pith), the culprit chain outermost first,
// and a human-readable message. Violations are created once per failed check
// and never cached.
//
// Culprits holds direct references to the blamed sub-values for the duration
// of the call; CulpritReprs holds textual snapshots captured at construction
// time, so the diagnostic survives the culprits' lifetimes.
type Violation struct {
	ID           uuid.UUID
	Hint         string
	Sign         string
	Pith         any
	Path         string
	Culprits     []any
	CulpritReprs []string
	Message      string
}

// NewViolation builds a violation record, assigning a correlation id and
// snapshotting every culprit.
func NewViolation(hint, sign string, pith any, path string, culprits []any, message string) *Violation {
	reprs := make([]string, len(culprits))
	for i, c := range culprits {
		reprs[i] = Repr(c)
	}
	return &Violation{
		ID:           uuid.New(),
		Hint:         hint,
		Sign:         sign,
		Pith:         pith,
		Path:         path,
		Culprits:     culprits,
		CulpritReprs: reprs,
		Message:      message,
	}
}

func (v *Violation) String() string { return v.Message }

// Repr renders a value for diagnostics: quoted for strings, default
// formatting otherwise, truncated to a fixed budget.
func Repr(v any) string {
	var s string
	switch t := v.(type) {
	case nil:
		return "<nil>"
	case string:
		s = fmt.Sprintf("%q", t)
	case fmt.Stringer:
		s = t.String()
	default:
		s = fmt.Sprintf("%v", v)
	}
	if len(s) > reprMax {
		// Cut on a rune boundary so truncation never emits invalid UTF-8.
		cut := reprMax
		for cut > 0 && !utf8.RuneStart(s[cut]) {
			cut--
		}
		s = s[:cut] + "..."
	}
	return s
}

// TypeName returns the fully-qualified type name of a value, or "<nil>" for
// untyped nil.
func TypeName(v any) string {
	t := reflect.TypeOf(v)
	if t == nil {
		return "<nil>"
	}
	if t.PkgPath() != "" {
		return t.PkgPath() + "." + t.Name()
	}
	return t.String()
}

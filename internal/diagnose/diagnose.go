// Package diagnose locates the culprit behind a failed check. It re-walks
// the hint tree and the value together, exhaustively this time — no
// sampling — and produces the violation record with the minimal failing
// sub-hint/sub-value pair and a human-readable message.
//
// Diagnosis is invoked only after a compiled check has already rejected the
// value; it must not serve as the primary check path, since exhaustive
// traversal is strictly more expensive. If the exhaustive walk finds no
// failing part even though the fast check reported one, the two paths have
// desynchronized: that is an internal fault, never a violation.
package diagnose

import (
	"fmt"
	"reflect"

	"github.com/hintcheck/hintcheck/internal/cache"
	"github.com/hintcheck/hintcheck/internal/checker"
	"github.com/hintcheck/hintcheck/pkg/hint"
	"github.com/hintcheck/hintcheck/pkg/hinterr"
)

// Diagnoser re-checks values exhaustively to explain failures. It shares
// the compiler's forward-reference resolutions and keeps rendered hint
// fragments in a bounded cache.
type Diagnoser struct {
	comp  *checker.Compiler
	frags *cache.Fragments
}

// New builds a diagnoser collaborating with a compiler.
func New(comp *checker.Compiler, frags *cache.Fragments) *Diagnoser {
	return &Diagnoser{comp: comp, frags: frags}
}

// failure describes the located culprit: the minimal failing sub-hint and
// sub-value, the path from the pith down to it, and the chain of values
// descended through, outermost first (the current value included).
type failure struct {
	h      hint.Hint
	v      any
	path   string
	detail string
	chain  []any
}

// Diagnose walks hint and pith together and builds the violation. The error
// return carries internal faults only: desynchronization, forward-reference
// failures and panicking predicates.
func (d *Diagnoser) Diagnose(h hint.Hint, pith any) (*hinterr.Violation, error) {
	sign, err := hint.SignOf(h)
	if err != nil {
		return nil, err
	}
	hintStr := d.render(h)

	f, err := d.find(h, pith, "")
	if err != nil {
		return nil, err
	}
	if f == nil {
		return nil, &hinterr.DesyncError{Hint: hintStr, Pith: hinterr.Repr(pith)}
	}

	at := ""
	if f.path != "" {
		at = " at " + f.path
	}
	message := fmt.Sprintf("%s violates hint %s (sign %s), as value %s%s %s",
		hinterr.Repr(pith), hintStr, sign, hinterr.Repr(f.v), at, f.detail)

	return hinterr.NewViolation(hintStr, sign.String(), pith, f.path, f.chain, message), nil
}

// find returns nil when the value satisfies the hint, a located failure when
// it does not, and an error for internal faults. The walk is exhaustive: a
// nil result proves conformance, which is what lets Diagnose detect
// desynchronization against the sampled fast path.
func (d *Diagnoser) find(h hint.Hint, v any, path string) (*failure, error) {
	sign, err := hint.SignOf(h)
	if err != nil {
		return nil, err
	}

	switch sign {
	case hint.SignAny:
		return nil, nil

	case hint.SignClass:
		origin, err := hint.OriginOf(h)
		if err != nil {
			return nil, err
		}
		if !origin.Matches(v) {
			return d.fail(h, v, path, fmt.Sprintf("is not an instance of %s (found %s)",
				d.render(h), hinterr.TypeName(v))), nil
		}
		return nil, nil

	case hint.SignLiteral:
		lit := h.(hint.LiteralHint)
		if !lit.Contains(v) {
			return d.fail(h, v, path, "is not a member of "+d.render(h)), nil
		}
		return nil, nil

	case hint.SignProto:
		ph := h.(hint.ProtoHint)
		if !ph.MatchesValue(v) {
			return d.fail(h, v, path, fmt.Sprintf("is not a %s protobuf message (found %s)",
				ph.Message, hinterr.TypeName(v))), nil
		}
		return nil, nil

	case hint.SignRef:
		ref := h.(hint.RefHint)
		resolved, err := d.comp.ResolveRef(ref.Name)
		if err != nil {
			return nil, err
		}
		origin := hint.OriginType{Type: resolved.Type}
		if !origin.Matches(v) {
			return d.fail(h, v, path, fmt.Sprintf("is not an instance of %s referenced as %q (found %s)",
				resolved.Type, ref.Name, hinterr.TypeName(v))), nil
		}
		return nil, nil

	case hint.SignAnnotated:
		annot := h.(hint.AnnotatedHint)
		if annot.Base != nil {
			f, err := d.find(annot.Base, v, path)
			if err != nil || f != nil {
				return f, err
			}
		}
		ok, err := checker.TestPredicate(annot.Pred, v)
		if err != nil {
			return nil, err
		}
		if !ok {
			return d.fail(h, v, path, "violates validator "+annot.Pred.Name()), nil
		}
		return nil, nil

	case hint.SignUnion:
		union := h.(hint.UnionHint)
		var last *failure
		for _, alt := range union.Alternatives {
			f, err := d.find(alt, v, path)
			if err != nil {
				return nil, err
			}
			if f == nil {
				return nil, nil // one alternative suffices
			}
			last = f
		}
		// Total failure: blame the last-evaluated alternative, but name the
		// whole union so every alternative appears in the message.
		last.detail = fmt.Sprintf("satisfies none of the %d alternatives of %s; last evaluated: value %s %s",
			len(union.Alternatives), d.render(h), hinterr.Repr(last.v), last.detail)
		return last, nil

	case hint.SignSequence:
		seq := h.(hint.SequenceHint)
		origin, err := hint.OriginOf(h)
		if err != nil {
			return nil, err
		}
		if !origin.Matches(v) {
			return d.fail(h, v, path, fmt.Sprintf("is not a sequence (found %s)", hinterr.TypeName(v))), nil
		}
		rv := reflect.ValueOf(v)
		for i := 0; i < rv.Len(); i++ {
			item := rv.Index(i).Interface()
			f, err := d.find(seq.Elem, item, fmt.Sprintf("%s[%d]", path, i))
			if err != nil {
				return nil, err
			}
			if f != nil {
				return descend(v, f), nil
			}
		}
		return nil, nil

	case hint.SignMapping:
		m := h.(hint.MappingHint)
		origin, err := hint.OriginOf(h)
		if err != nil {
			return nil, err
		}
		if !origin.Matches(v) {
			return d.fail(h, v, path, fmt.Sprintf("is not a mapping (found %s)", hinterr.TypeName(v))), nil
		}
		rv := reflect.ValueOf(v)
		for it := rv.MapRange(); it.Next(); {
			k := it.Key().Interface()
			f, err := d.find(m.KeyHint, k, fmt.Sprintf("%s[key %s]", path, hinterr.Repr(k)))
			if err != nil {
				return nil, err
			}
			if f != nil {
				return descend(v, f), nil
			}
		}
		for it := rv.MapRange(); it.Next(); {
			k := it.Key().Interface()
			f, err := d.find(m.ValueHint, it.Value().Interface(), fmt.Sprintf("%s[%s]", path, hinterr.Repr(k)))
			if err != nil {
				return nil, err
			}
			if f != nil {
				return descend(v, f), nil
			}
		}
		return nil, nil

	default:
		return nil, &hinterr.SignError{Hint: h.String(), Detail: fmt.Sprintf("sign %s has no diagnosis rule", sign)}
	}
}

// fail builds a leaf failure whose chain starts at the failing value itself.
func (d *Diagnoser) fail(h hint.Hint, v any, path, detail string) *failure {
	return &failure{h: h, v: v, path: path, detail: detail, chain: []any{v}}
}

// descend prefixes the container value to a child failure's culprit chain,
// keeping the chain ordered outermost first.
func descend(container any, f *failure) *failure {
	f.chain = append([]any{container}, f.chain...)
	return f
}

// render returns a hint's rendering through the bounded fragment cache.
func (d *Diagnoser) render(h hint.Hint) string {
	if d.frags == nil {
		return h.String()
	}
	return d.frags.GetOrRender("hint:"+h.Key(), h.String)
}

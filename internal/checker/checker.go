// Package checker synthesizes executable checks from hint trees. Compilation
// recurses depth-first over the hint, classifies every node once, and emits
// a closure tree; at check time only the closures run. Container descent is
// bounded by the configured sampling policy, so a compiled check costs
// amortized O(sample) per level rather than O(n) — a deliberate
// soundness/performance tradeoff: a sampled check may pass a large container
// holding a few ill-typed elements outside the sample.
package checker

import (
	"fmt"
	"math/rand/v2"
	"reflect"

	"github.com/hintcheck/hintcheck/internal/cache"
	"github.com/hintcheck/hintcheck/internal/config"
	"github.com/hintcheck/hintcheck/pkg/hint"
	"github.com/hintcheck/hintcheck/pkg/hinterr"
)

// Check is a synthesized, cacheable checking procedure closed over the hint
// tree it was derived from. Checks are shared by every call site presenting
// an equal hint and must therefore be stateless.
type Check struct {
	hint hint.Hint
	sign hint.Sign
	fn   func(v any) (bool, error)
}

// Hint returns the hint the check was compiled from.
func (c *Check) Hint() hint.Hint { return c.hint }

// Sign returns the compiled hint's sign.
func (c *Check) Sign() hint.Sign { return c.sign }

// Test runs the check. The error return is reserved for faults distinct
// from ordinary non-conformance: failed forward-reference resolution and
// panicking predicates.
func (c *Check) Test(v any) (bool, error) { return c.fn(v) }

// Compiler compiles hints into checks, memoizing per structural hint
// identity through an injected cache service.
type Compiler struct {
	cfg      config.Config
	ns       hint.Namespace
	checks   *cache.Memo[string, *Check]
	resolved *cache.Memo[string, hint.ClassHint]
}

// New builds a compiler over a namespace for forward references. Each
// compiler owns its caches; unrelated engines never share compiled state.
func New(cfg config.Config, ns hint.Namespace) *Compiler {
	return &Compiler{
		cfg:      cfg,
		ns:       ns,
		checks:   &cache.Memo[string, *Check]{},
		resolved: &cache.Memo[string, hint.ClassHint]{},
	}
}

// Compiled counts distinct hints compiled so far.
func (c *Compiler) Compiled() int { return c.checks.Len() }

// Compile returns the check for a hint, compiling at most once per distinct
// hint shape.
func (c *Compiler) Compile(h hint.Hint) (*Check, error) {
	// Classify before touching the key: malformed hints must fail with their
	// classification error, not poison the cache.
	if _, err := hint.SignOf(h); err != nil {
		return nil, err
	}
	return c.checks.GetOrCompute(h.Key(), func() (*Check, error) {
		return c.compile(h)
	})
}

func (c *Compiler) compile(h hint.Hint) (*Check, error) {
	sign, err := hint.SignOf(h)
	if err != nil {
		return nil, err
	}

	check := &Check{hint: h, sign: sign}
	switch sign {
	case hint.SignAny:
		check.fn = func(any) (bool, error) { return true, nil }

	case hint.SignClass:
		origin, err := hint.OriginOf(h)
		if err != nil {
			return nil, err
		}
		check.fn = func(v any) (bool, error) { return origin.Matches(v), nil }

	case hint.SignUnion:
		union := h.(hint.UnionHint)
		alts := make([]*Check, len(union.Alternatives))
		for i, alt := range union.Alternatives {
			compiled, err := c.Compile(alt)
			if err != nil {
				return nil, err
			}
			alts[i] = compiled
		}
		// Declaration order, short-circuiting on first success.
		check.fn = func(v any) (bool, error) {
			for _, alt := range alts {
				ok, err := alt.Test(v)
				if err != nil {
					return false, err
				}
				if ok {
					return true, nil
				}
			}
			return false, nil
		}

	case hint.SignSequence:
		seq := h.(hint.SequenceHint)
		origin, err := hint.OriginOf(h)
		if err != nil {
			return nil, err
		}
		elem, err := c.Compile(seq.Elem)
		if err != nil {
			return nil, err
		}
		shallow := c.cfg.Strictness == config.StrictShallow
		check.fn = func(v any) (bool, error) {
			if !origin.Matches(v) {
				return false, nil
			}
			if shallow {
				return true, nil
			}
			rv := reflect.ValueOf(v)
			for _, i := range c.sampleIndices(rv.Len()) {
				ok, err := elem.Test(rv.Index(i).Interface())
				if err != nil || !ok {
					return false, err
				}
			}
			return true, nil
		}

	case hint.SignMapping:
		m := h.(hint.MappingHint)
		origin, err := hint.OriginOf(h)
		if err != nil {
			return nil, err
		}
		key, err := c.Compile(m.KeyHint)
		if err != nil {
			return nil, err
		}
		value, err := c.Compile(m.ValueHint)
		if err != nil {
			return nil, err
		}
		shallow := c.cfg.Strictness == config.StrictShallow
		check.fn = func(v any) (bool, error) {
			if !origin.Matches(v) {
				return false, nil
			}
			if shallow {
				return true, nil
			}
			rv := reflect.ValueOf(v)
			// Keys and values are sampled independently: each MapRange walk
			// starts at a runtime-randomized position.
			budget := c.sampleBudget(rv.Len())
			for it, n := rv.MapRange(), 0; it.Next() && n < budget; n++ {
				ok, err := key.Test(it.Key().Interface())
				if err != nil || !ok {
					return false, err
				}
			}
			for it, n := rv.MapRange(), 0; it.Next() && n < budget; n++ {
				ok, err := value.Test(it.Value().Interface())
				if err != nil || !ok {
					return false, err
				}
			}
			return true, nil
		}

	case hint.SignLiteral:
		lit := h.(hint.LiteralHint)
		check.fn = func(v any) (bool, error) { return lit.Contains(v), nil }

	case hint.SignAnnotated:
		annot := h.(hint.AnnotatedHint)
		var base *Check
		if annot.Base != nil {
			base, err = c.Compile(annot.Base)
			if err != nil {
				return nil, err
			}
		}
		pred := annot.Pred
		check.fn = func(v any) (bool, error) {
			if base != nil {
				ok, err := base.Test(v)
				if err != nil || !ok {
					return false, err
				}
			}
			return TestPredicate(pred, v)
		}

	case hint.SignRef:
		ref := h.(hint.RefHint)
		if c.cfg.ForwardRefPolicy == config.RefEager {
			resolved, err := c.ResolveRef(ref.Name)
			if err != nil {
				return nil, err
			}
			origin := hint.OriginType{Type: resolved.Type}
			check.fn = func(v any) (bool, error) { return origin.Matches(v), nil }
			break
		}
		// Lazy: resolve on first check, then reuse the cached resolution.
		check.fn = func(v any) (bool, error) {
			resolved, err := c.ResolveRef(ref.Name)
			if err != nil {
				return false, err
			}
			origin := hint.OriginType{Type: resolved.Type}
			return origin.Matches(v), nil
		}

	case hint.SignProto:
		ph := h.(hint.ProtoHint)
		check.fn = func(v any) (bool, error) { return ph.MatchesValue(v), nil }

	default:
		return nil, &hinterr.SignError{Hint: h.String(), Detail: fmt.Sprintf("sign %s has no synthesis rule", sign)}
	}
	return check, nil
}

// ResolveRef resolves a forward reference through the namespace, caching the
// resolution so it is never recomputed per call. Failed resolutions are not
// cached: the name may be defined later.
func (c *Compiler) ResolveRef(name string) (hint.ClassHint, error) {
	return c.resolved.GetOrCompute(name, func() (hint.ClassHint, error) {
		return c.ns.Resolve(name)
	})
}

// TestPredicate runs a validator predicate, converting a panic inside it to
// a PredicateError instead of letting it unwind or counting it as an
// ordinary violation.
func TestPredicate(pred hint.Predicate, v any) (ok bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			ok = false
			err = &hinterr.PredicateError{Predicate: pred.Name(), Panic: r}
		}
	}()
	return pred.Test(v), nil
}

// sampleBudget returns how many elements of an n-element container the
// configured policy checks.
func (c *Compiler) sampleBudget(n int) int {
	if c.cfg.Strictness == config.StrictDeepExhaustive || c.cfg.SampleSize >= n {
		return n
	}
	return c.cfg.SampleSize
}

// sampleIndices returns the element indices to check for an n-element
// sequence: every index under the exhaustive policy, otherwise a random
// sample of distinct indices.
func (c *Compiler) sampleIndices(n int) []int {
	budget := c.sampleBudget(n)
	if budget == n {
		all := make([]int, n)
		for i := range all {
			all[i] = i
		}
		return all
	}
	picked := make(map[int]struct{}, budget)
	indices := make([]int, 0, budget)
	for len(indices) < budget {
		i := rand.IntN(n)
		if _, dup := picked[i]; dup {
			continue
		}
		picked[i] = struct{}{}
		indices = append(indices, i)
	}
	return indices
}

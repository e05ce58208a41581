package check

import (
	"errors"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/hintcheck/hintcheck/pkg/hint"
	"github.com/hintcheck/hintcheck/pkg/hinterr"
)

func newEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	e, err := New(opts...)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	return e
}

func TestIsAndDie(t *testing.T) {
	e := newEngine(t)
	h := hint.Union(hint.Of[int](), hint.Literal("a", "b"))

	for _, v := range []any{5, -1, "a", "b"} {
		ok, err := e.Is(v, h)
		if err != nil {
			t.Fatalf("Is(%v) error: %v", v, err)
		}
		if !ok {
			t.Errorf("Is(%#v) = false, want true", v)
		}
		if err := e.Die(v, h); err != nil {
			t.Errorf("Die(%#v) = %v, want nil", v, err)
		}
	}

	for _, v := range []any{"c", 3.0, nil} {
		ok, err := e.Is(v, h)
		if err != nil {
			t.Fatalf("Is(%v) error: %v", v, err)
		}
		if ok {
			t.Errorf("Is(%#v) = true, want false", v)
		}
	}
}

func TestDieDiagnostic(t *testing.T) {
	e := newEngine(t)
	h := hint.Union(hint.Of[int](), hint.Literal("a", "b"))

	err := e.Die("c", h)
	if !errors.Is(err, hinterr.ErrViolation) {
		t.Fatalf("Die = %v, want a violation", err)
	}
	if !errors.Is(err, hinterr.ErrCall) {
		t.Error("violation does not belong to the call-time kind")
	}
	var vv *hinterr.ValueViolation
	if !errors.As(err, &vv) {
		t.Fatalf("Die = %T, want a ValueViolation", err)
	}
	// The message names the whole union, so a reader sees every rejected
	// alternative.
	for _, want := range []string{"satisfies none of the 2 alternatives", "int", `literal("a", "b")`} {
		if !strings.Contains(vv.Violation.Message, want) {
			t.Errorf("message %q lacks %q", vv.Violation.Message, want)
		}
	}
	if culprit := vv.Violation.Culprits[len(vv.Violation.Culprits)-1]; culprit != "c" {
		t.Errorf("culprit = %v, want the checked value itself", culprit)
	}
}

func TestDieReportsHintErrorsAsThemselves(t *testing.T) {
	e := newEngine(t)
	err := e.Die(1, hint.UnionHint{Alternatives: []hint.Hint{hint.Of[int]()}})
	if !errors.Is(err, hinterr.ErrHint) {
		t.Fatalf("Die with malformed hint = %v, want a hint error", err)
	}
	if errors.Is(err, hinterr.ErrViolation) {
		t.Error("hint error leaked into the violation kind")
	}
}

func TestCheckParamAndReturn(t *testing.T) {
	e := newEngine(t)

	if err := e.CheckParam("Resize", "width", 800, hint.Of[int]()); err != nil {
		t.Errorf("CheckParam with conformant value = %v", err)
	}
	err := e.CheckParam("Resize", "width", "800", hint.Of[int]())
	var pv *hinterr.ParamViolation
	if !errors.As(err, &pv) {
		t.Fatalf("CheckParam = %v, want a ParamViolation", err)
	}
	if pv.Func != "Resize" || pv.Param != "width" {
		t.Errorf("violation names %s/%s, want Resize/width", pv.Func, pv.Param)
	}

	err = e.CheckReturn("Resize", nil, hint.Of[int]())
	var rv *hinterr.ReturnViolation
	if !errors.As(err, &rv) || rv.Func != "Resize" {
		t.Fatalf("CheckReturn = %v, want a ReturnViolation for Resize", err)
	}
}

func TestCompiledSignature(t *testing.T) {
	e := newEngine(t)
	sig := Signature{
		Func: "Store",
		Params: []Param{
			{Name: "key", Hint: hint.Of[string]()},
			{Name: "values", Hint: hint.SliceOf(hint.Of[int]())},
		},
		Return: hint.Of[bool](),
	}

	cs, err := e.CompileSignature(sig)
	if err != nil {
		t.Fatalf("CompileSignature error: %v", err)
	}
	// An equal signature hits the cache.
	again, err := e.CompileSignature(sig)
	if err != nil {
		t.Fatalf("CompileSignature (cached) error: %v", err)
	}
	if cs != again {
		t.Error("equal signatures compiled to distinct values")
	}

	if err := cs.CheckCall("k", []int{1, 2}); err != nil {
		t.Errorf("CheckCall with conformant arguments = %v", err)
	}
	if err := cs.CheckReturn(true); err != nil {
		t.Errorf("CheckReturn with conformant value = %v", err)
	}

	err = cs.CheckCall("k", []string{"not ints"})
	var pv *hinterr.ParamViolation
	if !errors.As(err, &pv) || pv.Param != "values" {
		t.Fatalf("CheckCall = %v, want a ParamViolation for values", err)
	}

	err = cs.CheckReturn("yes")
	if !errors.Is(err, hinterr.ErrViolation) {
		t.Errorf("CheckReturn with wrong type = %v, want a violation", err)
	}
}

func TestCheckCallArity(t *testing.T) {
	e := newEngine(t)
	cs, err := e.CompileSignature(Signature{
		Func:   "Ping",
		Params: []Param{{Name: "host", Hint: hint.Of[string]()}},
	})
	if err != nil {
		t.Fatalf("CompileSignature error: %v", err)
	}

	err = cs.CheckCall("a", "b")
	if !errors.Is(err, hinterr.ErrCall) {
		t.Fatalf("arity mismatch = %v, want a call-time error", err)
	}
	if errors.Is(err, hinterr.ErrViolation) {
		t.Error("arity mismatch reported as a type-check violation")
	}
}

func TestNewValidatesConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SampleSize = 0
	if _, err := New(WithConfig(cfg)); !errors.Is(err, hinterr.ErrConf) {
		t.Errorf("New with invalid config = %v, want a configuration error", err)
	}
}

// flipFlop rejects its first test and accepts every later one, driving the
// fast path and the exhaustive diagnosis to disagree.
type flipFlop struct{ calls atomic.Int64 }

func (p *flipFlop) Name() string  { return "flip-flop" }
func (p *flipFlop) Test(any) bool { return p.calls.Add(1) > 1 }

func TestDesynchronizedPredicate(t *testing.T) {
	e := newEngine(t)
	h := hint.Annotated(hint.Of[int](), &flipFlop{})

	err := e.Die(7, h)
	var desync *hinterr.DesyncError
	if !errors.As(err, &desync) {
		t.Fatalf("Die with an unstable predicate = %v, want a DesyncError", err)
	}
	if errors.Is(err, hinterr.ErrViolation) {
		t.Error("desynchronization reported as a violation")
	}
}

func TestCompiledCountsDistinctHints(t *testing.T) {
	e := newEngine(t)
	h := hint.SliceOf(hint.Of[int]())
	for i := 0; i < 5; i++ {
		if _, err := e.Is([]int{i}, h); err != nil {
			t.Fatalf("Is error: %v", err)
		}
	}
	// The slice hint and its element occupy one slot each, however many
	// values were checked.
	if n := e.Compiled(); n != 2 {
		t.Errorf("Compiled() = %d, want 2", n)
	}
}

func TestEngineNamespace(t *testing.T) {
	type session struct{ id string }
	ns := hint.Namespace{}
	e := newEngine(t, WithNamespace(ns))

	// The name is defined after the hint is first used; the lazy default
	// policy picks the definition up on the next check.
	h := hint.Ref("Session")
	if _, err := e.Is(session{"s1"}, h); err == nil {
		t.Fatal("Is with an undefined reference succeeded")
	}
	ns["Session"] = hint.Of[session]()
	ok, err := e.Is(session{"s1"}, h)
	if err != nil {
		t.Fatalf("Is after definition: %v", err)
	}
	if !ok {
		t.Error("Is rejected an instance of the referenced class")
	}
}

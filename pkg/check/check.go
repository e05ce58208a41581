// Package check is the public surface of the engine. An Engine owns the
// compiled-check and signature caches, a namespace for forward references,
// and a configuration record; unrelated engines share nothing, so tests can
// construct fresh instances freely.
//
// The fast path is Is: compile once per distinct hint, then run the sampled
// check. Die and the signature checkers add the slow path: on failure the
// exhaustive diagnoser locates the culprit and the result is raised as a
// violation from the hinterr taxonomy.
package check

import (
	"fmt"

	"github.com/hintcheck/hintcheck/internal/cache"
	"github.com/hintcheck/hintcheck/internal/checker"
	"github.com/hintcheck/hintcheck/internal/config"
	"github.com/hintcheck/hintcheck/internal/diagnose"
	"github.com/hintcheck/hintcheck/pkg/hint"
	"github.com/hintcheck/hintcheck/pkg/hinterr"
)

// Config is the engine configuration record.
type Config = config.Config

// Strictness values.
const (
	StrictShallow        = config.StrictShallow
	StrictDeepSampled    = config.StrictDeepSampled
	StrictDeepExhaustive = config.StrictDeepExhaustive
)

// Forward-reference policies.
const (
	RefEager = config.RefEager
	RefLazy  = config.RefLazy
)

// DefaultConfig returns the stock configuration.
func DefaultConfig() Config { return config.Default() }

// LoadConfig reads and validates a YAML configuration file.
func LoadConfig(path string) (Config, error) { return config.Load(path) }

// Engine checks values against hints.
type Engine struct {
	cfg  config.Config
	comp *checker.Compiler
	diag *diagnose.Diagnoser
	sigs cache.Memo[string, *CompiledSignature]
}

// Option configures an Engine under construction.
type Option func(*settings)

type settings struct {
	cfg config.Config
	ns  hint.Namespace
}

// WithConfig replaces the default configuration.
func WithConfig(cfg Config) Option {
	return func(s *settings) { s.cfg = cfg }
}

// WithNamespace supplies the namespace forward references resolve against.
func WithNamespace(ns hint.Namespace) Option {
	return func(s *settings) { s.ns = ns }
}

// New constructs an engine, validating the configuration first.
func New(opts ...Option) (*Engine, error) {
	s := settings{cfg: config.Default(), ns: hint.Namespace{}}
	for _, opt := range opts {
		opt(&s)
	}
	if err := s.cfg.Validate(); err != nil {
		return nil, err
	}
	frags, err := cache.NewFragments(s.cfg.FragmentCapacity)
	if err != nil {
		return nil, err
	}
	comp := checker.New(s.cfg, s.ns)
	return &Engine{
		cfg:  s.cfg,
		comp: comp,
		diag: diagnose.New(comp, frags),
	}, nil
}

// Config returns the engine's configuration.
func (e *Engine) Config() Config { return e.cfg }

// Compiled counts distinct hints compiled so far.
func (e *Engine) Compiled() int { return e.comp.Compiled() }

// Is reports whether a value satisfies a hint, using the sampled fast path.
// The error return carries compile-time hint errors and internal faults,
// never ordinary non-conformance.
func (e *Engine) Is(v any, h hint.Hint) (bool, error) {
	c, err := e.comp.Compile(h)
	if err != nil {
		return false, err
	}
	return c.Test(v)
}

// Die returns nil when a value satisfies a hint and a ValueViolation
// carrying the full diagnostic otherwise. Compile-time hint errors and
// internal faults are returned as themselves, never converted to
// violations.
func (e *Engine) Die(v any, h hint.Hint) error {
	ok, err := e.Is(v, h)
	if err != nil {
		return err
	}
	if ok {
		return nil
	}
	viol, err := e.diag.Diagnose(h, v)
	if err != nil {
		return err
	}
	return &hinterr.ValueViolation{Violation: viol}
}

// CheckParam checks one parameter value, raising a ParamViolation on
// failure.
func (e *Engine) CheckParam(fn, param string, v any, h hint.Hint) error {
	ok, err := e.Is(v, h)
	if err != nil {
		return err
	}
	if ok {
		return nil
	}
	viol, err := e.diag.Diagnose(h, v)
	if err != nil {
		return err
	}
	return &hinterr.ParamViolation{Func: fn, Param: param, Violation: viol}
}

// CheckReturn checks a return value, raising a ReturnViolation on failure.
func (e *Engine) CheckReturn(fn string, v any, h hint.Hint) error {
	ok, err := e.Is(v, h)
	if err != nil {
		return err
	}
	if ok {
		return nil
	}
	viol, err := e.diag.Diagnose(h, v)
	if err != nil {
		return err
	}
	return &hinterr.ReturnViolation{Func: fn, Violation: viol}
}

// Param pairs a parameter name with its hint.
type Param struct {
	Name string
	Hint hint.Hint
}

// Signature declares a callable's checkable shape: named parameters and an
// optional return hint.
type Signature struct {
	Func   string
	Params []Param
	Return hint.Hint // nil: return unchecked
}

func (s Signature) key() string {
	k := "func " + s.Func + "("
	for i, p := range s.Params {
		if i > 0 {
			k += ","
		}
		k += p.Name + ":"
		if p.Hint != nil {
			k += p.Hint.Key()
		}
	}
	k += ")"
	if s.Return != nil {
		k += "->" + s.Return.Key()
	}
	return k
}

// CompiledSignature holds the per-parameter and return checks for one
// callable signature, compiled at most once per distinct signature.
type CompiledSignature struct {
	engine *Engine
	sig    Signature
	params []*checker.Check
	ret    *checker.Check
}

// CompileSignature compiles a signature, consulting the signature cache
// first.
func (e *Engine) CompileSignature(sig Signature) (*CompiledSignature, error) {
	return e.sigs.GetOrCompute(sig.key(), func() (*CompiledSignature, error) {
		cs := &CompiledSignature{engine: e, sig: sig}
		for _, p := range sig.Params {
			c, err := e.comp.Compile(p.Hint)
			if err != nil {
				return nil, fmt.Errorf("compiling parameter %s of %s: %w", p.Name, sig.Func, err)
			}
			cs.params = append(cs.params, c)
		}
		if sig.Return != nil {
			c, err := e.comp.Compile(sig.Return)
			if err != nil {
				return nil, fmt.Errorf("compiling return of %s: %w", sig.Func, err)
			}
			cs.ret = c
		}
		return cs, nil
	})
}

// CheckCall checks positional arguments against the signature's parameters,
// raising a ParamViolation for the first non-conforming argument.
func (cs *CompiledSignature) CheckCall(args ...any) error {
	if len(args) != len(cs.params) {
		return fmt.Errorf("%w: %s() takes %d checkable parameters, got %d arguments",
			hinterr.ErrCall, cs.sig.Func, len(cs.params), len(args))
	}
	for i, c := range cs.params {
		ok, err := c.Test(args[i])
		if err != nil {
			return err
		}
		if ok {
			continue
		}
		viol, err := cs.engine.diag.Diagnose(cs.sig.Params[i].Hint, args[i])
		if err != nil {
			return err
		}
		return &hinterr.ParamViolation{Func: cs.sig.Func, Param: cs.sig.Params[i].Name, Violation: viol}
	}
	return nil
}

// CheckReturn checks a return value against the signature's return hint.
func (cs *CompiledSignature) CheckReturn(v any) error {
	if cs.ret == nil {
		return nil
	}
	ok, err := cs.ret.Test(v)
	if err != nil {
		return err
	}
	if ok {
		return nil
	}
	viol, err := cs.engine.diag.Diagnose(cs.sig.Return, v)
	if err != nil {
		return err
	}
	return &hinterr.ReturnViolation{Func: cs.sig.Func, Violation: viol}
}

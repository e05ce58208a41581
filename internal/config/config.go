// Package config holds the engine configuration record: checking strictness,
// the container sampling budget, and the forward-reference resolution
// policy. Configuration is validated once at engine construction; invalid
// settings are configuration errors, never violations.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/hintcheck/hintcheck/pkg/hinterr"
)

// Strictness selects how deep compiled checks descend into containers.
type Strictness string

const (
	// StrictShallow checks origin types only and never descends.
	StrictShallow Strictness = "shallow"

	// StrictDeepSampled descends into containers but checks only a bounded
	// random sample of elements per level. The default.
	StrictDeepSampled Strictness = "deep-sampled"

	// StrictDeepExhaustive checks every element of every container.
	StrictDeepExhaustive Strictness = "deep-exhaustive"
)

// RefPolicy selects when forward references are resolved.
type RefPolicy string

const (
	// RefEager resolves references at compile time; names must already be
	// present in the namespace.
	RefEager RefPolicy = "eager"

	// RefLazy defers resolution to the first check. The default.
	RefLazy RefPolicy = "lazy"
)

// Defaults.
const (
	// DefaultSampleSize checks one randomly chosen element per container
	// level, bounding deep-check cost on unbounded containers.
	DefaultSampleSize = 1

	// DefaultFragmentCapacity bounds the LRU of rendered diagnostic
	// fragments.
	DefaultFragmentCapacity = 256
)

// Config is the engine configuration record.
type Config struct {
	Strictness       Strictness `yaml:"strictness"`
	SampleSize       int        `yaml:"sample_size"`
	ForwardRefPolicy RefPolicy  `yaml:"forward_ref_policy"`
	FragmentCapacity int        `yaml:"fragment_capacity"`
}

// Default returns the stock configuration.
func Default() Config {
	return Config{
		Strictness:       StrictDeepSampled,
		SampleSize:       DefaultSampleSize,
		ForwardRefPolicy: RefLazy,
		FragmentCapacity: DefaultFragmentCapacity,
	}
}

// Validate checks every option, reporting the first offender as a ConfError.
func (c Config) Validate() error {
	switch c.Strictness {
	case StrictShallow, StrictDeepSampled, StrictDeepExhaustive:
	default:
		return &hinterr.ConfError{
			Option: "strictness",
			Detail: fmt.Sprintf("must be %q, %q or %q, got %q",
				StrictShallow, StrictDeepSampled, StrictDeepExhaustive, c.Strictness),
		}
	}
	if c.SampleSize <= 0 {
		return &hinterr.ConfError{
			Option: "sample_size",
			Detail: fmt.Sprintf("must be a positive integer, got %d", c.SampleSize),
		}
	}
	switch c.ForwardRefPolicy {
	case RefEager, RefLazy:
	default:
		return &hinterr.ConfError{
			Option: "forward_ref_policy",
			Detail: fmt.Sprintf("must be %q or %q, got %q", RefEager, RefLazy, c.ForwardRefPolicy),
		}
	}
	if c.FragmentCapacity <= 0 {
		return &hinterr.ConfError{
			Option: "fragment_capacity",
			Detail: fmt.Sprintf("must be a positive integer, got %d", c.FragmentCapacity),
		}
	}
	return nil
}

// Load reads a YAML configuration file over the defaults and validates the
// result. Unknown keys are configuration errors.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config: %w", err)
	}
	c := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, &hinterr.ConfError{Option: path, Detail: err.Error()}
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

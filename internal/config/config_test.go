package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/hintcheck/hintcheck/pkg/hinterr"
)

func TestDefault(t *testing.T) {
	c := Default()
	if err := c.Validate(); err != nil {
		t.Fatalf("default config does not validate: %v", err)
	}
	if c.Strictness != StrictDeepSampled {
		t.Errorf("Strictness = %q, want %q", c.Strictness, StrictDeepSampled)
	}
	if c.SampleSize != DefaultSampleSize {
		t.Errorf("SampleSize = %d, want %d", c.SampleSize, DefaultSampleSize)
	}
	if c.ForwardRefPolicy != RefLazy {
		t.Errorf("ForwardRefPolicy = %q, want %q", c.ForwardRefPolicy, RefLazy)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		option string
	}{
		{"bad strictness", func(c *Config) { c.Strictness = "paranoid" }, "strictness"},
		{"zero sample size", func(c *Config) { c.SampleSize = 0 }, "sample_size"},
		{"negative sample size", func(c *Config) { c.SampleSize = -4 }, "sample_size"},
		{"bad ref policy", func(c *Config) { c.ForwardRefPolicy = "deferred" }, "forward_ref_policy"},
		{"zero fragment capacity", func(c *Config) { c.FragmentCapacity = 0 }, "fragment_capacity"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.mutate(&c)
			err := c.Validate()
			var conf *hinterr.ConfError
			if !errors.As(err, &conf) {
				t.Fatalf("Validate() = %v, want a ConfError", err)
			}
			if conf.Option != tt.option {
				t.Errorf("offending option = %q, want %q", conf.Option, tt.option)
			}
			if !errors.Is(err, hinterr.ErrConf) {
				t.Errorf("error does not belong to the configuration kind: %v", err)
			}
		})
	}
}

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "hintcheck.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, "strictness: deep-exhaustive\nsample_size: 8\n")
	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if c.Strictness != StrictDeepExhaustive {
		t.Errorf("Strictness = %q, want %q", c.Strictness, StrictDeepExhaustive)
	}
	if c.SampleSize != 8 {
		t.Errorf("SampleSize = %d, want 8", c.SampleSize)
	}
	// Unset options keep their defaults.
	if c.ForwardRefPolicy != RefLazy {
		t.Errorf("ForwardRefPolicy = %q, want default %q", c.ForwardRefPolicy, RefLazy)
	}
	if c.FragmentCapacity != DefaultFragmentCapacity {
		t.Errorf("FragmentCapacity = %d, want default %d", c.FragmentCapacity, DefaultFragmentCapacity)
	}
}

func TestLoadEmptyFileIsDefault(t *testing.T) {
	c, err := Load(writeConfig(t, ""))
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if c != Default() {
		t.Errorf("Load of empty file = %+v, want defaults", c)
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	_, err := Load(writeConfig(t, "strictness: shallow\nsample_szie: 3\n"))
	if !errors.Is(err, hinterr.ErrConf) {
		t.Errorf("Load with unknown key = %v, want a configuration error", err)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	_, err := Load(writeConfig(t, "sample_size: -1\n"))
	var conf *hinterr.ConfError
	if !errors.As(err, &conf) || conf.Option != "sample_size" {
		t.Errorf("Load with bad sample_size = %v, want ConfError on sample_size", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("Load of a missing file succeeded")
	}
}

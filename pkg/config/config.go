// Package config provides YAML-based configuration loading with environment variable expansion.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

// Validator is implemented by configuration types that can check themselves.
type Validator interface {
	Validate() error
}

// Load reads a YAML file into target, expanding ${VAR} references from the
// environment first. If target implements Validator, it is validated after
// decoding. A missing file is reported as fs.ErrNotExist so callers can fall
// back to defaults.
func Load[T any](filename string, target *T) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("read config file %s: %w", filename, err)
	}

	expanded := os.ExpandEnv(string(data))

	if err := yaml.Unmarshal([]byte(expanded), target); err != nil {
		return fmt.Errorf("parse config file %s: %w", filename, err)
	}

	if v, ok := any(target).(Validator); ok {
		if err := v.Validate(); err != nil {
			return fmt.Errorf("config validation failed: %w", err)
		}
	}

	return nil
}

// LoadOptional behaves like Load but treats a missing file as success,
// leaving target at its defaults (still validated when possible).
func LoadOptional[T any](filename string, target *T) error {
	err := Load(filename, target)
	if err != nil && errors.Is(err, fs.ErrNotExist) {
		if v, ok := any(target).(Validator); ok {
			if verr := v.Validate(); verr != nil {
				return fmt.Errorf("config validation failed: %w", verr)
			}
		}
		return nil
	}
	return err
}

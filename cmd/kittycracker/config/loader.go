// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/AleutianAI/kittycracker/pkg/logging"
	"github.com/AleutianAI/kittycracker/pkg/validation"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// PathEnv overrides the config file location.
const PathEnv = "KITTYCRACKER_CONFIG"

var (
	// Global is a singleton instance
	Global  KittyConfig
	once    sync.Once
	loadErr error

	validate *validator.Validate
)

func init() {
	validate = validator.New()
	_ = validate.RegisterValidation("modulus", func(fl validator.FieldLevel) bool {
		_, err := validation.ParseModulus(fl.Field().String())
		return err == nil
	})
	_ = validate.RegisterValidation("loglevel", func(fl validator.FieldLevel) bool {
		_, err := logging.ParseLevel(fl.Field().String())
		return err == nil
	})
}

// DefaultPath returns ~/.kittycracker/kittycracker.yaml, or the value of
// KITTYCRACKER_CONFIG when set.
func DefaultPath() (string, error) {
	if p := os.Getenv(PathEnv); p != "" {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not find the user's home directory: %w", err)
	}
	return filepath.Join(home, ".kittycracker", "kittycracker.yaml"), nil
}

// Load ensures the config at path is loaded into Global. An empty path
// means DefaultPath. Only the first call does any work.
func Load(path string) error {
	once.Do(func() {
		if path == "" {
			path, loadErr = DefaultPath()
			if loadErr != nil {
				return
			}
		}
		Global, loadErr = LoadFrom(path)
	})
	return loadErr
}

// LoadFrom reads and validates the config at path, creating it with
// DefaultConfig when it does not exist. Keys missing from the file keep
// their default values.
func LoadFrom(path string) (KittyConfig, error) {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		if err := createDefault(path); err != nil {
			return KittyConfig{}, err
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return KittyConfig{}, fmt.Errorf("failed to read the config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return KittyConfig{}, fmt.Errorf("failed to parse the config file %s: %w", path, err)
	}
	if err := Validate(cfg); err != nil {
		return KittyConfig{}, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks field ranges and formats.
func Validate(cfg KittyConfig) error {
	return validate.Struct(cfg)
}

func createDefault(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create the config directory: %w", err)
	}
	data, err := yaml.Marshal(DefaultConfig())
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

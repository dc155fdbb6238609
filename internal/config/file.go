// file.go loads the optional project config file. Two formats are
// supported, checked in order:
//
//	.crateci.json — JSONC (JSON with comments and trailing commas), the
//	                same dialect used by devcontainer.json and friends
//	.crateci.yml  — plain YAML
//
// The file provides per-project defaults; it never overrides values the
// CI environment or command-line flags already set. A crate can commit
// its usual target triple and tool choice without fighting the matrix
// configuration of the surrounding CI system.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/mmr-tortoise/crateci/internal/model"
)

// Project config file names, looked up relative to the project directory.
const (
	// FileNameJSON is the JSONC project config file name.
	FileNameJSON = ".crateci.json"

	// FileNameYAML is the YAML project config file name.
	FileNameYAML = ".crateci.yml"
)

// FileConfig is the parsed representation of a project config file.
// Pointer fields distinguish "absent" from "set to the zero value" so that
// merging into a Config never clobbers an explicit false/empty.
type FileConfig struct {
	// Tool forces a build tool ("cargo" or "cross") for this project.
	Tool string `json:"tool" yaml:"tool"`

	// Target is the default target triple when the environment provides none.
	Target string `json:"target" yaml:"target"`

	// SkipTests, when true, stops the pipeline after the build steps.
	SkipTests *bool `json:"skipTests" yaml:"skip-tests"`

	// Env lists extra environment variables exported to every invocation
	// (e.g., RUSTFLAGS, CARGO_TERM_COLOR).
	Env map[string]string `json:"env" yaml:"env"`
}

// LoadFile reads the project config file from dir, if one exists.
// Returns (nil, nil) when the directory has no config file — the file is
// entirely optional. The JSONC file takes precedence when both exist.
func LoadFile(dir string) (*FileConfig, error) {
	jsonPath := filepath.Join(dir, FileNameJSON)
	if data, err := os.ReadFile(jsonPath); err == nil {
		return parseJSONC(jsonPath, data)
	} else if !os.IsNotExist(err) {
		return nil, model.WrapCLIError(model.ExitConfigError,
			fmt.Sprintf("failed to read %s", jsonPath), err)
	}

	yamlPath := filepath.Join(dir, FileNameYAML)
	if data, err := os.ReadFile(yamlPath); err == nil {
		return parseYAML(yamlPath, data)
	} else if !os.IsNotExist(err) {
		return nil, model.WrapCLIError(model.ExitConfigError,
			fmt.Sprintf("failed to read %s", yamlPath), err)
	}

	return nil, nil
}

// parseJSONC parses a JSONC config file. jsonc.ToJSON strips comments and
// trailing commas in place, producing bytes the standard json package
// accepts.
func parseJSONC(path string, data []byte) (*FileConfig, error) {
	var fc FileConfig
	if err := json.Unmarshal(jsonc.ToJSON(data), &fc); err != nil {
		return nil, model.WrapCLIError(model.ExitConfigError,
			fmt.Sprintf("invalid JSON in %s", path), err)
	}
	if err := fc.validate(path); err != nil {
		return nil, err
	}
	return &fc, nil
}

// parseYAML parses a YAML config file.
func parseYAML(path string, data []byte) (*FileConfig, error) {
	var fc FileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, model.WrapCLIError(model.ExitConfigError,
			fmt.Sprintf("invalid YAML in %s", path), err)
	}
	if err := fc.validate(path); err != nil {
		return nil, err
	}
	return &fc, nil
}

// validate rejects config files that name an unknown build tool. Other
// fields are free-form strings validated later by Config.Validate.
func (f *FileConfig) validate(path string) error {
	if f.Tool != "" {
		if _, err := model.ParseTool(f.Tool); err != nil {
			return model.WrapCLIError(model.ExitConfigError,
				fmt.Sprintf("invalid tool in %s", path), err)
		}
	}
	return nil
}

// ApplyTo merges the file config into cfg, filling only values the
// environment left unset. Precedence is flags > environment > file, and
// the flag layer is applied by the CLI after this merge.
func (f *FileConfig) ApplyTo(cfg *Config) {
	if f.Tool != "" && cfg.ToolOverride == "" {
		// validate() already guaranteed the tool parses.
		tool, _ := model.ParseTool(f.Tool)
		cfg.ToolOverride = tool
	}
	if f.Target != "" && cfg.Target == "" {
		cfg.Target = f.Target
	}
	if f.SkipTests != nil && *f.SkipTests {
		// A file can opt in to skipping tests but never force them back
		// on when the environment already disabled them.
		cfg.SkipTests = true
	}
	if len(f.Env) > 0 {
		if cfg.Env == nil {
			cfg.Env = make(map[string]string, len(f.Env))
		}
		for k, v := range f.Env {
			if _, exists := cfg.Env[k]; !exists {
				cfg.Env[k] = v
			}
		}
	}
}

// file_test.go contains unit tests for project config file loading
// (JSONC and YAML) and for the layered merge into Config.
package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmr-tortoise/crateci/internal/model"
)

// writeFile creates a file in dir with the given content.
func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

// TestLoadFileJSONC verifies that the JSONC config file parses, including
// comments and trailing commas, which plain encoding/json rejects.
func TestLoadFileJSONC(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, FileNameJSON, `{
  // project defaults for CI runs
  "tool": "cross",
  "target": "aarch64-unknown-linux-gnu",
  "skipTests": false,
  "env": {
    "CARGO_TERM_COLOR": "always",
  },
}`)

	fc, err := LoadFile(dir)
	require.NoError(t, err)
	require.NotNil(t, fc)

	assert.Equal(t, "cross", fc.Tool)
	assert.Equal(t, "aarch64-unknown-linux-gnu", fc.Target)
	require.NotNil(t, fc.SkipTests)
	assert.False(t, *fc.SkipTests)
	assert.Equal(t, map[string]string{"CARGO_TERM_COLOR": "always"}, fc.Env)
}

// TestLoadFileYAML verifies the YAML config file format.
func TestLoadFileYAML(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, FileNameYAML, `tool: cargo
target: x86_64-apple-darwin
skip-tests: true
env:
  RUSTFLAGS: -D warnings
`)

	fc, err := LoadFile(dir)
	require.NoError(t, err)
	require.NotNil(t, fc)

	assert.Equal(t, "cargo", fc.Tool)
	assert.Equal(t, "x86_64-apple-darwin", fc.Target)
	require.NotNil(t, fc.SkipTests)
	assert.True(t, *fc.SkipTests)
	assert.Equal(t, map[string]string{"RUSTFLAGS": "-D warnings"}, fc.Env)
}

// TestLoadFilePrecedence verifies that the JSONC file wins when both
// formats exist in the same directory.
func TestLoadFilePrecedence(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, FileNameJSON, `{"target": "from-json"}`)
	writeFile(t, dir, FileNameYAML, `target: from-yaml`)

	fc, err := LoadFile(dir)
	require.NoError(t, err)
	require.NotNil(t, fc)
	assert.Equal(t, "from-json", fc.Target)
}

// TestLoadFileAbsent verifies that a directory without a config file
// yields no config and no error.
func TestLoadFileAbsent(t *testing.T) {
	fc, err := LoadFile(t.TempDir())
	assert.NoError(t, err)
	assert.Nil(t, fc)
}

// TestLoadFileInvalid verifies that malformed files and unknown tools
// surface as configuration errors.
func TestLoadFileInvalid(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{
			name:    "malformed json",
			file:    FileNameJSON,
			content: `{"tool": }`,
		},
		{
			name:    "malformed yaml",
			file:    FileNameYAML,
			content: "tool: [unclosed",
		},
		{
			name:    "unknown tool in json",
			file:    FileNameJSON,
			content: `{"tool": "bazel"}`,
		},
		{
			name:    "unknown tool in yaml",
			file:    FileNameYAML,
			content: "tool: make\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeFile(t, dir, tt.file, tt.content)

			_, err := LoadFile(dir)
			require.Error(t, err)

			var cliErr *model.CLIError
			require.ErrorAs(t, err, &cliErr)
			assert.Equal(t, model.ExitConfigError, cliErr.Code)
		})
	}
}

// TestApplyTo verifies the merge semantics: the file fills gaps but never
// overrides what the environment already set.
func TestApplyTo(t *testing.T) {
	boolPtr := func(b bool) *bool { return &b }

	tests := []struct {
		name string
		file FileConfig
		cfg  Config
		want Config
	}{
		{
			name: "file fills empty fields",
			file: FileConfig{
				Tool:   "cross",
				Target: "aarch64-unknown-linux-gnu",
				Env:    map[string]string{"RUSTFLAGS": "-D warnings"},
			},
			cfg: Config{ProjectDir: "."},
			want: Config{
				ProjectDir:   ".",
				ToolOverride: model.ToolCross,
				Target:       "aarch64-unknown-linux-gnu",
				Env:          map[string]string{"RUSTFLAGS": "-D warnings"},
			},
		},
		{
			name: "environment target wins over file",
			file: FileConfig{Target: "from-file"},
			cfg:  Config{Target: "from-env", ProjectDir: "."},
			want: Config{Target: "from-env", ProjectDir: "."},
		},
		{
			name: "file can opt in to skipping tests",
			file: FileConfig{SkipTests: boolPtr(true)},
			cfg:  Config{ProjectDir: "."},
			want: Config{ProjectDir: ".", SkipTests: true},
		},
		{
			name: "file cannot re-enable tests the environment disabled",
			file: FileConfig{SkipTests: boolPtr(false)},
			cfg:  Config{ProjectDir: ".", SkipTests: true},
			want: Config{ProjectDir: ".", SkipTests: true},
		},
		{
			name: "existing env keys are preserved",
			file: FileConfig{Env: map[string]string{"A": "file", "B": "file"}},
			cfg:  Config{ProjectDir: ".", Env: map[string]string{"A": "env"}},
			want: Config{ProjectDir: ".", Env: map[string]string{"A": "env", "B": "file"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.cfg
			tt.file.ApplyTo(&cfg)
			assert.Equal(t, tt.want, cfg)
		})
	}
}

// TestLoadEnvFile verifies dotenv loading: implicit lookups tolerate a
// missing file, explicit ones do not, and existing variables are never
// overwritten.
func TestLoadEnvFile(t *testing.T) {
	t.Run("implicit missing file is fine", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), ".env")
		assert.NoError(t, LoadEnvFile(path, false))
	})

	t.Run("explicit missing file is a config error", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "ci.env")
		err := LoadEnvFile(path, true)
		require.Error(t, err)

		var cliErr *model.CLIError
		require.ErrorAs(t, err, &cliErr)
		assert.Equal(t, model.ExitConfigError, cliErr.Code)
	})

	t.Run("loads variables without overriding the environment", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, ".env")
		require.NoError(t, os.WriteFile(path,
			[]byte("CRATECI_TEST_NEW=from-dotenv\nCRATECI_TEST_SET=from-dotenv\n"), 0o644))

		t.Setenv("CRATECI_TEST_SET", "from-env")
		require.NoError(t, os.Unsetenv("CRATECI_TEST_NEW"))
		t.Cleanup(func() { _ = os.Unsetenv("CRATECI_TEST_NEW") })

		require.NoError(t, LoadEnvFile(path, true))
		assert.Equal(t, "from-dotenv", os.Getenv("CRATECI_TEST_NEW"))
		assert.Equal(t, "from-env", os.Getenv("CRATECI_TEST_SET"))
	})
}

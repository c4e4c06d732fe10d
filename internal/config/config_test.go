package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestLoadOrDefaultMissingFile(t *testing.T) {
	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err, "LoadOrDefault on a missing file should not error")
	require.False(t, cfg.Verbose)
	require.False(t, cfg.JSONDiagnostics)
	require.Empty(t, cfg.Prelude)
}

func TestLoadParsesYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "kibi.yaml")
	data := []byte("prelude:\n  - prelude/nat.kibi\n  - prelude/bool.kibi\nverbose: true\njson_diagnostics: true\n")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.True(t, cfg.Verbose)
	require.True(t, cfg.JSONDiagnostics)
	want := []string{"prelude/nat.kibi", "prelude/bool.kibi"}
	if diff := cmp.Diff(want, cfg.Prelude); diff != "" {
		t.Fatalf("Prelude mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadMissingFileErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestLoadInvalidYAMLErrors(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "kibi.yaml")
	require.NoError(t, os.WriteFile(path, []byte("prelude: [this is not valid: yaml"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
}

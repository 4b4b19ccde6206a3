//nolint:testpackage // Tests require internal access for thorough testing
package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("USER", "ana")

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "ana", cfg.Actor)
	assert.True(t, cfg.RevertDone)
	assert.True(t, cfg.Interactive)
}

func TestLoadDefaultActorFallback(t *testing.T) {
	t.Setenv("USER", "")

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "local", cfg.Actor)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	content := "actor: bob\nprovider:\n  revert_done: false\ninteractive: false\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, fileName), []byte(content), 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "bob", cfg.Actor)
	assert.False(t, cfg.RevertDone)
	assert.False(t, cfg.Interactive)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, fileName), []byte("actor: bob\n"), 0o644))
	t.Setenv("TASKFLOW_ACTOR", "carol")
	t.Setenv("TASKFLOW_PROVIDER_REVERT_DONE", "false")

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "carol", cfg.Actor)
	assert.False(t, cfg.RevertDone)
}

func TestLoadInvalidYAML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, fileName), []byte("actor: [unclosed\n"), 0o644))

	_, err := Load(dir)
	assert.Error(t, err)
}

func TestWriteDefault(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("USER", "ana")

	require.NoError(t, WriteDefault(dir))
	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "ana", cfg.Actor)
	assert.True(t, cfg.RevertDone)

	// Existing files are left alone
	require.NoError(t, os.WriteFile(filepath.Join(dir, fileName), []byte("actor: bob\n"), 0o644))
	require.NoError(t, WriteDefault(dir))
	cfg, err = Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "bob", cfg.Actor)
}

package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const validDev = `{
  "version": "1.0",
  "modules": [
    {"name": "a", "required": true, "defaultEnabled": true, "config": {"x": 1}},
    {"name": "b", "required": false, "defaultEnabled": false, "dependencies": ["a"], "initOrderHint": 5}
  ]
}`

func TestLoadDeveloper(t *testing.T) {
	ctx := context.Background()

	t.Run("valid document", func(t *testing.T) {
		dir := t.TempDir()
		devPath := writeFile(t, dir, "modules.json", validDev)

		dev, user, err := Load(ctx, devPath, "")
		require.NoError(t, err)
		assert.Nil(t, user)
		assert.Equal(t, "1.0", dev.Version)
		require.Len(t, dev.Modules, 2)

		assert.Equal(t, "a", dev.Modules[0].Name)
		assert.True(t, dev.Modules[0].Required)
		assert.True(t, dev.Modules[0].DefaultEnabled)

		assert.Equal(t, []string{"a"}, dev.Modules[1].Dependencies)
		require.NotNil(t, dev.Modules[1].InitOrderHint)
		assert.Equal(t, 5, *dev.Modules[1].InitOrderHint)
	})

	t.Run("missing document is fatal", func(t *testing.T) {
		_, _, err := Load(ctx, filepath.Join(t.TempDir(), "absent.json"), "")
		var cfgErr *ConfigurationError
		require.ErrorAs(t, err, &cfgErr)
		assert.Contains(t, cfgErr.Detail, "could not be read")
	})

	t.Run("malformed JSON is fatal", func(t *testing.T) {
		dir := t.TempDir()
		devPath := writeFile(t, dir, "modules.json", "{not json")
		_, _, err := Load(ctx, devPath, "")
		var cfgErr *ConfigurationError
		require.ErrorAs(t, err, &cfgErr)
	})

	t.Run("missing version is named", func(t *testing.T) {
		dir := t.TempDir()
		devPath := writeFile(t, dir, "modules.json", `{"modules": []}`)
		_, _, err := Load(ctx, devPath, "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), `"version"`)
	})

	t.Run("missing per-entry field names field and entry", func(t *testing.T) {
		dir := t.TempDir()
		devPath := writeFile(t, dir, "modules.json", `{
  "version": "1.0",
  "modules": [
    {"name": "a", "required": true, "defaultEnabled": true},
    {"name": "b", "required": true}
  ]
}`)
		_, _, err := Load(ctx, devPath, "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), `"defaultEnabled"`)
		assert.Contains(t, err.Error(), `entry 1`)
		assert.Contains(t, err.Error(), `"b"`)
	})

	t.Run("duplicate module names are rejected", func(t *testing.T) {
		dir := t.TempDir()
		devPath := writeFile(t, dir, "modules.json", `{
  "version": "1.0",
  "modules": [
    {"name": "a", "required": true, "defaultEnabled": true},
    {"name": "a", "required": false, "defaultEnabled": false}
  ]
}`)
		_, _, err := Load(ctx, devPath, "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "duplicate module name")
	})

	t.Run("unknown fields are tolerated", func(t *testing.T) {
		dir := t.TempDir()
		devPath := writeFile(t, dir, "modules.json", `{
  "version": "1.0",
  "futureKnob": {"nested": true},
  "modules": [
    {"name": "a", "required": true, "defaultEnabled": true, "someNewField": 3}
  ]
}`)
		dev, _, err := Load(ctx, devPath, "")
		require.NoError(t, err)
		assert.Len(t, dev.Modules, 1)
	})
}

func TestLoadUser(t *testing.T) {
	ctx := context.Background()

	t.Run("absent user document means no overrides", func(t *testing.T) {
		dir := t.TempDir()
		devPath := writeFile(t, dir, "modules.json", validDev)

		dev, user, err := Load(ctx, devPath, filepath.Join(dir, "absent.json"))
		require.NoError(t, err)
		require.NotNil(t, dev)
		assert.Nil(t, user)
	})

	t.Run("valid user document", func(t *testing.T) {
		dir := t.TempDir()
		devPath := writeFile(t, dir, "modules.json", validDev)
		userPath := writeFile(t, dir, "user.json", `{
  "enabledModules": ["b"],
  "disabledModules": ["a"],
  "moduleOverrides": {"b": {"x": 2}}
}`)

		_, user, err := Load(ctx, devPath, userPath)
		require.NoError(t, err)
		require.NotNil(t, user)
		assert.Equal(t, []string{"b"}, user.EnabledModules)
		assert.Equal(t, map[string]any{"x": float64(2)}, user.ModuleOverrides["b"])
	})

	t.Run("module in both lists is rejected", func(t *testing.T) {
		dir := t.TempDir()
		devPath := writeFile(t, dir, "modules.json", validDev)
		userPath := writeFile(t, dir, "user.json", `{
  "enabledModules": ["a"],
  "disabledModules": ["a"]
}`)

		_, _, err := Load(ctx, devPath, userPath)
		var cfgErr *ConfigurationError
		require.ErrorAs(t, err, &cfgErr)
		assert.Contains(t, cfgErr.Detail, "both enabledModules and disabledModules")
	})

	t.Run("malformed user document is fatal", func(t *testing.T) {
		dir := t.TempDir()
		devPath := writeFile(t, dir, "modules.json", validDev)
		userPath := writeFile(t, dir, "user.json", "][")

		_, _, err := Load(ctx, devPath, userPath)
		require.Error(t, err)
	})
}

package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wippyai/wasm-sandbox/arena"
	"github.com/wippyai/wasm-sandbox/errors"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sandbox.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, arena.DefaultLimits(), cfg.Engine.Limits())
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
engine:
  max_pages: 32
  min_pages: 2
  timeout: 2s
  entry: run
log:
  level: debug
  format: json
stats:
  concurrency: 8
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, uint32(32), cfg.Engine.MaxPages)
	assert.Equal(t, uint32(2), cfg.Engine.MinPages)
	assert.Equal(t, 2*time.Second, cfg.Engine.Timeout)
	assert.Equal(t, "run", cfg.Engine.Entry)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 8, cfg.Stats.Concurrency)
	// untouched keys keep their defaults
	assert.Equal(t, 100, cfg.Log.MaxSizeMB)
}

func TestLoad_Env(t *testing.T) {
	path := writeConfig(t, "engine:\n  max_pages: 32\n")
	t.Setenv("SANDBOX_ENGINE_MAX_PAGES", "64")
	t.Setenv("SANDBOX_ENGINE_COMPILER", "true")
	t.Setenv("SANDBOX_LOG_LEVEL", "warn")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, uint32(64), cfg.Engine.MaxPages)
	assert.True(t, cfg.Engine.Compiler)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		config bool
	}{
		{"unknown key", "engine:\n  max_pagez: 3\n", false},
		{"bad yaml", "engine: [\n", false},
		{"max pages zero", "engine:\n  max_pages: 0\n", true},
		{"max pages above 4 GiB", "engine:\n  max_pages: 65537\n", true},
		{"min above max", "engine:\n  min_pages: 9\n  max_pages: 8\n", true},
		{"log level", "log:\n  level: loud\n", true},
		{"log format", "log:\n  format: xml\n", true},
		{"no entry", "engine:\n  entry: \"\"\n", true},
		{"concurrency", "stats:\n  concurrency: 0\n", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			require.Error(t, err)
			if tt.config {
				assert.ErrorIs(t, err, errors.ErrConfig)
			}
		})
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestEnvKey(t *testing.T) {
	assert.Equal(t, "engine.max_pages", envKey("SANDBOX_ENGINE_MAX_PAGES"))
	assert.Equal(t, "log.level", envKey("SANDBOX_LOG_LEVEL"))
	assert.Equal(t, "stats.concurrency", envKey("SANDBOX_STATS_CONCURRENCY"))
}

func TestToEngine(t *testing.T) {
	e := Default().Engine
	e.MaxPages = 10
	e.Timeout = time.Second

	ec := e.ToEngine(nil)
	assert.Equal(t, uint32(10), ec.Limits.MaxPages)
	assert.Equal(t, uint32(1), ec.Limits.MinPages)
	assert.True(t, ec.CloseOnContextDone)
	require.NoError(t, ec.Validate())

	e.Timeout = 0
	assert.False(t, e.ToEngine(nil).CloseOnContextDone)
}

func TestLogConfig_Build(t *testing.T) {
	var buf bytes.Buffer
	file := filepath.Join(t.TempDir(), "sandbox.log")

	lc := Default().Log
	lc.Format = "json"
	lc.File = file

	log, closeFn, err := lc.Build(&buf)
	require.NoError(t, err)
	log.Info("hello")
	log.Debug("filtered")
	require.NoError(t, closeFn())

	assert.Contains(t, buf.String(), `"msg":"hello"`)
	assert.NotContains(t, buf.String(), "filtered")

	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello")

	lc.Level = "verbose"
	_, _, err = lc.Build(&buf)
	assert.Error(t, err)
}

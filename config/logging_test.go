package config_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sagarc03/docsgate/config"
)

func TestLogger_ProductionWritesJSON(t *testing.T) {
	cfg := &config.Config{Env: "prod", Log: config.LogConfig{Level: "warn"}}

	var buf bytes.Buffer
	logger := cfg.Logger(&buf)

	logger.Info("dropped")
	logger.Warn("kept", "path", "/v1.0/")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var record map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &record))
	assert.Equal(t, "kept", record["msg"])
	assert.Equal(t, "WARN", record["level"])
	assert.Equal(t, "/v1.0/", record["path"])
}

func TestLogger_DevelopmentWritesText(t *testing.T) {
	cfg := &config.Config{Env: "dev", Log: config.LogConfig{Level: "debug"}}

	var buf bytes.Buffer
	cfg.Logger(&buf).Debug("resolving", "key", "index.html")

	out := buf.String()
	assert.Contains(t, out, "resolving")
	assert.Contains(t, out, "index.html")
	assert.False(t, json.Valid(bytes.TrimSpace(buf.Bytes())))
}

func TestLogger_FormatOverridesEnv(t *testing.T) {
	cfg := &config.Config{Env: "dev", Log: config.LogConfig{Level: "info", Format: config.LogFormatJSON}}

	var buf bytes.Buffer
	cfg.Logger(&buf).Info("started")

	assert.True(t, json.Valid(bytes.TrimSpace(buf.Bytes())))
}

func TestConfig_IsProduction(t *testing.T) {
	tests := []struct {
		env  string
		want bool
	}{
		{env: "prod", want: true},
		{env: "production", want: true},
		{env: "dev", want: false},
		{env: "", want: false},
	}

	for _, tc := range tests {
		t.Run(tc.env, func(t *testing.T) {
			cfg := &config.Config{Env: tc.env}
			assert.Equal(t, tc.want, cfg.IsProduction())
		})
	}
}

// Copyright 2025 Kadir Pekel
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoad_EmptyPathAppliesDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, 8080, cfg.Server.Port)
	require.Equal(t, "channel", cfg.Server.Broadcaster)
	require.Equal(t, "stub", cfg.Execution.Type)
	require.Equal(t, "chromem", string(cfg.VectorStore.Type))
}

func TestLoad_ExpandsEnvVars(t *testing.T) {
	t.Setenv("ORCH_API_KEY", "sk-live-123")
	t.Setenv("ORCH_PORT", "9090")

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	contents := `
server:
  port: ${ORCH_PORT}
execution:
  type: anthropic
  api_key: ${ORCH_API_KEY}
  model: claude-3-5-sonnet
decomposition:
  type: anthropic
  api_key: ${MISSING_KEY:-fallback-key}
  model: claude-3-5-sonnet
`
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 9090, cfg.Server.Port)
	require.Equal(t, "sk-live-123", cfg.Execution.APIKey)
	require.Equal(t, "fallback-key", cfg.Decomposition.APIKey)
}

func TestLoad_RejectsUnknownBroadcaster(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  broadcaster: carrier-pigeon\n"), 0o600))

	_, err := Load(path)
	require.ErrorContains(t, err, "broadcaster")
}

func TestLoad_RejectsMissingNATSURL(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  broadcaster: nats\n"), 0o600))

	_, err := Load(path)
	require.ErrorContains(t, err, "nats_url")
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("FOO", "bar")

	require.Equal(t, "bar", expandEnvVars("$FOO"))
	require.Equal(t, "bar", expandEnvVars("${FOO}"))
	require.Equal(t, "default", expandEnvVars("${UNSET_VAR:-default}"))
	require.Equal(t, "prefix-bar-suffix", expandEnvVars("prefix-$FOO-suffix"))
}

func TestParseValue(t *testing.T) {
	require.Equal(t, true, parseValue("true"))
	require.Equal(t, int64(42), parseValue("42"))
	require.Equal(t, 3.14, parseValue("3.14"))
	require.Equal(t, "plain-string", parseValue("plain-string"))
}

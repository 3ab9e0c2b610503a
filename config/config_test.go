package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pzaremba/oswatch/types"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "oswatch.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
version: "1"
region: RegionOne
openstack:
  auth_url: http://10.20.0.2:5000/v2.0/
  username: admin
  password: secret
  tenant: admin
collector:
  interval: 30m
  jitter: true
  kinds: [vm, volume]
  proxy: http://10.20.0.3:8888
emitter:
  endpoint: https://stats.example.com/api/v1/oswl
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "RegionOne", cfg.Region)
	assert.Equal(t, "admin", cfg.OpenStack.Username)
	assert.Equal(t, 30*time.Minute, cfg.Collector.Interval.Std())
	assert.True(t, cfg.Collector.Jitter)
	assert.Equal(t, []types.Kind{types.KindVM, types.KindVolume}, cfg.Kinds())
	assert.Equal(t, "https://stats.example.com/api/v1/oswl", cfg.Emitter.Endpoint)
	assert.Equal(t, 30*time.Second, cfg.Emitter.Timeout.Std(), "default timeout applies")
	assert.Equal(t, "/var/lib/oswatch", cfg.Storage.Dir, "default storage dir applies")
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidateRejectsMissingCredentials(t *testing.T) {
	path := writeConfig(t, `
version: "1"
openstack:
  auth_url: http://10.20.0.2:5000/v2.0/
  username: admin
  tenant: admin
`)

	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "password")
}

func TestValidateRejectsUnknownKind(t *testing.T) {
	path := writeConfig(t, `
version: "1"
openstack:
  auth_url: http://10.20.0.2:5000/v2.0/
  username: admin
  password: secret
  tenant: admin
collector:
  kinds: [vm, subnet]
`)

	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "subnet")
}

func TestLoadConfigRejectsBadDuration(t *testing.T) {
	path := writeConfig(t, `
version: "1"
openstack:
  auth_url: http://10.20.0.2:5000/v2.0/
  username: admin
  password: secret
  tenant: admin
collector:
  interval: quickly
`)

	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duration")
}

func TestKindsDefaultsToAll(t *testing.T) {
	cfg := &Config{}
	assert.Equal(t, types.AllKinds(), cfg.Kinds())
}

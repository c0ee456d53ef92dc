package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	// viper 对显式指定但不存在的文件返回错误
	require.Error(t, err)

	// 不指定文件时走默认值
	cfg, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, "droidlink", cfg.App.Name)
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, 10*time.Second, cfg.Droid.CommandTimeout)
	assert.Equal(t, 120*time.Millisecond, cfg.Droid.MinCmdInterval)
	assert.True(t, cfg.Droid.WakeOnConnect)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cfg.yaml")
	content := []byte(`
app:
  name: r2-test
http:
  addr: ":9090"
  apiKey: "secret"
droid:
  name: "D2-55A2"
  commandTimeout: 3s
  minCmdInterval: 50ms
  wakeOnConnect: false
`)
	require.NoError(t, os.WriteFile(path, content, 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "r2-test", cfg.App.Name)
	assert.Equal(t, ":9090", cfg.HTTP.Addr)
	assert.Equal(t, "secret", cfg.HTTP.APIKey)
	assert.Equal(t, "D2-55A2", cfg.Droid.Name)
	assert.Equal(t, 3*time.Second, cfg.Droid.CommandTimeout)
	assert.Equal(t, 50*time.Millisecond, cfg.Droid.MinCmdInterval)
	assert.False(t, cfg.Droid.WakeOnConnect)
	// 未覆盖的段保留默认值
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, 15*time.Second, cfg.Droid.ScanTimeout)
}

func TestValidateRejectsBadDurations(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("droid:\n  commandTimeout: 0s\n"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "commandTimeout")
}

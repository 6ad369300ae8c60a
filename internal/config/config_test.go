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
	cfg, err := Load(nil)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8888", cfg.Server.Addr())
	assert.Equal(t, 30*time.Second, cfg.WebSocket.PingInterval)
	assert.Equal(t, int64(64*1024), cfg.WebSocket.MaxMessageSize)
	assert.Equal(t, 256, cfg.WebSocket.SendBuffer)
	assert.Equal(t, 10*time.Second, cfg.Client.HandshakeTimeout)
	assert.Equal(t, 800.0, cfg.Canvas.Bounds().Width)
	assert.Equal(t, 600.0, cfg.Canvas.Bounds().Height)
	assert.Equal(t, "#000000", cfg.Brush.Color)
	assert.False(t, cfg.Backplane.Enabled)
	assert.Equal(t, "sharedboard:frames", cfg.Backplane.RelayRedis().Channel)
	assert.True(t, cfg.Discovery.Enabled)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadEnvironment(t *testing.T) {
	t.Setenv("SHAREDBOARD_SERVER_PORT", "9100")
	t.Setenv("SHAREDBOARD_WEBSOCKET_PONG_WAIT", "45s")
	t.Setenv("SHAREDBOARD_CANVAS_WIDTH", "1024")
	t.Setenv("SHAREDBOARD_LOG_LEVEL", "debug")

	cfg, err := Load(nil)
	require.NoError(t, err)
	assert.Equal(t, 9100, cfg.Server.Port)
	assert.Equal(t, 45*time.Second, cfg.WebSocket.PongWait)
	assert.Equal(t, 1024.0, cfg.Canvas.Width)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadFlagsOverrideEnvironment(t *testing.T) {
	t.Setenv("SHAREDBOARD_SERVER_PORT", "9100")

	fs := NewFlagSet("test")
	require.NoError(t, fs.Parse([]string{"--port", "9200", "--redis", "cache:6379", "--no-discovery", "--color", "#ff0000"}))

	cfg, err := Load(fs)
	require.NoError(t, err)
	assert.Equal(t, 9200, cfg.Server.Port)
	assert.True(t, cfg.Backplane.Enabled)
	assert.Equal(t, "cache:6379", cfg.Backplane.RelayRedis().Address)
	assert.False(t, cfg.Discovery.Enabled)
	assert.Equal(t, "#ff0000", cfg.Brush.Color)
	assert.Equal(t, 3.0, cfg.Brush.Width)
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "board.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 7000
brush:
  color: "#00ff00"
  width: 8
discovery:
  timeout: 1s
`), 0o600))

	fs := NewFlagSet("test")
	require.NoError(t, fs.Parse([]string{"--config", path}))

	cfg, err := Load(fs)
	require.NoError(t, err)
	assert.Equal(t, 7000, cfg.Server.Port)
	assert.Equal(t, "#00ff00", cfg.Brush.Color)
	assert.Equal(t, 8.0, cfg.Brush.Width)
	assert.Equal(t, time.Second, cfg.Discovery.Timeout)
}

func TestLoadMissingConfigFile(t *testing.T) {
	fs := NewFlagSet("test")
	require.NoError(t, fs.Parse([]string{"--config", filepath.Join(t.TempDir(), "nope.yaml")}))

	_, err := Load(fs)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	base, err := Load(nil)
	require.NoError(t, err)

	cases := map[string]func(c *Config){
		"port":      func(c *Config) { c.Server.Port = 0 },
		"canvas":    func(c *Config) { c.Canvas.Height = -1 },
		"brush":     func(c *Config) { c.Brush.Width = 0 },
		"color":     func(c *Config) { c.Brush.Color = "" },
		"backplane": func(c *Config) { c.Backplane.Enabled = true; c.Backplane.Redis.Address = "" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := *base
			mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalid)
		})
	}
}

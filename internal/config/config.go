// Package config loads settings from defaults, config.yaml, .env, the
// environment (SHAREDBOARD_*) and command line flags, in rising priority.
package config

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	pkglog "SharedBoard/internal/log"
	"SharedBoard/internal/relay"
	"SharedBoard/internal/state"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const envPrefix = "SHAREDBOARD"

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid configuration")

type Config struct {
	Server    ServerConfig
	WebSocket relay.Config `mapstructure:"websocket"`
	Client    ClientConfig
	Canvas    CanvasConfig
	Brush     BrushConfig
	Backplane BackplaneConfig
	Discovery DiscoveryConfig
	Log       pkglog.Config
}

type ServerConfig struct {
	Host string
	Port int
}

// Addr is the listen address of the relay.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

type ClientConfig struct {
	HandshakeTimeout time.Duration `mapstructure:"handshake_timeout"`
	WriteTimeout     time.Duration `mapstructure:"write_timeout"`
}

type CanvasConfig struct {
	Width      float64
	Height     float64
	Background string
}

func (c CanvasConfig) Bounds() state.Bounds {
	return state.Bounds{Width: c.Width, Height: c.Height}
}

type BrushConfig struct {
	Color string
	Width float64
}

type BackplaneConfig struct {
	Enabled bool
	Redis   RedisConfig
	Channel string
}

type RedisConfig struct {
	Address  string
	Password string
	DB       int
}

// RelayRedis is the backplane setting in the relay's terms.
func (b BackplaneConfig) RelayRedis() relay.RedisConfig {
	return relay.RedisConfig{
		Address:  b.Redis.Address,
		Password: b.Redis.Password,
		DB:       b.Redis.DB,
		Channel:  b.Channel,
	}
}

type DiscoveryConfig struct {
	Enabled bool
	Timeout time.Duration
}

// NewFlagSet declares the command line flags Load understands.
func NewFlagSet(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.String("config", "", "path to a config file")
	fs.String("host", "", "relay listen host")
	fs.Int("port", 0, "relay listen port")
	fs.String("redis", "", "redis address; enables the relay backplane")
	fs.String("color", "", "initial brush color")
	fs.Float64("width", 0, "initial brush width")
	fs.Bool("no-discovery", false, "disable mDNS advertise and browse")
	fs.String("log-level", "", "log level (trace, debug, info, warn, error)")
	fs.Bool("pretty", false, "human readable logs")
	return fs
}

var flagKeys = map[string]string{
	"host":      "server.host",
	"port":      "server.port",
	"redis":     "backplane.redis.address",
	"color":     "brush.color",
	"width":     "brush.width",
	"log-level": "log.level",
	"pretty":    "log.pretty",
}

// Load builds the configuration. fs may be nil; otherwise it must come from
// NewFlagSet and be parsed already.
func Load(fs *pflag.FlagSet) (*Config, error) {
	// A missing .env is fine; the environment alone is enough.
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if fs != nil {
		if path, _ := fs.GetString("config"); path != "" {
			v.SetConfigFile(path)
		}
		for name, key := range flagKeys {
			if err := v.BindPFlag(key, fs.Lookup(name)); err != nil {
				return nil, fmt.Errorf("bind flag %s: %w", name, err)
			}
		}
		if f := fs.Lookup("redis"); f != nil && f.Changed {
			v.Set("backplane.enabled", true)
		}
		if f := fs.Lookup("no-discovery"); f != nil && f.Changed {
			v.Set("discovery.enabled", false)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	ws := relay.DefaultConfig()

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8888)
	v.SetDefault("websocket.ping_interval", ws.PingInterval)
	v.SetDefault("websocket.pong_wait", ws.PongWait)
	v.SetDefault("websocket.write_wait", ws.WriteWait)
	v.SetDefault("websocket.max_message_size", ws.MaxMessageSize)
	v.SetDefault("websocket.send_buffer", ws.SendBuffer)
	v.SetDefault("client.handshake_timeout", 10*time.Second)
	v.SetDefault("client.write_timeout", 10*time.Second)
	v.SetDefault("canvas.width", 800)
	v.SetDefault("canvas.height", 600)
	v.SetDefault("canvas.background", "#ffffff")
	v.SetDefault("brush.color", state.DefaultColor)
	v.SetDefault("brush.width", state.DefaultWidth)
	v.SetDefault("backplane.enabled", false)
	v.SetDefault("backplane.redis.address", "localhost:6379")
	v.SetDefault("backplane.redis.password", "")
	v.SetDefault("backplane.redis.db", 0)
	v.SetDefault("backplane.channel", "sharedboard:frames")
	v.SetDefault("discovery.enabled", true)
	v.SetDefault("discovery.timeout", 3*time.Second)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)
}

// Validate rejects settings the application cannot run with.
func (c *Config) Validate() error {
	switch {
	case c.Server.Port <= 0 || c.Server.Port > 65535:
		return fmt.Errorf("%w: server.port %d out of range", ErrInvalid, c.Server.Port)
	case c.Canvas.Width <= 0 || c.Canvas.Height <= 0:
		return fmt.Errorf("%w: canvas must have a positive size", ErrInvalid)
	case c.Brush.Width <= 0:
		return fmt.Errorf("%w: brush.width must be positive", ErrInvalid)
	case c.Brush.Color == "":
		return fmt.Errorf("%w: brush.color is empty", ErrInvalid)
	case c.Backplane.Enabled && c.Backplane.Redis.Address == "":
		return fmt.Errorf("%w: backplane enabled without a redis address", ErrInvalid)
	}
	return nil
}

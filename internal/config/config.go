package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/spf13/viper"
)

// Config holds all client configuration
type Config struct {
	API    APIConfig    `mapstructure:"api"`
	Socket SocketConfig `mapstructure:"socket"`
	Chat   ChatConfig   `mapstructure:"chat"`
}

// APIConfig holds REST API client configuration
type APIConfig struct {
	BaseURL        string        `mapstructure:"base_url"`
	DialTimeout    time.Duration `mapstructure:"dial_timeout"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

// SocketConfig holds real-time connection configuration
type SocketConfig struct {
	URL            string        `mapstructure:"url"`
	Path           string        `mapstructure:"path"`
	HandshakeWait  time.Duration `mapstructure:"handshake_wait"`
	WriteWait      time.Duration `mapstructure:"write_wait"`
	PongWait       time.Duration `mapstructure:"pong_wait"`
	PingPeriod     time.Duration `mapstructure:"ping_period"`
	MaxMessageSize int64         `mapstructure:"max_message_size"`
}

// ChatConfig holds message cache and send behavior configuration
type ChatConfig struct {
	PageSize    int           `mapstructure:"page_size"`
	SendTimeout time.Duration `mapstructure:"send_timeout"`
}

// SocketURL returns the socket base URL, falling back to the API origin the
// way the web client does when no dedicated socket endpoint is configured.
func (c *Config) SocketURL() string {
	if c.Socket.URL != "" {
		return c.Socket.URL
	}
	u, err := url.Parse(c.API.BaseURL)
	if err != nil {
		return c.API.BaseURL
	}
	return u.Scheme + "://" + u.Host
}

// Load loads configuration from file
func Load(configPath string) (*Config, error) {
	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.ApplyDefaults()
	return &cfg, nil
}

// ApplyDefaults fills zero-valued fields with defaults
func (c *Config) ApplyDefaults() {
	if c.API.DialTimeout == 0 {
		c.API.DialTimeout = 10 * time.Second
	}
	if c.API.RequestTimeout == 0 {
		c.API.RequestTimeout = 30 * time.Second
	}
	if c.Socket.Path == "" {
		c.Socket.Path = "/ws"
	}
	if c.Socket.HandshakeWait == 0 {
		c.Socket.HandshakeWait = 10 * time.Second
	}
	if c.Socket.WriteWait == 0 {
		c.Socket.WriteWait = 10 * time.Second
	}
	if c.Socket.PongWait == 0 {
		c.Socket.PongWait = 30 * time.Second
	}
	if c.Socket.PingPeriod == 0 {
		c.Socket.PingPeriod = 27 * time.Second
	}
	if c.Socket.MaxMessageSize == 0 {
		c.Socket.MaxMessageSize = 51200
	}
	if c.Chat.PageSize == 0 {
		c.Chat.PageSize = 50
	}
	if c.Chat.SendTimeout == 0 {
		c.Chat.SendTimeout = 10 * time.Second
	}
}

// Package config loads server and client configuration from defaults,
// an optional YAML channel-table file, environment variables, and
// command-line overrides, in that order of precedence.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

// globalConfig stores the configuration loaded with command-line overrides
// so other packages can access the same configuration the process loaded.
var (
	globalConfig *Config
	configMutex  sync.Mutex
)

// Config holds the application configuration.
type Config struct {
	Server  ServerConfig  `json:"server" yaml:"server"`
	PVA     PVAConfig     `json:"pva" yaml:"pva"`
	Logging LoggingConfig `json:"logging" yaml:"logging"`
	// Channels is the static channel table served by this process: each
	// entry's name and access rights. Entries carry no field type or
	// initial value. Only consulted by cmd/server; a client never loads it.
	Channels []ChannelEntry `json:"channels" yaml:"channels"`
}

// LoadOptions holds command-line override options.
type LoadOptions struct {
	Host         string
	Port         string
	DiscoveryUDP string
	LogLevel     string
	ConfigFile   string
}

// ServerConfig holds server-specific configuration.
type ServerConfig struct {
	Host             string        `json:"host" yaml:"host" env:"PVA_HOST" default:"0.0.0.0"`
	Port             string        `json:"port" yaml:"port" env:"PVA_PORT" default:"5075"`
	DiscoveryUDPPort string        `json:"discoveryUdpPort" yaml:"discoveryUdpPort" env:"PVA_UDP_PORT" default:"5076"`
	AcceptTimeout    time.Duration `json:"acceptTimeout" yaml:"acceptTimeout" env:"PVA_ACCEPT_TIMEOUT" default:"30s"`
	IdleTimeout      time.Duration `json:"idleTimeout" yaml:"idleTimeout" env:"PVA_IDLE_TIMEOUT" default:"120s"`
	BeaconInterval   time.Duration `json:"beaconInterval" yaml:"beaconInterval" env:"PVA_BEACON_INTERVAL" default:"15s"`
}

// PVAConfig holds protocol-tunable configuration.
type PVAConfig struct {
	ReceiveBufferSize    uint32 `json:"receiveBufferSize" yaml:"receiveBufferSize" env:"PVA_RECEIVE_BUFFER_SIZE" default:"16384"`
	RegistryMaxSize      uint16 `json:"registryMaxSize" yaml:"registryMaxSize" env:"PVA_REGISTRY_MAX_SIZE" default:"32767"`
	MaxConnections       int    `json:"maxConnections" yaml:"maxConnections" env:"PVA_MAX_CONNECTIONS" default:"100"`
}

// ChannelEntry describes one statically-served channel.
type ChannelEntry struct {
	Name         string `json:"name" yaml:"name"`
	AccessRights uint16 `json:"accessRights" yaml:"accessRights"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `json:"level" yaml:"level" env:"LOG_LEVEL" default:"info"`
	File  string `json:"file" yaml:"file" env:"LOG_FILE" default:""`
}

// Load loads configuration from environment variables with defaults.
func Load() (*Config, error) {
	return LoadWithOverrides(LoadOptions{})
}

// LoadWithOverrides loads configuration with command-line overrides.
// Precedence: defaults < YAML file < environment < explicit overrides.
func LoadWithOverrides(opts LoadOptions) (*Config, error) {
	config := &Config{}

	if opts.ConfigFile != "" {
		if err := loadYAMLFile(opts.ConfigFile, config); err != nil {
			return nil, fmt.Errorf("loading config file: %w", err)
		}
	}

	config.Server.Host = getOverrideOrEnv(opts.Host, "PVA_HOST", nonZeroString(config.Server.Host, "0.0.0.0"))
	config.Server.Port = getOverrideOrEnv(opts.Port, "PVA_PORT", nonZeroString(config.Server.Port, "5075"))
	config.Server.DiscoveryUDPPort = getOverrideOrEnv(opts.DiscoveryUDP, "PVA_UDP_PORT", nonZeroString(config.Server.DiscoveryUDPPort, "5076"))
	config.Server.AcceptTimeout = getDurationWithDefault("PVA_ACCEPT_TIMEOUT", nonZeroDuration(config.Server.AcceptTimeout, 30*time.Second))
	config.Server.IdleTimeout = getDurationWithDefault("PVA_IDLE_TIMEOUT", nonZeroDuration(config.Server.IdleTimeout, 120*time.Second))
	config.Server.BeaconInterval = getDurationWithDefault("PVA_BEACON_INTERVAL", nonZeroDuration(config.Server.BeaconInterval, 15*time.Second))

	config.PVA.ReceiveBufferSize = uint32(getIntWithDefault("PVA_RECEIVE_BUFFER_SIZE", nonZeroInt(int(config.PVA.ReceiveBufferSize), 16384)))
	config.PVA.RegistryMaxSize = uint16(getIntWithDefault("PVA_REGISTRY_MAX_SIZE", nonZeroInt(int(config.PVA.RegistryMaxSize), 32767)))
	config.PVA.MaxConnections = getIntWithDefault("PVA_MAX_CONNECTIONS", nonZeroInt(config.PVA.MaxConnections, 100))

	config.Logging.Level = getOverrideOrEnv(opts.LogLevel, "LOG_LEVEL", nonZeroString(config.Logging.Level, "info"))
	config.Logging.File = getEnvWithDefault("LOG_FILE", config.Logging.File)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	configMutex.Lock()
	globalConfig = config
	configMutex.Unlock()

	return config, nil
}

func loadYAMLFile(path string, out *Config) error {
	data, err := os.ReadFile(path) // #nosec G304 -- operator-supplied config path
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, out)
}

// GetGlobalConfig returns the globally stored configuration so packages
// that don't receive it explicitly can still read the process's settings.
func GetGlobalConfig() *Config {
	configMutex.Lock()
	defer configMutex.Unlock()
	return globalConfig
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port cannot be empty")
	}
	if port, err := strconv.Atoi(c.Server.Port); err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("invalid server port: %s", c.Server.Port)
	}
	if port, err := strconv.Atoi(c.Server.DiscoveryUDPPort); err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("invalid discovery UDP port: %s", c.Server.DiscoveryUDPPort)
	}

	if c.PVA.ReceiveBufferSize == 0 {
		return fmt.Errorf("receive buffer size must be positive")
	}
	if c.PVA.MaxConnections <= 0 {
		return fmt.Errorf("max connections must be positive")
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}

	for _, ch := range c.Channels {
		if strings.TrimSpace(ch.Name) == "" {
			return fmt.Errorf("channel table entry has empty name")
		}
	}

	return nil
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntWithDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getDurationWithDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getOverrideOrEnv returns the command-line override value, env value, or default.
func getOverrideOrEnv(override, envKey, defaultValue string) string {
	if override != "" {
		return override
	}
	return getEnvWithDefault(envKey, defaultValue)
}

func nonZeroString(v, def string) string {
	if v != "" {
		return v
	}
	return def
}

func nonZeroDuration(v, def time.Duration) time.Duration {
	if v != 0 {
		return v
	}
	return def
}

func nonZeroInt(v, def int) int {
	if v != 0 {
		return v
	}
	return def
}

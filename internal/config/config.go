// Package config loads settings from an optional config file, .env overlays
// and TOKENINFO_ environment variables.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable, e.g. TOKENINFO_RPC_ENDPOINT.
const EnvPrefix = "TOKENINFO"

// RPCConfig holds Solana RPC settings
type RPCConfig struct {
	Endpoint   string        `mapstructure:"endpoint"`
	Timeout    time.Duration `mapstructure:"timeout"`
	MaxRetries int           `mapstructure:"max_retries"`
}

// HTTPConfig holds off-chain document fetch settings
type HTTPConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
}

// LookupConfig holds aggregation settings
type LookupConfig struct {
	// Concurrency bounds in-flight lookups; 0 runs one worker per id
	Concurrency  int  `mapstructure:"concurrency"`
	ProbeWebsite bool `mapstructure:"probe_website"`
}

// URIConfig holds URI gateway settings
type URIConfig struct {
	IPFSGateways    []string `mapstructure:"ipfs_gateways"`
	ArweaveGateways []string `mapstructure:"arweave_gateways"`
}

// DatabaseConfig holds snapshot store settings. An empty DSN disables recording.
type DatabaseConfig struct {
	DSN string `mapstructure:"dsn"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// Addr returns host:port.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Config is shared by the CLI and the server.
type Config struct {
	Debug     bool           `mapstructure:"debug"`
	SentryDSN string         `mapstructure:"sentry_dsn"`
	RPC       RPCConfig      `mapstructure:"rpc"`
	HTTP      HTTPConfig     `mapstructure:"http"`
	Lookup    LookupConfig   `mapstructure:"lookup"`
	URI       URIConfig      `mapstructure:"uri"`
	Database  DatabaseConfig `mapstructure:"database"`
	Server    ServerConfig   `mapstructure:"server"`
}

var keys = []string{
	"debug",
	"sentry_dsn",
	"rpc.endpoint",
	"rpc.timeout",
	"rpc.max_retries",
	"http.timeout",
	"lookup.concurrency",
	"lookup.probe_website",
	"uri.ipfs_gateways",
	"uri.arweave_gateways",
	"database.dsn",
	"server.host",
	"server.port",
}

// Load reads configuration for service. configFile may be empty, in which
// case config.yaml is searched for and its absence is not an error.
func Load(service, configFile, envPath string) (*Config, error) {
	v := configureViper(service, configFile, envPath)

	v.SetDefault("rpc.endpoint", "https://api.mainnet-beta.solana.com")
	v.SetDefault("rpc.timeout", "30s")
	v.SetDefault("rpc.max_retries", 0)
	v.SetDefault("http.timeout", "30s")
	v.SetDefault("lookup.concurrency", 0)
	v.SetDefault("lookup.probe_website", false)
	v.SetDefault("uri.ipfs_gateways", []string{"https://ipfs.io"})
	v.SetDefault("uri.arweave_gateways", []string{"https://arweave.net"})
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings no component can run with.
func (c *Config) Validate() error {
	if c.RPC.Endpoint == "" {
		return errors.New("rpc.endpoint is required")
	}
	if c.RPC.MaxRetries < 0 {
		return fmt.Errorf("rpc.max_retries must be >= 0, got %d", c.RPC.MaxRetries)
	}
	if c.Lookup.Concurrency < 0 {
		return fmt.Errorf("lookup.concurrency must be >= 0, got %d", c.Lookup.Concurrency)
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	return nil
}

func configureViper(service, configFile, envPath string) *viper.Viper {
	v := viper.New()

	loadEnv(envPath, service)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath(fmt.Sprintf("cmd/%s/", service))
		v.AddConfigPath("config/")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Unmarshal only sees env vars for keys viper knows about.
	for _, key := range keys {
		_ = v.BindEnv(key)
	}
	return v
}

func loadEnv(envPath, service string) {
	envFiles := []string{".env", ".env.local"}
	if service != "" {
		envFiles = append(envFiles, ".env."+service+".local")
	}
	if envPath == "" {
		envPath = "config/"
	}
	for _, envFile := range envFiles {
		// Overload lets later files override earlier ones
		_ = godotenv.Overload(filepath.Join(envPath, envFile))
	}
}

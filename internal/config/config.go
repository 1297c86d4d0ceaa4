package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const envPrefix = "SCT"

// BaseConfig holds base configuration
type BaseConfig struct {
	Debug     bool   `mapstructure:"debug"`
	SentryDSN string `mapstructure:"sentry_dsn"`
}

// DatabaseConfig holds database configuration.
// Driver is either "postgres" or "sqlite"; Path is only read for sqlite.
type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"`
	Path            string        `mapstructure:"path"`
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
}

// EthereumConfig holds the ledger connection and registry contract settings
type EthereumConfig struct {
	RPCURL           string        `mapstructure:"rpc_url"`
	WebSocketURL     string        `mapstructure:"websocket_url"`
	ContractAddress  string        `mapstructure:"contract_address"`
	ArtifactPath     string        `mapstructure:"artifact_path"`
	ChainID          string        `mapstructure:"chain_id"`
	StartBlock       uint64        `mapstructure:"start_block"`
	QueryTimeout     time.Duration `mapstructure:"query_timeout"`
	ResumeFromCursor bool          `mapstructure:"resume_from_cursor"`
}

// IngestConfig holds ingestion loop settings
type IngestConfig struct {
	EventTimeout       time.Duration `mapstructure:"event_timeout"`
	CursorSaveFreq     uint64        `mapstructure:"cursor_save_freq"`
	CursorSaveDelay    time.Duration `mapstructure:"cursor_save_delay"`
	SubscriptionBuffer int           `mapstructure:"subscription_buffer"`
}

// NATSConfig holds NATS JetStream configuration. An empty URL disables publishing.
type NATSConfig struct {
	URL            string        `mapstructure:"url"`
	StreamName     string        `mapstructure:"stream_name"`
	MaxReconnects  int           `mapstructure:"max_reconnects"`
	ReconnectWait  time.Duration `mapstructure:"reconnect_wait"`
	ConnectionName string        `mapstructure:"connection_name"`
}

// RedisConfig holds redis configuration. An empty URL disables caching and rate limiting.
type RedisConfig struct {
	URL           string        `mapstructure:"url"`
	ActorCacheTTL time.Duration `mapstructure:"actor_cache_ttl"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host                 string `mapstructure:"host"`
	Port                 int    `mapstructure:"port"`
	ReadTimeout          int    `mapstructure:"read_timeout"`  // in seconds
	WriteTimeout         int    `mapstructure:"write_timeout"` // in seconds
	IdleTimeout          int    `mapstructure:"idle_timeout"`  // in seconds
	PayloadRatePerMinute int    `mapstructure:"payload_rate_per_minute"`
}

// AuthConfig holds authentication configuration for the payload ingest route
type AuthConfig struct {
	JWTPublicKey string   `mapstructure:"jwt_public_key"`
	APIKeys      []string `mapstructure:"api_keys"`
}

// RiskConfig holds the risk rule weights and label thresholds
type RiskConfig struct {
	OriginMissing   int           `mapstructure:"origin_missing"`
	NoHandoffs      int           `mapstructure:"no_handoffs"`
	NoSensors       int           `mapstructure:"no_sensors"`
	Stale           int           `mapstructure:"stale"`
	StaleAfter      time.Duration `mapstructure:"stale_after"`
	SuspiciousAbove int           `mapstructure:"suspicious_above"`
	ReviewAbove     int           `mapstructure:"review_above"`
}

// LookupConfig holds actor lookup settings
type LookupConfig struct {
	Concurrency int `mapstructure:"concurrency"`
}

// IndexerConfig holds configuration for provenance-indexer
type IndexerConfig struct {
	BaseConfig `mapstructure:",squash"`
	Database   DatabaseConfig `mapstructure:"database"`
	Ethereum   EthereumConfig `mapstructure:"ethereum"`
	Ingest     IngestConfig   `mapstructure:"ingest"`
	NATS       NATSConfig     `mapstructure:"nats"`
	Redis      RedisConfig    `mapstructure:"redis"`
	Server     ServerConfig   `mapstructure:"server"`
	Auth       AuthConfig     `mapstructure:"auth"`
	Risk       RiskConfig     `mapstructure:"risk"`
	Lookup     LookupConfig   `mapstructure:"lookup"`
	ActorsPath string         `mapstructure:"actors_path"`
}

// CLIConfig holds configuration for provenance-cli
type CLIConfig struct {
	BaseConfig `mapstructure:",squash"`
	Database   DatabaseConfig `mapstructure:"database"`
	Ethereum   EthereumConfig `mapstructure:"ethereum"`
	Ingest     IngestConfig   `mapstructure:"ingest"`
	Risk       RiskConfig     `mapstructure:"risk"`
	Lookup     LookupConfig   `mapstructure:"lookup"`
}

// LoadIndexerConfig loads configuration for provenance-indexer
func LoadIndexerConfig(configFile string, envPath string) (*IndexerConfig, error) {
	v := configureViper("provenance-indexer", configFile, envPath)

	setDatabaseDefaults(v)
	setLedgerDefaults(v)
	setRiskDefaults(v)
	v.SetDefault("debug", false)
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 4000)
	v.SetDefault("server.read_timeout", 10)
	v.SetDefault("server.write_timeout", 10)
	v.SetDefault("server.idle_timeout", 120)
	v.SetDefault("server.payload_rate_per_minute", 0)
	v.SetDefault("nats.max_reconnects", 10)
	v.SetDefault("nats.reconnect_wait", "2s")
	v.SetDefault("nats.stream_name", "PROVENANCE_EVENTS")
	v.SetDefault("nats.connection_name", "provenance-indexer")
	v.SetDefault("redis.actor_cache_ttl", "10m")

	if err := readInConfig(v); err != nil {
		return nil, err
	}

	var cfg IndexerConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Database.validate(); err != nil {
		return nil, err
	}
	if err := cfg.Ethereum.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// LoadCLIConfig loads configuration for provenance-cli
func LoadCLIConfig(configFile string, envPath string) (*CLIConfig, error) {
	v := configureViper("provenance-cli", configFile, envPath)

	setDatabaseDefaults(v)
	setLedgerDefaults(v)
	setRiskDefaults(v)

	if err := readInConfig(v); err != nil {
		return nil, err
	}

	var cfg CLIConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Database.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDatabaseDefaults(v *viper.Viper) {
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "./supplychain.db")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.sslmode", "disable")
}

func setLedgerDefaults(v *viper.Viper) {
	v.SetDefault("ethereum.rpc_url", "http://127.0.0.1:8545")
	v.SetDefault("ethereum.chain_id", "eip155:31337")
	v.SetDefault("ethereum.artifact_path", "./artifacts/contracts/CustodyRegistry.sol/CustodyRegistry.json")
	v.SetDefault("ethereum.start_block", 0)
	v.SetDefault("ethereum.query_timeout", "1m")
	v.SetDefault("ethereum.resume_from_cursor", false)
	v.SetDefault("ingest.event_timeout", "10s")
	v.SetDefault("ingest.cursor_save_freq", 10)
	v.SetDefault("ingest.cursor_save_delay", "5s")
	v.SetDefault("ingest.subscription_buffer", 256)
	v.SetDefault("lookup.concurrency", 8)
}

func setRiskDefaults(v *viper.Viper) {
	v.SetDefault("risk.origin_missing", 60)
	v.SetDefault("risk.no_handoffs", 20)
	v.SetDefault("risk.no_sensors", 10)
	v.SetDefault("risk.stale", 10)
	v.SetDefault("risk.stale_after", "24h")
	v.SetDefault("risk.suspicious_above", 40)
	v.SetDefault("risk.review_above", 10)
}

// readInConfig reads the config file, falling back to env only when no file exists
func readInConfig(v *viper.Viper) error {
	err := v.ReadInConfig()
	if err == nil {
		return nil
	}

	var notFound viper.ConfigFileNotFoundError
	if errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("failed to read config: %w", err)
}

func (c *DatabaseConfig) validate() error {
	switch c.Driver {
	case "sqlite":
		if c.Path == "" {
			return errors.New("database.path is required for sqlite")
		}
	case "postgres":
		if c.Host == "" {
			return errors.New("database.host is required")
		}
		if c.DBName == "" {
			return errors.New("database.dbname is required")
		}
	default:
		return fmt.Errorf("unsupported database.driver %q", c.Driver)
	}
	return nil
}

func (c *EthereumConfig) validate() error {
	if c.ContractAddress == "" {
		return errors.New("ethereum.contract_address is required")
	}
	if c.RPCURL == "" && c.WebSocketURL == "" {
		return errors.New("ethereum.rpc_url or ethereum.websocket_url is required")
	}
	return nil
}

// configureViper returns a viper instance with the config file and environment variables set
func configureViper(service string, configFile string, envPath string) *viper.Viper {
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

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	bindAllEnvVars(v)
	return v
}

// bindAllEnvVars explicitly binds every key so env-only deployments unmarshal fully
func bindAllEnvVars(v *viper.Viper) {
	keys := []string{
		"debug",
		"sentry_dsn",
		"actors_path",
		// Database
		"database.driver",
		"database.path",
		"database.host",
		"database.port",
		"database.user",
		"database.password",
		"database.dbname",
		"database.sslmode",
		"database.max_open_conns",
		"database.max_idle_conns",
		"database.conn_max_lifetime",
		"database.conn_max_idle_time",
		// Ethereum
		"ethereum.rpc_url",
		"ethereum.websocket_url",
		"ethereum.contract_address",
		"ethereum.artifact_path",
		"ethereum.chain_id",
		"ethereum.start_block",
		"ethereum.query_timeout",
		"ethereum.resume_from_cursor",
		// Ingest
		"ingest.event_timeout",
		"ingest.cursor_save_freq",
		"ingest.cursor_save_delay",
		"ingest.subscription_buffer",
		// NATS
		"nats.url",
		"nats.stream_name",
		"nats.max_reconnects",
		"nats.reconnect_wait",
		"nats.connection_name",
		// Redis
		"redis.url",
		"redis.actor_cache_ttl",
		// Server
		"server.host",
		"server.port",
		"server.read_timeout",
		"server.write_timeout",
		"server.idle_timeout",
		"server.payload_rate_per_minute",
		// Auth
		"auth.jwt_public_key",
		"auth.api_keys",
		// Risk
		"risk.origin_missing",
		"risk.no_handoffs",
		"risk.no_sensors",
		"risk.stale",
		"risk.stale_after",
		"risk.suspicious_above",
		"risk.review_above",
		// Lookup
		"lookup.concurrency",
	}

	for _, key := range keys {
		_ = v.BindEnv(key)
	}
}

// loadEnv loads environment variables from the config directory
func loadEnv(envPath string, service string) {
	envFiles := []string{".env", ".env.local"}
	if service != "" {
		envFiles = append(envFiles, ".env."+service+".local")
	}

	if envPath == "" {
		envPath = "config/"
	}

	for _, envFile := range envFiles {
		_ = godotenv.Overload(filepath.Join(envPath, envFile)) // later files win
	}
}

// ChdirRepoRoot changes the current working directory to the repository root
func ChdirRepoRoot() {
	cwd, _ := os.Getwd()
	for range make([]struct{}, 5) {
		if _, err := os.Stat(filepath.Join(cwd, "config")); err == nil {
			_ = os.Chdir(cwd)
			return
		}
		cwd = filepath.Dir(cwd)
	}
}

// DSN returns the postgres connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

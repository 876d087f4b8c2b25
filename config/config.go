package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Data sources the listing snapshot can be loaded from.
const (
	SourceCSV      = "csv"
	SourcePostgres = "postgres"
	SourceSQLite   = "sqlite"
)

// Config holds all application configuration. Values are layered as
// defaults, then the optional TOML file, then .env and the environment.
type Config struct {
	DataPath   string `toml:"data_path"`
	DataSource string `toml:"data_source"`
	SyncStore  string `toml:"sync_store"`
	Port       int    `toml:"port"`
	Debug      bool   `toml:"debug"`

	PostgresHost     string `toml:"postgres_host"`
	PostgresPort     string `toml:"postgres_port"`
	PostgresUser     string `toml:"postgres_user"`
	PostgresPassword string `toml:"postgres_password"`
	PostgresDB       string `toml:"postgres_db"`
	PostgresSSLMode  string `toml:"postgres_sslmode"`
	SQLitePath       string `toml:"sqlite_path"`

	RedisAddr       string `toml:"redis_addr"`
	RedisPassword   string `toml:"redis_password"`
	RedisDB         int    `toml:"redis_db"`
	CacheTTLSeconds int    `toml:"cache_ttl_seconds"`
	WarmCache       bool   `toml:"warm_cache"`
	WarmConcurrency int    `toml:"warm_concurrency"`
	WarmRateMs      int    `toml:"warm_rate_ms"`

	MaxRetries int    `toml:"max_retries"`
	ChromeBin  string `toml:"chrome_bin"`
}

// Default returns the configuration used when nothing overrides it.
func Default() *Config {
	return &Config{
		DataPath:   "airbnb_cleaned.csv",
		DataSource: SourceCSV,
		Port:       8050,

		PostgresHost:     "localhost",
		PostgresPort:     "5432",
		PostgresUser:     "dashboard",
		PostgresPassword: "dashboard",
		PostgresDB:       "rental_db",
		PostgresSSLMode:  "disable",
		SQLitePath:       "./listings.db",

		CacheTTLSeconds: 3600,
		WarmConcurrency: 4,
		MaxRetries:      5,
	}
}

// Load builds the Config. path names an optional TOML file; an empty path
// skips it, a missing or malformed file is an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %q: %w", path, err)
		}
	}

	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	cfg.DataPath = getEnv("DATA_PATH", cfg.DataPath)
	cfg.DataSource = strings.ToLower(getEnv("DATA_SOURCE", cfg.DataSource))
	cfg.SyncStore = strings.ToLower(getEnv("SYNC_STORE", cfg.SyncStore))
	cfg.Port = getEnvInt("PORT", cfg.Port)
	cfg.Debug = getEnvBool("DEBUG", cfg.Debug)

	cfg.PostgresHost = getEnv("POSTGRES_HOST", cfg.PostgresHost)
	cfg.PostgresPort = getEnv("POSTGRES_PORT", cfg.PostgresPort)
	cfg.PostgresUser = getEnv("POSTGRES_USER", cfg.PostgresUser)
	cfg.PostgresPassword = getEnv("POSTGRES_PASSWORD", cfg.PostgresPassword)
	cfg.PostgresDB = getEnv("POSTGRES_DB", cfg.PostgresDB)
	cfg.PostgresSSLMode = getEnv("POSTGRES_SSLMODE", cfg.PostgresSSLMode)
	cfg.SQLitePath = getEnv("SQLITE_PATH", cfg.SQLitePath)

	cfg.RedisAddr = getEnv("REDIS_ADDR", cfg.RedisAddr)
	cfg.RedisPassword = getEnv("REDIS_PASSWORD", cfg.RedisPassword)
	cfg.RedisDB = getEnvInt("REDIS_DB", cfg.RedisDB)
	cfg.CacheTTLSeconds = getEnvInt("CACHE_TTL_SECONDS", cfg.CacheTTLSeconds)
	cfg.WarmCache = getEnvBool("WARM_CACHE", cfg.WarmCache)
	cfg.WarmConcurrency = getEnvInt("WARM_CONCURRENCY", cfg.WarmConcurrency)
	cfg.WarmRateMs = getEnvInt("WARM_RATE_MS", cfg.WarmRateMs)

	cfg.MaxRetries = getEnvInt("MAX_RETRIES", cfg.MaxRetries)
	cfg.ChromeBin = getEnv("CHROME_BIN", cfg.ChromeBin)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the application cannot start with.
func (c *Config) Validate() error {
	switch c.DataSource {
	case SourceCSV, SourcePostgres, SourceSQLite:
	default:
		return fmt.Errorf("config: unknown data source %q", c.DataSource)
	}
	switch c.SyncStore {
	case "", SourcePostgres, SourceSQLite:
	default:
		return fmt.Errorf("config: unknown sync store %q", c.SyncStore)
	}
	if c.DataSource == SourceCSV && c.DataPath == "" {
		return fmt.Errorf("config: DATA_PATH is required for the csv data source")
	}
	if c.WarmRateMs < 0 {
		return fmt.Errorf("config: invalid warm rate %dms", c.WarmRateMs)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("config: invalid port %d", c.Port)
	}
	return nil
}

// StoreDriver returns the database/sql driver and DSN of the listing store
// in use: the data source itself, or the mirror target when reading CSV.
// Both are empty when no store is configured.
func (c *Config) StoreDriver() (driver, dsn string) {
	kind := c.DataSource
	if kind == SourceCSV {
		kind = c.SyncStore
	}
	switch kind {
	case SourcePostgres:
		return "postgres", c.DSN()
	case SourceSQLite:
		return "sqlite3", c.SQLitePath
	}
	return "", ""
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return "host=" + c.PostgresHost +
		" port=" + c.PostgresPort +
		" user=" + c.PostgresUser +
		" password=" + c.PostgresPassword +
		" dbname=" + c.PostgresDB +
		" sslmode=" + c.PostgresSSLMode
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		b, err := strconv.ParseBool(val)
		if err == nil {
			return b
		}
	}
	return fallback
}

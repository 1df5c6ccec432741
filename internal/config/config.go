package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server  ServerConfig
	Logger  LoggerConfig
	Catalog CatalogConfig
	Pricing PricingConfig
	Cache   CacheConfig
	Docs    DocsConfig
}

type ServerConfig struct {
	AppEnv string
	Port   string
}

type LoggerConfig struct {
	Level             string
	Encoding          string
	DisableCaller     bool
	DisableStacktrace bool
}

type CatalogConfig struct {
	Backend     string // memory | sqlite
	SQLiteDSN   string
	RepeatQuery string // reuse | resynthesize
}

type PricingConfig struct {
	// BracketsFile vacío usa la tabla embebida
	BracketsFile string
}

type CacheConfig struct {
	TTL time.Duration
}

type DocsConfig struct {
	SpecDir string
}

const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
)

func LoadConfig() *Config {
	// Solo cargar .env en desarrollo local
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			log.Println("Error loading .env file:", err)
		} else {
			log.Println(".env file loaded successfully")
		}
	}

	return &Config{
		Server: ServerConfig{
			AppEnv: getEnv("APP_ENV", "production"),
			Port:   getEnv("PORT", "8080"),
		},
		Logger: LoggerConfig{
			Level:             getEnv("LOGGER_LEVEL", "info"),
			Encoding:          getEnv("LOGGER_ENCODING", "json"),
			DisableCaller:     getEnvBool("LOGGER_DISABLE_CALLER", false),
			DisableStacktrace: getEnvBool("LOGGER_DISABLE_STACKTRACE", true),
		},
		Catalog: CatalogConfig{
			Backend:     getEnv("CATALOG_BACKEND", BackendMemory),
			SQLiteDSN:   getEnv("CATALOG_SQLITE_DSN", ":memory:"),
			RepeatQuery: getEnv("CATALOG_REPEAT_QUERY", "reuse"),
		},
		Pricing: PricingConfig{
			BracketsFile: getEnv("PRICING_BRACKETS_FILE", ""),
		},
		Cache: CacheConfig{
			TTL: time.Duration(getEnvInt("CACHE_TTL_SECONDS", 300)) * time.Second,
		},
		Docs: DocsConfig{
			SpecDir: getEnv("DOCS_SPEC_DIR", "./api"),
		},
	}
}

// IsDevelopment indica si APP_ENV es development.
func (c *Config) IsDevelopment() bool {
	return c.Server.AppEnv == "development"
}

// Validate comprueba los valores enumerados.
func (c *Config) Validate() error {
	switch c.Catalog.Backend {
	case BackendMemory, BackendSQLite:
	default:
		return fmt.Errorf("invalid CATALOG_BACKEND %q: want memory or sqlite", c.Catalog.Backend)
	}
	switch c.Catalog.RepeatQuery {
	case "reuse", "resynthesize":
	default:
		return fmt.Errorf("invalid CATALOG_REPEAT_QUERY %q: want reuse or resynthesize", c.Catalog.RepeatQuery)
	}
	switch c.Logger.Encoding {
	case "json", "console":
	default:
		return fmt.Errorf("invalid LOGGER_ENCODING %q: want json or console", c.Logger.Encoding)
	}
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}
	if c.Cache.TTL <= 0 {
		return fmt.Errorf("CACHE_TTL_SECONDS must be positive")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
		log.Printf("Invalid integer for %s: %q, using %d", key, value, fallback)
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

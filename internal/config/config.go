package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration
type Config struct {
	Server    ServerConfig
	Engine    EngineConfig
	MongoDB   MongoDBConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
	Keycloak  KeycloakConfig
	JWT       JWTConfig
	MinIO     MinIOConfig
	Log       LogConfig
}

type ServerConfig struct {
	Port         string
	Host         string
	Environment  string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// EngineConfig selects and addresses the document engine.
type EngineConfig struct {
	Backend       string // elasticsearch | opensearch | mongo | memory
	Index         string
	Addresses     []string
	Username      string
	Password      string
	SkipTLSVerify bool
	TypeMode      string // mapping | index
	Refresh       string // "" | true | false | wait_for
}

type MongoDBConfig struct {
	URI      string
	Database string
	Timeout  time.Duration
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type RateLimitConfig struct {
	Enabled       bool
	RPS           float64
	Burst         int
	UseRedis      bool
	WindowSeconds int
}

type KeycloakConfig struct {
	URL      string
	Realm    string
	ClientID string
}

type JWTConfig struct {
	Secret string
}

type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Bucket    string
}

type LogConfig struct {
	Level  string
	Format string
}

const (
	BackendElasticsearch = "elasticsearch"
	BackendOpenSearch    = "opensearch"
	BackendMongo         = "mongo"
	BackendMemory        = "memory"
)

// DefaultIndex is the index every gateway operation addresses unless
// ENGINE_INDEX overrides it at deployment.
const DefaultIndex = "mydata"

// LoadConfig loads configuration from environment variables and .env file
func LoadConfig() (*Config, error) {
	_ = godotenv.Load(".env")

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_ENVIRONMENT", "development")
	v.SetDefault("SERVER_READ_TIMEOUT", 30)
	v.SetDefault("SERVER_WRITE_TIMEOUT", 30)
	v.SetDefault("ENGINE_BACKEND", BackendElasticsearch)
	v.SetDefault("ENGINE_INDEX", DefaultIndex)
	v.SetDefault("ENGINE_ADDRESSES", "http://localhost:9200")
	v.SetDefault("ENGINE_TYPE_MODE", "mapping")
	v.SetDefault("MONGODB_DATABASE", "docgate")
	v.SetDefault("MONGODB_TIMEOUT", 10)
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("RATE_LIMIT_RPS", 10.0)
	v.SetDefault("RATE_LIMIT_BURST", 20)
	v.SetDefault("RATE_LIMIT_WINDOW_SECONDS", 1)
	v.SetDefault("MINIO_BUCKET", "docgate-exports")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")

	cfg := &Config{
		Server: ServerConfig{
			Port:         v.GetString("SERVER_PORT"),
			Host:         v.GetString("SERVER_HOST"),
			Environment:  v.GetString("SERVER_ENVIRONMENT"),
			ReadTimeout:  time.Duration(v.GetInt("SERVER_READ_TIMEOUT")) * time.Second,
			WriteTimeout: time.Duration(v.GetInt("SERVER_WRITE_TIMEOUT")) * time.Second,
		},
		Engine: EngineConfig{
			Backend:       strings.ToLower(v.GetString("ENGINE_BACKEND")),
			Index:         v.GetString("ENGINE_INDEX"),
			Addresses:     splitList(v.GetString("ENGINE_ADDRESSES")),
			Username:      v.GetString("ENGINE_USERNAME"),
			Password:      os.Getenv("ENGINE_PASSWORD"),
			SkipTLSVerify: v.GetBool("ENGINE_SKIP_TLS_VERIFY"),
			TypeMode:      v.GetString("ENGINE_TYPE_MODE"),
			Refresh:       strings.ToLower(v.GetString("ENGINE_REFRESH")),
		},
		MongoDB: MongoDBConfig{
			URI:      v.GetString("MONGODB_URI"),
			Database: v.GetString("MONGODB_DATABASE"),
			Timeout:  time.Duration(v.GetInt("MONGODB_TIMEOUT")) * time.Second,
		},
		Redis: RedisConfig{
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetString("REDIS_PORT"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		RateLimit: RateLimitConfig{
			Enabled:       v.GetBool("RATE_LIMIT_ENABLED"),
			RPS:           v.GetFloat64("RATE_LIMIT_RPS"),
			Burst:         v.GetInt("RATE_LIMIT_BURST"),
			UseRedis:      v.GetBool("RATE_LIMIT_USE_REDIS"),
			WindowSeconds: v.GetInt("RATE_LIMIT_WINDOW_SECONDS"),
		},
		Keycloak: KeycloakConfig{
			URL:      v.GetString("KEYCLOAK_URL"),
			Realm:    v.GetString("KEYCLOAK_REALM"),
			ClientID: v.GetString("KEYCLOAK_CLIENT_ID"),
		},
		JWT: JWTConfig{
			Secret: os.Getenv("JWT_SECRET"),
		},
		MinIO: MinIOConfig{
			Endpoint:  v.GetString("MINIO_ENDPOINT"),
			AccessKey: v.GetString("MINIO_ACCESS_KEY"),
			SecretKey: os.Getenv("MINIO_SECRET_KEY"),
			UseSSL:    v.GetBool("MINIO_USE_SSL"),
			Bucket:    v.GetString("MINIO_BUCKET"),
		},
		Log: LogConfig{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
	}

	return cfg, nil
}

// Validate checks the settings the selected backend and features depend on.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Engine.Index) == "" {
		errs = append(errs, errors.New("ENGINE_INDEX must not be empty"))
	}
	switch c.Engine.Backend {
	case BackendElasticsearch, BackendOpenSearch:
		if len(c.Engine.Addresses) == 0 {
			errs = append(errs, fmt.Errorf("ENGINE_ADDRESSES is required for the %s backend", c.Engine.Backend))
		}
	case BackendMongo:
		if c.MongoDB.URI == "" {
			errs = append(errs, errors.New("MONGODB_URI is required for the mongo backend"))
		}
	case BackendMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown ENGINE_BACKEND %q", c.Engine.Backend))
	}
	switch c.Engine.TypeMode {
	case "", "mapping", "index":
	default:
		errs = append(errs, fmt.Errorf("unknown ENGINE_TYPE_MODE %q", c.Engine.TypeMode))
	}
	switch c.Engine.Refresh {
	case "", "true", "false", "wait_for":
	default:
		errs = append(errs, fmt.Errorf("unknown ENGINE_REFRESH %q", c.Engine.Refresh))
	}
	if c.RateLimit.Enabled && c.RateLimit.UseRedis && c.Redis.Host == "" {
		errs = append(errs, errors.New("RATE_LIMIT_USE_REDIS requires REDIS_HOST"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/spec-kit/middleman-engine/internal/domain"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App      AppConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Logger   LoggerConfig
	Auth     AuthConfig
	Roles    RolesConfig
	Channels ChannelConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AuthConfig defines gateway authentication parameters. The gateway (the
// chat-platform bot process) exchanges its API key for a short-lived JWT.
type AuthConfig struct {
	JWTSecret             string
	AccessTokenTTLMinutes int
	GatewayKeyHash        string
	BcryptCost            int
}

// RolesConfig maps trust tiers to the platform role ids that grant them,
// plus the TTL for cached per-actor role lookups.
type RolesConfig struct {
	TierRoles       map[domain.Tier]int64
	CacheTTLSeconds int
}

// ChannelConfig carries the platform-side channel ids the engine reports
// to collaborators (log and proof destinations).
type ChannelConfig struct {
	LogChannelID   int64
	ProofChannelID int64
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	tierRoles, err := loadTierRoles()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "middleman-engine"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			JWTSecret:             getEnv("AUTH_JWT_SECRET", "dev-secret"),
			AccessTokenTTLMinutes: getEnvAsInt("AUTH_ACCESS_TOKEN_TTL_MINUTES", 60),
			GatewayKeyHash:        os.Getenv("AUTH_GATEWAY_KEY_HASH"),
			BcryptCost:            getEnvAsInt("AUTH_BCRYPT_COST", 12),
		},
		Roles: RolesConfig{
			TierRoles:       tierRoles,
			CacheTTLSeconds: getEnvAsInt("ROLE_CACHE_TTL_SECONDS", 30),
		},
		Channels: ChannelConfig{
			LogChannelID:   getEnvAsInt64("LOG_CHANNEL_ID", 0),
			ProofChannelID: getEnvAsInt64("PROOF_CHANNEL_ID", 0),
		},
	}

	return cfg, nil
}

var tierRoleEnvKeys = map[domain.Tier]string{
	domain.TierTrial:     "TRIAL_MIDDLEMAN_ROLE_ID",
	domain.TierMiddleman: "MIDDLEMAN_ROLE_ID",
	domain.TierPro:       "PRO_MIDDLEMAN_ROLE_ID",
	domain.TierHead:      "HEAD_MIDDLEMAN_ROLE_ID",
	domain.TierOwner:     "OWNER_ROLE_ID",
}

func loadTierRoles() (map[domain.Tier]int64, error) {
	roles := make(map[domain.Tier]int64, len(tierRoleEnvKeys))
	for tier, key := range tierRoleEnvKeys {
		val := os.Getenv(key)
		if val == "" {
			continue
		}
		parsed, err := strconv.ParseInt(val, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", key, err)
		}
		roles[tier] = parsed
	}
	return roles, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// CacheTTL returns the role cache TTL duration.
func (r RolesConfig) CacheTTL() time.Duration {
	if r.CacheTTLSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(r.CacheTTLSeconds) * time.Second
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsInt64(key string, fallback int64) int64 {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}

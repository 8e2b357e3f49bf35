package configs

import (
	"os"
	"strconv"
	"strings"
	"time"

	"idcard.link/configs/configslog"

	"github.com/joho/godotenv"
)

// AppConfig holds runtime settings. Values come from the environment, optionally seeded from .env.
type AppConfig struct {
	Env        string
	Host       string
	Port       string
	AppName    string
	CORSOrigin string

	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	DBPath     string

	JWTSecret      string
	SessionTTL     time.Duration
	CookieName     string
	CookieSecure   bool
	RequestTimeout time.Duration

	StoragePath string

	SeniorPrefix         string
	YouthPrefix          string
	AllowCardNoEdit      bool
	AllowLegacyPasswords bool

	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	RedisNamespace string

	TokenCleanupSchedule string
	LoginRateLimit       int
}

var current *AppConfig

// LoadEnv reads .env when present. Missing file is not an error.
func LoadEnv() {
	if err := godotenv.Load(); err != nil {
		configslog.SLog.Info("No .env file found, using system environment")
		return
	}
	configslog.SLog.Info(".env file loaded")
}

// GetEnv returns the variable or the optional default.
func GetEnv(key string, defaultValue ...string) string {
	value, exists := os.LookupEnv(key)
	if (!exists || strings.TrimSpace(value) == "") && len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return strings.TrimSpace(value)
}

func getEnvBool(key string, def bool) bool {
	v := GetEnv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		configslog.SLog.Warnf("Invalid %s value (%q), using default: %v", key, v, def)
		return def
	}
	return b
}

func getEnvInt(key string, def int) int {
	v := GetEnv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		configslog.SLog.Warnf("Invalid %s value (%q), using default: %d", key, v, def)
		return def
	}
	return n
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	v := GetEnv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		configslog.SLog.Warnf("Invalid %s value (%q), using default: %s", key, v, def)
		return def
	}
	return d
}

// LoadConfig builds the configuration from the environment and caches it.
func LoadConfig() *AppConfig {
	env := GetEnv("APP_ENV", "development")
	cfg := &AppConfig{
		Env:        env,
		Host:       GetEnv("APP_HOST", "0.0.0.0"),
		Port:       GetEnv("PORT", "3001"),
		AppName:    GetEnv("APP_NAME", "ID Card Issuance"),
		CORSOrigin: GetEnv("CORS_ORIGIN"),

		DBDriver:   strings.ToLower(GetEnv("DB_DRIVER", "postgres")),
		DBHost:     GetEnv("DB_HOST", "localhost"),
		DBPort:     GetEnv("DB_PORT"),
		DBUser:     GetEnv("DB_USER"),
		DBPassword: GetEnv("DB_PASSWORD"),
		DBName:     GetEnv("DB_NAME", "idcards"),
		DBSSLMode:  GetEnv("DB_SSLMODE", "disable"),
		DBPath:     GetEnv("DB_PATH", "idcards.db"),

		JWTSecret:      GetEnv("JWT_SECRET"),
		SessionTTL:     getEnvDuration("SESSION_TTL", 8*time.Hour),
		CookieName:     GetEnv("SESSION_COOKIE", "token"),
		CookieSecure:   getEnvBool("COOKIE_SECURE", strings.EqualFold(env, "production")),
		RequestTimeout: getEnvDuration("REQUEST_TIMEOUT", 15*time.Second),

		StoragePath: GetEnv("STORAGE_PATH", "uploads/Images"),

		SeniorPrefix:         GetEnv("SENIOR_ID_PREFIX", "LC-SC-"),
		YouthPrefix:          GetEnv("YOUTH_ID_PREFIX", "LC-YMC-"),
		AllowCardNoEdit:      getEnvBool("ALLOW_CARD_NO_EDIT", true),
		AllowLegacyPasswords: getEnvBool("ALLOW_LEGACY_PASSWORDS", false),

		RedisAddr:      GetEnv("REDIS_ADDR"),
		RedisPassword:  GetEnv("REDIS_PASSWORD"),
		RedisDB:        getEnvInt("REDIS_DB", 0),
		RedisNamespace: GetEnv("REDIS_NAMESPACE", "idcard"),

		TokenCleanupSchedule: GetEnv("TOKEN_CLEANUP_SCHEDULE", "@hourly"),
		LoginRateLimit:       getEnvInt("LOGIN_RATE_LIMIT", 10),
	}

	if cfg.JWTSecret == "" {
		if cfg.IsProduction() {
			configslog.SLog.Fatal("JWT_SECRET is required in production")
		}
		configslog.SLog.Warn("JWT_SECRET not set, using development secret")
		cfg.JWTSecret = "dev-only-insecure-secret"
	}

	current = cfg
	return cfg
}

// Get returns the loaded configuration, loading it on first use.
func Get() *AppConfig {
	if current == nil {
		return LoadConfig()
	}
	return current
}

// Set overrides the cached configuration (tests).
func Set(cfg *AppConfig) {
	current = cfg
}

func (c *AppConfig) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// Addr host:port for fiber Listen.
func (c *AppConfig) Addr() string {
	return c.Host + ":" + c.Port
}

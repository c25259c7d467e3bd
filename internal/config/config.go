package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App         AppConfig
	Database    DatabaseConfig
	JWT         JWTConfig
	Redis       RedisConfig
	S3          S3Config
	Upload      UploadConfig
	Application ApplicationConfig
	RateLimit   RateLimitConfig
	Admin       AdminConfig
}

type AppConfig struct {
	AppName      string
	Environment  string
	HTTPPort     string
	CookieSecure bool
}

type DatabaseConfig struct {
	DBHost     string
	DBPort     string
	DBName     string
	DBUser     string
	DBPassword string
	DBSSLMode  string

	ConnectTimeout        time.Duration
	PoolMaxConns          int32
	PoolMinConns          int32
	PoolMaxConnLifetime   time.Duration
	PoolMaxConnIdleTime   time.Duration
	PoolHealthCheckPeriod time.Duration
}

type JWTConfig struct {
	AccessSecret     string
	RefreshSecret    string
	AccessExpiresIn  time.Duration
	RefreshExpiresIn time.Duration
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type S3Config struct {
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	// Endpoint overrides the AWS endpoint for S3 compatible stores.
	Endpoint string
}

type UploadConfig struct {
	MaxBytes int64
	Timeout  time.Duration
}

type ApplicationConfig struct {
	// AllowDuplicates lets an applicant apply to the same job more than once.
	AllowDuplicates bool
}

type RateLimitConfig struct {
	AuthLimit  int
	AuthWindow time.Duration
}

type AdminConfig struct {
	// RegistrationCode gates ADMIN self-registration. Empty disables it.
	RegistrationCode string
}

const (
	defaultUploadMaxBytes = 2 << 20
	defaultUploadTimeout  = 30 * time.Second
)

var errMissingRequiredEnv = errors.New("missing required environment variables")

// Load reads the environment, after merging an optional .env file from the
// working directory. Variables already set win over the file.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{}

	var missing []string
	var invalid []string
	req := func(key string) string {
		v := strings.TrimSpace(os.Getenv(key))
		if v == "" {
			missing = append(missing, key)
		}
		return v
	}
	opt := func(key string) string {
		return strings.TrimSpace(os.Getenv(key))
	}
	dur := func(key string, def time.Duration) time.Duration {
		raw := opt(key)
		if raw == "" {
			return def
		}
		d, err := time.ParseDuration(raw)
		if err != nil || d < 0 {
			invalid = append(invalid, key)
			return def
		}
		return d
	}
	num := func(key string, def int64) int64 {
		raw := opt(key)
		if raw == "" {
			return def
		}
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || v < 0 {
			invalid = append(invalid, key)
			return def
		}
		return v
	}
	flag := func(key string, def bool) bool {
		raw := opt(key)
		if raw == "" {
			return def
		}
		v, err := strconv.ParseBool(raw)
		if err != nil {
			invalid = append(invalid, key)
			return def
		}
		return v
	}

	cfg.App = AppConfig{
		AppName:      req("APP_NAME"),
		Environment:  req("APP_ENV"),
		HTTPPort:     req("HTTP_PORT"),
		CookieSecure: flag("COOKIE_SECURE", opt("APP_ENV") == "production"),
	}

	cfg.Database = DatabaseConfig{
		DBHost:     req("DB_HOST"),
		DBPort:     req("DB_PORT"),
		DBName:     req("DB_NAME"),
		DBUser:     req("DB_USER"),
		DBPassword: opt("DB_PASSWORD"),
		DBSSLMode:  opt("DB_SSL_MODE"),

		ConnectTimeout:        dur("DB_CONNECT_TIMEOUT", 5*time.Second),
		PoolMaxConns:          int32(num("DB_POOL_MAX_CONNS", 0)),
		PoolMinConns:          int32(num("DB_POOL_MIN_CONNS", 0)),
		PoolMaxConnLifetime:   dur("DB_POOL_MAX_CONN_LIFETIME", 0),
		PoolMaxConnIdleTime:   dur("DB_POOL_MAX_CONN_IDLE_TIME", 0),
		PoolHealthCheckPeriod: dur("DB_POOL_HEALTH_CHECK_PERIOD", 0),
	}
	if cfg.Database.DBSSLMode == "" {
		cfg.Database.DBSSLMode = "disable"
	}

	cfg.JWT = JWTConfig{
		AccessSecret:     req("JWT_ACCESS_SECRET"),
		RefreshSecret:    req("JWT_REFRESH_SECRET"),
		AccessExpiresIn:  dur("JWT_ACCESS_EXPIRES_IN", 24*time.Hour),
		RefreshExpiresIn: dur("JWT_REFRESH_EXPIRES_IN", 30*24*time.Hour),
	}

	cfg.Redis = RedisConfig{
		Host:     opt("REDIS_HOST"),
		Port:     opt("REDIS_PORT"),
		Password: opt("REDIS_PASSWORD"),
		DB:       int(num("REDIS_DB", 0)),
	}
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == "" {
		cfg.Redis.Port = "6379"
	}

	cfg.S3 = S3Config{
		Region:          req("AWS_REGION"),
		Bucket:          req("AWS_S3_BUCKET_NAME"),
		AccessKeyID:     req("AWS_ACCESS_KEY_ID"),
		SecretAccessKey: req("AWS_SECRET_ACCESS_KEY"),
		Endpoint:        opt("AWS_S3_ENDPOINT"),
	}

	cfg.Upload = UploadConfig{
		MaxBytes: num("UPLOAD_MAX_BYTES", defaultUploadMaxBytes),
		Timeout:  dur("UPLOAD_TIMEOUT", defaultUploadTimeout),
	}

	cfg.Application = ApplicationConfig{
		AllowDuplicates: flag("APPLICATION_ALLOW_DUPLICATES", false),
	}

	cfg.RateLimit = RateLimitConfig{
		AuthLimit:  int(num("RATE_LIMIT_AUTH", 10)),
		AuthWindow: dur("RATE_LIMIT_AUTH_WINDOW", time.Minute),
	}

	cfg.Admin = AdminConfig{
		RegistrationCode: opt("ADMIN_REGISTRATION_CODE"),
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("%w: %s", errMissingRequiredEnv, strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("invalid environment variables: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}

// LoadDatabase reads only what the migrate command needs.
func LoadDatabase() (DatabaseConfig, error) {
	_ = godotenv.Load()

	var missing []string
	req := func(key string) string {
		v := strings.TrimSpace(os.Getenv(key))
		if v == "" {
			missing = append(missing, key)
		}
		return v
	}

	cfg := DatabaseConfig{
		DBHost:         req("DB_HOST"),
		DBPort:         req("DB_PORT"),
		DBName:         req("DB_NAME"),
		DBUser:         req("DB_USER"),
		DBPassword:     strings.TrimSpace(os.Getenv("DB_PASSWORD")),
		DBSSLMode:      strings.TrimSpace(os.Getenv("DB_SSL_MODE")),
		ConnectTimeout: 5 * time.Second,
	}
	if cfg.DBSSLMode == "" {
		cfg.DBSSLMode = "disable"
	}

	if len(missing) > 0 {
		return DatabaseConfig{}, fmt.Errorf("%w: %s", errMissingRequiredEnv, strings.Join(missing, ", "))
	}
	return cfg, nil
}

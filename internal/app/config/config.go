// Package config loads the process configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"

	"basic_authn/internal/platform/db"
	"basic_authn/internal/platform/logging"
	"basic_authn/internal/platform/redis"
)

// Password hashing algorithms for new hashes.
const (
	HasherBcrypt   = "bcrypt"
	HasherArgon2id = "argon2id"
)

// HasherConfig selects how new passwords are hashed.
type HasherConfig struct {
	Algorithm  string
	BcryptCost int
}

// Config is the full process configuration.
type Config struct {
	HTTPAddr     string
	CORSOrigins  []string
	Log          logging.Config
	DB           db.Config
	Redis        redis.Config
	UserCacheTTL time.Duration
	Hasher       HasherConfig
}

// Load は .env (任意) と環境変数から設定を読み込む
func Load() (*Config, error) {
	// .env が無いのは正常
	_ = godotenv.Load()

	runMigrations, err := getBool("RUN_MIGRATIONS", true)
	if err != nil {
		return nil, err
	}
	connectTimeout, err := getDuration("DB_CONNECT_TIMEOUT", 60*time.Second)
	if err != nil {
		return nil, err
	}
	cacheTTL, err := getDuration("USER_CACHE_TTL", 5*time.Minute)
	if err != nil {
		return nil, err
	}
	bcryptCost, err := getInt("BCRYPT_COST", 10)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		HTTPAddr:    getEnv("HTTP_ADDR", ":8080"),
		CORSOrigins: getList("CORS_ALLOWED_ORIGINS"),
		Log: logging.Config{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "text"),
		},
		DB: db.Config{
			Driver:         strings.ToLower(getEnv("DB_DRIVER", db.DriverSQLite)),
			Path:           getEnv("DB_PATH", "basic_authn.db"),
			Host:           getEnv("DB_HOST", ""),
			Port:           getEnv("DB_PORT", "5432"),
			User:           getEnv("DB_USER", ""),
			Password:       os.Getenv("DB_PASSWORD"),
			Name:           getEnv("DB_NAME", ""),
			SSLMode:        getEnv("DB_SSLMODE", "disable"),
			ConnectTimeout: connectTimeout,
			RunMigrations:  runMigrations,
		},
		Redis: redis.Config{
			Host:     getEnv("REDIS_HOST", ""),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
		},
		UserCacheTTL: cacheTTL,
		Hasher: HasherConfig{
			Algorithm:  strings.ToLower(getEnv("PASSWORD_HASHER", HasherBcrypt)),
			BcryptCost: bcryptCost,
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.DB.Driver {
	case db.DriverSQLite, db.DriverPostgres:
	default:
		return fmt.Errorf("invalid DB_DRIVER %q: want sqlite or postgres", c.DB.Driver)
	}
	if c.DB.Driver == db.DriverPostgres && (c.DB.Host == "" || c.DB.User == "" || c.DB.Name == "") {
		return fmt.Errorf("missing database config: DB_HOST, DB_USER and DB_NAME are required for postgres")
	}
	switch c.Hasher.Algorithm {
	case HasherBcrypt, HasherArgon2id:
	default:
		return fmt.Errorf("invalid PASSWORD_HASHER %q: want bcrypt or argon2id", c.Hasher.Algorithm)
	}
	if c.Hasher.BcryptCost < bcrypt.MinCost || c.Hasher.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("invalid BCRYPT_COST %d: want %d..%d", c.Hasher.BcryptCost, bcrypt.MinCost, bcrypt.MaxCost)
	}
	return nil
}

func getEnv(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

// getList はカンマ区切りの値を返す。空要素は捨てる
func getList(k string) []string {
	var out []string
	for _, v := range strings.Split(os.Getenv(k), ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func getInt(k string, def int) (int, error) {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid integer env %s=%q", k, v)
	}
	return i, nil
}

func getBool(k string, def bool) (bool, error) {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid boolean env %s=%q", k, v)
	}
	return b, nil
}

func getDuration(k string, def time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid duration env %s=%q", k, v)
	}
	return d, nil
}

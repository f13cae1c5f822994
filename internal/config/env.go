package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type DBConfig struct {
	DSN      string `yaml:"dsn"`
	Host     string `yaml:"host"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
}

type RedisConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

type BootstrapAdmin struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Email    string `yaml:"email"`
}

type Env struct {
	AppAddr  string `yaml:"app_addr"`
	GinMode  string `yaml:"gin_mode"`
	LogLevel string `yaml:"log_level"`

	// Timezone is the single local zone every schedule time is read in.
	Timezone      string `yaml:"timezone"`
	AllowRollover bool   `yaml:"allow_rollover"`

	DB    DBConfig    `yaml:"db"`
	Redis RedisConfig `yaml:"redis"`

	JWTSecret string        `yaml:"jwt_secret"`
	JWTTTL    time.Duration `yaml:"jwt_ttl"`

	LoginRatePerMinute int      `yaml:"login_rate_per_minute"`
	CORSAllowedOrigins []string `yaml:"cors_allowed_origins"`

	Bootstrap BootstrapAdmin `yaml:"bootstrap_admin"`
}

func Default() Env {
	return Env{
		AppAddr:  ":8080",
		LogLevel: "info",
		Timezone: "Asia/Kolkata",
		DB: DBConfig{
			Host: "127.0.0.1:3306",
			User: "root",
			Name: "perdoor_bus_timing",
		},
		Redis: RedisConfig{
			Addr: "localhost:6379",
			TTL:  5 * time.Minute,
		},
		JWTSecret:          "super-secret-key-change-me",
		JWTTTL:             24 * time.Hour,
		LoginRatePerMinute: 10,
		CORSAllowedOrigins: []string{
			"http://localhost:3000",
			"http://127.0.0.1:3000",
			"http://localhost:5173",
			"http://127.0.0.1:5173",
		},
		Bootstrap: BootstrapAdmin{
			Username: "admin",
			Password: "admin123",
			Email:    "admin@perdoor.com",
		},
	}
}

// LoadEnv builds the configuration from defaults, then the YAML file at path
// (when non-empty), then environment variables.
func LoadEnv(path string) (Env, error) {
	env := Default()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return env, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, &env); err != nil {
			return env, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	env.AppAddr = getEnv("APP_ADDR", env.AppAddr)
	env.GinMode = getEnv("GIN_MODE", env.GinMode)
	env.LogLevel = getEnv("LOG_LEVEL", env.LogLevel)
	env.Timezone = getEnv("APP_TIMEZONE", env.Timezone)
	env.AllowRollover = getBoolEnv("SCHEDULE_ALLOW_ROLLOVER", env.AllowRollover)

	env.DB.DSN = getEnv("DB_DSN", env.DB.DSN)
	env.DB.Host = getEnv("DB_HOST", env.DB.Host)
	env.DB.User = getEnv("DB_USER", env.DB.User)
	env.DB.Password = getEnv("DB_PASSWORD", env.DB.Password)
	env.DB.Name = getEnv("DB_NAME", env.DB.Name)

	env.Redis.Enabled = getBoolEnv("REDIS_ENABLED", env.Redis.Enabled)
	env.Redis.Addr = getEnv("REDIS_ADDR", env.Redis.Addr)
	env.Redis.Password = getEnv("REDIS_PASSWORD", env.Redis.Password)
	env.Redis.DB = getIntEnv("REDIS_DB", env.Redis.DB)
	env.Redis.TTL = getDurationEnv("CACHE_TTL", env.Redis.TTL)

	env.JWTSecret = getEnv("JWT_SECRET", env.JWTSecret)
	env.JWTTTL = getDurationEnv("JWT_TTL", env.JWTTTL)
	env.LoginRatePerMinute = getIntEnv("LOGIN_RATE_PER_MINUTE", env.LoginRatePerMinute)
	if origins := getCSVEnv("CORS_ALLOWED_ORIGINS"); len(origins) > 0 {
		env.CORSAllowedOrigins = origins
	}

	env.Bootstrap.Username = getEnv("BOOTSTRAP_ADMIN_USERNAME", env.Bootstrap.Username)
	env.Bootstrap.Password = getEnv("BOOTSTRAP_ADMIN_PASSWORD", env.Bootstrap.Password)
	env.Bootstrap.Email = getEnv("BOOTSTRAP_ADMIN_EMAIL", env.Bootstrap.Email)

	if _, err := env.Location(); err != nil {
		return env, err
	}
	return env, nil
}

// Location resolves Timezone.
func (e Env) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(e.Timezone)
	if err != nil {
		return nil, fmt.Errorf("timezone %q: %w", e.Timezone, err)
	}
	return loc, nil
}

// DSNString returns DB.DSN, or a go-sql-driver/mysql DSN assembled from the parts.
func (c DBConfig) DSNString() string {
	if strings.TrimSpace(c.DSN) != "" {
		return c.DSN
	}
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?parseTime=true&loc=Local&charset=utf8mb4&timeout=5s&readTimeout=30s&writeTimeout=30s",
		c.User,
		c.Password,
		c.Host,
		c.Name,
	)
}

func getEnv(key, defaultVal string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return defaultVal
}

func getDurationEnv(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}

func getIntEnv(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getBoolEnv(key string, defaultVal bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return defaultVal
}

func getCSVEnv(key string) []string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			result = append(result, t)
		}
	}
	return result
}

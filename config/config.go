package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"gopkg.in/yaml.v3"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type Config struct {
	ProxyPort      string `yaml:"proxy_port"`
	BindAddress    string `yaml:"bind_address"`
	BackendURL     string `yaml:"backend_url"`
	APIBaseURL     string `yaml:"api_base_url"`
	StorageDriver  string `yaml:"storage_driver"`
	StoragePath    string `yaml:"storage_path"`
	RedisHost      string `yaml:"redis_host"`
	RedisPort      string `yaml:"redis_port"`
	RedisPrefix    string `yaml:"redis_prefix"`
	RequestTimeout int    `yaml:"request_timeout_seconds"`
	LogMode        string `yaml:"log_mode"`
	MockPort       string `yaml:"mock_port"`
	JWTSecret      string `yaml:"jwt_secret"`
}

func defaults() *Config {
	return &Config{
		ProxyPort:      "3000",
		BindAddress:    "0.0.0.0",
		BackendURL:     "http://localhost:8080",
		APIBaseURL:     "http://localhost:8080/api",
		StorageDriver:  "sqlite",
		StoragePath:    "eduguide.db",
		RedisHost:      "localhost",
		RedisPort:      "6379",
		RedisPrefix:    "eduguide:",
		RequestTimeout: 30,
		LogMode:        "development",
		MockPort:       "8080",
		JWTSecret:      "your-secret-key-change-in-production",
	}
}

// Load builds the configuration from defaults, the optional YAML file named
// by EDUGUIDE_CONFIG and finally the environment.
func Load() (*Config, error) {
	cfg := defaults()
	if path := strings.TrimSpace(os.Getenv("EDUGUIDE_CONFIG")); path != "" {
		if err := cfg.LoadFile(path); err != nil {
			return nil, err
		}
	}
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile overlays the non-empty values found in a YAML file.
func (c *Config) LoadFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	var file Config
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	overlay(&c.ProxyPort, file.ProxyPort)
	overlay(&c.BindAddress, file.BindAddress)
	overlay(&c.BackendURL, file.BackendURL)
	overlay(&c.APIBaseURL, file.APIBaseURL)
	overlay(&c.StorageDriver, strings.ToLower(file.StorageDriver))
	overlay(&c.StoragePath, file.StoragePath)
	overlay(&c.RedisHost, file.RedisHost)
	overlay(&c.RedisPort, file.RedisPort)
	overlay(&c.RedisPrefix, file.RedisPrefix)
	overlay(&c.LogMode, file.LogMode)
	overlay(&c.MockPort, file.MockPort)
	overlay(&c.JWTSecret, file.JWTSecret)
	if file.RequestTimeout > 0 {
		c.RequestTimeout = file.RequestTimeout
	}
	return nil
}

func (c *Config) applyEnv() {
	c.ProxyPort = getEnv("PROXY_PORT", c.ProxyPort)
	c.BindAddress = getEnv("BIND_ADDRESS", c.BindAddress)
	c.BackendURL = getEnv("BACKEND_URL", c.BackendURL)
	c.APIBaseURL = getEnv("API_BASE_URL", c.APIBaseURL)
	c.StorageDriver = strings.ToLower(getEnv("STORAGE_DRIVER", c.StorageDriver))
	c.StoragePath = getEnv("STORAGE_PATH", c.StoragePath)
	c.RedisHost = getEnv("REDIS_HOST", c.RedisHost)
	c.RedisPort = getEnv("REDIS_PORT", c.RedisPort)
	c.RedisPrefix = getEnv("REDIS_PREFIX", c.RedisPrefix)
	c.RequestTimeout = getEnvAsInt("REQUEST_TIMEOUT_SECONDS", c.RequestTimeout)
	c.LogMode = getEnv("LOG_MODE", c.LogMode)
	c.MockPort = getEnv("MOCK_PORT", c.MockPort)
	c.JWTSecret = getEnv("JWT_SECRET", c.JWTSecret)
}

func (c *Config) Validate() error {
	switch c.StorageDriver {
	case "sqlite", "redis", "memory":
	default:
		return fmt.Errorf("unsupported storage driver %q", c.StorageDriver)
	}
	if strings.TrimSpace(c.APIBaseURL) == "" {
		return fmt.Errorf("API_BASE_URL is required")
	}
	if strings.TrimSpace(c.BackendURL) == "" {
		return fmt.Errorf("BACKEND_URL is required")
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be positive, got %d", c.RequestTimeout)
	}
	return nil
}

func (c *Config) Timeout() time.Duration {
	return time.Duration(c.RequestTimeout) * time.Second
}

func (c *Config) ProxyAddr() string {
	return c.BindAddress + ":" + c.ProxyPort
}

func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return i
}

func overlay(dst *string, v string) {
	if strings.TrimSpace(v) != "" {
		*dst = strings.TrimSpace(v)
	}
}

func InitDB(cfg *Config) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(cfg.StoragePath), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open local storage: %w", err)
	}

	return db, nil
}

func InitRedis(cfg *Config) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.RedisHost, cfg.RedisPort),
		Password: "",
		DB:       0,
	})

	return client
}

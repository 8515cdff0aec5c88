package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
)

// ErrMissingJWTSecret is returned by Load when JWTSECRET is not configured.
var ErrMissingJWTSecret = errors.New("JWTSECRET must be set")

// Config holds the application's configuration values.
type Config struct {
	AppName string `json:"appname"`
	AppEnv  string `json:"appenv"`
	AppPort uint16 `json:"appport"`
	GinMode string `json:"ginmode"`

	DBDriver    string `json:"dbdriver"`
	DatabaseURL string `json:"-"`
	DBHost      string `json:"dbhost"`
	DBPort      uint16 `json:"dbport"`
	DBName      string `json:"dbname"`
	DBUSER      string `json:"dbuser"`
	DBPass      string `json:"-"`
	DBSSLMode   string `json:"dbsslmode"`

	JWTSecret        string        `json:"-"`
	TokenTTL         time.Duration `json:"token_ttl"`
	AllowAdminSignup bool          `json:"allow_admin_signup"`

	RedisAddr string `json:"redis_addr"`
	RedisPass string `json:"-"`
	RedisDB   int    `json:"redis_db"`

	RateLimit  int           `json:"rate_limit"`
	RateWindow time.Duration `json:"rate_window"`

	UploadDriver  string `json:"upload_driver"`
	UploadDir     string `json:"upload_dir"`
	UploadBaseURL string `json:"upload_base_url"`
	S3Bucket      string `json:"s3_bucket"`
	S3Region      string `json:"s3_region"`
	S3Endpoint    string `json:"s3_endpoint"`
	S3Prefix      string `json:"s3_prefix"`
	S3PublicURL   string `json:"s3_public_url"`

	KafkaBrokers []string `json:"kafka_brokers"`
	KafkaTopic   string   `json:"kafka_topic"`

	GeoIPDBPath string `json:"geoip_db_path"`
}

// IsTest reports whether the process runs with APPENV=test.
func (c *Config) IsTest() bool {
	return c.AppEnv == "test"
}

var config *Config
var once sync.Once

// Load reads the optional .env file and the environment and validates the result.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	appPort, _ := strconv.ParseUint(getEnv("APPPORT", "5000"), 10, 16)
	dbPort, _ := strconv.ParseUint(getEnv("DBPORT", "5432"), 10, 16)
	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	rateLimit, _ := strconv.Atoi(getEnv("RATE_LIMIT", "5"))
	allowAdmin, _ := strconv.ParseBool(getEnv("ALLOW_ADMIN_SIGNUP", "false"))

	tokenTTL, err := time.ParseDuration(getEnv("TOKEN_TTL", "24h"))
	if err != nil {
		return nil, fmt.Errorf("invalid TOKEN_TTL: %w", err)
	}
	rateWindow, err := time.ParseDuration(getEnv("RATE_WINDOW", "15m"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_WINDOW: %w", err)
	}

	cfg := &Config{
		AppName:          getEnv("APPNAME", "ABA Tracker"),
		AppEnv:           getEnv("APPENV", "development"),
		AppPort:          uint16(appPort),
		GinMode:          getEnv("GINMODE", "release"),
		DBDriver:         strings.ToLower(getEnv("DBDRIVER", "postgres")),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		DBHost:           getEnv("DBHOST", "localhost"),
		DBPort:           uint16(dbPort),
		DBName:           os.Getenv("DBNAME"),
		DBUSER:           os.Getenv("DBUSER"),
		DBPass:           os.Getenv("DBPASS"),
		DBSSLMode:        getEnv("DBSSLMODE", "disable"),
		JWTSecret:        os.Getenv("JWTSECRET"),
		TokenTTL:         tokenTTL,
		AllowAdminSignup: allowAdmin,
		RedisAddr:        os.Getenv("REDIS_ADDR"),
		RedisPass:        os.Getenv("REDIS_PASS"),
		RedisDB:          redisDB,
		RateLimit:        rateLimit,
		RateWindow:       rateWindow,
		UploadDriver:     strings.ToLower(getEnv("UPLOAD_DRIVER", "local")),
		UploadDir:        getEnv("UPLOAD_DIR", "uploads"),
		UploadBaseURL:    getEnv("UPLOAD_BASE_URL", "/uploads"),
		S3Bucket:         os.Getenv("S3_BUCKET"),
		S3Region:         os.Getenv("S3_REGION"),
		S3Endpoint:       os.Getenv("S3_ENDPOINT"),
		S3Prefix:         getEnv("S3_PREFIX", "goal-images"),
		S3PublicURL:      os.Getenv("S3_PUBLIC_URL"),
		KafkaBrokers:     splitList(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:       getEnv("KAFKA_TOPIC", "aba.sessions"),
		GeoIPDBPath:      os.Getenv("GEOIP_DB_PATH"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.JWTSecret == "" {
		return ErrMissingJWTSecret
	}
	switch c.DBDriver {
	case "postgres", "mysql", "sqlite":
	default:
		return fmt.Errorf("unsupported DBDRIVER %q", c.DBDriver)
	}
	switch c.UploadDriver {
	case "local":
	case "s3":
		if c.S3Bucket == "" {
			return errors.New("S3_BUCKET must be set when UPLOAD_DRIVER=s3")
		}
	default:
		return fmt.Errorf("unsupported UPLOAD_DRIVER %q", c.UploadDriver)
	}
	if c.TokenTTL <= 0 {
		return errors.New("TOKEN_TTL must be positive")
	}
	return nil
}

// LoadConfig returns the process-wide Config, loading it on first use.
// It exits the process when the configuration is invalid.
func LoadConfig() *Config {
	once.Do(func() {
		cfg, err := Load()
		if err != nil {
			log.Fatalf("Error loading configuration: %v", err)
		}
		config = cfg
	})
	return config
}

func getEnv(key, fallback string) string {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return fallback
	}
	return value
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

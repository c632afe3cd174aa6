package config

import (
	"log"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Server    Server    `yaml:"server"`
	Mongo     Mongo     `yaml:"mongo"`
	Auth      Auth      `yaml:"auth"`
	RateLimit RateLimit `yaml:"rate_limit"`
	S3        S3        `yaml:"s3"`
	Commands  Commands  `yaml:"commands"`
}

// Server holds HTTP server configuration
type Server struct {
	Host         string        `yaml:"host" env:"SERVER_HOST" env-default:"0.0.0.0"`
	Port         string        `yaml:"port" env:"SERVER_PORT" env-default:"8080"`
	ReadTimeout  time.Duration `yaml:"read_timeout" env:"SERVER_READ_TIMEOUT" env-default:"15s"`
	WriteTimeout time.Duration `yaml:"write_timeout" env:"SERVER_WRITE_TIMEOUT" env-default:"15s"`
	IdleTimeout  time.Duration `yaml:"idle_timeout" env:"SERVER_IDLE_TIMEOUT" env-default:"60s"`
}

// Address returns the full server address
func (s Server) Address() string {
	return s.Host + ":" + s.Port
}

// Mongo holds document store configuration
type Mongo struct {
	URI      string `yaml:"uri" env:"MONGODB_URI"`
	Database string `yaml:"database" env:"MONGODB_DATABASE" env-default:"chat_db"`
}

// Auth holds token configuration
type Auth struct {
	JWTSecret string        `yaml:"jwt_secret" env:"JWT_SECRET"`
	TokenTTL  time.Duration `yaml:"token_ttl" env:"JWT_TOKEN_TTL" env-default:"24h"`
}

// RateLimit controls the register/login limiter
type RateLimit struct {
	RPM   int `yaml:"rpm" env:"RATE_LIMIT_RPM" env-default:"10"`
	Burst int `yaml:"burst" env:"RATE_LIMIT_BURST" env-default:"3"`
}

// S3 holds S3/MinIO storage configuration for profile images
type S3 struct {
	Endpoint        string `yaml:"endpoint" env:"S3_ENDPOINT" env-default:"http://localhost:9000"`
	AccessKeyID     string `yaml:"access_key_id" env:"S3_ACCESS_KEY_ID" env-default:"minioadmin"`
	SecretAccessKey string `yaml:"secret_access_key" env:"S3_SECRET_ACCESS_KEY" env-default:"minioadmin"`
	Bucket          string `yaml:"bucket" env:"S3_BUCKET" env-default:"avatars"`
	Region          string `yaml:"region" env:"S3_REGION" env-default:"us-east-1"`
	PublicURL       string `yaml:"public_url" env:"S3_PUBLIC_URL" env-default:"http://localhost:9000/avatars"`
}

// Commands holds slash-command lookup endpoints
type Commands struct {
	CatFactURL string        `yaml:"cat_fact_url" env:"COMMANDS_CAT_FACT_URL" env-default:"https://catfact.ninja/fact"`
	QuoteURL   string        `yaml:"quote_url" env:"COMMANDS_QUOTE_URL" env-default:"https://zenquotes.io/api/random"`
	Timeout    time.Duration `yaml:"timeout" env:"COMMANDS_TIMEOUT" env-default:"10s"`
}

// MustLoad loads configuration from environment and panics on error
func MustLoad() Config {
	// Load .env file if exists (for development)
	_ = godotenv.Load()

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if cfg.Mongo.URI == "" {
		log.Fatal("MONGODB_URI must be set")
	}
	if cfg.Auth.JWTSecret == "" {
		log.Fatal("JWT_SECRET must be set")
	}

	return cfg
}

// LoadFromFile loads configuration from a YAML file
func LoadFromFile(path string) (Config, error) {
	var cfg Config
	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

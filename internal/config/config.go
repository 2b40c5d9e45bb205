package config

import (
	"errors"
	"log"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

type Config struct {
	Port         string        `env:"PORT" env-default:"8080"`
	DBDSN        string        `env:"DB_DSN" env-default:"barter.db"` // sqlite file in project root
	LogFile      string        `env:"LOG_FILE"`
	LogLevel     string        `env:"LOG_LEVEL" env-default:"info"`
	JWTSecret    string        `env:"JWT_SECRET" env-required:"true"`
	TokenTTL     time.Duration `env:"TOKEN_TTL" env-default:"24h"`
	NATSURL      string        `env:"NATS_URL"`
	TemplatesDir string        `env:"TEMPLATES_DIR" env-default:"./web/templates"`
	RateLimit    int           `env:"RATE_LIMIT_PER_MIN" env-default:"120"`
}

// Load reads .env (if present) and then the process environment.
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, err
	}
	if strings.TrimSpace(cfg.JWTSecret) == "" {
		return Config{}, errors.New("JWT_SECRET must be set")
	}
	log.Printf("[config] PORT=%s DB_DSN=%s LOG_FILE=%s LOG_LEVEL=%s NATS_URL=%s",
		cfg.Port, cfg.DBDSN, cfg.LogFile, cfg.LogLevel, cfg.NATSURL)
	return cfg, nil
}

// MustLoad is Load for main packages.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("cannot load config: %v", err)
	}
	return cfg
}

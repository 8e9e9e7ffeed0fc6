package config

import (
	"errors"
	"log"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type HTTPConfig struct {
	Address string        `yaml:"address" env:"WEB_ADDRESS" env-default:"localhost:8080"`
	Timeout time.Duration `yaml:"timeout" env:"WEB_TIMEOUT" env-default:"5s"`
}

type Config struct {
	LogLevel       string        `yaml:"log_level" env:"LOG_LEVEL" env-default:"DEBUG"`
	Mode           string        `yaml:"mode" env:"WEB_MODE" env-default:"development"`
	HTTPConfig     HTTPConfig    `yaml:"web_server"`
	CatalogURL     string        `yaml:"catalog_url" env:"CATALOG_URL" env-default:"http://localhost:8000"`
	CatalogHealth  string        `yaml:"catalog_health_address" env:"CATALOG_HEALTH_ADDRESS" env-default:"localhost:9000"`
	CatalogTimeout time.Duration `yaml:"catalog_timeout" env:"CATALOG_TIMEOUT" env-default:"10s"`
	MediaURL       string        `yaml:"media_url" env:"MEDIA_URL" env-default:""`
	PageSize       int           `yaml:"page_size" env:"PAGE_SIZE" env-default:"12"`
	Revalidate     time.Duration `yaml:"revalidate" env:"REVALIDATE" env-default:"1h"`
	BrokerAddress  string        `yaml:"broker_address" env:"BROKER_ADDRESS" env-default:"nats://localhost:4222"`
	TokenTTL       time.Duration `yaml:"token_ttl" env:"TOKEN_TTL" env-default:"24h"`
	AdminUser      string        `yaml:"admin_user" env:"ADMIN_USER" env-default:"admin"`
	AdminPass      string        `yaml:"admin_password" env:"ADMIN_PASSWORD"`
	TokenSecret    string        `yaml:"token_secret" env:"TOKEN_SECRET"`
	PageRate       int           `yaml:"page_rate" env:"PAGE_RATE" env-default:"100"`
	APIConcurrency int           `yaml:"api_concurrency" env:"API_CONCURRENCY" env-default:"20"`
}

// Production reports whether category pages are prerendered at startup.
func (c Config) Production() bool {
	return c.Mode == "production"
}

// CheckAuth fails when admin login has no password to check against.
// The token secret is validated by the auth service.
func (c Config) CheckAuth() error {
	if c.AdminPass == "" {
		return errors.New("admin password is not set")
	}
	return nil
}

func MustLoad(configPath string) Config {
	var cfg Config
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("cannot read config %s: %s", configPath, err)
	}
	return cfg
}

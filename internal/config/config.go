package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port              string        `mapstructure:"API_PORT"`
	MongoURI          string        `mapstructure:"MONGO_URI"`
	MongoDatabase     string        `mapstructure:"MONGO_DATABASE"`
	JWTSecret         string        `mapstructure:"JWT_SECRET"`
	SessionTTL        time.Duration `mapstructure:"SESSION_TTL"`
	PasswordMinLength int           `mapstructure:"PASSWORD_MIN_LENGTH"`
	BcryptCost        int           `mapstructure:"BCRYPT_COST"`
	CORSOrigins       []string      `mapstructure:"CORS_ORIGINS"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("API_PORT", "8080")
	v.SetDefault("MONGO_DATABASE", "dentaheal")
	v.SetDefault("SESSION_TTL", "168h") // 7 days
	v.SetDefault("PASSWORD_MIN_LENGTH", 6)
	v.SetDefault("BCRYPT_COST", 12)
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")

	// Bind env vars explicitly so Unmarshal picks them up
	v.BindEnv("API_PORT")
	v.BindEnv("MONGO_URI")
	v.BindEnv("MONGO_DATABASE")
	v.BindEnv("JWT_SECRET")
	v.BindEnv("SESSION_TTL")
	v.BindEnv("PASSWORD_MIN_LENGTH")
	v.BindEnv("BCRYPT_COST")
	v.BindEnv("CORS_ORIGINS")

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if len(cfg.CORSOrigins) <= 1 {
		origins := v.GetString("CORS_ORIGINS")
		if origins != "" {
			cfg.CORSOrigins = strings.Split(origins, ",")
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that the configuration is safe to run with. The server
// refuses to start without a database and a token signing secret.
func (c *Config) Validate() error {
	if c.MongoURI == "" {
		return fmt.Errorf("MONGO_URI is required")
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive, got %s", c.SessionTTL)
	}
	if c.PasswordMinLength < 1 {
		return fmt.Errorf("PASSWORD_MIN_LENGTH must be at least 1, got %d", c.PasswordMinLength)
	}
	return nil
}

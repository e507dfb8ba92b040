package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/MrJamesThe3rd/pairup/internal/similarity"
)

const (
	MinThreshold     = 60
	DefaultThreshold = 80
)

var ErrInvalid = errors.New("invalid configuration")

type Config struct {
	App struct {
		Name string `envconfig:"APP_NAME" default:"pairup"`
		Port int    `envconfig:"PORT" default:"8080"`
	}

	DB struct {
		Host     string `envconfig:"DB_HOST" default:"localhost"`
		Port     int    `envconfig:"DB_PORT" default:"5432"`
		User     string `envconfig:"DB_USER" default:"postgres"`
		Password string `envconfig:"DB_PASSWORD" default:""`
		Name     string `envconfig:"DB_NAME" default:"pairup"`
	}

	Server struct {
		Timeout time.Duration `envconfig:"SERVER_TIMEOUT" default:"30s"`
	}

	Auth struct {
		// Empty disables bearer authentication.
		Secret string `envconfig:"AUTH_SECRET"`
	}

	CORS struct {
		AllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`
	}

	Export struct {
		CopyRecordings bool `envconfig:"EXPORT_COPY_RECORDINGS" default:"true"`
	}

	Matching struct {
		Threshold  int      `envconfig:"MATCHING_THRESHOLD" default:"80"`
		Algorithm  string   `envconfig:"MATCHING_ALGORITHM" default:"indel"`
		BatchSize  int      `envconfig:"MATCHING_BATCH_SIZE" default:"1024"`
		Extensions []string `envconfig:"MATCHING_EXTENSIONS" default:".mp3,.wav,.ogg,.m4a,.flac"`
	}
}

func (c *Config) ConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.DB.User, c.DB.Password, c.DB.Host, c.DB.Port, c.DB.Name)
}

// Validate checks the matching settings. Thresholds below MinThreshold pair
// too many unrelated names to be useful.
func (c *Config) Validate() error {
	if c.Matching.Threshold < MinThreshold || c.Matching.Threshold > 100 {
		return fmt.Errorf("%w: MATCHING_THRESHOLD must be between %d and 100, got %d",
			ErrInvalid, MinThreshold, c.Matching.Threshold)
	}

	if _, err := similarity.New(similarity.Algorithm(c.Matching.Algorithm)); err != nil {
		return fmt.Errorf("%w: MATCHING_ALGORITHM: %w", ErrInvalid, err)
	}

	if c.Matching.BatchSize < 1 {
		return fmt.Errorf("%w: MATCHING_BATCH_SIZE must be positive", ErrInvalid)
	}

	for i, ext := range c.Matching.Extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext != "" && !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}

		c.Matching.Extensions[i] = ext
	}

	return nil
}

// Scorer builds the configured similarity scorer.
func (c *Config) Scorer() (similarity.Scorer, error) {
	scorer, err := similarity.New(similarity.Algorithm(c.Matching.Algorithm))
	if err != nil {
		return nil, err
	}

	return scorer, nil
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

package workload

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"
)

var ErrInvalidConfig = errors.New("invalid workload config")

// Config describes how many readers and writers to start and how long each
// of them holds the lock.
type Config struct {
	Readers       int           `yaml:"readers"`
	Writers       int           `yaml:"writers"`
	ReadDuration  time.Duration `yaml:"read_duration"`
	WriteDuration time.Duration `yaml:"write_duration"`
	// Stagger is the pause between launching two workers of the same role.
	Stagger time.Duration `yaml:"stagger"`
}

// DefaultConfig returns 50 readers and 5 writers holding the lock for 2s each.
func DefaultConfig() Config {
	return Config{
		Readers:       50,
		Writers:       5,
		ReadDuration:  2 * time.Second,
		WriteDuration: 2 * time.Second,
	}
}

func (c Config) Validate() error {
	switch {
	case c.Readers < 0:
		return fmt.Errorf("%w: readers = %d", ErrInvalidConfig, c.Readers)
	case c.Writers < 0:
		return fmt.Errorf("%w: writers = %d", ErrInvalidConfig, c.Writers)
	case c.ReadDuration < 0:
		return fmt.Errorf("%w: read_duration = %v", ErrInvalidConfig, c.ReadDuration)
	case c.WriteDuration < 0:
		return fmt.Errorf("%w: write_duration = %v", ErrInvalidConfig, c.WriteDuration)
	case c.Stagger < 0:
		return fmt.Errorf("%w: stagger = %v", ErrInvalidConfig, c.Stagger)
	}
	return nil
}

// LoadConfig reads a YAML config from path. Keys missing from the file keep
// their DefaultConfig values.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}
	// Пустой файл - конфигурация по умолчанию
	if len(data) == 0 {
		return cfg, nil
	}

	if err := yaml.UnmarshalStrict(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

package config

import (
	"os"
	"time"

	"github.com/lcouto/saprobot/pkg/errors"
)

// Config holds all configuration for the application
type Config struct {
	// Paths
	InputFile string `mapstructure:"input_file"`
	ReportDir string `mapstructure:"report_dir"`
	LogDir    string `mapstructure:"log_dir"`

	// Retry behavior
	MaxAttempts    int           `mapstructure:"max_attempts"`
	LocateAttempts int           `mapstructure:"locate_attempts"`
	LocateInterval time.Duration `mapstructure:"-"`
	RetryDelay     time.Duration `mapstructure:"-"`

	// Status classification
	BlockingPhrases []string `mapstructure:"blocking_phrases"`

	// Behavior
	Verbose       bool          `mapstructure:"verbose"`
	WatchDebounce time.Duration `mapstructure:"-"`

	// S3 destination for result artifacts
	S3 S3Config `mapstructure:",squash"`
}

// EnsureDirs creates the report and log directories if they don't exist
func (c *Config) EnsureDirs() error {
	if err := os.MkdirAll(c.ReportDir, 0755); err != nil {
		return errors.NewIOError("config.EnsureDirs", "failed to create report directory", err)
	}
	if err := os.MkdirAll(c.LogDir, 0755); err != nil {
		return errors.NewIOError("config.EnsureDirs", "failed to create log directory", err)
	}
	return nil
}

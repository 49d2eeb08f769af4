package config

import (
	"fmt"
	"os"
	"time"
)

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.InputFile == "" {
		return fmt.Errorf("input_file is required")
	}
	if c.ReportDir == "" {
		return fmt.Errorf("report_dir is required")
	}
	if c.LogDir == "" {
		return fmt.Errorf("log_dir is required")
	}

	if c.MaxAttempts < 1 || c.MaxAttempts > 10 {
		return fmt.Errorf("max_attempts must be between 1 and 10")
	}
	if c.LocateAttempts < 1 || c.LocateAttempts > 100 {
		return fmt.Errorf("locate_attempts must be between 1 and 100")
	}
	if c.LocateInterval < 0 || c.LocateInterval > time.Minute {
		return fmt.Errorf("locate_interval must be between 0 and 1m")
	}
	if c.RetryDelay < 0 || c.RetryDelay > time.Minute {
		return fmt.Errorf("retry_delay must be between 0 and 1m")
	}
	if c.WatchDebounce < 0 || c.WatchDebounce > time.Minute {
		return fmt.Errorf("watch_debounce must be between 0 and 1m")
	}

	if len(c.BlockingPhrases) == 0 {
		return fmt.Errorf("blocking_phrases must not be empty")
	}

	// Validate S3 configuration
	if err := c.S3.Validate(); err != nil {
		return err
	}

	return nil
}

// ValidatePaths checks if paths are accessible
func (c *Config) ValidatePaths() error {
	// Check input file exists and is readable
	if err := validateFileReadable(c.InputFile); err != nil {
		return fmt.Errorf("input_file validation failed: %w", err)
	}

	// Check report directory can be created/written
	if err := validateDirWritable(c.ReportDir); err != nil {
		return fmt.Errorf("report_dir validation failed: %w", err)
	}

	// Check log directory can be created/written
	if err := validateDirWritable(c.LogDir); err != nil {
		return fmt.Errorf("log_dir validation failed: %w", err)
	}

	return nil
}

// validateFileReadable checks if a file exists and is readable
func validateFileReadable(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("file does not exist: %s", path)
		}
		return fmt.Errorf("failed to access file: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("not a file: %s", path)
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("file not readable: %w", err)
	}
	f.Close()

	return nil
}

// validateDirWritable checks if a directory can be written to
func validateDirWritable(path string) error {
	// If directory doesn't exist, try to create it
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := os.MkdirAll(path, 0755); err != nil {
			return fmt.Errorf("cannot create directory: %w", err)
		}
		return nil
	}

	// Directory exists, check if writable
	testFile := fmt.Sprintf("%s/.write_test_%d", path, time.Now().UnixNano())
	f, err := os.Create(testFile)
	if err != nil {
		return fmt.Errorf("directory not writable: %w", err)
	}
	f.Close()
	os.Remove(testFile)

	return nil
}

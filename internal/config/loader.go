package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// FromCommand loads configuration from cobra command flags and environment variables
func FromCommand(cmd *cobra.Command) *Config {
	v := viper.New()

	// Bind flags to viper
	flags := []struct {
		name string
		key  string
	}{
		{"input-file", "input_file"},
		{"report-dir", "report_dir"},
		{"log-dir", "log_dir"},
		{"max-attempts", "max_attempts"},
		{"locate-attempts", "locate_attempts"},
		{"locate-interval", "locate_interval"},
		{"retry-delay", "retry_delay"},
		{"blocking-phrases", "blocking_phrases"},
		{"verbose", "verbose"},
		{"watch-debounce", "watch_debounce"},
	}

	for _, f := range flags {
		flag := cmd.Flags().Lookup(f.name)
		if flag != nil {
			_ = v.BindPFlag(f.key, flag)
		}
	}

	// Enable environment variable reading
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.BindEnv("s3_bucket", EnvS3Bucket)
	v.BindEnv("s3_prefix", EnvS3Prefix)
	v.BindEnv("s3_endpoint", EnvS3Endpoint)

	// Set defaults from config package
	v.SetDefault("input_file", DefaultInputFile)
	v.SetDefault("report_dir", DefaultReportDir)
	v.SetDefault("log_dir", DefaultLogDir)
	v.SetDefault("max_attempts", DefaultMaxAttempts)
	v.SetDefault("locate_attempts", DefaultLocateAttempts)
	v.SetDefault("locate_interval", DefaultLocateIntervalMS*time.Millisecond)
	v.SetDefault("retry_delay", DefaultRetryDelaySecs*time.Second)
	v.SetDefault("blocking_phrases", DefaultBlockingPhrases)
	v.SetDefault("verbose", false)
	v.SetDefault("watch_debounce", DefaultWatchDebounceSecs*time.Second)

	// Unmarshal to config
	result := &Config{}
	if err := v.Unmarshal(result); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to unmarshal config: %v\n", err)
		os.Exit(1)
	}

	// Set durations from duration flags
	result.LocateInterval = v.GetDuration("locate_interval")
	result.RetryDelay = v.GetDuration("retry_delay")
	result.WatchDebounce = v.GetDuration("watch_debounce")

	return result
}

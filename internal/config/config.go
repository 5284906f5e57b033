package config

import (
	"os"
	"strconv"

	"setsplit/internal/errors"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Config represents the complete application configuration
type Config struct {
	Partition PartitionConfig
	Output    OutputConfig
	LogLevel  string
}

// PartitionConfig holds the balancing search settings
type PartitionConfig struct {
	// MaxRetries bounds the retry loop; a run executes at most MaxRetries+1 cycles.
	MaxRetries int `validate:"gte=0,lte=1000"`
	// PThreshold is the minimum p-value every equivalence test must reach.
	PThreshold       float64 `validate:"gt=0,lt=1"`
	MaxClusters      int     `validate:"gte=2"`
	SilhouetteSample int     `validate:"gte=2"`
	ClusterMaxIter   int     `validate:"gte=1"`
	// Seed of 0 means "derive from the clock".
	Seed    int64
	Workers int `validate:"gte=0"`
}

// OutputConfig holds output artifact settings
type OutputConfig struct {
	Dir        string `validate:"required"`
	DataFile   string
	ReportFile string
	HTML       bool
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Partition: PartitionConfig{
			MaxRetries:       20,
			PThreshold:       0.2,
			MaxClusters:      10,
			SilhouetteSample: 1000,
			ClusterMaxIter:   100,
		},
		Output: OutputConfig{
			Dir:        ".",
			DataFile:   "output.csv",
			ReportFile: "statistics.txt",
		},
		LogLevel: "INFO",
	}
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := Default()

	config.Partition = loadPartitionConfig(config.Partition)
	config.Output = loadOutputConfig(config.Output)
	config.LogLevel = getEnvOrDefault("LOG_LEVEL", config.LogLevel)

	if err := config.Validate(); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

// Validate checks field constraints
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return errors.WithCode(errors.CodeConfigInvalid, err)
	}
	return nil
}

func loadPartitionConfig(defaults PartitionConfig) PartitionConfig {
	return PartitionConfig{
		MaxRetries:       getEnvIntOrDefault("SETSPLIT_MAX_RETRIES", defaults.MaxRetries),
		PThreshold:       getEnvFloatOrDefault("SETSPLIT_P_THRESHOLD", defaults.PThreshold),
		MaxClusters:      getEnvIntOrDefault("SETSPLIT_MAX_CLUSTERS", defaults.MaxClusters),
		SilhouetteSample: getEnvIntOrDefault("SETSPLIT_SILHOUETTE_SAMPLE", defaults.SilhouetteSample),
		ClusterMaxIter:   getEnvIntOrDefault("SETSPLIT_CLUSTER_MAX_ITER", defaults.ClusterMaxIter),
		Seed:             getEnvInt64OrDefault("SETSPLIT_SEED", defaults.Seed),
		Workers:          getEnvIntOrDefault("SETSPLIT_WORKERS", defaults.Workers),
	}
}

func loadOutputConfig(defaults OutputConfig) OutputConfig {
	return OutputConfig{
		Dir:        getEnvOrDefault("SETSPLIT_OUTPUT_DIR", defaults.Dir),
		DataFile:   getEnvOrDefault("SETSPLIT_OUTPUT_FILE", defaults.DataFile),
		ReportFile: getEnvOrDefault("SETSPLIT_REPORT_FILE", defaults.ReportFile),
		HTML:       getEnvBoolOrDefault("SETSPLIT_HTML_REPORT", defaults.HTML),
	}
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvInt64OrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

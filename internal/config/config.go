package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Viper keys. Each is also read from the environment variable of the same name.
const (
	KeyPort             = "PORT"
	KeyEnv              = "ENV"
	KeyLogLevel         = "LOG_LEVEL"
	KeyDBHost           = "DB_HOST"
	KeyDBPort           = "DB_PORT"
	KeyDBName           = "DB_NAME"
	KeyDBUser           = "DB_USER"
	KeyDBPassword       = "DB_PASSWORD"
	KeyDBSSLMode        = "DB_SSLMODE"
	KeyDBPoolMin        = "DB_POOL_MIN"
	KeyDBPoolMax        = "DB_POOL_MAX"
	KeyCORSOrigins      = "CORS_ORIGINS"
	KeyPrimaryDataset   = "PRIMARY_DATASET"
	KeySecondaryDataset = "SECONDARY_DATASET"
	KeyPrimaryQuery     = "PRIMARY_QUERY"
	KeySecondaryQuery   = "SECONDARY_QUERY"
	KeyPrimaryKey       = "PRIMARY_KEY"
	KeySecondaryKey     = "SECONDARY_KEY"
	KeyThresholdsFile   = "THRESHOLDS_FILE"
	KeyOutputDir        = "OUTPUT_DIR"
	KeyOutputFormat     = "OUTPUT_FORMAT"
	KeyWorkers          = "WORKERS"
)

// SupportedFormats lists the output formats the exporters can write.
var SupportedFormats = []string{"csv", "xlsx", "json"}

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	CORS     CORSConfig
	Input    InputConfig
	Output   OutputConfig
	Build    BuildConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port     string
	Env      string
	LogLevel string
}

// DatabaseConfig holds PostgreSQL connection configuration.
type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	SSLMode  string
	PoolMin  int
	PoolMax  int
}

// CORSConfig holds CORS configuration.
type CORSConfig struct {
	Origins []string
}

// InputConfig names the sources a build reads. A dataset path and a query are
// alternatives for the same source; a query takes precedence when both are set.
type InputConfig struct {
	PrimaryDataset   string
	SecondaryDataset string
	PrimaryQuery     string
	SecondaryQuery   string
	PrimaryKey       string
	SecondaryKey     string
	ThresholdsFile   string
}

// OutputConfig controls where and how the output tables are written.
type OutputConfig struct {
	Dir    string
	Format string
}

// BuildConfig tunes the projection run.
type BuildConfig struct {
	// Workers bounds concurrent record computation; 0 means one per CPU.
	Workers int
}

// NewViper returns a viper instance with defaults and environment binding applied.
// Callers may bind flags or a config file to it before passing it to FromViper.
func NewViper() *viper.Viper {
	v := viper.New()

	v.SetDefault(KeyPort, "8080")
	v.SetDefault(KeyEnv, "development")
	v.SetDefault(KeyLogLevel, "")
	v.SetDefault(KeyDBHost, "localhost")
	v.SetDefault(KeyDBPort, "5432")
	v.SetDefault(KeyDBName, "ll97")
	v.SetDefault(KeyDBUser, "postgres")
	v.SetDefault(KeyDBSSLMode, "disable")
	v.SetDefault(KeyDBPoolMin, 2)
	v.SetDefault(KeyDBPoolMax, 10)
	v.SetDefault(KeyCORSOrigins, "http://localhost:3000,http://localhost:3001")
	v.SetDefault(KeyPrimaryDataset, "")
	v.SetDefault(KeySecondaryDataset, "")
	v.SetDefault(KeyPrimaryQuery, "")
	v.SetDefault(KeySecondaryQuery, "")
	v.SetDefault(KeyPrimaryKey, "BBL")
	v.SetDefault(KeySecondaryKey, "NYC Borough, Block and Lot (BBL)")
	v.SetDefault(KeyThresholdsFile, "./data/carbon_thresholds_by_building_type.csv")
	v.SetDefault(KeyOutputDir, ".")
	v.SetDefault(KeyOutputFormat, "csv")
	v.SetDefault(KeyWorkers, 0)

	v.AutomaticEnv()
	return v
}

// ReadFile merges a YAML, TOML or JSON config file into v.
// Explicit flags and environment variables still take precedence.
func ReadFile(v *viper.Viper, path string) error {
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	return nil
}

// Load reads configuration from environment variables and defaults.
func Load() (*Config, error) {
	return FromViper(NewViper())
}

// FromViper builds and validates a Config from v.
func FromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:     v.GetString(KeyPort),
			Env:      v.GetString(KeyEnv),
			LogLevel: v.GetString(KeyLogLevel),
		},
		Database: DatabaseConfig{
			Host:     v.GetString(KeyDBHost),
			Port:     v.GetString(KeyDBPort),
			Name:     v.GetString(KeyDBName),
			User:     v.GetString(KeyDBUser),
			Password: v.GetString(KeyDBPassword),
			SSLMode:  v.GetString(KeyDBSSLMode),
			PoolMin:  v.GetInt(KeyDBPoolMin),
			PoolMax:  v.GetInt(KeyDBPoolMax),
		},
		CORS: CORSConfig{
			Origins: parseOrigins(v.GetString(KeyCORSOrigins)),
		},
		Input: InputConfig{
			PrimaryDataset:   v.GetString(KeyPrimaryDataset),
			SecondaryDataset: v.GetString(KeySecondaryDataset),
			PrimaryQuery:     strings.TrimSpace(v.GetString(KeyPrimaryQuery)),
			SecondaryQuery:   strings.TrimSpace(v.GetString(KeySecondaryQuery)),
			PrimaryKey:       v.GetString(KeyPrimaryKey),
			SecondaryKey:     v.GetString(KeySecondaryKey),
			ThresholdsFile:   v.GetString(KeyThresholdsFile),
		},
		Output: OutputConfig{
			Dir:    v.GetString(KeyOutputDir),
			Format: strings.ToLower(strings.TrimSpace(v.GetString(KeyOutputFormat))),
		},
		Build: BuildConfig{
			Workers: v.GetInt(KeyWorkers),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// RequiresDatabase reports whether any source is read through a SQL query.
func (c *Config) RequiresDatabase() bool {
	return c.Input.PrimaryQuery != "" || c.Input.SecondaryQuery != ""
}

// Validate checks settings shared by every command.
func (c *Config) Validate() error {
	if c.Server.Env == "" {
		return fmt.Errorf("ENV is required")
	}
	if c.Database.PoolMin < 0 {
		return fmt.Errorf("DB_POOL_MIN must be non-negative")
	}
	if c.Database.PoolMax < 1 {
		return fmt.Errorf("DB_POOL_MAX must be at least 1")
	}
	if c.Database.PoolMin > c.Database.PoolMax {
		return fmt.Errorf("DB_POOL_MIN must be less than or equal to DB_POOL_MAX")
	}
	if !isSupportedFormat(c.Output.Format) {
		return fmt.Errorf("OUTPUT_FORMAT must be one of %s, got %q", strings.Join(SupportedFormats, ", "), c.Output.Format)
	}
	if c.Build.Workers < 0 {
		return fmt.Errorf("WORKERS must be non-negative")
	}
	return nil
}

// ValidateBuild checks everything a batch build needs before any input is read.
func (c *Config) ValidateBuild() error {
	if err := c.validateInputs(); err != nil {
		return err
	}
	if c.Output.Dir == "" {
		return fmt.Errorf("OUTPUT_DIR is required")
	}
	info, err := os.Stat(c.Output.Dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("OUTPUT_DIR %s does not exist", c.Output.Dir)
		}
		return fmt.Errorf("OUTPUT_DIR %s is not accessible: %w", c.Output.Dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("OUTPUT_DIR %s is not a directory", c.Output.Dir)
	}
	return nil
}

// ValidateServe checks everything the HTTP server needs.
func (c *Config) ValidateServe() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}
	if len(c.CORS.Origins) == 0 {
		return fmt.Errorf("CORS_ORIGINS is required")
	}
	return c.validateInputs()
}

func (c *Config) validateInputs() error {
	if c.Input.PrimaryDataset == "" && c.Input.PrimaryQuery == "" {
		return fmt.Errorf("PRIMARY_DATASET or PRIMARY_QUERY is required")
	}
	if c.Input.SecondaryDataset == "" && c.Input.SecondaryQuery == "" {
		return fmt.Errorf("SECONDARY_DATASET or SECONDARY_QUERY is required")
	}
	if c.Input.ThresholdsFile == "" {
		return fmt.Errorf("THRESHOLDS_FILE is required")
	}
	if c.RequiresDatabase() {
		return c.validateDatabase()
	}
	return nil
}

func (c *Config) validateDatabase() error {
	if c.Database.Host == "" {
		return fmt.Errorf("DB_HOST is required")
	}
	if c.Database.Port == "" {
		return fmt.Errorf("DB_PORT is required")
	}
	if c.Database.Name == "" {
		return fmt.Errorf("DB_NAME is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("DB_USER is required")
	}
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	return nil
}

func isSupportedFormat(format string) bool {
	for _, f := range SupportedFormats {
		if f == format {
			return true
		}
	}
	return false
}

// parseOrigins splits a comma-separated string of origins into a slice.
func parseOrigins(origins string) []string {
	if origins == "" {
		return []string{}
	}

	parts := strings.Split(origins, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

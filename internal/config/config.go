package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/kevin07696/settlement-reconciler/internal/domain"
)

// AppName names the per-user config directory
const AppName = "settlement-reconciler"

// Config holds all reconciler configuration
type Config struct {
	ReportPath     string `yaml:"report_path"`
	ReportEncoding string `yaml:"report_encoding,omitempty"`

	ExcludedProductID    string   `yaml:"excluded_product_id"`
	ExclusionCustomerIDs []string `yaml:"exclusion_customer_ids"`
	SuppressionMarkers   []string `yaml:"suppression_markers,omitempty"`

	Processor ProcessorConfig `yaml:"processor"`
	APIKey    APIKeyConfig    `yaml:"api_key"`
	Output    OutputConfig    `yaml:"output"`
	Log       LogConfig       `yaml:"log"`
}

// ProcessorConfig holds payment processor API settings
type ProcessorConfig struct {
	BaseURL           string        `yaml:"base_url"`
	Timeout           time.Duration `yaml:"timeout"`
	RequestsPerSecond float64       `yaml:"requests_per_second"`
	MaxRetries        int           `yaml:"max_retries"`
}

// APIKeyConfig says where the processor API key comes from.
// Secret material is never written back to disk.
type APIKeyConfig struct {
	// Source is one of env, file, aws, vault, gcp
	Source string `yaml:"source"`
	// Path is the env var name, file path, AWS secret id, Vault KV path, or
	// GCP secret name
	Path string `yaml:"path,omitempty"`
	// Value is a key entered at the prompt
	Value string `yaml:"-"`

	AWSRegion   string `yaml:"aws_region,omitempty"`
	AWSProfile  string `yaml:"aws_profile,omitempty"`
	AWSEndpoint string `yaml:"aws_endpoint,omitempty"`

	VaultAddress    string `yaml:"vault_address,omitempty"`
	VaultAuthMethod string `yaml:"vault_auth_method,omitempty"`
	VaultToken      string `yaml:"-"`
	VaultRoleID     string `yaml:"vault_role_id,omitempty"`
	VaultSecretID   string `yaml:"-"`
	VaultMount      string `yaml:"vault_mount,omitempty"`
	VaultKVVersion  string `yaml:"vault_kv_version,omitempty"`
	VaultField      string `yaml:"vault_field,omitempty"`
	VaultNamespace  string `yaml:"vault_namespace,omitempty"`

	GCPProjectID string `yaml:"gcp_project_id,omitempty"`
	GCPEndpoint  string `yaml:"gcp_endpoint,omitempty"`
}

// OutputConfig holds optional export destinations
type OutputConfig struct {
	XLSXPath    string `yaml:"xlsx_path,omitempty"`
	PDFPath     string `yaml:"pdf_path,omitempty"`
	MetricsPath string `yaml:"metrics_path,omitempty"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level       string `yaml:"level"` // debug, info, warn, error
	Development bool   `yaml:"development"`
}

// Default returns a config with every default applied
func Default() *Config {
	cfg := &Config{Processor: ProcessorConfig{MaxRetries: 3}}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	if cfg.ReportEncoding == "" {
		cfg.ReportEncoding = "utf-8"
	}
	if cfg.Processor.BaseURL == "" {
		cfg.Processor.BaseURL = "https://api.stripe.com"
	}
	if cfg.Processor.Timeout == 0 {
		cfg.Processor.Timeout = 30 * time.Second
	}
	if cfg.Processor.RequestsPerSecond == 0 {
		cfg.Processor.RequestsPerSecond = 20
	}
	if cfg.APIKey.Source == "" {
		cfg.APIKey.Source = "env"
	}
	if cfg.APIKey.Source == "env" && cfg.APIKey.Path == "" {
		cfg.APIKey.Path = "RECON_API_KEY"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/settlement-reconciler/config.yaml
// (or the platform equivalent)
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "config.yaml"
	}
	return filepath.Join(dir, AppName, "config.yaml")
}

// LoadOptions controls where Load looks
type LoadOptions struct {
	// Base is the starting point, usually the last saved run; nil means Default
	Base *Config
	// ConfigPath is a YAML file layered over Base; a missing file is ignored
	// unless Required is set
	ConfigPath string
	Required   bool
	// EnvFile is loaded into the environment first; a missing file is ignored
	EnvFile string
}

// Load layers Base, the YAML file, the .env file and RECON_* environment
// variables, in that order. It does not validate.
func Load(opts LoadOptions) (*Config, error) {
	cfg := Default()
	if opts.Base != nil {
		clone := *opts.Base
		cfg = &clone
		applyDefaults(cfg)
	}

	if opts.ConfigPath != "" {
		if err := mergeFile(cfg, opts.ConfigPath); err != nil {
			if !errors.Is(err, fs.ErrNotExist) || opts.Required {
				return nil, err
			}
		}
	}

	if opts.EnvFile != "" {
		// existing environment variables win over the file
		if err := godotenv.Load(opts.EnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, domain.WrapError(domain.ErrorCodeConfigInvalid, "failed to load env file", err).
				WithDetail("path", opts.EnvFile)
		}
	}

	applyEnv(cfg)
	applyDefaults(cfg)
	return cfg, nil
}

func mergeFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return err
		}
		return domain.WrapError(domain.ErrorCodeConfigInvalid, "failed to read config file", err).
			WithDetail("path", path)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return domain.WrapError(domain.ErrorCodeConfigInvalid, "failed to parse config file", err).
			WithDetail("path", path)
	}
	return nil
}

func applyEnv(cfg *Config) {
	cfg.ReportPath = getEnv("RECON_REPORT_PATH", cfg.ReportPath)
	cfg.ReportEncoding = getEnv("RECON_REPORT_ENCODING", cfg.ReportEncoding)
	cfg.ExcludedProductID = getEnv("RECON_EXCLUDED_PRODUCT_ID", cfg.ExcludedProductID)
	cfg.ExclusionCustomerIDs = getEnvAsList("RECON_EXCLUSION_CUSTOMER_IDS", cfg.ExclusionCustomerIDs)
	cfg.SuppressionMarkers = getEnvAsList("RECON_SUPPRESSION_MARKERS", cfg.SuppressionMarkers)

	cfg.Processor.BaseURL = getEnv("RECON_PROCESSOR_BASE_URL", cfg.Processor.BaseURL)
	cfg.Processor.Timeout = getEnvAsDuration("RECON_PROCESSOR_TIMEOUT", cfg.Processor.Timeout)
	cfg.Processor.RequestsPerSecond = getEnvAsFloat("RECON_REQUESTS_PER_SECOND", cfg.Processor.RequestsPerSecond)
	cfg.Processor.MaxRetries = getEnvAsInt("RECON_MAX_RETRIES", cfg.Processor.MaxRetries)

	cfg.APIKey.Source = getEnv("RECON_API_KEY_SOURCE", cfg.APIKey.Source)
	cfg.APIKey.Path = getEnv("RECON_API_KEY_PATH", cfg.APIKey.Path)
	cfg.APIKey.AWSRegion = getEnv("AWS_REGION", cfg.APIKey.AWSRegion)
	cfg.APIKey.VaultAddress = getEnv("VAULT_ADDR", cfg.APIKey.VaultAddress)
	cfg.APIKey.VaultToken = getEnv("VAULT_TOKEN", cfg.APIKey.VaultToken)
	cfg.APIKey.VaultSecretID = getEnv("VAULT_SECRET_ID", cfg.APIKey.VaultSecretID)
	cfg.APIKey.GCPProjectID = getEnv("GCP_PROJECT_ID", cfg.APIKey.GCPProjectID)

	cfg.Output.XLSXPath = getEnv("RECON_XLSX_PATH", cfg.Output.XLSXPath)
	cfg.Output.PDFPath = getEnv("RECON_PDF_PATH", cfg.Output.PDFPath)
	cfg.Output.MetricsPath = getEnv("RECON_METRICS_PATH", cfg.Output.MetricsPath)

	cfg.Log.Level = getEnv("LOG_LEVEL", cfg.Log.Level)
	cfg.Log.Development = getEnvAsBool("LOG_DEVELOPMENT", cfg.Log.Development)
	if getEnv("ENVIRONMENT", "") == "production" {
		cfg.Log.Development = false
	}
}

// Validate checks the settings a run cannot proceed without
func (c *Config) Validate() error {
	var problems []string

	if c.ReportPath == "" {
		problems = append(problems, "report_path is required")
	}
	if strings.TrimSpace(c.ExcludedProductID) == "" {
		problems = append(problems, "excluded_product_id is required")
	}
	if c.Processor.BaseURL == "" {
		problems = append(problems, "processor.base_url is required")
	}
	if c.Processor.Timeout <= 0 {
		problems = append(problems, "processor.timeout must be positive")
	}
	if c.Processor.RequestsPerSecond <= 0 {
		problems = append(problems, "processor.requests_per_second must be positive")
	}
	if c.Processor.MaxRetries < 0 {
		problems = append(problems, "processor.max_retries must not be negative")
	}
	switch c.APIKey.Source {
	case "env", "file", "aws", "vault", "gcp":
	default:
		problems = append(problems, fmt.Sprintf("api_key.source %q is not one of env, file, aws, vault, gcp", c.APIKey.Source))
	}
	if c.APIKey.Source == "gcp" && c.APIKey.Value == "" && c.APIKey.GCPProjectID == "" &&
		!strings.HasPrefix(c.APIKey.Path, "projects/") {
		problems = append(problems, "api_key.gcp_project_id is required unless api_key.path is a full resource name")
	}
	if c.APIKey.Source != "env" && c.APIKey.Value == "" && c.APIKey.Path == "" {
		problems = append(problems, "api_key.path is required for source "+c.APIKey.Source)
	}

	if len(problems) > 0 {
		return domain.NewDomainError(domain.ErrorCodeConfigInvalid, strings.Join(problems, "; ")).
			WithDetail("problems", problems)
	}
	return nil
}

// Missing lists required values that are still empty, for prompting
func (c *Config) Missing() []string {
	var missing []string
	if c.ReportPath == "" {
		missing = append(missing, "report_path")
	}
	if strings.TrimSpace(c.ExcludedProductID) == "" {
		missing = append(missing, "excluded_product_id")
	}
	return missing
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsList splits a comma-separated variable, dropping blanks
func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	return SplitList(valueStr)
}

// SplitList splits a comma-separated list, trimming items and dropping blanks
func SplitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

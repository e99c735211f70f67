package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/zphere-io/tenantctl/pkg/orchestrator"
)

const (
	DefaultConfigPath = "/etc/zphere"
	ConfigFileName    = "tenantctl.yml"
)

// DefaultRequestTimeout bounds the sync-all request, in seconds.
const DefaultRequestTimeout = 300

// Config holds all tenantctl settings. Commands receive it at construction
// time instead of reading the process environment ad hoc.
type Config struct {
	// MasterDBURL is the sync connection URL for the master database
	// (ALEMBIC_DB_URL, falling back to DATABASE_URL).
	MasterDBURL string `yaml:"master_db_url"`

	// APIBaseURL is the backend admin API base, e.g. http://localhost:8000/api/v1
	APIBaseURL string `yaml:"api_base_url"`

	// AdminToken is the admin bearer token. Never logged.
	AdminToken string `yaml:"admin_token"`

	// MigrationRunner is an external master migration command, e.g.
	// "alembic upgrade head". Empty means migrations run in-process.
	MigrationRunner string `yaml:"migration_runner"`

	// ProvisionCommand is an external tenant provisioning command. Empty
	// means provisioning runs in-process.
	ProvisionCommand string `yaml:"provision_command"`

	// RequestTimeout is the admin API request timeout in seconds.
	RequestTimeout int `yaml:"request_timeout"`

	// sources tracks where each value came from
	sources map[string]string
}

func newDefault() *Config {
	return &Config{
		RequestTimeout: DefaultRequestTimeout,
		sources:        make(map[string]string),
	}
}

func attributeNames() []string {
	return []string{
		"master_db_url", "api_base_url", "admin_token",
		"migration_runner", "provision_command", "request_timeout",
	}
}

// Load loads configuration from file and environment variables.
// Environment variables take precedence over file values.
func Load() (*Config, error) {
	config := newDefault()
	for _, name := range attributeNames() {
		config.sources[name] = "default"
	}

	configPath := os.Getenv("TENANTCTL_CONFIG_PATH")
	if configPath == "" {
		configPath = DefaultConfigPath
	}
	configFile := filepath.Join(configPath, ConfigFileName)

	if data, err := os.ReadFile(configFile); err == nil {
		var fileConfig Config
		if err := yaml.Unmarshal(data, &fileConfig); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", configFile, err)
		}
		config.applyFileConfig(&fileConfig)
	}

	config.applyEnvConfig()

	return config, nil
}

func (c *Config) applyFileConfig(file *Config) {
	if file.MasterDBURL != "" {
		c.MasterDBURL = file.MasterDBURL
		c.sources["master_db_url"] = "file"
	}
	if file.APIBaseURL != "" {
		c.APIBaseURL = file.APIBaseURL
		c.sources["api_base_url"] = "file"
	}
	if file.AdminToken != "" {
		c.AdminToken = file.AdminToken
		c.sources["admin_token"] = "file"
	}
	if file.MigrationRunner != "" {
		c.MigrationRunner = file.MigrationRunner
		c.sources["migration_runner"] = "file"
	}
	if file.ProvisionCommand != "" {
		c.ProvisionCommand = file.ProvisionCommand
		c.sources["provision_command"] = "file"
	}
	if file.RequestTimeout != 0 {
		c.RequestTimeout = file.RequestTimeout
		c.sources["request_timeout"] = "file"
	}
}

func (c *Config) applyEnvConfig() {
	if val := os.Getenv("ALEMBIC_DB_URL"); val != "" {
		c.MasterDBURL = val
		c.sources["master_db_url"] = "environment"
	} else if val := os.Getenv("DATABASE_URL"); val != "" {
		c.MasterDBURL = val
		c.sources["master_db_url"] = "environment"
	}
	if val := os.Getenv("API_BASE_URL"); val != "" {
		c.APIBaseURL = val
		c.sources["api_base_url"] = "environment"
	}
	if val := os.Getenv("ADMIN_TOKEN"); val != "" {
		c.AdminToken = val
		c.sources["admin_token"] = "environment"
	}
	if val := os.Getenv("MIGRATION_RUNNER"); val != "" {
		c.MigrationRunner = val
		c.sources["migration_runner"] = "environment"
	}
	if val := os.Getenv("TENANT_PROVISION_CMD"); val != "" {
		c.ProvisionCommand = val
		c.sources["provision_command"] = "environment"
	}
	if val := os.Getenv("TENANTCTL_REQUEST_TIMEOUT"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			c.RequestTimeout = i
			c.sources["request_timeout"] = "environment"
		}
	}
}

// Source returns the source of a configuration attribute.
func (c *Config) Source(name string) string {
	if c.sources == nil {
		return "default"
	}
	if s, ok := c.sources[name]; ok {
		return s
	}
	return "default"
}

// RequireMasterDB returns the master database URL or a precondition error
// before any external work happens.
func (c *Config) RequireMasterDB() (string, error) {
	if c.MasterDBURL == "" {
		return "", &orchestrator.PreconditionError{Missing: "ALEMBIC_DB_URL or DATABASE_URL"}
	}
	return c.MasterDBURL, nil
}

// RequireAPICredentials returns the admin API base URL and bearer token, or
// a precondition error naming the first missing credential.
func (c *Config) RequireAPICredentials() (baseURL, token string, err error) {
	if c.APIBaseURL == "" {
		return "", "", &orchestrator.PreconditionError{Missing: "API_BASE_URL"}
	}
	if c.AdminToken == "" {
		return "", "", &orchestrator.PreconditionError{Missing: "ADMIN_TOKEN"}
	}
	return c.APIBaseURL, c.AdminToken, nil
}

// RunnerArgv splits the external migration runner setting into argv form.
// Empty when no external runner is configured.
func (c *Config) RunnerArgv() []string {
	return strings.Fields(c.MigrationRunner)
}

// ProvisionArgv splits the external provisioning command into argv form.
func (c *Config) ProvisionArgv() []string {
	return strings.Fields(c.ProvisionCommand)
}

// RequestTimeoutDuration returns the admin API timeout as a duration.
func (c *Config) RequestTimeoutDuration() time.Duration {
	return time.Duration(c.RequestTimeout) * time.Second
}

// String renders the configuration for diagnostics with the admin token
// redacted.
func (c *Config) String() string {
	token := "(not set)"
	if c.AdminToken != "" {
		token = "(redacted)"
	}
	return fmt.Sprintf("master_db_url=%s api_base_url=%s admin_token=%s migration_runner=%q request_timeout=%ds",
		redactURL(c.MasterDBURL), c.APIBaseURL, token, c.MigrationRunner, c.RequestTimeout)
}

// redactURL strips userinfo from a connection URL.
func redactURL(raw string) string {
	if raw == "" {
		return "(not set)"
	}
	if at := strings.LastIndex(raw, "@"); at != -1 {
		if scheme := strings.Index(raw, "://"); scheme != -1 {
			return raw[:scheme+3] + "***" + raw[at:]
		}
	}
	return raw
}

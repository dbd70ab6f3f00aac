package config

import (
	"fmt"
	"os"
	"time"

	"github.com/goccy/go-yaml"
)

// DefaultSigningSecretParameter is where the Slack signing secret lives
// unless the operator overrides it.
const DefaultSigningSecretParameter = "/live-laugh-ship/slack-signing-secret"

type Config struct {
	Storage  StorageConfig  `yaml:"storage"`
	Secrets  SecretsConfig  `yaml:"secrets"`
	Workflow WorkflowConfig `yaml:"workflow"`
	SSO      SSOConfig      `yaml:"sso"`
	Report   ReportConfig   `yaml:"report"`
	Audit    AuditConfig    `yaml:"audit"`
}

// StorageConfig selects the mapping store backend.
type StorageConfig struct {
	Type   string         `yaml:"type"`    // e.g., "dynamodb", "memory"
	Config map[string]any `yaml:",inline"` // Capture remaining fields
}

// SecretsConfig holds configuration for secret retrieval.
type SecretsConfig struct {
	// SigningSecretParameter is the parameter store name holding the
	// Slack signing secret.
	SigningSecretParameter string `yaml:"signing_secret_parameter"`
}

// WorkflowConfig holds configuration for dispatching the grant/revoke
// workflow.
type WorkflowConfig struct {
	StateMachineArn string `yaml:"state_machine_arn"`
}

func (c *WorkflowConfig) Validate() error {
	if c.StateMachineArn == "" {
		return fmt.Errorf("state_machine_arn is required")
	}
	return nil
}

// SSOConfig holds configuration for the SSO control plane and directory.
type SSOConfig struct {
	InstanceArn     string `yaml:"instance_arn"`
	IdentityStoreID string `yaml:"identity_store_id"`

	// PollInterval is how long to wait between assignment status polls.
	// Zero means the operator default.
	PollInterval time.Duration `yaml:"poll_interval"`
}

func (c *SSOConfig) Validate() error {
	if c.InstanceArn == "" {
		return fmt.Errorf("instance_arn is required")
	}
	return nil
}

// ReportConfig holds configuration for the usage report step.
type ReportConfig struct {
	// CloudTrailLogGroup is the CloudWatch log group CloudTrail writes to.
	CloudTrailLogGroup string `yaml:"cloudtrail_log_group"`

	// ContactEmail receives the usage report.
	ContactEmail string `yaml:"contact_email"`

	// FromEmail is the verified sender address.
	FromEmail string `yaml:"from_email"`

	// PollInterval is how long to wait between query result polls.
	// Zero means the reporter default.
	PollInterval time.Duration `yaml:"poll_interval"`
}

func (c *ReportConfig) Validate() error {
	if c.CloudTrailLogGroup == "" {
		return fmt.Errorf("cloudtrail_log_group is required")
	}
	if c.ContactEmail == "" {
		return fmt.Errorf("contact_email is required")
	}
	if c.FromEmail == "" {
		return fmt.Errorf("from_email is required")
	}
	return nil
}

// AuditConfig holds configuration for auditing.
type AuditConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
	Type    string `yaml:"type"` // e.g., "file", "memory"
}

// Load reads and parses the configuration file at the given path.
// It returns a Config struct or an error if loading/parsing/validation fails.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config file: %w", err)
	}
	return &cfg, nil
}

// Validate checks the structural parts of the configuration. Sections that
// only some entrypoints need (workflow, sso, report) are validated by the
// commands that use them.
func (c *Config) Validate() error {
	switch c.Storage.Type {
	case "", "dynamodb", "memory":
	default:
		return fmt.Errorf("unknown storage type %q", c.Storage.Type)
	}

	if c.Audit.Enabled {
		switch c.Audit.Type {
		case "file":
			if c.Audit.Path == "" {
				return fmt.Errorf("audit type %q requires a path", c.Audit.Type)
			}
		case "", "memory", "noop":
		default:
			return fmt.Errorf("unknown audit type %q", c.Audit.Type)
		}
	}

	if c.Secrets.SigningSecretParameter == "" {
		c.Secrets.SigningSecretParameter = DefaultSigningSecretParameter
	}
	return nil
}

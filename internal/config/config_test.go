package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("writing config fixture: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
storage:
  type: dynamodb
  table_name: break-glass-access
workflow:
  state_machine_arn: arn:aws:states:eu-west-1:123456789012:stateMachine:break-glass
sso:
  instance_arn: arn:aws:sso:::instance/ssoins-1234567890abcdef
  identity_store_id: d-1234567890
  poll_interval: 10s
report:
  cloudtrail_log_group: cloudtrail
  contact_email: security@example.com
  from_email: no-reply@example.com
audit:
  enabled: true
  type: file
  path: /var/log/break-glass-audit.jsonl
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if got, want := cfg.Storage.Type, "dynamodb"; got != want {
		t.Errorf("Storage.Type = %q, want %q", got, want)
	}
	if got, want := cfg.Storage.Config["table_name"], any("break-glass-access"); got != want {
		t.Errorf("Storage.Config[table_name] = %v, want %v", got, want)
	}
	if got, want := cfg.SSO.PollInterval, 10*time.Second; got != want {
		t.Errorf("SSO.PollInterval = %v, want %v", got, want)
	}
	if got, want := cfg.Secrets.SigningSecretParameter, DefaultSigningSecretParameter; got != want {
		t.Errorf("Secrets.SigningSecretParameter = %q, want %q", got, want)
	}
}

func TestLoadRejectsUnknownStorageType(t *testing.T) {
	path := writeConfig(t, "storage:\n  type: etcd\n")
	if _, err := Load(path); err == nil {
		t.Fatal("Load accepted unknown storage type")
	}
}

func TestLoadRejectsFileAuditWithoutPath(t *testing.T) {
	path := writeConfig(t, "audit:\n  enabled: true\n  type: file\n")
	if _, err := Load(path); err == nil {
		t.Fatal("Load accepted file audit config without a path")
	}
}

func TestSectionValidation(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantErr bool
	}{
		{"workflow missing arn", (&WorkflowConfig{}).Validate(), true},
		{"workflow ok", (&WorkflowConfig{StateMachineArn: "arn:..."}).Validate(), false},
		{"sso missing arn", (&SSOConfig{}).Validate(), true},
		{"report missing emails", (&ReportConfig{CloudTrailLogGroup: "g"}).Validate(), true},
		{"report ok", (&ReportConfig{
			CloudTrailLogGroup: "g",
			ContactEmail:       "a@example.com",
			FromEmail:          "b@example.com",
		}).Validate(), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if (tt.err != nil) != tt.wantErr {
				t.Errorf("got err %v, wantErr %v", tt.err, tt.wantErr)
			}
		})
	}
}

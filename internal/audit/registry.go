package audit

import (
	"fmt"

	"github.com/jSherz/break-glass-access/internal/config"
	"github.com/jSherz/break-glass-access/internal/core"
)

// Build constructs the auditor selected by the config. Auditing disabled
// means a no-op auditor so callers never branch.
func Build(cfg config.AuditConfig) (core.Auditor, error) {
	if !cfg.Enabled {
		return NewNoopAuditor(), nil
	}
	switch cfg.Type {
	case "file":
		auditor, err := NewFileAuditor(cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("building file auditor: %w", err)
		}
		return auditor, nil
	case "memory":
		return NewInMemoryAuditor(), nil
	case "", "noop":
		return NewNoopAuditor(), nil
	default:
		return nil, fmt.Errorf("unknown audit type %q", cfg.Type)
	}
}

package core

import (
	"encoding/json"
	"fmt"
)

// BreakGlassEvent is the canonical payload threaded through every stage of
// the break-glass pipeline: from the approved webhook request into the
// workflow execution and on to the grant, revoke and report steps.
//
// Unknown fields received alongside the known ones are preserved in Extra
// and written back out on marshalling, so intermediaries never drop data
// added by newer producers.
type BreakGlassEvent struct {
	// AccountID is the target cloud account.
	AccountID string

	// PermissionSetArn identifies the permission set being requested.
	PermissionSetArn string

	// PrincipalID is the SSO principal resolved from the chat identity.
	PrincipalID string

	// PrincipalUsername is the human-readable name of the principal.
	PrincipalUsername string

	// Extra holds unrecognized fields for forward-compatible passthrough.
	Extra map[string]any
}

// Validate checks that all required fields are present.
func (e BreakGlassEvent) Validate() error {
	if e.AccountID == "" {
		return fmt.Errorf("accountId is required")
	}
	if e.PermissionSetArn == "" {
		return fmt.Errorf("permissionSetArn is required")
	}
	if e.PrincipalID == "" {
		return fmt.Errorf("principalId is required")
	}
	if e.PrincipalUsername == "" {
		return fmt.Errorf("principalUsername is required")
	}
	return nil
}

func (e BreakGlassEvent) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(e.Extra)+4)
	for k, v := range e.Extra {
		out[k] = v
	}
	out["accountId"] = e.AccountID
	out["permissionSetArn"] = e.PermissionSetArn
	out["principalId"] = e.PrincipalID
	out["principalUsername"] = e.PrincipalUsername
	return json.Marshal(out)
}

func (e *BreakGlassEvent) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	str := func(key string) string {
		v, _ := raw[key].(string)
		return v
	}

	e.AccountID = str("accountId")
	e.PermissionSetArn = str("permissionSetArn")
	e.PrincipalID = str("principalId")
	e.PrincipalUsername = str("principalUsername")

	delete(raw, "accountId")
	delete(raw, "permissionSetArn")
	delete(raw, "principalId")
	delete(raw, "principalUsername")
	if len(raw) > 0 {
		e.Extra = raw
	} else {
		e.Extra = nil
	}
	return nil
}

// ReportEvent is the input to the reporting workflow step: the break-glass
// event plus the time access was granted.
type ReportEvent struct {
	BreakGlassEvent

	// StartTime is the ISO-8601 timestamp the access window opened.
	StartTime string
}

func (e ReportEvent) Validate() error {
	if err := e.BreakGlassEvent.Validate(); err != nil {
		return err
	}
	if e.StartTime == "" {
		return fmt.Errorf("startTime is required")
	}
	return nil
}

func (e ReportEvent) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(e.Extra)+5)
	for k, v := range e.Extra {
		out[k] = v
	}
	out["accountId"] = e.AccountID
	out["permissionSetArn"] = e.PermissionSetArn
	out["principalId"] = e.PrincipalID
	out["principalUsername"] = e.PrincipalUsername
	out["startTime"] = e.StartTime
	return json.Marshal(out)
}

func (e *ReportEvent) UnmarshalJSON(data []byte) error {
	if err := e.BreakGlassEvent.UnmarshalJSON(data); err != nil {
		return err
	}
	if v, ok := e.Extra["startTime"].(string); ok {
		e.StartTime = v
		delete(e.Extra, "startTime")
		if len(e.Extra) == 0 {
			e.Extra = nil
		}
	}
	return nil
}

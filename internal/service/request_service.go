// Package service drives an authenticated button click through principal
// resolution, authorization and workflow dispatch.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/jSherz/break-glass-access/internal/api/middleware"
	"github.com/jSherz/break-glass-access/internal/core"
	"github.com/jSherz/break-glass-access/internal/slack"
)

// Fixed user-facing messages. These are part of the Slack contract; change
// them and the ephemeral responses users see change too.
const (
	TextGlassBroken  = "Glass broken - access incoming."
	TextAccessDenied = "You do not have access to this account / role."
	TextUnknownError = "An unknown error occurred. CALL THAT PAGER!"
)

type OutcomeKind string

const (
	// OutcomeDispatched means the workflow execution was started.
	OutcomeDispatched OutcomeKind = "dispatched"

	// OutcomeUnmappedIdentity means the Slack user has no stored SSO
	// principal mapping. A normal, user-facing condition.
	OutcomeUnmappedIdentity OutcomeKind = "unmapped_identity"

	// OutcomeAccessDenied means the principal lacks the requested grant.
	OutcomeAccessDenied OutcomeKind = "access_denied"

	// OutcomeDispatchFailed means authorization passed but the workflow
	// could not be started. Recovered into a soft user-facing message so
	// Slack does not retry an already-approved decision.
	OutcomeDispatchFailed OutcomeKind = "dispatch_failed"
)

// Outcome is the business result of a handled button click. Every outcome
// renders as a 200 ephemeral message; Kind selects the text.
type Outcome struct {
	Kind OutcomeKind
	Text string

	// Execution is set when Kind is OutcomeDispatched.
	Execution core.ExecutionHandle
}

// RequestService resolves and authorizes break-glass requests and triggers
// the grant/revoke workflow.
type RequestService struct {
	storage    core.DataStorage
	users      core.UserLookup
	dispatcher core.WorkflowStarter
	auditor    core.Auditor
}

func NewRequestService(
	storage core.DataStorage,
	users core.UserLookup,
	dispatcher core.WorkflowStarter,
	auditor core.Auditor,
) *RequestService {
	return &RequestService{
		storage:    storage,
		users:      users,
		dispatcher: dispatcher,
		auditor:    auditor,
	}
}

// HandleButtonAction runs the pipeline for one verified, decoded button
// click. Business conditions (unmapped identity, denied access, dispatch
// hiccup) come back as Outcomes; structural defects (unresolvable action,
// store faults) come back as errors for the transport layer to surface.
func (s *RequestService) HandleButtonAction(ctx context.Context, action *slack.ButtonAction) (Outcome, error) {
	logger := log.Ctx(ctx)
	auditEntry := core.AuditEntry{
		ID:             middleware.CorrelationCtx(ctx),
		Time:           time.Now(),
		Action:         "request.received",
		ExternalUserID: action.UserID,
	}
	defer func() {
		if err := s.auditor.Log(auditEntry); err != nil {
			logger.Error().Err(err).Msg("failed to write audit log entry for break-glass request")
		}
	}()

	accountID, err := action.AccountID()
	if err != nil {
		auditEntry.Error = err.Error()
		return Outcome{}, err
	}
	auditEntry.AccountID = accountID

	matched, err := action.MatchAction()
	if err != nil {
		auditEntry.Error = err.Error()
		return Outcome{}, fmt.Errorf("matching clicked action: %w", err)
	}
	permissionSetArn := matched.Value
	auditEntry.PermissionSetArn = permissionSetArn

	principalID, err := s.storage.ResolvePrincipal(ctx, action.UserID)
	if err != nil {
		auditEntry.Error = err.Error()
		return Outcome{}, fmt.Errorf("resolving principal: %w", err)
	}
	if principalID == "" {
		logger.Info().
			Str("external_user_id", action.UserID).
			Msg("no SSO principal mapping for user")
		auditEntry.Action = "request.unmapped"
		return Outcome{
			Kind: OutcomeUnmappedIdentity,
			Text: fmt.Sprintf(
				"We couldn't find an SSO principal for your ID %s - ask an operator to create a mapping for you.",
				action.UserID),
		}, nil
	}
	auditEntry.PrincipalID = principalID

	username, err := s.users.UserIDToUserName(ctx, principalID)
	if err != nil {
		auditEntry.Error = err.Error()
		return Outcome{}, fmt.Errorf("looking up username: %w", err)
	}

	allowed, err := s.storage.UserCanAccess(ctx, accountID, permissionSetArn, principalID)
	if err != nil {
		// Treated like a dispatch hiccup: the decision could not be made,
		// but surfacing a 5xx would make Slack redeliver the click.
		logger.Error().Err(err).Msg("access check failed")
		auditEntry.Action = "request.errored"
		auditEntry.Error = err.Error()
		return Outcome{Kind: OutcomeDispatchFailed, Text: TextUnknownError}, nil
	}
	if !allowed {
		logger.Info().
			Str("account_id", accountID).
			Str("permission_set_arn", permissionSetArn).
			Str("principal_id", principalID).
			Msg("user not authorised")
		auditEntry.Action = "request.denied"
		return Outcome{Kind: OutcomeAccessDenied, Text: TextAccessDenied}, nil
	}

	event := core.BreakGlassEvent{
		AccountID:         accountID,
		PermissionSetArn:  permissionSetArn,
		PrincipalID:       principalID,
		PrincipalUsername: username,
	}
	if err := event.Validate(); err != nil {
		auditEntry.Error = err.Error()
		return Outcome{}, fmt.Errorf("building break-glass event: %w", err)
	}

	input, err := json.MarshalIndent(event, "", "  ")
	if err != nil {
		auditEntry.Error = err.Error()
		return Outcome{}, fmt.Errorf("encoding break-glass event: %w", err)
	}

	handle, err := s.dispatcher.StartExecution(ctx, input)
	if err != nil {
		logger.Error().Err(err).Msg("could not start break-glass workflow")
		auditEntry.Action = "request.dispatch_failed"
		auditEntry.Granted = true
		auditEntry.Error = err.Error()
		return Outcome{Kind: OutcomeDispatchFailed, Text: TextUnknownError}, nil
	}

	logger.Info().
		Str("account_id", accountID).
		Str("permission_set_arn", permissionSetArn).
		Str("principal_id", principalID).
		Str("execution_arn", handle.ExecutionArn).
		Msg("breaking the glass")

	auditEntry.Action = "request.dispatched"
	auditEntry.Granted = true
	auditEntry.Metadata = map[string]any{"execution_arn": handle.ExecutionArn}

	return Outcome{
		Kind:      OutcomeDispatched,
		Text:      TextGlassBroken,
		Execution: handle,
	}, nil
}

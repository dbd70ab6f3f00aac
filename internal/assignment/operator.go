package assignment

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/jSherz/break-glass-access/internal/core"
)

// DefaultPollInterval is how long the operator sleeps between status polls.
const DefaultPollInterval = 5 * time.Second

// OperationError is a terminal FAILED from the control plane, carrying its
// diagnostic payload verbatim.
type OperationError struct {
	Kind       core.OperationKind
	Diagnostic string
}

func (e *OperationError) Error() string {
	if e.Kind == core.KindRevoke {
		return fmt.Sprintf("failed to revoke access: %s", e.Diagnostic)
	}
	return fmt.Sprintf("failed to assign access: %s", e.Diagnostic)
}

// Operator applies grant and revoke operations against the control plane
// and polls each one to a terminal status.
//
// There is no retry ceiling: the loop runs until the operation completes or
// ctx is cancelled. Callers needing a hard deadline wrap the context.
type Operator struct {
	plane        core.ControlPlane
	pollInterval time.Duration
}

func NewOperator(plane core.ControlPlane, pollInterval time.Duration) *Operator {
	if pollInterval <= 0 {
		pollInterval = DefaultPollInterval
	}
	return &Operator{
		plane:        plane,
		pollInterval: pollInterval,
	}
}

// Apply submits the operation and waits for it to complete. Duplicate calls
// for the same tuple are not deduplicated here; the control plane treats
// repeated create/delete as no-ops.
func (o *Operator) Apply(ctx context.Context, op core.AssignmentOperation) error {
	logger := log.Ctx(ctx).With().
		Str("kind", string(op.Kind)).
		Str("account_id", op.TargetAccountID).
		Str("permission_set_arn", op.PermissionSetArn).
		Str("principal_id", op.PrincipalID).
		Logger()

	submit := o.plane.CreateAssignment
	describe := o.plane.DescribeCreationStatus
	if op.Kind == core.KindRevoke {
		submit = o.plane.DeleteAssignment
		describe = o.plane.DescribeDeletionStatus
	}

	initial, err := submit(ctx, op)
	if err != nil {
		return fmt.Errorf("submitting %s: %w", op.Kind, err)
	}

	switch initial.Status {
	case core.StatusSucceeded:
		logger.Info().Msg("assignment completed with no waiting")
		return nil
	case core.StatusFailed:
		return &OperationError{Kind: op.Kind, Diagnostic: initial.Diagnostic}
	}

	requestID := initial.RequestID

	for {
		current, err := describe(ctx, requestID)
		if err != nil {
			return fmt.Errorf("polling %s status: %w", op.Kind, err)
		}

		switch current.Status {
		case core.StatusSucceeded:
			logger.Info().Str("request_id", requestID).Msg("assignment completed after waiting")
			return nil
		case core.StatusFailed:
			return &OperationError{Kind: op.Kind, Diagnostic: current.Diagnostic}
		}

		logger.Debug().
			Str("request_id", requestID).
			Str("status", string(current.Status)).
			Msg("assignment still in progress")

		if err := sleep(ctx, o.pollInterval); err != nil {
			return err
		}
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

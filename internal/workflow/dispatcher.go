// Package workflow triggers the durable grant/revoke workflow on Step
// Functions.
package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sfn"

	"github.com/jSherz/break-glass-access/internal/core"
)

type sfnAPI interface {
	StartExecution(ctx context.Context, params *sfn.StartExecutionInput, optFns ...func(*sfn.Options)) (*sfn.StartExecutionOutput, error)
}

var _ core.WorkflowStarter = (*Dispatcher)(nil)

// Dispatcher starts one state machine execution per approved request. It
// does not retry and does not deduplicate; a webhook redelivered by the
// sender starts a second execution.
type Dispatcher struct {
	client          sfnAPI
	stateMachineArn string
}

func NewDispatcher(client sfnAPI, stateMachineArn string) *Dispatcher {
	return &Dispatcher{
		client:          client,
		stateMachineArn: stateMachineArn,
	}
}

func (d *Dispatcher) StartExecution(ctx context.Context, input []byte) (core.ExecutionHandle, error) {
	result, err := d.client.StartExecution(ctx, &sfn.StartExecutionInput{
		StateMachineArn: aws.String(d.stateMachineArn),
		Input:           aws.String(string(input)),
	})
	if err != nil {
		return core.ExecutionHandle{}, fmt.Errorf("starting workflow execution: %w", err)
	}

	handle := core.ExecutionHandle{
		ExecutionArn: aws.ToString(result.ExecutionArn),
	}
	if result.StartDate != nil {
		handle.StartDate = *result.StartDate
	} else {
		handle.StartDate = time.Now()
	}
	return handle, nil
}

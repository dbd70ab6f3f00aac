// Package report builds and emails the post-access audit report from
// CloudTrail activity.
package report

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs"
	logstypes "github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs/types"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	sestypes "github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/ssoadmin"
	"github.com/rs/zerolog/log"

	"github.com/jSherz/break-glass-access/internal/core"
)

// DefaultPollInterval is how long we wait between Logs Insights result
// polls. Queries over a large CloudTrail group routinely take a while.
const DefaultPollInterval = 15 * time.Second

type logsAPI interface {
	StartQuery(ctx context.Context, params *cloudwatchlogs.StartQueryInput, optFns ...func(*cloudwatchlogs.Options)) (*cloudwatchlogs.StartQueryOutput, error)
	GetQueryResults(ctx context.Context, params *cloudwatchlogs.GetQueryResultsInput, optFns ...func(*cloudwatchlogs.Options)) (*cloudwatchlogs.GetQueryResultsOutput, error)
}

type permissionSetAPI interface {
	DescribePermissionSet(ctx context.Context, params *ssoadmin.DescribePermissionSetInput, optFns ...func(*ssoadmin.Options)) (*ssoadmin.DescribePermissionSetOutput, error)
}

type sesAPI interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

// Reporter queries CloudTrail for what the principal did during the access
// window and emails the result.
type Reporter struct {
	logs         logsAPI
	logGroupName string
	sso          permissionSetAPI
	instanceArn  string
	ses          sesAPI
	contactEmail string
	fromEmail    string

	now          func() time.Time
	pollInterval time.Duration
}

func NewReporter(
	logs logsAPI,
	logGroupName string,
	sso permissionSetAPI,
	instanceArn string,
	sesClient sesAPI,
	contactEmail string,
	fromEmail string,
) *Reporter {
	return &Reporter{
		logs:         logs,
		logGroupName: logGroupName,
		sso:          sso,
		instanceArn:  instanceArn,
		ses:          sesClient,
		contactEmail: contactEmail,
		fromEmail:    fromEmail,
		now:          time.Now,
		pollInterval: DefaultPollInterval,
	}
}

// WithPollInterval overrides how long the reporter waits between query
// result polls. Non-positive values keep the default.
func (r *Reporter) WithPollInterval(interval time.Duration) *Reporter {
	if interval > 0 {
		r.pollInterval = interval
	}
	return r
}

// WithClock overrides the time source and poll interval. Used in tests.
func (r *Reporter) WithClock(now func() time.Time, pollInterval time.Duration) *Reporter {
	r.now = now
	r.pollInterval = pollInterval
	return r
}

// Report runs the activity queries for the access window and sends the
// email. Failures propagate so the orchestrator's alerting can act.
func (r *Reporter) Report(ctx context.Context, event core.ReportEvent) error {
	if err := event.Validate(); err != nil {
		return fmt.Errorf("invalid report event: %w", err)
	}

	startTime, err := time.Parse(time.RFC3339, event.StartTime)
	if err != nil {
		return fmt.Errorf("parsing startTime %q: %w", event.StartTime, err)
	}
	endTime := r.now()

	ssoUserActivity, err := r.searchCloudTrail(ctx,
		fmt.Sprintf("filter userIdentity.principalId == %q\n", event.PrincipalID)+
			"| stats count(*) as num_events by eventSource, eventName, readOnly\n"+
			"| sort by readOnly asc, num_events desc",
		startTime, endTime)
	if err != nil {
		return fmt.Errorf("querying SSO user activity: %w", err)
	}

	permissionSet, err := r.sso.DescribePermissionSet(ctx, &ssoadmin.DescribePermissionSetInput{
		InstanceArn:      aws.String(r.instanceArn),
		PermissionSetArn: aws.String(event.PermissionSetArn),
	})
	if err != nil {
		return fmt.Errorf("describing permission set: %w", err)
	}
	permissionSetName := ""
	if permissionSet.PermissionSet != nil {
		permissionSetName = aws.ToString(permissionSet.PermissionSet.Name)
	}

	// SSO sign-ins assume a reserved role named after the permission set;
	// activity within the account shows up under that assumed role.
	assumedRoleActivity, err := r.searchCloudTrail(ctx,
		fmt.Sprintf(
			"filter userIdentity.arn like /arn:aws:sts::%s:assumed-role\\/AWSReservedSSO_%s_.*\\/%s/\n",
			event.AccountID, permissionSetName, event.PrincipalUsername)+
			"| stats count(*) as num_events by eventSource, eventName, readOnly\n"+
			"| sort by readOnly asc, num_events desc",
		startTime, endTime)
	if err != nil {
		return fmt.Errorf("querying assumed role activity: %w", err)
	}

	text, html, err := renderReport(reportData{
		Username:            event.PrincipalUsername,
		AccountID:           event.AccountID,
		StartTime:           startTime,
		EndTime:             endTime,
		SSOUserActivity:     ssoUserActivity,
		AssumedRoleActivity: assumedRoleActivity,
	})
	if err != nil {
		return fmt.Errorf("rendering report: %w", err)
	}

	_, err = r.ses.SendEmail(ctx, &ses.SendEmailInput{
		Destination: &sestypes.Destination{
			ToAddresses: []string{r.contactEmail},
		},
		Message: &sestypes.Message{
			Body: &sestypes.Body{
				Html: &sestypes.Content{
					Charset: aws.String("utf-8"),
					Data:    aws.String(html),
				},
				Text: &sestypes.Content{
					Charset: aws.String("utf-8"),
					Data:    aws.String(text),
				},
			},
			Subject: &sestypes.Content{
				Charset: aws.String("utf-8"),
				Data:    aws.String("Break glass access report for " + event.PrincipalUsername),
			},
		},
		Source: aws.String(r.fromEmail),
	})
	if err != nil {
		return fmt.Errorf("sending report email: %w", err)
	}

	log.Ctx(ctx).Info().
		Str("principal_username", event.PrincipalUsername).
		Str("account_id", event.AccountID).
		Msg("reported on access")
	return nil
}

// searchCloudTrail runs one Logs Insights query and polls until it
// completes, returning rows keyed by column name.
func (r *Reporter) searchCloudTrail(
	ctx context.Context,
	queryString string,
	startTime, endTime time.Time,
) ([]map[string]string, error) {
	query, err := r.logs.StartQuery(ctx, &cloudwatchlogs.StartQueryInput{
		LogGroupName: aws.String(r.logGroupName),
		QueryString:  aws.String(queryString),
		StartTime:    aws.Int64(startTime.Unix()),
		EndTime:      aws.Int64(endTime.Unix() + 1),
	})
	if err != nil {
		return nil, fmt.Errorf("starting logs query: %w", err)
	}

	for {
		results, err := r.logs.GetQueryResults(ctx, &cloudwatchlogs.GetQueryResultsInput{
			QueryId: query.QueryId,
		})
		if err != nil {
			return nil, fmt.Errorf("fetching logs query results: %w", err)
		}

		switch results.Status {
		case logstypes.QueryStatusComplete:
			return formatResults(results.Results), nil
		case logstypes.QueryStatusFailed, logstypes.QueryStatusCancelled, logstypes.QueryStatusTimeout:
			return nil, fmt.Errorf("logs query finished with status %s", results.Status)
		}

		log.Ctx(ctx).Debug().
			Str("status", string(results.Status)).
			Msg("waiting for logs query")

		timer := time.NewTimer(r.pollInterval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
}

func formatResults(results [][]logstypes.ResultField) []map[string]string {
	rows := make([]map[string]string, 0, len(results))
	for _, result := range results {
		row := make(map[string]string, len(result))
		for _, column := range result {
			// All columns are titled in these queries.
			row[aws.ToString(column.Field)] = aws.ToString(column.Value)
		}
		rows = append(rows, row)
	}
	return rows
}

package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/jSherz/break-glass-access/internal/api"
	"github.com/jSherz/break-glass-access/internal/api/presenter"
	"github.com/jSherz/break-glass-access/internal/slack"
)

// SimulateOptions describes the button click to fabricate.
type SimulateOptions struct {
	// UserID and UserName identify the Slack user clicking the button.
	UserID   string
	UserName string

	// AccountID is the target account, encoded into the callback_id.
	AccountID string

	// PermissionSetArn is the value carried by the clicked button.
	PermissionSetArn string

	// SigningSecret signs the fabricated request. It must match the
	// secret the server fetches from its parameter store.
	SigningSecret string
}

// SimulateButtonClick fabricates a signed interactive-button webhook and
// posts it to the server, returning the ephemeral message and HTTP status.
func (c *Client) SimulateButtonClick(ctx context.Context, opts SimulateOptions) (*presenter.EphemeralMessage, int, error) {
	action := map[string]string{
		"name":  "break_glass",
		"type":  "button",
		"value": opts.PermissionSetArn,
	}
	payload := map[string]any{
		"type":    "interactive_message",
		"actions": []any{action},
		"user": map[string]string{
			"id":   opts.UserID,
			"name": opts.UserName,
		},
		"original_message": map[string]any{
			"attachments": []any{
				map[string]any{
					"callback_id": "deployment_" + opts.AccountID,
					"actions":     []any{action},
				},
			},
		},
	}

	marshalled, err := json.Marshal(payload)
	if err != nil {
		return nil, 0, fmt.Errorf("marshalling payload: %w", err)
	}
	body := url.Values{"payload": {string(marshalled)}}.Encode()

	timestamp := strconv.FormatInt(time.Now().Unix(), 10)
	signature := slack.Sign(timestamp, []byte(body), opts.SigningSecret)

	req, err := http.NewRequestWithContext(ctx, "POST", c.url(api.SlackWebhookRoute), strings.NewReader(body))
	if err != nil {
		return nil, 0, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set(slack.TimestampHeader, timestamp)
	req.Header.Set(slack.SignatureHeader, signature)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("connection failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	var message presenter.EphemeralMessage
	if err := json.NewDecoder(resp.Body).Decode(&message); err != nil {
		// non-JSON bodies come back on signature and decode rejections
		return nil, resp.StatusCode, nil
	}
	return &message, resp.StatusCode, nil
}

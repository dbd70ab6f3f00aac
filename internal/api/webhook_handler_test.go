package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/jSherz/break-glass-access/internal/audit"
	"github.com/jSherz/break-glass-access/internal/core"
	"github.com/jSherz/break-glass-access/internal/service"
	"github.com/jSherz/break-glass-access/internal/slack"
	"github.com/jSherz/break-glass-access/internal/storage"
)

const (
	testSecretName = "/live-laugh-ship/slack-signing-secret"
	testSecret     = "8f742231b10e8888abcd99yyyzzz85a5"
	testTimestamp  = "1531420618"

	testAccountID  = "123456789012"
	testArn        = "arn:aws:sso:::permissionSet/ps-1"
	testExternalID = "U1234"
	testPrincipal  = "sso-principal-1"
)

type countingParameterStore struct {
	calls   int
	secrets map[string]string
}

func (c *countingParameterStore) GetParameter(_ context.Context, name string) (string, error) {
	c.calls++
	value, ok := c.secrets[name]
	if !ok {
		return "", errors.New("parameter not found")
	}
	return value, nil
}

type recordingStarter struct {
	inputs []string
	err    error
}

func (r *recordingStarter) StartExecution(_ context.Context, input []byte) (core.ExecutionHandle, error) {
	if r.err != nil {
		return core.ExecutionHandle{}, r.err
	}
	r.inputs = append(r.inputs, string(input))
	return core.ExecutionHandle{ExecutionArn: "arn:aws:states:::execution/1"}, nil
}

type staticUserLookup map[string]string

func (s staticUserLookup) UserIDToUserName(_ context.Context, principalID string) (string, error) {
	username, ok := s[principalID]
	if !ok {
		return "", errors.New("user not found")
	}
	return username, nil
}

type testHarness struct {
	handler http.Handler
	params  *countingParameterStore
	store   *storage.InMemoryDataStorage
	starter *recordingStarter
}

func newHarness() *testHarness {
	params := &countingParameterStore{secrets: map[string]string{testSecretName: testSecret}}
	store := storage.NewInMemoryDataStorage()
	starter := &recordingStarter{}

	svc := service.NewRequestService(
		store,
		staticUserLookup{testPrincipal: "james"},
		starter,
		audit.NewNoopAuditor(),
	)
	server := NewServer(params, testSecretName, svc)

	return &testHarness{
		handler: server.Routes(),
		params:  params,
		store:   store,
		starter: starter,
	}
}

func validButtonPayload() map[string]any {
	return map[string]any{
		"type": "interactive_message",
		"actions": []any{
			map[string]any{"name": "break_glass", "type": "button", "value": testArn},
		},
		"user": map[string]any{"id": testExternalID, "name": "james"},
		"original_message": map[string]any{
			"attachments": []any{
				map[string]any{
					"callback_id": "deployment_" + testAccountID,
					"actions": []any{
						map[string]any{"name": "break_glass", "type": "button", "value": testArn},
					},
				},
			},
		},
	}
}

func formBody(t *testing.T, payload any) string {
	t.Helper()
	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshalling payload: %v", err)
	}
	return url.Values{"payload": {string(data)}}.Encode()
}

func (h *testHarness) post(t *testing.T, body string, sign bool) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, SlackWebhookRoute, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if sign {
		req.Header.Set(slack.TimestampHeader, testTimestamp)
		req.Header.Set(slack.SignatureHeader, slack.Sign(testTimestamp, []byte(body), testSecret))
	}
	recorder := httptest.NewRecorder()
	h.handler.ServeHTTP(recorder, req)
	return recorder
}

func decodeEphemeral(t *testing.T, recorder *httptest.ResponseRecorder) string {
	t.Helper()
	if got := recorder.Header().Get("Content-Type"); got != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", got)
	}
	var message struct {
		ResponseType    string `json:"response_type"`
		ReplaceOriginal bool   `json:"replace_original"`
		Text            string `json:"text"`
	}
	if err := json.NewDecoder(recorder.Body).Decode(&message); err != nil {
		t.Fatalf("body is not JSON: %v", err)
	}
	if message.ResponseType != "ephemeral" || message.ReplaceOriginal {
		t.Errorf("envelope = %+v, want ephemeral/replace_original=false", message)
	}
	return message.Text
}

func TestWebhook_MissingAuthHeaders(t *testing.T) {
	tests := []struct {
		name    string
		request func() *http.Request
	}{
		{
			name: "No Headers",
			request: func() *http.Request {
				return httptest.NewRequest(http.MethodPost, SlackWebhookRoute, strings.NewReader("payload=x"))
			},
		},
		{
			name: "Timestamp Only",
			request: func() *http.Request {
				req := httptest.NewRequest(http.MethodPost, SlackWebhookRoute, strings.NewReader("payload=x"))
				req.Header.Set(slack.TimestampHeader, testTimestamp)
				return req
			},
		},
		{
			name: "Empty Body",
			request: func() *http.Request {
				req := httptest.NewRequest(http.MethodPost, SlackWebhookRoute, strings.NewReader(""))
				req.Header.Set(slack.TimestampHeader, testTimestamp)
				req.Header.Set(slack.SignatureHeader, "v0=abc")
				return req
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness()
			recorder := httptest.NewRecorder()
			h.handler.ServeHTTP(recorder, tt.request())

			if recorder.Code != http.StatusForbidden {
				t.Errorf("status = %d, want 403", recorder.Code)
			}
			if body, _ := io.ReadAll(recorder.Body); string(body) != "Forbidden." {
				t.Errorf("body = %q, want Forbidden.", body)
			}
			if h.params.calls != 0 {
				t.Errorf("made %d secret lookups before rejecting, want 0", h.params.calls)
			}
			if len(h.starter.inputs) != 0 {
				t.Error("dispatched a workflow for an unauthenticated request")
			}
		})
	}
}

func TestWebhook_BadSignature(t *testing.T) {
	h := newHarness()
	body := formBody(t, validButtonPayload())

	req := httptest.NewRequest(http.MethodPost, SlackWebhookRoute, strings.NewReader(body))
	req.Header.Set(slack.TimestampHeader, testTimestamp)
	req.Header.Set(slack.SignatureHeader, slack.Sign(testTimestamp, []byte(body), "wrong-secret"))
	recorder := httptest.NewRecorder()
	h.handler.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", recorder.Code)
	}
	if len(h.starter.inputs) != 0 {
		t.Error("dispatched a workflow for a forged request")
	}
}

func TestWebhook_CaseInsensitiveHeaders(t *testing.T) {
	h := newHarness()
	h.store.DefinePrincipal(testExternalID, testPrincipal)
	h.store.DefineUserAccess(testAccountID, testArn, testPrincipal, true)
	body := formBody(t, validButtonPayload())

	req := httptest.NewRequest(http.MethodPost, SlackWebhookRoute, strings.NewReader(body))
	// net/http canonicalizes header casing on the way in, exactly as the
	// real server does for Slack's lowercase header names.
	req.Header.Set("x-slack-request-timestamp", testTimestamp)
	req.Header.Set("X-SLACK-SIGNATURE", slack.Sign(testTimestamp, []byte(body), testSecret))
	recorder := httptest.NewRecorder()
	h.handler.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusOK {
		t.Errorf("status = %d, want 200 regardless of header casing", recorder.Code)
	}
}

func TestWebhook_UnrecognizedEvent(t *testing.T) {
	h := newHarness()

	payload := validButtonPayload()
	payload["type"] = "message_action"
	recorder := h.post(t, formBody(t, payload), true)

	if recorder.Code != http.StatusOK {
		t.Errorf("status = %d, want 200 so Slack does not retry", recorder.Code)
	}
	text := decodeEphemeral(t, recorder)
	if !strings.HasPrefix(text, "Failed to handle") {
		t.Errorf("text = %q, want the fixed unrecognized-event message", text)
	}
}

func TestWebhook_ActionNotFound(t *testing.T) {
	h := newHarness()
	h.store.DefinePrincipal(testExternalID, testPrincipal)

	payload := validButtonPayload()
	attachments := payload["original_message"].(map[string]any)["attachments"].([]any)
	attachments[0].(map[string]any)["actions"] = []any{
		map[string]any{"name": "something_else", "type": "button", "value": "x"},
	}
	recorder := h.post(t, formBody(t, payload), true)

	if recorder.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", recorder.Code)
	}
	if body, _ := io.ReadAll(recorder.Body); string(body) != "Failed to identify action." {
		t.Errorf("body = %q, want Failed to identify action.", body)
	}
}

func TestWebhook_UnmappedIdentity(t *testing.T) {
	h := newHarness()

	recorder := h.post(t, formBody(t, validButtonPayload()), true)

	if recorder.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", recorder.Code)
	}
	text := decodeEphemeral(t, recorder)
	if !strings.Contains(text, testExternalID) || !strings.Contains(text, "mapping") {
		t.Errorf("text = %q, want the external ID and a mapping hint", text)
	}
}

func TestWebhook_AccessDenied(t *testing.T) {
	h := newHarness()
	h.store.DefinePrincipal(testExternalID, testPrincipal)

	recorder := h.post(t, formBody(t, validButtonPayload()), true)

	if recorder.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", recorder.Code)
	}
	if text := decodeEphemeral(t, recorder); text != "You do not have access to this account / role." {
		t.Errorf("text = %q", text)
	}
	if len(h.starter.inputs) != 0 {
		t.Error("dispatched a workflow despite denied access")
	}
}

func TestWebhook_GlassBroken(t *testing.T) {
	h := newHarness()
	h.store.DefinePrincipal(testExternalID, testPrincipal)
	h.store.DefineUserAccess(testAccountID, testArn, testPrincipal, true)

	recorder := h.post(t, formBody(t, validButtonPayload()), true)

	if recorder.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", recorder.Code)
	}
	if text := decodeEphemeral(t, recorder); text != "Glass broken - access incoming." {
		t.Errorf("text = %q", text)
	}

	if len(h.starter.inputs) != 1 {
		t.Fatalf("started %d executions, want exactly 1", len(h.starter.inputs))
	}
	var input map[string]any
	if err := json.Unmarshal([]byte(h.starter.inputs[0]), &input); err != nil {
		t.Fatalf("workflow input is not JSON: %v", err)
	}
	if input["accountId"] != testAccountID ||
		input["permissionSetArn"] != testArn ||
		input["principalId"] != testPrincipal ||
		input["principalUsername"] != "james" {
		t.Errorf("workflow input = %v", input)
	}
}

func TestWebhook_DispatchFailureIsSoft(t *testing.T) {
	h := newHarness()
	h.store.DefinePrincipal(testExternalID, testPrincipal)
	h.store.DefineUserAccess(testAccountID, testArn, testPrincipal, true)
	h.starter.err = errors.New("ExecutionLimitExceeded")

	recorder := h.post(t, formBody(t, validButtonPayload()), true)

	if recorder.Code != http.StatusOK {
		t.Errorf("status = %d, want 200 - dispatch failures must never 5xx", recorder.Code)
	}
	if text := decodeEphemeral(t, recorder); text != "An unknown error occurred. CALL THAT PAGER!" {
		t.Errorf("text = %q", text)
	}
}

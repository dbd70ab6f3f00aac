// Package slack verifies and decodes Slack interactive-button webhooks.
package slack

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ErrUnrecognizedEvent marks a webhook that is authentic but not an event
// this service can handle. Callers must still acknowledge the webhook with
// a 200 so the sender does not retry.
var ErrUnrecognizedEvent = errors.New("unrecognized event")

// ErrActionNotFound marks a well-formed event whose clicked action matches
// none of the attachments' actions. This indicates mismatched state between
// the chat message and this service, not an unsupported event type.
var ErrActionNotFound = errors.New("action not found in attachments")

// buttonActionSchema is the shape of the interactive-button payload we
// accept. Unknown fields anywhere in the document are allowed and kept.
const buttonActionSchema = `{
	"type": "object",
	"required": ["type", "actions", "user", "original_message"],
	"properties": {
		"type": {"const": "interactive_message"},
		"actions": {
			"type": "array",
			"minItems": 1,
			"maxItems": 1,
			"items": {
				"type": "object",
				"required": ["name", "type", "value"],
				"properties": {
					"name": {"const": "break_glass"},
					"type": {"const": "button"},
					"value": {"type": "string"}
				}
			}
		},
		"user": {
			"type": "object",
			"required": ["id", "name"],
			"properties": {
				"id": {"type": "string", "minLength": 1},
				"name": {"type": "string", "minLength": 1}
			}
		},
		"original_message": {
			"type": "object",
			"required": ["attachments"],
			"properties": {
				"attachments": {
					"type": "array",
					"minItems": 1,
					"items": {
						"type": "object",
						"required": ["callback_id", "actions"],
						"properties": {
							"callback_id": {"type": "string"},
							"actions": {
								"type": "array",
								"minItems": 1,
								"items": {
									"type": "object",
									"required": ["name", "type", "value"],
									"properties": {
										"name": {"type": "string"},
										"type": {"type": "string"},
										"value": {"type": "string"}
									}
								}
							}
						}
					}
				}
			}
		}
	}
}`

var compiledSchema = jsonschema.MustCompileString("button-action.json", buttonActionSchema)

// Action is one button within an attachment.
type Action struct {
	Name  string `json:"name"`
	Type  string `json:"type"`
	Value string `json:"value"`
}

// Attachment carries the correlation ID relating the message to an account
// and the actions offered to the user.
type Attachment struct {
	CallbackID string   `json:"callback_id"`
	Actions    []Action `json:"actions"`
}

// ButtonAction is a verified, validated interactive-button event.
type ButtonAction struct {
	UserID   string
	UserName string

	// Clicked is the action the user actually pressed.
	Clicked Action

	Attachments []Attachment

	// Raw is the full decoded payload, unknown fields included.
	Raw map[string]any
}

// Decode parses a form-encoded webhook body into a ButtonAction.
//
// A missing payload field, malformed JSON or a schema violation all yield
// ErrUnrecognizedEvent: legitimate Slack traffic we simply cannot handle.
func Decode(formBody string) (*ButtonAction, error) {
	values, err := url.ParseQuery(formBody)
	if err != nil {
		return nil, fmt.Errorf("%w: parsing form body: %v", ErrUnrecognizedEvent, err)
	}

	payload := values.Get("payload")
	if payload == "" {
		return nil, fmt.Errorf("%w: no payload field in form body", ErrUnrecognizedEvent)
	}

	var raw map[string]any
	if err := json.Unmarshal([]byte(payload), &raw); err != nil {
		return nil, fmt.Errorf("%w: parsing payload JSON: %v", ErrUnrecognizedEvent, err)
	}

	// jsonschema validates the untyped document, so fields outside the
	// schema survive in raw untouched.
	var schemaInput any = raw
	if err := compiledSchema.Validate(schemaInput); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnrecognizedEvent, err)
	}

	// The shape is guaranteed by the schema; re-decode the typed parts.
	var typed struct {
		Actions []Action `json:"actions"`
		User    struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		} `json:"user"`
		OriginalMessage struct {
			Attachments []Attachment `json:"attachments"`
		} `json:"original_message"`
	}
	if err := json.Unmarshal([]byte(payload), &typed); err != nil {
		return nil, fmt.Errorf("%w: decoding payload: %v", ErrUnrecognizedEvent, err)
	}

	return &ButtonAction{
		UserID:      typed.User.ID,
		UserName:    typed.User.Name,
		Clicked:     typed.Actions[0],
		Attachments: typed.OriginalMessage.Attachments,
		Raw:         raw,
	}, nil
}

// AccountID extracts the target account from the first attachment's
// callback_id, which encodes it as "<prefix>_<accountId>". A callback_id
// without that structure is a defect in the message producer and fails
// loudly rather than defaulting.
func (b *ButtonAction) AccountID() (string, error) {
	parts := strings.Split(b.Attachments[0].CallbackID, "_")
	if len(parts) < 2 {
		return "", fmt.Errorf("callback_id %q does not encode an account id", b.Attachments[0].CallbackID)
	}
	return parts[1], nil
}

// MatchAction finds the attachment action whose (type, name) pair equals
// the clicked action's, returning ErrActionNotFound when none matches.
func (b *ButtonAction) MatchAction() (Action, error) {
	for _, attachment := range b.Attachments {
		for _, action := range attachment.Actions {
			if action.Type == b.Clicked.Type && action.Name == b.Clicked.Name {
				return action, nil
			}
		}
	}
	return Action{}, ErrActionNotFound
}

package presenter

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"
)

// EphemeralMessage is the Slack response envelope shown only to the user
// who clicked the button.
type EphemeralMessage struct {
	ResponseType    string `json:"response_type"`
	ReplaceOriginal bool   `json:"replace_original"`
	Text            string `json:"text"`
}

func JSON(w http.ResponseWriter, r *http.Request, data any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("failed to write json response")
	}
}

// Ephemeral writes a 200 ephemeral message. Business outcomes and
// unhandled events both use this so Slack never retries the delivery.
func Ephemeral(w http.ResponseWriter, r *http.Request, text string) {
	JSON(w, r, EphemeralMessage{
		ResponseType:    "ephemeral",
		ReplaceOriginal: false,
		Text:            text,
	}, http.StatusOK)
}

// Text writes a plain text response.
func Text(w http.ResponseWriter, r *http.Request, body string, status int) {
	w.WriteHeader(status)
	if _, err := w.Write([]byte(body)); err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("failed to write response")
	}
}

package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/jSherz/break-glass-access/internal/api/presenter"
	"github.com/jSherz/break-glass-access/internal/slack"
)

// Response bodies fixed by the Slack integration contract.
const (
	TextForbidden       = "Forbidden."
	TextUnrecognized    = "Failed to handle this type of event - please raise it with your operations team."
	TextActionNotFound  = "Failed to identify action."
	TextInternalFailure = "Internal server error."
)

// handleSlackWebhook authenticates, decodes and executes an interactive
// button click.
//
// Anything Slack might legitimately send but we cannot act on is
// acknowledged with a 200 so Slack does not redeliver it; only failed
// authentication (403) and structural defects (500) escape that rule.
func (s *Server) handleSlackWebhook(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := log.Ctx(ctx)

	timestamp := r.Header.Get(slack.TimestampHeader)
	signature := r.Header.Get(slack.SignatureHeader)

	body, err := io.ReadAll(r.Body)
	if err != nil {
		logger.Warn().Err(err).Msg("failed to read webhook body")
		presenter.Text(w, r, TextForbidden, http.StatusForbidden)
		return
	}

	// Reject before any external lookups when the request cannot possibly
	// verify.
	if timestamp == "" || signature == "" || len(body) == 0 {
		logger.Warn().Msg("timestamp header, signature header or body missing")
		presenter.Text(w, r, TextForbidden, http.StatusForbidden)
		return
	}

	secret, err := s.secrets.GetParameter(ctx, s.signingSecret)
	if err != nil {
		logger.Error().Err(err).Msg("failed to fetch signing secret")
		presenter.Text(w, r, TextInternalFailure, http.StatusInternalServerError)
		return
	}

	if !slack.Verify(timestamp, body, secret, signature) {
		logger.Warn().Msg("slack signature verification failed")
		presenter.Text(w, r, TextForbidden, http.StatusForbidden)
		return
	}

	action, err := slack.Decode(string(body))
	if err != nil {
		// Authentic traffic we can't handle: ack it so Slack doesn't retry.
		logger.Info().Err(err).Msg("not an event we can handle")
		presenter.Ephemeral(w, r, TextUnrecognized)
		return
	}

	outcome, err := s.requestService.HandleButtonAction(ctx, action)
	if err != nil {
		if errors.Is(err, slack.ErrActionNotFound) {
			logger.Error().Err(err).Msg("failed to find clicked action in attachments")
			presenter.Text(w, r, TextActionNotFound, http.StatusInternalServerError)
			return
		}
		logger.Error().Err(err).Msg("break-glass request failed")
		presenter.Text(w, r, TextInternalFailure, http.StatusInternalServerError)
		return
	}

	presenter.Ephemeral(w, r, outcome.Text)
}

package api

const (
	HealthCheckRoute = "/healthz"
	AboutRoute       = "/icanhazbreakglass"

	SlackWebhookRoute = "/v1/webhooks/slack"
)

package models

// WebhookTypeStatementItem is the only webhook event type that carries a
// transaction. Everything else is acknowledged and ignored.
const WebhookTypeStatementItem = "StatementItem"

// WebhookEvent is the push payload Monobank delivers to the registered
// callback URL.
type WebhookEvent struct {
	Type string      `json:"type"`
	Data WebhookData `json:"data"`
}

// WebhookData wraps the provider account id and the statement item of a
// single event.
type WebhookData struct {
	Account       string        `json:"account"`
	StatementItem StatementItem `json:"statementItem"`
}

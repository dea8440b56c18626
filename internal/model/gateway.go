package model

// Payloads the payment gateway posts to our webhook endpoint.

type GatewayResource struct {
	SessionID string `json:"session_id"`
	Reference string `json:"reference"`
	Status    string `json:"status"`
}

type GatewayWebhookEvent struct {
	ID         string          `json:"id"`
	EventType  string          `json:"event_type"`
	CreateTime string          `json:"create_time"`
	Resource   GatewayResource `json:"resource"`
}

const (
	GatewayEventSessionPaid   = "CHECKOUT.SESSION.PAID"
	GatewayEventSessionFailed = "CHECKOUT.SESSION.FAILED"
)

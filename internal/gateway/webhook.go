package gateway

import (
	"encoding/json"
	"fmt"
)

// WebhookEvent описывает событие платёжного шлюза, доставленное вебхуком.
type WebhookEvent struct {
	Event   string `json:"event"`
	Payload struct {
		MerchantOrderID string `json:"merchantOrderId"`
		OrderID         string `json:"orderId"`
		State           string `json:"state"`
		Amount          int64  `json:"amount"`
		ErrorCode       string `json:"errorCode"`
	} `json:"payload"`
}

// Completed сообщает, являлся ли платёж успешным.
func (e *WebhookEvent) Completed() bool {
	return e.Payload.State == "COMPLETED"
}

// ParseWebhook разбирает тело вебхука платёжного шлюза.
func ParseWebhook(body []byte) (*WebhookEvent, error) {
	var evt WebhookEvent
	if err := json.Unmarshal(body, &evt); err != nil {
		return nil, fmt.Errorf("decode webhook: %w", err)
	}
	if evt.Payload.MerchantOrderID == "" {
		return nil, fmt.Errorf("webhook without merchantOrderId")
	}
	return &evt, nil
}

package payment

import (
	"context"
	"encoding/json"
)

// Stub is the development provider: charges auto-succeed and webhooks are
// trusted payloads of the Confirmation shape. Never wire it in production.
type Stub struct{}

func NewStub() *Stub { return &Stub{} }

func (Stub) Name() string { return "stub" }

func (Stub) CreateCharge(_ context.Context, req ChargeRequest) (*Charge, error) {
	return &Charge{
		OrderID:     req.OrderID,
		Provider:    "stub",
		CheckoutURL: "http://localhost/pay/" + req.OrderID,
		ExpiresAt:   req.ExpiresAt,
	}, nil
}

func (Stub) ParseWebhook(body []byte, _ map[string]string) (*Confirmation, error) {
	var conf struct {
		OrderID      string  `json:"order_id"`
		Status       string  `json:"status"`
		ProviderTxID string  `json:"provider_tx_id"`
		PaidAmount   float64 `json:"paid_amount"`
	}
	if err := json.Unmarshal(body, &conf); err != nil || conf.OrderID == "" {
		return nil, ErrMalformedPayload
	}
	if conf.Status == "" {
		conf.Status = StatusCompleted
	}
	return &Confirmation{
		OrderID:      conf.OrderID,
		Status:       conf.Status,
		ProviderTxID: conf.ProviderTxID,
		PaidAmount:   conf.PaidAmount,
		Raw:          body,
	}, nil
}

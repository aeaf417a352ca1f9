// Package payment abstracts the payment service providers behind a small
// interface. Providers create charges and translate their webhook payloads
// into a normalized Confirmation; everything money-related happens in the
// settlement core, never here.
package payment

import (
	"context"
	"errors"
	"time"
)

// Confirmation is the normalized outcome of a provider webhook or poll.
type Confirmation struct {
	OrderID      string // our order reference echoed back by the provider
	Status       string // completed | failed | refunded | expired
	ProviderTxID string
	PaidAmount   float64
	Raw          []byte // original payload, kept for audit logs
}

// Charge is a created payment at the provider, with whatever the client needs
// to finish it (checkout URL, PIX code, crypto address).
type Charge struct {
	OrderID     string    `json:"order_id"`
	Provider    string    `json:"provider"`
	CheckoutURL string    `json:"checkout_url,omitempty"`
	QRCode      string    `json:"qr_code,omitempty"`
	PayAddress  string    `json:"pay_address,omitempty"`
	ExpiresAt   time.Time `json:"expires_at"`
}

type ChargeRequest struct {
	OrderID     string
	AmountBRL   float64
	Description string
	PayerEmail  string
	ExpiresAt   time.Time
}

type Provider interface {
	Name() string
	CreateCharge(ctx context.Context, req ChargeRequest) (*Charge, error)
	// ParseWebhook validates the payload signature and maps it to a
	// Confirmation. An unverifiable payload must return an error and never a
	// Confirmation.
	ParseWebhook(body []byte, headers map[string]string) (*Confirmation, error)
}

var (
	ErrInvalidSignature = errors.New("payment: invalid webhook signature")
	ErrMalformedPayload = errors.New("payment: malformed webhook payload")
)

// Statuses used in Confirmation, aligned with the payment table statuses.
const (
	StatusCompleted = "completed"
	StatusFailed    = "failed"
	StatusRefunded  = "refunded"
	StatusExpired   = "expired"
)

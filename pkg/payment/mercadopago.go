package payment

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const mercadoPagoAPI = "https://api.mercadopago.com"

// MercadoPago creates PIX charges and verifies the x-signature webhook HMAC.
type MercadoPago struct {
	accessToken   string
	webhookSecret string
	client        *http.Client
}

func NewMercadoPago(accessToken, webhookSecret string) *MercadoPago {
	return &MercadoPago{
		accessToken:   accessToken,
		webhookSecret: webhookSecret,
		client:        &http.Client{Timeout: 15 * time.Second},
	}
}

func (m *MercadoPago) Name() string { return "mercadopago" }

type mpPaymentRequest struct {
	TransactionAmount float64 `json:"transaction_amount"`
	Description       string  `json:"description"`
	PaymentMethodID   string  `json:"payment_method_id"`
	ExternalReference string  `json:"external_reference"`
	DateOfExpiration  string  `json:"date_of_expiration"`
	Payer             struct {
		Email string `json:"email"`
	} `json:"payer"`
}

type mpPaymentResponse struct {
	ID                 int64  `json:"id"`
	Status             string `json:"status"`
	PointOfInteraction struct {
		TransactionData struct {
			QRCode    string `json:"qr_code"`
			TicketURL string `json:"ticket_url"`
		} `json:"transaction_data"`
	} `json:"point_of_interaction"`
}

func (m *MercadoPago) CreateCharge(ctx context.Context, req ChargeRequest) (*Charge, error) {
	payload := mpPaymentRequest{
		TransactionAmount: req.AmountBRL,
		Description:       req.Description,
		PaymentMethodID:   "pix",
		ExternalReference: req.OrderID,
		DateOfExpiration:  req.ExpiresAt.Format("2006-01-02T15:04:05.000-07:00"),
	}
	payload.Payer.Email = req.PayerEmail

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, mercadoPagoAPI+"/v1/payments", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Authorization", "Bearer "+m.accessToken)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Idempotency-Key", req.OrderID)

	resp, err := m.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("mercadopago: create payment returned %d", resp.StatusCode)
	}
	var out mpPaymentResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	return &Charge{
		OrderID:     req.OrderID,
		Provider:    m.Name(),
		CheckoutURL: out.PointOfInteraction.TransactionData.TicketURL,
		QRCode:      out.PointOfInteraction.TransactionData.QRCode,
		ExpiresAt:   req.ExpiresAt,
	}, nil
}

type mpWebhook struct {
	Action string `json:"action"`
	Data   struct {
		ID string `json:"id"`
	} `json:"data"`
}

type mpPaymentLookup struct {
	ID                int64   `json:"id"`
	Status            string  `json:"status"`
	ExternalReference string  `json:"external_reference"`
	TransactionAmount float64 `json:"transaction_amount"`
}

// ParseWebhook verifies the x-signature HMAC, then fetches the payment from
// the API. Statuses come from the lookup, not the webhook body, so a forged
// or replayed notification cannot invent a completion.
func (m *MercadoPago) ParseWebhook(body []byte, headers map[string]string) (*Confirmation, error) {
	if err := m.verifySignature(headers); err != nil {
		return nil, err
	}
	var hook mpWebhook
	if err := json.Unmarshal(body, &hook); err != nil || hook.Data.ID == "" {
		return nil, ErrMalformedPayload
	}
	lookup, err := m.fetchPayment(hook.Data.ID)
	if err != nil {
		return nil, err
	}
	return &Confirmation{
		OrderID:      lookup.ExternalReference,
		Status:       mapMercadoPagoStatus(lookup.Status),
		ProviderTxID: fmt.Sprintf("%d", lookup.ID),
		PaidAmount:   lookup.TransactionAmount,
		Raw:          body,
	}, nil
}

func (m *MercadoPago) verifySignature(headers map[string]string) error {
	signature := headers["x-signature"]
	requestID := headers["x-request-id"]
	if signature == "" || m.webhookSecret == "" {
		return ErrInvalidSignature
	}
	var ts, v1 string
	for _, part := range bytes.Split([]byte(signature), []byte(",")) {
		kv := bytes.SplitN(bytes.TrimSpace(part), []byte("="), 2)
		if len(kv) != 2 {
			continue
		}
		switch string(kv[0]) {
		case "ts":
			ts = string(kv[1])
		case "v1":
			v1 = string(kv[1])
		}
	}
	if ts == "" || v1 == "" {
		return ErrInvalidSignature
	}
	manifest := fmt.Sprintf("id:%s;request-id:%s;ts:%s;", headers["data.id"], requestID, ts)
	mac := hmac.New(sha256.New, []byte(m.webhookSecret))
	mac.Write([]byte(manifest))
	expected := hex.EncodeToString(mac.Sum(nil))
	if !hmac.Equal([]byte(expected), []byte(v1)) {
		return ErrInvalidSignature
	}
	return nil
}

func (m *MercadoPago) fetchPayment(id string) (*mpPaymentLookup, error) {
	req, err := http.NewRequest(http.MethodGet, mercadoPagoAPI+"/v1/payments/"+id, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+m.accessToken)
	resp, err := m.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("mercadopago: payment lookup returned %d", resp.StatusCode)
	}
	var lookup mpPaymentLookup
	if err := json.NewDecoder(resp.Body).Decode(&lookup); err != nil {
		return nil, err
	}
	return &lookup, nil
}

func mapMercadoPagoStatus(status string) string {
	switch status {
	case "approved":
		return StatusCompleted
	case "refunded", "charged_back":
		return StatusRefunded
	case "cancelled", "expired":
		return StatusExpired
	case "rejected":
		return StatusFailed
	default:
		return status
	}
}

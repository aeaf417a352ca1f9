package payment

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"time"
)

const nowPaymentsAPI = "https://api.nowpayments.io/v1"

// NowPayments handles crypto charges. IPN callbacks carry an HMAC-SHA512 of
// the payload with keys sorted, per the provider's IPN spec.
type NowPayments struct {
	apiKey    string
	ipnSecret string
	client    *http.Client
}

func NewNowPayments(apiKey, ipnSecret string) *NowPayments {
	return &NowPayments{
		apiKey:    apiKey,
		ipnSecret: ipnSecret,
		client:    &http.Client{Timeout: 15 * time.Second},
	}
}

func (n *NowPayments) Name() string { return "nowpayments" }

type npInvoiceRequest struct {
	PriceAmount      float64 `json:"price_amount"`
	PriceCurrency    string  `json:"price_currency"`
	OrderID          string  `json:"order_id"`
	OrderDescription string  `json:"order_description"`
}

type npInvoiceResponse struct {
	ID         string `json:"id"`
	InvoiceURL string `json:"invoice_url"`
	PayAddress string `json:"pay_address"`
}

func (n *NowPayments) CreateCharge(ctx context.Context, req ChargeRequest) (*Charge, error) {
	body, err := json.Marshal(npInvoiceRequest{
		PriceAmount:      req.AmountBRL,
		PriceCurrency:    "brl",
		OrderID:          req.OrderID,
		OrderDescription: req.Description,
	})
	if err != nil {
		return nil, err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, nowPaymentsAPI+"/invoice", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("x-api-key", n.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("nowpayments: create invoice returned %d", resp.StatusCode)
	}
	var out npInvoiceResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	return &Charge{
		OrderID:     req.OrderID,
		Provider:    n.Name(),
		CheckoutURL: out.InvoiceURL,
		PayAddress:  out.PayAddress,
		ExpiresAt:   req.ExpiresAt,
	}, nil
}

type npIPN struct {
	PaymentID     json.Number `json:"payment_id"`
	PaymentStatus string      `json:"payment_status"`
	OrderID       string      `json:"order_id"`
	PriceAmount   float64     `json:"price_amount"`
}

func (n *NowPayments) ParseWebhook(body []byte, headers map[string]string) (*Confirmation, error) {
	signature := headers["x-nowpayments-sig"]
	if signature == "" || n.ipnSecret == "" {
		return nil, ErrInvalidSignature
	}
	sorted, err := sortedJSON(body)
	if err != nil {
		return nil, ErrMalformedPayload
	}
	mac := hmac.New(sha512.New, []byte(n.ipnSecret))
	mac.Write(sorted)
	if !hmac.Equal([]byte(hex.EncodeToString(mac.Sum(nil))), []byte(signature)) {
		return nil, ErrInvalidSignature
	}

	var ipn npIPN
	if err := json.Unmarshal(body, &ipn); err != nil || ipn.OrderID == "" {
		return nil, ErrMalformedPayload
	}
	return &Confirmation{
		OrderID:      ipn.OrderID,
		Status:       mapNowPaymentsStatus(ipn.PaymentStatus),
		ProviderTxID: ipn.PaymentID.String(),
		PaidAmount:   ipn.PriceAmount,
		Raw:          body,
	}, nil
}

// sortedJSON re-marshals the payload with keys in lexicographic order, which
// is what the provider signs.
func sortedJSON(body []byte) ([]byte, error) {
	var m map[string]interface{}
	if err := json.Unmarshal(body, &m); err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, _ := json.Marshal(k)
		vb, err := json.Marshal(m[k])
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func mapNowPaymentsStatus(status string) string {
	switch status {
	case "finished":
		return StatusCompleted
	case "failed":
		return StatusFailed
	case "refunded":
		return StatusRefunded
	case "expired":
		return StatusExpired
	default:
		return status
	}
}

// AngelaMos | 2026
// razorpay.go

package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/carterperez-dev/neighborly/internal/config"
	"github.com/carterperez-dev/neighborly/internal/core"
)

// ErrPaymentMismatch means the gateway does not report the payment as
// belonging to the order, or the payment was not completed.
var ErrPaymentMismatch = fmt.Errorf("%w: payment does not match order", core.ErrInvalidInput)

const maxResponseBytes = 1 << 20

type Razorpay struct {
	keyID     string
	keySecret string
	baseURL   string
	client    *http.Client
}

func NewRazorpay(cfg config.PaymentConfig) *Razorpay {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Razorpay{
		keyID:     cfg.KeyID,
		keySecret: cfg.KeySecret,
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		client:    &http.Client{Timeout: timeout},
	}
}

func (r *Razorpay) Name() string {
	return "razorpay"
}

type orderPayload struct {
	Amount   int64             `json:"amount"`
	Currency string            `json:"currency"`
	Receipt  string            `json:"receipt,omitempty"`
	Notes    map[string]string `json:"notes,omitempty"`
}

type orderResponse struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Status   string `json:"status"`
}

type paymentResponse struct {
	ID      string `json:"id"`
	OrderID string `json:"order_id"`
	Status  string `json:"status"`
}

func (r *Razorpay) CreateOrder(ctx context.Context, req OrderRequest) (*Order, error) {
	notes := map[string]string{"provider_id": req.ProviderID}
	for k, v := range req.Notes {
		notes[k] = v
	}

	body, err := json.Marshal(orderPayload{
		Amount:   req.Amount,
		Currency: req.Currency,
		Receipt:  req.Receipt,
		Notes:    notes,
	})
	if err != nil {
		return nil, fmt.Errorf("encode order: %w", err)
	}

	var out orderResponse
	if err := r.do(ctx, http.MethodPost, "/v1/orders", body, &out); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	if out.ID == "" {
		return nil, fmt.Errorf("create order: %w: empty order id", core.ErrExternal)
	}

	return &Order{
		ID:       out.ID,
		Amount:   out.Amount,
		Currency: out.Currency,
		Status:   out.Status,
	}, nil
}

// VerifyPayment checks the checkout signature locally, then confirms with
// the gateway that the payment belongs to the order and went through.
func (r *Razorpay) VerifyPayment(ctx context.Context, c Confirmation) error {
	message := c.OrderID + "|" + c.PaymentID
	if !core.VerifyHMACSHA256(r.keySecret, message, c.Signature) {
		return ErrInvalidSignature
	}

	var p paymentResponse
	path := "/v1/payments/" + url.PathEscape(c.PaymentID)
	if err := r.do(ctx, http.MethodGet, path, nil, &p); err != nil {
		return fmt.Errorf("fetch payment: %w", err)
	}

	if p.OrderID != c.OrderID {
		return ErrPaymentMismatch
	}

	switch p.Status {
	case "authorized", "captured":
		return nil
	default:
		return fmt.Errorf("%w: status %q", ErrPaymentMismatch, p.Status)
	}
}

func (r *Razorpay) do(
	ctx context.Context,
	method, path string,
	body []byte,
	out any,
) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, r.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.SetBasicAuth(r.keyID, r.keySecret)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", core.ErrExternal, err)
	}
	defer resp.Body.Close() //nolint:errcheck // read-only body

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("%w: read response: %w", core.ErrExternal, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf(
			"%w: gateway returned %d: %s",
			core.ErrExternal,
			resp.StatusCode,
			gatewayMessage(payload),
		)
	}

	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("%w: decode response: %w", core.ErrExternal, err)
	}

	return nil
}

func gatewayMessage(payload []byte) string {
	var e struct {
		Error struct {
			Description string `json:"description"`
		} `json:"error"`
	}
	if err := json.Unmarshal(payload, &e); err == nil && e.Error.Description != "" {
		return e.Error.Description
	}
	return http.StatusText(http.StatusBadGateway)
}

// IsTimeout reports whether err came from the gateway deadline.
func IsTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var te interface{ Timeout() bool }
	return errors.As(err, &te) && te.Timeout()
}

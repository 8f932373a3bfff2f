// AngelaMos | 2026
// dto.go

package subscription

import (
	"time"

	"github.com/carterperez-dev/neighborly/internal/core"
	"github.com/carterperez-dev/neighborly/internal/payment"
)

type CreateRequest struct {
	Plan string `json:"plan" validate:"required,max=50"`
}

type VerifyRequest = payment.Confirmation

type CancelRequest struct {
	Reason string `json:"reason" validate:"omitempty,max=200"`
}

type OrderResponse struct {
	OrderID  string `json:"order_id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Gateway  string `json:"gateway"`
}

type CreateResult struct {
	Subscription *Subscription
	Order        OrderResponse
}

type CreateResponse struct {
	Subscription SubscriptionResponse `json:"subscription"`
	Order        OrderResponse        `json:"order"`
}

type InvoiceResponse struct {
	InvoiceID  string    `json:"invoice_id"`
	Amount     int64     `json:"amount"`
	Status     string    `json:"status"`
	PaidAt     time.Time `json:"paid_at"`
	InvoiceURL string    `json:"invoice_url,omitempty"`
}

type SubscriptionResponse struct {
	ID                 string            `json:"id"`
	ProviderID         string            `json:"provider_id"`
	Plan               string            `json:"plan"`
	Status             Status            `json:"status"`
	PaymentGatewayID   string            `json:"payment_gateway_id,omitempty"`
	StartDate          *time.Time        `json:"start_date"`
	EndDate            *time.Time        `json:"end_date"`
	AutoRenew          bool              `json:"auto_renew"`
	Amount             int64             `json:"amount"`
	Currency           string            `json:"currency"`
	PaymentMethod      string            `json:"payment_method,omitempty"`
	CancellationReason string            `json:"cancellation_reason,omitempty"`
	CancellationDate   *time.Time        `json:"cancellation_date,omitempty"`
	IsActive           bool              `json:"is_active"`
	IsAboutToExpire    bool              `json:"is_about_to_expire"`
	Invoices           []InvoiceResponse `json:"invoices"`
	CreatedAt          time.Time         `json:"created_at"`
	UpdatedAt          time.Time         `json:"updated_at"`
}

type ListParams struct {
	core.PageParams
	Status     string `json:"status"`
	ProviderID string `json:"provider_id"`
}

func ToResponse(s *Subscription, now time.Time, window time.Duration) SubscriptionResponse {
	resp := SubscriptionResponse{
		ID:                 s.ID,
		ProviderID:         s.ProviderID,
		Plan:               s.Plan,
		Status:             s.Status,
		StartDate:          s.StartDate,
		EndDate:            s.EndDate,
		AutoRenew:          s.AutoRenew,
		Amount:             s.Amount,
		Currency:           s.Currency,
		PaymentMethod:      s.PaymentMethod,
		CancellationReason: s.CancellationReason,
		CancellationDate:   s.CancellationDate,
		IsActive:           s.IsActive(now),
		IsAboutToExpire:    s.IsAboutToExpire(now, window),
		Invoices:           make([]InvoiceResponse, 0, len(s.Invoices)),
		CreatedAt:          s.CreatedAt,
		UpdatedAt:          s.UpdatedAt,
	}

	if s.PaymentGatewayID != nil {
		resp.PaymentGatewayID = *s.PaymentGatewayID
	}

	for _, inv := range s.Invoices {
		resp.Invoices = append(resp.Invoices, InvoiceResponse{
			InvoiceID:  inv.InvoiceID,
			Amount:     inv.Amount,
			Status:     inv.Status,
			PaidAt:     inv.PaidAt,
			InvoiceURL: inv.InvoiceURL,
		})
	}

	return resp
}

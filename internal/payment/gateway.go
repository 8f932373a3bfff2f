// AngelaMos | 2026
// gateway.go

package payment

import (
	"context"
	"errors"
	"fmt"

	"github.com/carterperez-dev/neighborly/internal/core"
)

// ErrInvalidSignature means the confirmation was not signed by the gateway.
var ErrInvalidSignature = fmt.Errorf("%w: payment signature mismatch", core.ErrInvalidInput)

type OrderRequest struct {
	Amount     int64
	Currency   string
	ProviderID string
	Receipt    string
	Notes      map[string]string
}

type Order struct {
	ID       string
	Amount   int64
	Currency string
	Status   string
}

type Confirmation struct {
	OrderID   string `json:"order_id"   validate:"required,max=128"`
	PaymentID string `json:"payment_id" validate:"required,max=128"`
	Signature string `json:"signature"  validate:"required,hexadecimal,max=256"`
}

// Gateway is the external payment collaborator. Implementations return
// errors wrapping core.ErrExternal for transport failures and
// ErrInvalidSignature for forged confirmations.
type Gateway interface {
	Name() string
	CreateOrder(ctx context.Context, req OrderRequest) (*Order, error)
	VerifyPayment(ctx context.Context, c Confirmation) error
}

func IsInvalidSignature(err error) bool {
	return errors.Is(err, ErrInvalidSignature)
}

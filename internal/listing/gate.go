// AngelaMos | 2026
// gate.go

package listing

import (
	"context"
	"fmt"

	"github.com/carterperez-dev/neighborly/internal/core"
)

var (
	ErrNotProvider = fmt.Errorf(
		"%w: only service providers can create listings",
		core.ErrForbidden,
	)
	ErrSubscriptionRequired = fmt.Errorf(
		"%w: an active subscription is required to create listings",
		core.ErrForbidden,
	)
)

type PublishingChecker interface {
	IsPublishingAllowed(ctx context.Context, providerID string) (bool, error)
}

// Gate decides whether a caller may publish a new listing.
type Gate struct {
	checker PublishingChecker
}

func NewGate(checker PublishingChecker) *Gate {
	return &Gate{checker: checker}
}

// CanCreate returns nil when the caller is a provider holding a live
// subscription. Updates and deletes of existing listings are not gated.
func (g *Gate) CanCreate(ctx context.Context, caller core.Caller) error {
	if caller.Role != core.RoleProvider {
		return ErrNotProvider
	}

	allowed, err := g.checker.IsPublishingAllowed(ctx, caller.ID)
	if err != nil {
		return fmt.Errorf("check subscription: %w", err)
	}
	if !allowed {
		return ErrSubscriptionRequired
	}

	return nil
}

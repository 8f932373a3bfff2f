// AngelaMos | 2026
// repository.go

package subscription

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/carterperez-dev/neighborly/internal/core"
)

const currentIndex = "subscriptions_current_key"

type Repository interface {
	Create(ctx context.Context, s *Subscription) error
	GetByID(ctx context.Context, id string) (*Subscription, error)
	GetCurrent(ctx context.Context, providerID string) (*Subscription, error)
	GetByGatewayID(ctx context.Context, orderID string) (*Subscription, error)
	GetLiveActive(
		ctx context.Context,
		providerID string,
		now time.Time,
	) (*Subscription, error)
	Activate(ctx context.Context, s *Subscription, invoice *Invoice) error
	Transition(ctx context.Context, s *Subscription, from Status) error
	ExpireDue(ctx context.Context, now time.Time, limit int) (int64, error)
	ListExpiring(
		ctx context.Context,
		now, until time.Time,
		limit int,
	) ([]Subscription, error)
	List(ctx context.Context, params ListParams) ([]Subscription, int, error)
	Invoices(ctx context.Context, subscriptionID string) ([]Invoice, error)
}

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

const selectColumns = `
	SELECT id, provider_id, plan, status, payment_gateway_id,
	       gateway_subscription_id, gateway_customer_id, start_date, end_date,
	       auto_renew, amount, currency, payment_method, cancellation_reason,
	       cancellation_date, created_at, updated_at
	FROM subscriptions`

func (r *repository) Create(ctx context.Context, s *Subscription) error {
	query := `
		INSERT INTO subscriptions (
			id, provider_id, plan, status, payment_gateway_id, amount, currency,
			auto_renew
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at`

	err := r.db.QueryRowxContext(ctx, query,
		s.ID,
		s.ProviderID,
		s.Plan,
		s.Status,
		s.PaymentGatewayID,
		s.Amount,
		s.Currency,
		s.AutoRenew,
	).Scan(&s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if core.IsUniqueViolation(err) {
			if core.ConstraintName(err) == currentIndex {
				return fmt.Errorf("create subscription: %w", ErrCurrentExists)
			}
			return fmt.Errorf("create subscription: %w", core.ErrDuplicateKey)
		}
		return fmt.Errorf("create subscription: %w", err)
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*Subscription, error) {
	return r.getOne(ctx, "get subscription", selectColumns+` WHERE id = $1`, id)
}

func (r *repository) GetCurrent(
	ctx context.Context,
	providerID string,
) (*Subscription, error) {
	query := selectColumns + `
		WHERE provider_id = $1 AND status IN ('pending', 'active')
		ORDER BY created_at DESC
		LIMIT 1`

	return r.getOne(ctx, "get current subscription", query, providerID)
}

func (r *repository) GetByGatewayID(
	ctx context.Context,
	orderID string,
) (*Subscription, error) {
	return r.getOne(
		ctx,
		"get subscription by order",
		selectColumns+` WHERE payment_gateway_id = $1`,
		orderID,
	)
}

func (r *repository) GetLiveActive(
	ctx context.Context,
	providerID string,
	now time.Time,
) (*Subscription, error) {
	query := selectColumns + `
		WHERE provider_id = $1 AND status = 'active' AND end_date > $2
		ORDER BY end_date DESC
		LIMIT 1`

	return r.getOne(ctx, "get live subscription", query, providerID, now)
}

func (r *repository) getOne(
	ctx context.Context,
	op, query string,
	args ...any,
) (*Subscription, error) {
	var s Subscription
	err := r.db.GetContext(ctx, &s, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &s, nil
}

// Activate moves a pending record to active and appends its invoice in
// one transaction. A record that is no longer pending is left untouched.
func (r *repository) Activate(
	ctx context.Context,
	s *Subscription,
	invoice *Invoice,
) error {
	return core.InTx(ctx, r.db, func(tx *sqlx.Tx) error {
		err := tx.GetContext(ctx, &s.UpdatedAt, `
			UPDATE subscriptions
			SET status = 'active', start_date = $2, end_date = $3,
			    payment_method = $4, updated_at = NOW()
			WHERE id = $1 AND status = 'pending'
			RETURNING updated_at`,
			s.ID, s.StartDate, s.EndDate, s.PaymentMethod,
		)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("activate subscription: %w", ErrInvalidTransition)
		}
		if err != nil {
			return fmt.Errorf("activate subscription: %w", err)
		}

		if invoice.ID == "" {
			invoice.ID = uuid.New().String()
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO subscription_invoices (
				id, subscription_id, invoice_id, amount, status, paid_at, invoice_url
			)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			invoice.ID,
			invoice.SubscriptionID,
			invoice.InvoiceID,
			invoice.Amount,
			invoice.Status,
			invoice.PaidAt,
			invoice.InvoiceURL,
		)
		if err != nil {
			return fmt.Errorf("append invoice: %w", err)
		}

		return nil
	})
}

// Transition persists a status change decided by the entity, guarded on
// the status the caller observed.
func (r *repository) Transition(
	ctx context.Context,
	s *Subscription,
	from Status,
) error {
	query := `
		UPDATE subscriptions
		SET status = $3, cancellation_reason = $4, cancellation_date = $5,
		    updated_at = NOW()
		WHERE id = $1 AND status = $2
		RETURNING updated_at`

	err := r.db.GetContext(ctx, &s.UpdatedAt, query,
		s.ID,
		from,
		s.Status,
		s.CancellationReason,
		s.CancellationDate,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("transition subscription: %w", ErrInvalidTransition)
	}
	if err != nil {
		return fmt.Errorf("transition subscription: %w", err)
	}

	return nil
}

func (r *repository) ExpireDue(
	ctx context.Context,
	now time.Time,
	limit int,
) (int64, error) {
	query := `
		UPDATE subscriptions
		SET status = 'expired', updated_at = NOW()
		WHERE id IN (
			SELECT id FROM subscriptions
			WHERE status = 'active' AND end_date <= $1
			ORDER BY end_date
			LIMIT $2
			FOR UPDATE SKIP LOCKED
		)`

	result, err := r.db.ExecContext(ctx, query, now, limit)
	if err != nil {
		return 0, fmt.Errorf("expire subscriptions: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("expire subscriptions: %w", err)
	}

	return n, nil
}

func (r *repository) ListExpiring(
	ctx context.Context,
	now, until time.Time,
	limit int,
) ([]Subscription, error) {
	query := selectColumns + `
		WHERE status = 'active' AND end_date > $1 AND end_date <= $2
		ORDER BY end_date
		LIMIT $3`

	var subs []Subscription
	if err := r.db.SelectContext(ctx, &subs, query, now, until, limit); err != nil {
		return nil, fmt.Errorf("list expiring subscriptions: %w", err)
	}

	return subs, nil
}

func (r *repository) List(
	ctx context.Context,
	params ListParams,
) ([]Subscription, int, error) {
	params.Normalize()

	conditions := []string{"TRUE"}
	var args []any
	argIdx := 1

	if params.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argIdx))
		args = append(args, params.Status)
		argIdx++
	}

	if params.ProviderID != "" {
		conditions = append(conditions, fmt.Sprintf("provider_id = $%d", argIdx))
		args = append(args, params.ProviderID)
		argIdx++
	}

	where := strings.Join(conditions, " AND ")

	var total int
	countQuery := "SELECT COUNT(*) FROM subscriptions WHERE " + where
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count subscriptions: %w", err)
	}

	query := fmt.Sprintf(`%s
		WHERE %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`,
		selectColumns, where, argIdx, argIdx+1)
	args = append(args, params.PageSize, params.Offset())

	var subs []Subscription
	if err := r.db.SelectContext(ctx, &subs, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list subscriptions: %w", err)
	}

	return subs, total, nil
}

func (r *repository) Invoices(
	ctx context.Context,
	subscriptionID string,
) ([]Invoice, error) {
	query := `
		SELECT id, subscription_id, invoice_id, amount, status, paid_at, invoice_url
		FROM subscription_invoices
		WHERE subscription_id = $1
		ORDER BY paid_at`

	var invoices []Invoice
	if err := r.db.SelectContext(ctx, &invoices, query, subscriptionID); err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}

	return invoices, nil
}

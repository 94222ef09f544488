package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"digistore/internal/domain"

	"github.com/jackc/pgerrcode"
	"github.com/lib/pq"
)

const orderColumns = `id, owner_id, kind, recipient, details, amount_rub, amount_usd,
		payment_method, status, created_at, paid_at, completed_at`

// OrderRepo implements repository.OrderRepository
type OrderRepo struct {
	db *sql.DB
}

// NewOrderRepo creates a new order repository
func NewOrderRepo(db *sql.DB) *OrderRepo {
	return &OrderRepo{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*domain.Order, error) {
	var (
		o           domain.Order
		recipient   sql.NullString
		details     []byte
		paidAt      sql.NullTime
		completedAt sql.NullTime
	)
	err := row.Scan(
		&o.ID, &o.OwnerID, &o.Kind, &recipient, &details, &o.AmountRUB, &o.AmountUSD,
		&o.PaymentMethod, &o.Status, &o.CreatedAt, &paidAt, &completedAt,
	)
	if err != nil {
		return nil, err
	}

	o.Recipient = recipient.String
	if paidAt.Valid {
		o.PaidAt = &paidAt.Time
	}
	if completedAt.Valid {
		o.CompletedAt = &completedAt.Time
	}

	o.Details, err = domain.DecodeDetails(o.Kind, details)
	if err != nil {
		return nil, fmt.Errorf("order %d: %w", o.ID, err)
	}
	return &o, nil
}

// CreateOrder inserts a pending order
func (r *OrderRepo) CreateOrder(ctx context.Context, order *domain.Order) error {
	details, err := domain.EncodeDetails(order.Details)
	if err != nil {
		return err
	}

	var recipient sql.NullString
	if order.Recipient != "" {
		recipient = sql.NullString{String: order.Recipient, Valid: true}
	}

	query := `
		INSERT INTO orders (owner_id, kind, recipient, details, amount_rub, amount_usd, payment_method, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, 'pending')
		RETURNING id, status, created_at
	`
	err = r.db.QueryRowContext(ctx, query,
		order.OwnerID, string(order.Kind), recipient, string(details),
		order.AmountRUB, order.AmountUSD, string(order.PaymentMethod),
	).Scan(&order.ID, &order.Status, &order.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == pgerrcode.ForeignKeyViolation {
			return fmt.Errorf("create order for user %d: %w", order.OwnerID, domain.ErrUserNotFound)
		}
		return fmt.Errorf("create order: %w", err)
	}
	return nil
}

// GetOrder returns a single order
func (r *OrderRepo) GetOrder(ctx context.Context, orderID int64) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	order, err := scanOrder(r.db.QueryRowContext(ctx, query, orderID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	return order, nil
}

// TransitionOrder applies the status change in a single conditional UPDATE,
// so concurrent callers racing on one order see exactly one success.
func (r *OrderRepo) TransitionOrder(ctx context.Context, orderID int64, target domain.Status) (*domain.Order, error) {
	sources := domain.SourcesFor(target)
	allowed := make([]string, len(sources))
	for i, s := range sources {
		allowed[i] = string(s)
	}

	query := `
		UPDATE orders
		SET status = $2::text,
			paid_at = CASE WHEN $2::text = 'paid' THEN NOW() ELSE paid_at END,
			completed_at = CASE WHEN $2::text = 'completed' THEN NOW() ELSE completed_at END
		WHERE id = $1 AND status = ANY($3::text[])
		RETURNING ` + orderColumns

	order, err := scanOrder(r.db.QueryRowContext(ctx, query, orderID, string(target), pq.Array(allowed)))
	if err == nil {
		return order, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("transition order %d: %w", orderID, err)
	}

	// Nothing matched: tell a missing order apart from an ineligible one.
	var current domain.Status
	err = r.db.QueryRowContext(ctx, `SELECT status FROM orders WHERE id = $1`, orderID).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("transition order %d: %w", orderID, err)
	}
	return nil, &domain.TransitionError{OrderID: orderID, From: current, To: target}
}

// ListOrdersByStatus returns orders in any of the given statuses, newest first
func (r *OrderRepo) ListOrdersByStatus(ctx context.Context, statuses []domain.Status, limit int) ([]domain.Order, error) {
	values := make([]string, len(statuses))
	for i, s := range statuses {
		values[i] = string(s)
	}

	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE status = ANY($1::text[])
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`

	rows, err := r.db.QueryContext(ctx, query, pq.Array(values), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *order)
	}

	return orders, rows.Err()
}

// GetStats computes the dashboard aggregates on demand
func (r *OrderRepo) GetStats(ctx context.Context) (*domain.Stats, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM users),
			COUNT(*) FILTER (WHERE status = 'completed'),
			COALESCE(SUM(amount_rub) FILTER (WHERE status = 'completed'), 0),
			COUNT(*) FILTER (WHERE status IN ('pending', 'waiting')),
			COUNT(*) FILTER (WHERE status = 'paid')
		FROM orders
	`

	var s domain.Stats
	err := r.db.QueryRowContext(ctx, query).Scan(
		&s.TotalUsers, &s.CompletedOrders, &s.CompletedRevenueRUB, &s.PendingOrders, &s.PaidOrders,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

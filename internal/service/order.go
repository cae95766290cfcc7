package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"potracker/internal/model"
)

var (
	ErrOrderNotFound    = errors.New("order not found")
	ErrNoOrderLines     = errors.New("order has no lines")
	ErrStatusRegression = errors.New("order status may not regress from confirmed")
)

// codeInsertAttempts bounds the regenerate-and-retry loop on a confirmation
// code collision. Collisions are improbable at expected volumes; hitting the
// bound means something else is wrong.
const codeInsertAttempts = 5

type OrderService struct {
	db *sqlx.DB
}

func NewOrderService(db *sqlx.DB) *OrderService {
	return &OrderService{db: db}
}

type OrderLineInput struct {
	ProductID   string  `json:"product_id"`
	ProductName string  `json:"product_name"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
}

type CreateOrderInput struct {
	CustomerName  string           `json:"customer_name"`
	CustomerEmail string           `json:"customer_email"`
	Notes         string           `json:"notes"`
	Lines         []OrderLineInput `json:"lines"`
}

// Create persists an order and its lines as one transaction. Both the manual
// dashboard path and the form-sync ingestor converge here.
func (s *OrderService) Create(ctx context.Context, in CreateOrderInput) (*model.Order, error) {
	if len(in.Lines) == 0 {
		return nil, ErrNoOrderLines
	}

	order := model.Order{
		ID:            uuid.NewString(),
		CustomerName:  in.CustomerName,
		CustomerEmail: in.CustomerEmail,
		Status:        model.OrderStatusPending,
		Notes:         in.Notes,
		CreatedAt:     time.Now().UTC(),
	}
	for _, line := range in.Lines {
		order.TotalAmount += float64(line.Quantity) * line.UnitPrice
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	inserted := false
	for attempt := 0; attempt < codeInsertAttempts; attempt++ {
		order.ConfirmationCode = GenerateConfirmationCode()
		_, err = tx.ExecContext(ctx,
			`INSERT INTO orders (id, customer_name, customer_email, confirmation_code, status, total_amount, notes, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			order.ID, order.CustomerName, order.CustomerEmail, order.ConfirmationCode,
			order.Status, order.TotalAmount, order.Notes, order.CreatedAt)
		if err == nil {
			inserted = true
			break
		}
		if !strings.Contains(err.Error(), "orders.confirmation_code") {
			return nil, fmt.Errorf("insert order: %w", err)
		}
	}
	if !inserted {
		return nil, fmt.Errorf("insert order: code collision persisted after %d attempts: %w", codeInsertAttempts, err)
	}

	for _, line := range in.Lines {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO order_lines (id, order_id, product_id, product_name, quantity, unit_price)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			uuid.NewString(), order.ID, line.ProductID, line.ProductName, line.Quantity, line.UnitPrice)
		if err != nil {
			return nil, fmt.Errorf("insert order line: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	return &order, nil
}

func (s *OrderService) List(ctx context.Context) ([]model.Order, error) {
	var orders []model.Order
	err := s.db.SelectContext(ctx, &orders, `
		SELECT id, customer_name, customer_email, confirmation_code, status, total_amount, notes, created_at, confirmed_at
		FROM orders
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	return orders, nil
}

func (s *OrderService) GetByID(ctx context.Context, id string) (*model.Order, error) {
	var o model.Order
	err := s.db.GetContext(ctx, &o, `
		SELECT id, customer_name, customer_email, confirmation_code, status, total_amount, notes, created_at, confirmed_at
		FROM orders WHERE id = ?
	`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	return &o, nil
}

func (s *OrderService) Lines(ctx context.Context, orderID string) ([]model.OrderLine, error) {
	var lines []model.OrderLine
	err := s.db.SelectContext(ctx, &lines, `
		SELECT id, order_id, product_id, product_name, quantity, unit_price
		FROM order_lines WHERE order_id = ?
	`, orderID)
	if err != nil {
		return nil, fmt.Errorf("query order lines: %w", err)
	}
	return lines, nil
}

// Delete removes an order and, through the foreign key, its lines. Deletion
// is hard; there is no soft-delete.
func (s *OrderService) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM orders WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrOrderNotFound
	}
	return nil
}

// UpdateStatus handles the manual dashboard transition to "sent". An order
// that has reached "confirmed" may not regress to "pending".
func (s *OrderService) UpdateStatus(ctx context.Context, id, status string) error {
	if status != model.OrderStatusPending && status != model.OrderStatusConfirmed && status != model.OrderStatusSent {
		return fmt.Errorf("unknown order status %q", status)
	}

	current, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if current.Status != model.OrderStatusPending && status == model.OrderStatusPending {
		return ErrStatusRegression
	}

	if _, err := s.db.ExecContext(ctx, `UPDATE orders SET status = ? WHERE id = ?`, status, id); err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	return nil
}

type ConfirmResult struct {
	Order          model.Order `json:"order"`
	AlreadyClaimed bool        `json:"already_claimed"`
}

// ConfirmByCode redeems a confirmation code. The first call transitions the
// order to confirmed and stamps the time; every later call returns the same
// order flagged AlreadyClaimed with the original timestamp, so repeat scans
// never re-trigger confirmation side effects.
func (s *OrderService) ConfirmByCode(ctx context.Context, code string) (*ConfirmResult, error) {
	code = strings.ToUpper(strings.TrimSpace(code))

	var o model.Order
	err := s.db.GetContext(ctx, &o, `
		SELECT id, customer_name, customer_email, confirmation_code, status, total_amount, notes, created_at, confirmed_at
		FROM orders WHERE confirmation_code = ?
	`, code)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("get order by code: %w", err)
	}

	if o.ConfirmedAt != nil {
		return &ConfirmResult{Order: o, AlreadyClaimed: true}, nil
	}

	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`UPDATE orders SET status = ?, confirmed_at = ? WHERE id = ? AND confirmed_at IS NULL`,
		model.OrderStatusConfirmed, now, o.ID)
	if err != nil {
		return nil, fmt.Errorf("confirm order: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// Claimed between the read and the update; re-read for the original stamp.
		return s.ConfirmByCode(ctx, code)
	}

	o.Status = model.OrderStatusConfirmed
	o.ConfirmedAt = &now
	return &ConfirmResult{Order: o, AlreadyClaimed: false}, nil
}

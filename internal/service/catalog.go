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
	ErrProductNotFound = errors.New("product not found")
	ErrProductExists   = errors.New("product name already exists")
)

type CatalogService struct {
	db *sqlx.DB
}

func NewCatalogService(db *sqlx.DB) *CatalogService {
	return &CatalogService{db: db}
}

func (s *CatalogService) Create(ctx context.Context, p model.Product) (*model.Product, error) {
	p.ID = uuid.NewString()
	p.CreatedAt = time.Now().UTC()
	if p.Currency == "" {
		p.Currency = "USD"
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO products (id, name, price, currency, created_at) VALUES (?, ?, ?, ?, ?)`,
		p.ID, p.Name, p.Price, p.Currency, p.CreatedAt)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return nil, ErrProductExists
		}
		return nil, fmt.Errorf("insert product: %w", err)
	}

	for _, extra := range p.ExtraPrices {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO product_prices (product_id, currency, price) VALUES (?, ?, ?)`,
			p.ID, extra.Currency, extra.Price)
		if err != nil {
			return nil, fmt.Errorf("insert product price: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	return &p, nil
}

func (s *CatalogService) List(ctx context.Context) ([]model.Product, error) {
	var products []model.Product
	err := s.db.SelectContext(ctx, &products,
		`SELECT id, name, price, currency, created_at FROM products ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}

	for i := range products {
		err = s.db.SelectContext(ctx, &products[i].ExtraPrices,
			`SELECT product_id, currency, price FROM product_prices WHERE product_id = ?`,
			products[i].ID)
		if err != nil {
			return nil, fmt.Errorf("query product prices: %w", err)
		}
	}

	return products, nil
}

func (s *CatalogService) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM products WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrProductNotFound
	}
	return nil
}

// ByName returns the catalog keyed by exact product name, the lookup the
// answer mapper performs for "Quantity: <name>" questions.
func (s *CatalogService) ByName(ctx context.Context) (map[string]model.Product, error) {
	var products []model.Product
	err := s.db.SelectContext(ctx, &products,
		`SELECT id, name, price, currency, created_at FROM products`)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}

	byName := make(map[string]model.Product, len(products))
	for _, p := range products {
		byName[p.Name] = p
	}
	return byName, nil
}

func (s *CatalogService) Get(ctx context.Context, id string) (*model.Product, error) {
	var p model.Product
	err := s.db.GetContext(ctx, &p,
		`SELECT id, name, price, currency, created_at FROM products WHERE id = ?`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return &p, nil
}

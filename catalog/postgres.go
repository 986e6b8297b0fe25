package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/liamcoop/rulepipeline/command"
	"github.com/liamcoop/rulepipeline/service"
)

// uniqueViolation is the PostgreSQL SQLSTATE for a duplicate key
const uniqueViolation = "23505"

const productColumns = `id, name, price, quantity, status, version, created_at, updated_at`

// PostgresProxy implements service.DataProxy backed by PostgreSQL
type PostgresProxy struct {
	db *sql.DB
}

// NewPostgresProxy creates a product proxy over db. The products table is
// created by the migrations in migrations/.
func NewPostgresProxy(db *sql.DB) *PostgresProxy {
	return &PostgresProxy{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProduct(row scanner) (*Product, error) {
	var p Product
	var status string
	if err := row.Scan(&p.ID, &p.Name, &p.Price, &p.Quantity, &status,
		&p.Version, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	p.Status = Status(status)
	return &p, nil
}

// GetAll returns every product, oldest first
func (s *PostgresProxy) GetAll(ctx context.Context) ([]*Product, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+productColumns+`
		FROM products
		ORDER BY created_at ASC, id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	products := []*Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return products, nil
}

// GetByID retrieves a product by ID
func (s *PostgresProxy) GetByID(ctx context.Context, id string) (*Product, error) {
	p, err := scanProduct(s.db.QueryRowContext(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE id = $1
	`, id))

	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("product %s: %w", id, service.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	return p, nil
}

// Insert stores p with a new id and version 1
func (s *PostgresProxy) Insert(ctx context.Context, p *Product) (*Product, error) {
	stored := p.Clone()
	stored.ID = uuid.NewString()
	stored.Version = 1

	inserted, err := scanProduct(s.db.QueryRowContext(ctx, `
		INSERT INTO products (id, name, price, quantity, status, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+productColumns,
		stored.ID, stored.Name, stored.Price, stored.Quantity, string(stored.Status),
		stored.Version, stored.CreatedAt, stored.UpdatedAt))

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return nil, command.Conflict("product with ID %s already exists", stored.ID).Wrap(err)
		}
		return nil, fmt.Errorf("failed to insert product: %w", err)
	}

	return inserted, nil
}

// Update writes p when its version matches the stored one and bumps the
// version. created_at is never modified.
func (s *PostgresProxy) Update(ctx context.Context, p *Product) (*Product, error) {
	updated, err := scanProduct(s.db.QueryRowContext(ctx, `
		UPDATE products
		SET name = $1, price = $2, quantity = $3, status = $4,
			version = version + 1, updated_at = $5
		WHERE id = $6 AND version = $7
		RETURNING `+productColumns,
		p.Name, p.Price, p.Quantity, string(p.Status), p.UpdatedAt, p.ID, p.Version))

	if errors.Is(err, sql.ErrNoRows) {
		// Either the row is gone or its version moved on
		current, getErr := s.GetByID(ctx, p.ID)
		if getErr != nil {
			return nil, getErr
		}
		return nil, command.Concurrency("product %s was modified (version %d, expected %d)",
			p.ID, p.Version, current.Version)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	return updated, nil
}

// Delete removes a product
func (s *PostgresProxy) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM products
		WHERE id = $1
	`, id)

	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("product %s: %w", id, service.ErrNotFound)
	}

	return nil
}

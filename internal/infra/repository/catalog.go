package repository

import (
	"context"

	"shuttlecourt/internal/infra"
	"shuttlecourt/internal/infra/postgres"
	"shuttlecourt/internal/usecase/commands"

	"github.com/google/uuid"
)

// CatalogRepository serves the rentable product and service catalog for the
// write side. Prices read here are frozen onto order lines, so catalog
// price changes never touch existing lines.
type CatalogRepository struct{}

func NewCatalogRepository() *CatalogRepository {
	return &CatalogRepository{}
}

func (r *CatalogRepository) FindProduct(ctx context.Context, tx postgres.DBTX, id uuid.UUID) (*commands.ProductSnapshot, error) {
	const query = `
		SELECT id, name, unit_price
		FROM products
		WHERE id = $1 AND active`

	var p commands.ProductSnapshot
	if err := tx.QueryRow(ctx, query, id).Scan(&p.ID, &p.Name, &p.UnitPrice); err != nil {
		return nil, wrapQueryErr("failed to find product", err)
	}
	return &p, nil
}

func (r *CatalogRepository) FindService(ctx context.Context, tx postgres.DBTX, id uuid.UUID) (*commands.ServiceSnapshot, error) {
	const query = `
		SELECT id, name, hourly_rate
		FROM services
		WHERE id = $1 AND active`

	var s commands.ServiceSnapshot
	if err := tx.QueryRow(ctx, query, id).Scan(&s.ID, &s.Name, &s.HourlyRate); err != nil {
		return nil, wrapQueryErr("failed to find service", err)
	}
	return &s, nil
}

// StockRepository keeps the on-hand counter on the product row; the
// conditional decrement is the same guard pattern the voucher counter uses.
type StockRepository struct{}

func NewStockRepository() *StockRepository {
	return &StockRepository{}
}

func (r *StockRepository) Reserve(ctx context.Context, tx postgres.DBTX, productID uuid.UUID, qty int) error {
	const query = `
		UPDATE products
		SET stock = stock - $2
		WHERE id = $1 AND stock >= $2`

	tag, err := tx.Exec(ctx, query, productID, qty)
	if err != nil {
		return wrapQueryErr("failed to reserve stock", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr(infra.KindConflict, "insufficient stock", nil)
	}
	return nil
}

func (r *StockRepository) Release(ctx context.Context, tx postgres.DBTX, productID uuid.UUID, qty int) error {
	const query = `UPDATE products SET stock = stock + $2 WHERE id = $1`

	if _, err := tx.Exec(ctx, query, productID, qty); err != nil {
		return wrapQueryErr("failed to release stock", err)
	}
	return nil
}

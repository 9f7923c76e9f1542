package repository

import (
	"context"

	"github.com/spec-kit/servicedesk/internal/domain"
)

// ProductRepository reads the product catalogue.
type ProductRepository interface {
	GetByReference(ctx context.Context, reference string) (*domain.Product, error)
}

// StockRepository reads and moves warehouse stock.
type StockRepository interface {
	Get(ctx context.Context, reference, warehouseCode string) (*domain.Stock, error)
	AddQuantity(ctx context.Context, reference, warehouseCode string, delta float64) error
}

type productRepository struct {
	db DBTX
}

// NewProductRepository builds the repository.
func NewProductRepository(db DBTX) ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) GetByReference(ctx context.Context, reference string) (*domain.Product, error) {
	var product domain.Product
	if err := r.db.QueryRow(ctx,
		`SELECT reference, description, price, no_stock FROM products WHERE reference=$1`, reference,
	).Scan(&product.Reference, &product.Description, &product.Price, &product.NoStock); err != nil {
		return nil, err
	}
	return &product, nil
}

type stockRepository struct {
	db DBTX
}

// NewStockRepository builds the repository.
func NewStockRepository(db DBTX) StockRepository {
	return &stockRepository{db: db}
}

func (r *stockRepository) Get(ctx context.Context, reference, warehouseCode string) (*domain.Stock, error) {
	var stock domain.Stock
	if err := r.db.QueryRow(ctx,
		`SELECT reference, warehouse_code, quantity FROM stocks WHERE reference=$1 AND warehouse_code=$2`,
		reference, warehouseCode,
	).Scan(&stock.Reference, &stock.WarehouseCode, &stock.Quantity); err != nil {
		return nil, err
	}
	return &stock, nil
}

// AddQuantity moves stock by delta in one statement. A missing row is created
// at zero before the delta applies, so concurrent writers never lose updates.
func (r *stockRepository) AddQuantity(ctx context.Context, reference, warehouseCode string, delta float64) error {
	const query = `
        INSERT INTO stocks (reference, warehouse_code, quantity)
        VALUES ($1, $2, $3)
        ON CONFLICT (reference, warehouse_code)
        DO UPDATE SET quantity = stocks.quantity + EXCLUDED.quantity`
	_, err := r.db.Exec(ctx, query, reference, warehouseCode, delta)
	return err
}

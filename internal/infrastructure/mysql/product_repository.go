package mysql

import (
	"context"
	"database/sql"
	"errors"

	_ "github.com/go-sql-driver/mysql"

	"github.com/Faisal-Sha/eco-product-task/internal/domain"
)

// MySQLProductRepository reads product documents for the stats request
// path. Writes belong to the CRUD service and are out of scope here.
type MySQLProductRepository struct {
	db *sql.DB
}

func NewMySQLProductRepository(db *sql.DB) *MySQLProductRepository {
	return &MySQLProductRepository{db: db}
}

func (r *MySQLProductRepository) GetProduct(ctx context.Context, productID string) (*domain.Product, error) {
	query := `
        SELECT id, name, description, category, price, stock, is_active, created_at, updated_at
        FROM products WHERE id = ?
    `

	var product domain.Product

	err := r.db.QueryRowContext(ctx, query, productID).Scan(
		&product.ID, &product.Name, &product.Description, &product.Category,
		&product.Price, &product.Stock, &product.IsActive,
		&product.CreatedAt, &product.UpdatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}

	return &product, nil
}

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/linemk/almost-amazon/internal/domain/models"
)

var ErrProductNotFound = errors.New("product not found")

// ProductFilter — необязательные условия выборки товаров
type ProductFilter struct {
	Name        string
	Description string
	PriceFrom   *decimal.Decimal
	PriceTo     *decimal.Decimal
}

// ProductStorage описывает методы для работы с каталогом товаров.
type ProductStorage interface {
	// GetProductByIDTx читает товар внутри транзакции: используется воркфлоу
	// заказа для расчёта суммы по актуальной цене.
	GetProductByIDTx(ctx context.Context, tx *sql.Tx, id int64) (*models.Product, error)
	GetProductByID(ctx context.Context, id int64) (*models.Product, error)
	ListProducts(ctx context.Context, filter ProductFilter) ([]*models.Product, error)
	CreateProduct(ctx context.Context, product *models.Product) (*models.Product, error)
	UpdateProduct(ctx context.Context, product *models.Product) error
	DeleteProduct(ctx context.Context, id int64) error
}

type productRepository struct {
	db *sql.DB
}

func NewProductRepository(db *sql.DB) ProductStorage {
	return &productRepository{db: db}
}

const productColumns = "id, name, description, price, created_at, updated_at"

func scanProduct(row interface{ Scan(...any) error }) (*models.Product, error) {
	p := &models.Product{}
	if err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.CreatedAt, &p.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *productRepository) GetProductByIDTx(ctx context.Context, tx *sql.Tx, id int64) (*models.Product, error) {
	row := tx.QueryRowContext(ctx, "SELECT "+productColumns+" FROM products WHERE id = $1", id)
	return scanProduct(row)
}

func (r *productRepository) GetProductByID(ctx context.Context, id int64) (*models.Product, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+productColumns+" FROM products WHERE id = $1", id)
	return scanProduct(row)
}

// ListProducts возвращает товары с учетом фильтра по подстроке и диапазону цен
func (r *productRepository) ListProducts(ctx context.Context, filter ProductFilter) ([]*models.Product, error) {
	query := "SELECT " + productColumns + " FROM products"
	var args []any
	var conds []string

	if filter.Name != "" {
		args = append(args, "%"+filter.Name+"%")
		conds = append(conds, "name ILIKE $"+strconv.Itoa(len(args)))
	}
	if filter.Description != "" {
		args = append(args, "%"+filter.Description+"%")
		conds = append(conds, "description ILIKE $"+strconv.Itoa(len(args)))
	}
	if filter.PriceFrom != nil {
		args = append(args, *filter.PriceFrom)
		conds = append(conds, "price >= $"+strconv.Itoa(len(args)))
	}
	if filter.PriceTo != nil {
		args = append(args, *filter.PriceTo)
		conds = append(conds, "price <= $"+strconv.Itoa(len(args)))
	}
	query += whereClause(conds) + " ORDER BY id"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []*models.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return products, nil
}

func (r *productRepository) CreateProduct(ctx context.Context, product *models.Product) (*models.Product, error) {
	row := r.db.QueryRowContext(ctx,
		`INSERT INTO products (name, description, price) VALUES ($1, $2, $3)
		 RETURNING id, created_at, updated_at`,
		product.Name, product.Description, product.Price,
	)
	if err := row.Scan(&product.ID, &product.CreatedAt, &product.UpdatedAt); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	return product, nil
}

func (r *productRepository) UpdateProduct(ctx context.Context, product *models.Product) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE products SET name = $1, description = $2, price = $3, updated_at = NOW() WHERE id = $4",
		product.Name, product.Description, product.Price, product.ID,
	)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (r *productRepository) DeleteProduct(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM products WHERE id = $1", id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrProductNotFound
	}
	return nil
}

package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/tuanvumaihuynh/product-catalogue/internal/model"
	"github.com/tuanvumaihuynh/product-catalogue/internal/storage/db"
)

var (
	// ErrProductNotFound is returned when no row matches the requested id.
	ErrProductNotFound = errors.New("product not found")
	// ErrProductDeleted is returned when a write targets a row that is already deleted.
	ErrProductDeleted = errors.New("product deleted")
)

// ProductRepository is the entity store for products. Each write is a single statement.
type ProductRepository interface {
	// CreateProduct inserts product and returns the row with its store-assigned id.
	CreateProduct(ctx context.Context, product model.Product) (model.Product, error)
	GetProduct(ctx context.Context, id int64) (model.Product, error)
	// UpdateProduct writes name, description, price and updated_at of a row that is not
	// deleted. Category and status are never written.
	UpdateProduct(ctx context.Context, product model.Product) (model.Product, error)
	// MarkProductDeleted moves a row that is not yet deleted to the deleted status.
	MarkProductDeleted(ctx context.Context, id int64, deletedAt time.Time) (model.Product, error)
	ListProductsByCategoryAndStatus(ctx context.Context, category string, status model.ProductStatus) ([]model.Product, error)
	// ListProductsByStatusAndMinPrice returns rows ordered by ascending price.
	ListProductsByStatusAndMinPrice(ctx context.Context, status model.ProductStatus, minPrice float64) ([]model.Product, error)
}

type productRepository struct {
	db db.DB
}

func NewProductRepository(db db.DB) ProductRepository {
	return &productRepository{
		db: db,
	}
}

const productColumns = `id, name, description, price, category, status, created_at, updated_at`

type productRow struct {
	ID          int64          `db:"id"`
	Name        string         `db:"name"`
	Description *string        `db:"description"`
	Price       pgtype.Numeric `db:"price"`
	Category    string         `db:"category"`
	Status      string         `db:"status"`
	CreatedAt   time.Time      `db:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at"`
}

func (r productRepository) CreateProduct(ctx context.Context, product model.Product) (model.Product, error) {
	price, err := toNumeric(product.Price)
	if err != nil {
		return model.Product{}, err
	}

	rows, err := r.db.Query(ctx, `
		INSERT INTO products (name, description, price, category, status, created_at, updated_at)
		VALUES (@name, @description, @price, @category, @status, @created_at, @updated_at)
		RETURNING `+productColumns, pgx.NamedArgs{
		"name":        product.Name,
		"description": product.Description,
		"price":       price,
		"category":    product.Category,
		"status":      string(product.Status),
		"created_at":  product.CreatedAt,
		"updated_at":  product.UpdatedAt,
	})
	if err != nil {
		return model.Product{}, fmt.Errorf("create product: %w", err)
	}

	created, err := collectOne(rows)
	if err != nil {
		return model.Product{}, fmt.Errorf("create product: %w", err)
	}

	return created, nil
}

func (r productRepository) GetProduct(ctx context.Context, id int64) (model.Product, error) {
	rows, err := r.db.Query(ctx, `SELECT `+productColumns+` FROM products WHERE id = @id`, pgx.NamedArgs{
		"id": id,
	})
	if err != nil {
		return model.Product{}, fmt.Errorf("get product: %w", err)
	}

	product, err := collectOne(rows)
	if err != nil {
		return model.Product{}, fmt.Errorf("get product %d: %w", id, err)
	}

	return product, nil
}

func (r productRepository) UpdateProduct(ctx context.Context, product model.Product) (model.Product, error) {
	price, err := toNumeric(product.Price)
	if err != nil {
		return model.Product{}, err
	}

	rows, err := r.db.Query(ctx, `
		UPDATE products
		SET
			name        = @name,
			description = @description,
			price       = @price,
			updated_at  = @updated_at
		WHERE id = @id AND status <> @deleted
		RETURNING `+productColumns, pgx.NamedArgs{
		"id":          product.ID,
		"name":        product.Name,
		"description": product.Description,
		"price":       price,
		"updated_at":  product.UpdatedAt,
		"deleted":     string(model.ProductStatusDeleted),
	})
	if err != nil {
		return model.Product{}, fmt.Errorf("update product: %w", err)
	}

	updated, err := r.collectWritten(ctx, rows, product.ID)
	if err != nil {
		return model.Product{}, fmt.Errorf("update product %d: %w", product.ID, err)
	}

	return updated, nil
}

func (r productRepository) MarkProductDeleted(ctx context.Context, id int64, deletedAt time.Time) (model.Product, error) {
	rows, err := r.db.Query(ctx, `
		UPDATE products
		SET
			status     = @deleted,
			updated_at = @updated_at
		WHERE id = @id AND status <> @deleted
		RETURNING `+productColumns, pgx.NamedArgs{
		"id":         id,
		"updated_at": deletedAt,
		"deleted":    string(model.ProductStatusDeleted),
	})
	if err != nil {
		return model.Product{}, fmt.Errorf("mark product deleted: %w", err)
	}

	deleted, err := r.collectWritten(ctx, rows, id)
	if err != nil {
		return model.Product{}, fmt.Errorf("mark product %d deleted: %w", id, err)
	}

	return deleted, nil
}

// collectWritten reads the row returned by a guarded write. When the guard matched
// nothing, the row is looked up to tell a missing product from a deleted one.
func (r productRepository) collectWritten(ctx context.Context, rows pgx.Rows, id int64) (model.Product, error) {
	written, err := collectOne(rows)
	if !errors.Is(err, ErrProductNotFound) {
		return written, err
	}

	if _, err := r.GetProduct(ctx, id); err != nil {
		return model.Product{}, err
	}
	return model.Product{}, ErrProductDeleted
}

func (r productRepository) ListProductsByCategoryAndStatus(ctx context.Context, category string, status model.ProductStatus) ([]model.Product, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE category = @category AND status = @status
		ORDER BY id`, pgx.NamedArgs{
		"category": category,
		"status":   string(status),
	})
	if err != nil {
		return nil, fmt.Errorf("list products by category and status: %w", err)
	}

	products, err := collectAll(rows)
	if err != nil {
		return nil, fmt.Errorf("list products by category and status: %w", err)
	}

	return products, nil
}

func (r productRepository) ListProductsByStatusAndMinPrice(ctx context.Context, status model.ProductStatus, minPrice float64) ([]model.Product, error) {
	price, err := toNumeric(minPrice)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE status = @status AND price >= @min_price
		ORDER BY price, id`, pgx.NamedArgs{
		"status":    string(status),
		"min_price": price,
	})
	if err != nil {
		return nil, fmt.Errorf("list products by status and min price: %w", err)
	}

	products, err := collectAll(rows)
	if err != nil {
		return nil, fmt.Errorf("list products by status and min price: %w", err)
	}

	return products, nil
}

func collectOne(rows pgx.Rows) (model.Product, error) {
	row, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[productRow])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Product{}, ErrProductNotFound
		}
		return model.Product{}, err
	}

	return rowToModelProduct(row)
}

func collectAll(rows pgx.Rows) ([]model.Product, error) {
	productRows, err := pgx.CollectRows(rows, pgx.RowToStructByName[productRow])
	if err != nil {
		return nil, err
	}

	products := make([]model.Product, 0, len(productRows))
	for _, row := range productRows {
		product, err := rowToModelProduct(row)
		if err != nil {
			return nil, err
		}
		products = append(products, product)
	}

	return products, nil
}

func rowToModelProduct(row productRow) (model.Product, error) {
	price, err := row.Price.Float64Value()
	if err != nil {
		return model.Product{}, fmt.Errorf("convert price to float64: %w", err)
	}

	status := model.ProductStatus(row.Status)
	if err := status.Validate(); err != nil {
		return model.Product{}, fmt.Errorf("product %d: %w", row.ID, err)
	}

	return model.Product{
		ID:          row.ID,
		Name:        row.Name,
		Description: row.Description,
		Price:       price.Float64,
		Category:    row.Category,
		Status:      status,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}, nil
}

func toNumeric(v float64) (pgtype.Numeric, error) {
	var n pgtype.Numeric
	if err := n.Scan(strconv.FormatFloat(v, 'f', -1, 64)); err != nil {
		return pgtype.Numeric{}, fmt.Errorf("scan price: %w", err)
	}
	return n, nil
}

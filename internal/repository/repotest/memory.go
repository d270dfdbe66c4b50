// Package repotest provides an in-memory ProductRepository for tests.
package repotest

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/tuanvumaihuynh/product-catalogue/internal/model"
	"github.com/tuanvumaihuynh/product-catalogue/internal/repository"
)

var _ repository.ProductRepository = (*ProductRepository)(nil)

// ProductRepository mirrors the SQL repository semantics on a map.
type ProductRepository struct {
	mu     sync.RWMutex
	nextID int64
	rows   map[int64]model.Product
	writes int
}

func NewProductRepository() *ProductRepository {
	return &ProductRepository{rows: make(map[int64]model.Product)}
}

// Seed stores p as-is, keeping its id, and returns it. Ids must not collide.
func (r *ProductRepository) Seed(p model.Product) model.Product {
	r.mu.Lock()
	defer r.mu.Unlock()

	if p.ID == 0 {
		r.nextID++
		p.ID = r.nextID
	} else if p.ID > r.nextID {
		r.nextID = p.ID
	}
	r.rows[p.ID] = clone(p)
	return clone(p)
}

// Writes returns how many UpdateProduct and MarkProductDeleted calls changed a row.
func (r *ProductRepository) Writes() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.writes
}

// Row returns the stored row without going through the repository interface.
func (r *ProductRepository) Row(id int64) (model.Product, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.rows[id]
	return clone(p), ok
}

func (r *ProductRepository) CreateProduct(_ context.Context, product model.Product) (model.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	product.ID = r.nextID
	r.rows[product.ID] = clone(product)
	return clone(product), nil
}

func (r *ProductRepository) GetProduct(_ context.Context, id int64) (model.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.rows[id]
	if !ok {
		return model.Product{}, fmt.Errorf("get product %d: %w", id, repository.ErrProductNotFound)
	}
	return clone(p), nil
}

func (r *ProductRepository) UpdateProduct(_ context.Context, product model.Product) (model.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, err := r.writable(product.ID)
	if err != nil {
		return model.Product{}, fmt.Errorf("update product %d: %w", product.ID, err)
	}

	stored.Name = product.Name
	stored.Description = product.Description
	stored.Price = product.Price
	stored.UpdatedAt = product.UpdatedAt
	r.rows[product.ID] = clone(stored)
	r.writes++
	return clone(stored), nil
}

func (r *ProductRepository) MarkProductDeleted(_ context.Context, id int64, deletedAt time.Time) (model.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, err := r.writable(id)
	if err != nil {
		return model.Product{}, fmt.Errorf("mark product %d deleted: %w", id, err)
	}

	stored.Status = model.ProductStatusDeleted
	stored.UpdatedAt = deletedAt
	r.rows[id] = stored
	r.writes++
	return clone(stored), nil
}

// writable returns the stored row when a guarded write may change it. Callers hold mu.
func (r *ProductRepository) writable(id int64) (model.Product, error) {
	stored, ok := r.rows[id]
	if !ok {
		return model.Product{}, repository.ErrProductNotFound
	}
	if stored.Status == model.ProductStatusDeleted {
		return model.Product{}, repository.ErrProductDeleted
	}
	return stored, nil
}

func (r *ProductRepository) ListProductsByCategoryAndStatus(_ context.Context, category string, status model.ProductStatus) ([]model.Product, error) {
	return r.filter(func(p model.Product) bool {
		return p.Category == category && p.Status == status
	}, func(a, b model.Product) int {
		return cmp.Compare(a.ID, b.ID)
	}), nil
}

func (r *ProductRepository) ListProductsByStatusAndMinPrice(_ context.Context, status model.ProductStatus, minPrice float64) ([]model.Product, error) {
	return r.filter(func(p model.Product) bool {
		return p.Status == status && p.Price >= minPrice
	}, func(a, b model.Product) int {
		return cmp.Or(cmp.Compare(a.Price, b.Price), cmp.Compare(a.ID, b.ID))
	}), nil
}

func (r *ProductRepository) filter(keep func(model.Product) bool, order func(a, b model.Product) int) []model.Product {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]model.Product, 0)
	for _, p := range r.rows {
		if keep(p) {
			out = append(out, clone(p))
		}
	}
	slices.SortFunc(out, order)
	return out
}

func clone(p model.Product) model.Product {
	if p.Description != nil {
		d := *p.Description
		p.Description = &d
	}
	return p
}

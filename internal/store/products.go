package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/invoicer/internal/model"
)

const productColumns = "id, name, price, created_at, updated_at"

// ProductStore persists products.
type ProductStore struct {
	conn
}

// Find retrieves a product by ID.
// Returns ErrNotFound if no product has that ID.
func (s *ProductStore) Find(ctx context.Context, id int64) (*model.Product, error) {
	row := s.queryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = ?`, id)
	p, err := scanProduct(row)
	if err != nil {
		return nil, fmt.Errorf("find product %d: %w", id, err)
	}
	return p, nil
}

// FindByName retrieves the first product (lowest ID) whose name matches exactly.
// Returns ErrNotFound if none does.
func (s *ProductStore) FindByName(ctx context.Context, name string) (*model.Product, error) {
	row := s.queryRow(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE name = ?
		ORDER BY id ASC
		LIMIT 1
	`, name)
	p, err := scanProduct(row)
	if err != nil {
		return nil, fmt.Errorf("find product by name: %w", err)
	}
	return p, nil
}

// FindAll returns every product ordered by ID.
func (s *ProductStore) FindAll(ctx context.Context) ([]*model.Product, error) {
	rows, err := s.query(ctx, `SELECT `+productColumns+` FROM products ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	products := []*model.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}
	return products, nil
}

// Save inserts the product if it has no ID, otherwise updates it.
func (s *ProductStore) Save(ctx context.Context, p *model.Product) error {
	now := s.timestamp()

	if !p.Persisted() {
		var id int64
		err := s.queryRow(ctx, `
			INSERT INTO products (name, price, created_at, updated_at)
			VALUES (?, ?, ?, ?)
			RETURNING id
		`, p.Name, p.Price, now, now).Scan(&id)
		if err != nil {
			return fmt.Errorf("insert product: %w", err)
		}
		p.ID = id
		p.CreatedAt = now
		p.UpdatedAt = now
		return nil
	}

	res, err := s.exec(ctx, `
		UPDATE products
		SET name = ?, price = ?, updated_at = ?
		WHERE id = ?
	`, p.Name, p.Price, now, p.ID)
	if err := checkUpdated(res, err); err != nil {
		return fmt.Errorf("update product %d: %w", p.ID, err)
	}
	p.UpdatedAt = now
	return nil
}

// Delete removes the product. Returns false if the product has no ID or no
// row was deleted.
func (s *ProductStore) Delete(ctx context.Context, p *model.Product) (bool, error) {
	if !p.Persisted() {
		return false, nil
	}
	res, err := s.exec(ctx, `DELETE FROM products WHERE id = ?`, p.ID)
	return deleted(res, err, "product")
}

// Count returns the number of products.
func (s *ProductStore) Count(ctx context.Context) (int64, error) {
	n, err := s.count(ctx, "products")
	if err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	return n, nil
}

func scanProduct(row scanner) (*model.Product, error) {
	var p model.Product
	if err := row.Scan(&p.ID, &p.Name, &p.Price, &p.CreatedAt, &p.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan product: %w", err)
	}
	return &p, nil
}

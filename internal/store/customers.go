package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/invoicer/internal/model"
)

const customerColumns = "id, name, address, created_at, updated_at"

// CustomerStore persists customers.
type CustomerStore struct {
	conn
}

// Find retrieves a customer by ID.
// Returns ErrNotFound if no customer has that ID.
func (s *CustomerStore) Find(ctx context.Context, id int64) (*model.Customer, error) {
	row := s.queryRow(ctx, `SELECT `+customerColumns+` FROM customers WHERE id = ?`, id)
	c, err := scanCustomer(row)
	if err != nil {
		return nil, fmt.Errorf("find customer %d: %w", id, err)
	}
	return c, nil
}

// FindByName retrieves the first customer (lowest ID) whose name matches exactly.
// Returns ErrNotFound if none does.
func (s *CustomerStore) FindByName(ctx context.Context, name string) (*model.Customer, error) {
	row := s.queryRow(ctx, `
		SELECT `+customerColumns+`
		FROM customers
		WHERE name = ?
		ORDER BY id ASC
		LIMIT 1
	`, name)
	c, err := scanCustomer(row)
	if err != nil {
		return nil, fmt.Errorf("find customer by name: %w", err)
	}
	return c, nil
}

// FindAll returns every customer ordered by ID.
// Returns an empty slice (not nil) if there are none.
func (s *CustomerStore) FindAll(ctx context.Context) ([]*model.Customer, error) {
	rows, err := s.query(ctx, `SELECT `+customerColumns+` FROM customers ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("query customers: %w", err)
	}
	defer rows.Close()

	customers := []*model.Customer{}
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, err
		}
		customers = append(customers, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate customers: %w", err)
	}
	return customers, nil
}

// Save inserts the customer if it has no ID, otherwise updates it.
//
// Insert assigns ID, CreatedAt and UpdatedAt. Update refreshes UpdatedAt only
// and returns ErrNotFound if the row no longer exists.
func (s *CustomerStore) Save(ctx context.Context, c *model.Customer) error {
	now := s.timestamp()

	if !c.Persisted() {
		var id int64
		err := s.queryRow(ctx, `
			INSERT INTO customers (name, address, created_at, updated_at)
			VALUES (?, ?, ?, ?)
			RETURNING id
		`, c.Name, c.Address, now, now).Scan(&id)
		if err != nil {
			return fmt.Errorf("insert customer: %w", err)
		}
		c.ID = id
		c.CreatedAt = now
		c.UpdatedAt = now
		return nil
	}

	res, err := s.exec(ctx, `
		UPDATE customers
		SET name = ?, address = ?, updated_at = ?
		WHERE id = ?
	`, c.Name, c.Address, now, c.ID)
	if err := checkUpdated(res, err); err != nil {
		return fmt.Errorf("update customer %d: %w", c.ID, err)
	}
	c.UpdatedAt = now
	return nil
}

// Delete removes the customer. Returns false without touching the database
// if the customer has no ID, and false if no row was deleted.
func (s *CustomerStore) Delete(ctx context.Context, c *model.Customer) (bool, error) {
	if !c.Persisted() {
		return false, nil
	}
	res, err := s.exec(ctx, `DELETE FROM customers WHERE id = ?`, c.ID)
	return deleted(res, err, "customer")
}

// Count returns the number of customers.
func (s *CustomerStore) Count(ctx context.Context) (int64, error) {
	n, err := s.count(ctx, "customers")
	if err != nil {
		return 0, fmt.Errorf("count customers: %w", err)
	}
	return n, nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanCustomer(row scanner) (*model.Customer, error) {
	var c model.Customer
	if err := row.Scan(&c.ID, &c.Name, &c.Address, &c.CreatedAt, &c.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan customer: %w", err)
	}
	return &c, nil
}

// checkUpdated maps an UPDATE that touched no rows to ErrNotFound.
func checkUpdated(res sql.Result, err error) error {
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func deleted(res sql.Result, err error, entity string) (bool, error) {
	if err != nil {
		return false, fmt.Errorf("delete %s: %w", entity, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete %s: rows affected: %w", entity, err)
	}
	return n > 0, nil
}

package client

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/tirzah-studio/site-api/domain/content"
)

type Store interface {
	ListActive(ctx context.Context) ([]Client, error)
	Get(ctx context.Context, id string) (*Client, error)
	Create(ctx context.Context, c *Client) error
	Update(ctx context.Context, c *Client) error
	Delete(ctx context.Context, id string) error
}

const (
	listActiveQuery = `SELECT id, name, logo, sort_order, is_active, created_at, updated_at
		FROM clients WHERE is_active = TRUE ORDER BY sort_order ASC, created_at ASC`

	getQuery = `SELECT id, name, logo, sort_order, is_active, created_at, updated_at
		FROM clients WHERE id = $1`

	insertQuery = `INSERT INTO clients (id, name, logo, sort_order, is_active)
		VALUES ($1, $2, $3, $4, $5) RETURNING created_at, updated_at`

	updateQuery = `UPDATE clients SET name = $2, logo = $3, sort_order = $4, is_active = $5, updated_at = NOW()
		WHERE id = $1 RETURNING updated_at`

	deleteQuery = `DELETE FROM clients WHERE id = $1`
)

type SQLStore struct {
	db *sqlx.DB
}

func NewStore(db *sqlx.DB) *SQLStore {
	return &SQLStore{db: db}
}

func (s *SQLStore) ListActive(ctx context.Context) ([]Client, error) {
	clients := []Client{}
	if err := s.db.SelectContext(ctx, &clients, listActiveQuery); err != nil {
		return nil, err
	}
	return clients, nil
}

func (s *SQLStore) Get(ctx context.Context, id string) (*Client, error) {
	var c Client
	if err := s.db.GetContext(ctx, &c, getQuery, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, content.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (s *SQLStore) Create(ctx context.Context, c *Client) error {
	return s.db.QueryRowxContext(ctx, insertQuery, c.ID, c.Name, c.Logo, c.Order, c.IsActive).
		Scan(&c.CreatedAt, &c.UpdatedAt)
}

func (s *SQLStore) Update(ctx context.Context, c *Client) error {
	err := s.db.QueryRowxContext(ctx, updateQuery, c.ID, c.Name, c.Logo, c.Order, c.IsActive).
		Scan(&c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return content.ErrNotFound
	}
	return err
}

func (s *SQLStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, deleteQuery, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return content.ErrNotFound
	}
	return nil
}

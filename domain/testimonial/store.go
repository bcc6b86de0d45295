package testimonial

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/tirzah-studio/site-api/domain/content"
)

type Store interface {
	ListActive(ctx context.Context) ([]Testimonial, error)
	Get(ctx context.Context, id string) (*Testimonial, error)
	Create(ctx context.Context, t *Testimonial) error
	Update(ctx context.Context, t *Testimonial) error
	Delete(ctx context.Context, id string) error
}

const selectColumns = `SELECT id, name, role, organization, quote, logo, sort_order, is_active, created_at, updated_at
		FROM testimonials`

const (
	listActiveQuery = selectColumns + ` WHERE is_active = TRUE ORDER BY sort_order ASC, created_at ASC`

	getQuery = selectColumns + ` WHERE id = $1`

	insertQuery = `INSERT INTO testimonials (id, name, role, organization, quote, logo, sort_order, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING created_at, updated_at`

	updateQuery = `UPDATE testimonials
		SET name = $2, role = $3, organization = $4, quote = $5, logo = $6, sort_order = $7, is_active = $8,
		    updated_at = NOW()
		WHERE id = $1 RETURNING updated_at`

	deleteQuery = `DELETE FROM testimonials WHERE id = $1`
)

type SQLStore struct {
	db *sqlx.DB
}

func NewStore(db *sqlx.DB) *SQLStore {
	return &SQLStore{db: db}
}

func (s *SQLStore) ListActive(ctx context.Context) ([]Testimonial, error) {
	items := []Testimonial{}
	if err := s.db.SelectContext(ctx, &items, listActiveQuery); err != nil {
		return nil, err
	}
	return items, nil
}

func (s *SQLStore) Get(ctx context.Context, id string) (*Testimonial, error) {
	var t Testimonial
	if err := s.db.GetContext(ctx, &t, getQuery, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, content.ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (s *SQLStore) Create(ctx context.Context, t *Testimonial) error {
	return s.db.QueryRowxContext(ctx, insertQuery,
		t.ID, t.Name, t.Role, t.Organization, t.Quote, t.Logo, t.Order, t.IsActive,
	).Scan(&t.CreatedAt, &t.UpdatedAt)
}

func (s *SQLStore) Update(ctx context.Context, t *Testimonial) error {
	err := s.db.QueryRowxContext(ctx, updateQuery,
		t.ID, t.Name, t.Role, t.Organization, t.Quote, t.Logo, t.Order, t.IsActive,
	).Scan(&t.UpdatedAt)
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

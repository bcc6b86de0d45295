package portfolio

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/tirzah-studio/site-api/domain/content"
)

type Store interface {
	// List returns items newest first; a non-nil active filters on is_active.
	List(ctx context.Context, active *bool) ([]Item, error)
	Get(ctx context.Context, id string) (*Item, error)
	Create(ctx context.Context, it *Item) error
	Update(ctx context.Context, it *Item) error
	Delete(ctx context.Context, id string) error
}

const selectColumns = `SELECT id, title, category, media_type, media_src, video_src, description, link, background,
		services, achievements, stats, is_active, created_at, updated_at
		FROM portfolio_items`

const (
	listQuery         = selectColumns + ` ORDER BY created_at DESC`
	listByActiveQuery = selectColumns + ` WHERE is_active = $1 ORDER BY created_at DESC`
	getQuery          = selectColumns + ` WHERE id = $1`

	insertQuery = `INSERT INTO portfolio_items
		(id, title, category, media_type, media_src, video_src, description, link, background,
		 services, achievements, stats, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING created_at, updated_at`

	updateQuery = `UPDATE portfolio_items
		SET title = $2, category = $3, media_type = $4, media_src = $5, video_src = $6, description = $7,
		    link = $8, background = $9, services = $10, achievements = $11, stats = $12, is_active = $13,
		    updated_at = NOW()
		WHERE id = $1 RETURNING updated_at`

	deleteQuery = `DELETE FROM portfolio_items WHERE id = $1`
)

type SQLStore struct {
	db *sqlx.DB
}

func NewStore(db *sqlx.DB) *SQLStore {
	return &SQLStore{db: db}
}

func (s *SQLStore) List(ctx context.Context, active *bool) ([]Item, error) {
	var rows []row
	var err error
	if active == nil {
		err = s.db.SelectContext(ctx, &rows, listQuery)
	} else {
		err = s.db.SelectContext(ctx, &rows, listByActiveQuery, *active)
	}
	if err != nil {
		return nil, err
	}

	items := make([]Item, 0, len(rows))
	for _, r := range rows {
		it, err := r.item()
		if err != nil {
			return nil, fmt.Errorf("decode portfolio item %s: %w", r.ID, err)
		}
		items = append(items, it)
	}
	return items, nil
}

func (s *SQLStore) Get(ctx context.Context, id string) (*Item, error) {
	var r row
	if err := s.db.GetContext(ctx, &r, getQuery, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, content.ErrNotFound
		}
		return nil, err
	}
	it, err := r.item()
	if err != nil {
		return nil, fmt.Errorf("decode portfolio item %s: %w", id, err)
	}
	return &it, nil
}

func (s *SQLStore) Create(ctx context.Context, it *Item) error {
	return s.db.QueryRowxContext(ctx, insertQuery, s.args(it)...).
		Scan(&it.CreatedAt, &it.UpdatedAt)
}

func (s *SQLStore) Update(ctx context.Context, it *Item) error {
	err := s.db.QueryRowxContext(ctx, updateQuery, s.args(it)...).Scan(&it.UpdatedAt)
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

// args lists the item's columns in insert/update placeholder order.
func (s *SQLStore) args(it *Item) []any {
	return []any{
		it.ID, it.Title, it.Category, it.MediaType, it.MediaSrc, it.VideoSrc, it.Description,
		it.Link, it.Background,
		content.EntriesColumn(it.Services),
		content.EntriesColumn(it.Achievements),
		content.StatsColumn(it.Stats),
		it.IsActive,
	}
}

package testimonial

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockStore(t *testing.T) (*SQLStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})
	return NewStore(sqlx.NewDb(db, "postgres")), mock
}

func TestStoreListActiveScansNullLogo(t *testing.T) {
	store, mock := newMockStore(t)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta(listActiveQuery)).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "name", "role", "organization", "quote", "logo", "sort_order", "is_active", "created_at", "updated_at",
		}).
			AddRow("a", "Grace", "CTO", "Navy", "Quote", nil, 0, true, now, now).
			AddRow("b", "Ada", "Analyst", "Engines", "Quote", "/uploads/testimonials/b.png", 1, true, now, now))

	got, err := store.ListActive(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Nil(t, got[0].Logo)
	require.NotNil(t, got[1].Logo)
	assert.Equal(t, "/uploads/testimonials/b.png", *got[1].Logo)
}

func TestStoreCreatePassesNullLogo(t *testing.T) {
	store, mock := newMockStore(t)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta(insertQuery)).
		WithArgs("a", "Grace", "CTO", "Navy", "Quote", nil, 2, true).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

	tm := &Testimonial{ID: "a", Name: "Grace", Role: "CTO", Organization: "Navy", Quote: "Quote", Order: 2, IsActive: true}
	require.NoError(t, store.Create(context.Background(), tm))
	assert.Equal(t, now, tm.UpdatedAt)
}

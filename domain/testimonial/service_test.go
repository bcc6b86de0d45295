package testimonial

import (
	"bytes"
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tirzah-studio/site-api/domain/content"
	"github.com/tirzah-studio/site-api/pkg/apperrors"
	"github.com/tirzah-studio/site-api/pkg/logger"
	"github.com/tirzah-studio/site-api/pkg/upload"
	"github.com/tirzah-studio/site-api/pkg/upload/uploadtest"
)

type fakeStore struct {
	rows       map[string]Testimonial
	failWrite  error
	failDelete error
}

func (f *fakeStore) ListActive(context.Context) ([]Testimonial, error) {
	var out []Testimonial
	for _, t := range f.rows {
		if t.IsActive {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeStore) Get(_ context.Context, id string) (*Testimonial, error) {
	t, ok := f.rows[id]
	if !ok {
		return nil, content.ErrNotFound
	}
	return &t, nil
}

func (f *fakeStore) Create(_ context.Context, t *Testimonial) error {
	if f.failWrite != nil {
		return f.failWrite
	}
	f.rows[t.ID] = *t
	return nil
}

func (f *fakeStore) Update(_ context.Context, t *Testimonial) error {
	if f.failWrite != nil {
		return f.failWrite
	}
	f.rows[t.ID] = *t
	return nil
}

func (f *fakeStore) Delete(_ context.Context, id string) error {
	if f.failDelete != nil {
		return f.failDelete
	}
	delete(f.rows, id)
	return nil
}

func newTestService(t *testing.T) (*Service, *fakeStore, *upload.Storage) {
	store := &fakeStore{rows: map[string]Testimonial{}}
	files := upload.NewStorage(t.TempDir())
	return NewService(store, files, logger.Nop()), store, files
}

var validValues = url.Values{
	"name":         {"Grace"},
	"role":         {"CTO"},
	"organization": {"Navy"},
	"quote":        {"It's easier to ask forgiveness."},
}

func withLogo(t *testing.T, values url.Values) *content.Form {
	fh := uploadtest.Header(t, uploadtest.PNGFile("logo"))
	return content.NewForm(values, map[string][]*multipart.FileHeader{"logo": {fh}})
}

func fileCount(t *testing.T, files *upload.Storage) int {
	entries, err := os.ReadDir(filepath.Join(files.Root(), "testimonials"))
	if os.IsNotExist(err) {
		return 0
	}
	require.NoError(t, err)
	return len(entries)
}

func TestCreateWithoutLogo(t *testing.T) {
	svc, store, _ := newTestService(t)

	got, err := svc.Create(context.Background(), content.NewForm(validValues, nil))
	require.NoError(t, err)
	assert.Nil(t, got.Logo)
	assert.Equal(t, 0, got.Order)
	assert.True(t, got.IsActive)
	assert.Contains(t, store.rows, got.ID)
}

func TestCreateRequiresAllText(t *testing.T) {
	for _, field := range []string{"name", "role", "organization", "quote"} {
		t.Run(field, func(t *testing.T) {
			svc, store, files := newTestService(t)
			values := url.Values{}
			for k, v := range validValues {
				values[k] = v
			}
			values.Del(field)

			_, err := svc.Create(context.Background(), withLogo(t, values))
			require.Error(t, err)
			assert.Equal(t, http.StatusBadRequest, apperrors.StatusOf(err))
			assert.Equal(t, "Name, role, organization, and quote are required", err.Error())
			assert.Empty(t, store.rows)
			assert.Zero(t, fileCount(t, files))
		})
	}
}

func TestCreateRollsBackLogo(t *testing.T) {
	svc, store, files := newTestService(t)
	store.failWrite = errors.New("insert failed")

	_, err := svc.Create(context.Background(), withLogo(t, validValues))
	assert.Equal(t, http.StatusInternalServerError, apperrors.StatusOf(err))
	assert.Zero(t, fileCount(t, files))
}

func TestUpdate(t *testing.T) {
	svc, _, files := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, withLogo(t, validValues))
	require.NoError(t, err)
	require.NotNil(t, created.Logo)

	updated, err := svc.Update(ctx, created.ID, withLogo(t, url.Values{
		"quote": {"A ship in port is safe."},
		"role":  {""},
		"order": {"7"},
	}))
	require.NoError(t, err)

	assert.Equal(t, "A ship in port is safe.", updated.Quote)
	assert.Equal(t, "CTO", updated.Role)
	assert.Equal(t, 7, updated.Order)
	assert.True(t, updated.IsActive)
	require.NotNil(t, updated.Logo)
	assert.True(t, files.Exists(*updated.Logo))
	assert.False(t, files.Exists(*created.Logo))
	assert.Equal(t, 1, fileCount(t, files))
}

func TestUpdateFailureKeepsOriginal(t *testing.T) {
	svc, store, files := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, withLogo(t, validValues))
	require.NoError(t, err)

	store.failWrite = errors.New("update failed")
	_, err = svc.Update(ctx, created.ID, withLogo(t, url.Values{"name": {"Ada"}}))
	require.Error(t, err)

	assert.True(t, files.Exists(*created.Logo))
	assert.Equal(t, 1, fileCount(t, files))
}

func TestDeleteWithoutLogo(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, content.NewForm(validValues, nil))
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, created.ID))
	assert.Empty(t, store.rows)

	_, err = svc.Get(ctx, created.ID)
	assert.Equal(t, http.StatusNotFound, apperrors.StatusOf(err))
	assert.Equal(t, "Testimonial not found", err.Error())
}

func TestDeleteWithMissingLogo(t *testing.T) {
	svc, store, files := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, withLogo(t, validValues))
	require.NoError(t, err)
	require.NotNil(t, created.Logo)
	require.NoError(t, files.Remove(*created.Logo))

	require.NoError(t, svc.Delete(ctx, created.ID))
	assert.Empty(t, store.rows)
	assert.Zero(t, fileCount(t, files))
}

func TestDeleteStoreFailureLogsRemovedLogo(t *testing.T) {
	var buf bytes.Buffer
	store := &fakeStore{rows: map[string]Testimonial{}}
	files := upload.NewStorage(t.TempDir())
	svc := NewService(store, files, logger.New(logger.Config{Environment: "production", Output: &buf}))
	ctx := context.Background()

	created, err := svc.Create(ctx, withLogo(t, validValues))
	require.NoError(t, err)

	store.failDelete = errors.New("connection reset")
	err = svc.Delete(ctx, created.ID)
	assert.Equal(t, http.StatusInternalServerError, apperrors.StatusOf(err))
	assert.Contains(t, store.rows, created.ID)
	assert.Contains(t, buf.String(), "record references a missing file")
	assert.Contains(t, buf.String(), created.ID)
}

func TestListOnlyActive(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	a, err := svc.Create(ctx, content.NewForm(validValues, nil))
	require.NoError(t, err)
	b, err := svc.Create(ctx, content.NewForm(validValues, nil))
	require.NoError(t, err)
	_, err = svc.Update(ctx, b.ID, content.NewForm(url.Values{"isActive": {"0"}}, nil))
	require.NoError(t, err)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, a.ID, list[0].ID)
}

package content

import (
	"errors"
	"mime/multipart"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tirzah-studio/site-api/pkg/logger"
	"github.com/tirzah-studio/site-api/pkg/upload"
	"github.com/tirzah-studio/site-api/pkg/upload/uploadtest"
)

func pngHeader(t *testing.T, field string) *multipart.FileHeader {
	return uploadtest.Header(t, uploadtest.PNGFile(field))
}

func TestStagingRollback(t *testing.T) {
	files := upload.NewStorage(t.TempDir())
	s := NewStaging(files, logger.Nop())

	p, err := s.Save(upload.ClientLogo, pngHeader(t, "logo"))
	require.NoError(t, err)
	require.True(t, files.Exists(p))

	empty, err := s.Save(upload.ClientLogo, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
	assert.Equal(t, []string{p}, s.Saved())

	s.Rollback()
	assert.False(t, files.Exists(p))
	assert.Empty(t, s.Saved())
}

type failingRemove struct {
	Files
	removed []string
}

func (f *failingRemove) Remove(p string) error {
	f.removed = append(f.removed, p)
	return errors.New("read-only filesystem")
}

func TestDiscardKeepsGoingOnFailure(t *testing.T) {
	files := &failingRemove{}

	Discard(files, logger.Nop(), "/uploads/clients/a.png", "", "/uploads/clients/b.png")

	assert.Equal(t, []string{"/uploads/clients/a.png", "/uploads/clients/b.png"}, files.removed)
}

func TestVisible(t *testing.T) {
	files := upload.NewStorage(t.TempDir())
	p, err := files.Save(upload.ClientLogo, pngHeader(t, "logo"))
	require.NoError(t, err)

	assert.Equal(t, p, Visible(files, logger.Nop(), p))
	assert.Empty(t, Visible(files, logger.Nop(), "/uploads/clients/gone.png"))
	assert.Empty(t, Visible(files, logger.Nop(), ""))

	missing := "/uploads/clients/gone.png"
	assert.Nil(t, VisiblePtr(files, logger.Nop(), &missing))
	assert.Nil(t, VisiblePtr(files, logger.Nop(), nil))
	assert.Equal(t, p, *VisiblePtr(files, logger.Nop(), &p))
}

func TestReplaced(t *testing.T) {
	assert.Equal(t, "/uploads/a.png", Replaced("/uploads/a.png", "/uploads/b.png"))
	assert.Empty(t, Replaced("/uploads/a.png", "/uploads/a.png"))
	assert.Empty(t, Replaced("", "/uploads/b.png"))
}

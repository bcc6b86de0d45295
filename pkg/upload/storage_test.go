package upload

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tirzah-studio/site-api/pkg/apperrors"
)

var (
	pngBytes  = append([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), bytes.Repeat([]byte{0}, 32)...)
	jpegBytes = append([]byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F', 0x00}, bytes.Repeat([]byte{0}, 32)...)
	mp4Bytes  = append([]byte{0, 0, 0, 0x18, 'f', 't', 'y', 'p', 'i', 's', 'o', 'm', 0, 0, 2, 0, 'i', 's', 'o', 'm', 'i', 's', 'o', '2'}, bytes.Repeat([]byte{0}, 32)...)
)

func fileHeader(t *testing.T, field, filename, contentType string, body []byte) *multipart.FileHeader {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, field, filename))
	if contentType != "" {
		h.Set("Content-Type", contentType)
	}
	part, err := w.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(body)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&buf, w.Boundary()).ReadForm(64 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })
	return form.File[field][0]
}

func newTestStorage(t *testing.T) *Storage {
	s := NewStorage(t.TempDir())
	s.now = func() time.Time { return time.UnixMilli(1_700_000_000_000) }
	return s
}

func dirEntries(t *testing.T, dir string) []os.DirEntry {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil
	}
	require.NoError(t, err)
	return entries
}

func TestSaveAcceptsValidFiles(t *testing.T) {
	tests := []struct {
		name        string
		slot        Slot
		filename    string
		contentType string
		body        []byte
		wantPrefix  string
	}{
		{"client png", ClientLogo, "Logo.PNG", "image/png", pngBytes, "/uploads/clients/client-1700000000000-"},
		{"testimonial jpeg", TestimonialLogo, "face.jpg", "image/jpg", jpegBytes, "/uploads/testimonials/testimonial-1700000000000-"},
		{"portfolio media octet-stream", PortfolioMedia, "shot.jpeg", "application/octet-stream", jpegBytes, "/uploads/portfolio/media-1700000000000-"},
		{"portfolio video", PortfolioVideo, "reel.mp4", "video/mp4", mp4Bytes, "/uploads/portfolio/video-1700000000000-"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestStorage(t)

			got, err := s.Save(tt.slot, fileHeader(t, tt.slot.Field, tt.filename, tt.contentType, tt.body))
			require.NoError(t, err)

			assert.True(t, strings.HasPrefix(got, tt.wantPrefix), got)
			assert.Equal(t, strings.ToLower(filepath.Ext(tt.filename)), filepath.Ext(got))
			assert.True(t, s.Exists(got))

			data, err := os.ReadFile(filepath.Join(s.Root(), strings.TrimPrefix(got, PublicPrefix+"/")))
			require.NoError(t, err)
			assert.Equal(t, tt.body, data)
		})
	}
}

func TestSaveRejects(t *testing.T) {
	tiny := ClientLogo
	tiny.MaxBytes = 16

	tests := []struct {
		name        string
		slot        Slot
		filename    string
		contentType string
		body        []byte
		wantCode    string
	}{
		{"extension not allowed", ClientLogo, "logo.gif", "image/gif", pngBytes, apperrors.ErrCodeFileType},
		{"no extension", ClientLogo, "logo", "image/png", pngBytes, apperrors.ErrCodeFileType},
		{"declared type mismatch", ClientLogo, "logo.png", "text/plain", pngBytes, apperrors.ErrCodeFileType},
		{"content is not an image", ClientLogo, "logo.png", "image/png", []byte("just some text, not a picture"), apperrors.ErrCodeFileType},
		{"image in video slot", PortfolioVideo, "reel.mp4", "application/octet-stream", pngBytes, apperrors.ErrCodeFileType},
		{"video in media slot", PortfolioMedia, "shot.png", "application/octet-stream", mp4Bytes, apperrors.ErrCodeFileType},
		{"too large", tiny, "logo.png", "image/png", pngBytes, apperrors.ErrCodeFileTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestStorage(t)

			got, err := s.Save(tt.slot, fileHeader(t, tt.slot.Field, tt.filename, tt.contentType, tt.body))
			require.Error(t, err)
			assert.Empty(t, got)

			appErr, ok := apperrors.AsAppError(err)
			require.True(t, ok)
			assert.Equal(t, 400, appErr.HTTPStatus)
			assert.Equal(t, tt.wantCode, appErr.Code)
			assert.Empty(t, dirEntries(t, filepath.Join(s.Root(), tt.slot.Dir)))
		})
	}
}

func TestSaveUsesUniqueNames(t *testing.T) {
	s := newTestStorage(t)

	seen := map[string]bool{}
	for i := 0; i < 20; i++ {
		got, err := s.Save(ClientLogo, fileHeader(t, "logo", "logo.png", "image/png", pngBytes))
		require.NoError(t, err)
		assert.False(t, seen[got], "duplicate name %s", got)
		seen[got] = true
	}
	assert.Len(t, dirEntries(t, filepath.Join(s.Root(), "clients")), 20)
}

func TestRemove(t *testing.T) {
	s := newTestStorage(t)

	got, err := s.Save(ClientLogo, fileHeader(t, "logo", "logo.png", "image/png", pngBytes))
	require.NoError(t, err)

	require.NoError(t, s.Remove(got))
	assert.False(t, s.Exists(got))

	// already gone
	assert.NoError(t, s.Remove(got))
}

func TestRemoveStaysInsideRoot(t *testing.T) {
	base := t.TempDir()
	outside := filepath.Join(base, "secret.txt")
	require.NoError(t, os.WriteFile(outside, []byte("keep"), 0o644))

	s := NewStorage(filepath.Join(base, "uploads"))

	for _, p := range []string{"", "/uploads", "/uploads/", "/uploads/../secret.txt", "/secret.txt", "../secret.txt"} {
		assert.ErrorIs(t, s.Remove(p), ErrOutsideRoot, p)
		assert.False(t, s.Exists(p), p)
	}
	assert.FileExists(t, outside)
}

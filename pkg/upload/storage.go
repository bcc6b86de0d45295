// Package upload validates multipart files against per-field rules and
// stores them on local disk under a public URL prefix.
package upload

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math/rand/v2"
	"mime"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"

	"github.com/tirzah-studio/site-api/pkg/apperrors"
	"github.com/tirzah-studio/site-api/pkg/metrics"
)

// PublicPrefix is the URL path static uploads are served from.
const PublicPrefix = "/uploads"

// ErrOutsideRoot is returned for paths that do not resolve under the
// upload root.
var ErrOutsideRoot = errors.New("upload: path outside upload root")

// Storage writes accepted files below Root and addresses them by public
// path (/uploads/<dir>/<name>).
type Storage struct {
	root   string
	prefix string
	now    func() time.Time
}

func NewStorage(root string) *Storage {
	return &Storage{root: root, prefix: PublicPrefix, now: time.Now}
}

// Root is the directory files are written under.
func (s *Storage) Root() string { return s.root }

// Save validates fh against slot and writes it to disk. Validation
// failures are 400 AppErrors; I/O failures are 500s.
func (s *Storage) Save(slot Slot, fh *multipart.FileHeader) (string, error) {
	publicPath, err := s.save(slot, fh)
	switch {
	case err == nil:
		metrics.UploadsTotal.WithLabelValues(slot.Name, metrics.ResultOK).Inc()
	case apperrors.StatusOf(err) < 500:
		metrics.UploadsTotal.WithLabelValues(slot.Name, metrics.ResultRejected).Inc()
	default:
		metrics.UploadsTotal.WithLabelValues(slot.Name, metrics.ResultError).Inc()
	}
	return publicPath, err
}

func (s *Storage) save(slot Slot, fh *multipart.FileHeader) (string, error) {
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if !slot.allowsExtension(ext) {
		return "", apperrors.NewBadRequest(apperrors.ErrCodeFileType, slot.TypeError)
	}
	if !slot.allowsDeclared(declaredType(fh)) {
		return "", apperrors.NewBadRequest(apperrors.ErrCodeFileType, slot.TypeError)
	}
	if fh.Size > slot.MaxBytes {
		return "", apperrors.NewBadRequest(apperrors.ErrCodeFileTooLarge, slot.SizeError())
	}

	src, err := fh.Open()
	if err != nil {
		return "", apperrors.NewInternal(apperrors.ErrCodeStorageError, "Failed to read upload", err)
	}
	defer src.Close()

	detected, err := mimetype.DetectReader(src)
	if err != nil {
		return "", apperrors.NewInternal(apperrors.ErrCodeStorageError, "Failed to read upload", err)
	}
	if !slot.allowsDetected(detected) {
		return "", apperrors.NewBadRequest(apperrors.ErrCodeFileType, slot.TypeError)
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return "", apperrors.NewInternal(apperrors.ErrCodeStorageError, "Failed to read upload", err)
	}

	dir := filepath.Join(s.root, slot.Dir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", apperrors.NewInternal(apperrors.ErrCodeStorageError, "Failed to store upload", err)
	}

	name := s.filename(slot, ext)
	full := filepath.Join(dir, name)
	dst, err := os.OpenFile(full, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", apperrors.NewInternal(apperrors.ErrCodeStorageError, "Failed to store upload", err)
	}

	// Size on the header is client-reported; enforce the ceiling on the bytes too.
	n, copyErr := io.Copy(dst, io.LimitReader(src, slot.MaxBytes+1))
	closeErr := dst.Close()
	if copyErr == nil {
		copyErr = closeErr
	}
	if copyErr != nil {
		_ = os.Remove(full)
		return "", apperrors.NewInternal(apperrors.ErrCodeStorageError, "Failed to store upload", copyErr)
	}
	if n > slot.MaxBytes {
		_ = os.Remove(full)
		return "", apperrors.NewBadRequest(apperrors.ErrCodeFileTooLarge, slot.SizeError())
	}

	return path.Join(s.prefix, slot.Dir, name), nil
}

// filename builds <prefix>-<unixmillis>-<random><ext>.
func (s *Storage) filename(slot Slot, ext string) string {
	return fmt.Sprintf("%s-%d-%d%s", slot.Prefix, s.now().UnixMilli(), rand.IntN(1_000_000_000), ext)
}

// Remove deletes the file behind a public path. A file that is already
// gone is not an error.
func (s *Storage) Remove(publicPath string) error {
	full, err := s.resolve(publicPath)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// Exists reports whether a public path refers to a regular file on disk.
func (s *Storage) Exists(publicPath string) bool {
	full, err := s.resolve(publicPath)
	if err != nil {
		return false
	}
	info, err := os.Stat(full)
	return err == nil && info.Mode().IsRegular()
}

func (s *Storage) resolve(publicPath string) (string, error) {
	if publicPath == "" {
		return "", ErrOutsideRoot
	}
	cleaned := path.Clean("/" + publicPath)
	rel, ok := strings.CutPrefix(cleaned, s.prefix+"/")
	if !ok || rel == "" {
		return "", ErrOutsideRoot
	}
	return filepath.Join(s.root, filepath.FromSlash(rel)), nil
}

func declaredType(fh *multipart.FileHeader) string {
	raw := fh.Header.Get("Content-Type")
	if raw == "" {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(raw)
	if err != nil {
		return raw
	}
	return strings.ToLower(mediaType)
}

package content

import (
	"mime/multipart"

	"github.com/tirzah-studio/site-api/pkg/logger"
	"github.com/tirzah-studio/site-api/pkg/metrics"
	"github.com/tirzah-studio/site-api/pkg/upload"
)

// Files is the part of upload storage a record service uses.
type Files interface {
	Save(slot upload.Slot, fh *multipart.FileHeader) (string, error)
	Remove(publicPath string) error
	Exists(publicPath string) bool
}

// Staging tracks the files written while handling one write request so
// they can be removed if the store write fails.
type Staging struct {
	files Files
	log   logger.Logger
	saved []string
}

func NewStaging(files Files, log logger.Logger) *Staging {
	return &Staging{files: files, log: log}
}

// Save stores fh in slot. A nil fh is a no-op returning "".
func (s *Staging) Save(slot upload.Slot, fh *multipart.FileHeader) (string, error) {
	if fh == nil {
		return "", nil
	}
	p, err := s.files.Save(slot, fh)
	if err != nil {
		return "", err
	}
	s.log.Debug("Upload stored", logger.Slot(slot.Name), logger.FilePath(p))
	s.saved = append(s.saved, p)
	return p, nil
}

// Saved lists the paths written so far.
func (s *Staging) Saved() []string { return s.saved }

// Rollback removes every file written by this staging.
func (s *Staging) Rollback() {
	Discard(s.files, s.log, s.saved...)
	s.saved = nil
}

// Discard removes files that no record references any more. Failures leave
// an orphaned file behind; they are logged and counted, never returned.
func Discard(files Files, log logger.Logger, paths ...string) {
	for _, p := range paths {
		if p == "" {
			continue
		}
		if err := files.Remove(p); err != nil {
			metrics.FileCleanupFailuresTotal.Inc()
			log.Error("Orphaned upload could not be removed", err, logger.FilePath(p))
		}
	}
}

// Visible returns p when its file is still on disk and "" otherwise, so a
// record never points the UI at a missing file.
func Visible(files Files, log logger.Logger, p string) string {
	if p == "" {
		return ""
	}
	if !files.Exists(p) {
		log.Warn("Referenced upload is missing", logger.FilePath(p))
		return ""
	}
	return p
}

// VisiblePtr is Visible for nullable paths.
func VisiblePtr(files Files, log logger.Logger, p *string) *string {
	if p == nil {
		return nil
	}
	if v := Visible(files, log, *p); v != "" {
		return &v
	}
	return nil
}

// Replaced returns old when a new file took its place, for removal after
// the store write commits.
func Replaced(old, updated string) string {
	if old != "" && old != updated {
		return old
	}
	return ""
}

package upload

import (
	"fmt"

	"github.com/gabriel-vasile/mimetype"
)

const (
	megabyte = 1 << 20

	// LogoMaxBytes caps client and testimonial logos.
	LogoMaxBytes = 5 * megabyte
	// MediaMaxBytes caps portfolio images and videos.
	MediaMaxBytes = 50 * megabyte
)

// Slot describes one named file field of a write request and the rules a
// file must satisfy to be stored in it.
type Slot struct {
	Name       string // metrics/log label
	Field      string // multipart form field
	Dir        string // directory under the upload root
	Prefix     string // filename prefix
	MaxBytes   int64
	Extensions []string
	MIMETypes  []string
	TypeError  string // message returned when the type is rejected
}

var logoExtensions = []string{".jpeg", ".jpg", ".png", ".svg", ".webp"}
var logoMIMETypes = []string{"image/jpeg", "image/png", "image/svg+xml", "image/webp"}

var (
	PortfolioMedia = Slot{
		Name:       "portfolio_media",
		Field:      "media",
		Dir:        "portfolio",
		Prefix:     "media",
		MaxBytes:   MediaMaxBytes,
		Extensions: []string{".jpeg", ".jpg", ".png", ".gif", ".webp"},
		MIMETypes:  []string{"image/jpeg", "image/png", "image/gif", "image/webp"},
		TypeError:  "Only image files are allowed for media field (jpeg, jpg, png, gif, webp)",
	}

	PortfolioVideo = Slot{
		Name:       "portfolio_video",
		Field:      "video",
		Dir:        "portfolio",
		Prefix:     "video",
		MaxBytes:   MediaMaxBytes,
		Extensions: []string{".mp4", ".webm", ".ogg"},
		MIMETypes:  []string{"video/mp4", "video/webm", "video/ogg", "application/ogg"},
		TypeError:  "Only video files are allowed for video field (mp4, webm, ogg)",
	}

	ClientLogo = Slot{
		Name:       "client_logo",
		Field:      "logo",
		Dir:        "clients",
		Prefix:     "client",
		MaxBytes:   LogoMaxBytes,
		Extensions: logoExtensions,
		MIMETypes:  logoMIMETypes,
		TypeError:  "Only image files are allowed (jpeg, jpg, png, svg, webp)",
	}

	TestimonialLogo = Slot{
		Name:       "testimonial_logo",
		Field:      "logo",
		Dir:        "testimonials",
		Prefix:     "testimonial",
		MaxBytes:   LogoMaxBytes,
		Extensions: logoExtensions,
		MIMETypes:  logoMIMETypes,
		TypeError:  "Only image files are allowed (jpeg, jpg, png, svg, webp)",
	}
)

// SizeError is the message returned when a file exceeds the slot ceiling.
func (s Slot) SizeError() string {
	return fmt.Sprintf("File too large for %s field (max %dMB)", s.Field, s.MaxBytes/megabyte)
}

func (s Slot) allowsExtension(ext string) bool {
	for _, allowed := range s.Extensions {
		if ext == allowed {
			return true
		}
	}
	return false
}

// allowsDeclared checks the client-supplied Content-Type. Browsers send
// application/octet-stream for unknown types, so that value is left to
// content sniffing.
func (s Slot) allowsDeclared(mediaType string) bool {
	if mediaType == "" || mediaType == "application/octet-stream" {
		return true
	}
	if mediaType == "image/jpg" {
		mediaType = "image/jpeg"
	}
	for _, allowed := range s.MIMETypes {
		if mediaType == allowed {
			return true
		}
	}
	return false
}

// allowsDetected walks the detected type and its parents, so a generic
// container match (application/ogg) still satisfies a video slot.
func (s Slot) allowsDetected(detected *mimetype.MIME) bool {
	for m := detected; m != nil; m = m.Parent() {
		for _, allowed := range s.MIMETypes {
			if m.Is(allowed) {
				return true
			}
		}
	}
	return false
}

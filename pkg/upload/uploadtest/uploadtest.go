// Package uploadtest builds multipart file headers for tests.
package uploadtest

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/textproto"
	"testing"
)

var (
	PNG  = append([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), bytes.Repeat([]byte{0}, 32)...)
	JPEG = append([]byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F', 0x00}, bytes.Repeat([]byte{0}, 32)...)
	MP4  = append([]byte{0, 0, 0, 0x18, 'f', 't', 'y', 'p', 'i', 's', 'o', 'm', 0, 0, 2, 0, 'i', 's', 'o', 'm', 'i', 's', 'o', '2'}, bytes.Repeat([]byte{0}, 32)...)
)

// File is one part of a multipart body.
type File struct {
	Field       string
	Filename    string
	ContentType string
	Body        []byte
}

// Body encodes values and files as multipart/form-data and returns the
// body with its Content-Type header value.
func Body(t *testing.T, values map[string]string, files ...File) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range values {
		if err := w.WriteField(k, v); err != nil {
			t.Fatalf("write field %s: %v", k, err)
		}
	}
	for _, f := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, f.Field, f.Filename))
		if f.ContentType != "" {
			h.Set("Content-Type", f.ContentType)
		}
		part, err := w.CreatePart(h)
		if err != nil {
			t.Fatalf("create part: %v", err)
		}
		if _, err := part.Write(f.Body); err != nil {
			t.Fatalf("write part: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}
	return &buf, w.FormDataContentType()
}

// Header returns the parsed header of a single uploaded file.
func Header(t *testing.T, f File) *multipart.FileHeader {
	t.Helper()

	body, ctype := Body(t, nil, f)
	boundary := ctype[len("multipart/form-data; boundary="):]
	form, err := multipart.NewReader(body, boundary).ReadForm(64 << 20)
	if err != nil {
		t.Fatalf("read form: %v", err)
	}
	t.Cleanup(func() { _ = form.RemoveAll() })
	return form.File[f.Field][0]
}

// PNGFile is a small valid PNG upload under field.
func PNGFile(field string) File {
	return File{Field: field, Filename: "logo.png", ContentType: "image/png", Body: PNG}
}

// Package content holds the helpers shared by the portfolio, client and
// testimonial record services: form decoding with absent/cleared
// semantics, typed JSON sub-fields, and file staging around store writes.
package content

import (
	"encoding/json"
	"mime/multipart"
	"net/url"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/tirzah-studio/site-api/pkg/apperrors"
)

// State classifies a submitted form value.
type State int

const (
	Absent    State = iota // field not submitted
	Cleared                // submitted as an empty string
	Set                    // submitted with a usable value
	Malformed              // submitted but could not be decoded
)

// Form is a decoded write request: text values plus uploaded files.
type Form struct {
	values url.Values
	files  map[string][]*multipart.FileHeader
}

// NewForm builds a Form directly, mostly for tests and JSON bodies.
func NewForm(values url.Values, files map[string][]*multipart.FileHeader) *Form {
	if values == nil {
		values = url.Values{}
	}
	return &Form{values: values, files: files}
}

// ReadForm decodes multipart, urlencoded or JSON request bodies. JSON
// scalars and nested values are kept as their raw text so the same
// absent/cleared rules apply to every encoding.
func ReadForm(c echo.Context) (*Form, error) {
	ctype := c.Request().Header.Get(echo.HeaderContentType)

	switch {
	case strings.HasPrefix(ctype, echo.MIMEMultipartForm):
		mf, err := c.MultipartForm()
		if err != nil {
			return nil, apperrors.NewBadRequest(apperrors.ErrCodeInvalidInput, "Invalid multipart form")
		}
		return NewForm(url.Values(mf.Value), mf.File), nil

	case strings.HasPrefix(ctype, echo.MIMEApplicationJSON):
		var raw map[string]json.RawMessage
		if err := json.NewDecoder(c.Request().Body).Decode(&raw); err != nil {
			return nil, apperrors.NewBadRequest(apperrors.ErrCodeInvalidInput, "Invalid JSON body")
		}
		values := url.Values{}
		for key, msg := range raw {
			if string(msg) == "null" {
				values.Set(key, "")
				continue
			}
			var s string
			if err := json.Unmarshal(msg, &s); err == nil {
				values.Set(key, s)
				continue
			}
			values.Set(key, string(msg))
		}
		return NewForm(values, nil), nil

	default:
		params, err := c.FormParams()
		if err != nil {
			return nil, apperrors.NewBadRequest(apperrors.ErrCodeInvalidInput, "Invalid form body")
		}
		return NewForm(params, nil), nil
	}
}

func (f *Form) lookup(key string) (string, bool) {
	vs, ok := f.values[key]
	if !ok || len(vs) == 0 {
		return "", false
	}
	return vs[0], true
}

// Text returns the trimmed value of key and its state. Whitespace-only
// input counts as cleared.
func (f *Form) Text(key string) (string, State) {
	v, ok := f.lookup(key)
	if !ok {
		return "", Absent
	}
	v = strings.TrimSpace(v)
	if v == "" {
		return "", Cleared
	}
	return v, Set
}

// Required returns the value for a mandatory text field, "" when missing.
func (f *Form) Required(key string) string {
	v, _ := f.Text(key)
	return v
}

// Keep applies update semantics for a required text field: only a
// non-empty submission replaces the current value.
func (f *Form) Keep(key, current string) string {
	if v, st := f.Text(key); st == Set {
		return v
	}
	return current
}

// Optional applies update semantics for a nullable text field: absent
// keeps, empty clears, anything else replaces.
func (f *Form) Optional(key string, current *string) *string {
	v, st := f.Text(key)
	switch st {
	case Absent:
		return current
	case Cleared:
		return nil
	}
	return &v
}

// Bool parses key with strconv.ParseBool. ok is false when the field was
// not submitted; a submitted value that does not parse is a 400.
func (f *Form) Bool(key string) (value bool, ok bool, err error) {
	v, st := f.Text(key)
	if st != Set {
		return false, false, nil
	}
	b, perr := strconv.ParseBool(v)
	if perr != nil {
		return false, false, apperrors.NewBadRequest(apperrors.ErrCodeInvalidInput, key+" must be true or false")
	}
	return b, true, nil
}

// Int parses key as a base-10 integer that fits the INTEGER columns. ok is
// false when the field was absent or empty; anything else unparsable is a
// 400.
func (f *Form) Int(key string) (value int, ok bool, err error) {
	v, st := f.Text(key)
	if st != Set {
		return 0, false, nil
	}
	n, perr := strconv.ParseInt(v, 10, 32)
	if perr != nil {
		return 0, false, apperrors.NewBadRequest(apperrors.ErrCodeInvalidInput, key+" must be an integer")
	}
	return int(n), true, nil
}

// File returns the first file submitted under field, or nil.
func (f *Form) File(field string) *multipart.FileHeader {
	if f.files == nil {
		return nil
	}
	fhs := f.files[field]
	if len(fhs) == 0 {
		return nil
	}
	return fhs[0]
}

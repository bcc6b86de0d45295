package content

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tirzah-studio/site-api/pkg/apperrors"
	"github.com/tirzah-studio/site-api/pkg/logger"
)

func TestFormText(t *testing.T) {
	f := NewForm(url.Values{"title": {"  Hello "}, "blank": {"   "}}, nil)

	v, st := f.Text("title")
	assert.Equal(t, "Hello", v)
	assert.Equal(t, Set, st)

	_, st = f.Text("blank")
	assert.Equal(t, Cleared, st)

	_, st = f.Text("missing")
	assert.Equal(t, Absent, st)
}

func TestFormKeepAndOptional(t *testing.T) {
	link := "https://old.example"
	f := NewForm(url.Values{"title": {""}, "link": {""}, "background": {"#fff"}}, nil)

	assert.Equal(t, "Old title", f.Keep("title", "Old title"))
	assert.Equal(t, "Old cat", f.Keep("category", "Old cat"))

	assert.Nil(t, f.Optional("link", &link))
	assert.Equal(t, &link, f.Optional("missing", &link))
	got := f.Optional("background", nil)
	require.NotNil(t, got)
	assert.Equal(t, "#fff", *got)
}

func TestFormBool(t *testing.T) {
	tests := []struct {
		raw     string
		present bool
		want    bool
		ok      bool
		wantErr bool
	}{
		{present: false},
		{raw: "", present: true},
		{raw: "true", present: true, want: true, ok: true},
		{raw: "1", present: true, want: true, ok: true},
		{raw: "false", present: true, want: false, ok: true},
		{raw: "F", present: true, want: false, ok: true},
		{raw: "yes", present: true, wantErr: true},
	}
	for _, tt := range tests {
		values := url.Values{}
		if tt.present {
			values.Set("isActive", tt.raw)
		}
		v, ok, err := NewForm(values, nil).Bool("isActive")
		if tt.wantErr {
			assert.Error(t, err, tt.raw)
			continue
		}
		require.NoError(t, err, tt.raw)
		assert.Equal(t, tt.ok, ok, tt.raw)
		assert.Equal(t, tt.want, v, tt.raw)
	}
}

func TestFormInt(t *testing.T) {
	v, ok, err := NewForm(url.Values{"order": {"3"}}, nil).Int("order")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 3, v)

	_, ok, err = NewForm(url.Values{}, nil).Int("order")
	require.NoError(t, err)
	assert.False(t, ok)

	_, _, err = NewForm(url.Values{"order": {"3.5"}}, nil).Int("order")
	assert.Error(t, err)

	v, ok, err = NewForm(url.Values{"order": {"-2147483648"}}, nil).Int("order")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, -2147483648, v)

	_, _, err = NewForm(url.Values{"order": {"9999999999"}}, nil).Int("order")
	assert.Equal(t, http.StatusBadRequest, apperrors.StatusOf(err))
}

func TestJSONValue(t *testing.T) {
	f := NewForm(url.Values{
		"services": {`[{"title":"Design","description":"Brand identity"}]`},
		"stats":    {`{"visits":"10K+","users":"2K"}`},
		"broken":   {`[{"title":`},
		"cleared":  {""},
		"null":     {"null"},
	}, nil)
	log := logger.Nop()

	services := JSONValue[[]Entry](f, "services", log)
	assert.Equal(t, Set, services.State)
	assert.Equal(t, []Entry{{Title: "Design", Description: "Brand identity"}}, services.Value)

	stats := JSONValue[*Stats](f, "stats", log)
	require.Equal(t, Set, stats.State)
	assert.Equal(t, "10K+", stats.Value.Visits)

	current := []Entry{{Title: "Kept"}}
	assert.Equal(t, current, JSONValue[[]Entry](f, "broken", log).Resolve(current))
	assert.Equal(t, current, JSONValue[[]Entry](f, "absent", log).Resolve(current))
	assert.Nil(t, JSONValue[[]Entry](f, "cleared", log).Resolve(current))
	assert.Nil(t, JSONValue[[]Entry](f, "null", log).Resolve(current))
}

func TestReadFormJSON(t *testing.T) {
	e := echo.New()
	body := `{"title":"Site","order":2,"isActive":false,"link":null,"services":[{"title":"A","description":"B"}]}`
	req := httptest.NewRequest(http.MethodPut, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	c := e.NewContext(req, httptest.NewRecorder())

	f, err := ReadForm(c)
	require.NoError(t, err)

	assert.Equal(t, "Site", f.Required("title"))
	order, ok, err := f.Int("order")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 2, order)

	active, ok, err := f.Bool("isActive")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.False(t, active)

	_, st := f.Text("link")
	assert.Equal(t, Cleared, st)

	services := JSONValue[[]Entry](f, "services", logger.Nop())
	assert.Equal(t, []Entry{{Title: "A", Description: "B"}}, services.Value)
}

func TestReadFormRejectsBadJSON(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"title":`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	c := e.NewContext(req, httptest.NewRecorder())

	_, err := ReadForm(c)
	assert.Error(t, err)
}

func TestReadFormURLEncoded(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("name=Acme&order=4"))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	c := e.NewContext(req, httptest.NewRecorder())

	f, err := ReadForm(c)
	require.NoError(t, err)
	assert.Equal(t, "Acme", f.Required("name"))
	assert.Nil(t, f.File("logo"))
}

func TestValidID(t *testing.T) {
	assert.True(t, ValidID("0b7c8a5e-6f0b-4c1e-9f5e-1d2a3b4c5d6e"))
	assert.False(t, ValidID("42"))
	assert.False(t, ValidID(""))
}

package web

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/padraicbc/feedlog/models"
	"github.com/padraicbc/feedlog/store"
)

type view struct {
	Title    string
	User     *models.User
	Flash    string
	Error    string
	CSRF     string
	Username string
	Groups   []store.DayGroup
}

func TestRenderIndexInLocation(t *testing.T) {
	zone := time.FixedZone("IST", 3600)
	r, err := NewRenderer(zone)
	require.NoError(t, err)

	recs := []models.Feeding{{ID: 9, Timestamp: time.Date(2026, 7, 1, 23, 15, 0, 0, time.UTC)}}
	var buf bytes.Buffer
	err = r.Render(&buf, "index", view{
		Title:  "Feedings",
		User:   &models.User{Username: "admin"},
		CSRF:   "tok",
		Groups: store.GroupByDay(recs, zone),
	}, nil)
	require.NoError(t, err)

	html := buf.String()
	// 23:15 UTC is 00:15 the next day at UTC+1
	assert.Contains(t, html, `title="2026-07-02"`)
	assert.Contains(t, html, "Thursday, 2 July 2026")
	assert.Contains(t, html, "00:15:00")
	assert.Contains(t, html, `action="/edit/9"`)
	assert.Contains(t, html, `action="/delete/9"`)
	assert.Contains(t, html, `value="2026-07-02T00:15:00"`)
	assert.Contains(t, html, `name="csrf" value="tok"`)
	assert.Contains(t, html, "Log out")
}

func TestRenderFormsEscape(t *testing.T) {
	r, err := NewRenderer(nil)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf, "login", view{Title: "Log in", Username: `<b>x</b>`, Error: "nope"}, nil))
	assert.Contains(t, buf.String(), "&lt;b&gt;x&lt;/b&gt;")
	assert.Contains(t, buf.String(), `role="alert">nope`)

	buf.Reset()
	require.NoError(t, r.Render(&buf, "register", view{Title: "Register"}, nil))
	assert.Contains(t, buf.String(), `action="/register"`)
}

func TestRenderUnknownPage(t *testing.T) {
	r, err := NewRenderer(time.UTC)
	require.NoError(t, err)
	assert.Error(t, r.Render(&bytes.Buffer{}, "nope", nil, nil))
}

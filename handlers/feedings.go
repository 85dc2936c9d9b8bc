package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/padraicbc/feedlog/store"
)

// timestampLayouts are tried in order on form input. The first is the
// plain form format, the others are what datetime-local inputs submit.
var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

var errBadTimestamp = errors.New("timestamp must look like 2006-01-02 15:04:05")

// ParseTimestamp reads a form timestamp as wall-clock time in loc.
func ParseTimestamp(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errBadTimestamp
}

func feedingID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusNotFound, "feeding not found")
	}
	return id, nil
}

func notFound(err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "feeding not found")
	}
	return err
}

// Index lists every feeding grouped by day.
func (h *Handler) Index(c echo.Context) error {
	return h.renderIndex(c, http.StatusOK, "")
}

func (h *Handler) renderIndex(c echo.Context, code int, errMsg string) error {
	groups, err := h.feedings.ListGroupedByDay(c.Request().Context(), h.settings.Location)
	if err != nil {
		return err
	}
	return h.render(c, code, "index", view{Title: "Feedings", Groups: groups, Error: errMsg})
}

// Add logs a feeding at the submitted time, or now when the field is blank.
func (h *Handler) Add(c echo.Context) error {
	var ts *time.Time
	if raw := strings.TrimSpace(c.FormValue("timestamp")); raw != "" {
		t, err := ParseTimestamp(raw, h.settings.Location)
		if err != nil {
			return h.renderIndex(c, http.StatusUnprocessableEntity, "Could not add feeding: "+err.Error()+".")
		}
		ts = &t
	}

	if _, err := h.feedings.Add(c.Request().Context(), ts); err != nil {
		return err
	}
	h.changed("add")
	return h.redirectWithFlash(c, "/", "Feeding added.")
}

// Edit replaces the timestamp of a feeding.
func (h *Handler) Edit(c echo.Context) error {
	id, err := feedingID(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	if _, err := h.feedings.Get(ctx, id); err != nil {
		return notFound(err)
	}

	raw := strings.TrimSpace(c.FormValue("timestamp"))
	if raw == "" {
		return h.renderIndex(c, http.StatusUnprocessableEntity, "Could not update feeding: timestamp is required.")
	}
	ts, err := ParseTimestamp(raw, h.settings.Location)
	if err != nil {
		return h.renderIndex(c, http.StatusUnprocessableEntity, "Could not update feeding: "+err.Error()+".")
	}

	if _, err := h.feedings.Edit(ctx, id, ts); err != nil {
		return notFound(err)
	}
	h.changed("edit")
	return h.redirectWithFlash(c, "/", "Feeding updated.")
}

// Delete removes a feeding.
func (h *Handler) Delete(c echo.Context) error {
	id, err := feedingID(c)
	if err != nil {
		return err
	}
	if err := h.feedings.Delete(c.Request().Context(), id); err != nil {
		return notFound(err)
	}
	h.changed("delete")
	return h.redirectWithFlash(c, "/", "Feeding deleted.")
}

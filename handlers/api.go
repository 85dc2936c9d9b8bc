package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

type feedingRequest struct {
	Timestamp *time.Time `json:"timestamp"`
}

// APIFeedings returns every feeding grouped by day.
func (h *Handler) APIFeedings(c echo.Context) error {
	groups, err := h.feedings.ListGroupedByDay(c.Request().Context(), h.settings.Location)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, groups)
}

// APICreateFeeding logs a feeding; an absent timestamp means now.
func (h *Handler) APICreateFeeding(c echo.Context) error {
	var req feedingRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	rec, err := h.feedings.Add(c.Request().Context(), req.Timestamp)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	h.changed("add")
	return c.JSON(http.StatusCreated, rec)
}

// APIUpdateFeeding replaces the timestamp of a feeding.
func (h *Handler) APIUpdateFeeding(c echo.Context) error {
	id, err := feedingID(c)
	if err != nil {
		return err
	}
	var req feedingRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.Timestamp == nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "timestamp is required")
	}

	rec, err := h.feedings.Edit(c.Request().Context(), id, *req.Timestamp)
	if err != nil {
		return notFound(err)
	}
	h.changed("edit")
	return c.JSON(http.StatusOK, rec)
}

// APIDeleteFeeding removes a feeding.
func (h *Handler) APIDeleteFeeding(c echo.Context) error {
	id, err := feedingID(c)
	if err != nil {
		return err
	}
	if err := h.feedings.Delete(c.Request().Context(), id); err != nil {
		return notFound(err)
	}
	h.changed("delete")
	return c.NoContent(http.StatusNoContent)
}

package opd

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Handler exposes the OPD prescription migration trigger over HTTP.
type Handler struct {
	m *Migrator
}

func NewHandler(m *Migrator) *Handler {
	return &Handler{m: m}
}

func (h *Handler) RegisterRoutes(migrations *echo.Group) {
	migrations.POST("/opd-prescriptions", h.MigratePrescriptions)
}

func (h *Handler) MigratePrescriptions(c echo.Context) error {
	summary, err := h.m.MigratePrescriptions(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message":       "OPD prescription migration completed",
		"totalMigrated": summary.TotalMigrated,
		"skippedCount":  summary.SkippedCount,
		"skippedItems":  summary.SkippedItems,
	})
}

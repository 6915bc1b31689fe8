package department

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

type Handler struct {
	m *Migrator
}

func NewHandler(m *Migrator) *Handler {
	return &Handler{m: m}
}

func (h *Handler) RegisterRoutes(migrations *echo.Group) {
	migrations.POST("/departments", h.MigrateDepartments)
}

func (h *Handler) MigrateDepartments(c echo.Context) error {
	summary, err := h.m.MigrateDepartments(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message":       "Department migration completed",
		"totalMigrated": summary.TotalMigrated,
		"skippedCount":  summary.SkippedCount,
		"skippedItems":  summary.SkippedItems,
	})
}

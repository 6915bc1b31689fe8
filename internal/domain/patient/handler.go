package patient

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Handler exposes the patient migration triggers over HTTP.
type Handler struct {
	m *Migrator
}

func NewHandler(m *Migrator) *Handler {
	return &Handler{m: m}
}

// RegisterRoutes mounts the patient flow triggers under the migrations
// group.
func (h *Handler) RegisterRoutes(migrations *echo.Group) {
	migrations.POST("/patients", h.MigratePatients)
	migrations.POST("/patients/relationships", h.MigrateRelationships)
}

func (h *Handler) MigratePatients(c echo.Context) error {
	summary, err := h.m.MigratePatients(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message":       "Patient migration completed",
		"totalMigrated": summary.TotalMigrated,
		"skippedCount":  summary.SkippedCount,
		"skippedItems":  summary.SkippedItems,
	})
}

func (h *Handler) MigrateRelationships(c echo.Context) error {
	summary, err := h.m.MigrateRelationships(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message":      "Relationship migration completed",
		"totalUpdated": summary.TotalMigrated,
	})
}

package patientsearch

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/hms/migrator/pkg/pagination"
)

type Handler struct {
	m *Migrator
}

func NewHandler(m *Migrator) *Handler {
	return &Handler{m: m}
}

// RegisterRoutes wires the migration trigger under the migrations group and
// the read endpoint under the plain API group.
func (h *Handler) RegisterRoutes(migrations, api *echo.Group) {
	migrations.POST("/patient-search", h.MigrateSearch)
	api.GET("/patients", h.ListPatients)
}

func (h *Handler) MigrateSearch(c echo.Context) error {
	summary, err := h.m.MigrateSearch(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message":       "Patient search migration completed",
		"totalMigrated": summary.TotalMigrated,
		"skippedCount":  summary.SkippedCount,
		"skippedItems":  summary.SkippedItems,
	})
}

func (h *Handler) ListPatients(c echo.Context) error {
	p := pagination.FromContext(c)
	patients, total, err := h.m.ListPatients(c.Request().Context(), p.Limit, p.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(patients, int(total), p.Limit, p.Offset))
}

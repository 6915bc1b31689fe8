package pharmacy

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/hms/migrator/internal/migrate"
)

// Handler exposes the pharmacy migration triggers over HTTP.
type Handler struct {
	m *Migrator
}

func NewHandler(m *Migrator) *Handler {
	return &Handler{m: m}
}

func (h *Handler) RegisterRoutes(migrations *echo.Group) {
	g := migrations.Group("/pharmacy")
	g.POST("/catalog", h.MigrateCatalog)
	g.POST("/formulations", h.MigrateFormulations)
	g.POST("/medicines", h.MigrateMedicines)
	g.POST("/locations", h.MigrateLocations)
	g.POST("/stocks", h.MigrateStocks)
}

func (h *Handler) MigrateCatalog(c echo.Context) error {
	result, err := h.m.MigrateCatalog(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message":       "Pharmacy catalog migration completed",
		"totalMigrated": result.TotalMigrated,
		"skippedItems":  result.SkippedItems,
	})
}

func (h *Handler) MigrateFormulations(c echo.Context) error {
	return h.respond(c, "Formulations migration completed", h.m.MigrateFormulations)
}

func (h *Handler) MigrateMedicines(c echo.Context) error {
	return h.respond(c, "Medicines migration completed", h.m.MigrateMedicines)
}

func (h *Handler) MigrateLocations(c echo.Context) error {
	return h.respond(c, "Pharmacy locations migration completed", h.m.MigrateLocations)
}

func (h *Handler) MigrateStocks(c echo.Context) error {
	return h.respond(c, "Pharmacy stocks migration completed", h.m.MigrateStocks)
}

func (h *Handler) respond(c echo.Context, message string, run func(ctx context.Context) (*migrate.Summary, error)) error {
	summary, err := run(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message":       message,
		"totalMigrated": summary.TotalMigrated,
		"skippedCount":  summary.SkippedCount,
		"skippedItems":  summary.SkippedItems,
	})
}

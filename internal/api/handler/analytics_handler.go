package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/civicportal/admin-api/internal/core/ports"
)

type AnalyticsHandler struct {
	service ports.AnalyticsService
}

func NewAnalyticsHandler(service ports.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{service: service}
}

// Dashboard returns the aggregate counters shown on the admin dashboard.
//
// @Summary      Dashboard stats
// @Tags         analytics
// @Produce      json
// @Success      200  {object}  domain.DashboardStats
// @Failure      500  {object}  errorResponse
// @Router       /analytics/dashboard [get]
func (h *AnalyticsHandler) Dashboard(c echo.Context) error {
	stats, err := h.service.Dashboard(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, stats)
}

// Categories returns the issue count of every category.
//
// @Summary      Issues per category
// @Tags         analytics
// @Produce      json
// @Success      200  {array}  domain.CategoryCount
// @Router       /analytics/categories [get]
func (h *AnalyticsHandler) Categories(c echo.Context) error {
	counts, err := h.service.CategoryBreakdown(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, counts)
}

// Departments returns total and resolved issue counts per department.
//
// @Summary      Department performance
// @Tags         analytics
// @Produce      json
// @Success      200  {array}  domain.DepartmentPerformance
// @Router       /analytics/departments [get]
func (h *AnalyticsHandler) Departments(c echo.Context) error {
	perf, err := h.service.DepartmentPerformance(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, perf)
}

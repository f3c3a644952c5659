package handler

import (
	"net/http"
	"time"

	"filehub/internal/dashboard"

	"github.com/labstack/echo/v4"
)

const defaultDailyRangeDays = 7

type DashboardHandler struct {
	stats DashboardService
	now   func() time.Time
}

func NewDashboardHandler(stats DashboardService) *DashboardHandler {
	return &DashboardHandler{stats: stats, now: func() time.Time { return time.Now().UTC() }}
}

func (h *DashboardHandler) Stats(c echo.Context) error {
	stats, err := h.stats.GetDashboardStats(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, stats)
}

func (h *DashboardHandler) Users(c echo.Context) error {
	stats, err := h.stats.GetUserStats(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, stats)
}

func (h *DashboardHandler) Files(c echo.Context) error {
	stats, err := h.stats.GetFileStats(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, stats)
}

func (h *DashboardHandler) Activity(c echo.Context) error {
	stats, err := h.stats.GetActivityStats(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, stats)
}

func (h *DashboardHandler) Performance(c echo.Context) error {
	stats, err := h.stats.GetSystemPerformance(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, stats)
}

func (h *DashboardHandler) SharedLinks(c echo.Context) error {
	stats, err := h.stats.GetSharedLinkStats(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, stats)
}

// Daily returns metrics for ?from= to ?to=, defaulting to the last week.
func (h *DashboardHandler) Daily(c echo.Context) error {
	from, err := queryTime(c, queryFrom)
	if err != nil {
		return handleHTTPError(c, err)
	}
	to, err := queryTime(c, queryTo)
	if err != nil {
		return handleHTTPError(c, err)
	}

	end := h.now()
	if to != nil {
		end = *to
	}
	start := end.AddDate(0, 0, -defaultDailyRangeDays)
	if from != nil {
		start = *from
	}

	metrics, err := h.stats.GetDailyMetrics(c.Request().Context(), start, end)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, metrics)
}

func (h *DashboardHandler) TopUsers(c echo.Context) error {
	count, err := queryInt(c, queryCount, dashboard.TopFileUsersCount)
	if err != nil {
		return handleHTTPError(c, err)
	}

	users, err := h.stats.GetTopFileUsers(c.Request().Context(), count)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, users)
}

func (h *DashboardHandler) RecentActivities(c echo.Context) error {
	count, err := queryInt(c, queryCount, dashboard.RecentActivitiesCount)
	if err != nil {
		return handleHTTPError(c, err)
	}

	activities, err := h.stats.GetRecentActivities(c.Request().Context(), count)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, activities)
}

func (h *DashboardHandler) ExpiringLinks(c echo.Context) error {
	days, err := queryInt(c, queryDays, dashboard.ExpiringLookaheadDays)
	if err != nil {
		return handleHTTPError(c, err)
	}

	links, err := h.stats.GetLinksExpiringSoon(c.Request().Context(), days)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, links)
}

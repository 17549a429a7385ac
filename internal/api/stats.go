// internal/api/stats.go
package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/yunjun/fungid-go/internal/taxonomy"
)

const (
	cacheKeyClasses  = "stats:classes"
	cacheKeyOverview = "stats:overview"
)

// ClassCount is one taxonomy entry with its observed occurrence count.
type ClassCount struct {
	Name  string `json:"name"`
	Count int64  `json:"count"`
}

// ClassStatsResponse covers the full fixed taxonomy in order.
type ClassStatsResponse struct {
	Success bool         `json:"success"`
	Data    []ClassCount `json:"data"`
}

// OverviewData is the aggregate summary payload.
type OverviewData struct {
	TodayCount int64   `json:"today_count"`
	TotalCount int64   `json:"total_count"`
	LatestTime *string `json:"latest_time"`
}

// OverviewResponse is the stats overview envelope.
type OverviewResponse struct {
	Success bool         `json:"success"`
	Data    OverviewData `json:"data"`
}

// StatsClasses handles GET /api/stats/classes. The response always includes
// every species of the taxonomy, zero-defaulted.
func (c *Controller) StatsClasses(ctx echo.Context) error {
	if cached, found := c.statsCache.Get(cacheKeyClasses); found {
		return ctx.JSON(http.StatusOK, cached.(ClassStatsResponse))
	}

	classes := taxonomy.Classes()
	counts, err := c.DS.ClassCounts(classes)
	if err != nil {
		return c.fail(ctx, err)
	}

	data := make([]ClassCount, 0, len(classes))
	for _, name := range classes {
		data = append(data, ClassCount{Name: name, Count: counts[name]})
	}

	response := ClassStatsResponse{Success: true, Data: data}
	c.statsCache.SetDefault(cacheKeyClasses, response)
	return ctx.JSON(http.StatusOK, response)
}

// StatsOverview handles GET /api/stats/overview.
func (c *Controller) StatsOverview(ctx echo.Context) error {
	if cached, found := c.statsCache.Get(cacheKeyOverview); found {
		return ctx.JSON(http.StatusOK, cached.(OverviewResponse))
	}

	stats, err := c.DS.Overview()
	if err != nil {
		return c.fail(ctx, err)
	}

	data := OverviewData{
		TodayCount: stats.TodayCount,
		TotalCount: stats.TotalCount,
	}
	if stats.LatestTime != nil {
		formatted := stats.LatestTime.Format(timeLayout)
		data.LatestTime = &formatted
	}

	response := OverviewResponse{Success: true, Data: data}
	c.statsCache.SetDefault(cacheKeyOverview, response)
	return ctx.JSON(http.StatusOK, response)
}

// internal/api/history.go
package api

import (
	"net/http"
	"path"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/yunjun/fungid-go/internal/datastore"
	"github.com/yunjun/fungid-go/internal/errors"
	"github.com/yunjun/fungid-go/internal/taxonomy"
)

// timeLayout is the wire format for timestamps.
const timeLayout = "2006-01-02 15:04:05"

const (
	defaultDays     = 7
	defaultPageSize = 8
	maxPageSize     = 100
)

// HistoryRecord is one detection event in the history response.
type HistoryRecord struct {
	ID           uint     `json:"id"`
	DetectTime   string   `json:"detect_time"`
	MushroomType string   `json:"mushroom_type"`
	Location     string   `json:"location"`
	Confidence   *float64 `json:"confidence"`
	FilePath     string   `json:"file_path"`
	ResultPath   string   `json:"result_path"`
	FileType     string   `json:"file_type"`
	DangerTip    string   `json:"danger_tip"`
}

// HistoryResponse is the paginated history envelope.
type HistoryResponse struct {
	Success bool            `json:"success"`
	Data    []HistoryRecord `json:"data"`
	Total   int64           `json:"total"`
	Pages   int64           `json:"pages"`
}

// GetHistory handles GET /api/history with recency/type filters and paging.
func (c *Controller) GetHistory(ctx echo.Context) error {
	filter, err := parseHistoryFilter(ctx.QueryParam("days"), ctx.QueryParam("type"))
	if err != nil {
		return c.fail(ctx, err)
	}

	page, pageSize, err := parsePaging(ctx.QueryParam("page"), ctx.QueryParam("page_size"))
	if err != nil {
		return c.fail(ctx, err)
	}

	total, err := c.DS.CountRecords(filter)
	if err != nil {
		return c.fail(ctx, err)
	}

	records, err := c.DS.SearchRecords(filter, pageSize, (page-1)*pageSize)
	if err != nil {
		return c.fail(ctx, err)
	}

	data := make([]HistoryRecord, 0, len(records))
	for i := range records {
		data = append(data, toHistoryRecord(&records[i]))
	}

	return ctx.JSON(http.StatusOK, HistoryResponse{
		Success: true,
		Data:    data,
		Total:   total,
		Pages:   (total + int64(pageSize) - 1) / int64(pageSize),
	})
}

// parseHistoryFilter maps the days/type query parameters onto the closed
// predicate set.
func parseHistoryFilter(days, typeFilter string) (datastore.RecordFilter, error) {
	filter := datastore.RecordFilter{}

	if days == "" {
		filter = filter.WithDays(defaultDays)
	} else if days != "all" {
		n, err := strconv.Atoi(days)
		if err != nil || n < 0 {
			return filter, errors.Newf("invalid days parameter %q", days).
				Component("api").
				Category(errors.CategoryValidation).
				Build()
		}
		filter = filter.WithDays(n)
	}

	if typeFilter != "" && typeFilter != "all" {
		filter = filter.WithType(taxonomy.LabelForFilterCode(typeFilter))
	}

	return filter, nil
}

// parsePaging validates the page/page_size query parameters.
func parsePaging(pageParam, sizeParam string) (page, pageSize int, err error) {
	page, pageSize = 1, defaultPageSize

	if pageParam != "" {
		page, err = strconv.Atoi(pageParam)
		if err != nil || page < 1 {
			return 0, 0, errors.Newf("invalid page parameter %q", pageParam).
				Component("api").
				Category(errors.CategoryValidation).
				Build()
		}
	}

	if sizeParam != "" {
		pageSize, err = strconv.Atoi(sizeParam)
		if err != nil || pageSize < 1 {
			return 0, 0, errors.Newf("invalid page_size parameter %q", sizeParam).
				Component("api").
				Category(errors.CategoryValidation).
				Build()
		}
		if pageSize > maxPageSize {
			pageSize = maxPageSize
		}
	}

	return page, pageSize, nil
}

// toHistoryRecord converts a stored record to its wire shape, normalizing
// asset paths and nullable fields.
func toHistoryRecord(record *datastore.AnalysisRecord) HistoryRecord {
	species := record.MushroomType
	if species == "" {
		species = "未知"
	}
	location := record.Location
	if location == "" {
		location = "未指定"
	}

	return HistoryRecord{
		ID:           record.ID,
		DetectTime:   record.CreatedAt.Format(timeLayout),
		MushroomType: species,
		Location:     location,
		Confidence:   record.Confidence,
		FilePath:     staticPath("/static/uploads/", record.FilePath),
		ResultPath:   staticPath("/static/results/", record.ResultPath),
		FileType:     record.FileType,
		DangerTip:    record.DangerTip,
	}
}

// staticPath maps a stored path onto its public static URL.
func staticPath(prefix, stored string) string {
	if strings.HasPrefix(stored, "/static/") {
		return stored
	}
	return prefix + path.Base(stored)
}

// internal/api/detect.go
package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/yunjun/fungid-go/internal/errors"
	"github.com/yunjun/fungid-go/internal/pipeline"
)

// DetectResponse is the result envelope for a detection request.
type DetectResponse struct {
	Success      bool    `json:"success"`
	MushroomType string  `json:"mushroom_type"`
	Confidence   float64 `json:"confidence"`
	ResultImage  string  `json:"result_image"`
	DangerTip    string  `json:"danger_tip"`
	DetectTime   string  `json:"detect_time"`
}

// Detect handles POST /api/detect: accepts a multipart upload, runs the
// detection pipeline and returns the structured result.
func (c *Controller) Detect(ctx echo.Context) error {
	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, errorResponse{Success: false, Message: "没有文件"})
	}
	if fileHeader.Filename == "" {
		return ctx.JSON(http.StatusBadRequest, errorResponse{Success: false, Message: "未选择文件"})
	}

	src, err := fileHeader.Open()
	if err != nil {
		return c.fail(ctx, errors.Newf("opening upload: %w", err).
			Component("api").
			Category(errors.CategoryFileIO).
			Build())
	}
	defer src.Close()

	outcome, err := c.Pipeline.Process(ctx.Request().Context(), pipeline.Upload{
		Filename:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Reader:      src,
	})
	if err != nil {
		return c.fail(ctx, err)
	}

	if !outcome.Success {
		// detection failures are soft: 200 with success=false
		return ctx.JSON(http.StatusOK, errorResponse{Success: false, Message: outcome.Message})
	}

	// stats become stale the moment a new record lands
	c.statsCache.Flush()

	return ctx.JSON(http.StatusOK, DetectResponse{
		Success:      true,
		MushroomType: outcome.Label,
		Confidence:   outcome.Confidence,
		ResultImage:  "/static/results/" + outcome.ResultImage,
		DangerTip:    outcome.Advisory,
		DetectTime:   outcome.DetectTime.Format(timeLayout),
	})
}

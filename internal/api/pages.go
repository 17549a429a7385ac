// internal/api/pages.go
package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// The HTML views are intentionally minimal shells; the data lives behind the
// JSON API.

const indexPage = `<!DOCTYPE html>
<html lang="zh">
<head><meta charset="utf-8"><title>野生菌识别</title></head>
<body>
<h1>野生菌识别</h1>
<form action="/api/detect" method="post" enctype="multipart/form-data">
<input type="file" name="file" accept="image/*">
<button type="submit">识别</button>
</form>
<p><a href="/history">识别历史</a></p>
</body>
</html>`

const historyPage = `<!DOCTYPE html>
<html lang="zh">
<head><meta charset="utf-8"><title>识别历史</title></head>
<body>
<h1>识别历史</h1>
<p>数据接口：<a href="/api/history">/api/history</a></p>
</body>
</html>`

// Index handles GET /.
func (c *Controller) Index(ctx echo.Context) error {
	return ctx.HTML(http.StatusOK, indexPage)
}

// HistoryPage handles GET /history.
func (c *Controller) HistoryPage(ctx echo.Context) error {
	return ctx.HTML(http.StatusOK, historyPage)
}

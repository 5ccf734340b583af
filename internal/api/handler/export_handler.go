package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"shelter-caller/internal/service"
	"shelter-caller/pkg/businessday"
	"shelter-caller/pkg/response"
)

// ExportHandler 导出模块 HTTP 处理器
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// ExportCounts 导出区间内的人数与空床
// GET /api/export/counts?from=2019-05-01&to=2019-05-31
func (h *ExportHandler) ExportCounts(c *gin.Context) {
	from, err := businessday.ParseDate(c.Query("from"))
	if err != nil {
		response.BadRequest(c, 10001, "from 日期无效")
		return
	}
	to, err := businessday.ParseDate(c.Query("to"))
	if err != nil {
		response.BadRequest(c, 10001, "to 日期无效")
		return
	}

	buf, filename, err := h.exportSvc.ExportCounts(c.Request.Context(), from, to)
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	// 设置下载响应头
	encodedFilename := url.QueryEscape(filename)
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+encodedFilename)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

func (h *ExportHandler) handleExportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrExportRange):
		response.BadRequest(c, 16101, "导出日期区间无效（最多 92 天）")
	default:
		response.InternalError(c)
	}
}

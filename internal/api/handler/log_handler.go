package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"shelter-caller/internal/service"
	"shelter-caller/pkg/response"
)

// LogHandler 审计日志 HTTP 处理器
type LogHandler struct {
	logSvc service.LogService
}

// NewLogHandler 创建 LogHandler
func NewLogHandler(logSvc service.LogService) *LogHandler {
	return &LogHandler{logSvc: logSvc}
}

// ShelterLogs 某收容所的审计日志，每页 15 条
// GET /api/logs/:shelter_id/:page/
func (h *LogHandler) ShelterLogs(c *gin.Context) {
	shelterID, ok := uintParam(c, "shelter_id")
	if !ok {
		response.BadRequest(c, 10001, "收容所ID无效")
		return
	}

	resp, err := h.logSvc.ByShelter(c.Request.Context(), shelterID, pageParam(c))
	if err != nil {
		if errors.Is(err, service.ErrShelterNotFound) {
			response.NotFound(c, 14001, "收容所不存在")
			return
		}
		response.InternalError(c)
		return
	}

	response.OK(c, resp)
}

package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"shelter-caller/internal/dto"
	"shelter-caller/internal/service"
	"shelter-caller/pkg/response"
)

// ShelterHandler 收容所管理 HTTP 处理器
type ShelterHandler struct {
	shelterSvc service.ShelterService
}

// NewShelterHandler 创建 ShelterHandler
func NewShelterHandler(shelterSvc service.ShelterService) *ShelterHandler {
	return &ShelterHandler{shelterSvc: shelterSvc}
}

// ListShelters 全部收容所（按名称）
// GET /api/shelters/
func (h *ShelterHandler) ListShelters(c *gin.Context) {
	shelters, err := h.shelterSvc.List(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, shelters)
}

// SaveShelter 创建或更新收容所
// POST /api/shelters/
func (h *ShelterHandler) SaveShelter(c *gin.Context) {
	var req dto.ShelterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	shelter, err := h.shelterSvc.Save(c.Request.Context(), &req)
	if err != nil {
		h.handleShelterError(c, err)
		return
	}

	response.OK(c, shelter)
}

// DeleteShelter 删除收容所及其人数与日志
// DELETE /api/shelters/:id
func (h *ShelterHandler) DeleteShelter(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		response.BadRequest(c, 10001, "收容所ID无效")
		return
	}

	if err := h.shelterSvc.Delete(c.Request.Context(), id); err != nil {
		h.handleShelterError(c, err)
		return
	}

	response.OK(c, gin.H{"result": "success"})
}

func (h *ShelterHandler) handleShelterError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrShelterNotFound):
		response.NotFound(c, 12001, "收容所不存在")
	case errors.Is(err, service.ErrShelterDuplicate):
		response.BadRequest(c, 12002, "Values must be unique")
	default:
		response.InternalError(c)
	}
}

package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"shelter-caller/internal/dto"
	"shelter-caller/internal/service"
	pkgerrors "shelter-caller/pkg/errors"
	"shelter-caller/pkg/response"
)

// PreferenceHandler 偏好设置 HTTP 处理器
type PreferenceHandler struct {
	prefSvc service.PreferenceService
}

// NewPreferenceHandler 创建 PreferenceHandler
func NewPreferenceHandler(prefSvc service.PreferenceService) *PreferenceHandler {
	return &PreferenceHandler{prefSvc: prefSvc}
}

// GetPreferences 读取偏好
// GET /api/prefs/
func (h *PreferenceHandler) GetPreferences(c *gin.Context) {
	prefs, err := h.prefSvc.Get(c.Request.Context())
	if err != nil {
		h.handlePreferenceError(c, err)
		return
	}
	response.OK(c, prefs)
}

// SetPreferences 按键批量设置，未知键整体拒绝
// POST /api/prefs/set/
func (h *PreferenceHandler) SetPreferences(c *gin.Context) {
	var values map[string]interface{}
	if err := c.ShouldBindJSON(&values); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	prefs, err := h.prefSvc.UpdateMap(c.Request.Context(), values)
	if err != nil {
		h.handlePreferenceError(c, err)
		return
	}
	response.OK(c, prefs)
}

// UpdatePreferences 强类型部分更新
// PUT /api/prefs/
func (h *PreferenceHandler) UpdatePreferences(c *gin.Context) {
	var req dto.UpdatePreferenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	prefs, err := h.prefSvc.Update(c.Request.Context(), &req)
	if err != nil {
		h.handlePreferenceError(c, err)
		return
	}
	response.OK(c, prefs)
}

func (h *PreferenceHandler) handlePreferenceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, pkgerrors.ErrUnknownPreference):
		response.BadRequest(c, 15001, err.Error())
	case errors.Is(err, pkgerrors.ErrValidation):
		response.BadRequest(c, 15002, err.Error())
	default:
		response.InternalError(c)
	}
}

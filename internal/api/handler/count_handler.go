package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"shelter-caller/internal/dto"
	"shelter-caller/internal/model"
	"shelter-caller/internal/service"
	"shelter-caller/pkg/businessday"
	pkgerrors "shelter-caller/pkg/errors"
	"shelter-caller/pkg/response"
)

// CountHandler 人数看板与人工修正 HTTP 处理器
type CountHandler struct {
	querySvc service.CountQueryService
	ledger   service.CountLedger
}

// NewCountHandler 创建 CountHandler
func NewCountHandler(querySvc service.CountQueryService, ledger service.CountLedger) *CountHandler {
	return &CountHandler{querySvc: querySvc, ledger: ledger}
}

// ────── 看板 ──────

// DailyCounts 单日人数，字段按调用方角色裁剪
// GET /api/counts/:date
func (h *CountHandler) DailyCounts(c *gin.Context) {
	resp, err := h.querySvc.ByDay(c.Request.Context(), c.Param("date"), GetRoles(c), false)
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, resp)
}

// PublicDailyCounts 公开收容所的单日空床数
// GET /api/pub_counts/:date
func (h *CountHandler) PublicDailyCounts(c *gin.Context) {
	resp, err := h.querySvc.ByDay(c.Request.Context(), c.Param("date"), []string{model.RolePublic}, true)
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, resp)
}

// History 14 天空床历史
// GET /api/counthistory/:page/
func (h *CountHandler) History(c *gin.Context) {
	resp, err := h.querySvc.History(c.Request.Context(), pageParam(c), false)
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, resp)
}

// PublicHistory 公开收容所的 14 天空床历史
// GET /api/pub_counthistory/:page/
func (h *CountHandler) PublicHistory(c *gin.Context) {
	resp, err := h.querySvc.History(c.Request.Context(), pageParam(c), true)
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, resp)
}

// ────── 人工修正 ──────

// SetCount 管理端写入或删除某日人数
// POST /api/setcount/
func (h *CountHandler) SetCount(c *gin.Context) {
	var req dto.SetCountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 13001, "Missing data")
		return
	}

	shelterID, err := strconv.ParseUint(strings.TrimSpace(string(req.ShelterID)), 10, 64)
	if err != nil || shelterID == 0 || strings.TrimSpace(req.Day) == "" {
		response.BadRequest(c, 13001, "Missing data")
		return
	}
	day, err := businessday.ParseDate(req.Day)
	if err != nil {
		response.BadRequest(c, 13002, "Can't parse date")
		return
	}

	raw := strings.TrimSpace(string(req.NumberOfPeople))
	origin := service.Origin{From: model.FromWeb, ContactType: model.ContactAdmin, Input: raw}
	ctx := c.Request.Context()

	if raw == "" {
		if err := h.ledger.Delete(ctx, uint(shelterID), day, origin); err != nil {
			h.handleCountError(c, err)
			return
		}
		response.OK(c, dto.SetCountResponse{
			Success: true,
			Counts:  &dto.CountResult{ShelterID: uint(shelterID), Day: day.String()},
		})
		return
	}

	result, err := h.ledger.Upsert(ctx, service.CountWrite{
		ShelterID:   uint(shelterID),
		Day:         day,
		PersonCount: raw,
		Origin:      origin,
	})
	if err != nil {
		h.handleCountError(c, err)
		return
	}
	response.OK(c, dto.SetCountResponse{Success: true, Counts: result})
}

func (h *CountHandler) handleCountError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrUnknownShelter):
		response.NotFound(c, 13004, "收容所不存在")
	case errors.Is(err, service.ErrBadCount):
		response.BadRequest(c, 13003, "人数必须为非负整数")
	case errors.Is(err, pkgerrors.ErrValidation):
		response.BadRequest(c, 10001, "参数校验失败")
	default:
		response.Error(c, http.StatusInternalServerError, 13005, "Error Saving Data")
	}
}

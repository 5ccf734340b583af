package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"shelter-caller/internal/dto"
	"shelter-caller/internal/service"
	pkgerrors "shelter-caller/pkg/errors"
	"shelter-caller/pkg/response"
)

// StatusRetryWith 仍有收容所未联系时 start_call 的状态码，调度方据此再次触发
const StatusRetryWith = 449

// 流程按 error 文案分支，保持英文原样
const (
	failInvalidShelter = "invalid shelter id"
	failMissingParams  = "Required parameters missing"
	failDatabase       = "Could not record call because of database error"
	failClosed         = "Outside of open hours"
	failNotCaughtUp    = "Not all shelters contacted"
)

// TelephonyHandler 电话流程 webhook 处理器，响应为扁平 JSON
type TelephonyHandler struct {
	intakeSvc   service.IntakeService
	dispatchSvc service.DispatchService
}

// NewTelephonyHandler 创建 TelephonyHandler
func NewTelephonyHandler(intakeSvc service.IntakeService, dispatchSvc service.DispatchService) *TelephonyHandler {
	return &TelephonyHandler{intakeSvc: intakeSvc, dispatchSvc: dispatchSvc}
}

// StartCall 对当前业务日未联系的收容所发起一轮外呼
// GET /twilio/start_call/
func (h *TelephonyHandler) StartCall(c *gin.Context) {
	result, err := h.dispatchSvc.StartCalls(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}

	if result.CaughtUp {
		c.JSON(http.StatusOK, gin.H{"success": true})
		return
	}
	c.JSON(StatusRetryWith, gin.H{
		"success": false,
		"error":   failNotCaughtUp,
		"result":  result,
	})
}

// ValidateShelter 识别来电方所属收容所
// POST /twilio/validate_shelter/
func (h *TelephonyHandler) ValidateShelter(c *gin.Context) {
	var req dto.ValidateShelterRequest
	if err := c.ShouldBind(&req); err != nil {
		fail(c, failMissingParams, 0)
		return
	}

	resp, err := h.intakeSvc.ValidateShelter(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrShelterNotIdentified) {
			fail(c, failInvalidShelter, req.Tries)
			return
		}
		fail(c, failDatabase, req.Tries)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// SaveCount 记录上报人数
// POST /twilio/save_count/
func (h *TelephonyHandler) SaveCount(c *gin.Context) {
	var req dto.SaveCountRequest
	if err := c.ShouldBind(&req); err != nil {
		fail(c, failMissingParams, 0)
		return
	}

	resp, err := h.intakeSvc.SaveCount(c.Request.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrClosed):
			fail(c, failClosed, req.Tries)
		case errors.Is(err, pkgerrors.ErrValidation):
			fail(c, failMissingParams, req.Tries)
		default:
			fail(c, failDatabase, req.Tries)
		}
		return
	}
	c.JSON(http.StatusOK, resp)
}

// LogFailedCall 流程侧记录一次失败通话
// POST /twilio/log_failed_call/
func (h *TelephonyHandler) LogFailedCall(c *gin.Context) {
	var req dto.FailedCallRequest
	if err := c.ShouldBind(&req); err != nil {
		fail(c, failMissingParams, 0)
		return
	}

	if err := h.intakeSvc.LogFailedCall(c.Request.Context(), &req); err != nil {
		fail(c, failDatabase, 0)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// ValidateTime 当前是否处于开放时段
// GET /twilio/validate_time/
func (h *TelephonyHandler) ValidateTime(c *gin.Context) {
	resp, err := h.intakeSvc.OpenHours(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// fail 流程可识别的失败响应，tries 自增后回传
func fail(c *gin.Context, reason string, tries int) {
	c.JSON(http.StatusOK, dto.FailResponse{
		Success: false,
		Error:   reason,
		Tries:   tries + 1,
	})
}

package http

import (
	"net/http"

	"chatwire/internal/core/domain"
	"chatwire/internal/core/ports"
	"chatwire/pkg/errors"

	"github.com/gin-gonic/gin"
)

type CallHandler struct {
	callService ports.CallService
}

func NewCallHandler(callService ports.CallService) *CallHandler {
	return &CallHandler{
		callService: callService,
	}
}

func (h *CallHandler) SetupRoutes(api *gin.RouterGroup) {
	calls := api.Group("/calls")
	{
		calls.GET("/history", h.History)
		calls.GET("/stats", h.Stats)
		calls.POST("", h.CreateCall)
		calls.PUT("/:id/status", h.UpdateStatus)
		calls.GET("/:id", h.GetCall)
		calls.DELETE("/:id", h.DeleteCall)
	}
}

func (h *CallHandler) History(c *gin.Context) {
	limit := queryInt(c, "limit", 20)
	offset := queryInt(c, "offset", 0)

	calls, err := h.callService.History(c.Request.Context(), currentUserID(c), limit, offset)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"calls": calls,
	})
}

func (h *CallHandler) Stats(c *gin.Context) {
	stats, err := h.callService.Stats(c.Request.Context(), currentUserID(c))
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"stats": stats,
	})
}

type CreateCallRequest struct {
	ReceiverID domain.UserID   `json:"receiver_id" binding:"required"`
	CallType   domain.CallType `json:"call_type" binding:"required"`
}

func (h *CallHandler) CreateCall(c *gin.Context) {
	var req CreateCallRequest
	if err := c.BindJSON(&req); err != nil {
		c.Error(errors.NewInvalidInputError("invalid request format"))
		return
	}
	if !domain.ValidCallType(req.CallType) {
		c.Error(errors.NewInvalidInputError("call_type must be audio or video"))
		return
	}

	call, err := h.callService.CreateCall(c.Request.Context(), currentUserID(c), req.ReceiverID, req.CallType)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"call": call,
	})
}

func (h *CallHandler) UpdateStatus(c *gin.Context) {
	callID := domain.CallID(c.Param("id"))

	var req struct {
		Status domain.CallStatus `json:"status" binding:"required"`
	}
	if err := c.BindJSON(&req); err != nil {
		c.Error(errors.NewInvalidInputError("invalid request format"))
		return
	}

	call, err := h.callService.UpdateStatus(c.Request.Context(), callID, currentUserID(c), req.Status)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"call": call,
	})
}

func (h *CallHandler) GetCall(c *gin.Context) {
	callID := domain.CallID(c.Param("id"))

	call, err := h.callService.GetCall(c.Request.Context(), callID, currentUserID(c))
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"call": call,
	})
}

func (h *CallHandler) DeleteCall(c *gin.Context) {
	callID := domain.CallID(c.Param("id"))

	if err := h.callService.DeleteCall(c.Request.Context(), callID, currentUserID(c)); err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "deleted",
	})
}

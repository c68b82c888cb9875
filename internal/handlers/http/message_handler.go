package http

import (
	"net/http"
	"time"

	"chatwire/internal/core/domain"
	"chatwire/internal/core/ports"
	"chatwire/pkg/errors"
	"chatwire/pkg/utils"
	"chatwire/pkg/validation"

	"github.com/gin-gonic/gin"
)

type MessageHandler struct {
	messageService ports.MessageService
}

func NewMessageHandler(messageService ports.MessageService) *MessageHandler {
	return &MessageHandler{
		messageService: messageService,
	}
}

func (h *MessageHandler) SetupRoutes(api *gin.RouterGroup) {
	messages := api.Group("/messages")
	{
		messages.GET("/conversations", h.ListConversations)
		// :id is the other user's ID here, a conversation ID below.
		messages.GET("/conversation/:id", h.GetDirectConversation)
		messages.GET("/conversation/:id/messages", h.ListMessages)
		messages.POST("/conversation/:id/messages", h.SendMessage)
		messages.POST("/conversation/:id/read", h.MarkRead)
		messages.PUT("/:id", h.EditMessage)
		messages.DELETE("/:id", h.DeleteMessage)
	}
}

func (h *MessageHandler) ListConversations(c *gin.Context) {
	conversations, err := h.messageService.ListConversations(c.Request.Context(), currentUserID(c))
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"conversations": conversations,
	})
}

func (h *MessageHandler) GetDirectConversation(c *gin.Context) {
	otherID := domain.UserID(c.Param("id"))

	conv, err := h.messageService.GetOrCreateDirectConversation(c.Request.Context(), currentUserID(c), otherID)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"conversation": conv,
	})
}

func (h *MessageHandler) ListMessages(c *gin.Context) {
	convID := domain.ConversationID(c.Param("id"))
	limit := queryInt(c, "limit", 50)
	offset := queryInt(c, "offset", 0)

	messages, err := h.messageService.ListMessages(c.Request.Context(), convID, currentUserID(c), limit, offset)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"messages": messages,
	})
}

type SendMessageRequest struct {
	Content  string             `json:"content" binding:"required"`
	Type     domain.MessageType `json:"message_type"`
	FileURL  string             `json:"file_url"`
	FileName string             `json:"file_name"`
	FileSize int64              `json:"file_size" binding:"min=0"`
}

func (h *MessageHandler) SendMessage(c *gin.Context) {
	convID := domain.ConversationID(c.Param("id"))

	var req SendMessageRequest
	if err := c.BindJSON(&req); err != nil {
		c.Error(errors.NewInvalidInputError("invalid request format"))
		return
	}
	if err := validation.ValidateMessageContent(req.Content); err != nil {
		c.Error(errors.NewInvalidInputError(err.Error()))
		return
	}
	if req.Type != "" && !domain.ValidMessageType(req.Type) {
		c.Error(errors.NewInvalidInputError("invalid message type"))
		return
	}

	msg := &domain.Message{
		ID:             domain.MessageID(utils.GenerateMessageID()),
		ConversationID: convID,
		SenderID:       currentUserID(c),
		Content:        req.Content,
		Type:           req.Type,
		FileURL:        req.FileURL,
		FileName:       req.FileName,
		FileSize:       req.FileSize,
		CreatedAt:      time.Now().UTC(),
	}

	created, err := h.messageService.SendMessage(c.Request.Context(), msg)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": created,
	})
}

func (h *MessageHandler) EditMessage(c *gin.Context) {
	msgID := domain.MessageID(c.Param("id"))

	var req struct {
		Content string `json:"content" binding:"required"`
	}
	if err := c.BindJSON(&req); err != nil {
		c.Error(errors.NewInvalidInputError("invalid request format"))
		return
	}
	if err := validation.ValidateMessageContent(req.Content); err != nil {
		c.Error(errors.NewInvalidInputError(err.Error()))
		return
	}

	msg, err := h.messageService.EditMessage(c.Request.Context(), msgID, currentUserID(c), req.Content)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": msg,
	})
}

func (h *MessageHandler) DeleteMessage(c *gin.Context) {
	msgID := domain.MessageID(c.Param("id"))

	if err := h.messageService.DeleteMessage(c.Request.Context(), msgID, currentUserID(c)); err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "deleted",
	})
}

func (h *MessageHandler) MarkRead(c *gin.Context) {
	convID := domain.ConversationID(c.Param("id"))

	if err := h.messageService.MarkConversationRead(c.Request.Context(), convID, currentUserID(c)); err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "read",
	})
}

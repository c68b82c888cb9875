package http

import (
	"net/http"

	"chatwire/internal/core/domain"
	"chatwire/internal/core/ports"
	"chatwire/pkg/errors"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	userService ports.UserService
}

func NewUserHandler(userService ports.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

func (h *UserHandler) SetupRoutes(api *gin.RouterGroup) {
	users := api.Group("/users")
	{
		users.GET("", h.ListUsers)
		users.GET("/:id", h.GetUser)
		users.GET("/online/list", h.ListOnlineUsers)
		users.GET("/search/:query", h.SearchUsers)
		users.GET("/:id/status", h.GetStatus)
		users.PUT("/status", h.UpdateStatus)
		users.GET("/:id/stats", h.GetStats)
	}
}

func (h *UserHandler) ListUsers(c *gin.Context) {
	filter := ports.UserListFilter{
		ExcludeID: currentUserID(c),
		Search:    c.Query("search"),
		Limit:     queryInt(c, "limit", 20),
		Offset:    queryInt(c, "offset", 0),
	}

	users, err := h.userService.ListUsers(c.Request.Context(), filter)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"users": users,
	})
}

func (h *UserHandler) GetUser(c *gin.Context) {
	userID := domain.UserID(c.Param("id"))

	user, err := h.userService.GetUser(c.Request.Context(), userID)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user": user,
	})
}

func (h *UserHandler) ListOnlineUsers(c *gin.Context) {
	users, err := h.userService.ListOnlineUsers(c.Request.Context(), currentUserID(c))
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"users": users,
	})
}

func (h *UserHandler) SearchUsers(c *gin.Context) {
	query := c.Param("query")
	if query == "" {
		c.Error(errors.NewInvalidInputError("search query is required"))
		return
	}

	users, err := h.userService.SearchUsers(c.Request.Context(), currentUserID(c), query, queryInt(c, "limit", 10))
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"users": users,
	})
}

func (h *UserHandler) GetStatus(c *gin.Context) {
	userID := domain.UserID(c.Param("id"))

	status, user, err := h.userService.GetStatus(c.Request.Context(), userID)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    status,
		"last_seen": user.LastSeen,
	})
}

func (h *UserHandler) UpdateStatus(c *gin.Context) {
	var req struct {
		Status domain.UserStatus `json:"status" binding:"required"`
	}
	if err := c.BindJSON(&req); err != nil {
		c.Error(errors.NewInvalidInputError("invalid request format"))
		return
	}

	user, err := h.userService.UpdateStatus(c.Request.Context(), currentUserID(c), req.Status)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user": user,
	})
}

func (h *UserHandler) GetStats(c *gin.Context) {
	userID := domain.UserID(c.Param("id"))

	stats, err := h.userService.GetStats(c.Request.Context(), userID)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"stats": stats,
	})
}

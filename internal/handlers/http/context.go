package http

import (
	"strconv"

	"chatwire/internal/core/domain"

	"github.com/gin-gonic/gin"
)

// currentUserID reads the user set by the auth middleware. Routes behind
// the middleware always have it; the empty return only happens in tests
// that skip the middleware.
func currentUserID(c *gin.Context) domain.UserID {
	val, exists := c.Get("user_id")
	if !exists {
		return ""
	}
	userID, ok := val.(domain.UserID)
	if !ok {
		return ""
	}
	return userID
}

func queryInt(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}

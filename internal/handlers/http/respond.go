package http

import (
	stderrors "errors"

	"chatwire/internal/core/domain"
	"chatwire/pkg/errors"

	"github.com/gin-gonic/gin"
)

// fail maps service errors onto API errors and hands them to the error
// middleware.
func fail(c *gin.Context, err error) {
	switch {
	case stderrors.Is(err, domain.ErrUserNotFound):
		c.Error(errors.NewNotFoundError("user"))
	case stderrors.Is(err, domain.ErrConversationNotFound):
		c.Error(errors.NewNotFoundError("conversation"))
	case stderrors.Is(err, domain.ErrMessageNotFound):
		c.Error(errors.NewNotFoundError("message"))
	case stderrors.Is(err, domain.ErrCallNotFound):
		c.Error(errors.NewNotFoundError("call"))
	case stderrors.Is(err, domain.ErrNotParticipant):
		c.Error(errors.NewForbiddenError("not a conversation participant"))
	case stderrors.Is(err, domain.ErrNotSender):
		c.Error(errors.NewForbiddenError("not the message sender"))
	case stderrors.Is(err, domain.ErrSelfTarget):
		c.Error(errors.NewInvalidInputError("target must be another user"))
	case stderrors.Is(err, domain.ErrInvalidStatus):
		c.Error(errors.NewInvalidInputError("invalid status"))
	case stderrors.Is(err, domain.ErrUsernameTaken):
		c.Error(errors.NewConflictError("username already taken"))
	default:
		c.Error(errors.NewInternalError("internal server error"))
	}
}

package domain

import "errors"

var (
	ErrUserNotFound         = errors.New("user not found")
	ErrUsernameTaken        = errors.New("username already taken")
	ErrConversationNotFound = errors.New("conversation not found")
	ErrMessageNotFound      = errors.New("message not found")
	ErrCallNotFound         = errors.New("call not found")
	ErrNotParticipant       = errors.New("not a conversation participant")
	ErrNotSender            = errors.New("not the message sender")
	ErrSelfTarget           = errors.New("target must be another user")
	ErrInvalidStatus        = errors.New("invalid status")
)

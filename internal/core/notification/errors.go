package notification

import "errors"

var (
	ErrInvalidID            = errors.New("notification: invalid id")
	ErrInvalidUserID        = errors.New("notification: invalid user id")
	ErrNotificationNotFound = errors.New("notification: not found")
	ErrNotRecipient         = errors.New("notification: caller is not the recipient")
)

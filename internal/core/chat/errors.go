package chat

import "errors"

var (
	ErrInvalidID       = errors.New("chat: invalid id")
	ErrInvalidContent  = errors.New("chat: invalid message content")
	ErrChannelNotFound = errors.New("chat: channel not found")
	ErrChannelExists   = errors.New("chat: channel already exists for this exchange")
	ErrNotParticipant  = errors.New("chat: caller is not a participant of this channel")
)

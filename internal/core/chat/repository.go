package chat

import (
	"context"
	"time"
)

// Repository はチャンネルとメッセージの永続化の抽象です。
type Repository interface {
	CreateChannel(ctx context.Context, c *Channel) error
	FindChannelByID(ctx context.Context, id string) (*Channel, error)
	ListChannelsByUser(ctx context.Context, userID string) ([]*Channel, error)
	SetLastMessageAt(ctx context.Context, channelID string, at time.Time) error

	CreateMessage(ctx context.Context, m *Message) error
	ListMessages(ctx context.Context, channelID string) ([]*MessageView, error)
	// MarkMessagesRead は指定チャンネル内の、指定ユーザー以外が送った
	// 未読メッセージを既読にします。
	MarkMessagesRead(ctx context.Context, channelID, readerID string) error

	SenderByID(ctx context.Context, userID string) (*SenderRef, error)
}

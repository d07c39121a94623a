package chat

import "time"

// Channel は完了した交換 1 件につき 1 つ作られる会話の場です。参加者は
// 両社員と受け入れ側企業のユーザーです。
type Channel struct {
	ID             string
	ExchangeID     string
	ParticipantIDs []string
	Active         bool
	LastMessageAt  *time.Time
	CreatedAt      time.Time
}

// Message はチャンネル内の発言です。
type Message struct {
	ID        string
	ChannelID string
	SenderID  string
	Content   string
	Read      bool
	CreatedAt time.Time
}

// SenderRef は発言者のスナップショットです。
type SenderRef struct {
	ID   string
	Name string
}

// MessageView は発言と発言者をまとめた一覧 1 行分です。
type MessageView struct {
	Message *Message
	Sender  *SenderRef
}

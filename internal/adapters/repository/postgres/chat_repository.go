package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/ogurasousui/jobswap-backend/internal/core/chat"
	pgdb "github.com/ogurasousui/jobswap-backend/internal/platform/db/postgres"
)

// ChatRepository は PostgreSQL を利用したチャンネルとメッセージ永続化の
// 実装です。チャンネルは exchange_id の一意制約で交換 1 件につき 1 つに
// 制限されます。
type ChatRepository struct {
	pool pgdb.Queryer
}

// NewChatRepository は ChatRepository を生成します。
func NewChatRepository(pool pgdb.Queryer) *ChatRepository {
	return &ChatRepository{pool: pool}
}

const channelColumns = "id, exchange_id, participant_ids, active, last_message_at, created_at"

// CreateChannel はチャンネルを新規作成します。
func (r *ChatRepository) CreateChannel(ctx context.Context, c *chat.Channel) error {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	_, err := exec.Exec(ctx, `
        INSERT INTO channels (`+channelColumns+`)
        VALUES ($1, $2, $3, $4, $5, $6)
    `, c.ID, c.ExchangeID, c.ParticipantIDs, c.Active, c.LastMessageAt, c.CreatedAt)
	return translateChatPgError(err)
}

// FindChannelByID は ID でチャンネルを取得します。
func (r *ChatRepository) FindChannelByID(ctx context.Context, id string) (*chat.Channel, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT `+channelColumns+`
          FROM channels
         WHERE id = $1
         LIMIT 1
    `, id)
	return scanChannel(row)
}

// ListChannelsByUser はユーザーが参加しているチャンネルを新しい発言順に
// 返します。
func (r *ChatRepository) ListChannelsByUser(ctx context.Context, userID string) ([]*chat.Channel, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, `
        SELECT `+channelColumns+`
          FROM channels
         WHERE $1 = ANY(participant_ids)
         ORDER BY last_message_at DESC NULLS LAST, created_at DESC, id DESC
    `, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	channels := make([]*chat.Channel, 0)
	for rows.Next() {
		c, err := scanChannel(rows)
		if err != nil {
			return nil, err
		}
		channels = append(channels, c)
	}
	return channels, rows.Err()
}

// SetLastMessageAt はチャンネルの最終発言時刻を更新します。
func (r *ChatRepository) SetLastMessageAt(ctx context.Context, channelID string, at time.Time) error {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	tag, err := exec.Exec(ctx, `
        UPDATE channels SET last_message_at = $1 WHERE id = $2
    `, at, channelID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return chat.ErrChannelNotFound
	}
	return nil
}

// CreateMessage はメッセージを新規作成します。
func (r *ChatRepository) CreateMessage(ctx context.Context, m *chat.Message) error {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	_, err := exec.Exec(ctx, `
        INSERT INTO messages (id, channel_id, sender_id, content, read, created_at)
        VALUES ($1, $2, $3, $4, $5, $6)
    `, m.ID, m.ChannelID, m.SenderID, m.Content, m.Read, m.CreatedAt)
	if err != nil {
		if pgErr, ok := pgError(err); ok && pgErr.Code == foreignKeyViolationCode {
			return chat.ErrChannelNotFound
		}
		return err
	}
	return nil
}

// ListMessages はチャンネル内のメッセージを古い順に返します。
func (r *ChatRepository) ListMessages(ctx context.Context, channelID string) ([]*chat.MessageView, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, `
        SELECT m.id, m.channel_id, m.sender_id, m.content, m.read, m.created_at,
               u.id, u.name
          FROM messages m
          JOIN users u ON u.id = m.sender_id
         WHERE m.channel_id = $1
         ORDER BY m.created_at ASC, m.id ASC
    `, channelID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	views := make([]*chat.MessageView, 0)
	for rows.Next() {
		var (
			m      chat.Message
			sender chat.SenderRef
		)
		if err := rows.Scan(
			&m.ID, &m.ChannelID, &m.SenderID, &m.Content, &m.Read, &m.CreatedAt,
			&sender.ID, &sender.Name,
		); err != nil {
			return nil, err
		}
		views = append(views, &chat.MessageView{Message: &m, Sender: &sender})
	}
	return views, rows.Err()
}

// MarkMessagesRead は指定チャンネル内の、指定ユーザー以外が送った未読
// メッセージを既読にします。
func (r *ChatRepository) MarkMessagesRead(ctx context.Context, channelID, readerID string) error {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	_, err := exec.Exec(ctx, `
        UPDATE messages
           SET read = TRUE
         WHERE channel_id = $1 AND sender_id <> $2 AND NOT read
    `, channelID, readerID)
	return err
}

// SenderByID はユーザー ID で発言者スナップショットを取得します。
func (r *ChatRepository) SenderByID(ctx context.Context, userID string) (*chat.SenderRef, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT id, name FROM users WHERE id = $1 LIMIT 1
    `, userID)

	var ref chat.SenderRef
	if err := row.Scan(&ref.ID, &ref.Name); err != nil {
		return nil, err
	}
	return &ref, nil
}

func scanChannel(row pgx.Row) (*chat.Channel, error) {
	var (
		c      chat.Channel
		lastAt sql.NullTime
	)
	if err := row.Scan(&c.ID, &c.ExchangeID, &c.ParticipantIDs, &c.Active, &lastAt, &c.CreatedAt); err != nil {
		if isNoRows(err) {
			return nil, chat.ErrChannelNotFound
		}
		return nil, err
	}
	if lastAt.Valid {
		at := lastAt.Time
		c.LastMessageAt = &at
	}
	return &c, nil
}

func translateChatPgError(err error) error {
	if err == nil {
		return nil
	}
	if pgErr, ok := pgError(err); ok {
		switch pgErr.Code {
		case uniqueViolationCode:
			return chat.ErrChannelExists
		case foreignKeyViolationCode:
			return chat.ErrChannelNotFound
		}
	}
	return err
}

// Package events は交換の状態遷移イベントを NATS JetStream へ発行します。
package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/ogurasousui/jobswap-backend/internal/core/exchange"
)

const (
	streamName    = "EXCHANGES"
	subjectPrefix = "swap.exchange."
)

// Client は NATS 接続と JetStream コンテキストを束ねます。
type Client struct {
	conn *nats.Conn
	js   nats.JetStreamContext
}

// Connect は NATS へ接続し、イベント用ストリームを用意します。
func Connect(url string) (*Client, error) {
	conn, err := nats.Connect(url)
	if err != nil {
		return nil, fmt.Errorf("events: connect nats: %w", err)
	}
	js, err := conn.JetStream()
	if err != nil {
		_ = conn.Drain()
		conn.Close()
		return nil, fmt.Errorf("events: jetstream context: %w", err)
	}
	if err := ensureStream(js); err != nil {
		_ = conn.Drain()
		conn.Close()
		return nil, err
	}
	return &Client{conn: conn, js: js}, nil
}

// ConnectWithRetry は指数バックオフ付きで Connect を繰り返します。
func ConnectWithRetry(ctx context.Context, url string, maxElapsed time.Duration) (*Client, error) {
	policy := backoff.NewExponentialBackOff()
	policy.MaxElapsedTime = maxElapsed

	var client *Client
	operation := func() error {
		c, err := Connect(url)
		if err != nil {
			return err
		}
		client = c
		return nil
	}
	if err := backoff.Retry(operation, backoff.WithContext(policy, ctx)); err != nil {
		return nil, err
	}
	return client, nil
}

// Close は接続をドレインして閉じます。
func (c *Client) Close() {
	if c == nil || c.conn == nil {
		return
	}
	_ = c.conn.Drain()
	c.conn.Close()
}

func ensureStream(js nats.JetStreamContext) error {
	if _, err := js.StreamInfo(streamName); err != nil {
		if !errors.Is(err, nats.ErrStreamNotFound) {
			return fmt.Errorf("events: stream info: %w", err)
		}
		if _, addErr := js.AddStream(&nats.StreamConfig{
			Name:      streamName,
			Subjects:  []string{subjectPrefix + ">"},
			Retention: nats.LimitsPolicy,
			Storage:   nats.FileStorage,
			Replicas:  1,
		}); addErr != nil {
			return fmt.Errorf("events: add stream: %w", addErr)
		}
	}
	return nil
}

// jetStream は発行に使う JetStream 操作の抽象です。
type jetStream interface {
	Publish(subj string, data []byte, opts ...nats.PubOpt) (*nats.PubAck, error)
}

// Publisher は exchange の状態遷移イベントを JetStream へ発行します。
type Publisher struct {
	js     jetStream
	logger *zap.Logger
}

// NewPublisher は Publisher を生成します。
func NewPublisher(client *Client, logger *zap.Logger) *Publisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Publisher{js: client.js, logger: logger.Named("events")}
}

// Publish はイベントを JSON で発行します。サブジェクトは遷移後の状態
// ごとに分かれます。
func (p *Publisher) Publish(ctx context.Context, event exchange.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("events: marshal event: %w", err)
	}

	subject := subjectPrefix + string(event.Status)
	if _, err := p.js.Publish(subject, payload, nats.Context(ctx)); err != nil {
		return fmt.Errorf("events: publish %s: %w", subject, err)
	}

	p.logger.Debug("event published",
		zap.String("subject", subject),
		zap.String("exchange_id", event.ExchangeID),
	)
	return nil
}

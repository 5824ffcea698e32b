// Package notify — nats.go публикует события о бейджах в NATS.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"codeblooded.dev/clout/internal/features/badges"
)

// DefaultSubject — тема по умолчанию.
const DefaultSubject = "codeblooded.badges.unlocked"

// publisher — часть *nats.Conn, которая нужна получателю.
type publisher interface {
	Publish(subject string, data []byte) error
}

// UnlockEvent — тело сообщения.
type UnlockEvent struct {
	UserID     string      `json:"user_id"`
	BadgeID    string      `json:"badge_id"`
	BadgeName  string      `json:"badge_name"`
	Tier       badges.Tier `json:"tier"`
	UnlockedAt time.Time   `json:"unlocked_at"`
}

// NATS публикует событие о каждом новом бейдже.
type NATS struct {
	conn    publisher
	close   func()
	subject string
}

// NewNATS подключается к серверу NATS.
func NewNATS(url, subject string) (*NATS, error) {
	conn, err := nats.Connect(url, nats.Name("cloutd"), nats.MaxReconnects(-1))
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}
	n := newNATS(conn, subject)
	n.close = conn.Close
	return n, nil
}

func newNATS(conn publisher, subject string) *NATS {
	if subject == "" {
		subject = DefaultSubject
	}
	return &NATS{conn: conn, subject: subject}
}

// Notify публикует событие. Доставку не ждём.
func (n *NATS) Notify(_ context.Context, u badges.Unlock) error {
	data, err := json.Marshal(UnlockEvent{
		UserID:     u.UserID,
		BadgeID:    u.Badge.ID,
		BadgeName:  u.Badge.Name,
		Tier:       u.Badge.Tier,
		UnlockedAt: u.UnlockedAt,
	})
	if err != nil {
		return err
	}
	if err := n.conn.Publish(n.subject, data); err != nil {
		return fmt.Errorf("publish %s: %w", n.subject, err)
	}
	return nil
}

// Close закрывает соединение.
func (n *NATS) Close() {
	if n.close != nil {
		n.close()
	}
}

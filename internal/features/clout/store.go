// Package clout — store.go описывает, что движок репутации требует от хранилища.
// Реализации: Repository (PostgreSQL) и store/sqlite (gorm).
package clout

import (
	"context"
	"time"
)

// Store — хранилище репутации.
type Store interface {
	// CountActionsBetween — число транзакций пользователя данного типа в [from, to).
	CountActionsBetween(ctx context.Context, userID string, action ActionType, from, to time.Time) (int, error)
	// CountActionsSince — число любых транзакций пользователя начиная с since.
	CountActionsSince(ctx context.Context, userID string, since time.Time) (int, error)
	// CountByTargetSince — сколько действий данного типа пользователь сделал
	// каждому target_user_id начиная с since.
	CountByTargetSince(ctx context.Context, userID string, action ActionType, since time.Time) (map[string]int, error)
	// SumCommentLikes — сумма лайков на всех комментариях пользователя.
	SumCommentLikes(ctx context.Context, userID string) (int, error)
	// ListActivityDates — последние limit дат активности, по убыванию.
	ListActivityDates(ctx context.Context, userID string, limit int) ([]time.Time, error)

	GetReputation(ctx context.Context, userID string) (*Reputation, error)

	// ApplyAward атомарно записывает транзакцию, обновляет профиль через apply
	// и увеличивает дневной счётчик активности за день tx.CreatedAt.
	// Если профиль не найден — common.ErrUserNotFound.
	ApplyAward(ctx context.Context, tx Transaction, apply func(Reputation) Reputation) (*Reputation, error)

	ListTransactions(ctx context.Context, userID string, limit int) ([]Transaction, error)
	ListReputations(ctx context.Context) ([]Reputation, error)
	// CompareAndSetScore меняет счёт, только если он всё ещё равен old.
	CompareAndSetScore(ctx context.Context, userID string, old, score int, tier Tier) (bool, error)
	ListLeaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error)
	GetPlatformStats(ctx context.Context) (*PlatformStats, error)
}

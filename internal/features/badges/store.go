// Package badges — store.go описывает, что движок бейджей требует от хранилища.
package badges

import (
	"context"
	"time"

	"codeblooded.dev/clout/internal/features/clout"
)

// Store — хранилище каталога, выданных бейджей и данных для условий.
type Store interface {
	// ListBadges возвращает каталог в порядке sort_order.
	ListBadges(ctx context.Context) ([]Badge, error)
	UpsertBadges(ctx context.Context, badges []Badge) error
	ListUnlockedBadgeIDs(ctx context.Context, userID string) ([]string, error)
	// InsertUserBadge вставляет запись о бейдже. Повтор той же пары — не ошибка,
	// а inserted=false.
	InsertUserBadge(ctx context.Context, ub UserBadge) (inserted bool, err error)
	// ListUserBadges возвращает полученные бейджи, новые первыми.
	ListUserBadges(ctx context.Context, userID string) ([]UnlockedBadge, error)

	GetProfile(ctx context.Context, userID string) (*Profile, error)
	ListPosts(ctx context.Context, userID string) ([]Post, error)
	GetCommentStats(ctx context.Context, userID string) (*CommentStats, error)
	CountActions(ctx context.Context, userID string, action clout.ActionType) (int, error)
	// CountProfilesAbove — сколько профилей со счётом строго больше score.
	CountProfilesAbove(ctx context.Context, score int) (int, error)
	// CountProfilesJoinedBefore — сколько профилей создано раньше t.
	CountProfilesJoinedBefore(ctx context.Context, t time.Time) (int, error)
}

// Package badges — repository.go работает с таблицами badges и user_badges,
// а также читает profiles, posts, comments и clout_transactions для условий.
package badges

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"codeblooded.dev/clout/internal/common"
	"codeblooded.dev/clout/internal/features/clout"
)

// Repository — реализация Store поверх pgxpool.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository создаёт репозиторий бейджей.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

var _ Store = (*Repository)(nil)

const badgeColumns = `b.id, b.name, b.description, b.icon, b.tier, b.requirement, b.hidden, b.sort_order`

// ListBadges возвращает каталог в порядке sort_order.
func (r *Repository) ListBadges(ctx context.Context) ([]Badge, error) {
	rows, err := r.db.Query(ctx, `SELECT `+badgeColumns+` FROM badges b ORDER BY b.sort_order, b.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []Badge
	for rows.Next() {
		b, err := scanBadge(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, b)
	}
	return list, rows.Err()
}

// UpsertBadges записывает каталог одной транзакцией.
// Существующие бейджи обновляются, выданные user_badges не трогаются.
func (r *Repository) UpsertBadges(ctx context.Context, list []Badge) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for _, b := range list {
		batch.Queue(`
			INSERT INTO badges (id, name, description, icon, tier, requirement, hidden, sort_order)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			ON CONFLICT (id) DO UPDATE SET
				name = EXCLUDED.name, description = EXCLUDED.description, icon = EXCLUDED.icon,
				tier = EXCLUDED.tier, requirement = EXCLUDED.requirement,
				hidden = EXCLUDED.hidden, sort_order = EXCLUDED.sort_order
		`, b.ID, b.Name, b.Description, b.Icon, string(b.Tier), b.Requirement, b.Hidden, b.SortOrder)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("ошибка записи бейджей: %w", err)
	}
	return tx.Commit(ctx)
}

// ListUnlockedBadgeIDs возвращает id полученных бейджей.
func (r *Repository) ListUnlockedBadgeIDs(ctx context.Context, userID string) ([]string, error) {
	rows, err := r.db.Query(ctx, `SELECT badge_id FROM user_badges WHERE user_id = $1`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return pgx.CollectRows(rows, pgx.RowTo[string])
}

// InsertUserBadge записывает бейдж. Повтор (user_id, badge_id) игнорируется.
func (r *Repository) InsertUserBadge(ctx context.Context, ub UserBadge) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		INSERT INTO user_badges (user_id, badge_id, unlocked_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, badge_id) DO NOTHING
	`, ub.UserID, ub.BadgeID, ub.UnlockedAt)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// ListUserBadges возвращает полученные бейджи, новые первыми.
func (r *Repository) ListUserBadges(ctx context.Context, userID string) ([]UnlockedBadge, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+badgeColumns+`, ub.unlocked_at
		FROM user_badges ub
		JOIN badges b ON b.id = ub.badge_id
		WHERE ub.user_id = $1
		ORDER BY ub.unlocked_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []UnlockedBadge
	for rows.Next() {
		var ub UnlockedBadge
		var tier string
		if err := rows.Scan(
			&ub.ID, &ub.Name, &ub.Description, &ub.Icon, &tier,
			&ub.Requirement, &ub.Hidden, &ub.SortOrder, &ub.UnlockedAt,
		); err != nil {
			return nil, err
		}
		ub.Tier = Tier(tier)
		list = append(list, ub)
	}
	return list, rows.Err()
}

// GetProfile возвращает поля профиля, нужные условиям.
func (r *Repository) GetProfile(ctx context.Context, userID string) (*Profile, error) {
	var p Profile
	err := r.db.QueryRow(ctx, `
		SELECT id, username, COALESCE(bio, ''), COALESCE(location, ''), COALESCE(website, ''),
		       COALESCE(avatar_url, ''), COALESCE(tech_stack, '{}'), clout_score, streak,
		       follower_count, created_at
		FROM profiles WHERE id = $1
	`, userID).Scan(
		&p.ID, &p.Username, &p.Bio, &p.Location, &p.Website,
		&p.AvatarURL, &p.TechStack, &p.CloutScore, &p.Streak,
		&p.FollowerCount, &p.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения профиля: %w", err)
	}
	return &p, nil
}

// ListPosts возвращает посты пользователя.
func (r *Repository) ListPosts(ctx context.Context, userID string) ([]Post, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, user_id, type, github_url, clout, COALESCE(tags, '{}'), created_at
		FROM posts WHERE user_id = $1
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []Post
	for rows.Next() {
		var p Post
		if err := rows.Scan(&p.ID, &p.UserID, &p.Type, &p.GitHubURL, &p.Clout, &p.Tags, &p.CreatedAt); err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

// GetCommentStats считает комментарии пользователя и лайки на них.
func (r *Repository) GetCommentStats(ctx context.Context, userID string) (*CommentStats, error) {
	var s CommentStats
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*), COALESCE(SUM(like_count), 0) FROM comments WHERE user_id = $1
	`, userID).Scan(&s.Count, &s.Likes)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// CountActions считает транзакции клаута пользователя данного типа.
func (r *Repository) CountActions(ctx context.Context, userID string, action clout.ActionType) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM clout_transactions WHERE user_id = $1 AND action_type = $2
	`, userID, string(action)).Scan(&n)
	return n, err
}

// CountProfilesAbove считает профили со счётом строго выше score.
func (r *Repository) CountProfilesAbove(ctx context.Context, score int) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM profiles WHERE clout_score > $1`, score).Scan(&n)
	return n, err
}

// CountProfilesJoinedBefore считает профили, созданные раньше t.
func (r *Repository) CountProfilesJoinedBefore(ctx context.Context, t time.Time) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM profiles WHERE created_at < $1`, t).Scan(&n)
	return n, err
}

func scanBadge(row pgx.Row) (Badge, error) {
	var b Badge
	var tier string
	err := row.Scan(&b.ID, &b.Name, &b.Description, &b.Icon, &tier, &b.Requirement, &b.Hidden, &b.SortOrder)
	b.Tier = Tier(tier)
	return b, err
}

// Package clout — repository.go работает с таблицами profiles, clout_transactions
// и user_daily_activity в PostgreSQL.
// Начисление выполняется одной транзакцией БД с блокировкой строки профиля.
package clout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"codeblooded.dev/clout/internal/common"
)

// Repository — реализация Store поверх pgxpool.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository создаёт репозиторий клаута.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

var _ Store = (*Repository)(nil)

// CountActionsBetween считает транзакции одного типа в полуинтервале [from, to).
func (r *Repository) CountActionsBetween(ctx context.Context, userID string, action ActionType, from, to time.Time) (int, error) {
	query := `
		SELECT COUNT(*) FROM clout_transactions
		WHERE user_id = $1 AND action_type = $2 AND created_at >= $3 AND created_at < $4
	`
	var count int
	err := r.db.QueryRow(ctx, query, userID, string(action), from, to).Scan(&count)
	return count, err
}

// CountActionsSince считает все транзакции пользователя начиная с since.
func (r *Repository) CountActionsSince(ctx context.Context, userID string, since time.Time) (int, error) {
	query := `SELECT COUNT(*) FROM clout_transactions WHERE user_id = $1 AND created_at >= $2`
	var count int
	err := r.db.QueryRow(ctx, query, userID, since).Scan(&count)
	return count, err
}

// CountByTargetSince группирует действия пользователя по получателю.
func (r *Repository) CountByTargetSince(ctx context.Context, userID string, action ActionType, since time.Time) (map[string]int, error) {
	query := `
		SELECT target_user_id, COUNT(*)
		FROM clout_transactions
		WHERE user_id = $1 AND action_type = $2 AND created_at >= $3
		  AND target_user_id IS NOT NULL
		GROUP BY target_user_id
	`
	rows, err := r.db.Query(ctx, query, userID, string(action), since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[string]int)
	for rows.Next() {
		var target string
		var n int
		if err := rows.Scan(&target, &n); err != nil {
			return nil, err
		}
		result[target] = n
	}
	return result, rows.Err()
}

// SumCommentLikes — «helper score»: сумма лайков на комментариях пользователя.
func (r *Repository) SumCommentLikes(ctx context.Context, userID string) (int, error) {
	query := `SELECT COALESCE(SUM(like_count), 0) FROM comments WHERE user_id = $1`
	var sum int
	err := r.db.QueryRow(ctx, query, userID).Scan(&sum)
	return sum, err
}

// ListActivityDates возвращает последние даты активности по убыванию.
func (r *Repository) ListActivityDates(ctx context.Context, userID string, limit int) ([]time.Time, error) {
	query := `
		SELECT activity_date FROM user_daily_activity
		WHERE user_id = $1
		ORDER BY activity_date DESC
		LIMIT $2
	`
	rows, err := r.db.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var dates []time.Time
	for rows.Next() {
		var d time.Time
		if err := rows.Scan(&d); err != nil {
			return nil, err
		}
		dates = append(dates, d)
	}
	return dates, rows.Err()
}

// GetReputation возвращает репутацию пользователя.
func (r *Repository) GetReputation(ctx context.Context, userID string) (*Reputation, error) {
	query := `
		SELECT id, clout_score, clout_tier, streak, last_activity_date
		FROM profiles WHERE id = $1
	`
	rep, err := scanReputation(r.db.QueryRow(ctx, query, userID))
	if err != nil {
		return nil, err
	}
	return rep, nil
}

// ApplyAward записывает начисление атомарно.
//
// Шаги в одной транзакции БД:
//  1. Блокируем строку профиля (SELECT ... FOR UPDATE)
//  2. Добавляем запись в clout_transactions
//  3. Считаем новое состояние через apply и пишем его в профиль
//  4. Увеличиваем счётчик дневной активности (или создаём строку)
func (r *Repository) ApplyAward(ctx context.Context, t Transaction, apply func(Reputation) Reputation) (*Reputation, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	defer tx.Rollback(ctx)

	// Шаг 1
	current, err := scanReputation(tx.QueryRow(ctx, `
		SELECT id, clout_score, clout_tier, streak, last_activity_date
		FROM profiles WHERE id = $1 FOR UPDATE
	`, t.UserID))
	if err != nil {
		return nil, err
	}

	// Шаг 2
	_, err = tx.Exec(ctx, `
		INSERT INTO clout_transactions
			(id, user_id, action_type, clout_amount, target_user_id, target_post_id, target_comment_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, t.ID, t.UserID, string(t.ActionType), t.Amount, t.TargetUserID, t.TargetPostID, t.TargetCommentID, t.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("ошибка записи транзакции клаута: %w", err)
	}

	// Шаг 3
	next := apply(*current)
	_, err = tx.Exec(ctx, `
		UPDATE profiles
		SET clout_score = $2, clout_tier = $3, streak = $4, last_activity_date = $5
		WHERE id = $1
	`, t.UserID, next.Score, string(next.Tier), next.Streak, next.LastActivityDate)
	if err != nil {
		return nil, fmt.Errorf("ошибка обновления профиля: %w", err)
	}

	// Шаг 4
	_, err = tx.Exec(ctx, `
		INSERT INTO user_daily_activity (user_id, activity_date, actions_count)
		VALUES ($1, $2, 1)
		ON CONFLICT (user_id, activity_date)
		DO UPDATE SET actions_count = user_daily_activity.actions_count + 1
	`, t.UserID, common.StartOfDayUTC(t.CreatedAt))
	if err != nil {
		return nil, fmt.Errorf("ошибка записи дневной активности: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("ошибка фиксации начисления: %w", err)
	}
	return &next, nil
}

// ListTransactions возвращает последние транзакции пользователя, новые первыми.
func (r *Repository) ListTransactions(ctx context.Context, userID string, limit int) ([]Transaction, error) {
	query := `
		SELECT id, user_id, action_type, clout_amount, target_user_id, target_post_id, target_comment_id, created_at
		FROM clout_transactions
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	rows, err := r.db.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var txs []Transaction
	for rows.Next() {
		var t Transaction
		var action string
		if err := rows.Scan(
			&t.ID, &t.UserID, &action, &t.Amount,
			&t.TargetUserID, &t.TargetPostID, &t.TargetCommentID, &t.CreatedAt,
		); err != nil {
			return nil, err
		}
		t.ActionType = ActionType(action)
		txs = append(txs, t)
	}
	return txs, rows.Err()
}

// ListReputations возвращает репутацию всех пользователей (для затухания).
func (r *Repository) ListReputations(ctx context.Context) ([]Reputation, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, clout_score, clout_tier, streak, last_activity_date
		FROM profiles ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reps []Reputation
	for rows.Next() {
		rep, err := scanReputation(rows)
		if err != nil {
			return nil, err
		}
		reps = append(reps, *rep)
	}
	return reps, rows.Err()
}

// CompareAndSetScore обновляет счёт, только если он не изменился с момента чтения.
func (r *Repository) CompareAndSetScore(ctx context.Context, userID string, old, score int, tier Tier) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE profiles SET clout_score = $3, clout_tier = $4
		WHERE id = $1 AND clout_score = $2
	`, userID, old, score, string(tier))
	if err != nil {
		return false, fmt.Errorf("ошибка обновления счёта: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// ListLeaderboard возвращает профили с наибольшим счётом.
func (r *Repository) ListLeaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, username, clout_score, clout_tier
		FROM profiles
		ORDER BY clout_score DESC, created_at ASC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []LeaderboardEntry
	for rows.Next() {
		var e LeaderboardEntry
		var tier string
		if err := rows.Scan(&e.UserID, &e.Username, &e.Score, &tier); err != nil {
			return nil, err
		}
		e.Tier = Tier(tier)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// GetPlatformStats считает пользователей, посты и общий клаут.
func (r *Repository) GetPlatformStats(ctx context.Context) (*PlatformStats, error) {
	var st PlatformStats
	err := r.db.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM profiles),
			(SELECT COUNT(*) FROM posts),
			(SELECT COALESCE(SUM(clout_score), 0) FROM profiles)
	`).Scan(&st.Users, &st.Posts, &st.TotalClout)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения статистики платформы: %w", err)
	}
	return &st, nil
}

func scanReputation(row pgx.Row) (*Reputation, error) {
	var rep Reputation
	var tier string
	err := row.Scan(&rep.UserID, &rep.Score, &tier, &rep.Streak, &rep.LastActivityDate)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения профиля: %w", err)
	}
	rep.Tier = Tier(tier)
	return &rep, nil
}

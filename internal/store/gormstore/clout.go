// Package gormstore — clout.go реализует clout.Store.
package gormstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"codeblooded.dev/clout/internal/common"
	"codeblooded.dev/clout/internal/features/badges"
	"codeblooded.dev/clout/internal/features/clout"
)

// Store — хранилище репутации и бейджей в одной базе gorm.
type Store struct {
	db *gorm.DB
}

// New создаёт хранилище. Таблицы должны быть созданы через Migrate.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

var (
	_ clout.Store  = (*Store)(nil)
	_ badges.Store = (*Store)(nil)
)

// CountActionsBetween считает транзакции типа action в [from, to).
func (s *Store) CountActionsBetween(ctx context.Context, userID string, action clout.ActionType, from, to time.Time) (int, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&CloutTransaction{}).
		Where("user_id = ? AND action_type = ? AND created_at >= ? AND created_at < ?", userID, string(action), from.UTC(), to.UTC()).
		Count(&n).Error
	return int(n), err
}

// CountActionsSince считает любые транзакции начиная с since.
func (s *Store) CountActionsSince(ctx context.Context, userID string, since time.Time) (int, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&CloutTransaction{}).
		Where("user_id = ? AND created_at >= ?", userID, since.UTC()).
		Count(&n).Error
	return int(n), err
}

// CountByTargetSince группирует действия по target_user_id.
func (s *Store) CountByTargetSince(ctx context.Context, userID string, action clout.ActionType, since time.Time) (map[string]int, error) {
	var rows []struct {
		TargetUserID string
		N            int
	}
	err := s.db.WithContext(ctx).Model(&CloutTransaction{}).
		Select("target_user_id, COUNT(*) AS n").
		Where("user_id = ? AND action_type = ? AND created_at >= ? AND target_user_id IS NOT NULL", userID, string(action), since.UTC()).
		Group("target_user_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[string]int, len(rows))
	for _, r := range rows {
		out[r.TargetUserID] = r.N
	}
	return out, nil
}

// SumCommentLikes — сумма лайков на комментариях пользователя.
func (s *Store) SumCommentLikes(ctx context.Context, userID string) (int, error) {
	var sum int64
	err := s.db.WithContext(ctx).Model(&Comment{}).
		Select("COALESCE(SUM(like_count), 0)").
		Where("user_id = ?", userID).
		Scan(&sum).Error
	return int(sum), err
}

// ListActivityDates возвращает последние даты активности, новые первыми.
func (s *Store) ListActivityDates(ctx context.Context, userID string, limit int) ([]time.Time, error) {
	var raw []string
	err := s.db.WithContext(ctx).Model(&DailyActivity{}).
		Where("user_id = ?", userID).
		Order("activity_date DESC").
		Limit(limit).
		Pluck("activity_date", &raw).Error
	if err != nil {
		return nil, err
	}
	dates := make([]time.Time, 0, len(raw))
	for _, d := range raw {
		t, err := time.Parse(time.DateOnly, d)
		if err != nil {
			return nil, fmt.Errorf("битая дата активности %q: %w", d, err)
		}
		dates = append(dates, t)
	}
	return dates, nil
}

// GetReputation читает колонки репутации профиля.
func (s *Store) GetReputation(ctx context.Context, userID string) (*clout.Reputation, error) {
	return getReputation(s.db.WithContext(ctx), userID)
}

// ApplyAward записывает начисление одной транзакцией SQLite.
// Блокировка строки не нужна: SQLite пропускает одного писателя, а пул
// ограничен одним соединением.
func (s *Store) ApplyAward(ctx context.Context, t clout.Transaction, apply func(clout.Reputation) clout.Reputation) (*clout.Reputation, error) {
	var next clout.Reputation
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := getReputation(tx, t.UserID)
		if err != nil {
			return err
		}

		row := CloutTransaction{
			ID:              t.ID,
			UserID:          t.UserID,
			ActionType:      string(t.ActionType),
			CloutAmount:     t.Amount,
			TargetUserID:    t.TargetUserID,
			TargetPostID:    t.TargetPostID,
			TargetCommentID: t.TargetCommentID,
			CreatedAt:       t.CreatedAt.UTC(),
		}
		if err := tx.Create(&row).Error; err != nil {
			return fmt.Errorf("ошибка записи транзакции клаута: %w", err)
		}

		next = apply(*current)
		err = tx.Model(&Profile{}).Where("id = ?", t.UserID).Updates(map[string]any{
			"clout_score":        next.Score,
			"clout_tier":         string(next.Tier),
			"streak":             next.Streak,
			"last_activity_date": dateString(next.LastActivityDate),
		}).Error
		if err != nil {
			return fmt.Errorf("ошибка обновления профиля: %w", err)
		}

		activity := DailyActivity{UserID: t.UserID, ActivityDate: common.FormatDate(t.CreatedAt), ActionsCount: 1}
		err = tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "activity_date"}},
			DoUpdates: clause.Assignments(map[string]any{"actions_count": gorm.Expr("actions_count + 1")}),
		}).Create(&activity).Error
		if err != nil {
			return fmt.Errorf("ошибка записи дневной активности: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &next, nil
}

// ListTransactions возвращает последние транзакции, новые первыми.
func (s *Store) ListTransactions(ctx context.Context, userID string, limit int) ([]clout.Transaction, error) {
	var rows []CloutTransaction
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]clout.Transaction, 0, len(rows))
	for _, r := range rows {
		out = append(out, clout.Transaction{
			ID:              r.ID,
			UserID:          r.UserID,
			ActionType:      clout.ActionType(r.ActionType),
			Amount:          r.CloutAmount,
			TargetUserID:    r.TargetUserID,
			TargetPostID:    r.TargetPostID,
			TargetCommentID: r.TargetCommentID,
			CreatedAt:       r.CreatedAt,
		})
	}
	return out, nil
}

// ListReputations возвращает репутацию всех профилей.
func (s *Store) ListReputations(ctx context.Context) ([]clout.Reputation, error) {
	var rows []Profile
	if err := s.db.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]clout.Reputation, 0, len(rows))
	for i := range rows {
		rep, err := toReputation(&rows[i])
		if err != nil {
			return nil, err
		}
		out = append(out, *rep)
	}
	return out, nil
}

// CompareAndSetScore обновляет счёт, только если он всё ещё равен old.
func (s *Store) CompareAndSetScore(ctx context.Context, userID string, old, score int, tier clout.Tier) (bool, error) {
	res := s.db.WithContext(ctx).Model(&Profile{}).
		Where("id = ? AND clout_score = ?", userID, old).
		Updates(map[string]any{"clout_score": score, "clout_tier": string(tier)})
	if res.Error != nil {
		return false, fmt.Errorf("ошибка обновления счёта: %w", res.Error)
	}
	return res.RowsAffected == 1, nil
}

// ListLeaderboard возвращает профили с наибольшим счётом.
func (s *Store) ListLeaderboard(ctx context.Context, limit int) ([]clout.LeaderboardEntry, error) {
	var rows []Profile
	err := s.db.WithContext(ctx).
		Order("clout_score DESC, created_at ASC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]clout.LeaderboardEntry, 0, len(rows))
	for _, p := range rows {
		out = append(out, clout.LeaderboardEntry{
			UserID:   p.ID,
			Username: p.Username,
			Score:    p.CloutScore,
			Tier:     clout.Tier(p.CloutTier),
		})
	}
	return out, nil
}

// GetPlatformStats считает пользователей, посты и общий клаут.
func (s *Store) GetPlatformStats(ctx context.Context) (*clout.PlatformStats, error) {
	db := s.db.WithContext(ctx)
	var users, posts, total int64
	if err := db.Model(&Profile{}).Count(&users).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&Post{}).Count(&posts).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&Profile{}).Select("COALESCE(SUM(clout_score), 0)").Scan(&total).Error; err != nil {
		return nil, err
	}
	return &clout.PlatformStats{Users: int(users), Posts: int(posts), TotalClout: int(total)}, nil
}

func getReputation(db *gorm.DB, userID string) (*clout.Reputation, error) {
	var p Profile
	err := db.Where("id = ?", userID).Take(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, common.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения профиля: %w", err)
	}
	return toReputation(&p)
}

func toReputation(p *Profile) (*clout.Reputation, error) {
	rep := &clout.Reputation{
		UserID: p.ID,
		Score:  p.CloutScore,
		Tier:   clout.Tier(p.CloutTier),
		Streak: p.Streak,
	}
	if p.LastActivityDate != nil && *p.LastActivityDate != "" {
		d, err := time.Parse(time.DateOnly, *p.LastActivityDate)
		if err != nil {
			return nil, fmt.Errorf("битая дата активности профиля %s: %w", p.ID, err)
		}
		rep.LastActivityDate = &d
	}
	return rep, nil
}

func dateString(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := common.FormatDate(*t)
	return &s
}

// Package gormstore — badges.go реализует badges.Store.
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

// ListBadges возвращает каталог в порядке sort_order.
func (s *Store) ListBadges(ctx context.Context) ([]badges.Badge, error) {
	var rows []BadgeRow
	if err := s.db.WithContext(ctx).Order("sort_order, id").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]badges.Badge, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toBadge())
	}
	return out, nil
}

// UpsertBadges записывает каталог. Выданные бейджи не трогаются.
func (s *Store) UpsertBadges(ctx context.Context, list []badges.Badge) error {
	if len(list) == 0 {
		return nil
	}
	rows := make([]BadgeRow, 0, len(list))
	for _, b := range list {
		rows = append(rows, BadgeRow{
			ID:          b.ID,
			Name:        b.Name,
			Description: b.Description,
			Icon:        b.Icon,
			Tier:        string(b.Tier),
			Requirement: b.Requirement,
			Hidden:      b.Hidden,
			SortOrder:   b.SortOrder,
		})
	}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, UpdateAll: true}).
		Create(&rows).Error
	if err != nil {
		return fmt.Errorf("ошибка записи бейджей: %w", err)
	}
	return nil
}

// ListUnlockedBadgeIDs возвращает id полученных бейджей.
func (s *Store) ListUnlockedBadgeIDs(ctx context.Context, userID string) ([]string, error) {
	var ids []string
	err := s.db.WithContext(ctx).Model(&UserBadgeRow{}).
		Where("user_id = ?", userID).
		Pluck("badge_id", &ids).Error
	return ids, err
}

// InsertUserBadge записывает бейдж; повтор пары — inserted=false.
func (s *Store) InsertUserBadge(ctx context.Context, ub badges.UserBadge) (bool, error) {
	row := UserBadgeRow{UserID: ub.UserID, BadgeID: ub.BadgeID, UnlockedAt: ub.UnlockedAt.UTC()}
	res := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&row)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

type unlockedRow struct {
	BadgeRow
	UnlockedAt time.Time
}

// ListUserBadges возвращает полученные бейджи, новые первыми.
func (s *Store) ListUserBadges(ctx context.Context, userID string) ([]badges.UnlockedBadge, error) {
	var rows []unlockedRow
	err := s.db.WithContext(ctx).Raw(`
		SELECT b.id, b.name, b.description, b.icon, b.tier, b.requirement, b.hidden, b.sort_order, ub.unlocked_at
		FROM user_badges ub
		JOIN badges b ON b.id = ub.badge_id
		WHERE ub.user_id = ?
		ORDER BY ub.unlocked_at DESC
	`, userID).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]badges.UnlockedBadge, 0, len(rows))
	for _, r := range rows {
		out = append(out, badges.UnlockedBadge{Badge: r.toBadge(), UnlockedAt: r.UnlockedAt})
	}
	return out, nil
}

// GetProfile возвращает поля профиля для условий бейджей.
func (s *Store) GetProfile(ctx context.Context, userID string) (*badges.Profile, error) {
	var p Profile
	err := s.db.WithContext(ctx).Where("id = ?", userID).Take(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, common.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения профиля: %w", err)
	}
	return &badges.Profile{
		ID:            p.ID,
		Username:      p.Username,
		Bio:           p.Bio,
		Location:      p.Location,
		Website:       p.Website,
		AvatarURL:     p.AvatarURL,
		TechStack:     []string(p.TechStack),
		CloutScore:    p.CloutScore,
		Streak:        p.Streak,
		FollowerCount: p.FollowerCount,
		CreatedAt:     p.CreatedAt,
	}, nil
}

// ListPosts возвращает посты пользователя.
func (s *Store) ListPosts(ctx context.Context, userID string) ([]badges.Post, error) {
	var rows []Post
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]badges.Post, 0, len(rows))
	for _, p := range rows {
		out = append(out, badges.Post{
			ID:        p.ID,
			UserID:    p.UserID,
			Type:      p.Type,
			GitHubURL: p.GitHubURL,
			Clout:     p.Clout,
			Tags:      []string(p.Tags),
			CreatedAt: p.CreatedAt,
		})
	}
	return out, nil
}

// GetCommentStats считает комментарии пользователя и лайки на них.
func (s *Store) GetCommentStats(ctx context.Context, userID string) (*badges.CommentStats, error) {
	var st struct {
		Count int
		Likes int
	}
	err := s.db.WithContext(ctx).Model(&Comment{}).
		Select("COUNT(*) AS count, COALESCE(SUM(like_count), 0) AS likes").
		Where("user_id = ?", userID).
		Scan(&st).Error
	if err != nil {
		return nil, err
	}
	return &badges.CommentStats{Count: st.Count, Likes: st.Likes}, nil
}

// CountActions считает транзакции клаута данного типа.
func (s *Store) CountActions(ctx context.Context, userID string, action clout.ActionType) (int, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&CloutTransaction{}).
		Where("user_id = ? AND action_type = ?", userID, string(action)).
		Count(&n).Error
	return int(n), err
}

// CountProfilesAbove считает профили со счётом строго выше score.
func (s *Store) CountProfilesAbove(ctx context.Context, score int) (int, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&Profile{}).Where("clout_score > ?", score).Count(&n).Error
	return int(n), err
}

// CountProfilesJoinedBefore считает профили, созданные раньше t.
func (s *Store) CountProfilesJoinedBefore(ctx context.Context, t time.Time) (int, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&Profile{}).Where("created_at < ?", t.UTC()).Count(&n).Error
	return int(n), err
}

func (r BadgeRow) toBadge() badges.Badge {
	return badges.Badge{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		Icon:        r.Icon,
		Tier:        badges.Tier(r.Tier),
		Requirement: r.Requirement,
		Hidden:      r.Hidden,
		SortOrder:   r.SortOrder,
	}
}

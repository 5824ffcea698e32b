// Package clout реализует движок репутации («клаут»).
// models.go описывает типы действий, транзакции, репутацию и дневную активность.
package clout

import "time"

// ActionType — категория пользовательского действия.
// Одни типы приносят клаут, другие только запускают проверку бейджей.
type ActionType string

// Действия «получателя» — ценятся выше.
const (
	ActionPostStarReceived    ActionType = "post_star_received"
	ActionCommentLikeReceived ActionType = "comment_like_received"
	ActionPostFeatured        ActionType = "post_featured"
	ActionPostTrending        ActionType = "post_trending"
)

// Действия «дающего» — ценятся ниже.
const (
	ActionPostRated     ActionType = "post_rated"
	ActionCommentLiked  ActionType = "comment_liked"
	ActionCommentPosted ActionType = "comment_posted"
	ActionPostCreated   ActionType = "post_created"
)

// Действия без веса: нужны только для проверки бейджей.
const (
	ActionProfileUpdated    ActionType = "profile_updated"
	ActionAvatarUploaded    ActionType = "avatar_uploaded"
	ActionPostUpdated       ActionType = "post_updated"
	ActionFollowReceived    ActionType = "follow_received"
	ActionUserCreated       ActionType = "user_created"
	ActionPostRatedReceived ActionType = "post_rated_received"
	ActionCloutEarned       ActionType = "clout_earned"
	ActionDailyActivity     ActionType = "daily_activity"
)

var knownActions = map[ActionType]struct{}{
	ActionPostStarReceived: {}, ActionCommentLikeReceived: {}, ActionPostFeatured: {}, ActionPostTrending: {},
	ActionPostRated: {}, ActionCommentLiked: {}, ActionCommentPosted: {}, ActionPostCreated: {},
	ActionProfileUpdated: {}, ActionAvatarUploaded: {}, ActionPostUpdated: {}, ActionFollowReceived: {},
	ActionUserCreated: {}, ActionPostRatedReceived: {}, ActionCloutEarned: {}, ActionDailyActivity: {},
}

// ParseActionType проверяет, что строка — известный тип действия.
func ParseActionType(s string) (ActionType, bool) {
	a := ActionType(s)
	_, ok := knownActions[a]
	return a, ok
}

// Tier — именованный диапазон клаута.
type Tier string

const (
	TierNovice      Tier = "novice"
	TierContributor Tier = "contributor"
	TierInfluencer  Tier = "influencer"
	TierLegend      Tier = "legend"
)

// Transaction — неизменяемая запись об одном начислении.
// Только добавляется, никогда не обновляется и не удаляется.
type Transaction struct {
	ID              string     `db:"id" json:"id"`
	UserID          string     `db:"user_id" json:"user_id"`
	ActionType      ActionType `db:"action_type" json:"action_type"`
	Amount          int        `db:"clout_amount" json:"amount"` // Может быть 0
	TargetUserID    *string    `db:"target_user_id" json:"target_user_id,omitempty"`
	TargetPostID    *string    `db:"target_post_id" json:"target_post_id,omitempty"`
	TargetCommentID *string    `db:"target_comment_id" json:"target_comment_id,omitempty"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
}

// Reputation — репутация пользователя (колонки clout_* таблицы profiles).
type Reputation struct {
	UserID           string     `db:"id" json:"user_id"`
	Score            int        `db:"clout_score" json:"score"`
	Tier             Tier       `db:"clout_tier" json:"tier"`
	LastActivityDate *time.Time `db:"last_activity_date" json:"last_activity_date,omitempty"` // Дата (UTC), без времени
	Streak           int        `db:"streak" json:"streak"`                                   // Серия дней, хранимая в профиле
}

// DailyActivity — одна запись на пару (пользователь, календарный день).
type DailyActivity struct {
	UserID       string    `db:"user_id"`
	ActivityDate time.Time `db:"activity_date"`
	ActionsCount int       `db:"actions_count"`
}

// Target — необязательные ссылки на объект действия.
type Target struct {
	UserID    string
	PostID    string
	CommentID string
}

// Stats — сводка по клауту пользователя для профиля.
type Stats struct {
	Score              int           `json:"score"`
	Tier               Tier          `json:"tier"`
	LastActivity       *time.Time    `json:"last_activity,omitempty"`
	RecentTransactions []Transaction `json:"recent_transactions"`
	Streak             int           `json:"streak"`
}

// LeaderboardEntry — строка таблицы лидеров.
type LeaderboardEntry struct {
	Rank     int    `json:"rank"`
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Score    int    `json:"score"`
	Tier     Tier   `json:"tier"`
}

// PlatformStats — общие цифры платформы для лендинга.
type PlatformStats struct {
	Users      int `json:"users"`
	Posts      int `json:"posts"`
	TotalClout int `json:"total_clout"`
}

// DecayReport — итог еженедельного затухания.
type DecayReport struct {
	Processed int `json:"processed"`
	Decayed   int `json:"decayed"`
	Failed    int `json:"failed"`
}

// Package activity прогоняет одно действие пользователя через оба движка:
// сначала начисляет клаут, потом проверяет бейджи.
package activity

import (
	"codeblooded.dev/clout/internal/features/badges"
	"codeblooded.dev/clout/internal/features/clout"
)

// Action — действие пользователя, как его присылает клиент.
type Action struct {
	UserID          string            `json:"user_id"`
	Type            string            `json:"action_type"`
	TargetUserID    string            `json:"target_user_id,omitempty"`
	TargetPostID    string            `json:"target_post_id,omitempty"`
	TargetCommentID string            `json:"target_comment_id,omitempty"`
	Metadata        map[string]string `json:"metadata,omitempty"`
}

func (a Action) target() clout.Target {
	return clout.Target{UserID: a.TargetUserID, PostID: a.TargetPostID, CommentID: a.TargetCommentID}
}

// Result — итог обработки действия.
type Result struct {
	Clout  int            `json:"clout"`
	Badges []badges.Badge `json:"badges"`
}

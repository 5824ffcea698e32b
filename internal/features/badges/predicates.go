// Package badges — predicates.go содержит условия бейджей.
// Каждое условие — простая проверка порога или существования, без побочных эффектов.
package badges

import (
	"context"
	"strings"
	"time"

	"codeblooded.dev/clout/internal/features/clout"
)

// MetaOccurredAt — ключ метаданных с моментом действия (RFC3339, со смещением клиента).
const MetaOccurredAt = "occurred_at"

// Семейства тегов для бейджей специализации.
var (
	frontendTags = []string{"frontend", "react", "vue", "angular", "javascript"}
	backendTags  = []string{"backend", "node", "python", "java", "php"}
	aiTags       = []string{"ai", "machine-learning", "neural-network", "tensorflow", "pytorch"}
	mobileTags   = []string{"mobile", "react-native", "flutter", "ios", "android"}
)

// evaluation — данные одной проверки. Профиль и посты читаются не больше одного раза,
// сколько бы условий их ни спрашивало.
type evaluation struct {
	store    Store
	userID   string
	metadata map[string]string
	now      time.Time
	loc      *time.Location

	profile     *Profile
	posts       []Post
	postsLoaded bool
}

func (e *evaluation) getProfile(ctx context.Context) (*Profile, error) {
	if e.profile != nil {
		return e.profile, nil
	}
	p, err := e.store.GetProfile(ctx, e.userID)
	if err != nil {
		return nil, err
	}
	e.profile = p
	return p, nil
}

func (e *evaluation) getPosts(ctx context.Context) ([]Post, error) {
	if e.postsLoaded {
		return e.posts, nil
	}
	posts, err := e.store.ListPosts(ctx, e.userID)
	if err != nil {
		return nil, err
	}
	e.posts, e.postsLoaded = posts, true
	return posts, nil
}

// localTime — момент действия: из метаданных, если клиент его прислал,
// иначе текущее время в часовом поясе сервиса.
func (e *evaluation) localTime() time.Time {
	if raw := e.metadata[MetaOccurredAt]; raw != "" {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			return t
		}
	}
	return e.now.In(e.loc)
}

type predicate func(ctx context.Context, e *evaluation) (bool, error)

var predicates = map[Requirement]predicate{
	ReqCompleteProfile: profileCheck(isProfileComplete),
	ReqUploadAvatar:    profileCheck(func(p *Profile) bool { return p.AvatarURL != "" }),

	ReqFirstProject:       postCount(1, func(p Post) bool { return p.Type == PostProject }),
	ReqProject100Stars:    postCount(1, func(p Post) bool { return p.Clout >= 100 }),
	ReqFiveGitHubProjects: postCount(5, isGitHubProject),
	ReqTenTechnologies:    profileCheck(func(p *Profile) bool { return len(p.TechStack) >= 10 }),

	ReqFiftyCommentLikes: commentCheck(func(s *CommentStats) bool { return s.Likes >= 50 }),
	ReqHundredRatings:    actionCount(clout.ActionPostRated, 100),
	ReqTenIdeas:          postCount(10, func(p Post) bool { return p.Type == PostIdea }),
	ReqTwentyFiveThreads: commentCheck(func(s *CommentStats) bool { return s.Count >= 25 }),

	ReqThousandClout:     profileCheck(func(p *Profile) bool { return p.CloutScore >= 1000 }),
	ReqFiveThousandClout: profileCheck(func(p *Profile) bool { return p.CloutScore >= 5000 }),
	ReqTenThousandClout:  profileCheck(func(p *Profile) bool { return p.CloutScore >= 10000 }),
	ReqTopTenRank:        topTenRank,

	ReqSevenDayStreak:  profileCheck(func(p *Profile) bool { return p.Streak >= 7 }),
	ReqThirtyDayStreak: profileCheck(func(p *Profile) bool { return p.Streak >= 30 }),
	ReqYearStreak:      profileCheck(func(p *Profile) bool { return p.Streak >= 365 }),

	ReqFiveFrontend:    postCount(5, hasAnyTag(frontendTags)),
	ReqFiveBackend:     postCount(5, hasAnyTag(backendTags)),
	ReqThreeAIProjects: postCount(3, hasAnyTag(aiTags)),
	ReqThreeMobile:     postCount(3, hasAnyTag(mobileTags)),

	ReqTenFollowers:        profileCheck(func(p *Profile) bool { return p.FollowerCount >= 10 }),
	ReqFiftyFollowers:      profileCheck(func(p *Profile) bool { return p.FollowerCount >= 50 }),
	ReqTwoHundredFollowers: profileCheck(func(p *Profile) bool { return p.FollowerCount >= 200 }),

	ReqNightOwl:       hourBetween(0, 5),
	ReqEarlyBird:      hourBetween(5, 8),
	ReqWeekendWarrior: weekendWarrior,

	ReqFirstHundred:     firstHundred,
	ReqTenPerfectScores: postCount(10, func(p Post) bool { return p.Clout == 5 }),
	ReqEightCategories:  eightCategories,
}

func isProfileComplete(p *Profile) bool {
	return p.Bio != "" && p.Location != "" && p.Website != ""
}

func isGitHubProject(p Post) bool {
	return p.Type == PostProject && p.GitHubURL != nil && *p.GitHubURL != ""
}

// Evaluate проверяет условие по ключу. Неизвестный ключ — false.
func (e *evaluation) Evaluate(ctx context.Context, key string) (bool, error) {
	r, ok := ParseRequirement(key)
	if !ok {
		return false, nil
	}
	p, ok := predicates[r]
	if !ok {
		return false, nil
	}
	return p(ctx, e)
}

func profileCheck(cond func(*Profile) bool) predicate {
	return func(ctx context.Context, e *evaluation) (bool, error) {
		p, err := e.getProfile(ctx)
		if err != nil {
			return false, err
		}
		return cond(p), nil
	}
}

func postCount(atLeast int, match func(Post) bool) predicate {
	return func(ctx context.Context, e *evaluation) (bool, error) {
		posts, err := e.getPosts(ctx)
		if err != nil {
			return false, err
		}
		n := 0
		for _, p := range posts {
			if match(p) {
				n++
			}
		}
		return n >= atLeast, nil
	}
}

func commentCheck(cond func(*CommentStats) bool) predicate {
	return func(ctx context.Context, e *evaluation) (bool, error) {
		s, err := e.store.GetCommentStats(ctx, e.userID)
		if err != nil {
			return false, err
		}
		return cond(s), nil
	}
}

func actionCount(action clout.ActionType, atLeast int) predicate {
	return func(ctx context.Context, e *evaluation) (bool, error) {
		n, err := e.store.CountActions(ctx, e.userID, action)
		if err != nil {
			return false, err
		}
		return n >= atLeast, nil
	}
}

func hourBetween(from, to int) predicate {
	return func(_ context.Context, e *evaluation) (bool, error) {
		h := e.localTime().Hour()
		return h >= from && h < to, nil
	}
}

// hasAnyTag — пост помечен хотя бы одним тегом семейства (без учёта регистра).
func hasAnyTag(family []string) func(Post) bool {
	return func(p Post) bool {
		for _, tag := range p.Tags {
			for _, f := range family {
				if strings.EqualFold(strings.TrimSpace(tag), f) {
					return true
				}
			}
		}
		return false
	}
}

func weekendWarrior(ctx context.Context, e *evaluation) (bool, error) {
	return postCount(5, func(p Post) bool {
		switch p.CreatedAt.In(e.loc).Weekday() {
		case time.Saturday, time.Sunday:
			return true
		}
		return false
	})(ctx, e)
}

func eightCategories(ctx context.Context, e *evaluation) (bool, error) {
	posts, err := e.getPosts(ctx)
	if err != nil {
		return false, err
	}
	seen := make(map[string]struct{})
	for _, p := range posts {
		for _, tag := range p.Tags {
			tag = strings.ToLower(strings.TrimSpace(tag))
			if tag != "" {
				seen[tag] = struct{}{}
			}
		}
	}
	return len(seen) >= 8, nil
}

// topTenRank — место = 1 + число профилей с большим счётом. Нулевой счёт не считается.
func topTenRank(ctx context.Context, e *evaluation) (bool, error) {
	p, err := e.getProfile(ctx)
	if err != nil {
		return false, err
	}
	if p.CloutScore <= 0 {
		return false, nil
	}
	above, err := e.store.CountProfilesAbove(ctx, p.CloutScore)
	if err != nil {
		return false, err
	}
	return above+1 <= 10, nil
}

// firstHundred — профиль среди первых ста зарегистрированных.
func firstHundred(ctx context.Context, e *evaluation) (bool, error) {
	p, err := e.getProfile(ctx)
	if err != nil {
		return false, err
	}
	before, err := e.store.CountProfilesJoinedBefore(ctx, p.CreatedAt)
	if err != nil {
		return false, err
	}
	return before < 100, nil
}

// Package badges — requirements.go перечисляет виды условий и действия,
// после которых каждое условие имеет смысл перепроверять.
package badges

import "codeblooded.dev/clout/internal/features/clout"

// Requirement — вид условия бейджа. Закрытый набор.
type Requirement string

// Профиль
const (
	ReqCompleteProfile Requirement = "complete_profile"
	ReqUploadAvatar    Requirement = "upload_avatar"
)

// Проекты
const (
	ReqFirstProject       Requirement = "first_project"
	ReqProject100Stars    Requirement = "project_100_stars"
	ReqFiveGitHubProjects Requirement = "five_github_projects"
	ReqTenTechnologies    Requirement = "ten_technologies"
)

// Сообщество
const (
	ReqFiftyCommentLikes   Requirement = "fifty_comment_likes"
	ReqHundredRatings      Requirement = "hundred_ratings"
	ReqTenIdeas            Requirement = "ten_ideas"
	ReqTwentyFiveThreads   Requirement = "twenty_five_threads"
	ReqThousandClout       Requirement = "thousand_clout"
	ReqFiveThousandClout   Requirement = "five_thousand_clout"
	ReqTenThousandClout    Requirement = "ten_thousand_clout"
	ReqTopTenRank          Requirement = "top_ten_rank"
	ReqTenFollowers        Requirement = "ten_followers"
	ReqFiftyFollowers      Requirement = "fifty_followers"
	ReqTwoHundredFollowers Requirement = "two_hundred_followers"
)

// Постоянство
const (
	ReqSevenDayStreak  Requirement = "seven_day_streak"
	ReqThirtyDayStreak Requirement = "thirty_day_streak"
	ReqYearStreak      Requirement = "year_streak"
)

// Специализация
const (
	ReqFiveFrontend    Requirement = "five_frontend"
	ReqFiveBackend     Requirement = "five_backend"
	ReqThreeAIProjects Requirement = "three_ai_projects"
	ReqThreeMobile     Requirement = "three_mobile"
)

// Забавные и секретные
const (
	ReqNightOwl         Requirement = "night_owl"
	ReqEarlyBird        Requirement = "early_bird"
	ReqWeekendWarrior   Requirement = "weekend_warrior"
	ReqFirstHundred     Requirement = "first_hundred"
	ReqTenPerfectScores Requirement = "ten_perfect_scores"
	ReqEightCategories  Requirement = "eight_categories"
)

// Альтернативные написания ключей, которые встречаются в каталогах.
var aliases = map[string]Requirement{
	"365_day_streak": ReqYearStreak,
	"5000_clout":     ReqFiveThousandClout,
	"10000_clout":    ReqTenThousandClout,
	"1000_clout":     ReqThousandClout,
	"200_followers":  ReqTwoHundredFollowers,
}

// triggers — после каких действий условие может стать истинным.
// Это фильтр, чтобы не гонять лишние запросы, а не проверка корректности.
var triggers = map[Requirement][]clout.ActionType{
	ReqCompleteProfile: {clout.ActionProfileUpdated},
	ReqUploadAvatar:    {clout.ActionAvatarUploaded},

	ReqFirstProject:       {clout.ActionPostCreated},
	ReqProject100Stars:    {clout.ActionPostStarReceived, clout.ActionPostUpdated},
	ReqFiveGitHubProjects: {clout.ActionPostCreated},
	ReqTenTechnologies:    {clout.ActionPostCreated, clout.ActionProfileUpdated},

	ReqFiftyCommentLikes: {clout.ActionCommentLikeReceived},
	ReqHundredRatings:    {clout.ActionPostRated},
	ReqTenIdeas:          {clout.ActionPostCreated},
	ReqTwentyFiveThreads: {clout.ActionCommentPosted},

	ReqThousandClout:     {clout.ActionCloutEarned},
	ReqFiveThousandClout: {clout.ActionCloutEarned},
	ReqTenThousandClout:  {clout.ActionCloutEarned},
	ReqTopTenRank:        {clout.ActionCloutEarned, clout.ActionProfileUpdated},

	ReqSevenDayStreak:  {clout.ActionDailyActivity},
	ReqThirtyDayStreak: {clout.ActionDailyActivity},
	ReqYearStreak:      {clout.ActionDailyActivity},

	ReqFiveFrontend:    {clout.ActionPostCreated},
	ReqFiveBackend:     {clout.ActionPostCreated},
	ReqThreeAIProjects: {clout.ActionPostCreated},
	ReqThreeMobile:     {clout.ActionPostCreated},

	ReqTenFollowers:        {clout.ActionFollowReceived},
	ReqFiftyFollowers:      {clout.ActionFollowReceived},
	ReqTwoHundredFollowers: {clout.ActionFollowReceived},

	ReqNightOwl:       {clout.ActionPostCreated, clout.ActionCommentPosted},
	ReqEarlyBird:      {clout.ActionPostCreated, clout.ActionCommentPosted},
	ReqWeekendWarrior: {clout.ActionPostCreated},

	ReqFirstHundred:     {clout.ActionUserCreated},
	ReqTenPerfectScores: {clout.ActionPostRatedReceived},
	ReqEightCategories:  {clout.ActionPostCreated},
}

// ParseRequirement приводит ключ из каталога к виду условия.
// Неизвестный ключ — false: такой бейдж никогда не проверяется.
func ParseRequirement(key string) (Requirement, bool) {
	if r, ok := aliases[key]; ok {
		return r, true
	}
	r := Requirement(key)
	if _, ok := triggers[r]; !ok {
		return "", false
	}
	return r, true
}

// TriggeredBy сообщает, стоит ли проверять условие после действия.
func TriggeredBy(key string, action clout.ActionType) bool {
	r, ok := ParseRequirement(key)
	if !ok {
		return false
	}
	for _, a := range triggers[r] {
		if a == action {
			return true
		}
	}
	return false
}

package activity

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeblooded.dev/clout/internal/common"
	"codeblooded.dev/clout/internal/features/badges"
	"codeblooded.dev/clout/internal/features/clout"
)

type stubAwarder struct {
	amount int
	err    error
	calls  []clout.ActionType
	target clout.Target
}

func (s *stubAwarder) IsScored(a clout.ActionType) bool {
	return clout.DefaultRules().IsScored(a)
}

func (s *stubAwarder) AwardClout(_ context.Context, _ string, a clout.ActionType, t clout.Target) (int, error) {
	s.calls = append(s.calls, a)
	s.target = t
	return s.amount, s.err
}

type stubChecker struct {
	byAction map[clout.ActionType][]badges.Badge
	errOn    clout.ActionType
	checks   []clout.ActionType
	metadata map[string]string
}

func (s *stubChecker) CheckAndAwardBadges(_ context.Context, _ string, a clout.ActionType, meta map[string]string) ([]badges.Badge, error) {
	s.checks = append(s.checks, a)
	s.metadata = meta
	if a == s.errOn {
		return nil, errors.New("insert failed")
	}
	return s.byAction[a], nil
}

func TestRecordScoredAction(t *testing.T) {
	awarder := &stubAwarder{amount: 15}
	checker := &stubChecker{byAction: map[clout.ActionType][]badges.Badge{
		clout.ActionPostCreated: {{ID: "first-project"}},
		clout.ActionCloutEarned: {{ID: "thousand"}},
	}}
	svc := NewService(awarder, checker)

	res, err := svc.Record(context.Background(), Action{
		UserID:       "u1",
		Type:         "post_created",
		TargetPostID: "p1",
		Metadata:     map[string]string{badges.MetaOccurredAt: "2026-10-15T03:00:00+03:00"},
	})
	require.NoError(t, err)
	assert.Equal(t, 15, res.Clout)
	require.Len(t, res.Badges, 2)
	assert.Equal(t, "first-project", res.Badges[0].ID)
	assert.Equal(t, "thousand", res.Badges[1].ID)

	assert.Equal(t, []clout.ActionType{clout.ActionPostCreated}, awarder.calls)
	assert.Equal(t, "p1", awarder.target.PostID)
	assert.Equal(t, []clout.ActionType{clout.ActionPostCreated, clout.ActionCloutEarned, clout.ActionDailyActivity}, checker.checks)
	assert.Equal(t, "2026-10-15T03:00:00+03:00", checker.metadata[badges.MetaOccurredAt])
}

func TestRecordUnscoredActionSkipsClout(t *testing.T) {
	awarder := &stubAwarder{amount: 15}
	checker := &stubChecker{}
	svc := NewService(awarder, checker)

	res, err := svc.Record(context.Background(), Action{UserID: "u1", Type: "follow_received"})
	require.NoError(t, err)
	assert.Zero(t, res.Clout)
	assert.NotNil(t, res.Badges)
	assert.Empty(t, awarder.calls)
	assert.Equal(t, []clout.ActionType{clout.ActionFollowReceived}, checker.checks)
}

func TestRecordRejectedAwardSkipsDerivedChecks(t *testing.T) {
	checker := &stubChecker{}
	svc := NewService(&stubAwarder{amount: 0}, checker)

	res, err := svc.Record(context.Background(), Action{UserID: "u1", Type: "post_rated", TargetUserID: "u2"})
	require.NoError(t, err)
	assert.Zero(t, res.Clout)
	assert.Equal(t, []clout.ActionType{clout.ActionPostRated}, checker.checks)
}

func TestRecordAwardFailureCountsAsZero(t *testing.T) {
	checker := &stubChecker{}
	svc := NewService(&stubAwarder{amount: 15, err: errors.New("db down")}, checker)

	res, err := svc.Record(context.Background(), Action{UserID: "u1", Type: "post_created"})
	require.NoError(t, err)
	assert.Zero(t, res.Clout)
	assert.Equal(t, []clout.ActionType{clout.ActionPostCreated}, checker.checks)
}

func TestRecordBadgeFailureKeepsOtherChecks(t *testing.T) {
	checker := &stubChecker{
		errOn:    clout.ActionCloutEarned,
		byAction: map[clout.ActionType][]badges.Badge{clout.ActionDailyActivity: {{ID: "streak"}}},
	}
	svc := NewService(&stubAwarder{amount: 3}, checker)

	res, err := svc.Record(context.Background(), Action{UserID: "u1", Type: "comment_posted"})
	require.NoError(t, err)
	require.Len(t, res.Badges, 1)
	assert.Equal(t, "streak", res.Badges[0].ID)
}

func TestRecordWithoutBadges(t *testing.T) {
	svc := NewService(&stubAwarder{amount: 15}, nil)

	res, err := svc.Record(context.Background(), Action{UserID: "u1", Type: "post_created"})
	require.NoError(t, err)
	assert.Equal(t, 15, res.Clout)
	assert.Empty(t, res.Badges)
}

func TestRecordValidation(t *testing.T) {
	svc := NewService(&stubAwarder{}, &stubChecker{})
	tests := []struct {
		name string
		a    Action
	}{
		{"без пользователя", Action{Type: "post_created"}},
		{"пробелы вместо пользователя", Action{UserID: "  ", Type: "post_created"}},
		{"неизвестное действие", Action{UserID: "u1", Type: "post_deleted"}},
		{"пустое действие", Action{UserID: "u1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Record(context.Background(), tt.a)
			assert.ErrorIs(t, err, common.ErrInvalidAction)
		})
	}
}

func TestHandleRecord(t *testing.T) {
	mux := http.NewServeMux()
	NewHandler(NewService(&stubAwarder{amount: 15}, &stubChecker{})).Register(mux)

	tests := []struct {
		name   string
		body   string
		status int
		want   string
	}{
		{"успех", `{"user_id":"u1","action_type":"post_created"}`, http.StatusOK, `"clout":15`},
		{"битый JSON", `{"user_id":`, http.StatusBadRequest, `"invalid_request"`},
		{"лишнее поле", `{"user_id":"u1","action_type":"post_created","amount":100}`, http.StatusBadRequest, `"invalid_request"`},
		{"неизвестное действие", `{"user_id":"u1","action_type":"hack"}`, http.StatusBadRequest, `"invalid_request"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/actions", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.want)
		})
	}
}

package access

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/gym-access-control/internal/lib/week"
	"github.com/magabrotheeeer/gym-access-control/internal/models"
	"github.com/magabrotheeeer/gym-access-control/internal/storage/repository"
)

type RepoMock struct{ mock.Mock }

func (m *RepoMock) FindUserByTag(ctx context.Context, tag string) (*models.User, error) {
	args := m.Called(ctx, tag)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *RepoMock) GetActiveSubscription(ctx context.Context, userID int, asOf time.Time) (*models.ActiveSubscriptionInfo, error) {
	args := m.Called(ctx, userID, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ActiveSubscriptionInfo), args.Error(1)
}

func (m *RepoMock) CountAllowedEntriesSince(ctx context.Context, userID int, since time.Time) (int, error) {
	args := m.Called(ctx, userID, since)
	return args.Int(0), args.Error(1)
}

func (m *RepoMock) AppendAccessLogEntry(ctx context.Context, userID int, allowed bool, reason string) error {
	return m.Called(ctx, userID, allowed, reason).Error(0)
}

type PublisherMock struct{ mock.Mock }

func (m *PublisherMock) Publish(event models.AccessEvent) error {
	return m.Called(event).Error(0)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func intPtr(n int) *int { return &n }

func subInfo(typeName string, entriesPerWeek *int, endDate time.Time) *models.ActiveSubscriptionInfo {
	return &models.ActiveSubscriptionInfo{
		Subscription: models.Subscription{
			ID:        1,
			UserID:    42,
			TypeID:    2,
			StartDate: endDate.AddDate(0, 0, -30),
			EndDate:   endDate,
		},
		TypeName:       typeName,
		EntriesPerWeek: entriesPerWeek,
	}
}

func TestEvaluate_TableTests(t *testing.T) {
	today := time.Date(2025, 9, 3, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		sub         *models.ActiveSubscriptionInfo
		weeklyCount int
		wantGranted bool
		wantCode    models.VerdictCode
		wantReason  string
		wantSubName *string
	}{
		{
			name:        "no active subscription",
			sub:         nil,
			weeklyCount: 5,
			wantGranted: false,
			wantCode:    models.VerdictDenied,
			wantReason:  "No active subscription found.",
			wantSubName: nil,
		},
		{
			name:        "weekly limit reached exactly",
			sub:         subInfo("3 Sessions / Week", intPtr(3), today.AddDate(0, 0, 20)),
			weeklyCount: 3,
			wantGranted: false,
			wantCode:    models.VerdictDenied,
			wantReason:  "Weekly limit reached (3/3).",
			wantSubName: strPtr("3 Sessions / Week"),
		},
		{
			name:        "weekly limit exceeded",
			sub:         subInfo("2 Sessions / Week", intPtr(2), today.AddDate(0, 0, 20)),
			weeklyCount: 4,
			wantGranted: false,
			wantCode:    models.VerdictDenied,
			wantReason:  "Weekly limit reached (4/2).",
			wantSubName: strPtr("2 Sessions / Week"),
		},
		{
			name:        "under the limit",
			sub:         subInfo("3 Sessions / Week", intPtr(3), today.AddDate(0, 0, 20)),
			weeklyCount: 2,
			wantGranted: true,
			wantCode:    models.VerdictAllowed,
			wantReason:  "Access Granted",
			wantSubName: strPtr("3 Sessions / Week"),
		},
		{
			name:        "unlimited subscription ignores any count",
			sub:         subInfo("Unlimited access", nil, today.AddDate(0, 0, 20)),
			weeklyCount: 100,
			wantGranted: true,
			wantCode:    models.VerdictAllowed,
			wantReason:  "Access Granted",
			wantSubName: strPtr("Unlimited access"),
		},
		{
			name:        "expires in three days",
			sub:         subInfo("Unlimited access", nil, today.AddDate(0, 0, 3)),
			weeklyCount: 0,
			wantGranted: true,
			wantCode:    models.VerdictWarning,
			wantReason: fmt.Sprintf("Access Granted. Expires in 3 days (%s)",
				today.AddDate(0, 0, 3).Format("2006-01-02")),
			wantSubName: strPtr("Unlimited access"),
		},
		{
			name:        "expires in exactly seven days",
			sub:         subInfo("Unlimited access", nil, today.AddDate(0, 0, 7)),
			weeklyCount: 0,
			wantGranted: true,
			wantCode:    models.VerdictWarning,
			wantReason: fmt.Sprintf("Access Granted. Expires in 7 days (%s)",
				today.AddDate(0, 0, 7).Format("2006-01-02")),
			wantSubName: strPtr("Unlimited access"),
		},
		{
			name:        "expires today",
			sub:         subInfo("Unlimited access", nil, today),
			weeklyCount: 0,
			wantGranted: true,
			wantCode:    models.VerdictWarning,
			wantReason: fmt.Sprintf("Access Granted. Expires in 0 days (%s)",
				today.Format("2006-01-02")),
			wantSubName: strPtr("Unlimited access"),
		},
		{
			name:        "expires in eight days is a plain allow",
			sub:         subInfo("Unlimited access", nil, today.AddDate(0, 0, 8)),
			weeklyCount: 0,
			wantGranted: true,
			wantCode:    models.VerdictAllowed,
			wantReason:  "Access Granted",
			wantSubName: strPtr("Unlimited access"),
		},
		{
			name:        "limit check wins over expiry warning",
			sub:         subInfo("2 Sessions / Week", intPtr(2), today.AddDate(0, 0, 2)),
			weeklyCount: 2,
			wantGranted: false,
			wantCode:    models.VerdictDenied,
			wantReason:  "Weekly limit reached (2/2).",
			wantSubName: strPtr("2 Sessions / Week"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Evaluate(tt.sub, tt.weeklyCount, today)

			assert.Equal(t, tt.wantGranted, got.Granted)
			assert.Equal(t, tt.wantCode, got.Code)
			assert.Equal(t, tt.wantReason, got.Reason)
			assert.Equal(t, tt.weeklyCount, got.WeeklyCount)
			if tt.wantSubName == nil {
				assert.Nil(t, got.SubscriptionName)
			} else {
				require.NotNil(t, got.SubscriptionName)
				assert.Equal(t, *tt.wantSubName, *got.SubscriptionName)
			}
		})
	}
}

func strPtr(s string) *string { return &s }

func TestEvaluateAccess_CountsSinceMonday(t *testing.T) {
	repo := new(RepoMock)
	repo.On("GetActiveSubscription", mock.Anything, 42, mock.Anything).
		Return(subInfo("Unlimited access", nil, time.Now().AddDate(0, 0, 30)), nil)
	repo.On("CountAllowedEntriesSince", mock.Anything, 42, mock.MatchedBy(func(since time.Time) bool {
		return since.Equal(week.Start(time.Now()))
	})).Return(2, nil)

	svc := New(repo, nil, newNoopLogger())

	verdict, err := svc.EvaluateAccess(context.Background(), 42)
	require.NoError(t, err)
	assert.True(t, verdict.Granted)
	assert.Equal(t, 2, verdict.WeeklyCount)
	repo.AssertExpectations(t)
}

func TestEvaluateAccess_IsIdempotent(t *testing.T) {
	repo := new(RepoMock)
	repo.On("GetActiveSubscription", mock.Anything, 42, mock.Anything).
		Return(subInfo("3 Sessions / Week", intPtr(3), time.Now().AddDate(0, 0, 30)), nil)
	repo.On("CountAllowedEntriesSince", mock.Anything, 42, mock.Anything).Return(1, nil)

	svc := New(repo, nil, newNoopLogger())

	first, err := svc.EvaluateAccess(context.Background(), 42)
	require.NoError(t, err)
	second, err := svc.EvaluateAccess(context.Background(), 42)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	repo.AssertNotCalled(t, "AppendAccessLogEntry", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestEvaluateAccess_StorageErrors(t *testing.T) {
	tests := []struct {
		name       string
		setupMocks func(r *RepoMock)
	}{
		{
			name: "subscription fetch fails",
			setupMocks: func(r *RepoMock) {
				r.On("GetActiveSubscription", mock.Anything, 42, mock.Anything).
					Return(nil, errors.New("db error"))
			},
		},
		{
			name: "weekly count fails",
			setupMocks: func(r *RepoMock) {
				r.On("GetActiveSubscription", mock.Anything, 42, mock.Anything).
					Return(subInfo("Unlimited access", nil, time.Now().AddDate(0, 0, 30)), nil)
				r.On("CountAllowedEntriesSince", mock.Anything, 42, mock.Anything).
					Return(0, errors.New("db error"))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			tt.setupMocks(repo)

			svc := New(repo, nil, newNoopLogger())

			_, err := svc.EvaluateAccess(context.Background(), 42)
			assert.Error(t, err)
		})
	}
}

func TestScan_UnknownTagIsNotLogged(t *testing.T) {
	repo := new(RepoMock)
	repo.On("FindUserByTag", mock.Anything, "ABC123").
		Return(nil, fmt.Errorf("storage.FindUserByTag: %w", repository.ErrUserNotFound))

	svc := New(repo, nil, newNoopLogger())

	res, err := svc.Scan(context.Background(), "ABC123")
	require.NoError(t, err)
	assert.Equal(t, models.ScanUnknown, res.Status)
	assert.Equal(t, "ABC123", res.RFIDTag)
	repo.AssertNotCalled(t, "AppendAccessLogEntry", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestScan_GrantedIncrementsDisplayCount(t *testing.T) {
	user := &models.User{ID: 42, Name: "Ivan", RFIDTag: "TAG42"}

	repo := new(RepoMock)
	repo.On("FindUserByTag", mock.Anything, "TAG42").Return(user, nil)
	repo.On("GetActiveSubscription", mock.Anything, 42, mock.Anything).
		Return(subInfo("3 Sessions / Week", intPtr(3), time.Now().AddDate(0, 0, 30)), nil)
	repo.On("CountAllowedEntriesSince", mock.Anything, 42, mock.Anything).Return(2, nil)
	repo.On("AppendAccessLogEntry", mock.Anything, 42, true, "Access Granted").Return(nil)

	svc := New(repo, nil, newNoopLogger())

	res, err := svc.Scan(context.Background(), "TAG42")
	require.NoError(t, err)
	assert.Equal(t, models.ScanAllowed, res.Status)
	assert.Equal(t, "Ivan", res.UserName)
	// В журнале за неделю 2 прохода, в ответе для табло учтён и текущий.
	assert.Equal(t, 3, res.WeeklyCount)
	require.NotNil(t, res.SubscriptionName)
	assert.Equal(t, "3 Sessions / Week", *res.SubscriptionName)
	repo.AssertExpectations(t)
}

func TestScan_DeniedKeepsDisplayCount(t *testing.T) {
	user := &models.User{ID: 42, Name: "Ivan", RFIDTag: "TAG42"}

	repo := new(RepoMock)
	repo.On("FindUserByTag", mock.Anything, "TAG42").Return(user, nil)
	repo.On("GetActiveSubscription", mock.Anything, 42, mock.Anything).
		Return(subInfo("3 Sessions / Week", intPtr(3), time.Now().AddDate(0, 0, 30)), nil)
	repo.On("CountAllowedEntriesSince", mock.Anything, 42, mock.Anything).Return(3, nil)
	repo.On("AppendAccessLogEntry", mock.Anything, 42, false, "Weekly limit reached (3/3).").Return(nil)

	svc := New(repo, nil, newNoopLogger())

	res, err := svc.Scan(context.Background(), "TAG42")
	require.NoError(t, err)
	assert.Equal(t, models.ScanDenied, res.Status)
	assert.Equal(t, 3, res.WeeklyCount)
	repo.AssertExpectations(t)
}

func TestScan_AppendErrorFailsScan(t *testing.T) {
	user := &models.User{ID: 42, Name: "Ivan", RFIDTag: "TAG42"}

	repo := new(RepoMock)
	repo.On("FindUserByTag", mock.Anything, "TAG42").Return(user, nil)
	repo.On("GetActiveSubscription", mock.Anything, 42, mock.Anything).
		Return(subInfo("Unlimited access", nil, time.Now().AddDate(0, 0, 30)), nil)
	repo.On("CountAllowedEntriesSince", mock.Anything, 42, mock.Anything).Return(0, nil)
	repo.On("AppendAccessLogEntry", mock.Anything, 42, true, "Access Granted").
		Return(errors.New("db error"))

	svc := New(repo, nil, newNoopLogger())

	_, err := svc.Scan(context.Background(), "TAG42")
	assert.Error(t, err)
}

func TestScan_PublishFailureDoesNotFailScan(t *testing.T) {
	user := &models.User{ID: 42, Name: "Ivan", RFIDTag: "TAG42"}

	repo := new(RepoMock)
	repo.On("FindUserByTag", mock.Anything, "TAG42").Return(user, nil)
	repo.On("GetActiveSubscription", mock.Anything, 42, mock.Anything).
		Return(subInfo("Unlimited access", nil, time.Now().AddDate(0, 0, 30)), nil)
	repo.On("CountAllowedEntriesSince", mock.Anything, 42, mock.Anything).Return(0, nil)
	repo.On("AppendAccessLogEntry", mock.Anything, 42, true, "Access Granted").Return(nil)

	events := new(PublisherMock)
	events.On("Publish", mock.MatchedBy(func(e models.AccessEvent) bool {
		return e.UserID == 42 && e.Status == models.ScanAllowed
	})).Return(errors.New("amqp connection closed"))

	svc := New(repo, events, newNoopLogger())

	res, err := svc.Scan(context.Background(), "TAG42")
	require.NoError(t, err)
	assert.Equal(t, models.ScanAllowed, res.Status)
	events.AssertExpectations(t)
}

package catalog

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/gym-access-control/internal/models"
)

type RepoMock struct{ mock.Mock }

func (m *RepoMock) ListSubscriptionTypes(ctx context.Context) ([]*models.SubscriptionType, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.SubscriptionType), args.Error(1)
}

type CacheMock struct{ mock.Mock }

func (m *CacheMock) Get(key string, result any) (bool, error) {
	args := m.Called(key, result)
	return args.Bool(0), args.Error(1)
}

func (m *CacheMock) Set(key string, value any, expiration time.Duration) error {
	return m.Called(key, value, expiration).Error(0)
}

func (m *CacheMock) Invalidate(key string) error {
	return m.Called(key).Error(0)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func catalogFixture() []*models.SubscriptionType {
	three := 3
	return []*models.SubscriptionType{
		{ID: 1, Name: "Unlimited access", DurationDays: 30, Price: 50.0},
		{ID: 2, Name: "3 Sessions / Week", EntriesPerWeek: &three, DurationDays: 30, Price: 30.0},
	}
}

func TestListTypes_CacheMissReadsStorage(t *testing.T) {
	types := catalogFixture()

	repo := new(RepoMock)
	repo.On("ListSubscriptionTypes", mock.Anything).Return(types, nil)

	cache := new(CacheMock)
	cache.On("Get", cacheKey, mock.Anything).Return(false, nil)
	cache.On("Set", cacheKey, types, cacheTTL).Return(nil)

	svc := New(repo, cache, newNoopLogger())

	got, err := svc.ListTypes(context.Background())
	require.NoError(t, err)
	assert.Equal(t, types, got)
	repo.AssertExpectations(t)
	cache.AssertExpectations(t)
}

func TestListTypes_CacheHitSkipsStorage(t *testing.T) {
	repo := new(RepoMock)

	cache := new(CacheMock)
	cache.On("Get", cacheKey, mock.Anything).Return(true, nil)

	svc := New(repo, cache, newNoopLogger())

	_, err := svc.ListTypes(context.Background())
	require.NoError(t, err)
	repo.AssertNotCalled(t, "ListSubscriptionTypes", mock.Anything)
}

func TestListTypes_CacheErrorFallsBackToStorage(t *testing.T) {
	types := catalogFixture()

	repo := new(RepoMock)
	repo.On("ListSubscriptionTypes", mock.Anything).Return(types, nil)

	cache := new(CacheMock)
	cache.On("Get", cacheKey, mock.Anything).Return(false, errors.New("redis down"))
	cache.On("Set", cacheKey, types, cacheTTL).Return(errors.New("redis down"))

	svc := New(repo, cache, newNoopLogger())

	got, err := svc.ListTypes(context.Background())
	require.NoError(t, err)
	assert.Equal(t, types, got)
}

func TestListTypes_StorageError(t *testing.T) {
	repo := new(RepoMock)
	repo.On("ListSubscriptionTypes", mock.Anything).Return(nil, errors.New("db error"))

	svc := New(repo, nil, newNoopLogger())

	_, err := svc.ListTypes(context.Background())
	assert.Error(t, err)
}

func TestListTypes_WithoutCache(t *testing.T) {
	types := catalogFixture()

	repo := new(RepoMock)
	repo.On("ListSubscriptionTypes", mock.Anything).Return(types, nil)

	svc := New(repo, nil, newNoopLogger())

	got, err := svc.ListTypes(context.Background())
	require.NoError(t, err)
	assert.Equal(t, types, got)
}

package accesslog

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/gym-access-control/internal/models"
)

type RepoMock struct{ mock.Mock }

func (m *RepoMock) ListAccessLogs(ctx context.Context, limit int) ([]*models.AccessLogInfo, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.AccessLogInfo), args.Error(1)
}

func (m *RepoMock) DeleteAccessLog(ctx context.Context, logID int) (int, error) {
	args := m.Called(ctx, logID)
	return args.Int(0), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestList_DefaultLimit(t *testing.T) {
	logs := []*models.AccessLogInfo{
		{AccessLogEntry: models.AccessLogEntry{ID: 1, UserID: 42, Allowed: true}, UserName: "Ivan"},
	}

	repo := new(RepoMock)
	repo.On("ListAccessLogs", mock.Anything, DefaultLimit).Return(logs, nil)

	svc := New(repo, newNoopLogger())

	got, err := svc.List(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, logs, got)
	repo.AssertExpectations(t)
}

func TestList_ExplicitLimit(t *testing.T) {
	repo := new(RepoMock)
	repo.On("ListAccessLogs", mock.Anything, 10).Return([]*models.AccessLogInfo{}, nil)

	svc := New(repo, newNoopLogger())

	_, err := svc.List(context.Background(), 10)
	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestDelete(t *testing.T) {
	tests := []struct {
		name      string
		mockCount int
		mockErr   error
		wantCount int
		wantErr   bool
	}{
		{name: "deleted one entry", mockCount: 1, wantCount: 1},
		{name: "entry does not exist", mockCount: 0, wantCount: 0},
		{name: "storage error", mockErr: errors.New("db error"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			repo.On("DeleteAccessLog", mock.Anything, 7).Return(tt.mockCount, tt.mockErr)

			svc := New(repo, newNoopLogger())

			count, err := svc.Delete(context.Background(), 7)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantCount, count)
		})
	}
}

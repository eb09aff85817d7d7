package register

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/gym-access-control/internal/models"
	"github.com/magabrotheeeer/gym-access-control/internal/storage/repository"
)

// MockService реализует интерфейс register.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) Register(ctx context.Context, req models.DummyUser) (int, error) {
	args := m.Called(ctx, req)
	return args.Int(0), args.Error(1)
}

func TestRegisterHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	validBody := `{"name":"Ivan","phone":"+70000000001","rfid_tag":"TAG42","subscription_type_id":2}`

	tests := []struct {
		name           string
		body           string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "успешная регистрация",
			body: validBody,
			setupMock: func(m *MockService) {
				m.On("Register", mock.Anything, models.DummyUser{
					Name:               "Ivan",
					Phone:              "+70000000001",
					RFIDTag:            "TAG42",
					SubscriptionTypeID: 2,
				}).Return(42, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"user_id":42`,
		},
		{
			name:           "отсутствует телефон",
			body:           `{"name":"Ivan","rfid_tag":"TAG42","subscription_type_id":2}`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `field Phone is a required field`,
		},
		{
			name: "дубликат метки даёт конфликт",
			body: validBody,
			setupMock: func(m *MockService) {
				m.On("Register", mock.Anything, mock.Anything).
					Return(0, fmt.Errorf("services.user.Register: %w", repository.ErrAlreadyExists))
			},
			expectedStatus: http.StatusConflict,
			expectedBody:   `phone or rfid tag already registered`,
		},
		{
			name: "неизвестный тип абонемента",
			body: validBody,
			setupMock: func(m *MockService) {
				m.On("Register", mock.Anything, mock.Anything).
					Return(0, fmt.Errorf("services.user.Register: %w", repository.ErrSubscriptionTypeNotFound))
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `unknown subscription type`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService)

			req := httptest.NewRequest(http.MethodPost, "/users", strings.NewReader(tt.body))
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.True(t, strings.Contains(w.Body.String(), tt.expectedBody),
				"response body should contain %s, got %s", tt.expectedBody, w.Body.String())

			mockService.AssertExpectations(t)
		})
	}
}

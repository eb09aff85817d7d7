// Package catalog отдаёт каталог типов абонементов. Каталог неизменяемый,
// поэтому агрессивно кешируется в Redis.
package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/gym-access-control/internal/lib/sl"
	"github.com/magabrotheeeer/gym-access-control/internal/models"
)

// cacheKey — ключ каталога в Redis.
const cacheKey = "subscription_types"

// cacheTTL ограничивает время жизни кеша на случай ручной правки каталога в базе.
const cacheTTL = time.Hour

// Repository определяет доступ к каталогу в хранилище.
type Repository interface {
	ListSubscriptionTypes(ctx context.Context) ([]*models.SubscriptionType, error)
}

// Cache описывает методы для кэширования данных.
type Cache interface {
	Get(key string, result any) (bool, error)
	Set(key string, value any, expiration time.Duration) error
	Invalidate(key string) error
}

// Service реализует чтение каталога с кешированием.
type Service struct {
	repo  Repository
	cache Cache
	log   *slog.Logger
}

// New создает новый Service. cache может быть nil, тогда каталог
// читается из базы на каждый запрос.
func New(repo Repository, cache Cache, log *slog.Logger) *Service {
	return &Service{
		repo:  repo,
		cache: cache,
		log:   log,
	}
}

// ListTypes возвращает каталог типов абонементов, используя кеш или хранилище.
func (s *Service) ListTypes(ctx context.Context) ([]*models.SubscriptionType, error) {
	const op = "services.catalog.ListTypes"

	if s.cache != nil {
		var cached []*models.SubscriptionType
		found, err := s.cache.Get(cacheKey, &cached)
		if err != nil {
			s.log.Warn("failed to read catalog from cache", sl.Err(err))
		}
		if found {
			return cached, nil
		}
	}

	types, err := s.repo.ListSubscriptionTypes(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if s.cache != nil {
		if err := s.cache.Set(cacheKey, types, cacheTTL); err != nil {
			s.log.Warn("failed to cache catalog", slog.String("key", cacheKey), sl.Err(err))
		}
	}
	return types, nil
}

package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"cmms-system/internal/repositories"
	apperrors "cmms-system/pkg/errors"
	"cmms-system/pkg/eventbus"
	"cmms-system/pkg/utils"
)

// EventPublisher - часть eventbus.Bus, нужная сервисам.
type EventPublisher interface {
	Publish(ctx context.Context, event eventbus.Event)
}

type BaseService struct {
	cache  repositories.CacheRepositoryInterface
	logger *zap.Logger
}

func NewBaseService(cache repositories.CacheRepositoryInterface, logger *zap.Logger) *BaseService {
	return &BaseService{cache: cache, logger: logger}
}

// CacheGet получает данные из кэша. Промах и недоступность Redis не считаются ошибкой.
func (s *BaseService) CacheGet(ctx context.Context, key string, dest interface{}) bool {
	if s.cache == nil {
		return false
	}
	err := s.cache.GetJSON(ctx, key, dest)
	if err == nil {
		s.logger.Debug("Данные получены из кэша", zap.String("key", key))
		return true
	}
	if !errors.Is(err, repositories.ErrCacheMiss) {
		s.logger.Warn("Ошибка чтения кэша", zap.String("key", key), zap.Error(err))
	}
	return false
}

// CacheSet сохраняет данные в кэш
func (s *BaseService) CacheSet(ctx context.Context, key string, data interface{}, ttl time.Duration) {
	if s.cache == nil {
		return
	}
	if err := s.cache.SetJSON(ctx, key, data, ttl); err != nil {
		s.logger.Warn("Ошибка записи в кэш", zap.String("key", key), zap.Error(err))
	}
}

func (s *BaseService) CacheInvalidate(ctx context.Context, prefix string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DelByPrefix(ctx, prefix); err != nil {
		s.logger.Warn("Ошибка сброса кэша", zap.String("prefix", prefix), zap.Error(err))
	}
}

// newDocumentCode строит номер документа вида PREFIX-YYYYMMDD-XXXXXX.
func newDocumentCode(prefix string, now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:6]
	return fmt.Sprintf("%s-%s-%s", prefix, now.Format("20060102"), suffix)
}

// actorID - id текущего пользователя или nil для системных вызовов.
func actorID(ctx context.Context) *uint64 {
	id, err := utils.GetUserIDFromCtx(ctx)
	if err != nil {
		return nil
	}
	return &id
}

// ensureTechnician превращает ссылку на несуществующего техника в ошибку ввода, а не в нарушение внешнего ключа.
func ensureTechnician(ctx context.Context, repo repositories.TechnicianRepositoryInterface, id uint64) error {
	if _, err := repo.FindTechnician(ctx, nil, id); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.NewInvalidInputError("техник %d не найден", id)
		}
		return err
	}
	return nil
}

package controllers

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	apperrors "cmms-system/pkg/errors"
	"cmms-system/pkg/utils"
)

// RequestDeduplicator отсекает повторные нажатия: один и тот же пользователь
// не может вызвать ту же операцию чаще, чем раз в ttl.
type RequestDeduplicator struct {
	locks  sync.Map
	now    func() time.Time
	logger *zap.Logger
}

func NewRequestDeduplicator(logger *zap.Logger) *RequestDeduplicator {
	return &RequestDeduplicator{now: time.Now, logger: logger}
}

func (d *RequestDeduplicator) TryAcquire(userID uint64, keySuffix string, ttl time.Duration) bool {
	key := fmt.Sprintf("%d_%s", userID, keySuffix)
	now := d.now()

	if val, exists := d.locks.Load(key); exists {
		expiry := val.(time.Time)
		if now.Before(expiry) {
			return false
		}
	}

	d.locks.Store(key, now.Add(ttl))
	return true
}

// Middleware применяет TryAcquire по ключу "метод путь-с-параметрами".
func (d *RequestDeduplicator) Middleware(ttl time.Duration) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userID, err := utils.GetUserIDFromCtx(c.Request().Context())
			if err != nil {
				return utils.ErrorResponse(c, err, d.logger)
			}
			key := c.Request().Method + " " + c.Request().URL.Path
			if !d.TryAcquire(userID, key, ttl) {
				d.logger.Warn("Повторный запрос отклонён", zap.Uint64("userID", userID), zap.String("key", key))
				return utils.ErrorResponse(c, apperrors.ErrDuplicate, d.logger)
			}
			return next(c)
		}
	}
}

func (d *RequestDeduplicator) Cleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.sweep()
		}
	}
}

func (d *RequestDeduplicator) sweep() {
	now := d.now()
	d.locks.Range(func(key, value interface{}) bool {
		expiry := value.(time.Time)
		if now.After(expiry) {
			d.locks.Delete(key)
		}
		return true
	})
}

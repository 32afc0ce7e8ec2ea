package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"cmms-system/pkg/utils"
)

func TestRequestDeduplicator_TryAcquire(t *testing.T) {
	now := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
	d := NewRequestDeduplicator(zap.NewNop())
	d.now = func() time.Time { return now }

	assert.True(t, d.TryAcquire(1, "POST /api/tickets", time.Second*5))
	assert.False(t, d.TryAcquire(1, "POST /api/tickets", time.Second*5))
	assert.True(t, d.TryAcquire(2, "POST /api/tickets", time.Second*5), "другой пользователь")
	assert.True(t, d.TryAcquire(1, "POST /api/preventive/3/execute", time.Second*5), "другая операция")

	now = now.Add(6 * time.Second)
	assert.True(t, d.TryAcquire(1, "POST /api/tickets", time.Second*5))
}

func TestRequestDeduplicator_Sweep(t *testing.T) {
	now := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
	d := NewRequestDeduplicator(zap.NewNop())
	d.now = func() time.Time { return now }

	d.TryAcquire(1, "a", time.Second)
	d.TryAcquire(1, "b", time.Minute)
	now = now.Add(2 * time.Second)
	d.sweep()

	_, okA := d.locks.Load("1_a")
	_, okB := d.locks.Load("1_b")
	assert.False(t, okA)
	assert.True(t, okB)
}

func TestRequestDeduplicator_Middleware(t *testing.T) {
	e := echo.New()
	d := NewRequestDeduplicator(zap.NewNop())
	handler := d.Middleware(time.Minute)(func(c echo.Context) error {
		return c.NoContent(http.StatusCreated)
	})

	call := func() int {
		req := httptest.NewRequest(http.MethodPost, "/api/tickets", nil)
		req = req.WithContext(utils.WithUser(req.Context(), 7, "manager"))
		rec := httptest.NewRecorder()
		_ = handler(e.NewContext(req, rec))
		return rec.Code
	}

	assert.Equal(t, http.StatusCreated, call())
	assert.Equal(t, http.StatusTooManyRequests, call())
}

func TestRequestDeduplicator_CleanupStops(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreTopFunction("go.opencensus.io/stats/view.(*worker).start"))

	d := NewRequestDeduplicator(zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		d.Cleanup(ctx, time.Millisecond)
		close(done)
	}()
	cancel()
	<-done
}

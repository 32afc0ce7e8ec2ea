package listeners

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"cmms-system/internal/events"
	"cmms-system/internal/services"
	"cmms-system/pkg/eventbus"
	"cmms-system/pkg/websocket"
)

// Subscriber - часть eventbus.Bus, нужная для подписки.
type Subscriber interface {
	Subscribe(eventName string, listener eventbus.Listener)
}

// Broadcaster рассылает конверт всем WebSocket-клиентам.
type Broadcaster interface {
	Broadcast(messageType string, payload interface{}) error
}

// LiveUpdateListener сбрасывает кэш аналитики и рассылает свежий снимок цифрового двойника.
type LiveUpdateListener struct {
	twin      services.TwinServiceInterface
	analytics services.AnalyticsServiceInterface
	hub       Broadcaster
	logger    *zap.Logger
}

func NewLiveUpdateListener(
	twin services.TwinServiceInterface,
	analytics services.AnalyticsServiceInterface,
	hub Broadcaster,
	logger *zap.Logger,
) *LiveUpdateListener {
	return &LiveUpdateListener{twin: twin, analytics: analytics, hub: hub, logger: logger}
}

func (l *LiveUpdateListener) Register(bus Subscriber) {
	bus.Subscribe(events.TicketStatusChangedEvent, l.handleTicketStatusChanged)
	bus.Subscribe(events.AssetChangedEvent, l.handleAssetChanged)
	bus.Subscribe(events.StockChangedEvent, l.handleStockChanged)
	l.logger.Info("LiveUpdateListener подписан на события заявок, активов и склада")
}

func (l *LiveUpdateListener) handleTicketStatusChanged(ctx context.Context, e eventbus.Event) error {
	event, ok := e.(events.TicketStatusChanged)
	if !ok {
		return fmt.Errorf("неожиданный тип события %T", e)
	}
	l.analytics.InvalidateCache(ctx)
	if err := l.hub.Broadcast(websocket.TypeTicketChanged, event); err != nil {
		l.logger.Warn("Не удалось разослать смену статуса заявки", zap.Uint64("ticketID", event.TicketID), zap.Error(err))
	}
	return l.broadcastTwin(ctx)
}

func (l *LiveUpdateListener) handleAssetChanged(ctx context.Context, e eventbus.Event) error {
	if _, ok := e.(events.AssetChanged); !ok {
		return fmt.Errorf("неожиданный тип события %T", e)
	}
	l.analytics.InvalidateCache(ctx)
	return l.broadcastTwin(ctx)
}

func (l *LiveUpdateListener) handleStockChanged(ctx context.Context, e eventbus.Event) error {
	event, ok := e.(events.StockChanged)
	if !ok {
		return fmt.Errorf("неожиданный тип события %T", e)
	}
	l.logger.Debug("Изменились остатки", zap.Uint64s("parts", event.PartIDs), zap.String("reason", event.Reason))
	l.analytics.InvalidateCache(ctx)
	return nil
}

func (l *LiveUpdateListener) broadcastTwin(ctx context.Context) error {
	tree, err := l.twin.GetTwin(ctx)
	if err != nil {
		return fmt.Errorf("не удалось собрать снимок двойника: %w", err)
	}
	return l.hub.Broadcast(websocket.TypeTwinUpdated, tree)
}

// Package ai оборачивает генеративную текстовую модель.
package ai

import (
	"context"

	apperrors "cmms-system/pkg/errors"
)

// Client - минимальный контракт, который нужен сервисам: промпт на входе, текст на выходе.
type Client interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
	Enabled() bool
}

// DisabledClient используется, когда ключ API не задан.
type DisabledClient struct{}

func (DisabledClient) GenerateText(context.Context, string) (string, error) {
	return "", apperrors.ErrAIUnavailable
}

func (DisabledClient) Enabled() bool { return false }

// Toggle включает и выключает клиент по флагу из системных настроек.
type Toggle struct {
	client  Client
	enabled func(ctx context.Context) bool
}

func NewToggle(client Client, enabled func(ctx context.Context) bool) *Toggle {
	return &Toggle{client: client, enabled: enabled}
}

func (t *Toggle) GenerateText(ctx context.Context, prompt string) (string, error) {
	if t.client == nil || !t.client.Enabled() {
		return "", apperrors.ErrAIUnavailable
	}
	if t.enabled != nil && !t.enabled(ctx) {
		return "", apperrors.ErrAIUnavailable
	}
	return t.client.GenerateText(ctx, prompt)
}

func (t *Toggle) Enabled() bool {
	return t.client != nil && t.client.Enabled()
}

package viacep

import (
	"context"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"cmms-system/internal/integrations"
	"cmms-system/internal/integrations/dto"
)

type Provider struct {
	httpClient *http.Client
	baseURL    string
	logger     *zap.Logger
}

func New(baseURL string, timeout time.Duration, logger *zap.Logger) integrations.AddressProvider {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Provider{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		logger:     logger.Named("viacep_provider"),
	}
}

func (p *Provider) Name() string {
	return "viacep"
}

// LookupPostalCode ожидает уже нормализованный индекс из 8 цифр.
func (p *Provider) LookupPostalCode(ctx context.Context, cep string) (*dto.Address, error) {
	ext, err := p.fetchAddress(ctx, cep)
	if err != nil {
		p.logger.Debug("Адрес не получен", zap.String("cep", cep), zap.Error(err))
		return nil, err
	}
	addr := mapAddress(ext)
	addr.Source = p.Name()
	return &addr, nil
}

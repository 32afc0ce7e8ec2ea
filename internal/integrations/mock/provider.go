package mock

import (
	"context"
	"fmt"

	"cmms-system/internal/integrations/dto"
	apperrors "cmms-system/pkg/errors"
)

// MockProvider отвечает из памяти; используется в dev-окружении без выхода в сеть и в тестах.
type MockProvider struct {
	ShouldFail bool
	Addresses  map[string]dto.Address
}

func NewMockProvider() *MockProvider {
	return &MockProvider{
		Addresses: map[string]dto.Address{
			"01310100": {PostalCode: "01310-100", Street: "Avenida Paulista", District: "Bela Vista", City: "São Paulo", State: "SP"},
		},
	}
}

func (m *MockProvider) Name() string {
	return "mock"
}

func (m *MockProvider) LookupPostalCode(_ context.Context, cep string) (*dto.Address, error) {
	if m.ShouldFail {
		return nil, fmt.Errorf("%w: mock", apperrors.ErrPostalLookupFailed)
	}
	addr, ok := m.Addresses[cep]
	if !ok {
		return nil, apperrors.ErrPostalCodeNotFound
	}
	addr.Source = m.Name()
	return &addr, nil
}

package integrations

import (
	"context"

	"cmms-system/internal/integrations/dto"
)

// AddressProvider ищет адрес по почтовому индексу (CEP).
type AddressProvider interface {
	Name() string
	LookupPostalCode(ctx context.Context, cep string) (*dto.Address, error)
}

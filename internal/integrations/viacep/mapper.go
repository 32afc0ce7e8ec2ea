package viacep

import (
	"strings"

	"cmms-system/internal/integrations/dto"
)

func mapAddress(ext *addressDTO) dto.Address {
	return dto.Address{
		PostalCode: strings.TrimSpace(ext.CEP),
		Street:     strings.TrimSpace(ext.Logradouro),
		District:   strings.TrimSpace(ext.Bairro),
		City:       strings.TrimSpace(ext.Localidade),
		State:      strings.ToUpper(strings.TrimSpace(ext.UF)),
	}
}

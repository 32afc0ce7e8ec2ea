// Файл: internal/integrations/dto/address.go
package dto

// Address - адрес во внутреннем формате, независимо от провайдера.
type Address struct {
	PostalCode string `json:"postal_code"`
	Street     string `json:"street"`
	District   string `json:"district"`
	City       string `json:"city"`
	State      string `json:"state"`
	Source     string `json:"source"`
}

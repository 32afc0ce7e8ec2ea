package viacep

// addressDTO - ответ ViaCEP. При несуществующем индексе приходит {"erro": true}.
type addressDTO struct {
	CEP        string `json:"cep"`
	Logradouro string `json:"logradouro"`
	Bairro     string `json:"bairro"`
	Localidade string `json:"localidade"`
	UF         string `json:"uf"`
	Erro       any    `json:"erro,omitempty"`
}

// notFound: ViaCEP отдаёт erro как bool, а в старых версиях как строку "true".
func (a addressDTO) notFound() bool {
	switch v := a.Erro.(type) {
	case bool:
		return v
	case string:
		return v == "true"
	}
	return false
}

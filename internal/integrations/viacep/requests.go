package viacep

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	apperrors "cmms-system/pkg/errors"
)

const maxBodySize = 64 << 10

func (p *Provider) fetchAddress(ctx context.Context, cep string) (*addressDTO, error) {
	url := fmt.Sprintf("%s/%s/json/", p.baseURL, cep)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания GET-запроса: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrPostalLookupFailed, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusNotFound:
		return nil, apperrors.ErrPostalCodeNotFound
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("%w: сервис вернул статус %s", apperrors.ErrPostalLookupFailed, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrPostalLookupFailed, err)
	}

	var out addressDTO
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("%w: ошибка парсинга JSON: %v", apperrors.ErrPostalLookupFailed, err)
	}
	if out.notFound() {
		return nil, apperrors.ErrPostalCodeNotFound
	}
	return &out, nil
}

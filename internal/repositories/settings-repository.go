package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"cmms-system/internal/entities"
	apperrors "cmms-system/pkg/errors"
)

const settingsColumns = `company_name, tax_id, postal_code, street, district, city, state, currency, ai_enabled,
	maintenance_window_days, updated_at`

type SettingsRepositoryInterface interface {
	GetSettings(ctx context.Context) (*entities.SystemSettings, error)
	UpdateSettings(ctx context.Context, s *entities.SystemSettings) (*entities.SystemSettings, error)
}

type SettingsRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewSettingsRepository(storage *pgxpool.Pool, logger *zap.Logger) SettingsRepositoryInterface {
	return &SettingsRepository{storage: storage, logger: logger}
}

func scanSettings(row pgx.Row) (*entities.SystemSettings, error) {
	var s entities.SystemSettings
	err := row.Scan(&s.CompanyName, &s.TaxID, &s.PostalCode, &s.Street, &s.District, &s.City, &s.State,
		&s.Currency, &s.AIEnabled, &s.MaintenanceWindowDays, &s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка сканирования system_settings: %w", err)
	}
	return &s, nil
}

func (r *SettingsRepository) GetSettings(ctx context.Context) (*entities.SystemSettings, error) {
	return scanSettings(r.storage.QueryRow(ctx, "SELECT "+settingsColumns+" FROM system_settings WHERE id = 1"))
}

func (r *SettingsRepository) UpdateSettings(ctx context.Context, s *entities.SystemSettings) (*entities.SystemSettings, error) {
	query := `
		UPDATE system_settings
		SET company_name = $1, tax_id = $2, postal_code = $3, street = $4, district = $5, city = $6, state = $7,
		    currency = $8, ai_enabled = $9, maintenance_window_days = $10, updated_at = NOW()
		WHERE id = 1
		RETURNING ` + settingsColumns
	return scanSettings(r.storage.QueryRow(ctx, query,
		s.CompanyName, s.TaxID, s.PostalCode, s.Street, s.District, s.City, s.State,
		s.Currency, s.AIEnabled, s.MaintenanceWindowDays))
}

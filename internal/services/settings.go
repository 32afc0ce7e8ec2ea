package services

import (
	"context"
	"strings"
	"time"
	"unicode"

	"go.uber.org/zap"

	"cmms-system/internal/dto"
	"cmms-system/internal/integrations"
	intdto "cmms-system/internal/integrations/dto"
	"cmms-system/internal/repositories"
	apperrors "cmms-system/pkg/errors"
)

const postalCachePrefix = "postal:"

type SettingsServiceInterface interface {
	GetSettings(ctx context.Context) (*dto.SettingsDTO, error)
	UpdateSettings(ctx context.Context, payload dto.UpdateSettingsDTO) (*dto.SettingsDTO, error)
	LookupPostalCode(ctx context.Context, cep string) (*intdto.Address, error)
	ApplyPostalCode(ctx context.Context, payload dto.ApplyPostalCodeDTO) (*dto.SettingsDTO, error)
	AIEnabled(ctx context.Context) bool
}

type SettingsService struct {
	*BaseService
	repo        repositories.SettingsRepositoryInterface
	registry    integrations.RegistryInterface
	aiAvailable bool
	postalTTL   time.Duration
	logger      *zap.Logger
}

func NewSettingsService(
	repo repositories.SettingsRepositoryInterface,
	registry integrations.RegistryInterface,
	cache repositories.CacheRepositoryInterface,
	aiAvailable bool,
	postalTTL time.Duration,
	logger *zap.Logger,
) SettingsServiceInterface {
	return &SettingsService{
		BaseService: NewBaseService(cache, logger),
		repo:        repo,
		registry:    registry,
		aiAvailable: aiAvailable,
		postalTTL:   postalTTL,
		logger:      logger,
	}
}

func (s *SettingsService) GetSettings(ctx context.Context) (*dto.SettingsDTO, error) {
	settings, err := s.repo.GetSettings(ctx)
	if err != nil {
		s.logger.Error("Не удалось получить системные настройки", zap.Error(err))
		return nil, err
	}
	res := settingsToDTO(settings, s.aiAvailable)
	return &res, nil
}

func (s *SettingsService) UpdateSettings(ctx context.Context, payload dto.UpdateSettingsDTO) (*dto.SettingsDTO, error) {
	settings, err := s.repo.GetSettings(ctx)
	if err != nil {
		return nil, err
	}

	if payload.CompanyName.Valid {
		settings.CompanyName = strings.TrimSpace(payload.CompanyName.String)
	}
	if payload.TaxID.Valid {
		settings.TaxID = strings.TrimSpace(payload.TaxID.String)
	}
	if payload.PostalCode.Valid {
		settings.PostalCode = NormalizePostalCode(payload.PostalCode.String)
	}
	if payload.Street.Valid {
		settings.Street = payload.Street.String
	}
	if payload.District.Valid {
		settings.District = payload.District.String
	}
	if payload.City.Valid {
		settings.City = payload.City.String
	}
	if payload.State.Valid {
		settings.State = strings.ToUpper(payload.State.String)
	}
	if payload.Currency.Valid {
		settings.Currency = strings.ToUpper(payload.Currency.String)
	}
	if payload.AIEnabled.Valid {
		settings.AIEnabled = payload.AIEnabled.Bool
	}
	if payload.MaintenanceWindowDays.Valid {
		settings.MaintenanceWindowDays = payload.MaintenanceWindowDays.Int
	}

	updated, err := s.repo.UpdateSettings(ctx, settings)
	if err != nil {
		s.logger.Error("Не удалось сохранить системные настройки", zap.Error(err))
		return nil, err
	}
	s.logger.Info("Системные настройки обновлены", zap.Uint64p("actor", actorID(ctx)))
	res := settingsToDTO(updated, s.aiAvailable)
	return &res, nil
}

// NormalizePostalCode оставляет только цифры.
func NormalizePostalCode(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func (s *SettingsService) LookupPostalCode(ctx context.Context, cep string) (*intdto.Address, error) {
	cep = NormalizePostalCode(cep)
	if len(cep) != 8 {
		return nil, apperrors.NewInvalidInputError("почтовый индекс должен содержать 8 цифр")
	}

	key := postalCachePrefix + cep
	var cached intdto.Address
	if s.CacheGet(ctx, key, &cached) {
		return &cached, nil
	}

	provider, err := s.registry.GetActive()
	if err != nil {
		s.logger.Error("Провайдер поиска адреса не настроен", zap.Error(err))
		return nil, apperrors.ErrPostalLookupFailed
	}
	addr, err := provider.LookupPostalCode(ctx, cep)
	if err != nil {
		s.logger.Warn("Адрес по индексу не получен",
			zap.String("cep", cep), zap.String("provider", provider.Name()), zap.Error(err))
		return nil, err
	}

	s.CacheSet(ctx, key, addr, s.postalTTL)
	return addr, nil
}

func (s *SettingsService) ApplyPostalCode(ctx context.Context, payload dto.ApplyPostalCodeDTO) (*dto.SettingsDTO, error) {
	addr, err := s.LookupPostalCode(ctx, payload.PostalCode)
	if err != nil {
		return nil, err
	}
	settings, err := s.repo.GetSettings(ctx)
	if err != nil {
		return nil, err
	}
	settings.PostalCode = NormalizePostalCode(addr.PostalCode)
	if settings.PostalCode == "" {
		settings.PostalCode = NormalizePostalCode(payload.PostalCode)
	}
	settings.Street = addr.Street
	settings.District = addr.District
	settings.City = addr.City
	settings.State = addr.State

	updated, err := s.repo.UpdateSettings(ctx, settings)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Адрес компании обновлён по индексу", zap.String("cep", updated.PostalCode))
	res := settingsToDTO(updated, s.aiAvailable)
	return &res, nil
}

// AIEnabled читает флаг ai_enabled; при ошибке чтения ИИ считается выключенным.
func (s *SettingsService) AIEnabled(ctx context.Context) bool {
	settings, err := s.repo.GetSettings(ctx)
	if err != nil {
		s.logger.Warn("Не удалось прочитать флаг ИИ", zap.Error(err))
		return false
	}
	return settings.AIEnabled
}

package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aarondl/null/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"cmms-system/internal/dto"
	"cmms-system/internal/entities"
	"cmms-system/internal/integrations"
	"cmms-system/internal/integrations/mock"
	apperrors "cmms-system/pkg/errors"
)

type settingsFixture struct {
	svc      SettingsServiceInterface
	repo     *fakeSettingsRepo
	cache    *fakeCache
	provider *mock.MockProvider
}

func newSettingsFixture(t *testing.T) *settingsFixture {
	t.Helper()
	f := &settingsFixture{
		repo: &fakeSettingsRepo{settings: entities.SystemSettings{
			CompanyName: "Завод", Currency: "BRL", MaintenanceWindowDays: 7, AIEnabled: true,
		}},
		cache:    newFakeCache(),
		provider: mock.NewMockProvider(),
	}
	registry := integrations.NewRegistry()
	require.NoError(t, registry.Register(f.provider))
	require.NoError(t, registry.SetActive(f.provider.Name()))
	f.svc = NewSettingsService(f.repo, registry, f.cache, true, time.Hour, zap.NewNop())
	return f
}

func TestNormalizePostalCode(t *testing.T) {
	assert.Equal(t, "01310100", NormalizePostalCode("01310-100"))
	assert.Equal(t, "01310100", NormalizePostalCode(" 01.310-100 "))
	assert.Equal(t, "", NormalizePostalCode("abc"))
}

func TestUpdateSettings_PartialUpdate(t *testing.T) {
	f := newSettingsFixture(t)

	res, err := f.svc.UpdateSettings(context.Background(), dto.UpdateSettingsDTO{
		Currency:              null.StringFrom("usd"),
		MaintenanceWindowDays: null.IntFrom(14),
		AIEnabled:             null.BoolFrom(false),
	})
	require.NoError(t, err)

	assert.Equal(t, "Завод", res.CompanyName)
	assert.Equal(t, "USD", res.Currency)
	assert.Equal(t, 14, res.MaintenanceWindowDays)
	assert.False(t, res.AIEnabled)
	assert.True(t, res.AIAvailable)
	assert.False(t, f.svc.AIEnabled(context.Background()))
}

func TestGetSettings_AIAvailableReflectsClient(t *testing.T) {
	repo := &fakeSettingsRepo{settings: entities.SystemSettings{CompanyName: "Завод", AIEnabled: true}}
	svc := NewSettingsService(repo, integrations.NewRegistry(), newFakeCache(), false, time.Hour, zap.NewNop())

	res, err := svc.GetSettings(context.Background())
	require.NoError(t, err)

	assert.True(t, res.AIEnabled)
	assert.False(t, res.AIAvailable)
}

func TestLookupPostalCode_CachesResult(t *testing.T) {
	f := newSettingsFixture(t)
	ctx := context.Background()

	addr, err := f.svc.LookupPostalCode(ctx, "01310-100")
	require.NoError(t, err)
	assert.Equal(t, "Avenida Paulista", addr.Street)
	assert.Contains(t, f.cache.data, "postal:01310100")

	f.provider.ShouldFail = true
	cached, err := f.svc.LookupPostalCode(ctx, "01310100")
	require.NoError(t, err)
	assert.Equal(t, "São Paulo", cached.City)
}

func TestLookupPostalCode_Errors(t *testing.T) {
	f := newSettingsFixture(t)
	ctx := context.Background()

	_, err := f.svc.LookupPostalCode(ctx, "0131")
	var invalid *apperrors.InvalidInputError
	assert.True(t, errors.As(err, &invalid))

	_, err = f.svc.LookupPostalCode(ctx, "99999-999")
	assert.ErrorIs(t, err, apperrors.ErrPostalCodeNotFound)

	f.provider.ShouldFail = true
	_, err = f.svc.LookupPostalCode(ctx, "20040-020")
	assert.ErrorIs(t, err, apperrors.ErrPostalLookupFailed)
}

func TestLookupPostalCode_NoActiveProvider(t *testing.T) {
	svc := NewSettingsService(&fakeSettingsRepo{}, integrations.NewRegistry(), nil, false, time.Hour, zap.NewNop())

	_, err := svc.LookupPostalCode(context.Background(), "01310100")

	assert.ErrorIs(t, err, apperrors.ErrPostalLookupFailed)
}

func TestApplyPostalCode(t *testing.T) {
	f := newSettingsFixture(t)

	res, err := f.svc.ApplyPostalCode(context.Background(), dto.ApplyPostalCodeDTO{PostalCode: "01310-100"})
	require.NoError(t, err)

	assert.Equal(t, "01310100", res.PostalCode)
	assert.Equal(t, "Avenida Paulista", res.Street)
	assert.Equal(t, "Bela Vista", res.District)
	assert.Equal(t, "SP", res.State)
	assert.Equal(t, 1, f.repo.updates)
}

func TestAIEnabled_FalseOnReadError(t *testing.T) {
	f := newSettingsFixture(t)
	assert.True(t, f.svc.AIEnabled(context.Background()))

	f.repo.err = errors.New("connection refused")

	assert.False(t, f.svc.AIEnabled(context.Background()))
}

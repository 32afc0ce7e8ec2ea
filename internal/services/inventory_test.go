package services

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"cmms-system/internal/dto"
	"cmms-system/internal/entities"
	"cmms-system/internal/events"
	apperrors "cmms-system/pkg/errors"
	"cmms-system/pkg/utils"
	"cmms-system/pkg/validation"
)

type inventoryFixture struct {
	svc   InventoryServiceInterface
	parts *fakePartRepo
	bus   *fakePublisher
}

func newInventoryFixture() *inventoryFixture {
	f := &inventoryFixture{
		parts: newFakePartRepo(
			entities.SparePart{ID: 11, SKU: "BRG-6205", Name: "Подшипник", Category: "Механика", Quantity: 10, MinLevel: 2, UnitCost: 12.5},
			entities.SparePart{ID: 12, SKU: "SEAL-40", Name: "Сальник", Quantity: 1, MinLevel: 1, UnitCost: 4},
		),
		bus: &fakePublisher{},
	}
	f.svc = NewInventoryService(&fakeTxManager{}, f.parts, validation.New(), f.bus, zap.NewNop())
	return f
}

func workbook(t *testing.T, rows ...[]interface{}) *bytes.Buffer {
	t.Helper()
	x := excelize.NewFile()
	defer x.Close()
	for i := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, x.SetSheetRow("Sheet1", cell, &rows[i]))
	}
	buf, err := x.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

func TestCreatePart_RecordsInitialStock(t *testing.T) {
	f := newInventoryFixture()
	ctx := utils.WithUser(context.Background(), 2, "manager")

	res, err := f.svc.CreatePart(ctx, dto.CreatePartDTO{SKU: " flt-10 ", Name: "Фильтр", Quantity: 4, MinLevel: 5, UnitCost: 2.5})
	require.NoError(t, err)

	assert.Equal(t, "FLT-10", res.SKU)
	assert.Equal(t, 10.0, res.StockValue)
	assert.True(t, res.LowStock)
	assert.Equal(t, 11, res.SuggestedQuantity)
	require.Len(t, f.parts.movements, 1)
	assert.Equal(t, 4, f.parts.movements[0].Delta)
	require.NotNil(t, f.parts.movements[0].CreatedBy)
	assert.Equal(t, uint64(2), *f.parts.movements[0].CreatedBy)
}

func TestCreatePart_DuplicateSKU(t *testing.T) {
	f := newInventoryFixture()

	_, err := f.svc.CreatePart(context.Background(), dto.CreatePartDTO{SKU: "BRG-6205", Name: "Дубль"})

	assert.ErrorIs(t, err, apperrors.ErrConflict)
	assert.Empty(t, f.parts.movements)
}

func TestAdjustStock(t *testing.T) {
	f := newInventoryFixture()

	res, err := f.svc.AdjustStock(context.Background(), 11, dto.AdjustStockDTO{Delta: -4, Reason: "Инвентаризация"})
	require.NoError(t, err)

	assert.Equal(t, 6, res.Quantity)
	require.Len(t, f.parts.movements, 1)
	assert.Equal(t, 6, f.parts.movements[0].QuantityAfter)
	assert.Equal(t, []string{events.StockChangedEvent}, f.bus.names())
}

func TestAdjustStock_CannotGoNegative(t *testing.T) {
	f := newInventoryFixture()

	_, err := f.svc.AdjustStock(context.Background(), 12, dto.AdjustStockDTO{Delta: -2, Reason: "Списание"})

	assert.ErrorIs(t, err, apperrors.ErrInsufficientStock)
	assert.Equal(t, 1, f.parts.parts[12].Quantity)
	assert.Empty(t, f.bus.events)
}

func TestGetLowStock(t *testing.T) {
	f := newInventoryFixture()

	res, err := f.svc.GetLowStock(context.Background())
	require.NoError(t, err)

	require.Len(t, res, 1)
	assert.Equal(t, "SEAL-40", res[0].SKU)
	assert.Equal(t, 2, res[0].SuggestedQuantity)
}

func TestExportParts(t *testing.T) {
	f := newInventoryFixture()

	buf, err := f.svc.ExportParts(context.Background())
	require.NoError(t, err)

	x, err := excelize.OpenReader(buf)
	require.NoError(t, err)
	defer x.Close()
	rows, err := x.GetRows("Склад")
	require.NoError(t, err)

	require.Len(t, rows, 3)
	assert.Equal(t, "sku", rows[0][0])
	assert.Equal(t, "BRG-6205", rows[1][0])
	assert.Equal(t, "SEAL-40", rows[2][0])
	assert.Equal(t, "да", rows[2][8])
}

func TestImportParts_UpsertsBySKU(t *testing.T) {
	f := newInventoryFixture()
	file := workbook(t,
		[]interface{}{"Артикул", "Наименование", "Количество", "Цена"},
		[]interface{}{"brg-6205", "Подшипник 6205", 15, "13,5"},
		[]interface{}{"NEW-1", "Ремень", 3, 7},
		[]interface{}{"", ""},
		[]interface{}{"BAD-2", "Болт", "много"},
		[]interface{}{"", "Без артикула", 1},
	)

	res, err := f.svc.ImportParts(context.Background(), file)
	require.NoError(t, err)

	assert.Equal(t, 1, res.Created)
	assert.Equal(t, 1, res.Updated)
	assert.Equal(t, 2, res.Skipped)
	require.Len(t, res.Errors, 2)
	assert.Contains(t, res.Errors[0], "много")

	bearing := f.parts.parts[11]
	assert.Equal(t, "Подшипник 6205", bearing.Name)
	assert.Equal(t, 15, bearing.Quantity)
	assert.Equal(t, 13.5, bearing.UnitCost)
	assert.Equal(t, "Механика", bearing.Category)
	assert.Equal(t, 2, bearing.MinLevel)

	require.Len(t, f.parts.movements, 2)
	assert.Equal(t, 5, f.parts.movements[0].Delta)
	assert.Equal(t, 3, f.parts.movements[1].Delta)
	assert.Equal(t, []string{events.StockChangedEvent}, f.bus.names())
}

func TestImportParts_RejectsBadFiles(t *testing.T) {
	f := newInventoryFixture()

	_, err := f.svc.ImportParts(context.Background(), bytes.NewReader([]byte("не xlsx")))
	assert.ErrorIs(t, err, apperrors.ErrInvalidImportFile)

	_, err = f.svc.ImportParts(context.Background(), workbook(t, []interface{}{"Наименование"}, []interface{}{"Болт"}))
	assert.ErrorIs(t, err, apperrors.ErrInvalidImportFile)
}

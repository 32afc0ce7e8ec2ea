package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"cmms-system/internal/dto"
	"cmms-system/internal/entities"
	"cmms-system/internal/events"
	apperrors "cmms-system/pkg/errors"
)

type purchasingFixture struct {
	svc   *PurchasingService
	parts *fakePartRepo
	reqs  *fakeRequisitionRepo
	bus   *fakePublisher
}

func newPurchasingFixture() *purchasingFixture {
	f := &purchasingFixture{
		parts: newFakePartRepo(
			entities.SparePart{ID: 11, SKU: "BRG-6205", Name: "Подшипник", Quantity: 1, MinLevel: 2, UnitCost: 12.5},
			entities.SparePart{ID: 12, SKU: "SEAL-40", Name: "Сальник", Quantity: 0, MinLevel: 4, UnitCost: 4},
			entities.SparePart{ID: 13, SKU: "FLT-10", Name: "Фильтр", Quantity: 50, MinLevel: 5, UnitCost: 9.9},
		),
		reqs: newFakeRequisitionRepo(),
		bus:  &fakePublisher{},
	}
	svc := NewPurchasingService(&fakeTxManager{}, f.parts, f.reqs, f.bus, zap.NewNop())
	f.svc = svc.(*PurchasingService)
	f.svc.now = clock
	return f
}

func TestCanAdvanceRequisition(t *testing.T) {
	assert.True(t, CanAdvanceRequisition("draft", "submitted"))
	assert.True(t, CanAdvanceRequisition("ordered", "received"))
	assert.True(t, CanAdvanceRequisition("approved", "cancelled"))
	assert.False(t, CanAdvanceRequisition("draft", "approved"))
	assert.False(t, CanAdvanceRequisition("submitted", "draft"))
	assert.False(t, CanAdvanceRequisition("received", "cancelled"))
	assert.False(t, CanAdvanceRequisition("cancelled", "draft"))
}

func TestGetRestockSuggestion(t *testing.T) {
	f := newPurchasingFixture()

	batch, err := f.svc.GetRestockSuggestion(context.Background(), nil)
	require.NoError(t, err)

	require.Len(t, batch.Items, 2)
	assert.Equal(t, "BRG-6205", batch.Items[0].SKU)
	assert.Equal(t, 5, batch.Items[0].SuggestedQuantity)
	assert.Equal(t, 62.5, batch.Items[0].LineCost)
	assert.Equal(t, 12, batch.Items[1].SuggestedQuantity)
	assert.Equal(t, 110.5, batch.TotalCost)
}

func TestCreateRequisition_FromSuggestion(t *testing.T) {
	f := newPurchasingFixture()

	res, err := f.svc.CreateRequisition(context.Background(), dto.CreateRequisitionDTO{
		FromSuggestion: true, PartIDs: []uint64{12}, Notes: "срочно",
	})
	require.NoError(t, err)

	assert.Equal(t, entities.RequisitionDraft, res.Status)
	assert.True(t, strings.HasPrefix(res.Code, "RC-20240315-"), res.Code)
	require.Len(t, res.Items, 1)
	assert.Equal(t, uint64(12), res.Items[0].PartID)
	assert.Equal(t, 12, res.Items[0].Quantity)
	assert.Equal(t, 48.0, res.TotalCost)
	assert.Equal(t, "срочно", res.Notes)
}

func TestCreateRequisition_ExplicitItemsWithCostOverride(t *testing.T) {
	f := newPurchasingFixture()
	price := 8.0

	res, err := f.svc.CreateRequisition(context.Background(), dto.CreateRequisitionDTO{
		Items: []dto.RequisitionItemInputDTO{
			{PartID: 13, Quantity: 10},
			{PartID: 11, Quantity: 4, UnitCost: &price},
		},
	})
	require.NoError(t, err)

	require.Len(t, res.Items, 2)
	assert.Equal(t, 9.9, res.Items[0].UnitCost)
	assert.Equal(t, 8.0, res.Items[1].UnitCost)
	assert.Equal(t, 131.0, res.TotalCost)
}

func TestCreateRequisition_NothingToRestock(t *testing.T) {
	f := newPurchasingFixture()

	_, err := f.svc.CreateRequisition(context.Background(), dto.CreateRequisitionDTO{
		FromSuggestion: true, PartIDs: []uint64{13},
	})

	assert.ErrorIs(t, err, apperrors.ErrNothingToRestock)
	assert.Empty(t, f.reqs.reqs)
}

func TestCreateRequisition_UnknownPart(t *testing.T) {
	f := newPurchasingFixture()

	_, err := f.svc.CreateRequisition(context.Background(), dto.CreateRequisitionDTO{
		Items: []dto.RequisitionItemInputDTO{{PartID: 404, Quantity: 1}},
	})

	var invalid *apperrors.InvalidInputError
	assert.True(t, errors.As(err, &invalid))
}

func TestChangeStatus_ReceiveIncrementsStock(t *testing.T) {
	f := newPurchasingFixture()
	ctx := context.Background()
	created, err := f.svc.CreateRequisition(ctx, dto.CreateRequisitionDTO{FromSuggestion: true})
	require.NoError(t, err)

	for _, status := range []string{"submitted", "approved", "ordered"} {
		_, err := f.svc.ChangeStatus(ctx, created.ID, dto.ChangeRequisitionStatusDTO{Status: status})
		require.NoError(t, err, status)
	}
	assert.Empty(t, f.parts.movements)

	res, err := f.svc.ChangeStatus(ctx, created.ID, dto.ChangeRequisitionStatusDTO{Status: entities.RequisitionReceived})
	require.NoError(t, err)

	assert.Equal(t, entities.RequisitionReceived, res.Status)
	assert.Equal(t, 6, f.parts.parts[11].Quantity)
	assert.Equal(t, 12, f.parts.parts[12].Quantity)
	require.Len(t, f.parts.movements, 2)
	require.NotNil(t, f.parts.movements[0].RequisitionID)
	assert.Equal(t, created.ID, *f.parts.movements[0].RequisitionID)
	assert.Equal(t, []string{events.StockChangedEvent}, f.bus.names())
}

func TestChangeStatus_SkippingStepIsRejected(t *testing.T) {
	f := newPurchasingFixture()
	ctx := context.Background()
	created, err := f.svc.CreateRequisition(ctx, dto.CreateRequisitionDTO{FromSuggestion: true})
	require.NoError(t, err)

	_, err = f.svc.ChangeStatus(ctx, created.ID, dto.ChangeRequisitionStatusDTO{Status: entities.RequisitionReceived})

	assert.ErrorIs(t, err, apperrors.ErrInvalidTransition)
	assert.Equal(t, 1, f.parts.parts[11].Quantity)
}

func TestChangeStatus_TerminalRequisitionIsImmutable(t *testing.T) {
	f := newPurchasingFixture()
	ctx := context.Background()
	created, err := f.svc.CreateRequisition(ctx, dto.CreateRequisitionDTO{FromSuggestion: true})
	require.NoError(t, err)
	_, err = f.svc.ChangeStatus(ctx, created.ID, dto.ChangeRequisitionStatusDTO{Status: entities.RequisitionCancelled})
	require.NoError(t, err)

	_, err = f.svc.ChangeStatus(ctx, created.ID, dto.ChangeRequisitionStatusDTO{Status: entities.RequisitionSubmitted})

	assert.ErrorIs(t, err, apperrors.ErrRequisitionImmutable)
	assert.Empty(t, f.bus.events)
}

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
	"cmms-system/pkg/utils"
)

type ticketFixture struct {
	svc     *TicketService
	tickets *fakeTicketRepo
	assets  *fakeAssetRepo
	plans   *fakePlanRepo
	parts   *fakePartRepo
	bus     *fakePublisher
	ai      *fakeAI
}

func newTicketFixture(tickets ...entities.Ticket) *ticketFixture {
	f := &ticketFixture{
		tickets: newFakeTicketRepo(tickets...),
		assets: newFakeAssetRepo(
			entities.Asset{ID: 1, Code: "PMP-01", Name: "Насос", Status: entities.AssetStatusOperational, Criticality: "high"},
			entities.Asset{ID: 2, Code: "CMP-01", Name: "Компрессор", Status: entities.AssetStatusMaintenance, Criticality: "medium"},
		),
		plans: newFakePlanRepo(entities.PreventivePlan{
			ID: 9, Name: "Смазка", AssetID: 1, FrequencyValue: 30, FrequencyUnit: "days", Status: entities.PlanStatusActive,
		}),
		parts: newFakePartRepo(
			entities.SparePart{ID: 11, SKU: "BRG-6205", Name: "Подшипник", Quantity: 10, MinLevel: 2, UnitCost: 12.5},
			entities.SparePart{ID: 12, SKU: "SEAL-40", Name: "Сальник", Quantity: 1, MinLevel: 1, UnitCost: 4},
		),
		bus: &fakePublisher{},
		ai:  &fakeAI{text: "Проверьте подшипник"},
	}
	techs := newFakeTechnicianRepo(entities.Technician{ID: 5, Name: "Иванов", HourlyRate: 40, Active: true})
	svc := NewTicketService(&fakeTxManager{}, f.tickets, f.assets, techs, f.plans, f.parts, f.ai, f.bus, zap.NewNop())
	f.svc = svc.(*TicketService)
	f.svc.now = clock
	return f
}

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to string
		ok       bool
	}{
		{"open", "in_progress", true},
		{"open", "cancelled", true},
		{"open", "resolved", false},
		{"in_progress", "waiting_parts", true},
		{"waiting_parts", "in_progress", true},
		{"in_progress", "resolved", true},
		{"resolved", "closed", true},
		{"resolved", "in_progress", true},
		{"closed", "open", false},
		{"cancelled", "in_progress", false},
		{"open", "open", false},
	}
	for _, c := range cases {
		assert.Equal(t, c.ok, CanTransition(c.from, c.to), "%s -> %s", c.from, c.to)
	}
}

func TestCreateTicket_DefaultsAndCode(t *testing.T) {
	f := newTicketFixture()
	ctx := utils.WithUser(context.Background(), 3, "manager")

	res, err := f.svc.CreateTicket(ctx, dto.CreateTicketDTO{Title: "  Течь масла ", AssetID: 1})
	require.NoError(t, err)

	assert.Equal(t, "Течь масла", res.Title)
	assert.Equal(t, entities.TicketTypeCorrective, res.Type)
	assert.Equal(t, entities.PriorityMedium, res.Priority)
	assert.Equal(t, entities.TicketStatusOpen, res.Status)
	assert.True(t, strings.HasPrefix(res.Code, "OS-20240315-"), res.Code)
	assert.Len(t, res.Code, len("OS-20240315-")+6)

	stored := f.tickets.tickets[res.ID]
	require.NotNil(t, stored.CreatedBy)
	assert.Equal(t, uint64(3), *stored.CreatedBy)
	assert.Equal(t, []string{events.TicketStatusChangedEvent}, f.bus.names())
}

func TestCreateTicket_UnknownAsset(t *testing.T) {
	f := newTicketFixture()

	_, err := f.svc.CreateTicket(context.Background(), dto.CreateTicketDTO{Title: "x", AssetID: 404})

	var invalid *apperrors.InvalidInputError
	assert.True(t, errors.As(err, &invalid))
}

func TestChangeStatus_RejectsInvalidTransition(t *testing.T) {
	f := newTicketFixture(entities.Ticket{ID: 1, AssetID: 1, Status: entities.TicketStatusOpen})

	_, err := f.svc.ChangeStatus(context.Background(), 1, dto.ChangeTicketStatusDTO{Status: entities.TicketStatusClosed})

	assert.ErrorIs(t, err, apperrors.ErrInvalidTransition)
	assert.Equal(t, entities.TicketStatusOpen, f.tickets.tickets[1].Status)
	assert.Empty(t, f.bus.events)
}

func TestChangeStatus_CriticalCorrectivePutsAssetInMaintenance(t *testing.T) {
	f := newTicketFixture(entities.Ticket{
		ID: 1, AssetID: 1, Status: entities.TicketStatusOpen,
		Type: entities.TicketTypeCorrective, Priority: entities.PriorityCritical,
	})

	res, err := f.svc.ChangeStatus(context.Background(), 1, dto.ChangeTicketStatusDTO{Status: entities.TicketStatusInProgress})
	require.NoError(t, err)

	assert.Equal(t, entities.TicketStatusInProgress, res.Status)
	assert.NotEmpty(t, res.StartedAt)
	assert.Equal(t, entities.AssetStatusMaintenance, f.assets.assets[1].Status)
}

func TestChangeStatus_ResolveComputesLaborCostAndRestoresAsset(t *testing.T) {
	f := newTicketFixture(entities.Ticket{
		ID: 1, AssetID: 2, TechnicianID: ptrID(5), Status: entities.TicketStatusInProgress,
		Type: entities.TicketTypeCorrective, Priority: entities.PriorityHigh,
	})
	hours := 2.5

	res, err := f.svc.ChangeStatus(context.Background(), 1, dto.ChangeTicketStatusDTO{
		Status: entities.TicketStatusResolved, LaborHours: &hours, Solution: "Заменён подшипник",
	})
	require.NoError(t, err)

	assert.Equal(t, 100.0, res.LaborCost)
	assert.Equal(t, "Заменён подшипник", res.Solution)
	assert.NotEmpty(t, res.ResolvedAt)
	assert.Equal(t, entities.AssetStatusOperational, f.assets.assets[2].Status)
}

func TestChangeStatus_ResolveKeepsAssetWhenOtherTicketsOpen(t *testing.T) {
	f := newTicketFixture(entities.Ticket{ID: 1, AssetID: 2, Status: entities.TicketStatusInProgress})
	f.tickets.openCount = 1

	_, err := f.svc.ChangeStatus(context.Background(), 1, dto.ChangeTicketStatusDTO{Status: entities.TicketStatusResolved})
	require.NoError(t, err)

	assert.Equal(t, entities.AssetStatusMaintenance, f.assets.assets[2].Status)
	assert.Empty(t, f.assets.statusUpdates)
}

func TestChangeStatus_ClosingPlanTicketMarksExecution(t *testing.T) {
	f := newTicketFixture(entities.Ticket{
		ID: 1, AssetID: 1, PreventivePlanID: ptrID(9), Status: entities.TicketStatusResolved,
		Type: entities.TicketTypePreventive,
	})

	res, err := f.svc.ChangeStatus(context.Background(), 1, dto.ChangeTicketStatusDTO{Status: entities.TicketStatusClosed})
	require.NoError(t, err)

	assert.NotEmpty(t, res.ClosedAt)
	assert.Equal(t, fixedNow, f.plans.lastExecution[9])

	require.Len(t, f.bus.events, 1)
	ev := f.bus.events[0].(events.TicketStatusChanged)
	assert.Equal(t, entities.TicketStatusResolved, ev.From)
	assert.Equal(t, entities.TicketStatusClosed, ev.To)
}

func TestConsumeParts_DecrementsStockAndAddsCost(t *testing.T) {
	f := newTicketFixture(entities.Ticket{ID: 1, Code: "OS-1", AssetID: 1, Status: entities.TicketStatusInProgress})

	res, err := f.svc.ConsumeParts(context.Background(), 1, dto.ConsumePartsDTO{
		Items: []dto.ConsumePartItemDTO{{PartID: 11, Quantity: 3}, {PartID: 12, Quantity: 1}},
	})
	require.NoError(t, err)

	assert.Equal(t, 7, f.parts.parts[11].Quantity)
	assert.Equal(t, 0, f.parts.parts[12].Quantity)
	assert.Equal(t, 41.5, res.PartsCost)
	assert.Len(t, res.Parts, 2)

	require.Len(t, f.parts.movements, 2)
	assert.Equal(t, -3, f.parts.movements[0].Delta)
	assert.Equal(t, 7, f.parts.movements[0].QuantityAfter)
	assert.Equal(t, []string{events.StockChangedEvent}, f.bus.names())
}

func TestConsumeParts_InsufficientStock(t *testing.T) {
	f := newTicketFixture(entities.Ticket{ID: 1, Code: "OS-1", AssetID: 1, Status: entities.TicketStatusOpen})

	_, err := f.svc.ConsumeParts(context.Background(), 1, dto.ConsumePartsDTO{
		Items: []dto.ConsumePartItemDTO{{PartID: 12, Quantity: 5}},
	})

	assert.ErrorIs(t, err, apperrors.ErrInsufficientStock)
	assert.Contains(t, err.Error(), "SEAL-40")
	assert.Equal(t, 1, f.parts.parts[12].Quantity)
	assert.Empty(t, f.bus.events)
}

func TestConsumeParts_ClosedTicket(t *testing.T) {
	f := newTicketFixture(entities.Ticket{ID: 1, Code: "OS-1", AssetID: 1, Status: entities.TicketStatusClosed})

	_, err := f.svc.ConsumeParts(context.Background(), 1, dto.ConsumePartsDTO{
		Items: []dto.ConsumePartItemDTO{{PartID: 11, Quantity: 1}},
	})

	assert.ErrorIs(t, err, apperrors.ErrInvalidTransition)
	assert.Equal(t, 10, f.parts.parts[11].Quantity)
}

func TestDiagnose_PromptContainsTicketAndAsset(t *testing.T) {
	f := newTicketFixture(entities.Ticket{ID: 1, Code: "OS-1", Title: "Вибрация", AssetID: 1, Status: entities.TicketStatusOpen})

	res, err := f.svc.Diagnose(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, "Проверьте подшипник", res.Text)
	require.Len(t, f.ai.prompts, 1)
	assert.Contains(t, f.ai.prompts[0], "Вибрация")
	assert.Contains(t, f.ai.prompts[0], "PMP-01")
}

func TestDiagnose_AIUnavailable(t *testing.T) {
	f := newTicketFixture(entities.Ticket{ID: 1, AssetID: 1, Status: entities.TicketStatusOpen})
	f.ai.err = apperrors.ErrAIUnavailable

	_, err := f.svc.Diagnose(context.Background(), 1)

	assert.ErrorIs(t, err, apperrors.ErrAIUnavailable)
}

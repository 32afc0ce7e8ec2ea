package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"cmms-system/internal/dto"
	"cmms-system/internal/entities"
	"cmms-system/internal/events"
	"cmms-system/internal/maintenance"
	"cmms-system/internal/repositories"
	apperrors "cmms-system/pkg/errors"
	"cmms-system/pkg/types"
	"cmms-system/pkg/utils"
)

const RequisitionCodePrefix = "RC"

// requisitionFlow - следующий статус в прямом потоке закупки.
var requisitionFlow = map[string]string{
	entities.RequisitionDraft:     entities.RequisitionSubmitted,
	entities.RequisitionSubmitted: entities.RequisitionApproved,
	entities.RequisitionApproved:  entities.RequisitionOrdered,
	entities.RequisitionOrdered:   entities.RequisitionReceived,
}

func isTerminalRequisition(status string) bool {
	return status == entities.RequisitionReceived || status == entities.RequisitionCancelled
}

// CanAdvanceRequisition: только на шаг вперёд либо отмена из любого незавершённого статуса.
func CanAdvanceRequisition(from, to string) bool {
	if isTerminalRequisition(from) {
		return false
	}
	return to == entities.RequisitionCancelled || requisitionFlow[from] == to
}

type PurchasingServiceInterface interface {
	GetRestockSuggestion(ctx context.Context, partIDs []uint64) (*maintenance.RestockBatch, error)
	GetRequisitions(ctx context.Context, filter types.Filter) ([]dto.RequisitionDTO, uint64, error)
	FindRequisition(ctx context.Context, id uint64) (*dto.RequisitionDTO, error)
	CreateRequisition(ctx context.Context, payload dto.CreateRequisitionDTO) (*dto.RequisitionDTO, error)
	ChangeStatus(ctx context.Context, id uint64, payload dto.ChangeRequisitionStatusDTO) (*dto.RequisitionDTO, error)
}

type PurchasingService struct {
	txManager repositories.TxManagerInterface
	partRepo  repositories.SparePartRepositoryInterface
	reqRepo   repositories.RequisitionRepositoryInterface
	bus       EventPublisher
	logger    *zap.Logger
	now       func() time.Time
}

func NewPurchasingService(
	txManager repositories.TxManagerInterface,
	partRepo repositories.SparePartRepositoryInterface,
	reqRepo repositories.RequisitionRepositoryInterface,
	bus EventPublisher,
	logger *zap.Logger,
) PurchasingServiceInterface {
	return &PurchasingService{
		txManager: txManager,
		partRepo:  partRepo,
		reqRepo:   reqRepo,
		bus:       bus,
		logger:    logger,
		now:       time.Now,
	}
}

// GetRestockSuggestion - пакет пополнения по всем позициям ниже минимума или по выбранным part_ids.
func (s *PurchasingService) GetRestockSuggestion(ctx context.Context, partIDs []uint64) (*maintenance.RestockBatch, error) {
	parts, err := s.partRepo.GetLowStockParts(ctx, partIDs)
	if err != nil {
		s.logger.Error("Не удалось получить позиции ниже минимума", zap.Error(err))
		return nil, err
	}
	levels := make([]maintenance.StockLevel, 0, len(parts))
	for _, p := range parts {
		levels = append(levels, maintenance.StockLevel{
			PartID:   p.ID,
			SKU:      p.SKU,
			Name:     p.Name,
			Quantity: p.Quantity,
			MinLevel: p.MinLevel,
			UnitCost: p.UnitCost,
			Supplier: p.Supplier,
		})
	}
	batch := maintenance.BuildRestockBatch(levels)
	return &batch, nil
}

func (s *PurchasingService) GetRequisitions(ctx context.Context, filter types.Filter) ([]dto.RequisitionDTO, uint64, error) {
	list, total, err := s.reqRepo.GetRequisitions(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	res := make([]dto.RequisitionDTO, 0, len(list))
	for i := range list {
		res = append(res, requisitionToDTO(&list[i]))
	}
	return res, total, nil
}

func (s *PurchasingService) FindRequisition(ctx context.Context, id uint64) (*dto.RequisitionDTO, error) {
	req, err := s.reqRepo.FindRequisition(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	res := requisitionToDTO(req)
	return &res, nil
}

func (s *PurchasingService) CreateRequisition(ctx context.Context, payload dto.CreateRequisitionDTO) (*dto.RequisitionDTO, error) {
	var items []entities.RequisitionItem
	var err error
	if payload.FromSuggestion {
		items, err = s.itemsFromSuggestion(ctx, payload.PartIDs)
	} else {
		items, err = s.itemsFromInput(ctx, payload.Items)
	}
	if err != nil {
		return nil, err
	}

	quantities := make([]int, len(items))
	costs := make([]float64, len(items))
	for i, it := range items {
		quantities[i], costs[i] = it.Quantity, it.UnitCost
	}

	req := &entities.Requisition{
		Code:      newDocumentCode(RequisitionCodePrefix, s.now()),
		Status:    entities.RequisitionDraft,
		TotalCost: utils.RoundTo(maintenance.BatchTotal(quantities, costs), 2),
		Notes:     payload.Notes,
		CreatedBy: actorID(ctx),
		Items:     items,
	}

	var id uint64
	err = s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		id, err = s.reqRepo.CreateRequisition(ctx, tx, req)
		return err
	})
	if err != nil {
		s.logger.Error("Ошибка при создании заявки на закупку", zap.Error(err))
		return nil, err
	}
	s.logger.Info("Заявка на закупку создана", zap.Uint64("id", id), zap.String("code", req.Code),
		zap.Int("items", len(items)), zap.Float64("total_cost", req.TotalCost))
	return s.FindRequisition(ctx, id)
}

func (s *PurchasingService) itemsFromSuggestion(ctx context.Context, partIDs []uint64) ([]entities.RequisitionItem, error) {
	batch, err := s.GetRestockSuggestion(ctx, partIDs)
	if err != nil {
		return nil, err
	}
	if len(batch.Items) == 0 {
		return nil, apperrors.ErrNothingToRestock
	}
	items := make([]entities.RequisitionItem, 0, len(batch.Items))
	for _, it := range batch.Items {
		items = append(items, entities.RequisitionItem{
			PartID: it.PartID, Quantity: it.SuggestedQuantity, UnitCost: it.UnitCost, SKU: it.SKU, Name: it.Name,
		})
	}
	return items, nil
}

func (s *PurchasingService) itemsFromInput(ctx context.Context, input []dto.RequisitionItemInputDTO) ([]entities.RequisitionItem, error) {
	if len(input) == 0 {
		return nil, apperrors.NewInvalidInputError("укажите позиции закупки или from_suggestion")
	}
	items := make([]entities.RequisitionItem, 0, len(input))
	for _, in := range input {
		part, err := s.partRepo.FindPart(ctx, nil, in.PartID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return nil, apperrors.NewInvalidInputError("запчасть %d не найдена", in.PartID)
			}
			return nil, err
		}
		cost := part.UnitCost
		if in.UnitCost != nil {
			cost = *in.UnitCost
		}
		items = append(items, entities.RequisitionItem{
			PartID: part.ID, Quantity: in.Quantity, UnitCost: cost, SKU: part.SKU, Name: part.Name,
		})
	}
	return items, nil
}

// ChangeStatus ведёт закупку по статусам; при получении товара остатки пополняются в той же транзакции.
func (s *PurchasingService) ChangeStatus(ctx context.Context, id uint64, payload dto.ChangeRequisitionStatusDTO) (*dto.RequisitionDTO, error) {
	var received []uint64
	var from string
	err := s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		req, err := s.reqRepo.FindRequisition(ctx, tx, id)
		if err != nil {
			return err
		}
		from = req.Status
		if isTerminalRequisition(req.Status) {
			return fmt.Errorf("%w: %s", apperrors.ErrRequisitionImmutable, req.Status)
		}
		if !CanAdvanceRequisition(req.Status, payload.Status) {
			return fmt.Errorf("%w: %s -> %s", apperrors.ErrInvalidTransition, req.Status, payload.Status)
		}

		if payload.Status == entities.RequisitionReceived {
			reqID := req.ID
			for _, it := range req.Items {
				after, err := s.partRepo.AdjustQuantity(ctx, tx, it.PartID, it.Quantity)
				if err != nil {
					return fmt.Errorf("не удалось оприходовать %s: %w", it.SKU, err)
				}
				if err := s.partRepo.AddMovement(ctx, tx, &entities.StockMovement{
					PartID:        it.PartID,
					Delta:         it.Quantity,
					QuantityAfter: after,
					Reason:        "Поступление по закупке " + req.Code,
					RequisitionID: &reqID,
					CreatedBy:     actorID(ctx),
				}); err != nil {
					return err
				}
				received = append(received, it.PartID)
			}
		}
		return s.reqRepo.UpdateStatus(ctx, tx, id, payload.Status)
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrInvalidTransition) || errors.Is(err, apperrors.ErrRequisitionImmutable) {
			s.logger.Warn("Недопустимая смена статуса закупки", zap.Uint64("id", id), zap.Error(err))
		}
		return nil, err
	}

	s.logger.Info("Статус закупки изменён", zap.Uint64("id", id),
		zap.String("from", from), zap.String("to", payload.Status))
	if len(received) > 0 {
		s.bus.Publish(ctx, events.StockChanged{PartIDs: received, Reason: "receive"})
	}
	return s.FindRequisition(ctx, id)
}

package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"cmms-system/internal/dto"
	"cmms-system/internal/entities"
	"cmms-system/internal/events"
	"cmms-system/internal/repositories"
	"cmms-system/pkg/ai"
	apperrors "cmms-system/pkg/errors"
	"cmms-system/pkg/types"
	"cmms-system/pkg/utils"
)

const TicketCodePrefix = "OS"

var ticketTransitions = map[string][]string{
	entities.TicketStatusOpen: {
		entities.TicketStatusInProgress, entities.TicketStatusWaitingParts, entities.TicketStatusCancelled,
	},
	entities.TicketStatusInProgress: {
		entities.TicketStatusWaitingParts, entities.TicketStatusResolved, entities.TicketStatusCancelled,
	},
	entities.TicketStatusWaitingParts: {
		entities.TicketStatusInProgress, entities.TicketStatusCancelled,
	},
	entities.TicketStatusResolved: {
		entities.TicketStatusClosed, entities.TicketStatusInProgress,
	},
}

// CanTransition сообщает, разрешён ли переход заявки из from в to.
func CanTransition(from, to string) bool {
	for _, s := range ticketTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

func isTerminalTicket(status string) bool {
	return status == entities.TicketStatusClosed || status == entities.TicketStatusCancelled
}

type TicketServiceInterface interface {
	GetTickets(ctx context.Context, filter types.Filter) ([]dto.TicketDTO, uint64, error)
	FindTicket(ctx context.Context, id uint64) (*dto.TicketDTO, error)
	CreateTicket(ctx context.Context, payload dto.CreateTicketDTO) (*dto.TicketDTO, error)
	UpdateTicket(ctx context.Context, id uint64, payload dto.UpdateTicketDTO) (*dto.TicketDTO, error)
	DeleteTicket(ctx context.Context, id uint64) error
	ChangeStatus(ctx context.Context, id uint64, payload dto.ChangeTicketStatusDTO) (*dto.TicketDTO, error)
	ConsumeParts(ctx context.Context, id uint64, payload dto.ConsumePartsDTO) (*dto.TicketDTO, error)
	Diagnose(ctx context.Context, id uint64) (*dto.AIResponseDTO, error)
}

type TicketService struct {
	txManager      repositories.TxManagerInterface
	ticketRepo     repositories.TicketRepositoryInterface
	assetRepo      repositories.AssetRepositoryInterface
	technicianRepo repositories.TechnicianRepositoryInterface
	planRepo       repositories.PreventivePlanRepositoryInterface
	partRepo       repositories.SparePartRepositoryInterface
	ai             ai.Client
	bus            EventPublisher
	logger         *zap.Logger
	now            func() time.Time
}

func NewTicketService(
	txManager repositories.TxManagerInterface,
	ticketRepo repositories.TicketRepositoryInterface,
	assetRepo repositories.AssetRepositoryInterface,
	technicianRepo repositories.TechnicianRepositoryInterface,
	planRepo repositories.PreventivePlanRepositoryInterface,
	partRepo repositories.SparePartRepositoryInterface,
	aiClient ai.Client,
	bus EventPublisher,
	logger *zap.Logger,
) TicketServiceInterface {
	return &TicketService{
		txManager:      txManager,
		ticketRepo:     ticketRepo,
		assetRepo:      assetRepo,
		technicianRepo: technicianRepo,
		planRepo:       planRepo,
		partRepo:       partRepo,
		ai:             aiClient,
		bus:            bus,
		logger:         logger,
		now:            time.Now,
	}
}

func (s *TicketService) GetTickets(ctx context.Context, filter types.Filter) ([]dto.TicketDTO, uint64, error) {
	tickets, total, err := s.ticketRepo.GetTickets(ctx, filter)
	if err != nil {
		s.logger.Error("Не удалось получить список заявок", zap.Error(err))
		return nil, 0, err
	}
	res := make([]dto.TicketDTO, 0, len(tickets))
	for i := range tickets {
		res = append(res, ticketToDTO(&tickets[i], nil))
	}
	return res, total, nil
}

func (s *TicketService) FindTicket(ctx context.Context, id uint64) (*dto.TicketDTO, error) {
	tk, err := s.ticketRepo.FindTicket(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	parts, err := s.ticketRepo.GetParts(ctx, id)
	if err != nil {
		return nil, err
	}
	res := ticketToDTO(tk, parts)
	return &res, nil
}

func (s *TicketService) ensureTechnician(ctx context.Context, id uint64) error {
	return ensureTechnician(ctx, s.technicianRepo, id)
}

func (s *TicketService) CreateTicket(ctx context.Context, payload dto.CreateTicketDTO) (*dto.TicketDTO, error) {
	if _, err := s.assetRepo.FindAsset(ctx, nil, payload.AssetID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewInvalidInputError("актив %d не найден", payload.AssetID)
		}
		return nil, err
	}
	if payload.TechnicianID != nil {
		if err := s.ensureTechnician(ctx, *payload.TechnicianID); err != nil {
			return nil, err
		}
	}

	now := s.now()
	tk := &entities.Ticket{
		Code:          newDocumentCode(TicketCodePrefix, now),
		Title:         strings.TrimSpace(payload.Title),
		Description:   payload.Description,
		AssetID:       payload.AssetID,
		TechnicianID:  payload.TechnicianID,
		Type:          payload.Type,
		Priority:      payload.Priority,
		Status:        entities.TicketStatusOpen,
		OpenedAt:      now,
		DowntimeHours: payload.DowntimeHours,
		CreatedBy:     actorID(ctx),
	}
	if tk.Type == "" {
		tk.Type = entities.TicketTypeCorrective
	}
	if tk.Priority == "" {
		tk.Priority = entities.PriorityMedium
	}

	id, err := s.ticketRepo.CreateTicket(ctx, nil, tk)
	if err != nil {
		s.logger.Error("Ошибка при создании заявки", zap.Error(err))
		return nil, err
	}
	s.logger.Info("Заявка создана", zap.Uint64("id", id), zap.String("code", tk.Code),
		zap.String("priority", tk.Priority))
	s.bus.Publish(ctx, events.TicketStatusChanged{
		TicketID: id, AssetID: tk.AssetID, To: tk.Status, ActorID: utils.SafeDeref(tk.CreatedBy),
	})
	return s.FindTicket(ctx, id)
}

func (s *TicketService) UpdateTicket(ctx context.Context, id uint64, payload dto.UpdateTicketDTO) (*dto.TicketDTO, error) {
	tk, err := s.ticketRepo.FindTicket(ctx, nil, id)
	if err != nil {
		return nil, err
	}

	if payload.Title.Valid {
		tk.Title = strings.TrimSpace(payload.Title.String)
	}
	if payload.Description.Valid {
		tk.Description = payload.Description.String
	}
	if payload.TechnicianID.Valid {
		if payload.TechnicianID.Uint64 == 0 {
			tk.TechnicianID = nil
		} else {
			if err := s.ensureTechnician(ctx, payload.TechnicianID.Uint64); err != nil {
				return nil, err
			}
			techID := payload.TechnicianID.Uint64
			tk.TechnicianID = &techID
		}
	}
	if payload.Type.Valid {
		tk.Type = payload.Type.String
	}
	if payload.Priority.Valid {
		tk.Priority = payload.Priority.String
	}
	if payload.DowntimeHours.Valid {
		tk.DowntimeHours = payload.DowntimeHours.Float64
	}
	if payload.LaborHours.Valid {
		tk.LaborHours = payload.LaborHours.Float64
	}
	if payload.Solution.Valid {
		tk.Solution = payload.Solution.String
	}

	if err := s.ticketRepo.UpdateTicket(ctx, nil, tk); err != nil {
		return nil, err
	}
	return s.FindTicket(ctx, id)
}

func (s *TicketService) DeleteTicket(ctx context.Context, id uint64) error {
	tk, err := s.ticketRepo.FindTicket(ctx, nil, id)
	if err != nil {
		return err
	}
	if err := s.ticketRepo.DeleteTicket(ctx, id); err != nil {
		return err
	}
	s.logger.Info("Заявка удалена", zap.Uint64("id", id), zap.String("code", tk.Code))
	s.bus.Publish(ctx, events.TicketStatusChanged{TicketID: id, AssetID: tk.AssetID, From: tk.Status})
	return nil
}

// ChangeStatus проводит заявку по таблице переходов и применяет побочные эффекты
// на актив и план в одной транзакции.
func (s *TicketService) ChangeStatus(ctx context.Context, id uint64, payload dto.ChangeTicketStatusDTO) (*dto.TicketDTO, error) {
	var from string
	var assetID uint64

	err := s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		tk, err := s.ticketRepo.FindTicket(ctx, tx, id)
		if err != nil {
			return err
		}
		from, assetID = tk.Status, tk.AssetID

		if !CanTransition(tk.Status, payload.Status) {
			return fmt.Errorf("%w: %s -> %s", apperrors.ErrInvalidTransition, tk.Status, payload.Status)
		}

		now := s.now()
		if payload.DowntimeHours != nil {
			tk.DowntimeHours = *payload.DowntimeHours
		}
		if payload.LaborHours != nil {
			tk.LaborHours = *payload.LaborHours
		}
		if payload.Solution != "" {
			tk.Solution = payload.Solution
		}

		switch payload.Status {
		case entities.TicketStatusInProgress:
			if tk.StartedAt == nil {
				tk.StartedAt = &now
			}
			tk.ResolvedAt = nil
			if tk.Type == entities.TicketTypeCorrective && tk.Priority == entities.PriorityCritical {
				if err := s.assetRepo.UpdateStatus(ctx, tx, tk.AssetID, entities.AssetStatusMaintenance); err != nil {
					return err
				}
			}
		case entities.TicketStatusResolved:
			tk.ResolvedAt = &now
			if err := s.applyLaborCost(ctx, tx, tk); err != nil {
				return err
			}
			if err := s.restoreAsset(ctx, tx, tk); err != nil {
				return err
			}
		case entities.TicketStatusClosed:
			tk.ClosedAt = &now
			if tk.PreventivePlanID != nil {
				if err := s.planRepo.SetLastExecution(ctx, tx, *tk.PreventivePlanID, now); err != nil {
					return fmt.Errorf("не удалось отметить выполнение плана: %w", err)
				}
			}
		case entities.TicketStatusCancelled:
			tk.ClosedAt = &now
			if err := s.restoreAsset(ctx, tx, tk); err != nil {
				return err
			}
		}

		tk.Status = payload.Status
		return s.ticketRepo.UpdateTicket(ctx, tx, tk)
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrInvalidTransition) {
			s.logger.Warn("Недопустимый переход статуса заявки", zap.Uint64("id", id), zap.Error(err))
		} else if !errors.Is(err, apperrors.ErrNotFound) {
			s.logger.Error("Ошибка смены статуса заявки", zap.Uint64("id", id), zap.Error(err))
		}
		return nil, err
	}

	s.logger.Info("Статус заявки изменён", zap.Uint64("id", id),
		zap.String("from", from), zap.String("to", payload.Status))
	actor, _ := utils.GetUserIDFromCtx(ctx)
	s.bus.Publish(ctx, events.TicketStatusChanged{
		TicketID: id, AssetID: assetID, From: from, To: payload.Status, ActorID: actor,
	})
	return s.FindTicket(ctx, id)
}

// applyLaborCost: стоимость работ = часы * ставка назначенного техника.
func (s *TicketService) applyLaborCost(ctx context.Context, tx pgx.Tx, tk *entities.Ticket) error {
	if tk.TechnicianID == nil {
		return nil
	}
	tech, err := s.technicianRepo.FindTechnician(ctx, tx, *tk.TechnicianID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			s.logger.Warn("Техник заявки не найден, стоимость работ не рассчитана",
				zap.Uint64("ticket_id", tk.ID), zap.Uint64("technician_id", *tk.TechnicianID))
			return nil
		}
		return err
	}
	tk.LaborCost = utils.RoundTo(tk.LaborHours*tech.HourlyRate, 2)
	return nil
}

// restoreAsset возвращает актив в работу, если по нему не осталось открытых заявок.
// Выведенный из эксплуатации актив не трогаем.
func (s *TicketService) restoreAsset(ctx context.Context, tx pgx.Tx, tk *entities.Ticket) error {
	asset, err := s.assetRepo.FindAsset(ctx, tx, tk.AssetID)
	if err != nil {
		return err
	}
	if asset.Status != entities.AssetStatusMaintenance && asset.Status != entities.AssetStatusStopped {
		return nil
	}
	open, err := s.ticketRepo.CountOpenForAsset(ctx, tx, tk.AssetID, tk.ID)
	if err != nil {
		return err
	}
	if open > 0 {
		return nil
	}
	return s.assetRepo.UpdateStatus(ctx, tx, tk.AssetID, entities.AssetStatusOperational)
}

// ConsumeParts списывает запчасти на заявку: остаток, журнал движения и стоимость меняются вместе.
func (s *TicketService) ConsumeParts(ctx context.Context, id uint64, payload dto.ConsumePartsDTO) (*dto.TicketDTO, error) {
	partIDs := make([]uint64, 0, len(payload.Items))
	err := s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		tk, err := s.ticketRepo.FindTicket(ctx, tx, id)
		if err != nil {
			return err
		}
		if isTerminalTicket(tk.Status) {
			return fmt.Errorf("%w: заявка %s в статусе %s", apperrors.ErrInvalidTransition, tk.Code, tk.Status)
		}

		var total float64
		for _, item := range payload.Items {
			part, err := s.partRepo.FindPart(ctx, tx, item.PartID)
			if err != nil {
				if errors.Is(err, apperrors.ErrNotFound) {
					return apperrors.NewInvalidInputError("запчасть %d не найдена", item.PartID)
				}
				return err
			}
			after, err := s.partRepo.AdjustQuantity(ctx, tx, part.ID, -item.Quantity)
			if err != nil {
				if errors.Is(err, apperrors.ErrInsufficientStock) {
					return fmt.Errorf("%w: %s, остаток %d, требуется %d",
						apperrors.ErrInsufficientStock, part.SKU, part.Quantity, item.Quantity)
				}
				return err
			}
			if err := s.ticketRepo.AddPart(ctx, tx, &entities.TicketPart{
				TicketID: id, PartID: part.ID, Quantity: item.Quantity, UnitCost: part.UnitCost,
			}); err != nil {
				return err
			}
			ticketID := id
			if err := s.partRepo.AddMovement(ctx, tx, &entities.StockMovement{
				PartID:        part.ID,
				Delta:         -item.Quantity,
				QuantityAfter: after,
				Reason:        "Списание на заявку " + tk.Code,
				TicketID:      &ticketID,
				CreatedBy:     actorID(ctx),
			}); err != nil {
				return err
			}
			total += float64(item.Quantity) * part.UnitCost
			partIDs = append(partIDs, part.ID)
		}
		return s.ticketRepo.AddPartsCost(ctx, tx, id, utils.RoundTo(total, 2))
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrInsufficientStock) {
			s.logger.Warn("Недостаточно запчастей для списания", zap.Uint64("ticket_id", id), zap.Error(err))
		}
		return nil, err
	}

	s.logger.Info("Запчасти списаны на заявку", zap.Uint64("ticket_id", id), zap.Int("positions", len(partIDs)))
	s.bus.Publish(ctx, events.StockChanged{PartIDs: partIDs, Reason: "consume"})
	return s.FindTicket(ctx, id)
}

func (s *TicketService) Diagnose(ctx context.Context, id uint64) (*dto.AIResponseDTO, error) {
	ticket, err := s.FindTicket(ctx, id)
	if err != nil {
		return nil, err
	}
	asset, err := s.assetRepo.FindAsset(ctx, nil, ticket.Asset.ID)
	if err != nil {
		return nil, err
	}

	ticketJSON, _ := json.Marshal(ticket)
	assetJSON, _ := json.Marshal(assetToDTO(asset))
	prompt := fmt.Sprintf(`Ты инженер по техническому обслуживанию промышленного оборудования.
Оборудование: %s
Заявка: %s
Предложи вероятные причины неисправности, порядок диагностики и необходимые запчасти. Отвечай кратко, списком.`,
		assetJSON, ticketJSON)

	text, err := s.ai.GenerateText(ctx, prompt)
	if err != nil {
		s.logger.Warn("ИИ-диагностика недоступна", zap.Uint64("ticket_id", id), zap.Error(err))
		return nil, err
	}
	return &dto.AIResponseDTO{Text: text}, nil
}

package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"cmms-system/internal/dto"
	"cmms-system/internal/entities"
	"cmms-system/internal/events"
	"cmms-system/internal/maintenance"
	"cmms-system/internal/repositories"
	"cmms-system/pkg/ai"
	apperrors "cmms-system/pkg/errors"
	"cmms-system/pkg/types"
	"cmms-system/pkg/utils"
)

const DefaultUpcomingDays = 30

type PreventiveServiceInterface interface {
	GetPlans(ctx context.Context, filter types.Filter) ([]dto.PlanDTO, uint64, error)
	FindPlan(ctx context.Context, id uint64) (*dto.PlanDTO, error)
	CreatePlan(ctx context.Context, payload dto.CreatePlanDTO) (*dto.PlanDTO, error)
	UpdatePlan(ctx context.Context, id uint64, payload dto.UpdatePlanDTO) (*dto.PlanDTO, error)
	DeletePlan(ctx context.Context, id uint64) error
	PausePlan(ctx context.Context, id uint64) (*dto.PlanDTO, error)
	ResumePlan(ctx context.Context, id uint64) (*dto.PlanDTO, error)
	ExecutePlan(ctx context.Context, id uint64) (*dto.ExecutePlanResultDTO, error)
	GetUpcoming(ctx context.Context, days int) ([]dto.PlanDTO, error)
	GetOverdue(ctx context.Context) ([]dto.PlanDTO, error)
	SuggestPlans(ctx context.Context, assetID uint64) ([]dto.PlanSuggestionDTO, error)
}

type PreventiveService struct {
	txManager    repositories.TxManagerInterface
	planRepo     repositories.PreventivePlanRepositoryInterface
	assetRepo    repositories.AssetRepositoryInterface
	ticketRepo   repositories.TicketRepositoryInterface
	techRepo     repositories.TechnicianRepositoryInterface
	settingsRepo repositories.SettingsRepositoryInterface
	validator    *utils.CustomValidator
	ai           ai.Client
	bus          EventPublisher
	logger       *zap.Logger
	now          func() time.Time
}

func NewPreventiveService(
	txManager repositories.TxManagerInterface,
	planRepo repositories.PreventivePlanRepositoryInterface,
	assetRepo repositories.AssetRepositoryInterface,
	ticketRepo repositories.TicketRepositoryInterface,
	techRepo repositories.TechnicianRepositoryInterface,
	settingsRepo repositories.SettingsRepositoryInterface,
	validator *utils.CustomValidator,
	aiClient ai.Client,
	bus EventPublisher,
	logger *zap.Logger,
) PreventiveServiceInterface {
	return &PreventiveService{
		txManager:    txManager,
		planRepo:     planRepo,
		assetRepo:    assetRepo,
		ticketRepo:   ticketRepo,
		techRepo:     techRepo,
		settingsRepo: settingsRepo,
		validator:    validator,
		ai:           aiClient,
		bus:          bus,
		logger:       logger,
		now:          time.Now,
	}
}

// dueWindow - окно "скоро" из настроек; при ошибке чтения берём значение по умолчанию.
func (s *PreventiveService) dueWindow(ctx context.Context) int {
	settings, err := s.settingsRepo.GetSettings(ctx)
	if err != nil || settings.MaintenanceWindowDays <= 0 {
		return maintenance.DefaultDueSoonWindow
	}
	return settings.MaintenanceWindowDays
}

func (s *PreventiveService) toDTOs(ctx context.Context, plans []entities.PreventivePlan) []dto.PlanDTO {
	now, window := s.now(), s.dueWindow(ctx)
	res := make([]dto.PlanDTO, 0, len(plans))
	for i := range plans {
		res = append(res, planToDTO(&plans[i], now, window))
	}
	return res
}

func (s *PreventiveService) GetPlans(ctx context.Context, filter types.Filter) ([]dto.PlanDTO, uint64, error) {
	plans, total, err := s.planRepo.GetPlans(ctx, filter)
	if err != nil {
		s.logger.Error("Не удалось получить планы обслуживания", zap.Error(err))
		return nil, 0, err
	}
	return s.toDTOs(ctx, plans), total, nil
}

func (s *PreventiveService) FindPlan(ctx context.Context, id uint64) (*dto.PlanDTO, error) {
	plan, err := s.planRepo.FindPlan(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	res := planToDTO(plan, s.now(), s.dueWindow(ctx))
	return &res, nil
}

func validateFrequency(value int, unit string) error {
	_, err := maintenance.NextDueDate(time.Time{}, value, maintenance.FrequencyUnit(unit))
	return err
}

func cleanChecklist(items []string) []string {
	res := make([]string, 0, len(items))
	for _, it := range items {
		if it = strings.TrimSpace(it); it != "" {
			res = append(res, it)
		}
	}
	return res
}

func (s *PreventiveService) CreatePlan(ctx context.Context, payload dto.CreatePlanDTO) (*dto.PlanDTO, error) {
	if err := validateFrequency(payload.FrequencyValue, payload.FrequencyUnit); err != nil {
		return nil, err
	}
	if _, err := s.assetRepo.FindAsset(ctx, nil, payload.AssetID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewInvalidInputError("актив %d не найден", payload.AssetID)
		}
		return nil, err
	}
	if payload.TechnicianID != nil {
		if err := ensureTechnician(ctx, s.techRepo, *payload.TechnicianID); err != nil {
			return nil, err
		}
	}
	lastExecution, err := parseOptionalDate(payload.LastExecution, "last_execution")
	if err != nil {
		return nil, err
	}

	plan := &entities.PreventivePlan{
		Name:           strings.TrimSpace(payload.Name),
		AssetID:        payload.AssetID,
		TechnicianID:   payload.TechnicianID,
		Description:    payload.Description,
		FrequencyValue: payload.FrequencyValue,
		FrequencyUnit:  payload.FrequencyUnit,
		LastExecution:  lastExecution,
		Status:         entities.PlanStatusActive,
		EstimatedHours: payload.EstimatedHours,
		Checklist:      cleanChecklist(payload.Checklist),
	}
	id, err := s.planRepo.CreatePlan(ctx, plan)
	if err != nil {
		s.logger.Error("Ошибка при создании плана обслуживания", zap.Error(err))
		return nil, err
	}
	s.logger.Info("План обслуживания создан", zap.Uint64("id", id), zap.Uint64("asset_id", plan.AssetID),
		zap.Int("frequency_value", plan.FrequencyValue), zap.String("frequency_unit", plan.FrequencyUnit))
	return s.FindPlan(ctx, id)
}

func (s *PreventiveService) UpdatePlan(ctx context.Context, id uint64, payload dto.UpdatePlanDTO) (*dto.PlanDTO, error) {
	plan, err := s.planRepo.FindPlan(ctx, nil, id)
	if err != nil {
		return nil, err
	}

	if payload.Name.Valid {
		plan.Name = strings.TrimSpace(payload.Name.String)
	}
	if payload.TechnicianID.Valid {
		if payload.TechnicianID.Uint64 == 0 {
			plan.TechnicianID = nil
		} else {
			techID := payload.TechnicianID.Uint64
			if err := ensureTechnician(ctx, s.techRepo, techID); err != nil {
				return nil, err
			}
			plan.TechnicianID = &techID
		}
	}
	if payload.Description.Valid {
		plan.Description = payload.Description.String
	}
	if payload.FrequencyValue.Valid {
		plan.FrequencyValue = payload.FrequencyValue.Int
	}
	if payload.FrequencyUnit.Valid {
		plan.FrequencyUnit = payload.FrequencyUnit.String
	}
	if payload.LastExecution.Valid {
		if plan.LastExecution, err = parseOptionalDate(payload.LastExecution.String, "last_execution"); err != nil {
			return nil, err
		}
	}
	if payload.EstimatedHours.Valid {
		plan.EstimatedHours = payload.EstimatedHours.Float64
	}
	if payload.Checklist != nil {
		plan.Checklist = cleanChecklist(payload.Checklist)
	}
	if err := validateFrequency(plan.FrequencyValue, plan.FrequencyUnit); err != nil {
		return nil, err
	}

	if err := s.planRepo.UpdatePlan(ctx, plan); err != nil {
		return nil, err
	}
	return s.FindPlan(ctx, id)
}

func (s *PreventiveService) DeletePlan(ctx context.Context, id uint64) error {
	if err := s.planRepo.DeletePlan(ctx, id); err != nil {
		return err
	}
	s.logger.Info("План обслуживания удалён", zap.Uint64("id", id))
	return nil
}

func (s *PreventiveService) setStatus(ctx context.Context, id uint64, status string) (*dto.PlanDTO, error) {
	if err := s.planRepo.SetStatus(ctx, id, status); err != nil {
		return nil, err
	}
	s.logger.Info("Статус плана обслуживания изменён", zap.Uint64("id", id), zap.String("status", status))
	return s.FindPlan(ctx, id)
}

func (s *PreventiveService) PausePlan(ctx context.Context, id uint64) (*dto.PlanDTO, error) {
	return s.setStatus(ctx, id, entities.PlanStatusPaused)
}

func (s *PreventiveService) ResumePlan(ctx context.Context, id uint64) (*dto.PlanDTO, error) {
	return s.setStatus(ctx, id, entities.PlanStatusActive)
}

// ExecutePlan открывает профилактическую заявку по плану и отмечает выполнение.
func (s *PreventiveService) ExecutePlan(ctx context.Context, id uint64) (*dto.ExecutePlanResultDTO, error) {
	var ticketID, assetID uint64
	err := s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		plan, err := s.planRepo.FindPlan(ctx, tx, id)
		if err != nil {
			return err
		}
		if plan.Status == entities.PlanStatusPaused {
			return apperrors.ErrPlanPaused
		}
		asset, err := s.assetRepo.FindAsset(ctx, tx, plan.AssetID)
		if err != nil {
			return err
		}

		now := s.now()
		planID := plan.ID
		tk := &entities.Ticket{
			Code:             newDocumentCode(TicketCodePrefix, now),
			Title:            "Профилактика: " + plan.Name,
			Description:      planTicketDescription(plan),
			AssetID:          plan.AssetID,
			TechnicianID:     plan.TechnicianID,
			PreventivePlanID: &planID,
			Type:             entities.TicketTypePreventive,
			Priority:         asset.Criticality,
			Status:           entities.TicketStatusOpen,
			OpenedAt:         now,
			CreatedBy:        actorID(ctx),
		}
		if tk.Priority == "" {
			tk.Priority = entities.PriorityMedium
		}
		if ticketID, err = s.ticketRepo.CreateTicket(ctx, tx, tk); err != nil {
			return err
		}
		assetID = plan.AssetID
		return s.planRepo.SetLastExecution(ctx, tx, plan.ID, now)
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrPlanPaused) {
			s.logger.Warn("Попытка выполнить приостановленный план", zap.Uint64("id", id))
		}
		return nil, err
	}

	s.logger.Info("План обслуживания выполнен", zap.Uint64("plan_id", id), zap.Uint64("ticket_id", ticketID))
	s.bus.Publish(ctx, events.TicketStatusChanged{
		TicketID: ticketID, AssetID: assetID, To: entities.TicketStatusOpen,
	})

	plan, err := s.FindPlan(ctx, id)
	if err != nil {
		return nil, err
	}
	tk, err := s.ticketRepo.FindTicket(ctx, nil, ticketID)
	if err != nil {
		return nil, err
	}
	return &dto.ExecutePlanResultDTO{Plan: *plan, Ticket: ticketToDTO(tk, nil)}, nil
}

func planTicketDescription(plan *entities.PreventivePlan) string {
	var b strings.Builder
	b.WriteString(plan.Description)
	if len(plan.Checklist) > 0 {
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString("Чек-лист:")
		for _, item := range plan.Checklist {
			b.WriteString("\n- ")
			b.WriteString(item)
		}
	}
	return b.String()
}

type scheduledPlan struct {
	dto  dto.PlanDTO
	due  time.Time
	days int
}

func (s *PreventiveService) activeSchedules(ctx context.Context) ([]scheduledPlan, error) {
	plans, err := s.planRepo.GetPlansByStatus(ctx, entities.PlanStatusActive)
	if err != nil {
		return nil, err
	}
	now, window := s.now(), s.dueWindow(ctx)
	res := make([]scheduledPlan, 0, len(plans))
	for i := range plans {
		sched, err := planSchedule(&plans[i], now, window)
		if err != nil {
			s.logger.Warn("План с некорректной периодичностью пропущен",
				zap.Uint64("plan_id", plans[i].ID), zap.Error(err))
			continue
		}
		res = append(res, scheduledPlan{
			dto:  planToDTO(&plans[i], now, window),
			due:  sched.NextDueDate,
			days: sched.DaysUntilDue,
		})
	}
	sort.SliceStable(res, func(i, j int) bool { return res[i].due.Before(res[j].due) })
	return res, nil
}

// GetUpcoming - активные планы со сроком в ближайшие days дней, по возрастанию срока.
func (s *PreventiveService) GetUpcoming(ctx context.Context, days int) ([]dto.PlanDTO, error) {
	if days <= 0 {
		days = DefaultUpcomingDays
	}
	scheduled, err := s.activeSchedules(ctx)
	if err != nil {
		return nil, err
	}
	res := make([]dto.PlanDTO, 0)
	for _, p := range scheduled {
		if p.days >= 0 && p.days <= days {
			res = append(res, p.dto)
		}
	}
	return res, nil
}

func (s *PreventiveService) GetOverdue(ctx context.Context) ([]dto.PlanDTO, error) {
	scheduled, err := s.activeSchedules(ctx)
	if err != nil {
		return nil, err
	}
	res := make([]dto.PlanDTO, 0)
	for _, p := range scheduled {
		if p.days < 0 {
			res = append(res, p.dto)
		}
	}
	return res, nil
}

// SuggestPlans просит ИИ предложить планы для актива. Ответ не сохраняется,
// записи, не прошедшие валидацию, отбрасываются.
func (s *PreventiveService) SuggestPlans(ctx context.Context, assetID uint64) ([]dto.PlanSuggestionDTO, error) {
	asset, err := s.assetRepo.FindAsset(ctx, nil, assetID)
	if err != nil {
		return nil, err
	}
	existing, err := s.planRepo.GetPlansByAsset(ctx, assetID)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(existing))
	for _, p := range existing {
		names = append(names, p.Name)
	}

	assetJSON, _ := json.Marshal(assetToDTO(asset))
	namesJSON, _ := json.Marshal(names)
	prompt := fmt.Sprintf(`Ты инженер по надёжности оборудования. Предложи от 3 до 5 планов профилактического обслуживания.
Оборудование: %s
Уже существующие планы: %s
Ответь только JSON-массивом объектов с полями: name, description, frequency_value (целое > 0),
frequency_unit ("days", "months" или "years"), estimated_hours (число), checklist (массив строк).`,
		assetJSON, namesJSON)

	text, err := s.ai.GenerateText(ctx, prompt)
	if err != nil {
		s.logger.Warn("ИИ-подсказки планов недоступны", zap.Uint64("asset_id", assetID), zap.Error(err))
		return nil, err
	}

	raw, err := ai.ExtractJSONArray(text)
	if err != nil {
		s.logger.Warn("Не удалось разобрать ответ ИИ", zap.Uint64("asset_id", assetID), zap.Error(err))
		return nil, err
	}

	res := make([]dto.PlanSuggestionDTO, 0, len(raw))
	for i, item := range raw {
		var sug dto.PlanSuggestionDTO
		if err := json.Unmarshal(item, &sug); err != nil {
			s.logger.Debug("Подсказка ИИ отброшена", zap.Int("index", i), zap.Error(err))
			continue
		}
		sug.Name = strings.TrimSpace(sug.Name)
		sug.FrequencyUnit = strings.ToLower(strings.TrimSpace(sug.FrequencyUnit))
		sug.Checklist = cleanChecklist(sug.Checklist)
		if err := s.validator.Validate(&sug); err != nil {
			s.logger.Debug("Подсказка ИИ отброшена", zap.String("name", sug.Name), zap.Error(err))
			continue
		}
		res = append(res, sug)
	}
	s.logger.Info("ИИ предложил планы", zap.Uint64("asset_id", assetID),
		zap.Int("received", len(raw)), zap.Int("accepted", len(res)))
	return res, nil
}

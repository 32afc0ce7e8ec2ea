package services

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"cmms-system/internal/dto"
	"cmms-system/internal/entities"
	"cmms-system/internal/repositories"
	"cmms-system/pkg/types"
)

type TechnicianServiceInterface interface {
	GetTechnicians(ctx context.Context, filter types.Filter) ([]dto.TechnicianDTO, uint64, error)
	FindTechnician(ctx context.Context, id uint64) (*dto.TechnicianDTO, error)
	CreateTechnician(ctx context.Context, payload dto.CreateTechnicianDTO) (*dto.TechnicianDTO, error)
	UpdateTechnician(ctx context.Context, id uint64, payload dto.UpdateTechnicianDTO) (*dto.TechnicianDTO, error)
	DeleteTechnician(ctx context.Context, id uint64) error
	GetWorkload(ctx context.Context) ([]dto.WorkloadDTO, error)
}

type TechnicianService struct {
	repo   repositories.TechnicianRepositoryInterface
	logger *zap.Logger
}

func NewTechnicianService(repo repositories.TechnicianRepositoryInterface, logger *zap.Logger) TechnicianServiceInterface {
	return &TechnicianService{repo: repo, logger: logger}
}

func (s *TechnicianService) GetTechnicians(ctx context.Context, filter types.Filter) ([]dto.TechnicianDTO, uint64, error) {
	list, total, err := s.repo.GetTechnicians(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	res := make([]dto.TechnicianDTO, 0, len(list))
	for i := range list {
		res = append(res, technicianToDTO(&list[i]))
	}
	return res, total, nil
}

func (s *TechnicianService) FindTechnician(ctx context.Context, id uint64) (*dto.TechnicianDTO, error) {
	t, err := s.repo.FindTechnician(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	res := technicianToDTO(t)
	return &res, nil
}

func (s *TechnicianService) CreateTechnician(ctx context.Context, payload dto.CreateTechnicianDTO) (*dto.TechnicianDTO, error) {
	t := &entities.Technician{
		Name:       strings.TrimSpace(payload.Name),
		Specialty:  payload.Specialty,
		Phone:      payload.Phone,
		Email:      payload.Email,
		HourlyRate: payload.HourlyRate,
		Active:     true,
		UserID:     payload.UserID,
	}
	if payload.Active != nil {
		t.Active = *payload.Active
	}

	created, err := s.repo.CreateTechnician(ctx, t)
	if err != nil {
		s.logger.Error("Ошибка при создании техника", zap.Error(err))
		return nil, err
	}
	s.logger.Info("Техник создан", zap.Uint64("id", created.ID), zap.String("name", created.Name))
	res := technicianToDTO(created)
	return &res, nil
}

func (s *TechnicianService) UpdateTechnician(ctx context.Context, id uint64, payload dto.UpdateTechnicianDTO) (*dto.TechnicianDTO, error) {
	t, err := s.repo.FindTechnician(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	if payload.Name.Valid {
		t.Name = strings.TrimSpace(payload.Name.String)
	}
	if payload.Specialty.Valid {
		t.Specialty = payload.Specialty.String
	}
	if payload.Phone.Valid {
		t.Phone = payload.Phone.String
	}
	if payload.Email.Valid {
		t.Email = payload.Email.String
	}
	if payload.HourlyRate.Valid {
		t.HourlyRate = payload.HourlyRate.Float64
	}
	if payload.Active.Valid {
		t.Active = payload.Active.Bool
	}

	updated, err := s.repo.UpdateTechnician(ctx, t)
	if err != nil {
		return nil, err
	}
	res := technicianToDTO(updated)
	return &res, nil
}

func (s *TechnicianService) DeleteTechnician(ctx context.Context, id uint64) error {
	if err := s.repo.DeleteTechnician(ctx, id); err != nil {
		return err
	}
	s.logger.Info("Техник удалён", zap.Uint64("id", id))
	return nil
}

func (s *TechnicianService) GetWorkload(ctx context.Context) ([]dto.WorkloadDTO, error) {
	rows, err := s.repo.GetWorkload(ctx)
	if err != nil {
		return nil, err
	}
	return workloadToDTO(rows), nil
}

func workloadToDTO(rows []entities.TechnicianWorkload) []dto.WorkloadDTO {
	res := make([]dto.WorkloadDTO, 0, len(rows))
	for _, w := range rows {
		res = append(res, dto.WorkloadDTO{
			TechnicianID: w.TechnicianID,
			Name:         w.Name,
			OpenTickets:  w.OpenTickets,
			LaborHours:   w.LaborHours,
		})
	}
	return res
}

package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

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

type AssetServiceInterface interface {
	GetAssets(ctx context.Context, filter types.Filter) ([]dto.AssetDTO, uint64, error)
	FindAsset(ctx context.Context, id uint64) (*dto.AssetDTO, error)
	CreateAsset(ctx context.Context, payload dto.CreateAssetDTO) (*dto.AssetDTO, error)
	UpdateAsset(ctx context.Context, id uint64, payload dto.UpdateAssetDTO) (*dto.AssetDTO, error)
	DeleteAsset(ctx context.Context, id uint64) error
	GetTree(ctx context.Context) ([]*dto.AssetTreeNodeDTO, error)
	GetHistory(ctx context.Context, id uint64, filter types.Filter) ([]dto.TicketDTO, uint64, error)
}

type AssetService struct {
	assetRepo  repositories.AssetRepositoryInterface
	ticketRepo repositories.TicketRepositoryInterface
	bus        EventPublisher
	logger     *zap.Logger
}

func NewAssetService(
	assetRepo repositories.AssetRepositoryInterface,
	ticketRepo repositories.TicketRepositoryInterface,
	bus EventPublisher,
	logger *zap.Logger,
) AssetServiceInterface {
	return &AssetService{assetRepo: assetRepo, ticketRepo: ticketRepo, bus: bus, logger: logger}
}

func (s *AssetService) GetAssets(ctx context.Context, filter types.Filter) ([]dto.AssetDTO, uint64, error) {
	assets, total, err := s.assetRepo.GetAssets(ctx, filter)
	if err != nil {
		s.logger.Error("Не удалось получить список активов", zap.Error(err))
		return nil, 0, err
	}
	res := make([]dto.AssetDTO, 0, len(assets))
	for i := range assets {
		res = append(res, assetToDTO(&assets[i]))
	}
	return res, total, nil
}

func (s *AssetService) FindAsset(ctx context.Context, id uint64) (*dto.AssetDTO, error) {
	asset, err := s.assetRepo.FindAsset(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	res := assetToDTO(asset)
	return &res, nil
}

func parseOptionalDate(raw, field string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	t, err := utils.ParseDate(raw)
	if err != nil {
		return nil, apperrors.NewInvalidInputError("поле %s: неверная дата %q", field, raw)
	}
	return &t, nil
}

func (s *AssetService) ensureParentExists(ctx context.Context, parentID uint64) error {
	if _, err := s.assetRepo.FindAsset(ctx, nil, parentID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.NewInvalidInputError("родительский актив %d не найден", parentID)
		}
		return err
	}
	return nil
}

func (s *AssetService) CreateAsset(ctx context.Context, payload dto.CreateAssetDTO) (*dto.AssetDTO, error) {
	installDate, err := parseOptionalDate(payload.InstallDate, "install_date")
	if err != nil {
		return nil, err
	}
	if payload.ParentID != nil {
		if err := s.ensureParentExists(ctx, *payload.ParentID); err != nil {
			return nil, err
		}
	}

	asset := &entities.Asset{
		Code:            strings.TrimSpace(payload.Code),
		Name:            strings.TrimSpace(payload.Name),
		Category:        payload.Category,
		Location:        payload.Location,
		Manufacturer:    payload.Manufacturer,
		Model:           payload.Model,
		SerialNumber:    payload.SerialNumber,
		ParentID:        payload.ParentID,
		Status:          payload.Status,
		Criticality:     payload.Criticality,
		InstallDate:     installDate,
		AcquisitionCost: payload.AcquisitionCost,
		Description:     payload.Description,
	}
	if asset.Status == "" {
		asset.Status = entities.AssetStatusOperational
	}
	if asset.Criticality == "" {
		asset.Criticality = entities.PriorityMedium
	}

	created, err := s.assetRepo.CreateAsset(ctx, asset)
	if err != nil {
		s.logger.Error("Ошибка при создании актива", zap.String("code", asset.Code), zap.Error(err))
		return nil, err
	}
	s.logger.Info("Актив создан", zap.Uint64("id", created.ID), zap.String("code", created.Code))
	s.bus.Publish(ctx, events.AssetChanged{AssetID: created.ID, Action: "created"})

	res := assetToDTO(created)
	return &res, nil
}

func (s *AssetService) UpdateAsset(ctx context.Context, id uint64, payload dto.UpdateAssetDTO) (*dto.AssetDTO, error) {
	asset, err := s.assetRepo.FindAsset(ctx, nil, id)
	if err != nil {
		return nil, err
	}

	if payload.Code.Valid {
		asset.Code = strings.TrimSpace(payload.Code.String)
	}
	if payload.Name.Valid {
		asset.Name = strings.TrimSpace(payload.Name.String)
	}
	if payload.Category.Valid {
		asset.Category = payload.Category.String
	}
	if payload.Location.Valid {
		asset.Location = payload.Location.String
	}
	if payload.Manufacturer.Valid {
		asset.Manufacturer = payload.Manufacturer.String
	}
	if payload.Model.Valid {
		asset.Model = payload.Model.String
	}
	if payload.SerialNumber.Valid {
		asset.SerialNumber = payload.SerialNumber.String
	}
	if payload.Status.Valid {
		asset.Status = payload.Status.String
	}
	if payload.Criticality.Valid {
		asset.Criticality = payload.Criticality.String
	}
	if payload.InstallDate.Valid {
		if asset.InstallDate, err = parseOptionalDate(payload.InstallDate.String, "install_date"); err != nil {
			return nil, err
		}
	}
	if payload.AcquisitionCost.Valid {
		asset.AcquisitionCost = payload.AcquisitionCost.Float64
	}
	if payload.Description.Valid {
		asset.Description = payload.Description.String
	}

	if payload.ParentID.Valid {
		if err := s.applyParent(ctx, asset, payload.ParentID.Uint64); err != nil {
			return nil, err
		}
	}

	updated, err := s.assetRepo.UpdateAsset(ctx, asset)
	if err != nil {
		s.logger.Error("Ошибка при обновлении актива", zap.Uint64("id", id), zap.Error(err))
		return nil, err
	}
	s.bus.Publish(ctx, events.AssetChanged{AssetID: id, Action: "updated"})

	res := assetToDTO(updated)
	return &res, nil
}

// applyParent: 0 отвязывает актив, иначе родитель должен существовать и не замыкать цикл.
func (s *AssetService) applyParent(ctx context.Context, asset *entities.Asset, parentID uint64) error {
	if parentID == 0 {
		asset.ParentID = nil
		return nil
	}
	if parentID == asset.ID {
		return apperrors.ErrAssetCycle
	}
	if err := s.ensureParentExists(ctx, parentID); err != nil {
		return err
	}
	parents, err := s.assetRepo.GetParentMap(ctx)
	if err != nil {
		return fmt.Errorf("не удалось загрузить иерархию активов: %w", err)
	}
	if maintenance.CreatesCycle(parents, asset.ID, parentID) {
		s.logger.Warn("Отклонено изменение родителя: цикл в иерархии",
			zap.Uint64("asset_id", asset.ID), zap.Uint64("parent_id", parentID))
		return apperrors.ErrAssetCycle
	}
	asset.ParentID = &parentID
	return nil
}

func (s *AssetService) DeleteAsset(ctx context.Context, id uint64) error {
	if err := s.assetRepo.DeleteAsset(ctx, id); err != nil {
		if errors.Is(err, apperrors.ErrAssetInUse) {
			s.logger.Warn("Попытка удалить используемый актив", zap.Uint64("id", id))
		}
		return err
	}
	s.logger.Info("Актив удалён", zap.Uint64("id", id))
	s.bus.Publish(ctx, events.AssetChanged{AssetID: id, Action: "deleted"})
	return nil
}

func (s *AssetService) GetTree(ctx context.Context) ([]*dto.AssetTreeNodeDTO, error) {
	assets, err := s.assetRepo.GetAllAssets(ctx)
	if err != nil {
		return nil, err
	}
	return buildAssetTree(assets), nil
}

func buildAssetTree(assets []entities.Asset) []*dto.AssetTreeNodeDTO {
	nodes := make([]maintenance.Node, 0, len(assets))
	byID := make(map[uint64]*entities.Asset, len(assets))
	for i := range assets {
		nodes = append(nodes, maintenance.Node{ID: assets[i].ID, ParentID: assets[i].ParentID})
		byID[assets[i].ID] = &assets[i]
	}
	roots, children := maintenance.Forest(nodes)

	var build func(id uint64) *dto.AssetTreeNodeDTO
	build = func(id uint64) *dto.AssetTreeNodeDTO {
		node := &dto.AssetTreeNodeDTO{AssetDTO: assetToDTO(byID[id]), Children: []*dto.AssetTreeNodeDTO{}}
		for _, c := range children[id] {
			node.Children = append(node.Children, build(c))
		}
		return node
	}

	res := make([]*dto.AssetTreeNodeDTO, 0, len(roots))
	for _, r := range roots {
		res = append(res, build(r))
	}
	return res
}

// GetHistory - заявки по активу, по умолчанию от новых к старым.
func (s *AssetService) GetHistory(ctx context.Context, id uint64, filter types.Filter) ([]dto.TicketDTO, uint64, error) {
	if _, err := s.assetRepo.FindAsset(ctx, nil, id); err != nil {
		return nil, 0, err
	}
	if filter.Filter == nil {
		filter.Filter = make(map[string]interface{})
	}
	filter.Filter["asset_id"] = id

	tickets, total, err := s.ticketRepo.GetTickets(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	res := make([]dto.TicketDTO, 0, len(tickets))
	for i := range tickets {
		res = append(res, ticketToDTO(&tickets[i], nil))
	}
	return res, total, nil
}

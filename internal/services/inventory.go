package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"cmms-system/internal/dto"
	"cmms-system/internal/entities"
	"cmms-system/internal/events"
	"cmms-system/internal/repositories"
	apperrors "cmms-system/pkg/errors"
	"cmms-system/pkg/types"
	"cmms-system/pkg/utils"
)

type InventoryServiceInterface interface {
	GetParts(ctx context.Context, filter types.Filter) ([]dto.PartDTO, uint64, error)
	FindPart(ctx context.Context, id uint64) (*dto.PartDTO, error)
	CreatePart(ctx context.Context, payload dto.CreatePartDTO) (*dto.PartDTO, error)
	UpdatePart(ctx context.Context, id uint64, payload dto.UpdatePartDTO) (*dto.PartDTO, error)
	DeletePart(ctx context.Context, id uint64) error
	GetLowStock(ctx context.Context) ([]dto.PartDTO, error)
	AdjustStock(ctx context.Context, id uint64, payload dto.AdjustStockDTO) (*dto.PartDTO, error)
	GetMovements(ctx context.Context, id uint64, filter types.Filter) ([]dto.StockMovementDTO, uint64, error)
	ExportParts(ctx context.Context) (*bytes.Buffer, error)
	ImportParts(ctx context.Context, r io.Reader) (*dto.ImportResultDTO, error)
}

type InventoryService struct {
	txManager repositories.TxManagerInterface
	partRepo  repositories.SparePartRepositoryInterface
	validator *utils.CustomValidator
	bus       EventPublisher
	logger    *zap.Logger
}

func NewInventoryService(
	txManager repositories.TxManagerInterface,
	partRepo repositories.SparePartRepositoryInterface,
	validator *utils.CustomValidator,
	bus EventPublisher,
	logger *zap.Logger,
) InventoryServiceInterface {
	return &InventoryService{txManager: txManager, partRepo: partRepo, validator: validator, bus: bus, logger: logger}
}

func partsToDTO(parts []entities.SparePart) []dto.PartDTO {
	res := make([]dto.PartDTO, 0, len(parts))
	for i := range parts {
		res = append(res, partToDTO(&parts[i]))
	}
	return res
}

func (s *InventoryService) GetParts(ctx context.Context, filter types.Filter) ([]dto.PartDTO, uint64, error) {
	parts, total, err := s.partRepo.GetParts(ctx, filter)
	if err != nil {
		s.logger.Error("Не удалось получить список запчастей", zap.Error(err))
		return nil, 0, err
	}
	return partsToDTO(parts), total, nil
}

func (s *InventoryService) FindPart(ctx context.Context, id uint64) (*dto.PartDTO, error) {
	part, err := s.partRepo.FindPart(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	res := partToDTO(part)
	return &res, nil
}

func (s *InventoryService) CreatePart(ctx context.Context, payload dto.CreatePartDTO) (*dto.PartDTO, error) {
	var created *entities.SparePart
	err := s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		var err error
		created, err = s.partRepo.CreatePart(ctx, tx, partFromCreateDTO(payload))
		if err != nil {
			return err
		}
		if created.Quantity > 0 {
			return s.partRepo.AddMovement(ctx, tx, &entities.StockMovement{
				PartID: created.ID, Delta: created.Quantity, QuantityAfter: created.Quantity,
				Reason: "Начальный остаток", CreatedBy: actorID(ctx),
			})
		}
		return nil
	})
	if err != nil {
		s.logger.Error("Ошибка при создании запчасти", zap.String("sku", payload.SKU), zap.Error(err))
		return nil, err
	}
	s.logger.Info("Запчасть создана", zap.Uint64("id", created.ID), zap.String("sku", created.SKU))
	res := partToDTO(created)
	return &res, nil
}

func partFromCreateDTO(payload dto.CreatePartDTO) *entities.SparePart {
	return &entities.SparePart{
		SKU:      strings.ToUpper(strings.TrimSpace(payload.SKU)),
		Name:     strings.TrimSpace(payload.Name),
		Category: payload.Category,
		Quantity: payload.Quantity,
		MinLevel: payload.MinLevel,
		UnitCost: payload.UnitCost,
		Location: payload.Location,
		Supplier: payload.Supplier,
	}
}

func (s *InventoryService) UpdatePart(ctx context.Context, id uint64, payload dto.UpdatePartDTO) (*dto.PartDTO, error) {
	part, err := s.partRepo.FindPart(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	if payload.SKU.Valid {
		part.SKU = strings.ToUpper(strings.TrimSpace(payload.SKU.String))
	}
	if payload.Name.Valid {
		part.Name = strings.TrimSpace(payload.Name.String)
	}
	if payload.Category.Valid {
		part.Category = payload.Category.String
	}
	if payload.MinLevel.Valid {
		part.MinLevel = payload.MinLevel.Int
	}
	if payload.UnitCost.Valid {
		part.UnitCost = payload.UnitCost.Float64
	}
	if payload.Location.Valid {
		part.Location = payload.Location.String
	}
	if payload.Supplier.Valid {
		part.Supplier = payload.Supplier.String
	}

	updated, err := s.partRepo.UpdatePart(ctx, nil, part)
	if err != nil {
		return nil, err
	}
	s.bus.Publish(ctx, events.StockChanged{PartIDs: []uint64{id}, Reason: "update"})
	res := partToDTO(updated)
	return &res, nil
}

func (s *InventoryService) DeletePart(ctx context.Context, id uint64) error {
	if err := s.partRepo.DeletePart(ctx, id); err != nil {
		return err
	}
	s.logger.Info("Запчасть удалена", zap.Uint64("id", id))
	return nil
}

func (s *InventoryService) GetLowStock(ctx context.Context) ([]dto.PartDTO, error) {
	parts, err := s.partRepo.GetLowStockParts(ctx, nil)
	if err != nil {
		return nil, err
	}
	return partsToDTO(parts), nil
}

// AdjustStock меняет остаток на delta со знаком; уйти ниже нуля нельзя.
func (s *InventoryService) AdjustStock(ctx context.Context, id uint64, payload dto.AdjustStockDTO) (*dto.PartDTO, error) {
	if payload.Delta == 0 {
		return nil, apperrors.NewInvalidInputError("изменение остатка не может быть нулевым")
	}
	err := s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		after, err := s.partRepo.AdjustQuantity(ctx, tx, id, payload.Delta)
		if err != nil {
			return err
		}
		return s.partRepo.AddMovement(ctx, tx, &entities.StockMovement{
			PartID:        id,
			Delta:         payload.Delta,
			QuantityAfter: after,
			Reason:        strings.TrimSpace(payload.Reason),
			CreatedBy:     actorID(ctx),
		})
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrInsufficientStock) {
			s.logger.Warn("Остаток не может стать отрицательным", zap.Uint64("part_id", id), zap.Int("delta", payload.Delta))
		}
		return nil, err
	}
	s.logger.Info("Остаток запчасти изменён", zap.Uint64("part_id", id), zap.Int("delta", payload.Delta),
		zap.String("reason", payload.Reason))
	s.bus.Publish(ctx, events.StockChanged{PartIDs: []uint64{id}, Reason: "adjust"})
	return s.FindPart(ctx, id)
}

func (s *InventoryService) GetMovements(ctx context.Context, id uint64, filter types.Filter) ([]dto.StockMovementDTO, uint64, error) {
	if _, err := s.partRepo.FindPart(ctx, nil, id); err != nil {
		return nil, 0, err
	}
	movements, total, err := s.partRepo.GetMovements(ctx, id, filter)
	if err != nil {
		return nil, 0, err
	}
	res := make([]dto.StockMovementDTO, 0, len(movements))
	for i := range movements {
		res = append(res, movementToDTO(&movements[i]))
	}
	return res, total, nil
}

var partSheetHeaders = []interface{}{
	"sku", "name", "category", "quantity", "min_level", "unit_cost", "location", "supplier", "low_stock", "suggested_quantity",
}

func (s *InventoryService) ExportParts(ctx context.Context) (*bytes.Buffer, error) {
	parts, err := s.partRepo.GetAllParts(ctx)
	if err != nil {
		return nil, err
	}
	rows := make([][]interface{}, 0, len(parts))
	for _, p := range partsToDTO(parts) {
		low := ""
		if p.LowStock {
			low = "да"
		}
		rows = append(rows, []interface{}{
			p.SKU, p.Name, p.Category, p.Quantity, p.MinLevel, p.UnitCost, p.Location, p.Supplier, low, p.SuggestedQuantity,
		})
	}
	return buildWorkbook("Склад", partSheetHeaders, rows, map[string]float64{"A": 18, "B": 40, "H": 30})
}

// importColumns - допустимые заголовки колонок (английские и русские).
var importColumns = map[string]string{
	"sku":                "sku",
	"артикул":            "sku",
	"name":               "name",
	"наименование":       "name",
	"category":           "category",
	"категория":          "category",
	"quantity":           "quantity",
	"количество":         "quantity",
	"min_level":          "min_level",
	"мин. остаток":       "min_level",
	"unit_cost":          "unit_cost",
	"цена":               "unit_cost",
	"location":           "location",
	"место хранения":     "location",
	"supplier":           "supplier",
	"поставщик":          "supplier",
}

// ImportParts загружает запчасти из xlsx: новые SKU создаются, существующие обновляются,
// а разница в количестве проводится через журнал движения. Некорректные строки пропускаются.
func (s *InventoryService) ImportParts(ctx context.Context, r io.Reader) (*dto.ImportResultDTO, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrInvalidImportFile, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, apperrors.ErrInvalidImportFile
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil || len(rows) == 0 {
		return nil, apperrors.ErrInvalidImportFile
	}

	index := make(map[string]int)
	for i, h := range rows[0] {
		if col, ok := importColumns[strings.ToLower(strings.TrimSpace(h))]; ok {
			index[col] = i
		}
	}
	if _, ok := index["sku"]; !ok {
		return nil, fmt.Errorf("%w: нет колонки sku", apperrors.ErrInvalidImportFile)
	}
	if _, ok := index["name"]; !ok {
		return nil, fmt.Errorf("%w: нет колонки name", apperrors.ErrInvalidImportFile)
	}

	result := &dto.ImportResultDTO{Errors: []string{}}
	changed := make([]uint64, 0)
	err = s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		for i, row := range rows[1:] {
			line := i + 2
			payload, hasQty, err := parsePartRow(row, index)
			if err == nil && payload.SKU == "" && payload.Name == "" {
				continue
			}
			if err == nil {
				err = s.validator.Validate(&payload)
			}
			if err != nil {
				result.Skipped++
				result.Errors = append(result.Errors, fmt.Sprintf("строка %d: %v", line, err))
				continue
			}

			id, created, err := s.upsertPart(ctx, tx, payload, hasQty, index)
			if err != nil {
				return fmt.Errorf("строка %d: %w", line, err)
			}
			if created {
				result.Created++
			} else {
				result.Updated++
			}
			changed = append(changed, id)
		}
		return nil
	})
	if err != nil {
		s.logger.Error("Импорт склада прерван", zap.Error(err))
		return nil, err
	}

	s.logger.Info("Импорт склада завершён", zap.Int("created", result.Created),
		zap.Int("updated", result.Updated), zap.Int("skipped", result.Skipped))
	if len(changed) > 0 {
		s.bus.Publish(ctx, events.StockChanged{PartIDs: changed, Reason: "import"})
	}
	return result, nil
}

func (s *InventoryService) upsertPart(ctx context.Context, tx pgx.Tx, payload dto.CreatePartDTO, hasQty bool, columns map[string]int) (uint64, bool, error) {
	incoming := partFromCreateDTO(payload)
	existing, err := s.partRepo.FindPartBySKU(ctx, tx, incoming.SKU)
	if errors.Is(err, apperrors.ErrNotFound) {
		created, err := s.partRepo.CreatePart(ctx, tx, incoming)
		if err != nil {
			return 0, false, err
		}
		if created.Quantity > 0 {
			if err := s.partRepo.AddMovement(ctx, tx, &entities.StockMovement{
				PartID: created.ID, Delta: created.Quantity, QuantityAfter: created.Quantity,
				Reason: "Импорт из файла", CreatedBy: actorID(ctx),
			}); err != nil {
				return 0, false, err
			}
		}
		return created.ID, true, nil
	}
	if err != nil {
		return 0, false, err
	}

	// колонки, которых нет в файле, оставляют текущие значения
	keep := func(col string) bool { _, ok := columns[col]; return !ok }
	incoming.ID = existing.ID
	if keep("category") {
		incoming.Category = existing.Category
	}
	if keep("min_level") {
		incoming.MinLevel = existing.MinLevel
	}
	if keep("unit_cost") {
		incoming.UnitCost = existing.UnitCost
	}
	if keep("location") {
		incoming.Location = existing.Location
	}
	if keep("supplier") {
		incoming.Supplier = existing.Supplier
	}
	if _, err := s.partRepo.UpdatePart(ctx, tx, incoming); err != nil {
		return 0, false, err
	}
	if delta := incoming.Quantity - existing.Quantity; hasQty && delta != 0 {
		after, err := s.partRepo.AdjustQuantity(ctx, tx, existing.ID, delta)
		if err != nil {
			return 0, false, err
		}
		if err := s.partRepo.AddMovement(ctx, tx, &entities.StockMovement{
			PartID: existing.ID, Delta: delta, QuantityAfter: after,
			Reason: "Импорт из файла", CreatedBy: actorID(ctx),
		}); err != nil {
			return 0, false, err
		}
	}
	return existing.ID, false, nil
}

func parsePartRow(row []string, index map[string]int) (dto.CreatePartDTO, bool, error) {
	cell := func(col string) string {
		i, ok := index[col]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	payload := dto.CreatePartDTO{
		SKU:      strings.ToUpper(cell("sku")),
		Name:     cell("name"),
		Category: cell("category"),
		Location: cell("location"),
		Supplier: cell("supplier"),
	}
	var err error
	hasQty := cell("quantity") != ""
	if hasQty {
		if payload.Quantity, err = strconv.Atoi(cell("quantity")); err != nil {
			return payload, false, fmt.Errorf("quantity: %q не число", cell("quantity"))
		}
	}
	if v := cell("min_level"); v != "" {
		if payload.MinLevel, err = strconv.Atoi(v); err != nil {
			return payload, false, fmt.Errorf("min_level: %q не число", v)
		}
	}
	if v := strings.ReplaceAll(cell("unit_cost"), ",", "."); v != "" {
		if payload.UnitCost, err = strconv.ParseFloat(v, 64); err != nil {
			return payload, false, fmt.Errorf("unit_cost: %q не число", v)
		}
	}
	return payload, hasQty, nil
}

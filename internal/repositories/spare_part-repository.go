package repositories

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"cmms-system/internal/entities"
	"cmms-system/internal/infrastructure/bd"
	apperrors "cmms-system/pkg/errors"
	"cmms-system/pkg/types"
)

var partColumns = []string{
	"sp.id", "sp.sku", "sp.name", "sp.category", "sp.quantity", "sp.min_level", "sp.unit_cost", "sp.location",
	"sp.supplier", "sp.created_at", "sp.updated_at",
}

var partMap = map[string]string{
	"id":         "sp.id",
	"sku":        "sp.sku",
	"name":       "sp.name",
	"category":   "sp.category",
	"quantity":   "sp.quantity",
	"min_level":  "sp.min_level",
	"unit_cost":  "sp.unit_cost",
	"location":   "sp.location",
	"supplier":   "sp.supplier",
	"updated_at": "sp.updated_at",
}

var movementMap = map[string]string{
	"id":         "m.id",
	"ticket_id":  "m.ticket_id",
	"created_at": "m.created_at",
}

type SparePartRepositoryInterface interface {
	GetParts(ctx context.Context, filter types.Filter) ([]entities.SparePart, uint64, error)
	GetAllParts(ctx context.Context) ([]entities.SparePart, error)
	GetLowStockParts(ctx context.Context, ids []uint64) ([]entities.SparePart, error)
	FindPart(ctx context.Context, tx pgx.Tx, id uint64) (*entities.SparePart, error)
	FindPartBySKU(ctx context.Context, tx pgx.Tx, sku string) (*entities.SparePart, error)
	CreatePart(ctx context.Context, tx pgx.Tx, part *entities.SparePart) (*entities.SparePart, error)
	UpdatePart(ctx context.Context, tx pgx.Tx, part *entities.SparePart) (*entities.SparePart, error)
	DeletePart(ctx context.Context, id uint64) error
	AdjustQuantity(ctx context.Context, tx pgx.Tx, id uint64, delta int) (int, error)
	AddMovement(ctx context.Context, tx pgx.Tx, m *entities.StockMovement) error
	GetMovements(ctx context.Context, partID uint64, filter types.Filter) ([]entities.StockMovement, uint64, error)
}

type SparePartRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewSparePartRepository(storage *pgxpool.Pool, logger *zap.Logger) SparePartRepositoryInterface {
	return &SparePartRepository{storage: storage, logger: logger}
}

func scanPart(row pgx.Row) (*entities.SparePart, error) {
	var p entities.SparePart
	err := row.Scan(&p.ID, &p.SKU, &p.Name, &p.Category, &p.Quantity, &p.MinLevel, &p.UnitCost, &p.Location,
		&p.Supplier, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка сканирования spare_part: %w", err)
	}
	return &p, nil
}

func (r *SparePartRepository) queryParts(ctx context.Context, builder sq.SelectBuilder) ([]entities.SparePart, error) {
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	parts := make([]entities.SparePart, 0)
	for rows.Next() {
		p, err := scanPart(rows)
		if err != nil {
			return nil, err
		}
		parts = append(parts, *p)
	}
	return parts, rows.Err()
}

// lowStockOnly - фильтр filter[low_stock]=true.
func lowStockOnly(builder sq.SelectBuilder, filter types.Filter) sq.SelectBuilder {
	if v, ok := filter.Filter["low_stock"]; ok && fmt.Sprint(v) == "true" {
		return builder.Where("sp.quantity <= sp.min_level")
	}
	return builder
}

func (r *SparePartRepository) GetParts(ctx context.Context, filter types.Filter) ([]entities.SparePart, uint64, error) {
	countBuilder := bd.Psql.Select("COUNT(sp.id)").From("spare_parts AS sp")
	countBuilder = bd.ApplySearch(countBuilder, filter.Search, "sp.sku", "sp.name", "sp.supplier")
	countBuilder = lowStockOnly(countBuilder, filter)
	countBuilder = bd.ApplyListParams(countBuilder, bd.CountFilter(filter), partMap)

	var total uint64
	sqlCount, argsCount, err := countBuilder.ToSql()
	if err != nil {
		return nil, 0, err
	}
	if err := r.storage.QueryRow(ctx, sqlCount, argsCount...).Scan(&total); err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []entities.SparePart{}, 0, nil
	}

	builder := bd.Psql.Select(partColumns...).From("spare_parts AS sp")
	builder = bd.ApplySearch(builder, filter.Search, "sp.sku", "sp.name", "sp.supplier")
	builder = lowStockOnly(builder, filter)
	if len(filter.Sort) == 0 {
		builder = builder.OrderBy("sp.sku")
	}
	builder = bd.ApplyListParams(builder, filter, partMap)

	parts, err := r.queryParts(ctx, builder)
	return parts, total, err
}

func (r *SparePartRepository) GetAllParts(ctx context.Context) ([]entities.SparePart, error) {
	return r.queryParts(ctx, bd.Psql.Select(partColumns...).From("spare_parts AS sp").OrderBy("sp.sku"))
}

// GetLowStockParts: quantity <= min_level; пустой ids означает все позиции.
func (r *SparePartRepository) GetLowStockParts(ctx context.Context, ids []uint64) ([]entities.SparePart, error) {
	builder := bd.Psql.Select(partColumns...).From("spare_parts AS sp").
		Where("sp.quantity <= sp.min_level").
		OrderBy("sp.supplier", "sp.sku")
	if len(ids) > 0 {
		builder = builder.Where(sq.Eq{"sp.id": ids})
	}
	return r.queryParts(ctx, builder)
}

func (r *SparePartRepository) findOne(ctx context.Context, tx pgx.Tx, where sq.Eq) (*entities.SparePart, error) {
	builder := bd.Psql.Select(partColumns...).From("spare_parts AS sp").Where(where)
	if tx != nil {
		builder = builder.Suffix("FOR UPDATE")
	}
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}
	return scanPart(pick(r.storage, tx).QueryRow(ctx, query, args...))
}

func (r *SparePartRepository) FindPart(ctx context.Context, tx pgx.Tx, id uint64) (*entities.SparePart, error) {
	return r.findOne(ctx, tx, sq.Eq{"sp.id": id})
}

func (r *SparePartRepository) FindPartBySKU(ctx context.Context, tx pgx.Tx, sku string) (*entities.SparePart, error) {
	return r.findOne(ctx, tx, sq.Eq{"sp.sku": sku})
}

const partReturning = "RETURNING id, sku, name, category, quantity, min_level, unit_cost, location, supplier, created_at, updated_at"

func (r *SparePartRepository) CreatePart(ctx context.Context, tx pgx.Tx, p *entities.SparePart) (*entities.SparePart, error) {
	query := `
		INSERT INTO spare_parts (sku, name, category, quantity, min_level, unit_cost, location, supplier)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8) ` + partReturning
	created, err := scanPart(pick(r.storage, tx).QueryRow(ctx, query,
		p.SKU, p.Name, p.Category, p.Quantity, p.MinLevel, p.UnitCost, p.Location, p.Supplier))
	if err != nil {
		if pgErrCode(err) == pgUniqueViolation {
			return nil, fmt.Errorf("запчасть с артикулом %s уже существует: %w", p.SKU, apperrors.ErrConflict)
		}
		return nil, err
	}
	return created, nil
}

// UpdatePart не трогает quantity.
func (r *SparePartRepository) UpdatePart(ctx context.Context, tx pgx.Tx, p *entities.SparePart) (*entities.SparePart, error) {
	query := `
		UPDATE spare_parts
		SET sku = $1, name = $2, category = $3, min_level = $4, unit_cost = $5, location = $6, supplier = $7,
		    updated_at = NOW()
		WHERE id = $8 ` + partReturning
	updated, err := scanPart(pick(r.storage, tx).QueryRow(ctx, query,
		p.SKU, p.Name, p.Category, p.MinLevel, p.UnitCost, p.Location, p.Supplier, p.ID))
	if err != nil {
		if pgErrCode(err) == pgUniqueViolation {
			return nil, fmt.Errorf("запчасть с артикулом %s уже существует: %w", p.SKU, apperrors.ErrConflict)
		}
		return nil, err
	}
	return updated, nil
}

func (r *SparePartRepository) DeletePart(ctx context.Context, id uint64) error {
	result, err := r.storage.Exec(ctx, "DELETE FROM spare_parts WHERE id = $1", id)
	if err != nil {
		if pgErrCode(err) == pgForeignKeyViolation {
			return fmt.Errorf("запчасть использована в заявках или закупках: %w", apperrors.ErrConflict)
		}
		return fmt.Errorf("ошибка удаления spare_part: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// AdjustQuantity атомарно меняет остаток и возвращает новое значение.
// Уход в минус даёт ErrInsufficientStock, отсутствие позиции - ErrNotFound.
func (r *SparePartRepository) AdjustQuantity(ctx context.Context, tx pgx.Tx, id uint64, delta int) (int, error) {
	q := pick(r.storage, tx)
	var after int
	err := q.QueryRow(ctx, `
		UPDATE spare_parts SET quantity = quantity + $1, updated_at = NOW()
		WHERE id = $2 AND quantity + $1 >= 0
		RETURNING quantity`, delta, id).Scan(&after)
	if err == nil {
		return after, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("ошибка изменения остатка: %w", err)
	}

	var exists bool
	if err := q.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM spare_parts WHERE id = $1)", id).Scan(&exists); err != nil {
		return 0, err
	}
	if !exists {
		return 0, apperrors.ErrNotFound
	}
	return 0, apperrors.ErrInsufficientStock
}

func (r *SparePartRepository) AddMovement(ctx context.Context, tx pgx.Tx, m *entities.StockMovement) error {
	_, err := pick(r.storage, tx).Exec(ctx, `
		INSERT INTO stock_movements (part_id, delta, quantity_after, reason, ticket_id, requisition_id, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		m.PartID, m.Delta, m.QuantityAfter, m.Reason, m.TicketID, m.RequisitionID, m.CreatedBy)
	if err != nil {
		return fmt.Errorf("ошибка записи движения склада: %w", err)
	}
	return nil
}

func (r *SparePartRepository) GetMovements(ctx context.Context, partID uint64, filter types.Filter) ([]entities.StockMovement, uint64, error) {
	var total uint64
	countBuilder := bd.Psql.Select("COUNT(m.id)").From("stock_movements AS m").Where(sq.Eq{"m.part_id": partID})
	countBuilder = bd.ApplyListParams(countBuilder, bd.CountFilter(filter), movementMap)
	sqlCount, argsCount, err := countBuilder.ToSql()
	if err != nil {
		return nil, 0, err
	}
	if err := r.storage.QueryRow(ctx, sqlCount, argsCount...).Scan(&total); err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []entities.StockMovement{}, 0, nil
	}

	builder := bd.Psql.Select(
		"m.id", "m.part_id", "m.delta", "m.quantity_after", "m.reason", "m.ticket_id", "m.requisition_id",
		"m.created_by", "m.created_at",
	).From("stock_movements AS m").Where(sq.Eq{"m.part_id": partID})
	if len(filter.Sort) == 0 {
		builder = builder.OrderBy("m.id DESC")
	}
	builder = bd.ApplyListParams(builder, filter, movementMap)

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, 0, err
	}
	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	movements := make([]entities.StockMovement, 0)
	for rows.Next() {
		var m entities.StockMovement
		if err := rows.Scan(&m.ID, &m.PartID, &m.Delta, &m.QuantityAfter, &m.Reason, &m.TicketID, &m.RequisitionID,
			&m.CreatedBy, &m.CreatedAt); err != nil {
			return nil, 0, err
		}
		movements = append(movements, m)
	}
	return movements, total, rows.Err()
}

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

var requisitionColumns = []string{"r.id", "r.code", "r.status", "r.total_cost", "r.notes", "r.created_by", "r.created_at", "r.updated_at"}

var requisitionMap = map[string]string{
	"id":         "r.id",
	"code":       "r.code",
	"status":     "r.status",
	"total_cost": "r.total_cost",
	"created_at": "r.created_at",
}

type RequisitionRepositoryInterface interface {
	GetRequisitions(ctx context.Context, filter types.Filter) ([]entities.Requisition, uint64, error)
	FindRequisition(ctx context.Context, tx pgx.Tx, id uint64) (*entities.Requisition, error)
	CreateRequisition(ctx context.Context, tx pgx.Tx, req *entities.Requisition) (uint64, error)
	UpdateStatus(ctx context.Context, tx pgx.Tx, id uint64, status string) error
}

type RequisitionRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewRequisitionRepository(storage *pgxpool.Pool, logger *zap.Logger) RequisitionRepositoryInterface {
	return &RequisitionRepository{storage: storage, logger: logger}
}

func scanRequisition(row pgx.Row) (*entities.Requisition, error) {
	var req entities.Requisition
	err := row.Scan(&req.ID, &req.Code, &req.Status, &req.TotalCost, &req.Notes, &req.CreatedBy, &req.CreatedAt, &req.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка сканирования requisition: %w", err)
	}
	return &req, nil
}

func (r *RequisitionRepository) GetRequisitions(ctx context.Context, filter types.Filter) ([]entities.Requisition, uint64, error) {
	countBuilder := bd.Psql.Select("COUNT(r.id)").From("purchase_requisitions AS r")
	countBuilder = bd.ApplySearch(countBuilder, filter.Search, "r.code", "r.notes")
	countBuilder = bd.ApplyListParams(countBuilder, bd.CountFilter(filter), requisitionMap)

	var total uint64
	sqlCount, argsCount, err := countBuilder.ToSql()
	if err != nil {
		return nil, 0, err
	}
	if err := r.storage.QueryRow(ctx, sqlCount, argsCount...).Scan(&total); err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []entities.Requisition{}, 0, nil
	}

	builder := bd.Psql.Select(requisitionColumns...).From("purchase_requisitions AS r")
	builder = bd.ApplySearch(builder, filter.Search, "r.code", "r.notes")
	if len(filter.Sort) == 0 {
		builder = builder.OrderBy("r.id DESC")
	}
	builder = bd.ApplyListParams(builder, filter, requisitionMap)

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, 0, err
	}
	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	list := make([]entities.Requisition, 0)
	ids := make([]uint64, 0)
	for rows.Next() {
		req, err := scanRequisition(rows)
		if err != nil {
			return nil, 0, err
		}
		list = append(list, *req)
		ids = append(ids, req.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	rows.Close()

	items, err := r.loadItems(ctx, r.storage, ids)
	if err != nil {
		return nil, 0, err
	}
	for i := range list {
		list[i].Items = items[list[i].ID]
	}
	return list, total, nil
}

func (r *RequisitionRepository) loadItems(ctx context.Context, q Querier, ids []uint64) (map[uint64][]entities.RequisitionItem, error) {
	result := make(map[uint64][]entities.RequisitionItem, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	query, args, err := bd.Psql.Select(
		"i.id", "i.requisition_id", "i.part_id", "i.quantity", "i.unit_cost", "sp.sku", "sp.name",
	).From("purchase_requisition_items AS i").
		Join("spare_parts sp ON sp.id = i.part_id").
		Where(sq.Eq{"i.requisition_id": ids}).
		OrderBy("i.id").
		ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var it entities.RequisitionItem
		if err := rows.Scan(&it.ID, &it.RequisitionID, &it.PartID, &it.Quantity, &it.UnitCost, &it.SKU, &it.Name); err != nil {
			return nil, err
		}
		result[it.RequisitionID] = append(result[it.RequisitionID], it)
	}
	return result, rows.Err()
}

// FindRequisition внутри транзакции блокирует заявку на закупку.
func (r *RequisitionRepository) FindRequisition(ctx context.Context, tx pgx.Tx, id uint64) (*entities.Requisition, error) {
	builder := bd.Psql.Select(requisitionColumns...).From("purchase_requisitions AS r").Where(sq.Eq{"r.id": id})
	if tx != nil {
		builder = builder.Suffix("FOR UPDATE")
	}
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}
	q := pick(r.storage, tx)
	req, err := scanRequisition(q.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, err
	}
	items, err := r.loadItems(ctx, q, []uint64{id})
	if err != nil {
		return nil, err
	}
	req.Items = items[id]
	return req, nil
}

// CreateRequisition сохраняет шапку и позиции; total_cost считает вызывающий.
func (r *RequisitionRepository) CreateRequisition(ctx context.Context, tx pgx.Tx, req *entities.Requisition) (uint64, error) {
	q := pick(r.storage, tx)
	var id uint64
	err := q.QueryRow(ctx, `
		INSERT INTO purchase_requisitions (code, status, total_cost, notes, created_by)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		req.Code, req.Status, req.TotalCost, req.Notes, req.CreatedBy,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("ошибка создания requisition: %w", err)
	}

	for _, it := range req.Items {
		_, err := q.Exec(ctx, `
			INSERT INTO purchase_requisition_items (requisition_id, part_id, quantity, unit_cost)
			VALUES ($1, $2, $3, $4)`, id, it.PartID, it.Quantity, it.UnitCost)
		if err != nil {
			if pgErrCode(err) == pgForeignKeyViolation {
				return 0, fmt.Errorf("запчасть %d не найдена: %w", it.PartID, apperrors.ErrBadRequest)
			}
			return 0, fmt.Errorf("ошибка создания позиции requisition: %w", err)
		}
	}
	return id, nil
}

func (r *RequisitionRepository) UpdateStatus(ctx context.Context, tx pgx.Tx, id uint64, status string) error {
	result, err := pick(r.storage, tx).Exec(ctx,
		"UPDATE purchase_requisitions SET status = $1, updated_at = NOW() WHERE id = $2", status, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

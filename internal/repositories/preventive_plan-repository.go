package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"cmms-system/internal/entities"
	"cmms-system/internal/infrastructure/bd"
	apperrors "cmms-system/pkg/errors"
	"cmms-system/pkg/types"
)

var planColumns = []string{
	"p.id", "p.name", "p.asset_id", "p.technician_id", "p.description", "p.frequency_value", "p.frequency_unit",
	"p.last_execution", "p.status", "p.estimated_hours", "p.checklist", "p.created_at", "p.updated_at", "a.name",
}

var planMap = map[string]string{
	"id":             "p.id",
	"name":           "p.name",
	"asset_id":       "p.asset_id",
	"technician_id":  "p.technician_id",
	"status":         "p.status",
	"frequency_unit": "p.frequency_unit",
	"last_execution": "p.last_execution",
	"created_at":     "p.created_at",
}

type PreventivePlanRepositoryInterface interface {
	GetPlans(ctx context.Context, filter types.Filter) ([]entities.PreventivePlan, uint64, error)
	GetPlansByStatus(ctx context.Context, status string) ([]entities.PreventivePlan, error)
	GetPlansByAsset(ctx context.Context, assetID uint64) ([]entities.PreventivePlan, error)
	FindPlan(ctx context.Context, tx pgx.Tx, id uint64) (*entities.PreventivePlan, error)
	CreatePlan(ctx context.Context, plan *entities.PreventivePlan) (uint64, error)
	UpdatePlan(ctx context.Context, plan *entities.PreventivePlan) error
	DeletePlan(ctx context.Context, id uint64) error
	SetStatus(ctx context.Context, id uint64, status string) error
	SetLastExecution(ctx context.Context, tx pgx.Tx, id uint64, at time.Time) error
}

type PreventivePlanRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewPreventivePlanRepository(storage *pgxpool.Pool, logger *zap.Logger) PreventivePlanRepositoryInterface {
	return &PreventivePlanRepository{storage: storage, logger: logger}
}

func scanPlan(row pgx.Row) (*entities.PreventivePlan, error) {
	var p entities.PreventivePlan
	err := row.Scan(
		&p.ID, &p.Name, &p.AssetID, &p.TechnicianID, &p.Description, &p.FrequencyValue, &p.FrequencyUnit,
		&p.LastExecution, &p.Status, &p.EstimatedHours, &p.Checklist, &p.CreatedAt, &p.UpdatedAt, &p.AssetName,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка сканирования preventive_plan: %w", err)
	}
	if p.Checklist == nil {
		p.Checklist = []string{}
	}
	return &p, nil
}

func planSelect() sq.SelectBuilder {
	return bd.Psql.Select(planColumns...).From("preventive_plans AS p").Join("assets a ON a.id = p.asset_id")
}

func (r *PreventivePlanRepository) queryPlans(ctx context.Context, builder sq.SelectBuilder) ([]entities.PreventivePlan, error) {
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	plans := make([]entities.PreventivePlan, 0)
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, err
		}
		plans = append(plans, *p)
	}
	return plans, rows.Err()
}

func (r *PreventivePlanRepository) GetPlans(ctx context.Context, filter types.Filter) ([]entities.PreventivePlan, uint64, error) {
	countBuilder := bd.Psql.Select("COUNT(p.id)").From("preventive_plans AS p").Join("assets a ON a.id = p.asset_id")
	countBuilder = bd.ApplySearch(countBuilder, filter.Search, "p.name", "a.name", "a.code")
	countBuilder = bd.ApplyListParams(countBuilder, bd.CountFilter(filter), planMap)

	var total uint64
	sqlCount, argsCount, err := countBuilder.ToSql()
	if err != nil {
		return nil, 0, err
	}
	if err := r.storage.QueryRow(ctx, sqlCount, argsCount...).Scan(&total); err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []entities.PreventivePlan{}, 0, nil
	}

	builder := bd.ApplySearch(planSelect(), filter.Search, "p.name", "a.name", "a.code")
	if len(filter.Sort) == 0 {
		builder = builder.OrderBy("p.id")
	}
	builder = bd.ApplyListParams(builder, filter, planMap)

	plans, err := r.queryPlans(ctx, builder)
	return plans, total, err
}

func (r *PreventivePlanRepository) GetPlansByStatus(ctx context.Context, status string) ([]entities.PreventivePlan, error) {
	builder := planSelect()
	if status != "" {
		builder = builder.Where(sq.Eq{"p.status": status})
	}
	return r.queryPlans(ctx, builder.OrderBy("p.id"))
}

func (r *PreventivePlanRepository) GetPlansByAsset(ctx context.Context, assetID uint64) ([]entities.PreventivePlan, error) {
	return r.queryPlans(ctx, planSelect().Where(sq.Eq{"p.asset_id": assetID}).OrderBy("p.id"))
}

func (r *PreventivePlanRepository) FindPlan(ctx context.Context, tx pgx.Tx, id uint64) (*entities.PreventivePlan, error) {
	builder := planSelect().Where(sq.Eq{"p.id": id})
	if tx != nil {
		builder = builder.Suffix("FOR UPDATE OF p")
	}
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}
	return scanPlan(pick(r.storage, tx).QueryRow(ctx, query, args...))
}

func (r *PreventivePlanRepository) CreatePlan(ctx context.Context, p *entities.PreventivePlan) (uint64, error) {
	query := `
		INSERT INTO preventive_plans (name, asset_id, technician_id, description, frequency_value, frequency_unit,
		                              last_execution, status, estimated_hours, checklist)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id`
	var id uint64
	err := r.storage.QueryRow(ctx, query,
		p.Name, p.AssetID, p.TechnicianID, p.Description, p.FrequencyValue, p.FrequencyUnit,
		p.LastExecution, p.Status, p.EstimatedHours, p.Checklist,
	).Scan(&id)
	if err != nil {
		if pgErrCode(err) == pgForeignKeyViolation {
			return 0, fmt.Errorf("актив или техник не найден: %w", apperrors.ErrBadRequest)
		}
		return 0, fmt.Errorf("ошибка создания preventive_plan: %w", err)
	}
	return id, nil
}

func (r *PreventivePlanRepository) UpdatePlan(ctx context.Context, p *entities.PreventivePlan) error {
	query := `
		UPDATE preventive_plans
		SET name = $1, technician_id = $2, description = $3, frequency_value = $4, frequency_unit = $5,
		    last_execution = $6, estimated_hours = $7, checklist = $8, updated_at = NOW()
		WHERE id = $9`
	result, err := r.storage.Exec(ctx, query,
		p.Name, p.TechnicianID, p.Description, p.FrequencyValue, p.FrequencyUnit,
		p.LastExecution, p.EstimatedHours, p.Checklist, p.ID,
	)
	if err != nil {
		if pgErrCode(err) == pgForeignKeyViolation {
			return fmt.Errorf("техник не найден: %w", apperrors.ErrBadRequest)
		}
		return fmt.Errorf("ошибка обновления preventive_plan: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *PreventivePlanRepository) DeletePlan(ctx context.Context, id uint64) error {
	result, err := r.storage.Exec(ctx, "DELETE FROM preventive_plans WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("ошибка удаления preventive_plan: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *PreventivePlanRepository) SetStatus(ctx context.Context, id uint64, status string) error {
	result, err := r.storage.Exec(ctx,
		"UPDATE preventive_plans SET status = $1, updated_at = NOW() WHERE id = $2", status, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *PreventivePlanRepository) SetLastExecution(ctx context.Context, tx pgx.Tx, id uint64, at time.Time) error {
	result, err := pick(r.storage, tx).Exec(ctx,
		"UPDATE preventive_plans SET last_execution = $1, updated_at = NOW() WHERE id = $2", at, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

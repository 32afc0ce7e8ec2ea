package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"cmms-system/internal/entities"
	"cmms-system/internal/infrastructure/bd"
	apperrors "cmms-system/pkg/errors"
	"cmms-system/pkg/types"
)

var technicianColumns = []string{
	"t.id", "t.name", "t.specialty", "t.phone", "t.email", "t.hourly_rate", "t.active", "t.user_id",
	"t.created_at", "t.updated_at",
}

var technicianMap = map[string]string{
	"id":          "t.id",
	"name":        "t.name",
	"specialty":   "t.specialty",
	"active":      "t.active",
	"hourly_rate": "t.hourly_rate",
	"created_at":  "t.created_at",
}

type TechnicianRepositoryInterface interface {
	GetTechnicians(ctx context.Context, filter types.Filter) ([]entities.Technician, uint64, error)
	FindTechnician(ctx context.Context, tx pgx.Tx, id uint64) (*entities.Technician, error)
	CreateTechnician(ctx context.Context, t *entities.Technician) (*entities.Technician, error)
	UpdateTechnician(ctx context.Context, t *entities.Technician) (*entities.Technician, error)
	DeleteTechnician(ctx context.Context, id uint64) error
	GetWorkload(ctx context.Context) ([]entities.TechnicianWorkload, error)
}

type TechnicianRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewTechnicianRepository(storage *pgxpool.Pool, logger *zap.Logger) TechnicianRepositoryInterface {
	return &TechnicianRepository{storage: storage, logger: logger}
}

func scanTechnician(row pgx.Row) (*entities.Technician, error) {
	var t entities.Technician
	err := row.Scan(&t.ID, &t.Name, &t.Specialty, &t.Phone, &t.Email, &t.HourlyRate, &t.Active, &t.UserID,
		&t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка сканирования technician: %w", err)
	}
	return &t, nil
}

func (r *TechnicianRepository) GetTechnicians(ctx context.Context, filter types.Filter) ([]entities.Technician, uint64, error) {
	countBuilder := bd.Psql.Select("COUNT(t.id)").From("technicians AS t")
	countBuilder = bd.ApplySearch(countBuilder, filter.Search, "t.name", "t.specialty", "t.email")
	countBuilder = bd.ApplyListParams(countBuilder, bd.CountFilter(filter), technicianMap)

	var total uint64
	sqlCount, argsCount, err := countBuilder.ToSql()
	if err != nil {
		return nil, 0, err
	}
	if err := r.storage.QueryRow(ctx, sqlCount, argsCount...).Scan(&total); err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []entities.Technician{}, 0, nil
	}

	builder := bd.Psql.Select(technicianColumns...).From("technicians AS t")
	builder = bd.ApplySearch(builder, filter.Search, "t.name", "t.specialty", "t.email")
	if len(filter.Sort) == 0 {
		builder = builder.OrderBy("t.name")
	}
	builder = bd.ApplyListParams(builder, filter, technicianMap)

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, 0, err
	}
	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	result := make([]entities.Technician, 0)
	for rows.Next() {
		t, err := scanTechnician(rows)
		if err != nil {
			return nil, 0, err
		}
		result = append(result, *t)
	}
	return result, total, rows.Err()
}

func (r *TechnicianRepository) FindTechnician(ctx context.Context, tx pgx.Tx, id uint64) (*entities.Technician, error) {
	query, args, err := bd.Psql.Select(technicianColumns...).From("technicians AS t").Where("t.id = ?", id).ToSql()
	if err != nil {
		return nil, err
	}
	return scanTechnician(pick(r.storage, tx).QueryRow(ctx, query, args...))
}

func (r *TechnicianRepository) CreateTechnician(ctx context.Context, t *entities.Technician) (*entities.Technician, error) {
	query := `
		INSERT INTO technicians (name, specialty, phone, email, hourly_rate, active, user_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, name, specialty, phone, email, hourly_rate, active, user_id, created_at, updated_at`
	return scanTechnician(r.storage.QueryRow(ctx, query,
		t.Name, t.Specialty, t.Phone, t.Email, t.HourlyRate, t.Active, t.UserID))
}

func (r *TechnicianRepository) UpdateTechnician(ctx context.Context, t *entities.Technician) (*entities.Technician, error) {
	query := `
		UPDATE technicians
		SET name = $1, specialty = $2, phone = $3, email = $4, hourly_rate = $5, active = $6, updated_at = NOW()
		WHERE id = $7
		RETURNING id, name, specialty, phone, email, hourly_rate, active, user_id, created_at, updated_at`
	return scanTechnician(r.storage.QueryRow(ctx, query,
		t.Name, t.Specialty, t.Phone, t.Email, t.HourlyRate, t.Active, t.ID))
}

func (r *TechnicianRepository) DeleteTechnician(ctx context.Context, id uint64) error {
	result, err := r.storage.Exec(ctx, "DELETE FROM technicians WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("ошибка удаления technician: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// GetWorkload считает незакрытые заявки и все отработанные часы по каждому технику.
func (r *TechnicianRepository) GetWorkload(ctx context.Context) ([]entities.TechnicianWorkload, error) {
	query, args, err := bd.Psql.
		Select(
			"t.id", "t.name",
			"COUNT(tk.id) FILTER (WHERE tk.status IN ('open','in_progress','waiting_parts'))",
			"COALESCE(SUM(tk.labor_hours), 0)",
		).
		From("technicians AS t").
		LeftJoin("tickets tk ON tk.technician_id = t.id").
		Where("t.active = ?", true).
		GroupBy("t.id", "t.name").
		OrderBy("t.name").
		ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка расчёта загрузки техников: %w", err)
	}
	defer rows.Close()

	result := make([]entities.TechnicianWorkload, 0)
	for rows.Next() {
		var w entities.TechnicianWorkload
		if err := rows.Scan(&w.TechnicianID, &w.Name, &w.OpenTickets, &w.LaborHours); err != nil {
			return nil, err
		}
		result = append(result, w)
	}
	return result, rows.Err()
}

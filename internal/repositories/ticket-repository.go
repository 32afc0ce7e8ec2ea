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

var ticketColumns = []string{
	"tk.id", "tk.code", "tk.title", "tk.description", "tk.asset_id", "tk.technician_id", "tk.preventive_plan_id",
	"tk.type", "tk.priority", "tk.status", "tk.opened_at", "tk.started_at", "tk.resolved_at", "tk.closed_at",
	"tk.downtime_hours", "tk.labor_hours", "tk.labor_cost", "tk.parts_cost", "tk.solution", "tk.created_by",
	"tk.created_at", "tk.updated_at",
	"a.code", "a.name", "COALESCE(t.name, '')",
}

var ticketMap = map[string]string{
	"id":                 "tk.id",
	"code":               "tk.code",
	"title":              "tk.title",
	"status":             "tk.status",
	"priority":           "tk.priority",
	"type":               "tk.type",
	"asset_id":           "tk.asset_id",
	"technician_id":      "tk.technician_id",
	"preventive_plan_id": "tk.preventive_plan_id",
	"opened_at":          "tk.opened_at",
	"resolved_at":        "tk.resolved_at",
	"created_at":         "tk.created_at",
}

var ticketSearchColumns = []string{"tk.code", "tk.title", "tk.description", "a.name"}

type TicketRepositoryInterface interface {
	GetTickets(ctx context.Context, filter types.Filter) ([]entities.Ticket, uint64, error)
	FindTicket(ctx context.Context, tx pgx.Tx, id uint64) (*entities.Ticket, error)
	CreateTicket(ctx context.Context, tx pgx.Tx, ticket *entities.Ticket) (uint64, error)
	UpdateTicket(ctx context.Context, tx pgx.Tx, ticket *entities.Ticket) error
	DeleteTicket(ctx context.Context, id uint64) error
	CountOpenForAsset(ctx context.Context, tx pgx.Tx, assetID uint64, excludeTicketID uint64) (int, error)
	AddPart(ctx context.Context, tx pgx.Tx, part *entities.TicketPart) error
	AddPartsCost(ctx context.Context, tx pgx.Tx, ticketID uint64, amount float64) error
	GetParts(ctx context.Context, ticketID uint64) ([]entities.TicketPart, error)
	GetTicketsForReport(ctx context.Context, from, to time.Time) ([]entities.Ticket, error)
}

type TicketRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewTicketRepository(storage *pgxpool.Pool, logger *zap.Logger) TicketRepositoryInterface {
	return &TicketRepository{storage: storage, logger: logger}
}

func scanTicket(row pgx.Row) (*entities.Ticket, error) {
	var tk entities.Ticket
	err := row.Scan(
		&tk.ID, &tk.Code, &tk.Title, &tk.Description, &tk.AssetID, &tk.TechnicianID, &tk.PreventivePlanID,
		&tk.Type, &tk.Priority, &tk.Status, &tk.OpenedAt, &tk.StartedAt, &tk.ResolvedAt, &tk.ClosedAt,
		&tk.DowntimeHours, &tk.LaborHours, &tk.LaborCost, &tk.PartsCost, &tk.Solution, &tk.CreatedBy,
		&tk.CreatedAt, &tk.UpdatedAt,
		&tk.AssetCode, &tk.AssetName, &tk.TechnicianName,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка сканирования ticket: %w", err)
	}
	return &tk, nil
}

func ticketSelect() sq.SelectBuilder {
	return bd.Psql.Select(ticketColumns...).
		From("tickets AS tk").
		Join("assets a ON a.id = tk.asset_id").
		LeftJoin("technicians t ON t.id = tk.technician_id")
}

func collectTickets(rows pgx.Rows) ([]entities.Ticket, error) {
	defer rows.Close()
	tickets := make([]entities.Ticket, 0)
	for rows.Next() {
		tk, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		tickets = append(tickets, *tk)
	}
	return tickets, rows.Err()
}

func (r *TicketRepository) GetTickets(ctx context.Context, filter types.Filter) ([]entities.Ticket, uint64, error) {
	countBuilder := bd.Psql.Select("COUNT(tk.id)").From("tickets AS tk").Join("assets a ON a.id = tk.asset_id")
	countBuilder = bd.ApplySearch(countBuilder, filter.Search, ticketSearchColumns...)
	countBuilder = bd.ApplyListParams(countBuilder, bd.CountFilter(filter), ticketMap)

	var total uint64
	sqlCount, argsCount, err := countBuilder.ToSql()
	if err != nil {
		return nil, 0, err
	}
	if err := r.storage.QueryRow(ctx, sqlCount, argsCount...).Scan(&total); err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []entities.Ticket{}, 0, nil
	}

	builder := bd.ApplySearch(ticketSelect(), filter.Search, ticketSearchColumns...)
	if len(filter.Sort) == 0 {
		builder = builder.OrderBy("tk.opened_at DESC")
	}
	builder = bd.ApplyListParams(builder, filter, ticketMap)

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, 0, err
	}
	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	tickets, err := collectTickets(rows)
	return tickets, total, err
}

// FindTicket внутри транзакции блокирует строку заявки (FOR UPDATE OF tk).
func (r *TicketRepository) FindTicket(ctx context.Context, tx pgx.Tx, id uint64) (*entities.Ticket, error) {
	builder := ticketSelect().Where(sq.Eq{"tk.id": id})
	if tx != nil {
		builder = builder.Suffix("FOR UPDATE OF tk")
	}
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}
	return scanTicket(pick(r.storage, tx).QueryRow(ctx, query, args...))
}

func (r *TicketRepository) CreateTicket(ctx context.Context, tx pgx.Tx, tk *entities.Ticket) (uint64, error) {
	query := `
		INSERT INTO tickets (code, title, description, asset_id, technician_id, preventive_plan_id, type, priority,
		                     status, opened_at, downtime_hours, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id`
	var id uint64
	err := pick(r.storage, tx).QueryRow(ctx, query,
		tk.Code, tk.Title, tk.Description, tk.AssetID, tk.TechnicianID, tk.PreventivePlanID, tk.Type, tk.Priority,
		tk.Status, tk.OpenedAt, tk.DowntimeHours, tk.CreatedBy,
	).Scan(&id)
	if err != nil {
		switch pgErrCode(err) {
		case pgForeignKeyViolation:
			return 0, fmt.Errorf("актив или техник не найден: %w", apperrors.ErrBadRequest)
		case pgUniqueViolation:
			return 0, fmt.Errorf("заявка с кодом %s уже существует: %w", tk.Code, apperrors.ErrConflict)
		}
		return 0, fmt.Errorf("ошибка создания ticket: %w", err)
	}
	return id, nil
}

func (r *TicketRepository) UpdateTicket(ctx context.Context, tx pgx.Tx, tk *entities.Ticket) error {
	query := `
		UPDATE tickets
		SET title = $1, description = $2, technician_id = $3, type = $4, priority = $5, status = $6,
		    started_at = $7, resolved_at = $8, closed_at = $9, downtime_hours = $10, labor_hours = $11,
		    labor_cost = $12, solution = $13, updated_at = NOW()
		WHERE id = $14`
	result, err := pick(r.storage, tx).Exec(ctx, query,
		tk.Title, tk.Description, tk.TechnicianID, tk.Type, tk.Priority, tk.Status,
		tk.StartedAt, tk.ResolvedAt, tk.ClosedAt, tk.DowntimeHours, tk.LaborHours,
		tk.LaborCost, tk.Solution, tk.ID,
	)
	if err != nil {
		if pgErrCode(err) == pgForeignKeyViolation {
			return fmt.Errorf("техник не найден: %w", apperrors.ErrBadRequest)
		}
		return fmt.Errorf("ошибка обновления ticket: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *TicketRepository) DeleteTicket(ctx context.Context, id uint64) error {
	result, err := r.storage.Exec(ctx, "DELETE FROM tickets WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("ошибка удаления ticket: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *TicketRepository) CountOpenForAsset(ctx context.Context, tx pgx.Tx, assetID uint64, excludeTicketID uint64) (int, error) {
	query, args, err := bd.Psql.Select("COUNT(*)").From("tickets").
		Where(sq.Eq{"asset_id": assetID, "status": entities.OpenTicketStatuses}).
		Where(sq.NotEq{"id": excludeTicketID}).
		ToSql()
	if err != nil {
		return 0, err
	}
	var n int
	err = pick(r.storage, tx).QueryRow(ctx, query, args...).Scan(&n)
	return n, err
}

func (r *TicketRepository) AddPart(ctx context.Context, tx pgx.Tx, p *entities.TicketPart) error {
	_, err := pick(r.storage, tx).Exec(ctx,
		"INSERT INTO ticket_parts (ticket_id, part_id, quantity, unit_cost) VALUES ($1, $2, $3, $4)",
		p.TicketID, p.PartID, p.Quantity, p.UnitCost)
	if err != nil {
		return fmt.Errorf("ошибка списания запчасти на заявку: %w", err)
	}
	return nil
}

func (r *TicketRepository) AddPartsCost(ctx context.Context, tx pgx.Tx, ticketID uint64, amount float64) error {
	_, err := pick(r.storage, tx).Exec(ctx,
		"UPDATE tickets SET parts_cost = parts_cost + $1, updated_at = NOW() WHERE id = $2", amount, ticketID)
	return err
}

func (r *TicketRepository) GetParts(ctx context.Context, ticketID uint64) ([]entities.TicketPart, error) {
	rows, err := r.storage.Query(ctx, `
		SELECT tp.id, tp.ticket_id, tp.part_id, tp.quantity, tp.unit_cost, tp.created_at, sp.sku, sp.name
		FROM ticket_parts tp
		JOIN spare_parts sp ON sp.id = tp.part_id
		WHERE tp.ticket_id = $1
		ORDER BY tp.id`, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	parts := make([]entities.TicketPart, 0)
	for rows.Next() {
		var p entities.TicketPart
		if err := rows.Scan(&p.ID, &p.TicketID, &p.PartID, &p.Quantity, &p.UnitCost, &p.CreatedAt, &p.SKU, &p.Name); err != nil {
			return nil, err
		}
		parts = append(parts, p)
	}
	return parts, rows.Err()
}

// GetTicketsForReport - заявки, открытые в интервале [from, to).
func (r *TicketRepository) GetTicketsForReport(ctx context.Context, from, to time.Time) ([]entities.Ticket, error) {
	query, args, err := ticketSelect().
		Where(sq.GtOrEq{"tk.opened_at": from}).
		Where(sq.Lt{"tk.opened_at": to}).
		OrderBy("tk.opened_at").
		ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return collectTickets(rows)
}

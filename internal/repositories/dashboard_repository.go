package repositories

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"cmms-system/internal/entities"
	"cmms-system/internal/infrastructure/bd"
)

type DashboardRepositoryInterface interface {
	CountAssetsByStatus(ctx context.Context) (map[string]int, error)
	CountTicketsBy(ctx context.Context, column string, onlyOpen bool) (map[string]int, error)
	GetInventoryStats(ctx context.Context) (lowStock int, value float64, err error)
	GetRepairSamples(ctx context.Context, since time.Time) ([]entities.RepairSample, error)
	GetFailureStats(ctx context.Context, since time.Time) ([]entities.AssetFailureStat, error)
	GetCostByAsset(ctx context.Context, limit uint64) ([]entities.AssetCost, error)
	GetMonthlyCounts(ctx context.Context, column string, since time.Time) ([]entities.MonthCount, error)
	GetOpenTicketCounts(ctx context.Context) ([]entities.OpenTicketCount, error)
	GetDowntimeByAsset(ctx context.Context, since time.Time) (map[uint64]float64, error)
}

type DashboardRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewDashboardRepository(storage *pgxpool.Pool, logger *zap.Logger) DashboardRepositoryInterface {
	return &DashboardRepository{storage: storage, logger: logger}
}

var groupableTicketColumns = map[string]string{
	"status":   "tk.status",
	"priority": "tk.priority",
	"type":     "tk.type",
}

func (r *DashboardRepository) countBy(ctx context.Context, builder sq.SelectBuilder) (map[string]int, error) {
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[string]int)
	for rows.Next() {
		var key string
		var n int
		if err := rows.Scan(&key, &n); err != nil {
			return nil, err
		}
		result[key] = n
	}
	return result, rows.Err()
}

func (r *DashboardRepository) CountAssetsByStatus(ctx context.Context) (map[string]int, error) {
	return r.countBy(ctx, bd.Psql.Select("a.status", "COUNT(*)").From("assets a").GroupBy("a.status"))
}

func (r *DashboardRepository) CountTicketsBy(ctx context.Context, column string, onlyOpen bool) (map[string]int, error) {
	col, ok := groupableTicketColumns[column]
	if !ok {
		return nil, fmt.Errorf("группировка по колонке %q не поддерживается", column)
	}
	builder := bd.Psql.Select(col, "COUNT(*)").From("tickets tk").GroupBy(col)
	if onlyOpen {
		builder = builder.Where(sq.Eq{"tk.status": entities.OpenTicketStatuses})
	}
	return r.countBy(ctx, builder)
}

func (r *DashboardRepository) GetInventoryStats(ctx context.Context) (int, float64, error) {
	var lowStock int
	var value float64
	err := r.storage.QueryRow(ctx, `
		SELECT COUNT(*) FILTER (WHERE quantity <= min_level),
		       COALESCE(SUM(quantity * unit_cost), 0)::float8
		FROM spare_parts`).Scan(&lowStock, &value)
	return lowStock, value, err
}

// GetRepairSamples - решённые корректирующие заявки: от начала работ (или открытия) до решения.
func (r *DashboardRepository) GetRepairSamples(ctx context.Context, since time.Time) ([]entities.RepairSample, error) {
	rows, err := r.storage.Query(ctx, `
		SELECT asset_id, EXTRACT(EPOCH FROM resolved_at - COALESCE(started_at, opened_at))::float8
		FROM tickets
		WHERE type = 'corrective' AND resolved_at IS NOT NULL AND resolved_at >= $1`, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	samples := make([]entities.RepairSample, 0)
	for rows.Next() {
		var s entities.RepairSample
		var seconds float64
		if err := rows.Scan(&s.AssetID, &seconds); err != nil {
			return nil, err
		}
		if seconds < 0 {
			seconds = 0
		}
		s.Duration = time.Duration(seconds * float64(time.Second))
		samples = append(samples, s)
	}
	return samples, rows.Err()
}

// GetFailureStats: Since - позднейшая из дат ввода в эксплуатацию, создания и начала окна.
func (r *DashboardRepository) GetFailureStats(ctx context.Context, since time.Time) ([]entities.AssetFailureStat, error) {
	rows, err := r.storage.Query(ctx, `
		SELECT a.id, a.code, a.name,
		       GREATEST($1::timestamptz, COALESCE(a.install_date::timestamptz, a.created_at), a.created_at),
		       COUNT(tk.id) FILTER (WHERE tk.type = 'corrective'),
		       COALESCE(SUM(tk.downtime_hours), 0)::float8
		FROM assets a
		LEFT JOIN tickets tk ON tk.asset_id = a.id AND tk.opened_at >= $1 AND tk.status <> 'cancelled'
		GROUP BY a.id, a.code, a.name
		ORDER BY a.code`, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := make([]entities.AssetFailureStat, 0)
	for rows.Next() {
		var s entities.AssetFailureStat
		if err := rows.Scan(&s.AssetID, &s.Code, &s.Name, &s.Since, &s.Failures, &s.Downtime); err != nil {
			return nil, err
		}
		stats = append(stats, s)
	}
	return stats, rows.Err()
}

func (r *DashboardRepository) GetCostByAsset(ctx context.Context, limit uint64) ([]entities.AssetCost, error) {
	query, args, err := bd.Psql.Select(
		"a.id", "a.code", "a.name",
		"COALESCE(SUM(tk.labor_cost), 0)::float8", "COALESCE(SUM(tk.parts_cost), 0)::float8",
	).From("assets a").
		Join("tickets tk ON tk.asset_id = a.id").
		GroupBy("a.id", "a.code", "a.name").
		OrderBy("SUM(tk.labor_cost + tk.parts_cost) DESC").
		Limit(limit).
		ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	costs := make([]entities.AssetCost, 0)
	for rows.Next() {
		var c entities.AssetCost
		if err := rows.Scan(&c.AssetID, &c.Code, &c.Name, &c.LaborCost, &c.PartsCost); err != nil {
			return nil, err
		}
		costs = append(costs, c)
	}
	return costs, rows.Err()
}

var monthlyColumns = map[string]string{
	"opened_at":   "opened_at",
	"resolved_at": "resolved_at",
}

func (r *DashboardRepository) GetMonthlyCounts(ctx context.Context, column string, since time.Time) ([]entities.MonthCount, error) {
	col, ok := monthlyColumns[column]
	if !ok {
		return nil, fmt.Errorf("помесячная статистика по колонке %q не поддерживается", column)
	}
	query := fmt.Sprintf(`
		SELECT date_trunc('month', %[1]s), COUNT(*)
		FROM tickets
		WHERE %[1]s IS NOT NULL AND %[1]s >= $1
		GROUP BY 1
		ORDER BY 1`, col)
	rows, err := r.storage.Query(ctx, query, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make([]entities.MonthCount, 0)
	for rows.Next() {
		var c entities.MonthCount
		if err := rows.Scan(&c.Month, &c.Count); err != nil {
			return nil, err
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

func (r *DashboardRepository) GetOpenTicketCounts(ctx context.Context) ([]entities.OpenTicketCount, error) {
	query, args, err := bd.Psql.Select("tk.asset_id", "tk.priority", "COUNT(*)").
		From("tickets tk").
		Where(sq.Eq{"tk.status": entities.OpenTicketStatuses}).
		GroupBy("tk.asset_id", "tk.priority").
		ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make([]entities.OpenTicketCount, 0)
	for rows.Next() {
		var c entities.OpenTicketCount
		if err := rows.Scan(&c.AssetID, &c.Priority, &c.Count); err != nil {
			return nil, err
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

func (r *DashboardRepository) GetDowntimeByAsset(ctx context.Context, since time.Time) (map[uint64]float64, error) {
	rows, err := r.storage.Query(ctx, `
		SELECT asset_id, COALESCE(SUM(downtime_hours), 0)::float8
		FROM tickets
		WHERE opened_at >= $1 AND status <> 'cancelled'
		GROUP BY asset_id`, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[uint64]float64)
	for rows.Next() {
		var id uint64
		var hours float64
		if err := rows.Scan(&id, &hours); err != nil {
			return nil, err
		}
		result[id] = hours
	}
	return result, rows.Err()
}

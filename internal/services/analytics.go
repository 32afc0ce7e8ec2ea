package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"cmms-system/internal/dto"
	"cmms-system/internal/entities"
	"cmms-system/internal/maintenance"
	"cmms-system/internal/repositories"
	"cmms-system/pkg/ai"
	"cmms-system/pkg/utils"
)

const (
	dashboardCacheKey     = "analytics:dashboard"
	analyticsCachePrefix  = "analytics:"
	reliabilityWindowDays = 365
	trendMonths           = 12
	costTopAssets         = 10
)

type AnalyticsServiceInterface interface {
	GetDashboard(ctx context.Context) (*dto.DashboardDTO, error)
	InvalidateCache(ctx context.Context)
	GetInsights(ctx context.Context) (*dto.AIResponseDTO, error)
	ExportTicketsReport(ctx context.Context, from, to time.Time) (*bytes.Buffer, error)
}

type AnalyticsService struct {
	*BaseService
	repo           repositories.DashboardRepositoryInterface
	planRepo       repositories.PreventivePlanRepositoryInterface
	technicianRepo repositories.TechnicianRepositoryInterface
	ticketRepo     repositories.TicketRepositoryInterface
	ai             ai.Client
	cacheTTL       time.Duration
	logger         *zap.Logger
	now            func() time.Time
}

func NewAnalyticsService(
	repo repositories.DashboardRepositoryInterface,
	planRepo repositories.PreventivePlanRepositoryInterface,
	technicianRepo repositories.TechnicianRepositoryInterface,
	ticketRepo repositories.TicketRepositoryInterface,
	cache repositories.CacheRepositoryInterface,
	aiClient ai.Client,
	cacheTTL time.Duration,
	logger *zap.Logger,
) AnalyticsServiceInterface {
	return &AnalyticsService{
		BaseService:    NewBaseService(cache, logger),
		repo:           repo,
		planRepo:       planRepo,
		technicianRepo: technicianRepo,
		ticketRepo:     ticketRepo,
		ai:             aiClient,
		cacheTTL:       cacheTTL,
		logger:         logger,
		now:            time.Now,
	}
}

func (s *AnalyticsService) GetDashboard(ctx context.Context) (*dto.DashboardDTO, error) {
	var cached dto.DashboardDTO
	if s.CacheGet(ctx, dashboardCacheKey, &cached) {
		return &cached, nil
	}

	now := s.now()
	reliabilitySince := now.AddDate(0, 0, -reliabilityWindowDays)
	trendSince := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).AddDate(0, -(trendMonths - 1), 0)

	var (
		res      dto.DashboardDTO
		samples  []entities.RepairSample
		failures []entities.AssetFailureStat
		costs    []entities.AssetCost
		opened   []entities.MonthCount
		resolved []entities.MonthCount
		plans    []entities.PreventivePlan
		workload []entities.TechnicianWorkload
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { res.AssetsByStatus, err = s.repo.CountAssetsByStatus(gctx); return })
	g.Go(func() (err error) { res.OpenByPriority, err = s.repo.CountTicketsBy(gctx, "priority", true); return })
	g.Go(func() (err error) { res.TicketsByStatus, err = s.repo.CountTicketsBy(gctx, "status", false); return })
	g.Go(func() (err error) { res.TicketsByType, err = s.repo.CountTicketsBy(gctx, "type", false); return })
	g.Go(func() (err error) {
		res.LowStockParts, res.InventoryValue, err = s.repo.GetInventoryStats(gctx)
		return
	})
	g.Go(func() (err error) { samples, err = s.repo.GetRepairSamples(gctx, reliabilitySince); return })
	g.Go(func() (err error) { failures, err = s.repo.GetFailureStats(gctx, reliabilitySince); return })
	g.Go(func() (err error) { costs, err = s.repo.GetCostByAsset(gctx, costTopAssets); return })
	g.Go(func() (err error) { opened, err = s.repo.GetMonthlyCounts(gctx, "opened_at", trendSince); return })
	g.Go(func() (err error) { resolved, err = s.repo.GetMonthlyCounts(gctx, "resolved_at", trendSince); return })
	g.Go(func() (err error) { plans, err = s.planRepo.GetPlansByStatus(gctx, entities.PlanStatusActive); return })
	g.Go(func() (err error) { workload, err = s.technicianRepo.GetWorkload(gctx); return })

	if err := g.Wait(); err != nil {
		s.logger.Error("Не удалось собрать данные дашборда", zap.Error(err))
		return nil, err
	}

	repairs := make([]time.Duration, 0, len(samples))
	for _, smp := range samples {
		repairs = append(repairs, smp.Duration)
	}
	res.MTTRHours = maintenance.MTTR(repairs)
	res.Reliability = buildReliability(failures, samples, now)
	res.CostByAsset = buildCostByAsset(costs)
	res.MonthlyTrend = buildMonthlyTrend(opened, resolved, trendSince, trendMonths)
	res.OverduePlans = countOverdue(plans, now)
	res.TechnicianWorkload = workloadToDTO(workload)
	res.GeneratedAt = now.Format(time.RFC3339)

	s.CacheSet(ctx, dashboardCacheKey, res, s.cacheTTL)
	return &res, nil
}

func (s *AnalyticsService) InvalidateCache(ctx context.Context) {
	s.CacheInvalidate(ctx, analyticsCachePrefix)
}

// buildReliability: наработка считается от Since до now за вычетом простоя.
func buildReliability(stats []entities.AssetFailureStat, samples []entities.RepairSample, now time.Time) []dto.AssetReliabilityDTO {
	repairsByAsset := make(map[uint64][]time.Duration)
	for _, smp := range samples {
		repairsByAsset[smp.AssetID] = append(repairsByAsset[smp.AssetID], smp.Duration)
	}

	res := make([]dto.AssetReliabilityDTO, 0, len(stats))
	for _, st := range stats {
		operating := now.Sub(st.Since).Hours() - st.Downtime
		if operating < 0 {
			operating = 0
		}
		mtbf := maintenance.MTBF(operating, st.Failures)
		mttr := maintenance.MTTR(repairsByAsset[st.AssetID])
		res = append(res, dto.AssetReliabilityDTO{
			AssetID:      st.AssetID,
			Code:         st.Code,
			Name:         st.Name,
			Failures:     st.Failures,
			MTTRHours:    mttr,
			MTBFHours:    mtbf,
			Availability: maintenance.Availability(mtbf, mttr),
		})
	}
	return res
}

func buildCostByAsset(costs []entities.AssetCost) []dto.AssetCostDTO {
	res := make([]dto.AssetCostDTO, 0, len(costs))
	for _, c := range costs {
		res = append(res, dto.AssetCostDTO{
			AssetID:   c.AssetID,
			Code:      c.Code,
			Name:      c.Name,
			LaborCost: utils.RoundTo(c.LaborCost, 2),
			PartsCost: utils.RoundTo(c.PartsCost, 2),
			TotalCost: utils.RoundTo(c.LaborCost+c.PartsCost, 2),
		})
	}
	return res
}

// buildMonthlyTrend возвращает ровно months точек начиная с since; пустые месяцы заполняются нулями.
func buildMonthlyTrend(opened, resolved []entities.MonthCount, since time.Time, months int) []dto.MonthlyTrendDTO {
	const layout = "2006-01"
	index := make(map[string]int, months)
	res := make([]dto.MonthlyTrendDTO, 0, months)
	for i := 0; i < months; i++ {
		key := since.AddDate(0, i, 0).Format(layout)
		index[key] = i
		res = append(res, dto.MonthlyTrendDTO{Month: key})
	}
	for _, c := range opened {
		if i, ok := index[c.Month.In(since.Location()).Format(layout)]; ok {
			res[i].Opened += c.Count
		}
	}
	for _, c := range resolved {
		if i, ok := index[c.Month.In(since.Location()).Format(layout)]; ok {
			res[i].Resolved += c.Count
		}
	}
	return res
}

func countOverdue(plans []entities.PreventivePlan, now time.Time) int {
	n := 0
	for i := range plans {
		sched, err := planSchedule(&plans[i], now, maintenance.DefaultDueSoonWindow)
		if err == nil && sched.DaysUntilDue < 0 {
			n++
		}
	}
	return n
}

func (s *AnalyticsService) GetInsights(ctx context.Context) (*dto.AIResponseDTO, error) {
	dashboard, err := s.GetDashboard(ctx)
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(dashboard)
	if err != nil {
		return nil, err
	}
	prompt := fmt.Sprintf(`Ты аналитик службы технического обслуживания производства.
Показатели: %s
Дай 3-5 кратких выводов о надёжности оборудования, затратах и загрузке персонала и предложи конкретные действия.`, data)

	text, err := s.ai.GenerateText(ctx, prompt)
	if err != nil {
		s.logger.Warn("ИИ-аналитика недоступна", zap.Error(err))
		return nil, err
	}
	return &dto.AIResponseDTO{Text: text}, nil
}

var ticketReportHeaders = []interface{}{
	"Номер", "Заголовок", "Актив", "Тип", "Приоритет", "Статус", "Техник",
	"Открыта", "Решена", "Простой, ч", "Трудозатраты, ч", "Работа", "Запчасти", "Итого",
}

// ExportTicketsReport выгружает заявки, открытые в [from, to).
func (s *AnalyticsService) ExportTicketsReport(ctx context.Context, from, to time.Time) (*bytes.Buffer, error) {
	tickets, err := s.ticketRepo.GetTicketsForReport(ctx, from, to)
	if err != nil {
		s.logger.Error("Не удалось получить заявки для отчёта", zap.Error(err))
		return nil, err
	}
	rows := make([][]interface{}, 0, len(tickets))
	for i := range tickets {
		t := &tickets[i]
		asset := t.AssetName
		if t.AssetCode != "" {
			asset = t.AssetCode + " " + t.AssetName
		}
		rows = append(rows, []interface{}{
			t.Code, t.Title, asset, t.Type, t.Priority, t.Status, t.TechnicianName,
			utils.FormatTime(&t.OpenedAt), utils.FormatTime(t.ResolvedAt),
			t.DowntimeHours, t.LaborHours, t.LaborCost, t.PartsCost,
			utils.RoundTo(t.LaborCost+t.PartsCost, 2),
		})
	}
	s.logger.Info("Сформирован отчёт по заявкам",
		zap.Time("from", from), zap.Time("to", to), zap.Int("rows", len(rows)))
	return buildWorkbook("Заявки", ticketReportHeaders, rows, map[string]float64{"A": 22, "B": 40, "C": 30, "G": 25})
}

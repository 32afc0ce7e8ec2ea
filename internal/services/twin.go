package services

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"cmms-system/internal/dto"
	"cmms-system/internal/entities"
	"cmms-system/internal/maintenance"
	"cmms-system/internal/repositories"
	apperrors "cmms-system/pkg/errors"
	"cmms-system/pkg/utils"
)

const twinDowntimeDays = 30

type TwinServiceInterface interface {
	GetTwin(ctx context.Context) ([]*dto.TwinNodeDTO, error)
	GetTwinNode(ctx context.Context, assetID uint64) (*dto.TwinNodeDTO, error)
}

type TwinService struct {
	assetRepo repositories.AssetRepositoryInterface
	repo      repositories.DashboardRepositoryInterface
	planRepo  repositories.PreventivePlanRepositoryInterface
	logger    *zap.Logger
	now       func() time.Time
}

func NewTwinService(
	assetRepo repositories.AssetRepositoryInterface,
	repo repositories.DashboardRepositoryInterface,
	planRepo repositories.PreventivePlanRepositoryInterface,
	logger *zap.Logger,
) TwinServiceInterface {
	return &TwinService{assetRepo: assetRepo, repo: repo, planRepo: planRepo, logger: logger, now: time.Now}
}

// twinState - сырые данные, из которых собираются узлы двойника.
type twinState struct {
	assets   []entities.Asset
	open     []entities.OpenTicketCount
	downtime map[uint64]float64
	plans    []entities.PreventivePlan
}

func (s *TwinService) load(ctx context.Context, now time.Time) (*twinState, error) {
	var st twinState
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { st.assets, err = s.assetRepo.GetAllAssets(gctx); return })
	g.Go(func() (err error) { st.open, err = s.repo.GetOpenTicketCounts(gctx); return })
	g.Go(func() (err error) {
		st.downtime, err = s.repo.GetDowntimeByAsset(gctx, now.AddDate(0, 0, -twinDowntimeDays))
		return
	})
	g.Go(func() (err error) { st.plans, err = s.planRepo.GetPlansByStatus(gctx, entities.PlanStatusActive); return })
	if err := g.Wait(); err != nil {
		s.logger.Error("Не удалось загрузить состояние цифрового двойника", zap.Error(err))
		return nil, err
	}
	return &st, nil
}

// buildTwinNodes строит узлы без связей; ключ - id актива.
func buildTwinNodes(st *twinState, now time.Time) map[uint64]*dto.TwinNodeDTO {
	openByAsset := make(map[uint64]map[string]int)
	for _, c := range st.open {
		if openByAsset[c.AssetID] == nil {
			openByAsset[c.AssetID] = make(map[string]int)
		}
		openByAsset[c.AssetID][c.Priority] += c.Count
	}

	overdue := make(map[uint64]int)
	nextDue := make(map[uint64]time.Time)
	for i := range st.plans {
		p := &st.plans[i]
		sched, err := planSchedule(p, now, maintenance.DefaultDueSoonWindow)
		if err != nil {
			continue
		}
		if sched.DaysUntilDue < 0 {
			overdue[p.AssetID]++
		}
		if cur, ok := nextDue[p.AssetID]; !ok || sched.NextDueDate.Before(cur) {
			nextDue[p.AssetID] = sched.NextDueDate
		}
	}

	nodes := make(map[uint64]*dto.TwinNodeDTO, len(st.assets))
	for i := range st.assets {
		a := &st.assets[i]
		byPriority := openByAsset[a.ID]
		if byPriority == nil {
			byPriority = map[string]int{}
		}
		openTotal := 0
		for _, n := range byPriority {
			openTotal += n
		}
		downtime := utils.RoundTo(st.downtime[a.ID], 2)
		score := maintenance.HealthScore(maintenance.HealthInput{
			Status:           a.Status,
			OpenByPriority:   byPriority,
			OverduePlans:     overdue[a.ID],
			DowntimeHours30d: downtime,
		})
		node := &dto.TwinNodeDTO{
			AssetID:        a.ID,
			Code:           a.Code,
			Name:           a.Name,
			Location:       a.Location,
			Status:         a.Status,
			Criticality:    a.Criticality,
			HealthScore:    score,
			HealthLevel:    maintenance.HealthLevel(score),
			OpenTickets:    openTotal,
			OpenByPriority: byPriority,
			OverduePlans:   overdue[a.ID],
			DowntimeHours:  downtime,
			Children:       []*dto.TwinNodeDTO{},
		}
		if due, ok := nextDue[a.ID]; ok {
			node.NextDueDate = due.Format(utils.DateLayout)
		}
		nodes[a.ID] = node
	}
	return nodes
}

func (s *TwinService) GetTwin(ctx context.Context) ([]*dto.TwinNodeDTO, error) {
	now := s.now()
	st, err := s.load(ctx, now)
	if err != nil {
		return nil, err
	}
	nodes := buildTwinNodes(st, now)

	forest := make([]maintenance.Node, 0, len(st.assets))
	for i := range st.assets {
		forest = append(forest, maintenance.Node{ID: st.assets[i].ID, ParentID: st.assets[i].ParentID})
	}
	roots, children := maintenance.Forest(forest)
	for parent, ids := range children {
		for _, id := range ids {
			nodes[parent].Children = append(nodes[parent].Children, nodes[id])
		}
	}

	res := make([]*dto.TwinNodeDTO, 0, len(roots))
	for _, id := range roots {
		res = append(res, nodes[id])
	}
	return res, nil
}

// GetTwinNode возвращает узел вместе с его поддеревом.
func (s *TwinService) GetTwinNode(ctx context.Context, assetID uint64) (*dto.TwinNodeDTO, error) {
	tree, err := s.GetTwin(ctx)
	if err != nil {
		return nil, err
	}
	if node := findTwinNode(tree, assetID); node != nil {
		return node, nil
	}
	return nil, apperrors.ErrNotFound
}

func findTwinNode(nodes []*dto.TwinNodeDTO, id uint64) *dto.TwinNodeDTO {
	for _, n := range nodes {
		if n.AssetID == id {
			return n
		}
		if found := findTwinNode(n.Children, id); found != nil {
			return found
		}
	}
	return nil
}

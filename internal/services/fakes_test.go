package services

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"cmms-system/internal/entities"
	"cmms-system/internal/repositories"
	apperrors "cmms-system/pkg/errors"
	"cmms-system/pkg/eventbus"
	"cmms-system/pkg/service"
	"cmms-system/pkg/types"
)

// fixedNow - "текущее" время во всех тестах сервисов.
var fixedNow = time.Date(2024, time.March, 15, 10, 0, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

func ptrTime(t time.Time) *time.Time { return &t }

func ptrID(v uint64) *uint64 { return &v }

// ---------- транзакции и события ----------

type fakeTxManager struct{ calls int }

func (m *fakeTxManager) RunInTransaction(_ context.Context, fn func(tx pgx.Tx) error) error {
	m.calls++
	return fn(nil)
}

type fakePublisher struct {
	mu     sync.Mutex
	events []eventbus.Event
}

func (p *fakePublisher) Publish(_ context.Context, e eventbus.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
}

func (p *fakePublisher) names() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	res := make([]string, 0, len(p.events))
	for _, e := range p.events {
		res = append(res, e.Name())
	}
	return res
}

type fakeAI struct {
	text    string
	err     error
	prompts []string
}

func (f *fakeAI) GenerateText(_ context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	return f.text, f.err
}

func (f *fakeAI) Enabled() bool { return f.err == nil }

// ---------- кэш ----------

type fakeCache struct {
	data map[string]string
}

func newFakeCache() *fakeCache { return &fakeCache{data: map[string]string{}} }

func (c *fakeCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	c.data[key] = toString(value)
	return nil
}

func (c *fakeCache) Get(_ context.Context, key string) (string, error) {
	v, ok := c.data[key]
	if !ok {
		return "", repositories.ErrCacheMiss
	}
	return v, nil
}

func (c *fakeCache) Del(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(c.data, k)
	}
	return nil
}

func (c *fakeCache) Incr(_ context.Context, key string) (int64, error) {
	var n int64
	if v, ok := c.data[key]; ok {
		_ = json.Unmarshal([]byte(v), &n)
	}
	n++
	c.data[key] = toString(n)
	return n, nil
}

func (c *fakeCache) GetJSON(_ context.Context, key string, dst interface{}) error {
	v, ok := c.data[key]
	if !ok {
		return repositories.ErrCacheMiss
	}
	return json.Unmarshal([]byte(v), dst)
}

func (c *fakeCache) SetJSON(_ context.Context, key string, value interface{}, _ time.Duration) error {
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.data[key] = string(b)
	return nil
}

func (c *fakeCache) DelByPrefix(_ context.Context, prefix string) error {
	for k := range c.data {
		if strings.HasPrefix(k, prefix) {
			delete(c.data, k)
		}
	}
	return nil
}

func toString(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	b, _ := json.Marshal(v)
	return string(b)
}

// ---------- активы ----------

type fakeAssetRepo struct {
	assets        map[uint64]*entities.Asset
	order         []uint64
	nextID        uint64
	statusUpdates []string
	deleteErr     error
}

func newFakeAssetRepo(assets ...entities.Asset) *fakeAssetRepo {
	r := &fakeAssetRepo{assets: map[uint64]*entities.Asset{}, nextID: 100}
	for i := range assets {
		a := assets[i]
		r.assets[a.ID] = &a
		r.order = append(r.order, a.ID)
	}
	return r
}

func (r *fakeAssetRepo) GetAssets(ctx context.Context, _ types.Filter) ([]entities.Asset, uint64, error) {
	all, _ := r.GetAllAssets(ctx)
	return all, uint64(len(all)), nil
}

func (r *fakeAssetRepo) GetAllAssets(context.Context) ([]entities.Asset, error) {
	res := make([]entities.Asset, 0, len(r.order))
	for _, id := range r.order {
		if a, ok := r.assets[id]; ok {
			res = append(res, *a)
		}
	}
	return res, nil
}

func (r *fakeAssetRepo) FindAsset(_ context.Context, _ pgx.Tx, id uint64) (*entities.Asset, error) {
	a, ok := r.assets[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (r *fakeAssetRepo) CreateAsset(_ context.Context, a *entities.Asset) (*entities.Asset, error) {
	r.nextID++
	cp := *a
	cp.ID = r.nextID
	cp.CreatedAt = ptrTime(fixedNow)
	r.assets[cp.ID] = &cp
	r.order = append(r.order, cp.ID)
	out := cp
	return &out, nil
}

func (r *fakeAssetRepo) UpdateAsset(_ context.Context, a *entities.Asset) (*entities.Asset, error) {
	if _, ok := r.assets[a.ID]; !ok {
		return nil, apperrors.ErrNotFound
	}
	cp := *a
	r.assets[a.ID] = &cp
	out := cp
	return &out, nil
}

func (r *fakeAssetRepo) UpdateStatus(_ context.Context, _ pgx.Tx, id uint64, status string) error {
	a, ok := r.assets[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	a.Status = status
	r.statusUpdates = append(r.statusUpdates, status)
	return nil
}

func (r *fakeAssetRepo) DeleteAsset(_ context.Context, id uint64) error {
	if r.deleteErr != nil {
		return r.deleteErr
	}
	if _, ok := r.assets[id]; !ok {
		return apperrors.ErrNotFound
	}
	delete(r.assets, id)
	return nil
}

func (r *fakeAssetRepo) GetParentMap(context.Context) (map[uint64]*uint64, error) {
	res := make(map[uint64]*uint64, len(r.assets))
	for id, a := range r.assets {
		res[id] = a.ParentID
	}
	return res, nil
}

// ---------- техники ----------

type fakeTechnicianRepo struct {
	techs    map[uint64]*entities.Technician
	workload []entities.TechnicianWorkload
}

func newFakeTechnicianRepo(techs ...entities.Technician) *fakeTechnicianRepo {
	r := &fakeTechnicianRepo{techs: map[uint64]*entities.Technician{}}
	for i := range techs {
		t := techs[i]
		r.techs[t.ID] = &t
	}
	return r
}

func (r *fakeTechnicianRepo) GetTechnicians(context.Context, types.Filter) ([]entities.Technician, uint64, error) {
	res := make([]entities.Technician, 0, len(r.techs))
	for _, t := range r.techs {
		res = append(res, *t)
	}
	return res, uint64(len(res)), nil
}

func (r *fakeTechnicianRepo) FindTechnician(_ context.Context, _ pgx.Tx, id uint64) (*entities.Technician, error) {
	t, ok := r.techs[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (r *fakeTechnicianRepo) CreateTechnician(_ context.Context, t *entities.Technician) (*entities.Technician, error) {
	cp := *t
	cp.ID = uint64(len(r.techs) + 1)
	r.techs[cp.ID] = &cp
	return &cp, nil
}

func (r *fakeTechnicianRepo) UpdateTechnician(_ context.Context, t *entities.Technician) (*entities.Technician, error) {
	cp := *t
	r.techs[t.ID] = &cp
	return &cp, nil
}

func (r *fakeTechnicianRepo) DeleteTechnician(_ context.Context, id uint64) error {
	delete(r.techs, id)
	return nil
}

func (r *fakeTechnicianRepo) GetWorkload(context.Context) ([]entities.TechnicianWorkload, error) {
	return r.workload, nil
}

// ---------- заявки ----------

type fakeTicketRepo struct {
	tickets   map[uint64]*entities.Ticket
	nextID    uint64
	parts     map[uint64][]entities.TicketPart
	openCount int
	report    []entities.Ticket
}

func newFakeTicketRepo(tickets ...entities.Ticket) *fakeTicketRepo {
	r := &fakeTicketRepo{tickets: map[uint64]*entities.Ticket{}, parts: map[uint64][]entities.TicketPart{}, nextID: 500}
	for i := range tickets {
		t := tickets[i]
		r.tickets[t.ID] = &t
	}
	return r
}

func (r *fakeTicketRepo) GetTickets(_ context.Context, filter types.Filter) ([]entities.Ticket, uint64, error) {
	res := make([]entities.Ticket, 0)
	for _, t := range r.tickets {
		if assetID, ok := filter.Filter["asset_id"]; ok && assetID != t.AssetID {
			continue
		}
		res = append(res, *t)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })
	return res, uint64(len(res)), nil
}

func (r *fakeTicketRepo) FindTicket(_ context.Context, _ pgx.Tx, id uint64) (*entities.Ticket, error) {
	t, ok := r.tickets[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (r *fakeTicketRepo) CreateTicket(_ context.Context, _ pgx.Tx, t *entities.Ticket) (uint64, error) {
	r.nextID++
	cp := *t
	cp.ID = r.nextID
	r.tickets[cp.ID] = &cp
	return cp.ID, nil
}

func (r *fakeTicketRepo) UpdateTicket(_ context.Context, _ pgx.Tx, t *entities.Ticket) error {
	if _, ok := r.tickets[t.ID]; !ok {
		return apperrors.ErrNotFound
	}
	cp := *t
	r.tickets[t.ID] = &cp
	return nil
}

func (r *fakeTicketRepo) DeleteTicket(_ context.Context, id uint64) error {
	if _, ok := r.tickets[id]; !ok {
		return apperrors.ErrNotFound
	}
	delete(r.tickets, id)
	return nil
}

func (r *fakeTicketRepo) CountOpenForAsset(context.Context, pgx.Tx, uint64, uint64) (int, error) {
	return r.openCount, nil
}

func (r *fakeTicketRepo) AddPart(_ context.Context, _ pgx.Tx, p *entities.TicketPart) error {
	r.parts[p.TicketID] = append(r.parts[p.TicketID], *p)
	return nil
}

func (r *fakeTicketRepo) AddPartsCost(_ context.Context, _ pgx.Tx, ticketID uint64, amount float64) error {
	t, ok := r.tickets[ticketID]
	if !ok {
		return apperrors.ErrNotFound
	}
	t.PartsCost += amount
	return nil
}

func (r *fakeTicketRepo) GetParts(_ context.Context, ticketID uint64) ([]entities.TicketPart, error) {
	return r.parts[ticketID], nil
}

func (r *fakeTicketRepo) GetTicketsForReport(context.Context, time.Time, time.Time) ([]entities.Ticket, error) {
	return r.report, nil
}

// ---------- планы ----------

type fakePlanRepo struct {
	plans         map[uint64]*entities.PreventivePlan
	order         []uint64
	nextID        uint64
	lastExecution map[uint64]time.Time
}

func newFakePlanRepo(plans ...entities.PreventivePlan) *fakePlanRepo {
	r := &fakePlanRepo{plans: map[uint64]*entities.PreventivePlan{}, lastExecution: map[uint64]time.Time{}, nextID: 50}
	for i := range plans {
		p := plans[i]
		r.plans[p.ID] = &p
		r.order = append(r.order, p.ID)
	}
	return r
}

func (r *fakePlanRepo) list(match func(p *entities.PreventivePlan) bool) []entities.PreventivePlan {
	res := make([]entities.PreventivePlan, 0)
	for _, id := range r.order {
		if p, ok := r.plans[id]; ok && match(p) {
			res = append(res, *p)
		}
	}
	return res
}

func (r *fakePlanRepo) GetPlans(context.Context, types.Filter) ([]entities.PreventivePlan, uint64, error) {
	res := r.list(func(*entities.PreventivePlan) bool { return true })
	return res, uint64(len(res)), nil
}

func (r *fakePlanRepo) GetPlansByStatus(_ context.Context, status string) ([]entities.PreventivePlan, error) {
	return r.list(func(p *entities.PreventivePlan) bool { return p.Status == status }), nil
}

func (r *fakePlanRepo) GetPlansByAsset(_ context.Context, assetID uint64) ([]entities.PreventivePlan, error) {
	return r.list(func(p *entities.PreventivePlan) bool { return p.AssetID == assetID }), nil
}

func (r *fakePlanRepo) FindPlan(_ context.Context, _ pgx.Tx, id uint64) (*entities.PreventivePlan, error) {
	p, ok := r.plans[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *fakePlanRepo) CreatePlan(_ context.Context, p *entities.PreventivePlan) (uint64, error) {
	r.nextID++
	cp := *p
	cp.ID = r.nextID
	cp.CreatedAt = ptrTime(fixedNow)
	r.plans[cp.ID] = &cp
	r.order = append(r.order, cp.ID)
	return cp.ID, nil
}

func (r *fakePlanRepo) UpdatePlan(_ context.Context, p *entities.PreventivePlan) error {
	if _, ok := r.plans[p.ID]; !ok {
		return apperrors.ErrNotFound
	}
	cp := *p
	r.plans[p.ID] = &cp
	return nil
}

func (r *fakePlanRepo) DeletePlan(_ context.Context, id uint64) error {
	if _, ok := r.plans[id]; !ok {
		return apperrors.ErrNotFound
	}
	delete(r.plans, id)
	return nil
}

func (r *fakePlanRepo) SetStatus(_ context.Context, id uint64, status string) error {
	p, ok := r.plans[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	p.Status = status
	return nil
}

func (r *fakePlanRepo) SetLastExecution(_ context.Context, _ pgx.Tx, id uint64, at time.Time) error {
	p, ok := r.plans[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	p.LastExecution = ptrTime(at)
	r.lastExecution[id] = at
	return nil
}

// ---------- склад ----------

type fakePartRepo struct {
	parts     map[uint64]*entities.SparePart
	order     []uint64
	nextID    uint64
	movements []entities.StockMovement
}

func newFakePartRepo(parts ...entities.SparePart) *fakePartRepo {
	r := &fakePartRepo{parts: map[uint64]*entities.SparePart{}, nextID: 900}
	for i := range parts {
		p := parts[i]
		r.parts[p.ID] = &p
		r.order = append(r.order, p.ID)
	}
	return r
}

func (r *fakePartRepo) GetParts(ctx context.Context, _ types.Filter) ([]entities.SparePart, uint64, error) {
	all, _ := r.GetAllParts(ctx)
	return all, uint64(len(all)), nil
}

func (r *fakePartRepo) GetAllParts(context.Context) ([]entities.SparePart, error) {
	res := make([]entities.SparePart, 0, len(r.order))
	for _, id := range r.order {
		if p, ok := r.parts[id]; ok {
			res = append(res, *p)
		}
	}
	return res, nil
}

func (r *fakePartRepo) GetLowStockParts(ctx context.Context, ids []uint64) ([]entities.SparePart, error) {
	wanted := make(map[uint64]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}
	all, _ := r.GetAllParts(ctx)
	res := make([]entities.SparePart, 0)
	for _, p := range all {
		if p.Quantity > p.MinLevel {
			continue
		}
		if len(ids) > 0 && !wanted[p.ID] {
			continue
		}
		res = append(res, p)
	}
	return res, nil
}

func (r *fakePartRepo) FindPart(_ context.Context, _ pgx.Tx, id uint64) (*entities.SparePart, error) {
	p, ok := r.parts[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *fakePartRepo) FindPartBySKU(_ context.Context, _ pgx.Tx, sku string) (*entities.SparePart, error) {
	for _, p := range r.parts {
		if p.SKU == sku {
			cp := *p
			return &cp, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (r *fakePartRepo) CreatePart(_ context.Context, _ pgx.Tx, p *entities.SparePart) (*entities.SparePart, error) {
	for _, existing := range r.parts {
		if existing.SKU == p.SKU {
			return nil, apperrors.ErrConflict
		}
	}
	r.nextID++
	cp := *p
	cp.ID = r.nextID
	r.parts[cp.ID] = &cp
	r.order = append(r.order, cp.ID)
	out := cp
	return &out, nil
}

func (r *fakePartRepo) UpdatePart(_ context.Context, _ pgx.Tx, p *entities.SparePart) (*entities.SparePart, error) {
	existing, ok := r.parts[p.ID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	qty := existing.Quantity
	cp := *p
	cp.Quantity = qty
	r.parts[p.ID] = &cp
	out := cp
	return &out, nil
}

func (r *fakePartRepo) DeletePart(_ context.Context, id uint64) error {
	if _, ok := r.parts[id]; !ok {
		return apperrors.ErrNotFound
	}
	delete(r.parts, id)
	return nil
}

func (r *fakePartRepo) AdjustQuantity(_ context.Context, _ pgx.Tx, id uint64, delta int) (int, error) {
	p, ok := r.parts[id]
	if !ok {
		return 0, apperrors.ErrNotFound
	}
	if p.Quantity+delta < 0 {
		return 0, apperrors.ErrInsufficientStock
	}
	p.Quantity += delta
	return p.Quantity, nil
}

func (r *fakePartRepo) AddMovement(_ context.Context, _ pgx.Tx, m *entities.StockMovement) error {
	r.movements = append(r.movements, *m)
	return nil
}

func (r *fakePartRepo) GetMovements(_ context.Context, partID uint64, _ types.Filter) ([]entities.StockMovement, uint64, error) {
	res := make([]entities.StockMovement, 0)
	for _, m := range r.movements {
		if m.PartID == partID {
			res = append(res, m)
		}
	}
	return res, uint64(len(res)), nil
}

// ---------- закупки ----------

type fakeRequisitionRepo struct {
	reqs   map[uint64]*entities.Requisition
	nextID uint64
}

func newFakeRequisitionRepo() *fakeRequisitionRepo {
	return &fakeRequisitionRepo{reqs: map[uint64]*entities.Requisition{}}
}

func (r *fakeRequisitionRepo) GetRequisitions(context.Context, types.Filter) ([]entities.Requisition, uint64, error) {
	res := make([]entities.Requisition, 0, len(r.reqs))
	for _, req := range r.reqs {
		res = append(res, *req)
	}
	return res, uint64(len(res)), nil
}

func (r *fakeRequisitionRepo) FindRequisition(_ context.Context, _ pgx.Tx, id uint64) (*entities.Requisition, error) {
	req, ok := r.reqs[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	cp := *req
	cp.Items = append([]entities.RequisitionItem(nil), req.Items...)
	return &cp, nil
}

func (r *fakeRequisitionRepo) CreateRequisition(_ context.Context, _ pgx.Tx, req *entities.Requisition) (uint64, error) {
	r.nextID++
	cp := *req
	cp.ID = r.nextID
	cp.Items = make([]entities.RequisitionItem, len(req.Items))
	for i, it := range req.Items {
		it.RequisitionID = cp.ID
		cp.Items[i] = it
	}
	r.reqs[cp.ID] = &cp
	return cp.ID, nil
}

func (r *fakeRequisitionRepo) UpdateStatus(_ context.Context, _ pgx.Tx, id uint64, status string) error {
	req, ok := r.reqs[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	req.Status = status
	return nil
}

// ---------- настройки и пользователи ----------

type fakeSettingsRepo struct {
	settings entities.SystemSettings
	err      error
	updates  int
}

func (r *fakeSettingsRepo) GetSettings(context.Context) (*entities.SystemSettings, error) {
	if r.err != nil {
		return nil, r.err
	}
	cp := r.settings
	return &cp, nil
}

func (r *fakeSettingsRepo) UpdateSettings(_ context.Context, s *entities.SystemSettings) (*entities.SystemSettings, error) {
	r.updates++
	r.settings = *s
	r.settings.UpdatedAt = ptrTime(fixedNow)
	cp := r.settings
	return &cp, nil
}

type fakeUserRepo struct {
	users map[uint64]*entities.User
}

func newFakeUserRepo(users ...entities.User) *fakeUserRepo {
	r := &fakeUserRepo{users: map[uint64]*entities.User{}}
	for i := range users {
		u := users[i]
		r.users[u.ID] = &u
	}
	return r
}

func (r *fakeUserRepo) GetUsers(context.Context, types.Filter) ([]entities.User, uint64, error) {
	res := make([]entities.User, 0, len(r.users))
	for _, u := range r.users {
		res = append(res, *u)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })
	return res, uint64(len(res)), nil
}

func (r *fakeUserRepo) FindByID(_ context.Context, id uint64) (*entities.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) FindByEmail(_ context.Context, email string) (*entities.User, error) {
	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}

func (r *fakeUserRepo) CreateUser(_ context.Context, u *entities.User) (*entities.User, error) {
	for _, existing := range r.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return nil, apperrors.ErrConflict
		}
	}
	cp := *u
	cp.ID = uint64(len(r.users) + 1)
	r.users[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (r *fakeUserRepo) CountUsers(context.Context) (uint64, error) {
	return uint64(len(r.users)), nil
}

type fakeJWT struct{}

func (fakeJWT) GenerateTokens(userID uint64, role string) (string, string, error) {
	return "access-" + role, "refresh-" + role, nil
}

func (fakeJWT) ValidateToken(token string) (*service.JwtCustomClaim, error) {
	switch token {
	case "refresh-ok":
		return &service.JwtCustomClaim{UserID: 1, Role: "admin", IsRefreshToken: true}, nil
	case "access-ok":
		return &service.JwtCustomClaim{UserID: 1, Role: "admin"}, nil
	}
	return nil, apperrors.ErrInvalidToken
}

func (fakeJWT) GetAccessTokenTTL() time.Duration  { return time.Hour }
func (fakeJWT) GetRefreshTokenTTL() time.Duration { return 24 * time.Hour }

// ---------- аналитика ----------

type fakeDashboardRepo struct {
	calls    int
	failures []entities.AssetFailureStat
	samples  []entities.RepairSample
	opened   []entities.MonthCount
	resolved []entities.MonthCount
	costs    []entities.AssetCost
	open     []entities.OpenTicketCount
	downtime map[uint64]float64
}

func (r *fakeDashboardRepo) CountAssetsByStatus(context.Context) (map[string]int, error) {
	r.calls++
	return map[string]int{"operational": 3, "maintenance": 1}, nil
}

func (r *fakeDashboardRepo) CountTicketsBy(_ context.Context, column string, _ bool) (map[string]int, error) {
	return map[string]int{column: 1}, nil
}

func (r *fakeDashboardRepo) GetInventoryStats(context.Context) (int, float64, error) {
	return 2, 1234.5, nil
}

func (r *fakeDashboardRepo) GetRepairSamples(context.Context, time.Time) ([]entities.RepairSample, error) {
	return r.samples, nil
}

func (r *fakeDashboardRepo) GetFailureStats(context.Context, time.Time) ([]entities.AssetFailureStat, error) {
	return r.failures, nil
}

func (r *fakeDashboardRepo) GetCostByAsset(context.Context, uint64) ([]entities.AssetCost, error) {
	return r.costs, nil
}

func (r *fakeDashboardRepo) GetMonthlyCounts(_ context.Context, column string, _ time.Time) ([]entities.MonthCount, error) {
	if column == "resolved_at" {
		return r.resolved, nil
	}
	return r.opened, nil
}

func (r *fakeDashboardRepo) GetOpenTicketCounts(context.Context) ([]entities.OpenTicketCount, error) {
	return r.open, nil
}

func (r *fakeDashboardRepo) GetDowntimeByAsset(context.Context, time.Time) (map[uint64]float64, error) {
	if r.downtime == nil {
		return map[uint64]float64{}, nil
	}
	return r.downtime, nil
}

var (
	_ repositories.AssetRepositoryInterface          = (*fakeAssetRepo)(nil)
	_ repositories.TechnicianRepositoryInterface     = (*fakeTechnicianRepo)(nil)
	_ repositories.TicketRepositoryInterface         = (*fakeTicketRepo)(nil)
	_ repositories.PreventivePlanRepositoryInterface = (*fakePlanRepo)(nil)
	_ repositories.SparePartRepositoryInterface      = (*fakePartRepo)(nil)
	_ repositories.RequisitionRepositoryInterface    = (*fakeRequisitionRepo)(nil)
	_ repositories.SettingsRepositoryInterface       = (*fakeSettingsRepo)(nil)
	_ repositories.UserRepositoryInterface           = (*fakeUserRepo)(nil)
	_ repositories.DashboardRepositoryInterface      = (*fakeDashboardRepo)(nil)
	_ repositories.CacheRepositoryInterface          = (*fakeCache)(nil)
	_ repositories.TxManagerInterface                = (*fakeTxManager)(nil)
	_ service.JWTService                             = fakeJWT{}
)

package listeners

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"cmms-system/internal/dto"
	"cmms-system/internal/events"
	"cmms-system/pkg/eventbus"
	"cmms-system/pkg/websocket"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m, goleak.IgnoreTopFunction("go.opencensus.io/stats/view.(*worker).start"))
}

type fakeTwin struct {
	tree []*dto.TwinNodeDTO
}

func (f *fakeTwin) GetTwin(context.Context) ([]*dto.TwinNodeDTO, error) { return f.tree, nil }

func (f *fakeTwin) GetTwinNode(context.Context, uint64) (*dto.TwinNodeDTO, error) { return nil, nil }

type fakeAnalytics struct {
	mu          sync.Mutex
	invalidated int
}

func (f *fakeAnalytics) GetDashboard(context.Context) (*dto.DashboardDTO, error) { return nil, nil }

func (f *fakeAnalytics) InvalidateCache(context.Context) {
	f.mu.Lock()
	f.invalidated++
	f.mu.Unlock()
}

func (f *fakeAnalytics) GetInsights(context.Context) (*dto.AIResponseDTO, error) { return nil, nil }

func (f *fakeAnalytics) ExportTicketsReport(context.Context, time.Time, time.Time) (*bytes.Buffer, error) {
	return nil, nil
}

func (f *fakeAnalytics) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.invalidated
}

type sentMessage struct {
	kind    string
	payload interface{}
}

type fakeHub struct {
	mu   sync.Mutex
	sent []sentMessage
}

func (h *fakeHub) Broadcast(messageType string, payload interface{}) error {
	h.mu.Lock()
	h.sent = append(h.sent, sentMessage{kind: messageType, payload: payload})
	h.mu.Unlock()
	return nil
}

func (h *fakeHub) kinds() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	res := make([]string, 0, len(h.sent))
	for _, m := range h.sent {
		res = append(res, m.kind)
	}
	return res
}

func setup() (*eventbus.Bus, *fakeTwin, *fakeAnalytics, *fakeHub) {
	bus := eventbus.New(zap.NewNop())
	twin := &fakeTwin{tree: []*dto.TwinNodeDTO{{AssetID: 1, Code: "PMP-01", HealthScore: 90}}}
	analytics := &fakeAnalytics{}
	hub := &fakeHub{}
	NewLiveUpdateListener(twin, analytics, hub, zap.NewNop()).Register(bus)
	return bus, twin, analytics, hub
}

func TestLiveUpdate_TicketStatusChangeBroadcastsTicketAndTwin(t *testing.T) {
	bus, twin, analytics, hub := setup()

	bus.Publish(context.Background(), events.TicketStatusChanged{TicketID: 7, AssetID: 1, From: "open", To: "in_progress"})
	bus.Wait()

	assert.Equal(t, 1, analytics.count())
	require.Equal(t, []string{websocket.TypeTicketChanged, websocket.TypeTwinUpdated}, hub.kinds())
	assert.Equal(t, twin.tree, hub.sent[1].payload)
}

func TestLiveUpdate_AssetChangeBroadcastsTwin(t *testing.T) {
	bus, _, analytics, hub := setup()

	bus.Publish(context.Background(), events.AssetChanged{AssetID: 1, Action: "updated"})
	bus.Wait()

	assert.Equal(t, 1, analytics.count())
	assert.Equal(t, []string{websocket.TypeTwinUpdated}, hub.kinds())
}

func TestLiveUpdate_StockChangeOnlyInvalidatesCache(t *testing.T) {
	bus, _, analytics, hub := setup()

	bus.Publish(context.Background(), events.StockChanged{PartIDs: []uint64{3}, Reason: "receive"})
	bus.Wait()

	assert.Equal(t, 1, analytics.count())
	assert.Empty(t, hub.kinds())
}

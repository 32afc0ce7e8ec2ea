package events

const (
	TicketStatusChangedEvent = "ticket.status.changed"
	AssetChangedEvent        = "asset.changed"
	StockChangedEvent        = "stock.changed"
)

// TicketStatusChanged возникает после каждой смены статуса заявки.
type TicketStatusChanged struct {
	TicketID uint64 `json:"ticket_id"`
	AssetID  uint64 `json:"asset_id"`
	From     string `json:"from"`
	To       string `json:"to"`
	ActorID  uint64 `json:"actor_id,omitempty"`
}

// Name - реализуем интерфейс eventbus.Event
func (e TicketStatusChanged) Name() string {
	return TicketStatusChangedEvent
}

// AssetChanged - актив создан, изменён или удалён.
type AssetChanged struct {
	AssetID uint64 `json:"asset_id"`
	Action  string `json:"action"`
}

func (e AssetChanged) Name() string {
	return AssetChangedEvent
}

// StockChanged - изменился остаток одной или нескольких запчастей.
type StockChanged struct {
	PartIDs []uint64 `json:"part_ids"`
	Reason  string   `json:"reason"`
}

func (e StockChanged) Name() string {
	return StockChangedEvent
}

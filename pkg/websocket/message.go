package websocket

import "time"

// Envelope — "конверт" сообщения; по Type фронтенд понимает, что обновлять.
type Envelope struct {
	Type      string      `json:"type"`
	Payload   interface{} `json:"payload"`
	Timestamp time.Time   `json:"timestamp"`
}

const (
	TypeTwinUpdated   = "twin.updated"
	TypeTicketChanged = "ticket.status.changed"
)

package hub

import (
	"encoding/json"
	"time"

	"github.com/nabilh59/smart-meter/internal/audit"
	"github.com/nabilh59/smart-meter/internal/billing"
	"github.com/nabilh59/smart-meter/internal/grid"
)

// onConnect registers the connection's meter and pushes the current
// grid status followed by the initial bill, to this client only.
func (h *Hub) onConnect(client *Client) {
	h.store.GetOrCreate(client.ID)

	h.push(client, EventGridStatus, grid.Message(h.grid.Status(), time.Now()))

	initial := h.engine.InitialBill()
	h.push(client, EventReceiveInitialBill, InitialBillPayload{
		InitialBill:          json.Number(initial.StringFixed(2)),
		FormattedInitialBill: billing.FormatGBP(initial),
	})
}

// onDisconnect logs the lifecycle event and drops the meter. Removal
// is unconditional; a missing meter is a no-op.
func (h *Hub) onDisconnect(client *Client) {
	h.audit.Log(client.ID, audit.EventClientDisconnected)
	h.store.Remove(client.ID)
}

func (h *Hub) handleMessage(client *Client, raw []byte) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		h.reject(client, "malformed message")
		return
	}

	switch env.Event {
	case EventCalculateNewBill:
		var req CalculateNewBillRequest
		if err := json.Unmarshal(env.Data, &req); err != nil {
			h.reject(client, "malformed CalculateNewBill payload")
			return
		}
		h.calculateNewBill(client, req)
	default:
		h.reject(client, "unknown event: "+env.Event)
	}
}

// calculateNewBill validates and records a reading, then pushes the new
// rounded total back to the caller. The reading write and the response
// send are not transactional: a failed send never rolls the reading back.
func (h *Hub) calculateNewBill(client *Client, req CalculateNewBillRequest) {
	if err := h.engine.Validate(req.NewReading); err != nil {
		readingsTotal.WithLabelValues("rejected").Inc()
		h.audit.Log(client.ID, audit.EventInvalidMessage)
		h.push(client, EventError, ErrorPayload{Message: err.Error()})
		return
	}

	cost := h.engine.Cost(req.NewReading)
	newTotal, err := h.engine.Accumulate(req.CurrentTotalBill, cost)
	if err != nil {
		readingsTotal.WithLabelValues("rejected").Inc()
		h.audit.Log(client.ID, audit.EventInvalidMessage)
		h.push(client, EventError, ErrorPayload{Message: "currentTotalBill must be a decimal amount"})
		return
	}

	m := h.store.GetOrCreate(client.ID)
	if _, err := m.AddReading(req.NewReading, req.ReadingTimestamp); err != nil {
		// Validate already passed, so this is an unexpected fault.
		// Abort with no response; nothing partial reaches the client.
		h.audit.Log(client.ID, audit.EventProcessingError)
		return
	}
	readingsTotal.WithLabelValues("accepted").Inc()

	h.push(client, EventCalculateBill, BillPayload{
		NewTotal:  json.Number(newTotal.StringFixed(2)),
		Timestamp: formatReadingTimestamp(req.ReadingTimestamp),
	})
}

func (h *Hub) reject(client *Client, reason string) {
	h.audit.Log(client.ID, audit.EventInvalidMessage)
	h.push(client, EventError, ErrorPayload{Message: reason})
}

func formatReadingTimestamp(unixMillis int64) string {
	return time.UnixMilli(unixMillis).UTC().Format("02-01-2006 15:04")
}

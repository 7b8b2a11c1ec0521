package hub

import "encoding/json"

// Wire events. Every frame in either direction is an Envelope.
const (
	// server -> client
	EventGridStatus         = "gridStatus"
	EventReceiveInitialBill = "receiveInitialBill"
	EventCalculateBill      = "calculateBill"
	EventError              = "error"

	// client -> server
	EventCalculateNewBill = "CalculateNewBill"
)

// Envelope frames every websocket message.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// CalculateNewBillRequest is the client's reading submission. The
// running total travels as text to survive decimal precision.
type CalculateNewBillRequest struct {
	CurrentTotalBill string  `json:"currentTotalBill"`
	NewReading       float64 `json:"newReading"`
	ReadingTimestamp int64   `json:"readingTimestamp"`
}

// InitialBillPayload accompanies receiveInitialBill.
type InitialBillPayload struct {
	InitialBill          json.Number `json:"initialBill"`
	FormattedInitialBill string      `json:"formattedInitialBill"`
}

// BillPayload accompanies calculateBill.
type BillPayload struct {
	NewTotal  json.Number `json:"newTotal"`
	Timestamp string      `json:"timestamp"`
}

// ErrorPayload accompanies error pushes.
type ErrorPayload struct {
	Message string `json:"message"`
}

func mustEnvelope(event string, data interface{}) []byte {
	raw, err := json.Marshal(data)
	if err != nil {
		// payload types are all marshal-safe structs
		panic(err)
	}
	out, err := json.Marshal(Envelope{Event: event, Data: raw})
	if err != nil {
		panic(err)
	}
	return out
}

package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/nabilh59/smart-meter/internal/billing"
)

// readingView is one reading in the debug projection, with display
// fields alongside the raw timestamp.
type readingView struct {
	Timestamp int64   `json:"timestamp"`
	Date      string  `json:"date"`
	Time      string  `json:"time"`
	Value     float64 `json:"value"`
}

type meterView struct {
	ConnectionID         string        `json:"connectionId"`
	ReadingCount         int           `json:"readingCount"`
	Readings             []readingView `json:"readings"`
	SumReadings          float64       `json:"sumReadings"`
	TotalCost            float64       `json:"totalCost"`
	TotalCostFormatted   string        `json:"totalCostFormatted"`
	TotalBill            float64       `json:"totalBill"`
	TotalBillFormatted   string        `json:"totalBillFormatted"`
	InitialBillFormatted string        `json:"initialBillFormatted"`
}

// debugReadings serializes a point-in-time projection of the registry:
// every live meter with its ordered readings and computed totals. Pure
// read, no side effects.
func (s *Server) debugReadings(c *gin.Context) {
	engine := s.hub.Engine()
	initial := engine.InitialBill()

	out := make(map[string]meterView)
	for _, entry := range s.hub.Store().Snapshot() {
		m := entry.Meter

		snapshot := m.Snapshot()
		readings := make([]readingView, 0, len(snapshot))
		for _, r := range snapshot {
			ts := time.UnixMilli(r.Timestamp).UTC()
			readings = append(readings, readingView{
				Timestamp: r.Timestamp,
				Date:      ts.Format("02-01-2006"),
				Time:      ts.Format("15:04"),
				Value:     r.Value,
			})
		}

		sum := m.Sum()
		cost := engine.Cost(sum)
		total := initial.Add(cost)

		out[entry.ConnectionID] = meterView{
			ConnectionID:         entry.ConnectionID,
			ReadingCount:         m.Count(),
			Readings:             readings,
			SumReadings:          sum,
			TotalCost:            costFloat(cost),
			TotalCostFormatted:   billing.FormatGBP(cost.Round(2)),
			TotalBill:            costFloat(total),
			TotalBillFormatted:   billing.FormatGBP(total.Round(2)),
			InitialBillFormatted: billing.FormatGBP(initial),
		}
	}

	c.JSON(http.StatusOK, out)
}

func costFloat(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}

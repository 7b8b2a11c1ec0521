package hub

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	connectedClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "smartmeter_connected_clients",
			Help: "Number of live websocket connections.",
		},
	)
	readingsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "smartmeter_readings_total",
			Help: "Readings processed, by validation result.",
		},
		[]string{"result"},
	)
	gridBroadcasts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "smartmeter_grid_broadcasts_total",
			Help: "Grid status broadcasts sent, by status.",
		},
		[]string{"status"},
	)
)

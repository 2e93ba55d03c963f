package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// 在庫操作のメトリクス
type Metrics struct {
	StockOperations *prometheus.CounterVec
	ShipmentUnits   *prometheus.CounterVec
	EventFailures   prometheus.Counter
}

// regに登録して返す（テストではprometheus.NewRegistry()を渡す）
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		StockOperations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "catalog",
			Name:      "stock_operations_total",
			Help:      "Stock operations by kind and result.",
		}, []string{"kind", "result"}),
		ShipmentUnits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "catalog",
			Name:      "shipment_units_received_total",
			Help:      "Units added through received shipments.",
		}, []string{"category"}),
		EventFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "catalog",
			Name:      "stock_event_publish_failures_total",
			Help:      "Stock change events that could not be published.",
		}),
	}
	reg.MustRegister(m.StockOperations, m.ShipmentUnits, m.EventFailures)
	return m
}

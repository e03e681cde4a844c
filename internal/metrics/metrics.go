package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds every collector exported on /metrics
var Registry = prometheus.NewRegistry()

var (
	stockMovements = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sushishop",
			Name:      "stock_movements_total",
			Help:      "Ledger entries appended, by movement type",
		},
		[]string{"type"},
	)

	stockMovementQuantity = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sushishop",
			Name:      "stock_movement_quantity_total",
			Help:      "Sum of quantities moved, by movement type",
		},
		[]string{"type"},
	)

	intakeWastage = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "sushishop",
			Name:      "stock_intake_wastage_percent",
			Help:      "Processing loss of received batches",
			Buckets:   prometheus.LinearBuckets(0, 5, 10),
		},
	)

	ingredientStock = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "sushishop",
			Name:      "ingredient_stock",
			Help:      "Quantity on hand after the last committed stock change",
		},
		[]string{"ingredient"},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sushishop",
			Name:      "http_requests_total",
			Help:      "Handled HTTP requests",
		},
		[]string{"method", "route", "status"},
	)
)

func init() {
	Registry.MustRegister(stockMovements, stockMovementQuantity, intakeWastage, ingredientStock, httpRequests)
}

// RecordMovement counts one appended ledger entry
func RecordMovement(movementType string, quantity float64) {
	stockMovements.WithLabelValues(movementType).Inc()
	stockMovementQuantity.WithLabelValues(movementType).Add(quantity)
}

func ObserveWastage(percent float64) {
	intakeWastage.Observe(percent)
}

func SetIngredientStock(name string, stock float64) {
	ingredientStock.WithLabelValues(name).Set(stock)
}

func RecordRequest(method, route string, status int) {
	if route == "" {
		route = "unmatched"
	}
	httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
}

// Handler exposes Registry in the Prometheus text format
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

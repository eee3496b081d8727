package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	purchases = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "store_purchases_total",
			Help: "Purchase attempts by result.",
		},
		[]string{"result"}, // completed | no_plan | plan_inactive | no_codes | error
	)

	pointsCredited = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "store_points_credited_total",
			Help: "Loyalty points credited through purchases and adjustments.",
		},
	)

	codesImported = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "store_codes_imported_total",
			Help: "Redemption codes imported into inventory.",
		},
	)

	reloadRuns = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "store_cache_reloads_total",
			Help: "Reconciling full cache reloads executed.",
		},
	)

	reloadDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "store_cache_reload_duration_ms",
			Help:    "Duration of full cache reloads in milliseconds.",
			Buckets: []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500},
		},
	)
)

func init() { register(purchases, pointsCredited, codesImported, reloadRuns, reloadDuration) }

func IncPurchase(result string)        { purchases.WithLabelValues(result).Inc() }
func AddPointsCredited(n int64)        { pointsCredited.Add(float64(n)) }
func AddCodesImported(n int)           { codesImported.Add(float64(n)) }
func IncReload()                       { reloadRuns.Inc() }
func ObserveReloadDuration(ms float64) { reloadDuration.Observe(ms) }

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics はアプリケーションのメトリクスを管理する
type Metrics struct {
	// HTTPリクエストの総数（method, path, status_code）
	HTTPRequestsTotal *prometheus.CounterVec

	// HTTPリクエストのレイテンシ（method, path）
	HTTPRequestDuration *prometheus.HistogramVec

	// 予約操作の総数（operation: create/update/delete, status: success, conflict, invalid, error）
	ReservationsTotal *prometheus.CounterVec

	// 大会操作の総数（operation: create/delete, status: success, error）
	CompetitionsTotal *prometheus.CounterVec

	// 釣り場ロックの操作時間（status: success/failed）
	LakeLockDuration *prometheus.HistogramVec

	// スナップショットの総数（status: success/failed）
	SnapshotsTotal *prometheus.CounterVec
}

// New は新しいMetricsインスタンスを作成し、デフォルトレジストリに登録する
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry は指定したレジストリにメトリクスを登録する
func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status_code"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		ReservationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reservations_total",
				Help: "Total number of reservation operations",
			},
			[]string{"operation", "status"},
		),
		CompetitionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "competitions_total",
				Help: "Total number of competition operations",
			},
			[]string{"operation", "status"},
		),
		LakeLockDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "lake_lock_duration_seconds",
				Help:    "Time spent acquiring per-lake locks",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"status"},
		),
		SnapshotsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lake_snapshots_total",
				Help: "Total number of lake snapshot attempts",
			},
			[]string{"status"},
		),
	}

	// レジストリに登録
	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.ReservationsTotal,
		m.CompetitionsTotal,
		m.LakeLockDuration,
		m.SnapshotsTotal,
	)

	return m
}

// デフォルトのメトリクスインスタンス
var defaultMetrics *Metrics

// Init はデフォルトのメトリクスインスタンスを初期化する
func Init() *Metrics {
	defaultMetrics = New()
	return defaultMetrics
}

// Get はデフォルトのメトリクスインスタンスを返す
func Get() *Metrics {
	return defaultMetrics
}

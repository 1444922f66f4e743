// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector はメトリクス収集のインターフェース。
// ワーカーやサービス層から利用する。
type MetricsCollector interface {
	RecordGenerationRun(job string, duration time.Duration)
	RecordGenerationSkipped(job string)
	RecordStatusCreated(frequency string)
	RecordHabitFailure(job string)
	RecordReportRequest(kind string)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	generationRuns     *prometheus.CounterVec
	generationSkipped  *prometheus.CounterVec
	generationDuration *prometheus.HistogramVec
	statusesCreated    *prometheus.CounterVec
	habitFailures      *prometheus.CounterVec
	reportRequests     *prometheus.CounterVec
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		generationRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "habitd_generation_runs_total",
			Help: "ステータス生成ジョブ実行の合計数",
		}, []string{"job"}),
		generationSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "habitd_generation_skipped_total",
			Help: "実行中のためスキップされた生成トリガーの合計数",
		}, []string{"job"}),
		generationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "habitd_generation_duration_seconds",
			Help:    "ステータス生成ジョブの所要時間（秒）",
			Buckets: prometheus.DefBuckets,
		}, []string{"job"}),
		statusesCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "habitd_statuses_created_total",
			Help: "生成された習慣ステータスの周期区分別合計数",
		}, []string{"frequency"}),
		habitFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "habitd_habit_failures_total",
			Help: "生成中に失敗した習慣の合計数",
		}, []string{"job"}),
		reportRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "habitd_report_requests_total",
			Help: "統計レポート要求の種別ごとの合計数",
		}, []string{"kind"}),
	}

	reg.MustRegister(
		c.generationRuns,
		c.generationSkipped,
		c.generationDuration,
		c.statusesCreated,
		c.habitFailures,
		c.reportRequests,
	)

	return c
}

// RecordGenerationRun は生成ジョブの実行と所要時間を記録する。
func (c *Collector) RecordGenerationRun(job string, duration time.Duration) {
	c.generationRuns.WithLabelValues(job).Inc()
	c.generationDuration.WithLabelValues(job).Observe(duration.Seconds())
}

// RecordGenerationSkipped はスキップされた生成トリガーを記録する。
func (c *Collector) RecordGenerationSkipped(job string) {
	c.generationSkipped.WithLabelValues(job).Inc()
}

// RecordStatusCreated は生成されたステータスを周期区分別に記録する。
func (c *Collector) RecordStatusCreated(frequency string) {
	c.statusesCreated.WithLabelValues(frequency).Inc()
}

// RecordHabitFailure は習慣単位の生成失敗を記録する。
func (c *Collector) RecordHabitFailure(job string) {
	c.habitFailures.WithLabelValues(job).Inc()
}

// RecordReportRequest は統計レポート要求を種別ごとに記録する。
func (c *Collector) RecordReportRequest(kind string) {
	c.reportRequests.WithLabelValues(kind).Inc()
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// SetupMetricsRoute は/metricsエンドポイントを提供するHTTPハンドラーを返す。
// Prometheusスクレイプに対応する。
func SetupMetricsRoute(gatherer prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler(gatherer))
	return mux
}

// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector はメトリクス収集のインターフェース。
// サービス層とHTTPミドルウェアから利用する。
type MetricsCollector interface {
	RecordUserRegistered()
	RecordRentalCreated()
	RecordCommentCreated()
	RecordLikeToggled(liked bool)
	RecordHTTPRequest(method, path string, statusCode int, duration time.Duration)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	usersRegistered prometheus.Counter
	rentalsCreated  prometheus.Counter
	commentsCreated prometheus.Counter
	likesToggled    *prometheus.CounterVec
	httpRequests    *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		usersRegistered: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sumika_users_registered_total",
			Help: "ユーザー登録の合計数",
		}),
		rentalsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sumika_rentals_created_total",
			Help: "物件投稿の合計数",
		}),
		commentsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sumika_comments_created_total",
			Help: "コメント投稿の合計数",
		}),
		likesToggled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sumika_likes_toggled_total",
			Help: "いいねトグルの結果別合計数",
		}, []string{"result"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sumika_http_requests_total",
			Help: "メソッド・パス・ステータスコード別のHTTPリクエスト数",
		}, []string{"method", "path", "status_code"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "sumika_http_request_duration_seconds",
			Help:    "HTTPリクエスト処理時間（秒）",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"}),
	}

	reg.MustRegister(
		c.usersRegistered,
		c.rentalsCreated,
		c.commentsCreated,
		c.likesToggled,
		c.httpRequests,
		c.httpDuration,
	)

	return c
}

// RecordUserRegistered はユーザー登録を記録する。
func (c *Collector) RecordUserRegistered() {
	c.usersRegistered.Inc()
}

// RecordRentalCreated は物件投稿を記録する。
func (c *Collector) RecordRentalCreated() {
	c.rentalsCreated.Inc()
}

// RecordCommentCreated はコメント投稿を記録する。
func (c *Collector) RecordCommentCreated() {
	c.commentsCreated.Inc()
}

// RecordLikeToggled はいいねトグルの結果を記録する。
func (c *Collector) RecordLikeToggled(liked bool) {
	result := "unliked"
	if liked {
		result = "liked"
	}
	c.likesToggled.WithLabelValues(result).Inc()
}

// RecordHTTPRequest はHTTPリクエストの件数と処理時間を記録する。
// pathはルートパターン（例: /api/rentals/{id}）を渡す。
// 生のURLパスを渡すとラベルの組み合わせが際限なく増える。
func (c *Collector) RecordHTTPRequest(method, path string, statusCode int, duration time.Duration) {
	c.httpRequests.WithLabelValues(method, path, strconv.Itoa(statusCode)).Inc()
	c.httpDuration.WithLabelValues(method, path).Observe(duration.Seconds())
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

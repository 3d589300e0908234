package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "yultimate", Name: "http_requests_total", Help: "Handled HTTP requests",
	}, []string{"method", "route", "status"})
	HTTPDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "yultimate", Name: "http_request_duration_seconds", Help: "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	// EngineRejections 引擎拒绝的操作，按错误种类统计
	EngineRejections = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "yultimate", Name: "engine_rejections_total", Help: "Engine operations rejected by kind",
	}, []string{"kind"})

	LeaderboardCache = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "yultimate", Name: "leaderboard_cache_total", Help: "Leaderboard cache lookups",
	}, []string{"result"})
	LeaderboardCompute = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "yultimate", Name: "leaderboard_compute_seconds", Help: "Leaderboard aggregation latency",
		Buckets: prometheus.DefBuckets,
	})

	JobRuns = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "yultimate", Name: "job_runs_total", Help: "Total background job runs",
	}, []string{"job"})
	JobErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "yultimate", Name: "job_errors_total", Help: "Total background job errors",
	}, []string{"job"})
)

func init() {
	prometheus.MustRegister(HTTPRequests, HTTPDuration, EngineRejections,
		LeaderboardCache, LeaderboardCompute, JobRuns, JobErrors)
}

func Handler() http.Handler { return promhttp.Handler() }

func ObserveRequest(method, route string, status int, d time.Duration) {
	HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	HTTPDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

func ObserveLeaderboardCache(hit bool) {
	if hit {
		LeaderboardCache.WithLabelValues("hit").Inc()
		return
	}
	LeaderboardCache.WithLabelValues("miss").Inc()
}

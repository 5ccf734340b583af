// Package observer Prometheus 指标
package observer

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CountWritesTotal 人数写入结果，result=saved|deleted|rejected|conflict|error
	CountWritesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shelter_caller_count_writes_total",
			Help: "Count ledger write attempts by origin channel and result.",
		},
		[]string{"contact_type", "result"},
	)

	// DispatchCallsTotal 单次外呼结果，result=dialed|failed
	DispatchCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shelter_caller_dispatch_calls_total",
			Help: "Outbound call requests issued by dispatch passes.",
		},
		[]string{"result"},
	)

	// DispatchPassDurationSeconds 一轮外呼耗时
	DispatchPassDurationSeconds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "shelter_caller_dispatch_pass_duration_seconds",
			Help:    "Duration of one dispatch pass over uncontacted shelters.",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
		},
	)

	// UncontactedShelters 最近一轮选择出的待外呼收容所数
	UncontactedShelters = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "shelter_caller_uncontacted_shelters",
			Help: "Shelters lacking a count for the current business day at the last dispatch pass.",
		},
	)

	// AuditWriteFailuresTotal 审计日志写入失败（已吞掉）
	AuditWriteFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "shelter_caller_audit_write_failures_total",
			Help: "Audit log rows that could not be written.",
		},
	)

	// HTTPRequestDurationSeconds 按路由模板统计请求耗时
	HTTPRequestDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "shelter_caller_http_request_duration_seconds",
			Help:    "HTTP request latency by route and status.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)
)

// HTTPMetrics gin 中间件，route 使用路由模板避免高基数
func HTTPMetrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		HTTPRequestDurationSeconds.
			WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}

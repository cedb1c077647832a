package server

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	requestDuration    *prometheus.HistogramVec
	documentsRendered  *prometheus.CounterVec
	generationsTotal   *prometheus.CounterVec
	prunedRecordsTotal *prometheus.CounterVec
)

func init() {
	requestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "modulajar_http_request_duration_seconds",
			Help:    "HTTP request latency by route and status.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)
	documentsRendered = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "modulajar_documents_rendered_total",
			Help: "Total number of documents rendered, by format.",
		},
		[]string{"format"},
	)
	generationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "modulajar_generations_total",
			Help: "Total number of generation requests, by result.",
		},
		[]string{"result"},
	)
	prunedRecordsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "modulajar_pruned_records_total",
			Help: "Total number of records removed by maintenance, by kind.",
		},
		[]string{"kind"},
	)
	prometheus.MustRegister(requestDuration, documentsRendered, generationsTotal, prunedRecordsTotal)
}

func instrument() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		requestDuration.
			WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}

package llm

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	llmRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "prompt_server_llm_requests_total",
			Help: "Total number of requests to LLM providers.",
		},
		[]string{"provider", "status"}, // status: success или вид ошибки
	)
	llmRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "prompt_server_llm_request_duration_seconds",
			Help:    "Histogram of LLM provider request durations.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"provider"},
	)
	llmPromptTokens = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "prompt_server_llm_prompt_tokens",
			Help:    "Histogram of prompt token counts (reported or estimated).",
			Buckets: prometheus.LinearBuckets(250, 250, 20), // 250, 500, ..., 5000
		},
		[]string{"provider"},
	)
)

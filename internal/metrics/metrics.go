package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Attempt metrics
	CheckoutAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "checkout_attempts_total",
			Help: "Total number of purchase attempts by terminal outcome",
		},
		[]string{"outcome"},
	)

	CheckoutDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "checkout_attempt_duration_seconds",
			Help:    "End-to-end purchase attempt duration in seconds",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30, 60, 120},
		},
		[]string{"outcome"},
	)

	StageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "checkout_stage_duration_seconds",
			Help:    "Time spent in each pipeline stage in seconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"stage"},
	)

	SwapsSettled = promauto.NewCounter(prometheus.CounterOpts{
		Name: "checkout_swaps_settled_total",
		Help: "Total number of pre-purchase conversions settled on-chain",
	})

	AmbiguousOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "checkout_ambiguous_outcomes_total",
			Help: "Total number of attempts whose confirmation window expired without a status",
		},
		[]string{"stage"},
	)

	// Listing metrics
	ListingResolutions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "checkout_listing_resolutions_total",
			Help: "Total number of listing resolutions",
		},
		[]string{"status"},
	)

	// Quote metrics
	QuoteRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "checkout_quote_requests_total",
			Help: "Total number of conversion quote requests",
		},
		[]string{"status"},
	)

	QuoteDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "checkout_quote_duration_seconds",
		Help:    "Conversion quote request duration in seconds",
		Buckets: prometheus.DefBuckets,
	})

	// Confirmation metrics
	ConfirmationPolls = promauto.NewCounter(prometheus.CounterOpts{
		Name: "checkout_confirmation_polls_total",
		Help: "Total number of signature status polls",
	})

	// HTTP metrics
	RateLimitRejections = promauto.NewCounter(prometheus.CounterOpts{
		Name: "checkout_rate_limit_rejections_total",
		Help: "Total number of requests rejected by the per-IP rate limiter",
	})

	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "checkout_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "checkout_http_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
)

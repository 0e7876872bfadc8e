// Package metrics defines the service's Prometheus metrics. All metrics are
// registered with the default registry on package init via promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "eartalk"

// AudioSubmissionsTotal counts audio submissions by outcome.
// Labels:
//   - input: "text" or "audio"
//   - result: "ok", "invalid", "upstream_error" or "error"
var AudioSubmissionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "audio_submissions_total",
		Help:      "Total number of audio submissions, by input kind and result.",
	},
	[]string{"input", "result"},
)

// UpstreamRequestDuration measures calls to the voice model server.
// Label:
//   - endpoint: "tts" or "stt_tts"
var UpstreamRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "upstream_request_duration_seconds",
		Help:      "Duration of requests to the voice model server.",
		Buckets:   []float64{.1, .25, .5, 1, 2.5, 5, 10, 30, 60, 120},
	},
	[]string{"endpoint"},
)

// OAuthLoginsTotal counts social logins.
// Labels:
//   - provider: "kakao", "naver" or "google"
//   - result: "ok" or "error"
var OAuthLoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "oauth_logins_total",
		Help:      "Total number of OAuth logins, by provider and result.",
	},
	[]string{"provider", "result"},
)

// AudioCacheLookupsTotal counts audio cache lookups.
// Label:
//   - result: "hit", "miss" or "error"
var AudioCacheLookupsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "audio_cache_lookups_total",
		Help:      "Total number of audio cache lookups, labelled by result.",
	},
	[]string{"result"},
)

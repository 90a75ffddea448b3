package handler

import (
	"github.com/circle-dev/circle/frontend/internal/postdetail"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	threadLoads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "circle_frontend",
			Name:      "post_view_loads_total",
			Help:      "Post view loads by outcome",
		},
		[]string{"result"},
	)

	replySubmissions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "circle_frontend",
			Name:      "reply_submissions_total",
			Help:      "Reply submissions by outcome",
		},
		[]string{"result"},
	)

	likeToggles = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "circle_frontend",
			Name:      "like_toggles_total",
			Help:      "Like button presses",
		},
	)
)

// outcome is the metric label for err: "ok", the post view error kind, or "error".
func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	if kind := postdetail.KindOf(err); kind != 0 {
		return kind.String()
	}
	return "error"
}

package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "unipass_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "unipass_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	CheckinsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "unipass_checkins_total",
			Help: "Total number of check-ins",
		},
		[]string{"result"},
	)

	CheckoutsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "unipass_checkouts_total",
			Help: "Total number of check-outs",
		},
		[]string{"kind"},
	)

	GymOccupancy = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "unipass_gym_occupancy",
			Help: "Current occupancy per gym",
		},
		[]string{"gym_id"},
	)

	PointsAwardedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "unipass_points_awarded_total",
			Help: "Total gamification points awarded",
		},
		[]string{"reason"},
	)

	AchievementsUnlockedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "unipass_achievements_unlocked_total",
			Help: "Total achievements unlocked",
		},
	)

	SubscriptionsCreatedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "unipass_subscriptions_created_total",
			Help: "Total number of subscriptions created",
		},
		[]string{"plan"},
	)

	PaymentsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "unipass_payments_total",
			Help: "Total number of payment attempts",
		},
		[]string{"status"},
	)

	StaleCheckinsSweptTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "unipass_stale_checkins_swept_total",
			Help: "Check-ins force-closed by the maintenance sweep",
		},
	)
)

func RecordHTTPRequest(method, path, status string, duration float64) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
}

func RecordCheckin(result string) {
	CheckinsTotal.WithLabelValues(result).Inc()
}

func RecordCheckout(kind string) {
	CheckoutsTotal.WithLabelValues(kind).Inc()
}

func SetGymOccupancy(gymID, occupancy int) {
	GymOccupancy.WithLabelValues(strconv.Itoa(gymID)).Set(float64(occupancy))
}

func RecordPoints(reason string, points int) {
	PointsAwardedTotal.WithLabelValues(reason).Add(float64(points))
}

func RecordAchievement() {
	AchievementsUnlockedTotal.Inc()
}

func RecordSubscription(planName string) {
	SubscriptionsCreatedTotal.WithLabelValues(planName).Inc()
}

func RecordPayment(status string) {
	PaymentsTotal.WithLabelValues(status).Inc()
}

func RecordStaleSweep(count int) {
	StaleCheckinsSweptTotal.Add(float64(count))
}

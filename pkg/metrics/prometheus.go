// Package metrics provides Prometheus metrics for the thrive scoring service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every Prometheus collector of the service.
type Manager struct {
	namespace      string
	subsystem      string
	latencyBuckets []float64
	registry       prometheus.Registerer

	// Scoring
	assessments     *prometheus.CounterVec
	overallScore    prometheus.Histogram
	doctorReferrals prometheus.Counter
	recommendations *prometheus.CounterVec

	// Progression
	achievementsUnlocked *prometheus.CounterVec
	penaltyXP            prometheus.Counter
	streaksBroken        prometheus.Counter
	xpGranted            prometheus.Counter

	// Check-in pipeline
	checkInsProcessed prometheus.Counter
	checkInsDuplicate prometheus.Counter
	checkInErrors     *prometheus.CounterVec
	queueSize         prometheus.Gauge
	queueCapacity     prometheus.Gauge
	queueEnqueued     prometheus.Counter
	queueRejected     *prometheus.CounterVec
	workerCount       prometheus.Gauge
	workerLatency     prometheus.Histogram
	profilesTotal     prometheus.Gauge

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	customRegistry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:      "thrive",
		subsystem:      "engine",
		latencyBuckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25, 50, 100, 250},
		registry:       prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counter(name, help string) prometheus.Counter {
	return promauto.With(m.registry).NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
	})
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
	}, labels)
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
	})
}

func (m *Manager) histogram(name, help string, buckets []float64) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, Buckets: buckets,
	})
}

func (m *Manager) initializeMetrics() {
	m.assessments = m.counterVec("assessments_total", "Burnout assessments by risk level", "risk_level")
	m.overallScore = m.histogram("overall_score", "Distribution of overall burnout scores",
		prometheus.LinearBuckets(10, 10, 10))
	m.doctorReferrals = m.counter("doctor_referrals_total", "Assessments that raised a doctor referral")
	m.recommendations = m.counterVec("recommendations_total", "Recommendations issued by code", "code")

	m.achievementsUnlocked = m.counterVec("achievements_unlocked_total", "Achievements granted by key", "key")
	m.penaltyXP = m.counter("penalty_xp_total", "XP deducted for missed logging days")
	m.streaksBroken = m.counter("streaks_broken_total", "Streaks reset by a missed-day gap")
	m.xpGranted = m.counter("xp_granted_total", "XP granted for check-ins and achievements")

	m.checkInsProcessed = m.counter("checkins_processed_total", "Check-ins applied to a profile")
	m.checkInsDuplicate = m.counter("checkins_duplicate_total", "Check-ins dropped as duplicates")
	m.checkInErrors = m.counterVec("checkin_errors_total", "Check-ins that failed to apply", "reason")
	m.queueSize = m.gauge("queue_size", "Current number of queued check-ins")
	m.queueCapacity = m.gauge("queue_capacity", "Maximum number of queued check-ins")
	m.queueEnqueued = m.counter("queue_enqueued_total", "Check-ins accepted by the queue")
	m.queueRejected = m.counterVec("queue_rejected_total", "Check-ins refused by the queue", "reason")
	m.workerCount = m.gauge("worker_count", "Number of check-in workers")
	m.workerLatency = m.histogram("worker_processing_latency_milliseconds",
		"Time to apply one check-in in milliseconds", m.latencyBuckets)
	m.profilesTotal = m.gauge("profiles_total", "Number of tracked user profiles")

	m.httpRequests = promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "http_requests_total", Help: "HTTP requests by endpoint, method and status",
	}, []string{"endpoint", "method", "status_code"})
	m.httpRequestDuration = promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "http_request_duration_milliseconds", Help: "HTTP request duration in milliseconds",
		Buckets: m.latencyBuckets,
	}, []string{"endpoint", "method", "status_code"})
}

// RecordAssessment records one burnout assessment.
func RecordAssessment(riskLevel string, overall int, referral bool) {
	globalManager.assessments.WithLabelValues(riskLevel).Inc()
	globalManager.overallScore.Observe(float64(overall))
	if referral {
		globalManager.doctorReferrals.Inc()
	}
}

// RecordRecommendation counts an issued recommendation code.
func RecordRecommendation(code string) {
	globalManager.recommendations.WithLabelValues(code).Inc()
}

// RecordAchievement counts a granted achievement.
func RecordAchievement(key string) {
	globalManager.achievementsUnlocked.WithLabelValues(key).Inc()
}

// RecordPenalty records a streak break and its XP deduction.
func RecordPenalty(xp int) {
	globalManager.streaksBroken.Inc()
	globalManager.penaltyXP.Add(float64(xp))
}

// RecordXPGranted adds granted XP.
func RecordXPGranted(xp int) {
	if xp > 0 {
		globalManager.xpGranted.Add(float64(xp))
	}
}

// RecordCheckInProcessed increments the processed check-in counter.
func RecordCheckInProcessed() {
	globalManager.checkInsProcessed.Inc()
}

// RecordCheckInDuplicate increments the duplicate check-in counter.
func RecordCheckInDuplicate() {
	globalManager.checkInsDuplicate.Inc()
}

// RecordCheckInError counts a failed check-in by reason.
func RecordCheckInError(reason string) {
	globalManager.checkInErrors.WithLabelValues(reason).Inc()
}

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// RecordQueueEnqueue counts an accepted enqueue.
func RecordQueueEnqueue() {
	globalManager.queueEnqueued.Inc()
}

// RecordQueueRejected counts a refused enqueue by reason.
func RecordQueueRejected(reason string) {
	globalManager.queueRejected.WithLabelValues(reason).Inc()
}

// UpdateWorkerCount sets the worker count.
func UpdateWorkerCount(count int) {
	globalManager.workerCount.Set(float64(count))
}

// RecordWorkerLatency records the time spent applying one check-in.
func RecordWorkerLatency(latencyMs float64) {
	globalManager.workerLatency.Observe(latencyMs)
}

// UpdateProfilesTotal sets the number of tracked profiles.
func UpdateProfilesTotal(count int) {
	globalManager.profilesTotal.Set(float64(count))
}

// RecordHTTPRequest records an HTTP request and its duration.
func RecordHTTPRequest(endpoint, method, statusCode string, durationMs float64) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

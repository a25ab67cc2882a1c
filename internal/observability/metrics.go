package observability

import (
	"context"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/yungbote/calisthenics-backend/internal/pkg/envutil"
	"github.com/yungbote/calisthenics-backend/internal/pkg/logger"
)

type Metrics struct {
	apiRequests *CounterVec
	apiLatency  *HistogramVec
	apiInflight *Gauge
	apiReqTotal *Counter
	apiReqError *Counter

	workouts         *CounterVec
	xpAwarded        *CounterVec
	coinsAwarded     *Counter
	achievements     *CounterVec
	levelUps         *Counter
	routines         *CounterVec
	missionsClaimed  *CounterVec
	degraded         *CounterVec
	leaderboardFalls *Counter
	sseClients       *Gauge
	sseDropped       *Counter

	pgStats   *GaugeVec
	redisUp   *Gauge
	redisPing *Gauge
}

var (
	initOnce sync.Once
	instance *Metrics
)

func Enabled() bool {
	return envutil.Bool("METRICS_ENABLED", false)
}

func Current() *Metrics {
	return instance
}

func scrapeInterval() time.Duration {
	return envutil.Seconds("METRICS_SCRAPE_INTERVAL_SECONDS", 10*time.Second)
}

// Init builds the process-wide registry. It returns nil when metrics are
// disabled; every method is safe on a nil *Metrics.
func Init(log *logger.Logger) *Metrics {
	if !Enabled() {
		return nil
	}
	initOnce.Do(func() {
		instance = newMetrics()
		if log != nil {
			log.Info("metrics enabled")
		}
	})
	return instance
}

func newMetrics() *Metrics {
	return &Metrics{
		apiRequests: NewCounterVec("cali_api_requests_total", "Total API requests by method/route/status.", []string{"method", "route", "status"}),
		apiLatency: NewHistogramVec(
			"cali_api_request_duration_seconds",
			"API request latency in seconds by method/route/status.",
			[]string{"method", "route", "status"},
			[]float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		),
		apiInflight: NewGauge("cali_api_inflight_requests", "In-flight API requests."),
		apiReqTotal: NewCounter("cali_api_requests_total_all", "Total API requests (all)."),
		apiReqError: NewCounter("cali_api_requests_error_total", "Total API requests with 5xx status."),

		workouts:         NewCounterVec("cali_workouts_completed_total", "Completed workouts by duration bucket.", []string{"duration"}),
		xpAwarded:        NewCounterVec("cali_xp_awarded_total", "XP awarded by source.", []string{"source"}),
		coinsAwarded:     NewCounter("cali_coins_awarded_total", "Virtual coins awarded."),
		achievements:     NewCounterVec("cali_achievements_unlocked_total", "Achievements unlocked by category.", []string{"category"}),
		levelUps:         NewCounter("cali_level_ups_total", "Account level-ups."),
		routines:         NewCounterVec("cali_routines_generated_total", "Routine requests by outcome.", []string{"outcome"}),
		missionsClaimed:  NewCounterVec("cali_missions_claimed_total", "Daily mission claims by type.", []string{"type"}),
		degraded:         NewCounterVec("cali_degraded_total", "Optional steps that failed and fell back to defaults.", []string{"op"}),
		leaderboardFalls: NewCounter("cali_leaderboard_db_fallback_total", "Leaderboard reads served from postgres."),
		sseClients:       NewGauge("cali_sse_clients", "Connected SSE clients."),
		sseDropped:       NewCounter("cali_sse_dropped_total", "SSE messages dropped on full client buffers."),

		pgStats:   NewGaugeVec("cali_postgres_pool", "Postgres connection pool stats.", []string{"stat"}),
		redisUp:   NewGauge("cali_redis_up", "Redis reachability (1 up, 0 down)."),
		redisPing: NewGauge("cali_redis_ping_seconds", "Redis ping latency in seconds."),
	}
}

func (m *Metrics) StartServer(ctx context.Context, log *logger.Logger, addr string) {
	if m == nil {
		return
	}
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           http.HandlerFunc(m.WriteHTTP),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		_ = srv.Shutdown(shutdownCtx)
		cancel()
	}()
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			if log != nil {
				log.Error("metrics server failed", "error", err, "addr", addr)
			}
		}
	}()
}

func (m *Metrics) WriteHTTP(w http.ResponseWriter, r *http.Request) {
	if m == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	_ = m.WritePrometheus(w)
}

func (m *Metrics) WritePrometheus(w io.Writer) error {
	if m == nil {
		return nil
	}
	writers := []interface {
		WritePrometheus(w io.Writer) error
	}{
		m.apiRequests, m.apiLatency, m.apiInflight, m.apiReqTotal, m.apiReqError,
		m.workouts, m.xpAwarded, m.coinsAwarded, m.achievements, m.levelUps,
		m.routines, m.missionsClaimed, m.degraded, m.leaderboardFalls,
		m.sseClients, m.sseDropped,
		m.pgStats, m.redisUp, m.redisPing,
	}
	for _, pw := range writers {
		if err := pw.WritePrometheus(w); err != nil {
			return err
		}
	}
	return nil
}

func (m *Metrics) ObserveAPI(method, route, status string, dur time.Duration) {
	if m == nil {
		return
	}
	if method == "" {
		method = "UNKNOWN"
	}
	if route == "" {
		route = "unknown"
	}
	if status == "" {
		status = "0"
	}
	m.apiRequests.Inc(method, route, status)
	m.apiLatency.Observe(dur.Seconds(), method, route, status)
	m.apiReqTotal.Inc()
	if isServerErrorStatus(status) {
		m.apiReqError.Inc()
	}
}

func (m *Metrics) ApiInflightInc() {
	if m == nil {
		return
	}
	m.apiInflight.Inc()
}

func (m *Metrics) ApiInflightDec() {
	if m == nil {
		return
	}
	m.apiInflight.Dec()
}

// ObserveWorkout records one completed workout and what it paid out.
func (m *Metrics) ObserveWorkout(durationMinutes, xp, coins int) {
	if m == nil {
		return
	}
	m.workouts.Inc(durationBucket(durationMinutes))
	m.xpAwarded.Add(float64(xp), "workout")
	m.coinsAwarded.Add(float64(coins))
}

func (m *Metrics) ObserveXP(source string, xp, coins int) {
	if m == nil {
		return
	}
	m.xpAwarded.Add(float64(xp), source)
	m.coinsAwarded.Add(float64(coins))
}

func (m *Metrics) ObserveAchievement(category string) {
	if m == nil {
		return
	}
	m.achievements.Inc(category)
}

func (m *Metrics) ObserveLevelUp() {
	if m == nil {
		return
	}
	m.levelUps.Inc()
}

// ObserveRoutine counts routine requests; outcome is "generated" or "cached".
func (m *Metrics) ObserveRoutine(outcome string) {
	if m == nil {
		return
	}
	m.routines.Inc(outcome)
}

func (m *Metrics) ObserveMissionClaim(missionType string) {
	if m == nil {
		return
	}
	m.missionsClaimed.Inc(missionType)
}

// ObserveDegraded counts an optional step that failed and was skipped.
func (m *Metrics) ObserveDegraded(op string) {
	if m == nil {
		return
	}
	m.degraded.Inc(op)
}

func (m *Metrics) ObserveLeaderboardFallback() {
	if m == nil {
		return
	}
	m.leaderboardFalls.Inc()
}

func (m *Metrics) SSEClientsInc() {
	if m == nil {
		return
	}
	m.sseClients.Inc()
}

func (m *Metrics) SSEClientsDec() {
	if m == nil {
		return
	}
	m.sseClients.Dec()
}

func (m *Metrics) ObserveSSEDrop() {
	if m == nil {
		return
	}
	m.sseDropped.Inc()
}

func (m *Metrics) StartPostgresCollector(ctx context.Context, log *logger.Logger, db *gorm.DB) {
	if m == nil || db == nil {
		return
	}
	interval := scrapeInterval()
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				sqlDB, err := db.DB()
				if err != nil {
					if log != nil {
						log.Warn("metrics: postgres stats unavailable", "error", err)
					}
					continue
				}
				stats := sqlDB.Stats()
				m.pgStats.Set(float64(stats.OpenConnections), "open_connections")
				m.pgStats.Set(float64(stats.InUse), "in_use")
				m.pgStats.Set(float64(stats.Idle), "idle")
				m.pgStats.Set(float64(stats.WaitCount), "wait_count")
				m.pgStats.Set(stats.WaitDuration.Seconds(), "wait_duration_seconds")
				m.pgStats.Set(float64(stats.MaxOpenConnections), "max_open_connections")
			}
		}
	}()
}

// StartRedisCollector pings the shared client; it never closes it.
func (m *Metrics) StartRedisCollector(ctx context.Context, log *logger.Logger, rdb goredis.UniversalClient) {
	if m == nil || rdb == nil {
		return
	}
	interval := scrapeInterval()
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				start := time.Now()
				if err := rdb.Ping(ctx).Err(); err != nil {
					m.redisUp.Set(0)
					if log != nil {
						log.Warn("metrics: redis ping failed", "error", err)
					}
					continue
				}
				m.redisUp.Set(1)
				m.redisPing.Set(time.Since(start).Seconds())
			}
		}
	}()
}

func durationBucket(minutes int) string {
	switch {
	case minutes <= 15:
		return "15"
	case minutes <= 30:
		return "30"
	case minutes <= 45:
		return "45"
	default:
		return "60"
	}
}

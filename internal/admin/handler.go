// AngelaMos | 2026
// handler.go

package admin

import (
	"context"
	"database/sql"
	"net/http"
	"runtime"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"github.com/carterperez-dev/neighborly/internal/core"
	"github.com/carterperez-dev/neighborly/internal/rating"
	"github.com/carterperez-dev/neighborly/internal/subscription"
)

type RatingRecomputer interface {
	Recompute(ctx context.Context, listingID string) error
}

type RatingRepairer interface {
	DrainOnce(ctx context.Context) (int, error)
	RepairAll(ctx context.Context) (*rating.RepairReport, error)
	Pending(ctx context.Context) (int64, error)
}

type SubscriptionLister interface {
	List(ctx context.Context, params subscription.ListParams) ([]subscription.Subscription, int, error)
	Now() time.Time
	ExpiryWarning() time.Duration
}

type SubscriptionSweeper interface {
	SweepOnce(ctx context.Context) (*subscription.SweepReport, error)
}

type Handler struct {
	dbStats       func() sql.DBStats
	redisStats    func() *redis.PoolStats
	redisPing     func(ctx context.Context) error
	dbPing        func(ctx context.Context) error
	ratings       RatingRecomputer
	repairer      RatingRepairer
	subscriptions SubscriptionLister
	sweeper       SubscriptionSweeper
}

type HandlerConfig struct {
	DBStats       func() sql.DBStats
	RedisStats    func() *redis.PoolStats
	RedisPing     func(ctx context.Context) error
	DBPing        func(ctx context.Context) error
	Ratings       RatingRecomputer
	Repairer      RatingRepairer
	Subscriptions SubscriptionLister
	Sweeper       SubscriptionSweeper
}

func NewHandler(cfg HandlerConfig) *Handler {
	return &Handler{
		dbStats:       cfg.DBStats,
		redisStats:    cfg.RedisStats,
		redisPing:     cfg.RedisPing,
		dbPing:        cfg.DBPing,
		ratings:       cfg.Ratings,
		repairer:      cfg.Repairer,
		subscriptions: cfg.Subscriptions,
		sweeper:       cfg.Sweeper,
	}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator, adminOnly func(http.Handler) http.Handler,
) {
	r.Route("/admin", func(r chi.Router) {
		r.Use(authenticator)
		r.Use(adminOnly)

		r.Get("/stats", h.GetSystemStats)
		r.Get("/stats/db", h.GetDatabaseStats)
		r.Get("/stats/redis", h.GetRedisStats)
		r.Get("/stats/runtime", h.GetRuntimeStats)

		r.Post("/listings/{listingID}/recompute", h.RecomputeListing)
		r.Get("/ratings/stale", h.GetStaleRatings)
		r.Post("/ratings/drain", h.DrainStaleRatings)
		r.Post("/ratings/repair", h.RepairRatings)

		r.Get("/subscriptions", h.ListSubscriptions)
		r.Post("/subscriptions/sweep", h.SweepSubscriptions)
	})
}

func (h *Handler) GetSystemStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	dbHealthy := true
	if h.dbPing != nil {
		if err := h.dbPing(ctx); err != nil {
			dbHealthy = false
		}
	}

	redisHealthy := true
	if h.redisPing != nil {
		if err := h.redisPing(ctx); err != nil {
			redisHealthy = false
		}
	}

	response := SystemStatsResponse{
		Database: DatabaseStatus{
			Healthy: dbHealthy,
			Stats:   h.getDBStats(),
		},
		Redis: RedisStatus{
			Healthy: redisHealthy,
			Stats:   h.getRedisStats(),
		},
		Runtime: readRuntimeStats(),
	}

	if h.repairer != nil {
		if pending, err := h.repairer.Pending(ctx); err == nil {
			response.StaleAggregates = &pending
		}
	}

	core.OK(w, response)
}

func (h *Handler) GetDatabaseStats(w http.ResponseWriter, r *http.Request) {
	core.OK(w, h.getDBStats())
}

func (h *Handler) GetRedisStats(w http.ResponseWriter, r *http.Request) {
	core.OK(w, h.getRedisStats())
}

func (h *Handler) GetRuntimeStats(w http.ResponseWriter, r *http.Request) {
	core.OK(w, readRuntimeStats())
}

// RecomputeListing rebuilds one listing's aggregate from its reviews.
func (h *Handler) RecomputeListing(w http.ResponseWriter, r *http.Request) {
	listingID := chi.URLParam(r, "listingID")
	if strings.TrimSpace(listingID) == "" {
		core.BadRequest(w, "listing id is required")
		return
	}

	if err := h.ratings.Recompute(r.Context(), listingID); err != nil {
		core.WriteError(w, err, "listing")
		return
	}

	core.OK(w, map[string]string{"listing_id": listingID, "status": "recomputed"})
}

func (h *Handler) GetStaleRatings(w http.ResponseWriter, r *http.Request) {
	pending, err := h.repairer.Pending(r.Context())
	if err != nil {
		core.WriteError(w, err, "rating")
		return
	}

	core.OK(w, map[string]int64{"pending": pending})
}

func (h *Handler) DrainStaleRatings(w http.ResponseWriter, r *http.Request) {
	repaired, err := h.repairer.DrainOnce(r.Context())
	if err != nil {
		core.WriteError(w, err, "rating")
		return
	}

	core.OK(w, map[string]int{"repaired": repaired})
}

// RepairRatings rescans every listing. Listings that still fail are
// reported rather than aborting the run.
func (h *Handler) RepairRatings(w http.ResponseWriter, r *http.Request) {
	report, err := h.repairer.RepairAll(r.Context())
	if err != nil {
		core.WriteError(w, err, "rating")
		return
	}

	core.OK(w, report)
}

func (h *Handler) ListSubscriptions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	params := subscription.ListParams{
		PageParams: core.PageFromRequest(r),
		Status:     q.Get("status"),
		ProviderID: q.Get("provider"),
	}

	subs, total, err := h.subscriptions.List(r.Context(), params)
	if err != nil {
		core.WriteError(w, err, "subscription")
		return
	}

	now, window := h.subscriptions.Now(), h.subscriptions.ExpiryWarning()
	out := make([]subscription.SubscriptionResponse, len(subs))
	for i := range subs {
		out[i] = subscription.ToResponse(&subs[i], now, window)
	}

	core.Paginated(w, out, params.Page, params.PageSize, total)
}

func (h *Handler) SweepSubscriptions(w http.ResponseWriter, r *http.Request) {
	report, err := h.sweeper.SweepOnce(r.Context())
	if err != nil {
		core.WriteError(w, err, "subscription")
		return
	}

	core.OK(w, report)
}

func readRuntimeStats() RuntimeStats {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	return RuntimeStats{
		GoVersion:    runtime.Version(),
		NumGoroutine: runtime.NumGoroutine(),
		NumCPU:       runtime.NumCPU(),
		MemAlloc:     memStats.Alloc,
		MemSys:       memStats.Sys,
		NumGC:        memStats.NumGC,
	}
}

func (h *Handler) getDBStats() *DBPoolStats {
	if h.dbStats == nil {
		return nil
	}

	stats := h.dbStats()
	return &DBPoolStats{
		MaxOpenConnections: stats.MaxOpenConnections,
		OpenConnections:    stats.OpenConnections,
		InUse:              stats.InUse,
		Idle:               stats.Idle,
		WaitCount:          stats.WaitCount,
		WaitDuration:       stats.WaitDuration.String(),
		MaxLifetimeClosed:  stats.MaxLifetimeClosed,
	}
}

func (h *Handler) getRedisStats() *RedisPoolStats {
	if h.redisStats == nil {
		return nil
	}

	stats := h.redisStats()
	return &RedisPoolStats{
		Hits:       stats.Hits,
		Misses:     stats.Misses,
		Timeouts:   stats.Timeouts,
		TotalConns: stats.TotalConns,
		IdleConns:  stats.IdleConns,
	}
}

type SystemStatsResponse struct {
	Database        DatabaseStatus `json:"database"`
	Redis           RedisStatus    `json:"redis"`
	Runtime         RuntimeStats   `json:"runtime"`
	StaleAggregates *int64         `json:"stale_aggregates,omitempty"`
}

type DatabaseStatus struct {
	Healthy bool         `json:"healthy"`
	Stats   *DBPoolStats `json:"stats,omitempty"`
}

type RedisStatus struct {
	Healthy bool            `json:"healthy"`
	Stats   *RedisPoolStats `json:"stats,omitempty"`
}

type DBPoolStats struct {
	MaxOpenConnections int    `json:"max_open_connections"`
	OpenConnections    int    `json:"open_connections"`
	InUse              int    `json:"in_use"`
	Idle               int    `json:"idle"`
	WaitCount          int64  `json:"wait_count"`
	WaitDuration       string `json:"wait_duration"`
	MaxLifetimeClosed  int64  `json:"max_lifetime_closed"`
}

type RedisPoolStats struct {
	Hits       uint32 `json:"hits"`
	Misses     uint32 `json:"misses"`
	Timeouts   uint32 `json:"timeouts"`
	TotalConns uint32 `json:"total_conns"`
	IdleConns  uint32 `json:"idle_conns"`
}

type RuntimeStats struct {
	GoVersion    string `json:"go_version"`
	NumGoroutine int    `json:"num_goroutine"`
	NumCPU       int    `json:"num_cpu"`
	MemAlloc     uint64 `json:"mem_alloc_bytes"`
	MemSys       uint64 `json:"mem_sys_bytes"`
	NumGC        uint32 `json:"num_gc"`
}

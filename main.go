package main

import (
	"context"
	"log"
	"time"

	"github.com/fasthttp/router"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/valyala/fasthttp"

	"blogmetrics/internal/aggregate"
	"blogmetrics/internal/audit"
	"blogmetrics/internal/catalog"
	"blogmetrics/internal/config"
	"blogmetrics/internal/counters"
	"blogmetrics/internal/gate"
	"blogmetrics/internal/http/handlers"
	appmw "blogmetrics/internal/http/middleware"
	"blogmetrics/internal/ratelimit"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	sqlDB, err := catalog.Connect(cfg)
	if err != nil {
		log.Fatalf("failed to connect catalog database: %v", err)
	}

	var rdb *redis.Client
	var limitStore ratelimit.Store
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Fatalf("invalid APP_REDIS_URL: %v", err)
		}
		rdb = redis.NewClient(opts)
		defer rdb.Close()
		limitStore = ratelimit.NewRedisStore(rdb)
	} else {
		log.Printf("APP_REDIS_URL not set: rate limits are per-process and counters read as zero")
	}

	limiter := ratelimit.New(limitStore)
	janitorCtx, stopJanitor := context.WithCancel(context.Background())
	defer stopJanitor()
	limiter.StartJanitor(janitorCtx, 2*time.Minute)

	audit.InitMetrics()
	auditLog := audit.NewLogger(cfg.Environment)
	accessGate := gate.New(cfg)
	counterStore := counters.NewStore(rdb, 2*time.Second)
	engine := aggregate.New(counterStore)

	deps := appmw.Deps{Gate: accessGate, Limiter: limiter, Audit: auditLog}

	analyticsGate := appmw.Pipeline(deps, appmw.RouteOptions{
		Name:      "analytics",
		Secret:    cfg.AnalyticsSecret,
		RateLimit: ratelimit.Config{Limit: 10, Window: time.Minute, FailClosed: true},
	})
	refreshGate := appmw.Pipeline(deps, appmw.RouteOptions{
		Name:      "refresh",
		Secret:    cfg.RefreshSecret,
		RateLimit: ratelimit.Config{Limit: 5, Window: 5 * time.Minute, FailClosed: true},
	})

	r := router.New()

	r.GET("/healthz", func(ctx *fasthttp.RequestCtx) {
		ctx.SetStatusCode(fasthttp.StatusOK)
		ctx.SetBodyString("ok")
	})
	r.GET("/metrics", handlers.MetricsHandler())

	r.GET("/v1/analytics", analyticsGate(handlers.Analytics(sqlDB, engine)))
	r.POST("/v1/analytics/refresh", refreshGate(handlers.RefreshTrending(counterStore)))

	handler := handlers.RequestLogger(r.Handler)

	log.Printf("blogmetrics listening on %s (env=%s)", cfg.ListenAddr, cfg.Environment)
	if err := fasthttp.ListenAndServe(cfg.ListenAddr, handler); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

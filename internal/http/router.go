package http

import (
	"context"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/stocktrack/stationery/internal/auth"
	"github.com/stocktrack/stationery/internal/config"
	"github.com/stocktrack/stationery/internal/http/handlers"
	"github.com/stocktrack/stationery/internal/http/middlewares"
	"github.com/stocktrack/stationery/internal/observability"
	"github.com/stocktrack/stationery/internal/repo/postgres"
)

func NewRouter(log *slog.Logger, pool *pgxpool.Pool, cfg config.Config) *gin.Engine {
	if cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	// metrics registry for this router instance

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	prom := observability.NewProm(registry)

	// middleware

	r.Use(gin.Recovery())
	r.Use(RequestID())
	r.Use(RequestLogger(log))
	r.Use(otelgin.Middleware("stationery-api"))
	r.Use(prom.GinHandleMiddleware())
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(cfg.AllowedOrigins))
	r.Use(middlewares.RequireJSON())
	r.Use(middlewares.MaxBodyBytes(1 << 20))

	// health + metrics
	ping := func() error {
		if pool == nil {
			return nil
		}

		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
		defer cancel()

		return pool.Ping(ctx)
	}

	h := handlers.NewHealthHandler(ping)
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	// wire up repositories
	usersRepo := postgres.NewUsersRepo(pool, prom)
	categoriesRepo := postgres.NewCategoriesRepo(pool, prom)
	itemsRepo := postgres.NewItemsRepo(pool, prom)

	jwtManager := auth.NewManager(cfg.JWTSecret, time.Duration(cfg.JWTAccessTTLMinutes)*time.Minute)
	authMW := middlewares.NewAuthMiddleware(jwtManager)

	// wire up handlers
	authHandler := handlers.NewAuthHandler(usersRepo, jwtManager, log)
	categoriesHandler := handlers.NewCategoriesHandler(categoriesRepo)
	itemsHandler := handlers.NewItemsHandler(itemsRepo)

	// credential endpoints get a per-IP limiter
	loginLimiter := middlewares.NewRateLimiter(20, time.Minute)

	api := r.Group("/api")

	api.POST("/login", loginLimiter.RateLimiterMiddleware(middlewares.KeyByIP), authHandler.Login)
	api.POST("/register", loginLimiter.RateLimiterMiddleware(middlewares.KeyByIP), authHandler.Register)
	api.GET("/admin-exists", authHandler.AdminExists)
	api.GET("/me", authMW.RequireAuth(), authHandler.Me)

	api.GET("/categories", categoriesHandler.ListCategories)
	api.POST("/categories", categoriesHandler.CreateCategory)
	api.DELETE("/categories/:id", categoriesHandler.DeleteCategory)

	api.GET("/items", itemsHandler.ListItems)
	api.POST("/items", itemsHandler.CreateItem)
	api.PUT("/items/:id", itemsHandler.UpdateItem)
	api.DELETE("/items/:id", itemsHandler.DeleteItem)

	return r
}

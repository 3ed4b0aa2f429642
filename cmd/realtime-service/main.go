package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	redisClient "github.com/go-redis/redis/v8"
	_ "github.com/go-sql-driver/mysql"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/Faisal-Sha/eco-product-task/internal/api/handlers"
	"github.com/Faisal-Sha/eco-product-task/internal/config"
	"github.com/Faisal-Sha/eco-product-task/internal/infrastructure/mysql"
	"github.com/Faisal-Sha/eco-product-task/internal/infrastructure/redis"
	ws "github.com/Faisal-Sha/eco-product-task/internal/infrastructure/websocket"
	"github.com/Faisal-Sha/eco-product-task/internal/services"
	"github.com/Faisal-Sha/eco-product-task/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewWithLevel(cfg.Log.Level)
	log.Info("Starting Realtime Service", "instance_id", cfg.Instance.ID)

	// Initialize Redis
	rdb := redisClient.NewClient(&redisClient.Options{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	// Test Redis connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	log.Info("Connected to Redis", "address", cfg.Redis.Address)

	// Initialize MySQL
	db, err := sql.Open("mysql", cfg.MySQL.DSN)
	if err != nil {
		log.Error("Failed to connect to MySQL", "error", err)
		os.Exit(1)
	}
	defer func(db *sql.DB) {
		if err := db.Close(); err != nil {
			log.Error("Failed to close MySQL connection", "error", err)
		}
	}(db)

	db.SetMaxOpenConns(cfg.MySQL.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MySQL.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.MySQL.ConnMaxLifetime)

	// Test MySQL connection
	if err := db.PingContext(ctx); err != nil {
		log.Error("Failed to ping MySQL", "error", err)
		os.Exit(1)
	}
	log.Info("Connected to MySQL")

	// Initialize repositories
	productRepo := mysql.NewMySQLProductRepository(db)

	// Initialize the hub
	registry := ws.NewRegistry(log)
	broadcaster := ws.NewBroadcaster(registry, cfg.Realtime.LowStockThreshold, log)
	identityResolver := services.NewJWTIdentityResolver(cfg.JWT, log)
	wsHandler := ws.NewHandler(registry, broadcaster, productRepo, identityResolver, log)

	// Initialize the product event ingest from the CRUD layer
	eventSubscriber := redis.NewRedisEventSubscriber(rdb, cfg.Realtime.EventChannel, log)
	relay := services.NewProductEventRelay(broadcaster, log)

	subscriberCtx, stopSubscriber := context.WithCancel(context.Background())
	defer stopSubscriber()
	go func() {
		if err := eventSubscriber.SubscribeToProductEvents(subscriberCtx, relay.Handle); err != nil &&
			!errors.Is(err, context.Canceled) {
			log.Error("Event subscriber exited", "error", err)
		}
	}()

	// Initialize the periodic admin stats snapshot
	statsReporter := services.NewStatsReporter(broadcaster, cfg.Realtime.StatsSchedule, log)
	if err := statsReporter.Start(); err != nil {
		log.Error("Failed to start stats reporter", "error", err)
		os.Exit(1)
	}

	// Initialize Echo
	e := echo.New()
	e.HideBanner = true

	// Middleware
	e.Use(middleware.RequestID())
	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Format: `{"time":"${time_rfc3339}","id":"${id}","remote_ip":"${remote_ip}","host":"${host}","method":"${method}","uri":"${uri}","user_agent":"${user_agent}","status":${status},"error":"${error}","latency":${latency},"latency_human":"${latency_human}","bytes_in":${bytes_in},"bytes_out":${bytes_out}}` + "\n",
	}))
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{
			echo.GET, echo.HEAD, echo.PUT, echo.PATCH,
			echo.POST, echo.DELETE, echo.OPTIONS,
		},
		AllowHeaders: []string{
			echo.HeaderOrigin,
			echo.HeaderContentType,
			echo.HeaderAccept,
			echo.HeaderAuthorization,
		},
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Initialize handlers
	realtimeHandler := handlers.NewRealtimeHandlers(wsHandler, broadcaster, log)

	// Routes
	e.GET("/ws", realtimeHandler.HandleConnection)

	api := e.Group("/api/v1")
	api.GET("/realtime/stats", realtimeHandler.GetConnectionStats)

	// Health check endpoint
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]interface{}{
			"status":    "ok",
			"service":   "realtime-service",
			"timestamp": time.Now().Format(time.RFC3339),
			"port":      cfg.Server.Port,
			"version":   "1.0.0",
		})
	})

	// Start server
	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Info("Starting realtime server", "address", serverAddr)

	go func() {
		if err := e.Start(serverAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down realtime service...")

	// Graceful shutdown. Clients reconnect and re-join their rooms; no
	// hub state survives a restart.
	ctx, cancel = context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	statsReporter.Stop()
	stopSubscriber()

	if err := e.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
	}

	log.Info("Realtime service stopped")
}

// internal/app/server.go
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"fleetdash/internal/config"
	"fleetdash/internal/db"
	authHandler "fleetdash/internal/handlers/auth"
	dashboardHandler "fleetdash/internal/handlers/dashboard"
	driverHandler "fleetdash/internal/handlers/driver"
	recordHandler "fleetdash/internal/handlers/record"
	userHandler "fleetdash/internal/handlers/user"
	vehicleHandler "fleetdash/internal/handlers/vehicle"
	wsHandler "fleetdash/internal/handlers/websocket"
	"fleetdash/internal/middleware"
	"fleetdash/internal/pkg/jwt"
	"fleetdash/internal/pkg/session"
	"fleetdash/internal/repository"
	"fleetdash/internal/repository/file"
	"fleetdash/internal/repository/postgres"
	redisrepo "fleetdash/internal/repository/redis"
	authUsecase "fleetdash/internal/service/auth"
	dashboardUsecase "fleetdash/internal/service/dashboard"
	recordsUsecase "fleetdash/internal/service/records"
	"fleetdash/internal/upstream"
	"fleetdash/internal/websocket"
	wsHandlers "fleetdash/internal/websocket/handler"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Server struct {
	cfg    config.AppConfig
	engine *gin.Engine
	logger *zap.Logger

	httpServer *http.Server
	redis      *redis.Client
	pool       *pgxpool.Pool
	dashboard  *dashboardUsecase.DashboardService
	stopHub    context.CancelFunc
}

func NewServer(cfg config.AppConfig, logger *zap.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)
	return &Server{
		cfg:    cfg,
		engine: gin.New(),
		logger: logger,
	}
}

// Deps are the external connections the router is built on.
type Deps struct {
	Redis     *redis.Client
	RecordsKV repository.KV
}

// Build wires services, handlers and routes onto engine and starts the
// websocket hub. Cancel ctx to stop the hub.
func Build(ctx context.Context, engine *gin.Engine, cfg config.AppConfig, deps Deps, logger *zap.Logger) *dashboardUsecase.DashboardService {
	// ----- Fleet API client -----
	api := upstream.NewClient(cfg.UpstreamURL, cfg.UpstreamTimeout, logger)

	// ----- Token inspection -----
	inspector := jwt.NewInspector(cfg.JWTSecret)

	// ----- Session Manager & Rate Limiter -----
	sessionManager := session.NewManager(deps.Redis, cfg.SessionTTL, logger)
	rateLimiter := session.NewRateLimiter(deps.Redis)

	// ----- WebSocket Hub -----
	hub := websocket.NewHub(inspector, sessionManager, logger)

	// ----- Services (Usecases) -----
	authService := authUsecase.NewAuthService(api, inspector, rateLimiter, logger)
	recordsService := recordsUsecase.NewRecordsService(deps.RecordsKV, logger)
	dashboardService := dashboardUsecase.NewDashboardService(api, logger).
		WithNotifier(hub).
		WithAccountCleanup(sessionManager, recordsService)

	// Register WebSocket handlers
	hub.RegisterHandler(wsHandlers.NewFleetHandler(dashboardService, hub, logger))

	// Start hub
	go hub.Run(ctx)

	// ----- Handlers -----
	handlers := &Handlers{
		AuthHandler:      authHandler.NewAuthHandler(logger),
		DashboardHandler: dashboardHandler.NewDashboardHandler(dashboardService, logger),
		VehicleHandler:   vehicleHandler.NewVehicleHandler(dashboardService, sessionManager, logger),
		DriverHandler:    driverHandler.NewDriverHandler(dashboardService, sessionManager, logger),
		UserHandler:      userHandler.NewUserHandler(dashboardService, logger),
		RecordHandler:    recordHandler.NewRecordHandler(recordsService, sessionManager, logger),
		WSHandler:        wsHandler.NewWebSocketHandler(hub, cfg.CORSOrigins, logger),
		SessionMiddleware: middleware.NewSessionMiddleware(sessionManager, authService, middleware.CookieConfig{
			Name:   cfg.SessionCookie,
			Secure: cfg.CookieSecure,
			MaxAge: int(cfg.SessionTTL.Seconds()),
		}, cfg.MasterPhone, logger),
	}

	// ----- Middlewares -----
	engine.Use(
		middleware.RecoveryMiddleware(logger),
		middleware.LoggingMiddleware(logger),
		middleware.CORSMiddleware(cfg.CORSOrigins),
	)

	// ----- Router -----
	SetupRouter(engine, logger, handlers)

	return dashboardService
}

func (s *Server) Start(ctx context.Context) error {
	if err := s.cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	// ----- Redis -----
	redisClient, err := db.NewRedisClient(ctx, db.RedisConfig{
		Addr:     s.cfg.RedisAddr,
		Password: s.cfg.RedisPass,
		DB:       s.cfg.RedisDB,
		PoolSize: 10,
	})
	if err != nil {
		return err
	}
	s.redis = redisClient
	s.logger.Info("connected to redis", zap.String("addr", s.cfg.RedisAddr))

	// ----- Records backend -----
	kv, err := s.recordsBackend(ctx)
	if err != nil {
		return err
	}

	hubCtx, stopHub := context.WithCancel(context.Background())
	s.stopHub = stopHub
	s.dashboard = Build(hubCtx, s.engine, s.cfg, Deps{Redis: redisClient, RecordsKV: kv}, s.logger)

	// ----- Start HTTP -----
	s.httpServer = &http.Server{
		Addr:              s.cfg.HTTPAddr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("server listening",
		zap.String("addr", s.cfg.HTTPAddr),
		zap.String("upstream", s.cfg.UpstreamURL),
		zap.String("records_backend", s.cfg.RecordsBackend),
	)

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server failed: %w", err)
	}
	return nil
}

func (s *Server) recordsBackend(ctx context.Context) (repository.KV, error) {
	switch s.cfg.RecordsBackend {
	case config.RecordsBackendPostgres:
		pool, err := db.ConnectDB(ctx, s.cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		s.pool = pool
		repo := postgres.NewRecordsRepository(pool, s.cfg.RecordsTable)
		if err := repo.Migrate(ctx); err != nil {
			return nil, err
		}
		s.logger.Info("records stored in postgres", zap.String("table", s.cfg.RecordsTable))
		return repo, nil

	case config.RecordsBackendFile:
		repo, err := file.NewRecordsRepository(s.cfg.RecordsDir)
		if err != nil {
			return nil, err
		}
		s.logger.Info("records stored on disk", zap.String("dir", s.cfg.RecordsDir))
		return repo, nil

	default:
		s.logger.Info("records stored in redis")
		return redisrepo.NewRecordsRepository(s.redis, "records:"), nil
	}
}

// Shutdown stops accepting requests, waits for in-flight work and closes connections.
func (s *Server) Shutdown(ctx context.Context) error {
	var errs []error

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("http shutdown: %w", err))
		}
	}
	if s.dashboard != nil {
		s.dashboard.Wait()
	}
	if s.stopHub != nil {
		s.stopHub()
	}
	if s.pool != nil {
		s.pool.Close()
	}
	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("redis close: %w", err))
		}
	}

	return errors.Join(errs...)
}

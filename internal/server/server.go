package server

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	"example.com/resto-backoffice/backend/internal/auth"
	"example.com/resto-backoffice/backend/internal/cache"
	"example.com/resto-backoffice/backend/internal/config"
	"example.com/resto-backoffice/backend/internal/handlers"
	"example.com/resto-backoffice/backend/internal/models"
	"example.com/resto-backoffice/backend/internal/notifications"
	"example.com/resto-backoffice/backend/internal/repository"
)

// New собирает HTTP-сервер Echo с роутами и зависимостями.
func New(cfg config.Config, logger *slog.Logger, db *pgxpool.Pool) (*echo.Echo, error) {
	if logger == nil {
		logger = slog.Default()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = NewValidator()

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(requestLogger(logger))

	var reportCache *cache.ReportCache
	if cfg.Cache.Enabled {
		var err error
		reportCache, err = cache.New(cfg.Cache.TTL)
		if err != nil {
			return nil, fmt.Errorf("init cache: %w", err)
		}
	}

	tokenManager := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, cfg.Auth.AccessTokenTTL, cfg.Auth.RefreshTokenTTL)
	userRepo := repository.NewUserRepository(db)
	tokenRepo := repository.NewRefreshTokenRepository(db)
	typeRepo := repository.NewExpenseTypeRepository(db)
	expenseRepo := repository.NewExpenseRepository(db)
	ruleRepo := repository.NewRuleRepository(db)
	ingredientRepo := repository.NewIngredientRepository(db)
	gatewayRepo := repository.NewGatewayRepository(db)
	staffRepo := repository.NewStaffRepository(db)
	reportRepo := repository.NewReportRepository(db)
	notificationHub := notifications.NewHub()

	authHandler := handlers.NewAuthHandler(userRepo, tokenRepo, staffRepo, tokenManager)
	typeHandler := handlers.NewExpenseTypeHandler(typeRepo, expenseRepo, reportCache)
	expenseHandler := handlers.NewExpenseHandler(expenseRepo, typeRepo, notificationHub, reportCache)
	ruleHandler := handlers.NewRuleHandler(ruleRepo, typeRepo)
	ingredientHandler := handlers.NewIngredientHandler(ingredientRepo, notificationHub, reportCache)
	alertHandler := handlers.NewAlertHandler(ingredientRepo, reportCache, cfg.Stock)
	gatewayHandler := handlers.NewGatewayHandler(gatewayRepo)
	staffHandler := handlers.NewStaffHandler(staffRepo)
	reportHandler := handlers.NewReportHandler(reportRepo, reportCache)
	notificationHandler := handlers.NewNotificationHandler(notificationHub)

	registerRoutes(
		e,
		routeHandlers{
			Auth:          authHandler,
			Types:         typeHandler,
			Expenses:      expenseHandler,
			Rules:         ruleHandler,
			Ingredients:   ingredientHandler,
			Alerts:        alertHandler,
			Gateways:      gatewayHandler,
			Staff:         staffHandler,
			Reports:       reportHandler,
			Notifications: notificationHandler,
		},
		routeMiddleware{
			Auth:            auth.JWTMiddleware(tokenManager),
			AuthRateLimiter: authRateLimiter(cfg.Auth),
			Module: func(module models.Module) echo.MiddlewareFunc {
				return handlers.ModuleMiddleware(staffRepo, userRepo, cfg.Admin.Emails, module)
			},
		},
	)

	return e, nil
}

// NewHTTPServer создает net/http сервер с заданными таймаутами.
func NewHTTPServer(cfg config.ServerConfig, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
}

func requestLogger(logger *slog.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:      true,
		LogStatus:   true,
		LogMethod:   true,
		LogLatency:  true,
		LogRemoteIP: true,
		LogError:    true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []slog.Attr{
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.String("remote_ip", v.RemoteIP),
				slog.Duration("latency", v.Latency),
			}

			if v.Error != nil {
				attrs = append(attrs, slog.String("error", v.Error.Error()))
			}

			msg := "request completed"
			if v.Status >= http.StatusInternalServerError {
				logger.LogAttrs(c.Request().Context(), slog.LevelError, msg, attrs...)
				return nil
			}

			logger.LogAttrs(c.Request().Context(), slog.LevelInfo, msg, attrs...)
			return nil
		},
	})
}

func authRateLimiter(cfg config.AuthConfig) echo.MiddlewareFunc {
	limit := rate.Limit(float64(cfg.RateLimitPerMinute) / 60.0)
	store := middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
		Rate:      limit,
		Burst:     cfg.RateLimitBurst,
		ExpiresIn: time.Minute,
	})

	return middleware.RateLimiter(store)
}

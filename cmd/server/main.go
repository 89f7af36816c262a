package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/ChronoCoders/flashloanbot/internal/api"
	"github.com/ChronoCoders/flashloanbot/internal/config"
	"github.com/ChronoCoders/flashloanbot/internal/engine"
	"github.com/ChronoCoders/flashloanbot/internal/repository"
	"github.com/ChronoCoders/flashloanbot/internal/service"
	"github.com/ChronoCoders/flashloanbot/internal/venue"
	"github.com/ChronoCoders/flashloanbot/internal/websocket"
	"github.com/ChronoCoders/flashloanbot/pkg/ratelimit"
	"github.com/ChronoCoders/flashloanbot/pkg/utils"
)

func main() {
	// .env опционален, в production переменные приходят из окружения
	_ = godotenv.Load()

	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := utils.NewLogger(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer logger.Sync()

	// Инициализация базы данных
	db, err := initDatabase(cfg)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	logger.Info("connected to database", zap.String("dsn", cfg.Database.DSNWithoutPassword()))

	// Инициализация репозиториев
	depositRepo := repository.NewDepositRepository(db)
	tradeRepo := repository.NewTradeRepository(db)
	distributionRepo := repository.NewDistributionRepository(db)
	emergencyRepo := repository.NewEmergencyRepository(db)
	withdrawalRepo := repository.NewWithdrawalRepository(db)

	// WebSocket hub для real-time ленты событий
	hub := websocket.NewHub()
	go hub.Run()
	defer hub.Stop()

	// Reporting sink: события движка в БД и клиентам
	reporting := service.NewReportingService(
		depositRepo,
		tradeRepo,
		distributionRepo,
		emergencyRepo,
		withdrawalRepo,
		logger.Named("reporting"),
	)
	reporting.SetWebSocketHub(hub)

	// Внешние коллабораторы: площадки ликвидности и кредитный пул
	pool, venues, err := buildVenues(cfg)
	if err != nil {
		logger.Fatal("failed to build venues", zap.Error(err))
	}

	// Инвестиционный движок
	eng, err := engine.New(engine.Config{
		Controller:                cfg.Engine.Controller,
		MinProfit:                 cfg.Engine.MinProfit,
		AllowPausedProfitWithdraw: cfg.Engine.AllowPausedProfitWithdraw,
		DailyLossLimitPct:         cfg.Engine.DailyLossLimitPct,
		Distribution: engine.DistributionPolicy{
			InvestorPct:   cfg.Engine.InvestorPct,
			MaintainerPct: cfg.Engine.MaintainerPct,
			OperationsPct: cfg.Engine.OperationsPct,
		},
	}, pool, venues, reporting, logger.Named("engine"))
	if err != nil {
		logger.Fatal("failed to create engine", zap.Error(err))
	}
	eng.SetPriceFeed(buildFeed(cfg))

	// Read-сторона журналов для API
	history := service.NewHistoryService(
		depositRepo,
		tradeRepo,
		distributionRepo,
		emergencyRepo,
		withdrawalRepo,
	)

	// Настройка HTTP роутера
	router := api.SetupRoutes(&api.Dependencies{
		Engine:           eng,
		History:          history,
		Hub:              hub,
		Logger:           logger.Named("http"),
		ControlTokenHash: cfg.Security.ControlTokenHash,
		RateLimiter:      ratelimit.NewPerClient(cfg.Security.APIRateLimit, cfg.Security.APIRateBurst),
	})

	// HTTP сервер
	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	// Запуск сервера в отдельной горутине
	go func() {
		logger.Info("starting server", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server exited")
}

// buildVenues собирает кредитный пул и площадки по конфигурации.
//
// В режиме sim движок работает на встроенных симуляторах: удобно
// для разработки и стендов без реальной ликвидности. Курсы задаются
// через API симуляторов в тестах или остаются пустыми.
func buildVenues(cfg *config.Config) (venue.LendingPool, []venue.SwapVenue, error) {
	switch cfg.Venues.Mode {
	case "sim":
		pool := venue.NewSimPool(cfg.Venues.PoolID, cfg.Venues.PoolPremiumBps)
		return pool, []venue.SwapVenue{
			venue.NewSimVenue("sim-a"),
			venue.NewSimVenue("sim-b"),
		}, nil

	case "http":
		venues := make([]venue.SwapVenue, 0, len(cfg.Venues.Venues))
		for _, vc := range cfg.Venues.Venues {
			hc := venue.DefaultHTTPClientConfig()
			hc.APIKey = vc.APIKey
			if vc.RateLimit > 0 {
				hc.RateLimit = vc.RateLimit
			}
			if vc.RateBurst > 0 {
				hc.RateBurst = vc.RateBurst
			}
			venues = append(venues, venue.NewHTTPVenue(vc.Name, vc.BaseURL, hc))
		}
		// Кредитный пул остаётся симулятором: протокол внешнего
		// flash-loan провайдера за рамками HTTP адаптера площадок
		pool := venue.NewSimPool(cfg.Venues.PoolID, cfg.Venues.PoolPremiumBps)
		return pool, venues, nil

	default:
		return nil, nil, fmt.Errorf("unknown venue mode %q", cfg.Venues.Mode)
	}
}

// buildFeed собирает ценовой фид: HTTP адаптер при заданном
// PRICE_FEED_URL, иначе встроенный симулятор
func buildFeed(cfg *config.Config) venue.PriceFeed {
	if cfg.Venues.Mode == "http" && cfg.Venues.PriceFeedURL != "" {
		return venue.NewHTTPFeed(cfg.Venues.PriceFeedURL, venue.DefaultHTTPClientConfig())
	}
	return venue.NewSimFeed()
}

// initDatabase создает подключение к базе данных
func initDatabase(cfg *config.Config) (*sql.DB, error) {
	db, err := sql.Open(cfg.Database.Driver, cfg.Database.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Настройка пула соединений
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	// Проверка подключения
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/ChronoCoders/flashloanbot/internal/api/handlers"
	"github.com/ChronoCoders/flashloanbot/internal/api/middleware"
	"github.com/ChronoCoders/flashloanbot/internal/websocket"
	"github.com/ChronoCoders/flashloanbot/pkg/ratelimit"
)

// Dependencies содержит все зависимости для API handlers
type Dependencies struct {
	Engine           handlers.EngineInterface
	History          handlers.HistoryInterface
	Hub              *websocket.Hub
	Logger           *zap.Logger
	ControlTokenHash string
	RateLimiter      *ratelimit.PerClient
}

// SetupRoutes настраивает все HTTP маршруты приложения
//
// Назначение:
// Центральное место для определения всех API endpoints.
// Регистрирует handlers для каждого маршрута.
// Применяет middleware к группам маршрутов.
// Организует версионирование API (v1).
//
// Структура маршрутов:
//
// /api/v1/
//
//	├── POST /deposits - внести депозит
//	├── POST /withdrawals/profit - вывести прибыль
//	├── POST /withdrawals/emergency - аварийный вывод
//	├── GET  /investors/{id} - позиция и история вкладчика
//	├── GET  /stats - статистика движка
//	├── GET  /trades - последние сделки
//	├── GET  /trades/{correlation_id} - сделка по идентификатору
//	├── GET  /distributions - последние распределения
//	├── GET  /distributions/{seq}/verify - сверка распределения
//	├── GET  /emergency-log - журнал аварийного режима
//	└── /control/ (за ControlAuth)
//	    ├── POST /pause - приостановить движок
//	    ├── POST /resume - возобновить работу
//	    ├── POST /transfer - передать контроль
//	    ├── GET  /assets - список активов
//	    ├── POST /assets - зарегистрировать актив
//	    ├── POST /report-loss - зафиксировать убыток
//	    └── POST /arbitrage - запустить арбитраж
//
// /ws/stream - WebSocket лента событий движка
// /metrics - Prometheus метрики
// /health - health check
//
// Middleware применяется в следующем порядке:
// 1. Recovery (для всех маршрутов)
// 2. Logging (для всех маршрутов)
// 3. CORS (для всех маршрутов)
// 4. RateLimit (для /api/v1)
// 5. ControlAuth (только для /api/v1/control)
func SetupRoutes(deps *Dependencies) *mux.Router {
	router := mux.NewRouter()

	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	// Глобальные middleware (применяются ко всем маршрутам)
	router.Use(middleware.Recovery(logger))
	router.Use(middleware.Logging(logger))
	router.Use(middleware.CORS)

	investorHandler := handlers.NewInvestorHandler(deps.Engine, deps.History)
	controlHandler := handlers.NewControlHandler(deps.Engine)
	historyHandler := handlers.NewHistoryHandler(deps.Engine, deps.History)

	// API v1 routes
	api := router.PathPrefix("/api/v1").Subrouter()
	if deps.RateLimiter != nil {
		api.Use(middleware.RateLimit(deps.RateLimiter))
	}

	// Investor routes
	api.HandleFunc("/deposits", investorHandler.Deposit).Methods("POST")
	api.HandleFunc("/withdrawals/profit", investorHandler.WithdrawProfit).Methods("POST")
	api.HandleFunc("/withdrawals/emergency", investorHandler.EmergencyWithdraw).Methods("POST")
	api.HandleFunc("/investors/{id}", investorHandler.GetInvestor).Methods("GET")

	// Stats and journal routes
	api.HandleFunc("/stats", historyHandler.GetStats).Methods("GET")
	if deps.History != nil {
		api.HandleFunc("/trades", historyHandler.GetTrades).Methods("GET")
		api.HandleFunc("/trades/{correlation_id}", historyHandler.GetTrade).Methods("GET")
		api.HandleFunc("/distributions", historyHandler.GetDistributions).Methods("GET")
		api.HandleFunc("/distributions/{seq}/verify", historyHandler.VerifyDistribution).Methods("GET")
		api.HandleFunc("/emergency-log", historyHandler.GetEmergencyLog).Methods("GET")
	}

	// Controller routes за аутентификацией по токену
	control := api.PathPrefix("/control").Subrouter()
	control.Use(middleware.ControlAuth(deps.ControlTokenHash))
	control.HandleFunc("/pause", controlHandler.Pause).Methods("POST")
	control.HandleFunc("/resume", controlHandler.Resume).Methods("POST")
	control.HandleFunc("/transfer", controlHandler.TransferControl).Methods("POST")
	control.HandleFunc("/assets", controlHandler.GetAssets).Methods("GET")
	control.HandleFunc("/assets", controlHandler.AddAsset).Methods("POST")
	control.HandleFunc("/report-loss", controlHandler.ReportLoss).Methods("POST")
	control.HandleFunc("/arbitrage", controlHandler.ExecuteArbitrage).Methods("POST")

	// WebSocket route
	if deps.Hub != nil {
		router.HandleFunc("/ws/stream", func(w http.ResponseWriter, r *http.Request) {
			websocket.ServeWS(deps.Hub, w, r)
		})
	}

	// Prometheus metrics
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	// Health check endpoint
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}).Methods("GET")

	return router
}

package handlers

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/ChronoCoders/flashloanbot/internal/models"
)

// HistoryHandler обрабатывает запросы статистики и журналов.
//
// Endpoints:
// - GET /api/v1/stats - агрегированная статистика движка
// - GET /api/v1/trades - последние сделки
// - GET /api/v1/trades/{correlation_id} - сделка по идентификатору
// - GET /api/v1/distributions - последние распределения
// - GET /api/v1/distributions/{seq}/verify - сверка распределения
// - GET /api/v1/emergency-log - журнал аварийного режима
type HistoryHandler struct {
	engine  EngineInterface
	history HistoryInterface
}

// NewHistoryHandler создает новый HistoryHandler с внедрением зависимостей
func NewHistoryHandler(engine EngineInterface, history HistoryInterface) *HistoryHandler {
	return &HistoryHandler{
		engine:  engine,
		history: history,
	}
}

// queryLimit читает limit из query string, 0 означает умолчание сервиса
func queryLimit(r *http.Request) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0
	}
	limit, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return limit
}

// GetStats возвращает агрегированную статистику движка.
//
// GET /api/v1/stats
//
// Response 200 OK:
//
//	{
//	  "total_profit_realized": "...",
//	  "trades_attempted": 12,
//	  "trades_succeeded": 12,
//	  "distinct_investors": 3,
//	  "total_investment": "...",
//	  "emergency_mode": false,
//	  "lifecycle_state": "ACTIVE",
//	  "pools": {"maintainer": "...", "operations": "...", "controller": "...", "residual": "..."}
//	}
func (h *HistoryHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.engine.Stats())
}

// GetTrades возвращает последние сделки из журнала.
//
// GET /api/v1/trades?limit=50
func (h *HistoryHandler) GetTrades(w http.ResponseWriter, r *http.Request) {
	trades, err := h.history.GetRecentTrades(queryLimit(r))
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load trades", err)
		return
	}
	if trades == nil {
		trades = []*models.TradeEvent{}
	}
	respondJSON(w, http.StatusOK, SuccessResponse{Data: trades})
}

// GetTrade возвращает сделку по корреляционному идентификатору.
//
// GET /api/v1/trades/{correlation_id}
//
// Response 404: сделка не найдена
func (h *HistoryHandler) GetTrade(w http.ResponseWriter, r *http.Request) {
	correlationID := mux.Vars(r)["correlation_id"]

	trade, err := h.history.GetTradeByCorrelationID(correlationID)
	if err != nil {
		respondError(w, statusForError(err), "trade lookup failed", err)
		return
	}
	respondJSON(w, http.StatusOK, SuccessResponse{Data: trade})
}

// GetDistributions возвращает последние распределения с долями.
//
// GET /api/v1/distributions?limit=50
func (h *HistoryHandler) GetDistributions(w http.ResponseWriter, r *http.Request) {
	distributions, err := h.history.GetRecentDistributions(queryLimit(r))
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load distributions", err)
		return
	}
	if distributions == nil {
		distributions = []*models.DistributionEvent{}
	}
	respondJSON(w, http.StatusOK, SuccessResponse{Data: distributions})
}

// VerifyDistribution пересчитывает распределение и сверяет с журналом.
//
// GET /api/v1/distributions/{seq}/verify
//
// Response 200 OK:
//
//	{"seq": 4, "consistent": true}
//
// Response 404: распределение не найдено
func (h *HistoryHandler) VerifyDistribution(w http.ResponseWriter, r *http.Request) {
	seq, err := strconv.ParseUint(mux.Vars(r)["seq"], 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid seq", err)
		return
	}

	check, err := h.history.VerifyDistribution(seq)
	if err != nil {
		respondError(w, statusForError(err), "distribution verification failed", err)
		return
	}
	respondJSON(w, http.StatusOK, check)
}

// GetEmergencyLog возвращает журнал аварийного режима.
//
// GET /api/v1/emergency-log?limit=50
func (h *HistoryHandler) GetEmergencyLog(w http.ResponseWriter, r *http.Request) {
	events, err := h.history.GetEmergencyLog(queryLimit(r))
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load emergency log", err)
		return
	}
	if events == nil {
		events = []*models.EmergencyEvent{}
	}
	respondJSON(w, http.StatusOK, SuccessResponse{Data: events})
}

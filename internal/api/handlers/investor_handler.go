package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/ChronoCoders/flashloanbot/pkg/utils"
)

// InvestorHandler обрабатывает HTTP запросы вкладчиков.
//
// Endpoints:
// - POST /api/v1/deposits - внести депозит
// - POST /api/v1/withdrawals/profit - вывести начисленную прибыль
// - POST /api/v1/withdrawals/emergency - аварийный вывод вклада
// - GET  /api/v1/investors/{id} - текущая позиция и история вкладчика
//
// Все суммы принимаются и возвращаются в wei строками,
// чтобы не терять точность в JSON числах.
type InvestorHandler struct {
	engine  EngineInterface
	history HistoryInterface
}

// NewInvestorHandler создает новый InvestorHandler с внедрением зависимостей
func NewInvestorHandler(engine EngineInterface, history HistoryInterface) *InvestorHandler {
	return &InvestorHandler{
		engine:  engine,
		history: history,
	}
}

// DepositRequest - тело запроса на депозит
type DepositRequest struct {
	InvestorID string `json:"investor_id"`
	Amount     string `json:"amount"`
}

// WithdrawRequest - тело запроса на вывод
type WithdrawRequest struct {
	InvestorID string `json:"investor_id"`
}

// WithdrawResponse - результат вывода
type WithdrawResponse struct {
	InvestorID string `json:"investor_id"`
	Amount     string `json:"amount"`
}

// Deposit принимает депозит вкладчика.
//
// POST /api/v1/deposits
//
// Request:
//
//	{"investor_id": "inv-1", "amount": "10000000000000000"}
//
// Response 201 Created:
//
//	{"message": "deposit accepted"}
//
// Response 400: некорректный идентификатор или сумма вне границ
// Response 409: движок приостановлен
func (h *InvestorHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	var req DepositRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	amount, err := utils.ParseWei(req.Amount)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid amount", err)
		return
	}

	if err := h.engine.Deposit(req.InvestorID, amount); err != nil {
		respondEngineError(w, "deposit rejected", err)
		return
	}

	respondJSON(w, http.StatusCreated, SuccessResponse{Message: "deposit accepted"})
}

// WithdrawProfit выводит всю начисленную прибыль вкладчика.
//
// POST /api/v1/withdrawals/profit
//
// Response 200 OK:
//
//	{"investor_id": "inv-1", "amount": "52"}
//
// Response 400: нечего выводить
// Response 409: движок приостановлен и вывод прибыли в паузе запрещен
func (h *InvestorHandler) WithdrawProfit(w http.ResponseWriter, r *http.Request) {
	var req WithdrawRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	amount, err := h.engine.WithdrawProfit(req.InvestorID)
	if err != nil {
		respondEngineError(w, "profit withdrawal rejected", err)
		return
	}

	respondJSON(w, http.StatusOK, WithdrawResponse{
		InvestorID: req.InvestorID,
		Amount:     amount.String(),
	})
}

// EmergencyWithdraw выводит весь вклад в аварийном режиме.
//
// POST /api/v1/withdrawals/emergency
//
// Доступен только когда движок приостановлен с аварийным флагом.
//
// Response 200 OK:
//
//	{"investor_id": "inv-1", "amount": "10000000000000000"}
//
// Response 409: движок не в аварийном режиме
func (h *InvestorHandler) EmergencyWithdraw(w http.ResponseWriter, r *http.Request) {
	var req WithdrawRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	amount, err := h.engine.EmergencyWithdraw(req.InvestorID)
	if err != nil {
		respondEngineError(w, "emergency withdrawal rejected", err)
		return
	}

	respondJSON(w, http.StatusOK, WithdrawResponse{
		InvestorID: req.InvestorID,
		Amount:     amount.String(),
	})
}

// InvestorDetails - позиция вкладчика вместе с журнальной историей
type InvestorDetails struct {
	Position interface{} `json:"position"`
	History  interface{} `json:"history,omitempty"`
}

// GetInvestor возвращает текущую позицию вкладчика и его историю.
//
// GET /api/v1/investors/{id}
//
// Response 200 OK:
//
//	{
//	  "position": {"id": "inv-1", "invested": "...", "profit_accrued": "...", ...},
//	  "history": {"deposits": [...], "withdrawals": [...], "total_credited": "..."}
//	}
//
// Response 404: вкладчик неизвестен движку
func (h *InvestorHandler) GetInvestor(w http.ResponseWriter, r *http.Request) {
	investorID := mux.Vars(r)["id"]

	investor, err := h.engine.InvestorInfo(investorID)
	if err != nil {
		respondEngineError(w, "investor lookup failed", err)
		return
	}

	details := InvestorDetails{Position: investor}

	// История опциональна: позиция в памяти отвечает и без БД
	if h.history != nil {
		if hist, err := h.history.GetInvestorHistory(investorID); err == nil {
			details.History = hist
		}
	}

	respondJSON(w, http.StatusOK, details)
}

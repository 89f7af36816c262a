package handlers

import (
	"net/http"

	jsoniter "github.com/json-iterator/go"
	"github.com/shopspring/decimal"

	"github.com/ChronoCoders/flashloanbot/internal/models"
	"github.com/ChronoCoders/flashloanbot/pkg/utils"
)

// ControlHandler обрабатывает привилегированные операции контроллера.
//
// Endpoints (все за ControlAuth middleware):
// - POST /api/v1/control/pause - приостановить движок
// - POST /api/v1/control/resume - возобновить работу
// - POST /api/v1/control/transfer - передать контроль
// - POST /api/v1/control/assets - зарегистрировать актив
// - GET  /api/v1/control/assets - список активов
// - POST /api/v1/control/report-loss - зафиксировать убыток
// - POST /api/v1/control/arbitrage - запустить арбитраж
//
// Идентичность вызывающего берется из заголовка X-Caller-ID.
// Токен в middleware аутентифицирует запрос, движок авторизует
// вызывающего сравнением с текущим контроллером.
type ControlHandler struct {
	engine EngineInterface
}

// NewControlHandler создает новый ControlHandler с внедрением зависимостей
func NewControlHandler(engine EngineInterface) *ControlHandler {
	return &ControlHandler{engine: engine}
}

// CallerHeader - заголовок с идентичностью вызывающего
const CallerHeader = "X-Caller-ID"

func callerID(r *http.Request) string {
	return r.Header.Get(CallerHeader)
}

// PauseRequest - тело запроса на паузу
type PauseRequest struct {
	Reason string `json:"reason"`
}

// Pause приостанавливает движок и включает аварийный режим.
//
// POST /api/v1/control/pause
//
// Request:
//
//	{"reason": "manual"}
//
// Response 403: вызывающий не контроллер
// Response 409: движок уже приостановлен
func (h *ControlHandler) Pause(w http.ResponseWriter, r *http.Request) {
	var req PauseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if req.Reason == "" {
		req.Reason = "manual"
	}

	if err := h.engine.Pause(callerID(r), req.Reason); err != nil {
		respondEngineError(w, "pause rejected", err)
		return
	}

	respondJSON(w, http.StatusOK, SuccessResponse{Message: "engine paused"})
}

// Resume возобновляет работу движка.
//
// POST /api/v1/control/resume
func (h *ControlHandler) Resume(w http.ResponseWriter, r *http.Request) {
	if err := h.engine.Unpause(callerID(r)); err != nil {
		respondEngineError(w, "resume rejected", err)
		return
	}

	respondJSON(w, http.StatusOK, SuccessResponse{Message: "engine resumed"})
}

// TransferRequest - тело запроса на передачу контроля
type TransferRequest struct {
	NewController string `json:"new_controller"`
}

// TransferControl передает права контроллера другой идентичности.
//
// POST /api/v1/control/transfer
//
// Request:
//
//	{"new_controller": "ops-team"}
func (h *ControlHandler) TransferControl(w http.ResponseWriter, r *http.Request) {
	var req TransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	if err := h.engine.TransferControl(callerID(r), req.NewController); err != nil {
		respondEngineError(w, "transfer rejected", err)
		return
	}

	respondJSON(w, http.StatusOK, SuccessResponse{Message: "control transferred"})
}

// AddAssetRequest - тело запроса на регистрацию актива
type AddAssetRequest struct {
	AssetID        string `json:"asset_id"`
	DisplayName    string `json:"display_name"`
	MinLiquidity   string `json:"min_liquidity"`
	PriceReference string `json:"price_reference"`
}

// AddAsset регистрирует новый поддерживаемый актив.
//
// POST /api/v1/control/assets
//
// Request:
//
//	{"asset_id": "USDT", "display_name": "Tether", "min_liquidity": "1000000", "price_reference": "chainlink:USDT"}
func (h *ControlHandler) AddAsset(w http.ResponseWriter, r *http.Request) {
	var req AddAssetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	minLiquidity := decimal.Zero
	if req.MinLiquidity != "" {
		var err error
		minLiquidity, err = utils.ParseWei(req.MinLiquidity)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid min_liquidity", err)
			return
		}
	}

	asset := models.SupportedAsset{
		AssetID:        req.AssetID,
		DisplayName:    req.DisplayName,
		MinLiquidity:   minLiquidity,
		PriceReference: req.PriceReference,
	}
	if err := h.engine.AddSupportedAsset(callerID(r), asset); err != nil {
		respondEngineError(w, "asset registration rejected", err)
		return
	}

	respondJSON(w, http.StatusCreated, SuccessResponse{Message: "asset registered"})
}

// GetAssets возвращает активы в порядке регистрации.
//
// GET /api/v1/control/assets
func (h *ControlHandler) GetAssets(w http.ResponseWriter, r *http.Request) {
	assets := h.engine.SupportedAssets()
	if assets == nil {
		assets = []models.SupportedAsset{}
	}
	respondJSON(w, http.StatusOK, SuccessResponse{Data: assets})
}

// ReportLossRequest - тело запроса на фиксацию убытка
type ReportLossRequest struct {
	Amount string `json:"amount"`
}

// ReportLoss фиксирует убыток дня; при превышении дневного лимита
// движок автоматически приостанавливается.
//
// POST /api/v1/control/report-loss
//
// Request:
//
//	{"amount": "40000000000000000"}
func (h *ControlHandler) ReportLoss(w http.ResponseWriter, r *http.Request) {
	var req ReportLossRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	loss, err := utils.ParseWei(req.Amount)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid amount", err)
		return
	}

	if err := h.engine.ReportLoss(callerID(r), loss); err != nil {
		respondEngineError(w, "loss report rejected", err)
		return
	}

	respondJSON(w, http.StatusOK, SuccessResponse{Message: "loss recorded"})
}

// ArbitrageRequest - тело запроса на арбитраж
type ArbitrageRequest struct {
	AssetID string `json:"asset_id"`
	Amount  string `json:"amount"`
	// Params передается движку как есть: intermediate, min_profit, deadline
	Params jsoniter.RawMessage `json:"params"`
}

// ArbitrageResponse - результат исполненного арбитража
type ArbitrageResponse struct {
	CorrelationID string `json:"correlation_id"`
	AssetID       string `json:"asset_id"`
	Intermediate  string `json:"intermediate"`
	BuyVenue      string `json:"buy_venue"`
	SellVenue     string `json:"sell_venue"`
	LoanAmount    string `json:"loan_amount"`
	LoanPremium   string `json:"loan_premium"`
	AmountOut     string `json:"amount_out"`
	GrossProfit   string `json:"gross_profit"`
}

// ExecuteArbitrage запускает flash-loan арбитраж.
//
// POST /api/v1/control/arbitrage
//
// Request:
//
//	{
//	  "asset_id": "USDT",
//	  "amount": "1000000000000000000",
//	  "params": {"intermediate": "WETH", "min_profit": "0", "deadline": 1767225600}
//	}
//
// Response 200 OK: детали сделки с correlation_id
// Response 422: прибыль ниже порога, состояние не изменено
func (h *ControlHandler) ExecuteArbitrage(w http.ResponseWriter, r *http.Request) {
	var req ArbitrageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	amount, err := utils.ParseWei(req.Amount)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid amount", err)
		return
	}

	outcome, err := h.engine.ExecuteArbitrage(r.Context(), callerID(r), req.AssetID, amount, req.Params)
	if err != nil {
		respondEngineError(w, "arbitrage rejected", err)
		return
	}

	respondJSON(w, http.StatusOK, ArbitrageResponse{
		CorrelationID: outcome.CorrelationID,
		AssetID:       outcome.AssetID,
		Intermediate:  outcome.Intermediate,
		BuyVenue:      outcome.BuyVenue,
		SellVenue:     outcome.SellVenue,
		LoanAmount:    outcome.LoanAmount.String(),
		LoanPremium:   outcome.LoanPremium.String(),
		AmountOut:     outcome.AmountOut.String(),
		GrossProfit:   outcome.GrossProfit.String(),
	})
}

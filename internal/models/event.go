package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Записи, эмитируемые движком для внешнего reporting-коллаборатора.
//
// Каждая запись несёт порядковый номер (Seq) и метку времени, чтобы
// внешний потребитель мог независимо восстановить распределение прибыли,
// не читая внутреннее состояние реестра.

// Типы записей
const (
	EventDepositReceived    = "DEPOSIT_RECEIVED"
	EventTradeExecuted      = "TRADE_EXECUTED"
	EventEmergencyActivated = "EMERGENCY_ACTIVATED"
	EventEmergencyCleared   = "EMERGENCY_CLEARED"
	EventProfitWithdrawn    = "PROFIT_WITHDRAWN"
	EventEmergencyWithdrawn = "EMERGENCY_WITHDRAWN"
	EventProfitDistributed  = "PROFIT_DISTRIBUTED"
	EventControlTransferred = "CONTROL_TRANSFERRED"
	EventAssetAdded         = "ASSET_ADDED"
)

// DepositEvent - принят депозит вкладчика
type DepositEvent struct {
	Seq        uint64          `json:"seq" db:"seq"`
	InvestorID string          `json:"investor_id" db:"investor_id"`
	Amount     decimal.Decimal `json:"amount" db:"amount"`
	Timestamp  time.Time       `json:"timestamp" db:"timestamp"`
}

// TradeEvent - успешно исполнен арбитраж.
//
// CorrelationID связывает сделку с порождённым ею распределением прибыли.
type TradeEvent struct {
	Seq           uint64          `json:"seq" db:"seq"`
	CorrelationID string          `json:"correlation_id" db:"correlation_id"`
	AssetID       string          `json:"asset_id" db:"asset_id"`
	Intermediate  string          `json:"intermediate" db:"intermediate"`
	BuyVenue      string          `json:"buy_venue" db:"buy_venue"`
	SellVenue     string          `json:"sell_venue" db:"sell_venue"`
	LoanAmount    decimal.Decimal `json:"loan_amount" db:"loan_amount"`
	LoanPremium   decimal.Decimal `json:"loan_premium" db:"loan_premium"`
	GrossProfit   decimal.Decimal `json:"gross_profit" db:"gross_profit"`
	Timestamp     time.Time       `json:"timestamp" db:"timestamp"`
}

// DistributionEvent - разнесение прибыли по пулам и счетам.
//
// Shares содержит долю каждого вкладчика вместе с его вкладом на момент
// распределения - этого достаточно для независимой сверки по правилу
// share = floor(investorPool * invested / totalInvestment).
type DistributionEvent struct {
	Seq             uint64              `json:"seq" db:"seq"`
	CorrelationID   string              `json:"correlation_id" db:"correlation_id"`
	GrossProfit     decimal.Decimal     `json:"gross_profit" db:"gross_profit"`
	InvestorPool    decimal.Decimal     `json:"investor_pool" db:"investor_pool"`
	MaintainerPool  decimal.Decimal     `json:"maintainer_pool" db:"maintainer_pool"`
	OperationsPool  decimal.Decimal     `json:"operations_pool" db:"operations_pool"`
	Residual        decimal.Decimal     `json:"residual" db:"residual"`
	TotalInvestment decimal.Decimal     `json:"total_investment" db:"total_investment"`
	Shares          []DistributionShare `json:"shares"`
	Timestamp       time.Time           `json:"timestamp" db:"timestamp"`
}

// DistributionShare - доля одного вкладчика в распределении
type DistributionShare struct {
	InvestorID string          `json:"investor_id" db:"investor_id"`
	Invested   decimal.Decimal `json:"invested" db:"invested"`
	Credited   decimal.Decimal `json:"credited" db:"credited"`
}

// EmergencyEvent - активация или снятие аварийного режима
type EmergencyEvent struct {
	Seq       uint64    `json:"seq" db:"seq"`
	Activated bool      `json:"activated" db:"activated"`
	Reason    string    `json:"reason" db:"reason"`
	Timestamp time.Time `json:"timestamp" db:"timestamp"`
}

// WithdrawalEvent - вывод средств вкладчиком (прибыль или аварийный)
type WithdrawalEvent struct {
	Seq        uint64          `json:"seq" db:"seq"`
	Kind       string          `json:"kind" db:"kind"` // PROFIT_WITHDRAWN / EMERGENCY_WITHDRAWN
	InvestorID string          `json:"investor_id" db:"investor_id"`
	Amount     decimal.Decimal `json:"amount" db:"amount"`
	Timestamp  time.Time       `json:"timestamp" db:"timestamp"`
}

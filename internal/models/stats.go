package models

import "github.com/shopspring/decimal"

// GlobalStats представляет агрегированную статистику движка
type GlobalStats struct {
	TotalProfitRealized decimal.Decimal `json:"total_profit_realized"`
	TradesAttempted     int64           `json:"trades_attempted"`
	TradesSucceeded     int64           `json:"trades_succeeded"`
	DistinctInvestors   int64           `json:"distinct_investors"`
	TotalInvestment     decimal.Decimal `json:"total_investment"`
	EmergencyMode       bool            `json:"emergency_mode"`
	LifecycleState      string          `json:"lifecycle_state"`
	Pools               PoolBalances    `json:"pools"`
}

// PoolBalances - балансы внутренних пулов после распределений прибыли.
//
// Residual - некредитованный остаток от округления вниз при pro-rata
// распределении. Учитывается явно, никогда не теряется молча.
type PoolBalances struct {
	Maintainer decimal.Decimal `json:"maintainer"`
	Operations decimal.Decimal `json:"operations"`
	Controller decimal.Decimal `json:"controller"` // прибыль при нулевых инвестициях
	Residual   decimal.Decimal `json:"residual"`
}

// SuccessRate возвращает долю успешных сделок в процентах
func (s *GlobalStats) SuccessRate() float64 {
	if s.TradesAttempted == 0 {
		return 0
	}
	return float64(s.TradesSucceeded) / float64(s.TradesAttempted) * 100
}

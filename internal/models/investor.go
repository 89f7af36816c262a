package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Investor представляет счёт вкладчика в реестре.
//
// Все суммы - целые значения в wei (10^18 wei = 1 токен),
// хранятся как decimal.Decimal для точной целочисленной арифметики.
// Запись создаётся при первом депозите и НИКОГДА не удаляется:
// обнулённый счёт остаётся как история.
type Investor struct {
	ID             string          `json:"id" db:"investor_id"`
	Invested       decimal.Decimal `json:"invested" db:"invested"`
	ProfitAccrued  decimal.Decimal `json:"profit_accrued" db:"profit_accrued"`
	TotalWithdrawn decimal.Decimal `json:"total_withdrawn" db:"total_withdrawn"` // монотонно неубывающее
	FirstDepositAt time.Time       `json:"first_deposit_at" db:"first_deposit_at"`
	LastActivityAt time.Time       `json:"last_activity_at" db:"last_activity_at"`
}

// NewInvestor создаёт пустой счёт вкладчика
func NewInvestor(id string, now time.Time) *Investor {
	return &Investor{
		ID:             id,
		Invested:       decimal.Zero,
		ProfitAccrued:  decimal.Zero,
		TotalWithdrawn: decimal.Zero,
		FirstDepositAt: now,
		LastActivityAt: now,
	}
}

// Clone возвращает независимую копию счёта.
// Используется для снимков состояния (getInvestorInfo не должен
// отдавать указатель на внутреннее состояние реестра).
func (i *Investor) Clone() *Investor {
	cp := *i
	return &cp
}

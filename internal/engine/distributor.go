package engine

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/ChronoCoders/flashloanbot/internal/models"
)

// DistributionPolicy - процентное разбиение реализованной прибыли
// на три пула. Сумма процентов обязана давать 100.
type DistributionPolicy struct {
	InvestorPct   int64
	MaintainerPct int64
	OperationsPct int64
}

// DefaultDistributionPolicy - разбиение по умолчанию: 70/20/10
func DefaultDistributionPolicy() DistributionPolicy {
	return DistributionPolicy{InvestorPct: 70, MaintainerPct: 20, OperationsPct: 10}
}

// Valid проверяет корректность политики
func (p DistributionPolicy) Valid() bool {
	return p.InvestorPct >= 0 && p.MaintainerPct >= 0 && p.OperationsPct >= 0 &&
		p.InvestorPct+p.MaintainerPct+p.OperationsPct == 100
}

// Distributor - pro-rata распределение прибыли в реестр.
//
// Арифметика с фиксированной точкой и явным правилом округления:
// доля = floor(investorPool * invested / totalInvestment).
// Некредитованный остаток (ограничен числом вкладчиков) остаётся
// в пуле Residual и учитывается явно - никогда не теряется молча.
type Distributor struct {
	ledger *Ledger
	policy DistributionPolicy
}

// NewDistributor создаёт распределитель над реестром
func NewDistributor(ledger *Ledger, policy DistributionPolicy) *Distributor {
	return &Distributor{ledger: ledger, policy: policy}
}

// pct возвращает floor(amount * p / 100)
func pct(amount decimal.Decimal, p int64) decimal.Decimal {
	return amount.Mul(decimal.NewFromInt(p)).Div(decimal.NewFromInt(100)).Floor()
}

// Distribute разносит grossProfit по пулам и счетам вкладчиков.
//
// При totalInvestment == 0 инвесторский пул целиком уходит в
// контроллерский пул - помимо пулов ни один счёт не мутируется.
// Возвращает отчёт, по которому внешний потребитель может независимо
// восстановить распределение.
func (d *Distributor) Distribute(grossProfit decimal.Decimal, now time.Time) models.DistributionEvent {
	investorPool := pct(grossProfit, d.policy.InvestorPct)
	maintainerPool := pct(grossProfit, d.policy.MaintainerPct)
	// Операционный пул забирает хвост процентного floor'а,
	// чтобы три пула в сумме давали ровно grossProfit
	operationsPool := grossProfit.Sub(investorPool).Sub(maintainerPool)

	ev := models.DistributionEvent{
		GrossProfit:     grossProfit,
		InvestorPool:    investorPool,
		MaintainerPool:  maintainerPool,
		OperationsPool:  operationsPool,
		TotalInvestment: d.ledger.TotalInvestment(),
		Residual:        decimal.Zero,
		Timestamp:       now,
	}

	d.ledger.pools.Maintainer = d.ledger.pools.Maintainer.Add(maintainerPool)
	d.ledger.pools.Operations = d.ledger.pools.Operations.Add(operationsPool)

	total := d.ledger.TotalInvestment()
	if total.Sign() == 0 {
		// Нет активных инвестиций - прибыль инвесторского пула
		// удерживается на контроллерском пуле
		d.ledger.pools.Controller = d.ledger.pools.Controller.Add(investorPool)
		return ev
	}

	credited := decimal.Zero
	d.ledger.forEachActive(func(inv *models.Investor) {
		share := investorPool.Mul(inv.Invested).Div(total).Floor()
		if share.Sign() > 0 {
			d.ledger.creditProfit(inv.ID, share)
			credited = credited.Add(share)
		}
		ev.Shares = append(ev.Shares, models.DistributionShare{
			InvestorID: inv.ID,
			Invested:   inv.Invested,
			Credited:   share,
		})
	})

	// Остаток от floor-деления: явный учёт
	ev.Residual = investorPool.Sub(credited)
	d.ledger.pools.Residual = d.ledger.pools.Residual.Add(ev.Residual)
	return ev
}

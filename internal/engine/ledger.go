package engine

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/ChronoCoders/flashloanbot/internal/models"
)

// Границы депозита (в wei, из экономики продукта: 0.01 и 100 токенов)
var (
	MinInvestment  = decimal.New(1, 16) // 10^16 wei
	MaxPerInvestor = decimal.New(1, 20) // 10^20 wei
)

// Ledger - реестр счетов вкладчиков и глобальных агрегатов.
//
// Инварианты (держатся после КАЖДОЙ мутирующей операции, успешной
// или нет):
//  1. MIN_DEPOSIT <= разовый депозит <= MAX_PER_INVESTOR - invested
//  2. сумма invested по всем счетам == totalInvestment
//  3. totalWithdrawn монотонно неубывающее
//
// Каждая операция сначала полностью валидирует вход и только потом
// мутирует - частичных изменений не бывает. Счета не удаляются:
// обнулённая запись остаётся как история.
//
// Не потокобезопасен - сериализация на уровне движка.
type Ledger struct {
	investors map[string]*models.Investor
	order     []string // порядок первого депозита, для детерминированного обхода

	totalInvestment decimal.Decimal
	totalProfit     decimal.Decimal
	tradesAttempted int64
	tradesSucceeded int64

	pools models.PoolBalances
}

// NewLedger создаёт пустой реестр
func NewLedger() *Ledger {
	return &Ledger{
		investors:       make(map[string]*models.Investor),
		totalInvestment: decimal.Zero,
		totalProfit:     decimal.Zero,
		pools: models.PoolBalances{
			Maintainer: decimal.Zero,
			Operations: decimal.Zero,
			Controller: decimal.Zero,
			Residual:   decimal.Zero,
		},
	}
}

// validateAmount проверяет, что сумма - целое число wei больше нуля
func validateAmount(amount decimal.Decimal) error {
	if !amount.Equal(amount.Floor()) {
		return ErrNonIntegerAmount
	}
	if amount.Sign() <= 0 {
		return ErrInvestmentTooSmall
	}
	return nil
}

// Deposit зачисляет депозит на счёт вкладчика.
//
// Границы: MinInvestment <= amount и invested+amount <= MaxPerInvestor.
// Первый депозит создаёт счёт и увеличивает счётчик вкладчиков.
func (l *Ledger) Deposit(investorID string, amount decimal.Decimal, now time.Time) error {
	if investorID == "" {
		return ErrZeroIdentity
	}
	if err := validateAmount(amount); err != nil {
		return err
	}
	if amount.LessThan(MinInvestment) {
		return ErrInvestmentTooSmall
	}

	inv, exists := l.investors[investorID]
	if exists {
		// Кумулятивный лимит на счёт
		if inv.Invested.Add(amount).GreaterThan(MaxPerInvestor) {
			return ErrInvestmentTooLarge
		}
	} else if amount.GreaterThan(MaxPerInvestor) {
		return ErrInvestmentTooLarge
	}

	// Валидация пройдена - мутируем
	if !exists {
		inv = models.NewInvestor(investorID, now)
		l.investors[investorID] = inv
		l.order = append(l.order, investorID)
	}
	inv.Invested = inv.Invested.Add(amount)
	inv.LastActivityAt = now
	l.totalInvestment = l.totalInvestment.Add(amount)
	return nil
}

// creditProfit начисляет прибыль на счёт.
// Вызывается ТОЛЬКО распределителем прибыли (потому не экспортируется).
func (l *Ledger) creditProfit(investorID string, amount decimal.Decimal) {
	inv := l.investors[investorID]
	inv.ProfitAccrued = inv.ProfitAccrued.Add(amount)
}

// WithdrawProfit выводит всю накопленную прибыль счёта.
//
// Постусловие: profitAccrued == 0, totalWithdrawn += сумма.
// При нулевой прибыли - ErrNoProfit, без мутаций.
func (l *Ledger) WithdrawProfit(investorID string, now time.Time) (decimal.Decimal, error) {
	if investorID == "" {
		return decimal.Zero, ErrZeroIdentity
	}
	inv, ok := l.investors[investorID]
	if !ok || inv.ProfitAccrued.Sign() <= 0 {
		return decimal.Zero, ErrNoProfit
	}

	amount := inv.ProfitAccrued
	inv.ProfitAccrued = decimal.Zero
	inv.TotalWithdrawn = inv.TotalWithdrawn.Add(amount)
	inv.LastActivityAt = now
	return amount, nil
}

// EmergencyWithdraw обнуляет счёт и возвращает принципал плюс остаток
// прибыли. Проверка аварийного режима - на уровне движка; реестр
// отвечает только за корректность сумм.
func (l *Ledger) EmergencyWithdraw(investorID string, now time.Time) (decimal.Decimal, error) {
	if investorID == "" {
		return decimal.Zero, ErrZeroIdentity
	}
	inv, ok := l.investors[investorID]
	if !ok {
		return decimal.Zero, ErrUnknownInvestor
	}

	amount := inv.Invested.Add(inv.ProfitAccrued)
	l.totalInvestment = l.totalInvestment.Sub(inv.Invested)
	inv.Invested = decimal.Zero
	inv.ProfitAccrued = decimal.Zero
	inv.TotalWithdrawn = inv.TotalWithdrawn.Add(amount)
	inv.LastActivityAt = now
	return amount, nil
}

// Investor возвращает копию счёта
func (l *Ledger) Investor(investorID string) (*models.Investor, error) {
	inv, ok := l.investors[investorID]
	if !ok {
		return nil, ErrUnknownInvestor
	}
	return inv.Clone(), nil
}

// TotalInvestment возвращает суммарный объём инвестиций
func (l *Ledger) TotalInvestment() decimal.Decimal { return l.totalInvestment }

// forEachActive обходит счета с invested > 0 в порядке первого депозита
func (l *Ledger) forEachActive(fn func(inv *models.Investor)) {
	for _, id := range l.order {
		inv := l.investors[id]
		if inv.Invested.Sign() > 0 {
			fn(inv)
		}
	}
}

// recordTrade фиксирует успешную сделку в агрегатах
func (l *Ledger) recordTrade(grossProfit decimal.Decimal) {
	l.tradesAttempted++
	l.tradesSucceeded++
	l.totalProfit = l.totalProfit.Add(grossProfit)
}

// Stats возвращает снимок глобальных агрегатов.
// Состояние жизненного цикла дополняется движком.
func (l *Ledger) Stats() models.GlobalStats {
	return models.GlobalStats{
		TotalProfitRealized: l.totalProfit,
		TradesAttempted:     l.tradesAttempted,
		TradesSucceeded:     l.tradesSucceeded,
		DistinctInvestors:   int64(len(l.investors)),
		TotalInvestment:     l.totalInvestment,
		Pools:               l.pools,
	}
}

// checkInvariants сверяет сумму вкладов с totalInvestment.
// Используется тестами для проверки инварианта 2 после каждой операции.
func (l *Ledger) checkInvariants() bool {
	sum := decimal.Zero
	for _, inv := range l.investors {
		sum = sum.Add(inv.Invested)
	}
	return sum.Equal(l.totalInvestment)
}

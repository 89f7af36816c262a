package venue

import (
	"context"
	"errors"
	"sync"

	"github.com/shopspring/decimal"
)

// Ошибки симулятора
var (
	ErrNoLiquidity   = errors.New("no liquidity for pair")
	ErrUnknownSymbol = errors.New("unknown price reference")
)

// ============================================================
// SimVenue - площадка ликвидности в памяти
// ============================================================

// SimVenue - детерминированная площадка для тестов и локального запуска.
// Конвертирует по фиксированному курсу (целочисленный floor), курсы
// можно менять на лету для моделирования ценовых расхождений.
type SimVenue struct {
	name  string
	mu    sync.RWMutex
	rates map[[2]string]decimal.Decimal // (in, out) -> курс
}

// NewSimVenue создаёт площадку с именем
func NewSimVenue(name string) *SimVenue {
	return &SimVenue{name: name, rates: make(map[[2]string]decimal.Decimal)}
}

// Name возвращает имя площадки
func (v *SimVenue) Name() string { return v.name }

// SetRate устанавливает курс конвертации assetIn -> assetOut
func (v *SimVenue) SetRate(assetIn, assetOut string, rate decimal.Decimal) {
	v.mu.Lock()
	v.rates[[2]string{assetIn, assetOut}] = rate
	v.mu.Unlock()
}

// Quote возвращает floor(amountIn * rate)
func (v *SimVenue) Quote(_ context.Context, assetIn, assetOut string, amountIn decimal.Decimal) (decimal.Decimal, error) {
	v.mu.RLock()
	rate, ok := v.rates[[2]string{assetIn, assetOut}]
	v.mu.RUnlock()
	if !ok {
		return decimal.Zero, ErrNoLiquidity
	}
	return amountIn.Mul(rate).Floor(), nil
}

// Swap исполняет конвертацию по текущему курсу
func (v *SimVenue) Swap(ctx context.Context, assetIn, assetOut string, amountIn decimal.Decimal) (decimal.Decimal, error) {
	return v.Quote(ctx, assetIn, assetOut, amountIn)
}

// ============================================================
// SimPool - кредитный пул в памяти
// ============================================================

// SimPool выдаёт flash-займы с премией в базисных пунктах.
// Семантика атомарности как у реального пула: ошибка заёмщика
// отменяет займ целиком.
type SimPool struct {
	id         string
	premiumBps int64
}

// NewSimPool создаёт пул. premiumBps - премия в базисных пунктах
// (9 bps = 0.09%, как у Aave v2).
func NewSimPool(id string, premiumBps int64) *SimPool {
	return &SimPool{id: id, premiumBps: premiumBps}
}

// ID возвращает идентификатор пула
func (p *SimPool) ID() string { return p.id }

// PremiumFor возвращает floor(amount * bps / 10000)
func (p *SimPool) PremiumFor(amount decimal.Decimal) decimal.Decimal {
	return amount.Mul(decimal.NewFromInt(p.premiumBps)).Div(decimal.NewFromInt(10000)).Floor()
}

// FlashLoan синхронно вызывает заёмщика. Ошибка callback'а означает,
// что займ не выдавался вовсе.
func (p *SimPool) FlashLoan(ctx context.Context, initiatorID, assetID string, amount decimal.Decimal, params []byte, borrower FlashBorrower) error {
	return borrower.OnFlashLoan(ctx, p.id, initiatorID, assetID, amount, p.PremiumFor(amount), params)
}

// ============================================================
// SimFeed - ценовой фид в памяти
// ============================================================

// SimFeed отдаёт статические цены и ликвидность по справочнику
type SimFeed struct {
	mu        sync.RWMutex
	prices    map[string]decimal.Decimal
	liquidity map[string]decimal.Decimal
}

// NewSimFeed создаёт пустой фид
func NewSimFeed() *SimFeed {
	return &SimFeed{
		prices:    make(map[string]decimal.Decimal),
		liquidity: make(map[string]decimal.Decimal),
	}
}

// SetPrice задаёт цену по ссылке
func (f *SimFeed) SetPrice(ref string, price decimal.Decimal) {
	f.mu.Lock()
	f.prices[ref] = price
	f.mu.Unlock()
}

// SetLiquidity задаёт ликвидность по активу
func (f *SimFeed) SetLiquidity(assetID string, liq decimal.Decimal) {
	f.mu.Lock()
	f.liquidity[assetID] = liq
	f.mu.Unlock()
}

// Price возвращает цену по ссылке
func (f *SimFeed) Price(_ context.Context, ref string) (decimal.Decimal, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	p, ok := f.prices[ref]
	if !ok {
		return decimal.Zero, ErrUnknownSymbol
	}
	return p, nil
}

// Liquidity возвращает ликвидность по активу
func (f *SimFeed) Liquidity(_ context.Context, assetID string) (decimal.Decimal, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	l, ok := f.liquidity[assetID]
	if !ok {
		return decimal.Zero, ErrUnknownSymbol
	}
	return l, nil
}

var (
	_ SwapVenue   = (*SimVenue)(nil)
	_ LendingPool = (*SimPool)(nil)
	_ PriceFeed   = (*SimFeed)(nil)
)

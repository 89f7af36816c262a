package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	"github.com/shopspring/decimal"

	"github.com/ChronoCoders/flashloanbot/internal/venue"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ArbitrageParams - непрозрачные параметры вызова executeArbitrage,
// декодируемые исполнителем
type ArbitrageParams struct {
	// Intermediate - промежуточный актив цепочки asset -> intermediate -> asset
	Intermediate string `json:"intermediate"`

	// MinProfit - минимальная валовая прибыль в wei; 0 = порог движка
	MinProfit decimal.Decimal `json:"min_profit"`

	// Deadline - unix-секунды; просроченный вызов отклоняется
	Deadline int64 `json:"deadline"`
}

// TradeOutcome - результат успешной арбитражной последовательности
type TradeOutcome struct {
	CorrelationID string
	AssetID       string
	Intermediate  string
	BuyVenue      string
	SellVenue     string
	LoanAmount    decimal.Decimal
	LoanPremium   decimal.Decimal
	AmountOut     decimal.Decimal
	GrossProfit   decimal.Decimal
}

// loanSession - вооружённая сессия займа.
//
// Существует только между вызовом pool.FlashLoan и его возвратом.
// Callback сверяет по ней, что внешний вызов инициирован самим движком
// (аналог проверки initiator) и что актив/сумма не подменены.
type loanSession struct {
	correlationID string
	assetID       string
	amount        decimal.Decimal
	params        ArbitrageParams
	outcome       *TradeOutcome
}

// ArbitrageExecutor управляет займовой арбитражной последовательностью:
// flash-займ -> своп asset -> intermediate на одной площадке ->
// своп intermediate -> asset на другой -> возврат займа с премией.
//
// Семантика строго всё-или-ничего: если валовая прибыль не покрывает
// минимальный порог, операция целиком прерывается - займ не выдаётся,
// реестр не тронут.
type ArbitrageExecutor struct {
	pool      venue.LendingPool
	venues    []venue.SwapVenue
	minProfit decimal.Decimal

	session *loanSession
}

// NewArbitrageExecutor создаёт исполнителя.
// Требуются минимум две различные площадки ликвидности.
func NewArbitrageExecutor(pool venue.LendingPool, venues []venue.SwapVenue, minProfit decimal.Decimal) *ArbitrageExecutor {
	return &ArbitrageExecutor{pool: pool, venues: venues, minProfit: minProfit}
}

// decodeParams разбирает и валидирует непрозрачные параметры
func decodeParams(raw []byte, now time.Time) (ArbitrageParams, error) {
	var p ArbitrageParams
	if len(raw) == 0 {
		return p, fmt.Errorf("empty params: %w", ErrInvalidAsset)
	}
	if err := json.Unmarshal(raw, &p); err != nil {
		return p, fmt.Errorf("malformed params: %w", ErrInvalidAsset)
	}
	if p.Intermediate == "" {
		return p, fmt.Errorf("intermediate asset: %w", ErrZeroIdentity)
	}
	if p.Deadline != 0 && now.Unix() > p.Deadline {
		return p, fmt.Errorf("deadline passed: %w", ErrInvalidAsset)
	}
	return p, nil
}

// Execute запускает займовую последовательность.
//
// Вся работа происходит внутри pool.FlashLoan: пул синхронно вызывает
// callback движка, и к возврату из FlashLoan сделка либо полностью
// состоялась, либо не оставила следов.
func (x *ArbitrageExecutor) Execute(
	ctx context.Context,
	selfID, assetID string,
	amount decimal.Decimal,
	raw []byte,
	borrower venue.FlashBorrower,
	now time.Time,
) (*TradeOutcome, error) {
	if len(x.venues) < 2 {
		return nil, fmt.Errorf("need at least two liquidity venues: %w", ErrInvalidAsset)
	}
	if err := validateAmount(amount); err != nil {
		return nil, err
	}
	params, err := decodeParams(raw, now)
	if err != nil {
		return nil, err
	}

	x.session = &loanSession{
		correlationID: uuid.NewString(),
		assetID:       assetID,
		amount:        amount,
		params:        params,
	}
	defer func() { x.session = nil }()

	if err := x.pool.FlashLoan(ctx, selfID, assetID, amount, raw, borrower); err != nil {
		return nil, err
	}
	if x.session.outcome == nil {
		// Пул вернул успех, не вызвав callback - займ считается
		// невыданным, фиксировать нечего
		return nil, ErrUnauthorizedCallback
	}
	return x.session.outcome, nil
}

// HandleCallback - тело callback'а займа.
//
// Проверки подлинности:
//   - lenderID совпадает с зарегистрированным кредитным пулом;
//   - initiatorID - сам движок, и сессия вооружена (займ запрошен нами);
//   - актив и сумма не подменены пулом.
//
// Любое расхождение - ErrUnauthorizedCallback без каких-либо эффектов.
func (x *ArbitrageExecutor) HandleCallback(
	ctx context.Context,
	lenderID, initiatorID, selfID, assetID string,
	amount, premium decimal.Decimal,
) (*TradeOutcome, error) {
	if lenderID != x.pool.ID() || initiatorID != selfID {
		return nil, ErrUnauthorizedCallback
	}
	s := x.session
	if s == nil || s.assetID != assetID || !s.amount.Equal(amount) {
		return nil, ErrUnauthorizedCallback
	}

	buy, sell, amountOut, err := x.bestRoute(ctx, assetID, s.params.Intermediate, amount)
	if err != nil {
		return nil, err
	}

	// Исполняем оба хопа
	mid, err := buy.Swap(ctx, assetID, s.params.Intermediate, amount)
	if err != nil {
		return nil, fmt.Errorf("swap %s->%s on %s: %w", assetID, s.params.Intermediate, buy.Name(), err)
	}
	out, err := sell.Swap(ctx, s.params.Intermediate, assetID, mid)
	if err != nil {
		return nil, fmt.Errorf("swap %s->%s on %s: %w", s.params.Intermediate, assetID, sell.Name(), err)
	}

	grossProfit := out.Sub(amount).Sub(premium)
	threshold := s.params.MinProfit
	if threshold.Sign() <= 0 {
		threshold = x.minProfit
	}
	if grossProfit.LessThan(threshold) {
		return nil, economicf("gross profit %s below threshold %s (quoted %s)",
			grossProfit.String(), threshold.String(), amountOut.String())
	}

	s.outcome = &TradeOutcome{
		CorrelationID: s.correlationID,
		AssetID:       assetID,
		Intermediate:  s.params.Intermediate,
		BuyVenue:      buy.Name(),
		SellVenue:     sell.Name(),
		LoanAmount:    amount,
		LoanPremium:   premium,
		AmountOut:     out,
		GrossProfit:   grossProfit,
	}
	return s.outcome, nil
}

// bestRoute выбирает упорядоченную пару РАЗЛИЧНЫХ площадок,
// максимизирующую выход цепочки asset -> intermediate -> asset
// по котировкам (обнаруженное ценовое расхождение).
func (x *ArbitrageExecutor) bestRoute(
	ctx context.Context,
	assetID, intermediate string,
	amount decimal.Decimal,
) (buy, sell venue.SwapVenue, amountOut decimal.Decimal, err error) {
	best := decimal.Zero
	for _, a := range x.venues {
		mid, qerr := a.Quote(ctx, assetID, intermediate, amount)
		if qerr != nil {
			continue
		}
		for _, b := range x.venues {
			if b.Name() == a.Name() {
				continue
			}
			out, qerr := b.Quote(ctx, intermediate, assetID, mid)
			if qerr != nil {
				continue
			}
			if buy == nil || out.GreaterThan(best) {
				buy, sell, best = a, b, out
			}
		}
	}
	if buy == nil {
		return nil, nil, decimal.Zero, economicf("no quotable route for %s via %s", assetID, intermediate)
	}
	return buy, sell, best, nil
}

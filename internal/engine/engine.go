package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/ChronoCoders/flashloanbot/internal/models"
	"github.com/ChronoCoders/flashloanbot/internal/venue"
)

// Config - настройки движка
type Config struct {
	// Controller - идентичность контроллера (единственный привилегированный вызывающий)
	Controller string

	// MinProfit - порог валовой прибыли по умолчанию для арбитража, wei
	MinProfit decimal.Decimal

	// AllowPausedProfitWithdraw разрешает вывод прибыли в состоянии PAUSED
	AllowPausedProfitWithdraw bool

	// DailyLossLimitPct - дневной лимит убытков в процентах от
	// totalInvestment; превышение автоматически включает аварийный режим.
	// 0 отключает автотриггер.
	DailyLossLimitPct decimal.Decimal

	// Distribution - процентное разбиение прибыли; по умолчанию 70/20/10
	Distribution DistributionPolicy
}

// Engine - фасад инвестиционного реестра и контуров безопасности.
//
// Собирает воедино ReentrancyGuard, lifecycle, контроль доступа, реестр,
// распределитель прибыли и арбитражного исполнителя. Все мутирующие
// операции проходят через guard: параллельный или вложенный мутирующий
// вызов немедленно завершается ErrReentrantCall, не блокируясь.
//
// Записи в EventSink эмитируются строго ПОСЛЕ фиксации состояния:
// по ним внешний потребитель восстанавливает распределения, поэтому
// запись о несостоявшейся операции недопустима.
type Engine struct {
	cfg Config
	id  string // идентичность движка как инициатора займов

	guard       ReentrancyGuard
	mu          sync.RWMutex
	lifecycle   *Lifecycle
	access      *AccessController
	ledger      *Ledger
	distributor *Distributor
	executor    *ArbitrageExecutor

	assets     map[string]models.SupportedAsset
	assetOrder []string

	feed venue.PriceFeed

	lossPolicy  LossPolicy
	lossTracker *DailyLossTracker

	seq uint64

	sink   EventSink
	logger *zap.Logger
	now    func() time.Time
}

// New создаёт движок в состоянии ACTIVE
func New(cfg Config, pool venue.LendingPool, venues []venue.SwapVenue, sink EventSink, logger *zap.Logger) (*Engine, error) {
	access, err := NewAccessController(cfg.Controller)
	if err != nil {
		return nil, err
	}
	if cfg.Distribution == (DistributionPolicy{}) {
		cfg.Distribution = DefaultDistributionPolicy()
	}
	if !cfg.Distribution.Valid() {
		return nil, fmt.Errorf("distribution percentages must sum to 100: %w", ErrInvalidAsset)
	}
	if sink == nil {
		sink = nopSink{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	ledger := NewLedger()
	e := &Engine{
		cfg:         cfg,
		id:          uuid.NewString(),
		lifecycle:   NewLifecycle(),
		access:      access,
		ledger:      ledger,
		distributor: NewDistributor(ledger, cfg.Distribution),
		executor:    NewArbitrageExecutor(pool, venues, cfg.MinProfit),
		assets:      make(map[string]models.SupportedAsset),
		lossPolicy:  PercentLossPolicy{LimitPct: cfg.DailyLossLimitPct},
		lossTracker: NewDailyLossTracker(),
		sink:        sink,
		logger:      logger,
		now:         time.Now,
	}
	return e, nil
}

// SetPriceFeed подключает ценовой фид. Без фида предторговая проверка
// ликвидности пропускается.
func (e *Engine) SetPriceFeed(feed venue.PriceFeed) {
	e.mu.Lock()
	e.feed = feed
	e.mu.Unlock()
}

// enter захватывает guard или фиксирует отбитый реентрантный вызов
func (e *Engine) enter() error {
	if err := e.guard.Enter(); err != nil {
		ReentrancyBlockedTotal.Inc()
		e.logger.Warn("reentrant call blocked")
		return err
	}
	return nil
}

func (e *Engine) nextSeq() uint64 {
	e.seq++
	return e.seq
}

// ============================================================
// Операции вкладчика
// ============================================================

// Deposit зачисляет депозит. Требует состояние ACTIVE.
func (e *Engine) Deposit(investorID string, amount decimal.Decimal) error {
	if err := e.enter(); err != nil {
		return err
	}
	defer e.guard.Exit()
	now := e.now()

	e.mu.Lock()
	err := e.lifecycle.RequireActive()
	if err == nil {
		err = e.ledger.Deposit(investorID, amount, now)
	}
	var ev models.DepositEvent
	if err == nil {
		ev = models.DepositEvent{Seq: e.nextSeq(), InvestorID: investorID, Amount: amount, Timestamp: now}
		e.updateGauges()
	}
	e.mu.Unlock()

	if err != nil {
		return err
	}
	DepositsTotal.Inc()
	e.logger.Info("deposit received",
		zap.String("investor_id", investorID),
		zap.String("amount", amount.String()))
	e.sink.RecordDeposit(ev)
	return nil
}

// WithdrawProfit выводит всю накопленную прибыль счёта.
//
// В состоянии PAUSED операция доступна только при включённом
// AllowPausedProfitWithdraw.
func (e *Engine) WithdrawProfit(investorID string) (decimal.Decimal, error) {
	if err := e.enter(); err != nil {
		return decimal.Zero, err
	}
	defer e.guard.Exit()
	now := e.now()

	e.mu.Lock()
	var err error
	if !e.cfg.AllowPausedProfitWithdraw {
		err = e.lifecycle.RequireActive()
	}
	amount := decimal.Zero
	if err == nil {
		amount, err = e.ledger.WithdrawProfit(investorID, now)
	}
	var ev models.WithdrawalEvent
	if err == nil {
		ev = models.WithdrawalEvent{
			Seq:        e.nextSeq(),
			Kind:       models.EventProfitWithdrawn,
			InvestorID: investorID,
			Amount:     amount,
			Timestamp:  now,
		}
	}
	e.mu.Unlock()

	if err != nil {
		return decimal.Zero, err
	}
	WithdrawalsTotal.WithLabelValues("profit").Inc()
	e.logger.Info("profit withdrawn",
		zap.String("investor_id", investorID),
		zap.String("amount", amount.String()))
	e.sink.RecordWithdrawal(ev)
	return amount, nil
}

// EmergencyWithdraw возвращает принципал и остаток прибыли.
// Доступен только в аварийном режиме (PAUSED + emergencyMode).
func (e *Engine) EmergencyWithdraw(investorID string) (decimal.Decimal, error) {
	if err := e.enter(); err != nil {
		return decimal.Zero, err
	}
	defer e.guard.Exit()
	now := e.now()

	e.mu.Lock()
	err := e.lifecycle.RequireEmergency()
	amount := decimal.Zero
	if err == nil {
		amount, err = e.ledger.EmergencyWithdraw(investorID, now)
	}
	var ev models.WithdrawalEvent
	if err == nil {
		ev = models.WithdrawalEvent{
			Seq:        e.nextSeq(),
			Kind:       models.EventEmergencyWithdrawn,
			InvestorID: investorID,
			Amount:     amount,
			Timestamp:  now,
		}
		e.updateGauges()
	}
	e.mu.Unlock()

	if err != nil {
		return decimal.Zero, err
	}
	WithdrawalsTotal.WithLabelValues("emergency").Inc()
	e.logger.Warn("emergency withdrawal",
		zap.String("investor_id", investorID),
		zap.String("amount", amount.String()))
	e.sink.RecordWithdrawal(ev)
	return amount, nil
}

// ============================================================
// Операции контроллера
// ============================================================

// Pause останавливает движок и включает аварийный режим.
// Только контроллер.
func (e *Engine) Pause(caller, reason string) error {
	if err := e.enter(); err != nil {
		return err
	}
	defer e.guard.Exit()
	now := e.now()
	if reason == "" {
		reason = models.PauseReasonManual
	}

	e.mu.Lock()
	err := e.access.Require(caller)
	if err == nil {
		err = e.lifecycle.Pause(reason, now)
	}
	var ev models.EmergencyEvent
	if err == nil {
		ev = models.EmergencyEvent{Seq: e.nextSeq(), Activated: true, Reason: reason, Timestamp: now}
	}
	e.mu.Unlock()

	if err != nil {
		return err
	}
	EmergencyActivationsTotal.WithLabelValues(reason).Inc()
	e.logger.Warn("engine paused", zap.String("reason", reason))
	e.sink.RecordEmergency(ev)
	return nil
}

// Unpause возвращает движок в ACTIVE и снимает аварийный режим.
// Только контроллер.
func (e *Engine) Unpause(caller string) error {
	if err := e.enter(); err != nil {
		return err
	}
	defer e.guard.Exit()
	now := e.now()

	e.mu.Lock()
	err := e.access.Require(caller)
	reason := e.lifecycle.PauseReason()
	if err == nil {
		err = e.lifecycle.Unpause()
	}
	var ev models.EmergencyEvent
	if err == nil {
		ev = models.EmergencyEvent{Seq: e.nextSeq(), Activated: false, Reason: reason, Timestamp: now}
	}
	e.mu.Unlock()

	if err != nil {
		return err
	}
	e.logger.Info("engine resumed")
	e.sink.RecordEmergency(ev)
	return nil
}

// TransferControl передаёт контроль новой идентичности.
// Прежний контроллер теряет полномочия немедленно.
func (e *Engine) TransferControl(caller, newController string) error {
	if err := e.enter(); err != nil {
		return err
	}
	defer e.guard.Exit()

	e.mu.Lock()
	err := e.access.Transfer(caller, newController)
	e.mu.Unlock()

	if err != nil {
		return err
	}
	e.logger.Info("control transferred", zap.String("new_controller", newController))
	return nil
}

// AddSupportedAsset регистрирует актив для арбитража. Только контроллер.
func (e *Engine) AddSupportedAsset(caller string, asset models.SupportedAsset) error {
	if err := e.enter(); err != nil {
		return err
	}
	defer e.guard.Exit()

	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.access.Require(caller); err != nil {
		return err
	}
	if asset.AssetID == "" {
		return ErrZeroIdentity
	}
	if asset.PriceReference == "" {
		return ErrInvalidPriceRef
	}
	if asset.MinLiquidity.Sign() < 0 {
		return ErrInvalidAsset
	}
	if _, dup := e.assets[asset.AssetID]; dup {
		return fmt.Errorf("asset %s already registered: %w", asset.AssetID, ErrInvalidAsset)
	}

	asset.AddedAt = e.now()
	e.assets[asset.AssetID] = asset
	e.assetOrder = append(e.assetOrder, asset.AssetID)
	e.logger.Info("asset registered", zap.String("asset_id", asset.AssetID))
	return nil
}

// ReportLoss фиксирует убыток стратегии. Только контроллер.
//
// Накопленный за сутки (UTC) убыток сверяется с дневным лимитом;
// превышение автоматически переводит движок в аварийный режим.
func (e *Engine) ReportLoss(caller string, loss decimal.Decimal) error {
	if err := e.enter(); err != nil {
		return err
	}
	defer e.guard.Exit()
	now := e.now()

	e.mu.Lock()
	err := e.access.Require(caller)
	if err == nil {
		err = validateAmount(loss)
	}
	exceeded := false
	if err == nil {
		daily := e.lossTracker.Add(loss, now)
		exceeded = e.lifecycle.State() == models.StateActive &&
			e.lossPolicy.Exceeded(daily, e.ledger.TotalInvestment())
	}
	var ev models.EmergencyEvent
	if err == nil && exceeded {
		if perr := e.lifecycle.Pause(models.PauseReasonDailyLoss, now); perr == nil {
			ev = models.EmergencyEvent{Seq: e.nextSeq(), Activated: true, Reason: models.PauseReasonDailyLoss, Timestamp: now}
		}
	}
	e.mu.Unlock()

	if err != nil {
		return err
	}
	e.logger.Warn("loss reported", zap.String("loss", loss.String()))
	if exceeded {
		EmergencyActivationsTotal.WithLabelValues(models.PauseReasonDailyLoss).Inc()
		e.logger.Error("daily loss limit exceeded, engine paused")
		e.sink.RecordEmergency(ev)
	}
	return nil
}

// ============================================================
// Арбитраж
// ============================================================

// ExecuteArbitrage запускает займовую арбитражную последовательность.
// Только контроллер, только в ACTIVE, только по зарегистрированному активу.
//
// Всё-или-ничего: ошибка на любом шаге (включая недостаточную прибыль)
// оставляет реестр нетронутым. Успех атомарно фиксирует сделку и
// распределение прибыли и эмитирует обе записи.
func (e *Engine) ExecuteArbitrage(ctx context.Context, caller, assetID string, amount decimal.Decimal, params []byte) (*TradeOutcome, error) {
	if err := e.enter(); err != nil {
		return nil, err
	}
	defer e.guard.Exit()
	now := e.now()

	e.mu.Lock()
	err := e.access.Require(caller)
	if err == nil {
		err = e.lifecycle.RequireActive()
	}
	var asset models.SupportedAsset
	if err == nil {
		var ok bool
		if asset, ok = e.assets[assetID]; !ok {
			err = ErrUnknownAsset
		}
	}
	feed := e.feed
	e.mu.Unlock()
	if err != nil {
		return nil, err
	}

	// Предторговая проверка ликвидности по фиду (если подключён)
	if feed != nil && asset.MinLiquidity.Sign() > 0 {
		liq, lerr := feed.Liquidity(ctx, assetID)
		if lerr != nil {
			return nil, fmt.Errorf("price feed liquidity for %s: %w", assetID, lerr)
		}
		if liq.LessThan(asset.MinLiquidity) {
			return nil, economicf("liquidity %s below asset minimum %s for %s",
				liq.String(), asset.MinLiquidity.String(), assetID)
		}
	}

	// Займ и свопы идут без mu: пул синхронно вызовет OnFlashLoan
	outcome, err := e.executor.Execute(ctx, e.id, assetID, amount, params, e, now)
	if err != nil {
		result := "failed"
		if kind, ok := KindOf(err); ok && kind == KindEconomic {
			result = "economic_abort"
		}
		TradesTotal.WithLabelValues(result).Inc()
		e.logger.Warn("arbitrage aborted",
			zap.String("asset_id", assetID),
			zap.Error(err))
		return nil, err
	}

	e.mu.Lock()
	e.ledger.recordTrade(outcome.GrossProfit)
	distEv := e.distributor.Distribute(outcome.GrossProfit, now)
	tradeEv := models.TradeEvent{
		Seq:           e.nextSeq(),
		CorrelationID: outcome.CorrelationID,
		AssetID:       outcome.AssetID,
		Intermediate:  outcome.Intermediate,
		BuyVenue:      outcome.BuyVenue,
		SellVenue:     outcome.SellVenue,
		LoanAmount:    outcome.LoanAmount,
		LoanPremium:   outcome.LoanPremium,
		GrossProfit:   outcome.GrossProfit,
		Timestamp:     now,
	}
	distEv.Seq = e.nextSeq()
	distEv.CorrelationID = outcome.CorrelationID
	e.mu.Unlock()

	TradesTotal.WithLabelValues("success").Inc()
	profitF, _ := outcome.GrossProfit.Float64()
	ProfitDistributedTotal.Add(profitF)
	e.logger.Info("arbitrage executed",
		zap.String("correlation_id", outcome.CorrelationID),
		zap.String("asset_id", assetID),
		zap.String("buy_venue", outcome.BuyVenue),
		zap.String("sell_venue", outcome.SellVenue),
		zap.String("gross_profit", outcome.GrossProfit.String()))
	e.sink.RecordTrade(tradeEv)
	e.sink.RecordDistribution(distEv)
	return outcome, nil
}

// OnFlashLoan - callback кредитного пула (venue.FlashBorrower).
//
// НЕ защищён reentrancy guard: вызов приходит изнутри уже защищённого
// ExecuteArbitrage. Подлинность проверяется по идентичности кредитора
// и вооружённой сессии займа; посторонний вызов отклоняется
// ErrUnauthorizedCallback без каких-либо эффектов.
func (e *Engine) OnFlashLoan(ctx context.Context, lenderID, initiatorID, assetID string, amount, premium decimal.Decimal, params []byte) error {
	_, err := e.executor.HandleCallback(ctx, lenderID, initiatorID, e.id, assetID, amount, premium)
	return err
}

// ============================================================
// Чтение
// ============================================================

// Stats возвращает снимок глобальных агрегатов
func (e *Engine) Stats() models.GlobalStats {
	e.mu.RLock()
	defer e.mu.RUnlock()

	s := e.ledger.Stats()
	s.LifecycleState = e.lifecycle.State()
	s.EmergencyMode = e.lifecycle.EmergencyMode()
	return s
}

// InvestorInfo возвращает копию счёта вкладчика
func (e *Engine) InvestorInfo(investorID string) (*models.Investor, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.ledger.Investor(investorID)
}

// Controller возвращает текущего контроллера
func (e *Engine) Controller() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.access.Controller()
}

// SupportedAssets возвращает активы в порядке регистрации
func (e *Engine) SupportedAssets() []models.SupportedAsset {
	e.mu.RLock()
	defer e.mu.RUnlock()

	out := make([]models.SupportedAsset, 0, len(e.assetOrder))
	for _, id := range e.assetOrder {
		out = append(out, e.assets[id])
	}
	return out
}

// updateGauges обновляет gauge-метрики; вызывается под mu
func (e *Engine) updateGauges() {
	f, _ := e.ledger.TotalInvestment().Float64()
	TotalInvestmentGauge.Set(f)
	InvestorsGauge.Set(float64(len(e.ledger.investors)))
}

package engine

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/ChronoCoders/flashloanbot/internal/models"
)

// validTransitions определяет допустимые переходы жизненного цикла
var validTransitions = map[string][]string{
	models.StateActive: {models.StatePaused},
	models.StatePaused: {models.StateActive},
}

// canTransition проверяет допустимость перехода
func canTransition(from, to string) bool {
	for _, s := range validTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Lifecycle - state machine жизненного цикла движка.
//
// Состояния: ACTIVE (начальное) <-> PAUSED.
// Инвариант: emergencyMode == true => состояние PAUSED.
// Pause устанавливает emergencyMode, Unpause снимает.
//
// Не потокобезопасен сам по себе - все записи сериализованы
// ReentrancyGuard и мьютексом состояния движка.
type Lifecycle struct {
	state         string
	emergencyMode bool
	pausedAt      time.Time
	pauseReason   string
}

// NewLifecycle создаёт lifecycle в состоянии ACTIVE
func NewLifecycle() *Lifecycle {
	return &Lifecycle{state: models.StateActive}
}

// State возвращает текущее состояние
func (l *Lifecycle) State() string { return l.state }

// EmergencyMode возвращает флаг аварийного режима
func (l *Lifecycle) EmergencyMode() bool { return l.emergencyMode }

// PauseReason возвращает причину последней паузы
func (l *Lifecycle) PauseReason() string { return l.pauseReason }

// Pause переводит ACTIVE -> PAUSED и включает аварийный режим.
// Повторная пауза - ошибка состояния, ничего не мутирует.
func (l *Lifecycle) Pause(reason string, now time.Time) error {
	if !canTransition(l.state, models.StatePaused) {
		return ErrNotActive
	}
	l.state = models.StatePaused
	l.emergencyMode = true
	l.pausedAt = now
	l.pauseReason = reason
	return nil
}

// Unpause переводит PAUSED -> ACTIVE и снимает аварийный режим
func (l *Lifecycle) Unpause() error {
	if !canTransition(l.state, models.StateActive) {
		return ErrNotPaused
	}
	l.state = models.StateActive
	l.emergencyMode = false
	l.pauseReason = ""
	return nil
}

// RequireActive возвращает ошибку состояния, если движок не в ACTIVE.
// Депозиты и арбитраж требуют ACTIVE.
func (l *Lifecycle) RequireActive() error {
	if l.state != models.StateActive {
		return ErrNotActive
	}
	return nil
}

// RequireEmergency возвращает ошибку состояния, если аварийный режим
// не активен. emergencyWithdraw требует PAUSED + emergencyMode.
func (l *Lifecycle) RequireEmergency() error {
	if l.state != models.StatePaused || !l.emergencyMode {
		return ErrNotInEmergencyMode
	}
	return nil
}

// ============================================================
// DailyLossTracker - автоматический триггер аварийного режима
// ============================================================

// LossPolicy решает, исчерпан ли дневной лимит убытков.
// Политика - внешний настраиваемый сигнал, а не зашитый порог.
type LossPolicy interface {
	// Exceeded возвращает true, если накопленный за день убыток
	// относительно общего объёма инвестиций превышает лимит
	Exceeded(dailyLoss, totalInvestment decimal.Decimal) bool
}

// PercentLossPolicy - политика по умолчанию: лимит в процентах
// от totalInvestment. LimitPct <= 0 отключает автотриггер.
type PercentLossPolicy struct {
	LimitPct decimal.Decimal
}

// Exceeded реализует LossPolicy
func (p PercentLossPolicy) Exceeded(dailyLoss, totalInvestment decimal.Decimal) bool {
	if p.LimitPct.Sign() <= 0 || totalInvestment.Sign() <= 0 {
		return false
	}
	limit := totalInvestment.Mul(p.LimitPct).Div(decimal.NewFromInt(100)).Floor()
	return dailyLoss.GreaterThan(limit)
}

// DailyLossTracker накапливает заявленные убытки по суткам (UTC)
type DailyLossTracker struct {
	day  time.Time
	loss decimal.Decimal
}

// NewDailyLossTracker создаёт пустой трекер
func NewDailyLossTracker() *DailyLossTracker {
	return &DailyLossTracker{loss: decimal.Zero}
}

// Add добавляет убыток и возвращает накопленный убыток за текущие сутки.
// При смене суток счётчик обнуляется.
func (t *DailyLossTracker) Add(loss decimal.Decimal, at time.Time) decimal.Decimal {
	day := at.UTC().Truncate(24 * time.Hour)
	if !day.Equal(t.day) {
		t.day = day
		t.loss = decimal.Zero
	}
	t.loss = t.loss.Add(loss)
	return t.loss
}

// Current возвращает накопленный убыток за сутки, содержащие at
func (t *DailyLossTracker) Current(at time.Time) decimal.Decimal {
	if !at.UTC().Truncate(24 * time.Hour).Equal(t.day) {
		return decimal.Zero
	}
	return t.loss
}

package models

// Состояния жизненного цикла движка (state machine)
const (
	StateActive = "ACTIVE" // приём депозитов и арбитраж разрешены
	StatePaused = "PAUSED" // только чтение и аварийный вывод
)

// Причины постановки на паузу
const (
	PauseReasonManual    = "manual"     // ручная пауза контроллером
	PauseReasonDailyLoss = "daily_loss" // превышен дневной лимит убытков
)

package engine

import "fmt"

// Kind классифицирует ошибки движка.
//
// Любая ошибка прерывает ВСЮ операцию без частичных мутаций (fail-closed).
// Движок никогда не ретраит сам - ретраи на совести внешнего вызывающего.
type Kind int

const (
	// KindValidation - некорректные параметры (нулевые идентификаторы,
	// суммы вне границ)
	KindValidation Kind = iota
	// KindAuthorization - не-контроллер на привилегированной операции
	// или неопознанный вызывающий callback
	KindAuthorization
	// KindState - операция недопустима в текущем состоянии жизненного цикла
	KindState
	// KindReentrancy - вложенный вызов защищённой операции
	KindReentrancy
	// KindEconomic - результат свопа не покрывает возврат займа
	// плюс минимальную прибыль
	KindEconomic
)

// String возвращает имя категории
func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuthorization:
		return "authorization"
	case KindState:
		return "state"
	case KindReentrancy:
		return "reentrancy"
	case KindEconomic:
		return "economic"
	default:
		return "unknown"
	}
}

// Error - типизированная ошибка движка с категорией
type Error struct {
	Kind Kind
	msg  string
}

func (e *Error) Error() string { return e.msg }

// Is позволяет сравнивать обёрнутые ошибки через errors.Is
// по совпадению категории и текста
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.msg == t.msg
}

func newErr(kind Kind, msg string) *Error {
	return &Error{Kind: kind, msg: msg}
}

// Ошибки валидации
var (
	ErrInvestmentTooSmall = newErr(KindValidation, "investment below minimum")
	ErrInvestmentTooLarge = newErr(KindValidation, "investment exceeds per-investor maximum")
	ErrZeroIdentity       = newErr(KindValidation, "identity cannot be empty")
	ErrInvalidAsset       = newErr(KindValidation, "invalid asset id")
	ErrInvalidPriceRef    = newErr(KindValidation, "invalid price reference")
	ErrUnknownAsset       = newErr(KindValidation, "asset is not supported")
	ErrNonIntegerAmount   = newErr(KindValidation, "amount must be an integer number of wei")
	ErrNoProfit           = newErr(KindValidation, "no profit to withdraw")
	ErrUnknownInvestor    = newErr(KindValidation, "investor not found")
)

// Ошибки авторизации
var (
	ErrNotController        = newErr(KindAuthorization, "caller is not the controller")
	ErrUnauthorizedCallback = newErr(KindAuthorization, "unauthorized flash loan callback")
)

// Ошибки состояния
var (
	ErrNotActive          = newErr(KindState, "engine is paused")
	ErrNotPaused          = newErr(KindState, "engine is not paused")
	ErrNotInEmergencyMode = newErr(KindState, "not in emergency mode")
)

// Ошибка реентерабельности
var ErrReentrantCall = newErr(KindReentrancy, "reentrant call")

// Экономическая ошибка
var ErrInsufficientProfit = newErr(KindEconomic, "arbitrage profit below minimum threshold")

// KindOf возвращает категорию ошибки движка.
// Для посторонних ошибок возвращает -1 и false.
func KindOf(err error) (Kind, bool) {
	var e *Error
	for err != nil {
		if ee, ok := err.(*Error); ok {
			e = ee
			break
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			break
		}
		err = u.Unwrap()
	}
	if e == nil {
		return -1, false
	}
	return e.Kind, true
}

// economicf оборачивает экономическую ошибку с деталями расчёта
func economicf(format string, args ...interface{}) error {
	return fmt.Errorf(format+": %w", append(args, ErrInsufficientProfit)...)
}

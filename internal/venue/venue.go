// Package venue определяет интерфейсы внешних коллабораторов движка:
// кредитный пул (flash-займы), площадки ликвидности (свопы) и ценовой фид.
//
// Движку не нужны ни сессии, ни polling котировок - только числовой
// сигнал цены/ликвидности и способность занять и свопнуть в рамках
// одного вызова. Всё остальное - забота реализаций.
package venue

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// SwapVenue - внешняя площадка ликвидности для одного хопа свопа
type SwapVenue interface {
	// Name возвращает имя площадки
	Name() string

	// Quote возвращает ожидаемый выход свопа assetIn -> assetOut
	// без исполнения
	Quote(ctx context.Context, assetIn, assetOut string, amountIn decimal.Decimal) (decimal.Decimal, error)

	// Swap исполняет своп и возвращает фактический выход
	Swap(ctx context.Context, assetIn, assetOut string, amountIn decimal.Decimal) (decimal.Decimal, error)
}

// FlashBorrower - получатель flash-займа.
// Пул вызывает OnFlashLoan СИНХРОННО внутри FlashLoan: займ должен быть
// использован и возвращён (плюс премия) в рамках того же вызова, иначе
// вся операция ничтожна.
type FlashBorrower interface {
	OnFlashLoan(ctx context.Context, lenderID, initiatorID, assetID string, amount, premium decimal.Decimal, params []byte) error
}

// LendingPool - внешний кредитный коллаборатор
type LendingPool interface {
	// ID возвращает идентификатор пула. Callback движка проверяет
	// вызывающего по этому идентификатору.
	ID() string

	// PremiumFor возвращает премию за займ указанного размера
	PremiumFor(amount decimal.Decimal) decimal.Decimal

	// FlashLoan выдаёт необеспеченный займ в рамках одного вызова.
	// Ошибка callback'а отменяет займ целиком: средства не выдаются.
	FlashLoan(ctx context.Context, initiatorID, assetID string, amount decimal.Decimal, params []byte, borrower FlashBorrower) error
}

// PriceFeed - минимальный числовой интерфейс цены и ликвидности
type PriceFeed interface {
	// Price возвращает цену по ссылке priceReference актива
	Price(ctx context.Context, priceReference string) (decimal.Decimal, error)

	// Liquidity возвращает доступную ликвидность по активу
	Liquidity(ctx context.Context, assetID string) (decimal.Decimal, error)
}

// QuoteResult - котировка одной площадки на момент времени
type QuoteResult struct {
	Venue     string          `json:"venue"`
	AssetIn   string          `json:"asset_in"`
	AssetOut  string          `json:"asset_out"`
	AmountIn  decimal.Decimal `json:"amount_in"`
	AmountOut decimal.Decimal `json:"amount_out"`
	Timestamp time.Time       `json:"timestamp"`
}

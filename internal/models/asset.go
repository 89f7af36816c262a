package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// SupportedAsset представляет актив, допущенный к арбитражным операциям.
// Регистрируется только контроллером.
type SupportedAsset struct {
	AssetID        string          `json:"asset_id" db:"asset_id"`
	DisplayName    string          `json:"display_name" db:"display_name"` // пустое имя допустимо
	MinLiquidity   decimal.Decimal `json:"min_liquidity" db:"min_liquidity"`
	PriceReference string          `json:"price_reference" db:"price_reference"`
	AddedAt        time.Time       `json:"added_at" db:"added_at"`
}

package utils

import (
	"errors"

	"github.com/shopspring/decimal"
)

// Суммы движутся по системе как целые wei (10^-18 базового токена).
// Дробная арифметика появляется только на границе с пользователем.

// WeiPerToken - множитель перевода токенов в wei
var WeiPerToken = decimal.New(1, 18)

// Ошибки разбора сумм
var (
	ErrMalformedAmount = errors.New("malformed amount")
	ErrFractionalWei   = errors.New("amount has fractional wei")
	ErrNegativeAmount  = errors.New("amount cannot be negative")
)

// ParseWei разбирает строку в целые wei
func ParseWei(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrMalformedAmount
	}
	if !d.Equal(d.Floor()) {
		return decimal.Zero, ErrFractionalWei
	}
	if d.Sign() < 0 {
		return decimal.Zero, ErrNegativeAmount
	}
	return d, nil
}

// TokensToWei переводит сумму в токенах в wei.
// Остаток мельче wei отбрасывается вниз.
func TokensToWei(tokens decimal.Decimal) decimal.Decimal {
	return tokens.Mul(WeiPerToken).Floor()
}

// WeiToTokens переводит wei в токены для отображения
func WeiToTokens(wei decimal.Decimal) decimal.Decimal {
	return wei.Div(WeiPerToken)
}

// PctFloor возвращает floor(amount * pct / 100)
func PctFloor(amount decimal.Decimal, pct int64) decimal.Decimal {
	return amount.Mul(decimal.NewFromInt(pct)).Div(decimal.NewFromInt(100)).Floor()
}

// ProRataFloor возвращает floor(pool * part / total).
// При нулевом total возвращает ноль.
func ProRataFloor(pool, part, total decimal.Decimal) decimal.Decimal {
	if total.Sign() == 0 {
		return decimal.Zero
	}
	return pool.Mul(part).Div(total).Floor()
}

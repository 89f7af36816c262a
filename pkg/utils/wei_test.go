package utils

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

// TestParseWei проверяет разбор сумм в wei
func TestParseWei(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr error
	}{
		{name: "целое число", in: "10000000000000000", want: "10000000000000000"},
		{name: "ноль", in: "0", want: "0"},
		{name: "дробные wei", in: "1.5", wantErr: ErrFractionalWei},
		{name: "отрицательная сумма", in: "-1", wantErr: ErrNegativeAmount},
		{name: "мусор", in: "abc", wantErr: ErrMalformedAmount},
		{name: "пустая строка", in: "", wantErr: ErrMalformedAmount},
		{name: "научная нотация", in: "1e18", want: "1000000000000000000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseWei(tt.in)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("ParseWei(%q) = %v, want %v", tt.in, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseWei(%q) = %v, want nil", tt.in, err)
			}
			if got.String() != tt.want {
				t.Errorf("ParseWei(%q) = %s, want %s", tt.in, got, tt.want)
			}
		})
	}
}

// TestTokensWeiRoundTrip проверяет перевод токены <-> wei
func TestTokensWeiRoundTrip(t *testing.T) {
	wei := TokensToWei(decimal.NewFromFloat(0.01))
	if want := decimal.New(1, 16); !wei.Equal(want) {
		t.Errorf("TokensToWei(0.01) = %s, want %s", wei, want)
	}
	back := WeiToTokens(wei)
	if !back.Equal(decimal.NewFromFloat(0.01)) {
		t.Errorf("WeiToTokens = %s, want 0.01", back)
	}

	// Остаток мельче wei отбрасывается вниз
	tiny := TokensToWei(decimal.RequireFromString("0.0000000000000000015"))
	if !tiny.Equal(decimal.NewFromInt(1)) {
		t.Errorf("TokensToWei(1.5e-18 токена) = %s, want 1", tiny)
	}
}

// TestProRataFloor проверяет pro-rata деление с округлением вниз
func TestProRataFloor(t *testing.T) {
	pool := decimal.NewFromInt(70)
	total := decimal.NewFromInt(4)

	if got := ProRataFloor(pool, decimal.NewFromInt(1), total); !got.Equal(decimal.NewFromInt(17)) {
		t.Errorf("ProRataFloor(70, 1, 4) = %s, want 17", got)
	}
	if got := ProRataFloor(pool, decimal.NewFromInt(3), total); !got.Equal(decimal.NewFromInt(52)) {
		t.Errorf("ProRataFloor(70, 3, 4) = %s, want 52", got)
	}
	if got := ProRataFloor(pool, decimal.NewFromInt(1), decimal.Zero); !got.IsZero() {
		t.Errorf("ProRataFloor при нулевом total = %s, want 0", got)
	}
}

// TestPctFloor проверяет процент с округлением вниз
func TestPctFloor(t *testing.T) {
	tests := []struct {
		amount int64
		pct    int64
		want   int64
	}{
		{100, 70, 70},
		{99, 70, 69},
		{1, 70, 0},
		{7, 20, 1},
	}
	for _, tt := range tests {
		got := PctFloor(decimal.NewFromInt(tt.amount), tt.pct)
		if !got.Equal(decimal.NewFromInt(tt.want)) {
			t.Errorf("PctFloor(%d, %d) = %s, want %d", tt.amount, tt.pct, got, tt.want)
		}
	}
}

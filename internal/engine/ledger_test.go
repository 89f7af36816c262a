package engine

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

var testTime = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

// TestLedger_DepositBounds проверяет границы разового депозита
func TestLedger_DepositBounds(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		amount  decimal.Decimal
		wantErr error
	}{
		{name: "минимальный депозит проходит", id: "a", amount: MinInvestment, wantErr: nil},
		{name: "максимальный депозит проходит", id: "b", amount: MaxPerInvestor, wantErr: nil},
		{name: "ниже минимума", id: "c", amount: MinInvestment.Sub(decimal.NewFromInt(1)), wantErr: ErrInvestmentTooSmall},
		{name: "выше максимума", id: "d", amount: MaxPerInvestor.Add(decimal.NewFromInt(1)), wantErr: ErrInvestmentTooLarge},
		{name: "нулевая сумма", id: "e", amount: decimal.Zero, wantErr: ErrInvestmentTooSmall},
		{name: "отрицательная сумма", id: "f", amount: decimal.NewFromInt(-1), wantErr: ErrInvestmentTooSmall},
		{name: "дробные wei", id: "g", amount: MinInvestment.Add(decimal.NewFromFloat(0.5)), wantErr: ErrNonIntegerAmount},
		{name: "пустая личность", id: "", amount: MinInvestment, wantErr: ErrZeroIdentity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := NewLedger()
			err := l.Deposit(tt.id, tt.amount, testTime)
			if tt.wantErr == nil && err != nil {
				t.Errorf("Deposit() = %v, want nil", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("Deposit() = %v, want %v", err, tt.wantErr)
			}
			// Инвариант: сумма вкладов равна totalInvestment после
			// любой операции, успешной или нет
			if !l.checkInvariants() {
				t.Error("нарушен инвариант сумм после Deposit")
			}
		})
	}
}

// TestLedger_CumulativeCap проверяет кумулятивный лимит на счёт
func TestLedger_CumulativeCap(t *testing.T) {
	l := NewLedger()

	half := MaxPerInvestor.Div(decimal.NewFromInt(2)).Floor()
	if err := l.Deposit("a", half, testTime); err != nil {
		t.Fatalf("Deposit #1 = %v, want nil", err)
	}
	if err := l.Deposit("a", half, testTime); err != nil {
		t.Fatalf("Deposit #2 = %v, want nil", err)
	}

	// Счёт уже на максимуме: даже минимальный депозит превышает лимит
	err := l.Deposit("a", MinInvestment, testTime)
	if !errors.Is(err, ErrInvestmentTooLarge) {
		t.Errorf("Deposit сверх лимита = %v, want ErrInvestmentTooLarge", err)
	}
	if !l.checkInvariants() {
		t.Error("нарушен инвариант сумм после отклонённого депозита")
	}

	// Лимит на счёт, не глобальный: другой вкладчик не ограничен
	if err := l.Deposit("b", MaxPerInvestor, testTime); err != nil {
		t.Errorf("Deposit другого вкладчика = %v, want nil", err)
	}

	inv, err := l.Investor("a")
	if err != nil {
		t.Fatalf("Investor(a) = %v", err)
	}
	if !inv.Invested.Equal(MaxPerInvestor) {
		t.Errorf("invested = %s, want %s", inv.Invested, MaxPerInvestor)
	}
	want := MaxPerInvestor.Mul(decimal.NewFromInt(2))
	if !l.TotalInvestment().Equal(want) {
		t.Errorf("TotalInvestment() = %s, want %s", l.TotalInvestment(), want)
	}
}

// TestLedger_WithdrawProfit проверяет вывод прибыли целиком
func TestLedger_WithdrawProfit(t *testing.T) {
	l := NewLedger()
	if err := l.Deposit("a", MinInvestment, testTime); err != nil {
		t.Fatalf("Deposit = %v", err)
	}

	// Прибыли нет
	if _, err := l.WithdrawProfit("a", testTime); !errors.Is(err, ErrNoProfit) {
		t.Errorf("WithdrawProfit без прибыли = %v, want ErrNoProfit", err)
	}

	// Неизвестный вкладчик
	if _, err := l.WithdrawProfit("ghost", testTime); !errors.Is(err, ErrNoProfit) {
		t.Errorf("WithdrawProfit неизвестного = %v, want ErrNoProfit", err)
	}

	l.creditProfit("a", decimal.NewFromInt(500))
	got, err := l.WithdrawProfit("a", testTime)
	if err != nil {
		t.Fatalf("WithdrawProfit = %v, want nil", err)
	}
	if !got.Equal(decimal.NewFromInt(500)) {
		t.Errorf("выведено %s, want 500", got)
	}

	inv, _ := l.Investor("a")
	if !inv.ProfitAccrued.IsZero() {
		t.Errorf("profitAccrued после вывода = %s, want 0", inv.ProfitAccrued)
	}
	if !inv.TotalWithdrawn.Equal(decimal.NewFromInt(500)) {
		t.Errorf("totalWithdrawn = %s, want 500", inv.TotalWithdrawn)
	}
	if !inv.Invested.Equal(MinInvestment) {
		t.Errorf("invested изменился: %s, want %s", inv.Invested, MinInvestment)
	}

	// Повторный вывод - прибыли уже нет
	if _, err := l.WithdrawProfit("a", testTime); !errors.Is(err, ErrNoProfit) {
		t.Errorf("повторный WithdrawProfit = %v, want ErrNoProfit", err)
	}
	if !l.checkInvariants() {
		t.Error("нарушен инвариант сумм после вывода прибыли")
	}
}

// TestLedger_EmergencyWithdraw проверяет аварийный вывод:
// принципал плюс прибыль, счёт обнуляется, totalInvestment уменьшается
func TestLedger_EmergencyWithdraw(t *testing.T) {
	l := NewLedger()
	amount := decimal.New(5, 17)
	if err := l.Deposit("a", amount, testTime); err != nil {
		t.Fatalf("Deposit = %v", err)
	}
	if err := l.Deposit("b", MinInvestment, testTime); err != nil {
		t.Fatalf("Deposit = %v", err)
	}
	l.creditProfit("a", decimal.NewFromInt(700))

	got, err := l.EmergencyWithdraw("a", testTime)
	if err != nil {
		t.Fatalf("EmergencyWithdraw = %v, want nil", err)
	}
	want := amount.Add(decimal.NewFromInt(700))
	if !got.Equal(want) {
		t.Errorf("выведено %s, want %s", got, want)
	}

	inv, _ := l.Investor("a")
	if !inv.Invested.IsZero() || !inv.ProfitAccrued.IsZero() {
		t.Errorf("счёт не обнулён: invested=%s profit=%s", inv.Invested, inv.ProfitAccrued)
	}
	if !l.TotalInvestment().Equal(MinInvestment) {
		t.Errorf("TotalInvestment() = %s, want %s", l.TotalInvestment(), MinInvestment)
	}
	if !l.checkInvariants() {
		t.Error("нарушен инвариант сумм после аварийного вывода")
	}

	// Запись остаётся как история, повторный вывод отдаёт ноль
	got, err = l.EmergencyWithdraw("a", testTime)
	if err != nil {
		t.Fatalf("повторный EmergencyWithdraw = %v, want nil", err)
	}
	if !got.IsZero() {
		t.Errorf("повторный вывод = %s, want 0", got)
	}

	if _, err := l.EmergencyWithdraw("ghost", testTime); !errors.Is(err, ErrUnknownInvestor) {
		t.Errorf("EmergencyWithdraw неизвестного = %v, want ErrUnknownInvestor", err)
	}
}

// TestLedger_RecordTrade проверяет агрегаты сделок
func TestLedger_RecordTrade(t *testing.T) {
	l := NewLedger()
	l.recordTrade(decimal.NewFromInt(100))
	l.recordTrade(decimal.NewFromInt(250))

	s := l.Stats()
	if s.TradesAttempted != 2 || s.TradesSucceeded != 2 {
		t.Errorf("attempted=%d succeeded=%d, want 2/2", s.TradesAttempted, s.TradesSucceeded)
	}
	if !s.TotalProfitRealized.Equal(decimal.NewFromInt(350)) {
		t.Errorf("TotalProfitRealized = %s, want 350", s.TotalProfitRealized)
	}
	if s.SuccessRate() != 100 {
		t.Errorf("SuccessRate() = %v, want 100", s.SuccessRate())
	}
}

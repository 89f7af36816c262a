package engine

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ChronoCoders/flashloanbot/internal/models"
	"github.com/ChronoCoders/flashloanbot/internal/venue"
)

const (
	testController = "controller-1"
	testAsset      = "USDT"
	testMid        = "WETH"
)

// captureSink накапливает эмитированные записи для проверок
type captureSink struct {
	deposits    []models.DepositEvent
	trades      []models.TradeEvent
	dists       []models.DistributionEvent
	emergencies []models.EmergencyEvent
	withdrawals []models.WithdrawalEvent
}

func (s *captureSink) RecordDeposit(ev models.DepositEvent)           { s.deposits = append(s.deposits, ev) }
func (s *captureSink) RecordTrade(ev models.TradeEvent)               { s.trades = append(s.trades, ev) }
func (s *captureSink) RecordDistribution(ev models.DistributionEvent) { s.dists = append(s.dists, ev) }
func (s *captureSink) RecordEmergency(ev models.EmergencyEvent) {
	s.emergencies = append(s.emergencies, ev)
}
func (s *captureSink) RecordWithdrawal(ev models.WithdrawalEvent) {
	s.withdrawals = append(s.withdrawals, ev)
}

// newTestEngine собирает движок на симуляторах: две площадки с разницей
// цен (прибыльный маршрут dex-a -> dex-b) и кредитный пул с премией 9 bps
func newTestEngine(t *testing.T, cfg Config) (*Engine, *venue.SimPool, *venue.SimVenue, *venue.SimVenue, *captureSink) {
	t.Helper()

	a := venue.NewSimVenue("dex-a")
	b := venue.NewSimVenue("dex-b")
	a.SetRate(testAsset, testMid, decimal.NewFromInt(2))
	b.SetRate(testMid, testAsset, decimal.NewFromInt(1))

	pool := venue.NewSimPool("aave-sim", 9)
	sink := &captureSink{}

	if cfg.Controller == "" {
		cfg.Controller = testController
	}
	e, err := New(cfg, pool, []venue.SwapVenue{a, b}, sink, nil)
	if err != nil {
		t.Fatalf("New() = %v", err)
	}
	e.now = func() time.Time { return testTime }
	return e, pool, a, b, sink
}

func registerTestAsset(t *testing.T, e *Engine) {
	t.Helper()
	err := e.AddSupportedAsset(testController, models.SupportedAsset{
		AssetID:        testAsset,
		DisplayName:    "Tether USD",
		MinLiquidity:   decimal.Zero,
		PriceReference: "usdt-usd",
	})
	if err != nil {
		t.Fatalf("AddSupportedAsset() = %v", err)
	}
}

func arbParams(t *testing.T, minProfit int64) []byte {
	t.Helper()
	raw, err := json.Marshal(ArbitrageParams{
		Intermediate: testMid,
		MinProfit:    decimal.NewFromInt(minProfit),
	})
	if err != nil {
		t.Fatalf("marshal params: %v", err)
	}
	return raw
}

// TestExecuteArbitrage_Success проверяет полный успешный цикл:
// займ, два свопа, фиксация сделки и распределение прибыли
func TestExecuteArbitrage_Success(t *testing.T) {
	e, _, _, _, sink := newTestEngine(t, Config{})
	registerTestAsset(t, e)

	if err := e.Deposit("inv-1", MinInvestment); err != nil {
		t.Fatalf("Deposit = %v", err)
	}

	loan := decimal.New(1, 16)
	outcome, err := e.ExecuteArbitrage(context.Background(), testController, testAsset, loan, arbParams(t, 1))
	if err != nil {
		t.Fatalf("ExecuteArbitrage = %v, want nil", err)
	}

	if outcome.BuyVenue != "dex-a" || outcome.SellVenue != "dex-b" {
		t.Errorf("маршрут %s -> %s, want dex-a -> dex-b", outcome.BuyVenue, outcome.SellVenue)
	}
	// out = loan*2, premium = floor(loan*9/10000)
	premium := loan.Mul(decimal.NewFromInt(9)).Div(decimal.NewFromInt(10000)).Floor()
	wantProfit := loan.Mul(decimal.NewFromInt(2)).Sub(loan).Sub(premium)
	if !outcome.GrossProfit.Equal(wantProfit) {
		t.Errorf("GrossProfit = %s, want %s", outcome.GrossProfit, wantProfit)
	}
	if outcome.CorrelationID == "" {
		t.Error("пустой CorrelationID")
	}

	s := e.Stats()
	if s.TradesAttempted != 1 || s.TradesSucceeded != 1 {
		t.Errorf("attempted=%d succeeded=%d, want 1/1", s.TradesAttempted, s.TradesSucceeded)
	}
	if !s.TotalProfitRealized.Equal(wantProfit) {
		t.Errorf("TotalProfitRealized = %s, want %s", s.TotalProfitRealized, wantProfit)
	}

	// Единственный вкладчик получает весь инвесторский пул
	inv, err := e.InvestorInfo("inv-1")
	if err != nil {
		t.Fatalf("InvestorInfo = %v", err)
	}
	wantShare := pct(wantProfit, 70)
	if !inv.ProfitAccrued.Equal(wantShare) {
		t.Errorf("прибыль вкладчика = %s, want %s", inv.ProfitAccrued, wantShare)
	}

	// Записи: сделка и распределение связаны CorrelationID,
	// Seq распределения строго после Seq сделки
	if len(sink.trades) != 1 || len(sink.dists) != 1 {
		t.Fatalf("событий trade=%d dist=%d, want 1/1", len(sink.trades), len(sink.dists))
	}
	if sink.trades[0].CorrelationID != sink.dists[0].CorrelationID {
		t.Error("CorrelationID сделки и распределения не совпадают")
	}
	if sink.dists[0].Seq <= sink.trades[0].Seq {
		t.Errorf("Seq распределения %d <= Seq сделки %d", sink.dists[0].Seq, sink.trades[0].Seq)
	}
	if !sink.dists[0].GrossProfit.Equal(wantProfit) {
		t.Errorf("GrossProfit в записи = %s, want %s", sink.dists[0].GrossProfit, wantProfit)
	}
}

// TestExecuteArbitrage_EconomicAbort проверяет всё-или-ничего:
// недостаточная прибыль прерывает операцию без следов в реестре
func TestExecuteArbitrage_EconomicAbort(t *testing.T) {
	e, _, a, b, sink := newTestEngine(t, Config{})
	registerTestAsset(t, e)
	if err := e.Deposit("inv-1", MinInvestment); err != nil {
		t.Fatalf("Deposit = %v", err)
	}

	// Паритет цен: out == loan, премия делает сделку убыточной
	a.SetRate(testAsset, testMid, decimal.NewFromInt(1))
	b.SetRate(testMid, testAsset, decimal.NewFromInt(1))

	_, err := e.ExecuteArbitrage(context.Background(), testController, testAsset, decimal.New(1, 16), arbParams(t, 1))
	if !errors.Is(err, ErrInsufficientProfit) {
		t.Fatalf("ExecuteArbitrage = %v, want ErrInsufficientProfit", err)
	}
	if kind, ok := KindOf(err); !ok || kind != KindEconomic {
		t.Errorf("KindOf = %v, %v, want KindEconomic", kind, ok)
	}

	// Никаких следов: ни агрегатов, ни начислений, ни записей
	s := e.Stats()
	if s.TradesAttempted != 0 || s.TradesSucceeded != 0 {
		t.Errorf("attempted=%d succeeded=%d после аборта, want 0/0", s.TradesAttempted, s.TradesSucceeded)
	}
	if !s.TotalProfitRealized.IsZero() {
		t.Errorf("TotalProfitRealized = %s после аборта, want 0", s.TotalProfitRealized)
	}
	inv, _ := e.InvestorInfo("inv-1")
	if !inv.ProfitAccrued.IsZero() {
		t.Errorf("прибыль вкладчика = %s после аборта, want 0", inv.ProfitAccrued)
	}
	if len(sink.trades) != 0 || len(sink.dists) != 0 {
		t.Errorf("эмитированы записи после аборта: trade=%d dist=%d", len(sink.trades), len(sink.dists))
	}
}

// TestExecuteArbitrage_Preconditions проверяет предусловия операции
func TestExecuteArbitrage_Preconditions(t *testing.T) {
	tests := []struct {
		name    string
		prepare func(t *testing.T, e *Engine)
		caller  string
		asset   string
		params  func(t *testing.T) []byte
		wantErr error
	}{
		{
			name:    "не-контроллер",
			prepare: registerTestAsset,
			caller:  "mallory",
			asset:   testAsset,
			params:  func(t *testing.T) []byte { return arbParams(t, 1) },
			wantErr: ErrNotController,
		},
		{
			name: "движок на паузе",
			prepare: func(t *testing.T, e *Engine) {
				registerTestAsset(t, e)
				if err := e.Pause(testController, ""); err != nil {
					t.Fatalf("Pause = %v", err)
				}
			},
			caller:  testController,
			asset:   testAsset,
			params:  func(t *testing.T) []byte { return arbParams(t, 1) },
			wantErr: ErrNotActive,
		},
		{
			name:    "незарегистрированный актив",
			prepare: func(t *testing.T, e *Engine) {},
			caller:  testController,
			asset:   "DOGE",
			params:  func(t *testing.T) []byte { return arbParams(t, 1) },
			wantErr: ErrUnknownAsset,
		},
		{
			name:    "пустые параметры",
			prepare: registerTestAsset,
			caller:  testController,
			asset:   testAsset,
			params:  func(t *testing.T) []byte { return nil },
			wantErr: ErrInvalidAsset,
		},
		{
			name:    "пустой промежуточный актив",
			prepare: registerTestAsset,
			caller:  testController,
			asset:   testAsset,
			params: func(t *testing.T) []byte {
				return []byte(`{"intermediate":"","min_profit":"1"}`)
			},
			wantErr: ErrZeroIdentity,
		},
		{
			name:    "просроченный deadline",
			prepare: registerTestAsset,
			caller:  testController,
			asset:   testAsset,
			params: func(t *testing.T) []byte {
				return []byte(fmt.Sprintf(`{"intermediate":%q,"min_profit":"1","deadline":1}`, testMid))
			},
			wantErr: ErrInvalidAsset,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, _, _, _, sink := newTestEngine(t, Config{})
			tt.prepare(t, e)

			_, err := e.ExecuteArbitrage(context.Background(), tt.caller, tt.asset, decimal.New(1, 16), tt.params(t))
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ExecuteArbitrage = %v, want %v", err, tt.wantErr)
			}
			if len(sink.trades) != 0 {
				t.Error("эмитирована запись сделки при отклонённой операции")
			}
		})
	}
}

// TestExecuteArbitrage_LiquidityGate проверяет предторговую проверку
// ликвидности по фиду для активов с MinLiquidity
func TestExecuteArbitrage_LiquidityGate(t *testing.T) {
	e, _, _, _, sink := newTestEngine(t, Config{})
	err := e.AddSupportedAsset(testController, models.SupportedAsset{
		AssetID:        testAsset,
		DisplayName:    "Tether USD",
		MinLiquidity:   decimal.New(1, 18),
		PriceReference: "usdt-usd",
	})
	if err != nil {
		t.Fatalf("AddSupportedAsset() = %v", err)
	}

	feed := venue.NewSimFeed()
	e.SetPriceFeed(feed)
	loan := decimal.New(1, 16)

	t.Run("ликвидность ниже минимума", func(t *testing.T) {
		feed.SetLiquidity(testAsset, decimal.New(5, 17))
		_, err := e.ExecuteArbitrage(context.Background(), testController, testAsset, loan, arbParams(t, 1))
		if !errors.Is(err, ErrInsufficientProfit) {
			t.Fatalf("ExecuteArbitrage = %v, want ErrInsufficientProfit", err)
		}
		if len(sink.trades) != 0 {
			t.Error("эмитирована запись сделки при недостаточной ликвидности")
		}
	})

	t.Run("фид без данных", func(t *testing.T) {
		empty := venue.NewSimFeed()
		e.SetPriceFeed(empty)
		defer e.SetPriceFeed(feed)
		_, err := e.ExecuteArbitrage(context.Background(), testController, testAsset, loan, arbParams(t, 1))
		if !errors.Is(err, venue.ErrUnknownSymbol) {
			t.Fatalf("ExecuteArbitrage = %v, want ErrUnknownSymbol", err)
		}
	})

	t.Run("достаточная ликвидность", func(t *testing.T) {
		feed.SetLiquidity(testAsset, decimal.New(2, 18))
		if _, err := e.ExecuteArbitrage(context.Background(), testController, testAsset, loan, arbParams(t, 1)); err != nil {
			t.Fatalf("ExecuteArbitrage = %v, want nil", err)
		}
	})
}

// rogueLender выдаёт займ от чужого имени
type rogueLender struct{ realID string }

func (r *rogueLender) ID() string                                        { return r.realID }
func (r *rogueLender) PremiumFor(amount decimal.Decimal) decimal.Decimal { return decimal.Zero }
func (r *rogueLender) FlashLoan(ctx context.Context, initiatorID, assetID string, amount decimal.Decimal, params []byte, borrower venue.FlashBorrower) error {
	// Представляется другим кредитором
	return borrower.OnFlashLoan(ctx, "impostor", initiatorID, assetID, amount, decimal.Zero, params)
}

// TestOnFlashLoan_Unauthorized проверяет отклонение неопознанных callback'ов
func TestOnFlashLoan_Unauthorized(t *testing.T) {
	e, pool, _, _, _ := newTestEngine(t, Config{})
	registerTestAsset(t, e)
	ctx := context.Background()
	loan := decimal.New(1, 16)

	// Вне займовой сессии: callback от настоящего пула всё равно отклоняется
	err := e.OnFlashLoan(ctx, pool.ID(), e.id, testAsset, loan, decimal.Zero, arbParams(t, 1))
	if !errors.Is(err, ErrUnauthorizedCallback) {
		t.Errorf("OnFlashLoan вне сессии = %v, want ErrUnauthorizedCallback", err)
	}

	// Неизвестный кредитор
	err = e.OnFlashLoan(ctx, "impostor", e.id, testAsset, loan, decimal.Zero, arbParams(t, 1))
	if !errors.Is(err, ErrUnauthorizedCallback) {
		t.Errorf("OnFlashLoan от чужого кредитора = %v, want ErrUnauthorizedCallback", err)
	}

	// Чужой инициатор
	err = e.OnFlashLoan(ctx, pool.ID(), "mallory", testAsset, loan, decimal.Zero, arbParams(t, 1))
	if !errors.Is(err, ErrUnauthorizedCallback) {
		t.Errorf("OnFlashLoan с чужим инициатором = %v, want ErrUnauthorizedCallback", err)
	}

	if kind, ok := KindOf(ErrUnauthorizedCallback); !ok || kind != KindAuthorization {
		t.Errorf("KindOf(ErrUnauthorizedCallback) = %v, %v, want KindAuthorization", kind, ok)
	}
}

// TestExecuteArbitrage_RoguePool проверяет, что подмена кредитора
// внутри займа прерывает операцию без следов
func TestExecuteArbitrage_RoguePool(t *testing.T) {
	a := venue.NewSimVenue("dex-a")
	b := venue.NewSimVenue("dex-b")
	a.SetRate(testAsset, testMid, decimal.NewFromInt(2))
	b.SetRate(testMid, testAsset, decimal.NewFromInt(1))

	sink := &captureSink{}
	e, err := New(Config{Controller: testController}, &rogueLender{realID: "aave-sim"}, []venue.SwapVenue{a, b}, sink, nil)
	if err != nil {
		t.Fatalf("New() = %v", err)
	}
	registerTestAsset(t, e)

	_, err = e.ExecuteArbitrage(context.Background(), testController, testAsset, decimal.New(1, 16), arbParams(t, 1))
	if !errors.Is(err, ErrUnauthorizedCallback) {
		t.Fatalf("ExecuteArbitrage = %v, want ErrUnauthorizedCallback", err)
	}
	s := e.Stats()
	if s.TradesAttempted != 0 || len(sink.trades) != 0 {
		t.Error("следы сделки после отклонённого callback'а")
	}
}

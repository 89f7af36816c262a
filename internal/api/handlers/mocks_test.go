package handlers

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/ChronoCoders/flashloanbot/internal/engine"
	"github.com/ChronoCoders/flashloanbot/internal/models"
	"github.com/ChronoCoders/flashloanbot/internal/repository"
	"github.com/ChronoCoders/flashloanbot/internal/service"
)

// ============ Mock Engine ============

// MockEngine мок для EngineInterface с внедряемыми ошибками
type MockEngine struct {
	depositErr  error
	withdrawErr error
	controlErr  error
	arbitrErr   error

	withdrawAmount decimal.Decimal
	investor       *models.Investor
	investorErr    error
	stats          models.GlobalStats
	assets         []models.SupportedAsset
	outcome        *engine.TradeOutcome

	lastCaller     string
	lastInvestorID string
	lastAmount     decimal.Decimal
	lastReason     string
	lastParams     []byte
}

func NewMockEngine() *MockEngine {
	return &MockEngine{
		withdrawAmount: decimal.NewFromInt(500),
		stats: models.GlobalStats{
			LifecycleState:  "ACTIVE",
			TotalInvestment: decimal.Zero,
		},
	}
}

func (m *MockEngine) Deposit(investorID string, amount decimal.Decimal) error {
	m.lastInvestorID = investorID
	m.lastAmount = amount
	return m.depositErr
}

func (m *MockEngine) WithdrawProfit(investorID string) (decimal.Decimal, error) {
	m.lastInvestorID = investorID
	if m.withdrawErr != nil {
		return decimal.Zero, m.withdrawErr
	}
	return m.withdrawAmount, nil
}

func (m *MockEngine) EmergencyWithdraw(investorID string) (decimal.Decimal, error) {
	m.lastInvestorID = investorID
	if m.withdrawErr != nil {
		return decimal.Zero, m.withdrawErr
	}
	return m.withdrawAmount, nil
}

func (m *MockEngine) Pause(caller, reason string) error {
	m.lastCaller = caller
	m.lastReason = reason
	return m.controlErr
}

func (m *MockEngine) Unpause(caller string) error {
	m.lastCaller = caller
	return m.controlErr
}

func (m *MockEngine) TransferControl(caller, newController string) error {
	m.lastCaller = caller
	return m.controlErr
}

func (m *MockEngine) AddSupportedAsset(caller string, asset models.SupportedAsset) error {
	m.lastCaller = caller
	if m.controlErr != nil {
		return m.controlErr
	}
	m.assets = append(m.assets, asset)
	return nil
}

func (m *MockEngine) ReportLoss(caller string, loss decimal.Decimal) error {
	m.lastCaller = caller
	m.lastAmount = loss
	return m.controlErr
}

func (m *MockEngine) ExecuteArbitrage(ctx context.Context, caller, assetID string, amount decimal.Decimal, params []byte) (*engine.TradeOutcome, error) {
	m.lastCaller = caller
	m.lastAmount = amount
	m.lastParams = params
	if m.arbitrErr != nil {
		return nil, m.arbitrErr
	}
	if m.outcome != nil {
		return m.outcome, nil
	}
	return &engine.TradeOutcome{
		CorrelationID: "corr-1",
		AssetID:       assetID,
		LoanAmount:    amount,
		GrossProfit:   decimal.NewFromInt(100),
	}, nil
}

func (m *MockEngine) Stats() models.GlobalStats {
	return m.stats
}

func (m *MockEngine) InvestorInfo(investorID string) (*models.Investor, error) {
	m.lastInvestorID = investorID
	if m.investorErr != nil {
		return nil, m.investorErr
	}
	return m.investor, nil
}

func (m *MockEngine) SupportedAssets() []models.SupportedAsset {
	return m.assets
}

var _ EngineInterface = (*MockEngine)(nil)

// ============ Mock History Service ============

// MockHistory мок для HistoryInterface
type MockHistory struct {
	history       *service.InvestorHistory
	trades        []*models.TradeEvent
	distributions []*models.DistributionEvent
	emergencies   []*models.EmergencyEvent
	check         *service.DistributionCheck
	err           error
}

func NewMockHistory() *MockHistory {
	return &MockHistory{}
}

func (m *MockHistory) GetInvestorHistory(investorID string) (*service.InvestorHistory, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.history, nil
}

func (m *MockHistory) GetRecentTrades(limit int) ([]*models.TradeEvent, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.trades, nil
}

func (m *MockHistory) GetTradeByCorrelationID(correlationID string) (*models.TradeEvent, error) {
	if m.err != nil {
		return nil, m.err
	}
	for _, tr := range m.trades {
		if tr.CorrelationID == correlationID {
			return tr, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *MockHistory) GetRecentDistributions(limit int) ([]*models.DistributionEvent, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.distributions, nil
}

func (m *MockHistory) GetEmergencyLog(limit int) ([]*models.EmergencyEvent, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.emergencies, nil
}

func (m *MockHistory) VerifyDistribution(seq uint64) (*service.DistributionCheck, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.check, nil
}

var _ HistoryInterface = (*MockHistory)(nil)

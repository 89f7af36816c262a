package service

import (
	"github.com/ChronoCoders/flashloanbot/internal/models"
	"github.com/ChronoCoders/flashloanbot/internal/repository"
)

// ============ Mock DepositRepository ============

type MockDepositRepository struct {
	deposits  []*models.DepositEvent
	createErr error
	getErr    error
}

func NewMockDepositRepository() *MockDepositRepository {
	return &MockDepositRepository{}
}

func (m *MockDepositRepository) Create(ev *models.DepositEvent) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.deposits = append(m.deposits, ev)
	return nil
}

func (m *MockDepositRepository) GetByInvestor(investorID string) ([]*models.DepositEvent, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	var result []*models.DepositEvent
	for _, d := range m.deposits {
		if d.InvestorID == investorID {
			result = append(result, d)
		}
	}
	return result, nil
}

func (m *MockDepositRepository) GetRecent(limit int) ([]*models.DepositEvent, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	if len(m.deposits) < limit {
		limit = len(m.deposits)
	}
	return m.deposits[len(m.deposits)-limit:], nil
}

// ============ Mock TradeRepository ============

type MockTradeRepository struct {
	trades    []*models.TradeEvent
	createErr error
	getErr    error
}

func NewMockTradeRepository() *MockTradeRepository {
	return &MockTradeRepository{}
}

func (m *MockTradeRepository) Create(ev *models.TradeEvent) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.trades = append(m.trades, ev)
	return nil
}

func (m *MockTradeRepository) GetByCorrelationID(correlationID string) (*models.TradeEvent, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	for _, t := range m.trades {
		if t.CorrelationID == correlationID {
			return t, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *MockTradeRepository) GetRecent(limit int) ([]*models.TradeEvent, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	if len(m.trades) < limit {
		limit = len(m.trades)
	}
	return m.trades[len(m.trades)-limit:], nil
}

// ============ Mock DistributionRepository ============

type MockDistributionRepository struct {
	distributions []*models.DistributionEvent
	createErr     error
	getErr        error
	creditedSum   string
}

func NewMockDistributionRepository() *MockDistributionRepository {
	return &MockDistributionRepository{creditedSum: "0"}
}

func (m *MockDistributionRepository) Create(ev *models.DistributionEvent) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.distributions = append(m.distributions, ev)
	return nil
}

func (m *MockDistributionRepository) GetBySeq(seq uint64) (*models.DistributionEvent, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	for _, d := range m.distributions {
		if d.Seq == seq {
			return d, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *MockDistributionRepository) GetRecent(limit int) ([]*models.DistributionEvent, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	if len(m.distributions) < limit {
		limit = len(m.distributions)
	}
	return m.distributions[len(m.distributions)-limit:], nil
}

func (m *MockDistributionRepository) SumCreditedByInvestor(investorID string) (string, error) {
	if m.getErr != nil {
		return "", m.getErr
	}
	return m.creditedSum, nil
}

// ============ Mock EmergencyRepository ============

type MockEmergencyRepository struct {
	events    []*models.EmergencyEvent
	createErr error
	getErr    error
}

func NewMockEmergencyRepository() *MockEmergencyRepository {
	return &MockEmergencyRepository{}
}

func (m *MockEmergencyRepository) Create(ev *models.EmergencyEvent) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.events = append(m.events, ev)
	return nil
}

func (m *MockEmergencyRepository) GetRecent(limit int) ([]*models.EmergencyEvent, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	if len(m.events) < limit {
		limit = len(m.events)
	}
	return m.events[len(m.events)-limit:], nil
}

// ============ Mock WithdrawalRepository ============

type MockWithdrawalRepository struct {
	withdrawals []*models.WithdrawalEvent
	createErr   error
	getErr      error
}

func NewMockWithdrawalRepository() *MockWithdrawalRepository {
	return &MockWithdrawalRepository{}
}

func (m *MockWithdrawalRepository) Create(ev *models.WithdrawalEvent) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.withdrawals = append(m.withdrawals, ev)
	return nil
}

func (m *MockWithdrawalRepository) GetByInvestor(investorID string) ([]*models.WithdrawalEvent, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	var result []*models.WithdrawalEvent
	for _, w := range m.withdrawals {
		if w.InvestorID == investorID {
			result = append(result, w)
		}
	}
	return result, nil
}

// ============ Mock EventBroadcaster ============

type MockBroadcaster struct {
	deposits      []*models.DepositEvent
	trades        []*models.TradeEvent
	distributions []*models.DistributionEvent
	emergencies   []*models.EmergencyEvent
	withdrawals   []*models.WithdrawalEvent
}

func NewMockBroadcaster() *MockBroadcaster {
	return &MockBroadcaster{}
}

func (m *MockBroadcaster) BroadcastDeposit(ev *models.DepositEvent) {
	m.deposits = append(m.deposits, ev)
}

func (m *MockBroadcaster) BroadcastTrade(ev *models.TradeEvent) {
	m.trades = append(m.trades, ev)
}

func (m *MockBroadcaster) BroadcastDistribution(ev *models.DistributionEvent) {
	m.distributions = append(m.distributions, ev)
}

func (m *MockBroadcaster) BroadcastEmergency(ev *models.EmergencyEvent) {
	m.emergencies = append(m.emergencies, ev)
}

func (m *MockBroadcaster) BroadcastWithdrawal(ev *models.WithdrawalEvent) {
	m.withdrawals = append(m.withdrawals, ev)
}

// Компиляционные проверки соответствия интерфейсам
var _ DepositRepositoryInterface = (*MockDepositRepository)(nil)
var _ TradeRepositoryInterface = (*MockTradeRepository)(nil)
var _ DistributionRepositoryInterface = (*MockDistributionRepository)(nil)
var _ EmergencyRepositoryInterface = (*MockEmergencyRepository)(nil)
var _ WithdrawalRepositoryInterface = (*MockWithdrawalRepository)(nil)
var _ EventBroadcaster = (*MockBroadcaster)(nil)

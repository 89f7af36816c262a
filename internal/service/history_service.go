package service

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/ChronoCoders/flashloanbot/internal/models"
	"github.com/ChronoCoders/flashloanbot/pkg/utils"
)

// InvestorHistory - агрегированная история вкладчика по журналам БД
type InvestorHistory struct {
	InvestorID    string                    `json:"investor_id"`
	Deposits      []*models.DepositEvent    `json:"deposits"`
	Withdrawals   []*models.WithdrawalEvent `json:"withdrawals"`
	TotalCredited decimal.Decimal           `json:"total_credited"`
}

// DistributionCheck - результат пересчёта распределения по журналу.
//
// Consistent=true означает, что сохранённые доли совпадают с
// пересчитанными из пула и вкладов, а доли с остатком дают ровно
// инвесторский пул.
type DistributionCheck struct {
	Seq        uint64   `json:"seq"`
	Consistent bool     `json:"consistent"`
	Problems   []string `json:"problems,omitempty"`
}

// HistoryService предоставляет read-сторону журналов: историю
// вкладчиков, ленты сделок и распределений, сверку распределений.
type HistoryService struct {
	depositRepo      DepositRepositoryInterface
	tradeRepo        TradeRepositoryInterface
	distributionRepo DistributionRepositoryInterface
	emergencyRepo    EmergencyRepositoryInterface
	withdrawalRepo   WithdrawalRepositoryInterface
}

// NewHistoryService создает новый экземпляр HistoryService
func NewHistoryService(
	depositRepo DepositRepositoryInterface,
	tradeRepo TradeRepositoryInterface,
	distributionRepo DistributionRepositoryInterface,
	emergencyRepo EmergencyRepositoryInterface,
	withdrawalRepo WithdrawalRepositoryInterface,
) *HistoryService {
	return &HistoryService{
		depositRepo:      depositRepo,
		tradeRepo:        tradeRepo,
		distributionRepo: distributionRepo,
		emergencyRepo:    emergencyRepo,
		withdrawalRepo:   withdrawalRepo,
	}
}

// GetInvestorHistory возвращает депозиты, выводы и суммарно
// начисленную прибыль вкладчика
func (s *HistoryService) GetInvestorHistory(investorID string) (*InvestorHistory, error) {
	if err := utils.ValidateIdentity(investorID); err != nil {
		return nil, err
	}

	deposits, err := s.depositRepo.GetByInvestor(investorID)
	if err != nil {
		return nil, fmt.Errorf("load deposits: %w", err)
	}

	withdrawals, err := s.withdrawalRepo.GetByInvestor(investorID)
	if err != nil {
		return nil, fmt.Errorf("load withdrawals: %w", err)
	}

	creditedStr, err := s.distributionRepo.SumCreditedByInvestor(investorID)
	if err != nil {
		return nil, fmt.Errorf("sum credited: %w", err)
	}
	credited, err := decimal.NewFromString(creditedStr)
	if err != nil {
		return nil, fmt.Errorf("parse credited sum %q: %w", creditedStr, err)
	}

	return &InvestorHistory{
		InvestorID:    investorID,
		Deposits:      deposits,
		Withdrawals:   withdrawals,
		TotalCredited: credited,
	}, nil
}

// GetRecentTrades возвращает последние сделки
func (s *HistoryService) GetRecentTrades(limit int) ([]*models.TradeEvent, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	return s.tradeRepo.GetRecent(limit)
}

// GetTradeByCorrelationID возвращает сделку по корреляционному идентификатору
func (s *HistoryService) GetTradeByCorrelationID(correlationID string) (*models.TradeEvent, error) {
	return s.tradeRepo.GetByCorrelationID(correlationID)
}

// GetRecentDistributions возвращает последние распределения с долями
func (s *HistoryService) GetRecentDistributions(limit int) ([]*models.DistributionEvent, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	return s.distributionRepo.GetRecent(limit)
}

// GetEmergencyLog возвращает журнал аварийного режима
func (s *HistoryService) GetEmergencyLog(limit int) ([]*models.EmergencyEvent, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	return s.emergencyRepo.GetRecent(limit)
}

// VerifyDistribution пересчитывает распределение из журнала и
// сверяет его с сохранёнными долями.
//
// Проверки:
// - пулы в сумме дают валовую прибыль
// - каждая доля равна floor(investorPool * invested / total)
// - доли плюс остаток дают ровно инвесторский пул
func (s *HistoryService) VerifyDistribution(seq uint64) (*DistributionCheck, error) {
	ev, err := s.distributionRepo.GetBySeq(seq)
	if err != nil {
		return nil, err
	}

	check := &DistributionCheck{Seq: seq, Consistent: true}
	fail := func(format string, args ...interface{}) {
		check.Consistent = false
		check.Problems = append(check.Problems, fmt.Sprintf(format, args...))
	}

	pools := ev.InvestorPool.Add(ev.MaintainerPool).Add(ev.OperationsPool)
	if !pools.Equal(ev.GrossProfit) {
		fail("pools sum to %s, gross profit is %s", pools, ev.GrossProfit)
	}

	creditedTotal := decimal.Zero
	for _, sh := range ev.Shares {
		expected := utils.ProRataFloor(ev.InvestorPool, sh.Invested, ev.TotalInvestment)
		if !sh.Credited.Equal(expected) {
			fail("share %s credited %s, recomputed %s", sh.InvestorID, sh.Credited, expected)
		}
		creditedTotal = creditedTotal.Add(sh.Credited)
	}

	if !creditedTotal.Add(ev.Residual).Equal(ev.InvestorPool) {
		fail("credited %s + residual %s does not reconstruct investor pool %s",
			creditedTotal, ev.Residual, ev.InvestorPool)
	}

	return check, nil
}

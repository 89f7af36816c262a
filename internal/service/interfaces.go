package service

import (
	"github.com/ChronoCoders/flashloanbot/internal/models"
	"github.com/ChronoCoders/flashloanbot/internal/repository"
)

// DepositRepositoryInterface определяет интерфейс репозитория депозитов
type DepositRepositoryInterface interface {
	Create(ev *models.DepositEvent) error
	GetByInvestor(investorID string) ([]*models.DepositEvent, error)
	GetRecent(limit int) ([]*models.DepositEvent, error)
}

// TradeRepositoryInterface определяет интерфейс репозитория сделок
type TradeRepositoryInterface interface {
	Create(ev *models.TradeEvent) error
	GetByCorrelationID(correlationID string) (*models.TradeEvent, error)
	GetRecent(limit int) ([]*models.TradeEvent, error)
}

// DistributionRepositoryInterface определяет интерфейс репозитория распределений
type DistributionRepositoryInterface interface {
	Create(ev *models.DistributionEvent) error
	GetBySeq(seq uint64) (*models.DistributionEvent, error)
	GetRecent(limit int) ([]*models.DistributionEvent, error)
	SumCreditedByInvestor(investorID string) (string, error)
}

// EmergencyRepositoryInterface определяет интерфейс журнала аварийного режима
type EmergencyRepositoryInterface interface {
	Create(ev *models.EmergencyEvent) error
	GetRecent(limit int) ([]*models.EmergencyEvent, error)
}

// WithdrawalRepositoryInterface определяет интерфейс журнала выводов
type WithdrawalRepositoryInterface interface {
	Create(ev *models.WithdrawalEvent) error
	GetByInvestor(investorID string) ([]*models.WithdrawalEvent, error)
}

// Проверяем, что реальные репозитории реализуют интерфейсы
var _ DepositRepositoryInterface = (*repository.DepositRepository)(nil)
var _ TradeRepositoryInterface = (*repository.TradeRepository)(nil)
var _ DistributionRepositoryInterface = (*repository.DistributionRepository)(nil)
var _ EmergencyRepositoryInterface = (*repository.EmergencyRepository)(nil)
var _ WithdrawalRepositoryInterface = (*repository.WithdrawalRepository)(nil)

// ============ Интерфейсы сервисов для Dependency Injection ============

// HistoryServiceInterface определяет интерфейс сервиса истории
type HistoryServiceInterface interface {
	GetInvestorHistory(investorID string) (*InvestorHistory, error)
	GetRecentTrades(limit int) ([]*models.TradeEvent, error)
	GetTradeByCorrelationID(correlationID string) (*models.TradeEvent, error)
	GetRecentDistributions(limit int) ([]*models.DistributionEvent, error)
	GetEmergencyLog(limit int) ([]*models.EmergencyEvent, error)
	VerifyDistribution(seq uint64) (*DistributionCheck, error)
}

var _ HistoryServiceInterface = (*HistoryService)(nil)

package service

import (
	"go.uber.org/zap"

	"github.com/ChronoCoders/flashloanbot/internal/engine"
	"github.com/ChronoCoders/flashloanbot/internal/models"
)

// Проверяем, что сервис реализует приёмник событий движка
var _ engine.EventSink = (*ReportingService)(nil)

// EventBroadcaster - интерфейс для отправки событий движка через WebSocket
type EventBroadcaster interface {
	BroadcastDeposit(ev *models.DepositEvent)
	BroadcastTrade(ev *models.TradeEvent)
	BroadcastDistribution(ev *models.DistributionEvent)
	BroadcastEmergency(ev *models.EmergencyEvent)
	BroadcastWithdrawal(ev *models.WithdrawalEvent)
}

// ReportingService принимает события движка, сохраняет их в БД
// и транслирует подключенным WebSocket-клиентам.
//
// Движок вызывает методы синхронно после фиксации состояния,
// поэтому сбой записи здесь не откатывает операцию: событие
// логируется с ошибкой, но движок продолжает работу. Состояние
// в памяти остаётся источником истины, БД - журналом.
type ReportingService struct {
	depositRepo      DepositRepositoryInterface
	tradeRepo        TradeRepositoryInterface
	distributionRepo DistributionRepositoryInterface
	emergencyRepo    EmergencyRepositoryInterface
	withdrawalRepo   WithdrawalRepositoryInterface
	wsHub            EventBroadcaster
	logger           *zap.Logger
}

// NewReportingService создает новый экземпляр ReportingService
func NewReportingService(
	depositRepo DepositRepositoryInterface,
	tradeRepo TradeRepositoryInterface,
	distributionRepo DistributionRepositoryInterface,
	emergencyRepo EmergencyRepositoryInterface,
	withdrawalRepo WithdrawalRepositoryInterface,
	logger *zap.Logger,
) *ReportingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportingService{
		depositRepo:      depositRepo,
		tradeRepo:        tradeRepo,
		distributionRepo: distributionRepo,
		emergencyRepo:    emergencyRepo,
		withdrawalRepo:   withdrawalRepo,
		logger:           logger,
	}
}

// SetWebSocketHub устанавливает WebSocket hub для трансляции событий.
//
// Вызывается после инициализации Hub в main.go:
//
//	reporting := service.NewReportingService(...)
//	reporting.SetWebSocketHub(wsHub)
func (s *ReportingService) SetWebSocketHub(hub EventBroadcaster) {
	s.wsHub = hub
}

// RecordDeposit сохраняет и транслирует событие депозита
func (s *ReportingService) RecordDeposit(ev models.DepositEvent) {
	if err := s.depositRepo.Create(&ev); err != nil {
		s.logger.Error("failed to persist deposit event",
			zap.Uint64("seq", ev.Seq),
			zap.String("investor_id", ev.InvestorID),
			zap.Error(err))
	}
	if s.wsHub != nil {
		s.wsHub.BroadcastDeposit(&ev)
	}
}

// RecordTrade сохраняет и транслирует событие сделки
func (s *ReportingService) RecordTrade(ev models.TradeEvent) {
	if err := s.tradeRepo.Create(&ev); err != nil {
		s.logger.Error("failed to persist trade event",
			zap.Uint64("seq", ev.Seq),
			zap.String("correlation_id", ev.CorrelationID),
			zap.Error(err))
	}
	if s.wsHub != nil {
		s.wsHub.BroadcastTrade(&ev)
	}
}

// RecordDistribution сохраняет и транслирует распределение прибыли
func (s *ReportingService) RecordDistribution(ev models.DistributionEvent) {
	if err := s.distributionRepo.Create(&ev); err != nil {
		s.logger.Error("failed to persist distribution event",
			zap.Uint64("seq", ev.Seq),
			zap.String("correlation_id", ev.CorrelationID),
			zap.Error(err))
	}
	if s.wsHub != nil {
		s.wsHub.BroadcastDistribution(&ev)
	}
}

// RecordEmergency сохраняет и транслирует аварийное событие
func (s *ReportingService) RecordEmergency(ev models.EmergencyEvent) {
	if err := s.emergencyRepo.Create(&ev); err != nil {
		s.logger.Error("failed to persist emergency event",
			zap.Uint64("seq", ev.Seq),
			zap.Bool("activated", ev.Activated),
			zap.Error(err))
	}
	if s.wsHub != nil {
		s.wsHub.BroadcastEmergency(&ev)
	}
}

// RecordWithdrawal сохраняет и транслирует событие вывода
func (s *ReportingService) RecordWithdrawal(ev models.WithdrawalEvent) {
	if err := s.withdrawalRepo.Create(&ev); err != nil {
		s.logger.Error("failed to persist withdrawal event",
			zap.Uint64("seq", ev.Seq),
			zap.String("kind", ev.Kind),
			zap.String("investor_id", ev.InvestorID),
			zap.Error(err))
	}
	if s.wsHub != nil {
		s.wsHub.BroadcastWithdrawal(&ev)
	}
}

package engine

import "github.com/ChronoCoders/flashloanbot/internal/models"

// EventSink - интерфейс внешнего reporting-коллаборатора.
//
// Реализуется сервисом отчётности (internal/service), который
// персистит записи в реляционное хранилище и рассылает уведомления.
// Записи эмитируются ПОСЛЕ фиксации мутации; им достаточно данных,
// чтобы потребитель независимо восстановил распределение прибыли.
//
// ВАЖНО: sink вызывается внутри защищённой операции. Попытка sink'а
// перезайти в мутирующий метод движка отклоняется ReentrancyGuard.
type EventSink interface {
	// RecordDeposit - принят депозит
	RecordDeposit(ev models.DepositEvent)

	// RecordTrade - исполнен арбитраж
	RecordTrade(ev models.TradeEvent)

	// RecordDistribution - разнесена прибыль
	RecordDistribution(ev models.DistributionEvent)

	// RecordEmergency - активация/снятие аварийного режима
	RecordEmergency(ev models.EmergencyEvent)

	// RecordWithdrawal - вывод средств вкладчиком
	RecordWithdrawal(ev models.WithdrawalEvent)
}

// nopSink - заглушка, когда reporting не подключен
type nopSink struct{}

func (nopSink) RecordDeposit(models.DepositEvent)           {}
func (nopSink) RecordTrade(models.TradeEvent)               {}
func (nopSink) RecordDistribution(models.DistributionEvent) {}
func (nopSink) RecordEmergency(models.EmergencyEvent)       {}
func (nopSink) RecordWithdrawal(models.WithdrawalEvent)     {}

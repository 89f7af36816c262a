package websocket

import (
	"time"

	"github.com/ChronoCoders/flashloanbot/internal/models"
)

// MessageType определяет тип WebSocket сообщения
type MessageType string

// Типы WebSocket сообщений
const (
	// MessageTypeDeposit - принят новый депозит
	MessageTypeDeposit MessageType = "deposit"

	// MessageTypeTrade - исполнен арбитраж
	// Отправляется после фиксации сделки в журнале движка
	MessageTypeTrade MessageType = "trade"

	// MessageTypeDistribution - разнесена прибыль по вкладчикам
	MessageTypeDistribution MessageType = "distribution"

	// MessageTypeEmergency - активация или снятие аварийного режима
	MessageTypeEmergency MessageType = "emergency"

	// MessageTypeWithdrawal - вывод средств вкладчиком
	MessageTypeWithdrawal MessageType = "withdrawal"
)

// BaseMessage - базовая структура для всех WebSocket сообщений
type BaseMessage struct {
	Type      MessageType `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
}

// DepositMessage - сообщение о новом депозите
type DepositMessage struct {
	BaseMessage
	Data *models.DepositEvent `json:"data"`
}

// TradeMessage - сообщение об исполненном арбитраже.
//
// CorrelationID внутри события позволяет frontend связать сделку
// с последующим сообщением distribution.
type TradeMessage struct {
	BaseMessage
	Data *models.TradeEvent `json:"data"`
}

// DistributionMessage - сообщение о распределении прибыли
type DistributionMessage struct {
	BaseMessage
	Data *models.DistributionEvent `json:"data"`
}

// EmergencyMessage - сообщение об изменении аварийного режима
type EmergencyMessage struct {
	BaseMessage
	Data *models.EmergencyEvent `json:"data"`
}

// WithdrawalMessage - сообщение о выводе средств
type WithdrawalMessage struct {
	BaseMessage
	Data *models.WithdrawalEvent `json:"data"`
}

// ============ Фабричные функции для создания сообщений ============

func newBase(t MessageType) BaseMessage {
	return BaseMessage{Type: t, Timestamp: time.Now()}
}

// NewDepositMessage создает сообщение о депозите
func NewDepositMessage(ev *models.DepositEvent) *DepositMessage {
	return &DepositMessage{BaseMessage: newBase(MessageTypeDeposit), Data: ev}
}

// NewTradeMessage создает сообщение о сделке
func NewTradeMessage(ev *models.TradeEvent) *TradeMessage {
	return &TradeMessage{BaseMessage: newBase(MessageTypeTrade), Data: ev}
}

// NewDistributionMessage создает сообщение о распределении
func NewDistributionMessage(ev *models.DistributionEvent) *DistributionMessage {
	return &DistributionMessage{BaseMessage: newBase(MessageTypeDistribution), Data: ev}
}

// NewEmergencyMessage создает сообщение об аварийном режиме
func NewEmergencyMessage(ev *models.EmergencyEvent) *EmergencyMessage {
	return &EmergencyMessage{BaseMessage: newBase(MessageTypeEmergency), Data: ev}
}

// NewWithdrawalMessage создает сообщение о выводе
func NewWithdrawalMessage(ev *models.WithdrawalEvent) *WithdrawalMessage {
	return &WithdrawalMessage{BaseMessage: newBase(MessageTypeWithdrawal), Data: ev}
}

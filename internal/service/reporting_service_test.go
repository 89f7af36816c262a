package service

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/ChronoCoders/flashloanbot/internal/models"
)

type reportingFixture struct {
	deposits      *MockDepositRepository
	trades        *MockTradeRepository
	distributions *MockDistributionRepository
	emergencies   *MockEmergencyRepository
	withdrawals   *MockWithdrawalRepository
	hub           *MockBroadcaster
	svc           *ReportingService
}

func newReportingFixture() *reportingFixture {
	f := &reportingFixture{
		deposits:      NewMockDepositRepository(),
		trades:        NewMockTradeRepository(),
		distributions: NewMockDistributionRepository(),
		emergencies:   NewMockEmergencyRepository(),
		withdrawals:   NewMockWithdrawalRepository(),
		hub:           NewMockBroadcaster(),
	}
	f.svc = NewReportingService(f.deposits, f.trades, f.distributions, f.emergencies, f.withdrawals, zap.NewNop())
	f.svc.SetWebSocketHub(f.hub)
	return f
}

func TestReportingServiceRecordDeposit(t *testing.T) {
	f := newReportingFixture()

	f.svc.RecordDeposit(models.DepositEvent{
		Seq:        1,
		InvestorID: "investor-1",
		Amount:     decimal.New(1, 16),
		Timestamp:  time.Now(),
	})

	if len(f.deposits.deposits) != 1 {
		t.Fatalf("persisted %d deposits, want 1", len(f.deposits.deposits))
	}
	if len(f.hub.deposits) != 1 {
		t.Fatalf("broadcast %d deposits, want 1", len(f.hub.deposits))
	}
	if f.hub.deposits[0].InvestorID != "investor-1" {
		t.Errorf("broadcast investor = %q, want investor-1", f.hub.deposits[0].InvestorID)
	}
}

func TestReportingServiceRecordTradeAndDistribution(t *testing.T) {
	f := newReportingFixture()

	f.svc.RecordTrade(models.TradeEvent{Seq: 2, CorrelationID: "corr-1"})
	f.svc.RecordDistribution(models.DistributionEvent{Seq: 3, CorrelationID: "corr-1"})

	if len(f.trades.trades) != 1 || len(f.distributions.distributions) != 1 {
		t.Fatalf("persisted trades=%d distributions=%d, want 1/1",
			len(f.trades.trades), len(f.distributions.distributions))
	}
	if f.hub.trades[0].CorrelationID != f.hub.distributions[0].CorrelationID {
		t.Error("trade and distribution correlation IDs diverge")
	}
}

func TestReportingServicePersistErrorDoesNotBlockBroadcast(t *testing.T) {
	f := newReportingFixture()
	f.withdrawals.createErr = errors.New("disk full")

	// a failed insert must not prevent the event from reaching clients
	f.svc.RecordWithdrawal(models.WithdrawalEvent{
		Seq:        4,
		Kind:       models.EventEmergencyWithdrawn,
		InvestorID: "investor-1",
		Amount:     decimal.New(1, 16),
	})

	if len(f.withdrawals.withdrawals) != 0 {
		t.Error("withdrawal should not be persisted on repository error")
	}
	if len(f.hub.withdrawals) != 1 {
		t.Fatalf("broadcast %d withdrawals, want 1", len(f.hub.withdrawals))
	}
}

func TestReportingServiceWithoutHub(t *testing.T) {
	f := newReportingFixture()
	f.svc.wsHub = nil

	// no panic without a hub, persistence still works
	f.svc.RecordEmergency(models.EmergencyEvent{Seq: 5, Activated: true, Reason: "manual"})

	if len(f.emergencies.events) != 1 {
		t.Fatalf("persisted %d emergency events, want 1", len(f.emergencies.events))
	}
}

package handlers

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/ChronoCoders/flashloanbot/internal/engine"
	"github.com/ChronoCoders/flashloanbot/internal/models"
	"github.com/ChronoCoders/flashloanbot/internal/service"
)

// EngineInterface определяет операции движка, используемые handlers
type EngineInterface interface {
	Deposit(investorID string, amount decimal.Decimal) error
	WithdrawProfit(investorID string) (decimal.Decimal, error)
	EmergencyWithdraw(investorID string) (decimal.Decimal, error)
	Pause(caller, reason string) error
	Unpause(caller string) error
	TransferControl(caller, newController string) error
	AddSupportedAsset(caller string, asset models.SupportedAsset) error
	ReportLoss(caller string, loss decimal.Decimal) error
	ExecuteArbitrage(ctx context.Context, caller, assetID string, amount decimal.Decimal, params []byte) (*engine.TradeOutcome, error)
	Stats() models.GlobalStats
	InvestorInfo(investorID string) (*models.Investor, error)
	SupportedAssets() []models.SupportedAsset
}

// Проверяем, что движок реализует интерфейс
var _ EngineInterface = (*engine.Engine)(nil)

// HistoryInterface определяет read-операции журналов, используемые handlers
type HistoryInterface = service.HistoryServiceInterface

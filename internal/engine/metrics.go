package engine

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ============================================================
// Prometheus метрики движка
// ============================================================
//
// Использование:
// - Grafana дашборды для визуализации
// - Alertmanager: алерты на всплеск reentrancy_blocked и emergency

// DepositsTotal - количество принятых депозитов
var DepositsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: "flashloanbot",
		Subsystem: "ledger",
		Name:      "deposits_total",
		Help:      "Total number of accepted deposits",
	},
)

// WithdrawalsTotal - выводы средств по видам
var WithdrawalsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "flashloanbot",
		Subsystem: "ledger",
		Name:      "withdrawals_total",
		Help:      "Total number of withdrawals",
	},
	[]string{"kind"}, // profit, emergency
)

// TradesTotal - арбитражные попытки по результату
var TradesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "flashloanbot",
		Subsystem: "arbitrage",
		Name:      "trades_total",
		Help:      "Total number of arbitrage attempts",
	},
	[]string{"result"}, // success, economic_abort, failed
)

// ProfitDistributedTotal - распределённая прибыль в wei
var ProfitDistributedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: "flashloanbot",
		Subsystem: "arbitrage",
		Name:      "profit_distributed_wei_total",
		Help:      "Total gross profit distributed, in wei",
	},
)

// ReentrancyBlockedTotal - отбитые реентерабельные вызовы
var ReentrancyBlockedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: "flashloanbot",
		Subsystem: "guard",
		Name:      "reentrancy_blocked_total",
		Help:      "Total number of rejected reentrant calls",
	},
)

// EmergencyActivationsTotal - активации аварийного режима по причинам
var EmergencyActivationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "flashloanbot",
		Subsystem: "lifecycle",
		Name:      "emergency_activations_total",
		Help:      "Total number of emergency mode activations",
	},
	[]string{"reason"}, // manual, daily_loss
)

// TotalInvestmentGauge - текущий объём инвестиций в wei
var TotalInvestmentGauge = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: "flashloanbot",
		Subsystem: "ledger",
		Name:      "total_investment_wei",
		Help:      "Current total investment held by the ledger, in wei",
	},
)

// InvestorsGauge - число вкладчиков за всю историю
var InvestorsGauge = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: "flashloanbot",
		Subsystem: "ledger",
		Name:      "distinct_investors",
		Help:      "Number of distinct investor accounts ever created",
	},
)

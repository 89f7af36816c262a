package repository

import (
	"database/sql"
	"errors"

	"github.com/ChronoCoders/flashloanbot/internal/models"
)

// TradeRepository - работа с таблицей trades (записи TRADE_EXECUTED)
type TradeRepository struct {
	db *sql.DB
}

// NewTradeRepository создает новый экземпляр репозитория
func NewTradeRepository(db *sql.DB) *TradeRepository {
	return &TradeRepository{db: db}
}

// Create сохраняет запись об исполненном арбитраже
func (r *TradeRepository) Create(ev *models.TradeEvent) error {
	query := `
		INSERT INTO trades (seq, correlation_id, asset_id, intermediate, buy_venue, sell_venue, loan_amount, loan_premium, gross_profit, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.db.Exec(
		query,
		ev.Seq,
		ev.CorrelationID,
		ev.AssetID,
		ev.Intermediate,
		ev.BuyVenue,
		ev.SellVenue,
		ev.LoanAmount,
		ev.LoanPremium,
		ev.GrossProfit,
		ev.Timestamp,
	)
	return err
}

// GetByCorrelationID возвращает сделку по идентификатору корреляции
func (r *TradeRepository) GetByCorrelationID(correlationID string) (*models.TradeEvent, error) {
	query := `
		SELECT seq, correlation_id, asset_id, intermediate, buy_venue, sell_venue, loan_amount, loan_premium, gross_profit, created_at
		FROM trades
		WHERE correlation_id = $1`

	ev := &models.TradeEvent{}
	err := r.db.QueryRow(query, correlationID).Scan(
		&ev.Seq,
		&ev.CorrelationID,
		&ev.AssetID,
		&ev.Intermediate,
		&ev.BuyVenue,
		&ev.SellVenue,
		&ev.LoanAmount,
		&ev.LoanPremium,
		&ev.GrossProfit,
		&ev.Timestamp,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return ev, nil
}

// GetRecent возвращает последние сделки
func (r *TradeRepository) GetRecent(limit int) ([]*models.TradeEvent, error) {
	query := `
		SELECT seq, correlation_id, asset_id, intermediate, buy_venue, sell_venue, loan_amount, loan_premium, gross_profit, created_at
		FROM trades
		ORDER BY seq DESC
		LIMIT $1`

	rows, err := r.db.Query(query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var trades []*models.TradeEvent
	for rows.Next() {
		ev := &models.TradeEvent{}
		err := rows.Scan(
			&ev.Seq,
			&ev.CorrelationID,
			&ev.AssetID,
			&ev.Intermediate,
			&ev.BuyVenue,
			&ev.SellVenue,
			&ev.LoanAmount,
			&ev.LoanPremium,
			&ev.GrossProfit,
			&ev.Timestamp,
		)
		if err != nil {
			return nil, err
		}
		trades = append(trades, ev)
	}
	return trades, rows.Err()
}

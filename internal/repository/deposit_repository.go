package repository

import (
	"database/sql"
	"errors"

	"github.com/ChronoCoders/flashloanbot/internal/models"
)

// Ошибки репозиториев
var (
	ErrNotFound = errors.New("record not found")
)

// DepositRepository - работа с таблицей deposits.
//
// Таблица зеркалирует записи DEPOSIT_RECEIVED движка: по ней внешние
// потребители сверяют вклады, не читая состояние реестра.
type DepositRepository struct {
	db *sql.DB
}

// NewDepositRepository создает новый экземпляр репозитория
func NewDepositRepository(db *sql.DB) *DepositRepository {
	return &DepositRepository{db: db}
}

// Create сохраняет запись о депозите
func (r *DepositRepository) Create(ev *models.DepositEvent) error {
	query := `
		INSERT INTO deposits (seq, investor_id, amount, created_at)
		VALUES ($1, $2, $3, $4)`

	_, err := r.db.Exec(query, ev.Seq, ev.InvestorID, ev.Amount, ev.Timestamp)
	return err
}

// GetByInvestor возвращает депозиты вкладчика в порядке поступления
func (r *DepositRepository) GetByInvestor(investorID string) ([]*models.DepositEvent, error) {
	query := `
		SELECT seq, investor_id, amount, created_at
		FROM deposits
		WHERE investor_id = $1
		ORDER BY seq`

	rows, err := r.db.Query(query, investorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var deposits []*models.DepositEvent
	for rows.Next() {
		ev := &models.DepositEvent{}
		if err := rows.Scan(&ev.Seq, &ev.InvestorID, &ev.Amount, &ev.Timestamp); err != nil {
			return nil, err
		}
		deposits = append(deposits, ev)
	}
	return deposits, rows.Err()
}

// GetRecent возвращает последние депозиты
func (r *DepositRepository) GetRecent(limit int) ([]*models.DepositEvent, error) {
	query := `
		SELECT seq, investor_id, amount, created_at
		FROM deposits
		ORDER BY seq DESC
		LIMIT $1`

	rows, err := r.db.Query(query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var deposits []*models.DepositEvent
	for rows.Next() {
		ev := &models.DepositEvent{}
		if err := rows.Scan(&ev.Seq, &ev.InvestorID, &ev.Amount, &ev.Timestamp); err != nil {
			return nil, err
		}
		deposits = append(deposits, ev)
	}
	return deposits, rows.Err()
}

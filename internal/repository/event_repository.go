package repository

import (
	"database/sql"

	"github.com/ChronoCoders/flashloanbot/internal/models"
)

// EmergencyRepository - журнал активаций и снятий аварийного режима
type EmergencyRepository struct {
	db *sql.DB
}

// NewEmergencyRepository создает новый экземпляр репозитория
func NewEmergencyRepository(db *sql.DB) *EmergencyRepository {
	return &EmergencyRepository{db: db}
}

// Create сохраняет аварийную запись
func (r *EmergencyRepository) Create(ev *models.EmergencyEvent) error {
	query := `
		INSERT INTO emergency_events (seq, activated, reason, created_at)
		VALUES ($1, $2, $3, $4)`

	_, err := r.db.Exec(query, ev.Seq, ev.Activated, ev.Reason, ev.Timestamp)
	return err
}

// GetRecent возвращает последние аварийные записи
func (r *EmergencyRepository) GetRecent(limit int) ([]*models.EmergencyEvent, error) {
	query := `
		SELECT seq, activated, reason, created_at
		FROM emergency_events
		ORDER BY seq DESC
		LIMIT $1`

	rows, err := r.db.Query(query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*models.EmergencyEvent
	for rows.Next() {
		ev := &models.EmergencyEvent{}
		if err := rows.Scan(&ev.Seq, &ev.Activated, &ev.Reason, &ev.Timestamp); err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

// WithdrawalRepository - журнал выводов средств (прибыль и аварийные)
type WithdrawalRepository struct {
	db *sql.DB
}

// NewWithdrawalRepository создает новый экземпляр репозитория
func NewWithdrawalRepository(db *sql.DB) *WithdrawalRepository {
	return &WithdrawalRepository{db: db}
}

// Create сохраняет запись о выводе
func (r *WithdrawalRepository) Create(ev *models.WithdrawalEvent) error {
	query := `
		INSERT INTO withdrawals (seq, kind, investor_id, amount, created_at)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := r.db.Exec(query, ev.Seq, ev.Kind, ev.InvestorID, ev.Amount, ev.Timestamp)
	return err
}

// GetByInvestor возвращает выводы вкладчика в порядке поступления
func (r *WithdrawalRepository) GetByInvestor(investorID string) ([]*models.WithdrawalEvent, error) {
	query := `
		SELECT seq, kind, investor_id, amount, created_at
		FROM withdrawals
		WHERE investor_id = $1
		ORDER BY seq`

	rows, err := r.db.Query(query, investorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*models.WithdrawalEvent
	for rows.Next() {
		ev := &models.WithdrawalEvent{}
		if err := rows.Scan(&ev.Seq, &ev.Kind, &ev.InvestorID, &ev.Amount, &ev.Timestamp); err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

package repository

import (
	"database/sql"
	"errors"

	"github.com/ChronoCoders/flashloanbot/internal/models"
)

// DistributionRepository - работа с таблицами distributions и
// distribution_shares.
//
// Шапка распределения и доли пишутся одной транзакцией: по этим двум
// таблицам внешний потребитель восстанавливает распределение по правилу
// share = floor(investorPool * invested / totalInvestment).
type DistributionRepository struct {
	db *sql.DB
}

// NewDistributionRepository создает новый экземпляр репозитория
func NewDistributionRepository(db *sql.DB) *DistributionRepository {
	return &DistributionRepository{db: db}
}

// Create атомарно сохраняет распределение вместе с долями
func (r *DistributionRepository) Create(ev *models.DistributionEvent) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	headQuery := `
		INSERT INTO distributions (seq, correlation_id, gross_profit, investor_pool, maintainer_pool, operations_pool, residual, total_investment, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err = tx.Exec(
		headQuery,
		ev.Seq,
		ev.CorrelationID,
		ev.GrossProfit,
		ev.InvestorPool,
		ev.MaintainerPool,
		ev.OperationsPool,
		ev.Residual,
		ev.TotalInvestment,
		ev.Timestamp,
	)
	if err != nil {
		return err
	}

	shareQuery := `
		INSERT INTO distribution_shares (distribution_seq, investor_id, invested, credited)
		VALUES ($1, $2, $3, $4)`

	for _, sh := range ev.Shares {
		if _, err := tx.Exec(shareQuery, ev.Seq, sh.InvestorID, sh.Invested, sh.Credited); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// GetBySeq возвращает распределение с долями
func (r *DistributionRepository) GetBySeq(seq uint64) (*models.DistributionEvent, error) {
	headQuery := `
		SELECT seq, correlation_id, gross_profit, investor_pool, maintainer_pool, operations_pool, residual, total_investment, created_at
		FROM distributions
		WHERE seq = $1`

	ev := &models.DistributionEvent{}
	err := r.db.QueryRow(headQuery, seq).Scan(
		&ev.Seq,
		&ev.CorrelationID,
		&ev.GrossProfit,
		&ev.InvestorPool,
		&ev.MaintainerPool,
		&ev.OperationsPool,
		&ev.Residual,
		&ev.TotalInvestment,
		&ev.Timestamp,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	shareQuery := `
		SELECT investor_id, invested, credited
		FROM distribution_shares
		WHERE distribution_seq = $1
		ORDER BY investor_id`

	rows, err := r.db.Query(shareQuery, seq)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var sh models.DistributionShare
		if err := rows.Scan(&sh.InvestorID, &sh.Invested, &sh.Credited); err != nil {
			return nil, err
		}
		ev.Shares = append(ev.Shares, sh)
	}
	return ev, rows.Err()
}

// GetRecent возвращает последние распределения без долей
func (r *DistributionRepository) GetRecent(limit int) ([]*models.DistributionEvent, error) {
	query := `
		SELECT seq, correlation_id, gross_profit, investor_pool, maintainer_pool, operations_pool, residual, total_investment, created_at
		FROM distributions
		ORDER BY seq DESC
		LIMIT $1`

	rows, err := r.db.Query(query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var dists []*models.DistributionEvent
	for rows.Next() {
		ev := &models.DistributionEvent{}
		err := rows.Scan(
			&ev.Seq,
			&ev.CorrelationID,
			&ev.GrossProfit,
			&ev.InvestorPool,
			&ev.MaintainerPool,
			&ev.OperationsPool,
			&ev.Residual,
			&ev.TotalInvestment,
			&ev.Timestamp,
		)
		if err != nil {
			return nil, err
		}
		dists = append(dists, ev)
	}
	return dists, rows.Err()
}

// SumCreditedByInvestor возвращает суммарно начисленную вкладчику
// прибыль по всем распределениям
func (r *DistributionRepository) SumCreditedByInvestor(investorID string) (string, error) {
	query := `
		SELECT COALESCE(SUM(credited), 0)
		FROM distribution_shares
		WHERE investor_id = $1`

	var sum string
	if err := r.db.QueryRow(query, investorID).Scan(&sum); err != nil {
		return "", err
	}
	return sum, nil
}

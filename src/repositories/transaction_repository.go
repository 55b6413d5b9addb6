package repositories

import (
	"context"

	"mftracker/src/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type TransactionRepository interface {
	Create(ctx context.Context, t *models.Transaction, tx pgx.Tx) error
	GetByPortfolio(ctx context.Context, portfolioID int, schemeCode string) ([]models.TransactionWithFund, error)
	GetAllByPortfolio(ctx context.Context, portfolioID int) ([]models.Transaction, error)
}

type transactionRepo struct {
	db *pgxpool.Pool
}

func NewTransactionRepository(db *pgxpool.Pool) TransactionRepository {
	return &transactionRepo{db: db}
}

func (r *transactionRepo) Create(ctx context.Context, t *models.Transaction, tx pgx.Tx) error {
	return pick(r.db, tx).QueryRow(ctx, `
		INSERT INTO transactions (portfolio_id, scheme_code, type, units, price_per_unit, amount, date)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`,
		t.PortfolioID, t.SchemeCode, t.Type, t.Units, t.PricePerUnit, t.Amount, t.Date).Scan(&t.ID)
}

// GetByPortfolio returns the portfolio's transactions newest first, joined
// with the fund display name. An empty schemeCode means all funds.
func (r *transactionRepo) GetByPortfolio(ctx context.Context, portfolioID int, schemeCode string) ([]models.TransactionWithFund, error) {
	query := `
		SELECT t.id, t.portfolio_id, t.scheme_code, COALESCE(mf.scheme_name, ''), t.type,
			t.units, t.price_per_unit, t.amount, t.date, t.created_at
		FROM transactions t
		LEFT JOIN mutual_funds mf ON t.scheme_code = mf.scheme_code
		WHERE t.portfolio_id = $1`
	args := []any{portfolioID}
	if schemeCode != "" {
		query += ` AND t.scheme_code = $2`
		args = append(args, schemeCode)
	}
	query += ` ORDER BY t.date DESC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var transactions []models.TransactionWithFund
	for rows.Next() {
		var t models.TransactionWithFund
		if err := rows.Scan(&t.ID, &t.PortfolioID, &t.SchemeCode, &t.SchemeName, &t.Type,
			&t.Units, &t.PricePerUnit, &t.Amount, &t.Date, &t.CreatedAt); err != nil {
			return nil, err
		}
		transactions = append(transactions, t)
	}
	return transactions, rows.Err()
}

func (r *transactionRepo) GetAllByPortfolio(ctx context.Context, portfolioID int) ([]models.Transaction, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, portfolio_id, scheme_code, type, units, price_per_unit, amount, date, created_at
		FROM transactions
		WHERE portfolio_id = $1`,
		portfolioID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var transactions []models.Transaction
	for rows.Next() {
		var t models.Transaction
		if err := rows.Scan(&t.ID, &t.PortfolioID, &t.SchemeCode, &t.Type, &t.Units, &t.PricePerUnit, &t.Amount, &t.Date, &t.CreatedAt); err != nil {
			return nil, err
		}
		transactions = append(transactions, t)
	}
	return transactions, rows.Err()
}

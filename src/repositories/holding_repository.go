package repositories

import (
	"context"
	"errors"

	"mftracker/src/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type HoldingRepository interface {
	AcquirePairLock(ctx context.Context, portfolioID int, schemeCode string, tx pgx.Tx) error
	GetByPortfolioAndScheme(ctx context.Context, portfolioID int, schemeCode string, tx pgx.Tx) (*models.Holding, error)
	Upsert(ctx context.Context, h *models.Holding, tx pgx.Tx) error
	Delete(ctx context.Context, id int, tx pgx.Tx) error
	GetByPortfolioWithNav(ctx context.Context, portfolioID int) ([]models.HoldingWithNav, error)
	GetDistinctSchemeCodes(ctx context.Context) ([]string, error)
}

type holdingRepo struct {
	db *pgxpool.Pool
}

func NewHoldingRepository(db *pgxpool.Pool) HoldingRepository {
	return &holdingRepo{db: db}
}

// AcquirePairLock serializes writers on one (portfolio, scheme) pair for
// the rest of the transaction. The row lock in GetByPortfolioAndScheme only
// covers pairs that already have a holding row; before the first buy there
// is no row to lock, and two concurrent first-time buyers would both read
// nothing and the later upsert would overwrite the earlier insert.
func (r *holdingRepo) AcquirePairLock(ctx context.Context, portfolioID int, schemeCode string, tx pgx.Tx) error {
	_, err := pick(r.db, tx).Exec(ctx,
		`SELECT pg_advisory_xact_lock($1, hashtext($2))`,
		portfolioID, schemeCode)
	return err
}

// GetByPortfolioAndScheme returns the holding for one (portfolio, scheme)
// pair, or nil when none exists. Inside a transaction the row is locked so
// concurrent read-modify-write of units cannot interleave.
func (r *holdingRepo) GetByPortfolioAndScheme(ctx context.Context, portfolioID int, schemeCode string, tx pgx.Tx) (*models.Holding, error) {
	query := `
		SELECT id, portfolio_id, scheme_code, units, average_price, created_at
		FROM holdings
		WHERE portfolio_id = $1 AND scheme_code = $2`
	if tx != nil {
		query += " FOR UPDATE"
	}

	var h models.Holding
	err := pick(r.db, tx).QueryRow(ctx, query, portfolioID, schemeCode).
		Scan(&h.ID, &h.PortfolioID, &h.SchemeCode, &h.Units, &h.AveragePrice, &h.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &h, nil
}

func (r *holdingRepo) Upsert(ctx context.Context, h *models.Holding, tx pgx.Tx) error {
	return pick(r.db, tx).QueryRow(ctx, `
		INSERT INTO holdings (portfolio_id, scheme_code, units, average_price)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (portfolio_id, scheme_code) DO UPDATE SET
			units = EXCLUDED.units,
			average_price = EXCLUDED.average_price
		RETURNING id`,
		h.PortfolioID, h.SchemeCode, h.Units, h.AveragePrice).Scan(&h.ID)
}

func (r *holdingRepo) Delete(ctx context.Context, id int, tx pgx.Tx) error {
	_, err := pick(r.db, tx).Exec(ctx, `DELETE FROM holdings WHERE id = $1`, id)
	return err
}

func (r *holdingRepo) GetByPortfolioWithNav(ctx context.Context, portfolioID int) ([]models.HoldingWithNav, error) {
	rows, err := r.db.Query(ctx, `
		SELECT h.scheme_code, COALESCE(mf.scheme_name, ''), h.units, h.average_price, ln.nav, ln.nav_date
		FROM holdings h
		LEFT JOIN mutual_funds mf ON h.scheme_code = mf.scheme_code
		LEFT JOIN latest_nav ln ON h.scheme_code = ln.scheme_code
		WHERE h.portfolio_id = $1
		ORDER BY h.scheme_code`,
		portfolioID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var holdings []models.HoldingWithNav
	for rows.Next() {
		var h models.HoldingWithNav
		if err := rows.Scan(&h.SchemeCode, &h.SchemeName, &h.Units, &h.AveragePrice, &h.LatestNav, &h.LatestNavDate); err != nil {
			return nil, err
		}
		holdings = append(holdings, h)
	}
	return holdings, rows.Err()
}

// GetDistinctSchemeCodes returns every scheme held in any portfolio; the
// hourly refresh prioritizes these over the rest of the catalog.
func (r *holdingRepo) GetDistinctSchemeCodes(ctx context.Context) ([]string, error) {
	rows, err := r.db.Query(ctx, `SELECT DISTINCT scheme_code FROM holdings`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSchemeCodes(rows)
}

package repositories

import (
	"context"
	"errors"
	"strings"
	"time"

	"mftracker/src/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type FundRepository interface {
	UpsertBatch(ctx context.Context, funds []models.Fund) error
	UpsertMetadata(ctx context.Context, fund *models.Fund) error
	GetBySchemeCode(ctx context.Context, schemeCode string) (*models.Fund, error)
	GetAllSchemeCodes(ctx context.Context) ([]string, error)
	GetRecentlyUpdated(ctx context.Context, since time.Time, limit int) ([]string, error)
	GetStaleSchemeCodes(ctx context.Context, threshold time.Time) ([]string, error)
	Search(ctx context.Context, query string, limit int) ([]models.Fund, error)
	List(ctx context.Context, limit, offset int) ([]models.Fund, error)
	Featured(ctx context.Context, limit int) ([]models.Fund, error)
	GetWithLatestNav(ctx context.Context, schemeCode string) (*models.FundWithLatestNav, error)
}

type fundRepo struct {
	db *pgxpool.Pool
}

func NewFundRepository(db *pgxpool.Pool) FundRepository {
	return &fundRepo{db: db}
}

// UpsertBatch reconciles one batch of catalog entries: insert new schemes,
// refresh name and timestamp on the ones already known.
func (r *fundRepo) UpsertBatch(ctx context.Context, funds []models.Fund) error {
	batch := &pgx.Batch{}
	for i := range funds {
		batch.Queue(`
			INSERT INTO mutual_funds (scheme_code, scheme_name, updated_at)
			VALUES ($1, $2, NOW())
			ON CONFLICT (scheme_code) DO UPDATE SET
				scheme_name = EXCLUDED.scheme_name,
				updated_at = NOW()`,
			funds[i].SchemeCode, funds[i].SchemeName)
	}

	results := r.db.SendBatch(ctx, batch)
	defer results.Close()

	for range funds {
		if _, err := results.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// UpsertMetadata writes the per-scheme detail fields fetched during
// ingestion. The raw payload is kept verbatim as advisory data.
func (r *fundRepo) UpsertMetadata(ctx context.Context, fund *models.Fund) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO mutual_funds (scheme_code, scheme_name, fund_house, category, raw_json, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (scheme_code) DO UPDATE SET
			scheme_name = EXCLUDED.scheme_name,
			fund_house = EXCLUDED.fund_house,
			category = EXCLUDED.category,
			raw_json = EXCLUDED.raw_json,
			updated_at = NOW()`,
		fund.SchemeCode, fund.SchemeName, fund.FundHouse, fund.Category, fund.RawJSON)
	return err
}

func (r *fundRepo) GetBySchemeCode(ctx context.Context, schemeCode string) (*models.Fund, error) {
	var f models.Fund
	err := r.db.QueryRow(ctx, `
		SELECT scheme_code, scheme_name, COALESCE(fund_house, ''), COALESCE(category, ''), inception_date, raw_json, updated_at
		FROM mutual_funds
		WHERE scheme_code = $1`,
		schemeCode).Scan(&f.SchemeCode, &f.SchemeName, &f.FundHouse, &f.Category, &f.InceptionDate, &f.RawJSON, &f.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *fundRepo) GetAllSchemeCodes(ctx context.Context) ([]string, error) {
	rows, err := r.db.Query(ctx, `SELECT scheme_code FROM mutual_funds`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSchemeCodes(rows)
}

// GetRecentlyUpdated returns schemes touched since the given time, capped so
// the hourly refresh cannot be overwhelmed by a large catalog sync.
func (r *fundRepo) GetRecentlyUpdated(ctx context.Context, since time.Time, limit int) ([]string, error) {
	rows, err := r.db.Query(ctx, `
		SELECT scheme_code FROM mutual_funds
		WHERE updated_at >= $1
		ORDER BY updated_at DESC
		LIMIT $2`,
		since, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSchemeCodes(rows)
}

// GetStaleSchemeCodes returns every scheme whose latest NAV is missing or
// older than the threshold, i.e. the set the daily full refresh must cover.
func (r *fundRepo) GetStaleSchemeCodes(ctx context.Context, threshold time.Time) ([]string, error) {
	rows, err := r.db.Query(ctx, `
		SELECT mf.scheme_code
		FROM mutual_funds mf
		LEFT JOIN latest_nav ln ON mf.scheme_code = ln.scheme_code
		WHERE ln.nav_date IS NULL OR ln.nav_date < $1`,
		threshold)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSchemeCodes(rows)
}

func (r *fundRepo) Search(ctx context.Context, query string, limit int) ([]models.Fund, error) {
	rows, err := r.db.Query(ctx, `
		SELECT scheme_code, scheme_name, COALESCE(fund_house, ''), COALESCE(category, ''), inception_date, raw_json, updated_at
		FROM mutual_funds
		WHERE LOWER(scheme_name) LIKE '%' || LOWER($1) || '%'
		LIMIT $2`,
		escapeLike(query), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanFunds(rows)
}

func (r *fundRepo) List(ctx context.Context, limit, offset int) ([]models.Fund, error) {
	rows, err := r.db.Query(ctx, `
		SELECT scheme_code, scheme_name, COALESCE(fund_house, ''), COALESCE(category, ''), inception_date, raw_json, updated_at
		FROM mutual_funds
		ORDER BY scheme_code
		LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanFunds(rows)
}

// Featured uses direct-growth plans as a stand-in for a popularity signal;
// there is no rating data in the catalog.
func (r *fundRepo) Featured(ctx context.Context, limit int) ([]models.Fund, error) {
	rows, err := r.db.Query(ctx, `
		SELECT scheme_code, scheme_name, COALESCE(fund_house, ''), COALESCE(category, ''), inception_date, raw_json, updated_at
		FROM mutual_funds
		WHERE LOWER(scheme_name) LIKE '%direct%growth%'
		LIMIT $1`,
		limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanFunds(rows)
}

func (r *fundRepo) GetWithLatestNav(ctx context.Context, schemeCode string) (*models.FundWithLatestNav, error) {
	var f models.FundWithLatestNav
	err := r.db.QueryRow(ctx, `
		SELECT mf.scheme_code, mf.scheme_name, COALESCE(mf.fund_house, ''), COALESCE(mf.category, ''),
			mf.inception_date, mf.raw_json, mf.updated_at, ln.nav, ln.nav_date
		FROM mutual_funds mf
		LEFT JOIN latest_nav ln ON mf.scheme_code = ln.scheme_code
		WHERE mf.scheme_code = $1`,
		schemeCode).Scan(&f.SchemeCode, &f.SchemeName, &f.FundHouse, &f.Category,
		&f.InceptionDate, &f.RawJSON, &f.UpdatedAt, &f.LatestNav, &f.LatestNavDate)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// escapeLike neutralizes LIKE metacharacters in user input so the query
// text always matches literally.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func scanSchemeCodes(rows pgx.Rows) ([]string, error) {
	var codes []string
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, err
		}
		codes = append(codes, code)
	}
	return codes, rows.Err()
}

func scanFunds(rows pgx.Rows) ([]models.Fund, error) {
	var funds []models.Fund
	for rows.Next() {
		var f models.Fund
		if err := rows.Scan(&f.SchemeCode, &f.SchemeName, &f.FundHouse, &f.Category, &f.InceptionDate, &f.RawJSON, &f.UpdatedAt); err != nil {
			return nil, err
		}
		funds = append(funds, f)
	}
	return funds, rows.Err()
}

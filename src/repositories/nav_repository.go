package repositories

import (
	"context"
	"errors"
	"time"

	"mftracker/src/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type NavRepository interface {
	InsertHistoryBatch(ctx context.Context, points []models.NavPoint) error
	UpsertLatest(ctx context.Context, latest *models.LatestNav) error
	GetLatest(ctx context.Context, schemeCode string) (*models.LatestNav, error)
	GetHistorySince(ctx context.Context, schemeCode string, since time.Time) ([]models.NavPoint, error)
	CountHistory(ctx context.Context, schemeCode string) (int, error)
}

type navRepo struct {
	db *pgxpool.Pool
}

func NewNavRepository(db *pgxpool.Pool) NavRepository {
	return &navRepo{db: db}
}

// InsertHistoryBatch appends one chunk of price points. Existing
// (scheme, date) rows are left untouched, which makes re-ingestion of the
// same payload a no-op.
func (r *navRepo) InsertHistoryBatch(ctx context.Context, points []models.NavPoint) error {
	batch := &pgx.Batch{}
	for i := range points {
		batch.Queue(`
			INSERT INTO nav_history (scheme_code, nav_date, nav)
			VALUES ($1, $2, $3)
			ON CONFLICT (scheme_code, nav_date) DO NOTHING`,
			points[i].SchemeCode, points[i].NavDate, points[i].Nav)
	}

	results := r.db.SendBatch(ctx, batch)
	defer results.Close()

	for range points {
		if _, err := results.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// UpsertLatest overwrites the latest-NAV projection unconditionally; the
// ingestion engine trusts the freshest full fetch.
func (r *navRepo) UpsertLatest(ctx context.Context, latest *models.LatestNav) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO latest_nav (scheme_code, nav, nav_date, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (scheme_code) DO UPDATE SET
			nav = EXCLUDED.nav,
			nav_date = EXCLUDED.nav_date,
			updated_at = NOW()`,
		latest.SchemeCode, latest.Nav, latest.NavDate)
	return err
}

func (r *navRepo) GetLatest(ctx context.Context, schemeCode string) (*models.LatestNav, error) {
	var l models.LatestNav
	err := r.db.QueryRow(ctx, `
		SELECT scheme_code, nav, nav_date, updated_at
		FROM latest_nav
		WHERE scheme_code = $1`,
		schemeCode).Scan(&l.SchemeCode, &l.Nav, &l.NavDate, &l.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *navRepo) GetHistorySince(ctx context.Context, schemeCode string, since time.Time) ([]models.NavPoint, error) {
	rows, err := r.db.Query(ctx, `
		SELECT scheme_code, nav_date, nav
		FROM nav_history
		WHERE scheme_code = $1 AND nav_date >= $2
		ORDER BY nav_date ASC`,
		schemeCode, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var points []models.NavPoint
	for rows.Next() {
		var p models.NavPoint
		if err := rows.Scan(&p.SchemeCode, &p.NavDate, &p.Nav); err != nil {
			return nil, err
		}
		points = append(points, p)
	}
	return points, rows.Err()
}

func (r *navRepo) CountHistory(ctx context.Context, schemeCode string) (int, error) {
	var count int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM nav_history WHERE scheme_code = $1`,
		schemeCode).Scan(&count)
	return count, err
}

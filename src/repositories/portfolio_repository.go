package repositories

import (
	"context"

	"mftracker/src/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

type PortfolioRepository interface {
	GetOrCreate(ctx context.Context, userID, name string) (*models.Portfolio, error)
}

type portfolioRepo struct {
	db *pgxpool.Pool
}

func NewPortfolioRepository(db *pgxpool.Pool) PortfolioRepository {
	return &portfolioRepo{db: db}
}

// GetOrCreate returns the user's single portfolio, creating it on first
// use. The unique index on user_id makes concurrent first-time creation
// safe: the losing insert is a no-op and both callers read the same row.
func (r *portfolioRepo) GetOrCreate(ctx context.Context, userID, name string) (*models.Portfolio, error) {
	_, err := r.db.Exec(ctx, `
		INSERT INTO portfolios (user_id, name)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO NOTHING`,
		userID, name)
	if err != nil {
		return nil, err
	}

	var p models.Portfolio
	err = r.db.QueryRow(ctx, `
		SELECT id, user_id, name, created_at
		FROM portfolios
		WHERE user_id = $1`,
		userID).Scan(&p.ID, &p.UserID, &p.Name, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

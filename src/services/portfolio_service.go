package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"mftracker/src/models"
	"mftracker/src/repositories"
	"mftracker/src/schemas"

	"github.com/jackc/pgx/v5"
)

const defaultPortfolioName = "My Portfolio"

var (
	ErrNoSuchHolding      = errors.New("cannot sell, holding does not exist")
	ErrInsufficientUnits  = errors.New("insufficient units")
	ErrInvalidTransaction = errors.New("invalid transaction")
)

// ApplyTransactionInput is one BUY or SELL to record against the user's
// portfolio. A zero Date means now.
type ApplyTransactionInput struct {
	SchemeCode   string
	Type         string
	Units        float64
	PricePerUnit float64
	Date         time.Time
}

type PortfolioServiceI interface {
	GetOrCreatePortfolio(ctx context.Context, userID string) (*models.Portfolio, error)
	ApplyTransaction(ctx context.Context, userID string, input ApplyTransactionInput) error
	GetTransactions(ctx context.Context, userID, schemeCode string) ([]schemas.TransactionResponse, error)
	GetPortfolioSummary(ctx context.Context, userID string) (*schemas.PortfolioSummaryResponse, error)
}

// PortfolioService is the ledger and valuation engine: it turns the stream
// of buy/sell events into current holdings and answers valuation queries
// from holdings, latest NAVs and the transaction history.
type PortfolioService struct {
	portfolioRepo   repositories.PortfolioRepository
	holdingRepo     repositories.HoldingRepository
	transactionRepo repositories.TransactionRepository
	txManager       repositories.TxManager

	now func() time.Time
}

func NewPortfolioService(
	portfolioRepo repositories.PortfolioRepository,
	holdingRepo repositories.HoldingRepository,
	transactionRepo repositories.TransactionRepository,
	txManager repositories.TxManager,
) *PortfolioService {
	return &PortfolioService{
		portfolioRepo:   portfolioRepo,
		holdingRepo:     holdingRepo,
		transactionRepo: transactionRepo,
		txManager:       txManager,
		now:             time.Now,
	}
}

func (s *PortfolioService) GetOrCreatePortfolio(ctx context.Context, userID string) (*models.Portfolio, error) {
	return s.portfolioRepo.GetOrCreate(ctx, userID, defaultPortfolioName)
}

// ApplyTransaction appends an immutable transaction row and updates the
// derived holding in one database transaction: either both persist or
// neither does. BUYs blend into the weighted-average cost; SELLs reduce
// units without moving the cost basis and delete the holding at exactly
// zero units.
func (s *PortfolioService) ApplyTransaction(ctx context.Context, userID string, input ApplyTransactionInput) error {
	if input.Units <= 0 {
		return fmt.Errorf("%w: units must be greater than zero", ErrInvalidTransaction)
	}
	if input.PricePerUnit < 0 {
		return fmt.Errorf("%w: price per unit must not be negative", ErrInvalidTransaction)
	}
	if input.Type != models.TransactionBuy && input.Type != models.TransactionSell {
		return fmt.Errorf("%w: type must be BUY or SELL", ErrInvalidTransaction)
	}

	portfolio, err := s.portfolioRepo.GetOrCreate(ctx, userID, defaultPortfolioName)
	if err != nil {
		return err
	}

	date := input.Date
	if date.IsZero() {
		date = s.now()
	}
	amount := input.Units * input.PricePerUnit

	return s.txManager.WithTx(ctx, func(tx pgx.Tx) error {
		// Serializes the whole read-modify-write; the FOR UPDATE row lock
		// alone cannot cover two concurrent first-time buys of the same
		// scheme, where neither reader finds a row to lock.
		if err := s.holdingRepo.AcquirePairLock(ctx, portfolio.ID, input.SchemeCode, tx); err != nil {
			return err
		}

		transaction := &models.Transaction{
			PortfolioID:  portfolio.ID,
			SchemeCode:   input.SchemeCode,
			Type:         input.Type,
			Units:        input.Units,
			PricePerUnit: input.PricePerUnit,
			Amount:       amount,
			Date:         date,
		}
		if err := s.transactionRepo.Create(ctx, transaction, tx); err != nil {
			return err
		}

		existing, err := s.holdingRepo.GetByPortfolioAndScheme(ctx, portfolio.ID, input.SchemeCode, tx)
		if err != nil {
			return err
		}

		if input.Type == models.TransactionBuy {
			holding := &models.Holding{
				PortfolioID:  portfolio.ID,
				SchemeCode:   input.SchemeCode,
				Units:        input.Units,
				AveragePrice: input.PricePerUnit,
			}
			if existing != nil {
				totalUnits := existing.Units + input.Units
				totalCost := existing.Units*existing.AveragePrice + amount
				holding.Units = totalUnits
				holding.AveragePrice = totalCost / totalUnits
			}
			return s.holdingRepo.Upsert(ctx, holding, tx)
		}

		// SELL
		if existing == nil {
			return ErrNoSuchHolding
		}
		if existing.Units < input.Units {
			return fmt.Errorf("%w: you have %v, trying to sell %v", ErrInsufficientUnits, existing.Units, input.Units)
		}

		remaining := existing.Units - input.Units
		if remaining == 0 {
			return s.holdingRepo.Delete(ctx, existing.ID, tx)
		}
		// Average price stays put on a sell; disposing units does not move
		// the cost basis of what remains.
		existing.Units = remaining
		return s.holdingRepo.Upsert(ctx, existing, tx)
	})
}

// GetTransactions returns the user's transactions newest first, optionally
// filtered to one scheme.
func (s *PortfolioService) GetTransactions(ctx context.Context, userID, schemeCode string) ([]schemas.TransactionResponse, error) {
	portfolio, err := s.portfolioRepo.GetOrCreate(ctx, userID, defaultPortfolioName)
	if err != nil {
		return nil, err
	}

	transactions, err := s.transactionRepo.GetByPortfolio(ctx, portfolio.ID, schemeCode)
	if err != nil {
		return nil, err
	}

	responses := make([]schemas.TransactionResponse, 0, len(transactions))
	for _, t := range transactions {
		responses = append(responses, schemas.TransactionResponse{
			ID:           t.ID,
			SchemeCode:   t.SchemeCode,
			SchemeName:   t.SchemeName,
			Type:         t.Type,
			Units:        t.Units,
			PricePerUnit: t.PricePerUnit,
			Amount:       t.Amount,
			Date:         t.Date,
		})
	}
	return responses, nil
}

// GetPortfolioSummary values every holding at its latest known NAV and
// computes aggregate return metrics, including XIRR over the complete
// transaction history. Valuation always returns a value: a missing NAV
// counts as zero, a zero invested value reports 0% and a non-computable
// XIRR degrades to 0.
func (s *PortfolioService) GetPortfolioSummary(ctx context.Context, userID string) (*schemas.PortfolioSummaryResponse, error) {
	portfolio, err := s.portfolioRepo.GetOrCreate(ctx, userID, defaultPortfolioName)
	if err != nil {
		return nil, err
	}

	holdingsData, err := s.holdingRepo.GetByPortfolioWithNav(ctx, portfolio.ID)
	if err != nil {
		return nil, err
	}

	var totalInvested, currentValue float64
	holdings := make([]schemas.HoldingSummary, 0, len(holdingsData))
	for _, h := range holdingsData {
		invested := h.Units * h.AveragePrice
		var nav float64
		if h.LatestNav != nil {
			nav = *h.LatestNav
		}
		current := h.Units * nav
		totalInvested += invested
		currentValue += current

		returnPct := 0.0
		if invested > 0 {
			returnPct = (current - invested) / invested * 100
		}
		holdings = append(holdings, schemas.HoldingSummary{
			SchemeCode:       h.SchemeCode,
			SchemeName:       h.SchemeName,
			Units:            h.Units,
			AveragePrice:     h.AveragePrice,
			LatestNav:        h.LatestNav,
			LatestNavDate:    h.LatestNavDate,
			InvestedValue:    invested,
			CurrentValue:     current,
			AbsoluteReturn:   current - invested,
			ReturnPercentage: returnPct,
		})
	}

	allTransactions, err := s.transactionRepo.GetAllByPortfolio(ctx, portfolio.ID)
	if err != nil {
		return nil, err
	}

	// Every transaction amount enters the series negated and the live
	// position is valued as one inflow dated now, as if liquidated today.
	// Note this treats SELL proceeds as outflows too, mirroring the
	// long-standing behavior the return figures were built on.
	flows := make([]CashFlow, 0, len(allTransactions)+1)
	for _, t := range allTransactions {
		flows = append(flows, CashFlow{Date: t.Date, Amount: -t.Amount})
	}
	flows = append(flows, CashFlow{Date: s.now(), Amount: currentValue})

	var xirr float64
	if len(allTransactions) > 0 {
		xirr = CalculateXirr(flows)
	}

	totalReturnPct := 0.0
	if totalInvested > 0 {
		totalReturnPct = (currentValue - totalInvested) / totalInvested * 100
	}

	return &schemas.PortfolioSummaryResponse{
		Portfolio: portfolio,
		Summary: schemas.PortfolioTotals{
			TotalInvested:    totalInvested,
			CurrentValue:     currentValue,
			AbsoluteReturn:   currentValue - totalInvested,
			ReturnPercentage: totalReturnPct,
			Xirr:             xirr,
		},
		Holdings: holdings,
	}, nil
}

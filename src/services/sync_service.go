package services

import (
	"context"
	"time"

	"mftracker/src/repositories"
	"mftracker/src/utils"
)

const (
	activeBatchSize = 10
	activePause     = 200 * time.Millisecond

	fullBatchSize = 20
	fullPause     = 100 * time.Millisecond

	backfillBatchSize = 10
	backfillPause     = 100 * time.Millisecond
)

type SyncServiceI interface {
	SyncMetadata(ctx context.Context) error
	SyncActiveFunds(ctx context.Context) error
	SyncFullUniverse(ctx context.Context) error
	Backfill(ctx context.Context) error
}

// SyncService decides which schemes get ingested and when. Each policy is
// independent and idempotent; they share nothing but the store, so running
// them concurrently is safe.
type SyncService struct {
	fundRepo    repositories.FundRepository
	holdingRepo repositories.HoldingRepository
	ingest      IngestServiceI

	recentWindow time.Duration
	recentLimit  int
	staleAfter   time.Duration
}

func NewSyncService(fundRepo repositories.FundRepository, holdingRepo repositories.HoldingRepository, ingest IngestServiceI,
	recentWindow time.Duration, recentLimit int, staleAfter time.Duration) *SyncService {
	if recentWindow <= 0 {
		recentWindow = 48 * time.Hour
	}
	if recentLimit <= 0 {
		recentLimit = 200
	}
	if staleAfter <= 0 {
		staleAfter = 30 * 24 * time.Hour
	}
	return &SyncService{
		fundRepo:     fundRepo,
		holdingRepo:  holdingRepo,
		ingest:       ingest,
		recentWindow: recentWindow,
		recentLimit:  recentLimit,
		staleAfter:   staleAfter,
	}
}

// SyncMetadata refreshes the catalog listing: every scheme name the source
// knows, upserted in batches. Runs on the coarse daily cadence.
func (s *SyncService) SyncMetadata(ctx context.Context) error {
	logger := utils.LoggerFromContext(ctx)
	logger.Info("running metadata sync")

	count, err := s.ingest.SyncCatalog(ctx)
	if err != nil {
		return err
	}
	logger.Infof("metadata sync done, %d schemes reconciled", count)
	return nil
}

// SyncActiveFunds refreshes the union of held schemes and recently touched
// schemes. The recency window is a proxy for "searched or viewed lately";
// the cap bounds the hourly load.
func (s *SyncService) SyncActiveFunds(ctx context.Context) error {
	logger := utils.LoggerFromContext(ctx)

	held, err := s.holdingRepo.GetDistinctSchemeCodes(ctx)
	if err != nil {
		return err
	}
	recent, err := s.fundRepo.GetRecentlyUpdated(ctx, time.Now().Add(-s.recentWindow), s.recentLimit)
	if err != nil {
		return err
	}

	codes := dedupeSchemeCodes(held, recent)
	if len(codes) == 0 {
		logger.Info("no active or recent funds to update")
		return nil
	}

	logger.Infof("updating NAV for %d funds (%d held, %d recent)", len(codes), len(held), len(recent))
	stats := s.ingest.IngestFunds(ctx, codes, activeBatchSize, activePause)
	logger.Infof("active NAV sync complete: %d ingested, %d skipped, %d failed", stats.Ingested, stats.Skipped, stats.Failed)
	return nil
}

// SyncFullUniverse refreshes every scheme whose latest NAV is missing or
// has gone stale. Runs daily, offset after the metadata sync so newly
// listed schemes are picked up in the same cycle.
func (s *SyncService) SyncFullUniverse(ctx context.Context) error {
	logger := utils.LoggerFromContext(ctx)

	codes, err := s.fundRepo.GetStaleSchemeCodes(ctx, time.Now().Add(-s.staleAfter))
	if err != nil {
		return err
	}

	logger.Infof("full universe sync: processing %d funds", len(codes))
	stats := s.ingest.IngestFunds(ctx, codes, fullBatchSize, fullPause)
	logger.Infof("full NAV sync complete: %d ingested, %d skipped, %d failed", stats.Ingested, stats.Skipped, stats.Failed)
	return nil
}

// Backfill cold-starts the catalog: reconcile the full listing, then
// ingest every known scheme. One-shot, invoked on demand.
func (s *SyncService) Backfill(ctx context.Context) error {
	logger := utils.LoggerFromContext(ctx)
	logger.Info("starting full backfill")

	if _, err := s.ingest.SyncCatalog(ctx); err != nil {
		return err
	}

	codes, err := s.fundRepo.GetAllSchemeCodes(ctx)
	if err != nil {
		return err
	}

	logger.Infof("ingesting details for %d schemes", len(codes))
	stats := s.ingest.IngestFunds(ctx, codes, backfillBatchSize, backfillPause)
	logger.Infof("full backfill complete: %d ingested, %d skipped, %d failed", stats.Ingested, stats.Skipped, stats.Failed)
	return nil
}

func dedupeSchemeCodes(lists ...[]string) []string {
	seen := make(map[string]struct{})
	var codes []string
	for _, list := range lists {
		for _, code := range list {
			if _, ok := seen[code]; ok {
				continue
			}
			seen[code] = struct{}{}
			codes = append(codes, code)
		}
	}
	return codes
}

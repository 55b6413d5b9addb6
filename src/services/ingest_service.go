package services

import (
	"context"
	"encoding/json"
	"math"
	"strconv"
	"sync"
	"time"

	"mftracker/src/clients/mfapi"
	"mftracker/src/models"
	"mftracker/src/repositories"
	"mftracker/src/utils"
)

const (
	catalogBatchSize = 100
	historyChunkSize = 500
)

type IngestStatus string

const (
	IngestStatusIngested IngestStatus = "INGESTED"
	IngestStatusSkipped  IngestStatus = "SKIPPED"
	IngestStatusFailed   IngestStatus = "FAILED"
)

// IngestResult is the per-scheme outcome of one ingestion attempt. A
// failure never propagates as an error; it is reported here so batch
// drivers can count it without aborting the rest of the batch.
type IngestResult struct {
	SchemeCode string
	Status     IngestStatus
	Points     int
	Reason     string
}

// IngestStats aggregates the results of a batched ingestion run.
type IngestStats struct {
	Total    int
	Ingested int
	Skipped  int
	Failed   int
}

func (s *IngestStats) add(r IngestResult) {
	s.Total++
	switch r.Status {
	case IngestStatusIngested:
		s.Ingested++
	case IngestStatusSkipped:
		s.Skipped++
	case IngestStatusFailed:
		s.Failed++
	}
}

type IngestServiceI interface {
	SyncCatalog(ctx context.Context) (int, error)
	IngestFund(ctx context.Context, schemeCode string) IngestResult
	IngestFunds(ctx context.Context, schemeCodes []string, batchSize int, pause time.Duration) IngestStats
}

// IngestService pulls fund metadata and price series from the external
// source and reconciles them into the catalog store.
type IngestService struct {
	fundRepo repositories.FundRepository
	navRepo  repositories.NavRepository

	client mfapi.MFAPIServiceClientI
}

func NewIngestService(fundRepo repositories.FundRepository, navRepo repositories.NavRepository, client mfapi.MFAPIServiceClientI) *IngestService {
	return &IngestService{
		fundRepo: fundRepo,
		navRepo:  navRepo,
		client:   client,
	}
}

// SyncCatalog fetches the full scheme listing and upserts it in fixed-size
// batches. Batches are independent: one failed batch is logged and the
// remaining batches still run, since the upsert is idempotent and the next
// scheduled sync converges. Returns the number of schemes listed.
func (s *IngestService) SyncCatalog(ctx context.Context) (int, error) {
	logger := utils.LoggerFromContext(ctx)

	schemes, err := s.client.GetAllSchemes(ctx)
	if err != nil {
		return 0, err
	}
	logger.Infof("fetched %d schemes from source", len(schemes))

	for i := 0; i < len(schemes); i += catalogBatchSize {
		end := i + catalogBatchSize
		if end > len(schemes) {
			end = len(schemes)
		}

		batch := make([]models.Fund, 0, end-i)
		for _, scheme := range schemes[i:end] {
			batch = append(batch, models.Fund{
				SchemeCode: mfapi.SchemeCodeString(scheme.SchemeCode),
				SchemeName: scheme.SchemeName,
			})
		}

		if err := s.fundRepo.UpsertBatch(ctx, batch); err != nil {
			logger.Errorf("catalog upsert batch at offset %d failed: %v", i, err)
		}
	}
	return len(schemes), nil
}

// IngestFund fetches one scheme's full detail payload and reconciles it:
// metadata is upserted unconditionally, the max-date entry becomes the new
// latest NAV, and all parsed points are appended to history in chunks.
func (s *IngestService) IngestFund(ctx context.Context, schemeCode string) IngestResult {
	detail, err := s.client.GetSchemeDetail(ctx, schemeCode)
	if err != nil {
		return IngestResult{SchemeCode: schemeCode, Status: IngestStatusFailed, Reason: "fetch failed: " + err.Error()}
	}
	if detail.Meta == nil {
		return IngestResult{SchemeCode: schemeCode, Status: IngestStatusSkipped, Reason: "no usable payload"}
	}

	rawJSON, _ := json.Marshal(detail.Meta)
	fund := &models.Fund{
		SchemeCode: schemeCode,
		SchemeName: detail.Meta.SchemeName,
		FundHouse:  detail.Meta.FundHouse,
		Category:   detail.Meta.SchemeCategory,
		RawJSON:    rawJSON,
	}
	if err := s.fundRepo.UpsertMetadata(ctx, fund); err != nil {
		return IngestResult{SchemeCode: schemeCode, Status: IngestStatusFailed, Reason: "metadata upsert failed: " + err.Error()}
	}

	points := parseNavEntries(schemeCode, detail.Data)
	if len(points) == 0 {
		return IngestResult{SchemeCode: schemeCode, Status: IngestStatusIngested}
	}

	latest := points[0]
	for _, p := range points[1:] {
		if p.NavDate.After(latest.NavDate) {
			latest = p
		}
	}
	if err := s.navRepo.UpsertLatest(ctx, &models.LatestNav{
		SchemeCode: schemeCode,
		Nav:        latest.Nav,
		NavDate:    latest.NavDate,
	}); err != nil {
		return IngestResult{SchemeCode: schemeCode, Status: IngestStatusFailed, Reason: "latest nav upsert failed: " + err.Error()}
	}

	for i := 0; i < len(points); i += historyChunkSize {
		end := i + historyChunkSize
		if end > len(points) {
			end = len(points)
		}
		if err := s.navRepo.InsertHistoryBatch(ctx, points[i:end]); err != nil {
			return IngestResult{SchemeCode: schemeCode, Status: IngestStatusFailed, Points: i, Reason: "history insert failed: " + err.Error()}
		}
	}

	return IngestResult{SchemeCode: schemeCode, Status: IngestStatusIngested, Points: len(points)}
}

// parseNavEntries converts raw source entries to storable points. The
// source formats dates as DD-MM-YYYY and encodes NAVs as strings; entries
// that do not parse to a valid date and a finite number are dropped.
func parseNavEntries(schemeCode string, entries []mfapi.NavEntry) []models.NavPoint {
	points := make([]models.NavPoint, 0, len(entries))
	for _, entry := range entries {
		navDate, err := utils.ParseNavDate(entry.Date)
		if err != nil {
			continue
		}
		nav, err := strconv.ParseFloat(entry.Nav, 64)
		if err != nil || math.IsNaN(nav) || math.IsInf(nav, 0) {
			continue
		}
		points = append(points, models.NavPoint{
			SchemeCode: schemeCode,
			NavDate:    navDate,
			Nav:        nav,
		})
	}
	return points
}

// IngestFunds ingests the given schemes in batches of bounded concurrency
// with a pause between batches. The bounds exist to pace a rate-limited
// third-party source, not for correctness: batch N+1 does not start until
// batch N has completed.
func (s *IngestService) IngestFunds(ctx context.Context, schemeCodes []string, batchSize int, pause time.Duration) IngestStats {
	logger := utils.LoggerFromContext(ctx)
	if batchSize <= 0 {
		batchSize = 10
	}

	var stats IngestStats
	var mu sync.Mutex

	for i := 0; i < len(schemeCodes); i += batchSize {
		end := i + batchSize
		if end > len(schemeCodes) {
			end = len(schemeCodes)
		}

		var wg sync.WaitGroup
		for _, code := range schemeCodes[i:end] {
			wg.Add(1)
			go func(code string) {
				defer wg.Done()
				result := s.IngestFund(ctx, code)
				if result.Status != IngestStatusIngested {
					logger.Warnf("ingest %s: %s (%s)", code, result.Status, result.Reason)
				}
				mu.Lock()
				stats.add(result)
				mu.Unlock()
			}(code)
		}
		wg.Wait()

		if end < len(schemeCodes) {
			time.Sleep(pause)
		}
		if i > 0 && i%500 == 0 {
			logger.Infof("ingested %d / %d schemes", i, len(schemeCodes))
		}
	}
	return stats
}

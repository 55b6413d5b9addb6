package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"mftracker/src/models"

	"github.com/jackc/pgx/v5"
)

// In-memory stand-ins for the pgx repositories, used by the service tests.

type fakeFundRepo struct {
	mu    sync.Mutex
	funds map[string]models.Fund

	upsertBatchCalls int
	upsertBatchErr   error

	recentCodes []string
	staleCodes  []string
}

func newFakeFundRepo() *fakeFundRepo {
	return &fakeFundRepo{funds: make(map[string]models.Fund)}
}

func (r *fakeFundRepo) UpsertBatch(_ context.Context, funds []models.Fund) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.upsertBatchCalls++
	if r.upsertBatchErr != nil {
		return r.upsertBatchErr
	}
	for _, f := range funds {
		existing, ok := r.funds[f.SchemeCode]
		if ok {
			existing.SchemeName = f.SchemeName
			existing.UpdatedAt = time.Now()
			r.funds[f.SchemeCode] = existing
			continue
		}
		f.UpdatedAt = time.Now()
		r.funds[f.SchemeCode] = f
	}
	return nil
}

func (r *fakeFundRepo) UpsertMetadata(_ context.Context, fund *models.Fund) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	f := *fund
	f.UpdatedAt = time.Now()
	r.funds[f.SchemeCode] = f
	return nil
}

func (r *fakeFundRepo) GetBySchemeCode(_ context.Context, schemeCode string) (*models.Fund, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if f, ok := r.funds[schemeCode]; ok {
		return &f, nil
	}
	return nil, nil
}

func (r *fakeFundRepo) GetAllSchemeCodes(_ context.Context) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	codes := make([]string, 0, len(r.funds))
	for code := range r.funds {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes, nil
}

func (r *fakeFundRepo) GetRecentlyUpdated(_ context.Context, _ time.Time, limit int) ([]string, error) {
	if len(r.recentCodes) > limit {
		return r.recentCodes[:limit], nil
	}
	return r.recentCodes, nil
}

func (r *fakeFundRepo) GetStaleSchemeCodes(_ context.Context, _ time.Time) ([]string, error) {
	return r.staleCodes, nil
}

func (r *fakeFundRepo) Search(_ context.Context, query string, limit int) ([]models.Fund, error) {
	var out []models.Fund
	for _, f := range r.funds {
		if strings.Contains(strings.ToLower(f.SchemeName), strings.ToLower(query)) {
			out = append(out, f)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *fakeFundRepo) List(_ context.Context, limit, offset int) ([]models.Fund, error) {
	codes, _ := r.GetAllSchemeCodes(context.Background())
	var out []models.Fund
	for i := offset; i < len(codes) && len(out) < limit; i++ {
		out = append(out, r.funds[codes[i]])
	}
	return out, nil
}

func (r *fakeFundRepo) Featured(_ context.Context, limit int) ([]models.Fund, error) {
	var out []models.Fund
	for _, f := range r.funds {
		if strings.Contains(strings.ToLower(f.SchemeName), "direct") {
			out = append(out, f)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *fakeFundRepo) GetWithLatestNav(_ context.Context, schemeCode string) (*models.FundWithLatestNav, error) {
	f, ok := r.funds[schemeCode]
	if !ok {
		return nil, nil
	}
	return &models.FundWithLatestNav{Fund: f}, nil
}

type navKey struct {
	code string
	date time.Time
}

type fakeNavRepo struct {
	mu      sync.Mutex
	history map[navKey]float64
	latest  map[string]models.LatestNav
}

func newFakeNavRepo() *fakeNavRepo {
	return &fakeNavRepo{
		history: make(map[navKey]float64),
		latest:  make(map[string]models.LatestNav),
	}
}

func (r *fakeNavRepo) InsertHistoryBatch(_ context.Context, points []models.NavPoint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range points {
		key := navKey{code: p.SchemeCode, date: p.NavDate}
		if _, exists := r.history[key]; exists {
			continue
		}
		r.history[key] = p.Nav
	}
	return nil
}

func (r *fakeNavRepo) UpsertLatest(_ context.Context, latest *models.LatestNav) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.latest[latest.SchemeCode] = *latest
	return nil
}

func (r *fakeNavRepo) GetLatest(_ context.Context, schemeCode string) (*models.LatestNav, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if l, ok := r.latest[schemeCode]; ok {
		return &l, nil
	}
	return nil, nil
}

func (r *fakeNavRepo) GetHistorySince(_ context.Context, schemeCode string, since time.Time) ([]models.NavPoint, error) {
	var points []models.NavPoint
	for key, nav := range r.history {
		if key.code == schemeCode && !key.date.Before(since) {
			points = append(points, models.NavPoint{SchemeCode: key.code, NavDate: key.date, Nav: nav})
		}
	}
	sort.Slice(points, func(i, j int) bool { return points[i].NavDate.Before(points[j].NavDate) })
	return points, nil
}

func (r *fakeNavRepo) CountHistory(_ context.Context, schemeCode string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for key := range r.history {
		if key.code == schemeCode {
			count++
		}
	}
	return count, nil
}

type fakePortfolioRepo struct {
	portfolios map[string]*models.Portfolio
	nextID     int
}

func newFakePortfolioRepo() *fakePortfolioRepo {
	return &fakePortfolioRepo{portfolios: make(map[string]*models.Portfolio), nextID: 1}
}

func (r *fakePortfolioRepo) GetOrCreate(_ context.Context, userID, name string) (*models.Portfolio, error) {
	if p, ok := r.portfolios[userID]; ok {
		return p, nil
	}
	p := &models.Portfolio{ID: r.nextID, UserID: userID, Name: name, CreatedAt: time.Now()}
	r.nextID++
	r.portfolios[userID] = p
	return p, nil
}

type fakeHoldingRepo struct {
	holdings map[string]*models.Holding
	nextID   int

	navs  map[string]float64
	names map[string]string

	ops   []string
	saved map[string]models.Holding
}

func newFakeHoldingRepo() *fakeHoldingRepo {
	return &fakeHoldingRepo{
		holdings: make(map[string]*models.Holding),
		nextID:   1,
		navs:     make(map[string]float64),
		names:    make(map[string]string),
	}
}

func holdingKey(portfolioID int, schemeCode string) string {
	return fmt.Sprintf("%d:%s", portfolioID, schemeCode)
}

func (r *fakeHoldingRepo) AcquirePairLock(_ context.Context, portfolioID int, schemeCode string, _ pgx.Tx) error {
	r.ops = append(r.ops, "lock:"+holdingKey(portfolioID, schemeCode))
	return nil
}

func (r *fakeHoldingRepo) GetByPortfolioAndScheme(_ context.Context, portfolioID int, schemeCode string, _ pgx.Tx) (*models.Holding, error) {
	r.ops = append(r.ops, "get:"+holdingKey(portfolioID, schemeCode))
	if h, ok := r.holdings[holdingKey(portfolioID, schemeCode)]; ok {
		copy := *h
		return &copy, nil
	}
	return nil, nil
}

func (r *fakeHoldingRepo) Upsert(_ context.Context, h *models.Holding, _ pgx.Tx) error {
	key := holdingKey(h.PortfolioID, h.SchemeCode)
	if existing, ok := r.holdings[key]; ok {
		h.ID = existing.ID
	} else {
		h.ID = r.nextID
		r.nextID++
	}
	stored := *h
	r.holdings[key] = &stored
	return nil
}

func (r *fakeHoldingRepo) Delete(_ context.Context, id int, _ pgx.Tx) error {
	for key, h := range r.holdings {
		if h.ID == id {
			delete(r.holdings, key)
			return nil
		}
	}
	return nil
}

func (r *fakeHoldingRepo) GetByPortfolioWithNav(_ context.Context, portfolioID int) ([]models.HoldingWithNav, error) {
	var out []models.HoldingWithNav
	for _, h := range r.holdings {
		if h.PortfolioID != portfolioID {
			continue
		}
		view := models.HoldingWithNav{
			SchemeCode:   h.SchemeCode,
			SchemeName:   r.names[h.SchemeCode],
			Units:        h.Units,
			AveragePrice: h.AveragePrice,
		}
		if nav, ok := r.navs[h.SchemeCode]; ok {
			navCopy := nav
			view.LatestNav = &navCopy
		}
		out = append(out, view)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SchemeCode < out[j].SchemeCode })
	return out, nil
}

func (r *fakeHoldingRepo) GetDistinctSchemeCodes(_ context.Context) ([]string, error) {
	seen := make(map[string]struct{})
	var codes []string
	for _, h := range r.holdings {
		if _, ok := seen[h.SchemeCode]; ok {
			continue
		}
		seen[h.SchemeCode] = struct{}{}
		codes = append(codes, h.SchemeCode)
	}
	sort.Strings(codes)
	return codes, nil
}

func (r *fakeHoldingRepo) snapshot() {
	r.saved = make(map[string]models.Holding, len(r.holdings))
	for key, h := range r.holdings {
		r.saved[key] = *h
	}
}

func (r *fakeHoldingRepo) restore() {
	r.holdings = make(map[string]*models.Holding, len(r.saved))
	for key, h := range r.saved {
		stored := h
		r.holdings[key] = &stored
	}
}

type fakeTransactionRepo struct {
	transactions []models.Transaction
	nextID       int

	names map[string]string
	saved []models.Transaction
}

func newFakeTransactionRepo() *fakeTransactionRepo {
	return &fakeTransactionRepo{nextID: 1, names: make(map[string]string)}
}

func (r *fakeTransactionRepo) Create(_ context.Context, t *models.Transaction, _ pgx.Tx) error {
	t.ID = r.nextID
	r.nextID++
	r.transactions = append(r.transactions, *t)
	return nil
}

func (r *fakeTransactionRepo) GetByPortfolio(_ context.Context, portfolioID int, schemeCode string) ([]models.TransactionWithFund, error) {
	var out []models.TransactionWithFund
	for _, t := range r.transactions {
		if t.PortfolioID != portfolioID {
			continue
		}
		if schemeCode != "" && t.SchemeCode != schemeCode {
			continue
		}
		out = append(out, models.TransactionWithFund{Transaction: t, SchemeName: r.names[t.SchemeCode]})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}

func (r *fakeTransactionRepo) GetAllByPortfolio(_ context.Context, portfolioID int) ([]models.Transaction, error) {
	var out []models.Transaction
	for _, t := range r.transactions {
		if t.PortfolioID == portfolioID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *fakeTransactionRepo) snapshot() {
	r.saved = append([]models.Transaction(nil), r.transactions...)
}

func (r *fakeTransactionRepo) restore() {
	r.transactions = append([]models.Transaction(nil), r.saved...)
}

type restorable interface {
	snapshot()
	restore()
}

// fakeTxManager emulates the rollback semantics of the pgx transaction
// boundary: state mutated inside a failed unit of work is restored.
type fakeTxManager struct {
	stores []restorable
}

func (m *fakeTxManager) WithTx(_ context.Context, fn func(tx pgx.Tx) error) error {
	for _, s := range m.stores {
		s.snapshot()
	}
	if err := fn(nil); err != nil {
		for _, s := range m.stores {
			s.restore()
		}
		return err
	}
	return nil
}

type syncCall struct {
	codes     []string
	batchSize int
	pause     time.Duration
}

// fakeIngestService records what the sync policies ask for.
type fakeIngestService struct {
	catalogCalls int
	catalogErr   error
	ingestCalls  []syncCall
}

func (s *fakeIngestService) SyncCatalog(_ context.Context) (int, error) {
	s.catalogCalls++
	if s.catalogErr != nil {
		return 0, s.catalogErr
	}
	return 42, nil
}

func (s *fakeIngestService) IngestFund(_ context.Context, schemeCode string) IngestResult {
	return IngestResult{SchemeCode: schemeCode, Status: IngestStatusIngested}
}

func (s *fakeIngestService) IngestFunds(_ context.Context, codes []string, batchSize int, pause time.Duration) IngestStats {
	s.ingestCalls = append(s.ingestCalls, syncCall{codes: codes, batchSize: batchSize, pause: pause})
	return IngestStats{Total: len(codes), Ingested: len(codes)}
}

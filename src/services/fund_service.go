package services

import (
	"context"
	"fmt"
	"time"

	"mftracker/src/models"
	"mftracker/src/repositories"
	"mftracker/src/schemas"
	"mftracker/src/utils"
	redis_utils "mftracker/src/utils/redis"
)

const fundCacheTTL = time.Hour

type FundServiceI interface {
	SearchFunds(ctx context.Context, query string, limit int) ([]schemas.FundResponse, error)
	GetAllFunds(ctx context.Context, limit, offset int) ([]schemas.FundResponse, error)
	GetFeaturedFunds(ctx context.Context, limit int) ([]schemas.FundResponse, error)
	GetFundDetails(ctx context.Context, schemeCode string) (*schemas.FundDetailResponse, error)
	GetHistory(ctx context.Context, schemeCode, period string) ([]schemas.NavPointResponse, error)
}

// FundService answers catalog read queries. Detail and history lookups are
// cached in Redis; a missing cache only costs the extra store read.
type FundService struct {
	fundRepo repositories.FundRepository
	navRepo  repositories.NavRepository
	cache    *redis_utils.RedisHandler
}

func NewFundService(fundRepo repositories.FundRepository, navRepo repositories.NavRepository, cache *redis_utils.RedisHandler) *FundService {
	return &FundService{
		fundRepo: fundRepo,
		navRepo:  navRepo,
		cache:    cache,
	}
}

func (s *FundService) SearchFunds(ctx context.Context, query string, limit int) ([]schemas.FundResponse, error) {
	if query == "" {
		return []schemas.FundResponse{}, nil
	}
	if limit <= 0 {
		limit = 20
	}
	funds, err := s.fundRepo.Search(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	return toFundResponses(funds), nil
}

func (s *FundService) GetAllFunds(ctx context.Context, limit, offset int) ([]schemas.FundResponse, error) {
	if limit <= 0 {
		limit = 20
	}
	funds, err := s.fundRepo.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	return toFundResponses(funds), nil
}

func (s *FundService) GetFeaturedFunds(ctx context.Context, limit int) ([]schemas.FundResponse, error) {
	if limit <= 0 {
		limit = 10
	}
	funds, err := s.fundRepo.Featured(ctx, limit)
	if err != nil {
		return nil, err
	}
	return toFundResponses(funds), nil
}

// GetFundDetails returns one fund with its latest NAV, or nil when the
// scheme is unknown.
func (s *FundService) GetFundDetails(ctx context.Context, schemeCode string) (*schemas.FundDetailResponse, error) {
	logger := utils.LoggerFromContext(ctx)
	cacheKey := "fund:details:" + schemeCode

	var cached schemas.FundDetailResponse
	if hit, err := s.cache.Get(ctx, cacheKey, &cached); err != nil {
		logger.Warnf("fund details cache read failed: %v", err)
	} else if hit {
		return &cached, nil
	}

	fund, err := s.fundRepo.GetWithLatestNav(ctx, schemeCode)
	if err != nil {
		return nil, err
	}
	if fund == nil {
		return nil, nil
	}

	detail := &schemas.FundDetailResponse{
		FundResponse: schemas.FundResponse{
			SchemeCode: fund.SchemeCode,
			SchemeName: fund.SchemeName,
			FundHouse:  fund.FundHouse,
			Category:   fund.Category,
		},
		LatestNav:     fund.LatestNav,
		LatestNavDate: fund.LatestNavDate,
		UpdatedAt:     fund.UpdatedAt,
	}

	if err := s.cache.Set(ctx, cacheKey, detail, fundCacheTTL); err != nil {
		logger.Warnf("fund details cache write failed: %v", err)
	}
	return detail, nil
}

// GetHistory returns the fund's NAV series for the given period label
// (1M, 3M, 6M, 1Y, 3Y, 5Y, ALL), oldest first.
func (s *FundService) GetHistory(ctx context.Context, schemeCode, period string) ([]schemas.NavPointResponse, error) {
	logger := utils.LoggerFromContext(ctx)
	cacheKey := fmt.Sprintf("fund:history:%s:%s", schemeCode, period)

	var cached []schemas.NavPointResponse
	if hit, err := s.cache.Get(ctx, cacheKey, &cached); err != nil {
		logger.Warnf("fund history cache read failed: %v", err)
	} else if hit {
		return cached, nil
	}

	since := utils.PeriodStart(period, time.Now())
	points, err := s.navRepo.GetHistorySince(ctx, schemeCode, since)
	if err != nil {
		return nil, err
	}

	history := make([]schemas.NavPointResponse, 0, len(points))
	for _, p := range points {
		history = append(history, schemas.NavPointResponse{Date: p.NavDate, Nav: p.Nav})
	}

	if err := s.cache.Set(ctx, cacheKey, history, fundCacheTTL); err != nil {
		logger.Warnf("fund history cache write failed: %v", err)
	}
	return history, nil
}

func toFundResponses(funds []models.Fund) []schemas.FundResponse {
	responses := make([]schemas.FundResponse, 0, len(funds))
	for _, f := range funds {
		responses = append(responses, schemas.FundResponse{
			SchemeCode: f.SchemeCode,
			SchemeName: f.SchemeName,
			FundHouse:  f.FundHouse,
			Category:   f.Category,
		})
	}
	return responses
}

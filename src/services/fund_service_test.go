package services

import (
	"context"
	"testing"
	"time"

	"mftracker/src/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFundFixture() (*FundService, *fakeFundRepo, *fakeNavRepo) {
	fundRepo := newFakeFundRepo()
	navRepo := newFakeNavRepo()
	// nil cache is the always-miss degenerate case.
	return NewFundService(fundRepo, navRepo, nil), fundRepo, navRepo
}

func TestSearchFunds_EmptyQuery(t *testing.T) {
	service, _, _ := newFundFixture()

	results, err := service.SearchFunds(context.Background(), "", 20)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearchFunds_MatchesByName(t *testing.T) {
	service, fundRepo, _ := newFundFixture()
	fundRepo.funds["120503"] = models.Fund{SchemeCode: "120503", SchemeName: "Parag Parikh Flexi Cap Fund - Direct Plan - Growth"}
	fundRepo.funds["100033"] = models.Fund{SchemeCode: "100033", SchemeName: "Aditya Birla Sun Life Equity Fund"}

	results, err := service.SearchFunds(context.Background(), "parag", 20)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "120503", results[0].SchemeCode)
}

func TestGetFundDetails_UnknownScheme(t *testing.T) {
	service, _, _ := newFundFixture()

	detail, err := service.GetFundDetails(context.Background(), "999999")
	require.NoError(t, err)
	assert.Nil(t, detail)
}

func TestGetFundDetails_KnownScheme(t *testing.T) {
	service, fundRepo, _ := newFundFixture()
	fundRepo.funds["120503"] = models.Fund{
		SchemeCode: "120503",
		SchemeName: "Parag Parikh Flexi Cap Fund - Direct Plan - Growth",
		FundHouse:  "PPFAS Mutual Fund",
		Category:   "Equity Scheme - Flexi Cap Fund",
	}

	detail, err := service.GetFundDetails(context.Background(), "120503")
	require.NoError(t, err)
	require.NotNil(t, detail)
	assert.Equal(t, "PPFAS Mutual Fund", detail.FundHouse)
}

func TestGetHistory_OldestFirstWithinPeriod(t *testing.T) {
	service, _, navRepo := newFundFixture()

	now := time.Now().UTC().Truncate(24 * time.Hour)
	points := []models.NavPoint{
		{SchemeCode: "120503", NavDate: now.AddDate(0, 0, -1), Nav: 75.2},
		{SchemeCode: "120503", NavDate: now.AddDate(0, 0, -10), Nav: 74.8},
		{SchemeCode: "120503", NavDate: now.AddDate(0, -2, 0), Nav: 71.3},
	}
	require.NoError(t, navRepo.InsertHistoryBatch(context.Background(), points))

	history, err := service.GetHistory(context.Background(), "120503", "1M")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.True(t, history[0].Date.Before(history[1].Date))
	assert.Equal(t, 74.8, history[0].Nav)
	assert.Equal(t, 75.2, history[1].Nav)
}

func TestGetHistory_AllPeriod(t *testing.T) {
	service, _, navRepo := newFundFixture()

	now := time.Now().UTC().Truncate(24 * time.Hour)
	points := []models.NavPoint{
		{SchemeCode: "120503", NavDate: now.AddDate(-8, 0, 0), Nav: 10.0},
		{SchemeCode: "120503", NavDate: now.AddDate(0, 0, -1), Nav: 75.2},
	}
	require.NoError(t, navRepo.InsertHistoryBatch(context.Background(), points))

	history, err := service.GetHistory(context.Background(), "120503", "ALL")
	require.NoError(t, err)
	assert.Len(t, history, 2)
}

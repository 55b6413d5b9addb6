package mfapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetAllSchemes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"schemeCode": 120503, "schemeName": "Parag Parikh Flexi Cap Fund - Direct Plan - Growth"},
			{"schemeCode": 100033, "schemeName": "Aditya Birla Sun Life Equity Fund"}
		]`))
	}))
	defer server.Close()

	client := NewMFAPIServiceClient(server.URL, 5*time.Second)
	schemes, err := client.GetAllSchemes(context.Background())
	require.NoError(t, err)
	require.Len(t, schemes, 2)
	assert.Equal(t, 120503, schemes[0].SchemeCode)
	assert.Equal(t, "Parag Parikh Flexi Cap Fund - Direct Plan - Growth", schemes[0].SchemeName)
}

func TestGetAllSchemes_Non200(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewMFAPIServiceClient(server.URL, 5*time.Second)
	_, err := client.GetAllSchemes(context.Background())
	assert.Error(t, err)
}

func TestGetAllSchemes_MalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>maintenance</html>`))
	}))
	defer server.Close()

	client := NewMFAPIServiceClient(server.URL, 5*time.Second)
	_, err := client.GetAllSchemes(context.Background())
	assert.Error(t, err)
}

func TestGetSchemeDetail(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/120503", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"meta": {
				"fund_house": "PPFAS Mutual Fund",
				"scheme_type": "Open Ended Schemes",
				"scheme_category": "Equity Scheme - Flexi Cap Fund",
				"scheme_code": 120503,
				"scheme_name": "Parag Parikh Flexi Cap Fund - Direct Plan - Growth"
			},
			"data": [
				{"date": "14-06-2024", "nav": "75.4321"},
				{"date": "13-06-2024", "nav": "75.1200"}
			],
			"status": "SUCCESS"
		}`))
	}))
	defer server.Close()

	client := NewMFAPIServiceClient(server.URL, 5*time.Second)
	detail, err := client.GetSchemeDetail(context.Background(), "120503")
	require.NoError(t, err)
	require.NotNil(t, detail.Meta)
	assert.Equal(t, "PPFAS Mutual Fund", detail.Meta.FundHouse)
	assert.Equal(t, 120503, detail.Meta.SchemeCode)
	require.Len(t, detail.Data, 2)
	assert.Equal(t, "14-06-2024", detail.Data[0].Date)
	assert.Equal(t, "75.4321", detail.Data[0].Nav)
}

func TestGetSchemeDetail_EmptyPayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"meta": null, "data": [], "status": "FAILURE"}`))
	}))
	defer server.Close()

	client := NewMFAPIServiceClient(server.URL, 5*time.Second)
	detail, err := client.GetSchemeDetail(context.Background(), "999999")
	require.NoError(t, err)
	assert.Nil(t, detail.Meta)
	assert.Empty(t, detail.Data)
}

func TestGetSchemeDetail_Non200(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := NewMFAPIServiceClient(server.URL, 5*time.Second)
	_, err := client.GetSchemeDetail(context.Background(), "999999")
	assert.Error(t, err)
}

func TestSchemeCodeString(t *testing.T) {
	assert.Equal(t, "120503", SchemeCodeString(120503))
}

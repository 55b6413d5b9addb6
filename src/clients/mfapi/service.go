package mfapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	requests "mftracker/src/utils/requests"
)

type MFAPIServiceClientI interface {
	GetAllSchemes(ctx context.Context) ([]SchemeSummary, error)
	GetSchemeDetail(ctx context.Context, schemeCode string) (*SchemeDetail, error)
}

// MFAPIServiceClient is a struct that uses ExternalAPIService to interact with the MFAPI source
type MFAPIServiceClient struct {
	API     *requests.ExternalAPIService
	BaseURL string
}

// NewMFAPIServiceClient creates a new instance of MFAPIServiceClient
func NewMFAPIServiceClient(baseURL string, timeout time.Duration) *MFAPIServiceClient {
	api := requests.NewExternalAPIService(timeout)
	return &MFAPIServiceClient{API: api, BaseURL: baseURL}
}

// GetAllSchemes retrieves the full catalog listing of (schemeCode, schemeName)
// pairs. There is no retry here; the caller waits for its next scheduled
// window on failure.
func (s *MFAPIServiceClient) GetAllSchemes(ctx context.Context) ([]SchemeSummary, error) {
	resp, err := s.API.Get(ctx, s.BaseURL, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("scheme listing returned status %s", resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var result []SchemeSummary
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// GetSchemeDetail retrieves the metadata and full NAV history for one scheme.
func (s *MFAPIServiceClient) GetSchemeDetail(ctx context.Context, schemeCode string) (*SchemeDetail, error) {
	resp, err := s.API.Get(ctx, s.BaseURL+"/"+schemeCode, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("scheme %s detail returned status %s", schemeCode, resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	result := new(SchemeDetail)
	if err := json.Unmarshal(body, result); err != nil {
		return nil, err
	}
	return result, nil
}

// SchemeCodeString normalizes the numeric catalog code into the string key
// used across storage.
func SchemeCodeString(code int) string {
	return strconv.Itoa(code)
}

package requests

import (
	"context"
	"net/http"
	"net/url"
	"time"
)

// ExternalAPIService is a thin HTTP helper for unauthenticated external
// sources. Every request runs on a client with a bounded timeout so a hung
// connection cannot occupy an ingestion slot indefinitely.
type ExternalAPIService struct {
	Client *http.Client
}

// NewExternalAPIService creates a new instance of ExternalAPIService
func NewExternalAPIService(timeout time.Duration) *ExternalAPIService {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &ExternalAPIService{
		Client: &http.Client{Timeout: timeout},
	}
}

// Get makes a GET request to the external service, accepting optional query parameters
func (s *ExternalAPIService) Get(ctx context.Context, endpoint string, params url.Values) (*http.Response, error) {
	if params != nil {
		endpoint = endpoint + "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	return s.Client.Do(req)
}

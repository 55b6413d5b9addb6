package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"mftracker/src/services"
	"mftracker/src/utils"
)

type Handler struct {
	FundService      services.FundServiceI
	PortfolioService services.PortfolioServiceI
}

func NewHandler(fundService services.FundServiceI, portfolioService services.PortfolioServiceI) *Handler {
	return &Handler{
		FundService:      fundService,
		PortfolioService: portfolioService,
	}
}

// userID extracts the opaque authenticated user identifier. Credential
// issuance and verification live in the auth layer in front of this
// service; by the time a request lands here the header is trusted.
func userID(r *http.Request) string {
	return r.Header.Get("X-User-ID")
}

func (h *Handler) respond(w http.ResponseWriter, _ *http.Request, data interface{}, status int) {
	res, err := json.Marshal(data)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	_, _ = w.Write(res)
}

func (h *Handler) HandleErrors(w http.ResponseWriter, err error) {
	var httpErr *utils.HTTPError
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		h.respond(w, nil, map[string]string{"error": "Request timed out"}, http.StatusGatewayTimeout)
	case errors.Is(err, services.ErrNoSuchHolding),
		errors.Is(err, services.ErrInsufficientUnits),
		errors.Is(err, services.ErrInvalidTransaction):
		h.respond(w, nil, map[string]string{"error": err.Error()}, http.StatusBadRequest)
	case errors.As(err, &httpErr):
		h.respond(w, nil, map[string]string{"error": httpErr.Message}, httpErr.Code)
	case err != nil:
		h.respond(w, nil, map[string]string{"error": err.Error()}, http.StatusInternalServerError)
	default:
		h.respond(w, nil, map[string]string{"error": "Unhandled error"}, http.StatusInternalServerError)
	}
}

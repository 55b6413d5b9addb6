package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"mftracker/src/schemas"
	"mftracker/src/services"
	"mftracker/src/utils"
)

func contextWithTimeout(r *http.Request, timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), timeout)
}

func (h *Handler) GetPortfolioSummary(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := contextWithTimeout(r, 10*time.Second)
	defer cancel()

	user := userID(r)
	if user == "" {
		h.HandleErrors(w, utils.BadRequest("missing user identity"))
		return
	}

	summary, err := h.PortfolioService.GetPortfolioSummary(ctx, user)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}
	h.respond(w, r, summary, http.StatusOK)
}

func (h *Handler) GetTransactions(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := contextWithTimeout(r, 10*time.Second)
	defer cancel()

	user := userID(r)
	if user == "" {
		h.HandleErrors(w, utils.BadRequest("missing user identity"))
		return
	}

	schemeCode := r.URL.Query().Get("schemeCode")
	transactions, err := h.PortfolioService.GetTransactions(ctx, user, schemeCode)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}
	h.respond(w, r, transactions, http.StatusOK)
}

func (h *Handler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := contextWithTimeout(r, 10*time.Second)
	defer cancel()

	user := userID(r)
	if user == "" {
		h.HandleErrors(w, utils.BadRequest("missing user identity"))
		return
	}

	var req schemas.TransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.HandleErrors(w, utils.BadRequest("invalid request body"))
		return
	}

	input := services.ApplyTransactionInput{
		SchemeCode:   req.SchemeCode,
		Type:         req.Type,
		Units:        req.Units,
		PricePerUnit: req.PricePerUnit,
	}
	if req.Date != "" {
		date, err := time.Parse(utils.ShortDashDateLayout, req.Date)
		if err != nil {
			h.HandleErrors(w, utils.BadRequest("invalid date, expected YYYY-MM-DD"))
			return
		}
		input.Date = date
	}

	if err := h.PortfolioService.ApplyTransaction(ctx, user, input); err != nil {
		h.HandleErrors(w, err)
		return
	}
	h.respond(w, r, map[string]bool{"success": true}, http.StatusCreated)
}

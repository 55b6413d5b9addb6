package handlers

import (
	"net/http"
	"strconv"
	"time"

	"mftracker/src/utils"

	"github.com/go-chi/chi/v5"
)

func (h *Handler) SearchFunds(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := contextWithTimeout(r, 10*time.Second)
	defer cancel()

	query := r.URL.Query().Get("q")
	limit := intQueryParam(r, "limit", 20)

	funds, err := h.FundService.SearchFunds(ctx, query, limit)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}
	h.respond(w, r, funds, http.StatusOK)
}

func (h *Handler) GetAllFunds(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := contextWithTimeout(r, 10*time.Second)
	defer cancel()

	limit := intQueryParam(r, "limit", 20)
	offset := intQueryParam(r, "offset", 0)

	funds, err := h.FundService.GetAllFunds(ctx, limit, offset)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}
	h.respond(w, r, funds, http.StatusOK)
}

func (h *Handler) GetFeaturedFunds(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := contextWithTimeout(r, 10*time.Second)
	defer cancel()

	funds, err := h.FundService.GetFeaturedFunds(ctx, intQueryParam(r, "limit", 10))
	if err != nil {
		h.HandleErrors(w, err)
		return
	}
	h.respond(w, r, funds, http.StatusOK)
}

func (h *Handler) GetFundDetails(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := contextWithTimeout(r, 10*time.Second)
	defer cancel()

	schemeCode := chi.URLParam(r, "schemeCode")
	detail, err := h.FundService.GetFundDetails(ctx, schemeCode)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}
	if detail == nil {
		h.HandleErrors(w, utils.NotFound("fund not found: "+schemeCode))
		return
	}
	h.respond(w, r, detail, http.StatusOK)
}

func (h *Handler) GetFundHistory(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := contextWithTimeout(r, 10*time.Second)
	defer cancel()

	schemeCode := chi.URLParam(r, "schemeCode")
	period := r.URL.Query().Get("period")
	if period == "" {
		period = "1M"
	}

	history, err := h.FundService.GetHistory(ctx, schemeCode, period)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}
	h.respond(w, r, history, http.StatusOK)
}

func intQueryParam(r *http.Request, name string, fallback int) int {
	value := r.URL.Query().Get(name)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed < 0 {
		return fallback
	}
	return parsed
}

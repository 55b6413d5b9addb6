package handlers

import (
	"net/http"

	"mftracker/src/utils"
)

// The sync triggers run the same policies the cron tasks do; they exist so
// an operator can kick a cycle without waiting for the next tick. Runs are
// synchronous: the response returns once the cycle completes.

func (h *Handler) TriggerCatalogSync(w http.ResponseWriter, r *http.Request) {
	if err := h.SyncService.SyncMetadata(r.Context()); err != nil {
		h.HandleErrors(w, utils.ServiceUnavailable(err.Error()))
		return
	}
	h.respond(w, r, map[string]string{"status": "catalog sync complete"}, http.StatusOK)
}

func (h *Handler) TriggerActiveSync(w http.ResponseWriter, r *http.Request) {
	if err := h.SyncService.SyncActiveFunds(r.Context()); err != nil {
		h.HandleErrors(w, utils.ServiceUnavailable(err.Error()))
		return
	}
	h.respond(w, r, map[string]string{"status": "active sync complete"}, http.StatusOK)
}

func (h *Handler) TriggerFullSync(w http.ResponseWriter, r *http.Request) {
	if err := h.SyncService.SyncFullUniverse(r.Context()); err != nil {
		h.HandleErrors(w, utils.ServiceUnavailable(err.Error()))
		return
	}
	h.respond(w, r, map[string]string{"status": "full sync complete"}, http.StatusOK)
}

func (h *Handler) TriggerBackfill(w http.ResponseWriter, r *http.Request) {
	if err := h.SyncService.Backfill(r.Context()); err != nil {
		h.HandleErrors(w, utils.ServiceUnavailable(err.Error()))
		return
	}
	h.respond(w, r, map[string]string{"status": "backfill complete"}, http.StatusOK)
}

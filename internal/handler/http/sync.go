package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/MKhiriev/go-farrier-sync/internal/app"
	"github.com/MKhiriev/go-farrier-sync/internal/logger"
	"github.com/MKhiriev/go-farrier-sync/internal/schema"
	"github.com/MKhiriev/go-farrier-sync/internal/utils"
	"github.com/MKhiriev/go-farrier-sync/models"
)

func (h *Handler) getStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	pending, err := h.services.MutationQueue.Pending(ctx)
	if err != nil {
		log.Err(err).Str("func", "*Handler.getStatus").Msg("error listing pending stores")
		http.Error(w, "error listing pending stores", statusFromError(err))
		return
	}

	schemaVersion, err := h.services.AppInfoService.GetSchemaVersion(ctx)
	if err != nil {
		log.Err(err).Str("func", "*Handler.getStatus").Msg("error reading schema version")
		http.Error(w, app.MsgInternalServerError, statusFromError(err))
		return
	}

	response := models.SyncStatusResponse{
		AppVersion:    h.services.AppInfoService.GetAppVersion(ctx),
		SchemaVersion: schemaVersion,
		Pending:       pending,
		Indicators:    h.services.Indicators.Snapshot(),
	}

	writeJSON(w, r, response, http.StatusOK)
}

// push backs up every pending queue. The report is returned even when the
// run was aborted, with the status of the aborting error.
func (h *Handler) push(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	pending, err := h.services.MutationQueue.Pending(ctx)
	if err != nil {
		log.Err(err).Str("func", "*Handler.push").Msg("error listing pending stores")
		http.Error(w, "error listing pending stores", statusFromError(err))
		return
	}

	result, err := h.services.BackupService.Backup(ctx, pending)
	if err != nil {
		log.Err(err).Str("func", "*Handler.push").Msg("backup aborted")
		writeJSON(w, r, result, statusFromError(err))
		return
	}

	writeJSON(w, r, result, http.StatusOK)
}

func (h *Handler) pull(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	var request models.TransferTablesRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil && !errors.Is(err, io.EOF) {
		log.Err(err).Str("func", "*Handler.pull").Msg("Invalid JSON was passed")
		http.Error(w, app.MsgInvalidDataProvided, http.StatusBadRequest)
		return
	}
	if len(request.Tables) == 0 {
		request.Tables = schema.Tables()
	}

	if err := h.validator.Validate(ctx, request.Tables); err != nil {
		log.Err(err).Str("func", "*Handler.pull").Msg("invalid tables requested")
		http.Error(w, err.Error(), statusFromError(err))
		return
	}

	result, err := h.services.TransferService.Transfer(ctx, request.Tables)
	if err != nil {
		log.Err(err).Str("func", "*Handler.pull").Msg("transfer aborted")
		writeJSON(w, r, result, statusFromError(err))
		return
	}

	writeJSON(w, r, result, http.StatusOK)
}

func (h *Handler) flushErrors(w http.ResponseWriter, r *http.Request) {
	sent, err := h.services.TelemetryService.Flush(r.Context())
	if err != nil {
		logger.FromRequest(r).Err(err).Str("func", "*Handler.flushErrors").Int("sent", sent).Msg("flush stopped")
		writeJSON(w, r, models.FlushResponse{Sent: sent}, statusFromError(err))
		return
	}

	writeJSON(w, r, models.FlushResponse{Sent: sent}, http.StatusOK)
}

func writeJSON(w http.ResponseWriter, r *http.Request, v any, status int) {
	if err := utils.WriteJSON(w, v, status); err != nil {
		logger.FromRequest(r).Err(err).Str("func", "writeJSON").Msg("error writing response")
	}
}

package http

import (
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/MKhiriev/go-farrier-sync/internal/app"
	"github.com/MKhiriev/go-farrier-sync/internal/logger"
	"github.com/MKhiriev/go-farrier-sync/internal/schema"
	"github.com/MKhiriev/go-farrier-sync/internal/validators"
	"github.com/MKhiriev/go-farrier-sync/models"
)

// createRecord queues a new entity and answers 201 with the stored record,
// locally minted ids included.
func (h *Handler) createRecord(w http.ResponseWriter, r *http.Request) {
	m, ok := h.readMutation(w, r, schema.OpAdd)
	if !ok {
		return
	}

	stored, err := h.services.MutationQueue.Create(r.Context(), m.Entity, m.Record)
	if err != nil {
		logger.FromRequest(r).Err(err).Str("func", "*Handler.createRecord").Str("entity", string(m.Entity)).Msg("error queueing new record")
		http.Error(w, err.Error(), statusFromError(err))
		return
	}

	writeJSON(w, r, stored, http.StatusCreated)
}

func (h *Handler) editRecord(w http.ResponseWriter, r *http.Request) {
	m, ok := h.readMutation(w, r, schema.OpEdit)
	if !ok {
		return
	}

	if err := h.services.MutationQueue.Edit(r.Context(), m.Entity, m.Record); err != nil {
		logger.FromRequest(r).Err(err).Str("func", "*Handler.editRecord").Str("entity", string(m.Entity)).Msg("error queueing edit")
		http.Error(w, err.Error(), statusFromError(err))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// deleteRecord takes the identifying keys of the record in the body.
func (h *Handler) deleteRecord(w http.ResponseWriter, r *http.Request) {
	m, ok := h.readMutation(w, r, schema.OpDelete)
	if !ok {
		return
	}

	if err := h.services.MutationQueue.Delete(r.Context(), m.Entity, m.Record); err != nil {
		logger.FromRequest(r).Err(err).Str("func", "*Handler.deleteRecord").Str("entity", string(m.Entity)).Msg("error queueing delete")
		http.Error(w, err.Error(), statusFromError(err))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) saveSettings(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	rec, ok := readRecord(w, r)
	if !ok {
		return
	}

	change := models.SettingsChange{Section: schema.SettingsSection(chi.URLParam(r, "section")), Record: rec}
	if err := h.validator.Validate(r.Context(), change, validators.FieldSection, validators.FieldRecord); err != nil {
		log.Err(err).Str("func", "*Handler.saveSettings").Msg("invalid settings change")
		http.Error(w, err.Error(), statusFromError(err))
		return
	}

	if err := h.services.MutationQueue.SaveSettings(r.Context(), change.Section, change.Record); err != nil {
		log.Err(err).Str("func", "*Handler.saveSettings").Str("section", string(change.Section)).Msg("error saving settings")
		http.Error(w, err.Error(), statusFromError(err))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// listRecords returns a whole mirror, or with ?index=&value= the records
// whose indexed field equals value.
func (h *Handler) listRecords(w http.ResponseWriter, r *http.Request) {
	name := schema.StoreName(chi.URLParam(r, "store"))
	query := r.URL.Query()

	var (
		recs []models.Record
		err  error
	)
	if index := query.Get("index"); index != "" {
		recs, err = h.services.Mirrors.RecordsByIndex(r.Context(), name, index, parseKey(query.Get("value")))
	} else {
		recs, err = h.services.Mirrors.Records(r.Context(), name)
	}
	if err != nil {
		logger.FromRequest(r).Err(err).Str("func", "*Handler.listRecords").Str("store", string(name)).Msg("error reading mirror")
		http.Error(w, err.Error(), statusFromError(err))
		return
	}

	if recs == nil {
		recs = []models.Record{}
	}
	writeJSON(w, r, recs, http.StatusOK)
}

func (h *Handler) getRecord(w http.ResponseWriter, r *http.Request) {
	name := schema.StoreName(chi.URLParam(r, "store"))

	rec, err := h.services.Mirrors.Record(r.Context(), name, parseKey(chi.URLParam(r, "key")))
	if err != nil {
		http.Error(w, err.Error(), statusFromError(err))
		return
	}

	writeJSON(w, r, rec, http.StatusOK)
}

// readMutation decodes the record body and checks the request shape. The
// id, key and parent rules are enforced by the mutation queue.
func (h *Handler) readMutation(w http.ResponseWriter, r *http.Request, op schema.Operation) (models.Mutation, bool) {
	rec, ok := readRecord(w, r)
	if !ok {
		return models.Mutation{}, false
	}

	m := models.Mutation{Entity: schema.EntityName(chi.URLParam(r, "entity")), Op: op, Record: rec}
	err := h.validator.Validate(r.Context(), m, validators.FieldEntity, validators.FieldOperation, validators.FieldRecord)
	if err != nil {
		logger.FromRequest(r).Err(err).Str("func", "*Handler.readMutation").Msg("invalid mutation")
		http.Error(w, err.Error(), statusFromError(err))
		return models.Mutation{}, false
	}
	return m, true
}

func readRecord(w http.ResponseWriter, r *http.Request) (models.Record, bool) {
	body, err := io.ReadAll(r.Body)
	if err == nil {
		var rec models.Record
		if rec, err = models.DecodeRecord(body); err == nil {
			return rec, true
		}
	}

	logger.FromRequest(r).Err(err).Str("func", "readRecord").Msg("Invalid JSON was passed")
	http.Error(w, app.MsgInvalidDataProvided, http.StatusBadRequest)
	return nil, false
}

// parseKey reads a key from a URL. Integers are matched as numbers, anything
// else as a string.
func parseKey(raw string) any {
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return n
	}
	return raw
}

package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/dmitrijs2005/spendy/internal/server/services"
	"github.com/dmitrijs2005/spendy/internal/timex"
)

func (h *Handler) pullEntries(w http.ResponseWriter, r *http.Request) {
	since, err := timestampParam(r, "lastPullRequestTimestamp")
	if err != nil {
		h.fail(w, r, err)
		return
	}

	list, err := h.entries.Pull(r.Context(), ownerFrom(r.Context()), since)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, entryDTOs(list))
}

// entriesByDate accepts either start and end timestamps or a single
// calendar date, which selects that whole UTC day.
func (h *Handler) entriesByDate(w http.ResponseWriter, r *http.Request) {
	var start, end time.Time
	if r.URL.Query().Has("date") {
		day, err := timestampParam(r, "date")
		if err != nil {
			h.fail(w, r, err)
			return
		}
		rng, err := timex.DayRange(day.Year(), int(day.Month()), day.Day(), time.UTC)
		if err != nil {
			h.fail(w, r, paramError("date", "%v", err))
			return
		}
		start, end = rng.Start, rng.End
	} else {
		var err error
		if start, err = timestampParam(r, "start"); err != nil {
			h.fail(w, r, err)
			return
		}
		if end, err = timestampParam(r, "end"); err != nil {
			h.fail(w, r, err)
			return
		}
	}

	list, err := h.entries.ByDateRange(r.Context(), ownerFrom(r.Context()), start, end)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, entryDTOs(list))
}

func (h *Handler) createEntries(w http.ResponseWriter, r *http.Request) {
	var req []EntryDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Malformed JSON body")
		return
	}

	res, err := h.entries.CreateBatch(r.Context(), ownerFrom(r.Context()), entryModels(req))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	h.metrics.observeSync("create", "saved", len(res.Saved))
	h.metrics.observeSync("create", "conflict_on_id", len(res.ConflictingOnID))
	h.metrics.observeSync("create", "conflict_on_category", len(res.ConflictingOnCategory))

	code := http.StatusCreated
	if !res.Created() {
		code = http.StatusConflict
	}
	respondWithJSON(w, code, createResponse(res))
}

func (h *Handler) updateEntries(w http.ResponseWriter, r *http.Request) {
	var req []EntryDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Malformed JSON body")
		return
	}

	res, err := h.entries.UpdateBatch(r.Context(), ownerFrom(r.Context()), entryModels(req))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	h.metrics.observeSync("update", services.Updated.String(), len(res.Updated))
	h.metrics.observeSync("update", services.ConflictOnID.String(), len(res.ConflictingOnID))
	h.metrics.observeSync("update", services.ConflictOnCategory.String(), len(res.ConflictingOnCategory))
	h.metrics.observeSync("update", services.ConflictOnLastUpdate.String(), len(res.ConflictingOnLastUpdate))

	code := http.StatusOK
	if !res.AllUpdated() {
		code = http.StatusConflict
	}
	respondWithJSON(w, code, updateResponse(res))
}

func (h *Handler) replaceCategory(w http.ResponseWriter, r *http.Request) {
	oldID, err := uuidParam(r, "oldCategoryUUID")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	newID, err := uuidParam(r, "newCategoryUUID")
	if err != nil {
		h.fail(w, r, err)
		return
	}

	rewritten, err := h.entries.ReplaceCategory(r.Context(), ownerFrom(r.Context()), oldID, newID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, updateResponse(&services.UpdateResult{Updated: rewritten}))
}

// deleteEntries answers 204 when every uuid is gone and 409 with the
// remaining uuids otherwise.
func (h *Handler) deleteEntries(w http.ResponseWriter, r *http.Request) {
	ids, err := uuidListParam(r, "entryUUIDs")
	if err != nil {
		h.fail(w, r, err)
		return
	}

	res, err := h.entries.DeleteBatch(r.Context(), ownerFrom(r.Context()), ids)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	h.metrics.observeSync("delete", "deleted", len(ids)-len(res.ConflictingEntries))
	h.metrics.observeSync("delete", "conflict", len(res.ConflictingEntries))

	code := http.StatusNoContent
	if !res.Success {
		code = http.StatusConflict
	}
	respondWithJSON(w, code, DeleteEntriesResponse{
		Result:             res.Success,
		Message:            res.Message,
		Timestamp:          res.DeletedAt,
		ConflictingEntries: res.ConflictingEntries,
	})
}

func (h *Handler) deleteEntriesByCategory(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "categoryUUID")
	if err != nil {
		h.fail(w, r, err)
		return
	}

	n, err := h.entries.DeleteByCategory(r.Context(), ownerFrom(r.Context()), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.metrics.observeSync("delete_by_category", "deleted", int(n))
	respondWithJSON(w, http.StatusNoContent, nil)
}

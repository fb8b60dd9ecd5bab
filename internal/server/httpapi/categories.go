package httpapi

import (
	"encoding/json"
	"net/http"
)

func (h *Handler) listCategories(w http.ResponseWriter, r *http.Request) {
	list, err := h.categories.List(r.Context(), ownerFrom(r.Context()))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	out := make([]CategoryDTO, 0, len(list))
	for _, c := range list {
		out = append(out, categoryDTO(c))
	}
	respondWithJSON(w, http.StatusOK, out)
}

func (h *Handler) createCategory(w http.ResponseWriter, r *http.Request) {
	var req CategoryDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Malformed JSON body")
		return
	}

	created, err := h.categories.Create(r.Context(), ownerFrom(r.Context()), req.model())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, categoryDTO(created))
}

func (h *Handler) updateCategory(w http.ResponseWriter, r *http.Request) {
	var req CategoryDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Malformed JSON body")
		return
	}

	updated, err := h.categories.Update(r.Context(), ownerFrom(r.Context()), req.model())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, categoryDTO(updated))
}

func (h *Handler) deleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "categoryUUID")
	if err != nil {
		h.fail(w, r, err)
		return
	}

	if err := h.categories.Delete(r.Context(), id, ownerFrom(r.Context())); err != nil {
		h.fail(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusNoContent, nil)
}

package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/spendy/internal/common"
)

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	if code == http.StatusNoContent {
		w.WriteHeader(code)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if payload != nil {
		json.NewEncoder(w).Encode(payload)
	}
}

// statusFor maps a service error to a response status and a message that is
// safe to show to the caller.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, common.ErrValidation):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, common.ErrCategoryExists):
		return http.StatusConflict, "Category already exists."
	case errors.Is(err, common.ErrCategoryHasEntries):
		return http.StatusConflict, "Category has entries."
	case errors.Is(err, common.ErrCategoryNotFound):
		return http.StatusNotFound, "Category not found."
	case errors.Is(err, common.ErrTokenExpired):
		return http.StatusUnauthorized, "Token has expired."
	case errors.Is(err, common.ErrInvalidToken), errors.Is(err, common.ErrOwnerNotFound):
		return http.StatusUnauthorized, "Unauthorized"
	default:
		return http.StatusInternalServerError, "Internal Server Error"
	}
}

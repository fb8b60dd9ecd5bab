package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/spendy/internal/timex"
)

// sumByCalendarBuckets answers [day, month, year, lifetime] sums per
// category for the calendar date in ?date, taken in ?timezoneOffset.
func (h *Handler) sumByCalendarBuckets(w http.ResponseWriter, r *http.Request) {
	categories, err := uuidListParam(r, "categories")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	date, err := timestampParam(r, "date")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	loc, err := timex.ParseOffset(offsetParam(r, "timezoneOffset"))
	if err != nil {
		h.fail(w, r, paramError("timezoneOffset", "%v", err))
		return
	}

	sums, err := h.aggregates.SumByCalendarBuckets(r.Context(), ownerFrom(r.Context()), categories,
		date.Day(), int(date.Month()), date.Year(), loc)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	out := make(map[string][]int64, len(sums))
	for id, b := range sums {
		out[id.String()] = b[:]
	}
	respondWithJSON(w, http.StatusOK, out)
}

func (h *Handler) sumByDateRange(w http.ResponseWriter, r *http.Request) {
	categories, err := uuidListParam(r, "categories")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	start, err := timestampParam(r, "start")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	end, err := timestampParam(r, "end")
	if err != nil {
		h.fail(w, r, err)
		return
	}

	sums, err := h.aggregates.SumByDateRange(r.Context(), ownerFrom(r.Context()), categories, start, end)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, sums)
}

func (h *Handler) sumByMonths(w http.ResponseWriter, r *http.Request) {
	categories, err := uuidListParam(r, "categories")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	year, err := intParam(r, "year")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	months, err := intListParam(r, "months")
	if err != nil {
		h.fail(w, r, err)
		return
	}

	sums, err := h.aggregates.SumByMonthsOfYear(r.Context(), ownerFrom(r.Context()), categories,
		year, months, offsetParam(r, "timezoneOffset"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, sums)
}

package httpapi

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/spendy/internal/common"
	"github.com/google/uuid"
)

// Layouts accepted for timestamp query parameters. Timestamps without a
// zone are read as UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02",
}

func paramError(name, format string, args ...any) error {
	return fmt.Errorf("%w: parameter %s: %s", common.ErrValidation, name, fmt.Sprintf(format, args...))
}

// listParam gathers a multi-valued parameter given either repeatedly or as
// a comma separated list.
func listParam(r *http.Request, name string) []string {
	var out []string
	for _, v := range r.URL.Query()[name] {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func uuidParam(r *http.Request, name string) (uuid.UUID, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return uuid.Nil, paramError(name, "is required")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, paramError(name, "%q is not a uuid", raw)
	}
	return id, nil
}

func uuidListParam(r *http.Request, name string) ([]uuid.UUID, error) {
	raw := listParam(r, name)
	if len(raw) == 0 {
		return nil, paramError(name, "is required")
	}
	ids := make([]uuid.UUID, 0, len(raw))
	for _, s := range raw {
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, paramError(name, "%q is not a uuid", s)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func intParam(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, paramError(name, "is required")
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, paramError(name, "%q is not a number", raw)
	}
	return n, nil
}

func intListParam(r *http.Request, name string) ([]int, error) {
	raw := listParam(r, name)
	if len(raw) == 0 {
		return nil, paramError(name, "is required")
	}
	out := make([]int, 0, len(raw))
	for _, s := range raw {
		n, err := strconv.Atoi(s)
		if err != nil {
			return nil, paramError(name, "%q is not a number", s)
		}
		out = append(out, n)
	}
	return out, nil
}

func timestampParam(r *http.Request, name string) (time.Time, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return time.Time{}, paramError(name, "is required")
	}
	// A '+' in an unescaped query string arrives as a space.
	raw = strings.ReplaceAll(raw, " ", "+")
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, paramError(name, "%q is not an ISO-8601 timestamp", raw)
}

// offsetParam reads a UTC offset such as "+02:00". An empty value means UTC.
func offsetParam(r *http.Request, name string) string {
	raw := r.URL.Query().Get(name)
	if strings.HasPrefix(raw, " ") {
		raw = "+" + raw[1:]
	}
	return raw
}

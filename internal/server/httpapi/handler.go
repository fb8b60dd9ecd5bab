// Package httpapi exposes the ledger services over a JSON REST API routed
// with gorilla/mux.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/dmitrijs2005/spendy/internal/logging"
	"github.com/dmitrijs2005/spendy/internal/server/auth"
	"github.com/dmitrijs2005/spendy/internal/server/models"
	"github.com/dmitrijs2005/spendy/internal/server/services"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

type CategoryService interface {
	List(ctx context.Context, owner string) ([]*models.Category, error)
	Create(ctx context.Context, owner string, category *models.Category) (*models.Category, error)
	Update(ctx context.Context, owner string, category *models.Category) (*models.Category, error)
	Delete(ctx context.Context, id uuid.UUID, owner string) error
}

type EntryService interface {
	CreateBatch(ctx context.Context, owner string, items []*models.Entry) (*services.CreateResult, error)
	UpdateBatch(ctx context.Context, owner string, items []*models.Entry) (*services.UpdateResult, error)
	ReplaceCategory(ctx context.Context, owner string, oldID, newID uuid.UUID) ([]*models.Entry, error)
	DeleteBatch(ctx context.Context, owner string, ids []uuid.UUID) (*services.DeleteResult, error)
	DeleteByCategory(ctx context.Context, owner string, categoryID uuid.UUID) (int64, error)
	Pull(ctx context.Context, owner string, since time.Time) ([]*models.Entry, error)
	ByDateRange(ctx context.Context, owner string, start, end time.Time) ([]*models.Entry, error)
}

type AggregateService interface {
	SumByDateRange(ctx context.Context, owner string, categories []uuid.UUID, start, end time.Time) (map[uuid.UUID]int64, error)
	SumByCalendarBuckets(ctx context.Context, owner string, categories []uuid.UUID, day, month, year int, loc *time.Location) (map[uuid.UUID][4]int64, error)
	SumByMonthsOfYear(ctx context.Context, owner string, categories []uuid.UUID, year int, months []int, offset string) (map[uuid.UUID][]int64, error)
}

type Handler struct {
	categories CategoryService
	entries    EntryService
	aggregates AggregateService
	resolver   auth.OwnerResolver
	log        logging.Logger
	metrics    *Metrics
}

// NewHandler wires the services behind the REST API. metrics may be nil.
func NewHandler(c CategoryService, e EntryService, a AggregateService, r auth.OwnerResolver, l logging.Logger, m *Metrics) *Handler {
	return &Handler{
		categories: c,
		entries:    e,
		aggregates: a,
		resolver:   r,
		log:        l.With("module", "http"),
		metrics:    m,
	}
}

// Routes builds the router. /health and /metrics are served without
// authentication; everything under /api/v1 requires a bearer token.
func (h *Handler) Routes() http.Handler {
	r := mux.NewRouter()
	r.Use(requestID, h.observe)

	r.HandleFunc("/health", h.health).Methods(http.MethodGet)
	if h.metrics != nil {
		r.Handle("/metrics", h.metrics.handler).Methods(http.MethodGet)
	}

	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(h.authenticate)

	api.HandleFunc("/categories", h.listCategories).Methods(http.MethodGet)
	api.HandleFunc("/categories", h.createCategory).Methods(http.MethodPost)
	api.HandleFunc("/categories", h.updateCategory).Methods(http.MethodPut)
	api.HandleFunc("/categories", h.deleteCategory).Methods(http.MethodDelete)

	api.HandleFunc("/entries", h.pullEntries).Methods(http.MethodGet)
	api.HandleFunc("/entries", h.createEntries).Methods(http.MethodPost)
	api.HandleFunc("/entries", h.updateEntries).Methods(http.MethodPut)
	api.HandleFunc("/entries", h.deleteEntries).Methods(http.MethodDelete)
	api.HandleFunc("/entries/date", h.entriesByDate).Methods(http.MethodGet)
	api.HandleFunc("/entries/replaceCategory", h.replaceCategory).Methods(http.MethodPut)
	api.HandleFunc("/entries/category", h.deleteEntriesByCategory).Methods(http.MethodDelete)

	api.HandleFunc("/entries/aggregates/by-category", h.sumByCalendarBuckets).Methods(http.MethodGet)
	api.HandleFunc("/entries/aggregates/by-date-range", h.sumByDateRange).Methods(http.MethodGet)
	api.HandleFunc("/entries/aggregates/by-month", h.sumByMonths).Methods(http.MethodGet)

	return r
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// fail writes the response for a service error. Unexpected errors are
// logged with their full chain; the caller only sees a generic message.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	code, msg := statusFor(err)
	if code == http.StatusInternalServerError {
		h.log.Error(r.Context(), "request failed", "error", err, "request_id", requestIDFrom(r.Context()))
	} else {
		h.log.Debug(r.Context(), "request rejected", "status", code, "error", err)
	}
	respondWithError(w, code, msg)
}

package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dmitrijs2005/spendy/internal/common"
	"github.com/dmitrijs2005/spendy/internal/logging"
	"github.com/dmitrijs2005/spendy/internal/server/models"
	"github.com/dmitrijs2005/spendy/internal/server/services"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

const testToken = "alice-token"

type fakeResolver struct{}

func (fakeResolver) Resolve(_ context.Context, token string) (string, error) {
	switch token {
	case testToken:
		return "alice", nil
	case "expired":
		return "", common.ErrTokenExpired
	case "ghost":
		return "", common.ErrOwnerNotFound
	case "boom":
		return "", errors.New("db down")
	}
	return "", common.ErrInvalidToken
}

type fakeCategories struct {
	owner    string
	got      *models.Category
	deleted  uuid.UUID
	list     []*models.Category
	err      error
	stampNow time.Time
}

func (f *fakeCategories) List(_ context.Context, owner string) ([]*models.Category, error) {
	f.owner = owner
	return f.list, f.err
}

func (f *fakeCategories) Create(_ context.Context, owner string, c *models.Category) (*models.Category, error) {
	f.owner, f.got = owner, c
	if f.err != nil {
		return nil, f.err
	}
	out := *c
	out.Owner = owner
	return &out, nil
}

func (f *fakeCategories) Update(_ context.Context, owner string, c *models.Category) (*models.Category, error) {
	f.owner, f.got = owner, c
	if f.err != nil {
		return nil, f.err
	}
	out := *c
	out.LastUpdate = f.stampNow
	return &out, nil
}

func (f *fakeCategories) Delete(_ context.Context, id uuid.UUID, owner string) error {
	f.owner, f.deleted = owner, id
	return f.err
}

type fakeEntries struct {
	owner      string
	items      []*models.Entry
	ids        []uuid.UUID
	since      time.Time
	start, end time.Time
	oldID      uuid.UUID
	newID      uuid.UUID

	createRes *services.CreateResult
	updateRes *services.UpdateResult
	deleteRes *services.DeleteResult
	list      []*models.Entry
	removed   int64
	err       error
}

func (f *fakeEntries) CreateBatch(_ context.Context, owner string, items []*models.Entry) (*services.CreateResult, error) {
	f.owner, f.items = owner, items
	if f.err != nil {
		return nil, f.err
	}
	if f.createRes != nil {
		return f.createRes, nil
	}
	return &services.CreateResult{Saved: items}, nil
}

func (f *fakeEntries) UpdateBatch(_ context.Context, owner string, items []*models.Entry) (*services.UpdateResult, error) {
	f.owner, f.items = owner, items
	if f.err != nil {
		return nil, f.err
	}
	if f.updateRes != nil {
		return f.updateRes, nil
	}
	return &services.UpdateResult{Updated: items}, nil
}

func (f *fakeEntries) ReplaceCategory(_ context.Context, owner string, oldID, newID uuid.UUID) ([]*models.Entry, error) {
	f.owner, f.oldID, f.newID = owner, oldID, newID
	return f.list, f.err
}

func (f *fakeEntries) DeleteBatch(_ context.Context, owner string, ids []uuid.UUID) (*services.DeleteResult, error) {
	f.owner, f.ids = owner, ids
	if f.err != nil {
		return nil, f.err
	}
	if f.deleteRes != nil {
		return f.deleteRes, nil
	}
	return &services.DeleteResult{Success: true, ConflictingEntries: []uuid.UUID{}}, nil
}

func (f *fakeEntries) DeleteByCategory(_ context.Context, owner string, id uuid.UUID) (int64, error) {
	f.owner, f.oldID = owner, id
	return f.removed, f.err
}

func (f *fakeEntries) Pull(_ context.Context, owner string, since time.Time) ([]*models.Entry, error) {
	f.owner, f.since = owner, since
	return f.list, f.err
}

func (f *fakeEntries) ByDateRange(_ context.Context, owner string, start, end time.Time) ([]*models.Entry, error) {
	f.owner, f.start, f.end = owner, start, end
	return f.list, f.err
}

type fakeAggregates struct {
	owner            string
	categories       []uuid.UUID
	day, month, year int
	loc              *time.Location
	months           []int
	offset           string
	start, end       time.Time
	err              error
}

func (f *fakeAggregates) SumByDateRange(_ context.Context, owner string, categories []uuid.UUID, start, end time.Time) (map[uuid.UUID]int64, error) {
	f.owner, f.categories, f.start, f.end = owner, categories, start, end
	if f.err != nil {
		return nil, f.err
	}
	out := make(map[uuid.UUID]int64, len(categories))
	for i, c := range categories {
		out[c] = int64(100 * (i + 1))
	}
	return out, nil
}

func (f *fakeAggregates) SumByCalendarBuckets(_ context.Context, owner string, categories []uuid.UUID, day, month, year int, loc *time.Location) (map[uuid.UUID][4]int64, error) {
	f.owner, f.categories, f.day, f.month, f.year, f.loc = owner, categories, day, month, year, loc
	if f.err != nil {
		return nil, f.err
	}
	out := make(map[uuid.UUID][4]int64, len(categories))
	for _, c := range categories {
		out[c] = [4]int64{100, 300, 600, 600}
	}
	return out, nil
}

func (f *fakeAggregates) SumByMonthsOfYear(_ context.Context, owner string, categories []uuid.UUID, year int, months []int, offset string) (map[uuid.UUID][]int64, error) {
	f.owner, f.categories, f.year, f.months, f.offset = owner, categories, year, months, offset
	if f.err != nil {
		return nil, f.err
	}
	out := make(map[uuid.UUID][]int64, len(categories))
	for _, c := range categories {
		out[c] = make([]int64, len(months))
	}
	return out, nil
}

type testEnv struct {
	categories *fakeCategories
	entries    *fakeEntries
	aggregates *fakeAggregates
	handler    http.Handler
}

func newTestEnv(t *testing.T, m *Metrics) *testEnv {
	t.Helper()
	env := &testEnv{
		categories: &fakeCategories{},
		entries:    &fakeEntries{},
		aggregates: &fakeAggregates{},
	}
	h := NewHandler(env.categories, env.entries, env.aggregates, fakeResolver{}, logging.Nop{}, m)
	env.handler = h.Routes()
	return env
}

// do sends an authenticated request. body is JSON encoded unless nil.
func (e *testEnv) do(t *testing.T, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	return e.doAs(t, testToken, method, target, body)
}

func (e *testEnv) doAs(t *testing.T, token, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+token)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func sampleEntry(category uuid.UUID) EntryDTO {
	date := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	return EntryDTO{
		UUID:        uuid.New(),
		Type:        models.KindExpense,
		Category:    category,
		Description: "coffee",
		Price:       350,
		Date:        date,
		LastUpdate:  date,
	}
}

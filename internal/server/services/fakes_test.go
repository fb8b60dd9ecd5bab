package services

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/spendy/internal/common"
	"github.com/dmitrijs2005/spendy/internal/dbx"
	"github.com/dmitrijs2005/spendy/internal/logging"
	"github.com/dmitrijs2005/spendy/internal/server/models"
	"github.com/dmitrijs2005/spendy/internal/server/repositories/categories"
	"github.com/dmitrijs2005/spendy/internal/server/repositories/entries"
	"github.com/dmitrijs2005/spendy/internal/server/repositories/owners"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

// memStore is an in-memory ledger backing the fake repositories. It ignores
// the DBTX it is bound to; sqlite only provides real Begin/Commit calls.
// When journal is set, every entry insert is also written through the bound
// DBTX so commits and rollbacks become observable.
type memStore struct {
	mu         sync.Mutex
	nextID     int64
	categories map[int64]*models.Category
	entries    map[int64]*models.Entry
	locks      []string
	fail       map[string]error
	// unseen uuids are stored but not yet visible to ExistsByUUID, as with a
	// row another transaction commits between the check and the insert.
	unseen  map[uuid.UUID]bool
	journal bool
}

func newMemStore() *memStore {
	return &memStore{
		categories: map[int64]*models.Category{},
		entries:    map[int64]*models.Entry{},
		fail:       map[string]error{},
		unseen:     map[uuid.UUID]bool{},
	}
}

func (m *memStore) id() int64 {
	m.nextID++
	return m.nextID
}

func (m *memStore) entriesOf(owner string, categoryID int64) []*models.Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Entry
	for _, e := range m.entries {
		if e.Owner == owner && e.CategoryID == categoryID {
			c := *e
			out = append(out, &c)
		}
	}
	return out
}

type fakeOwners struct{ *memStore }

func (f fakeOwners) Register(context.Context, string) error { return nil }
func (f fakeOwners) Exists(context.Context, string) (bool, error) {
	return true, nil
}
func (f fakeOwners) Lock(_ context.Context, owner string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail["Lock"]; err != nil {
		return err
	}
	f.locks = append(f.locks, owner)
	return nil
}

type fakeCategories struct{ *memStore }

func (f fakeCategories) find(match func(c *models.Category) bool) (*models.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail["FindCategory"]; err != nil {
		return nil, err
	}
	for _, c := range f.categories {
		if match(c) {
			cp := *c
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f fakeCategories) FindByUUID(_ context.Context, id uuid.UUID) (*models.Category, error) {
	return f.find(func(c *models.Category) bool { return c.UUID == id })
}

func (f fakeCategories) FindByUUIDAndOwner(_ context.Context, id uuid.UUID, owner string) (*models.Category, error) {
	return f.find(func(c *models.Category) bool { return c.UUID == id && c.Owner == owner })
}

func (f fakeCategories) FindLiveByKindAndName(_ context.Context, owner string, kind models.Kind, name string) (*models.Category, error) {
	return f.find(func(c *models.Category) bool {
		return c.Owner == owner && c.Kind == kind && c.Name == name && !c.IsDeleted
	})
}

func (f fakeCategories) ListByOwner(_ context.Context, owner string) ([]*models.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Category
	for _, c := range f.categories {
		if c.Owner == owner {
			cp := *c
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f fakeCategories) Create(_ context.Context, c *models.Category) (*models.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, other := range f.categories {
		if other.UUID == c.UUID {
			return nil, common.ErrorAlreadyExists
		}
	}
	c.ID = f.id()
	cp := *c
	f.categories[c.ID] = &cp
	return c, nil
}

func (f fakeCategories) Update(_ context.Context, c *models.Category) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.categories[c.ID]
	if !ok {
		return common.ErrorNotFound
	}
	stored.Name, stored.Kind, stored.IsDeleted, stored.LastUpdate = c.Name, c.Kind, c.IsDeleted, c.LastUpdate
	return nil
}

func (f fakeCategories) Delete(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.categories, id)
	return nil
}

type fakeEntries struct {
	*memStore
	db dbx.DBTX
}

func (f fakeEntries) findByUUID(id uuid.UUID) (*models.Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, e := range f.entries {
		if e.UUID == id {
			cp := *e
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f fakeEntries) FindByUUIDForUpdate(_ context.Context, id uuid.UUID) (*models.Entry, error) {
	if err := f.fail["FindEntry"]; err != nil {
		return nil, err
	}
	return f.findByUUID(id)
}

func (f fakeEntries) ExistsByUUID(_ context.Context, id uuid.UUID) (bool, error) {
	if err := f.fail["ExistsEntry"]; err != nil {
		return false, err
	}
	f.mu.Lock()
	hidden := f.unseen[id]
	f.mu.Unlock()
	if hidden {
		return false, nil
	}
	_, err := f.findByUUID(id)
	return err == nil, nil
}

func (f fakeEntries) Create(ctx context.Context, e *models.Entry) (*models.Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail["CreateEntry:"+e.UUID.String()]; err != nil {
		return nil, err
	}
	for _, other := range f.entries {
		if other.UUID == e.UUID {
			return nil, common.ErrorAlreadyExists
		}
	}
	if f.journal {
		if _, err := f.db.ExecContext(ctx, `INSERT INTO journal (uuid) VALUES (?)`, e.UUID.String()); err != nil {
			return nil, err
		}
	}
	e.ID = f.id()
	cp := *e
	f.entries[e.ID] = &cp
	return e, nil
}

func (f fakeEntries) Update(_ context.Context, e *models.Entry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, stored := range f.entries {
		if stored.UUID == e.UUID {
			stored.Kind, stored.CategoryID, stored.CategoryUUID = e.Kind, e.CategoryID, e.CategoryUUID
			stored.Description, stored.Price = e.Description, e.Price
			stored.LastUpdate, stored.IsDeleted = e.LastUpdate, e.IsDeleted
			return nil
		}
	}
	return common.ErrorNotFound
}

func (f fakeEntries) DeleteByUUID(_ context.Context, owner string, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for key, e := range f.entries {
		if e.UUID == id && e.Owner == owner {
			delete(f.entries, key)
		}
	}
	return nil
}

func (f fakeEntries) DeleteByCategory(_ context.Context, categoryID int64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for key, e := range f.entries {
		if e.CategoryID == categoryID {
			delete(f.entries, key)
			n++
		}
	}
	return n, nil
}

func (f fakeEntries) ReplaceCategory(_ context.Context, owner string, oldID, newID int64, at time.Time) ([]*models.Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	target := f.categories[newID]
	var out []*models.Entry
	for _, e := range f.entries {
		if e.Owner == owner && e.CategoryID == oldID {
			e.CategoryID, e.CategoryUUID, e.LastUpdate = newID, target.UUID, at
			cp := *e
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f fakeEntries) CountByOwnerAndCategory(_ context.Context, owner string, categoryID int64) (int64, error) {
	return int64(len(f.entriesOf(owner, categoryID))), nil
}

func (f fakeEntries) selectWhere(match func(e *models.Entry) bool) []*models.Entry {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Entry
	for _, e := range f.entries {
		if match(e) {
			cp := *e
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (f fakeEntries) SelectUpdatedSince(_ context.Context, owner string, since time.Time) ([]*models.Entry, error) {
	return f.selectWhere(func(e *models.Entry) bool { return e.Owner == owner && e.LastUpdate.After(since) }), nil
}

func (f fakeEntries) SelectByCreatedRange(_ context.Context, owner string, start, end time.Time) ([]*models.Entry, error) {
	return f.selectWhere(func(e *models.Entry) bool {
		return e.Owner == owner && !e.CreatedAt.Before(start) && !e.CreatedAt.After(end)
	}), nil
}

func (f fakeEntries) SumPrices(_ context.Context, owner string, category uuid.UUID, start, end time.Time) (int64, error) {
	if err := f.fail["Sum"]; err != nil {
		return 0, err
	}
	var sum int64
	for _, e := range f.selectWhere(func(e *models.Entry) bool {
		return e.Owner == owner && e.CategoryUUID == category && !e.CreatedAt.Before(start) && !e.CreatedAt.After(end)
	}) {
		sum += e.Price
	}
	return sum, nil
}

func (f fakeEntries) SumPricesLifetime(_ context.Context, owner string, category uuid.UUID) (int64, error) {
	var sum int64
	for _, e := range f.selectWhere(func(e *models.Entry) bool { return e.Owner == owner && e.CategoryUUID == category }) {
		sum += e.Price
	}
	return sum, nil
}

type fakeManager struct{ store *memStore }

func (m *fakeManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeManager) Owners(dbx.DBTX) owners.Repository            { return fakeOwners{m.store} }
func (m *fakeManager) Categories(dbx.DBTX) categories.Repository    { return fakeCategories{m.store} }
func (m *fakeManager) Entries(db dbx.DBTX) entries.Repository       { return fakeEntries{m.store, db} }

// newTestDB returns a real *sql.DB so dbx.WithTx can begin and commit.
func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

type fixture struct {
	db         *sql.DB
	store      *memStore
	categories *CategoryService
	entries    *EntryService
	aggregates *AggregateService
	now        time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := newTestDB(t)
	store := newMemStore()
	m := &fakeManager{store: store}

	f := &fixture{
		db:         db,
		store:      store,
		categories: NewCategoryService(db, m, logging.Nop{}),
		entries:    NewEntryService(db, m, logging.Nop{}),
		aggregates: NewAggregateService(db, m, logging.Nop{}),
		now:        time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
	}
	clock := func() time.Time { return f.now }
	f.categories.now = clock
	f.entries.now = clock
	return f
}

// withJournal makes entry inserts write through the transaction into a
// sqlite journal table and returns a counter of committed rows. The pool is
// limited to one connection so every statement sees the same in-memory
// database.
func (f *fixture) withJournal(t *testing.T) func() int {
	t.Helper()
	f.db.SetMaxOpenConns(1)
	_, err := f.db.Exec(`CREATE TABLE journal (uuid TEXT NOT NULL)`)
	require.NoError(t, err)
	f.store.journal = true
	return func() int {
		var n int
		require.NoError(t, f.db.QueryRow(`SELECT COUNT(*) FROM journal`).Scan(&n))
		return n
	}
}

func (f *fixture) category(t *testing.T, owner, name string, kind models.Kind) *models.Category {
	t.Helper()
	ts := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c, err := f.categories.Create(context.Background(), owner, &models.Category{
		UUID: uuid.New(), Name: name, Kind: kind, CreatedAt: ts, LastUpdate: ts,
	})
	require.NoError(t, err)
	return c
}

func newEntry(category *models.Category, date time.Time, price int64) *models.Entry {
	return &models.Entry{
		UUID:         uuid.New(),
		Kind:         category.Kind,
		CategoryUUID: category.UUID,
		Description:  "item",
		Price:        price,
		CreatedAt:    date,
		LastUpdate:   date,
	}
}

func (f *fixture) seed(t *testing.T, owner string, items ...*models.Entry) {
	t.Helper()
	res, err := f.entries.CreateBatch(context.Background(), owner, items)
	require.NoError(t, err)
	require.True(t, res.Created(), "seed conflicts: %+v", res)
}

package services

// In-memory fakes for the repository and provider interfaces. They keep the
// same copy semantics as the real stores: callers get clones, so mutating a
// returned event does not change the stored row until it is written back.

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/GabeCabrera/aisle-board-sub002/internal/models"
	"github.com/GabeCabrera/aisle-board-sub002/internal/provider"
	"github.com/GabeCabrera/aisle-board-sub002/internal/repositories"
)

type memEventRepo struct {
	mu     sync.Mutex
	events map[uuid.UUID]*models.CalendarEvent
}

func newMemEventRepo() *memEventRepo {
	return &memEventRepo{events: make(map[uuid.UUID]*models.CalendarEvent)}
}

func cloneEvent(e *models.CalendarEvent) *models.CalendarEvent {
	c := *e
	return &c
}

func (r *memEventRepo) Create(_ context.Context, event *models.CalendarEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	event.CreatedAt = time.Now()
	r.events[event.ID] = cloneEvent(event)
	return nil
}

func (r *memEventRepo) GetByID(_ context.Context, tenantID, id uuid.UUID) (*models.CalendarEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.events[id]
	if !ok || e.TenantID != tenantID {
		return nil, repositories.ErrNotFound
	}
	return cloneEvent(e), nil
}

func (r *memEventRepo) GetByProviderEventID(_ context.Context, tenantID uuid.UUID, providerEventID string) (*models.CalendarEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.events {
		if e.TenantID == tenantID && e.ProviderEventID != nil && *e.ProviderEventID == providerEventID {
			return cloneEvent(e), nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *memEventRepo) ListByTenant(_ context.Context, tenantID uuid.UUID) ([]*models.CalendarEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.CalendarEvent
	for _, e := range r.events {
		if e.TenantID == tenantID {
			out = append(out, cloneEvent(e))
		}
	}
	return out, nil
}

func (r *memEventRepo) Update(_ context.Context, event *models.CalendarEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.events[event.ID]
	if !ok || existing.TenantID != event.TenantID {
		return repositories.ErrNotFound
	}
	now := time.Now()
	event.UpdatedAt = &now
	r.events[event.ID] = cloneEvent(event)
	return nil
}

func (r *memEventRepo) MarkSynced(_ context.Context, tenantID, id uuid.UUID, providerEventID, etag string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.events[id]
	if !ok || e.TenantID != tenantID {
		return repositories.ErrNotFound
	}
	e.ProviderEventID = &providerEventID
	e.Etag = &etag
	e.SyncStatus = models.SyncStatusSynced
	return nil
}

func (r *memEventRepo) MarkStatus(_ context.Context, tenantID, id uuid.UUID, status models.SyncStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.events[id]
	if !ok || e.TenantID != tenantID {
		return repositories.ErrNotFound
	}
	e.SyncStatus = status
	return nil
}

func (r *memEventRepo) ClearProviderLinks(_ context.Context, tenantID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.events {
		if e.TenantID == tenantID && e.ProviderEventID != nil {
			e.ProviderEventID = nil
			e.Etag = nil
			e.SyncStatus = models.SyncStatusLocal
		}
	}
	return nil
}

func (r *memEventRepo) Delete(_ context.Context, tenantID, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.events[id]
	if !ok || e.TenantID != tenantID {
		return repositories.ErrNotFound
	}
	delete(r.events, id)
	return nil
}

func (r *memEventRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

type memConnectionRepo struct {
	mu    sync.Mutex
	conns map[uuid.UUID]*models.CalendarConnection

	commitCursorErr error
}

func newMemConnectionRepo() *memConnectionRepo {
	return &memConnectionRepo{conns: make(map[uuid.UUID]*models.CalendarConnection)}
}

func cloneConnection(c *models.CalendarConnection) *models.CalendarConnection {
	cp := *c
	return &cp
}

func (r *memConnectionRepo) Create(_ context.Context, conn *models.CalendarConnection) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if conn.ID == uuid.Nil {
		conn.ID = uuid.New()
	}
	conn.CreatedAt = time.Now()
	r.conns[conn.TenantID] = cloneConnection(conn)
	return nil
}

func (r *memConnectionRepo) GetByTenant(_ context.Context, tenantID uuid.UUID) (*models.CalendarConnection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.conns[tenantID]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return cloneConnection(c), nil
}

func (r *memConnectionRepo) ListSyncEnabled(_ context.Context) ([]*models.CalendarConnection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.CalendarConnection
	for _, c := range r.conns {
		if c.SyncEnabled {
			out = append(out, cloneConnection(c))
		}
	}
	return out, nil
}

func (r *memConnectionRepo) SetSyncEnabled(_ context.Context, tenantID uuid.UUID, enabled bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.conns[tenantID]
	if !ok {
		return repositories.ErrNotFound
	}
	c.SyncEnabled = enabled
	return nil
}

func (r *memConnectionRepo) UpdateToken(_ context.Context, tenantID uuid.UUID, access, refresh string, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.conns[tenantID]
	if !ok {
		return repositories.ErrNotFound
	}
	c.AccessToken = access
	c.RefreshToken = refresh
	c.TokenExpiresAt = expiresAt
	return nil
}

func (r *memConnectionRepo) CommitCursor(_ context.Context, tenantID uuid.UUID, cursor string, syncedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.commitCursorErr != nil {
		return r.commitCursorErr
	}
	c, ok := r.conns[tenantID]
	if !ok {
		return repositories.ErrNotFound
	}
	c.SyncCursor = &cursor
	c.LastSyncedAt = &syncedAt
	return nil
}

func (r *memConnectionRepo) Delete(_ context.Context, tenantID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.conns[tenantID]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.conns, tenantID)
	return nil
}

func (r *memConnectionRepo) cursor(tenantID uuid.UUID) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.conns[tenantID]
	if !ok || c.SyncCursor == nil {
		return ""
	}
	return *c.SyncCursor
}

type memSyncLogRepo struct {
	mu      sync.Mutex
	entries []*models.SyncLogEntry
}

func newMemSyncLogRepo() *memSyncLogRepo {
	return &memSyncLogRepo{}
}

func (r *memSyncLogRepo) Append(_ context.Context, entry *models.SyncLogEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry.ID = uuid.New()
	entry.CreatedAt = time.Now()
	r.entries = append(r.entries, entry)
	return nil
}

func (r *memSyncLogRepo) ListByTenant(_ context.Context, tenantID uuid.UUID, limit int) ([]*models.SyncLogEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.SyncLogEntry
	for i := len(r.entries) - 1; i >= 0 && len(out) < limit; i-- {
		if r.entries[i].TenantID == tenantID {
			out = append(out, r.entries[i])
		}
	}
	return out, nil
}

func (r *memSyncLogRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

func (r *memSyncLogRepo) last() *models.SyncLogEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.entries) == 0 {
		return nil
	}
	return r.entries[len(r.entries)-1]
}

type memLockRepo struct {
	mu   sync.Mutex
	held map[uuid.UUID]bool
}

func newMemLockRepo() *memLockRepo {
	return &memLockRepo{held: make(map[uuid.UUID]bool)}
}

func (r *memLockRepo) Acquire(_ context.Context, tenantID uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.held[tenantID] {
		return false, nil
	}
	r.held[tenantID] = true
	return true, nil
}

func (r *memLockRepo) Release(_ context.Context, tenantID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.held, tenantID)
	return nil
}

// fakeCalendar is a scripted provider.Calendar. Deltas are keyed by the
// cursor the engine lists with; unscripted cursors return an empty delta
// that re-advertises the same cursor.
type fakeCalendar struct {
	mu sync.Mutex

	deltas    map[string]*provider.Delta
	listErr   map[string]error
	createErr error
	updateErr error
	deleteErr error

	nextProviderID int
	nextEtag       int

	created   []string // provider ids handed out by Create
	updated   []string // provider ids passed to Update
	deleted   []string // provider ids passed to Delete
	listCalls []string // cursors passed to List
}

func newFakeCalendar() *fakeCalendar {
	return &fakeCalendar{
		deltas:  make(map[string]*provider.Delta),
		listErr: make(map[string]error),
	}
}

func (c *fakeCalendar) List(_ context.Context, _ string, cursor string) (*provider.Delta, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listCalls = append(c.listCalls, cursor)
	if err := c.listErr[cursor]; err != nil {
		return nil, err
	}
	if d, ok := c.deltas[cursor]; ok {
		return d, nil
	}
	return &provider.Delta{NextCursor: cursor}, nil
}

func (c *fakeCalendar) Create(_ context.Context, _ string, _ *models.CalendarEvent) (*provider.CreateResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.createErr != nil {
		return nil, c.createErr
	}
	c.nextProviderID++
	c.nextEtag++
	id := "g" + strconv.Itoa(c.nextProviderID)
	c.created = append(c.created, id)
	return &provider.CreateResult{ProviderID: id, Etag: "et" + strconv.Itoa(c.nextEtag)}, nil
}

func (c *fakeCalendar) Update(_ context.Context, _ string, providerID, _ string, _ *models.CalendarEvent) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.updateErr != nil {
		return "", c.updateErr
	}
	c.updated = append(c.updated, providerID)
	c.nextEtag++
	return "et" + strconv.Itoa(c.nextEtag), nil
}

func (c *fakeCalendar) Delete(_ context.Context, _ string, providerID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deleted = append(c.deleted, providerID)
	return c.deleteErr
}

type fakeFactory struct {
	cal *fakeCalendar
	err error
}

func (f *fakeFactory) ForConnection(_ context.Context, _ *models.CalendarConnection) (provider.Calendar, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.cal, nil
}

package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GabeCabrera/aisle-board-sub002/internal/models"
	"github.com/GabeCabrera/aisle-board-sub002/internal/repositories"
)

type memTenantRepo struct {
	mu      sync.Mutex
	tenants map[uuid.UUID]*models.Tenant
}

func newMemTenantRepo() *memTenantRepo {
	return &memTenantRepo{tenants: make(map[uuid.UUID]*models.Tenant)}
}

func (r *memTenantRepo) Create(_ context.Context, tenant *models.Tenant) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	tenant.ID = uuid.New()
	tenant.CreatedAt = time.Now()
	r.tenants[tenant.ID] = tenant
	return nil
}

func (r *memTenantRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Tenant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tenants[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return t, nil
}

func (r *memTenantRepo) GetByEmail(_ context.Context, email string) (*models.Tenant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.tenants {
		if t.Email == email {
			return t, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *memTenantRepo) Update(_ context.Context, tenant *models.Tenant) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tenants[tenant.ID]; !ok {
		return repositories.ErrNotFound
	}
	r.tenants[tenant.ID] = tenant
	return nil
}

func (r *memTenantRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tenants[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.tenants, id)
	return nil
}

type memSessionRepo struct {
	mu       sync.Mutex
	sessions map[string]*models.Session
}

func newMemSessionRepo() *memSessionRepo {
	return &memSessionRepo{sessions: make(map[string]*models.Session)}
}

func (r *memSessionRepo) Create(_ context.Context, session *models.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[session.ID] = session
	return nil
}

func (r *memSessionRepo) GetByID(_ context.Context, id string) (*models.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return s, nil
}

func (r *memSessionRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
	return nil
}

func (r *memSessionRepo) DeleteAllForTenant(_ context.Context, tenantID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, s := range r.sessions {
		if s.TenantID == tenantID {
			delete(r.sessions, id)
		}
	}
	return nil
}

func newAuthService() (*AuthService, *memTenantRepo, *memSessionRepo) {
	tenants := newMemTenantRepo()
	sessions := newMemSessionRepo()
	return NewAuthService(tenants, sessions, "test-secret", time.Hour), tenants, sessions
}

func TestAuthService_RegisterAndLogin(t *testing.T) {
	svc, _, _ := newAuthService()
	ctx := context.Background()

	err := svc.Register(ctx, "alex@example.com", "a-long-password", "Alex & Sam")
	require.NoError(t, err)

	resp, err := svc.Login(ctx, "alex@example.com", "a-long-password")
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.NotEqual(t, uuid.Nil, resp.TenantID)

	claims, err := svc.VerifyToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.TenantID, claims.TenantID)
}

func TestAuthService_DuplicateEmail(t *testing.T) {
	svc, _, _ := newAuthService()
	ctx := context.Background()

	require.NoError(t, svc.Register(ctx, "alex@example.com", "a-long-password", ""))

	err := svc.Register(ctx, "alex@example.com", "another-password", "")
	assert.ErrorIs(t, err, ErrEmailExists)
}

func TestAuthService_WrongPassword(t *testing.T) {
	svc, _, _ := newAuthService()
	ctx := context.Background()

	require.NoError(t, svc.Register(ctx, "alex@example.com", "a-long-password", ""))

	_, err := svc.Login(ctx, "alex@example.com", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, "nobody@example.com", "a-long-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_VerifyToken_Garbage(t *testing.T) {
	svc, _, _ := newAuthService()

	_, err := svc.VerifyToken("not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestAuthService_Logout(t *testing.T) {
	svc, _, sessions := newAuthService()
	ctx := context.Background()

	require.NoError(t, svc.Register(ctx, "alex@example.com", "a-long-password", ""))
	resp, err := svc.Login(ctx, "alex@example.com", "a-long-password")
	require.NoError(t, err)

	err = svc.Logout(ctx, resp.Token)
	require.NoError(t, err)

	claims, err := svc.VerifyToken(resp.Token)
	require.NoError(t, err)
	_, err = sessions.GetByID(ctx, claims.SessionID)
	assert.ErrorIs(t, err, repositories.ErrNotFound, "session should be gone after logout")
}

package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/GabeCabrera/aisle-board-sub002/internal/models"
)

type PostgresTenantRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresTenantRepository(pool *pgxpool.Pool) *PostgresTenantRepository {
	return &PostgresTenantRepository{pool: pool}
}

func (r *PostgresTenantRepository) Create(ctx context.Context, tenant *models.Tenant) error {
	query := `INSERT INTO tenants (email, password_hash, couple_names, wedding_date)
	          VALUES ($1, $2, $3, $4)
	          RETURNING id, created_at, updated_at`

	err := r.pool.QueryRow(ctx, query, tenant.Email, tenant.PasswordHash, tenant.CoupleNames, tenant.WeddingDate).
		Scan(&tenant.ID, &tenant.CreatedAt, &tenant.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create tenant: %w", err)
	}
	return nil
}

func (r *PostgresTenantRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error) {
	query := `SELECT id, email, password_hash, couple_names, wedding_date, created_at, updated_at, deleted_at
	          FROM tenants WHERE id = $1 AND deleted_at IS NULL`

	return r.getOne(ctx, query, id)
}

func (r *PostgresTenantRepository) GetByEmail(ctx context.Context, email string) (*models.Tenant, error) {
	query := `SELECT id, email, password_hash, couple_names, wedding_date, created_at, updated_at, deleted_at
	          FROM tenants WHERE email = $1 AND deleted_at IS NULL`

	return r.getOne(ctx, query, email)
}

func (r *PostgresTenantRepository) getOne(ctx context.Context, query string, arg any) (*models.Tenant, error) {
	var tenant models.Tenant
	err := r.pool.QueryRow(ctx, query, arg).Scan(
		&tenant.ID,
		&tenant.Email,
		&tenant.PasswordHash,
		&tenant.CoupleNames,
		&tenant.WeddingDate,
		&tenant.CreatedAt,
		&tenant.UpdatedAt,
		&tenant.DeletedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get tenant: %w", err)
	}
	return &tenant, nil
}

func (r *PostgresTenantRepository) Update(ctx context.Context, tenant *models.Tenant) error {
	query := `UPDATE tenants
	          SET email = $1, password_hash = $2, couple_names = $3, wedding_date = $4, updated_at = NOW()
	          WHERE id = $5 AND deleted_at IS NULL`

	result, err := r.pool.Exec(ctx, query, tenant.Email, tenant.PasswordHash, tenant.CoupleNames, tenant.WeddingDate, tenant.ID)
	if err != nil {
		return fmt.Errorf("failed to update tenant: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresTenantRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE tenants SET deleted_at = NOW() WHERE id = $1 AND deleted_at IS NULL`

	result, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete tenant: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

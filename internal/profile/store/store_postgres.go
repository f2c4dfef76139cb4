package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	census "censusdesk/internal/census/models"
	"censusdesk/internal/profile/models"
	id "censusdesk/pkg/domain"
	"censusdesk/pkg/platform/sentinel"
)

// PostgresStore persists profiles in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) FindByID(ctx context.Context, actorID id.ActorID) (*models.Profile, error) {
	query := `
		SELECT id, email, name, role, territory, created_at, updated_at
		FROM profiles
		WHERE id = $1
	`
	p, err := scanProfile(s.db.QueryRowContext(ctx, query, uuid.UUID(actorID)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find profile: %w", err)
	}
	return p, nil
}

func (s *PostgresStore) Insert(ctx context.Context, p *models.Profile) error {
	query := `
		INSERT INTO profiles (id, email, name, role, territory, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := s.db.ExecContext(ctx, query,
		uuid.UUID(p.ID),
		p.Email,
		p.Name,
		string(p.Role),
		territoryValue(p.Territory),
		p.CreatedAt,
		p.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			if pgErr.ConstraintName == "profiles_pkey" {
				return sentinel.ErrConflict
			}
			return sentinel.ErrAlreadyUsed
		}
		return fmt.Errorf("insert profile: %w", err)
	}
	return nil
}

func (s *PostgresStore) Update(ctx context.Context, p *models.Profile) error {
	query := `
		UPDATE profiles
		SET email = $2, name = $3, territory = $4, updated_at = $5
		WHERE id = $1
	`
	res, err := s.db.ExecContext(ctx, query,
		uuid.UUID(p.ID),
		p.Email,
		p.Name,
		territoryValue(p.Territory),
		p.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return sentinel.ErrAlreadyUsed
		}
		return fmt.Errorf("update profile: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update profile rows: %w", err)
	}
	if rows == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) ListByRole(ctx context.Context, role models.Role) ([]*models.Profile, error) {
	query := `
		SELECT id, email, name, role, territory, created_at, updated_at
		FROM profiles
		WHERE role = $1
		ORDER BY created_at DESC
	`
	rows, err := s.db.QueryContext(ctx, query, string(role))
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	defer rows.Close()

	profiles := make([]*models.Profile, 0)
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("scan profile: %w", err)
		}
		profiles = append(profiles, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate profiles: %w", err)
	}
	return profiles, nil
}

type profileRow interface {
	Scan(dest ...any) error
}

func scanProfile(row profileRow) (*models.Profile, error) {
	var p models.Profile
	var actorID uuid.UUID
	var role string
	var territory sql.NullString
	if err := row.Scan(&actorID, &p.Email, &p.Name, &role, &territory, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	p.ID = id.ActorID(actorID)
	p.Role = models.Role(role)
	if territory.Valid {
		t := census.Territory(territory.String)
		p.Territory = &t
	}
	p.CreatedAt = p.CreatedAt.UTC()
	p.UpdatedAt = p.UpdatedAt.UTC()
	return &p, nil
}

func territoryValue(t *census.Territory) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: string(*t), Valid: true}
}

package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Mann-lohchab/Portal/internal/model"
	"github.com/Mann-lohchab/Portal/internal/session"
)

// Store persists principals across the three role namespaces. Each role has
// its own table so external IDs are unique per namespace, not globally.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func tableFor(role model.Role) string {
	switch role {
	case model.RoleAdmin:
		return "admins"
	case model.RoleTeacher:
		return "teachers"
	case model.RoleStudent:
		return "students"
	default:
		panic("unknown role " + role.String())
	}
}

const principalColumns = `id, external_id, first_name, last_name, email, password_hash, session_expiry, last_login_at, created_at, updated_at`

func (s *Store) GetByExternalID(ctx context.Context, role model.Role, externalID string) (model.Principal, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+principalColumns+`
		FROM `+tableFor(role)+`
		WHERE external_id = $1
	`, externalID)
	return scanPrincipal(row, role)
}

func (s *Store) GetByID(ctx context.Context, role model.Role, id string) (model.Principal, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+principalColumns+`
		FROM `+tableFor(role)+`
		WHERE id = $1
	`, id)
	return scanPrincipal(row, role)
}

// UpdateSessionState writes both session timestamps in a single UPDATE so
// the read-modify-write of login and logout is atomic per principal record.
func (s *Store) UpdateSessionState(ctx context.Context, role model.Role, id string, state session.State) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE `+tableFor(role)+`
		SET session_expiry = $1, last_login_at = $2, updated_at = $3
		WHERE id = $4
	`, nullableTime(state.Expiry), nullableTime(state.LastLoginAt), time.Now().UTC(), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (s *Store) Create(ctx context.Context, p model.Principal) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO `+tableFor(p.Role)+` (id, external_id, first_name, last_name, email, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, p.ID, p.ExternalID, p.FirstName, p.LastName, p.Email, p.PasswordHash, p.CreatedAt, p.UpdatedAt)
	return err
}

func (s *Store) List(ctx context.Context, role model.Role, limit int) ([]model.Principal, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+principalColumns+`
		FROM `+tableFor(role)+`
		ORDER BY external_id
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var principals []model.Principal
	for rows.Next() {
		p, err := scanPrincipal(rows, role)
		if err != nil {
			return nil, err
		}
		principals = append(principals, p)
	}
	return principals, rows.Err()
}

func (s *Store) Delete(ctx context.Context, role model.Role, externalID string) (bool, error) {
	tag, err := s.pool.Exec(ctx, `
		DELETE FROM `+tableFor(role)+`
		WHERE external_id = $1
	`, externalID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func scanPrincipal(row pgx.Row, role model.Role) (model.Principal, error) {
	var p model.Principal
	var sessionExpiry, lastLoginAt *time.Time
	err := row.Scan(
		&p.ID,
		&p.ExternalID,
		&p.FirstName,
		&p.LastName,
		&p.Email,
		&p.PasswordHash,
		&sessionExpiry,
		&lastLoginAt,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Principal{}, model.ErrNotFound
		}
		return model.Principal{}, err
	}
	p.Role = role
	if sessionExpiry != nil {
		p.Session.Expiry = sessionExpiry.UTC()
	}
	if lastLoginAt != nil {
		p.Session.LastLoginAt = lastLoginAt.UTC()
	}
	return p, nil
}

func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	utc := t.UTC()
	return &utc
}

package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/devilmonastery/chirp/internal/domain/entities"
	"github.com/devilmonastery/chirp/internal/domain/repositories"
	"github.com/devilmonastery/chirp/internal/pkg/idgen"
	"github.com/devilmonastery/chirp/internal/pkg/metrics"
)

// UserStore implements repositories.UserStore on postgres or sqlite
type UserStore struct {
	db  *sqlx.DB
	log *slog.Logger
	now func() time.Time
}

var _ repositories.UserStore = (*UserStore)(nil)

// NewUserStore creates a new SQL user store
func NewUserStore(db *sqlx.DB) *UserStore {
	return &UserStore{
		db:  db,
		log: slog.Default().With(slog.String("repo", "user")),
		now: time.Now,
	}
}

const userColumns = `id, username, profile_image_url, public_metadata, created_at, updated_at`

// userRow represents a user as stored in the database. Timestamps are unix
// milliseconds so both drivers scan them the same way.
type userRow struct {
	ID              string `db:"id"`
	Username        string `db:"username"`
	ProfileImageURL string `db:"profile_image_url"`
	PublicMetadata  string `db:"public_metadata"`
	CreatedAt       int64  `db:"created_at"`
	UpdatedAt       int64  `db:"updated_at"`
}

func (r *userRow) toEntity() (*entities.UserProfile, error) {
	metadata := map[string]any{}
	if r.PublicMetadata != "" {
		if err := json.Unmarshal([]byte(r.PublicMetadata), &metadata); err != nil {
			return nil, fmt.Errorf("corrupt public_metadata for user %s: %w", r.ID, err)
		}
	}

	return &entities.UserProfile{
		ID:              r.ID,
		Username:        r.Username,
		ProfileImageURL: r.ProfileImageURL,
		PublicMetadata:  metadata,
		CreatedAt:       time.UnixMilli(r.CreatedAt).UTC(),
		UpdatedAt:       time.UnixMilli(r.UpdatedAt).UTC(),
	}, nil
}

func encodeMetadata(m map[string]any) (string, error) {
	if m == nil {
		return "{}", nil
	}
	data, err := json.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("failed to encode public_metadata: %w", err)
	}
	return string(data), nil
}

// CreateUser implements repositories.UserStore
func (s *UserStore) CreateUser(ctx context.Context, user *entities.UserProfile) (err error) {
	start := time.Now()
	defer func() {
		metrics.RecordDBOperation("user", "create", time.Since(start), 1, err)
	}()

	if user.ID == "" {
		user.ID = idgen.NewUserID()
	}
	now := s.now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	metadata, err := encodeMetadata(user.PublicMetadata)
	if err != nil {
		return err
	}

	query := s.db.Rebind(`INSERT INTO users (` + userColumns + `) VALUES (?, ?, ?, ?, ?, ?)`)
	_, err = s.db.ExecContext(ctx, query,
		user.ID, user.Username, user.ProfileImageURL, metadata,
		user.CreatedAt.UnixMilli(), user.UpdatedAt.UnixMilli())
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s", repositories.ErrUsernameTaken, user.Username)
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}

	s.log.Debug("user created", "user_id", user.ID, "username", user.Username)
	return nil
}

// GetUserList implements repositories.IdentityProvider
func (s *UserStore) GetUserList(ctx context.Context, filter repositories.UserListFilter) (users []*entities.UserProfile, err error) {
	start := time.Now()
	defer func() {
		metrics.RecordDBOperation("user", "list", time.Since(start), int64(len(users)), err)
	}()

	var (
		clauses []string
		args    []any
	)
	if len(filter.Usernames) > 0 {
		q, a, inErr := sqlx.In(`username IN (?)`, filter.Usernames)
		if inErr != nil {
			return nil, fmt.Errorf("failed to build username filter: %w", inErr)
		}
		clauses = append(clauses, q)
		args = append(args, a...)
	}
	if len(filter.UserIDs) > 0 {
		q, a, inErr := sqlx.In(`id IN (?)`, filter.UserIDs)
		if inErr != nil {
			return nil, fmt.Errorf("failed to build id filter: %w", inErr)
		}
		clauses = append(clauses, q)
		args = append(args, a...)
	}
	if len(clauses) == 0 {
		return []*entities.UserProfile{}, nil
	}

	query := `SELECT ` + userColumns + ` FROM users WHERE ` + strings.Join(clauses, " OR ") +
		` ORDER BY created_at, id LIMIT ?`
	args = append(args, filter.EffectiveLimit())

	var rows []userRow
	if err = s.db.SelectContext(ctx, &rows, s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	users = make([]*entities.UserProfile, 0, len(rows))
	for i := range rows {
		u, convErr := rows[i].toEntity()
		if convErr != nil {
			err = convErr
			return nil, err
		}
		users = append(users, u)
	}
	return users, nil
}

// UpdateUser implements repositories.IdentityProvider
func (s *UserStore) UpdateUser(ctx context.Context, userID string, params repositories.UpdateUserParams) (user *entities.UserProfile, err error) {
	start := time.Now()
	defer func() {
		metrics.RecordDBOperation("user", "update", time.Since(start), 1, err)
	}()

	metadata, err := encodeMetadata(params.PublicMetadata)
	if err != nil {
		return nil, err
	}

	query := s.db.Rebind(`UPDATE users SET public_metadata = ?, updated_at = ? WHERE id = ? RETURNING ` + userColumns)

	var row userRow
	err = s.db.QueryRowxContext(ctx, query, metadata, s.now().UTC().UnixMilli(), userID).StructScan(&row)
	if errors.Is(err, sql.ErrNoRows) {
		err = fmt.Errorf("%w: %s", repositories.ErrUserNotFound, userID)
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	return row.toEntity()
}

package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"healthcast/internal/profile"
	"healthcast/internal/storage"
)

const createProfilesTable = `
CREATE TABLE IF NOT EXISTS fitness_profiles (
	id         UUID PRIMARY KEY,
	seq        BIGSERIAL NOT NULL,
	profile    JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

const insertProfile = `INSERT INTO fitness_profiles (id, profile) VALUES ($1, $2)`

const selectLatestProfile = `
SELECT profile FROM fitness_profiles
ORDER BY seq DESC
LIMIT 1`

// ProfileRepository stores one JSONB row per extracted profile. Rows are
// never updated; the newest row is the latest profile.
type ProfileRepository struct {
	pool *pgxpool.Pool
}

var _ storage.ProfileStore = (*ProfileRepository)(nil)

func NewProfileRepository(pool *pgxpool.Pool) *ProfileRepository {
	return &ProfileRepository{pool: pool}
}

func (r *ProfileRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, createProfilesTable); err != nil {
		return fmt.Errorf("create fitness_profiles table: %w", err)
	}
	return nil
}

func (r *ProfileRepository) Append(ctx context.Context, p profile.FitnessProfile) error {
	doc, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}
	if _, err := r.pool.Exec(ctx, insertProfile, uuid.New(), doc); err != nil {
		return fmt.Errorf("insert profile: %w", err)
	}
	return nil
}

func (r *ProfileRepository) Latest(ctx context.Context) (profile.FitnessProfile, error) {
	var doc []byte
	err := r.pool.QueryRow(ctx, selectLatestProfile).Scan(&doc)
	if errors.Is(err, pgx.ErrNoRows) {
		return profile.FitnessProfile{}, storage.ErrNoProfiles
	}
	if err != nil {
		return profile.FitnessProfile{}, fmt.Errorf("select latest profile: %w", err)
	}

	var p profile.FitnessProfile
	if err := json.Unmarshal(doc, &p); err != nil {
		return profile.FitnessProfile{}, fmt.Errorf("decode stored profile: %w", err)
	}
	return profile.New(p), nil
}

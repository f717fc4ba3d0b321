package postgres

import (
	"fmt"

	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/fairyhunter13/sermon-evaluator/internal/domain"
)

// ProfileRepo persists and loads preference profiles using a minimal pgx pool.
type ProfileRepo struct{ Pool PgxPool }

// NewProfileRepo constructs a ProfileRepo with the given pool.
func NewProfileRepo(p PgxPool) *ProfileRepo { return &ProfileRepo{Pool: p} }

// Get loads the profile for an owner.
func (r *ProfileRepo) Get(ctx domain.Context, ownerID string) (domain.PreferenceProfile, error) {
	tracer := otel.Tracer("repo.profiles")
	ctx, span := tracer.Start(ctx, "profiles.Get")
	defer span.End()
	span.SetAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation", "SELECT"),
		attribute.String("db.sql.table", "preference_profiles"),
	)
	q := `SELECT owner_id, favorite_topics, COALESCE(theological_tradition,''), recently_viewed, version
	      FROM preference_profiles WHERE owner_id=$1`
	row := r.Pool.QueryRow(ctx, q, ownerID)
	var p domain.PreferenceProfile
	if err := row.Scan(&p.OwnerID, &p.FavoriteTopics, &p.TheologicalTradition, &p.RecentlyViewed, &p.Version); err != nil {
		if err == pgx.ErrNoRows {
			return domain.PreferenceProfile{}, fmt.Errorf("op=profile.get: %w", domain.ErrNotFound)
		}
		return domain.PreferenceProfile{}, fmt.Errorf("op=profile.get: %w", err)
	}
	return p, nil
}

// Upsert writes the profile guarded by the version the caller read. Version 0
// inserts a fresh row; an existing row at version 0 or a stale version on
// update fails with ErrConflict.
func (r *ProfileRepo) Upsert(ctx domain.Context, p domain.PreferenceProfile) error {
	tracer := otel.Tracer("repo.profiles")
	ctx, span := tracer.Start(ctx, "profiles.Upsert")
	defer span.End()
	span.SetAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation", "UPSERT"),
		attribute.String("db.sql.table", "preference_profiles"),
	)
	if p.Version == 0 {
		q := `INSERT INTO preference_profiles (owner_id, favorite_topics, theological_tradition, recently_viewed, version)
		      VALUES ($1,$2,$3,$4,1) ON CONFLICT (owner_id) DO NOTHING`
		tag, err := r.Pool.Exec(ctx, q, p.OwnerID, p.FavoriteTopics, p.TheologicalTradition, p.RecentlyViewed)
		if err != nil {
			return fmt.Errorf("op=profile.upsert: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("op=profile.upsert: %w", domain.ErrConflict)
		}
		return nil
	}
	q := `UPDATE preference_profiles
	      SET favorite_topics=$2, theological_tradition=$3, recently_viewed=$4, version=version+1
	      WHERE owner_id=$1 AND version=$5`
	tag, err := r.Pool.Exec(ctx, q, p.OwnerID, p.FavoriteTopics, p.TheologicalTradition, p.RecentlyViewed, p.Version)
	if err != nil {
		return fmt.Errorf("op=profile.upsert: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("op=profile.upsert: %w", domain.ErrConflict)
	}
	return nil
}

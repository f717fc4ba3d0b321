// Package postgres provides PostgreSQL database adapters.
//
// It implements the sermon and preference-profile repositories with
// connection pooling and version-guarded writes.
package postgres

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/oklog/ulid/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/fairyhunter13/sermon-evaluator/internal/domain"
)

// PgxPool is a minimal subset of pgxpool used by the repos for easy testing.
type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
}

// SermonRepo persists and loads sermons using a minimal pgx pool.
type SermonRepo struct{ Pool PgxPool }

// NewSermonRepo constructs a SermonRepo with the given pool.
func NewSermonRepo(p PgxPool) *SermonRepo { return &SermonRepo{Pool: p} }

// NewID returns a lexicographically sortable sermon id.
func NewID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now().UTC()), rand.Reader).String()
}

// Create stores a new sermon and returns its id (generates one if empty).
func (r *SermonRepo) Create(ctx domain.Context, s domain.Sermon) (string, error) {
	tracer := otel.Tracer("repo.sermons")
	ctx, span := tracer.Start(ctx, "sermons.Create")
	defer span.End()
	span.SetAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation", "INSERT"),
		attribute.String("db.sql.table", "sermons"),
	)
	id := s.ID
	if id == "" {
		id = NewID()
	}
	createdAt := s.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	q := `INSERT INTO sermons (id, owner_id, title, content, bible_reference, analysis, version, created_at)
	      VALUES ($1,$2,$3,$4,$5,NULL,1,$6)`
	_, err := r.Pool.Exec(ctx, q, id, s.OwnerID, s.Title, s.Content, s.BibleReference, createdAt)
	if err != nil {
		return "", fmt.Errorf("op=sermon.create: %w", err)
	}
	return id, nil
}

// Get loads a sermon by id.
func (r *SermonRepo) Get(ctx domain.Context, id string) (domain.Sermon, error) {
	tracer := otel.Tracer("repo.sermons")
	ctx, span := tracer.Start(ctx, "sermons.Get")
	defer span.End()
	span.SetAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation", "SELECT"),
		attribute.String("db.sql.table", "sermons"),
	)
	q := `SELECT id, owner_id, title, content, COALESCE(bible_reference,''), analysis, version, created_at
	      FROM sermons WHERE id=$1`
	row := r.Pool.QueryRow(ctx, q, id)
	s, err := scanSermon(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.Sermon{}, fmt.Errorf("op=sermon.get: %w", domain.ErrNotFound)
		}
		return domain.Sermon{}, fmt.Errorf("op=sermon.get: %w", err)
	}
	return s, nil
}

// ListByOwner returns the owner's sermons, newest first.
func (r *SermonRepo) ListByOwner(ctx domain.Context, ownerID string) ([]domain.Sermon, error) {
	tracer := otel.Tracer("repo.sermons")
	ctx, span := tracer.Start(ctx, "sermons.ListByOwner")
	defer span.End()
	span.SetAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation", "SELECT"),
		attribute.String("db.sql.table", "sermons"),
	)
	q := `SELECT id, owner_id, title, content, COALESCE(bible_reference,''), analysis, version, created_at
	      FROM sermons WHERE owner_id=$1 ORDER BY created_at DESC, id`
	rows, err := r.Pool.Query(ctx, q, ownerID)
	if err != nil {
		return nil, fmt.Errorf("op=sermon.list: %w", err)
	}
	defer rows.Close()
	var out []domain.Sermon
	for rows.Next() {
		s, err := scanSermon(rows)
		if err != nil {
			return nil, fmt.Errorf("op=sermon.list: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("op=sermon.list: %w", err)
	}
	return out, nil
}

// AttachAnalysis writes the analysis JSON onto the sermon row, guarded by the
// version the caller read. A stale version matches no row and fails with
// ErrConflict.
func (r *SermonRepo) AttachAnalysis(ctx domain.Context, id string, version int64, a domain.SermonAnalysis) error {
	tracer := otel.Tracer("repo.sermons")
	ctx, span := tracer.Start(ctx, "sermons.AttachAnalysis")
	defer span.End()
	span.SetAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation", "UPDATE"),
		attribute.String("db.sql.table", "sermons"),
	)
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	payload, err := json.Marshal(analysisRecord{SermonAnalysis: a, AnalyzedAt: a.CreatedAt})
	if err != nil {
		return fmt.Errorf("op=sermon.attach_analysis: %w", err)
	}
	q := `UPDATE sermons SET analysis=$3, version=version+1 WHERE id=$1 AND version=$2`
	tag, err := r.Pool.Exec(ctx, q, id, version, payload)
	if err != nil {
		return fmt.Errorf("op=sermon.attach_analysis: %w", err)
	}
	if tag.RowsAffected() == 0 {
		// Either the sermon vanished or someone attached first.
		if _, getErr := r.Get(ctx, id); getErr != nil {
			return fmt.Errorf("op=sermon.attach_analysis: %w", domain.ErrNotFound)
		}
		return fmt.Errorf("op=sermon.attach_analysis: %w", domain.ErrConflict)
	}
	return nil
}

// analysisRecord is the JSONB shape stored in the analysis column. AnalyzedAt
// is carried explicitly because SermonAnalysis.CreatedAt is not serialized on
// the API surface.
type analysisRecord struct {
	domain.SermonAnalysis
	AnalyzedAt time.Time `json:"analyzedAt"`
}

func scanSermon(row pgx.Row) (domain.Sermon, error) {
	var s domain.Sermon
	var analysisRaw []byte
	if err := row.Scan(&s.ID, &s.OwnerID, &s.Title, &s.Content, &s.BibleReference, &analysisRaw, &s.Version, &s.CreatedAt); err != nil {
		return domain.Sermon{}, err
	}
	if len(analysisRaw) > 0 {
		var rec analysisRecord
		if err := json.Unmarshal(analysisRaw, &rec); err != nil {
			return domain.Sermon{}, fmt.Errorf("decode analysis: %w", err)
		}
		a := rec.SermonAnalysis
		a.CreatedAt = rec.AnalyzedAt
		s.Analysis = &a
	}
	return s, nil
}

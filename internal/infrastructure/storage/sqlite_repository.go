package storage

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	_ "modernc.org/sqlite"

	"github.com/FlosMume/CareMind/internal/domain"
	"github.com/FlosMume/CareMind/internal/ports"
)

const schema = `CREATE TABLE IF NOT EXISTS drug_records (
    name               TEXT PRIMARY KEY,
    indications        TEXT NOT NULL,
    contraindications  TEXT NOT NULL,
    interactions       TEXT NOT NULL,
    pregnancy_category TEXT NOT NULL,
    source             TEXT NOT NULL,
    updated_at         TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
)`

// SQLiteRepository caches resolved records so repeated runs skip sources
// for names already built.
type SQLiteRepository struct {
	db *sql.DB
}

var _ ports.RecordRepository = (*SQLiteRepository)(nil)

// Open creates (or reuses) the cache database at path.
func Open(path string) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open cache db: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init cache schema: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

// Close releases the underlying database handle.
func (r *SQLiteRepository) Close() error {
	if r.db == nil {
		return nil
	}
	return r.db.Close()
}

// Lookup returns cached records keyed by name for the subset of names
// already resolved.
func (r *SQLiteRepository) Lookup(ctx context.Context, names []string) (map[string]domain.DrugRecord, error) {
	result := make(map[string]domain.DrugRecord)
	if r.db == nil || len(names) == 0 {
		return result, nil
	}

	query, args, err := sq.
		Select("name", "indications", "contraindications", "interactions", "pregnancy_category", "source").
		From("drug_records").
		Where(sq.Eq{"name": names}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build lookup query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var rec domain.DrugRecord
		if err := rows.Scan(&rec.Name, &rec.Indications, &rec.Contraindications,
			&rec.Interactions, &rec.PregnancyCategory, &rec.Source); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		result[rec.Name] = rec
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	return result, nil
}

// Save upserts one resolved record snapshot.
func (r *SQLiteRepository) Save(ctx context.Context, rec domain.DrugRecord) error {
	if r.db == nil {
		return nil
	}

	query, args, err := sq.
		Insert("drug_records").
		Columns("name", "indications", "contraindications", "interactions", "pregnancy_category", "source").
		Values(rec.Name, rec.Indications, rec.Contraindications, rec.Interactions, rec.PregnancyCategory, rec.Source).
		Suffix(`ON CONFLICT (name) DO UPDATE SET
            indications = excluded.indications,
            contraindications = excluded.contraindications,
            interactions = excluded.interactions,
            pregnancy_category = excluded.pregnancy_category,
            source = excluded.source,
            updated_at = CURRENT_TIMESTAMP`).
		ToSql()
	if err != nil {
		return fmt.Errorf("build upsert query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert record: %w", err)
	}
	return nil
}

package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/vytor/pgnarchive/internal/logger"
	"github.com/vytor/pgnarchive/internal/models"
	"github.com/vytor/pgnarchive/internal/repository"
)

type importRepository struct {
	db *sql.DB
}

// NewImportRepository creates a new ImportRepository implementation
func NewImportRepository(db *sql.DB) repository.ImportRepository {
	return &importRepository{db: db}
}

func (r *importRepository) Insert(ctx context.Context, s models.ImportSummary) error {
	log := logger.FromContext(ctx).WithPrefix("import_repo")
	log.Debug("recording import: id=%s, source=%s", s.ImportID, s.Source)

	errs, err := json.Marshal(nonNil(s.Errors))
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `
INSERT INTO imports (id, source, parsed, inserted, skipped, rejected, errors)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
    parsed = excluded.parsed,
    inserted = excluded.inserted,
    skipped = excluded.skipped,
    rejected = excluded.rejected,
    errors = excluded.errors
`, s.ImportID, s.Source, s.Parsed, s.Inserted, s.Skipped, s.Rejected, string(errs))
	if err != nil {
		log.Error("failed to record import: %v", err)
	}
	return err
}

const selectImportSQL = `SELECT id, source, parsed, inserted, skipped, rejected, errors, created_at FROM imports`

func scanImport(row rowScanner) (models.ImportSummary, error) {
	var (
		s    models.ImportSummary
		errs string
	)
	if err := row.Scan(&s.ImportID, &s.Source, &s.Parsed, &s.Inserted, &s.Skipped, &s.Rejected, &errs, &s.CreatedAt); err != nil {
		return s, err
	}
	if err := json.Unmarshal([]byte(errs), &s.Errors); err != nil {
		return s, err
	}
	return s, nil
}

func (r *importRepository) Get(ctx context.Context, id string) (*models.ImportSummary, error) {
	log := logger.FromContext(ctx).WithPrefix("import_repo")

	s, err := scanImport(r.db.QueryRowContext(ctx, selectImportSQL+` WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("import not found: id=%s", id)
		} else {
			log.Error("failed to get import: %v", err)
		}
		return nil, err
	}
	return &s, nil
}

func (r *importRepository) List(ctx context.Context, limit int) ([]models.ImportSummary, error) {
	log := logger.FromContext(ctx).WithPrefix("import_repo")
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.db.QueryContext(ctx, selectImportSQL+` ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		log.Error("failed to list imports: %v", err)
		return nil, err
	}
	defer rows.Close()

	var out []models.ImportSummary
	for rows.Next() {
		s, err := scanImport(rows)
		if err != nil {
			log.Error("failed to scan import row: %v", err)
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

package db

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/hpungsan/ivtab/internal/errors"
	"github.com/hpungsan/ivtab/internal/interval"
)

// ErrUniqueConstraint is returned when an insert violates a UNIQUE constraint.
var ErrUniqueConstraint = &errors.Error{
	Code:    "UNIQUE_CONSTRAINT",
	Status:  409,
	Message: "unique constraint violation",
}

const setColumns = `
	id, name_raw, name_norm, source_path, weighted,
	interval_count, skipped_rows, min_start, max_end, total_weight,
	created_at, deleted_at
`

// InsertSet stores a new set and its intervals in one transaction.
func InsertSet(ctx context.Context, db *sql.DB, s *interval.Set) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return errors.NewInternal(err)
	}
	defer tx.Rollback()

	if err := insertSetTx(ctx, tx, s); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// ReplaceSet soft-deletes the active set named s.NameNorm (if any) and stores s,
// atomically. s.NameNorm must be set.
func ReplaceSet(ctx context.Context, db *sql.DB, s *interval.Set) error {
	if s.NameNorm == nil {
		return errors.NewInvalidRequest("replace requires a name")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return errors.NewInternal(err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		UPDATE interval_sets
		SET deleted_at = ?
		WHERE name_norm = ? AND deleted_at IS NULL
	`, time.Now().Unix(), *s.NameNorm)
	if err != nil {
		return errors.NewInternal(err)
	}

	if err := insertSetTx(ctx, tx, s); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

func insertSetTx(ctx context.Context, tx *sql.Tx, s *interval.Set) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO interval_sets (`+setColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, NULL)
	`,
		s.ID, toNullString(s.NameRaw), toNullString(s.NameNorm), s.SourcePath, s.Weighted,
		s.Stats.Count, s.SkippedRows, s.Stats.MinStart, s.Stats.MaxEnd, s.Stats.TotalWeight,
		s.CreatedAt,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return ErrUniqueConstraint
		}
		return errors.NewInternal(err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO intervals (set_id, position, start_val, end_val, weight)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return errors.NewInternal(err)
	}
	defer stmt.Close()

	for i, iv := range s.Intervals {
		var weight sql.NullInt64
		if w, ok := iv.Weight(); ok {
			weight = sql.NullInt64{Int64: w, Valid: true}
		}
		if _, err := stmt.ExecContext(ctx, s.ID, i, iv.Start(), iv.End(), weight); err != nil {
			if ctx.Err() != nil {
				return errors.NewCancelled("import")
			}
			return errors.NewInternal(err)
		}
	}
	return nil
}

// isUniqueConstraintError checks if the error is a SQLite UNIQUE constraint violation.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// GetByID retrieves set metadata by its ULID. Intervals are not loaded.
// If includeDeleted is false, soft-deleted sets are excluded.
func GetByID(ctx context.Context, db *sql.DB, id string, includeDeleted bool) (*interval.Set, error) {
	query := `SELECT ` + setColumns + ` FROM interval_sets WHERE id = ?`
	if !includeDeleted {
		query += " AND deleted_at IS NULL"
	}

	s, err := scanSet(db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound(id)
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return s, nil
}

// GetByName retrieves set metadata by normalized name. Intervals are not loaded.
// If includeDeleted is false, soft-deleted sets are excluded.
func GetByName(ctx context.Context, db *sql.DB, nameNorm string, includeDeleted bool) (*interval.Set, error) {
	query := `SELECT ` + setColumns + ` FROM interval_sets WHERE name_norm = ?`
	if !includeDeleted {
		query += " AND deleted_at IS NULL"
	} else {
		// Prefer the active set; otherwise the most recently created deleted one.
		query += " ORDER BY (deleted_at IS NULL) DESC, created_at DESC LIMIT 1"
	}

	s, err := scanSet(db.QueryRowContext(ctx, query, nameNorm))
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound(nameNorm)
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return s, nil
}

// CheckNameExists checks if an active set with the given name exists.
func CheckNameExists(ctx context.Context, db *sql.DB, nameNorm string) (bool, error) {
	var exists int
	err := db.QueryRowContext(ctx, `
		SELECT 1 FROM interval_sets
		WHERE name_norm = ? AND deleted_at IS NULL
		LIMIT 1
	`, nameNorm).Scan(&exists)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, errors.NewInternal(err)
	}
	return true, nil
}

// GetIntervals loads the intervals of a set in their original order.
func GetIntervals(ctx context.Context, db *sql.DB, setID string) ([]interval.Interval, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT start_val, end_val, weight
		FROM intervals
		WHERE set_id = ?
		ORDER BY position
	`, setID)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	intervals := []interval.Interval{}
	for rows.Next() {
		var (
			start, end int64
			weight     sql.NullInt64
		)
		if err := rows.Scan(&start, &end, &weight); err != nil {
			return nil, errors.NewInternal(err)
		}
		if weight.Valid {
			intervals = append(intervals, interval.NewWeighted(start, end, weight.Int64))
		} else {
			intervals = append(intervals, interval.New(start, end))
		}
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return intervals, nil
}

// ListSets returns set summaries, newest first, and the total matching count.
func ListSets(ctx context.Context, db *sql.DB, limit, offset int, includeDeleted bool) ([]interval.SetSummary, int, error) {
	where := ""
	if !includeDeleted {
		where = " WHERE deleted_at IS NULL"
	}

	var total int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM interval_sets`+where).Scan(&total); err != nil {
		return nil, 0, errors.NewInternal(err)
	}

	rows, err := db.QueryContext(ctx, `
		SELECT id, name_raw, source_path, weighted, interval_count, skipped_rows, created_at, deleted_at
		FROM interval_sets`+where+`
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?
	`, limit, offset)
	if err != nil {
		return nil, 0, errors.NewInternal(err)
	}
	defer rows.Close()

	var summaries []interval.SetSummary
	for rows.Next() {
		var (
			s         interval.SetSummary
			nameRaw   sql.NullString
			deletedAt sql.NullInt64
		)
		if err := rows.Scan(&s.ID, &nameRaw, &s.SourcePath, &s.Weighted, &s.Count, &s.SkippedRows, &s.CreatedAt, &deletedAt); err != nil {
			return nil, 0, errors.NewInternal(err)
		}
		s.Name = fromNullString(nameRaw)
		if deletedAt.Valid {
			s.DeletedAt = &deletedAt.Int64
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, errors.NewInternal(err)
	}
	return summaries, total, nil
}

// SoftDelete marks a set as deleted by setting deleted_at.
func SoftDelete(ctx context.Context, db *sql.DB, id string) error {
	result, err := db.ExecContext(ctx, `
		UPDATE interval_sets
		SET deleted_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`, time.Now().Unix(), id)
	if err != nil {
		return errors.NewInternal(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errors.NewInternal(err)
	}
	if rowsAffected == 0 {
		return errors.NewNotFound(id)
	}
	return nil
}

// scanSet scans a single row into a Set.
func scanSet(row *sql.Row) (*interval.Set, error) {
	var (
		s         interval.Set
		nameRaw   sql.NullString
		nameNorm  sql.NullString
		deletedAt sql.NullInt64
	)

	err := row.Scan(
		&s.ID, &nameRaw, &nameNorm, &s.SourcePath, &s.Weighted,
		&s.Stats.Count, &s.SkippedRows, &s.Stats.MinStart, &s.Stats.MaxEnd, &s.Stats.TotalWeight,
		&s.CreatedAt, &deletedAt,
	)
	if err != nil {
		return nil, err
	}

	s.NameRaw = fromNullString(nameRaw)
	s.NameNorm = fromNullString(nameNorm)
	if deletedAt.Valid {
		s.DeletedAt = &deletedAt.Int64
	}
	return &s, nil
}

// toNullString converts a *string to sql.NullString.
func toNullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

// fromNullString converts a sql.NullString to *string.
func fromNullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	return &ns.String
}

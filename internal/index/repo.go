package index

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/starford/bantay/internal/models"
)

// UpsertRecord inserts or replaces the record stored for path.
func (db *DB) UpsertRecord(path, checksum string, r models.Record) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	// A file may change its id; drop the old row so the path stays unique.
	if _, err := tx.Exec(`DELETE FROM records WHERE path = ? AND id <> ?`, path, r.ID); err != nil {
		return fmt.Errorf("index: clear path: %w", err)
	}

	var age sql.NullInt64
	if r.Subject.Age != nil {
		age = sql.NullInt64{Int64: int64(*r.Subject.Age), Valid: true}
	}
	_, err = tx.Exec(`
		INSERT INTO records (id, path, checksum, kind, created_at, category, status,
			full_name, zone, age, gender, employment, pwd, four_ps, solo_parent, indexed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			path        = excluded.path,
			checksum    = excluded.checksum,
			kind        = excluded.kind,
			created_at  = excluded.created_at,
			category    = excluded.category,
			status      = excluded.status,
			full_name   = excluded.full_name,
			zone        = excluded.zone,
			age         = excluded.age,
			gender      = excluded.gender,
			employment  = excluded.employment,
			pwd         = excluded.pwd,
			four_ps     = excluded.four_ps,
			solo_parent = excluded.solo_parent,
			indexed_at  = excluded.indexed_at
		WHERE records.path = excluded.path
	`, r.ID, path, checksum, string(r.Kind), r.CreatedAt.UnixMilli(), r.Category, string(r.Status),
		r.Subject.FullName, r.Subject.Zone, age, r.Subject.Gender, r.Subject.Employment,
		r.Subject.PWD, r.Subject.FourPs, r.Subject.SoloParent, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("index: upsert record: %w", err)
	}

	var owner string
	if err := tx.QueryRow(`SELECT path FROM records WHERE id = ?`, r.ID).Scan(&owner); err != nil {
		return fmt.Errorf("index: verify upsert: %w", err)
	}
	if owner != path {
		return fmt.Errorf("index: id %s already used by %s", r.ID, owner)
	}
	return tx.Commit()
}

// DeleteRecord removes the record stored for path. Missing paths are not an error.
func (db *DB) DeleteRecord(path string) error {
	if _, err := db.conn.Exec(`DELETE FROM records WHERE path = ?`, path); err != nil {
		return fmt.Errorf("index: delete record: %w", err)
	}
	return nil
}

// GetChecksum returns the stored checksum for path, or "" if not indexed.
func (db *DB) GetChecksum(path string) (string, error) {
	var cs string
	err := db.conn.QueryRow(`SELECT checksum FROM records WHERE path = ?`, path).Scan(&cs)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("index: get checksum: %w", err)
	}
	return cs, nil
}

// AllChecksums returns path -> checksum for every indexed record.
func (db *DB) AllChecksums() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT path, checksum FROM records`)
	if err != nil {
		return nil, fmt.Errorf("index: all checksums: %w", err)
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var p, cs string
		if err := rows.Scan(&p, &cs); err != nil {
			return nil, err
		}
		out[p] = cs
	}
	return out, rows.Err()
}

const recordColumns = `id, kind, created_at, category, status,
	full_name, zone, age, gender, employment, pwd, four_ps, solo_parent`

// Records returns records of kind ordered by created_at, id. Timestamps
// are returned in UTC; callers convert to the office time zone.
func (db *DB) Records(ctx context.Context, kind models.Kind) ([]models.Record, error) {
	q := `SELECT ` + recordColumns + ` FROM records`
	var args []any
	if kind != "" {
		q += ` WHERE kind = ?`
		args = append(args, string(kind))
	}
	q += ` ORDER BY created_at, id`

	rows, err := db.conn.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("index: records: %w", err)
	}
	defer rows.Close()

	out := []models.Record{}
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("index: scan record: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Count returns the number of indexed records of kind (all when empty).
func (db *DB) Count(ctx context.Context, kind models.Kind) (int, error) {
	q := `SELECT count(*) FROM records`
	var args []any
	if kind != "" {
		q += ` WHERE kind = ?`
		args = append(args, string(kind))
	}
	var n int
	if err := db.conn.QueryRowContext(ctx, q, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("index: count: %w", err)
	}
	return n, nil
}

func scanRecord(rows *sql.Rows) (models.Record, error) {
	var (
		r       models.Record
		kind    string
		status  string
		created int64
		age     sql.NullInt64
	)
	err := rows.Scan(&r.ID, &kind, &created, &r.Category, &status,
		&r.Subject.FullName, &r.Subject.Zone, &age, &r.Subject.Gender, &r.Subject.Employment,
		&r.Subject.PWD, &r.Subject.FourPs, &r.Subject.SoloParent)
	if err != nil {
		return r, err
	}
	r.Kind = models.Kind(strings.TrimSpace(kind))
	r.Status = models.Status(status)
	r.CreatedAt = time.UnixMilli(created).UTC()
	if age.Valid {
		a := int(age.Int64)
		r.Subject.Age = &a
	}
	return r, nil
}

// Package sqldb implementa docstore.Backend sobre database/sql.
// Las diferencias entre motores (placeholders, DDL, errores de unicidad)
// vienen en el Dialect que arma cada adapter (postgres, sqlite).
package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"smart-feeding/internal/adapters/storage/docstore"
)

type Dialect struct {
	Name string
	// Schema son las sentencias DDL idempotentes (CREATE ... IF NOT EXISTS).
	Schema []string
	// DollarPlaceholders: $1, $2... en vez de ?.
	DollarPlaceholders bool
	IsUniqueViolation  func(error) bool
}

type Store struct {
	db      *sql.DB
	dialect Dialect
	now     func() time.Time
}

// New no toca la base; llamar Migrate antes de usarla.
func New(db *sql.DB, d Dialect) *Store {
	return &Store{db: db, dialect: d, now: time.Now}
}

var _ docstore.Backend = (*Store)(nil)

// Migrate aplica el schema del dialecto.
func (s *Store) Migrate(ctx context.Context) error {
	for _, stmt := range s.dialect.Schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate %s: %w", s.dialect.Name, err)
		}
	}
	return nil
}

const columns = `kind, id, owner_id, parent_id, lookup, version, body, created_at, updated_at`

func (s *Store) Get(ctx context.Context, kind, id string) (docstore.Document, error) {
	row := s.db.QueryRowContext(ctx, s.rebind(`
		SELECT `+columns+` FROM documents WHERE kind = ? AND id = ?
	`), kind, id)
	return scanDoc(row)
}

func (s *Store) FindByLookup(ctx context.Context, kind, lookup string) (docstore.Document, error) {
	if strings.TrimSpace(lookup) == "" {
		return docstore.Document{}, docstore.ErrNotFound
	}
	row := s.db.QueryRowContext(ctx, s.rebind(`
		SELECT `+columns+` FROM documents WHERE kind = ? AND lookup = ?
	`), kind, lookup)
	return scanDoc(row)
}

func (s *Store) List(ctx context.Context, kind string, f docstore.Filter) ([]docstore.Document, error) {
	where := []string{"kind = ?"}
	args := []any{kind}

	if f.OwnerID != "" {
		where = append(where, "owner_id = ?")
		args = append(args, f.OwnerID)
	}
	if f.ParentID != "" {
		where = append(where, "parent_id = ?")
		args = append(args, f.ParentID)
	}

	q := `SELECT ` + columns + ` FROM documents WHERE ` + strings.Join(where, " AND ") + ` ORDER BY seq ASC`
	if f.Limit > 0 {
		q += ` LIMIT ` + strconv.Itoa(f.Limit)
	}

	rows, err := s.db.QueryContext(ctx, s.rebind(q), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]docstore.Document, 0)
	for rows.Next() {
		d, err := scanDoc(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (s *Store) Put(ctx context.Context, d docstore.Document) (docstore.Document, error) {
	if strings.TrimSpace(d.Kind) == "" || strings.TrimSpace(d.ID) == "" {
		return docstore.Document{}, errors.New("document kind and id required")
	}
	now := s.now().UTC()

	if d.Version == 0 {
		_, err := s.db.ExecContext(ctx, s.rebind(`
			INSERT INTO documents (`+columns+`)
			VALUES (?, ?, ?, ?, ?, 1, ?, ?, ?)
		`), d.Kind, d.ID, d.OwnerID, d.ParentID, nullLookup(d.Lookup), string(d.Body), toMillis(now), toMillis(now))
		if err != nil {
			if s.isUnique(err) {
				return docstore.Document{}, docstore.ErrDuplicate
			}
			return docstore.Document{}, err
		}
		return s.Get(ctx, d.Kind, d.ID)
	}

	res, err := s.db.ExecContext(ctx, s.rebind(`
		UPDATE documents
		SET
			owner_id = ?,
			parent_id = ?,
			lookup = ?,
			version = version + 1,
			body = ?,
			updated_at = ?
		WHERE kind = ? AND id = ? AND version = ?
	`), d.OwnerID, d.ParentID, nullLookup(d.Lookup), string(d.Body), toMillis(now), d.Kind, d.ID, d.Version)
	if err != nil {
		if s.isUnique(err) {
			return docstore.Document{}, docstore.ErrDuplicate
		}
		return docstore.Document{}, err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return docstore.Document{}, err
	}
	if n == 0 {
		// o no existe o alguien escribió antes
		if _, err := s.Get(ctx, d.Kind, d.ID); err != nil {
			return docstore.Document{}, err
		}
		return docstore.Document{}, docstore.ErrConflict
	}
	return s.Get(ctx, d.Kind, d.ID)
}

func (s *Store) Delete(ctx context.Context, kind, id string) error {
	res, err := s.db.ExecContext(ctx, s.rebind(`DELETE FROM documents WHERE kind = ? AND id = ?`), kind, id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return docstore.ErrNotFound
	}
	return nil
}

func (s *Store) Count(ctx context.Context, kind string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, s.rebind(`SELECT COUNT(*) FROM documents WHERE kind = ?`), kind).Scan(&n)
	return n, err
}

func (s *Store) isUnique(err error) bool {
	return s.dialect.IsUniqueViolation != nil && s.dialect.IsUniqueViolation(err)
}

// rebind pasa ? a $n cuando el dialecto lo pide.
func (s *Store) rebind(q string) string {
	if !s.dialect.DollarPlaceholders {
		return q
	}
	var b strings.Builder
	n := 0
	for _, r := range q {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanDoc(sc scanner) (docstore.Document, error) {
	var (
		d         docstore.Document
		lookup    sql.NullString
		body      string
		createdAt int64
		updatedAt int64
	)
	err := sc.Scan(&d.Kind, &d.ID, &d.OwnerID, &d.ParentID, &lookup, &d.Version, &body, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return docstore.Document{}, docstore.ErrNotFound
		}
		return docstore.Document{}, err
	}
	d.Lookup = lookup.String
	d.Body = []byte(body)
	d.CreatedAt = fromMillis(createdAt)
	d.UpdatedAt = fromMillis(updatedAt)
	return d, nil
}

func nullLookup(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func toMillis(t time.Time) int64 {
	return t.UTC().UnixMilli()
}

func fromMillis(v int64) time.Time {
	return time.UnixMilli(v).UTC()
}

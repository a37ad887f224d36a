package overrides

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Bitfisherllc/roofdb/internal/data"

	_ "modernc.org/sqlite"
)

var ErrRevisionMismatch = errors.New("override revision does not match")

const schema = `
CREATE TABLE IF NOT EXISTS roofer_overrides (
	slug TEXT PRIMARY KEY,
	is_preferred INTEGER,
	is_hidden INTEGER,
	google_business_url TEXT,
	category TEXT,
	phone TEXT,
	email TEXT,
	website_url TEXT,
	service_areas TEXT,
	updated_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS override_revision (
	id INTEGER PRIMARY KEY CHECK (id = 1),
	revision INTEGER NOT NULL
);

INSERT OR IGNORE INTO override_revision (id, revision) VALUES (1, 0);
`

const upsertQuery = `
INSERT INTO roofer_overrides (
	slug, is_preferred, is_hidden, google_business_url, category,
	phone, email, website_url, service_areas, updated_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(slug) DO UPDATE SET
	is_preferred = COALESCE(excluded.is_preferred, roofer_overrides.is_preferred),
	is_hidden = COALESCE(excluded.is_hidden, roofer_overrides.is_hidden),
	google_business_url = COALESCE(excluded.google_business_url, roofer_overrides.google_business_url),
	category = COALESCE(excluded.category, roofer_overrides.category),
	phone = COALESCE(excluded.phone, roofer_overrides.phone),
	email = COALESCE(excluded.email, roofer_overrides.email),
	website_url = COALESCE(excluded.website_url, roofer_overrides.website_url),
	service_areas = COALESCE(excluded.service_areas, roofer_overrides.service_areas),
	updated_at = excluded.updated_at
`

const selectColumns = `slug, is_preferred, is_hidden, google_business_url, category,
	phone, email, website_url, service_areas`

// Store keeps admin edits as per-roofer overrides in SQLite. Only the
// editable fields are stored; a NULL column means "not overridden".
type Store struct {
	db  *sql.DB
	log *zap.Logger
	now func() time.Time
}

// Open opens the override database at dsn and creates its schema.
func Open(ctx context.Context, dsn string, log *zap.Logger) (*Store, error) {
	if log == nil {
		log = zap.NewNop()
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open override database")
	}

	// one writer at a time; also keeps :memory: databases on one connection
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "failed to initialize override schema")
	}

	return &Store{db: db, log: log, now: time.Now}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Revision is bumped by every successful Upsert.
func (s *Store) Revision(ctx context.Context) (int64, error) {
	var rev int64
	err := s.db.QueryRowContext(ctx, `SELECT revision FROM override_revision WHERE id = 1`).Scan(&rev)
	if err != nil {
		return 0, errors.Wrap(err, "could not read override revision")
	}

	return rev, nil
}

// Upsert merges updates into the stored overrides in one transaction. Fields
// left nil keep their stored value. A non negative expect must equal the
// current revision. It returns the new revision.
func (s *Store) Upsert(ctx context.Context, updates []data.Update, expect int64) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, errors.Wrap(err, "could not begin override transaction")
	}
	defer func() { _ = tx.Rollback() }()

	var rev int64
	if err := tx.QueryRowContext(ctx, `SELECT revision FROM override_revision WHERE id = 1`).Scan(&rev); err != nil {
		return 0, errors.Wrap(err, "could not read override revision")
	}

	if expect >= 0 && rev != expect {
		return 0, errors.Wrapf(ErrRevisionMismatch, "expected %d, current is %d", expect, rev)
	}

	stmt, err := tx.PrepareContext(ctx, upsertQuery)
	if err != nil {
		return 0, errors.Wrap(err, "could not prepare override upsert")
	}
	defer stmt.Close()

	now := s.now().Unix()
	for _, u := range updates {
		areas, err := areasColumn(u.ServiceAreas)
		if err != nil {
			return 0, err
		}

		_, err = stmt.ExecContext(ctx,
			u.Slug,
			boolColumn(u.IsPreferred),
			boolColumn(u.IsHidden),
			stringColumn(u.GoogleBusinessURL),
			stringColumn(u.Category),
			stringColumn(u.Phone),
			stringColumn(u.Email),
			stringColumn(u.WebsiteURL),
			areas,
			now,
		)
		if err != nil {
			return 0, errors.Wrapf(err, "could not store override for %q", u.Slug)
		}
	}

	if _, err := tx.ExecContext(ctx, `UPDATE override_revision SET revision = revision + 1 WHERE id = 1`); err != nil {
		return 0, errors.Wrap(err, "could not bump override revision")
	}

	if err := tx.Commit(); err != nil {
		return 0, errors.Wrap(err, "could not commit overrides")
	}

	s.log.Debug("overrides stored", zap.Int("updates", len(updates)), zap.Int64("revision", rev+1))

	return rev + 1, nil
}

// Get returns the override stored for slug.
func (s *Store) Get(ctx context.Context, slug string) (data.Update, bool, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM roofer_overrides WHERE slug = ?`, slug)

	u, err := scanOverride(row)
	if errors.Is(err, sql.ErrNoRows) {
		return data.Update{}, false, nil
	}
	if err != nil {
		return data.Update{}, false, err
	}

	return u, true, nil
}

// All returns every stored override keyed by slug.
func (s *Store) All(ctx context.Context) (map[string]data.Update, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+selectColumns+` FROM roofer_overrides`)
	if err != nil {
		return nil, errors.Wrap(err, "could not list overrides")
	}
	defer rows.Close()

	result := make(map[string]data.Update)
	for rows.Next() {
		u, err := scanOverride(rows)
		if err != nil {
			return nil, err
		}
		result[u.Slug] = u
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "could not list overrides")
	}

	return result, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanOverride(row scanner) (data.Update, error) {
	var (
		u                                        data.Update
		preferred, hidden                        sql.NullBool
		gbu, category, phone, email, site, areas sql.NullString
	)

	if err := row.Scan(&u.Slug, &preferred, &hidden, &gbu, &category, &phone, &email, &site, &areas); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return u, err
		}
		return u, errors.Wrap(err, "could not read override")
	}

	if preferred.Valid {
		u.IsPreferred = &preferred.Bool
	}
	if hidden.Valid {
		u.IsHidden = &hidden.Bool
	}

	u.GoogleBusinessURL = fromNull(gbu)
	u.Category = fromNull(category)
	u.Phone = fromNull(phone)
	u.Email = fromNull(email)
	u.WebsiteURL = fromNull(site)

	if areas.Valid {
		var sa data.ServiceAreas
		if err := json.Unmarshal([]byte(areas.String), &sa); err != nil {
			return u, errors.Wrapf(err, "corrupt service areas for %q", u.Slug)
		}
		u.ServiceAreas = &sa
	}

	return u, nil
}

func boolColumn(v *bool) interface{} {
	if v == nil {
		return nil
	}
	if *v {
		return int64(1)
	}
	return int64(0)
}

func stringColumn(v *string) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func areasColumn(sa *data.ServiceAreas) (interface{}, error) {
	if sa == nil {
		return nil, nil
	}

	b, err := json.Marshal(data.ServiceAreas{
		Regions:  nonNil(sa.Regions),
		Counties: nonNil(sa.Counties),
		Cities:   nonNil(sa.Cities),
	})
	if err != nil {
		return nil, errors.Wrap(err, "could not encode service areas")
	}

	return string(b), nil
}

func fromNull(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	v := ns.String
	return &v
}

func nonNil(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}

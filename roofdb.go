// Package roofdb stores roofer directory records in an exported object
// literal inside a source file, and edits them in place.
package roofdb

import (
	"context"
	"sync"

	"github.com/pkg/errors"

	"github.com/Bitfisherllc/roofdb/internal/data"
	"github.com/Bitfisherllc/roofdb/internal/literal"
	"github.com/Bitfisherllc/roofdb/internal/storage"
	"github.com/Bitfisherllc/roofdb/options"
)

var ErrDatabaseAlreadyClosed = errors.New("database already closed")
var ErrPersistenceFailed = errors.New("database write failed")
var ErrStaleDocument = errors.New("document changed since it was read")
var ErrVersionMismatch = errors.New("document version does not match")

type DB struct {
	e      *engine
	path   string
	mu     sync.RWMutex
	closed bool
}

type UserCallback func(tx *Tx) error

type Closer func() error

func NullCloser() error { return nil }

// New opens the data file at path. A nil cfg uses the defaults.
func New(path string, cfg *Config) (*DB, Closer, error) {
	cfg = cfg.withDefaults()
	return open(storage.NewFileStorage(path, cfg.MaxDocumentBytes, cfg.FilePerm), cfg)
}

func open(s storage.Storage, cfg *Config) (*DB, Closer, error) {
	e, err := newEngine(s, cfg.withDefaults())
	if err != nil {
		return nil, NullCloser, err
	}

	db := &DB{e: e, path: s.Name()}

	return db, db.close, nil
}

func (db *DB) close() error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if db.closed {
		return ErrDatabaseAlreadyClosed
	}

	if err := db.e.close(); err != nil {
		return err
	}

	db.closed = true
	return nil
}

func (db *DB) Path() string {
	return db.path
}

func (db *DB) begin(ctx context.Context, readOnly bool) (*Tx, error) {
	if db.closed {
		return nil, ErrDatabaseAlreadyClosed
	}

	if !readOnly {
		if err := db.e.load(); err != nil {
			return nil, err
		}
	}

	snap := db.e.current
	tx := Tx{
		e:        db.e,
		ctx:      ctx,
		readOnly: readOnly,
		base:     snap.checksum,
		snap:     snap,
	}

	return &tx, nil
}

func (db *DB) Count() int {
	db.mu.RLock()
	defer db.mu.RUnlock()

	if db.closed {
		return 0
	}

	return db.e.current.len()
}

func (db *DB) View(ctx context.Context, cb UserCallback) error {
	db.mu.RLock()
	defer db.mu.RUnlock()

	tx, err := db.begin(ctx, true)
	if err != nil {
		return err
	}

	err = cb(tx)
	if err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return errors.Wrap(err, rbErr.Error())
		}

		return errors.Wrap(err, "db read failed. rolled back")
	}

	return tx.Commit()
}

// Update runs cb in a write transaction. The data file is re-read first,
// and the edits are persisted only if cb succeeds and the file was not
// changed by someone else in the meantime.
func (db *DB) Update(ctx context.Context, cb UserCallback) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	tx, err := db.begin(ctx, false)
	if err != nil {
		return err
	}

	err = cb(tx)
	if err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return errors.Wrap(err, rbErr.Error())
		}

		return errors.Wrap(err, "db write failed. rolled back")
	}

	return tx.Commit()
}

// Roofers lists the roofers matching opts.
func (db *DB) Roofers(ctx context.Context, opts *options.FindOptions) ([]data.Roofer, error) {
	var result []data.Roofer
	err := db.View(ctx, func(tx *Tx) error {
		var err error
		result, err = tx.Roofers(opts)
		return err
	})

	return result, err
}

// Roofer returns the roofer stored under slug, hidden or not.
func (db *DB) Roofer(ctx context.Context, slug string) (data.Roofer, error) {
	var result data.Roofer
	err := db.View(ctx, func(tx *Tx) error {
		doc, err := tx.Get(slug)
		if err != nil {
			return err
		}

		result, err = doc.Roofer()
		return err
	})

	return result, err
}

// ApplyUpdates applies one admin batch and persists it. A non empty version
// must match the current document version.
func (db *DB) ApplyUpdates(ctx context.Context, updates []data.Update, version string) (literal.Report, error) {
	var report literal.Report
	err := db.Update(ctx, func(tx *Tx) error {
		if version != "" && version != tx.Version() {
			return errors.Wrapf(ErrVersionMismatch, "expected %s, current is %s", version, tx.Version())
		}

		if _, err := tx.Apply(updates...); err != nil {
			return err
		}

		report = tx.Report()
		return nil
	})

	return report, err
}

// Version identifies the loaded document. It changes with every edit.
func (db *DB) Version(ctx context.Context) (string, error) {
	var v string
	err := db.View(ctx, func(tx *Tx) error {
		v = tx.Version()
		return nil
	})

	return v, err
}

// Reload re-reads the data file. It reports whether the document changed.
func (db *DB) Reload(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	if db.closed {
		return false, ErrDatabaseAlreadyClosed
	}

	return db.e.refresh()
}

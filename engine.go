package roofdb

import (
	"fmt"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Bitfisherllc/roofdb/internal/literal"
	"github.com/Bitfisherllc/roofdb/internal/lru"
	"github.com/Bitfisherllc/roofdb/internal/storage"
)

// engine owns the current snapshot of the document and the cache of decoded
// records. Callers serialize access through the DB lock.
type engine struct {
	storage storage.Storage
	cfg     *Config
	log     *zap.Logger
	current *snapshot
	cache   lru.Cacher
	closed  bool
}

func newEngine(s storage.Storage, cfg *Config) (*engine, error) {
	e := &engine{
		storage: s,
		cfg:     cfg,
		log:     cfg.Logger.With(zap.String("file", s.Name())),
		cache:   lru.NullCache{},
	}

	if !cfg.DisableCache {
		c, err := lru.NewCache(cfg.CacheShards, cfg.CacheBytes, func(k uint64, v []byte) {
			e.log.Debug("decoded record evicted", zap.String("hash", fmt.Sprintf("%016x", k)))
		})
		if err != nil {
			return nil, errors.Wrap(err, "could not create record cache")
		}
		e.cache = c
	}

	if err := e.load(); err != nil {
		return nil, err
	}

	return e, nil
}

func (e *engine) load() error {
	_, err := e.refresh()
	return err
}

// refresh reads the document from storage and installs it when it differs
// from the current snapshot. It reports whether a new snapshot was installed.
func (e *engine) refresh() (bool, error) {
	b, err := e.storage.Load()
	if err != nil {
		return false, err
	}

	if e.current != nil && storage.Checksum(b) == e.current.checksum {
		return false, nil
	}

	snap, err := newSnapshot(string(b), e.cfg.Marker)
	if err != nil {
		return false, err
	}

	e.install(snap)
	return true, nil
}

func (e *engine) install(snap *snapshot) {
	e.current = snap
	e.log.Debug("document loaded",
		zap.String("version", versionOf(snap.checksum)),
		zap.Int("records", snap.len()),
	)
}

// persist writes snap, provided the stored document is still the one the
// caller started from.
func (e *engine) persist(base uint64, snap *snapshot) error {
	b, err := e.storage.Load()
	if err != nil {
		return err
	}

	if onDisk := storage.Checksum(b); onDisk != base {
		return errors.Wrapf(
			ErrStaleDocument,
			"expected version %s, found %s",
			versionOf(base), versionOf(onDisk),
		)
	}

	if err := e.storage.Persist([]byte(snap.text)); err != nil {
		return errors.Wrap(ErrPersistenceFailed, err.Error())
	}

	e.install(snap)
	return nil
}

// decode returns the JSON form of a record, from the cache when the record
// text has been decoded before.
func (e *engine) decode(snap *snapshot, ent *entry) ([]byte, error) {
	if v, ok := e.cache.Get(ent.hash); ok {
		return v, nil
	}

	v, err := literal.Decode(snap.body(ent))
	if err != nil {
		return nil, errors.Wrapf(err, "record %q", ent.key)
	}

	e.cache.Add(ent.hash, v)
	return v, nil
}

func (e *engine) close() error {
	if e.closed {
		return ErrDatabaseAlreadyClosed
	}

	e.cache.Purge()
	e.current = nil
	e.closed = true

	return nil
}

func versionOf(checksum uint64) string {
	return fmt.Sprintf("%016x", checksum)
}

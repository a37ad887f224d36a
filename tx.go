package roofdb

import (
	"context"

	"github.com/pkg/errors"

	"github.com/Bitfisherllc/roofdb/internal/data"
	"github.com/Bitfisherllc/roofdb/internal/literal"
	"github.com/Bitfisherllc/roofdb/options"
)

var ErrKeyDoesNotExist = errors.New("key does not exist in DB")
var ErrTxIsReadOnly = errors.New("transaction is read only")
var ErrTxAlreadyClosed = errors.New("transaction already closed")

// Tx works on its own snapshot of the document. Edits made through a write
// transaction stay in that snapshot until Commit persists it.
type Tx struct {
	readOnly bool
	e        *engine
	ctx      context.Context
	base     uint64
	snap     *snapshot
	dirty    bool
	closed   bool
	report   literal.Report
}

func (x *Tx) Get(key string) (*Document, error) {
	if err := x.ctx.Err(); err != nil {
		return nil, err
	}

	ent, ok := x.snap.get(key)
	if !ok {
		return nil, errors.Wrapf(ErrKeyDoesNotExist, "%s", key)
	}

	v, err := x.e.decode(x.snap, ent)
	if err != nil {
		return nil, err
	}

	return newDocument(ent.key, v), nil
}

// Find returns the records matching opts. Hidden records are left out
// unless opts asks for them.
func (x *Tx) Find(opts *options.FindOptions) ([]Document, error) {
	if opts == nil {
		opts = options.Find()
	}

	var (
		result  []Document
		iterErr error
	)

	visit := func(ent *entry) bool {
		if iterErr = x.ctx.Err(); iterErr != nil {
			return false
		}

		v, err := x.e.decode(x.snap, ent)
		if err != nil {
			iterErr = err
			return false
		}

		doc := newDocument(ent.key, v)
		if !opts.Hidden && doc.Json().BoolOrDefault("isHidden", false) {
			return true
		}

		if opts.A != nil {
			r, err := doc.Roofer()
			if err != nil {
				iterErr = err
				return false
			}
			if !opts.Match(r) {
				return true
			}
		}

		result = append(result, *doc)
		return true
	}

	switch opts.O {
	case options.Ascend:
		x.snap.records.Ascend(nil, btreeIterator(visit))
	case options.Descend:
		x.snap.records.Descend(nil, btreeIterator(visit))
	default:
		for _, ent := range x.snap.order {
			if !visit(ent) {
				break
			}
		}
	}

	if iterErr != nil {
		return nil, iterErr
	}

	if opts.O == options.Directory {
		if err := sortDirectory(result); err != nil {
			return nil, err
		}
	}

	if opts.Limit > 0 && len(result) > opts.Limit {
		result = result[:opts.Limit]
	}

	return result, nil
}

// Roofers is Find with every match decoded.
func (x *Tx) Roofers(opts *options.FindOptions) ([]data.Roofer, error) {
	docs, err := x.Find(opts)
	if err != nil {
		return nil, err
	}

	result := make([]data.Roofer, len(docs))
	for i := range docs {
		if result[i], err = docs[i].Roofer(); err != nil {
			return nil, err
		}
	}

	return result, nil
}

// Apply edits the transaction's copy of the document. A failing batch
// leaves the copy as it was before the call.
func (x *Tx) Apply(updates ...data.Update) (literal.Report, error) {
	if x.readOnly {
		return literal.Report{}, ErrTxIsReadOnly
	}

	if x.closed {
		return literal.Report{}, ErrTxAlreadyClosed
	}

	if err := x.ctx.Err(); err != nil {
		return literal.Report{}, err
	}

	patches, err := data.Patches(updates)
	if err != nil {
		return literal.Report{}, err
	}

	text, report, err := literal.ApplyBatch(x.snap.text, patches, literal.Options{
		Marker: x.e.cfg.Marker,
		Logger: x.e.log,
	})
	if err != nil {
		return report, err
	}

	if text != x.snap.text {
		snap, err := newSnapshot(text, x.e.cfg.Marker)
		if err != nil {
			return report, err
		}

		x.snap = snap
		x.dirty = true
	}

	x.report.Applied += report.Applied
	x.report.Skipped = append(x.report.Skipped, report.Skipped...)

	return report, nil
}

// Version identifies the document the transaction currently sees.
func (x *Tx) Version() string {
	return versionOf(x.snap.checksum)
}

func (x *Tx) Count() int {
	return x.snap.len()
}

func (x *Tx) Commit() error {
	if x.closed {
		return ErrTxAlreadyClosed
	}

	x.closed = true

	if x.readOnly || !x.dirty {
		return nil
	}

	if err := x.ctx.Err(); err != nil {
		return errors.Wrap(err, "commit abandoned")
	}

	return x.e.persist(x.base, x.snap)
}

// Rollback drops every edit made through the transaction.
func (x *Tx) Rollback() error {
	if x.closed {
		return ErrTxAlreadyClosed
	}

	x.closed = true
	x.snap = nil
	x.dirty = false

	return nil
}

func btreeIterator(visit func(ent *entry) bool) func(item interface{}) bool {
	return func(item interface{}) bool {
		ent, ok := item.(*entry)
		if !ok {
			panic(castPanic)
		}
		return visit(ent)
	}
}

func sortDirectory(docs []Document) error {
	rs := make([]data.Roofer, len(docs))
	keyed := make(map[string]Document, len(docs))
	for i := range docs {
		r, err := docs[i].Roofer()
		if err != nil {
			return err
		}
		rs[i] = r
		keyed[docs[i].key] = docs[i]
	}

	data.SortDirectory(rs)

	for i := range rs {
		docs[i] = keyed[rs[i].Slug]
	}

	return nil
}

// Report sums up every batch applied through the transaction.
func (x *Tx) Report() literal.Report {
	return x.report
}

package roofdb

import (
	"github.com/cespare/xxhash/v2"
	"github.com/pkg/errors"
	"github.com/tidwall/btree"

	"github.com/Bitfisherllc/roofdb/internal/literal"
)

const castPanic = "how could an index item not be of type *entry"

// entry is one record of a snapshot: its key, where its body sits in the
// snapshot text, and the hash of that body.
type entry struct {
	key  string
	span literal.Span
	hash uint64
	pos  int
}

func byKey(a, b interface{}) bool {
	i1, ok1 := a.(*entry)
	i2, ok2 := b.(*entry)
	if !ok1 || !ok2 {
		panic(castPanic)
	}

	return i1.key < i2.key
}

// snapshot is an immutable indexed view of one version of the document.
type snapshot struct {
	text     string
	checksum uint64
	records  *btree.BTree
	order    []*entry
}

func newSnapshot(text string, marker string) (*snapshot, error) {
	spans, err := literal.Entries(text, marker)
	if err != nil {
		return nil, errors.Wrap(err, "could not index records")
	}

	s := &snapshot{
		text:     text,
		checksum: xxhash.Sum64String(text),
		records:  btree.NewNonConcurrent(byKey),
		order:    make([]*entry, 0, len(spans)),
	}

	for i, sp := range spans {
		ent := &entry{
			key:  sp.Key,
			span: sp,
			hash: xxhash.Sum64String(sp.Body(text)),
			pos:  i,
		}

		if existing := s.records.Set(ent); existing != nil {
			return nil, errors.Wrapf(literal.ErrInvalid, "duplicate record key %q", sp.Key)
		}

		s.order = append(s.order, ent)
	}

	return s, nil
}

func (s *snapshot) get(key string) (*entry, bool) {
	item := s.records.Get(&entry{key: key})
	if item == nil {
		return nil, false
	}

	ent, ok := item.(*entry)
	if !ok {
		panic(castPanic)
	}

	return ent, true
}

func (s *snapshot) body(ent *entry) string {
	return ent.span.Body(s.text)
}

func (s *snapshot) len() int {
	return s.records.Len()
}

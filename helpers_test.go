package roofdb

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/Bitfisherllc/roofdb/internal/storage"
)

const directoryFixture = `import type { RooferData } from './types';

export const rooferData: Record<string, RooferData> = {
  'acme-roofing': {
    id: '1',
    name: 'Acme Roofing',
    slug: 'acme-roofing',
    phone: '(813) 555-0100',
    isPreferred: false,
    isHidden: false,
    serviceAreas: {
      regions: ['sun-coast'],
      counties: ['hillsborough'],
      cities: ['tampa'],
    },
  },
  'bay-shingle-co': {
    id: '2',
    name: 'Bay Shingle Co',
    slug: 'bay-shingle-co',
    isPreferred: true,
    isHidden: false,
    sortOverride: 2,
    serviceAreas: {
      regions: ['sun-coast'],
      counties: ['pinellas'],
      cities: [],
    },
  },
  'hidden-roofs': {
    id: '3',
    name: 'Hidden Roofs',
    slug: 'hidden-roofs',
    category: 'sponsored',
    isHidden: true,
    serviceAreas: {
      regions: ['central-florida'],
      counties: ['orange'],
      cities: ['orlando'],
    },
  },
  'coastal-roofs': {
    id: '4',
    name: 'Coastal Roofs',
    slug: 'coastal-roofs',
    isHidden: false,
    serviceAreas: {
      regions: ['south-florida'],
      counties: ['broward'],
      cities: [],
    },
  },
};

export function getRooferBySlug(slug: string): RooferData | undefined {
  return rooferData[slug];
}
`

// memStorage keeps the document in memory.
type memStorage struct {
	mu         sync.Mutex
	data       []byte
	persistErr error
	writes     int
}

var _ storage.Storage = (*memStorage)(nil)

func (s *memStorage) Name() string { return "memory" }

func (s *memStorage) Load() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]byte(nil), s.data...), nil
}

func (s *memStorage) Persist(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.persistErr != nil {
		return s.persistErr
	}

	s.data = append([]byte(nil), data...)
	s.writes++
	return nil
}

func writeFixture(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "roofers.ts")
	require.NoError(t, os.WriteFile(path, []byte(directoryFixture), 0644))

	return path
}

func openFixture(t *testing.T) (*DB, string) {
	t.Helper()

	path := writeFixture(t)
	db, closer, err := New(path, &Config{Logger: zaptest.NewLogger(t)})
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = closer()
	})

	return db, path
}

func readFile(t *testing.T, path string) string {
	t.Helper()

	b, err := os.ReadFile(path)
	require.NoError(t, err)

	return string(b)
}

func keysOf(docs []Document) []string {
	keys := make([]string, len(docs))
	for i := range docs {
		keys[i] = docs[i].Key()
	}
	return keys
}

func boolPtr(v bool) *bool { return &v }

func strPtr(v string) *string { return &v }

package roofdb

import (
	"os"

	"github.com/pbnjay/memory"
	"go.uber.org/zap"

	"github.com/Bitfisherllc/roofdb/internal/literal"
)

const (
	defaultCacheShards = 8
	defaultCacheBytes  = 8 << 20
	defaultFilePerm    = os.FileMode(0644)

	minDocumentBytes      = 4 << 20
	maxDocumentBytes      = 256 << 20
	fallbackDocumentBytes = 16 << 20
)

type Config struct {
	// Marker is the declaration that introduces the record mapping.
	Marker string

	// MaxDocumentBytes caps the size of the data file. Defaults to a
	// fraction of the total system memory.
	MaxDocumentBytes int64

	CacheShards  int
	CacheBytes   uint64
	DisableCache bool

	FilePerm os.FileMode
	Logger   *zap.Logger
}

func (cfg *Config) withDefaults() *Config {
	var c Config
	if cfg != nil {
		c = *cfg
	}

	if c.Marker == "" {
		c.Marker = literal.DefaultMarker
	}

	if c.MaxDocumentBytes <= 0 {
		c.MaxDocumentBytes = defaultMaxDocumentBytes(memory.TotalMemory())
	}

	if c.CacheShards <= 0 {
		c.CacheShards = defaultCacheShards
	}

	if c.CacheBytes == 0 {
		c.CacheBytes = defaultCacheBytes
	}

	if c.FilePerm == 0 {
		c.FilePerm = defaultFilePerm
	}

	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}

	return &c
}

func defaultMaxDocumentBytes(total uint64) int64 {
	if total == 0 {
		return fallbackDocumentBytes
	}

	n := int64(total / 64)
	switch {
	case n < minDocumentBytes:
		return minDocumentBytes
	case n > maxDocumentBytes:
		return maxDocumentBytes
	default:
		return n
	}
}

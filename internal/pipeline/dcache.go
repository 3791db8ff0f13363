package pipeline

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"fortio.org/safecast"
	"github.com/vmihailenco/msgpack/v5"

	"loadable/internal/chunk"
)

// Current schema version, incremented when the payload format changes.
const diskCacheSchemaVersion uint16 = 1

// DiskCache persists aggregated entries keyed by a graph fingerprint digest,
// so an unchanged graph reuses the previous build's entry ids and asset
// lists byte-for-byte. Thread-safe for concurrent access.
type DiskCache struct {
	mu  sync.RWMutex
	dir string
}

// CachedEntry is the serialized form of one aggregated entry. Module
// identity survives as a path and is re-bound to the graph on load.
type CachedEntry struct {
	ModulePath string
	ID         string
	AssetPaths []string
}

// DiskPayload stores one build's aggregation output.
type DiskPayload struct {
	// Schema version for safe invalidation when the format changes.
	Schema  uint16
	Count   uint32
	Entries []CachedEntry
}

// OpenDiskCache initializes and returns a disk cache at the standard
// location.
func OpenDiskCache(app string) (*DiskCache, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	dir := filepath.Join(base, app)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskCache{dir: dir}, nil
}

// OpenDiskCacheAt returns a disk cache rooted at an explicit directory.
func OpenDiskCacheAt(dir string) (*DiskCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskCache{dir: dir}, nil
}

func (c *DiskCache) pathFor(key chunk.Digest) string {
	hexKey := hex.EncodeToString(key[:])
	return filepath.Join(c.dir, "entries", hexKey+".mp")
}

// Put serializes and writes the aggregated entries for a build key.
func (c *DiskCache) Put(key chunk.Digest, entries []chunk.AggregatedEntry) error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	count, err := safecast.Conv[uint32](len(entries))
	if err != nil {
		return fmt.Errorf("disk cache: entry count overflow: %w", err)
	}
	payload := DiskPayload{
		Schema:  diskCacheSchemaVersion,
		Count:   count,
		Entries: make([]CachedEntry, 0, len(entries)),
	}
	for _, e := range entries {
		ce := CachedEntry{ModulePath: e.Module.Path, ID: e.ID}
		for _, a := range e.Assets {
			ce.AssetPaths = append(ce.AssetPaths, a.Path)
		}
		payload.Entries = append(payload.Entries, ce)
	}

	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	if err := msgpack.NewEncoder(f).Encode(&payload); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, p)
}

// Get reads the cached entries for a build key. ok=false on a miss or on a
// schema mismatch; a stale format is treated as a miss, not an error.
func (c *DiskCache) Get(key chunk.Digest) ([]CachedEntry, bool, error) {
	if c == nil {
		return nil, false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}
	defer func() { _ = f.Close() }()

	var payload DiskPayload
	if err := msgpack.NewDecoder(f).Decode(&payload); err != nil {
		return nil, false, err
	}
	if payload.Schema != diskCacheSchemaVersion {
		return nil, false, nil
	}
	if int(payload.Count) != len(payload.Entries) {
		return nil, false, fmt.Errorf("disk cache: corrupt payload: count %d, entries %d", payload.Count, len(payload.Entries))
	}
	return payload.Entries, true, nil
}

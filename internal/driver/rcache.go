package driver

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"ember/internal/share"
)

// Current schema version, increment when RegistryPayload format changes.
const registryCacheSchemaVersion uint16 = 1

// RegistryCache persists the exported-monomorphization registry between
// builds, keyed by the dependency graph the registry was collected from.
// Thread-safe for concurrent access.
type RegistryCache struct {
	mu  sync.RWMutex
	dir string
}

// RegistryPayload is the on-disk form of a sharing registry.
type RegistryPayload struct {
	// Schema version for safe invalidation when the format changes.
	Schema uint16     `msgpack:"schema"`
	Dump   share.Dump `msgpack:"dump"`
}

// OpenRegistryCache initializes and returns a cache at the standard location.
func OpenRegistryCache(app string) (*RegistryCache, error) {
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
	return &RegistryCache{dir: dir}, nil
}

func (c *RegistryCache) pathFor(key string) string {
	sum := sha256.Sum256([]byte(key))
	return filepath.Join(c.dir, "registry", hex.EncodeToString(sum[:])+".mp")
}

// Put serializes a registry snapshot to the cache under the given key.
func (c *RegistryCache) Put(key string, reg *share.Registry) error {
	if c == nil || reg == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	payload := RegistryPayload{
		Schema: registryCacheSchemaVersion,
		Dump:   reg.Export(),
	}
	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		if rmErr := os.Remove(f.Name()); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "failed to remove temp file: %v\n", rmErr)
		}
	}()

	if err := msgpack.NewEncoder(f).Encode(&payload); err != nil {
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	// Atomic replacement.
	return os.Rename(f.Name(), p)
}

// Get reads a registry snapshot from the cache into reg. Returns false with a
// nil error on a miss or on a schema mismatch.
func (c *RegistryCache) Get(key string, reg *share.Registry) (bool, error) {
	if c == nil || reg == nil {
		return false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			panic(closeErr)
		}
	}()
	var payload RegistryPayload
	if err := msgpack.NewDecoder(f).Decode(&payload); err != nil {
		return false, err
	}
	if payload.Schema != registryCacheSchemaVersion {
		return false, nil
	}
	reg.Import(payload.Dump)
	return true, nil
}

// DropAll invalidates the cache, useful after format changes.
func (c *RegistryCache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	old := c.dir + ".old-" + time.Now().Format("20060102150405")
	if err := os.Rename(c.dir, old); err != nil {
		return err
	}
	return os.RemoveAll(old)
}

package driver

import (
	"encoding/hex"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/vmihailenco/msgpack/v5"

	"flagger/internal/emit"
	"flagger/internal/project"
)

// Current schema version - increment when GenPayload format changes
const diskCacheSchemaVersion uint16 = 2

// DiskCache хранит сгенерированный код по хешу входа на диске.
// Thread-safe for concurrent access.
type DiskCache struct {
	mu  sync.RWMutex
	dir string
}

// GenPayload is one cached generation: the rendered file plus enough about
// its sets to run cross-file checks without re-resolving.
type GenPayload struct {
	Schema  uint16
	Package string
	Code    []byte
	Sets    []CachedSet
}

// CachedSet keeps a set's name, where the name was written and the
// package-level identifiers its generated code declares.
type CachedSet struct {
	Name   string
	Start  uint32
	End    uint32
	Width  uint8
	Flags  int
	Idents []emit.Ident
}

// OpenDiskCache initializes and returns a disk cache under
// $XDG_CACHE_HOME/<app>.
func OpenDiskCache(app string) (*DiskCache, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, errors.Wrap(err, "locate cache dir")
		}
		base = filepath.Join(home, ".cache")
	}
	return OpenDiskCacheAt(filepath.Join(base, app))
}

// OpenDiskCacheAt opens a cache rooted at dir.
func OpenDiskCacheAt(dir string) (*DiskCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "create cache dir %s", dir)
	}
	return &DiskCache{dir: dir}, nil
}

// Dir is the cache root.
func (c *DiskCache) Dir() string {
	if c == nil {
		return ""
	}
	return c.dir
}

func (c *DiskCache) pathFor(key project.Digest) string {
	hexKey := hex.EncodeToString(key[:])
	return filepath.Join(c.dir, "gen", hexKey+".mp")
}

// Put serializes and writes a payload to the disk cache.
func (c *DiskCache) Put(key project.Digest, payload *GenPayload) (err error) {
	if c == nil || payload == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	payload.Schema = diskCacheSchemaVersion
	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return errors.WithStack(err)
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return errors.WithStack(err)
	}
	defer func() {
		// после Rename файла уже нет
		if rmErr := os.Remove(f.Name()); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) && err == nil {
			err = errors.WithStack(rmErr)
		}
	}()

	if err := msgpack.NewEncoder(f).Encode(payload); err != nil {
		_ = f.Close()
		return errors.Wrap(err, "encode cache entry")
	}
	if err := f.Close(); err != nil {
		return errors.WithStack(err)
	}
	// Атомарная замена
	return errors.WithStack(os.Rename(f.Name(), p))
}

// Get reads a payload. A missing entry, an entry that does not decode and an
// entry from another schema are all misses; the caller overwrites them.
func (c *DiskCache) Get(key project.Digest) (*GenPayload, bool) {
	if c == nil {
		return nil, false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	data, err := os.ReadFile(c.pathFor(key))
	if err != nil {
		return nil, false
	}
	var out GenPayload
	if err := msgpack.Unmarshal(data, &out); err != nil {
		return nil, false
	}
	if out.Schema != diskCacheSchemaVersion {
		return nil, false
	}
	return &out, true
}

// DropAll invalidates the cache, useful after format changes.
func (c *DiskCache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	// тривиально: переименуем каталог и удалим
	old := c.dir + ".old-" + time.Now().Format("20060102150405")
	if err := os.Rename(c.dir, old); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return errors.WithStack(err)
	}
	if err := os.RemoveAll(old); err != nil {
		return errors.WithStack(err)
	}
	return errors.WithStack(os.MkdirAll(c.dir, 0o755))
}

// CacheKey digests everything a generated file depends on.
func CacheKey(toolVersion string, s project.Settings, pkg string, content []byte) project.Digest {
	return project.Combine(
		[]byte(toolVersion),
		[]byte(s.Fingerprint()),
		[]byte(pkg),
		content,
	)
}

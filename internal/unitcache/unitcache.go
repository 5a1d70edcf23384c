// Package unitcache stores imported units in badger so unchanged XML is not
// parsed again. Records are keyed by the unit name and a hash of its content,
// and hold the pre-resolution definitions and diagnostics of the unit.
package unitcache

import (
	"context"
	"encoding/binary"
	"fmt"
	"log/slog"
	"os"

	"github.com/cespare/xxhash/v2"
	"github.com/dgraph-io/badger/v4"
	json "github.com/goccy/go-json"
	"github.com/pkg/errors"

	"github.com/phobologic/doxyfront/internal/doxml"
)

// schemaVersion is part of every key. Bump it when the record layout or the
// importer's output changes so stale entries are never replayed.
const schemaVersion = 1

// ErrPathRequired is returned by Open for a persistent cache without a path.
var ErrPathRequired = errors.New("cache path is required unless in memory")

// Config configures the underlying badger database.
type Config struct {
	Path     string
	InMemory bool
	Logger   *slog.Logger
}

// Cache is safe for concurrent use.
type Cache struct {
	db *badger.DB
}

type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

// Open opens or creates the cache.
func Open(cfg Config) (*Cache, error) {
	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if cfg.Path == "" {
			return nil, ErrPathRequired
		}
		if err := os.MkdirAll(cfg.Path, 0o750); err != nil {
			return nil, errors.Wrapf(err, "creating cache directory %s", cfg.Path)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts = opts.WithNumVersionsToKeep(1)
	if cfg.Logger != nil {
		opts = opts.WithLogger(&badgerLogger{logger: cfg.Logger})
	} else {
		opts = opts.WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, errors.Wrap(err, "opening cache")
	}
	return &Cache{db: db}, nil
}

// Close releases the database.
func (c *Cache) Close() error {
	return c.db.Close()
}

// Key derives the record key of a unit.
func Key(unit string, content []byte) []byte {
	d := xxhash.New()
	_, _ = d.WriteString(unit)
	_, _ = d.Write([]byte{0})
	_, _ = d.Write(content)

	key := make([]byte, 0, 16)
	key = append(key, "unit/"...)
	key = binary.BigEndian.AppendUint16(key, schemaVersion)
	key = append(key, '/')
	return binary.BigEndian.AppendUint64(key, d.Sum64())
}

// Get returns the cached import of unit with the given content. A record
// that no longer decodes is reported as a miss.
func (c *Cache) Get(ctx context.Context, unit string, content []byte) (doxml.Result, bool, error) {
	if err := ctx.Err(); err != nil {
		return doxml.Result{}, false, err
	}

	var raw []byte
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(Key(unit, content))
		if err != nil {
			return err
		}
		raw, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return doxml.Result{}, false, nil
	}
	if err != nil {
		return doxml.Result{}, false, errors.Wrapf(err, "reading cache entry for %s", unit)
	}

	var res doxml.Result
	if err := json.Unmarshal(raw, &res); err != nil {
		return doxml.Result{}, false, nil
	}
	return res, true, nil
}

// Put stores the import result of unit.
func (c *Cache) Put(ctx context.Context, unit string, content []byte, res doxml.Result) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	raw, err := json.Marshal(res)
	if err != nil {
		return errors.Wrapf(err, "encoding cache entry for %s", unit)
	}
	err = c.db.Update(func(txn *badger.Txn) error {
		return txn.Set(Key(unit, content), raw)
	})
	return errors.Wrapf(err, "writing cache entry for %s", unit)
}

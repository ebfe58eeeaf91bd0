package cache

import (
	"context"
	"fmt"
)

// Backend names accepted by [Open].
const (
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
	BackendSQLite = "sqlite"
	BackendFile   = "file"
	BackendMemory = "memory"
	BackendNone   = "none"
)

// Options selects and configures a backend.
type Options struct {
	Backend    string // one of the Backend* names; empty means file
	URL        string // redis or mongo connection string
	Path       string // file directory or sqlite database path
	Database   string // mongo database
	Collection string // mongo collection
	MaxEntries int    // memory backend bound
}

// Open constructs the backend named by opts.Backend.
func Open(ctx context.Context, opts Options) (Cache, error) {
	switch opts.Backend {
	case BackendRedis:
		if opts.URL == "" {
			return nil, fmt.Errorf("redis backend requires a url")
		}
		return NewRedisCache(ctx, opts.URL)
	case BackendMongo:
		if opts.URL == "" {
			return nil, fmt.Errorf("mongo backend requires a url")
		}
		return NewMongoCache(ctx, opts.URL, opts.Database, opts.Collection)
	case BackendSQLite:
		if opts.Path == "" {
			return nil, fmt.Errorf("sqlite backend requires a path")
		}
		return NewSQLiteCache(opts.Path)
	case BackendFile, "":
		if opts.Path == "" {
			return nil, fmt.Errorf("file backend requires a path")
		}
		return NewFileCache(opts.Path)
	case BackendMemory:
		return NewMemoryCache(opts.MaxEntries), nil
	case BackendNone:
		return NewNullCache(), nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", opts.Backend)
	}
}

// Clear empties c if the backend supports it and returns the number of
// entries removed.
func Clear(ctx context.Context, c Cache) (int, error) {
	switch b := c.(type) {
	case *FileCache:
		return b.Clear()
	case *RedisCache:
		return b.Clear(ctx)
	case *MongoCache:
		return b.Clear(ctx)
	case *SQLiteCache:
		return b.Clear(ctx, false)
	case *MemoryCache:
		n := b.Len()
		b.Purge()
		return n, nil
	case NullCache:
		return 0, nil
	default:
		return 0, fmt.Errorf("backend %T cannot be cleared", c)
	}
}

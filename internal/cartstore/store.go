// Package cartstore persists session carts between requests.
package cartstore

import (
	"context"
	"fmt"
	"time"

	"github.com/egannguyen/petsupplies/internal/entity"
)

// Store loads and saves carts by session id. Load of an unknown session yields an empty cart.
type Store interface {
	Load(ctx context.Context, sessionID string) (*entity.Cart, error)
	Save(ctx context.Context, cart *entity.Cart) error
	Delete(ctx context.Context, sessionID string) error
	Close() error
}

// Options selects and configures a Store backend.
type Options struct {
	Kind       string // memory, file, redis or sqlite
	Dir        string
	SQLitePath string
	TTL        time.Duration

	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// NewStore constructs a Store by kind.
func NewStore(ctx context.Context, opts Options) (Store, error) {
	switch opts.Kind {
	case "", "memory", "mem":
		return NewMemoryStore(), nil
	case "file":
		if opts.Dir == "" {
			return nil, fmt.Errorf("directory required for file cart store")
		}
		return NewFileStore(opts.Dir)
	case "redis":
		if opts.RedisAddr == "" {
			return nil, fmt.Errorf("address required for redis cart store")
		}
		return NewRedisStore(ctx, opts.RedisAddr, opts.RedisPassword, opts.RedisDB, opts.TTL)
	case "sqlite":
		if opts.SQLitePath == "" {
			return nil, fmt.Errorf("path required for sqlite cart store")
		}
		return NewSQLiteStore(ctx, opts.SQLitePath)
	default:
		return nil, fmt.Errorf("unknown cart store kind: %s", opts.Kind)
	}
}

func emptyIfNil(c *entity.Cart, sessionID string) *entity.Cart {
	if c == nil {
		return entity.NewCart(sessionID)
	}
	if c.Items == nil {
		c.Items = []entity.CartItem{}
	}
	c.SessionID = sessionID
	return c
}

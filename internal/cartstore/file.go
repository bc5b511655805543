package cartstore

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/egannguyen/petsupplies/internal/entity"
)

// FileStore writes one JSON document per session under dir.
type FileStore struct {
	mu  sync.Mutex
	dir string
}

var _ Store = (*FileStore)(nil)

// NewFileStore creates dir if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cart directory: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// path encodes the session id so arbitrary header values cannot escape dir.
func (s *FileStore) path(sessionID string) string {
	return filepath.Join(s.dir, base64.RawURLEncoding.EncodeToString([]byte(sessionID))+".json")
}

func (s *FileStore) Load(ctx context.Context, sessionID string) (*entity.Cart, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := os.ReadFile(s.path(sessionID))
	if errors.Is(err, os.ErrNotExist) || (err == nil && len(b) == 0) {
		return entity.NewCart(sessionID), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cart file: %w", err)
	}
	var cart entity.Cart
	if err := json.Unmarshal(b, &cart); err != nil {
		return nil, fmt.Errorf("failed to decode cart file: %w", err)
	}
	return emptyIfNil(&cart, sessionID), nil
}

func (s *FileStore) Save(ctx context.Context, cart *entity.Cart) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if cart.IsEmpty() {
		return s.Delete(ctx, cart.SessionID)
	}
	b, err := json.MarshalIndent(cart, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode cart: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	path := s.path(cart.SessionID)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return fmt.Errorf("failed to write cart file: %w", err)
	}
	return os.Rename(tmp, path)
}

func (s *FileStore) Delete(ctx context.Context, sessionID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(s.path(sessionID)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove cart file: %w", err)
	}
	return nil
}

func (s *FileStore) Close() error { return nil }

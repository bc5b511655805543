package memory

import (
	"context"
	"sync"
	"time"

	"github.com/egannguyen/petsupplies/internal/entity"
	"github.com/egannguyen/petsupplies/internal/repository"
)

type eventStore struct {
	mu      sync.Mutex
	streams map[string][]entity.EventStoreRecord
	now     func() time.Time
}

// NewEventStore creates an in-memory EventStore.
func NewEventStore() repository.EventStore {
	return &eventStore{streams: make(map[string][]entity.EventStoreRecord), now: time.Now}
}

func (s *eventStore) SaveEvents(ctx context.Context, streamID string, streamType string, expectedVersion int, events []entity.Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(events) == 0 {
		return nil
	}
	records, err := repository.EncodeEvents(streamID, streamType, expectedVersion, events, s.now())
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	stream := s.streams[streamID]
	if len(stream) != expectedVersion {
		return repository.VersionConflict(streamID, expectedVersion, len(stream))
	}
	s.streams[streamID] = append(stream, records...)
	return nil
}

func (s *eventStore) LoadEvents(ctx context.Context, streamID string) ([]entity.EventStoreRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]entity.EventStoreRecord(nil), s.streams[streamID]...), nil
}

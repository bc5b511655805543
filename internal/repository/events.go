package repository

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/egannguyen/petsupplies/internal/entity"
)

// EncodeEvents turns events into stream records numbered from expectedVersion+1.
func EncodeEvents(streamID, streamType string, expectedVersion int, events []entity.Event, at time.Time) ([]entity.EventStoreRecord, error) {
	records := make([]entity.EventStoreRecord, 0, len(events))
	for i, event := range events {
		payload, err := json.Marshal(event)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal event %s: %w", event.EventType(), err)
		}
		records = append(records, entity.EventStoreRecord{
			ID:         uuid.NewString(),
			StreamID:   streamID,
			StreamType: streamType,
			Version:    expectedVersion + i + 1,
			EventType:  event.EventType(),
			Payload:    payload,
			CreatedAt:  at,
		})
	}
	return records, nil
}

// VersionConflict reports a stream whose head is not where the writer expected.
func VersionConflict(streamID string, expected, actual int) error {
	return fmt.Errorf("%w: stream %s expected version %d, got %d", ErrConcurrencyConflict, streamID, expected, actual)
}

package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/egannguyen/petsupplies/internal/entity"
	"github.com/egannguyen/petsupplies/internal/repository"
)

const eventColumns = "id, stream_id, stream_type, version, event_type, payload, created_at"

type eventStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewEventStore creates a new EventStore backed by Postgres.
// UNIQUE (stream_id, version) catches writers that pass the head check at the same time.
func NewEventStore(db *sql.DB) repository.EventStore {
	return &eventStore{db: db, now: time.Now}
}

// insertEventsSQL builds one multi-row INSERT for n events.
func insertEventsSQL(n int) string {
	var b strings.Builder
	b.WriteString("INSERT INTO events (" + eventColumns + ") VALUES ")
	for i := 0; i < n; i++ {
		if i > 0 {
			b.WriteString(", ")
		}
		p := i * 7
		fmt.Fprintf(&b, "($%d, $%d, $%d, $%d, $%d, $%d, $%d)", p+1, p+2, p+3, p+4, p+5, p+6, p+7)
	}
	return b.String()
}

func (s *eventStore) SaveEvents(ctx context.Context, streamID string, streamType string, expectedVersion int, events []entity.Event) error {
	if len(events) == 0 {
		return nil
	}
	records, err := repository.EncodeEvents(streamID, streamType, expectedVersion, events, s.now())
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var head int
	err = tx.QueryRowContext(ctx, "SELECT COALESCE(MAX(version), 0) FROM events WHERE stream_id = $1", streamID).Scan(&head)
	if err != nil {
		return fmt.Errorf("failed to get current stream version: %w", err)
	}
	if head != expectedVersion {
		return repository.VersionConflict(streamID, expectedVersion, head)
	}

	args := make([]any, 0, len(records)*7)
	for _, r := range records {
		args = append(args, r.ID, r.StreamID, r.StreamType, r.Version, r.EventType, r.Payload, r.CreatedAt)
	}
	_, err = tx.ExecContext(ctx, insertEventsSQL(len(records)), args...)
	if isUniqueViolation(err) {
		return repository.VersionConflict(streamID, expectedVersion, expectedVersion+1)
	}
	if err != nil {
		return fmt.Errorf("failed to append %d events to stream %s: %w", len(records), streamID, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (s *eventStore) LoadEvents(ctx context.Context, streamID string) ([]entity.EventStoreRecord, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+eventColumns+" FROM events WHERE stream_id = $1 ORDER BY version ASC", streamID)
	if err != nil {
		return nil, fmt.Errorf("failed to load events for stream %s: %w", streamID, err)
	}
	defer rows.Close()

	records := make([]entity.EventStoreRecord, 0)
	for rows.Next() {
		var r entity.EventStoreRecord
		if err := rows.Scan(&r.ID, &r.StreamID, &r.StreamType, &r.Version, &r.EventType, &r.Payload, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan event record: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating event rows: %w", err)
	}
	return records, nil
}

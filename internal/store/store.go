package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/oklog/ulid/v2"
)

// DBTX is the subset of database handle methods the store uses; both
// *sql.DB and *sql.Tx satisfy it, so helpers can run inside or outside a
// transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// newID generates an opaque, lexicographically sortable identifier.
// ULIDs from the same process are strictly increasing, which makes them a
// stable tiebreaker when two rows share a timestamp.
func newID() string {
	return ulid.Make().String()
}

// now returns the current UTC time truncated to whole seconds. Sub-second
// precision is dropped so that stored timestamp text always has the same
// length and ORDER BY on it behaves like ordering on the instant itself.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Second)
}

// normalizeTime brings a caller-supplied timestamp onto the same UTC,
// whole-second grid as now().
func normalizeTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Second)
}

// encodeAttachments serializes attachment references for storage.
// Empty lists are stored as NULL.
func encodeAttachments(refs []string) (sql.NullString, error) {
	if len(refs) == 0 {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(refs)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

// decodeAttachments deserializes stored attachment references.
func decodeAttachments(stored sql.NullString) []string {
	if !stored.Valid || stored.String == "" {
		return nil
	}
	var refs []string
	if err := json.Unmarshal([]byte(stored.String), &refs); err != nil {
		return nil
	}
	return refs
}

package lamp

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Repository defines the interface for lamp persistence operations.
// This abstraction allows for different implementations (SQLite, mock, etc.)
// and enables unit testing without database dependencies.
type Repository interface {
	// GetByNode retrieves a lamp by its node identifier.
	// Returns ErrLampNotFound if the node does not exist.
	GetByNode(ctx context.Context, nodeID string) (*Record, error)

	// List retrieves all known lamps ordered by node ID.
	List(ctx context.Context) ([]Record, error)

	// Upsert registers a new lamp or partially updates an existing one
	// in a single atomic statement. Nil patch fields keep their stored
	// values on update and take column defaults on first registration.
	// Returns the post-write record and true if the lamp was created.
	Upsert(ctx context.Context, gatewayID, nodeID string, patch Patch) (*Record, bool, error)

	// DeleteByGatewayAndNode removes a lamp matched by both identifiers
	// and returns the record as it was before deletion.
	// Returns ErrLampNotFound if no lamp matches the pair.
	DeleteByGatewayAndNode(ctx context.Context, gatewayID, nodeID string) (*Record, error)
}

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite-backed repository.
// The db parameter should be an open SQLite connection.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

const lampColumns = "node_id, gw_id, lamp_state, lamp_dim, lux, current_a, created_at, updated_at"

// timeLayout is the stored timestamp format. Nanosecond precision keeps
// created_at and updated_at distinguishable for writes within the same second.
const timeLayout = time.RFC3339Nano

// GetByNode retrieves a lamp by its node identifier.
func (r *SQLiteRepository) GetByNode(ctx context.Context, nodeID string) (*Record, error) {
	query := fmt.Sprintf("SELECT %s FROM lamps WHERE node_id = ?", lampColumns)

	rec, err := scanLamp(r.db.QueryRowContext(ctx, query, nodeID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrLampNotFound
		}
		return nil, fmt.Errorf("querying lamp by node: %w", err)
	}
	return rec, nil
}

// List retrieves all known lamps ordered by node ID.
func (r *SQLiteRepository) List(ctx context.Context) ([]Record, error) {
	query := fmt.Sprintf("SELECT %s FROM lamps ORDER BY node_id", lampColumns)

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing lamps: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		rec, err := scanLamp(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning lamp: %w", err)
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating lamps: %w", err)
	}

	if records == nil {
		records = []Record{}
	}
	return records, nil
}

// Upsert registers or partially updates a lamp in one atomic statement.
//
// The insert path applies column defaults for absent patch fields; the
// conflict path folds each absent field back onto its stored value via
// COALESCE, so concurrent requests can never interleave a read-modify-write.
func (r *SQLiteRepository) Upsert(ctx context.Context, gatewayID, nodeID string, patch Patch) (*Record, bool, error) {
	if nodeID == "" || gatewayID == "" {
		return nil, false, ErrInvalidNode
	}
	if err := patch.Validate(); err != nil {
		return nil, false, err
	}

	now := time.Now().UTC().Format(timeLayout)

	query := fmt.Sprintf(`
		INSERT INTO lamps (node_id, gw_id, lamp_state, lamp_dim, lux, current_a, created_at, updated_at)
		VALUES (?, ?, COALESCE(?, 'OFF'), COALESCE(?, %d), COALESCE(?, 0), COALESCE(?, 0), ?, ?)
		ON CONFLICT(node_id) DO UPDATE SET
			gw_id = excluded.gw_id,
			lamp_state = COALESCE(?, lamp_state),
			lamp_dim = COALESCE(?, lamp_dim),
			lux = COALESCE(?, lux),
			current_a = COALESCE(?, current_a),
			updated_at = excluded.updated_at
		RETURNING %s`, DefaultDimLevel, lampColumns)

	state := nullablePowerState(patch.State)
	dim := nullableInt(patch.DimLevel)
	lux := nullableFloat(patch.Lux)
	current := nullableFloat(patch.CurrentA)

	rec, err := scanLamp(r.db.QueryRowContext(ctx, query,
		nodeID, gatewayID, state, dim, lux, current, now, now,
		state, dim, lux, current,
	))
	if err != nil {
		return nil, false, fmt.Errorf("upserting lamp: %w", err)
	}

	created := rec.CreatedAt.Equal(rec.UpdatedAt)
	return rec, created, nil
}

// DeleteByGatewayAndNode removes a lamp matched by both identifiers.
func (r *SQLiteRepository) DeleteByGatewayAndNode(ctx context.Context, gatewayID, nodeID string) (*Record, error) {
	if nodeID == "" || gatewayID == "" {
		return nil, ErrInvalidNode
	}

	query := fmt.Sprintf("DELETE FROM lamps WHERE gw_id = ? AND node_id = ? RETURNING %s", lampColumns)

	rec, err := scanLamp(r.db.QueryRowContext(ctx, query, gatewayID, nodeID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrLampNotFound
		}
		return nil, fmt.Errorf("deleting lamp: %w", err)
	}
	return rec, nil
}

// scanner is an interface for sql.Row and sql.Rows Scan methods.
type scanner interface {
	Scan(dest ...any) error
}

// scanLamp scans a lamp record from any scanner (Row or Rows).
func scanLamp(s scanner) (*Record, error) {
	var rec Record
	var state string
	var createdAt, updatedAt string

	err := s.Scan(&rec.NodeID, &rec.GatewayID, &state, &rec.DimLevel,
		&rec.Lux, &rec.CurrentA, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	rec.State = PowerState(state)
	rec.CreatedAt, _ = time.Parse(timeLayout, createdAt) //nolint:errcheck // format is controlled
	rec.UpdatedAt, _ = time.Parse(timeLayout, updatedAt) //nolint:errcheck // format is controlled

	return &rec, nil
}

// Nullable parameter helpers for the COALESCE upsert arguments.

func nullablePowerState(p *PowerState) any {
	if p == nil {
		return nil
	}
	return string(*p)
}

func nullableInt(p *int) any {
	if p == nil {
		return nil
	}
	return *p
}

func nullableFloat(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}

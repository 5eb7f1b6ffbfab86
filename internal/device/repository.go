package device

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Repository defines the interface for TV persistence operations.
// This abstraction allows for different implementations (SQLite, mock, etc.)
// and enables unit testing without database dependencies.
type Repository interface {
	// GetByID retrieves a TV by its unique identifier.
	// Returns ErrDeviceNotFound if the TV does not exist.
	GetByID(ctx context.Context, id string) (*TV, error)

	// List retrieves all TVs ordered by name.
	List(ctx context.Context) ([]TV, error)

	// Create inserts a new TV.
	// Returns ErrDeviceExists if a TV with the same ID already exists.
	Create(ctx context.Context, tv *TV) error

	// Update modifies an existing TV.
	// Returns ErrDeviceNotFound if the TV does not exist.
	Update(ctx context.Context, tv *TV) error

	// Delete removes a TV and its stored state by ID.
	// Returns ErrDeviceNotFound if the TV does not exist.
	Delete(ctx context.Context, id string) error

	// UpdateAuthToken stores the pairing token for a TV.
	// This is called once PIN pairing completes.
	UpdateAuthToken(ctx context.Context, id string, token string) error

	// SaveState upserts the last known state for a TV.
	// This is optimised for frequent writes from the polling loop.
	SaveState(ctx context.Context, id string, state PowerState, source string) error

	// GetState retrieves the last known state for a TV.
	// Returns ErrDeviceNotFound if no state has been recorded.
	GetState(ctx context.Context, id string) (*StoredState, error)
}

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite-backed repository.
// The db parameter should be an open SQLite connection with the
// schema already applied.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// GetByID retrieves a TV by its unique identifier.
func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*TV, error) {
	query := `
		SELECT id, name, address, auth_token, mac_address, mac_address2,
			wol_interface, wol_broadcast, wol_port, created_at, updated_at
		FROM devices
		WHERE id = ?`

	row := r.db.QueryRowContext(ctx, query, id)
	tv, err := scanTV(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDeviceNotFound
		}
		return nil, fmt.Errorf("querying device by id: %w", err)
	}
	return tv, nil
}

// List retrieves all TVs ordered by name.
func (r *SQLiteRepository) List(ctx context.Context) ([]TV, error) {
	query := `
		SELECT id, name, address, auth_token, mac_address, mac_address2,
			wol_interface, wol_broadcast, wol_port, created_at, updated_at
		FROM devices
		ORDER BY name`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing devices: %w", err)
	}
	defer rows.Close()

	var tvs []TV
	for rows.Next() {
		tv, err := scanTV(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning device row: %w", err)
		}
		tvs = append(tvs, *tv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating device rows: %w", err)
	}

	return tvs, nil
}

// Create inserts a new TV.
func (r *SQLiteRepository) Create(ctx context.Context, tv *TV) error {
	if err := tv.Validate(); err != nil {
		return err
	}

	now := time.Now().UTC()
	if tv.CreatedAt.IsZero() {
		tv.CreatedAt = now
	}
	tv.UpdatedAt = now

	query := `
		INSERT INTO devices (
			id, name, address, auth_token, mac_address, mac_address2,
			wol_interface, wol_broadcast, wol_port, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		tv.ID,
		tv.Name,
		tv.Address,
		tv.AuthToken,
		tv.MACAddress,
		tv.MACAddress2,
		tv.WOLInterface,
		tv.WOLBroadcast,
		wolPortOrDefault(tv.WOLPort),
		tv.CreatedAt.Format(time.RFC3339),
		tv.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint") {
			return ErrDeviceExists
		}
		return fmt.Errorf("inserting device: %w", err)
	}

	return nil
}

// Update modifies an existing TV.
func (r *SQLiteRepository) Update(ctx context.Context, tv *TV) error {
	if err := tv.Validate(); err != nil {
		return err
	}

	tv.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE devices
		SET name = ?, address = ?, auth_token = ?, mac_address = ?,
			mac_address2 = ?, wol_interface = ?, wol_broadcast = ?,
			wol_port = ?, updated_at = ?
		WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query,
		tv.Name,
		tv.Address,
		tv.AuthToken,
		tv.MACAddress,
		tv.MACAddress2,
		tv.WOLInterface,
		tv.WOLBroadcast,
		wolPortOrDefault(tv.WOLPort),
		tv.UpdatedAt.Format(time.RFC3339),
		tv.ID,
	)
	if err != nil {
		return fmt.Errorf("updating device: %w", err)
	}

	return requireRowAffected(result)
}

// Delete removes a TV and its stored state by ID.
// State rows are removed by the ON DELETE CASCADE on device_state.
func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM devices WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting device: %w", err)
	}

	return requireRowAffected(result)
}

// UpdateAuthToken stores the pairing token for a TV.
func (r *SQLiteRepository) UpdateAuthToken(ctx context.Context, id string, token string) error {
	query := `UPDATE devices SET auth_token = ?, updated_at = ? WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query, token, time.Now().UTC().Format(time.RFC3339), id)
	if err != nil {
		return fmt.Errorf("updating auth token: %w", err)
	}

	return requireRowAffected(result)
}

// SaveState upserts the last known state for a TV.
func (r *SQLiteRepository) SaveState(ctx context.Context, id string, state PowerState, source string) error {
	query := `
		INSERT INTO device_state (device_id, state, source, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(device_id) DO UPDATE SET
			state = excluded.state,
			source = excluded.source,
			updated_at = excluded.updated_at`

	_, err := r.db.ExecContext(ctx, query, id, string(state), source, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("saving device state: %w", err)
	}

	return nil
}

// GetState retrieves the last known state for a TV.
func (r *SQLiteRepository) GetState(ctx context.Context, id string) (*StoredState, error) {
	query := `
		SELECT device_id, state, source, updated_at
		FROM device_state
		WHERE device_id = ?`

	var st StoredState
	var stateStr, updatedAt string
	err := r.db.QueryRowContext(ctx, query, id).Scan(&st.DeviceID, &stateStr, &st.Source, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDeviceNotFound
		}
		return nil, fmt.Errorf("querying device state: %w", err)
	}

	st.State = PowerState(stateStr)
	st.UpdatedAt = parseTimestamp(updatedAt)

	return &st, nil
}

// scanner abstracts *sql.Row and *sql.Rows for shared scanning.
type scanner interface {
	Scan(dest ...any) error
}

// scanTV scans a device row into a TV struct.
func scanTV(row scanner) (*TV, error) {
	var tv TV
	var createdAt, updatedAt string

	err := row.Scan(
		&tv.ID,
		&tv.Name,
		&tv.Address,
		&tv.AuthToken,
		&tv.MACAddress,
		&tv.MACAddress2,
		&tv.WOLInterface,
		&tv.WOLBroadcast,
		&tv.WOLPort,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	tv.CreatedAt = parseTimestamp(createdAt)
	tv.UpdatedAt = parseTimestamp(updatedAt)

	return &tv, nil
}

// parseTimestamp parses an RFC3339 timestamp, returning the zero time on failure.
func parseTimestamp(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// wolPortOrDefault applies the standard discard-protocol port when unset.
func wolPortOrDefault(port int) int {
	if port == 0 {
		return 9
	}
	return port
}

// requireRowAffected maps a zero-row UPDATE/DELETE to ErrDeviceNotFound.
func requireRowAffected(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if affected == 0 {
		return ErrDeviceNotFound
	}
	return nil
}

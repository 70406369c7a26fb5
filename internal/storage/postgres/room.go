package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/navzen/navigation/internal/rooms"
)

// ErrRoomNotFound is returned when a room lookup yields no results.
var ErrRoomNotFound = errors.New("room not found")

// RoomRepository provides room directory persistence operations.
type RoomRepository struct {
	db *pgxpool.Pool
}

// NewRoomRepository creates a RoomRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewRoomRepository(db *pgxpool.Pool) *RoomRepository {
	return &RoomRepository{db: db}
}

// Upsert inserts a room or replaces the stored one with the same id.
//
// Precondition: room must pass rooms.Room.Validate.
// Postcondition: The room row matches room.
func (r *RoomRepository) Upsert(ctx context.Context, room rooms.Room) error {
	if err := room.Validate(); err != nil {
		return err
	}
	_, err := r.db.Exec(ctx, upsertRoomSQL,
		int64(room.ID), room.Name, room.Floor, room.Description,
	)
	if err != nil {
		return fmt.Errorf("upserting room %d: %w", room.ID, err)
	}
	return nil
}

const upsertRoomSQL = `INSERT INTO rooms (id, name, floor, description)
	 VALUES ($1, $2, $3, $4)
	 ON CONFLICT (id) DO UPDATE
	 SET name = EXCLUDED.name, floor = EXCLUDED.floor,
	     description = EXCLUDED.description, updated_at = NOW()`

// UpsertAll writes every room in a single transaction.
//
// Precondition: every room must pass rooms.Room.Validate.
// Postcondition: Returns the number of rooms written; on error nothing is written.
func (r *RoomRepository) UpsertAll(ctx context.Context, all []rooms.Room) (int, error) {
	for _, room := range all {
		if err := room.Validate(); err != nil {
			return 0, err
		}
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	batch := &pgx.Batch{}
	for _, room := range all {
		batch.Queue(upsertRoomSQL, int64(room.ID), room.Name, room.Floor, room.Description)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return 0, fmt.Errorf("upserting rooms: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("committing rooms: %w", err)
	}
	return len(all), nil
}

// Get retrieves a room by id.
//
// Postcondition: Returns the room or ErrRoomNotFound.
func (r *RoomRepository) Get(ctx context.Context, id uint32) (rooms.Room, error) {
	var (
		room  rooms.Room
		rowID int64
	)
	err := r.db.QueryRow(ctx,
		`SELECT id, name, floor, description FROM rooms WHERE id = $1`,
		int64(id),
	).Scan(&rowID, &room.Name, &room.Floor, &room.Description)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return rooms.Room{}, ErrRoomNotFound
		}
		return rooms.Room{}, fmt.Errorf("querying room: %w", err)
	}
	room.ID = uint32(rowID)
	return room, nil
}

// List returns every room ordered by id.
//
// Postcondition: Returns a non-nil slice; may be empty.
func (r *RoomRepository) List(ctx context.Context) ([]rooms.Room, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name, floor, description FROM rooms ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("listing rooms: %w", err)
	}
	defer rows.Close()

	out := []rooms.Room{}
	for rows.Next() {
		var (
			room  rooms.Room
			rowID int64
		)
		if err := rows.Scan(&rowID, &room.Name, &room.Floor, &room.Description); err != nil {
			return nil, fmt.Errorf("scanning room: %w", err)
		}
		room.ID = uint32(rowID)
		out = append(out, room)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating rooms: %w", err)
	}
	return out, nil
}

// RoomNames implements rooms.Namer.
func (r *RoomRepository) RoomNames(ctx context.Context, ids []uint32) (map[uint32]string, error) {
	names := make(map[uint32]string, len(ids))
	if len(ids) == 0 {
		return names, nil
	}
	keys := make([]int64, len(ids))
	for i, id := range ids {
		keys[i] = int64(id)
	}

	rows, err := r.db.Query(ctx, `SELECT id, name FROM rooms WHERE id = ANY($1)`, keys)
	if err != nil {
		return nil, fmt.Errorf("querying room names: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id   int64
			name string
		)
		if err := rows.Scan(&id, &name); err != nil {
			return nil, fmt.Errorf("scanning room name: %w", err)
		}
		names[uint32(id)] = name
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating room names: %w", err)
	}
	return names, nil
}

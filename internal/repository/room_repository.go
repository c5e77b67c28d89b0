package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/roomplan-api/internal/models"
)

const roomColumns = "id, building_id, floor, room_nr, capacity, description, created_at, updated_at"

// RoomRepository manages persistence for rooms.
type RoomRepository struct {
	db *sqlx.DB
}

// NewRoomRepository constructs a RoomRepository.
func NewRoomRepository(db *sqlx.DB) *RoomRepository {
	return &RoomRepository{db: db}
}

// List returns rooms ordered by building, floor and room number.
func (r *RoomRepository) List(ctx context.Context, filter models.RoomFilter) ([]models.Room, error) {
	query := "SELECT " + roomColumns + " FROM rooms"
	var args []interface{}
	if filter.BuildingID != "" {
		query += " WHERE building_id = ?"
		args = append(args, filter.BuildingID)
	}
	query += " ORDER BY building_id ASC, floor ASC, room_nr ASC"

	rooms := []models.Room{}
	if err := r.db.SelectContext(ctx, &rooms, r.db.Rebind(query), args...); err != nil {
		if isMalformedKey(err) {
			return rooms, nil
		}
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	return rooms, nil
}

// FindByID fetches a room by id.
func (r *RoomRepository) FindByID(ctx context.Context, id string) (*models.Room, error) {
	var room models.Room
	query := r.db.Rebind("SELECT " + roomColumns + " FROM rooms WHERE id = ?")
	if err := r.db.GetContext(ctx, &room, query, id); err != nil {
		return nil, classifyError(err)
	}
	return &room, nil
}

// ExistsByRoomNr reports whether the building already has a room with the number.
func (r *RoomRepository) ExistsByRoomNr(ctx context.Context, buildingID, roomNr, excludeID string) (bool, error) {
	query := "SELECT COUNT(1) FROM rooms WHERE building_id = ? AND room_nr = ?"
	args := []interface{}{buildingID, roomNr}
	if excludeID != "" {
		query += " AND id <> ?"
		args = append(args, excludeID)
	}
	var count int
	if err := r.db.GetContext(ctx, &count, r.db.Rebind(query), args...); err != nil {
		return false, fmt.Errorf("check room number: %w", err)
	}
	return count > 0, nil
}

// Create inserts a new room.
func (r *RoomRepository) Create(ctx context.Context, room *models.Room) error {
	if room.ID == "" {
		room.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	room.CreatedAt = now
	room.UpdatedAt = now

	query := r.db.Rebind(`INSERT INTO rooms (id, building_id, floor, room_nr, capacity, description, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if _, err := r.db.ExecContext(ctx, query, room.ID, room.BuildingID, room.Floor, room.RoomNr, room.Capacity, room.Description, room.CreatedAt, room.UpdatedAt); err != nil {
		return fmt.Errorf("create room: %w", classifyError(err))
	}
	return nil
}

// Update modifies an existing room.
func (r *RoomRepository) Update(ctx context.Context, room *models.Room) error {
	room.UpdatedAt = time.Now().UTC()
	query := r.db.Rebind(`UPDATE rooms SET building_id = ?, floor = ?, room_nr = ?, capacity = ?, description = ?, updated_at = ? WHERE id = ?`)
	res, err := r.db.ExecContext(ctx, query, room.BuildingID, room.Floor, room.RoomNr, room.Capacity, room.Description, room.UpdatedAt, room.ID)
	if err != nil {
		return fmt.Errorf("update room: %w", classifyError(err))
	}
	return requireAffected(res)
}

// DeleteCascade removes a room and its bookings in one transaction.
// sql.ErrNoRows is returned when the room does not exist.
func (r *RoomRepository) DeleteCascade(ctx context.Context, id string) (*models.RoomDeletion, error) {
	result := &models.RoomDeletion{Bookings: []models.Booking{}}
	err := withTx(ctx, r.db, "room delete", func(tx *sqlx.Tx) error {
		if err := tx.GetContext(ctx, &result.Room, tx.Rebind("SELECT "+roomColumns+" FROM rooms WHERE id = ? FOR UPDATE"), id); err != nil {
			return classifyError(err)
		}
		if err := tx.SelectContext(ctx, &result.Bookings, tx.Rebind("SELECT "+bookingColumns+" FROM bookings WHERE room_id = ? ORDER BY start_time ASC"), id); err != nil {
			return fmt.Errorf("collect room bookings: %w", err)
		}
		if _, err := tx.ExecContext(ctx, tx.Rebind("DELETE FROM bookings WHERE room_id = ?"), id); err != nil {
			return fmt.Errorf("delete room bookings: %w", err)
		}
		if _, err := tx.ExecContext(ctx, tx.Rebind("DELETE FROM rooms WHERE id = ?"), id); err != nil {
			return fmt.Errorf("delete room: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

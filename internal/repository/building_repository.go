package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/roomplan-api/internal/models"
)

const buildingColumns = "id, name, address, description, created_at, updated_at"

// BuildingRepository manages persistence for buildings.
type BuildingRepository struct {
	db *sqlx.DB
}

// NewBuildingRepository constructs a BuildingRepository.
func NewBuildingRepository(db *sqlx.DB) *BuildingRepository {
	return &BuildingRepository{db: db}
}

// List returns buildings ordered by name.
func (r *BuildingRepository) List(ctx context.Context, filter models.BuildingFilter) ([]models.Building, error) {
	query := "SELECT " + buildingColumns + " FROM buildings"
	var args []interface{}
	if filter.Search != "" {
		search := "%" + strings.ToLower(filter.Search) + "%"
		query += " WHERE (LOWER(name) LIKE ? OR LOWER(address) LIKE ?)"
		args = append(args, search, search)
	}
	query += " ORDER BY name ASC, address ASC"

	buildings := []models.Building{}
	if err := r.db.SelectContext(ctx, &buildings, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("list buildings: %w", err)
	}
	return buildings, nil
}

// FindByID fetches a building by id.
func (r *BuildingRepository) FindByID(ctx context.Context, id string) (*models.Building, error) {
	var building models.Building
	query := r.db.Rebind("SELECT " + buildingColumns + " FROM buildings WHERE id = ?")
	if err := r.db.GetContext(ctx, &building, query, id); err != nil {
		return nil, classifyError(err)
	}
	return &building, nil
}

// ExistsByNameAddress reports whether another building already uses the name and address pair.
func (r *BuildingRepository) ExistsByNameAddress(ctx context.Context, name, address, excludeID string) (bool, error) {
	query := "SELECT COUNT(1) FROM buildings WHERE name = ? AND address = ?"
	args := []interface{}{name, address}
	if excludeID != "" {
		query += " AND id <> ?"
		args = append(args, excludeID)
	}
	var count int
	if err := r.db.GetContext(ctx, &count, r.db.Rebind(query), args...); err != nil {
		return false, fmt.Errorf("check building name/address: %w", err)
	}
	return count > 0, nil
}

// Create inserts a new building.
func (r *BuildingRepository) Create(ctx context.Context, building *models.Building) error {
	if building.ID == "" {
		building.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	building.CreatedAt = now
	building.UpdatedAt = now

	query := r.db.Rebind(`INSERT INTO buildings (id, name, address, description, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if _, err := r.db.ExecContext(ctx, query, building.ID, building.Name, building.Address, building.Description, building.CreatedAt, building.UpdatedAt); err != nil {
		return fmt.Errorf("create building: %w", classifyError(err))
	}
	return nil
}

// Update modifies an existing building.
func (r *BuildingRepository) Update(ctx context.Context, building *models.Building) error {
	building.UpdatedAt = time.Now().UTC()
	query := r.db.Rebind(`UPDATE buildings SET name = ?, address = ?, description = ?, updated_at = ? WHERE id = ?`)
	res, err := r.db.ExecContext(ctx, query, building.Name, building.Address, building.Description, building.UpdatedAt, building.ID)
	if err != nil {
		return fmt.Errorf("update building: %w", classifyError(err))
	}
	return requireAffected(res)
}

// DeleteCascade removes a building together with its rooms and their bookings in one transaction.
// sql.ErrNoRows is returned when the building does not exist.
func (r *BuildingRepository) DeleteCascade(ctx context.Context, id string) (*models.BuildingDeletion, error) {
	result := &models.BuildingDeletion{Rooms: []models.Room{}, Bookings: []models.Booking{}}
	err := withTx(ctx, r.db, "building delete", func(tx *sqlx.Tx) error {
		if err := tx.GetContext(ctx, &result.Building, tx.Rebind("SELECT "+buildingColumns+" FROM buildings WHERE id = ? FOR UPDATE"), id); err != nil {
			return classifyError(err)
		}
		if err := tx.SelectContext(ctx, &result.Rooms, tx.Rebind("SELECT "+roomColumns+" FROM rooms WHERE building_id = ? ORDER BY room_nr ASC"), id); err != nil {
			return fmt.Errorf("collect building rooms: %w", err)
		}
		if err := tx.SelectContext(ctx, &result.Bookings, tx.Rebind("SELECT "+bookingColumns+" FROM bookings WHERE room_id IN (SELECT id FROM rooms WHERE building_id = ?) ORDER BY start_time ASC"), id); err != nil {
			return fmt.Errorf("collect building bookings: %w", err)
		}
		if _, err := tx.ExecContext(ctx, tx.Rebind("DELETE FROM bookings WHERE room_id IN (SELECT id FROM rooms WHERE building_id = ?)"), id); err != nil {
			return fmt.Errorf("delete building bookings: %w", err)
		}
		if _, err := tx.ExecContext(ctx, tx.Rebind("DELETE FROM rooms WHERE building_id = ?"), id); err != nil {
			return fmt.Errorf("delete building rooms: %w", err)
		}
		if _, err := tx.ExecContext(ctx, tx.Rebind("DELETE FROM buildings WHERE id = ?"), id); err != nil {
			return fmt.Errorf("delete building: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func requireAffected(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

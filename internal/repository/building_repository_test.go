package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/roomplan-api/internal/models"
)

func TestBuildingRepositoryListWithSearch(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewBuildingRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "name", "address", "description", "created_at", "updated_at"}).
		AddRow("b1", "Main", "Street 1", nil, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, address, description, created_at, updated_at FROM buildings WHERE (LOWER(name) LIKE $1 OR LOWER(address) LIKE $2) ORDER BY name ASC, address ASC")).
		WithArgs("%main%", "%main%").
		WillReturnRows(rows)

	list, err := repo.List(context.Background(), models.BuildingFilter{Search: "Main"})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Main", list[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBuildingRepositoryExistsExcludesOwnID(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewBuildingRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(1) FROM buildings WHERE name = $1 AND address = $2 AND id <> $3")).
		WithArgs("Main", "Street 1", "b1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	exists, err := repo.ExistsByNameAddress(context.Background(), "Main", "Street 1", "b1")
	require.NoError(t, err)
	assert.False(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBuildingRepositoryCreateDuplicate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewBuildingRepository(db)

	mock.ExpectExec("INSERT INTO buildings").
		WithArgs(sqlmock.AnyArg(), "Main", "Street 1", nil, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnError(&pq.Error{Code: pqUniqueViolation, Constraint: "buildings_name_address_key"})

	building := &models.Building{Name: "Main", Address: "Street 1"}
	err := repo.Create(context.Background(), building)
	assert.ErrorIs(t, err, ErrDuplicate)
	assert.NotEmpty(t, building.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBuildingRepositoryUpdateMissing(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewBuildingRepository(db)

	mock.ExpectExec("UPDATE buildings SET").
		WithArgs("Main", "Street 1", nil, sqlmock.AnyArg(), "missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), &models.Building{ID: "missing", Name: "Main", Address: "Street 1"})
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBuildingRepositoryDeleteCascade(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewBuildingRepository(db)

	now := time.Now()
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM buildings WHERE id = $1 FOR UPDATE")).
		WithArgs("b1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "address", "description", "created_at", "updated_at"}).
			AddRow("b1", "Main", "Street 1", nil, now, now))
	mock.ExpectQuery(regexp.QuoteMeta("FROM rooms WHERE building_id = $1 ORDER BY room_nr ASC")).
		WithArgs("b1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "building_id", "floor", "room_nr", "capacity", "description", "created_at", "updated_at"}).
			AddRow("r1", "b1", 1, "101", 30, nil, now, now).
			AddRow("r2", "b1", 1, "102", 20, nil, now, now))
	mock.ExpectQuery(regexp.QuoteMeta("FROM bookings WHERE room_id IN (SELECT id FROM rooms WHERE building_id = $1)")).
		WithArgs("b1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "room_id", "teacher_id", "start_time", "end_time", "description", "created_at", "updated_at"}).
			AddRow("k1", "r1", "t1", now, now.Add(time.Hour), nil, now, now))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM bookings WHERE room_id IN (SELECT id FROM rooms WHERE building_id = $1)")).
		WithArgs("b1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM rooms WHERE building_id = $1")).
		WithArgs("b1").WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM buildings WHERE id = $1")).
		WithArgs("b1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	result, err := repo.DeleteCascade(context.Background(), "b1")
	require.NoError(t, err)
	assert.Equal(t, "b1", result.Building.ID)
	assert.Len(t, result.Rooms, 2)
	assert.Len(t, result.Bookings, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBuildingRepositoryDeleteCascadeNotFoundRollsBack(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewBuildingRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM buildings WHERE id = $1 FOR UPDATE")).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	_, err := repo.DeleteCascade(context.Background(), "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBuildingRepositoryDeleteCascadeFailureRollsBack(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewBuildingRepository(db)

	now := time.Now()
	mock.ExpectBegin()
	mock.ExpectQuery("FROM buildings WHERE id").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "address", "description", "created_at", "updated_at"}).
			AddRow("b1", "Main", "Street 1", nil, now, now))
	mock.ExpectQuery("FROM rooms WHERE building_id").
		WillReturnRows(sqlmock.NewRows([]string{"id", "building_id", "floor", "room_nr", "capacity", "description", "created_at", "updated_at"}))
	mock.ExpectQuery("FROM bookings WHERE room_id IN").
		WillReturnRows(sqlmock.NewRows([]string{"id", "room_id", "teacher_id", "start_time", "end_time", "description", "created_at", "updated_at"}))
	mock.ExpectExec("DELETE FROM bookings").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DELETE FROM rooms").WillReturnError(errors.New("lock wait timeout"))
	mock.ExpectRollback()

	_, err := repo.DeleteCascade(context.Background(), "b1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "lock wait timeout")
	assert.NoError(t, mock.ExpectationsWereMet())
}

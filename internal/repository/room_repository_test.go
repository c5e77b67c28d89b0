package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/roomplan-api/internal/models"
)

var roomRowColumns = []string{"id", "building_id", "floor", "room_nr", "capacity", "description", "created_at", "updated_at"}

func TestRoomRepositoryListByBuilding(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewRoomRepository(db)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, building_id, floor, room_nr, capacity, description, created_at, updated_at FROM rooms WHERE building_id = $1 ORDER BY building_id ASC, floor ASC, room_nr ASC")).
		WithArgs("b1").
		WillReturnRows(sqlmock.NewRows(roomRowColumns).AddRow("r1", "b1", 0, "E01", 12, nil, now, now))

	rooms, err := repo.List(context.Background(), models.RoomFilter{BuildingID: "b1"})
	require.NoError(t, err)
	require.Len(t, rooms, 1)
	assert.Equal(t, "E01", rooms[0].RoomNr)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRoomRepositoryListEmptyIsNotNil(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewRoomRepository(db)

	mock.ExpectQuery("FROM rooms ORDER BY").WillReturnRows(sqlmock.NewRows(roomRowColumns))

	rooms, err := repo.List(context.Background(), models.RoomFilter{})
	require.NoError(t, err)
	assert.NotNil(t, rooms)
	assert.Empty(t, rooms)
}

func TestRoomRepositoryExistsByRoomNr(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewRoomRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(1) FROM rooms WHERE building_id = $1 AND room_nr = $2")).
		WithArgs("b1", "101").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	exists, err := repo.ExistsByRoomNr(context.Background(), "b1", "101", "")
	require.NoError(t, err)
	assert.True(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRoomRepositoryCreateUsesQuestionMarksOnMySQL(t *testing.T) {
	raw, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer raw.Close()
	repo := NewRoomRepository(sqlx.NewDb(raw, "mysql"))

	mock.ExpectExec(regexp.QuoteMeta("VALUES (?, ?, ?, ?, ?, ?, ?, ?)")).
		WithArgs(sqlmock.AnyArg(), "b1", 2, "201", 25, nil, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnError(&mysql.MySQLError{Number: mysqlNoReferenced, Message: "foreign key constraint fails"})

	err = repo.Create(context.Background(), &models.Room{BuildingID: "b1", Floor: 2, RoomNr: "201", Capacity: 25})
	assert.ErrorIs(t, err, ErrMissingReference)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRoomRepositoryDeleteCascade(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewRoomRepository(db)

	now := time.Now()
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM rooms WHERE id = $1 FOR UPDATE")).
		WithArgs("r1").
		WillReturnRows(sqlmock.NewRows(roomRowColumns).AddRow("r1", "b1", 1, "101", 30, nil, now, now))
	mock.ExpectQuery(regexp.QuoteMeta("FROM bookings WHERE room_id = $1 ORDER BY start_time ASC")).
		WithArgs("r1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "room_id", "teacher_id", "start_time", "end_time", "description", "created_at", "updated_at"}))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM bookings WHERE room_id = $1")).WithArgs("r1").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM rooms WHERE id = $1")).WithArgs("r1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	result, err := repo.DeleteCascade(context.Background(), "r1")
	require.NoError(t, err)
	assert.Equal(t, "101", result.Room.RoomNr)
	assert.NotNil(t, result.Bookings)
	assert.Empty(t, result.Bookings)
	assert.NoError(t, mock.ExpectationsWereMet())
}

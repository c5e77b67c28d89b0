package repository

import (
	"context"
	"database/sql"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/roomplan-api/internal/models"
)

func invalidUUID() error {
	return &pq.Error{Code: pqInvalidTextRepr, Message: `invalid input syntax for type uuid: "abc"`}
}

func TestFindByIDWithMalformedIDIsNotFound(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	ctx := context.Background()

	for _, table := range []string{"buildings", "rooms", "teachers", "bookings"} {
		mock.ExpectQuery("FROM " + table + " WHERE id = \\$1").WithArgs("abc").WillReturnError(invalidUUID())
	}

	_, err := NewBuildingRepository(db).FindByID(ctx, "abc")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	_, err = NewRoomRepository(db).FindByID(ctx, "abc")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	_, err = NewTeacherRepository(db).FindByID(ctx, "abc")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	_, err = NewBookingRepository(db).FindByID(ctx, "abc")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteWithMalformedIDIsNotFoundAndRollsBack(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	ctx := context.Background()

	for _, table := range []string{"buildings", "rooms", "teachers", "bookings"} {
		mock.ExpectBegin()
		mock.ExpectQuery("FROM " + table + " WHERE id = \\$1 FOR UPDATE").WithArgs("abc").WillReturnError(invalidUUID())
		mock.ExpectRollback()
	}

	_, err := NewBuildingRepository(db).DeleteCascade(ctx, "abc")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	_, err = NewRoomRepository(db).DeleteCascade(ctx, "abc")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	_, err = NewTeacherRepository(db).DeleteCascade(ctx, "abc")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	_, err = NewBookingRepository(db).Delete(ctx, "abc")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateWithMalformedIDIsNotFound(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	mock.ExpectExec("UPDATE teachers").WillReturnError(invalidUUID())

	err := NewTeacherRepository(db).Update(context.Background(), &models.Teacher{ID: "abc", FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com"})
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListWithMalformedFilterIsEmpty(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	ctx := context.Background()

	mock.ExpectQuery("FROM rooms WHERE building_id = \\$1").WithArgs("abc").WillReturnError(invalidUUID())
	mock.ExpectQuery("WHERE b.room_id = \\$1").WithArgs("abc").WillReturnError(invalidUUID())

	rooms, err := NewRoomRepository(db).List(ctx, models.RoomFilter{BuildingID: "abc"})
	require.NoError(t, err)
	assert.NotNil(t, rooms)
	assert.Empty(t, rooms)

	bookings, err := NewBookingRepository(db).List(ctx, models.BookingFilter{RoomID: "abc"})
	require.NoError(t, err)
	assert.NotNil(t, bookings)
	assert.Empty(t, bookings)
	assert.NoError(t, mock.ExpectationsWereMet())
}

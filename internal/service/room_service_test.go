package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/roomplan-api/internal/models"
	appErrors "github.com/noah-isme/roomplan-api/pkg/errors"
)

func intPtr(v int) *int { return &v }

func newRoomServiceFixture() (*RoomService, *mockRoomRepo) {
	buildings := newMockBuildingRepo(models.Building{ID: "b1", Name: "Main", Address: "Street 1"})
	rooms := newMockRoomRepo(models.Room{ID: "r1", BuildingID: "b1", Floor: 1, RoomNr: "101", Capacity: 30})
	return NewRoomService(rooms, buildings, nil, nil, zap.NewNop()), rooms
}

func TestRoomServiceCapacityBounds(t *testing.T) {
	svc, _ := newRoomServiceFixture()
	ctx := context.Background()

	_, err := svc.Create(ctx, RoomRequest{BuildingID: "b1", Floor: intPtr(1), RoomNr: "150", Capacity: intPtr(1500)})
	require.Error(t, err)
	assert.Equal(t, "Capacity is unrealistically high", appErrorOf(err).Message)
	assert.Equal(t, 400, appErrorOf(err).Status)

	_, err = svc.Create(ctx, RoomRequest{BuildingID: "b1", Floor: intPtr(1), RoomNr: "151", Capacity: intPtr(-1)})
	require.Error(t, err)
	assert.Equal(t, "Capacity cannot be negative", appErrorOf(err).Message)

	room, err := svc.Create(ctx, RoomRequest{BuildingID: "b1", Floor: intPtr(1), RoomNr: "152", Capacity: intPtr(0)})
	require.NoError(t, err)
	assert.Equal(t, 0, room.Capacity)

	room, err = svc.Create(ctx, RoomRequest{BuildingID: "b1", Floor: intPtr(1), RoomNr: "153", Capacity: intPtr(1000)})
	require.NoError(t, err)
	assert.Equal(t, 1000, room.Capacity)
}

func TestRoomServiceCreateDefaultsAndRequiredFields(t *testing.T) {
	svc, _ := newRoomServiceFixture()
	ctx := context.Background()

	room, err := svc.Create(ctx, RoomRequest{BuildingID: "b1", Floor: intPtr(-1), RoomNr: " U1 "})
	require.NoError(t, err)
	assert.Equal(t, 0, room.Capacity)
	assert.Equal(t, -1, room.Floor)
	assert.Equal(t, "U1", room.RoomNr)

	_, err = svc.Create(ctx, RoomRequest{BuildingID: "b1", RoomNr: "200"})
	require.Error(t, err)
	assert.Equal(t, "Floor is required", appErrorOf(err).Message)
}

func TestRoomServiceUniquePerBuilding(t *testing.T) {
	svc, _ := newRoomServiceFixture()
	ctx := context.Background()

	_, err := svc.Create(ctx, RoomRequest{BuildingID: "b1", Floor: intPtr(1), RoomNr: "101"})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrDuplicate))
	assert.Equal(t, "Room number already exists in this building", appErrorOf(err).Message)

	_, err = svc.Create(ctx, RoomRequest{BuildingID: "b1", Floor: intPtr(1), RoomNr: "102"})
	assert.NoError(t, err)

	updated, err := svc.Update(ctx, "r1", RoomRequest{BuildingID: "b1", Floor: intPtr(2), RoomNr: "101", Capacity: intPtr(25)})
	require.NoError(t, err)
	assert.Equal(t, 2, updated.Floor)
}

func TestRoomServiceBuildingMustExist(t *testing.T) {
	svc, _ := newRoomServiceFixture()

	_, err := svc.Create(context.Background(), RoomRequest{BuildingID: "nope", Floor: intPtr(0), RoomNr: "1"})
	require.Error(t, err)
	appErr := appErrorOf(err)
	assert.Equal(t, 400, appErr.Status)
	assert.Equal(t, "Building does not exist", appErr.Message)

	_, err = svc.ListByBuilding(context.Background(), "nope")
	require.Error(t, err)
	assert.Equal(t, 404, appErrorOf(err).Status)

	rooms, err := svc.ListByBuilding(context.Background(), "b1")
	require.NoError(t, err)
	assert.Len(t, rooms, 1)
}

func TestRoomServiceDelete(t *testing.T) {
	svc, repo := newRoomServiceFixture()

	result, err := svc.Delete(context.Background(), "r1")
	require.NoError(t, err)
	assert.Equal(t, "101", result.Room.RoomNr)
	assert.Empty(t, repo.items)

	_, err = svc.Delete(context.Background(), "r1")
	require.Error(t, err)
	assert.Equal(t, "Room not found", appErrorOf(err).Message)
}

package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/roomplan-api/internal/models"
)

func TestTeacherRepositoryList(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTeacherRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "first_name", "last_name", "email", "created_at", "updated_at"}).
		AddRow("t1", "Ada", "Lovelace", "ada@example.com", now, now)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, first_name, last_name, email, created_at, updated_at FROM teachers ORDER BY last_name ASC, first_name ASC")).
		WillReturnRows(rows)

	list, err := repo.List(context.Background(), models.TeacherFilter{})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Ada Lovelace", list[0].FullName())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTeacherRepositoryExistsByEmailIsCaseInsensitive(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTeacherRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(1) FROM teachers WHERE LOWER(email) = LOWER($1) AND id <> $2")).
		WithArgs("ADA@example.com", "t2").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	exists, err := repo.ExistsByEmail(context.Background(), "ADA@example.com", "t2")
	require.NoError(t, err)
	assert.True(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTeacherRepositoryCreateAndUpdate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTeacherRepository(db)

	mock.ExpectExec("INSERT INTO teachers").
		WithArgs(sqlmock.AnyArg(), "Ada", "Lovelace", "ada@example.com", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	teacher := &models.Teacher{FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com"}
	require.NoError(t, repo.Create(context.Background(), teacher))

	mock.ExpectExec("UPDATE teachers SET").
		WithArgs("Ada", "King", "ada@example.com", sqlmock.AnyArg(), teacher.ID).
		WillReturnError(&pq.Error{Code: pqUniqueViolation, Constraint: "teachers_email_key"})

	teacher.LastName = "King"
	err := repo.Update(context.Background(), teacher)
	assert.ErrorIs(t, err, ErrDuplicate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTeacherRepositoryDeleteCascade(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTeacherRepository(db)

	now := time.Now()
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM teachers WHERE id = $1 FOR UPDATE")).
		WithArgs("t1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "first_name", "last_name", "email", "created_at", "updated_at"}).
			AddRow("t1", "Ada", "Lovelace", "ada@example.com", now, now))
	mock.ExpectQuery(regexp.QuoteMeta("FROM bookings WHERE teacher_id = $1")).
		WithArgs("t1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "room_id", "teacher_id", "start_time", "end_time", "description", "created_at", "updated_at"}).
			AddRow("k1", "r1", "t1", now, now.Add(time.Hour), nil, now, now).
			AddRow("k2", "r2", "t1", now.Add(2*time.Hour), now.Add(3*time.Hour), nil, now, now))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM bookings WHERE teacher_id = $1")).WithArgs("t1").WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM teachers WHERE id = $1")).WithArgs("t1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	result, err := repo.DeleteCascade(context.Background(), "t1")
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", result.Teacher.Email)
	assert.Len(t, result.Bookings, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}

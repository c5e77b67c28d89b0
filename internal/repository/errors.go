package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
)

// Sentinel errors translated from store constraint violations. They back up the
// existence checks done in the service layer when concurrent writers race.
var (
	ErrDuplicate        = errors.New("duplicate record")
	ErrRoomOverlap      = errors.New("room already booked in this period")
	ErrTeacherOverlap   = errors.New("teacher already booked in this period")
	ErrMissingReference = errors.New("referenced record does not exist")
)

const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
	pqExclusionViolation  = "23P01"
	pqInvalidTextRepr     = "22P02"

	mysqlDuplicateEntry = 1062
	mysqlNoReferenced   = 1452
)

// classifyError maps driver specific constraint errors onto repository sentinels.
// A key that is not a valid UUID on Postgres cannot match any row and becomes sql.ErrNoRows.
func classifyError(err error) error {
	if err == nil {
		return nil
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case pqUniqueViolation:
			return fmt.Errorf("%w: %w", ErrDuplicate, err)
		case pqForeignKeyViolation:
			return fmt.Errorf("%w: %w", ErrMissingReference, err)
		case pqInvalidTextRepr:
			return fmt.Errorf("%w: %w", sql.ErrNoRows, err)
		case pqExclusionViolation:
			if strings.Contains(pqErr.Constraint, "teacher") {
				return fmt.Errorf("%w: %w", ErrTeacherOverlap, err)
			}
			return fmt.Errorf("%w: %w", ErrRoomOverlap, err)
		}
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		switch myErr.Number {
		case mysqlDuplicateEntry:
			return fmt.Errorf("%w: %w", ErrDuplicate, err)
		case mysqlNoReferenced:
			return fmt.Errorf("%w: %w", ErrMissingReference, err)
		}
	}

	return err
}

// isMalformedKey reports whether a lookup failed only because an id was not a valid key.
func isMalformedKey(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == pqInvalidTextRepr
}

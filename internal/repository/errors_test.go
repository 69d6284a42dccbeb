package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
)

func TestWrapStoreClassification(t *testing.T) {
	assert.NoError(t, wrapStore(nil))

	dup := &mysql.MySQLError{Number: mysqlDuplicateEntry, Message: "Duplicate entry 'ab123' for key 'plate_key'"}
	err := wrapStore(dup)
	assert.ErrorIs(t, err, ErrConflict)
	assert.NotErrorIs(t, err, ErrStoreUnavailable)

	// a wrapped duplicate is still recognized through the chain
	err = wrapStore(fmt.Errorf("insert vehicle: %w", dup))
	assert.ErrorIs(t, err, ErrConflict)

	// other mysql errors pass through untouched
	locked := &mysql.MySQLError{Number: 1205, Message: "Lock wait timeout exceeded"}
	assert.NotErrorIs(t, wrapStore(locked), ErrConflict)

	for _, raw := range []error{
		driver.ErrBadConn,
		mysql.ErrInvalidConn,
		context.DeadlineExceeded,
	} {
		assert.ErrorIs(t, wrapStore(raw), ErrStoreUnavailable)
	}

	// lookup misses keep their usual meaning
	assert.ErrorIs(t, wrapStore(sql.ErrNoRows), sql.ErrNoRows)

	plain := errors.New("syntax error")
	assert.Equal(t, plain, wrapStore(plain))
}

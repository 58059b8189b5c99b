package postgresengine

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func Test_IsUniqueViolation_MatchesTypedPgError(t *testing.T) {
	// arrange
	pgErr := &pgconn.PgError{
		Code:    "23505",
		Message: "duplicate key value violates unique constraint",
	}

	// act + assert - matched directly and through wrapping
	assert.True(t, isUniqueViolation(pgErr))
	assert.True(t, isUniqueViolation(fmt.Errorf("executing append: %w", pgErr)))
}

func Test_IsUniqueViolation_TypedPgErrorWithOtherCodeDoesNotMatch(t *testing.T) {
	// arrange - a typed error that merely mentions the code in its message
	pgErr := &pgconn.PgError{
		Code:    "40001",
		Message: "serialization failure involving index notifications_23505_idx",
	}

	// act + assert - the SQLSTATE decides, not the message text
	assert.False(t, isUniqueViolation(pgErr))
}

func Test_IsUniqueViolation_FallsBackToTextualMatchForUntypedErrors(t *testing.T) {
	// act + assert - lib/pq behind database/sql yields plain errors
	assert.True(t, isUniqueViolation(errors.New(`pq: duplicate key value violates unique constraint "notifications_unit_pkey"`)))
	assert.True(t, isUniqueViolation(errors.New("pq: SQLSTATE 23505")))
	assert.False(t, isUniqueViolation(errors.New("connection refused")))
	assert.False(t, isUniqueViolation(nil))
}

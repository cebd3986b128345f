package database

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureSchema(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	for _, stmt := range schemaStatements {
		mock.ExpectExec(regexp.QuoteMeta(stmt)).WillReturnResult(sqlmock.NewResult(0, 0))
	}

	require.NoError(t, EnsureSchema(context.Background(), db))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnsureSchema_StopsAtFirstFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`CREATE EXTENSION IF NOT EXISTS btree_gist`).
		WillReturnError(errors.New("permission denied to create extension"))

	err = EnsureSchema(context.Background(), db)
	assert.ErrorContains(t, err, "failed to apply schema")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSchemaHasOverlapConstraint(t *testing.T) {
	var found bool
	for _, stmt := range schemaStatements {
		if regexp.MustCompile(`EXCLUDE USING gist`).MatchString(stmt) {
			found = true
			assert.Contains(t, stmt, `tsrange(start_datetime, end_datetime, '[)') WITH &&`)
		}
	}
	assert.True(t, found)
}

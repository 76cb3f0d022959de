package db

import (
	"context"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCopyFrom_EmptyRows(t *testing.T) {
	n, err := CopyFrom(context.Background(), nil, "round_holes", []string{"a", "b"}, nil)
	assert.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestCopyFrom_Success(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectCopyFrom(pgx.Identifier{"round_holes"}, []string{"round_id", "hole_number"}).WillReturnResult(3)

	rows := [][]any{{"r1", 1}, {"r1", 2}, {"r1", 3}}
	n, err := CopyFrom(context.Background(), mock, "round_holes", []string{"round_id", "hole_number"}, rows)
	assert.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCopyFrom_Error(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectCopyFrom(pgx.Identifier{"round_holes"}, []string{"round_id", "hole_number"}).
		WillReturnError(fmt.Errorf("copy failed"))

	_, err = CopyFrom(context.Background(), mock, "round_holes", []string{"round_id", "hole_number"}, [][]any{{"r1", 1}})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "COPY INTO round_holes")
}

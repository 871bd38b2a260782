package testutil

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type widget struct {
	ID      int
	Name    string
	Version int
}

func TestNewMockDB(t *testing.T) {
	mockDB := NewMockDB(t)

	assert.NotNil(t, mockDB.DB)
	assert.NotNil(t, mockDB.Mock)
	assert.NotNil(t, mockDB.SqlDB)
	mockDB.ExpectationsWereMet(t)
}

func TestMockDB_RecordLockedVersions(t *testing.T) {
	mockDB := NewMockDB(t)
	locked := mockDB.RecordLockedVersions(t)

	mockDB.Mock.ExpectExec(`UPDATE "widgets" SET "name"=\$1 WHERE .*version = \$3`).
		WithArgs("renamed", 1, 4).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mockDB.Mock.ExpectExec(`UPDATE "widgets" SET "name"=\$1 WHERE id = \$2`).
		WithArgs("again", 1).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, mockDB.DB.Model(&widget{}).
		Where("id = ? AND version = ?", 1, 4).
		Update("name", "renamed").Error)
	require.NoError(t, mockDB.DB.Model(&widget{}).
		Where("id = ?", 1).
		Update("name", "again").Error)

	assert.Equal(t, []int{4}, locked.All())
	mockDB.ExpectationsWereMet(t)
}

func TestNewTestUUID_IsStable(t *testing.T) {
	assert.Equal(t, NewTestUUID("tenant"), NewTestUUID("tenant"))
	assert.NotEqual(t, NewTestUUID("tenant"), NewTestUUID("company"))
}

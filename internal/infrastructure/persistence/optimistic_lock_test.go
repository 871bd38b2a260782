package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/documentiulia/backend/internal/domain/company"
	"github.com/documentiulia/backend/tests/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormCompanyRepository_SaveWithLock_MatchesStoredVersion(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	locked := mockDB.RecordLockedVersions(t)
	repo := NewGormCompanyRepository(mockDB.DB)
	ctx := context.Background()
	tenantID, id := uuid.New(), uuid.New()
	now := time.Now()

	mockDB.Mock.ExpectQuery(`SELECT \* FROM "companies" WHERE tenant_id = \$1 AND id = \$2`).
		WillReturnRows(sqlmock.NewRows(companyColumns).AddRow(
			id, tenantID, nil, now, now, 3,
			"Exemplu SRL", "18547290", "J40/123/2020", "Str. Lunga 1", "Bucuresti", "B", "RO", true,
			"RO49AAAA1B31007593840000", "BCR", "office@exemplu.ro", "", "RON", "active",
		))
	mockDB.Mock.ExpectExec(`UPDATE "companies" SET .* WHERE \(id = \$\d+ AND version = \$\d+\)`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mockDB.Mock.ExpectExec(`UPDATE "companies" SET .* WHERE \(id = \$\d+ AND version = \$\d+\)`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	c, err := repo.FindByIDForTenant(ctx, tenantID, id)
	require.NoError(t, err)
	assert.Equal(t, 3, c.StoredVersion())
	assert.False(t, c.HasChanges())

	require.NoError(t, c.Update("Exemplu Nou SRL", company.Details{City: "Cluj-Napoca", VATPayer: true}))
	require.NoError(t, c.SetDefaultCurrency("EUR"))
	require.NoError(t, c.Deactivate())
	require.NoError(t, repo.SaveWithLock(ctx, c))
	assert.False(t, c.HasChanges())
	saved := c.Version

	require.NoError(t, c.Activate())
	require.NoError(t, repo.SaveWithLock(ctx, c))

	assert.Equal(t, []int{3, saved}, locked.All())
	mockDB.ExpectationsWereMet(t)
}

func TestGormProgressRepository_SaveWithLock_UnchangedProgressMatchesStoredRow(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	locked := mockDB.RecordLockedVersions(t)
	repo := NewGormProgressRepository(mockDB.DB)
	ctx := context.Background()
	tenantID, userID := uuid.New(), uuid.New()
	now := time.Now()

	mockDB.Mock.ExpectQuery(`SELECT \* FROM "onboarding_progress" WHERE tenant_id = \$1 AND user_id = \$2`).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "tenant_id", "version", "created_at", "updated_at", "user_id", "current_step", "steps", "completed_at",
		}).AddRow(uuid.New(), tenantID, 7, now, now, userID, 4, []byte(`[]`), now))
	mockDB.Mock.ExpectExec(`UPDATE "onboarding_progress" SET .* WHERE \(id = \$\d+ AND version = \$\d+\)`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	p, err := repo.FindByUser(ctx, tenantID, userID)
	require.NoError(t, err)
	require.NoError(t, p.Finish())
	assert.False(t, p.HasChanges())

	require.NoError(t, repo.SaveWithLock(ctx, p))
	assert.Equal(t, []int{7}, locked.All())
	mockDB.ExpectationsWereMet(t)
}

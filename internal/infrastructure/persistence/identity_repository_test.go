package persistence

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/documentiulia/backend/internal/domain/identity"
	"github.com/documentiulia/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormTenantRepository_ActiveTenantIDs(t *testing.T) {
	db, mock, _ := newMockGorm(t)
	repo := NewGormTenantRepository(db)
	first, second := uuid.New(), uuid.New()

	mock.ExpectQuery(`SELECT "id" FROM "tenants" WHERE status = \$1 ORDER BY created_at`).
		WithArgs(identity.TenantStatusActive).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(first).AddRow(second))

	ids, err := repo.ActiveTenantIDs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{first, second}, ids)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormUserRepository_FindByLogin(t *testing.T) {
	db, mock, _ := newMockGorm(t)
	repo := NewGormUserRepository(db)

	t.Run("login is case insensitive", func(t *testing.T) {
		id, tenantID := uuid.New(), uuid.New()
		mock.ExpectQuery(`SELECT \* FROM "users" WHERE \(username = \$1 OR email = \$2\) ORDER BY "users"."id" LIMIT \$3`).
			WithArgs("maria@example.ro", "maria@example.ro", 1).
			WillReturnRows(sqlmock.NewRows([]string{"id", "tenant_id", "username", "email", "role", "status"}).
				AddRow(id, tenantID, "maria", "maria@example.ro", "owner", "active"))

		u, err := repo.FindByLogin(context.Background(), "  Maria@Example.RO ")
		require.NoError(t, err)
		assert.Equal(t, id, u.ID)
		assert.Equal(t, tenantID, u.TenantID)
		assert.Equal(t, identity.RoleOwner, u.Role)
	})

	t.Run("unknown login", func(t *testing.T) {
		mock.ExpectQuery(`SELECT \* FROM "users"`).WillReturnRows(sqlmock.NewRows([]string{"id"}))

		_, err := repo.FindByLogin(context.Background(), "nobody")
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormUserRepository_ExistsByEmail(t *testing.T) {
	db, mock, _ := newMockGorm(t)
	repo := NewGormUserRepository(db)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "users" WHERE email = \$1`).
		WithArgs("contabil@firma.ro").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	exists, err := repo.ExistsByEmail(context.Background(), "Contabil@Firma.ro")
	require.NoError(t, err)
	assert.True(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormRegistration_Register(t *testing.T) {
	newAccount := func(t *testing.T) (*identity.Tenant, *identity.User) {
		t.Helper()
		tn, err := identity.NewTenant("Cabinet Popescu SRL")
		require.NoError(t, err)
		owner, err := identity.NewUser(tn.ID, "ana.popescu", "ana@popescu.ro", "parola123", identity.RoleOwner)
		require.NoError(t, err)
		return tn, owner
	}

	t.Run("tenant and owner are created together", func(t *testing.T) {
		db, mock, _ := newMockGorm(t)
		tn, owner := newAccount(t)

		mock.ExpectBegin()
		mock.ExpectExec(`INSERT INTO "tenants"`).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`INSERT INTO "users"`).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		require.NoError(t, NewGormRegistration(db).Register(context.Background(), tn, owner))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("duplicate owner rolls back the tenant", func(t *testing.T) {
		db, mock, _ := newMockGorm(t)
		tn, owner := newAccount(t)

		mock.ExpectBegin()
		mock.ExpectExec(`INSERT INTO "tenants"`).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`INSERT INTO "users"`).WillReturnError(errors.New("duplicate key value violates unique constraint"))
		mock.ExpectRollback()

		assert.Error(t, NewGormRegistration(db).Register(context.Background(), tn, owner))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

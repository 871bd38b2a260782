// Package testutil holds the helpers shared by handler, repository and
// integration tests: a sqlmock-backed gorm DB, an authenticated gin router,
// envelope assertions and an event recorder.
package testutil

import (
	"database/sql"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// MockDB wraps a GORM database with sqlmock for testing.
type MockDB struct {
	DB    *gorm.DB
	Mock  sqlmock.Sqlmock
	SqlDB *sql.DB
}

// NewMockDB opens gorm on sqlmock with the postgres dialect. It is closed
// when the test ends.
func NewMockDB(t *testing.T) *MockDB {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err, "Failed to create sqlmock")

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	}), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err, "Failed to open GORM connection")

	t.Cleanup(func() { _ = mockDB.Close() })
	return &MockDB{DB: gormDB, Mock: mock, SqlDB: mockDB}
}

// ExpectationsWereMet verifies that all expectations were met.
func (m *MockDB) ExpectationsWereMet(t *testing.T) {
	t.Helper()
	require.NoError(t, m.Mock.ExpectationsWereMet(), "Unmet database expectations")
}

// LockedVersions lists the versions optimistic-lock updates matched on.
type LockedVersions struct {
	mu       sync.Mutex
	versions []int
}

func (l *LockedVersions) add(version int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.versions = append(l.versions, version)
}

// All returns the recorded versions in execution order.
func (l *LockedVersions) All() []int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]int(nil), l.versions...)
}

// RecordLockedVersions hooks the update callback and records the value bound to
// "version = ?" in every WHERE condition, so tests can check which stored version a
// save expected without spelling out every SET argument.
func (m *MockDB) RecordLockedVersions(t *testing.T) *LockedVersions {
	t.Helper()
	recorded := &LockedVersions{}
	err := m.DB.Callback().Update().Before("gorm:update").Register("testutil:locked_versions", func(tx *gorm.DB) {
		where, ok := tx.Statement.Clauses["WHERE"].Expression.(clause.Where)
		if !ok {
			return
		}
		for _, expr := range where.Exprs {
			cond, ok := expr.(clause.Expr)
			if !ok || !strings.HasSuffix(cond.SQL, "version = ?") || len(cond.Vars) == 0 {
				continue
			}
			if version, ok := cond.Vars[len(cond.Vars)-1].(int); ok {
				recorded.add(version)
			}
		}
	})
	require.NoError(t, err, "Failed to register update callback")
	return recorded
}

// NewTestUUID derives a stable UUID from seed.
func NewTestUUID(seed string) uuid.UUID {
	namespace := uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")
	return uuid.NewSHA1(namespace, []byte(seed))
}

func TestTenantID() uuid.UUID {
	return NewTestUUID("test-tenant")
}

func TestUserID() uuid.UUID {
	return NewTestUUID("test-user")
}

func TestCompanyID() uuid.UUID {
	return NewTestUUID("test-company")
}

// Eventually polls condition until it holds or timeout passes.
func Eventually(condition func() bool, timeout, interval time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return true
		}
		time.Sleep(interval)
	}
	return condition()
}

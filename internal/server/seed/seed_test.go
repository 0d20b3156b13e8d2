package seed

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/dbx"
	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
	"github.com/dmitrijs2005/taskkeeper/internal/server/repositories/revocations"
	"github.com/dmitrijs2005/taskkeeper/internal/server/repositories/todos"
	"github.com/dmitrijs2005/taskkeeper/internal/server/repositories/users"
)

var errBoom = errors.New("boom")

type fakeUsers struct {
	users.Repository
	byEmail   map[string]*models.User
	deleted   []string
	deleteErr error
}

func (f *fakeUsers) Create(_ context.Context, u *models.User) (*models.User, error) {
	if _, ok := f.byEmail[u.Email]; ok {
		return nil, common.ErrorAlreadyExists
	}
	c := *u
	c.ID = "11111111-1111-1111-1111-111111111111"
	f.byEmail[u.Email] = &c
	return &c, nil
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	u, ok := f.byEmail[email]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return u, nil
}

func (f *fakeUsers) DeleteByEmail(_ context.Context, email string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, email)
	delete(f.byEmail, email)
	return nil
}

type fakeTodos struct {
	todos.Repository
	created      []*models.Todo
	createErr    error
	clearedUsers []string
}

func (f *fakeTodos) DeleteByUser(_ context.Context, userID string) error {
	f.clearedUsers = append(f.clearedUsers, userID)
	return nil
}

func (f *fakeTodos) Create(_ context.Context, t *models.Todo) (*models.Todo, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = append(f.created, t)
	return t, nil
}

type fakeManager struct {
	u          *fakeUsers
	t          *fakeTodos
	migrateErr error
	migrated   bool
}

func (m *fakeManager) RunMigrations(context.Context, *sql.DB) error {
	m.migrated = true
	return m.migrateErr
}
func (m *fakeManager) Users(dbx.DBTX) users.Repository             { return m.u }
func (m *fakeManager) Todos(dbx.DBTX) todos.Repository             { return m.t }
func (m *fakeManager) Revocations(dbx.DBTX) revocations.Repository { return nil }

func newFakeManager() *fakeManager {
	return &fakeManager{
		u: &fakeUsers{byEmail: map[string]*models.User{}},
		t: &fakeTodos{},
	}
}

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func TestSeeder_Run(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectCommit()
	mock.ExpectBegin()
	mock.ExpectCommit()

	m := newFakeManager()
	m.u.byEmail[DemoEmail] = &models.User{ID: "old", Email: DemoEmail}
	var out bytes.Buffer

	user, err := NewSeeder(db, m, &out).Run(context.Background(), "hunter22")
	require.NoError(t, err)

	assert.True(t, m.migrated)
	assert.Equal(t, []string{DemoEmail}, m.u.deleted)
	assert.Equal(t, []string{"old"}, m.t.clearedUsers)
	assert.Equal(t, DemoEmail, user.Email)
	assert.Equal(t, DemoName, user.Name)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("hunter22")))

	require.Len(t, m.t.created, len(sampleTodos))
	done := 0
	for _, td := range m.t.created {
		assert.Equal(t, user.ID, td.UserID)
		if td.Status == common.TodoStatusDone {
			done++
		}
	}
	assert.Equal(t, 3, done)
	assert.Contains(t, out.String(), "Demo user created: demo@example.com")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSeeder_Run_Errors(t *testing.T) {
	t.Run("migrations", func(t *testing.T) {
		db, _ := newMockDB(t)
		m := newFakeManager()
		m.migrateErr = errBoom

		_, err := NewSeeder(db, m, &bytes.Buffer{}).Run(context.Background(), DefaultDemoPassword)
		assert.ErrorIs(t, err, errBoom)
		assert.Empty(t, m.u.deleted)
	})

	t.Run("clear", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectBegin()
		mock.ExpectRollback()
		m := newFakeManager()
		m.u.byEmail[DemoEmail] = &models.User{ID: "old", Email: DemoEmail}
		m.u.deleteErr = errBoom

		_, err := NewSeeder(db, m, &bytes.Buffer{}).Run(context.Background(), DefaultDemoPassword)
		assert.ErrorIs(t, err, errBoom)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("short password", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectBegin()
		mock.ExpectCommit()
		m := newFakeManager()

		_, err := NewSeeder(db, m, &bytes.Buffer{}).Run(context.Background(), "123")
		assert.ErrorIs(t, err, common.ErrorValidation)
	})

	t.Run("todos rolled back", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectBegin()
		mock.ExpectCommit()
		mock.ExpectBegin()
		mock.ExpectRollback()
		m := newFakeManager()
		m.t.createErr = errBoom

		_, err := NewSeeder(db, m, &bytes.Buffer{}).Run(context.Background(), DefaultDemoPassword)
		assert.ErrorIs(t, err, errBoom)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

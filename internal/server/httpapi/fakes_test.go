package httpapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/server/auth"
	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
	"github.com/dmitrijs2005/taskkeeper/internal/server/services"
)

var (
	errBoom  = errors.New("boom")
	baseTime = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

type fakeUsers struct {
	user      *models.User
	signupErr error
	loginErr  error
	meErr     error
}

func (f *fakeUsers) Signup(_ context.Context, name, email, _ string) (*models.User, error) {
	if f.signupErr != nil {
		return nil, f.signupErr
	}
	return &models.User{ID: "u-1", Name: name, Email: email, PasswordHash: "hash"}, nil
}

func (f *fakeUsers) Login(_ context.Context, email, _ string) (*models.User, error) {
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return &models.User{ID: "u-1", Name: "Demo", Email: email, PasswordHash: "hash"}, nil
}

func (f *fakeUsers) Me(_ context.Context, userID string) (*models.User, error) {
	if f.meErr != nil {
		return nil, f.meErr
	}
	return &models.User{ID: userID, Name: "Demo", Email: "demo@example.com"}, nil
}

type fakeTodos struct {
	err       error
	lastQuery services.ListQuery
	lastPatch models.TodoPatch
	lastUser  string
	lastID    string
	page      *services.TodoPage
}

func (f *fakeTodos) todo(userID, id string) *models.Todo {
	return &models.Todo{
		ID:        id,
		UserID:    userID,
		Title:     "Buy milk",
		Status:    common.TodoStatusPending,
		CreatedAt: baseTime,
		UpdatedAt: baseTime,
	}
}

func (f *fakeTodos) Create(_ context.Context, userID, title, description string) (*models.Todo, error) {
	f.lastUser = userID
	if f.err != nil {
		return nil, f.err
	}
	t := f.todo(userID, "t-1")
	t.Title, t.Description = title, description
	return t, nil
}

func (f *fakeTodos) Get(_ context.Context, userID, id string) (*models.Todo, error) {
	f.lastUser, f.lastID = userID, id
	if f.err != nil {
		return nil, f.err
	}
	return f.todo(userID, id), nil
}

func (f *fakeTodos) Update(_ context.Context, userID, id string, patch models.TodoPatch) (*models.Todo, error) {
	f.lastUser, f.lastID, f.lastPatch = userID, id, patch
	if f.err != nil {
		return nil, f.err
	}
	t := f.todo(userID, id)
	if patch.Status != nil {
		t.Status = *patch.Status
	}
	return t, nil
}

func (f *fakeTodos) Delete(_ context.Context, userID, id string) error {
	f.lastUser, f.lastID = userID, id
	return f.err
}

func (f *fakeTodos) List(_ context.Context, userID string, q services.ListQuery) (*services.TodoPage, error) {
	f.lastUser, f.lastQuery = userID, q
	if f.err != nil {
		return nil, f.err
	}
	if f.page != nil {
		return f.page, nil
	}
	return &services.TodoPage{Todos: []*models.Todo{}, Page: 1, Limit: 10}, nil
}

type fakeExport struct {
	res *services.ExportResult
	err error
}

func (f *fakeExport) Export(context.Context, string) (*services.ExportResult, error) {
	return f.res, f.err
}

type memRevocations struct {
	mu      sync.Mutex
	revoked map[string]time.Time
	err     error
}

func (m *memRevocations) Revoke(_ context.Context, jti string, expiresAt time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return false, m.err
	}
	if _, ok := m.revoked[jti]; ok {
		return false, nil
	}
	m.revoked[jti] = expiresAt
	return true, nil
}

func (m *memRevocations) IsRevoked(_ context.Context, jti string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.revoked[jti]
	return ok, nil
}

type testEnv struct {
	router  http.Handler
	auth    *auth.Authenticator
	clock   *fakeClock
	users   *fakeUsers
	todos   *fakeTodos
	export  *fakeExport
	revoked *memRevocations
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	secrets, err := auth.NewSecrets("access-secret", "refresh-secret", 15*time.Minute, 7*24*time.Hour)
	require.NoError(t, err)

	env := &testEnv{
		clock:   &fakeClock{t: baseTime},
		users:   &fakeUsers{},
		todos:   &fakeTodos{},
		export:  &fakeExport{},
		revoked: &memRevocations{revoked: map[string]time.Time{}},
	}
	env.auth = auth.NewAuthenticator(
		auth.NewSigner(secrets, auth.WithClock(env.clock.Now)),
		auth.WithRevocationStore(env.revoked),
	)

	h := NewHandler(Deps{
		Auth:   env.auth,
		Users:  env.users,
		Todos:  env.todos,
		Export: env.export,
	})
	env.router = NewRouter(h, RouterOptions{AllowedOrigins: []string{"http://localhost:5173"}})
	return env
}

// session returns cookies for a freshly issued pair.
func (e *testEnv) session(t *testing.T, userID string) (auth.TokenPair, []*http.Cookie) {
	t.Helper()
	pair, err := e.auth.Issue(userID)
	require.NoError(t, err)
	return pair, []*http.Cookie{
		{Name: common.AccessTokenCookieName, Value: pair.AccessToken},
		{Name: common.RefreshTokenCookieName, Value: pair.RefreshToken},
	}
}

func (e *testEnv) do(method, path, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}

func responseCookies(rr *httptest.ResponseRecorder) map[string]*http.Cookie {
	out := map[string]*http.Cookie{}
	for _, c := range rr.Result().Cookies() {
		out[c.Name] = c
	}
	return out
}

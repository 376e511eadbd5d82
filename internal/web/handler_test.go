package web

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mindwell-hq/mindwell/internal/activity"
	"github.com/mindwell-hq/mindwell/internal/auth"
	"github.com/mindwell-hq/mindwell/internal/domain"
	"github.com/mindwell-hq/mindwell/internal/password"
	"github.com/mindwell-hq/mindwell/internal/session"
)

type memoryStore struct {
	mu         sync.Mutex
	byEmail    map[string]*domain.User
	byID       map[uuid.UUID]*domain.User
	progress   map[uuid.UUID]*domain.UserProgress
	activities []*domain.Activity
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		byEmail:  make(map[string]*domain.User),
		byID:     make(map[uuid.UUID]*domain.User),
		progress: make(map[uuid.UUID]*domain.UserProgress),
	}
}

func (m *memoryStore) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.byEmail[email]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return user, nil
}

func (m *memoryStore) FindByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return user, nil
}

func (m *memoryStore) Create(_ context.Context, user *domain.User, progress *domain.UserProgress) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byEmail[user.Email]; ok {
		return domain.ErrEmailTaken
	}
	m.byEmail[user.Email] = user
	m.byID[user.ID] = user
	m.progress[user.ID] = progress
	return nil
}

func (m *memoryStore) UpdateLastActive(_ context.Context, id uuid.UUID, ts time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if user, ok := m.byID[id]; ok {
		user.LastActive = &ts
	}
	return nil
}

func (m *memoryStore) FindByUserID(_ context.Context, userID uuid.UUID) (*domain.UserProgress, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	progress, ok := m.progress[userID]
	if !ok {
		return nil, domain.ErrProgressNotFound
	}
	return progress, nil
}

func (m *memoryStore) RecentByUser(_ context.Context, userID uuid.UUID, limit int) ([]*domain.Activity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.Activity
	for _, act := range m.activities {
		if act.UserID == userID && len(out) < limit {
			out = append(out, act)
		}
	}
	return out, nil
}

const testCookieName = "mindwell_session"

type fixture struct {
	t      *testing.T
	router *gin.Engine
	store  *memoryStore
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	sessions := session.NewStore(client, "ms", time.Hour)
	store := newMemoryStore()

	recorder := activity.NewRecorder(activity.Config{BufferSize: 16}, activity.NoopSink{}, zap.NewNop())
	t.Cleanup(recorder.Close)

	svc := auth.NewService(store, store, store, sessions, recorder, password.NewBcrypt(), zap.NewNop())
	h := NewHandler(svc, CookieConfig{Name: testCookieName, MaxAge: 3600}, zap.NewNop())

	router, err := NewRouter(h, nil)
	require.NoError(t, err)

	return &fixture{t: t, router: router, store: store}
}

func (f *fixture) seedUser(email, plain string, role domain.Role) *domain.User {
	f.t.Helper()
	hash, err := password.NewBcrypt().Hash(plain)
	require.NoError(f.t, err)
	user := &domain.User{
		ID:           uuid.New(),
		Name:         "Dana",
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    time.Now(),
	}
	require.NoError(f.t, f.store.Create(context.Background(), user, domain.NewUserProgress(user.ID, user.CreatedAt)))
	return user
}

func (f *fixture) get(path string, cookie *http.Cookie) *httptest.ResponseRecorder {
	f.t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func (f *fixture) postForm(path string, form url.Values, cookie *http.Cookie) *httptest.ResponseRecorder {
	f.t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

// login posts valid credentials and returns the session cookie.
func (f *fixture) login(email, plain string) *http.Cookie {
	f.t.Helper()
	w := f.postForm("/login", url.Values{"email": {email}, "password": {plain}}, nil)
	require.Equal(f.t, http.StatusFound, w.Code)
	for _, c := range w.Result().Cookies() {
		if c.Name == testCookieName {
			return c
		}
	}
	f.t.Fatal("session cookie not set")
	return nil
}

func TestPublicPages(t *testing.T) {
	f := newFixture(t)

	for _, path := range []string{"/", "/login", "/register", "/forgot-password"} {
		w := f.get(path, nil)
		assert.Equal(t, http.StatusOK, w.Code, path)
	}
}

func TestLoginSetsCookieAndRedirectsByRole(t *testing.T) {
	f := newFixture(t)
	f.seedUser("dana@example.com", "secret123", domain.RoleMember)
	f.seedUser("root@example.com", "secret123", domain.RoleAdmin)

	w := f.postForm("/login", url.Values{
		"email":    {"dana@example.com"},
		"password": {"secret123"},
	}, nil)
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/user/dashboard", w.Header().Get("Location"))

	var cookie *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == testCookieName {
			cookie = c
		}
	}
	require.NotNil(t, cookie)
	assert.NotEmpty(t, cookie.Value)
	assert.True(t, cookie.HttpOnly)

	w = f.postForm("/login", url.Values{
		"email":    {"root@example.com"},
		"password": {"secret123"},
	}, nil)
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/admin/dashboard", w.Header().Get("Location"))
}

func TestLoginFailuresLookIdentical(t *testing.T) {
	f := newFixture(t)
	f.seedUser("dana@example.com", "secret123", domain.RoleMember)

	wrongPassword := f.postForm("/login", url.Values{
		"email":    {"dana@example.com"},
		"password": {"not-the-password"},
	}, nil)
	unknownEmail := f.postForm("/login", url.Values{
		"email":    {"ghost@example.com"},
		"password": {"secret123"},
	}, nil)

	// Same status and same message either way, so the form cannot be
	// used to probe which emails are registered.
	assert.Equal(t, http.StatusUnauthorized, wrongPassword.Code)
	assert.Equal(t, http.StatusUnauthorized, unknownEmail.Code)
	assert.Contains(t, wrongPassword.Body.String(), domain.ErrInvalidCredentials.Error())
	assert.Contains(t, unknownEmail.Body.String(), domain.ErrInvalidCredentials.Error())
}

func TestRegisterCreatesAccountAndShowsLogin(t *testing.T) {
	f := newFixture(t)

	w := f.postForm("/register", url.Values{
		"name":            {"Dana"},
		"email":           {"dana@example.com"},
		"password":        {"secret123"},
		"confirmPassword": {"secret123"},
	}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Account created successfully")

	user, err := f.store.FindByEmail(context.Background(), "dana@example.com")
	require.NoError(t, err)
	progress, err := f.store.FindByUserID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Zero(t, progress.TotalPoints)
}

func TestRegisterValidationErrors(t *testing.T) {
	f := newFixture(t)
	f.seedUser("taken@example.com", "secret123", domain.RoleMember)

	full := func(overrides url.Values) url.Values {
		form := url.Values{
			"name":            {"Dana"},
			"email":           {"dana@example.com"},
			"password":        {"secret123"},
			"confirmPassword": {"secret123"},
		}
		for k, v := range overrides {
			form[k] = v
		}
		return form
	}

	cases := []struct {
		name    string
		form    url.Values
		status  int
		message string
	}{
		{"missing field", full(url.Values{"name": {""}}), http.StatusBadRequest, domain.ErrMissingFields.Error()},
		{"mismatch", full(url.Values{"confirmPassword": {"other1234"}}), http.StatusBadRequest, domain.ErrPasswordMismatch.Error()},
		{"too short", full(url.Values{"password": {"abc"}, "confirmPassword": {"abc"}}), http.StatusBadRequest, domain.ErrPasswordTooShort.Error()},
		{"duplicate email", full(url.Values{"email": {"taken@example.com"}}), http.StatusBadRequest, domain.ErrEmailTaken.Error()},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := f.postForm("/register", tc.form, nil)
			assert.Equal(t, tc.status, w.Code)
			assert.Contains(t, w.Body.String(), tc.message)
		})
	}
}

func TestDashboardRedirectsAnonymous(t *testing.T) {
	f := newFixture(t)

	w := f.get("/dashboard", nil)
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))
}

func TestDashboardRendersMemberView(t *testing.T) {
	f := newFixture(t)
	user := f.seedUser("dana@example.com", "secret123", domain.RoleMember)
	cookie := f.login(user.Email, "secret123")

	w := f.get("/dashboard", cookie)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), user.Name)
	assert.Contains(t, w.Body.String(), "Total Points")
}

func TestAdminDashboardGuards(t *testing.T) {
	f := newFixture(t)
	member := f.seedUser("dana@example.com", "secret123", domain.RoleMember)
	admin := f.seedUser("root@example.com", "secret123", domain.RoleAdmin)

	w := f.get("/admin/dashboard", nil)
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))

	memberCookie := f.login(member.Email, "secret123")
	w = f.get("/admin/dashboard", memberCookie)
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/user/dashboard", w.Header().Get("Location"))

	adminCookie := f.login(admin.Email, "secret123")
	w = f.get("/admin/dashboard", adminCookie)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Admin Dashboard")
}

func TestLogoutDestroysSessionAndClearsCookie(t *testing.T) {
	f := newFixture(t)
	user := f.seedUser("dana@example.com", "secret123", domain.RoleMember)
	cookie := f.login(user.Email, "secret123")

	w := f.get("/logout", cookie)
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))

	var cleared *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == testCookieName {
			cleared = c
		}
	}
	require.NotNil(t, cleared)
	assert.Empty(t, cleared.Value)
	assert.Less(t, cleared.MaxAge, 0)

	// The old cookie no longer resolves a session.
	w = f.get("/dashboard", cookie)
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))
}

func TestLogoutWithoutSessionStillRedirects(t *testing.T) {
	f := newFixture(t)

	w := f.get("/logout", nil)
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))
}

func TestStaticAssetsServed(t *testing.T) {
	f := newFixture(t)

	w := f.get("/static/css/style.css", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), ".auth-card")
}

func TestMetricsEndpoint(t *testing.T) {
	f := newFixture(t)

	w := f.get("/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "mindwell_activity_dropped_total")
}

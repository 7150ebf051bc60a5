package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mksolution/account-service/internal/application"
	"github.com/mksolution/account-service/internal/domain/entity"
	"github.com/mksolution/account-service/internal/domain/repository"
	"github.com/mksolution/account-service/pkg/helpers"
	"github.com/mksolution/account-service/pkg/validation"
)

func init() {
	gin.SetMode(gin.TestMode)
	validation.Init()
}

// stubRepo is a map-backed repository for handler tests.
type stubRepo struct {
	seq   int
	users map[string]*entity.User
}

func newStubRepo() *stubRepo {
	return &stubRepo{users: make(map[string]*entity.User)}
}

func (r *stubRepo) clone(u *entity.User) *entity.User {
	c := *u
	return &c
}

func (r *stubRepo) Create(_ context.Context, u *entity.User) error {
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return repository.ErrDuplicate
		}
	}
	r.seq++
	u.ID = fmt.Sprintf("00000000-0000-0000-0000-%012d", r.seq)
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	r.users[u.ID] = r.clone(u)
	return nil
}

func (r *stubRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return r.clone(u), nil
}

func (r *stubRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return r.clone(u), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *stubRepo) Save(_ context.Context, u *entity.User) error {
	if _, ok := r.users[u.ID]; !ok {
		return repository.ErrNotFound
	}
	u.UpdatedAt = time.Now()
	r.users[u.ID] = r.clone(u)
	return nil
}

func (r *stubRepo) UpdateProfile(ctx context.Context, id string, p repository.ProfilePatch) (*entity.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Phone != nil {
		u.Phone = *p.Phone
	}
	if p.ProfileURL != nil {
		u.ProfileURL = *p.ProfileURL
	}
	if p.Address != nil {
		u.Address = *p.Address
	}
	u.UpdatedAt = time.Now()
	return r.clone(u), nil
}

func (r *stubRepo) ListOnboardedClients(_ context.Context) ([]*entity.User, error) {
	var out []*entity.User
	for _, u := range r.users {
		if u.Role == entity.RoleClient && u.IsOnboarded {
			out = append(out, r.clone(u))
		}
	}
	return out, nil
}

type testServer struct {
	engine *gin.Engine
	repo   *stubRepo
	svc    *application.Service
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	jwt, err := helpers.NewJWTManager("handler-test-secret", "HS256", 30*time.Minute)
	require.NoError(t, err)

	repo := newStubRepo()
	svc := &application.Service{
		Repo:     repo,
		JWT:      jwt,
		Sessions: helpers.NewSessionStore(nil),
		OTPTTL:   15 * time.Minute,
	}

	r := gin.New()
	api := r.Group("/api")
	auth := NewAuthHandler(svc, nil)
	api.POST("/auth/register", auth.Register)
	api.POST("/auth/login", auth.Login)
	api.POST("/auth/verify-email", auth.VerifyEmail)
	api.POST("/auth/forgot-password", auth.ForgotPassword)
	api.POST("/auth/reset-password", auth.ResetPassword)

	return &testServer{engine: r, repo: repo, svc: svc}
}

func (ts *testServer) post(t *testing.T, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	ts.engine.ServeHTTP(w, req)
	return w
}

func registerBody(email string) gin.H {
	return gin.H{
		"name":     "Ada Lovelace",
		"email":    email,
		"password": "correct-horse",
	}
}

func TestRegisterEndpoint(t *testing.T) {
	ts := newTestServer(t)

	w := ts.post(t, "/api/auth/register", registerBody("ada@example.com"))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.NotContains(t, w.Body.String(), "correct-horse", "password must never appear in a response")
	assert.Contains(t, w.Body.String(), `"is_email_verified":false`)

	t.Run("duplicate email", func(t *testing.T) {
		w := ts.post(t, "/api/auth/register", registerBody("ada@example.com"))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("invalid payload reports field errors", func(t *testing.T) {
		w := ts.post(t, "/api/auth/register", gin.H{"name": "A", "email": "nope", "password": "short"})
		require.Equal(t, http.StatusBadRequest, w.Code)
		body := w.Body.String()
		assert.Contains(t, body, `"email"`)
		assert.Contains(t, body, `"password"`)
	})
}

func TestLoginEndpoint(t *testing.T) {
	ts := newTestServer(t)
	require.Equal(t, http.StatusCreated, ts.post(t, "/api/auth/register", registerBody("ada@example.com")).Code)

	t.Run("wrong password", func(t *testing.T) {
		w := ts.post(t, "/api/auth/login", gin.H{"email": "ada@example.com", "password": "wrong"})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("unknown email gets the same error", func(t *testing.T) {
		w := ts.post(t, "/api/auth/login", gin.H{"email": "ghost@example.com", "password": "wrong"})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("valid credentials return a bearer token", func(t *testing.T) {
		w := ts.post(t, "/api/auth/login", gin.H{"email": "ada@example.com", "password": "correct-horse"})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Contains(t, w.Body.String(), `"token_type":"bearer"`)
		assert.Contains(t, w.Body.String(), `"access_token"`)
	})
}

func TestVerifyEmailEndpoint(t *testing.T) {
	ts := newTestServer(t)
	require.Equal(t, http.StatusCreated, ts.post(t, "/api/auth/register", registerBody("ada@example.com")).Code)

	stored, err := ts.repo.GetByEmail(context.Background(), "ada@example.com")
	require.NoError(t, err)
	require.NotNil(t, stored.VerifyCode)
	code := *stored.VerifyCode

	t.Run("wrong code", func(t *testing.T) {
		wrong := "000000"
		if wrong == code {
			wrong = "000001"
		}
		w := ts.post(t, "/api/auth/verify-email", gin.H{"email": "ada@example.com", "code": wrong})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("correct code verifies", func(t *testing.T) {
		w := ts.post(t, "/api/auth/verify-email", gin.H{"email": "ada@example.com", "code": code})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Contains(t, w.Body.String(), `"is_email_verified":true`)
	})

	t.Run("replay fails", func(t *testing.T) {
		w := ts.post(t, "/api/auth/verify-email", gin.H{"email": "ada@example.com", "code": code})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestResetPasswordEndpoint(t *testing.T) {
	ts := newTestServer(t)
	require.Equal(t, http.StatusCreated, ts.post(t, "/api/auth/register", registerBody("ada@example.com")).Code)
	require.Equal(t, http.StatusOK, ts.post(t, "/api/auth/forgot-password", gin.H{"email": "ada@example.com"}).Code)

	stored, err := ts.repo.GetByEmail(context.Background(), "ada@example.com")
	require.NoError(t, err)
	require.NotNil(t, stored.ResetCode)

	w := ts.post(t, "/api/auth/reset-password", gin.H{
		"email":        "ada@example.com",
		"code":         *stored.ResetCode,
		"new_password": "even-better-horse",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	assert.Equal(t, http.StatusUnauthorized,
		ts.post(t, "/api/auth/login", gin.H{"email": "ada@example.com", "password": "correct-horse"}).Code)
	assert.Equal(t, http.StatusOK,
		ts.post(t, "/api/auth/login", gin.H{"email": "ada@example.com", "password": "even-better-horse"}).Code)
}

func TestUserEndpoints(t *testing.T) {
	ts := newTestServer(t)
	uh := NewUserHandler(ts.svc, nil)
	ts.engine.GET("/api/user/data/:id", uh.GetUser)
	ts.engine.PUT("/api/user/data/:id", uh.UpdateUser)

	require.Equal(t, http.StatusCreated, ts.post(t, "/api/auth/register", registerBody("ada@example.com")).Code)
	stored, err := ts.repo.GetByEmail(context.Background(), "ada@example.com")
	require.NoError(t, err)

	t.Run("get", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/user/data/"+stored.ID, nil)
		w := httptest.NewRecorder()
		ts.engine.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "ada@example.com")
	})

	t.Run("malformed id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/user/data/not-a-uuid", nil)
		w := httptest.NewRecorder()
		ts.engine.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("update patch", func(t *testing.T) {
		body := strings.NewReader(`{"name":"Ada King","address":"12 St James Square"}`)
		req := httptest.NewRequest(http.MethodPut, "/api/user/data/"+stored.ID, body)
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		ts.engine.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Contains(t, w.Body.String(), "Ada King")
		assert.Contains(t, w.Body.String(), "ada@example.com", "untouched fields survive the patch")
	})

	t.Run("empty patch rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPut, "/api/user/data/"+stored.ID, strings.NewReader(`{}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		ts.engine.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

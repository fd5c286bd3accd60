package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rubyruby/relay/internal/auth"
	"github.com/rubyruby/relay/internal/models"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeUserRepo struct {
	users map[string]*models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*models.User)}
}

func (f *fakeUserRepo) Create(ctx context.Context, username, passwordHash string) (*models.User, error) {
	if _, exists := f.users[username]; exists {
		return nil, nil
	}
	u := &models.User{Username: username, PasswordHash: passwordHash, CreatedAt: time.Now()}
	f.users[username] = u
	return u, nil
}

func (f *fakeUserRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return f.users[username], nil
}

func authRouter(repo *fakeUserRepo) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewAuthHandler(repo, "test-secret", time.Hour, zap.NewNop())
	r.POST("/v1/auth/register", h.Register)
	r.POST("/v1/auth/login", h.Login)
	return r
}

func post(r *gin.Engine, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestRegister_ThenLogin(t *testing.T) {
	repo := newFakeUserRepo()
	r := authRouter(repo)

	w := post(r, "/v1/auth/register", `{"username":"ana","password":"hunter22"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	// Stored hash must not be the plaintext password.
	require.NotEqual(t, "hunter22", repo.users["ana"].PasswordHash)

	w = post(r, "/v1/auth/login", `{"username":"ana","password":"hunter22"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))

	claims, err := auth.ParseToken(body.Token, "test-secret")
	require.NoError(t, err)
	require.Equal(t, "ana", claims.Username)
}

func TestRegister_DuplicateUsername(t *testing.T) {
	r := authRouter(newFakeUserRepo())

	w := post(r, "/v1/auth/register", `{"username":"ana","password":"hunter22"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	w = post(r, "/v1/auth/register", `{"username":"ana","password":"different"}`)
	require.Equal(t, http.StatusConflict, w.Code)
}

func TestRegister_MissingFields(t *testing.T) {
	r := authRouter(newFakeUserRepo())

	w := post(r, "/v1/auth/register", `{"username":"ana"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLogin_WrongPassword(t *testing.T) {
	r := authRouter(newFakeUserRepo())

	post(r, "/v1/auth/register", `{"username":"ana","password":"hunter22"}`)

	w := post(r, "/v1/auth/login", `{"username":"ana","password":"wrong-pass"}`)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogin_UnknownUser(t *testing.T) {
	r := authRouter(newFakeUserRepo())

	w := post(r, "/v1/auth/login", `{"username":"ghost","password":"whatever"}`)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	// Same body as wrong-password, so the API does not leak which
	// usernames exist.
	var body struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, "invalid username or password", body.Error)
}

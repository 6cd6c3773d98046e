package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"authapi/internal/config"
	"authapi/internal/handlers"
	"authapi/internal/models"
	"authapi/internal/repository"
	"authapi/internal/routes"
	"authapi/internal/services"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"
)

// In-memory реализация services.UserRepo для httptest-сценариев
type memRepo struct {
	users  map[string]*models.User
	nextID int64
}

func newMemRepo() *memRepo {
	return &memRepo{users: make(map[string]*models.User)}
}

func (m *memRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	u, ok := m.users[strings.ToLower(email)]
	if !ok {
		return nil, nil
	}
	return u, nil
}

func (m *memRepo) CreateUser(_ context.Context, user *models.User) error {
	key := strings.ToLower(user.Email)
	if _, exists := m.users[key]; exists {
		return repository.ErrEmailTaken
	}
	m.nextID++
	user.ID = m.nextID
	m.users[key] = user
	return nil
}

func (m *memRepo) SetResetToken(_ context.Context, userID int64, token string, expiresAt time.Time) error {
	for _, u := range m.users {
		if u.ID == userID {
			u.PasswordResetToken = &token
			expires := expiresAt
			u.PasswordResetExpires = &expires
			return nil
		}
	}
	return errors.New("user not found")
}

func (m *memRepo) GetByValidResetToken(_ context.Context, token string) (*models.User, error) {
	for _, u := range m.users {
		if u.PasswordResetToken != nil && *u.PasswordResetToken == token &&
			u.PasswordResetExpires != nil && u.PasswordResetExpires.After(time.Now()) {
			return u, nil
		}
	}
	return nil, nil
}

func (m *memRepo) UpdatePasswordClearResetToken(_ context.Context, userID int64, passwordHash string) error {
	for _, u := range m.users {
		if u.ID == userID {
			u.PasswordHash = passwordHash
			u.PasswordResetToken = nil
			u.PasswordResetExpires = nil
			return nil
		}
	}
	return errors.New("user not found")
}

func newTestRouter(t *testing.T) *mux.Router {
	t.Helper()

	cfg := &config.Config{Env: "test", Secret: "test-secret"}

	tokenService, err := services.NewTokenService(cfg.Secret)
	require.NoError(t, err)

	// вне production EmailService только логирует письма
	emailService := services.NewEmailService(cfg)
	authService := services.NewAuthService(newMemRepo(), emailService)

	authHandler := handlers.NewAuthHandler(authService, tokenService, cfg)
	homeHandler := handlers.NewHomeHandler()

	router := mux.NewRouter()
	routes.InitRoutes(router, authHandler, homeHandler, tokenService)
	return router
}

func doJSON(t *testing.T, router *mux.Router, method, path string, body any, mod func(*http.Request)) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if mod != nil {
		mod(req)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	resp := map[string]any{}
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	}
	return rec, resp
}

// Полный сценарий: регистрация → вход → забыл пароль → сброс → вход с новым паролем
func TestAccountLifecycle(t *testing.T) {
	router := newTestRouter(t)

	// регистрация (email нарочно в смешанном регистре — нормализуется)
	rec, resp := doJSON(t, router, http.MethodPost, "/api/create", map[string]string{
		"name":     "Test User",
		"email":    "Test.User@test.xyz",
		"password": "Test_#123",
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, true, resp["success"])
	require.Equal(t, "Your account is now active. Congratulations!", resp["message"])

	// повторная регистрация с тем же email — конфликт
	rec, resp = doJSON(t, router, http.MethodPost, "/api/create", map[string]string{
		"name":     "Another Name",
		"email":    "test.user@test.xyz",
		"password": "otherpass",
	}, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, false, resp["success"])
	require.Equal(t, "Account with that email address already exists.", resp["message"])

	// вход
	rec, resp = doJSON(t, router, http.MethodPost, "/api/login", map[string]string{
		"email":    "test.user@test.xyz",
		"password": "Test_#123",
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "Welcome! Test User", resp["message"])
	require.Equal(t, "Test User", resp["name"])
	token, _ := resp["token"].(string)
	require.NotEmpty(t, token)

	// проверка токена: payload возвращается эхом
	rec, resp = doJSON(t, router, http.MethodPost, "/api/me", map[string]string{"token": token}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, true, resp["status"])
	message, _ := resp["message"].(string)
	require.Contains(t, message, `"name":"Test User"`)
	require.Contains(t, message, `"email":"test.user@test.xyz"`)

	// забыл пароль: вне production токен отдаётся в ответе
	rec, resp = doJSON(t, router, http.MethodPost, "/api/forgot", map[string]string{
		"email": "test.user@test.xyz",
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "Instructions sent to registered email.", resp["message"])
	require.Equal(t, true, resp["debug"])
	resetToken, _ := resp["token"].(string)
	require.Len(t, resetToken, 32)

	// сброс пароля по токену
	rec, resp = doJSON(t, router, http.MethodPost, "/api/reset/"+resetToken, map[string]string{
		"password": "Test_#123_2",
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "Password reset.", resp["message"])

	// старый пароль больше не подходит
	rec, resp = doJSON(t, router, http.MethodPost, "/api/login", map[string]string{
		"email":    "test.user@test.xyz",
		"password": "Test_#123",
	}, nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, "Invalid password.", resp["message"])

	// новый — подходит
	rec, _ = doJSON(t, router, http.MethodPost, "/api/login", map[string]string{
		"email":    "test.user@test.xyz",
		"password": "Test_#123_2",
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	// токен сброса одноразовый
	rec, resp = doJSON(t, router, http.MethodPost, "/api/reset/"+resetToken, map[string]string{
		"password": "Test_#123_3",
	}, nil)
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Equal(t, []any{"Password reset token is invalid or has expired."}, resp["errors"])
}

func TestCreate_ValidationErrors(t *testing.T) {
	router := newTestRouter(t)

	rec, resp := doJSON(t, router, http.MethodPost, "/api/create", map[string]string{
		"name":     "ab",
		"email":    "not-an-email",
		"password": "123",
	}, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	errs, ok := resp["errors"].([]any)
	require.True(t, ok)
	require.Len(t, errs, 3)

	params := make([]string, 0, len(errs))
	for _, e := range errs {
		entry, ok := e.(map[string]any)
		require.True(t, ok)
		params = append(params, entry["param"].(string))
	}
	require.Contains(t, params, "name")
	require.Contains(t, params, "email")
	require.Contains(t, params, "password")
}

func TestLogin_MalformedEmail(t *testing.T) {
	router := newTestRouter(t)

	rec, resp := doJSON(t, router, http.MethodPost, "/api/login", map[string]string{
		"email":    "broken@@example",
		"password": "Test_#123",
	}, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	errs, ok := resp["errors"].([]any)
	require.True(t, ok)
	require.NotEmpty(t, errs)
	entry := errs[0].(map[string]any)
	require.Equal(t, "email", entry["param"])
}

func TestLogin_NoSuchUser(t *testing.T) {
	router := newTestRouter(t)

	rec, resp := doJSON(t, router, http.MethodPost, "/api/login", map[string]string{
		"email":    "nobody@test.xyz",
		"password": "whatever",
	}, nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	errs, ok := resp["errors"].([]any)
	require.True(t, ok)
	entry := errs[0].(map[string]any)
	require.Equal(t, "Invalid Credentials", entry["title"])
	require.Equal(t, "No such user.", entry["errorMessage"])
}

func TestForgot_UnknownEmail(t *testing.T) {
	router := newTestRouter(t)

	rec, resp := doJSON(t, router, http.MethodPost, "/api/forgot", map[string]string{
		"email": "nobody@test.xyz",
	}, nil)
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Equal(t, []any{"Account with that email address does not exist."}, resp["errors"])
}

// Токен принимается из тела, query-параметра и обоих заголовков
func TestMe_TokenLocations(t *testing.T) {
	router := newTestRouter(t)

	_, _ = doJSON(t, router, http.MethodPost, "/api/create", map[string]string{
		"name":     "Test User",
		"email":    "test.user@test.xyz",
		"password": "Test_#123",
	}, nil)
	_, resp := doJSON(t, router, http.MethodPost, "/api/login", map[string]string{
		"email":    "test.user@test.xyz",
		"password": "Test_#123",
	}, nil)
	token := resp["token"].(string)

	cases := []struct {
		name string
		path string
		body any
		mod  func(*http.Request)
	}{
		{name: "body", path: "/api/me", body: map[string]string{"token": token}},
		{name: "query", path: "/api/me?token=" + token},
		{name: "x-access-token", path: "/api/me", mod: func(r *http.Request) {
			r.Header.Set("x-access-token", token)
		}},
		{name: "authorization bearer", path: "/api/me", mod: func(r *http.Request) {
			r.Header.Set("Authorization", "Bearer "+token)
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec, resp := doJSON(t, router, http.MethodPost, tc.path, tc.body, tc.mod)
			require.Equal(t, http.StatusOK, rec.Code)
			require.Equal(t, true, resp["status"])
		})
	}
}

func TestMe_MissingAndInvalidToken(t *testing.T) {
	router := newTestRouter(t)

	// токена нет ни в одном из четырёх мест — 403
	rec, resp := doJSON(t, router, http.MethodPost, "/api/me", nil, nil)
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Equal(t, false, resp["success"])
	require.Equal(t, "Token not found.", resp["message"])

	// мусорный токен — 401
	rec, resp = doJSON(t, router, http.MethodPost, "/api/me", map[string]string{"token": "garbage"}, nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, "Failed to authenticate token.", resp["message"])
}

func TestHomePage(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	require.Contains(t, rec.Body.String(), "<title>Home</title>")
}

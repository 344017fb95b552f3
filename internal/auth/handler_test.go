// AngelaMos | 2026
// handler_test.go

package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/huanhuanli370-gif/smart-cafeteria-system/internal/middleware"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	svc, _, _ := newTestService(t)
	r := chi.NewRouter()
	NewHandler(svc).RegisterRoutes(r, middleware.Authenticate(svc))
	return r
}

func do(h http.Handler, method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestAuthFlowOverHTTP(t *testing.T) {
	h := newTestRouter(t)

	rec := do(h, http.MethodPost, "/auth/register",
		`{"name":"Mia","email":"mia@x.edu","password":"secret1","role":"admin"}`, "")
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"role":"student"`)
	assert.NotContains(t, rec.Body.String(), "password")

	rec = do(h, http.MethodPost, "/auth/register",
		`{"name":"Mia","email":"mia@x.edu","password":"secret1"}`, "")
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(h, http.MethodPost, "/auth/login",
		`{"email":"mia@x.edu","password":"wrong"}`, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(h, http.MethodPost, "/auth/login",
		`{"email":"mia@x.edu","password":"secret1"}`, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var login struct {
		Data LoginResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &login))
	token := login.Data.Token
	require.NotEmpty(t, token)

	rec = do(h, http.MethodGet, "/auth/me", "", token)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"email":"mia@x.edu"`)

	rec = do(h, http.MethodPut, "/auth/me", `{"name":"","email":"mia@x.edu"}`, token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(h, http.MethodPost, "/auth/logout", "", token)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(h, http.MethodGet, "/auth/me", "", token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRegisterValidation(t *testing.T) {
	h := newTestRouter(t)

	rec := do(h, http.MethodPost, "/auth/register", `{"email":"a@x.edu","password":"secret1"}`, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(h, http.MethodPost, "/auth/register", `not json`, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

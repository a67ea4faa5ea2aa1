package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signToken(t *testing.T, method jwt.SigningMethod, key any, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return s
}

func validClaims() jwt.MapClaims {
	return jwt.MapClaims{
		"sub":   "a4ef1f3d-c3e8-46df-b186-5b5c837cc14b",
		"email": "jane@example.com",
		"role":  "authenticated",
		"exp":   time.Now().Add(time.Hour).Unix(),
	}
}

func serveWithAuth(t *testing.T, header string) (*httptest.ResponseRecorder, *http.Request) {
	t.Helper()
	var seen *http.Request
	h := RequireAuth(testSecret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec, seen
}

func TestRequireAuth_Valid(t *testing.T) {
	tok := signToken(t, jwt.SigningMethodHS256, []byte(testSecret), validClaims())

	rec, seen := serveWithAuth(t, "Bearer "+tok)

	require.Equal(t, http.StatusNoContent, rec.Code)
	id, ok := UserID(seen.Context())
	assert.True(t, ok)
	assert.Equal(t, "a4ef1f3d-c3e8-46df-b186-5b5c837cc14b", id)
	assert.Equal(t, "jane@example.com", UserEmail(seen.Context()))
	assert.Equal(t, "authenticated", seen.Context().Value(UserRoleKey))
}

func TestRequireAuth_Rejects(t *testing.T) {
	expired := validClaims()
	expired["exp"] = time.Now().Add(-time.Hour).Unix()

	noExp := validClaims()
	delete(noExp, "exp")

	noSub := validClaims()
	delete(noSub, "sub")

	tests := map[string]string{
		"missing header": "",
		"wrong scheme":   "Basic abc",
		"garbage":        "Bearer not-a-jwt",
		"wrong secret":   "Bearer " + signToken(t, jwt.SigningMethodHS256, []byte("other"), validClaims()),
		"wrong alg":      "Bearer " + signToken(t, jwt.SigningMethodHS512, []byte(testSecret), validClaims()),
		"expired":        "Bearer " + signToken(t, jwt.SigningMethodHS256, []byte(testSecret), expired),
		"no exp":         "Bearer " + signToken(t, jwt.SigningMethodHS256, []byte(testSecret), noExp),
		"no sub":         "Bearer " + signToken(t, jwt.SigningMethodHS256, []byte(testSecret), noSub),
	}

	for name, header := range tests {
		t.Run(name, func(t *testing.T) {
			rec, seen := serveWithAuth(t, header)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Nil(t, seen)
		})
	}
}

func TestUserID_Missing(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	_, ok := UserID(req.Context())
	assert.False(t, ok)
	assert.Empty(t, UserEmail(req.Context()))
}

func TestRequireAuth_EmptySecretRejectsAll(t *testing.T) {
	var called bool
	h := RequireAuth("")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, jwt.SigningMethodHS256, []byte("guessable"), validClaims()))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, called)
}

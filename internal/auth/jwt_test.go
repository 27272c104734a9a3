package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/m0nesy/f1kz-be/internal/models"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test-secret")

func TestGenerateAndValidate(t *testing.T) {
	t.Parallel()

	user := models.User{ID: 42, Username: "alice"}
	tok, err := GenerateJWT(user, testSecret)
	require.NoError(t, err)

	claims, err := ValidateJWT(tok, testSecret)
	require.NoError(t, err)
	require.Equal(t, int64(42), claims.UserID)
	require.Equal(t, "alice", claims.Username)
}

func TestValidateJWT_Expired(t *testing.T) {
	t.Parallel()

	// Correctly signed but already expired.
	claims := &Claims{
		UserID:   1,
		Username: "alice",
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testSecret)
	require.NoError(t, err)

	_, err = ValidateJWT(tok, testSecret)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateJWT_WrongSecret(t *testing.T) {
	t.Parallel()

	tok, err := GenerateJWT(models.User{ID: 1, Username: "alice"}, testSecret)
	require.NoError(t, err)

	_, err = ValidateJWT(tok, []byte("other-secret"))
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateJWT_Malformed(t *testing.T) {
	t.Parallel()

	_, err := ValidateJWT("not.a.jwt", testSecret)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func protectedHandler(t *testing.T, called *bool) http.Handler {
	t.Helper()
	return JWTMiddleware(testSecret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*called = true
		claims, ok := ClaimsFromContext(r.Context())
		require.True(t, ok)
		require.Equal(t, "alice", claims.Username)
		w.WriteHeader(http.StatusOK)
	}))
}

func TestJWTMiddleware_MissingHeader(t *testing.T) {
	t.Parallel()

	called := false
	rec := httptest.NewRecorder()
	protectedHandler(t, &called).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.JSONEq(t, `{"message":"No Authorization header"}`, rec.Body.String())
	require.False(t, called, "handler must not run without credentials")
}

func TestJWTMiddleware_MalformedHeader(t *testing.T) {
	t.Parallel()

	for _, header := range []string{"Bearer", "Token abc", "Bearer a b", "bearer abc"} {
		called := false
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", header)
		rec := httptest.NewRecorder()
		protectedHandler(t, &called).ServeHTTP(rec, req)

		require.Equal(t, http.StatusUnauthorized, rec.Code, "header %q", header)
		require.JSONEq(t, `{"message":"Invalid Authorization format"}`, rec.Body.String())
		require.False(t, called)
	}
}

func TestJWTMiddleware_InvalidToken(t *testing.T) {
	t.Parallel()

	called := false
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	rec := httptest.NewRecorder()
	protectedHandler(t, &called).ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.JSONEq(t, `{"message":"Invalid token"}`, rec.Body.String())
	require.False(t, called)
}

func TestJWTMiddleware_ValidToken(t *testing.T) {
	t.Parallel()

	tok, err := GenerateJWT(models.User{ID: 7, Username: "alice"}, testSecret)
	require.NoError(t, err)

	called := false
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec := httptest.NewRecorder()
	protectedHandler(t, &called).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, called)
}

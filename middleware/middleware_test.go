package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"travellocal/config"
	"travellocal/services/backend"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memTokens struct {
	tokens map[string]string
	sets   int
}

func (m *memTokens) GetAccessToken(ctx context.Context, userID string) (string, error) {
	return m.tokens[userID], nil
}

func (m *memTokens) SetAccessToken(ctx context.Context, userID, token string) error {
	m.sets++
	m.tokens[userID] = token
	return nil
}

// stubVerifier accepts the tokens in good and answers err for the rest.
type stubVerifier struct {
	good  map[string]bool
	err   error
	calls int
}

func (v *stubVerifier) VerifyToken(ctx context.Context, token string) error {
	v.calls++
	if v.good[token] {
		return nil
	}
	return v.err
}

func signedWith(t *testing.T, key, sub string) string {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": sub})
	s, err := token.SignedString([]byte(key))
	require.NoError(t, err)
	return s
}

func signedToken(t *testing.T, sub string) string {
	return signedWith(t, "irrelevant", sub)
}

func newRouter(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/", append(handlers, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"userId":   c.GetString(UserIDKey),
			"token":    c.GetString(TokenKey),
			"verified": c.GetBool(VerifiedKey),
		})
	})...)
	return r
}

func get(r http.Handler, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestJWTAuthMiddlewareStoresBackendVerifiedToken(t *testing.T) {
	tokens := &memTokens{tokens: map[string]string{}}
	token := signedToken(t, "user-1")
	verifier := &stubVerifier{good: map[string]bool{token: true}}
	r := newRouter(JWTAuthMiddleware(tokens, verifier))

	w := get(r, token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"userId":"user-1"`)
	assert.Contains(t, w.Body.String(), `"verified":true`)
	assert.Equal(t, token, tokens.tokens["user-1"])

	// A stored token is trusted without asking the backend again.
	w = get(r, token)
	assert.Contains(t, w.Body.String(), `"verified":true`)
	assert.Equal(t, 1, tokens.sets)
	assert.Equal(t, 1, verifier.calls)
}

func TestJWTAuthMiddlewareRejectsForgedSubject(t *testing.T) {
	tokens := &memTokens{tokens: map[string]string{"victim": "victims-real-token"}}
	verifier := &stubVerifier{err: backend.ErrUnauthorized}
	r := newRouter(JWTAuthMiddleware(tokens, verifier))

	w := get(r, signedWith(t, "attacker-chosen-key", "victim"))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "victims-real-token", tokens.tokens["victim"])
	assert.Zero(t, tokens.sets)
}

func TestJWTAuthMiddlewareUnverifiedWhenBackendUnreachable(t *testing.T) {
	tokens := &memTokens{tokens: map[string]string{"victim": "victims-real-token"}}
	verifier := &stubVerifier{err: errors.New("connection refused")}
	token := signedWith(t, "attacker-chosen-key", "victim")

	r := newRouter(JWTAuthMiddleware(tokens, verifier))
	w := get(r, token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"verified":false`)
	assert.Equal(t, "victims-real-token", tokens.tokens["victim"])
	assert.Zero(t, tokens.sets)

	guarded := newRouter(JWTAuthMiddleware(tokens, verifier), RequireVerifiedIdentity())
	assert.Equal(t, http.StatusUnauthorized, get(guarded, token).Code)
}

func TestJWTAuthMiddlewareSignatureVerified(t *testing.T) {
	config.AppConfig.JWTSecret = "s3cret"
	defer func() { config.AppConfig.JWTSecret = "" }()

	tokens := &memTokens{tokens: map[string]string{}}
	verifier := &stubVerifier{err: backend.ErrUnauthorized}
	r := newRouter(JWTAuthMiddleware(tokens, verifier), RequireVerifiedIdentity())

	token := signedWith(t, "s3cret", "user-3")
	w := get(r, token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, token, tokens.tokens["user-3"])
	assert.Zero(t, verifier.calls)

	assert.Equal(t, http.StatusUnauthorized, get(r, signedWith(t, "attacker-chosen-key", "user-3")).Code)
	assert.Equal(t, token, tokens.tokens["user-3"])
}

func TestJWTAuthMiddlewareQueryToken(t *testing.T) {
	r := newRouter(JWTAuthMiddleware(nil, nil))
	req := httptest.NewRequest(http.MethodGet, "/?access_token="+signedToken(t, "user-2"), nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"userId":"user-2"`)
	assert.Contains(t, w.Body.String(), `"verified":false`)
}

func TestJWTAuthMiddlewareRejects(t *testing.T) {
	r := newRouter(JWTAuthMiddleware(nil, nil))

	for _, header := range []string{"", "Basic abc", "Bearer not-a-jwt"} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		req.Header.Set("Accept-Language", "en")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code, header)
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	r := newRouter(RateLimitMiddleware(3))

	codes := make([]int, 0, 4)
	for i := 0; i < 4; i++ {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Forwarded-For", "10.0.0.1, 172.16.0.1")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{200, 200, 200, http.StatusTooManyRequests}, codes)

	// A different client has its own budget.
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Real-IP", "10.0.0.2")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequestLoggerSetsRequestID(t *testing.T) {
	r := newRouter(RequestLogger())
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "abc")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc", w.Header().Get("X-Request-ID"))
}

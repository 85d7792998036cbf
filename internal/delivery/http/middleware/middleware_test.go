package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/config"
	"storefront/internal/auth"
	"storefront/internal/infrastructure/snapshot"
	"storefront/internal/session"
)

// echo reports the session and identity the chain attached.
var echo = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	id := auth.FromContext(r.Context())
	w.Header().Set("X-Test-Session", session.IDFromContext(r.Context()))
	w.Header().Set("X-Test-User", id.UserID)
	w.Header().Set("X-Test-Role", id.Role.String())
	w.WriteHeader(http.StatusOK)
})

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestSessionIssuesCookie(t *testing.T) {
	h := Session(true)(echo)

	rec := serve(h, httptest.NewRequest(http.MethodGet, "/", nil))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	c := cookies[0]
	assert.Equal(t, SessionCookie, c.Name)
	assert.True(t, c.HttpOnly)
	assert.True(t, c.Secure)
	assert.Equal(t, http.SameSiteLaxMode, c.SameSite)
	_, err := uuid.Parse(c.Value)
	require.NoError(t, err)
	assert.Equal(t, c.Value, rec.Header().Get(SessionHeader))
	assert.Equal(t, c.Value, rec.Header().Get("X-Test-Session"))
}

func TestSessionReusesExistingID(t *testing.T) {
	h := Session(false)(echo)
	sid := uuid.NewString()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: sid})
	rec := serve(h, req)
	assert.Empty(t, rec.Result().Cookies())
	assert.Equal(t, sid, rec.Header().Get("X-Test-Session"))

	other := uuid.NewString()
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: sid})
	req.Header.Set(SessionHeader, other)
	rec = serve(h, req)
	assert.Equal(t, other, rec.Header().Get("X-Test-Session"), "header wins over cookie")
}

func TestSessionReplacesMalformedID(t *testing.T) {
	h := Session(false)(echo)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(SessionHeader, "../../etc/passwd")
	rec := serve(h, req)

	got := rec.Header().Get("X-Test-Session")
	assert.NotEqual(t, "../../etc/passwd", got)
	_, err := uuid.Parse(got)
	assert.NoError(t, err)
	assert.Len(t, rec.Result().Cookies(), 1)
}

type identifyFixture struct {
	handler  http.Handler
	verifier *auth.TokenVerifier
	tokens   *auth.SessionTokens
}

func newIdentifyFixture(next http.Handler) identifyFixture {
	verifier := auth.NewTokenVerifier("middleware-secret")
	tokens := auth.NewSessionTokens(snapshot.NewMemoryStore())
	a := NewAuth(verifier, tokens)
	return identifyFixture{
		handler:  Session(false)(a.Identify(next)),
		verifier: verifier,
		tokens:   tokens,
	}
}

func TestIdentify(t *testing.T) {
	f := newIdentifyFixture(echo)
	sid := uuid.NewString()

	t.Run("guest", func(t *testing.T) {
		rec := serve(f.handler, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "guest", rec.Header().Get("X-Test-Role"))
	})

	t.Run("bearer", func(t *testing.T) {
		token, err := f.verifier.Issue("u-1", "", auth.RoleAdmin, time.Hour)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := serve(f.handler, req)
		assert.Equal(t, "u-1", rec.Header().Get("X-Test-User"))
		assert.Equal(t, "admin", rec.Header().Get("X-Test-Role"))
	})

	t.Run("invalid bearer", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer not-a-jwt")
		rec := serve(f.handler, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("stored token", func(t *testing.T) {
		token, err := f.verifier.Issue("u-2", "", auth.RoleBuyer, time.Hour)
		require.NoError(t, err)
		require.NoError(t, f.tokens.Save(context.Background(), sid, token))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(SessionHeader, sid)
		rec := serve(f.handler, req)
		assert.Equal(t, "u-2", rec.Header().Get("X-Test-User"))
	})

	t.Run("expired stored token is dropped", func(t *testing.T) {
		token, err := f.verifier.Issue("u-3", "", auth.RoleBuyer, -time.Minute)
		require.NoError(t, err)
		require.NoError(t, f.tokens.Save(context.Background(), sid, token))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(SessionHeader, sid)
		rec := serve(f.handler, req)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "guest", rec.Header().Get("X-Test-Role"))

		stored, err := f.tokens.Load(context.Background(), sid)
		require.NoError(t, err)
		assert.Empty(t, stored)
	})
}

func TestRequireAuthAndRole(t *testing.T) {
	f := newIdentifyFixture(RequireAuth(RequireRole(auth.RoleShopOwner, auth.RoleAdmin)(echo)))

	rec := serve(f.handler, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	for role, want := range map[auth.Role]int{
		auth.RoleBuyer:     http.StatusForbidden,
		auth.RoleShopOwner: http.StatusOK,
		auth.RoleAdmin:     http.StatusOK,
	} {
		token, err := f.verifier.Issue("u", "", role, time.Hour)
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		assert.Equal(t, want, serve(f.handler, req).Code, role.String())
	}
}

func TestRateLimiter(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	rl := NewRateLimiter(ctx, 1, 2, time.Minute, time.Minute)
	defer rl.Shutdown()
	h := rl.Middleware()(echo)

	request := func(ip string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Forwarded-For", ip+", 10.0.0.1")
		return serve(h, req)
	}

	assert.Equal(t, http.StatusOK, request("203.0.113.7").Code)
	assert.Equal(t, http.StatusOK, request("203.0.113.7").Code)
	limited := request("203.0.113.7")
	assert.Equal(t, http.StatusTooManyRequests, limited.Code)
	assert.Equal(t, "1", limited.Header().Get("Retry-After"))

	assert.Equal(t, http.StatusOK, request("198.51.100.2").Code)
	assert.Equal(t, 2, rl.Len())
}

func TestRateLimiterSweepsIdleClients(t *testing.T) {
	rl := NewRateLimiter(context.Background(), 10, 10, time.Hour, time.Minute)
	defer rl.Shutdown()

	start := time.Now()
	rl.now = func() time.Time { return start }
	_, ok := rl.take("192.0.2.1")
	require.True(t, ok)
	rl.now = func() time.Time { return start.Add(50 * time.Second) }
	_, ok = rl.take("192.0.2.2")
	require.True(t, ok)

	rl.sweep(start.Add(90 * time.Second))
	assert.Equal(t, 1, rl.Len())

	rl.sweep(start.Add(5 * time.Minute))
	assert.Zero(t, rl.Len())
}

func TestRetrySeconds(t *testing.T) {
	assert.Equal(t, 1, retrySeconds(0))
	assert.Equal(t, 1, retrySeconds(50*time.Millisecond))
	assert.Equal(t, 3, retrySeconds(2100*time.Millisecond))
}

func TestGetClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.10:5555"
	assert.Equal(t, "192.0.2.10", getClientIP(req))

	req.Header.Set("X-Real-IP", "192.0.2.11")
	assert.Equal(t, "192.0.2.11", getClientIP(req))

	req.Header.Set("X-Forwarded-For", " 192.0.2.12 , 10.0.0.1")
	assert.Equal(t, "192.0.2.12", getClientIP(req))
}

func TestCORS(t *testing.T) {
	h := NewCORSMiddleware(&config.Config{AllowedOrigin: "https://shop.example.com, https://admin.example.com"})(echo)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/cart", nil)
	req.Header.Set("Origin", "https://admin.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := serve(h, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://admin.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), SessionHeader)
	assert.Equal(t, corsMaxAge, rec.Header().Get("Access-Control-Max-Age"))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rec = serve(h, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))

	wildcard := NewCORSMiddleware(&config.Config{AllowedOrigin: "*"})(echo)
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec = serve(wildcard, req)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRequestLoggerKeepsRequestID(t *testing.T) {
	h := RequestLogger(echo)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "req-123")
	rec := serve(h, req)
	assert.Equal(t, "req-123", rec.Header().Get("X-Request-ID"))

	rec = serve(h, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

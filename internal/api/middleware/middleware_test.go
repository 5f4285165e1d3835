package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-TechService/internal/domain"
	"github.com/m04kA/SMC-TechService/pkg/logger"
	"github.com/m04kA/SMC-TechService/pkg/metrics"
)

const secret = "test-secret"

func signToken(t *testing.T, key string, claims Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(key))
	require.NoError(t, err)
	return token
}

func validClaims(userID int64, role string) Claims {
	return Claims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "smc-auth",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
}

func echoActor() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, ok := ActorFromContext(r.Context())
		if !ok {
			w.WriteHeader(http.StatusTeapot)
			return
		}
		w.Header().Set("X-Actor-Role", string(actor.Role))
		w.WriteHeader(http.StatusNoContent)
	})
}

func doRequest(h http.Handler, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestAuthenticator(t *testing.T) {
	auth := NewAuthenticator(secret, "smc-auth", logger.NewNop())
	h := auth.Middleware(echoActor())

	rec := doRequest(h, signToken(t, secret, validClaims(5, "")))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "customer", rec.Header().Get("X-Actor-Role"))

	rec = doRequest(h, signToken(t, secret, validClaims(1, "admin")))
	assert.Equal(t, "admin", rec.Header().Get("X-Actor-Role"))

	cases := map[string]string{
		"missing":      "",
		"garbage":      "not-a-jwt",
		"wrong secret": signToken(t, "other", validClaims(5, "customer")),
		"unknown role": signToken(t, secret, validClaims(5, "root")),
		"no user":      signToken(t, secret, validClaims(0, "customer")),
	}
	expired := validClaims(5, "customer")
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))
	cases["expired"] = signToken(t, secret, expired)

	wrongIssuer := validClaims(5, "customer")
	wrongIssuer.Issuer = "someone-else"
	cases["wrong issuer"] = signToken(t, secret, wrongIssuer)

	for name, token := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, http.StatusUnauthorized, doRequest(h, token).Code)
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	h := RequireAdmin(echoActor())

	serve := func(ctx context.Context) int {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil).WithContext(ctx))
		return rec.Code
	}

	assert.Equal(t, http.StatusUnauthorized, serve(context.Background()))
	assert.Equal(t, http.StatusForbidden, serve(WithActor(context.Background(), domain.Actor{UserID: 5, Role: domain.RoleCustomer})))
	assert.Equal(t, http.StatusNoContent, serve(WithActor(context.Background(), domain.Actor{UserID: 1, Role: domain.RoleAdmin})))
}

func TestRequestID(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFromContext(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, rec.Header().Get(HeaderRequestID))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderRequestID, "abc-123")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", seen)
	assert.Equal(t, "abc-123", rec.Header().Get(HeaderRequestID))
}

type stubLimiter struct {
	allowed bool
	err     error
	keys    []string
}

func (l *stubLimiter) Allow(_ context.Context, key string) (bool, error) {
	l.keys = append(l.keys, key)
	return l.allowed, l.err
}

func TestRateLimit(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	ctx := WithActor(context.Background(), domain.Actor{UserID: 42, Role: domain.RoleCustomer})

	serve := func(l *stubLimiter) int {
		rec := httptest.NewRecorder()
		RateLimit(l, logger.NewNop())(ok).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil).WithContext(ctx))
		return rec.Code
	}

	allow := &stubLimiter{allowed: true}
	assert.Equal(t, http.StatusOK, serve(allow))
	assert.Equal(t, []string{"user:42"}, allow.keys)

	assert.Equal(t, http.StatusTooManyRequests, serve(&stubLimiter{allowed: false}))
	assert.Equal(t, http.StatusOK, serve(&stubLimiter{err: errors.New("redis down")}), "limiter outage fails open")
}

func TestMetricsMiddleware(t *testing.T) {
	m := metrics.NewWithRegisterer("test", prometheus.NewRegistry())

	r := mux.NewRouter()
	r.Use(MetricsMiddleware(m))
	r.HandleFunc("/items/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}).Methods(http.MethodGet)

	for _, id := range []string{"1", "2"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/items/"+id, nil))
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/items/{id}", "404")))
}

func TestTracing_PassesStatus(t *testing.T) {
	h := Tracing(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))
	assert.Equal(t, http.StatusCreated, rec.Code)
}

package middleware_test

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"

	"industry-console/internal/auth"
	"industry-console/internal/middleware"
)

const secret = "mw-secret"

func whoami(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte(middleware.UserID(r.Context())))
}

func TestRequireAuth(t *testing.T) {
	tok, err := auth.MakeToken("u1", "", secret)
	require.NoError(t, err)
	h := middleware.RequireAuth(secret, http.HandlerFunc(whoami))

	tests := []struct {
		name   string
		setup  func(r *http.Request)
		status int
		body   string
	}{
		{"no token", func(*http.Request) {}, http.StatusUnauthorized, `{"error":"no token"}`},
		{"garbage", func(r *http.Request) { r.Header.Set("Authorization", "Bearer nope") }, http.StatusUnauthorized, `{"error":"bad token"}`},
		{"header", func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+tok) }, http.StatusOK, "u1"},
		{"cookie", func(r *http.Request) { r.AddCookie(&http.Cookie{Name: "access_token", Value: tok}) }, http.StatusOK, "u1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/appointments", nil)
			tt.setup(r)
			w := httptest.NewRecorder()
			h.ServeHTTP(w, r)
			assert.Equal(t, tt.status, w.Code)
			if tt.status == http.StatusOK {
				assert.Equal(t, tt.body, w.Body.String())
			} else {
				assert.JSONEq(t, tt.body, w.Body.String())
			}
		})
	}
}

func grpcInfo(method string) *grpc.UnaryServerInfo {
	return &grpc.UnaryServerInfo{FullMethod: "/console.v1.ConsoleService/" + method}
}

func echoUser(ctx context.Context, _ any) (any, error) {
	return middleware.UserID(ctx), nil
}

func TestAuthInterceptor(t *testing.T) {
	intercept := middleware.Auth(secret)

	out, err := intercept(context.Background(), nil, grpcInfo("Health"), echoUser)
	require.NoError(t, err)
	assert.Equal(t, "", out)

	_, err = intercept(context.Background(), nil, grpcInfo("GetSettings"), echoUser)
	assert.Equal(t, codes.Unauthenticated, status.Code(err))

	ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs("authorization", "Bearer bad"))
	_, err = intercept(ctx, nil, grpcInfo("GetSettings"), echoUser)
	assert.Equal(t, codes.Unauthenticated, status.Code(err))

	tok, err := auth.MakeToken("u2", "", secret)
	require.NoError(t, err)
	ctx = metadata.NewIncomingContext(context.Background(), metadata.Pairs("authorization", "Bearer "+tok))
	out, err = intercept(ctx, nil, grpcInfo("GetSettings"), echoUser)
	require.NoError(t, err)
	assert.Equal(t, "u2", out)
}

func TestRateLimitInterceptor(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	rl := middleware.NewRateLimiter(ctx, 0.001, 2)
	intercept := middleware.RateLimit(rl)

	pctx := peer.NewContext(ctx, &peer.Peer{Addr: &net.TCPAddr{IP: net.IPv4(10, 0, 0, 1), Port: 1}})
	for range 2 {
		_, err := intercept(pctx, nil, grpcInfo("SaveSettings"), echoUser)
		require.NoError(t, err)
	}
	_, err := intercept(pctx, nil, grpcInfo("SaveSettings"), echoUser)
	assert.Equal(t, codes.ResourceExhausted, status.Code(err))

	// a new connection from the same host shares the bucket
	pctx2 := peer.NewContext(ctx, &peer.Peer{Addr: &net.TCPAddr{IP: net.IPv4(10, 0, 0, 1), Port: 2}})
	_, err = intercept(pctx2, nil, grpcInfo("CreateAppointment"), echoUser)
	assert.Equal(t, codes.ResourceExhausted, status.Code(err))

	other := peer.NewContext(ctx, &peer.Peer{Addr: &net.TCPAddr{IP: net.IPv4(10, 0, 0, 2), Port: 1}})
	_, err = intercept(other, nil, grpcInfo("SaveSettings"), echoUser)
	assert.NoError(t, err)

	// reads are never limited
	_, err = intercept(pctx, nil, grpcInfo("ListAppointments"), echoUser)
	assert.NoError(t, err)
}

func TestRateLimitUsesForwardedHostFromLoopback(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	rl := middleware.NewRateLimiter(ctx, 0.001, 1)
	intercept := middleware.RateLimit(rl)

	from := func(ip net.IP, forwarded string) context.Context {
		c := peer.NewContext(ctx, &peer.Peer{Addr: &net.TCPAddr{IP: ip, Port: 40000}})
		return metadata.NewIncomingContext(c, metadata.Pairs(middleware.ForwardedForKey, forwarded))
	}
	bridge := net.IPv4(127, 0, 0, 1)

	// two browsers behind the bridge get separate buckets
	_, err := intercept(from(bridge, "203.0.113.7"), nil, grpcInfo("SaveSettings"), echoUser)
	require.NoError(t, err)
	_, err = intercept(from(bridge, "203.0.113.8"), nil, grpcInfo("SaveSettings"), echoUser)
	require.NoError(t, err)
	_, err = intercept(from(bridge, "203.0.113.7"), nil, grpcInfo("SaveSettings"), echoUser)
	assert.Equal(t, codes.ResourceExhausted, status.Code(err))

	// a remote peer cannot pick its bucket
	remote := net.IPv4(198, 51, 100, 1)
	_, err = intercept(from(remote, "a"), nil, grpcInfo("SaveSettings"), echoUser)
	require.NoError(t, err)
	_, err = intercept(from(remote, "b"), nil, grpcInfo("SaveSettings"), echoUser)
	assert.Equal(t, codes.ResourceExhausted, status.Code(err))
}

func TestLimitHTTP(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	rl := middleware.NewRateLimiter(ctx, 0.001, 1)
	h := middleware.LimitHTTP(rl, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	call := func(addr string) *httptest.ResponseRecorder {
		r := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
		r.RemoteAddr = addr
		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)
		return w
	}
	assert.Equal(t, http.StatusNoContent, call("10.0.0.1:1000").Code)
	w := call("10.0.0.1:2000")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))
	assert.Equal(t, http.StatusNoContent, call("10.0.0.2:1000").Code, "other hosts have their own bucket")
}

func TestCORSAndLog(t *testing.T) {
	h := middleware.CORS("", middleware.Log(zaptest.NewLogger(t), http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})))

	r := httptest.NewRequest(http.MethodOptions, "/services", nil)
	r.Header.Set("Origin", "http://admin.local")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://admin.local", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Credentials"), "echoed origins never get cookies")
	assert.Contains(t, w.Header().Get("Access-Control-Expose-Headers"), "Grpc-Status")

	r = httptest.NewRequest(http.MethodGet, "/services", nil)
	w = httptest.NewRecorder()
	h.ServeHTTP(w, r)
	assert.Equal(t, http.StatusTeapot, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSConfiguredOriginAllowsCredentials(t *testing.T) {
	h := middleware.CORS("https://console.example.com", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {}))

	r := httptest.NewRequest(http.MethodGet, "/services", nil)
	r.Header.Set("Origin", "https://evil.example.net")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	assert.Equal(t, "https://console.example.com", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
}

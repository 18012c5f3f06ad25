package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/festival-coordinator/internal/config"
	"github.com/iliyamo/festival-coordinator/internal/logging"
)

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func serve(e *echo.Echo, method, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func TestCacheHitAndInvalidation(t *testing.T) {
	_, rdb := newRedis(t)
	cfg := config.CacheConfig{Enabled: true, Methods: map[string]bool{"GET": true}, TTL: time.Minute, KeyStrategy: "route_query", Prefix: "test:cache", MaxBodyBytes: 1 << 20}

	e := echo.New()
	e.Use(NewRedisCache(cfg, rdb))
	count := 0
	e.GET("/groups", func(c echo.Context) error {
		count++
		return c.JSON(http.StatusOK, echo.Map{"n": count})
	})
	e.POST("/groups", func(c echo.Context) error { return c.NoContent(http.StatusCreated) })
	e.POST("/broken", func(c echo.Context) error { return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "bad"}) })

	first := serve(e, http.MethodGet, "/groups")
	assert.Equal(t, "MISS", first.Header().Get("X-Cache"))
	second := serve(e, http.MethodGet, "/groups")
	assert.Equal(t, "HIT", second.Header().Get("X-Cache"))
	assert.JSONEq(t, first.Body.String(), second.Body.String())
	assert.Equal(t, 1, count)

	// A rejected write keeps the cache.
	serve(e, http.MethodPost, "/broken")
	assert.Equal(t, "HIT", serve(e, http.MethodGet, "/groups").Header().Get("X-Cache"))

	serve(e, http.MethodPost, "/groups")
	third := serve(e, http.MethodGet, "/groups")
	assert.Equal(t, "MISS", third.Header().Get("X-Cache"))
	assert.JSONEq(t, `{"n":2}`, third.Body.String())
}

func TestInvalidateCacheOutsideHTTP(t *testing.T) {
	_, rdb := newRedis(t)
	cfg := config.CacheConfig{Enabled: true, Methods: map[string]bool{"GET": true}, TTL: time.Minute, KeyStrategy: "route_query", Prefix: "test:cache", MaxBodyBytes: 1 << 20}

	e := echo.New()
	e.Use(NewRedisCache(cfg, rdb))
	count := 0
	e.GET("/groups/:id/festivals", func(c echo.Context) error {
		count++
		return c.JSON(http.StatusOK, echo.Map{"n": count})
	})

	serve(e, http.MethodGet, "/groups/1/festivals")
	assert.Equal(t, "HIT", serve(e, http.MethodGet, "/groups/1/festivals").Header().Get("X-Cache"))

	require.NoError(t, CacheInvalidator(cfg, rdb)(context.Background()))
	rec := serve(e, http.MethodGet, "/groups/1/festivals")
	assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))
	assert.JSONEq(t, `{"n":2}`, rec.Body.String())

	assert.NoError(t, InvalidateCache(context.Background(), nil, cfg))
	assert.NoError(t, InvalidateCache(context.Background(), rdb, config.CacheConfig{}))
}

func TestCacheSkipsErrorsAndQueryVariants(t *testing.T) {
	_, rdb := newRedis(t)
	cfg := config.CacheConfig{Enabled: true, Methods: map[string]bool{"GET": true}, TTL: time.Minute, KeyStrategy: "route_query", Prefix: "test:cache"}

	e := echo.New()
	e.Use(NewRedisCache(cfg, rdb))
	e.GET("/members/:id", func(c echo.Context) error {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "member not found"})
	})
	e.GET("/reviews", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"q": c.QueryParam("festival_id")})
	})

	serve(e, http.MethodGet, "/members/1")
	assert.Equal(t, "MISS", serve(e, http.MethodGet, "/members/1").Header().Get("X-Cache"))

	serve(e, http.MethodGet, "/reviews?festival_id=a")
	rec := serve(e, http.MethodGet, "/reviews?festival_id=b")
	assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))
	assert.JSONEq(t, `{"q":"b"}`, rec.Body.String())
}

func TestCacheDisabledWithoutRedis(t *testing.T) {
	e := echo.New()
	e.Use(NewRedisCache(config.CacheConfig{Enabled: true}, nil))
	e.GET("/", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
	assert.Empty(t, serve(e, http.MethodGet, "/").Header().Get("X-Cache"))
}

func TestTokenBucketBlocks(t *testing.T) {
	_, rdb := newRedis(t)
	cfg := config.RateLimitConfig{Enabled: true, Capacity: 2, RefillTokens: 1, RefillInterval: time.Hour, TTL: 2 * time.Hour, KeyStrategy: "ip_route", Prefix: "test:rl"}

	e := echo.New()
	e.Use(NewTokenBucket(cfg, rdb))
	e.GET("/groups", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	assert.Equal(t, http.StatusOK, serve(e, http.MethodGet, "/groups").Code)
	rec := serve(e, http.MethodGet, "/groups")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))

	rec = serve(e, http.MethodGet, "/groups")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.Contains(t, rec.Body.String(), "rate limit exceeded")
}

func TestTokenBucketFailsOpen(t *testing.T) {
	mr, rdb := newRedis(t)
	mr.Close()
	cfg := config.RateLimitConfig{Enabled: true, Capacity: 1, RefillTokens: 1, RefillInterval: time.Second, TTL: time.Minute, Prefix: "test:rl"}

	e := echo.New()
	e.Use(NewTokenBucket(cfg, rdb))
	e.GET("/", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	assert.Equal(t, http.StatusOK, serve(e, http.MethodGet, "/").Code)
	assert.Equal(t, http.StatusOK, serve(e, http.MethodGet, "/").Code)
}

func TestBuildRateKey(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/calls", nil)
	req.Header.Set(echo.HeaderXRealIP, "10.0.0.7")
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetPath("/calls")

	assert.Equal(t, "rl:ip:10.0.0.7:route:GET /calls", buildRateKey(config.RateLimitConfig{Prefix: "rl"}, c))
	assert.Equal(t, "rl:ip:10.0.0.7", buildRateKey(config.RateLimitConfig{Prefix: "rl", KeyStrategy: "ip"}, c))
}

func TestCorrelationID(t *testing.T) {
	e := echo.New()
	e.Use(CorrelationID())
	var seen string
	e.GET("/", func(c echo.Context) error {
		seen = logging.CorrelationIDFromContext(c.Request().Context())
		return c.NoContent(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(logging.CorrelationHeader, "abc-123")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", seen)
	assert.Equal(t, "abc-123", rec.Header().Get(logging.CorrelationHeader))

	rec = serve(e, http.MethodGet, "/")
	assert.NotEmpty(t, rec.Header().Get(logging.CorrelationHeader))
	assert.Equal(t, seen, rec.Header().Get(logging.CorrelationHeader))
}

func TestMetricsAndLogger(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	e := echo.New()
	e.Use(m.Middleware(), CorrelationID(), RequestLogger())
	e.GET("/groups/:id", func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusNotFound, "group not found")
	})

	rec := serve(e, http.MethodGet, "/groups/42")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	n, err := testutil.GatherAndCount(reg, "festivald_http_requests_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	expected := `
# HELP festivald_http_requests_total HTTP requests by method, route and status.
# TYPE festivald_http_requests_total counter
festivald_http_requests_total{method="GET",route="/groups/:id",status="404"} 1
`
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "festivald_http_requests_total"))
}

func TestCORSPreflight(t *testing.T) {
	e := echo.New()
	e.Pre(CORS([]string{"http://localhost:5173"}))
	e.GET("/groups", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/groups", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/groups", nil)
	req.Header.Set("Origin", "http://evil.example")
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

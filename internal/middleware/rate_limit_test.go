package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/chequeflow/backend/internal/pkg/metrics"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func newLimitedRouter(limiter *RateLimiter) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(limiter.Middleware())
	r.POST("/query", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": true}) })
	return r
}

func serve(r *gin.Engine, remoteAddr string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/query", nil)
	req.RemoteAddr = remoteAddr
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimiterAllowsBurst(t *testing.T) {
	r := newLimitedRouter(NewRateLimiter("burst_test", 10, 2))
	before := testutil.ToFloat64(metrics.RateLimitAllowed.WithLabelValues("burst_test"))

	require.Equal(t, http.StatusOK, serve(r, "10.0.0.1:1000").Code)
	require.Equal(t, http.StatusOK, serve(r, "10.0.0.1:1000").Code)

	require.Equal(t, 2.0, testutil.ToFloat64(metrics.RateLimitAllowed.WithLabelValues("burst_test"))-before)
}

func TestRateLimiterRejectsWhenExceeded(t *testing.T) {
	r := newLimitedRouter(NewRateLimiter("reject_test", 0.01, 1))
	before := testutil.ToFloat64(metrics.RateLimitRejected.WithLabelValues("reject_test"))

	require.Equal(t, http.StatusOK, serve(r, "10.0.0.2:1000").Code)

	w := serve(r, "10.0.0.2:1000")
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	require.Equal(t, "1", w.Header().Get("Retry-After"))
	require.JSONEq(t, `{"error":"Rate limit exceeded"}`, w.Body.String())
	require.Equal(t, 1.0, testutil.ToFloat64(metrics.RateLimitRejected.WithLabelValues("reject_test"))-before)

	// 不同客户端使用独立的令牌桶
	require.Equal(t, http.StatusOK, serve(r, "10.0.0.3:1000").Code)
}

func TestRateLimiterDisabled(t *testing.T) {
	r := newLimitedRouter(NewRateLimiter("disabled_test", 0, 0))
	for i := 0; i < 5; i++ {
		require.Equal(t, http.StatusOK, serve(r, "10.0.0.4:1000").Code)
	}
}

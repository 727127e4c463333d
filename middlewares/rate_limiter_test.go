package middlewares

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func TestRateLimiter_BurstThenReject(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rl := NewRateLimiter(LimiterConfig{RPS: 1, Burst: 2, IdleTTL: time.Minute})

	r := gin.New()
	r.Use(rl.Middleware(func(c *gin.Context) string { return "fixed" }))
	r.GET("/x", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
		codes = append(codes, w.Code)
	}

	if codes[0] != http.StatusOK || codes[1] != http.StatusOK {
		t.Fatalf("burst requests should pass, got %v", codes)
	}
	if codes[2] != http.StatusTooManyRequests {
		t.Fatalf("third request should be limited, got %v", codes)
	}
}

func TestRateLimiter_KeysAreIndependent(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rl := NewRateLimiter(LimiterConfig{RPS: 1, Burst: 1, IdleTTL: time.Minute})

	r := gin.New()
	r.Use(rl.Middleware(func(c *gin.Context) string { return c.Query("k") }))
	r.GET("/x", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	first := httptest.NewRecorder()
	r.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/x?k=a", nil))
	second := httptest.NewRecorder()
	r.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/x?k=b", nil))

	if first.Code != http.StatusOK || second.Code != http.StatusOK {
		t.Fatalf("distinct keys should not share a bucket: %d, %d", first.Code, second.Code)
	}
}

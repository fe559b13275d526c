package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiterPerClient(t *testing.T) {
	rl := NewRateLimiter(0.001, 2)
	h := rl.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	do := func(addr string) int {
		req := httptest.NewRequest(http.MethodGet, "/api/nearest", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, do("10.0.0.1:1234"))
	assert.Equal(t, http.StatusOK, do("10.0.0.1:1235"))
	assert.Equal(t, http.StatusTooManyRequests, do("10.0.0.1:1236"))
	assert.Equal(t, http.StatusOK, do("10.0.0.2:1234"))
}

package middlewares

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newRouter(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handlers = append(handlers, func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	r.Any("/x", handlers...)
	return r
}

func do(r http.Handler, method, remote string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, "/x", nil)
	req.RemoteAddr = remote
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestOnlyAllowLocal(t *testing.T) {
	r := newRouter(OnlyAllowLocal)
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "127.0.0.1:5000").Code)
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "[::1]:5000").Code)
	w := do(r, http.MethodGet, "192.168.1.20:5000")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "Forbidden")
}

func TestPerClientLimiter(t *testing.T) {
	l := NewPerMinuteLimiter(2)
	r := newRouter(l.Middleware())
	assert.Equal(t, http.StatusOK, do(r, http.MethodPost, "10.0.0.1:1").Code)
	assert.Equal(t, http.StatusOK, do(r, http.MethodPost, "10.0.0.1:1").Code)
	assert.Equal(t, http.StatusTooManyRequests, do(r, http.MethodPost, "10.0.0.1:1").Code)
	// other clients have their own bucket
	assert.Equal(t, http.StatusOK, do(r, http.MethodPost, "10.0.0.2:1").Code)
}

func TestAllowAllCORS(t *testing.T) {
	r := newRouter(AllowAllCORS())
	w := do(r, http.MethodOptions, "127.0.0.1:1")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "127.0.0.1:1").Code)
}

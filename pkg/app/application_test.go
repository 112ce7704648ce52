package app

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"barbershop/pkg/config"
	"barbershop/pkg/logger"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
)

type routes func(*httprouter.Router)

func (f routes) RegisterRoutes(r *httprouter.Router) { f(r) }

func testConfig() *config.Config {
	return &config.Config{
		Port:               "0",
		RateLimitRequests:  2,
		RateLimitWindow:    time.Minute,
		RequestTimeout:     time.Second,
		MaxRequestSize:     1024,
		ShutdownTimeout:    time.Second,
		CORSAllowedOrigins: []string{"*"},
		Log:                logger.Discard(),
	}
}

func newTestApp() *Application {
	a := NewApplication(testConfig())
	health := routes(func(r *httprouter.Router) {
		r.GET("/health", func(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
			w.WriteHeader(http.StatusOK)
		})
	})
	api := routes(func(r *httprouter.Router) {
		r.POST("/api/book", func(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
			w.WriteHeader(http.StatusCreated)
		})
		r.GET("/api/check-availability", func(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
			w.WriteHeader(http.StatusOK)
		})
	})
	a.SetApp(health, api)
	return a
}

func TestApplication_HealthSkipsRateLimit(t *testing.T) {
	a := newTestApp()
	defer a.rateLimiter.Stop()

	for range 5 {
		w := httptest.NewRecorder()
		a.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	}
}

func TestApplication_APIStack(t *testing.T) {
	a := newTestApp()
	defer a.rateLimiter.Stop()

	req := httptest.NewRequest(http.MethodPost, "/api/book", strings.NewReader(`{}`))
	w := httptest.NewRecorder()
	a.Handler().ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)

	req = httptest.NewRequest(http.MethodPost, "/api/book", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Origin", "https://legendbarber.example")
	w = httptest.NewRecorder()
	a.Handler().ServeHTTP(w, req)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	w = httptest.NewRecorder()
	a.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/check-availability", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

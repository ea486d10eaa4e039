package errors

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecoveryMiddleware(t *testing.T) {
	h, logs := newTestHandler(false)

	panicking := RecoveryMiddleware(h)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("template exploded")
	}))

	w := httptest.NewRecorder()
	panicking.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, TypeInternal, decodeProblem(t, w)["type"])
	assert.Contains(t, logs.String(), "template exploded")
}

func TestRecoveryMiddleware_PassThrough(t *testing.T) {
	h, _ := newTestHandler(false)

	ok := RecoveryMiddleware(h)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	w := httptest.NewRecorder()
	ok.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestRecoveryMiddleware_AbortHandler(t *testing.T) {
	h, _ := newTestHandler(false)

	aborting := RecoveryMiddleware(h)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic(http.ErrAbortHandler)
	}))

	assert.PanicsWithValue(t, http.ErrAbortHandler, func() {
		aborting.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	})
}

func TestRecoveryMiddleware_AfterResponseStarted(t *testing.T) {
	h, logs := newTestHandler(false)

	streaming := RecoveryMiddleware(h)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/csv")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("metric,value,unit\n"))
		panic("writer exploded")
	}))

	w := httptest.NewRecorder()
	streaming.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/analyze", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "metric,value,unit\n", w.Body.String())
	assert.Contains(t, logs.String(), "panic after response started")
}

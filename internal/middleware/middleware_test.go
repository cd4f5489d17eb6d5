package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/bingogame-go/internal/testutil"
)

func TestRequestIDGeneratesID(t *testing.T) {
	var seen string
	handler := RequestID()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.NotEmpty(t, seen)
	assert.Equal(t, seen, rec.Header().Get(RequestIDHeader))
}

func TestRequestIDKeepsClientID(t *testing.T) {
	var seen string
	handler := RequestID()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, "abc-123", seen)
}

func TestLoggingRecordsStatus(t *testing.T) {
	logger, buf := testutil.BufferLogger()
	handler := RequestID()(Logging(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("short and stout"))
	})))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/pot", nil))

	out := buf.String()
	assert.Contains(t, out, `"status":418`)
	assert.Contains(t, out, `"size":15`)
	assert.Contains(t, out, `"path":"/pot"`)
	assert.Contains(t, out, `"request_id":"`)
}

func TestRecoveryCallsHandler(t *testing.T) {
	logger, buf := testutil.BufferLogger()
	handler := RequestID()(Recovery(logger, DefaultPanicHandler)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "req-7")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, buf.String(), `"request_id":"req-7"`)
	assert.Contains(t, buf.String(), `"error":"boom"`)
}

func TestRecoveryRepanicsOnAbort(t *testing.T) {
	handler := Recovery(testutil.NopLogger(), DefaultPanicHandler)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic(http.ErrAbortHandler)
	}))

	assert.PanicsWithError(t, http.ErrAbortHandler.Error(), func() {
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	})
}

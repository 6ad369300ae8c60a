package log

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, parseLevel("DEBUG"))
	assert.Equal(t, zerolog.WarnLevel, parseLevel(" warning "))
	assert.Equal(t, zerolog.InfoLevel, parseLevel("nonsense"))
}

func TestNewWithWriterAddsComponent(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(Config{Level: "info", Component: "relay"}, &buf)
	l.Info().Msg("hello")
	l.Debug().Msg("hidden")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "relay", rec[FieldComponent])
	assert.Equal(t, "hello", rec["message"])
}

func TestCtxFallsBackToGlobal(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(Config{}, &buf)
	ctx := WithLogger(context.Background(), l)
	got := Ctx(ctx)
	got.Info().Msg("x")
	assert.NotZero(t, buf.Len())

	assert.NotPanics(t, func() {
		gl := Ctx(context.Background())
		gl.Debug().Msg("global")
	})
}

func TestHTTPMiddlewareSetsRequestID(t *testing.T) {
	var buf bytes.Buffer
	h := HTTPMiddleware(NewWithWriter(Config{}, &buf))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Forwarded-For", "10.0.0.7, 10.0.0.1")
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(headerRequestID))
	assert.Contains(t, buf.String(), `"client_ip":"10.0.0.7"`)
	assert.Contains(t, buf.String(), `"status":418`)
}

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/atelier-bot/pkg/ctxutil"
)

func serveWithRequestID(t *testing.T, incoming string) (ctxID, headerID string) {
	t.Helper()

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctxID = ctxutil.RequestIDFromCtx(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	if incoming != "" {
		req.Header.Set(RequestIDHeader, incoming)
	}
	rec := httptest.NewRecorder()
	RequestID()(handler).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	return ctxID, rec.Header().Get(RequestIDHeader)
}

func TestRequestID_ReuseIncoming(t *testing.T) {
	ctxID, headerID := serveWithRequestID(t, "probe-7")

	assert.Equal(t, "probe-7", ctxID)
	assert.Equal(t, "probe-7", headerID)
}

func TestRequestID_GenerateNew(t *testing.T) {
	ctxID, headerID := serveWithRequestID(t, "")

	_, err := uuid.Parse(ctxID)
	assert.NoError(t, err, "generated id should be a UUID")
	assert.Equal(t, ctxID, headerID)
}

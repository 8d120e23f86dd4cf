package httpapi

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientLimiter_PerClient(t *testing.T) {
	l := NewClientLimiter(0.01, 2)

	assert.True(t, l.Allow("10.0.0.1"))
	assert.True(t, l.Allow("10.0.0.1"))
	assert.False(t, l.Allow("10.0.0.1"))

	// Другой клиент не страдает от чужого лимита
	assert.True(t, l.Allow("10.0.0.2"))
}

func TestClientLimiter_Cleanup(t *testing.T) {
	l := NewClientLimiter(1, 1)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	l.Allow("old")
	now = now.Add(time.Hour)
	l.Allow("fresh")

	assert.Equal(t, 1, l.Cleanup())
	assert.Len(t, l.entries, 1)
	assert.Contains(t, l.entries, "fresh")
}

func TestRateLimit_BookEndpoint(t *testing.T) {
	env := newTestEnv(t, 10, NewClientLimiter(0.01, 1))
	body := `{"userId":"u","slotId":` + jsonInt(env.slot.ID) + `}`

	send := func(remote string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/book", strings.NewReader(body))
		req.RemoteAddr = remote
		rec := httptest.NewRecorder()
		env.handler.ServeHTTP(rec, req)
		return rec
	}

	require.Equal(t, http.StatusOK, send("10.0.0.1:1000").Code)

	rec := send("10.0.0.1:1001")
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))

	assert.Equal(t, http.StatusOK, send("10.0.0.2:1000").Code)

	// Чтение списка слотов лимит не трогает
	req := httptest.NewRequest(http.MethodGet, "/slots", nil)
	req.RemoteAddr = "10.0.0.1:1002"
	rec = httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestClientKey(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.168.1.5:4321"
	assert.Equal(t, "192.168.1.5", clientKey(req))

	req.RemoteAddr = "weird"
	assert.Equal(t, "weird", clientKey(req))

	req.RemoteAddr = ""
	assert.Equal(t, "unknown", clientKey(req))
}

package rest

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/p1nant0m/packet-eater/config"
	"github.com/p1nant0m/packet-eater/internal/admission"
	"github.com/p1nant0m/packet-eater/internal/cache"
	"github.com/p1nant0m/packet-eater/internal/queue"
	"github.com/p1nant0m/packet-eater/internal/store"
	"github.com/p1nant0m/packet-eater/internal/store/duckdb"
	v1 "github.com/p1nant0m/packet-eater/pkg/api/v1"
	"github.com/p1nant0m/packet-eater/pkg/options"
	srvv1 "github.com/p1nant0m/packet-eater/service/rest/service/v1"
)

const (
	localAddr  = "127.0.0.1:40000"
	publicAddr = "203.0.113.9:40000"
)

type testServer struct {
	router *gin.Engine
	store  store.Factory
	queue  *queue.MemoryQueue
	cache  *cache.Cache
}

func newTestServer(t *testing.T, buffer int) *testServer {
	t.Helper()
	f, err := duckdb.New(context.Background(), options.NewInMemoryDuckDBOptions())
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })

	q := queue.NewMemory(buffer, 10*time.Millisecond)
	c := cache.New(f.Submitters(), time.Minute)
	srv := srvv1.NewService(srvv1.Dependencies{
		Store:       f,
		Queue:       q,
		Gate:        admission.NewGate(c, f.Submitters()),
		Cache:       c,
		Hints:       cache.NewSessionHints(10 * time.Second),
		RedactNames: true,
	})

	cfg := config.NewConfig().Server
	cfg.Mode = gin.TestMode
	router, err := NewRouter(srv, cfg)
	require.NoError(t, err)

	return &testServer{router: router, store: f, queue: q, cache: c}
}

func (s *testServer) do(method, path, remote string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		json.NewEncoder(&buf).Encode(b)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.RemoteAddr = remote
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func uploadBody(payload []byte) map[string]interface{} {
	return map[string]interface{}{
		"name":      "Nanaa",
		"zone_id":   230,
		"version":   "1.2",
		"payload":   base64.StdEncoding.EncodeToString(payload),
		"timestamp": 1714564800000.0,
		"direction": 1,
		"origin":    3,
	}
}

func TestUploadFromLocalOriginIsQueued(t *testing.T) {
	s := newTestServer(t, 8)

	payload := append([]byte{0x01, 0x03}, []byte("..Nanaa..")...)
	w := s.do(http.MethodPut, "/upload", localAddr, uploadBody(payload))
	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())

	var resp v1.UploadResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, v1.StatusQueued, resp.Status)
	assert.Len(t, resp.SubmitterIdentifier, 64)
	assert.NotEmpty(t, resp.MessageID)
	assert.Nil(t, resp.CaptureSessionIdentifier)

	d, err := s.queue.Consume(context.Background())
	require.NoError(t, err)
	msg, err := v1.DecodeIngestMessage(d.Body())
	require.NoError(t, err)
	assert.Equal(t, resp.SubmitterIdentifier, msg.SubmitterIdentifier)
	assert.Equal(t, resp.MessageID, msg.MessageID)
	assert.Equal(t, uint16(230), msg.ZoneID)
	assert.Equal(t, v1.ClientToServer, msg.Direction)
	assert.Equal(t, v1.OriginWindowerV5, msg.Origin)

	data, err := msg.Payload()
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01, 0x03, '.', '.', 0, 0, 0, 0, 0, '.', '.'}, data, "name must be redacted")

	w = s.do(http.MethodPost, "/upload", localAddr, uploadBody([]byte{0x34, 0x00}))
	assert.Equal(t, http.StatusAccepted, w.Code)
}

func TestUploadFromUnknownPublicOrigin(t *testing.T) {
	s := newTestServer(t, 8)

	w := s.do(http.MethodPut, "/upload", publicAddr, uploadBody([]byte{0x34, 0x00}))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), v1.StatusNotWhitelisted)

	n, err := s.store.Submitters().Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), n, "first contact must create the submitter")

	qlen, _ := s.queue.Len(context.Background())
	assert.Equal(t, int64(0), qlen)
}

func TestAdminWhitelistAndBan(t *testing.T) {
	s := newTestServer(t, 8)

	w := s.do(http.MethodPut, "/upload", publicAddr, uploadBody([]byte{0x34, 0x00}))
	require.Equal(t, http.StatusUnauthorized, w.Code)

	list := s.do(http.MethodGet, "/api/v1/submitters", localAddr, nil)
	require.Equal(t, http.StatusOK, list.Code)
	var listed struct {
		Data []v1.Submitter `json:"data"`
	}
	require.NoError(t, json.Unmarshal(list.Body.Bytes(), &listed))
	require.Len(t, listed.Data, 1)
	identifier := listed.Data[0].Identifier

	w = s.do(http.MethodPut, "/api/v1/submitters/"+identifier, localAddr, `{"whitelisted": true}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(http.MethodPut, "/upload", publicAddr, uploadBody([]byte{0x34, 0x00}))
	assert.Equal(t, http.StatusAccepted, w.Code, "whitelisting must take effect without a refresh")

	w = s.do(http.MethodPut, "/api/v1/submitters/"+identifier, localAddr, `{"banned": true}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(http.MethodPut, "/upload", publicAddr, uploadBody([]byte{0x34, 0x00}))
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), v1.StatusBanned)

	w = s.do(http.MethodDelete, "/api/v1/submitters/"+identifier, localAddr, nil)
	require.Equal(t, http.StatusOK, w.Code)
	_, ok := s.cache.Get(identifier)
	assert.False(t, ok)

	w = s.do(http.MethodDelete, "/api/v1/submitters/"+identifier, localAddr, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAdminRejectsRemoteClients(t *testing.T) {
	s := newTestServer(t, 8)

	w := s.do(http.MethodGet, "/api/v1/submitters", publicAddr, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestUploadMalformed(t *testing.T) {
	s := newTestServer(t, 8)

	missing := uploadBody([]byte{0x34, 0x00})
	delete(missing, "direction")
	badDirection := uploadBody([]byte{0x34, 0x00})
	badDirection["direction"] = 2
	badBase64 := uploadBody(nil)
	badBase64["payload"] = "%%%"

	for name, body := range map[string]interface{}{
		"not json":      `{"payload":`,
		"missing field": missing,
		"bad direction": badDirection,
		"bad base64":    badBase64,
	} {
		t.Run(name, func(t *testing.T) {
			w := s.do(http.MethodPut, "/upload", localAddr, body)
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
			assert.Contains(t, w.Body.String(), v1.StatusInvalid)
		})
	}
}

func TestUploadQueueFailure(t *testing.T) {
	s := newTestServer(t, 1)

	w := s.do(http.MethodPut, "/upload", localAddr, uploadBody([]byte{0x34, 0x00}))
	require.Equal(t, http.StatusAccepted, w.Code)

	w = s.do(http.MethodPut, "/upload", localAddr, uploadBody([]byte{0x34, 0x00}))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), v1.StatusError)
}

func TestRootRedirectsToPackets(t *testing.T) {
	s := newTestServer(t, 8)

	w := s.do(http.MethodGet, "/", publicAddr, nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/packets", w.Header().Get("Location"))
}

func TestStats(t *testing.T) {
	s := newTestServer(t, 8)

	for _, path := range []string{"/packets", "/api/v1/stats"} {
		w := s.do(http.MethodGet, path, publicAddr, nil)
		require.Equal(t, http.StatusOK, w.Code)

		var stats v1.Stats
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
		assert.Equal(t, "No packets have been submitted yet! :(", stats.Summary)
		assert.Equal(t, "0 B", stats.PacketBytesHuman)
		assert.NotNil(t, stats.Host)
	}
}

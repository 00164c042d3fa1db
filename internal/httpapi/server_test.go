package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestServer(t *testing.T) *Server {
	return NewServer(NewSessionRegistry(newTestFactory(t)), nil)
}

func TestServer_CreateAndPostMessage(t *testing.T) {
	srv := newTestServer(t)

	createReq := httptest.NewRequest(http.MethodPost, "/sessions", nil)
	createRec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(createRec, createReq)
	require.Equal(t, http.StatusCreated, createRec.Code)

	var created struct {
		SessionID string `json:"session_id"`
	}
	require.NoError(t, json.Unmarshal(createRec.Body.Bytes(), &created))
	require.NotEmpty(t, created.SessionID)

	body, _ := json.Marshal(postMessageRequest{Text: "hello"})
	msgReq := httptest.NewRequest(http.MethodPost, "/sessions/"+created.SessionID+"/messages", bytes.NewReader(body))
	msgReq.Header.Set("Content-Type", "application/json")
	msgRec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(msgRec, msgReq)
	require.Equal(t, http.StatusOK, msgRec.Code)

	var resp postMessageResponse
	require.NoError(t, json.Unmarshal(msgRec.Body.Bytes(), &resp))
	require.False(t, resp.Fold.Triggered)
}

func TestServer_GetSummaryAndWindow(t *testing.T) {
	srv := newTestServer(t)

	body, _ := json.Marshal(postMessageRequest{Text: "hi"})
	msgReq := httptest.NewRequest(http.MethodPost, "/sessions/s1/messages", bytes.NewReader(body))
	msgReq.Header.Set("Content-Type", "application/json")
	srv.Handler().ServeHTTP(httptest.NewRecorder(), msgReq)

	summaryReq := httptest.NewRequest(http.MethodGet, "/sessions/s1/summary", nil)
	summaryRec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(summaryRec, summaryReq)
	require.Equal(t, http.StatusOK, summaryRec.Code)

	windowReq := httptest.NewRequest(http.MethodGet, "/sessions/s1/window", nil)
	windowRec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(windowRec, windowReq)
	require.Equal(t, http.StatusOK, windowRec.Code)

	var decoded struct {
		Window []map[string]string `json:"window"`
	}
	require.NoError(t, json.Unmarshal(windowRec.Body.Bytes(), &decoded))
	require.Len(t, decoded.Window, 2) // user + assistant
}

func TestServer_AuthMiddleware_RejectsMissingToken(t *testing.T) {
	srv := NewServer(NewSessionRegistry(newTestFactory(t)), []byte("secret"))

	req := httptest.NewRequest(http.MethodPost, "/sessions", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

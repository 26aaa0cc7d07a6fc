package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"support-bot-go/internal/model"
)

type stubConversationService struct {
	history    []model.ChatMessage
	deleted    int64
	err        error
	gotSession string
}

func (s *stubConversationService) GetHistory(ctx context.Context, sessionID string) ([]model.ChatMessage, error) {
	s.gotSession = sessionID
	if s.err != nil {
		return nil, s.err
	}
	return s.history, nil
}

func (s *stubConversationService) ClearHistory(ctx context.Context, sessionID string) (int64, error) {
	s.gotSession = sessionID
	if s.err != nil {
		return 0, s.err
	}
	return s.deleted, nil
}

func newConversationRouter(stub *stubConversationService) *gin.Engine {
	r := gin.New()
	h := NewConversationHandler(stub)
	r.GET("/history", h.GetHistory)
	r.POST("/clear_history", h.ClearHistory)
	return r
}

func TestGetHistoryReturnsBareArray(t *testing.T) {
	stub := &stubConversationService{history: []model.ChatMessage{
		{Role: "user", Content: "hi"},
		{Role: "assistant", Content: "hello"},
	}}
	r := newConversationRouter(stub)

	w := performRequest(r, http.MethodGet, "/history?session_id=s1", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "s1", stub.gotSession)
	// 响应是裸数组，不包外层对象。
	assert.JSONEq(t, `[
		{"role": "user", "content": "hi"},
		{"role": "assistant", "content": "hello"}
	]`, w.Body.String())
}

func TestGetHistoryDefaultsSession(t *testing.T) {
	stub := &stubConversationService{history: []model.ChatMessage{}}
	r := newConversationRouter(stub)

	w := performRequest(r, http.MethodGet, "/history", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "default", stub.gotSession)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestGetHistoryFailure(t *testing.T) {
	stub := &stubConversationService{err: errors.New("db down")}
	r := newConversationRouter(stub)

	w := performRequest(r, http.MethodGet, "/history", "")

	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error": "Internal server error", "detail": "db down"}`, w.Body.String())
}

func TestClearHistory(t *testing.T) {
	stub := &stubConversationService{deleted: 4}
	r := newConversationRouter(stub)

	w := performRequest(r, http.MethodPost, "/clear_history", `{"session_id": "s1"}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "s1", stub.gotSession)
	assert.JSONEq(t, `{"cleared": true, "session_id": "s1"}`, w.Body.String())
}

func TestClearHistoryWithoutBodyDefaultsSession(t *testing.T) {
	stub := &stubConversationService{}
	r := newConversationRouter(stub)

	w := performRequest(r, http.MethodPost, "/clear_history", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "default", stub.gotSession)
	assert.JSONEq(t, `{"cleared": true, "session_id": "default"}`, w.Body.String())
}

func TestClearHistoryFailure(t *testing.T) {
	stub := &stubConversationService{err: errors.New("db down")}
	r := newConversationRouter(stub)

	w := performRequest(r, http.MethodPost, "/clear_history", `{"session_id": "s1"}`)

	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error": "Internal server error", "detail": "db down"}`, w.Body.String())
}

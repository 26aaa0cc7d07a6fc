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
	"support-bot-go/internal/service"
)

// stubChatService 记录入参并返回预设结果，SessionID 回填为实际入参。
type stubChatService struct {
	outcome    *model.PipelineOutcome
	err        error
	gotSession string
	gotQuery   string
}

func (s *stubChatService) Respond(ctx context.Context, sessionID, query string) (*model.PipelineOutcome, error) {
	s.gotSession = sessionID
	s.gotQuery = query
	if s.err != nil {
		return nil, s.err
	}
	out := *s.outcome
	out.SessionID = sessionID
	return &out, nil
}

func newChatRouter(stub *stubChatService) *gin.Engine {
	r := gin.New()
	r.POST("/chat", NewChatHandler(stub).Chat)
	return r
}

func TestChatRespondsWithOutcome(t *testing.T) {
	score := 0.333
	stub := &stubChatService{outcome: &model.PipelineOutcome{
		Response:   "Go to settings",
		Source:     model.SourceFAQ,
		MatchScore: &score,
		Action:     model.ActionResponded,
	}}
	r := newChatRouter(stub)

	w := performRequest(r, http.MethodPost, "/chat", `{"session_id": "s1", "query": "reset password"}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "s1", stub.gotSession)
	assert.Equal(t, "reset password", stub.gotQuery)
	assert.JSONEq(t, `{
		"response": "Go to settings",
		"source": "faq",
		"match_score": 0.333,
		"action": "responded",
		"session_id": "s1"
	}`, w.Body.String())
}

func TestChatDefaultsSessionID(t *testing.T) {
	stub := &stubChatService{outcome: &model.PipelineOutcome{
		Response: "hi there",
		Source:   "llm:model-a",
		Action:   model.ActionResponded,
	}}
	r := newChatRouter(stub)

	w := performRequest(r, http.MethodPost, "/chat", `{"query": "hello"}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "default", stub.gotSession)
	// 无匹配得分时 match_score 字段整体省略。
	assert.NotContains(t, w.Body.String(), "match_score")
}

func TestChatRejectsMissingQuery(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "no body", body: ""},
		{name: "malformed json", body: `{"query": `},
		{name: "missing query field", body: `{"session_id": "s1"}`},
		{name: "empty query", body: `{"query": ""}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := &stubChatService{}
			r := newChatRouter(stub)

			w := performRequest(r, http.MethodPost, "/chat", tt.body)

			require.Equal(t, http.StatusBadRequest, w.Code)
			assert.JSONEq(t, `{"error": "No query provided"}`, w.Body.String())
			// 非法请求不应触达业务层。
			assert.Empty(t, stub.gotQuery)
		})
	}
}

func TestChatBackendFailure(t *testing.T) {
	stub := &stubChatService{err: &service.BackendError{Detail: "last failure"}}
	r := newChatRouter(stub)

	w := performRequest(r, http.MethodPost, "/chat", `{"query": "hello"}`)

	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error": "AI backend failed", "detail": "last failure"}`, w.Body.String())
}

func TestChatUnexpectedError(t *testing.T) {
	stub := &stubChatService{err: errors.New("db down")}
	r := newChatRouter(stub)

	w := performRequest(r, http.MethodPost, "/chat", `{"query": "hello"}`)

	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error": "Internal server error", "detail": "db down"}`, w.Body.String())
}

func TestChatServiceLevelNoQuery(t *testing.T) {
	stub := &stubChatService{err: service.ErrNoQuery}
	r := newChatRouter(stub)

	w := performRequest(r, http.MethodPost, "/chat", `{"query": "x"}`)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error": "No query provided"}`, w.Body.String())
}

// Package handler 包含了处理 HTTP 请求的控制器逻辑。
package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"support-bot-go/internal/service"
	"support-bot-go/pkg/log"
)

// ChatHandler 负责处理聊天请求。
type ChatHandler struct {
	chatService service.ChatService
}

// NewChatHandler 创建一个新的 ChatHandler。
func NewChatHandler(chatService service.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

// chatRequest 是 POST /chat 的请求体。session_id 缺省为 default。
type chatRequest struct {
	SessionID string `json:"session_id"`
	Query     string `json:"query" binding:"required"`
}

// Chat 处理一次聊天请求，返回管道的结构化结果。
func (h *ChatHandler) Chat(c *gin.Context) {
	var req chatRequest
	// 请求体缺失、非法或没有 query 都按同一个客户端错误处理。
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No query provided"})
		return
	}
	if req.SessionID == "" {
		req.SessionID = "default"
	}

	outcome, err := h.chatService.Respond(c.Request.Context(), req.SessionID, req.Query)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, outcome)
}

// writeError 将管道错误映射为对外的错误形态。
// 成功与失败的响应形态严格不同，失败从不携带看似成功的字段。
func (h *ChatHandler) writeError(c *gin.Context, err error) {
	if errors.Is(err, service.ErrNoQuery) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No query provided"})
		return
	}

	var backendErr *service.BackendError
	if errors.As(err, &backendErr) {
		log.Errorf("[ChatHandler] 生成后端全部失败: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":  "AI backend failed",
			"detail": backendErr.Detail,
		})
		return
	}

	log.Error("[ChatHandler] 处理聊天请求时发生未预期错误", err)
	c.JSON(http.StatusInternalServerError, gin.H{
		"error":  "Internal server error",
		"detail": err.Error(),
	})
}

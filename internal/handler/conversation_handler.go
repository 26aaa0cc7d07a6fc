// Package handler 包含了处理 HTTP 请求的控制器逻辑。
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"support-bot-go/internal/service"
	"support-bot-go/pkg/log"
)

// ConversationHandler 处理与对话历史相关的 API 请求。
type ConversationHandler struct {
	service service.ConversationService
}

// NewConversationHandler 创建一个新的 ConversationHandler。
func NewConversationHandler(service service.ConversationService) *ConversationHandler {
	return &ConversationHandler{service: service}
}

// GetHistory 返回指定会话按写入顺序排列的全部消息。
func (h *ConversationHandler) GetHistory(c *gin.Context) {
	sessionID := c.DefaultQuery("session_id", "default")

	history, err := h.service.GetHistory(c.Request.Context(), sessionID)
	if err != nil {
		log.Error("[ConversationHandler] 查询会话历史失败", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":  "Internal server error",
			"detail": err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, history)
}

// clearHistoryRequest 是 POST /clear_history 的请求体，可整体省略。
type clearHistoryRequest struct {
	SessionID string `json:"session_id"`
}

// ClearHistory 清空指定会话的全部消息，对空会话同样返回成功。
func (h *ConversationHandler) ClearHistory(c *gin.Context) {
	var req clearHistoryRequest
	// 请求体缺失时按默认会话处理。
	_ = c.ShouldBindJSON(&req)
	if req.SessionID == "" {
		req.SessionID = "default"
	}

	deleted, err := h.service.ClearHistory(c.Request.Context(), req.SessionID)
	if err != nil {
		log.Error("[ConversationHandler] 清空会话历史失败", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":  "Internal server error",
			"detail": err.Error(),
		})
		return
	}

	log.Infof("[ConversationHandler] 会话 %s 已清空, 删除 %d 条消息", req.SessionID, deleted)
	c.JSON(http.StatusOK, gin.H{"cleared": true, "session_id": req.SessionID})
}

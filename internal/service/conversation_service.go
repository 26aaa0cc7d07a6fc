// Package service 包含了应用的业务逻辑层。
package service

import (
	"context"

	"support-bot-go/internal/model"
	"support-bot-go/internal/repository"
)

// ConversationService 定义了对话历史的查询与清除接口。
type ConversationService interface {
	// GetHistory 按写入顺序返回会话的全部消息。
	GetHistory(ctx context.Context, sessionID string) ([]model.ChatMessage, error)
	// ClearHistory 删除会话的全部消息并返回删除条数。
	ClearHistory(ctx context.Context, sessionID string) (int64, error)
}

type conversationService struct {
	repo repository.ConversationRepository
}

// NewConversationService 创建一个新的 ConversationService。
func NewConversationService(repo repository.ConversationRepository) ConversationService {
	return &conversationService{repo: repo}
}

// GetHistory 获取会话的完整消息历史。
func (s *conversationService) GetHistory(ctx context.Context, sessionID string) ([]model.ChatMessage, error) {
	return s.repo.GetHistory(ctx, sessionID)
}

// ClearHistory 清空会话历史，对不存在的会话同样成功。
func (s *conversationService) ClearHistory(ctx context.Context, sessionID string) (int64, error) {
	return s.repo.ClearHistory(ctx, sessionID)
}

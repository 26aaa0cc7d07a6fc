// Package repository 提供了数据访问层的实现。
package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"

	"support-bot-go/internal/model"
	"support-bot-go/pkg/log"
)

// historyCacheTTL 控制 Redis 中会话历史缓存的保留时长。
const historyCacheTTL = 7 * 24 * time.Hour

// ConversationRepository 定义了对话历史记录的持久化操作接口。
type ConversationRepository interface {
	// AppendMessage 追加一条消息，返回前保证已写入权威存储。
	AppendMessage(ctx context.Context, sessionID, role, content string) error
	// GetHistory 按写入顺序返回会话的全部消息，角色归一化为 user/assistant。
	GetHistory(ctx context.Context, sessionID string) ([]model.ChatMessage, error)
	// ClearHistory 删除会话的全部消息并返回删除条数，对空会话幂等。
	ClearHistory(ctx context.Context, sessionID string) (int64, error)
}

// conversationRepository 是 ConversationRepository 的 GORM+Redis 实现。
// MySQL 是唯一权威存储，Redis 只作为历史读取的旁路缓存，
// 缓存层的任何错误都被降级为日志，不影响调用结果。
type conversationRepository struct {
	db          *gorm.DB
	redisClient *redis.Client
}

// NewConversationRepository 创建一个新的 ConversationRepository 实例。
func NewConversationRepository(db *gorm.DB, redisClient *redis.Client) ConversationRepository {
	return &conversationRepository{db: db, redisClient: redisClient}
}

func (r *conversationRepository) historyCacheKey(sessionID string) string {
	return "conversation:history:" + sessionID
}

// AppendMessage 将消息写入 MySQL，随后让该会话的历史缓存失效。
func (r *conversationRepository) AppendMessage(ctx context.Context, sessionID, role, content string) error {
	msg := &model.Message{
		SessionID: sessionID,
		Role:      role,
		Content:   content,
	}
	if err := r.db.WithContext(ctx).Create(msg).Error; err != nil {
		return fmt.Errorf("failed to append message: %w", err)
	}

	if err := r.redisClient.Del(ctx, r.historyCacheKey(sessionID)).Err(); err != nil {
		log.Warnf("清理会话历史缓存失败: session=%s, err=%v", sessionID, err)
	}
	return nil
}

// GetHistory 先查 Redis 缓存，未命中时回源 MySQL 并回填缓存。
func (r *conversationRepository) GetHistory(ctx context.Context, sessionID string) ([]model.ChatMessage, error) {
	key := r.historyCacheKey(sessionID)

	cached, err := r.redisClient.Get(ctx, key).Result()
	if err == nil {
		var messages []model.ChatMessage
		if err := json.Unmarshal([]byte(cached), &messages); err == nil {
			return messages, nil
		}
		log.Warnf("会话历史缓存内容损坏，回源数据库: session=%s", sessionID)
	} else if err != redis.Nil {
		log.Warnf("读取会话历史缓存失败，回源数据库: session=%s, err=%v", sessionID, err)
	}

	var rows []model.Message
	if err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("id asc").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to get conversation history: %w", err)
	}

	messages := make([]model.ChatMessage, 0, len(rows))
	for _, row := range rows {
		role := "user"
		if row.Role == "assistant" {
			role = "assistant"
		}
		messages = append(messages, model.ChatMessage{Role: role, Content: row.Content})
	}

	if jsonData, err := json.Marshal(messages); err == nil {
		if err := r.redisClient.Set(ctx, key, jsonData, historyCacheTTL).Err(); err != nil {
			log.Warnf("回填会话历史缓存失败: session=%s, err=%v", sessionID, err)
		}
	}

	return messages, nil
}

// ClearHistory 删除会话在 MySQL 中的全部消息并清理缓存。
func (r *conversationRepository) ClearHistory(ctx context.Context, sessionID string) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Delete(&model.Message{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to clear conversation history: %w", result.Error)
	}

	if err := r.redisClient.Del(ctx, r.historyCacheKey(sessionID)).Err(); err != nil {
		log.Warnf("清理会话历史缓存失败: session=%s, err=%v", sessionID, err)
	}
	return result.RowsAffected, nil
}

// Package model 包含了应用的数据模型定义。
package model

import "time"

// ChatMessage 代表一条角色消息，是历史查询和 LLM 上下文使用的对外形态。
type ChatMessage struct {
	Role    string `json:"role"` // "user" 或 "assistant"
	Content string `json:"content"`
}

// Message 代表持久化在 conversations 表中的一条消息记录。
// 自增主键同时充当会话内的单调序号，历史检索按其升序排列。
type Message struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	SessionID string    `gorm:"type:varchar(64);index;not null" json:"sessionId"`
	Role      string    `gorm:"type:varchar(16);not null" json:"role"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

func (Message) TableName() string {
	return "conversations"
}

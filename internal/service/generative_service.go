// Package service 包含了应用的业务逻辑层。
package service

import (
	"context"
	"strings"

	"support-bot-go/internal/config"
	"support-bot-go/pkg/llm"
	"support-bot-go/pkg/log"
)

// escalationToken 是模型按系统指令在带内发出的转人工信号。
// 回复中任意位置出现该词元都视为升级。
const escalationToken = "ESCALATE_TO_AGENT"

// GenerativeReply 是一次成功的生成调用结果。
// Reply 为模型原文；Escalated 为真时由调用方用固定话术替换。
type GenerativeReply struct {
	Reply     string
	Model     string
	Escalated bool
}

// GenerativeService 定义了生成式回复的接口。
type GenerativeService interface {
	// Generate 按配置顺序依次尝试模型列表，返回第一个成功的回复。
	// 单个模型失败记录告警后换下一个；全部失败返回 *BackendError，
	// 携带最后一次观察到的错误详情。尝试之间没有退避等待。
	Generate(ctx context.Context, messages []llm.Message) (*GenerativeReply, error)
}

type generativeService struct {
	cfg    config.LLMConfig
	client llm.Client
}

// NewGenerativeService 创建一个新的 GenerativeService 实例。
func NewGenerativeService(cfg config.LLMConfig, client llm.Client) GenerativeService {
	return &generativeService{cfg: cfg, client: client}
}

// Generate 执行模型回退循环。
func (s *generativeService) Generate(ctx context.Context, messages []llm.Message) (*GenerativeReply, error) {
	var lastErr error
	for _, m := range s.cfg.Models {
		reply, err := s.client.ChatCompletion(ctx, m, messages)
		if err != nil {
			log.Warnf("模型 %s 调用失败: %v", m, err)
			lastErr = err
			continue
		}
		return &GenerativeReply{
			Reply:     reply,
			Model:     m,
			Escalated: strings.Contains(reply, escalationToken),
		}, nil
	}

	detail := ""
	if lastErr != nil {
		detail = lastErr.Error()
	}
	return nil, &BackendError{Detail: detail}
}

// Package service 包含了应用的业务逻辑层。
package service

import (
	"context"
	"fmt"
	"time"

	"support-bot-go/internal/model"
	"support-bot-go/internal/repository"
	"support-bot-go/pkg/events"
	"support-bot-go/pkg/kafka"
	"support-bot-go/pkg/llm"
	"support-bot-go/pkg/log"
)

// ChatService 定义了聊天管道的对外接口。
type ChatService interface {
	// Respond 按固定顺序执行 升级判定 → 知识库匹配 → 生成式兜底，
	// 每个成功分支恰好追加一对消息（先 user 后 assistant）后返回结果；
	// 模型全部失败时不追加任何消息。
	Respond(ctx context.Context, sessionID, query string) (*model.PipelineOutcome, error)
}

type chatService struct {
	escalationService EscalationService
	faqService        FAQService
	generativeService GenerativeService
	conversationRepo  repository.ConversationRepository
	systemPrompt      string
	handoffMessage    string
}

// NewChatService 创建一个新的 ChatService 实例。
func NewChatService(
	escalationService EscalationService,
	faqService FAQService,
	generativeService GenerativeService,
	conversationRepo repository.ConversationRepository,
	systemPrompt string,
	handoffMessage string,
) ChatService {
	return &chatService{
		escalationService: escalationService,
		faqService:        faqService,
		generativeService: generativeService,
		conversationRepo:  conversationRepo,
		systemPrompt:      systemPrompt,
		handoffMessage:    handoffMessage,
	}
}

// Respond 协调一次完整的管道调用。
func (s *chatService) Respond(ctx context.Context, sessionID, query string) (*model.PipelineOutcome, error) {
	if query == "" {
		return nil, ErrNoQuery
	}
	log.Infof("[ChatService] 开始处理消息, session=%s", sessionID)

	// 1. 升级判定最先执行：最便宜也最安全，不容许被知识库的巧合命中绕过。
	log.Info("[ChatService] 步骤1: 升级关键词判定")
	if s.escalationService.ShouldEscalate(query) {
		log.Infof("[ChatService] 命中升级关键词, 转人工, session=%s", sessionID)
		if err := s.appendTurn(ctx, sessionID, query, s.handoffMessage); err != nil {
			return nil, err
		}
		outcome := &model.PipelineOutcome{
			Response:  s.handoffMessage,
			Source:    model.SourceRuleBased,
			Action:    model.ActionEscalated,
			SessionID: sessionID,
		}
		s.publishTurn(outcome)
		return outcome, nil
	}

	// 2. 知识库匹配：确定性、零成本，命中即短路返回。
	log.Info("[ChatService] 步骤2: 知识库匹配")
	if match := s.faqService.Match(query); match != nil {
		log.Infof("[ChatService] 知识库命中, session=%s, score=%.3f", sessionID, match.Score)
		if err := s.appendTurn(ctx, sessionID, query, match.Answer); err != nil {
			return nil, err
		}
		score := match.Score
		outcome := &model.PipelineOutcome{
			Response:   match.Answer,
			Source:     model.SourceFAQ,
			MatchScore: &score,
			Action:     model.ActionResponded,
			SessionID:  sessionID,
		}
		s.publishTurn(outcome)
		return outcome, nil
	}

	// 3. 生成式兜底：带上完整会话历史调用模型回退列表。
	log.Info("[ChatService] 步骤3: 生成式回复兜底")
	history, err := s.conversationRepo.GetHistory(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load conversation history: %w", err)
	}

	reply, err := s.generativeService.Generate(ctx, s.composeMessages(history, query))
	if err != nil {
		// 失败的轮次不进入历史。
		return nil, err
	}
	log.Infof("[ChatService] 生成完成, session=%s, model=%s, escalated=%v",
		sessionID, reply.Model, reply.Escalated)

	response := reply.Reply
	action := model.ActionResponded
	if reply.Escalated {
		response = s.handoffMessage
		action = model.ActionEscalated
	}
	if err := s.appendTurn(ctx, sessionID, query, response); err != nil {
		return nil, err
	}
	outcome := &model.PipelineOutcome{
		Response:  response,
		Source:    model.SourceLLMPrefix + reply.Model,
		Action:    action,
		SessionID: sessionID,
	}
	s.publishTurn(outcome)
	return outcome, nil
}

// composeMessages 组装 system 指令 + 历史（从旧到新）+ 当前提问。
func (s *chatService) composeMessages(history []model.ChatMessage, query string) []llm.Message {
	msgs := make([]llm.Message, 0, len(history)+2)
	msgs = append(msgs, llm.Message{Role: "system", Content: s.systemPrompt})
	for _, m := range history {
		msgs = append(msgs, llm.Message{Role: m.Role, Content: m.Content})
	}
	msgs = append(msgs, llm.Message{Role: "user", Content: query})
	return msgs
}

// appendTurn 按 user→assistant 的固定顺序持久化一轮对话。
func (s *chatService) appendTurn(ctx context.Context, sessionID, query, reply string) error {
	if err := s.conversationRepo.AppendMessage(ctx, sessionID, "user", query); err != nil {
		return err
	}
	return s.conversationRepo.AppendMessage(ctx, sessionID, "assistant", reply)
}

// publishTurn 以尽力而为的方式上报轮次事件，失败只记日志，从不影响响应。
func (s *chatService) publishTurn(outcome *model.PipelineOutcome) {
	event := events.TurnEvent{
		SessionID: outcome.SessionID,
		Source:    outcome.Source,
		Action:    outcome.Action,
		Timestamp: time.Now(),
	}
	// 使用后台上下文：事件上报不随请求取消而中断。
	go func() {
		if err := kafka.PublishTurnEvent(context.Background(), event); err != nil {
			log.Warnf("上报轮次事件失败: session=%s, err=%v", event.SessionID, err)
		}
	}()
}

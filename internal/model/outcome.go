package model

// PipelineOutcome 的 source 取值。LLM 来源会在前缀后拼接实际使用的模型名。
const (
	SourceRuleBased = "rule-based"
	SourceFAQ       = "faq"
	SourceLLMPrefix = "llm:"
)

// PipelineOutcome 的 action 取值。
const (
	ActionEscalated = "escalated"
	ActionResponded = "responded"
)

// PipelineOutcome 是一次聊天管道调用唯一对外可见的结果。
// match_score 仅在 FAQ 命中时出现。
type PipelineOutcome struct {
	Response   string   `json:"response"`
	Source     string   `json:"source"`
	MatchScore *float64 `json:"match_score,omitempty"`
	Action     string   `json:"action"`
	SessionID  string   `json:"session_id"`
}

// Package llm provides a client for interacting with Large Language Models.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"support-bot-go/internal/config"
)

// Message 表示一条角色消息。
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Client defines the interface for an LLM client.
type Client interface {
	// ChatCompletion 以指定模型同步调用聊天接口，返回提取后的回复文本。
	// 任何传输层或协议层错误都返回 error，由调用方决定是否换模型重试。
	ChatCompletion(ctx context.Context, model string, messages []Message) (string, error)
}

type groqClient struct {
	cfg    config.LLMConfig
	client *http.Client
}

// NewClient creates a new LLM client for an OpenAI-compatible chat endpoint.
func NewClient(cfg config.LLMConfig) Client {
	return &groqClient{
		cfg:    cfg,
		client: &http.Client{},
	}
}

type chatRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
	// temperature 恒定下发，0 表示确定性采样，不能省略。
	Temperature float64 `json:"temperature"`
	MaxTokens   *int    `json:"max_tokens,omitempty"`
}

// chatChoice 的字段都用指针，以区分「键不存在」和「值为空串」。
type chatChoice struct {
	Message *struct {
		Content *string `json:"content"`
	} `json:"message"`
	Text *string `json:"text"`
}

type chatResponse struct {
	Choices []chatChoice `json:"choices"`
}

// maxRawReplyLen 限制兜底提取时返回的原始响应长度。
const maxRawReplyLen = 1000

// ChatCompletion 调用 /chat/completions 并提取回复文本。
func (c *groqClient) ChatCompletion(ctx context.Context, model string, messages []Message) (string, error) {
	reqBody := chatRequest{
		Model:       model,
		Messages:    messages,
		Temperature: c.cfg.Generation.Temperature,
	}
	if c.cfg.Generation.MaxTokens != 0 {
		m := c.cfg.Generation.MaxTokens
		reqBody.MaxTokens = &m
	}

	reqBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.cfg.BaseURL+"/chat/completions", bytes.NewReader(reqBytes))
	if err != nil {
		return "", fmt.Errorf("failed to create chat request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to call chat api: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read chat response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("chat api returned non-200 status: %s, body: %s", resp.Status, string(bodyBytes))
	}

	var parsed chatResponse
	if err := json.Unmarshal(bodyBytes, &parsed); err != nil {
		return "", fmt.Errorf("failed to decode chat response: %w", err)
	}

	return extractReply(parsed, bodyBytes), nil
}

// extractReply 按优先级提取回复文本：choices[0].message.content、
// choices[0].text，两者都不存在时退化为截断后的原始响应体。
// 只要请求本身成功，这里总能给出一个字符串，不再上抛错误。
func extractReply(parsed chatResponse, raw []byte) string {
	if len(parsed.Choices) > 0 {
		choice := parsed.Choices[0]
		if choice.Message != nil && choice.Message.Content != nil {
			return strings.TrimSpace(*choice.Message.Content)
		}
		if choice.Text != nil {
			return strings.TrimSpace(*choice.Text)
		}
	}
	return truncateRunes(string(raw), maxRawReplyLen)
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

// Package service 提供了知识库加载与匹配的业务逻辑。
package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strings"
	"sync"

	"support-bot-go/internal/config"
	"support-bot-go/internal/model"
	"support-bot-go/pkg/log"
	"support-bot-go/pkg/storage"
)

// FAQService 定义了知识库的匹配与重载操作。
type FAQService interface {
	// Match 返回与查询重叠度最高且达到阈值的条目，未命中返回 nil。
	Match(query string) *model.MatchResult
	// Reload 重新读取配置的知识库来源并原子替换内存快照，返回新条目数。
	// 读取或解析失败时保留旧快照并返回错误。
	Reload(ctx context.Context) (int, error)
	// EntryCount 返回当前快照的条目数。
	EntryCount() int
}

// indexedEntry 是单个条目的预计算匹配索引。
type indexedEntry struct {
	entry  model.FAQEntry
	tokens map[string]struct{}
}

// faqSnapshot 是一次加载产生的只读快照。
// 替换快照时整体换指针，匹配过程中不发生任何原地修改。
type faqSnapshot struct {
	entries []indexedEntry
}

type faqService struct {
	cfg      config.FAQConfig
	minioCfg config.MinIOConfig

	mu       sync.RWMutex
	snapshot *faqSnapshot
}

// NewFAQService 创建 FAQService 并立即加载知识库。
// 初次加载失败只记录告警并以空知识库运行，不阻断进程启动。
func NewFAQService(cfg config.FAQConfig, minioCfg config.MinIOConfig) FAQService {
	s := &faqService{
		cfg:      cfg,
		minioCfg: minioCfg,
		snapshot: &faqSnapshot{},
	}
	if _, err := s.Reload(context.Background()); err != nil {
		log.Warnf("知识库加载失败，以空知识库继续运行: %v", err)
	}
	return s
}

// Reload 读取来源、重建索引并原子替换快照。
func (s *faqService) Reload(ctx context.Context) (int, error) {
	raw, err := s.readSource(ctx)
	if err != nil {
		return 0, err
	}

	entries, err := parseFAQ(raw)
	if err != nil {
		return 0, err
	}

	snapshot := buildSnapshot(entries)
	s.mu.Lock()
	s.snapshot = snapshot
	s.mu.Unlock()

	log.Infof("[FAQService] 知识库已加载, 条目数: %d", len(snapshot.entries))
	return len(snapshot.entries), nil
}

// EntryCount 返回当前快照的条目数。
func (s *faqService) EntryCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.snapshot.entries)
}

// Match 在当前快照上执行词元重叠匹配。
// 得分 = |查询词元 ∩ 条目词元| / 条目词元数，比较使用严格大于，
// 平局保留先加载的条目；得分达到阈值才算命中，返回前四舍五入到 3 位小数。
func (s *faqService) Match(query string) *model.MatchResult {
	queryTokens := tokenSet(tokenize(query))
	if len(queryTokens) == 0 {
		return nil
	}

	s.mu.RLock()
	snapshot := s.snapshot
	s.mu.RUnlock()

	bestScore := 0.0
	bestAnswer := ""
	found := false
	for _, indexed := range snapshot.entries {
		if len(indexed.tokens) == 0 {
			continue
		}
		overlap := 0
		for t := range queryTokens {
			if _, ok := indexed.tokens[t]; ok {
				overlap++
			}
		}
		score := float64(overlap) / math.Max(1, float64(len(indexed.tokens)))
		if score > bestScore {
			bestScore = score
			bestAnswer = indexed.entry.Answer
			found = true
		}
	}

	if !found || bestScore < s.cfg.MatchThreshold {
		return nil
	}
	return &model.MatchResult{
		Answer: bestAnswer,
		Score:  math.Round(bestScore*1000) / 1000,
	}
}

// readSource 按配置从本地文件或对象存储读取知识库原文。
func (s *faqService) readSource(ctx context.Context) ([]byte, error) {
	switch s.cfg.Source {
	case "minio":
		return storage.ReadObject(ctx, s.minioCfg.BucketName, s.cfg.Object)
	default:
		data, err := os.ReadFile(s.cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to read faq file %s: %w", s.cfg.Path, err)
		}
		return data, nil
	}
}

// parseFAQ 解析知识库 JSON，支持两种形态：
// 条目数组 [{question, answer, tags}]，或 标识符→答案 的扁平对象。
func parseFAQ(data []byte) ([]model.FAQEntry, error) {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("faq source is empty")
	}

	switch trimmed[0] {
	case '[':
		var entries []model.FAQEntry
		if err := json.Unmarshal(data, &entries); err != nil {
			return nil, fmt.Errorf("failed to parse faq list: %w", err)
		}
		for i := range entries {
			if entries[i].Tags == nil {
				entries[i].Tags = []string{}
			}
		}
		return entries, nil
	case '{':
		return parseFAQObject(data)
	default:
		return nil, fmt.Errorf("faq source has unsupported shape")
	}
}

// parseFAQObject 用流式解码展开对象形态。
// Go 的 map 不保证键序，而匹配的平局语义依赖加载顺序，
// 必须按文档中键的出现顺序逐个消费键值对。
// 问题文本由标识符将下划线替换为空格得到，标签为空。
func parseFAQObject(data []byte) ([]model.FAQEntry, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("failed to parse faq object: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("faq source has unsupported shape")
	}

	entries := []model.FAQEntry{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("failed to parse faq object: %w", err)
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("faq object has non-string key")
		}

		var answer string
		if err := dec.Decode(&answer); err != nil {
			return nil, fmt.Errorf("failed to parse faq answer for %q: %w", key, err)
		}

		entries = append(entries, model.FAQEntry{
			Question: strings.ReplaceAll(key, "_", " "),
			Answer:   answer,
			Tags:     []string{},
		})
	}
	return entries, nil
}

// buildSnapshot 为每个条目预计算组合文本的词元集合。
// 组合文本 = 问题 + 答案 + 标签，与匹配得分的分母口径一致。
func buildSnapshot(entries []model.FAQEntry) *faqSnapshot {
	indexed := make([]indexedEntry, 0, len(entries))
	for _, e := range entries {
		combined := e.Question + " " + e.Answer + " " + strings.Join(e.Tags, " ")
		indexed = append(indexed, indexedEntry{
			entry:  e,
			tokens: tokenSet(tokenize(combined)),
		})
	}
	return &faqSnapshot{entries: indexed}
}

// Package service 包含了应用的业务逻辑层。
package service

import "strings"

// EscalationService 定义了人工升级判定的接口。
type EscalationService interface {
	// ShouldEscalate 判断查询是否命中高风险关键词，命中即转人工。
	ShouldEscalate(query string) bool
}

type escalationService struct {
	keywords []string
}

// NewEscalationService 创建一个新的 EscalationService 实例。
// 关键词在构造时统一转为小写，之后整个进程生命周期内只读。
func NewEscalationService(keywords []string) EscalationService {
	lowered := make([]string, 0, len(keywords))
	for _, k := range keywords {
		lowered = append(lowered, strings.ToLower(k))
	}
	return &escalationService{keywords: lowered}
}

// ShouldEscalate 对查询做大小写不敏感的子串匹配。空查询不升级。
func (s *escalationService) ShouldEscalate(query string) bool {
	if query == "" {
		return false
	}
	q := strings.ToLower(query)
	for _, k := range s.keywords {
		if strings.Contains(q, k) {
			return true
		}
	}
	return false
}

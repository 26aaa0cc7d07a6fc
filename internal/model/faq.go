package model

// FAQEntry 代表知识库中的一条问答条目，加载后只读。
type FAQEntry struct {
	Question string   `json:"question"`
	Answer   string   `json:"answer"`
	Tags     []string `json:"tags,omitempty"`
}

// MatchResult 代表一次知识库匹配的命中结果，仅在单次请求内有效。
type MatchResult struct {
	Answer string  `json:"answer"`
	Score  float64 `json:"score"` // [0,1]，返回前已四舍五入到 3 位小数
}

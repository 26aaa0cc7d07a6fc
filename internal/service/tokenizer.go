// Package service 包含了应用的业务逻辑层。
package service

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// tokenize 将自由文本规范化为可比较的词元序列：
// 全部转为小写，非字母数字字符替换为空格，按空白切分，
// 并丢弃长度不超过 1 的词元以抑制标点残片噪声。
// 纯函数，空输入返回空序列。
func tokenize(text string) []string {
	normalized := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			return r
		}
		return ' '
	}, strings.ToLower(text))

	fields := strings.Fields(normalized)
	tokens := make([]string, 0, len(fields))
	for _, w := range fields {
		if utf8.RuneCountInString(w) > 1 {
			tokens = append(tokens, w)
		}
	}
	return tokens
}

// tokenSet 将词元序列转换为集合，供重叠度计算使用。
func tokenSet(tokens []string) map[string]struct{} {
	set := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		set[t] = struct{}{}
	}
	return set
}

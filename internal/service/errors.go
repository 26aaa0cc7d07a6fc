package service

import "errors"

// ErrNoQuery 表示请求缺少必填的 query 字段，在任何阶段执行前被拒绝。
var ErrNoQuery = errors.New("no query provided")

// BackendError 表示所有配置的生成模型都调用失败。
// Detail 保留最后一次失败的错误文本，供对外返回诊断信息。
type BackendError struct {
	Detail string
}

func (e *BackendError) Error() string {
	return "AI backend failed: " + e.Detail
}

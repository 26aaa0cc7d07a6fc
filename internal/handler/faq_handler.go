// Package handler 包含了处理 HTTP 请求的控制器逻辑。
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"support-bot-go/internal/service"
	"support-bot-go/pkg/log"
)

// FAQHandler 处理知识库管理相关的 API 请求。
type FAQHandler struct {
	faqService service.FAQService
}

// NewFAQHandler 创建一个新的 FAQHandler。
func NewFAQHandler(faqService service.FAQService) *FAQHandler {
	return &FAQHandler{faqService: faqService}
}

// Reload 重新读取知识库来源并原子替换内存快照。
// 加载失败时保留旧快照，匹配服务不受影响。
func (h *FAQHandler) Reload(c *gin.Context) {
	entries, err := h.faqService.Reload(c.Request.Context())
	if err != nil {
		log.Error("[FAQHandler] 知识库重载失败，保留原快照", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":  "FAQ reload failed",
			"detail": err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"reloaded": true, "entries": entries})
}

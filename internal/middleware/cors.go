// Package middleware 存放 Gin 框架的中间件。
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// CORS 返回一个放行所有来源的跨域中间件，供独立托管的聊天页面调用接口。
func CORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

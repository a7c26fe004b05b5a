package middleware

import (
	"github.com/gin-gonic/gin"
)

// SecurityHeaders 设置安全响应头
// 打卡终端需在同源页面调用摄像头，camera 仅放开 self
func SecurityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Header("Content-Security-Policy", "default-src 'self'; img-src 'self' data: blob:; media-src 'self' blob:")
		c.Header("Permissions-Policy", "camera=(self), microphone=(), geolocation=()")
		c.Next()
	}
}

package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"timeface/pkg/redis"
	"timeface/pkg/response"
)

// RateLimit 按客户端 IP 与路由限流，打卡终端抓拍接口使用
// rdb 为 nil 或 limit<=0 时不限流；Redis 出错时放行
func RateLimit(rdb *redis.Client, limit int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rdb == nil || limit <= 0 {
			c.Next()
			return
		}

		key := fmt.Sprintf("rate_limit:%s:%s", c.ClientIP(), c.FullPath())
		allowed, err := rdb.CheckRateLimit(c.Request.Context(), key, limit, window)
		if err != nil {
			c.Next()
			return
		}
		if !allowed {
			response.Error(c, http.StatusTooManyRequests, 10004, "打卡过于频繁，请稍后再试")
			c.Abort()
			return
		}

		c.Next()
	}
}

package health

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterHTTPRoutes 注册详细健康检查路由
func RegisterHTTPRoutes(r *gin.Engine, aggregator *Aggregator) {
	// GET /health —— 各检查器详情 + 汇总状态
	r.GET("/health", func(c *gin.Context) {
		results := aggregator.CheckAll(c.Request.Context())
		overall := Overall(results)

		// 降级仍可服务，返回 200
		code := http.StatusOK
		if overall == StatusUnhealthy {
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, gin.H{
			"status": overall,
			"checks": results,
		})
	})
}

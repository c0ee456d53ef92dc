package api

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/taoyao-code/droidlink/internal/api/middleware"
)

// RegisterRoutes 注册机器人控制路由
func RegisterRoutes(r *gin.Engine, h *Handler, authCfg middleware.AuthConfig, logger *zap.Logger) {
	if r == nil || h == nil {
		return
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	api := r.Group("/api")
	api.Use(middleware.RequestID())
	if authCfg.Enabled {
		api.Use(middleware.APIKeyAuth(authCfg, logger))
		logger.Info("api authentication enabled")
	} else {
		logger.Warn("api authentication disabled - only for development!")
	}

	// 行驶
	api.POST("/drive/roll", h.Roll)
	api.POST("/drive/stop", h.Stop)
	api.POST("/drive/heading", h.SetHeading)
	api.POST("/drive/reset-yaw", h.ResetYaw)

	// 头部
	api.POST("/dome/position", h.SetDomePosition)
	api.GET("/dome/position", h.GetDomePosition)

	// 腿部姿态
	api.POST("/stance", h.SetStance)
	api.GET("/stance", h.GetStance)

	// 灯光
	api.POST("/leds/front", h.SetFrontLED)
	api.POST("/leds/back", h.SetBackLED)
	api.POST("/leds/holo", h.SetHoloProjector)
	api.POST("/leds/logic", h.SetLogicDisplays)
	api.POST("/leds/off", h.LEDsOff)

	// 音频
	api.POST("/audio/play", h.PlaySound)
	api.POST("/audio/stop", h.StopAudio)
	api.POST("/audio/volume", h.SetVolume)
	api.GET("/audio/volume", h.GetVolume)

	// 电源与信息
	api.POST("/power/wake", h.Wake)
	api.POST("/power/sleep", h.Sleep)
	api.GET("/power/battery", h.Battery)
	api.GET("/info", h.Info)
	api.GET("/scan", h.Scan)

	logger.Info("droid control routes registered", zap.Int("endpoints", 21))
}

package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"shelter-caller/config"
	"shelter-caller/internal/api/handler"
	"shelter-caller/internal/api/middleware"
	"shelter-caller/internal/authz"
	"shelter-caller/internal/observer"
	"shelter-caller/pkg/jwt"
	"shelter-caller/pkg/redis"
)

const maxBodyBytes = 1 << 20

// Setup 初始化并返回 Gin 路由引擎
func Setup(
	cfg *config.Config,
	h *handler.Handler,
	jwtMgr *jwt.Manager,
	rdb *redis.Client,
	authorizer *authz.Authorizer,
	logger *zap.Logger,
) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(observer.HTTPMetrics())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.BodyLimit(maxBodyBytes))

	limited := middleware.RateLimit(rdb, cfg.Server.RateLimit, time.Minute, middleware.ByClientIP)
	perCaller := middleware.RateLimit(rdb, cfg.Server.RateLimit, time.Minute, middleware.ByCaller)
	require := func(c authz.Capability) gin.HandlerFunc {
		return middleware.Require(authorizer, c)
	}

	// ── 健康检查与指标 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// ── 管理端 API ──
	api := r.Group("/api")
	{
		api.POST("/admin_login/", limited, h.Auth.Login)

		// 公开看板（无需认证）
		public := api.Group("", limited)
		{
			public.GET("/pub_counts/", h.Count.PublicDailyCounts)
			public.GET("/pub_counts/:date", h.Count.PublicDailyCounts)
			public.GET("/pub_counthistory/", h.Count.PublicHistory)
			public.GET("/pub_counthistory/:page/", h.Count.PublicHistory)
		}

		authorized := api.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, rdb, logger))
		{
			authorized.POST("/logout/", h.Auth.Logout)

			// 收容所
			authorized.GET("/shelters/", require(authz.SheltersManage), h.Shelter.ListShelters)
			authorized.POST("/shelters/", require(authz.SheltersManage), h.Shelter.SaveShelter)
			authorized.DELETE("/shelters/:id", require(authz.SheltersManage), h.Shelter.DeleteShelter)

			// 人数
			authorized.GET("/counts/", require(authz.CountsView), h.Count.DailyCounts)
			authorized.GET("/counts/:date", require(authz.CountsView), h.Count.DailyCounts)
			authorized.GET("/counthistory/", require(authz.CountsView), h.Count.History)
			authorized.GET("/counthistory/:page/", require(authz.CountsView), h.Count.History)
			authorized.POST("/setcount/", require(authz.CountsEdit), h.Count.SetCount)

			// 审计日志
			authorized.GET("/logs/:shelter_id/", require(authz.LogsView), h.Log.ShelterLogs)
			authorized.GET("/logs/:shelter_id/:page/", require(authz.LogsView), h.Log.ShelterLogs)

			// 偏好
			authorized.GET("/prefs/", require(authz.PrefsManage), h.Preference.GetPreferences)
			authorized.PUT("/prefs/", require(authz.PrefsManage), h.Preference.UpdatePreferences)
			authorized.POST("/prefs/set/", require(authz.PrefsManage), h.Preference.SetPreferences)

			// 导出
			authorized.GET("/export/counts", require(authz.ExportCounts), h.Export.ExportCounts)
		}
	}

	// ── 电话流程 webhook ──
	twilio := r.Group("/twilio", perCaller)
	{
		twilio.GET("/start_call/", h.Telephony.StartCall)
		twilio.POST("/validate_shelter/", h.Telephony.ValidateShelter)
		twilio.POST("/save_count/", h.Telephony.SaveCount)
		twilio.POST("/log_failed_call/", h.Telephony.LogFailedCall)
		twilio.GET("/validate_time/", h.Telephony.ValidateTime)
	}

	return r
}

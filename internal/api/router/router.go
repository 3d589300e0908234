package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Nisheeka1604/yultimate/config"
	"github.com/Nisheeka1604/yultimate/internal/api/handler"
	"github.com/Nisheeka1604/yultimate/internal/api/middleware"
	"github.com/Nisheeka1604/yultimate/pkg/jwt"
	"github.com/Nisheeka1604/yultimate/pkg/metrics"
	"github.com/Nisheeka1604/yultimate/pkg/redis"
)

const (
	maxBodyBytes    = 1 << 20
	authRateLimit   = 10
	authRateWindow  = time.Minute
	readinessBudget = 2 * time.Second
)

// Setup 初始化并返回 Gin 路由引擎；rdb 为 nil 时黑名单与限流降级
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, db *gorm.DB, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// 避免把 nil *redis.Client 装进接口
	var (
		revoked middleware.RevocationChecker
		limiter middleware.RateLimiter
	)
	if rdb != nil {
		revoked = rdb
		limiter = rdb
	}

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Metrics())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.BodyLimit(maxBodyBytes))

	// ── 健康检查与指标 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", readiness(db, rdb))
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 认证模块（无需认证）
		auth := v1.Group("/auth")
		auth.Use(middleware.RateLimit(limiter, authRateLimit, authRateWindow))
		{
			auth.POST("/register", h.Auth.Register)
			auth.POST("/login", h.Auth.Login)
		}

		// 需要认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, revoked))
		{
			authorized.GET("/auth/me", h.Auth.Me)
			authorized.POST("/auth/logout", h.Auth.Logout)

			authorized.GET("/dashboard", h.Dashboard.GetDashboard)

			// 赛事模块
			tournaments := authorized.Group("/tournaments")
			{
				tournaments.GET("", h.Tournament.ListTournaments)
				tournaments.GET("/:id", h.Tournament.GetTournament)
				tournaments.POST("", middleware.RoleAuth("admin"), h.Tournament.CreateTournament)
				tournaments.PUT("/:id", middleware.RoleAuth("admin"), h.Tournament.UpdateTournament)
				tournaments.POST("/:id/advance", h.Tournament.AdvanceTournament) // 非法流转与越权由 policy 区分
				tournaments.DELETE("/:id", middleware.RoleAuth("admin"), h.Tournament.DeleteTournament)

				tournaments.GET("/:id/teams", h.Team.ListTeams)
				tournaments.POST("/:id/teams", h.Team.RegisterTeam)

				tournaments.GET("/:id/matches", h.Match.ListMatches)
				tournaments.POST("/:id/matches", middleware.RoleAuth("admin"), h.Match.CreateMatch)

				tournaments.GET("/:id/leaderboard", h.Tournament.GetLeaderboard)
				tournaments.GET("/:id/leaderboard/export", middleware.RoleAuth("admin"), h.Export.ExportLeaderboard)
			}

			// 球队模块
			teams := authorized.Group("/teams")
			{
				teams.GET("/:id", h.Team.GetTeam)
				teams.POST("/:id/approve", h.Team.ApproveTeam)
				teams.POST("/:id/reject", h.Team.RejectTeam)
				teams.POST("/:id/waitlist", h.Team.WaitlistTeam)
				teams.POST("/:id/players", h.Team.AddPlayers) // 队长或管理员（Service 层鉴权）
			}

			// 比赛模块
			matches := authorized.Group("/matches")
			{
				matches.GET("/:id", h.Match.GetMatch)
				matches.POST("/:id/start", middleware.RoleAuth("admin"), h.Match.StartMatch)
				matches.PUT("/:id/score", middleware.RoleAuth("admin"), h.Match.RecordScore)
				matches.GET("/:id/spirit-scores", h.Match.ListSpiritScores)
				matches.POST("/:id/spirit-scores", h.Match.SubmitSpiritScore)
			}

			// 学员模块
			students := authorized.Group("/students")
			{
				students.GET("", middleware.RoleAuth("admin", "coach"), h.Student.ListStudents)
				students.GET("/me", middleware.RoleAuth("student"), h.Student.GetMyProfile)
				students.GET("/:id", h.Student.GetStudent)
				students.PUT("/:id", middleware.RoleAuth("admin", "student"), h.Student.UpdateStudent)
				students.PUT("/:id/coach", middleware.RoleAuth("admin"), h.Student.AssignCoach)
				students.GET("/:id/metrics", h.Student.GetMetrics)
				students.GET("/:id/progress/export", h.Export.ExportProgress)
			}

			// 训练课程模块
			sessions := authorized.Group("/sessions")
			{
				sessions.GET("", h.Coaching.ListSessions)
				sessions.GET("/calendar", h.Coaching.Calendar)
				sessions.GET("/:id", h.Coaching.GetSession)
				sessions.POST("", middleware.RoleAuth("coach"), h.Coaching.CreateSession)
				sessions.POST("/:id/start", middleware.RoleAuth("coach"), h.Coaching.StartSession)
				sessions.POST("/:id/complete", middleware.RoleAuth("coach"), h.Coaching.CompleteSession)
				sessions.POST("/:id/cancel", middleware.RoleAuth("coach"), h.Coaching.CancelSession)
				sessions.GET("/:id/attendance", middleware.RoleAuth("admin", "coach"), h.Coaching.ListAttendance)
				sessions.POST("/:id/attendance", middleware.RoleAuth("coach"), h.Coaching.RecordAttendance)
			}

			homeVisits := authorized.Group("/home-visits")
			{
				homeVisits.GET("", h.Coaching.ListHomeVisits)
				homeVisits.POST("", middleware.RoleAuth("coach"), h.Coaching.RecordHomeVisit)
			}

			assessments := authorized.Group("/assessments")
			{
				assessments.GET("", h.Coaching.ListAssessments)
				assessments.POST("", middleware.RoleAuth("coach"), h.Coaching.CreateAssessment)
			}

			reports := authorized.Group("/progress-reports")
			{
				reports.GET("", h.Coaching.ListProgressReports)
				reports.POST("", middleware.RoleAuth("coach"), h.Coaching.GenerateProgressReport)
			}

			// 通知模块
			notifications := authorized.Group("/notifications")
			{
				notifications.GET("", h.Notification.ListNotifications)
				notifications.GET("/unread-count", h.Notification.UnreadCount)
				notifications.PUT("/read-all", h.Notification.MarkAllRead)
				notifications.PUT("/:id/read", h.Notification.MarkRead)
				notifications.DELETE("/:id", h.Notification.DeleteNotification)
			}
		}
	}

	return r
}

// readiness 数据库必须可用；Redis 只报告状态，不影响就绪
func readiness(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), readinessBudget)
		defer cancel()

		status := gin.H{"database": "ok", "redis": "disabled"}
		code := http.StatusOK

		if db == nil {
			status["database"] = "disabled"
		} else if sqlDB, err := db.DB(); err != nil || sqlDB.PingContext(ctx) != nil {
			status["database"] = "unavailable"
			code = http.StatusServiceUnavailable
		}
		if rdb != nil {
			status["redis"] = "ok"
			if err := rdb.Ping(ctx); err != nil {
				status["redis"] = "unavailable"
			}
		}

		c.JSON(code, status)
	}
}

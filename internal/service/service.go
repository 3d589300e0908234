package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/Nisheeka1604/yultimate/config"
	"github.com/Nisheeka1604/yultimate/internal/repository"
	"github.com/Nisheeka1604/yultimate/pkg/jwt"
)

// LeaderboardCache 排行榜缓存，由 pkg/redis.Client 实现；为 nil 时不缓存
type LeaderboardCache interface {
	GetLeaderboard(ctx context.Context, tournamentID string) ([]byte, bool, error)
	// LeaderboardGeneration 每次失效递增，计算开始前读取
	LeaderboardGeneration(ctx context.Context, tournamentID string) (int64, error)
	// SetLeaderboard 仅当代数仍为 generation 时写入，返回是否写入
	SetLeaderboard(ctx context.Context, tournamentID string, payload []byte, ttl time.Duration, generation int64) (bool, error)
	InvalidateLeaderboard(ctx context.Context, tournamentID string) error
}

// TokenBlacklist 登出时吊销 Token，由 pkg/redis.Client 实现
type TokenBlacklist interface {
	BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error
}

// Service 所有 Service 的聚合入口
type Service struct {
	Auth         AuthService
	Student      StudentService
	Tournament   TournamentService
	Team         TeamService
	Match        MatchService
	Coaching     CoachingService
	Metrics      MetricsService
	Notification NotificationService
	Export       ExportService
	Calendar     CalendarService
}

// Deps 可选的外部依赖，Redis 不可用时均可为 nil
type Deps struct {
	Cache     LeaderboardCache
	Blacklist TokenBlacklist
}

// NewService 创建 Service 聚合
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	deps Deps,
	logger *zap.Logger,
) *Service {
	notification := NewNotificationService(repo, logger)
	metrics := NewMetricsService(repo, logger)
	match := NewMatchService(cfg.Engine, repo, deps.Cache, logger)

	return &Service{
		Auth:         NewAuthService(cfg, repo, jwtMgr, deps.Blacklist, logger),
		Student:      NewStudentService(repo, logger),
		Tournament:   NewTournamentService(repo, logger),
		Team:         NewTeamService(repo, notification, logger),
		Match:        match,
		Coaching:     NewCoachingService(cfg.Engine, repo, metrics, notification, logger),
		Metrics:      metrics,
		Notification: notification,
		Export:       NewExportService(repo, match, metrics, logger),
		Calendar:     NewCalendarService(repo, logger),
	}
}

package jobs

import (
	"context"
	"time"

	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"

	"github.com/Nisheeka1604/yultimate/internal/dto"
	"github.com/Nisheeka1604/yultimate/internal/policy"
	"github.com/Nisheeka1604/yultimate/pkg/metrics"
)

const (
	leaderboardJob = "leaderboard_warmup"
	warmupPageSize = 100
	warmupTimeout  = time.Minute
)

// TournamentLister 由 service.TournamentService 实现
type TournamentLister interface {
	List(ctx context.Context, req *dto.TournamentListRequest) ([]dto.TournamentResponse, int64, error)
}

// LeaderboardRefresher 由 service.MatchService 实现
type LeaderboardRefresher interface {
	RefreshLeaderboard(ctx context.Context, tournamentID string) error
}

// Scheduler 后台定时任务
type Scheduler struct {
	sched  gocron.Scheduler
	logger *zap.Logger
}

// NewScheduler 按引擎配置注册排行榜预热任务；interval 为 0 时返回不执行任何任务的 Scheduler
func NewScheduler(interval time.Duration, tournaments TournamentLister, refresher LeaderboardRefresher, logger *zap.Logger) (*Scheduler, error) {
	s := &Scheduler{logger: logger}
	if interval <= 0 {
		return s, nil
	}

	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}
	_, err = sched.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), warmupTimeout)
			defer cancel()
			_ = WarmLeaderboards(ctx, tournaments, refresher, logger)
		}),
		gocron.WithName(leaderboardJob),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		_ = sched.Shutdown()
		return nil, err
	}

	s.sched = sched
	return s, nil
}

// Start 启动调度
func (s *Scheduler) Start() {
	if s.sched == nil {
		return
	}
	s.sched.Start()
	s.logger.Info("后台任务已启动", zap.String("job", leaderboardJob))
}

// Shutdown 等待运行中的任务结束
func (s *Scheduler) Shutdown() error {
	if s.sched == nil {
		return nil
	}
	return s.sched.Shutdown()
}

// WarmLeaderboards 为所有进行中的赛事重新计算精神分排行榜并写回缓存。
// 单个赛事失败不影响其余赛事，返回最后一个错误。
func WarmLeaderboards(ctx context.Context, tournaments TournamentLister, refresher LeaderboardRefresher, logger *zap.Logger) error {
	metrics.JobRuns.WithLabelValues(leaderboardJob).Inc()

	var lastErr error
	req := &dto.TournamentListRequest{Status: string(policy.TournamentInProgress)}
	req.PageSize = warmupPageSize

	for page := 1; ; page++ {
		req.Page = page
		list, total, err := tournaments.List(ctx, req)
		if err != nil {
			metrics.JobErrors.WithLabelValues(leaderboardJob).Inc()
			logger.Error("排行榜预热：查询赛事失败", zap.Error(err))
			return err
		}

		for _, t := range list {
			if err := refresher.RefreshLeaderboard(ctx, t.ID); err != nil {
				metrics.JobErrors.WithLabelValues(leaderboardJob).Inc()
				logger.Warn("排行榜预热失败", zap.String("tournament_id", t.ID), zap.Error(err))
				lastErr = err
			}
		}

		if len(list) == 0 || int64(page*warmupPageSize) >= total {
			break
		}
	}
	return lastErr
}

package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/Nisheeka1604/yultimate/internal/dto"
	"github.com/Nisheeka1604/yultimate/internal/model"
	"github.com/Nisheeka1604/yultimate/internal/repository"
	pkgerrors "github.com/Nisheeka1604/yultimate/pkg/errors"
)

// 通知类型
const (
	NotificationTeamRegistration = "team_registration"
	NotificationSessionCancelled = "session_cancelled"
)

// NotificationService 通知业务接口
type NotificationService interface {
	// Notify 尽力投递：主操作已经提交，失败只记录日志
	Notify(ctx context.Context, userIDs []string, typ, title, message string, relatedID *string)
	List(ctx context.Context, userID string, req *dto.NotificationListRequest) ([]dto.NotificationResponse, int64, error)
	UnreadCount(ctx context.Context, userID string) (int64, error)
	MarkRead(ctx context.Context, userID, id string) error
	MarkAllRead(ctx context.Context, userID string) error
	Delete(ctx context.Context, userID, id string) error
}

type notificationService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewNotificationService 创建 NotificationService 实例
func NewNotificationService(repo *repository.Repository, logger *zap.Logger) NotificationService {
	return &notificationService{repo: repo, logger: logger}
}

func (s *notificationService) Notify(ctx context.Context, userIDs []string, typ, title, message string, relatedID *string) {
	if len(userIDs) == 0 {
		return
	}
	list := make([]model.Notification, 0, len(userIDs))
	for _, uid := range userIDs {
		list = append(list, model.Notification{
			UserID:    uid,
			Type:      typ,
			Title:     title,
			Message:   message,
			RelatedID: relatedID,
		})
	}
	if err := s.repo.Notification.CreateBatch(ctx, list); err != nil {
		s.logger.Warn("发送通知失败", zap.String("type", typ), zap.Int("count", len(list)), zap.Error(err))
	}
}

func (s *notificationService) List(ctx context.Context, userID string, req *dto.NotificationListRequest) ([]dto.NotificationResponse, int64, error) {
	list, total, err := s.repo.Notification.ListByUser(ctx, userID, req.UnreadOnly, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("列出通知失败", zap.String("user_id", userID), zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.NotificationResponse, 0, len(list))
	for _, n := range list {
		result = append(result, dto.NotificationResponse{
			ID:        n.NotificationID,
			Type:      n.Type,
			Title:     n.Title,
			Message:   n.Message,
			IsRead:    n.IsRead,
			RelatedID: n.RelatedID,
			CreatedAt: formatTime(n.CreatedAt),
		})
	}
	return result, total, nil
}

func (s *notificationService) UnreadCount(ctx context.Context, userID string) (int64, error) {
	count, err := s.repo.Notification.CountUnread(ctx, userID)
	if err != nil {
		s.logger.Error("统计未读通知失败", zap.String("user_id", userID), zap.Error(err))
		return 0, err
	}
	return count, nil
}

func (s *notificationService) MarkRead(ctx context.Context, userID, id string) error {
	n, err := s.repo.Notification.MarkRead(ctx, id, userID)
	if err != nil {
		s.logger.Error("标记通知已读失败", zap.String("id", id), zap.Error(err))
		return err
	}
	if n == 0 {
		return pkgerrors.NotFound("notification.MarkRead", "通知不存在")
	}
	return nil
}

func (s *notificationService) MarkAllRead(ctx context.Context, userID string) error {
	if err := s.repo.Notification.MarkAllRead(ctx, userID); err != nil {
		s.logger.Error("全部标记已读失败", zap.String("user_id", userID), zap.Error(err))
		return err
	}
	return nil
}

func (s *notificationService) Delete(ctx context.Context, userID, id string) error {
	n, err := s.repo.Notification.Delete(ctx, id, userID)
	if err != nil {
		s.logger.Error("删除通知失败", zap.String("id", id), zap.Error(err))
		return err
	}
	if n == 0 {
		return pkgerrors.NotFound("notification.Delete", "通知不存在")
	}
	return nil
}

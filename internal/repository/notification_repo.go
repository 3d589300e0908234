package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/Nisheeka1604/yultimate/internal/model"
)

// NotificationRepository 通知数据访问接口
type NotificationRepository interface {
	CreateBatch(ctx context.Context, list []model.Notification) error
	ListByUser(ctx context.Context, userID string, unreadOnly bool, offset, limit int) ([]model.Notification, int64, error)
	CountUnread(ctx context.Context, userID string) (int64, error)
	// MarkRead 仅更新属于 userID 的通知，返回受影响行数
	MarkRead(ctx context.Context, id, userID string) (int64, error)
	MarkAllRead(ctx context.Context, userID string) error
	Delete(ctx context.Context, id, userID string) (int64, error)
}

type notificationRepo struct {
	db *gorm.DB
}

// NewNotificationRepo 创建 NotificationRepository 实例
func NewNotificationRepo(db *gorm.DB) NotificationRepository {
	return &notificationRepo{db: db}
}

func (r *notificationRepo) CreateBatch(ctx context.Context, list []model.Notification) error {
	if len(list) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&list).Error
}

func (r *notificationRepo) ListByUser(ctx context.Context, userID string, unreadOnly bool, offset, limit int) ([]model.Notification, int64, error) {
	var list []model.Notification
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Notification{}).Where("user_id = ?", userID)
	if unreadOnly {
		db = db.Where("is_read = ?", false)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Offset(offset).Limit(limit).
		Order("created_at DESC").
		Find(&list).Error; err != nil {
		return nil, 0, err
	}

	return list, total, nil
}

func (r *notificationRepo) CountUnread(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	return count, err
}

func (r *notificationRepo) MarkRead(ctx context.Context, id, userID string) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&model.Notification{}).
		Where("notification_id = ? AND user_id = ?", id, userID).
		Update("is_read", true)
	return result.RowsAffected, result.Error
}

func (r *notificationRepo) MarkAllRead(ctx context.Context, userID string) error {
	return r.db.WithContext(ctx).
		Model(&model.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true).Error
}

func (r *notificationRepo) Delete(ctx context.Context, id, userID string) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("notification_id = ? AND user_id = ?", id, userID).
		Delete(&model.Notification{})
	return result.RowsAffected, result.Error
}

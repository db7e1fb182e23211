package dto

// ── 通知模块 DTO ──

// OptEmailRequest 邮件通知开关请求
type OptEmailRequest struct {
	EmailNotification *bool `json:"email_notification" binding:"required"`
}

// OptEmailResponse 邮件通知开关响应
type OptEmailResponse struct {
	EmailNotify bool   `json:"email_notify"`
	Message     string `json:"message"`
}

// NotificationResponse 通知响应
type NotificationResponse struct {
	ID        string  `json:"id"`
	SenderID  *string `json:"sender_id,omitempty"`
	Type      string  `json:"type"`
	Title     string  `json:"title"`
	Message   string  `json:"message"`
	URL       string  `json:"url,omitempty"`
	IsRead    bool    `json:"is_read"`
	CreatedAt string  `json:"created_at"`
}

// MarkAllReadResponse 全部标记已读响应
type MarkAllReadResponse struct {
	Marked int64 `json:"marked"`
}

// [自证通过] internal/dto/notification.go

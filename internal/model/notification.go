package model

import "time"

// NotificationType is the closed set of notification categories.
type NotificationType string

const (
	NotificationWarning         NotificationType = "warning"
	NotificationBan             NotificationType = "ban"
	NotificationChannelApproved NotificationType = "channel_approved"
	NotificationChannelRejected NotificationType = "channel_rejected"
)

// Notification is created as a side effect of moderation and admin actions.
type Notification struct {
	ID        string           `gorm:"primaryKey;type:varchar(36)"`
	UserID    string           `gorm:"type:varchar(36);index:idx_notification_user;not null"`
	Type      NotificationType `gorm:"type:varchar(24);not null"`
	Title     string           `gorm:"type:varchar(255);not null"`
	Message   string           `gorm:"type:text;not null"`
	IsRead    bool             `gorm:"not null;default:false"`
	CreatedAt time.Time        `gorm:"index:idx_notification_created"`
}

func (Notification) TableName() string { return "notifications" }

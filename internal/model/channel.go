package model

import "time"

// Channel is a named topic community.
type Channel struct {
	ID          string    `gorm:"primaryKey;type:varchar(36)"`
	Name        string    `gorm:"type:varchar(100);uniqueIndex:ux_channel_name;not null"`
	Description string    `gorm:"type:text"`
	Emoji       string    `gorm:"type:varchar(16)"`
	CreatedBy   string    `gorm:"type:varchar(36)"`
	CreatedAt   time.Time
}

func (Channel) TableName() string { return "channels" }

// Membership links a user to a channel. Join/leave are idempotent
// set-membership operations on this pair table.
// ux_membership_pair = (user_id, channel_id)
type Membership struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)"`
	UserID    string    `gorm:"type:varchar(36);index:idx_membership_user;uniqueIndex:ux_membership_pair;not null"`
	ChannelID string    `gorm:"type:varchar(36);uniqueIndex:ux_membership_pair;not null"`
	CreatedAt time.Time
}

func (Membership) TableName() string { return "user_channels" }

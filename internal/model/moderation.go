package model

import "time"

// FlagTargetType distinguishes what a flag points at; posts and replies
// share the flag table.
type FlagTargetType string

const (
	FlagTargetPost  FlagTargetType = "post"
	FlagTargetReply FlagTargetType = "reply"
)

// Flag is a user-submitted report against a post or reply. A user may flag
// a given target at most once.
// ux_flag_pair = (target_id, flagged_by)
type Flag struct {
	ID         string         `gorm:"primaryKey;type:varchar(36)"`
	TargetID   string         `gorm:"type:varchar(36);index:idx_flag_target;uniqueIndex:ux_flag_pair;not null"`
	TargetType FlagTargetType `gorm:"type:varchar(8);not null"`
	FlaggedBy  string         `gorm:"type:varchar(36);uniqueIndex:ux_flag_pair;not null"`
	Reason     string         `gorm:"type:varchar(255)"`
	CreatedAt  time.Time
}

func (Flag) TableName() string { return "post_flags" }

// Warning is an append-only audit fact. Level is the count of active
// (30-day window) warnings at issue time, including this one.
type Warning struct {
	ID          string    `gorm:"primaryKey;type:varchar(36)"`
	UserID      string    `gorm:"type:varchar(36);index:idx_warning_user;not null"`
	ModeratorID string    `gorm:"type:varchar(36);not null"`
	PostID      string    `gorm:"type:varchar(36)"`
	Level       int       `gorm:"column:warning_level;not null"`
	Reason      string    `gorm:"type:varchar(500);not null"`
	CreatedAt   time.Time `gorm:"index:idx_warning_created"`
}

func (Warning) TableName() string { return "user_warnings" }

// Ban blocks content creation. Keyed by email; a user has at most one
// active ban. ExpiresAt nil means permanent; absence of a non-expired row
// means not banned.
type Ban struct {
	ID        string     `gorm:"primaryKey;type:varchar(36)"`
	Email     string     `gorm:"type:varchar(255);uniqueIndex:ux_ban_email;not null"`
	Reason    string     `gorm:"type:varchar(500);not null"`
	BannedBy  string     `gorm:"type:varchar(36);not null"`
	ExpiresAt *time.Time `gorm:"index:idx_ban_expires"`
	CreatedAt time.Time
}

func (Ban) TableName() string { return "banned_users" }

// Permanent reports whether the ban never expires.
func (b *Ban) Permanent() bool { return b.ExpiresAt == nil }

// Active reports whether the ban is in force at the given instant.
func (b *Ban) Active(now time.Time) bool {
	return b.ExpiresAt == nil || b.ExpiresAt.After(now)
}

package model

import "time"

// Role is the closed set of platform roles. It drives prompt selection,
// data scope and staff capabilities through per-role tables rather than
// string comparisons scattered across call sites.
type Role string

const (
	RoleUser      Role = "user"
	RoleModerator Role = "moderator"
	RoleAdmin     Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleModerator, RoleAdmin:
		return true
	}
	return false
}

func (r Role) IsStaff() bool { return r == RoleModerator || r == RoleAdmin }

// User is upserted on every login, keyed by the identity provider's
// subject id. Role is derived from the email allowlist at upsert time.
type User struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)"`
	SubjectID string    `gorm:"type:varchar(128);uniqueIndex:ux_user_subject;not null"`
	Email     string    `gorm:"type:varchar(255);uniqueIndex:ux_user_email;not null"`
	Name      string    `gorm:"type:varchar(255);not null"`
	AvatarURL string    `gorm:"type:text"`
	Role      Role      `gorm:"type:varchar(16);not null;default:user"`
	Bio       string    `gorm:"type:text"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (User) TableName() string { return "users" }

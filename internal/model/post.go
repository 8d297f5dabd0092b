package model

import "time"

// PostTag is the closed set of post categories.
type PostTag string

const (
	TagProgress      PostTag = "progress"
	TagChallenges    PostTag = "challenges"
	TagWins          PostTag = "wins"
	TagMiscellaneous PostTag = "miscellaneous"
)

func (t PostTag) Valid() bool {
	switch t {
	case TagProgress, TagChallenges, TagWins, TagMiscellaneous:
		return true
	}
	return false
}

// Post is immutable after creation except the denormalized counters and the
// flag bit. Counters are only ever moved by conditional SQL expressions.
type Post struct {
	ID           string    `gorm:"primaryKey;type:varchar(36)"`
	UserID       string    `gorm:"type:varchar(36);index:idx_post_user;not null"`
	ChannelID    string    `gorm:"type:varchar(36);index:idx_post_channel;not null"`
	Title        string    `gorm:"type:varchar(100);not null"`
	Content      string    `gorm:"type:varchar(500);not null"`
	Tag          PostTag   `gorm:"type:varchar(16);not null"`
	LikesCount   int64     `gorm:"not null;default:0"`
	RepliesCount int64     `gorm:"not null;default:0"`
	IsFlagged    bool      `gorm:"not null;default:false;index:idx_post_flagged"`
	CreatedAt    time.Time `gorm:"index:idx_post_created"`
	UpdatedAt    time.Time

	User    *User    `gorm:"foreignKey:UserID"`
	Channel *Channel `gorm:"foreignKey:ChannelID"`
}

func (Post) TableName() string { return "posts" }

// Reply supports one level of threaded nesting via ParentReplyID.
type Reply struct {
	ID            string    `gorm:"primaryKey;type:varchar(36)"`
	PostID        string    `gorm:"type:varchar(36);index:idx_reply_post;not null"`
	ParentReplyID *string   `gorm:"type:varchar(36)"`
	UserID        string    `gorm:"type:varchar(36);index:idx_reply_user;not null"`
	Content       string    `gorm:"type:varchar(500);not null"`
	Level         int       `gorm:"not null;default:0"`
	LikesCount    int64     `gorm:"not null;default:0"`
	IsFlagged     bool      `gorm:"not null;default:false"`
	CreatedAt     time.Time
	UpdatedAt     time.Time

	User    *User    `gorm:"foreignKey:UserID"`
	Replies []*Reply `gorm:"-"`
}

func (Reply) TableName() string { return "replies" }

// Like is an at-most-one pair per (user, post).
// ux_like_pair = (user_id, post_id)
type Like struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)"`
	UserID    string    `gorm:"type:varchar(36);uniqueIndex:ux_like_pair;not null"`
	PostID    string    `gorm:"type:varchar(36);index:idx_like_post;uniqueIndex:ux_like_pair;not null"`
	CreatedAt time.Time
}

func (Like) TableName() string { return "likes" }

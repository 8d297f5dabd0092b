package model

import "time"

// RequestStatus is the closed set of channel-request states.
type RequestStatus string

const (
	RequestPending   RequestStatus = "pending"
	RequestApproved  RequestStatus = "approved"
	RequestRejected  RequestStatus = "rejected"
	RequestNeedsInfo RequestStatus = "needs_info"
)

// ChannelRequest is a user's petition for a new channel. At most one
// pending request per user, enforced at creation time.
type ChannelRequest struct {
	ID            string        `gorm:"primaryKey;type:varchar(36)"`
	UserID        string        `gorm:"type:varchar(36);index:idx_request_user;not null"`
	ChannelName   string        `gorm:"type:varchar(100);not null"`
	Description   string        `gorm:"type:text"`
	Reason        string        `gorm:"type:text"`
	Status        RequestStatus `gorm:"type:varchar(16);not null;default:pending;index:idx_request_status"`
	AdminResponse string        `gorm:"type:text"`
	CreatedAt     time.Time
	UpdatedAt     time.Time

	User *User `gorm:"foreignKey:UserID"`
}

func (ChannelRequest) TableName() string { return "channel_requests" }

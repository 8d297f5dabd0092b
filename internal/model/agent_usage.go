package model

import "time"

// AgentUsage records one language-API call. UsageDate (YYYY-MM-DD) backs
// the daily quota; CreatedAt backs the cooldown. A row is written whether
// or not the upstream call produced a useful answer.
type AgentUsage struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)"`
	UserID    string    `gorm:"type:varchar(36);index:idx_usage_user_date;not null"`
	Question  string    `gorm:"type:text;not null"`
	Response  string    `gorm:"type:text"`
	UsageDate string    `gorm:"type:varchar(10);index:idx_usage_user_date;not null"`
	CreatedAt time.Time
}

func (AgentUsage) TableName() string { return "agent_usage" }

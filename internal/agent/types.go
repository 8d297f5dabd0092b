package agent

import (
	"time"

	"github.com/apexquest/apexquest/internal/ai"
)

// Type identifies one of the three fixed machine-agent identities.
type Type string

const (
	TypeAdmin Type = "admin"
	TypeMod   Type = "mod"
	TypeUser  Type = "user"
)

// Scope returns the single scope string pinned to each agent identity.
func (t Type) Scope() string {
	switch t {
	case TypeAdmin:
		return "admin:manage"
	case TypeMod:
		return "mod:warn"
	case TypeUser:
		return "user:post"
	}
	return ""
}

func (t Type) Valid() bool {
	return t == TypeAdmin || t == TypeMod || t == TypeUser
}

// ActivityStatus is the outcome recorded for one credential check.
type ActivityStatus string

const (
	StatusAttempted  ActivityStatus = "attempted"
	StatusAuthorized ActivityStatus = "authorized"
	StatusDenied     ActivityStatus = "denied"
)

// ActivityEntry is one line of the agent activity log.
type ActivityEntry struct {
	Timestamp time.Time      `json:"timestamp"`
	Agent     Type           `json:"agent"`
	Action    string         `json:"action"`
	Status    ActivityStatus `json:"status"`
	SessionID string         `json:"sessionId"`
}

// Report captures one moderation-pipeline run: its inputs, the decision and
// the actions taken. Reports are retained in a capped in-memory store for
// dashboard display; they are not durable domain state.
type Report struct {
	AgentType       Type        `json:"agentType"`
	PostID          string      `json:"postId"`
	UserID          string      `json:"userId"`
	Decision        ai.Decision `json:"decision"`
	ExecutedActions []string    `json:"executedActions"`
	Timestamp       time.Time   `json:"timestamp"`
}

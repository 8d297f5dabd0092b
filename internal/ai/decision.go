package ai

import (
	"strings"

	"github.com/bytedance/sonic"
)

// Action is what a moderation decision asks the platform to do.
type Action string

const (
	ActionWarn     Action = "warn"
	ActionRemove   Action = "remove"
	ActionBan      Action = "ban"
	ActionEscalate Action = "escalate"
	ActionDismiss  Action = "dismiss"
)

// Severity grades a violation.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Decision is the classification a moderation pipeline acts on, whether it
// came from the model or from the keyword fallback.
type Decision struct {
	Action     Action   `json:"action"`
	Severity   Severity `json:"severity"`
	Confidence int      `json:"confidence"`
	Reasoning  string   `json:"reasoning"`
}

// ParseDecision extracts a Decision from raw model output. The model is
// asked for bare JSON but may wrap it in prose; the first balanced object
// is taken. ok is false when nothing parseable was found.
func ParseDecision(raw string) (Decision, bool) {
	start := strings.IndexByte(raw, '{')
	end := strings.LastIndexByte(raw, '}')
	if start < 0 || end <= start {
		return Decision{}, false
	}
	var d Decision
	if err := sonic.Unmarshal([]byte(raw[start:end+1]), &d); err != nil {
		return Decision{}, false
	}
	if d.Action == "" || d.Severity == "" {
		return Decision{}, false
	}
	return d, true
}

// FallbackDecision is the deterministic keyword rule used when the model's
// output is absent or unparsable.
func FallbackDecision(flagReason string) Decision {
	reason := strings.ToLower(flagReason)

	if strings.Contains(reason, "spam") || strings.Contains(reason, "inappropriate") {
		return Decision{
			Action:     ActionWarn,
			Severity:   SeverityLow,
			Confidence: 70,
			Reasoning:  "Automated decision: Minor policy violation detected",
		}
	}
	if strings.Contains(reason, "harassment") || strings.Contains(reason, "abuse") {
		return Decision{
			Action:     ActionEscalate,
			Severity:   SeverityHigh,
			Confidence: 80,
			Reasoning:  "Automated decision: Serious violation requires admin review",
		}
	}
	return Decision{
		Action:     ActionWarn,
		Severity:   SeverityMedium,
		Confidence: 60,
		Reasoning:  "Automated decision: General policy violation",
	}
}

package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/apexquest/apexquest/internal/model"
)

func TestParseDecision(t *testing.T) {
	raw := `Here is my assessment:
{"action":"warn","severity":"medium","confidence":75,"reasoning":"Borderline spam"}
Let me know if you need anything else.`

	d, ok := ParseDecision(raw)
	assert.True(t, ok)
	assert.Equal(t, ActionWarn, d.Action)
	assert.Equal(t, SeverityMedium, d.Severity)
	assert.Equal(t, 75, d.Confidence)
	assert.Equal(t, "Borderline spam", d.Reasoning)
}

func TestParseDecisionRejectsJunk(t *testing.T) {
	cases := map[string]string{
		"no json":        "this content seems fine to me",
		"broken json":    `{"action": "warn", "severity":`,
		"missing fields": `{"confidence": 50}`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, ok := ParseDecision(raw)
			assert.False(t, ok)
		})
	}
}

func TestFallbackDecisionKeywordRules(t *testing.T) {
	cases := []struct {
		reason     string
		action     Action
		severity   Severity
		confidence int
	}{
		{"obvious SPAM link", ActionWarn, SeverityLow, 70},
		{"inappropriate language", ActionWarn, SeverityLow, 70},
		{"harassment in replies", ActionEscalate, SeverityHigh, 80},
		{"verbal abuse", ActionEscalate, SeverityHigh, 80},
		{"something else entirely", ActionWarn, SeverityMedium, 60},
	}
	for _, tc := range cases {
		t.Run(tc.reason, func(t *testing.T) {
			d := FallbackDecision(tc.reason)
			assert.Equal(t, tc.action, d.Action)
			assert.Equal(t, tc.severity, d.Severity)
			assert.Equal(t, tc.confidence, d.Confidence)
		})
	}
}

func TestBuildModerationPrompt(t *testing.T) {
	prompt := BuildModerationPrompt("some content", "spam")
	assert.Contains(t, prompt, `"some content"`)
	assert.Contains(t, prompt, `"spam"`)
}

func TestPersonaFor(t *testing.T) {
	assert.Equal(t, moderatorPersona, PersonaFor(model.RoleModerator))
	assert.Equal(t, adminPersona, PersonaFor(model.RoleAdmin))
	assert.Equal(t, userPersona, PersonaFor(model.RoleUser))
	assert.Equal(t, userPersona, PersonaFor(model.Role("intern")))
}

package ai

import (
	"fmt"

	"github.com/apexquest/apexquest/internal/model"
)

const (
	userPersona = `You are a friendly, slightly sarcastic AI assistant with a sense of humor. You can be playful and roast users gently while being helpful. IMPORTANT: Do not use markdown formatting, asterisks, hashtags, or special characters. Use plain text with simple line breaks and spacing for structure.

You can help this user analyze their own activity on ApexQuest: their posts, their replies, and their engagement patterns. Be encouraging about their progress but don't hesitate to playfully tease them if they're not posting much.`

	moderatorPersona = `You are a professional, analytical AI assistant focused on moderation and community management. Use plain text formatting only - no markdown, asterisks, or special characters.

You help moderators manage the ApexQuest community: all posts, flagged content, and issued warnings. Provide clear, actionable insights for community moderation.`

	adminPersona = `You are a professional, strategic AI assistant focused on platform administration and analytics. Use plain text formatting only - no markdown, asterisks, or special characters.

You help admins manage the entire ApexQuest platform: all users, posts, and channels. Provide strategic insights and platform analytics with clear sections.`

	// ModerationPrompt constrains the model to the decision JSON shape; the
	// response schema enforces it on the wire as well.
	ModerationPrompt = `Analyze this flagged content for moderation.

Content: %q
Flag Reason: %q

Determine:
1. Severity (low/medium/high/critical)
2. Recommended action (warn/remove/ban/escalate/dismiss)
3. Confidence level (0-100)
4. Reasoning

Respond with a single JSON object:
{"severity": "low|medium|high|critical", "action": "warn|remove|ban|escalate|dismiss", "confidence": 85, "reasoning": "Explanation of decision"}`
)

// personas maps each role to its Q&A system prompt. Dispatch is a table
// over the closed Role type, not string comparisons at call sites.
var personas = map[model.Role]string{
	model.RoleUser:      userPersona,
	model.RoleModerator: moderatorPersona,
	model.RoleAdmin:     adminPersona,
}

// PersonaFor returns the system prompt for a role, defaulting to the
// end-user persona for anything unrecognized.
func PersonaFor(role model.Role) string {
	if p, ok := personas[role]; ok {
		return p
	}
	return userPersona
}

// BuildModerationPrompt embeds the flagged content and the human-supplied
// flag reason into the fixed classification template.
func BuildModerationPrompt(content, flagReason string) string {
	return fmt.Sprintf(ModerationPrompt, content, flagReason)
}

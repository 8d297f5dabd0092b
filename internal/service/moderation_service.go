package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/apexquest/apexquest/internal/agent"
	"github.com/apexquest/apexquest/internal/ai"
	"github.com/apexquest/apexquest/internal/repository"
	"github.com/apexquest/apexquest/pkg/logger"
)

// ModerationService runs the two autonomous moderation pipelines. The
// moderator pipeline classifies flagged content and acts within its scope;
// anything beyond it is escalated to the admin pipeline, which decides from
// the user's history with a fixed policy.
type ModerationService interface {
	ModeratorPipeline(ctx context.Context, postID, flagReason, moderatorID string) (*agent.Report, error)
	AdminPipeline(ctx context.Context, escalated *agent.Report, adminID string) (*agent.Report, error)
	Reports() []agent.Report
	Activity() []agent.ActivityEntry
}

type moderationService struct {
	posts     repository.PostRepository
	staff     StaffService
	completer ai.Completer
	auth      agent.Authenticator
	reports   *agent.ReportStore
	activity  *agent.ActivityLog
}

func NewModerationService(posts repository.PostRepository, staff StaffService, completer ai.Completer, auth agent.Authenticator, reports *agent.ReportStore, activity *agent.ActivityLog) ModerationService {
	return &moderationService{posts: posts, staff: staff, completer: completer, auth: auth, reports: reports, activity: activity}
}

func (s *moderationService) Reports() []agent.Report { return s.reports.List() }
func (s *moderationService) Activity() []agent.ActivityEntry { return s.activity.List() }

func (s *moderationService) ModeratorPipeline(ctx context.Context, postID, flagReason, moderatorID string) (*agent.Report, error) {
	if !s.auth.ValidateAction(ctx, agent.TypeMod, "autonomous_moderation") {
		return nil, fmt.Errorf("%w: moderator agent not authorized for autonomous moderation", ErrAgentNotAuthorized)
	}

	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("load post: %w", err)
	}

	decision := s.classify(ctx, post.Content, flagReason)
	actions, err := s.executeModeratorDecision(ctx, decision, postID, post.UserID, moderatorID)
	if err != nil {
		return nil, err
	}

	report := &agent.Report{
		AgentType:       agent.TypeMod,
		PostID:          postID,
		UserID:          post.UserID,
		Decision:        decision,
		ExecutedActions: actions,
		Timestamp:       time.Now(),
	}
	s.reports.Append(*report)
	return report, nil
}

// classify asks the model for a structured decision, falling back to the
// keyword rules when the call fails or its output cannot be parsed.
func (s *moderationService) classify(ctx context.Context, content, flagReason string) ai.Decision {
	raw, err := s.completer.Classify(ctx, "", ai.BuildModerationPrompt(content, flagReason))
	if err != nil {
		logger.Warn("moderation classification failed, using fallback", zap.Error(err))
		return ai.FallbackDecision(flagReason)
	}
	decision, ok := ai.ParseDecision(raw)
	if !ok {
		logger.Warn("unparsable moderation decision, using fallback", zap.String("raw", raw))
		return ai.FallbackDecision(flagReason)
	}
	return decision
}

// executeModeratorDecision maps the decision onto staff operations. A ban
// request from the model is beyond the moderator agent's scope and is
// recorded as an escalation for the admin pipeline.
func (s *moderationService) executeModeratorDecision(ctx context.Context, decision ai.Decision, postID, userID, moderatorID string) ([]string, error) {
	switch decision.Action {
	case ai.ActionWarn:
		if _, err := s.staff.WarnUser(ctx, userID, moderatorID, postID, decision.Reasoning); err != nil {
			return nil, err
		}
		return []string{fmt.Sprintf("Warned user: %s", decision.Reasoning)}, nil
	case ai.ActionRemove:
		if _, err := s.staff.WarnUser(ctx, userID, moderatorID, postID, decision.Reasoning); err != nil {
			return nil, err
		}
		return []string{fmt.Sprintf("Warned user and flagged for removal: %s", decision.Reasoning)}, nil
	case ai.ActionDismiss:
		if err := s.staff.DismissFlag(ctx, postID); err != nil {
			return nil, err
		}
		return []string{fmt.Sprintf("Dismissed flag: %s", decision.Reasoning)}, nil
	case ai.ActionEscalate, ai.ActionBan:
		return []string{fmt.Sprintf("Escalated to admin: %s", decision.Reasoning)}, nil
	default:
		return []string{fmt.Sprintf("No action taken: %s", decision.Reasoning)}, nil
	}
}

func (s *moderationService) AdminPipeline(ctx context.Context, escalated *agent.Report, adminID string) (*agent.Report, error) {
	if !s.auth.ValidateAction(ctx, agent.TypeAdmin, "escalated_moderation") {
		return nil, fmt.Errorf("%w: admin agent not authorized for escalated moderation", ErrAgentNotAuthorized)
	}

	history, err := s.staff.History(ctx, escalated.UserID)
	if err != nil {
		return nil, err
	}
	decision := adminDecision(escalated, history)
	actions, err := s.executeAdminDecision(ctx, decision, escalated.PostID, escalated.UserID, adminID)
	if err != nil {
		return nil, err
	}

	report := &agent.Report{
		AgentType:       agent.TypeAdmin,
		PostID:          escalated.PostID,
		UserID:          escalated.UserID,
		Decision:        decision,
		ExecutedActions: actions,
		Timestamp:       time.Now(),
	}
	s.reports.Append(*report)
	return report, nil
}

// adminDecision is deliberately deterministic: escalated cases are decided
// from the user's record, not another model call.
func adminDecision(escalated *agent.Report, history *ModerationHistory) ai.Decision {
	if history.Bans > 0 || history.ActiveWarnings >= 2 {
		return ai.Decision{
			Action:     ai.ActionBan,
			Severity:   ai.SeverityCritical,
			Confidence: 95,
			Reasoning: fmt.Sprintf("User has %d warnings and %d previous bans. Escalated case requires ban.",
				history.ActiveWarnings, history.Bans),
		}
	}
	if escalated.Decision.Severity == ai.SeverityCritical {
		return ai.Decision{
			Action:     ai.ActionBan,
			Severity:   ai.SeverityCritical,
			Confidence: 90,
			Reasoning:  "Critical violation detected by moderator agent. Immediate ban required.",
		}
	}
	return ai.Decision{
		Action:     ai.ActionWarn,
		Severity:   ai.SeverityHigh,
		Confidence: 85,
		Reasoning:  "First-time serious violation. Final warning issued.",
	}
}

func (s *moderationService) executeAdminDecision(ctx context.Context, decision ai.Decision, postID, userID, adminID string) ([]string, error) {
	switch decision.Action {
	case ai.ActionBan:
		if err := s.staff.BanUser(ctx, userID, adminID, decision.Reasoning, false); err != nil {
			return nil, err
		}
		return []string{fmt.Sprintf("Banned user: %s", decision.Reasoning)}, nil
	case ai.ActionWarn:
		if _, err := s.staff.WarnUser(ctx, userID, adminID, postID, decision.Reasoning); err != nil {
			return nil, err
		}
		return []string{fmt.Sprintf("Final warning issued: %s", decision.Reasoning)}, nil
	default:
		return []string{fmt.Sprintf("Admin review completed: %s", decision.Reasoning)}, nil
	}
}

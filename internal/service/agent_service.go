package service

import (
	"context"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"go.uber.org/zap"

	"github.com/apexquest/apexquest/internal/ai"
	"github.com/apexquest/apexquest/internal/model"
	"github.com/apexquest/apexquest/internal/repository"
	"github.com/apexquest/apexquest/pkg/logger"
)

const (
	dailyQuestionLimit = 20
	questionCooldown   = 5 * time.Second

	cooldownMessage = "Whoa there, speed racer! 🏎️ Wait 5 seconds between questions. I need time to think!"
	quotaMessage    = "You've hit your daily limit of 20 questions! Come back tomorrow for more insights. 📊"
	apiDownMessage  = "Oops! My brain is taking a coffee break ☕. Try again in a moment!"
)

// AgentUsageStatus is returned alongside answers so the client can render
// the remaining-questions badge.
type AgentUsageStatus struct {
	UsedToday int64 `json:"usedToday"`
	Limit     int   `json:"limit"`
}

type AgentService interface {
	// Ask answers a question in the persona matching the user's role. Quota
	// and cooldown rejections come back as friendly strings, not errors.
	Ask(ctx context.Context, user *model.User, question string) (string, error)
	Usage(ctx context.Context, userID string) (*AgentUsageStatus, error)
}

type agentService struct {
	usage     repository.AgentUsageRepository
	users     repository.UserRepository
	channels  repository.ChannelRepository
	posts     repository.PostRepository
	replies   repository.ReplyRepository
	warnings  repository.WarningRepository
	completer ai.Completer
}

func NewAgentService(usage repository.AgentUsageRepository, users repository.UserRepository, channels repository.ChannelRepository, posts repository.PostRepository, replies repository.ReplyRepository, warnings repository.WarningRepository, completer ai.Completer) AgentService {
	return &agentService{usage: usage, users: users, channels: channels, posts: posts, replies: replies, warnings: warnings, completer: completer}
}

func usageDate(t time.Time) string { return t.Format("2006-01-02") }

func (s *agentService) Usage(ctx context.Context, userID string) (*AgentUsageStatus, error) {
	count, err := s.usage.CountForDate(ctx, userID, usageDate(time.Now()))
	if err != nil {
		return nil, err
	}
	return &AgentUsageStatus{UsedToday: count, Limit: dailyQuestionLimit}, nil
}

func (s *agentService) Ask(ctx context.Context, user *model.User, question string) (string, error) {
	if question == "" {
		return "", &ValidationError{Field: "question", Msg: "must not be empty"}
	}

	now := time.Now()
	last, err := s.usage.Last(ctx, user.ID)
	if err != nil {
		return "", err
	}
	if last != nil && now.Sub(last.CreatedAt) < questionCooldown {
		return cooldownMessage, nil
	}
	count, err := s.usage.CountForDate(ctx, user.ID, usageDate(now))
	if err != nil {
		return "", err
	}
	if count >= dailyQuestionLimit {
		return quotaMessage, nil
	}

	snapshot, err := s.snapshotFor(ctx, user)
	if err != nil {
		return "", err
	}
	snapshotJSON, err := sonic.MarshalString(snapshot)
	if err != nil {
		return "", fmt.Errorf("encode snapshot: %w", err)
	}

	prompt := fmt.Sprintf("User Question: %s\n\nUser Data: %s", question, snapshotJSON)
	answer, err := s.completer.Complete(ctx, ai.PersonaFor(user.Role), prompt)
	if err != nil {
		logger.Warn("agent completion failed", zap.String("user", user.ID), zap.Error(err))
		answer = apiDownMessage
	}

	// The attempt counts against the quota even when the upstream call
	// failed, so retry storms cannot bypass the limit.
	if err := s.usage.Create(ctx, &model.AgentUsage{
		UserID:    user.ID,
		Question:  question,
		Response:  answer,
		UsageDate: usageDate(now),
	}); err != nil {
		return "", err
	}
	return answer, nil
}

// snapshotFor gathers the data slice the asking role is allowed to see.
func (s *agentService) snapshotFor(ctx context.Context, user *model.User) (map[string]any, error) {
	data := map[string]any{}
	switch user.Role {
	case model.RoleModerator:
		all, err := s.posts.ListAll(ctx)
		if err != nil {
			return nil, err
		}
		flagged, err := s.posts.ListFlagged(ctx)
		if err != nil {
			return nil, err
		}
		warnings, err := s.warnings.ListRecent(ctx, time.Now().Add(-warningWindow))
		if err != nil {
			return nil, err
		}
		data["allPosts"] = all
		data["flaggedPosts"] = flagged
		data["warnings"] = warnings
	case model.RoleAdmin:
		users, err := s.users.List(ctx)
		if err != nil {
			return nil, err
		}
		all, err := s.posts.ListAll(ctx)
		if err != nil {
			return nil, err
		}
		channels, err := s.channels.List(ctx)
		if err != nil {
			return nil, err
		}
		data["allUsers"] = users
		data["allPosts"] = all
		data["channels"] = channels
	default:
		posts, err := s.posts.ListByUser(ctx, user.ID)
		if err != nil {
			return nil, err
		}
		replies, err := s.replies.ListByUser(ctx, user.ID)
		if err != nil {
			return nil, err
		}
		data["userPosts"] = posts
		data["userReplies"] = replies
	}
	return data, nil
}

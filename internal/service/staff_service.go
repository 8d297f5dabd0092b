package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"gorm.io/gorm"

	"github.com/apexquest/apexquest/internal/agent"
	"github.com/apexquest/apexquest/internal/model"
	"github.com/apexquest/apexquest/internal/repository"
)

const (
	// warningWindow is the rolling window in which warnings count as active.
	warningWindow = 30 * 24 * time.Hour
	// warningLimit triggers the automatic ban.
	warningLimit = 3
	// tempBanDuration is the default expiry for non-permanent bans.
	tempBanDuration = 24 * time.Hour

	autoBanReason = "Exceeded warning limit (3 warnings)"
)

// ChannelAnalytics summarizes one channel's activity for staff dashboards.
type ChannelAnalytics struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Emoji           string    `json:"emoji"`
	PostCount       int       `json:"postCount"`
	TotalLikes      int64     `json:"totalLikes"`
	TotalReplies    int64     `json:"totalReplies"`
	LastActivity    time.Time `json:"lastActivity"`
	EngagementScore int64     `json:"engagementScore"`
}

// FlaggedItem is one flagged post or reply in the staff review queue.
type FlaggedItem struct {
	ID          string               `json:"id"`
	Title       string               `json:"title"`
	Content     string               `json:"content"`
	UserID      string               `json:"userId"`
	UserName    string               `json:"userName"`
	ChannelName string               `json:"channelName"`
	CreatedAt   time.Time            `json:"createdAt"`
	FlagCount   int64                `json:"flagCount"`
	Type        model.FlagTargetType `json:"type"`
}

// ModerationHistory is the prior-offense summary the admin pipeline keys
// its policy on.
type ModerationHistory struct {
	ActiveWarnings int64 `json:"activeWarnings"`
	Bans           int64 `json:"bans"`
}

type StaffService interface {
	WarnUser(ctx context.Context, userID, moderatorID, postID, reason string) (int, error)
	BanUser(ctx context.Context, userID, bannedBy, reason string, permanent bool) error
	UnbanUser(ctx context.Context, userID, adminID string) error
	IsBanned(ctx context.Context, email string) (*model.Ban, error)
	DismissFlag(ctx context.Context, targetID string) error
	History(ctx context.Context, userID string) (*ModerationHistory, error)
	Analytics(ctx context.Context) ([]*ChannelAnalytics, error)
	FlaggedContent(ctx context.Context) ([]*FlaggedItem, error)
	Announce(ctx context.Context, fromID, message string) (int, error)
	StaffMessage(ctx context.Context, toID, message string) error
}

type staffService struct {
	db        *gorm.DB
	users     repository.UserRepository
	channels  repository.ChannelRepository
	posts     repository.PostRepository
	replies   repository.ReplyRepository
	flags     repository.FlagRepository
	warnings  repository.WarningRepository
	bans      repository.BanRepository
	notifier  NotificationService
	announcer *Announcer
	auth      agent.Authenticator
}

func NewStaffService(db *gorm.DB, users repository.UserRepository, channels repository.ChannelRepository, posts repository.PostRepository, replies repository.ReplyRepository, flags repository.FlagRepository, warnings repository.WarningRepository, bans repository.BanRepository, notifier NotificationService, announcer *Announcer, auth agent.Authenticator) StaffService {
	return &staffService{
		db: db, users: users, channels: channels, posts: posts, replies: replies,
		flags: flags, warnings: warnings, bans: bans,
		notifier: notifier, announcer: announcer, auth: auth,
	}
}

// WarnUser inserts a warning at level = active-count+1 and, at the limit,
// issues the automatic ban in the same transaction so a crash can never
// leave a third warning without its ban. Returns the new warning level.
func (s *staffService) WarnUser(ctx context.Context, userID, moderatorID, postID, reason string) (int, error) {
	if !s.auth.ValidateAction(ctx, agent.TypeMod, "warn_user") {
		return 0, fmt.Errorf("%w: moderator agent cannot warn users", ErrAgentNotAuthorized)
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("load user: %w", err)
	}

	var level int
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		warnings := repository.NewWarningRepository(tx)
		active, err := warnings.CountActive(ctx, userID, time.Now().Add(-warningWindow))
		if err != nil {
			return err
		}
		level = int(active) + 1
		if err := warnings.Create(ctx, &model.Warning{
			UserID:      userID,
			ModeratorID: moderatorID,
			PostID:      postID,
			Level:       level,
			Reason:      reason,
		}); err != nil {
			return err
		}
		if level >= warningLimit {
			expires := time.Now().Add(tempBanDuration)
			return repository.NewBanRepository(tx).Upsert(ctx, &model.Ban{
				Email:     user.Email,
				Reason:    autoBanReason,
				BannedBy:  moderatorID,
				ExpiresAt: &expires,
			})
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	title := fmt.Sprintf("Warning %d", level)
	if level >= warningLimit {
		title = "Final Warning"
	}
	logNotifyFailure("warn", s.notifier.Notify(ctx, userID, model.NotificationWarning,
		title, fmt.Sprintf("You have received a warning for: %s", reason)))
	if level >= warningLimit {
		logNotifyFailure("autoban", s.notifier.Notify(ctx, userID, model.NotificationBan,
			"Account Banned", fmt.Sprintf("You have been banned for 1 day for: %s", autoBanReason)))
	}
	return level, nil
}

func (s *staffService) BanUser(ctx context.Context, userID, bannedBy, reason string, permanent bool) error {
	if !s.auth.ValidateAction(ctx, agent.TypeAdmin, "ban_user") {
		return fmt.Errorf("%w: admin agent cannot ban users", ErrAgentNotAuthorized)
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("load user: %w", err)
	}

	ban := &model.Ban{Email: user.Email, Reason: reason, BannedBy: bannedBy}
	if !permanent {
		expires := time.Now().Add(tempBanDuration)
		ban.ExpiresAt = &expires
	}
	if err := s.bans.Upsert(ctx, ban); err != nil {
		return err
	}

	title := "Account Banned"
	duration := "for 1 day"
	if permanent {
		title = "Account Permanently Banned"
		duration = "permanently"
	}
	logNotifyFailure("ban", s.notifier.Notify(ctx, userID, model.NotificationBan,
		title, fmt.Sprintf("You have been banned %s for: %s", duration, reason)))
	return nil
}

// UnbanUser is an unconditional delete of the ban row; no history of past
// bans is retained.
func (s *staffService) UnbanUser(ctx context.Context, userID, adminID string) error {
	if !s.auth.ValidateAction(ctx, agent.TypeAdmin, "unban_user") {
		return fmt.Errorf("%w: admin agent cannot unban users", ErrAgentNotAuthorized)
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("load user: %w", err)
	}
	return s.bans.DeleteByEmail(ctx, user.Email)
}

func (s *staffService) IsBanned(ctx context.Context, email string) (*model.Ban, error) {
	return s.bans.GetActiveByEmail(ctx, email, time.Now())
}

// DismissFlag clears the flag bit on the target and removes its flag rows.
// Posts and replies share the flag table, so both targets are cleared.
func (s *staffService) DismissFlag(ctx context.Context, targetID string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := repository.NewPostRepository(tx).SetFlagged(ctx, targetID, false); err != nil {
			return err
		}
		if err := repository.NewReplyRepository(tx).SetFlagged(ctx, targetID, false); err != nil {
			return err
		}
		return repository.NewFlagRepository(tx).DeleteByTarget(ctx, targetID)
	})
}

func (s *staffService) History(ctx context.Context, userID string) (*ModerationHistory, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	warnings, err := s.warnings.CountActive(ctx, userID, time.Now().Add(-warningWindow))
	if err != nil {
		return nil, err
	}
	bans, err := s.bans.CountByEmail(ctx, user.Email)
	if err != nil {
		return nil, err
	}
	return &ModerationHistory{ActiveWarnings: warnings, Bans: bans}, nil
}

// Analytics aggregates every channel, including ones with no posts, sorted
// by engagement score.
func (s *staffService) Analytics(ctx context.Context) ([]*ChannelAnalytics, error) {
	channels, err := s.channels.List(ctx)
	if err != nil {
		return nil, err
	}
	posts, err := s.posts.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	byChannel := make(map[string]*ChannelAnalytics, len(channels))
	out := make([]*ChannelAnalytics, 0, len(channels))
	for _, ch := range channels {
		a := &ChannelAnalytics{ID: ch.ID, Name: ch.Name, Emoji: ch.Emoji}
		byChannel[ch.ID] = a
		out = append(out, a)
	}
	for _, p := range posts {
		a, ok := byChannel[p.ChannelID]
		if !ok {
			continue
		}
		a.PostCount++
		a.TotalLikes += p.LikesCount
		a.TotalReplies += p.RepliesCount
		if p.CreatedAt.After(a.LastActivity) {
			a.LastActivity = p.CreatedAt
		}
	}
	for _, a := range out {
		a.EngagementScore = a.TotalLikes + a.TotalReplies + int64(a.PostCount)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EngagementScore > out[j].EngagementScore })
	return out, nil
}

// FlaggedContent returns flagged posts and replies, newest first.
func (s *staffService) FlaggedContent(ctx context.Context) ([]*FlaggedItem, error) {
	var items []*FlaggedItem

	posts, err := s.posts.ListFlagged(ctx)
	if err != nil {
		return nil, err
	}
	for _, p := range posts {
		item := &FlaggedItem{
			ID: p.ID, Title: p.Title, Content: p.Content,
			UserID: p.UserID, CreatedAt: p.CreatedAt, Type: model.FlagTargetPost,
		}
		if p.User != nil {
			item.UserName = p.User.Name
		}
		if p.Channel != nil {
			item.ChannelName = p.Channel.Name
		}
		item.FlagCount, _ = s.flags.CountByTarget(ctx, p.ID)
		items = append(items, item)
	}

	replyIDs, err := s.flags.ListTargetIDs(ctx, model.FlagTargetReply)
	if err != nil {
		return nil, err
	}
	replies, err := s.replies.ListByIDs(ctx, replyIDs)
	if err != nil {
		return nil, err
	}
	for _, r := range replies {
		if !r.IsFlagged {
			continue
		}
		item := &FlaggedItem{
			ID: r.ID, Content: r.Content,
			UserID: r.UserID, CreatedAt: r.CreatedAt, Type: model.FlagTargetReply,
		}
		if post, err := s.posts.GetByID(ctx, r.PostID); err == nil {
			item.Title = fmt.Sprintf("Reply to: %s", post.Title)
			if post.Channel != nil {
				item.ChannelName = post.Channel.Name
			}
		}
		if r.User != nil {
			item.UserName = r.User.Name
		}
		item.FlagCount, _ = s.flags.CountByTarget(ctx, r.ID)
		items = append(items, item)
	}

	sort.Slice(items, func(i, j int) bool { return items[i].CreatedAt.After(items[j].CreatedAt) })
	return items, nil
}

// Announce queues a platform-wide notification to every other user and
// returns the number of recipients queued.
func (s *staffService) Announce(ctx context.Context, fromID, message string) (int, error) {
	ids, err := s.users.ListIDsExcept(ctx, fromID)
	if err != nil {
		return 0, err
	}
	for _, id := range ids {
		s.announcer.Enqueue(id, model.NotificationWarning, "Platform Announcement", message)
	}
	return len(ids), nil
}

func (s *staffService) StaffMessage(ctx context.Context, toID, message string) error {
	return s.notifier.Notify(ctx, toID, model.NotificationWarning, "Staff Message", message)
}

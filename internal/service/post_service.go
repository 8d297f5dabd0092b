package service

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/apexquest/apexquest/internal/model"
	"github.com/apexquest/apexquest/internal/repository"
)

const (
	maxTitleLen   = 100
	maxContentLen = 500
)

// LikeResult reports which way a like toggle went.
type LikeResult struct {
	Action     string `json:"action"` // "liked" or "unliked"
	LikesCount int64  `json:"likesCount"`
}

type PostService interface {
	Create(ctx context.Context, userID, channelID, title, content string, tag model.PostTag) (*model.Post, error)
	Get(ctx context.Context, id string) (*model.Post, error)
	ListByChannel(ctx context.Context, channelID string, limit int) ([]*model.Post, error)
	Delete(ctx context.Context, actor *model.User, postID string) error
	ToggleLike(ctx context.Context, userID, postID string) (*LikeResult, error)
	Flag(ctx context.Context, postID, userID, reason string) error

	CreateReply(ctx context.Context, userID, postID string, parentReplyID *string, content string) (*model.Reply, error)
	ListReplies(ctx context.Context, postID string) ([]*model.Reply, error)
	DeleteReply(ctx context.Context, actor *model.User, replyID string) error
	FlagReply(ctx context.Context, replyID, userID, reason string) error
}

type postService struct {
	db          *gorm.DB
	posts       repository.PostRepository
	replies     repository.ReplyRepository
	likes       repository.LikeRepository
	flags       repository.FlagRepository
	users       repository.UserRepository
	bans        repository.BanRepository
	broadcaster Broadcaster
}

func NewPostService(db *gorm.DB, posts repository.PostRepository, replies repository.ReplyRepository, likes repository.LikeRepository, flags repository.FlagRepository, users repository.UserRepository, bans repository.BanRepository, broadcaster Broadcaster) PostService {
	return &postService{db: db, posts: posts, replies: replies, likes: likes, flags: flags, users: users, bans: bans, broadcaster: broadcaster}
}

// requireNotBanned rejects content creation while the author has an active
// ban. Bans are keyed by email.
func (s *postService) requireNotBanned(ctx context.Context, userID string) error {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("load author: %w", err)
	}
	ban, err := s.bans.GetActiveByEmail(ctx, u.Email, time.Now())
	if err != nil {
		return fmt.Errorf("check ban: %w", err)
	}
	if ban != nil {
		return &BannedError{Until: ban.ExpiresAt, Reason: ban.Reason}
	}
	return nil
}

func (s *postService) Create(ctx context.Context, userID, channelID, title, content string, tag model.PostTag) (*model.Post, error) {
	if title == "" {
		return nil, &ValidationError{Field: "title", Msg: "must not be empty"}
	}
	if len(title) > maxTitleLen {
		return nil, &ValidationError{Field: "title", Msg: fmt.Sprintf("at most %d characters", maxTitleLen)}
	}
	if content == "" {
		return nil, &ValidationError{Field: "content", Msg: "must not be empty"}
	}
	if len(content) > maxContentLen {
		return nil, &ValidationError{Field: "content", Msg: fmt.Sprintf("at most %d characters", maxContentLen)}
	}
	if !tag.Valid() {
		return nil, &ValidationError{Field: "tag", Msg: "must be one of progress, challenges, wins, miscellaneous"}
	}
	if err := s.requireNotBanned(ctx, userID); err != nil {
		return nil, err
	}

	post := &model.Post{UserID: userID, ChannelID: channelID, Title: title, Content: content, Tag: tag}
	if err := s.posts.Create(ctx, post); err != nil {
		return nil, err
	}
	stored, err := s.posts.GetByID(ctx, post.ID)
	if err != nil {
		return nil, err
	}
	if s.broadcaster != nil {
		s.broadcaster.Push("", map[string]any{"type": "post_created", "post": stored})
	}
	return stored, nil
}

func (s *postService) Get(ctx context.Context, id string) (*model.Post, error) {
	return s.posts.GetByID(ctx, id)
}

func (s *postService) ListByChannel(ctx context.Context, channelID string, limit int) ([]*model.Post, error) {
	return s.posts.ListByChannel(ctx, channelID, limit)
}

func (s *postService) Delete(ctx context.Context, actor *model.User, postID string) error {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	if post.UserID != actor.ID && !actor.Role.IsStaff() {
		return ErrNotAllowed
	}
	return s.posts.Delete(ctx, postID)
}

// ToggleLike flips the like pair and moves the denormalized counter in the
// same transaction, so like+like always nets zero.
func (s *postService) ToggleLike(ctx context.Context, userID, postID string) (*LikeResult, error) {
	var action string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		likes := repository.NewLikeRepository(tx)
		posts := repository.NewPostRepository(tx)

		exists, err := likes.Exists(ctx, userID, postID)
		if err != nil {
			return err
		}
		if exists {
			if err := likes.Delete(ctx, userID, postID); err != nil {
				return err
			}
			action = "unliked"
			return posts.AdjustLikes(ctx, postID, -1)
		}
		if err := likes.Create(ctx, userID, postID); err != nil {
			return err
		}
		action = "liked"
		return posts.AdjustLikes(ctx, postID, +1)
	})
	if err != nil {
		return nil, err
	}
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	return &LikeResult{Action: action, LikesCount: post.LikesCount}, nil
}

// Flag marks a post for staff review. A user may flag a target once.
func (s *postService) Flag(ctx context.Context, postID, userID, reason string) error {
	return s.flagTarget(ctx, postID, model.FlagTargetPost, userID, reason)
}

func (s *postService) FlagReply(ctx context.Context, replyID, userID, reason string) error {
	return s.flagTarget(ctx, replyID, model.FlagTargetReply, userID, reason)
}

func (s *postService) flagTarget(ctx context.Context, targetID string, targetType model.FlagTargetType, userID, reason string) error {
	exists, err := s.flags.Exists(ctx, targetID, userID)
	if err != nil {
		return err
	}
	if exists {
		return ErrAlreadyFlagged
	}
	if reason == "" {
		reason = "inappropriate_content"
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		flags := repository.NewFlagRepository(tx)
		if err := flags.Create(ctx, &model.Flag{
			TargetID:   targetID,
			TargetType: targetType,
			FlaggedBy:  userID,
			Reason:     reason,
		}); err != nil {
			return err
		}
		switch targetType {
		case model.FlagTargetPost:
			return repository.NewPostRepository(tx).SetFlagged(ctx, targetID, true)
		case model.FlagTargetReply:
			return repository.NewReplyRepository(tx).SetFlagged(ctx, targetID, true)
		}
		return nil
	})
}

func (s *postService) CreateReply(ctx context.Context, userID, postID string, parentReplyID *string, content string) (*model.Reply, error) {
	if content == "" {
		return nil, &ValidationError{Field: "content", Msg: "must not be empty"}
	}
	if len(content) > maxContentLen {
		return nil, &ValidationError{Field: "content", Msg: fmt.Sprintf("at most %d characters", maxContentLen)}
	}
	if err := s.requireNotBanned(ctx, userID); err != nil {
		return nil, err
	}

	level := 0
	if parentReplyID != nil {
		parent, err := s.replies.GetByID(ctx, *parentReplyID)
		if err != nil {
			return nil, fmt.Errorf("load parent reply: %w", err)
		}
		if parent.ParentReplyID != nil {
			return nil, ErrReplyTooDeep
		}
		level = parent.Level + 1
	}

	reply := &model.Reply{PostID: postID, ParentReplyID: parentReplyID, UserID: userID, Content: content, Level: level}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := repository.NewReplyRepository(tx).Create(ctx, reply); err != nil {
			return err
		}
		return repository.NewPostRepository(tx).AdjustReplies(ctx, postID, +1)
	})
	if err != nil {
		return nil, err
	}
	stored, err := s.replies.GetByID(ctx, reply.ID)
	if err != nil {
		return nil, err
	}
	if s.broadcaster != nil {
		s.broadcaster.Push("", map[string]any{"type": "reply_created", "reply": stored})
	}
	return stored, nil
}

// ListReplies materializes the one-level tree from the flat list.
func (s *postService) ListReplies(ctx context.Context, postID string) ([]*model.Reply, error) {
	flat, err := s.replies.ListByPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*model.Reply, len(flat))
	var roots []*model.Reply
	for _, r := range flat {
		byID[r.ID] = r
		if r.ParentReplyID == nil {
			roots = append(roots, r)
		}
	}
	for _, r := range flat {
		if r.ParentReplyID != nil {
			if parent, ok := byID[*r.ParentReplyID]; ok {
				parent.Replies = append(parent.Replies, r)
			}
		}
	}
	return roots, nil
}

func (s *postService) DeleteReply(ctx context.Context, actor *model.User, replyID string) error {
	reply, err := s.replies.GetByID(ctx, replyID)
	if err != nil {
		return err
	}
	if reply.UserID != actor.ID && !actor.Role.IsStaff() {
		return ErrNotAllowed
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := repository.NewReplyRepository(tx).Delete(ctx, replyID); err != nil {
			return err
		}
		return repository.NewPostRepository(tx).AdjustReplies(ctx, reply.PostID, -1)
	})
}

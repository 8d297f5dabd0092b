package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/apexquest/apexquest/internal/model"
	"github.com/apexquest/apexquest/internal/repository"
	"github.com/apexquest/apexquest/pkg/logger"
)

// channelRequestsChannel is the built-in channel every new user joins.
const channelRequestsChannel = "Channel Requests"

// IdentityProfile is what the identity provider asserts about a logged-in
// human: consumed once per login to upsert the User row.
type IdentityProfile struct {
	Subject string
	Email   string
	Name    string
	Picture string
}

// UserWithBanStatus decorates a user row with its current ban state for
// staff listings.
type UserWithBanStatus struct {
	*model.User
	IsBanned bool       `json:"isBanned"`
	Ban      *model.Ban `json:"ban,omitempty"`
}

type UserService interface {
	UpsertFromIdentity(ctx context.Context, profile IdentityProfile) (*model.User, error)
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetBySubject(ctx context.Context, subjectID string) (*model.User, error)
	UpdateProfile(ctx context.Context, id, name, bio string) error
	ListAll(ctx context.Context) ([]*UserWithBanStatus, error)
	ListStaff(ctx context.Context) ([]*model.User, error)
}

type userService struct {
	users      repository.UserRepository
	channels   repository.ChannelRepository
	bans       repository.BanRepository
	adminEmail string
	modEmail   string
}

func NewUserService(users repository.UserRepository, channels repository.ChannelRepository, bans repository.BanRepository, adminEmail, modEmail string) UserService {
	return &userService{users: users, channels: channels, bans: bans, adminEmail: adminEmail, modEmail: modEmail}
}

// UpsertFromIdentity creates or refreshes the user on login. Role is fixed
// by the email allowlist; the avatar falls back to a generated initials
// image when the provider supplies none or a gravatar default.
func (s *userService) UpsertFromIdentity(ctx context.Context, profile IdentityProfile) (*model.User, error) {
	name := profile.Name
	if name == "" {
		name = profile.Email
	}
	u := &model.User{
		SubjectID: profile.Subject,
		Email:     profile.Email,
		Name:      name,
		AvatarURL: resolveAvatar(profile.Email, profile.Picture),
		Role:      s.roleForEmail(profile.Email),
	}
	stored, err := s.users.Upsert(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("upsert user: %w", err)
	}

	// Every user sees the built-in requests channel; join failure is not
	// fatal to login.
	if ch, err := s.channels.GetByName(ctx, channelRequestsChannel); err == nil && ch != nil {
		if err := s.channels.Join(ctx, stored.ID, ch.ID); err != nil {
			logger.Warn("auto-join requests channel", zap.String("user", stored.ID), zap.Error(err))
		}
	}
	return stored, nil
}

func (s *userService) roleForEmail(email string) model.Role {
	switch email {
	case s.adminEmail:
		return model.RoleAdmin
	case s.modEmail:
		return model.RoleModerator
	}
	return model.RoleUser
}

var avatarColors = []string{"6366f1", "8b5cf6", "ec4899", "f59e0b", "10b981", "ef4444", "3b82f6", "84cc16"}

func resolveAvatar(email, picture string) string {
	isGravatarDefault := picture != "" &&
		strings.Contains(picture, "gravatar.com") &&
		(strings.Contains(picture, "d=") || strings.Contains(picture, "default"))
	if picture != "" && !isGravatarDefault {
		return picture
	}
	initials := email
	if len(initials) > 2 {
		initials = initials[:2]
	}
	color := avatarColors[int(email[0])%len(avatarColors)]
	return fmt.Sprintf("https://ui-avatars.com/api/?name=%s&background=%s&color=fff&size=200&bold=true",
		strings.ToUpper(initials), color)
}

func (s *userService) GetByID(ctx context.Context, id string) (*model.User, error) {
	return s.users.GetByID(ctx, id)
}

func (s *userService) GetBySubject(ctx context.Context, subjectID string) (*model.User, error) {
	return s.users.GetBySubject(ctx, subjectID)
}

func (s *userService) UpdateProfile(ctx context.Context, id, name, bio string) error {
	updates := map[string]any{}
	if name != "" {
		updates["name"] = name
	}
	updates["bio"] = bio
	return s.users.UpdateProfile(ctx, id, updates)
}

func (s *userService) ListAll(ctx context.Context) ([]*UserWithBanStatus, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	out := make([]*UserWithBanStatus, 0, len(users))
	for _, u := range users {
		ban, err := s.bans.GetActiveByEmail(ctx, u.Email, now)
		if err != nil {
			return nil, err
		}
		out = append(out, &UserWithBanStatus{User: u, IsBanned: ban != nil, Ban: ban})
	}
	return out, nil
}

func (s *userService) ListStaff(ctx context.Context) ([]*model.User, error) {
	return s.users.ListStaff(ctx)
}

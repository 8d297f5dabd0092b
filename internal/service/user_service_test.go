package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/apexquest/apexquest/internal/model"
	"github.com/apexquest/apexquest/internal/repository"
)

func newUserService(db *gorm.DB) UserService {
	return NewUserService(
		repository.NewUserRepository(db),
		repository.NewChannelRepository(db),
		repository.NewBanRepository(db),
		"admin@apexquest.com", "mod@apexquest.com")
}

func TestUpsertFromIdentityAssignsRoles(t *testing.T) {
	db := newTestDB(t)
	svc := newUserService(db)
	ctx := context.Background()

	cases := []struct {
		email string
		role  model.Role
	}{
		{"admin@apexquest.com", model.RoleAdmin},
		{"mod@apexquest.com", model.RoleModerator},
		{"random@example.com", model.RoleUser},
	}
	for _, tc := range cases {
		user, err := svc.UpsertFromIdentity(ctx, IdentityProfile{
			Subject: "sub-" + tc.email,
			Email:   tc.email,
			Name:    "Someone",
		})
		require.NoError(t, err)
		assert.Equal(t, tc.role, user.Role, tc.email)
	}
}

func TestUpsertFromIdentityIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	svc := newUserService(db)
	ctx := context.Background()

	first, err := svc.UpsertFromIdentity(ctx, IdentityProfile{
		Subject: "sub-1", Email: "alice@example.com", Name: "Alice",
	})
	require.NoError(t, err)

	second, err := svc.UpsertFromIdentity(ctx, IdentityProfile{
		Subject: "sub-1", Email: "alice@example.com", Name: "Alice Updated",
	})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "Alice Updated", second.Name)

	var count int64
	require.NoError(t, db.Model(&model.User{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestUpsertJoinsRequestsChannel(t *testing.T) {
	db := newTestDB(t)
	svc := newUserService(db)
	ch := seedChannel(t, db, channelRequestsChannel)
	ctx := context.Background()

	user, err := svc.UpsertFromIdentity(ctx, IdentityProfile{
		Subject: "sub-1", Email: "alice@example.com", Name: "Alice",
	})
	require.NoError(t, err)

	member, err := repository.NewChannelRepository(db).IsMember(ctx, user.ID, ch.ID)
	require.NoError(t, err)
	assert.True(t, member)
}

func TestResolveAvatar(t *testing.T) {
	// A real provider picture is kept as-is.
	assert.Equal(t, "https://cdn.example.com/pic.png",
		resolveAvatar("a@example.com", "https://cdn.example.com/pic.png"))

	// Gravatar defaults and missing pictures fall back to generated initials.
	generated := resolveAvatar("alice@example.com", "")
	assert.Contains(t, generated, "ui-avatars.com")
	assert.Contains(t, generated, "name=AL")

	gravatarDefault := resolveAvatar("bob@example.com", "https://gravatar.com/avatar/x?d=mp")
	assert.Contains(t, gravatarDefault, "ui-avatars.com")
}

func TestListAllIncludesBanStatus(t *testing.T) {
	db := newTestDB(t)
	svc := newUserService(db)
	banned := seedUser(t, db, "banned@example.com", model.RoleUser)
	seedUser(t, db, "clean@example.com", model.RoleUser)
	ctx := context.Background()

	expires := time.Now().Add(time.Hour)
	require.NoError(t, repository.NewBanRepository(db).Upsert(ctx, &model.Ban{
		Email: banned.Email, Reason: "spam", BannedBy: "mod", ExpiresAt: &expires,
	}))

	users, err := svc.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)

	byEmail := map[string]*UserWithBanStatus{}
	for _, u := range users {
		byEmail[u.Email] = u
	}
	assert.True(t, byEmail["banned@example.com"].IsBanned)
	assert.False(t, byEmail["clean@example.com"].IsBanned)
}

package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apexquest/apexquest/internal/model"
	"github.com/apexquest/apexquest/internal/repository"
)

func TestCreatePostValidation(t *testing.T) {
	db := newTestDB(t)
	svc := newTestPostService(db)
	user := seedUser(t, db, "alice@example.com", model.RoleUser)
	ch := seedChannel(t, db, "Fitness & Health")
	ctx := context.Background()

	longTitle := make([]byte, maxTitleLen+1)
	for i := range longTitle {
		longTitle[i] = 'x'
	}

	cases := []struct {
		name    string
		title   string
		content string
		tag     model.PostTag
	}{
		{"empty title", "", "content", model.TagProgress},
		{"title too long", string(longTitle), "content", model.TagProgress},
		{"empty content", "title", "", model.TagProgress},
		{"bad tag", "title", "content", model.PostTag("rant")},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(ctx, user.ID, ch.ID, tc.title, tc.content, tc.tag)
			var invalid *ValidationError
			assert.ErrorAs(t, err, &invalid)
		})
	}

	post, err := svc.Create(ctx, user.ID, ch.ID, "Week 1", "Made it to the gym", model.TagWins)
	require.NoError(t, err)
	assert.NotEmpty(t, post.ID)
	assert.NotNil(t, post.User)
}

func TestBannedUserCannotPostUntilExpiry(t *testing.T) {
	db := newTestDB(t)
	svc := newTestPostService(db)
	user := seedUser(t, db, "banned@example.com", model.RoleUser)
	ch := seedChannel(t, db, "Learning & Skills")
	ctx := context.Background()
	bans := repository.NewBanRepository(db)

	expires := time.Now().Add(time.Hour)
	require.NoError(t, bans.Upsert(ctx, &model.Ban{
		Email: user.Email, Reason: "spam", BannedBy: "mod-1", ExpiresAt: &expires,
	}))

	_, err := svc.Create(ctx, user.ID, ch.ID, "hello", "world", model.TagProgress)
	var banned *BannedError
	require.ErrorAs(t, err, &banned)
	assert.Contains(t, banned.Error(), "spam")

	_, err = svc.CreateReply(ctx, user.ID, "some-post", nil, "me too")
	assert.ErrorAs(t, err, &banned)

	// Once the ban lapses the same user can post again without any unban.
	past := time.Now().Add(-time.Minute)
	require.NoError(t, db.Model(&model.Ban{}).
		Where("email = ?", user.Email).
		Update("expires_at", past).Error)

	_, err = svc.Create(ctx, user.ID, ch.ID, "hello", "world", model.TagProgress)
	assert.NoError(t, err)
}

func TestToggleLikeNetsZero(t *testing.T) {
	db := newTestDB(t)
	svc := newTestPostService(db)
	author := seedUser(t, db, "author@example.com", model.RoleUser)
	liker := seedUser(t, db, "liker@example.com", model.RoleUser)
	ch := seedChannel(t, db, "Creative Projects")
	post := seedPost(t, db, author.ID, ch.ID)
	ctx := context.Background()

	res, err := svc.ToggleLike(ctx, liker.ID, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "liked", res.Action)
	assert.EqualValues(t, 1, res.LikesCount)

	res, err = svc.ToggleLike(ctx, liker.ID, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "unliked", res.Action)
	assert.EqualValues(t, 0, res.LikesCount)

	var likeCount int64
	require.NoError(t, db.Model(&model.Like{}).Count(&likeCount).Error)
	assert.EqualValues(t, 0, likeCount)
}

func TestFlagPostOncePerUser(t *testing.T) {
	db := newTestDB(t)
	svc := newTestPostService(db)
	author := seedUser(t, db, "author@example.com", model.RoleUser)
	flagger := seedUser(t, db, "flagger@example.com", model.RoleUser)
	ch := seedChannel(t, db, "Career Growth")
	post := seedPost(t, db, author.ID, ch.ID)
	ctx := context.Background()

	require.NoError(t, svc.Flag(ctx, post.ID, flagger.ID, "spam"))

	stored, err := svc.Get(ctx, post.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsFlagged)

	err = svc.Flag(ctx, post.ID, flagger.ID, "spam again")
	assert.ErrorIs(t, err, ErrAlreadyFlagged)

	// A different user flagging the same post is fine.
	other := seedUser(t, db, "other@example.com", model.RoleUser)
	assert.NoError(t, svc.Flag(ctx, post.ID, other.ID, ""))
}

func TestReplyNestingLimitedToOneLevel(t *testing.T) {
	db := newTestDB(t)
	svc := newTestPostService(db)
	user := seedUser(t, db, "alice@example.com", model.RoleUser)
	ch := seedChannel(t, db, "Mental Health")
	post := seedPost(t, db, user.ID, ch.ID)
	ctx := context.Background()

	top, err := svc.CreateReply(ctx, user.ID, post.ID, nil, "top level")
	require.NoError(t, err)
	assert.Equal(t, 0, top.Level)

	nested, err := svc.CreateReply(ctx, user.ID, post.ID, &top.ID, "nested")
	require.NoError(t, err)
	assert.Equal(t, 1, nested.Level)

	_, err = svc.CreateReply(ctx, user.ID, post.ID, &nested.ID, "too deep")
	assert.ErrorIs(t, err, ErrReplyTooDeep)

	stored, err := svc.Get(ctx, post.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, stored.RepliesCount)

	tree, err := svc.ListReplies(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, tree, 1)
	require.Len(t, tree[0].Replies, 1)
	assert.Equal(t, nested.ID, tree[0].Replies[0].ID)
}

func TestDeletePostOwnership(t *testing.T) {
	db := newTestDB(t)
	svc := newTestPostService(db)
	author := seedUser(t, db, "author@example.com", model.RoleUser)
	stranger := seedUser(t, db, "stranger@example.com", model.RoleUser)
	mod := seedUser(t, db, "mod@example.com", model.RoleModerator)
	ch := seedChannel(t, db, "Travel & Adventure")
	ctx := context.Background()

	post := seedPost(t, db, author.ID, ch.ID)
	assert.ErrorIs(t, svc.Delete(ctx, stranger, post.ID), ErrNotAllowed)
	assert.NoError(t, svc.Delete(ctx, author, post.ID))

	post = seedPost(t, db, author.ID, ch.ID)
	assert.NoError(t, svc.Delete(ctx, mod, post.ID))
}

func TestDeleteReplyAdjustsCounter(t *testing.T) {
	db := newTestDB(t)
	svc := newTestPostService(db)
	user := seedUser(t, db, "alice@example.com", model.RoleUser)
	ch := seedChannel(t, db, "Home & Lifestyle")
	post := seedPost(t, db, user.ID, ch.ID)
	ctx := context.Background()

	reply, err := svc.CreateReply(ctx, user.ID, post.ID, nil, "nice")
	require.NoError(t, err)
	require.NoError(t, svc.DeleteReply(ctx, user, reply.ID))

	stored, err := svc.Get(ctx, post.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, stored.RepliesCount)
}

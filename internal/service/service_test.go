package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/apexquest/apexquest/config"
	"github.com/apexquest/apexquest/internal/agent"
	"github.com/apexquest/apexquest/internal/model"
	"github.com/apexquest/apexquest/internal/repository"
	"github.com/apexquest/apexquest/pkg/database"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.Migrate(db))
	return db
}

func newFakeAuth(t *testing.T) agent.Authenticator {
	t.Helper()
	a, err := agent.NewFakeAuthenticator(&config.AgentsConfig{}, agent.NewActivityLog(), zap.NewNop())
	require.NoError(t, err)
	return a
}

func seedUser(t *testing.T, db *gorm.DB, email string, role model.Role) *model.User {
	t.Helper()
	u, err := repository.NewUserRepository(db).Upsert(context.Background(), &model.User{
		SubjectID: "sub-" + email,
		Email:     email,
		Name:      email,
		Role:      role,
	})
	require.NoError(t, err)
	return u
}

func seedChannel(t *testing.T, db *gorm.DB, name string) *model.Channel {
	t.Helper()
	ch := &model.Channel{Name: name, Emoji: "🚀"}
	require.NoError(t, repository.NewChannelRepository(db).Create(context.Background(), ch))
	return ch
}

func seedPost(t *testing.T, db *gorm.DB, userID, channelID string) *model.Post {
	t.Helper()
	p := &model.Post{
		UserID:    userID,
		ChannelID: channelID,
		Title:     "Week 3 check-in",
		Content:   "Still going strong",
		Tag:       model.TagProgress,
	}
	require.NoError(t, repository.NewPostRepository(db).Create(context.Background(), p))
	return p
}

// newStaffDeps builds the staff service with a direct-delivery notifier and
// an unstarted announcer so queued jobs can be observed.
func newStaffDeps(t *testing.T, db *gorm.DB) (StaffService, *Announcer) {
	t.Helper()
	notifier := NewNotificationService(repository.NewNotificationRepository(db), nil, nil)
	announcer := NewAnnouncer(notifier, 100)
	staff := NewStaffService(db,
		repository.NewUserRepository(db),
		repository.NewChannelRepository(db),
		repository.NewPostRepository(db),
		repository.NewReplyRepository(db),
		repository.NewFlagRepository(db),
		repository.NewWarningRepository(db),
		repository.NewBanRepository(db),
		notifier, announcer, newFakeAuth(t))
	return staff, announcer
}

func newTestPostService(db *gorm.DB) PostService {
	return NewPostService(db,
		repository.NewPostRepository(db),
		repository.NewReplyRepository(db),
		repository.NewLikeRepository(db),
		repository.NewFlagRepository(db),
		repository.NewUserRepository(db),
		repository.NewBanRepository(db),
		nil)
}

// stubCompleter returns canned model output.
type stubCompleter struct {
	completeResp string
	completeErr  error
	classifyResp string
	classifyErr  error
}

func (s *stubCompleter) Complete(context.Context, string, string) (string, error) {
	return s.completeResp, s.completeErr
}

func (s *stubCompleter) Classify(context.Context, string, string) (string, error) {
	return s.classifyResp, s.classifyErr
}

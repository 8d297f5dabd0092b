package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/apexquest/apexquest/internal/model"
	"github.com/apexquest/apexquest/internal/repository"
)

func newAgentService(db *gorm.DB, completer *stubCompleter) AgentService {
	return NewAgentService(
		repository.NewAgentUsageRepository(db),
		repository.NewUserRepository(db),
		repository.NewChannelRepository(db),
		repository.NewPostRepository(db),
		repository.NewReplyRepository(db),
		repository.NewWarningRepository(db),
		completer)
}

// backdateUsage pushes every usage row for the user out of the cooldown
// window without leaving today's quota window.
func backdateUsage(t *testing.T, db *gorm.DB, userID string) {
	t.Helper()
	require.NoError(t, db.Model(&model.AgentUsage{}).
		Where("user_id = ?", userID).
		Update("created_at", time.Now().Add(-time.Minute)).Error)
}

func TestAskAnswersAndRecordsUsage(t *testing.T) {
	db := newTestDB(t)
	svc := newAgentService(db, &stubCompleter{completeResp: "You posted twice. Not bad!"})
	user := seedUser(t, db, "alice@example.com", model.RoleUser)
	ctx := context.Background()

	answer, err := svc.Ask(ctx, user, "How am I doing?")
	require.NoError(t, err)
	assert.Equal(t, "You posted twice. Not bad!", answer)

	usage, err := svc.Usage(ctx, user.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, usage.UsedToday)
}

func TestAskCooldown(t *testing.T) {
	db := newTestDB(t)
	svc := newAgentService(db, &stubCompleter{completeResp: "ok"})
	user := seedUser(t, db, "alice@example.com", model.RoleUser)
	ctx := context.Background()

	_, err := svc.Ask(ctx, user, "first")
	require.NoError(t, err)

	answer, err := svc.Ask(ctx, user, "second, immediately")
	require.NoError(t, err)
	assert.Equal(t, cooldownMessage, answer)

	// The rejected attempt does not consume quota.
	usage, err := svc.Usage(ctx, user.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, usage.UsedToday)
}

func TestAskDailyQuota(t *testing.T) {
	db := newTestDB(t)
	svc := newAgentService(db, &stubCompleter{completeResp: "ok"})
	user := seedUser(t, db, "alice@example.com", model.RoleUser)
	ctx := context.Background()
	usageRepo := repository.NewAgentUsageRepository(db)

	for i := 0; i < dailyQuestionLimit; i++ {
		require.NoError(t, usageRepo.Create(ctx, &model.AgentUsage{
			UserID:    user.ID,
			Question:  "q",
			Response:  "a",
			UsageDate: usageDate(time.Now()),
		}))
	}
	backdateUsage(t, db, user.ID)

	answer, err := svc.Ask(ctx, user, "one more?")
	require.NoError(t, err)
	assert.Equal(t, quotaMessage, answer)

	usage, err := svc.Usage(ctx, user.ID)
	require.NoError(t, err)
	assert.EqualValues(t, dailyQuestionLimit, usage.UsedToday)
}

func TestAskAPIFailureStillConsumesQuota(t *testing.T) {
	db := newTestDB(t)
	svc := newAgentService(db, &stubCompleter{completeErr: errors.New("upstream 503")})
	user := seedUser(t, db, "alice@example.com", model.RoleUser)
	ctx := context.Background()

	answer, err := svc.Ask(ctx, user, "are you there?")
	require.NoError(t, err)
	assert.Equal(t, apiDownMessage, answer)

	usage, err := svc.Usage(ctx, user.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, usage.UsedToday)

	var row model.AgentUsage
	require.NoError(t, db.Where("user_id = ?", user.ID).First(&row).Error)
	assert.Equal(t, apiDownMessage, row.Response)
}

package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/apexquest/apexquest/internal/agent"
	"github.com/apexquest/apexquest/internal/ai"
	"github.com/apexquest/apexquest/internal/model"
	"github.com/apexquest/apexquest/internal/repository"
)

func newModerationService(t *testing.T, db *gorm.DB, completer *stubCompleter) (ModerationService, StaffService) {
	t.Helper()
	staff, _ := newStaffDeps(t, db)
	svc := NewModerationService(
		repository.NewPostRepository(db),
		staff, completer, newFakeAuth(t),
		agent.NewReportStore(), agent.NewActivityLog())
	return svc, staff
}

func TestModeratorPipelineFallsBackOnUnparsableOutput(t *testing.T) {
	db := newTestDB(t)
	svc, _ := newModerationService(t, db, &stubCompleter{classifyResp: "I think this is fine, probably"})
	author := seedUser(t, db, "author@example.com", model.RoleUser)
	mod := seedUser(t, db, "mod@example.com", model.RoleModerator)
	ch := seedChannel(t, db, "Fitness & Health")
	post := seedPost(t, db, author.ID, ch.ID)
	ctx := context.Background()

	report, err := svc.ModeratorPipeline(ctx, post.ID, "spam", mod.ID)
	require.NoError(t, err)
	assert.Equal(t, ai.ActionWarn, report.Decision.Action)
	assert.Equal(t, ai.SeverityLow, report.Decision.Severity)
	assert.Equal(t, 70, report.Decision.Confidence)

	var warningCount int64
	require.NoError(t, db.Model(&model.Warning{}).Where("user_id = ?", author.ID).Count(&warningCount).Error)
	assert.EqualValues(t, 1, warningCount)

	assert.Len(t, svc.Reports(), 1)
}

func TestModeratorPipelineEscalatesWithoutActing(t *testing.T) {
	db := newTestDB(t)
	svc, _ := newModerationService(t, db, &stubCompleter{classifyErr: context.DeadlineExceeded})
	author := seedUser(t, db, "author@example.com", model.RoleUser)
	mod := seedUser(t, db, "mod@example.com", model.RoleModerator)
	ch := seedChannel(t, db, "Learning & Skills")
	post := seedPost(t, db, author.ID, ch.ID)
	ctx := context.Background()

	report, err := svc.ModeratorPipeline(ctx, post.ID, "harassment of other members", mod.ID)
	require.NoError(t, err)
	assert.Equal(t, ai.ActionEscalate, report.Decision.Action)
	assert.Equal(t, ai.SeverityHigh, report.Decision.Severity)

	// Escalation itself touches nothing; the admin pipeline decides.
	var warningCount int64
	require.NoError(t, db.Model(&model.Warning{}).Count(&warningCount).Error)
	assert.EqualValues(t, 0, warningCount)
}

func TestModeratorPipelineDismissClearsFlag(t *testing.T) {
	db := newTestDB(t)
	svc, _ := newModerationService(t, db, &stubCompleter{
		classifyResp: `{"action":"dismiss","severity":"low","confidence":92,"reasoning":"Content is harmless"}`,
	})
	posts := newTestPostService(db)
	author := seedUser(t, db, "author@example.com", model.RoleUser)
	flagger := seedUser(t, db, "flagger@example.com", model.RoleUser)
	mod := seedUser(t, db, "mod@example.com", model.RoleModerator)
	ch := seedChannel(t, db, "Creative Projects")
	post := seedPost(t, db, author.ID, ch.ID)
	ctx := context.Background()

	require.NoError(t, posts.Flag(ctx, post.ID, flagger.ID, "inappropriate"))

	report, err := svc.ModeratorPipeline(ctx, post.ID, "inappropriate", mod.ID)
	require.NoError(t, err)
	assert.Equal(t, ai.ActionDismiss, report.Decision.Action)

	stored, err := posts.Get(ctx, post.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsFlagged)
}

func TestAdminPipelineBansRepeatOffenders(t *testing.T) {
	db := newTestDB(t)
	svc, staff := newModerationService(t, db, &stubCompleter{})
	author := seedUser(t, db, "repeat@example.com", model.RoleUser)
	mod := seedUser(t, db, "mod@example.com", model.RoleModerator)
	admin := seedUser(t, db, "admin@example.com", model.RoleAdmin)
	ch := seedChannel(t, db, "Career Growth")
	post := seedPost(t, db, author.ID, ch.ID)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := staff.WarnUser(ctx, author.ID, mod.ID, post.ID, "spam")
		require.NoError(t, err)
	}

	escalated := &agent.Report{
		AgentType: agent.TypeMod,
		PostID:    post.ID,
		UserID:    author.ID,
		Decision:  ai.Decision{Action: ai.ActionEscalate, Severity: ai.SeverityHigh},
	}
	report, err := svc.AdminPipeline(ctx, escalated, admin.ID)
	require.NoError(t, err)
	assert.Equal(t, ai.ActionBan, report.Decision.Action)
	assert.Equal(t, 95, report.Decision.Confidence)

	ban, err := staff.IsBanned(ctx, author.Email)
	require.NoError(t, err)
	assert.NotNil(t, ban)
}

func TestAdminPipelineFinalWarningForFirstOffense(t *testing.T) {
	db := newTestDB(t)
	svc, staff := newModerationService(t, db, &stubCompleter{})
	author := seedUser(t, db, "first@example.com", model.RoleUser)
	admin := seedUser(t, db, "admin@example.com", model.RoleAdmin)
	ch := seedChannel(t, db, "Relationships")
	post := seedPost(t, db, author.ID, ch.ID)
	ctx := context.Background()

	escalated := &agent.Report{
		AgentType: agent.TypeMod,
		PostID:    post.ID,
		UserID:    author.ID,
		Decision:  ai.Decision{Action: ai.ActionEscalate, Severity: ai.SeverityHigh},
		Timestamp: time.Now(),
	}
	report, err := svc.AdminPipeline(ctx, escalated, admin.ID)
	require.NoError(t, err)
	assert.Equal(t, ai.ActionWarn, report.Decision.Action)
	assert.Equal(t, 85, report.Decision.Confidence)

	ban, err := staff.IsBanned(ctx, author.Email)
	require.NoError(t, err)
	assert.Nil(t, ban)

	var warningCount int64
	require.NoError(t, db.Model(&model.Warning{}).Where("user_id = ?", author.ID).Count(&warningCount).Error)
	assert.EqualValues(t, 1, warningCount)
}

func TestAdminPipelineBansOnCriticalSeverity(t *testing.T) {
	db := newTestDB(t)
	svc, staff := newModerationService(t, db, &stubCompleter{})
	author := seedUser(t, db, "critical@example.com", model.RoleUser)
	admin := seedUser(t, db, "admin@example.com", model.RoleAdmin)
	ch := seedChannel(t, db, "Mental Health")
	post := seedPost(t, db, author.ID, ch.ID)
	ctx := context.Background()

	escalated := &agent.Report{
		AgentType: agent.TypeMod,
		PostID:    post.ID,
		UserID:    author.ID,
		Decision:  ai.Decision{Action: ai.ActionEscalate, Severity: ai.SeverityCritical},
	}
	report, err := svc.AdminPipeline(ctx, escalated, admin.ID)
	require.NoError(t, err)
	assert.Equal(t, ai.ActionBan, report.Decision.Action)
	assert.Equal(t, 90, report.Decision.Confidence)

	ban, err := staff.IsBanned(ctx, author.Email)
	require.NoError(t, err)
	require.NotNil(t, ban)
	assert.Contains(t, ban.Reason, "Critical violation")
}

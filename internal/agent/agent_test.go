package agent

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/apexquest/apexquest/config"
)

func TestActivityLogCapsEntries(t *testing.T) {
	log := NewActivityLog()
	for i := 0; i < activityLogCap+50; i++ {
		log.Append(ActivityEntry{Action: fmt.Sprintf("action-%d", i)})
	}
	entries := log.List()
	require.Len(t, entries, activityLogCap)
	// The oldest entries were discarded.
	assert.Equal(t, "action-50", entries[0].Action)
	assert.Equal(t, fmt.Sprintf("action-%d", activityLogCap+49), entries[len(entries)-1].Action)
}

func TestReportStoreCapsEntries(t *testing.T) {
	store := NewReportStore()
	for i := 0; i < reportStoreCap+10; i++ {
		store.Append(Report{PostID: fmt.Sprintf("post-%d", i)})
	}
	reports := store.List()
	require.Len(t, reports, reportStoreCap)
	assert.Equal(t, "post-10", reports[0].PostID)
}

func TestTypeScopes(t *testing.T) {
	assert.Equal(t, "admin:manage", TypeAdmin.Scope())
	assert.Equal(t, "mod:warn", TypeMod.Scope())
	assert.Equal(t, "user:post", TypeUser.Scope())
	assert.False(t, Type("superuser").Valid())
}

func TestFakeAuthenticatorIssuesTokens(t *testing.T) {
	log := NewActivityLog()
	auth, err := NewFakeAuthenticator(&config.AgentsConfig{
		Mod: config.AgentCredentials{ClientID: "mod-agent", ClientSecret: "s3cret"},
	}, log, zap.NewNop())
	require.NoError(t, err)

	token, err := auth.Authenticate(context.Background(), TypeMod)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(token, "fake-mod-"))

	_, err = auth.Authenticate(context.Background(), Type("superuser"))
	assert.Error(t, err)
}

func TestValidateActionRecordsOutcome(t *testing.T) {
	log := NewActivityLog()
	auth, err := NewFakeAuthenticator(&config.AgentsConfig{}, log, zap.NewNop())
	require.NoError(t, err)

	ok := auth.ValidateAction(context.Background(), TypeAdmin, "escalated_moderation")
	assert.True(t, ok)

	entries := log.List()
	require.Len(t, entries, 2)
	assert.Equal(t, StatusAttempted, entries[0].Status)
	assert.Equal(t, StatusAuthorized, entries[1].Status)
	assert.Equal(t, "escalated_moderation", entries[0].Action)
	assert.Equal(t, entries[0].SessionID, entries[1].SessionID)
	assert.NotEmpty(t, entries[0].SessionID)
}

func TestValidateActionDeniesUnknownAgent(t *testing.T) {
	log := NewActivityLog()
	auth, err := NewFakeAuthenticator(&config.AgentsConfig{}, log, zap.NewNop())
	require.NoError(t, err)

	ok := auth.ValidateAction(context.Background(), Type("superuser"), "anything")
	assert.False(t, ok)

	entries := log.List()
	require.Len(t, entries, 2)
	assert.Equal(t, StatusDenied, entries[1].Status)
}

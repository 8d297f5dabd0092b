package agent

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/apexquest/apexquest/config"
)

// tokenExpiryMargin renews cached tokens five minutes before they expire.
const tokenExpiryMargin = 5 * time.Minute

// Authenticator gates staff-equivalent actions behind a machine credential.
// Two interchangeable implementations exist: one performing real OAuth
// client-credentials calls and an in-memory fake, selected by configuration.
type Authenticator interface {
	// Authenticate returns a bearer token for the given agent identity.
	Authenticate(ctx context.Context, agentType Type) (string, error)
	// ValidateAction authenticates and records the outcome in the activity
	// log. Possession of the matching credential is sufficient; the scope is
	// informational.
	ValidateAction(ctx context.Context, agentType Type, action string) bool
}

type cachedToken struct {
	token     string
	expiresAt time.Time
}

// OAuthAuthenticator fetches client-credentials tokens from the identity
// provider and caches them until near expiry.
type OAuthAuthenticator struct {
	configs   map[Type]*clientcredentials.Config
	log       *ActivityLog
	logger    *zap.Logger
	sessionID string

	mu    sync.Mutex
	cache map[Type]cachedToken
}

func NewOAuthAuthenticator(cfg *config.AgentsConfig, log *ActivityLog, logger *zap.Logger) *OAuthAuthenticator {
	creds := map[Type]config.AgentCredentials{
		TypeAdmin: cfg.Admin,
		TypeMod:   cfg.Mod,
		TypeUser:  cfg.User,
	}
	configs := make(map[Type]*clientcredentials.Config, len(creds))
	for t, c := range creds {
		configs[t] = &clientcredentials.Config{
			ClientID:     c.ClientID,
			ClientSecret: c.ClientSecret,
			TokenURL:     cfg.TokenURL,
			Scopes:       []string{t.Scope()},
			EndpointParams: map[string][]string{
				"audience": {cfg.Audience},
			},
		}
	}
	return &OAuthAuthenticator{
		configs:   configs,
		log:       log,
		logger:    logger.Named("agent_auth"),
		sessionID: uuid.New().String(),
		cache:     make(map[Type]cachedToken),
	}
}

func (a *OAuthAuthenticator) Authenticate(ctx context.Context, agentType Type) (string, error) {
	if !agentType.Valid() {
		return "", fmt.Errorf("unknown agent type: %s", agentType)
	}

	a.mu.Lock()
	if cached, ok := a.cache[agentType]; ok && time.Now().Before(cached.expiresAt) {
		a.mu.Unlock()
		return cached.token, nil
	}
	a.mu.Unlock()

	tok, err := a.configs[agentType].Token(ctx)
	if err != nil {
		a.logger.Warn("agent token request failed",
			zap.String("agent", string(agentType)), zap.Error(err))
		return "", fmt.Errorf("authenticate %s agent: %w", agentType, err)
	}

	a.mu.Lock()
	a.cache[agentType] = cachedToken{
		token:     tok.AccessToken,
		expiresAt: tok.Expiry.Add(-tokenExpiryMargin),
	}
	a.mu.Unlock()
	return tok.AccessToken, nil
}

func (a *OAuthAuthenticator) ValidateAction(ctx context.Context, agentType Type, action string) bool {
	return validate(ctx, a, a.log, a.sessionID, a.logger, agentType, action)
}

// validate is shared by both implementations: log the attempt, try to
// authenticate, log the outcome.
func validate(ctx context.Context, auth Authenticator, log *ActivityLog, sessionID string, logger *zap.Logger, agentType Type, action string) bool {
	log.Append(ActivityEntry{
		Timestamp: time.Now(),
		Agent:     agentType,
		Action:    action,
		Status:    StatusAttempted,
		SessionID: sessionID,
	})

	if _, err := auth.Authenticate(ctx, agentType); err != nil {
		logger.Warn("agent action denied",
			zap.String("agent", string(agentType)),
			zap.String("action", action),
			zap.Error(err))
		log.Append(ActivityEntry{
			Timestamp: time.Now(),
			Agent:     agentType,
			Action:    action,
			Status:    StatusDenied,
			SessionID: sessionID,
		})
		return false
	}

	log.Append(ActivityEntry{
		Timestamp: time.Now(),
		Agent:     agentType,
		Action:    action,
		Status:    StatusAuthorized,
		SessionID: sessionID,
	})
	return true
}

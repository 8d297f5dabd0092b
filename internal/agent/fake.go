package agent

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/apexquest/apexquest/config"
)

// fakeDelay simulates the identity provider's round trip.
const fakeDelay = 150 * time.Millisecond

// FakeAuthenticator fabricates tokens locally for demo and test
// deployments. Configured client secrets are stored only as bcrypt hashes;
// a credential check verifies the configured plaintext against its hash so
// the demo path still exercises a real comparison.
type FakeAuthenticator struct {
	secrets      map[Type]string // plaintext from config
	secretHashes map[Type][]byte
	log          *ActivityLog
	logger       *zap.Logger
	sessionID    string
}

func NewFakeAuthenticator(cfg *config.AgentsConfig, log *ActivityLog, logger *zap.Logger) (*FakeAuthenticator, error) {
	secrets := map[Type]string{
		TypeAdmin: cfg.Admin.ClientSecret,
		TypeMod:   cfg.Mod.ClientSecret,
		TypeUser:  cfg.User.ClientSecret,
	}
	hashes := make(map[Type][]byte, len(secrets))
	for t, s := range secrets {
		if s == "" {
			continue
		}
		h, err := bcrypt.GenerateFromPassword([]byte(s), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash %s agent secret: %w", t, err)
		}
		hashes[t] = h
	}
	return &FakeAuthenticator{
		secrets:      secrets,
		secretHashes: hashes,
		log:          log,
		logger:       logger.Named("agent_auth_fake"),
		sessionID:    uuid.New().String(),
	}, nil
}

func (a *FakeAuthenticator) Authenticate(ctx context.Context, agentType Type) (string, error) {
	if !agentType.Valid() {
		return "", fmt.Errorf("unknown agent type: %s", agentType)
	}
	select {
	case <-time.After(fakeDelay):
	case <-ctx.Done():
		return "", ctx.Err()
	}
	if hash, ok := a.secretHashes[agentType]; ok {
		if err := bcrypt.CompareHashAndPassword(hash, []byte(a.secrets[agentType])); err != nil {
			return "", fmt.Errorf("bad %s agent credential: %w", agentType, err)
		}
	}
	return fmt.Sprintf("fake-%s-%s", agentType, uuid.New().String()), nil
}

func (a *FakeAuthenticator) ValidateAction(ctx context.Context, agentType Type, action string) bool {
	return validate(ctx, a, a.log, a.sessionID, a.logger, agentType, action)
}

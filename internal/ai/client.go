package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"google.golang.org/api/option"

	"github.com/apexquest/apexquest/config"
)

var ErrEmptyResponse = errors.New("model returned no content")

// Completer is the minimal surface the services need from the
// generative-language API. Complete returns free text; Classify constrains
// the response to the moderation-decision JSON schema.
type Completer interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
	Classify(ctx context.Context, system, prompt string) (string, error)
}

// decisionSchema mirrors the Decision struct so the model cannot drift from
// the shape the pipeline parses.
var decisionSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"action": {
			Type:        genai.TypeString,
			Description: "One of warn, remove, ban, escalate, dismiss",
		},
		"severity": {
			Type:        genai.TypeString,
			Description: "One of low, medium, high, critical",
		},
		"confidence": {
			Type:        genai.TypeInteger,
			Description: "Confidence level from 0 to 100",
		},
		"reasoning": {
			Type:        genai.TypeString,
			Description: "Explanation of the decision",
		},
	},
	Required: []string{"action", "severity", "confidence", "reasoning"},
}

// GeminiClient wraps the hosted generative-language API with an outbound
// throttle and per-call timeout. Safe for concurrent use.
type GeminiClient struct {
	client  *genai.Client
	model   string
	limiter *rate.Limiter
	logger  *zap.Logger
}

func NewGeminiClient(ctx context.Context, cfg *config.GeminiConfig, logger *zap.Logger) (*GeminiClient, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("gemini api key not configured")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	rps := cfg.RPS
	if rps <= 0 {
		rps = 1
	}
	return &GeminiClient{
		client:  client,
		model:   cfg.Model,
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
		logger:  logger.Named("gemini"),
	}, nil
}

func (c *GeminiClient) Close() error { return c.client.Close() }

func (c *GeminiClient) Complete(ctx context.Context, system, prompt string) (string, error) {
	m := c.client.GenerativeModel(c.model)
	if system != "" {
		m.SystemInstruction = genai.NewUserContent(genai.Text(system))
	}
	return c.generate(ctx, m, prompt)
}

func (c *GeminiClient) Classify(ctx context.Context, system, prompt string) (string, error) {
	m := c.client.GenerativeModel(c.model)
	if system != "" {
		m.SystemInstruction = genai.NewUserContent(genai.Text(system))
	}
	m.GenerationConfig.ResponseMIMEType = "application/json"
	m.GenerationConfig.ResponseSchema = decisionSchema
	return c.generate(ctx, m, prompt)
}

func (c *GeminiClient) generate(ctx context.Context, m *genai.GenerativeModel, prompt string) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", err
	}
	ctx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	resp, err := m.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		c.logger.Error("generate content", zap.Error(err))
		return "", err
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", ErrEmptyResponse
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	if sb.Len() == 0 {
		return "", ErrEmptyResponse
	}
	return sb.String(), nil
}

package brain

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"persona-agent/internal/core/domain"
	"persona-agent/internal/core/ports"
)

// ModelConfig names a Gemini model with its local request budget.
// Zero RPM or RPD means unlimited.
type ModelConfig struct {
	Name string
	RPM  int
	RPD  int
}

// DefaultModels mirrors the free-tier limits of the flash models.
var DefaultModels = []ModelConfig{
	{Name: "gemini-2.5-flash", RPM: 10, RPD: 250},
	{Name: "gemini-2.5-flash-lite", RPM: 15, RPD: 1000},
}

// contentGenerator is the subset of *genai.Models the brain calls.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

type Options struct {
	Models      []ModelConfig
	Timeout     time.Duration
	Temperature float32
}

type GeminiBrain struct {
	models  contentGenerator
	configs []ModelConfig
	timeout time.Duration
	genCfg  *genai.GenerateContentConfig
	logger  *zap.Logger
	now     func() time.Time

	dailyCount   map[string]int
	minuteCount  map[string]int
	lastResetDay time.Time
	lastResetMin time.Time
	mu           sync.Mutex
}

var _ ports.Brain = (*GeminiBrain)(nil)

func NewGeminiBrain(ctx context.Context, apiKey string, opts Options, logger *zap.Logger) (*GeminiBrain, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return newGeminiBrain(client.Models, opts, logger), nil
}

func newGeminiBrain(models contentGenerator, opts Options, logger *zap.Logger) *GeminiBrain {
	if len(opts.Models) == 0 {
		opts.Models = DefaultModels
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	temperature := opts.Temperature
	now := time.Now()
	return &GeminiBrain{
		models:       models,
		configs:      opts.Models,
		timeout:      opts.Timeout,
		genCfg:       &genai.GenerateContentConfig{Temperature: &temperature},
		logger:       logger,
		now:          time.Now,
		dailyCount:   make(map[string]int),
		minuteCount:  make(map[string]int),
		lastResetDay: now,
		lastResetMin: now,
	}
}

// Generate sends the prompt to the first model with remaining budget, falling
// back to the next model on quota or availability errors.
func (b *GeminiBrain) Generate(ctx context.Context, prompt string) (string, error) {
	if b.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.timeout)
		defer cancel()
	}

	var lastErr error
	for _, cfg := range b.configs {
		if !b.canUseModel(cfg) {
			b.logger.Debug("Model budget exhausted", zap.String("model", cfg.Name))
			continue
		}

		result, err := b.models.GenerateContent(ctx, cfg.Name, genai.Text(prompt), b.genCfg)
		b.recordUsage(cfg)
		if err != nil {
			genErr := classify(ctx, cfg.Name, err)
			if errors.Is(genErr, domain.ErrTimeout) {
				return "", genErr
			}
			b.logger.Warn("Model call failed, trying next",
				zap.String("model", cfg.Name), zap.Error(err))
			lastErr = genErr
			continue
		}

		text := responseText(result)
		if text == "" {
			lastErr = domain.NewGenerationError(domain.ErrModelUnavailable, cfg.Name, errors.New("empty response"))
			continue
		}
		return text, nil
	}

	if lastErr == nil {
		lastErr = domain.NewGenerationError(domain.ErrQuotaExceeded, "", errors.New("local budget exhausted for all models"))
	}
	return "", lastErr
}

func responseText(result *genai.GenerateContentResponse) string {
	if result == nil || len(result.Candidates) == 0 {
		return ""
	}
	c := result.Candidates[0]
	if c == nil || c.Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range c.Content.Parts {
		if part != nil {
			sb.WriteString(part.Text)
		}
	}
	return sb.String()
}

// classify maps a client error onto the generation error taxonomy.
func classify(ctx context.Context, model string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return domain.NewGenerationError(domain.ErrTimeout, model, err)
	}
	errStr := strings.ToLower(err.Error())
	switch {
	case strings.Contains(errStr, "429") || strings.Contains(errStr, "rate limit") ||
		strings.Contains(errStr, "exhausted") || strings.Contains(errStr, "quota"):
		return domain.NewGenerationError(domain.ErrQuotaExceeded, model, err)
	case strings.Contains(errStr, "deadline") || strings.Contains(errStr, "timeout"):
		return domain.NewGenerationError(domain.ErrTimeout, model, err)
	default:
		return domain.NewGenerationError(domain.ErrModelUnavailable, model, err)
	}
}

func (b *GeminiBrain) canUseModel(cfg ModelConfig) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	now := b.now()
	if now.YearDay() != b.lastResetDay.YearDay() || now.Year() != b.lastResetDay.Year() {
		b.dailyCount = make(map[string]int)
		b.lastResetDay = now
	}
	if now.Sub(b.lastResetMin) >= time.Minute {
		b.minuteCount = make(map[string]int)
		b.lastResetMin = now
	}
	if cfg.RPD > 0 && b.dailyCount[cfg.Name] >= cfg.RPD {
		return false
	}
	if cfg.RPM > 0 && b.minuteCount[cfg.Name] >= cfg.RPM {
		return false
	}
	return true
}

func (b *GeminiBrain) recordUsage(cfg ModelConfig) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.dailyCount[cfg.Name]++
	b.minuteCount[cfg.Name]++
}

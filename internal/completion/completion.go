package completion

import (
	"context"
	"fmt"
	"strings"
	"time"

	apperrors "codeberg.org/pgsuggest/server/internal/errors"
	"codeberg.org/pgsuggest/server/internal/llm"
	"codeberg.org/pgsuggest/server/internal/logger"
	"codeberg.org/pgsuggest/server/internal/metrics"
)

const (
	defaultTopK              = 3
	defaultRecentWindow      = 3
	defaultMaxTokens         = 50
	defaultGenerationTimeout = 20 * time.Second
)

// generator may be nil; Complete then reports a configuration error per call
func New(retriever Retriever, generator llm.TextGenerator, cfg Config) *Orchestrator {
	if cfg.TopK <= 0 {
		cfg.TopK = defaultTopK
	}

	if cfg.RecentWindow < 0 {
		cfg.RecentWindow = defaultRecentWindow
	}

	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = defaultMaxTokens
	}

	if cfg.GenerationTimeout <= 0 {
		cfg.GenerationTimeout = defaultGenerationTimeout
	}

	return &Orchestrator{
		retriever: retriever,
		generator: generator,
		cfg:       cfg,
	}
}

// reports whether a generator is configured
func (o *Orchestrator) Ready() bool {
	return o.generator != nil
}

// returns the generation model name, or "" when unconfigured
func (o *Orchestrator) Model() string {
	if o.generator == nil {
		return ""
	}

	return o.generator.Model()
}

func (o *Orchestrator) Complete(ctx context.Context, req Request) (suggestion *Suggestion, err error) {
	const op = "completion.complete"

	started := time.Now()
	defer func() {
		metrics.CompletionsTotal.WithLabelValues(outcome(suggestion, err)).Inc()
		metrics.CompletionDuration.Observe(time.Since(started).Seconds())
	}()

	if strings.TrimSpace(req.CurrentQuery) == "" {
		return nil, apperrors.Validation(op, "current_query must not be empty")
	}

	if o.generator == nil {
		missing := o.cfg.MissingKey
		if missing == "" {
			missing = "generation provider API key"
		}

		return nil, apperrors.Configuration(op, fmt.Errorf("%s not configured", missing))
	}

	recent := truncateRecent(req.RecentQueries, o.cfg.RecentWindow)

	similar, err := o.retriever.Rank(ctx, req.CurrentQuery, o.cfg.TopK)
	if err != nil {
		return nil, err
	}

	prompt := buildPrompt(promptContext{
		Recent:  recent,
		Similar: similar,
		Current: req.CurrentQuery,
	})

	logger.FromContext(ctx).Debug("requesting completion",
		"recent", len(recent),
		"similar", len(similar),
		"prompt_chars", len(prompt),
	)

	genCtx, cancel := context.WithTimeout(ctx, o.cfg.GenerationTimeout)
	defer cancel()

	response, err := o.generator.GenerateText(genCtx, llm.TextGenerationRequest{
		SystemPrompt: systemInstruction,
		Messages:     []llm.Message{{Role: "user", Content: prompt}},
		MaxTokens:    o.cfg.MaxTokens,
		Temperature:  o.cfg.Temperature,
	})
	if err != nil {
		if apperrors.KindOf(err) == "" {
			err = apperrors.Provider(op, err)
		}

		return nil, err
	}

	return &Suggestion{
		Text:           normalize(response.Text, req.CurrentQuery),
		SimilarQueries: similar,
		RecentQueries:  recent,
		Model:          o.generator.Model(),
	}, nil
}

func outcome(s *Suggestion, err error) string {
	if err != nil {
		switch apperrors.KindOf(err) {
		case apperrors.KindValidation:
			return "validation"
		case apperrors.KindConfiguration:
			return "configuration"
		case apperrors.KindProvider:
			return "provider"
		default:
			return "error"
		}
	}

	if s == nil || s.Text == "" {
		return "empty"
	}

	return "ok"
}

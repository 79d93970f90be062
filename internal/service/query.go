package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"aitools.app/recommender/common/id"
	"aitools.app/recommender/common/llm"
	"aitools.app/recommender/common/logger"
	"aitools.app/recommender/internal/dataset"
	"aitools.app/recommender/internal/metrics"
	"aitools.app/recommender/internal/model"
)

var (
	ErrNoCredential    = fmt.Errorf("%w: OPENROUTER_API_KEY not configured", dataset.ErrNotConfigured)
	ErrDataUnavailable = errors.New("loading dataset")
	ErrUpstream        = errors.New("querying model")
	ErrEmptyResponse   = fmt.Errorf("%w: empty model response", ErrUpstream)
)

const systemPrompt = "Eres un experto en herramientas de inteligencia artificial. " +
	"Responde únicamente con una tabla HTML con exactamente estas seis columnas, en este orden: " +
	"nombre, nivel de dificultad, subcategoría, descripción, enlace y tutorial. " +
	"Usa solo filas tomadas del listado proporcionado; no inventes herramientas."

const userPromptTemplate = "Estas son las herramientas (nombre | nivel de dificultad | subcategoría | descripción | enlace | tutorial):\n%s\n\n" +
	"El usuario dice: \"%s\".\n\n" +
	"Devuelve SOLO el marcado de la tabla HTML (sin <html>, sin <body>, sin markdown ni bloques de código)."

// QueryService answers free-text questions about the tool dataset with an
// HTML table produced by the chat model.
type QueryService interface {
	Answer(ctx context.Context, message string) (string, error)
}

type queryService struct {
	datasets  DatasetService
	llm       llm.Client
	maxTokens int
	timeout   time.Duration
	metrics   *metrics.Metrics
}

type QueryServiceConfig struct {
	Datasets  DatasetService
	LLM       llm.Client // nil when no API key is configured
	MaxTokens int
	Timeout   time.Duration
	Metrics   *metrics.Metrics
}

func NewQueryService(cfg QueryServiceConfig) QueryService {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = llm.DefaultTimeout
	}
	return &queryService{
		datasets:  cfg.Datasets,
		llm:       cfg.LLM,
		maxTokens: cfg.MaxTokens,
		timeout:   timeout,
		metrics:   cfg.Metrics,
	}
}

func (s *queryService) Answer(ctx context.Context, message string) (string, error) {
	if s.llm == nil {
		return "", ErrNoCredential
	}

	ctx = logger.WithLogFields(ctx, logger.LogFields{
		QueryID:   logger.Ptr(id.New()),
		Model:     logger.Ptr(s.llm.Model()),
		Component: "recommender.service.query",
	})

	rows, err := s.datasets.Rows(ctx, false)
	if err != nil {
		slog.ErrorContext(ctx, "dataset unavailable for query", "error", err)
		return "", fmt.Errorf("%w: %w", ErrDataUnavailable, err)
	}

	sc := logger.StartSpan(ctx, "query.chat_completion", trace.WithSpanKind(trace.SpanKindClient))
	defer sc.End()
	ctx = sc.Context()
	sc.SetAttributes(
		attribute.String("llm.model", s.llm.Model()),
		attribute.Int("dataset.rows", len(rows)),
	)

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	resp, err := s.llm.Chat(callCtx, llm.Request{
		SystemPrompt: systemPrompt,
		UserPrompt:   BuildUserPrompt(rows, message),
		MaxTokens:    s.maxTokens,
	})
	if err != nil {
		sc.RecordError(err)
		s.metrics.ObserveLLM(s.llm.Model(), metrics.ResultError, time.Since(start))
		slog.ErrorContext(ctx, "chat completion failed",
			"error", err,
			"status_code", llm.StatusCode(err),
			"message", logger.Truncate(message, 200))
		return "", fmt.Errorf("%w: %w", ErrUpstream, err)
	}

	if resp.Content == "" {
		sc.RecordError(ErrEmptyResponse)
		s.metrics.ObserveLLM(s.llm.Model(), metrics.ResultEmpty, time.Since(start))
		slog.WarnContext(ctx, "chat completion returned no content", "finish_reason", resp.FinishReason)
		return "", ErrEmptyResponse
	}

	s.metrics.ObserveLLM(s.llm.Model(), metrics.ResultSuccess, time.Since(start))
	slog.InfoContext(ctx, "query answered",
		"rows", len(rows),
		"duration_ms", time.Since(start).Milliseconds(),
		"prompt_tokens", resp.PromptTokens,
		"completion_tokens", resp.CompletionTokens)

	return resp.Content, nil
}

// BuildListing renders one pipe-delimited line per row in canonical field order.
func BuildListing(rows []model.ToolRecord) string {
	lines := make([]string, 0, len(rows))
	for _, r := range rows {
		lines = append(lines, strings.Join(r.Values(), " | "))
	}
	return strings.Join(lines, "\n")
}

// BuildUserPrompt embeds the full listing and the literal user message.
func BuildUserPrompt(rows []model.ToolRecord, message string) string {
	return fmt.Sprintf(userPromptTemplate, BuildListing(rows), message)
}

// SystemPrompt returns the fixed instruction sent with every query.
func SystemPrompt() string {
	return systemPrompt
}

package logger

import "context"

type contextKey string

const logFieldsKey contextKey = "log_fields"

// LogFields contains structured fields automatically added to all logs within a context.
// Handlers and services enrich the context once; every slog call made with that
// context then carries the fields without repeating them.
type LogFields struct {
	QueryID   *int64  // Snowflake ID assigned to a /consulta request
	SourceURL *string // Dataset source being fetched
	Format    *string // Dataset format chosen for parsing (csv, json, spreadsheet)
	Model     *string // Chat-completion model
	Component string  // Component name, e.g. "recommender.dataset.cache"
}

// WithLogFields enriches context with structured log fields.
// Multiple calls merge fields, with newer non-nil/non-empty values taking precedence.
func WithLogFields(ctx context.Context, fields LogFields) context.Context {
	existing := GetLogFields(ctx)
	merged := mergeFields(existing, fields)
	return context.WithValue(ctx, logFieldsKey, merged)
}

// GetLogFields retrieves log fields from context.
// Returns empty LogFields if none are set.
func GetLogFields(ctx context.Context) LogFields {
	if fields, ok := ctx.Value(logFieldsKey).(LogFields); ok {
		return fields
	}
	return LogFields{}
}

func mergeFields(existing, new LogFields) LogFields {
	result := existing

	if new.QueryID != nil {
		result.QueryID = new.QueryID
	}
	if new.SourceURL != nil {
		result.SourceURL = new.SourceURL
	}
	if new.Format != nil {
		result.Format = new.Format
	}
	if new.Model != nil {
		result.Model = new.Model
	}
	if new.Component != "" {
		result.Component = new.Component
	}

	return result
}

// Ptr is a helper to create a pointer from a value.
// Useful for setting LogFields inline: logger.WithLogFields(ctx, logger.LogFields{QueryID: logger.Ptr(id)})
func Ptr[T any](v T) *T {
	return &v
}

// Truncate truncates a string to maxLen bytes, appending "..." if truncated.
// Used for user messages and upstream bodies that end up in log lines.
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

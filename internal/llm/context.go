package llm

import (
	"context"
	"slices"
)

type purposeKey struct{}

// Request purposes recorded with every call.
const (
	PurposeAnalysis     = "analysis"
	PurposeConversation = "conversation"
)

// Purposes lists every label the coach records.
var Purposes = []string{PurposeAnalysis, PurposeConversation}

// KnownPurpose reports whether p is one of Purposes.
func KnownPurpose(p string) bool {
	return slices.Contains(Purposes, p)
}

// WithPurpose tags ctx so the logging provider can attribute the call.
func WithPurpose(ctx context.Context, purpose string) context.Context {
	return context.WithValue(ctx, purposeKey{}, purpose)
}

// PurposeFrom returns the tag set by WithPurpose, or "unknown".
func PurposeFrom(ctx context.Context) string {
	if v, ok := ctx.Value(purposeKey{}).(string); ok && v != "" {
		return v
	}
	return "unknown"
}

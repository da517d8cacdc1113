package memory

import (
	"context"
	"errors"
)

// ErrUnavailable marks a memory layer whose backing collaborator is absent.
// Callers distinguish it from attempted-and-failed storage errors when
// logging; neither is ever surfaced past the pipeline boundary.
var ErrUnavailable = errors.New("memory: layer unavailable")

// SummaryStore persists one logical "latest" summary per conversation.
// SaveSummary has upsert semantics: a save replaces the previously-latest
// value for the conversation. The SQL store in package store implements this
// interface.
type SummaryStore interface {
	SaveSummary(ctx context.Context, conversationID, summary string, tokensEstimate int) error
	Summary(ctx context.Context, conversationID string) (string, error)
}

// UnavailableSummaryStore is the degraded summary layer used when no
// relational collaborator was supplied.
type UnavailableSummaryStore struct{}

// SaveSummary implements SummaryStore.
func (UnavailableSummaryStore) SaveSummary(context.Context, string, string, int) error {
	return ErrUnavailable
}

// Summary implements SummaryStore.
func (UnavailableSummaryStore) Summary(context.Context, string) (string, error) {
	return "", ErrUnavailable
}
